package httpapi

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"quiz-service/internal/quiz"
)

func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, quiz.ErrInvalidArgument):
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_argument", Message: err.Error()})
	case errors.Is(err, quiz.ErrUnauthorized):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "identity required"})
	case errors.Is(err, quiz.ErrCategoryNotFound):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: "not_found", Message: "category not found"})
	default:
		w.Header().Set("Cache-Control", "no-store")
		writeJSON(w, http.StatusBadGateway, errorResponse{
			Error:    "dependency_failure",
			Message:  "temporarily unable to serve this request",
			Fallback: true,
		})
	}
}

// writeQuestionsError degrades dependency faults to the structured fallback
// payload so callers can tell "failed to compute" apart from the valid
// zero-questions state. Logged context stops at identifiers; answer content
// never reaches logs.
func (a *API) writeQuestionsError(w http.ResponseWriter, err error, userID string, categoryID, count int64) {
	if errors.Is(err, quiz.ErrInvalidArgument) || errors.Is(err, quiz.ErrUnauthorized) || errors.Is(err, quiz.ErrCategoryNotFound) {
		writeServiceError(w, err)
		return
	}

	log.Printf("[ERROR] question selection failed user=%s category=%d count=%d: %v", userID, categoryID, count, err)
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, http.StatusBadGateway, errorResponse{
		Error:    "dependency_failure",
		Message:  "question selection is temporarily unavailable",
		Fallback: true,
	})
}

// etagMatches compares an If-None-Match header against the current ETag,
// tolerating quotes and weak validators.
func etagMatches(ifNoneMatch, etag string) bool {
	ifNoneMatch = strings.TrimSpace(ifNoneMatch)
	if ifNoneMatch == "" {
		return false
	}
	if ifNoneMatch == "*" {
		return true
	}
	for _, candidate := range strings.Split(ifNoneMatch, ",") {
		candidate = strings.TrimSpace(candidate)
		candidate = strings.TrimPrefix(candidate, "W/")
		candidate = strings.Trim(candidate, `"`)
		if candidate == etag {
			return true
		}
	}
	return false
}

func parseBoolParam(r *http.Request, key string) bool {
	value := strings.ToLower(strings.TrimSpace(r.URL.Query().Get(key)))
	return value == "1" || value == "true" || value == "yes"
}

func parseIntParam(r *http.Request, key string, defaultValue int64) (int64, error) {
	value := strings.TrimSpace(r.URL.Query().Get(key))
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0, errors.New(key + " must be an integer")
	}
	return parsed, nil
}

func writeMethodNotAllowed(w http.ResponseWriter, allowed string) {
	w.Header().Set("Allow", allowed)
	writeJSON(w, http.StatusMethodNotAllowed, errorResponse{Error: "method_not_allowed"})
}

func writeJSON(w http.ResponseWriter, statusCode int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(payload)
}
