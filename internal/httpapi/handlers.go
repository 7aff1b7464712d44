package httpapi

import (
	"context"
	"errors"
	"net/http"

	"quiz-service/internal/quiz"
)

const (
	defaultQuestionCount = 10

	// Clients may reuse a response for five minutes and revalidate in the
	// background for another ten, matching the server-side selection TTL.
	questionsCacheControl = "public, max-age=300, stale-while-revalidate=600"
)

// HandleQuestions serves the adaptive question set. GET returns the selected
// questions with cache validators; HEAD is the cheap existence check that
// validates a category without paying the selection cost.
func (a *API) HandleQuestions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodHead:
		a.handleQuestionsHead(w, r)
	case http.MethodGet:
		a.handleQuestionsGet(w, r)
	default:
		writeMethodNotAllowed(w, "GET, HEAD")
	}
}

func (a *API) handleQuestionsHead(w http.ResponseWriter, r *http.Request) {
	categoryID, err := parseIntParam(r, "category_id", 0)
	if err != nil || categoryID <= 0 {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	ctx, cancel := a.requestContext(r)
	defer cancel()

	if err := a.service.CheckCategory(ctx, categoryID); err != nil {
		if errors.Is(err, quiz.ErrCategoryNotFound) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusBadGateway)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (a *API) handleQuestionsGet(w http.ResponseWriter, r *http.Request) {
	userID, ok := a.identity.UserID(r)
	if !ok {
		writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "identity required"})
		return
	}

	categoryID, err := parseIntParam(r, "category_id", 0)
	if err != nil || categoryID <= 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_argument", Message: "category_id must be a positive integer"})
		return
	}

	count, err := parseIntParam(r, "count", defaultQuestionCount)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_argument", Message: err.Error()})
		return
	}

	difficulty, ok := quiz.ParseDifficulty(r.URL.Query().Get("difficulty"))
	if !ok {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_argument", Message: "difficulty must be beginner, intermediate or advanced"})
		return
	}

	optimized := parseBoolParam(r, "optimized")

	ctx, cancel := a.requestContext(r)
	defer cancel()

	set, err := a.service.GetQuestionSet(ctx, userID, categoryID, int(count), difficulty, optimized)
	if err != nil {
		a.writeQuestionsError(w, err, userID, categoryID, count)
		return
	}

	w.Header().Set("Cache-Control", questionsCacheControl)
	w.Header().Set("ETag", `"`+set.ETag+`"`)
	w.Header().Set("Vary", identityHeader)

	if etagMatches(r.Header.Get("If-None-Match"), set.ETag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	writeJSON(w, http.StatusOK, questionsResponse{
		Questions: quiz.ToPublicQuestions(set.Questions),
		Metadata: questionsMetadata{
			Count:      set.Count,
			CategoryID: set.CategoryID,
			Difficulty: set.Difficulty,
			Optimized:  set.Optimized,
			Mix:        set.Mix,
			Timestamp:  a.now(),
		},
	})
}

// HandleCategories lists categories with pagination; include_stats=true joins
// in the caller's own progress and therefore requires identity.
func (a *API) HandleCategories(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	page, err := parseIntParam(r, "page", 1)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_argument", Message: err.Error()})
		return
	}
	pageSize, err := parseIntParam(r, "page_size", 20)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid_argument", Message: err.Error()})
		return
	}

	ctx, cancel := a.requestContext(r)
	defer cancel()

	if parseBoolParam(r, "include_stats") {
		userID, ok := a.identity.UserID(r)
		if !ok {
			writeJSON(w, http.StatusUnauthorized, errorResponse{Error: "unauthorized", Message: "per-user stats require identity"})
			return
		}

		withStats, meta, err := a.service.ListCategoriesWithStats(ctx, userID, int(page), int(pageSize))
		if err != nil {
			writeServiceError(w, err)
			return
		}

		items := make([]categoryResponse, 0, len(withStats))
		for _, item := range withStats {
			items = append(items, categoryResponse{Category: item.Category, Progress: item.Progress})
		}
		writeJSON(w, http.StatusOK, categoriesResponse{Categories: items, Meta: categoriesMeta{Pagination: meta}})
		return
	}

	categories, meta, err := a.service.ListCategories(ctx, int(page), int(pageSize))
	if err != nil {
		writeServiceError(w, err)
		return
	}

	items := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		items = append(items, categoryResponse{Category: category})
	}
	writeJSON(w, http.StatusOK, categoriesResponse{Categories: items, Meta: categoriesMeta{Pagination: meta}})
}

// HandleHealth pings the store and cache.
func (a *API) HandleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w, http.MethodGet)
		return
	}

	ctx, cancel := a.requestContext(r)
	defer cancel()

	checks := map[string]string{}
	status := http.StatusOK

	if a.storePing != nil {
		if err := a.storePing(ctx); err != nil {
			checks["store"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["store"] = "ok"
		}
	}

	if a.store != nil {
		if err := a.store.Ping(ctx); err != nil {
			checks["cache"] = err.Error()
			status = http.StatusServiceUnavailable
		} else {
			checks["cache"] = "ok"
		}
	}

	body := healthResponse{Status: "ok", Checks: checks}
	if status != http.StatusOK {
		body.Status = "degraded"
	}
	writeJSON(w, status, body)
}

func (a *API) requestContext(r *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(r.Context(), a.timeout)
}
