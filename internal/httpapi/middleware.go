package httpapi

import (
	"bytes"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"quiz-service/internal/cache"
)

// IdentityProvider resolves the caller's identity from a request. It is a
// collaborator boundary: session auth lives upstream, this core only needs
// the resulting user id.
type IdentityProvider interface {
	UserID(r *http.Request) (string, bool)
}

// identityHeader carries the resolved user id set by the upstream auth
// layer. Responses vary on it, since cached selections are per-user.
const identityHeader = "X-User-ID"

// HeaderIdentity trusts the upstream-injected identity header. Suitable
// behind a gateway that strips and re-sets it; not for direct exposure.
type HeaderIdentity struct{}

func (HeaderIdentity) UserID(r *http.Request) (string, bool) {
	userID := strings.TrimSpace(r.Header.Get(identityHeader))
	return userID, userID != ""
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode   int
	bytesWritten int
	logBody      bytes.Buffer
	maxLogBytes  int
	truncated    bool
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if remaining := r.maxLogBytes - r.logBody.Len(); remaining > 0 {
		if len(payload) > remaining {
			r.logBody.Write(payload[:remaining])
			r.truncated = true
		} else {
			r.logBody.Write(payload)
		}
	} else if len(payload) > 0 {
		r.truncated = true
	}

	written, err := r.ResponseWriter.Write(payload)
	r.bytesWritten += written
	return written, err
}

// bodySnippet returns the buffered response prefix for logging, marking
// truncation when the body outgrew the buffer.
func (r *statusRecorder) bodySnippet() string {
	if r.truncated {
		return r.logBody.String() + "..."
	}
	return r.logBody.String()
}

// withRequestLog tags each request with a uuid and logs method, path,
// status, size and duration on completion. Error responses also log the
// (truncated) body, which is where the degradation payloads surface.
func withRequestLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		w.Header().Set("X-Request-ID", requestID)

		recorder := &statusRecorder{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
			maxLogBytes:    512,
		}

		start := time.Now()
		next.ServeHTTP(recorder, r)

		if recorder.statusCode >= http.StatusBadRequest && recorder.logBody.Len() > 0 {
			log.Printf("[HTTP] id=%s %s %s status=%d bytes=%d duration=%v body=%q",
				requestID, r.Method, r.URL.Path, recorder.statusCode, recorder.bytesWritten, time.Since(start), recorder.bodySnippet())
			return
		}

		log.Printf("[HTTP] id=%s %s %s status=%d bytes=%d duration=%v",
			requestID, r.Method, r.URL.Path, recorder.statusCode, recorder.bytesWritten, time.Since(start))
	})
}

// withRateGate is the allow/deny gate sitting in front of the core: a fixed
// per-user request budget per window, counted in the shared keyed store.
// A zero limit disables the gate. Counter errors fail open; the gate is a
// protection layer, not a correctness dependency.
func withRateGate(store cache.Store, limit int, window time.Duration, identity IdentityProvider, next http.Handler) http.Handler {
	if store == nil || limit <= 0 {
		return next
	}

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID, ok := identity.UserID(r)
		if !ok {
			userID = r.RemoteAddr
		}

		key := fmt.Sprintf("ratelimit:%s:%s", r.URL.Path, userID)
		count, err := store.Increment(r.Context(), key, window)
		if err != nil {
			log.Printf("[ERROR] rate gate counter failed key=%s: %v", key, err)
			next.ServeHTTP(w, r)
			return
		}

		if count > int64(limit) {
			w.Header().Set("Retry-After", fmt.Sprintf("%d", int(window.Seconds())))
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Error:   "rate_limited",
				Message: "too many requests, slow down",
			})
			return
		}

		next.ServeHTTP(w, r)
	})
}
