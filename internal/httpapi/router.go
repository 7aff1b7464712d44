package httpapi

import (
	"net/http"
	"time"

	"quiz-service/internal/cache"
	"quiz-service/internal/quiz"
)

// RouterConfig carries the optional gates wrapped around the core handlers.
type RouterConfig struct {
	RateLimit  int           // requests per user per window; 0 disables
	RateWindow time.Duration // counter window, defaults to one minute
}

func NewRouter(service *quiz.Service, identity IdentityProvider, store cache.Store, cfg RouterConfig, opts ...Option) http.Handler {
	api := NewAPI(service, identity, store, opts...)

	if cfg.RateWindow <= 0 {
		cfg.RateWindow = time.Minute
	}

	mux := http.NewServeMux()
	mux.Handle("/questions", withRateGate(store, cfg.RateLimit, cfg.RateWindow, api.identity, http.HandlerFunc(api.HandleQuestions)))
	mux.HandleFunc("/categories", api.HandleCategories)
	mux.HandleFunc("/healthz", api.HandleHealth)

	return withRequestLog(mux)
}
