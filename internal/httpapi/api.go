package httpapi

import (
	"context"
	"time"

	"quiz-service/internal/cache"
	"quiz-service/internal/quiz"
)

type API struct {
	service   *quiz.Service
	identity  IdentityProvider
	store     cache.Store
	storePing func(context.Context) error
	timeout   time.Duration
	now       func() time.Time
}

type Option func(*API)

// WithStorePing wires the datastore health probe used by /healthz.
func WithStorePing(ping func(context.Context) error) Option {
	return func(a *API) { a.storePing = ping }
}

// WithRequestTimeout bounds datastore/cache work per request so a slow
// dependency degrades to the fallback payload instead of hanging.
func WithRequestTimeout(timeout time.Duration) Option {
	return func(a *API) { a.timeout = timeout }
}

func WithClock(now func() time.Time) Option {
	return func(a *API) { a.now = now }
}

func NewAPI(service *quiz.Service, identity IdentityProvider, store cache.Store, opts ...Option) *API {
	if identity == nil {
		identity = HeaderIdentity{}
	}
	api := &API{
		service:  service,
		identity: identity,
		store:    store,
		timeout:  10 * time.Second,
		now:      func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(api)
	}
	return api
}
