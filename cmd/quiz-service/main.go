package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"quiz-service/internal/cache"
	"quiz-service/internal/config"
	"quiz-service/internal/httpapi"
	"quiz-service/internal/quiz"
	"quiz-service/internal/quiz/sqlite"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.Println("[STARTUP] quiz-service starting...")

	cfg := config.Load()

	addr := flag.String("addr", cfg.ServerAddress, "HTTP listen address")
	dbPath := flag.String("db", cfg.DBPath, "sqlite database path")
	flag.Parse()

	store, err := sqlite.NewStore(*dbPath)
	if err != nil {
		log.Fatalf("[FATAL] failed to open database %s: %v", *dbPath, err)
	}
	defer store.Close()
	log.Printf("[STARTUP] database ready at %s", *dbPath)

	var selectionCache cache.Store
	if cfg.RedisAddr != "" {
		redisCache, err := cache.NewRedis(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err != nil {
			log.Fatalf("[FATAL] failed to connect to redis %s: %v", cfg.RedisAddr, err)
		}
		defer redisCache.Close()
		selectionCache = redisCache
		log.Printf("[STARTUP] using redis cache at %s", cfg.RedisAddr)
	} else {
		selectionCache = cache.NewMemory()
		log.Println("[STARTUP] using in-process cache")
	}

	service := quiz.NewService(store, store, store, selectionCache, quiz.WithSelectionTTL(cfg.SelectionTTL))

	router := httpapi.NewRouter(
		service,
		httpapi.HeaderIdentity{},
		selectionCache,
		httpapi.RouterConfig{
			RateLimit:  cfg.RateLimit,
			RateWindow: cfg.RateWindow,
		},
		httpapi.WithRequestTimeout(cfg.RequestTimeout),
		httpapi.WithStorePing(store.Ping),
	)

	server := &http.Server{
		Addr:              *addr,
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-shutdown
		log.Println("[SHUTDOWN] signal received, draining connections...")
		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(ctx); err != nil {
			log.Printf("[ERROR] shutdown: %v", err)
		}
	}()

	log.Printf("[STARTUP] listening on %s", *addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatalf("[FATAL] server failed: %v", err)
	}
	log.Println("[SHUTDOWN] server stopped")
}
