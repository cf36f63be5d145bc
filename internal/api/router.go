package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/voicescribe/voicescribe/internal/api/handlers"
	"github.com/voicescribe/voicescribe/internal/api/middleware"
	"github.com/voicescribe/voicescribe/internal/app"
	"github.com/voicescribe/voicescribe/internal/limits"
	"github.com/voicescribe/voicescribe/internal/transcription"
)

type Router struct {
	mux *chi.Mux
	app *app.App
}

func NewRouter(a *app.App) *Router {
	return &Router{
		mux: chi.NewRouter(),
		app: a,
	}
}

func (rt *Router) Setup() http.Handler {
	r := rt.mux
	cfg := rt.app.Config()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.Logging)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.CORS(cfg.CORS.Origins))
	r.Use(middleware.Throttle(rt.admitter()))

	svc := transcription.NewService(
		rt.app.Store(),
		rt.app.Engine(),
		rt.app.Augmenter(),
		cfg.Store.MaxFileSize,
		cfg.Store.Retention,
	)

	th := handlers.NewTranscriptionHandler(svc)
	hh := handlers.NewHealthHandler(rt.app)

	r.Post("/transcribe", th.Transcribe)
	r.Post("/process-text", th.ProcessText)
	r.Get("/health", hh.Health)
	r.Get("/config", hh.Config)

	return r
}

// admitter picks the throttling backend: a shared Redis window when
// REDIS_ADDR is configured and reachable, otherwise per-process
// in-memory state.
func (rt *Router) admitter() middleware.Admitter {
	cfg := rt.app.Config()
	rpm := cfg.Limits.RequestsPerMinute

	if cfg.Redis.Addr != "" {
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if err := rdb.Ping(context.Background()).Err(); err != nil {
			slog.Warn("redis unavailable, using in-memory rate limiting", "error", err)
		} else {
			return limits.NewRedisWindow(rdb, rpm, time.Minute)
		}
	}

	return middleware.NewSlidingWindow(rpm, time.Minute)
}
