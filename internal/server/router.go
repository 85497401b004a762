package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/users-api/internal/config"
	"github.com/vasiliy-maslov/users-api/internal/docs"
	userHttp "github.com/vasiliy-maslov/users-api/internal/handler/http"
)

const healthTimeout = 2 * time.Second

// Pinger reports database reachability for /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type RouteRegistrar interface {
	RegisterRoutes(router chi.Router)
}

type Deps struct {
	HTTP  config.HTTPConfig
	DB    Pinger
	Users RouteRegistrar
}

func NewRouter(deps Deps) (*chi.Mux, error) {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(userHttp.RequestLogger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: deps.HTTP.CORSOrigins(),
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders: []string{middleware.RequestIDHeader},
		MaxAge:         300,
	}))

	if err := registerSystemRoutes(router, deps); err != nil {
		return nil, err
	}

	deps.Users.RegisterRoutes(router)

	return router, nil
}

// registerSystemRoutes mounts the endpoints that sit outside the users resource.
func registerSystemRoutes(router chi.Router, deps Deps) error {
	router.Get("/test", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("Hello World"))
	})

	router.Get("/health", healthHandler(deps.DB))

	if deps.HTTP.DocsEnabled {
		document, err := docs.DocumentHandler(docs.NewDocument())
		if err != nil {
			return err
		}
		router.Get("/docs", docs.UIHandler)
		router.Get(docs.DocumentPath, document)
	}

	if deps.HTTP.StaticDir != "" {
		fs := http.StripPrefix("/static/", http.FileServer(http.Dir(deps.HTTP.StaticDir)))
		router.Handle("/static/*", fs)
	}

	return nil
}

func healthHandler(db Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthTimeout)
		defer cancel()

		if err := db.Ping(ctx); err != nil {
			log.Warn().Err(err).Msg("Health check failed")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":"database unavailable"}`))
			return
		}

		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("OK"))
	}
}
