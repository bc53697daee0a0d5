package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hwmonitor/internal/config"
)

type RouterDeps struct {
	Sensors *SensorHandler
	Static  *StaticHandler
	Live    http.HandlerFunc
}

func NewRouter(cfg *config.Config, deps *RouterDeps) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(CORS(cfg.AllowedOrigins))

	r.Get("/data.json", deps.Sensors.Data)
	r.Get("/health", deps.Sensors.Health)
	r.Get("/", deps.Static.Index)

	if deps.Live != nil {
		r.Get("/ws", deps.Live)
	}

	if cfg.ServeStatic {
		r.Get("/*", deps.Static.File)
	}

	return r
}

// CORS allows every origin when origins contains "*", otherwise echoes
// back only listed origins. Preflight requests end here.
func CORS(origins []string) func(http.Handler) http.Handler {
	allowAll := false
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		if o == "*" {
			allowAll = true
		}
		allowed[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if allowAll {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else if origin := r.Header.Get("Origin"); allowed[origin] {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Add("Vary", "Origin")
			}
			w.Header().Set("Access-Control-Allow-Methods", "GET, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
