package api

import (
	"context"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/Freeeeeet/appointment_service/internal/metrics"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"
)

// RouterConfig внешние зависимости маршрутизатора
type RouterConfig struct {
	CORSOrigins []string
	Metrics     *metrics.Metrics
	// Health проверка готовности для /healthz, обычно ping базы
	Health func(ctx context.Context) error
}

// NewRouter собирает маршруты, журнал запросов, метрики, CORS и восстановление после паники
func NewRouter(h *Handler, cfg RouterConfig, logger *zap.Logger) http.Handler {
	router := mux.NewRouter()
	router.Use(accessLog(cfg.Metrics, logger))

	subrouter := router.PathPrefix("/api/v1").Subrouter()
	h.RegisterRoutes(subrouter)

	router.HandleFunc("/healthz", healthz(cfg.Health)).Methods("GET")
	if cfg.Metrics != nil {
		router.Handle("/metrics", cfg.Metrics.Handler()).Methods("GET")
	}

	origins := cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cors := handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "PATCH", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)
	recovery := handlers.RecoveryHandler(
		handlers.RecoveryLogger(zap.NewStdLog(logger)),
		handlers.PrintRecoveryStack(true),
	)

	return recovery(cors(router))
}

// accessLog пишет каждый обработанный запрос в лог и в гистограмму латентности
func accessLog(m *metrics.Metrics, logger *zap.Logger) mux.MiddlewareFunc {
	formatter := func(_ io.Writer, params handlers.LogFormatterParams) {
		route := params.URL.Path
		if current := mux.CurrentRoute(params.Request); current != nil {
			if tpl, err := current.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(params.TimeStamp)

		m.ObserveHTTP(params.Request.Method, route, strconv.Itoa(params.StatusCode), elapsed.Seconds())
		logger.Info("HTTP request",
			zap.String("method", params.Request.Method),
			zap.String("path", params.URL.Path),
			zap.String("route", route),
			zap.Int("status", params.StatusCode),
			zap.Int("size", params.Size),
			zap.Duration("duration", elapsed),
		)
	}

	return func(next http.Handler) http.Handler {
		return handlers.CustomLoggingHandler(io.Discard, next, formatter)
	}
}

func healthz(check func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		if check != nil {
			ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
			defer cancel()
			if err := check(ctx); err != nil {
				w.WriteHeader(http.StatusServiceUnavailable)
				_, _ = io.WriteString(w, "unavailable\n")
				return
			}
		}
		_, _ = io.WriteString(w, "ok\n")
	}
}
