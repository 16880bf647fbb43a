package router

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/felixge/httpsnoop"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"qa-metrics/internal/config"
	"qa-metrics/internal/domain"
	"qa-metrics/internal/endpoints"
	"qa-metrics/internal/ingest"
	"qa-metrics/internal/telemetry"
	"qa-metrics/internal/util"
)

type Dependencies struct {
	Events  domain.EventStore
	Gateway *ingest.Gateway
	QA      domain.QAStore
	Metrics *telemetry.Metrics
	Logger  *util.ServiceLogger
	Region  string
	// MaxBodyBytes caps request bodies; 0 disables the limit.
	MaxBodyBytes int64
}

// NewRouter wires every endpoint. Cross-origin requests are allowed from any
// origin.
func NewRouter(deps Dependencies) http.Handler {
	r := mux.NewRouter()

	addRoutes(r, deps)

	r.Use(loggingMiddleware(deps.Logger, deps.Metrics))
	r.Use(recoveryMiddleware(deps.Logger))
	if deps.MaxBodyBytes > 0 {
		r.Use(bodyLimitMiddleware(deps.MaxBodyBytes))
	}

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions}),
		handlers.AllowedHeaders([]string{"Content-Type"}),
	)
	return cors(r)
}

func addRoutes(r *mux.Router, deps Dependencies) {

	metricsHandler := &endpoints.Metrics{}
	metricsHandler.Init(deps.Events, deps.Gateway, deps.Logger)

	r.HandleFunc("/log", metricsHandler.LogHandler).Methods("POST")
	r.HandleFunc("/logs", metricsHandler.LogBatchHandler).Methods("POST")
	r.HandleFunc("/logs", metricsHandler.GetLogsHandler).Methods("GET")
	r.HandleFunc("/logs", metricsHandler.ClearLogsHandler).Methods("DELETE")
	r.HandleFunc("/logs/summary", metricsHandler.SummaryHandler).Methods("GET")
	r.HandleFunc("/metrics/success-rate", metricsHandler.SuccessRateHandler).Methods("GET")
	r.HandleFunc("/metrics/latency", metricsHandler.LatencyHandler).Methods("GET")
	r.HandleFunc("/metrics/error-codes", metricsHandler.ErrorCodesHandler).Methods("GET")
	r.HandleFunc("/metrics/client-region-distribution", metricsHandler.ClientRegionHandler).Methods("GET")
	r.HandleFunc("/metrics/success-rate-by-hour", metricsHandler.SuccessRateByHourHandler).Methods("GET")

	questionsHandler := &endpoints.Questions{}
	questionsHandler.Init(deps.QA, deps.Logger)

	r.HandleFunc("/questions", questionsHandler.CreateQuestionHandler).Methods("POST")
	r.HandleFunc("/questions", questionsHandler.ListQuestionsHandler).Methods("GET")
	r.HandleFunc("/questions/{id}", questionsHandler.GetQuestionHandler).Methods("GET")
	r.HandleFunc("/questions/{id}/answers", questionsHandler.CreateAnswerHandler).Methods("POST")
	r.HandleFunc("/answers", questionsHandler.ListAnswersHandler).Methods("GET")

	healthHandler := &endpoints.Health{}
	healthHandler.Init(deps.Region)

	r.HandleFunc("/health", healthHandler.HealthHandler).Methods("GET")
}

func NewServer(addr string, handler http.Handler, cfg config.HTTPConfig) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}
}

// Run serves the API, and the Prometheus listener when enabled, until SIGINT
// or SIGTERM.
func Run(cfg *config.Config, deps Dependencies) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	servers := []*http.Server{
		NewServer(cfg.HTTP.Addr(), NewRouter(deps), cfg.HTTP),
	}
	if cfg.Metrics.Enabled && deps.Metrics != nil {
		metricsMux := http.NewServeMux()
		metricsMux.Handle("/metrics", deps.Metrics.Handler())
		servers = append(servers, NewServer(cfg.Metrics.Addr, metricsMux, cfg.HTTP))
	}

	errCh := make(chan error, len(servers))
	for _, server := range servers {
		go func(server *http.Server) {
			deps.Logger.Info("Listening", zap.String("addr", server.Addr))
			if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- fmt.Errorf("listen on %s: %w", server.Addr, err)
			}
		}(server)
	}

	var runErr error
	select {
	case <-ctx.Done():
		deps.Logger.Info("Shutting down server...")
	case runErr = <-errCh:
		deps.Logger.Error("Server failed", zap.Error(runErr))
	}

	for _, server := range servers {
		if err := gracefulShutdown(server, cfg.HTTP.ShutdownTimeout); err != nil {
			deps.Logger.Error("Server stopped with error", zap.String("addr", server.Addr), zap.Error(err))
			continue
		}
		deps.Logger.Info("Server stopped gracefully.", zap.String("addr", server.Addr))
	}
	return runErr
}

func gracefulShutdown(server *http.Server, maximumTime time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), maximumTime)
	defer cancel()

	return server.Shutdown(ctx)
}

func loggingMiddleware(logger *util.ServiceLogger, metrics *telemetry.Metrics) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			m := httpsnoop.CaptureMetrics(next, w, r)

			route := r.URL.Path
			if current := mux.CurrentRoute(r); current != nil {
				if tpl, err := current.GetPathTemplate(); err == nil {
					route = tpl
				}
			}

			logger.Info("Request",
				zap.String("method", r.Method),
				zap.String("uri", r.RequestURI),
				zap.Int("status", m.Code),
				zap.Duration("duration", m.Duration),
			)
			metrics.ObserveRequest(route, r.Method, m.Code, m.Duration)
		})
	}
}

// recoveryMiddleware turns a handler panic into a 500 JSON error.
func recoveryMiddleware(logger *util.ServiceLogger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}
					logger.Error("Recovered from handler panic",
						zap.String("uri", r.RequestURI),
						zap.Any("panic", rec),
					)
					endpoints.APIResponse{}.WriteErrorResponse(w, fmt.Errorf("internal server error: %v", rec))
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

func bodyLimitMiddleware(limit int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
