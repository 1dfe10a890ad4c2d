package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hrm-core/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/jwt"
	"github.com/cmlabs-hris/hrm-core/internal/pkg/sse"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// RouterConfig carries everything the HTTP surface is built from.
type RouterConfig struct {
	Logger         *slog.Logger
	LogLevel       slog.Level
	AllowedOrigins []string

	JWTService          jwt.Service
	LeaveHandler        LeaveHandler
	AttendanceHandler   AttendanceHandler
	NotificationHandler NotificationHandler

	Store Pinger
	Hub   *sse.Hub
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  cfg.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)

	r.Get("/health", Health(cfg.Store, cfg.Hub))

	r.Route("/api/v1", func(r chi.Router) {
		// EventSource cannot send an Authorization header; the stream
		// authenticates with a short-lived token instead.
		r.Get("/notifications/stream", cfg.NotificationHandler.Stream)

		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(cfg.JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired)

			r.Route("/leave", func(r chi.Router) {
				r.Route("/requests", func(r chi.Router) {
					r.Post("/", cfg.LeaveHandler.CreateRequest)
					r.Get("/my", cfg.LeaveHandler.GetMyRequests)
					r.Get("/pending", cfg.LeaveHandler.ListPending)
					r.Get("/{id}", cfg.LeaveHandler.GetRequest)
					r.Post("/{id}/action", cfg.LeaveHandler.ActOnRequest)
				})
				r.Get("/balances/my", cfg.LeaveHandler.GetMyBalances)
			})

			r.Route("/attendance", func(r chi.Router) {
				r.Post("/clock-in", cfg.AttendanceHandler.ClockIn)
				r.Post("/clock-out", cfg.AttendanceHandler.ClockOut)
				r.Get("/my", cfg.AttendanceHandler.GetMyAttendance)
			})

			r.Post("/notifications/stream-token", cfg.NotificationHandler.GetSSEToken)
		})
	})

	return otelhttp.NewHandler(r, "hrm-core",
		otelhttp.WithSpanNameFormatter(func(_ string, req *http.Request) string {
			return "HTTP " + req.Method
		}),
	)
}

// NewLogger builds the JSON slog logger in ECS field names, shared by the
// request logger and the rest of the process.
func NewLogger(level slog.Level, env string) *slog.Logger {
	logFormat := httplog.SchemaECS.Concise(false)
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hrm-core"),
		slog.String("env", env),
	)
}
