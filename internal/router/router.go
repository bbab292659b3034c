package router

import (
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/collectionpoint"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/health"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/report"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/review"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

const RequestIDHeader = "X-Request-ID"

var (
	httpRequestTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status_code"},
	)
	httpRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of http request",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status_code"},
	)
)

// loggingResponseWriter wraps http.ResponseWriter to capture status and size.
type loggingResponseWriter struct {
	http.ResponseWriter
	status int
	size   int
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.status = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	if lrw.status == 0 {
		lrw.status = http.StatusOK
	}
	n, err := lrw.ResponseWriter.Write(b)
	lrw.size += n
	return n, err
}

func (lrw *loggingResponseWriter) statusCode() int {
	if lrw.status == 0 {
		return http.StatusOK
	}
	return lrw.status
}

// RequestIDMiddleware tags each request with a ksuid unless the caller
// already sent one, and echoes it in the response.
func RequestIDMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get(RequestIDHeader)
			if id == "" {
				id = utilities.NewKSUID()
				r.Header.Set(RequestIDHeader, id)
			}
			w.Header().Set(RequestIDHeader, id)
			next.ServeHTTP(w, r)
		})
	}
}

// LoggingMiddleware returns a middleware that logs requests at debug level using the provided sugared logger.
func LoggingMiddleware(logger *zap.SugaredLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			dur := time.Since(start)
			logger.Debugw("http request",
				"request_id", r.Header.Get(RequestIDHeader),
				"method", r.Method,
				"path", r.URL.Path,
				"remote", r.RemoteAddr,
				"status", lrw.statusCode(),
				"duration_ms", float64(dur.Microseconds())/1000.0,
				"size", lrw.size,
			)
		})
	}
}

// MetricsMiddleware records request counts and latencies. It must wrap the
// mux directly so the matched route pattern is visible after dispatch.
func MetricsMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := &loggingResponseWriter{ResponseWriter: w}
			next.ServeHTTP(lrw, r)
			path := r.Pattern
			if path == "" {
				path = "unmatched"
			}
			status := strconv.Itoa(lrw.statusCode())
			httpRequestTotal.WithLabelValues(r.Method, path, status).Inc()
			httpRequestDuration.WithLabelValues(r.Method, path, status).Observe(time.Since(start).Seconds())
		})
	}
}

// SecurityHeadersMiddleware returns a middleware that sets common HTTP security headers.
func SecurityHeadersMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Content-Type-Options", "nosniff")
			w.Header().Set("X-Frame-Options", "DENY")
			w.Header().Set("Referrer-Policy", "no-referrer-when-downgrade")
			// the map view needs geolocation from our own origin
			w.Header().Set("Permissions-Policy", "camera=(), microphone=(), geolocation=(self)")
			if w.Header().Get("Content-Security-Policy") == "" {
				w.Header().Set("Content-Security-Policy", "default-src 'self'; object-src 'none'; base-uri 'self';")
			}
			// HSTS only over TLS; 30 days
			if r.TLS != nil {
				w.Header().Set("Strict-Transport-Security", "max-age=2592000; includeSubDomains")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RegisterRoutes mounts every API handler on an http.ServeMux and wraps it
// with the middleware chain.
func RegisterRoutes(logger *zap.SugaredLogger, db *sqlx.DB, sessions *session.Service) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/health", health.NewHandler(db, logger).Check)
	mux.Handle("GET /metrics", promhttp.Handler())

	users := user.NewHandler(user.NewUserService(db, nil), sessions, logger)
	users.SecureCookie, _ = strconv.ParseBool(os.Getenv("COOKIE_SECURE"))
	mux.HandleFunc("POST /api/auth/signup", users.Signup)
	mux.HandleFunc("POST /api/auth/login", users.Login)
	mux.HandleFunc("POST /api/auth/refresh", users.Refresh)
	mux.HandleFunc("POST /api/auth/logout", users.Logout)
	mux.HandleFunc("GET /api/users/me", users.Me)

	wasteTypes := wastetype.NewHandler(wastetype.NewService(db), logger)
	mux.HandleFunc("GET /api/waste-types", wasteTypes.List)
	mux.HandleFunc("GET /api/waste-types/{id}", wasteTypes.Get)
	mux.HandleFunc("POST /api/waste-types", wasteTypes.Create)
	mux.HandleFunc("DELETE /api/waste-types/{id}", wasteTypes.Delete)

	points := collectionpoint.NewHandler(collectionpoint.NewService(db), logger)
	mux.HandleFunc("GET /api/collection-points", points.List)
	mux.HandleFunc("GET /api/collection-points/{id}", points.Get)
	mux.HandleFunc("POST /api/collection-points", points.Create)
	mux.HandleFunc("PUT /api/collection-points/{id}", points.Update)
	mux.HandleFunc("DELETE /api/collection-points/{id}", points.Delete)

	reviews := review.NewHandler(review.NewService(db), logger)
	mux.HandleFunc("GET /api/reviews", reviews.List)
	mux.HandleFunc("POST /api/reviews", reviews.Create)
	mux.HandleFunc("DELETE /api/reviews/{id}", reviews.Delete)

	reports := report.NewHandler(report.NewService(db), logger)
	mux.HandleFunc("GET /api/reports", reports.List)
	mux.HandleFunc("POST /api/reports", reports.Create)
	mux.HandleFunc("PATCH /api/reports/{id}/status", reports.UpdateStatus)

	var handler http.Handler = MetricsMiddleware()(mux)
	handler = session.Middleware(sessions, logger)(handler)
	handler = SecurityHeadersMiddleware()(handler)
	handler = LoggingMiddleware(logger)(handler)
	return RequestIDMiddleware()(handler)
}
