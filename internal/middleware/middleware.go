package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
)

// SlowLookupThreshold defines when a gazetteer request is considered
// slow. Every handler in this service resolves against an in-memory
// map (plus, optionally, a single Redis round trip), so anything past
// a few milliseconds points at GC pressure or cache latency rather than
// query complexity — there is no database query plan to blame.
const SlowLookupThreshold = 20 * time.Millisecond

func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		duration := time.Since(start)
		requestID := GetRequestID(r.Context())

		if duration > SlowLookupThreshold {
			slog.Warn("slow gazetteer lookup",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", ww.Status(),
				"duration", duration,
				"remote_addr", r.RemoteAddr,
			)
		} else {
			slog.Info("gazetteer lookup",
				"request_id", requestID,
				"method", r.Method,
				"path", r.URL.Path,
				"status", ww.Status(),
				"duration", duration,
				"remote_addr", r.RemoteAddr,
			)
		}
	})
}

// Recoverer recovers from panics and returns a 500 error
func Recoverer(next http.Handler) http.Handler {
	return middleware.Recoverer(next)
}

// RealIP sets the RemoteAddr to the real client IP
func RealIP(next http.Handler) http.Handler {
	return middleware.RealIP(next)
}

// Timeout sets a timeout for requests
func Timeout(timeout time.Duration) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ContentType sets the Content-Type header
func ContentType(contentType string) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", contentType)
			next.ServeHTTP(w, r)
		})
	}
}

// SecurityHeaders adds security-related headers
func SecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Strict-Transport-Security", "max-age=31536000; includeSubDomains")
		next.ServeHTTP(w, r)
	})
}

// LogFailedLookups logs the query string behind a failed gazetteer
// lookup (4xx, 5xx). Every route here is a GET with parameters on the
// query string rather than a request body, so there is no body to
// buffer and replay the way a write-heavy API would need to.
func LogFailedLookups(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		status := ww.Status()
		if status >= 400 {
			slog.Error("failed gazetteer lookup",
				"request_id", GetRequestID(r.Context()),
				"method", r.Method,
				"path", r.URL.Path,
				"query", r.URL.RawQuery,
				"status", status,
			)
		}
	})
}
