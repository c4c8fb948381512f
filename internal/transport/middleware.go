package transport

import (
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
)

// observe logs each request and records it in the metrics, labelled by
// the matched route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		elapsed := time.Since(start)
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		route := "unmatched"
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if pattern := rctx.RoutePattern(); pattern != "" {
				route = pattern
			}
		}
		s.metrics.observeRequest(r.Method, route, status, elapsed)

		level := slog.LevelDebug
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		if !s.logger.Enabled(r.Context(), level) {
			return
		}
		s.logger.Log(r.Context(), level, "http request",
			"method", r.Method,
			"route", route,
			"path", r.URL.Path,
			"status", status,
			"bytes", ww.BytesWritten(),
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()),
			"remote", clientIP(r),
		)
	})
}

// globalLimits applies the per-address hourly and daily ceilings. A zero
// limit disables that window.
func globalLimits(hourly, daily int) []func(http.Handler) http.Handler {
	onLimit := httprate.WithLimitHandler(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusTooManyRequests, "Rate limit exceeded")
	})
	keys := httprate.WithKeyFuncs(httprate.KeyByIP)

	var mws []func(http.Handler) http.Handler
	if hourly > 0 {
		mws = append(mws, httprate.Limit(hourly, time.Hour, keys, onLimit))
	}
	if daily > 0 {
		mws = append(mws, httprate.Limit(daily, 24*time.Hour, keys, onLimit))
	}
	return mws
}

// clientIP returns the request's remote address without the port. RealIP
// has already rewritten RemoteAddr when proxy headers are trusted.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
