package middleware

import (
	"net/http"
	"time"

	"github.com/vfg2006/sales-analytics-api/pkg/metrics"
)

// Metrics registra contagem e duração das requisições de uma rota
func Metrics(m *metrics.Metrics, route string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lrw := newLoggingResponseWriter(w)

			next.ServeHTTP(lrw, r)

			m.ObserveHTTPRequest(r.Method, route, lrw.statusCode, time.Since(start))
		})
	}
}
