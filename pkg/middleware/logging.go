package middleware

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"runtime"
	"time"

	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

// CorrelationIDHeader propaga o ID de correlação entre cliente e servidor
const CorrelationIDHeader = "X-Correlation-ID"

// Uploads grandes de planilha demoram mais, o limite vale para o restante das rotas
const slowRequestThreshold = 2 * time.Second

// LoggingMiddleware registra o início e o fim de cada requisição HTTP
func LoggingMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, correlationID := correlationContext(r)
			r = r.WithContext(ctx)
			w.Header().Set(CorrelationIDHeader, correlationID)

			lrw := newLoggingResponseWriter(w)
			start := time.Now()
			dev := log.IsDevelopment()

			fields := log.Fields{
				"method": r.Method,
				"path":   r.URL.Path,
			}
			if !dev {
				fields["correlation_id"] = correlationID
				fields["remote_addr"] = r.RemoteAddr
				fields["query"] = r.URL.RawQuery
				fields["user_agent"] = r.UserAgent()
				fields["content_type"] = r.Header.Get("Content-Type")
				fields["upload_bytes"] = r.ContentLength
			}
			log.L.WithFields(fields).Debug("Requisição iniciada")

			next.ServeHTTP(lrw, r)

			elapsed := time.Since(start)
			fields["status_code"] = lrw.statusCode
			fields["response_bytes"] = lrw.bytes
			if !dev {
				fields["duration_ms"] = elapsed.Milliseconds()
			}
			logger := log.L.WithFields(fields)

			message := "Requisição finalizada"
			if dev {
				message = fmt.Sprintf("%s %s em %s", statusSymbol(lrw.statusCode), message, formatDuration(elapsed))
			}

			switch {
			case lrw.statusCode >= http.StatusInternalServerError:
				logger.Error(message)
			case lrw.statusCode >= http.StatusBadRequest:
				logger.Warn(message)
			default:
				logger.Info(message)
			}

			if elapsed > slowRequestThreshold {
				logger.Warnf("Requisição lenta: %s", formatDuration(elapsed))
			}
		})
	}
}

// correlationContext reaproveita o ID enviado pelo cliente ou gera um novo
func correlationContext(r *http.Request) (context.Context, string) {
	if id := r.Header.Get(CorrelationIDHeader); id != "" {
		return log.ContextWithCorrelationID(r.Context(), id), id
	}
	return log.WithCorrelationID(r.Context())
}

func statusSymbol(status int) string {
	if status >= http.StatusBadRequest {
		return "✗"
	}
	return "✓"
}

// formatDuration formata a duração de forma legível
func formatDuration(d time.Duration) string {
	switch {
	case d < time.Millisecond:
		return fmt.Sprintf("%d µs", d.Microseconds())
	case d < time.Second:
		return fmt.Sprintf("%d ms", d.Milliseconds())
	default:
		return fmt.Sprintf("%.2f s", d.Seconds())
	}
}

// loggingResponseWriter captura o status e o tamanho da resposta
type loggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func newLoggingResponseWriter(w http.ResponseWriter) *loggingResponseWriter {
	return &loggingResponseWriter{ResponseWriter: w, statusCode: http.StatusOK}
}

func (lrw *loggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

func (lrw *loggingResponseWriter) Write(b []byte) (int, error) {
	n, err := lrw.ResponseWriter.Write(b)
	lrw.bytes += n
	return n, err
}

// LogPanicMiddleware recupera panics dos handlers e responde SRV_001
func LogPanicMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				recovered := recover()
				if recovered == nil {
					return
				}

				stack := make([]byte, 4096)
				stack = stack[:runtime.Stack(stack, false)]

				logger := log.ForContext(r.Context()).WithFields(log.Fields{
					"panic_error": recovered,
					"method":      r.Method,
					"path":        r.URL.Path,
				})

				if log.IsDevelopment() {
					logger.Error("❌ PANIC na aplicação")
					fmt.Fprintf(os.Stderr, "\n\n=== STACK TRACE ===\n%s\n=================\n\n", stack)
				} else {
					logger.WithField("stack_trace", string(stack)).Error("Erro não tratado na aplicação")
				}

				apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno no servidor", nil)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
