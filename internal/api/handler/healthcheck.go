package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const healthcheckTimeout = 2 * time.Second

// Pinger verifica a disponibilidade de uma dependência
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthcheckHandler responde o estado da aplicação. Com database nil o banco é reportado como desabilitado.
func HealthcheckHandler(database Pinger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		status := http.StatusOK
		body := map[string]any{
			"status":   "ok",
			"time":     time.Now().UTC().Format(time.RFC3339),
			"database": "disabled",
		}

		if database != nil {
			ctx, cancel := context.WithTimeout(r.Context(), healthcheckTimeout)
			defer cancel()

			body["database"] = "ok"
			if err := database.Ping(ctx); err != nil {
				log.ForContext(r.Context()).WithError(err).Warn("Banco de dados indisponível no healthcheck")
				status = http.StatusServiceUnavailable
				body["status"] = "degraded"
				body["database"] = "unavailable"
			}
		}

		writeJSON(w, r, status, body)
	})
}
