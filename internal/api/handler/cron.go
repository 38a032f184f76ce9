package handler

import (
	"errors"
	"net/http"

	"github.com/vfg2006/sales-analytics-api/internal/scheduler"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

// CronJobTypeReport identifica a geração do relatório agendado
const CronJobTypeReport = "report"

// ReportSyncer é o agendador de relatórios exposto pela API
type ReportSyncer interface {
	TriggerManualSync() error
	GetStatus() map[string]any
}

// RunReportSync executa manualmente a geração do relatório agendado
func RunReportSync(syncer ReportSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		log.ForContext(r.Context()).Info("Execução manual do relatório agendado solicitada")

		if err := syncer.TriggerManualSync(); err != nil {
			if errors.Is(err, scheduler.ErrSyncInProgress) {
				apiErrors.WriteError(w, apiErrors.ErrSyncInProgress, err.Error(), nil)
				return
			}
			apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro ao iniciar relatório agendado", nil)
			return
		}

		writeJSON(w, r, http.StatusAccepted, map[string]any{
			"message": "Cron job iniciada com sucesso",
			"type":    CronJobTypeReport,
		})
	}
}

// GetCronStatus retorna o status das cron jobs
func GetCronStatus(syncer ReportSyncer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, r, http.StatusOK, map[string]any{
			CronJobTypeReport: syncer.GetStatus(),
		})
	}
}
