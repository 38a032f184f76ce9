package handler

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"

	"github.com/vfg2006/sales-analytics-api/infrastructure/exporter"
	"github.com/vfg2006/sales-analytics-api/infrastructure/notifier"
	"github.com/vfg2006/sales-analytics-api/infrastructure/source"
	"github.com/vfg2006/sales-analytics-api/internal/domain"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/analyzing"
	"github.com/vfg2006/sales-analytics-api/internal/usecases/reporting"
	"github.com/vfg2006/sales-analytics-api/pkg/apiErrors"
	"github.com/vfg2006/sales-analytics-api/pkg/log"
)

const uploadFormField = "file"

var validate = validator.New()

type DeliverRequest struct {
	Recipients []string `json:"recipients" validate:"dive,email"`
}

type ReportListResponse struct {
	Reports []*domain.StoredReport `json:"reports"`
	Count   int                    `json:"count"`
}

// upload é o arquivo de vendas recebido na requisição
type upload struct {
	body   io.Reader
	format string
	name   string
}

// CreateReport recebe um arquivo CSV ou XLSX e gera o relatório de análise.
// O arquivo pode vir no corpo da requisição ou em um campo multipart "file".
func CreateReport(service reporting.Reporter, maxUploadBytes int64) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logger := log.ForContext(r.Context())
		r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)

		overrides, err := parseOverrides(r)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, err.Error(), nil)
			return
		}

		file, err := readUpload(r, maxUploadBytes)
		if err != nil {
			writeUploadError(w, err)
			return
		}

		reader, err := source.ForFormat(file.format)
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de arquivo não suportado, use csv ou xlsx", nil)
			return
		}

		rows, err := reader.Read(r.Context(), file.body)
		if err != nil {
			logger.WithError(err).Warn("Arquivo de vendas ilegível")
			writeUploadError(w, err)
			return
		}

		sourceName := r.URL.Query().Get("source")
		if sourceName == "" {
			sourceName = file.name
		}

		stored, err := service.Generate(r.Context(), &reporting.Request{
			SourceName: sourceName,
			Rows:       rows,
			Overrides:  overrides,
		})
		if err != nil {
			writeReportError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusCreated, stored)
	}
}

func ListReports(service reporting.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := 0
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 0 {
				apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "limit deve ser um número inteiro positivo", nil)
				return
			}
			limit = parsed
		}

		reports, err := service.List(r.Context(), limit)
		if err != nil {
			writeReportError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, ReportListResponse{Reports: reports, Count: len(reports)})
	}
}

func GetReport(service reporting.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		stored, err := service.Get(r.Context(), id)
		if err != nil {
			writeReportError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusOK, stored)
	}
}

// ExportReport devolve o relatório como arquivo no formato pedido em ?format=
func ExportReport(service reporting.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		exp, err := exporter.ForFormat(r.URL.Query().Get("format"))
		if err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de exportação não suportado, use json, csv ou xlsx", nil)
			return
		}

		var buf bytes.Buffer
		if err := service.Export(r.Context(), id, exp.Extension(), &buf); err != nil {
			writeReportError(w, r, err)
			return
		}

		w.Header().Set("Content-Type", exp.ContentType())
		w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, exporter.FileName(id, exp)))
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.WriteHeader(http.StatusOK)
		if _, err := buf.WriteTo(w); err != nil {
			log.ForContext(r.Context()).WithError(err).Error("Erro ao enviar arquivo exportado")
		}
	}
}

// DeliverReport envia o resumo do relatório por e-mail
func DeliverReport(service reporting.Reporter) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := httprouter.ParamsFromContext(r.Context()).ByName("id")

		var req DeliverRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
				apiErrors.WriteError(w, apiErrors.ErrInvalidRequest, "Formato de requisição inválido", nil)
				return
			}
		}

		if err := validate.Struct(req); err != nil {
			apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Destinatário com e-mail inválido", err.Error())
			return
		}

		if err := service.Deliver(r.Context(), id, req.Recipients); err != nil {
			writeReportError(w, r, err)
			return
		}

		writeJSON(w, r, http.StatusAccepted, map[string]string{
			"message": "Relatório enviado",
			"id":      id,
		})
	}
}

func parseOverrides(r *http.Request) (reporting.Overrides, error) {
	query := r.URL.Query()
	var overrides reporting.Overrides

	if raw := query.Get("bucket"); raw != "" {
		bucket := domain.Granularity(strings.ToLower(raw))
		overrides.Bucket = &bucket
	}

	floatParams := map[string]**float64{
		"threshold": &overrides.Threshold,
		"tolerance": &overrides.Tolerance,
	}
	for name, target := range floatParams {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return overrides, fmt.Errorf("%s deve ser numérico", name)
		}
		*target = &value
	}

	intParams := map[string]**int{
		"top_n":              &overrides.TopN,
		"projection_periods": &overrides.ProjectionPeriods,
	}
	for name, target := range intParams {
		raw := query.Get(name)
		if raw == "" {
			continue
		}
		value, err := strconv.Atoi(raw)
		if err != nil {
			return overrides, fmt.Errorf("%s deve ser um número inteiro", name)
		}
		*target = &value
	}

	return overrides, nil
}

// readUpload identifica o arquivo enviado e o seu formato
func readUpload(r *http.Request, maxUploadBytes int64) (*upload, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	format := r.URL.Query().Get("format")

	if mediaType == "multipart/form-data" {
		if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
			return nil, err
		}

		file, header, err := r.FormFile(uploadFormField)
		if err != nil {
			return nil, err
		}

		if format == "" {
			format = filepath.Ext(header.Filename)
		}
		return &upload{body: file, format: format, name: header.Filename}, nil
	}

	if format == "" {
		format = mediaType
	}
	return &upload{body: r.Body, format: format}, nil
}

func writeUploadError(w http.ResponseWriter, err error) {
	var maxBytesErr *http.MaxBytesError
	if errors.As(err, &maxBytesErr) {
		apiErrors.WriteError(w, apiErrors.ErrPayloadTooLarge, fmt.Sprintf("Arquivo maior que o limite de %d bytes", maxBytesErr.Limit), nil)
		return
	}

	apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Não foi possível ler o arquivo de vendas", err.Error())
}

// writeReportError converte os erros de análise e de relatório nos códigos da API
func writeReportError(w http.ResponseWriter, r *http.Request, err error) {
	logger := log.ForContext(r.Context()).WithError(err)

	var details any
	var analysisErr *analyzing.AnalysisError
	if errors.As(err, &analysisErr) {
		details = map[string]string{
			"component": analysisErr.Component,
			"details":   analysisErr.Details,
		}
	}

	var sendErr *notifier.SendError

	switch {
	case errors.Is(err, analyzing.ErrConfiguration):
		apiErrors.WriteError(w, apiErrors.ErrAnalysisConfiguration, "Parâmetros de análise inválidos", details)
	case errors.Is(err, analyzing.ErrInsufficientData), errors.Is(err, analyzing.ErrIncompleteAnalysis):
		apiErrors.WriteError(w, apiErrors.ErrInsufficientData, "Dados insuficientes para a análise", details)
	case errors.Is(err, reporting.ErrReportNotFound):
		apiErrors.WriteError(w, apiErrors.ErrReportNotFound, "Relatório não encontrado", nil)
	case errors.Is(err, reporting.ErrReportIDRequired):
		apiErrors.WriteError(w, apiErrors.ErrMissingRequiredData, "ID do relatório não fornecido", nil)
	case errors.Is(err, exporter.ErrUnsupportedFormat):
		apiErrors.WriteError(w, apiErrors.ErrInvalidFormat, "Formato de exportação não suportado", nil)
	case errors.Is(err, notifier.ErrNoRecipients):
		apiErrors.WriteError(w, apiErrors.ErrNoRecipients, "Nenhum destinatário informado ou configurado", nil)
	case errors.As(err, &sendErr):
		logger.Error("Falha no serviço de e-mail")
		apiErrors.WriteError(w, apiErrors.ErrExternalService, "Erro ao enviar e-mail", nil)
	default:
		logger.Error("Erro inesperado ao processar relatório")
		apiErrors.WriteError(w, apiErrors.ErrInternalServer, "Erro interno ao processar relatório", nil)
	}
}
