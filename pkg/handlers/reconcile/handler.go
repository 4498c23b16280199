package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"

	"github.com/de-tools/invoice-reconciler/pkg/adapters"
	"github.com/de-tools/invoice-reconciler/pkg/models/api"
	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	reconciler "github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
	"github.com/de-tools/invoice-reconciler/pkg/store/tabular"
)

const DefaultMaxUploadBytes = 32 << 20

type Reconciler interface {
	Policy(name string) (domain.Policy, error)
	Reconcile(ctx context.Context, policy domain.Policy, submission, remittance domain.Table) (*domain.Report, error)
}

type Handler struct {
	reconciler     Reconciler
	sinks          export.Registry
	maxUploadBytes int64
}

func NewHandler(rec Reconciler, sinks export.Registry, maxUploadBytes int64) *Handler {
	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}
	return &Handler{
		reconciler:     rec,
		sinks:          sinks,
		maxUploadBytes: maxUploadBytes,
	}
}

// Reconcile accepts a multipart form with "submission" and "remittance"
// files. Without a format query parameter the report is returned as JSON,
// otherwise as an attachment rendered by the matching sink.
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := zerolog.Ctx(ctx)

	policy, err := h.reconciler.Policy(r.URL.Query().Get("policy"))
	if err != nil {
		writeError(w, r, http.StatusBadRequest, api.Error{Error: err.Error()})
		return
	}

	var sink export.Sink
	if format := r.URL.Query().Get("format"); format != "" {
		if sink, err = h.sinks.Create(format); err != nil {
			writeError(w, r, http.StatusBadRequest, api.Error{Error: err.Error()})
			return
		}
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes)
	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		status := http.StatusBadRequest
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			status = http.StatusRequestEntityTooLarge
		}
		writeError(w, r, status, api.Error{Error: fmt.Sprintf("invalid upload: %v", err)})
		return
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	submission, err := readUpload(r, reconciler.DatasetSubmission)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, api.Error{Error: err.Error(), Dataset: reconciler.DatasetSubmission})
		return
	}
	remittance, err := readUpload(r, reconciler.DatasetRemittance)
	if err != nil {
		writeError(w, r, http.StatusBadRequest, api.Error{Error: err.Error(), Dataset: reconciler.DatasetRemittance})
		return
	}

	report, err := h.reconciler.Reconcile(ctx, policy, submission, remittance)
	if err != nil {
		var schemaErr *reconciler.SchemaError
		if errors.As(err, &schemaErr) {
			writeError(w, r, http.StatusBadRequest, api.Error{
				Error:   schemaErr.Error(),
				Dataset: schemaErr.Dataset,
				Missing: schemaErr.Missing,
			})
			return
		}
		logger.Error().Err(err).Str("policy", string(policy)).Msg("reconciliation failed")
		writeError(w, r, http.StatusInternalServerError, api.Error{Error: err.Error()})
		return
	}

	if sink == nil || sink.Format() == export.FormatJSON {
		writeJSON(w, r, http.StatusOK, adapters.MapReportDomainToApi(report))
		return
	}

	var buf bytes.Buffer
	if err := sink.Write(ctx, &buf, report); err != nil {
		logger.Error().Err(err).Str("format", sink.Format()).Msg("failed to render report")
		writeError(w, r, http.StatusInternalServerError, api.Error{Error: "failed to render report"})
		return
	}
	w.Header().Set("Content-Type", sink.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.ResultBaseName+sink.Extension()))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(buf.Bytes()); err != nil {
		logger.Error().Err(err).Msg("failed to write report")
	}
}

func (h *Handler) ListPolicies(w http.ResponseWriter, r *http.Request) {
	var response []api.Policy
	for _, policy := range reconciler.Policies() {
		spec, err := reconciler.Lookup(policy, reconciler.DayFirst)
		if err != nil {
			writeError(w, r, http.StatusInternalServerError, api.Error{Error: err.Error()})
			return
		}
		response = append(response, adapters.MapPolicySpecToApi(spec))
	}
	writeJSON(w, r, http.StatusOK, response)
}

// GetTemplate serves the example CSV for one dataset of a policy.
func (h *Handler) GetTemplate(w http.ResponseWriter, r *http.Request) {
	logger := zerolog.Ctx(r.Context())

	policy, err := reconciler.ParsePolicy(chi.URLParam(r, "policy"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, api.Error{Error: err.Error()})
		return
	}
	tmpl, err := reconciler.TemplateFor(policy, chi.URLParam(r, "dataset"))
	if err != nil {
		writeError(w, r, http.StatusNotFound, api.Error{Error: err.Error()})
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", tmpl.FileName))
	if err := tabular.WriteCSV(w, tmpl.Header, tmpl.Rows); err != nil {
		logger.Error().Err(err).Msg("failed to write template")
	}
}

func readUpload(r *http.Request, field string) (domain.Table, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return domain.Table{}, fmt.Errorf("missing %s file", field)
		}
		return domain.Table{}, fmt.Errorf("failed to read %s file: %w", field, err)
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	table, err := tabular.Read(header.Filename, file)
	if err != nil {
		return domain.Table{}, fmt.Errorf("failed to read %s file: %w", field, err)
	}
	return table, nil
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to encode response")
	}
}

func writeError(w http.ResponseWriter, r *http.Request, status int, body api.Error) {
	writeJSON(w, r, status, body)
}
