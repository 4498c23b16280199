package reconcile

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/invoice-reconciler/pkg/models/api"
	"github.com/de-tools/invoice-reconciler/pkg/models/domain"
	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	reconciler "github.com/de-tools/invoice-reconciler/pkg/services/reconcile"
	"github.com/de-tools/invoice-reconciler/pkg/services/workflow"
)

const (
	balancedSubmission = "Month,Invoice,Amount\nAug-2025,INV-1,100\nAug-2025,INV-2,50\n"
	balancedRemittance = "Invoice,Transaction Date,Amount\nINV-1,2025-08-05,100\n"
)

type mockReconciler struct {
	mock.Mock
}

func (m *mockReconciler) Policy(name string) (domain.Policy, error) {
	args := m.Called(name)
	return args.Get(0).(domain.Policy), args.Error(1)
}

func (m *mockReconciler) Reconcile(ctx context.Context, policy domain.Policy, submission, remittance domain.Table) (*domain.Report, error) {
	args := m.Called(ctx, policy, submission, remittance)
	report, _ := args.Get(0).(*domain.Report)
	return report, args.Error(1)
}

func newRouter(rec Reconciler, maxUpload int64) http.Handler {
	h := NewHandler(rec, export.DefaultRegistry(), maxUpload)
	r := chi.NewRouter()
	r.Post("/reconcile", h.Reconcile)
	r.Get("/policies", h.ListPolicies)
	r.Get("/templates/{policy}/{dataset}", h.GetTemplate)
	return r
}

func realRouter() http.Handler {
	runner := workflow.NewRunner(nil, export.DefaultRegistry(), nil, workflow.RunnerConfig{})
	return newRouter(runner, 0)
}

func uploadRequest(t *testing.T, target string, files map[string][2]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	for field, file := range files {
		part, err := mw.CreateFormFile(field, file[0])
		require.NoError(t, err)
		_, err = part.Write([]byte(file[1]))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

func balancedUpload(t *testing.T, target string) *http.Request {
	return uploadRequest(t, target, map[string][2]string{
		"submission": {"submission.csv", balancedSubmission},
		"remittance": {"remittance.csv", balancedRemittance},
	})
}

func TestReconcile_JSON(t *testing.T) {
	rec := httptest.NewRecorder()
	realRouter().ServeHTTP(rec, balancedUpload(t, "/reconcile"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))

	var report api.Report
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &report))
	assert.Equal(t, "BALANCED", report.Policy)
	require.Len(t, report.Rows, 2)
	assert.Equal(t, "INV-2", report.Rows[0].Invoice)
	assert.Equal(t, "NOT_RECEIVED", report.Rows[0].Status)
	assert.Equal(t, "INV-1", report.Rows[1].Invoice)
	assert.Equal(t, "2025-08-05", report.Rows[1].SettlementDate)
	require.NotNil(t, report.Summary)
	assert.Equal(t, 0.5, report.Summary.MatchRate)
}

func TestReconcile_Attachment(t *testing.T) {
	rec := httptest.NewRecorder()
	realRouter().ServeHTTP(rec, balancedUpload(t, "/reconcile?policy=balanced&format=csv"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="Reconciliation_Result.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Invoice,Month,Total_Submitted"))
}

func TestReconcile_XLSXUpload(t *testing.T) {
	// a plain-text body with an .xlsx name is not a workbook
	req := uploadRequest(t, "/reconcile", map[string][2]string{
		"submission": {"submission.xlsx", balancedSubmission},
		"remittance": {"remittance.csv", balancedRemittance},
	})
	rec := httptest.NewRecorder()
	realRouter().ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "failed to read submission file")
}

func TestReconcile_BadRequests(t *testing.T) {
	tests := []struct {
		name    string
		req     func(t *testing.T) *http.Request
		status  int
		wantErr string
	}{
		{
			name:    "unknown policy",
			req:     func(t *testing.T) *http.Request { return balancedUpload(t, "/reconcile?policy=strict") },
			status:  http.StatusBadRequest,
			wantErr: "unknown policy",
		},
		{
			name:    "unknown format",
			req:     func(t *testing.T) *http.Request { return balancedUpload(t, "/reconcile?format=docx") },
			status:  http.StatusBadRequest,
			wantErr: `format \"docx\" is not registered`,
		},
		{
			name: "missing remittance",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/reconcile", map[string][2]string{
					"submission": {"submission.csv", balancedSubmission},
				})
			},
			status:  http.StatusBadRequest,
			wantErr: "missing remittance file",
		},
		{
			name: "unsupported extension",
			req: func(t *testing.T) *http.Request {
				return uploadRequest(t, "/reconcile", map[string][2]string{
					"submission": {"submission.pdf", balancedSubmission},
					"remittance": {"remittance.csv", balancedRemittance},
				})
			},
			status:  http.StatusBadRequest,
			wantErr: "failed to read submission file",
		},
		{
			name: "not multipart",
			req: func(t *testing.T) *http.Request {
				return httptest.NewRequest(http.MethodPost, "/reconcile", strings.NewReader("{}"))
			},
			status:  http.StatusBadRequest,
			wantErr: "invalid upload",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			realRouter().ServeHTTP(rec, tt.req(t))

			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.wantErr)
		})
	}
}

func TestReconcile_MissingColumns(t *testing.T) {
	req := uploadRequest(t, "/reconcile?policy=pending_aware", map[string][2]string{
		"submission": {"submission.csv", balancedSubmission},
		"remittance": {"remittance.csv", balancedRemittance},
	})
	rec := httptest.NewRecorder()
	realRouter().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)

	var body api.Error
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "submission", body.Dataset)
	assert.Equal(t, []string{"Member Id", "Transaction Date"}, body.Missing)
}

func TestReconcile_UnexpectedError(t *testing.T) {
	rec := new(mockReconciler)
	rec.On("Policy", "").Return(domain.PolicyBalanced, nil)
	rec.On("Reconcile", mock.Anything, domain.PolicyBalanced, mock.Anything, mock.Anything).
		Return(nil, &reconciler.UnexpectedError{Err: errors.New("boom")})

	w := httptest.NewRecorder()
	newRouter(rec, 0).ServeHTTP(w, balancedUpload(t, "/reconcile"))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "reconciliation failed: boom")
	rec.AssertExpectations(t)
}

func TestReconcile_UploadTooLarge(t *testing.T) {
	m := new(mockReconciler)
	m.On("Policy", "").Return(domain.PolicyBalanced, nil)

	rec := httptest.NewRecorder()
	newRouter(m, 64).ServeHTTP(rec, balancedUpload(t, "/reconcile"))

	assert.Contains(t, []int{http.StatusBadRequest, http.StatusRequestEntityTooLarge}, rec.Code)
	m.AssertNotCalled(t, "Reconcile", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestListPolicies(t *testing.T) {
	rec := httptest.NewRecorder()
	realRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/policies", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var policies []api.Policy
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &policies))
	require.Len(t, policies, 3)
	assert.Equal(t, "PLAIN", policies[0].Name)
	assert.False(t, policies[0].ComputesStatus)
	assert.Equal(t, []string{"Invoice", "Transaction Date", "Amount"}, policies[1].RemittanceColumns)
	assert.True(t, policies[2].ComputesStatus)
}

func TestGetTemplate(t *testing.T) {
	rec := httptest.NewRecorder()
	realRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/templates/balanced/remittance", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="remittance_template.csv"`, rec.Header().Get("Content-Disposition"))
	assert.True(t, strings.HasPrefix(rec.Body.String(), "Invoice,"))

	rec = httptest.NewRecorder()
	realRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/templates/balanced/ledger", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	realRouter().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/templates/strict/remittance", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
