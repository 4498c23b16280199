package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/de-tools/invoice-reconciler/pkg/models/api"
	"github.com/de-tools/invoice-reconciler/pkg/observability/metrics"
	"github.com/de-tools/invoice-reconciler/pkg/runtime/terminal/export"
	"github.com/de-tools/invoice-reconciler/pkg/services/workflow"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	logger := zerolog.New(zerolog.NewTestWriter(t))

	reg := prometheus.NewRegistry()
	m, err := metrics.New(reg)
	require.NoError(t, err)

	sinks := export.DefaultRegistry()
	config := Config{
		Addr:            ":8080",
		ShutdownTimeout: time.Second,
		Dependencies: Dependencies{
			Reconciler: workflow.NewRunner(nil, sinks, m, workflow.RunnerConfig{}),
			Sinks:      sinks,
			Gatherer:   reg,
		},
	}

	testServer := httptest.NewServer(ConfigureRouter(logger, config))
	t.Cleanup(testServer.Close)
	return testServer
}

func unmarshalResponse[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(body, &v))
	return v
}

func postReconcile(t *testing.T, url string) *http.Response {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	files := map[string]string{
		"submission": "Month,Invoice,Amount\nAug-2025,INV-1,100\n",
		"remittance": "Invoice,Transaction Date,Amount\nINV-1,2025-08-05,90\n",
	}
	for field, content := range files {
		part, err := mw.CreateFormFile(field, field+".csv")
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())

	resp, err := http.Post(url, mw.FormDataContentType(), &body)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestWebAPI_Endpoints(t *testing.T) {
	testServer := newTestServer(t)

	t.Run("Healthz", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/healthz")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("ListPolicies", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/policies")
		require.NoError(t, err)
		defer resp.Body.Close()

		require.Equal(t, http.StatusOK, resp.StatusCode)
		policies := unmarshalResponse[[]api.Policy](t, resp)
		assert.Len(t, policies, 3)
	})

	t.Run("Reconcile", func(t *testing.T) {
		resp := postReconcile(t, testServer.URL+"/api/v1/reconcile")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		report := unmarshalResponse[api.Report](t, resp)
		require.Len(t, report.Rows, 1)
		assert.Equal(t, "UNDERPAID", report.Rows[0].Status)
		assert.Equal(t, "amber", report.Rows[0].Highlight)
	})

	t.Run("ReconcilePDF", func(t *testing.T) {
		resp := postReconcile(t, testServer.URL+"/api/v1/reconcile?format=pdf")

		require.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "application/pdf", resp.Header.Get("Content-Type"))
		assert.Equal(t, `attachment; filename="Reconciliation_Result.pdf"`, resp.Header.Get("Content-Disposition"))
	})

	t.Run("Metrics", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/metrics")
		require.NoError(t, err)
		defer resp.Body.Close()

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)
		assert.Contains(t, string(body), `reconciler_runs_total{policy="BALANCED",result="success"} 2`)
		assert.Contains(t, string(body), `reconciler_rows_total{policy="BALANCED",status="UNDERPAID"} 2`)
	})

	t.Run("UnknownRoute", func(t *testing.T) {
		resp, err := http.Get(testServer.URL + "/api/v1/workspaces")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	})
}

func TestWebAPI_RunShutsDownOnCancel(t *testing.T) {
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	web := NewWebAPI(zerolog.Nop(), Config{Addr: addr, ShutdownTimeout: time.Second})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- web.Run(ctx) }()

	require.Eventually(t, func() bool {
		resp, err := http.Get("http://" + addr + "/healthz")
		if err != nil {
			return false
		}
		_ = resp.Body.Close()
		return resp.StatusCode == http.StatusOK
	}, 2*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("server did not shut down")
	}
}
