package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/export"
	"github.com/joseph-ayodele/bol-intake/internal/extract"
	"github.com/joseph-ayodele/bol-intake/internal/repository"
)

func newAdmin(t *testing.T) (*httptest.Server, *env) {
	t.Helper()
	e := newEnv(t)
	srv := httptest.NewServer(NewAdminRouter(AdminDeps{
		DB:     e.db,
		Runs:   e.runs,
		Export: export.NewService(e.mapper, nil),
	}))
	t.Cleanup(srv.Close)
	return srv, e
}

func get(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	resp, err := http.Get(url)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp, body
}

func seedRun(t *testing.T, runs repository.ExtractRunRepository, raw extract.RawRecord) uuid.UUID {
	t.Helper()
	ctx := context.Background()
	run, err := runs.Start(ctx, "bol-"+raw.OrderNumber+".pdf", "hash-"+raw.OrderNumber)
	require.NoError(t, err)
	require.NoError(t, runs.FinishSuccess(ctx, run.ID, repository.RunResult{
		Method:          string(constants.MethodText),
		FieldConfidence: raw.Confidence,
		OrderNumber:     raw.OrderNumber,
		SerialCount:     len(raw.AllSerialNumbers),
		Extracted:       raw,
	}))
	return run.ID
}

func TestAdminHealthAndMetrics(t *testing.T) {
	srv, _ := newAdmin(t)

	resp, _ := get(t, srv.URL+"/healthz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/readyz")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, body := get(t, srv.URL+"/metrics")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestAdminRuns(t *testing.T) {
	srv, e := newAdmin(t)
	id := seedRun(t, e.runs, extract.RawRecord{OrderNumber: "901234", Confidence: 80})

	resp, body := get(t, srv.URL+"/runs/")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var list struct {
		Runs []map[string]any `json:"runs"`
	}
	require.NoError(t, json.Unmarshal(body, &list))
	require.Len(t, list.Runs, 1)
	assert.Equal(t, id.String(), list.Runs[0]["id"])

	resp, _ = get(t, srv.URL+"/runs/"+id.String())
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/runs/"+uuid.NewString())
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/runs/not-a-uuid")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, _ = get(t, srv.URL+"/runs/?limit=0")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestAdminExport(t *testing.T) {
	srv, e := newAdmin(t)
	seedRun(t, e.runs, extract.RawRecord{
		OrderNumber:      "901234",
		AllSerialNumbers: []string{"S1AAA", "S2BBB"},
		SerialNumber:     "S1AAA",
		JobType:          constants.JobTypeDelivery,
	})
	seedRun(t, e.runs, extract.RawRecord{OrderNumber: "555000", JobType: constants.JobTypePickup})

	resp, body := get(t, srv.URL+"/export.xlsx")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	f, err := excelize.OpenReader(bytes.NewReader(body))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(export.SheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 4) // header + two serials + one job without serials
}
