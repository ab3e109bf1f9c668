package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/bol-intake/internal/common"
)

const apiPrefix = "/fmi/data/vLatest/databases/PEP2_1"

type fakeStore struct {
	t *testing.T

	authStatus    int
	createStatus  int
	createCode    string
	createMessage string
	detailStatus  int
	logoutStatus  int
	findCode      string

	creates  atomic.Int32
	logouts  atomic.Int32
	lastBody map[string]map[string]string
}

func (f *fakeStore) reply(w http.ResponseWriter, status int, response any, code, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{
		"response": response,
		"messages": []map[string]string{{"code": code, "message": msg}},
	})
}

func (f *fakeStore) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST "+apiPrefix+"/sessions", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		if f.authStatus != 0 || !ok || user != "intake" || pass != "s3cret" {
			f.reply(w, http.StatusUnauthorized, map[string]any{}, "212", "Invalid user account and/or password")
			return
		}
		f.reply(w, http.StatusOK, map[string]string{"token": "tok-1"}, "0", "OK")
	})
	mux.HandleFunc("DELETE "+apiPrefix+"/sessions/{token}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "tok-1", r.PathValue("token"))
		f.logouts.Add(1)
		if f.logoutStatus != 0 {
			f.reply(w, f.logoutStatus, map[string]any{}, "952", "Invalid token")
			return
		}
		f.reply(w, http.StatusOK, map[string]any{}, "0", "OK")
	})
	mux.HandleFunc("POST "+apiPrefix+"/layouts/2.5-JOB_DETAIL/records", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(f.t, "Bearer tok-1", r.Header.Get("Authorization"))
		f.creates.Add(1)
		var body map[string]map[string]string
		assert.NoError(f.t, json.NewDecoder(r.Body).Decode(&body))
		f.lastBody = body
		if f.createStatus != 0 {
			f.reply(w, f.createStatus, nil, f.createCode, f.createMessage)
			return
		}
		f.reply(w, http.StatusOK, map[string]string{"recordId": "5512", "modId": "0"}, "0", "OK")
	})
	mux.HandleFunc("GET "+apiPrefix+"/layouts/2.5-JOB_DETAIL/records/5512", func(w http.ResponseWriter, r *http.Request) {
		if f.detailStatus != 0 {
			f.reply(w, f.detailStatus, nil, "101", "Record is missing")
			return
		}
		f.reply(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{
				"recordId":  "5512",
				"modId":     "0",
				"fieldData": map[string]any{"_kp_job_id": 88231, "client_order_number": "901234"},
			}},
		}, "0", "OK")
	})
	mux.HandleFunc("POST "+apiPrefix+"/layouts/2.5-JOB_DETAIL/_find", func(w http.ResponseWriter, r *http.Request) {
		if f.findCode == "401" {
			f.reply(w, http.StatusInternalServerError, map[string]any{}, "401", "No records match the request")
			return
		}
		f.reply(w, http.StatusOK, map[string]any{
			"data": []map[string]any{{"recordId": "5512", "modId": "3", "fieldData": map[string]any{"client_order_number": "901234"}}},
		}, "0", "OK")
	})
	return mux
}

func newTestClient(t *testing.T, f *fakeStore) *Client {
	t.Helper()
	f.t = t
	srv := httptest.NewServer(f.handler())
	t.Cleanup(srv.Close)
	return NewClient(Config{
		BaseURL:  srv.URL + "/fmi/data/vLatest/",
		Database: "PEP2_1",
		Layout:   "2.5-JOB_DETAIL",
		Username: "intake",
		Password: "s3cret",
		Timeout:  5 * time.Second,
	}, nil, nil)
}

func TestCreateJobSuccess(t *testing.T) {
	f := &fakeStore{}
	c := newTestClient(t, f)

	res, err := c.CreateJob(context.Background(), map[string]string{
		"client_order_number": "901234",
		"timestamp_create":    "2025-03-01",
		"job_date":            "2025-03-01",
	})
	require.NoError(t, err)
	assert.Equal(t, "5512", res.RecordID)
	assert.Equal(t, "0", res.ModID)
	assert.Equal(t, "88231", res.JobNumber)
	assert.True(t, res.ConfirmationAvailable)

	assert.Equal(t, int32(1), f.logouts.Load())
	assert.Equal(t, map[string]string{"client_order_number": "901234"}, f.lastBody["fieldData"])
}

func TestCreateJobFailureStillLogsOut(t *testing.T) {
	f := &fakeStore{createStatus: http.StatusInternalServerError, createCode: "102", createMessage: "Field is missing"}
	c := newTestClient(t, f)

	_, err := c.CreateJob(context.Background(), map[string]string{"client_order_number": "901234"})
	require.Error(t, err)

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
	assert.Equal(t, "102", apiErr.Code)
	assert.Equal(t, "Field is missing", apiErr.Message)
	assert.ErrorIs(t, err, common.ErrSubmission)
	assert.Contains(t, err.Error(), "500 - Code 102: Field is missing")

	assert.Equal(t, int32(1), f.logouts.Load())
}

func TestCreateJobConfirmationIsBestEffort(t *testing.T) {
	f := &fakeStore{detailStatus: http.StatusInternalServerError}
	c := newTestClient(t, f)

	res, err := c.CreateJob(context.Background(), map[string]string{"client_order_number": "901234"})
	require.NoError(t, err)
	assert.Equal(t, "5512", res.RecordID)
	assert.False(t, res.ConfirmationAvailable)
	assert.Empty(t, res.JobNumber)
	assert.Equal(t, int32(1), f.logouts.Load())
}

func TestLogoutFailureIsNotReturned(t *testing.T) {
	f := &fakeStore{logoutStatus: http.StatusBadRequest}
	c := newTestClient(t, f)

	res, err := c.CreateJob(context.Background(), map[string]string{"client_order_number": "901234"})
	require.NoError(t, err)
	assert.Equal(t, "5512", res.RecordID)
	assert.Equal(t, int32(1), f.logouts.Load())
}

func TestAuthenticationFailure(t *testing.T) {
	f := &fakeStore{authStatus: http.StatusUnauthorized}
	c := newTestClient(t, f)

	_, err := c.CreateJob(context.Background(), map[string]string{"client_order_number": "901234"})
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, int32(0), f.creates.Load())
	assert.Equal(t, int32(0), f.logouts.Load())

	assert.ErrorIs(t, c.Ping(context.Background()), ErrAuthentication)
}

func TestPing(t *testing.T) {
	f := &fakeStore{}
	c := newTestClient(t, f)
	require.NoError(t, c.Ping(context.Background()))
	assert.Equal(t, int32(1), f.logouts.Load())
}

func TestFindByOrderNumber(t *testing.T) {
	f := &fakeStore{}
	c := newTestClient(t, f)

	recs, err := c.FindByOrderNumber(context.Background(), "901234")
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "5512", recs[0].RecordID)
	assert.Equal(t, "901234", recs[0].FieldData["client_order_number"])

	f.findCode = "401"
	recs, err = c.FindByOrderNumber(context.Background(), "000000")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
	assert.Equal(t, int32(2), f.logouts.Load())
}

func TestRedactURL(t *testing.T) {
	assert.Equal(t, "http://fm/databases/PEP2_1/sessions/***", redactURL("http://fm/databases/PEP2_1/sessions/tok-1"))
	assert.Equal(t, "http://fm/databases/PEP2_1/sessions", redactURL("http://fm/databases/PEP2_1/sessions"))
}

func TestRequestIDPropagates(t *testing.T) {
	var got atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.Store(r.Header.Get("X-Request-ID"))
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	c := NewClient(Config{BaseURL: srv.URL, Database: "PEP2_1", Layout: "L"}, nil, nil)
	_, err := c.Authenticate(common.WithRequestID(context.Background(), "req-42"))
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Equal(t, "req-42", got.Load())
}

func TestRunIDTagsRequestLogs(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	t.Cleanup(srv.Close)

	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := NewClient(Config{BaseURL: srv.URL, Database: "PEP2_1", Layout: "L"}, nil, logger)

	ctx := common.WithRunID(context.Background(), "run-7")
	_, err := c.Authenticate(ctx)
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.Contains(t, buf.String(), `"msg":"recordstore.http.request"`)
	assert.Contains(t, buf.String(), `"run_id":"run-7"`)

	buf.Reset()
	_, err = c.Authenticate(context.Background())
	assert.ErrorIs(t, err, ErrAuthentication)
	assert.NotContains(t, buf.String(), "run_id")
}
