package recordstore

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/joseph-ayodele/bol-intake/constants"
	"github.com/joseph-ayodele/bol-intake/internal/common"
)

// FieldJobNumber is the record store's display job number, assigned on create.
const FieldJobNumber = "_kp_job_id"

type Config struct {
	BaseURL  string // e.g. https://fm.example.com/fmi/data/vLatest
	Database string
	Layout   string
	Username string
	Password string
	Timeout  time.Duration
}

func ConfigFrom(cfg common.RecordStoreConfig) Config {
	return Config{
		BaseURL:  cfg.BaseURL,
		Database: cfg.Database,
		Layout:   cfg.Layout,
		Username: cfg.Username,
		Password: cfg.Password,
		Timeout:  cfg.Timeout,
	}
}

// Record is one record-store row.
type Record struct {
	RecordID  string         `json:"recordId"`
	ModID     string         `json:"modId"`
	FieldData map[string]any `json:"fieldData"`
}

// CreateResult describes a created job. The confirmation fetch is best-effort: when it fails
// the job still exists and ConfirmationAvailable is false.
type CreateResult struct {
	RecordID              string
	ModID                 string
	JobNumber             string
	Details               map[string]any
	ConfirmationAvailable bool
}

// Client talks to a FileMaker Data API database. Each operation that needs a token gets it
// from WithSession; tokens are never cached between calls.
type Client struct {
	cfg    Config
	http   *http.Client
	logger *slog.Logger
}

func NewClient(cfg Config, httpClient *http.Client, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	return &Client{cfg: cfg, http: httpClient, logger: logger}
}

func (c *Client) dbURL() string {
	return c.cfg.BaseURL + "/databases/" + url.PathEscape(c.cfg.Database)
}

func (c *Client) recordsURL() string {
	return c.dbURL() + "/layouts/" + url.PathEscape(c.cfg.Layout) + "/records"
}

func bearer(token string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + token}
}

// Authenticate opens a session and returns its token.
func (c *Client) Authenticate(ctx context.Context) (string, error) {
	basic := base64.StdEncoding.EncodeToString([]byte(c.cfg.Username + ":" + c.cfg.Password))
	raw, status, err := c.send(ctx, http.MethodPost, c.dbURL()+"/sessions", map[string]any{},
		map[string]string{"Authorization": "Basic " + basic})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	env := decode(raw)
	if !ok(status) || env.first().Code != "0" {
		return "", fmt.Errorf("%w: status %d", ErrAuthentication, status)
	}
	var resp struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(env.Response, &resp); err != nil || resp.Token == "" {
		return "", fmt.Errorf("%w: no token in response", ErrAuthentication)
	}
	return resp.Token, nil
}

// Logout closes a session.
func (c *Client) Logout(ctx context.Context, token string) error {
	raw, status, err := c.send(ctx, http.MethodDelete, c.dbURL()+"/sessions/"+url.PathEscape(token), nil, nil)
	if err != nil {
		return err
	}
	if !ok(status) {
		m := decode(raw).first()
		return &APIError{Op: "Logout", Status: status, Code: m.Code, Message: m.Message}
	}
	return nil
}

// WithSession runs fn inside an authenticated session and logs out on every exit path.
// Logout failures are logged, not returned; a cancelled ctx does not skip the logout.
func (c *Client) WithSession(ctx context.Context, fn func(ctx context.Context, token string) error) error {
	token, err := c.Authenticate(ctx)
	if err != nil {
		c.logger.Error("recordstore.auth_failed", "database", c.cfg.Database, "error", err)
		return err
	}
	defer func() {
		lctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.cfg.Timeout)
		defer cancel()
		if err := c.Logout(lctx, token); err != nil {
			c.logger.Warn("recordstore.logout_failed", "database", c.cfg.Database, "error", err)
		}
	}()
	return fn(ctx, token)
}

// CreateRecord posts fieldData as a new record. Auto-enter fields are removed first.
func (c *Client) CreateRecord(ctx context.Context, token string, fieldData map[string]string) (recordID, modID string, err error) {
	safe := make(map[string]string, len(fieldData))
	for k, v := range fieldData {
		safe[k] = v
	}
	for _, f := range constants.AutoEnterFields {
		delete(safe, f)
	}

	raw, status, err := c.send(ctx, http.MethodPost, c.recordsURL(), map[string]any{"fieldData": safe}, bearer(token))
	if err != nil {
		return "", "", fmt.Errorf("%w: %w", common.ErrSubmission, err)
	}
	env := decode(raw)
	var resp struct {
		RecordID string `json:"recordId"`
		ModID    string `json:"modId"`
	}
	if !ok(status) || len(env.Response) == 0 || json.Unmarshal(env.Response, &resp) != nil || resp.RecordID == "" {
		m := env.first()
		c.logger.Error("recordstore.create_failed", "status", status, "code", m.Code, "message", m.Message)
		return "", "", &APIError{Op: "Job creation", Status: status, Code: m.Code, Message: m.Message}
	}
	return resp.RecordID, resp.ModID, nil
}

// GetRecord reads one record's field data.
func (c *Client) GetRecord(ctx context.Context, token, recordID string) (map[string]any, error) {
	raw, status, err := c.send(ctx, http.MethodGet, c.recordsURL()+"/"+url.PathEscape(recordID), nil, bearer(token))
	if err != nil {
		return nil, err
	}
	env := decode(raw)
	var resp struct {
		Data []Record `json:"data"`
	}
	if !ok(status) || json.Unmarshal(env.Response, &resp) != nil || len(resp.Data) == 0 || resp.Data[0].FieldData == nil {
		m := env.first()
		return nil, &APIError{Op: "Job detail fetch", Status: status, Code: m.Code, Message: m.Message}
	}
	return resp.Data[0].FieldData, nil
}

// FindRecords runs a _find query. The record store's "no records match" answer is an empty
// result, not an error.
func (c *Client) FindRecords(ctx context.Context, token string, query map[string]string, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 100
	}
	body := map[string]any{
		"query": []map[string]string{query},
		"limit": fmt.Sprint(limit),
	}
	findURL := c.dbURL() + "/layouts/" + url.PathEscape(c.cfg.Layout) + "/_find"
	raw, status, err := c.send(ctx, http.MethodPost, findURL, body, bearer(token))
	if err != nil {
		return nil, err
	}
	env := decode(raw)
	if env.first().Code == "401" {
		return []Record{}, nil
	}
	var resp struct {
		Data []Record `json:"data"`
	}
	if !ok(status) || json.Unmarshal(env.Response, &resp) != nil {
		m := env.first()
		return nil, &APIError{Op: "Search", Status: status, Code: m.Code, Message: m.Message}
	}
	if resp.Data == nil {
		resp.Data = []Record{}
	}
	return resp.Data, nil
}

// CreateJob authenticates, creates the record, fetches its display job number and logs out.
func (c *Client) CreateJob(ctx context.Context, fieldData map[string]string) (*CreateResult, error) {
	var res *CreateResult
	err := c.WithSession(ctx, func(ctx context.Context, token string) error {
		recordID, modID, err := c.CreateRecord(ctx, token, fieldData)
		if err != nil {
			return err
		}
		res = &CreateResult{RecordID: recordID, ModID: modID}
		c.logger.Info("recordstore.job_created", "record_id", recordID, "order_number", fieldData["client_order_number"])

		details, err := c.GetRecord(ctx, token, recordID)
		if err != nil {
			c.logger.Warn("recordstore.confirmation_unavailable", "record_id", recordID, "error", err)
			return nil
		}
		res.Details = details
		res.ConfirmationAvailable = true
		if v, ok := details[FieldJobNumber]; ok && v != nil {
			res.JobNumber = fmt.Sprint(v)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// FindByOrderNumber lists existing jobs carrying a client order number.
func (c *Client) FindByOrderNumber(ctx context.Context, orderNumber string) ([]Record, error) {
	var out []Record
	err := c.WithSession(ctx, func(ctx context.Context, token string) error {
		recs, err := c.FindRecords(ctx, token, map[string]string{"client_order_number": orderNumber}, 100)
		out = recs
		return err
	})
	return out, err
}

// Ping checks that a session can be opened and closed.
func (c *Client) Ping(ctx context.Context) error {
	return c.WithSession(ctx, func(context.Context, string) error { return nil })
}

// redactURL hides session tokens in logout URLs.
func redactURL(u string) string {
	if i := strings.Index(u, "/sessions/"); i >= 0 {
		return u[:i] + "/sessions/***"
	}
	return u
}
