package recordstore

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/joseph-ayodele/bol-intake/internal/common"
	"github.com/joseph-ayodele/bol-intake/internal/metrics"
)

// send issues one JSON request and returns the raw body and status. Non-2xx statuses are not
// errors here; the record store explains them in the body.
func (c *Client) send(ctx context.Context, method, url string, body any, headers map[string]string) ([]byte, int, error) {
	reqID := common.RequestIDFromContext(ctx)
	if reqID == "" {
		reqID = uuid.New().String()
	}
	logger := c.logger
	if runID := common.RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}
	start := time.Now()

	var rd io.Reader
	size := 0
	if body != nil {
		bs, err := json.Marshal(body)
		if err != nil {
			logger.Error("recordstore.http.encode_error", "req_id", reqID, "error", err)
			return nil, 0, fmt.Errorf("encode json: %w", err)
		}
		rd, size = bytes.NewReader(bs), len(bs)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		logger.Error("recordstore.http.build_request_error", "req_id", reqID, "error", err)
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", reqID)
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	logger.Debug("recordstore.http.request",
		"req_id", reqID,
		"method", method,
		"url", redactURL(url),
		"content_length", size,
	)

	resp, err := c.http.Do(req)
	if err != nil {
		metrics.RecordStoreCall(method, 0, time.Since(start))
		logger.Error("recordstore.http.send_error", "req_id", reqID, "error", err, "elapsed_ms", time.Since(start).Milliseconds())
		return nil, 0, err
	}
	defer func(Body io.ReadCloser) {
		if err := Body.Close(); err != nil {
			logger.Warn("recordstore.http.response_body_close_error", "req_id", reqID, "error", err)
		}
	}(resp.Body)

	metrics.RecordStoreCall(method, resp.StatusCode, time.Since(start))

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("read response: %w", err)
	}

	logger.Debug("recordstore.http.response",
		"req_id", reqID,
		"status", resp.StatusCode,
		"bytes", len(raw),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return raw, resp.StatusCode, nil
}

type message struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Response json.RawMessage `json:"response"`
	Messages []message       `json:"messages"`
}

func (e envelope) first() message {
	if len(e.Messages) == 0 {
		return message{}
	}
	return e.Messages[0]
}

// decode parses the Data API envelope; a body that is not JSON yields an empty envelope.
func decode(raw []byte) envelope {
	var env envelope
	_ = json.Unmarshal(raw, &env)
	return env
}

func ok(status int) bool { return status/100 == 2 }
