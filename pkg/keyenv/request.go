package keyenv

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"time"
)

const (
	// DefaultBaseURL is the hosted KeyEnv API endpoint.
	DefaultBaseURL = "https://api.keyenv.dev"

	// DefaultTimeout bounds each round trip when Config.Timeout is zero.
	DefaultTimeout = 30 * time.Second

	// apiRoot prefixes every request path.
	apiRoot = "/api/v1"

	// envBaseURL is the environment variable that overrides the base URL,
	// checked when Config.BaseURL is empty.
	envBaseURL = "KEYENV_API_URL"
)

var emptyObject = json.RawMessage("{}")

// apiErrorBody is the error envelope the API returns for failed requests.
type apiErrorBody struct {
	Error   string         `json:"error"`
	Code    string         `json:"code"`
	Details map[string]any `json:"details"`
}

// execute performs one API round trip and returns the response body,
// normalized so it is always valid JSON: 204 and empty bodies yield an
// empty object, and a non-JSON body is wrapped as {"error": <raw text>} so
// status-code handling still has a message to surface. Every failure comes
// back as *APIError.
func (c *Client) execute(ctx context.Context, op, method, path string, body any) (json.RawMessage, error) {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &APIError{Op: op, Message: fmt.Sprintf("encoding request body: %v", err), Err: err}
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+apiRoot+path, reqBody)
	if err != nil {
		return nil, &APIError{Op: op, Message: fmt.Sprintf("building request: %v", err), Err: err}
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		apiErr := transportError(op, err)
		recordRequest(op, apiErr.StatusCode, time.Since(start).Seconds())
		return nil, apiErr
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		apiErr := transportError(op, err)
		recordRequest(op, apiErr.StatusCode, time.Since(start).Seconds())
		return nil, apiErr
	}
	recordRequest(op, resp.StatusCode, time.Since(start).Seconds())

	c.logger.Debug("keyenv %s: %s %s -> %d (%d bytes)", op, method, apiRoot+path, resp.StatusCode, len(data))

	if resp.StatusCode == http.StatusNoContent {
		return emptyObject, nil
	}

	raw := normalizeBody(data)

	if resp.StatusCode >= 400 {
		return nil, apiErrorFromBody(op, resp.StatusCode, raw)
	}

	return raw, nil
}

// normalizeBody guarantees valid JSON for downstream decoding. An empty
// body becomes an empty object; a body that is not JSON is wrapped under
// an "error" key rather than surfacing a separate malformed-JSON failure.
func normalizeBody(data []byte) json.RawMessage {
	if len(bytes.TrimSpace(data)) == 0 {
		return emptyObject
	}
	if json.Valid(data) {
		return json.RawMessage(data)
	}
	wrapped, err := json.Marshal(map[string]string{"error": string(data)})
	if err != nil {
		return emptyObject
	}
	return wrapped
}

// apiErrorFromBody builds the error for a >= 400 response. The body has
// already been normalized, so decoding only misses fields the server did
// not send.
func apiErrorFromBody(op string, status int, raw json.RawMessage) *APIError {
	var body apiErrorBody
	_ = json.Unmarshal(raw, &body)

	msg := body.Error
	if msg == "" {
		msg = "Unknown error"
	}
	details := body.Details
	if details == nil {
		details = map[string]any{}
	}

	return &APIError{
		Op:         op,
		StatusCode: status,
		Code:       body.Code,
		Message:    msg,
		Details:    details,
	}
}

// transportError classifies a failure that happened before a status code
// was available. Timeouts are surfaced as a synthesized 408 so callers get
// one classification for "deadline exceeded" regardless of where it
// tripped; everything else keeps status 0.
func transportError(op string, err error) *APIError {
	if isTimeoutErr(err) {
		return &APIError{
			Op:         op,
			StatusCode: http.StatusRequestTimeout,
			Message:    "Request timeout",
			Err:        err,
		}
	}
	msg := err.Error()
	if msg == "" {
		msg = "Network error"
	}
	return &APIError{Op: op, Message: msg, Err: err}
}

func isTimeoutErr(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}
