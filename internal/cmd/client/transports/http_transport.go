package transports

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// HTTPTransport implements Transport against the REST gateway.
type HTTPTransport struct {
	BaseURL string
	Client  *http.Client
}

// NewHTTPTransport returns a transport for baseURL using http.DefaultClient.
func NewHTTPTransport(baseURL string) *HTTPTransport {
	return &HTTPTransport{BaseURL: strings.TrimRight(baseURL, "/"), Client: http.DefaultClient}
}

func (t *HTTPTransport) do(ctx context.Context, method, path, contentType string, body []byte, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, t.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	resp, err := t.Client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		var e struct {
			Error  string `json:"error"`
			Status string `json:"status"`
		}
		b, _ := io.ReadAll(resp.Body)
		_ = json.Unmarshal(b, &e)
		msg := e.Error
		if msg == "" {
			msg = strings.TrimSpace(string(b))
		}
		return &StatusError{Code: resp.StatusCode, Message: msg}
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// StatusError is a non-2xx HTTP response.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string { return fmt.Sprintf("http %d: %s", e.Code, e.Message) }

// Append posts one raw record.
func (t *HTTPTransport) Append(ctx context.Context, payload []byte) error {
	var resp struct {
		Accepted int `json:"accepted"`
		Filtered int `json:"filtered"`
	}
	if err := t.do(ctx, http.MethodPost, "/v1/records", "application/octet-stream", payload, &resp); err != nil {
		return err
	}
	if resp.Filtered > 0 {
		return &StatusError{Code: http.StatusUnprocessableEntity, Message: "record filtered"}
	}
	return nil
}

// Health returns the server status string.
func (t *HTTPTransport) Health(ctx context.Context) (string, error) {
	var resp struct {
		Status string `json:"status"`
	}
	err := t.do(ctx, http.MethodGet, "/v1/healthz", "", nil, &resp)
	var se *StatusError
	if errors.As(err, &se) && se.Code == http.StatusServiceUnavailable {
		return "not_serving", nil
	}
	return resp.Status, err
}

// Segments lists the catalog with file sizes.
func (t *HTTPTransport) Segments(ctx context.Context) ([]Segment, error) {
	var resp struct {
		Segments []Segment `json:"segments"`
	}
	if err := t.do(ctx, http.MethodGet, "/v1/segments", "", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Segments, nil
}
