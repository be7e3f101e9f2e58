package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"textgen/internal/domain"
)

// maxResponseBody is the maximum response body size read from the endpoint.
const maxResponseBody = 1 * 1024 * 1024 // 1 MB

// doJSONRequest performs a request with an optional JSON body and returns the
// status code and response body. Non-2xx statuses are not treated as errors
// here: the caller classifies them.
func doJSONRequest(ctx context.Context, client *http.Client, method, url string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	httpReq.Header.Set("Accept", "application/json")

	httpResp, err := client.Do(httpReq)
	if err != nil {
		return 0, nil, fmt.Errorf("http request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseBody))
	if err != nil {
		return httpResp.StatusCode, nil, fmt.Errorf("read response: %w", err)
	}

	return httpResp.StatusCode, respBody, nil
}

// isSuccess reports whether status is in the 2xx range.
func isSuccess(status int) bool {
	return status >= 200 && status < 300
}

// classifyTransportError maps a failure with no usable response to Cancelled
// or Unreachable. A request aborted through its context is Cancelled even when
// the transport reports it as a generic dial or read error.
func classifyTransportError(ctx context.Context, err error) *domain.RequestError {
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return domain.NewRequestError(domain.KindCancelled, err)
	}
	return domain.NewRequestError(domain.KindUnreachable, err)
}

// classifyExchangeError maps a failed exchange. A zero status means no
// response arrived. Otherwise the status line came back but the body could
// not be read: a 2xx is Malformed, anything else is ServerRejected.
func classifyExchangeError(ctx context.Context, status int, err error) *domain.RequestError {
	if status == 0 || ctx.Err() != nil {
		return classifyTransportError(ctx, err)
	}
	if isSuccess(status) {
		return &domain.RequestError{Kind: domain.KindMalformed, Status: status, Err: err}
	}
	re := mapHTTPError(status, nil)
	re.Err = err
	return re
}

// mapHTTPError maps a non-2xx response to a ServerRejected error carrying the
// server's detail message when one is present.
func mapHTTPError(statusCode int, body []byte) *domain.RequestError {
	return &domain.RequestError{
		Kind:   domain.KindServerRejected,
		Status: statusCode,
		Detail: extractDetail(statusCode, body),
	}
}

// extractDetail pulls a human-readable reason out of an error body.
// FastAPI-style validation errors carry a list of {msg} objects under detail;
// their messages are joined.
func extractDetail(statusCode int, body []byte) string {
	generic := fmt.Sprintf("request failed with status %d", statusCode)

	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || len(payload.Detail) == 0 {
		return generic
	}

	var s string
	if err := json.Unmarshal(payload.Detail, &s); err == nil {
		if s = strings.TrimSpace(s); s != "" {
			return s
		}
		return generic
	}

	var items []struct {
		Msg string `json:"msg"`
	}
	if err := json.Unmarshal(payload.Detail, &items); err == nil {
		msgs := make([]string, 0, len(items))
		for _, it := range items {
			if it.Msg != "" {
				msgs = append(msgs, it.Msg)
			}
		}
		if len(msgs) > 0 {
			return strings.Join(msgs, "; ")
		}
	}
	return generic
}
