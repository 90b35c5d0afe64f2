package external

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/FACorreiaa/travelmate-api/app/observability/metrics"
	"github.com/FACorreiaa/travelmate-api/internal/types"
)

// maxLoggedBody bounds how much of an upstream response body ends up in logs.
const maxLoggedBody = 500

// Client wraps a single outbound HTTP request with timeout, status-code
// validation and typed failure classification. Timeout and connection
// failures are retried with bounded exponential backoff; HTTP errors and
// malformed bodies are never retried.
type Client struct {
	httpClient *http.Client
	logger     *slog.Logger

	// MaxTries is the total attempt budget for retryable failures.
	MaxTries uint
}

func NewClient(timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
		MaxTries:   3,
	}
}

// Request describes one outbound call.
type Request struct {
	Method  string
	URL     string
	Headers map[string]string
	Query   url.Values
	Body    any // marshalled to JSON when non-nil
}

// DoJSON performs the call and decodes a 2xx JSON body into out.
// Every failure is returned as a *types.ExternalError classified as
// Timeout, Unreachable, HTTPError or MalformedResponse.
func (c *Client) DoJSON(ctx context.Context, req Request, out any) error {
	operation := func() ([]byte, error) {
		return c.doOnce(ctx, req)
	}

	body, err := backoff.Retry(ctx, operation,
		backoff.WithBackOff(backoff.NewExponentialBackOff()),
		backoff.WithMaxTries(c.MaxTries),
	)
	if err != nil {
		return err
	}

	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			extErr := types.NewExternalError(types.ErrKindMalformed,
				"response body is not valid JSON for the expected format", err)
			c.logFailure(ctx, req, extErr, string(body))
			return extErr
		}
	}
	return nil
}

// doOnce runs a single attempt. Retryable failures come back as plain
// ExternalErrors; everything else is wrapped in backoff.Permanent.
func (c *Client) doOnce(ctx context.Context, req Request) ([]byte, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		payload, err := json.Marshal(req.Body)
		if err != nil {
			return nil, backoff.Permanent(fmt.Errorf("failed to marshal request body: %w", err))
		}
		bodyReader = bytes.NewReader(payload)
	}

	target := req.URL
	if len(req.Query) > 0 {
		target = req.URL + "?" + req.Query.Encode()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, bodyReader)
	if err != nil {
		return nil, backoff.Permanent(fmt.Errorf("failed to build request: %w", err))
	}
	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}

	attemptStart := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		extErr := classifyTransportError(err)
		c.recordAttempt(ctx, httpReq.URL.Host, extErr, attemptStart)
		c.logFailure(ctx, req, extErr, "")
		return nil, extErr // retryable
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		extErr := types.NewExternalError(types.ErrKindUnreachable, "failed to read response body", err)
		c.recordAttempt(ctx, httpReq.URL.Host, extErr, attemptStart)
		c.logFailure(ctx, req, extErr, "")
		return nil, extErr
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		extErr := &types.ExternalError{
			Kind:    types.ErrKindHTTP,
			Status:  resp.StatusCode,
			Message: truncate(string(body), maxLoggedBody),
		}
		c.recordAttempt(ctx, httpReq.URL.Host, extErr, attemptStart)
		c.logFailure(ctx, req, extErr, string(body))
		return nil, backoff.Permanent(extErr)
	}

	c.recordAttempt(ctx, httpReq.URL.Host, nil, attemptStart)
	return body, nil
}

func (c *Client) recordAttempt(ctx context.Context, host string, extErr *types.ExternalError, start time.Time) {
	outcome := "success"
	if extErr != nil {
		outcome = string(extErr.Kind)
	}
	metrics.Get().RecordExternalCall(ctx, host, outcome, time.Since(start))
}

func classifyTransportError(err error) *types.ExternalError {
	if errors.Is(err, context.DeadlineExceeded) {
		return types.NewExternalError(types.ErrKindTimeout, "request timed out", err)
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return types.NewExternalError(types.ErrKindTimeout, "request timed out", err)
	}
	return types.NewExternalError(types.ErrKindUnreachable, "could not reach service", err)
}

func (c *Client) logFailure(ctx context.Context, req Request, extErr *types.ExternalError, body string) {
	c.logger.ErrorContext(ctx, "External call failed",
		slog.String("method", req.Method),
		slog.String("url", req.URL),
		slog.String("classification", string(extErr.Kind)),
		slog.Int("status", extErr.Status),
		slog.String("body", truncate(body, maxLoggedBody)),
		slog.Any("error", extErr.Err),
	)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
