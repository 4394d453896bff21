// Package client talks to the remote argument analysis service.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"syscall"
	"time"

	"github.com/ppiankov/cartographer/internal/model"
	"github.com/ppiankov/cartographer/internal/util"
)

const (
	// DefaultTimeout bounds one round trip. It is longer than the service's
	// own 120s processing limit so the service normally reports first.
	DefaultTimeout = 150 * time.Second

	// DefaultBaseURL is used when no base URL is configured
	DefaultBaseURL = "http://localhost:5000"

	maxResponseBytes = 32 << 20
)

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	UserAgent  string
	HTTPProxy  string
	HTTPSProxy string

	// Log receives one line per request and response when non-nil
	Log io.Writer
}

// Client submits analysis requests to the service
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// New creates a new Client with the given options
func New(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	var transport http.RoundTripper = &http.Transport{
		Proxy:                 util.NewProxyFunc(opts.HTTPProxy, opts.HTTPSProxy),
		DialContext:           (&net.Dialer{Timeout: 10 * time.Second}).DialContext,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: timeout,
	}
	if opts.Log != nil {
		transport = &loggingTransport{next: transport, out: opts.Log}
	}

	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout:   timeout,
			Transport: transport,
		},
		userAgent: opts.UserAgent,
	}
}

// BaseURL returns the service base URL
func (c *Client) BaseURL() string {
	return c.baseURL
}

// askRequest is the body of POST /ask
type askRequest struct {
	Question string `json:"question"`
}

// askResponse covers both the success and the error shape of /ask
type askResponse struct {
	ArgumentMap json.RawMessage `json:"argument_map"`
	Sources     []string        `json:"sources"`
	Error       *string         `json:"error"`
	RawResponse string          `json:"raw_response,omitempty"`
}

// Health probes GET / and reports whether the service answered 2xx
func (c *Client) Health(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/", nil)
	if err != nil {
		return false
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer func() { _ = resp.Body.Close() }()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<16))

	return resp.StatusCode >= 200 && resp.StatusCode < 300
}

// Submit performs one analysis round trip for a validated request.
// It never retries; every failure is mapped to a Failure outcome.
func (c *Client) Submit(ctx context.Context, req *model.AnalysisRequest) model.Outcome {
	if req == nil {
		return model.Fail(model.ValidationError("question required"))
	}

	question, err := BuildQuestion(req)
	if err != nil {
		var appErr *model.Error
		if errors.As(err, &appErr) {
			return model.Fail(appErr)
		}
		return model.Fail(&model.Error{
			Kind:    model.KindValidation,
			Message: fmt.Sprintf("Failed to analyze document: %v", err),
			Err:     err,
		})
	}

	return c.Ask(ctx, question)
}

// Ask sends a raw question to POST /ask and interprets the response
func (c *Client) Ask(ctx context.Context, question string) model.Outcome {
	body, err := json.Marshal(askRequest{Question: question})
	if err != nil {
		return model.Fail(model.ProtocolError(0, fmt.Sprintf("Invalid request: %v", err)))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/ask", bytes.NewReader(body))
	if err != nil {
		return model.Fail(model.TransportError(fmt.Sprintf("Request failed: %v", err), err))
	}
	c.setHeaders(req)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return model.Fail(c.transportError(ctx, err))
	}
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return model.Fail(c.transportError(ctx, err))
	}

	return interpret(resp.StatusCode, data)
}

// interpret decides success or failure once, from status and body
func interpret(status int, data []byte) model.Outcome {
	var parsed askResponse
	parseErr := json.Unmarshal(data, &parsed)

	if status < 200 || status >= 300 {
		detail := ""
		if parseErr == nil && parsed.Error != nil {
			detail = *parsed.Error
		}
		return model.Fail(statusError(status, detail))
	}

	if parseErr != nil {
		return model.Fail(model.ProtocolError(status, "Invalid response format from backend"))
	}

	if parsed.Error != nil {
		msg := *parsed.Error
		if strings.TrimSpace(msg) == "" {
			msg = "Analysis failed"
		}
		return model.Fail(model.ApplicationError(msg))
	}

	raw := bytes.TrimSpace(parsed.ArgumentMap)
	if len(raw) == 0 || raw[0] != '{' {
		return model.Fail(model.ProtocolError(status, "Invalid response format from backend"))
	}

	var argMap model.ArgumentMap
	if err := json.Unmarshal(raw, &argMap); err != nil {
		return model.Fail(model.ProtocolError(status, "Invalid response format from backend"))
	}

	return model.Succeed(argMap, parsed.Sources)
}

// statusError maps a non-2xx status to an actionable message
func statusError(status int, detail string) *model.Error {
	var msg string
	switch status {
	case http.StatusForbidden:
		msg = "Access denied. Your IP address is not whitelisted."
	case http.StatusBadRequest:
		msg = "Invalid request. Please check your input."
	case http.StatusUnprocessableEntity:
		msg = "AI returned invalid format. Please try again."
	case http.StatusInternalServerError:
		msg = "Backend server error. Please check if the AI model is running."
	default:
		if detail != "" {
			msg = fmt.Sprintf("Backend returned status %d: %s", status, detail)
		} else {
			msg = fmt.Sprintf("Backend returned status %d", status)
		}
	}
	return model.ProtocolError(status, msg)
}

// transportError classifies a failed round trip
func (c *Client) transportError(ctx context.Context, err error) *model.Error {
	if isTimeout(ctx, err) {
		return model.TransportError("Request timeout. The AI model may be taking too long to respond.", err)
	}
	if errors.Is(err, syscall.ECONNREFUSED) {
		return model.TransportError(
			fmt.Sprintf("Cannot connect to backend server at %s. Please ensure it's running.", c.baseURL), err)
	}
	return model.TransportError(fmt.Sprintf("Request failed: %v", err), err)
}

func isTimeout(ctx context.Context, err error) bool {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Accept", "application/json")
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}
}
