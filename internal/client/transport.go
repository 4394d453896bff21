package client

import (
	"fmt"
	"io"
	"net/http"
	"time"
)

// loggingTransport writes one line per request and response
type loggingTransport struct {
	next http.RoundTripper
	out  io.Writer
}

func (t *loggingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	start := time.Now()
	_, _ = fmt.Fprintf(t.out, "→ %s %s\n", req.Method, req.URL.Path)

	resp, err := t.next.RoundTrip(req)
	if err != nil {
		_, _ = fmt.Fprintf(t.out, "✗ %s %s: %v\n", req.Method, req.URL.Path, err)
		return nil, err
	}

	_, _ = fmt.Fprintf(t.out, "← %d %s (%s)\n", resp.StatusCode, req.URL.Path, time.Since(start).Round(time.Millisecond))
	return resp, nil
}
