package discovery

import (
	"context"
	"io"
	"net/http"
	"strings"
	"time"
)

// Probe success markers: a real MCP server's SSE stream opens with an
// endpoint event naming the /message submission path.
const (
	markerMessagePath = "/message"
	markerEndpoint    = "endpoint"
)

// probePrefixLen is how much of the stream body the probe reads before
// judging the candidate.
const probePrefixLen = 64

// SSEProbe validates a candidate by opening its SSE stream and checking the
// first bytes for the endpoint announcement.
type SSEProbe struct {
	client *http.Client
}

// NewSSEProbe returns a probe with the given per-candidate timeout.
func NewSSEProbe(timeout time.Duration) *SSEProbe {
	return &SSEProbe{
		client: &http.Client{Timeout: timeout},
	}
}

// Probe opens GET <baseURL>/sse with a stream accept header and reads a
// small prefix of the body. Any transport error means the candidate failed.
func (p *SSEProbe) Probe(ctx context.Context, baseURL string) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"/sse", nil)
	if err != nil {
		return false
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := p.client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()

	buf := make([]byte, probePrefixLen)
	n, _ := io.ReadFull(resp.Body, buf)
	prefix := string(buf[:n])

	return strings.Contains(prefix, markerMessagePath) || strings.Contains(prefix, markerEndpoint)
}
