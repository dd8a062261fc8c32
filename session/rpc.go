package session

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/teranos/ideprobe/errors"
	"github.com/teranos/ideprobe/logger"
)

// jsonrpcRequest represents a JSON-RPC 2.0 request. A zero ID marks a
// notification and is omitted from the wire form.
type jsonrpcRequest struct {
	Jsonrpc string `json:"jsonrpc"`
	ID      int64  `json:"id,omitempty"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
}

// Call submits a request over the side channel and blocks until the
// response with the matching id arrives on the stream, or the timeout
// elapses. Exactly one attempt: submission failures and timeouts are
// returned to the caller, never retried here.
func (s *Session) Call(ctx context.Context, method string, params any, id int64, timeout time.Duration) (map[string]any, error) {
	if err := s.post(ctx, jsonrpcRequest{
		Jsonrpc: mcp.JSONRPC_VERSION,
		ID:      id,
		Method:  method,
		Params:  params,
	}); err != nil {
		return nil, err
	}
	return s.await(ctx, id, timeout)
}

// Notify submits a fire-and-forget notification; no response is awaited.
func (s *Session) Notify(ctx context.Context, method string, params any) error {
	return s.post(ctx, jsonrpcRequest{
		Jsonrpc: mcp.JSONRPC_VERSION,
		Method:  method,
		Params:  params,
	})
}

func (s *Session) post(ctx context.Context, rpc jsonrpcRequest) error {
	path := s.EndpointPath()
	if path == "" {
		return errors.Wrap(errors.ErrSubmitFailed, "no submission endpoint")
	}

	body, err := json.Marshal(rpc)
	if err != nil {
		return errors.Wrap(err, "failed to marshal request")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return errors.Wrap(err, "failed to build request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.submit.Do(req)
	if err != nil {
		return errors.Wrapf(errors.ErrSubmitFailed, "POST %s: %v", path, err)
	}
	defer resp.Body.Close()

	// The server replies over the stream; the POST itself only acknowledges
	// acceptance.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return errors.Wrapf(errors.ErrSubmitFailed, "POST %s: status %d", path, resp.StatusCode)
	}

	s.log.Debugw("request submitted",
		logger.FieldMethod, rpc.Method,
		logger.FieldRequestID, rpc.ID)
	return nil
}

// await consumes queued payload events in arrival order until one carries
// the expected id. Non-matching events are stale replies to abandoned
// calls (the session is strictly sequential) and are dropped.
func (s *Session) await(ctx context.Context, id int64, timeout time.Duration) (map[string]any, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	for {
		select {
		case msg := <-s.queue:
			if matchID(msg, id) {
				return msg, nil
			}
			s.log.Debugw("discarding message with unexpected id",
				logger.FieldRequestID, id, "got", msg["id"])
		case <-timer.C:
			return nil, errors.Wrapf(errors.ErrTimeout, "no response for id %d within %s", id, timeout)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func matchID(msg map[string]any, id int64) bool {
	// JSON numbers decode as float64
	v, ok := msg["id"].(float64)
	return ok && int64(v) == id
}
