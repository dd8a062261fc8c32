// Package session implements the streaming MCP session: a long-lived SSE
// connection carrying server-push events, a JSON-RPC correlator that
// submits requests over the announced side channel, and a lifecycle
// controller that drives connect/handshake/retry.
//
// A Session is owned by exactly one Controller. Calls are strictly
// sequential: at most one request is outstanding at a time, so any queued
// response that does not match the awaited id is a stale reply to an
// already-abandoned call and is dropped.
package session

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/ideprobe/errors"
	"github.com/teranos/ideprobe/logger"
)

// queueDepth bounds the response queue. With one request in flight the
// queue holds at most a handful of stale replies.
const queueDepth = 32

// Options configures a Session's transport timeouts.
type Options struct {
	// StreamTimeout bounds the entire SSE read. Zero means no limit.
	StreamTimeout time.Duration

	// SubmitTimeout bounds each side-channel POST.
	SubmitTimeout time.Duration
}

// Session is the live state of one streaming connection. It owns the
// background reader goroutine and the FIFO queue of payload events.
type Session struct {
	baseURL string
	stream  *http.Client
	submit  *http.Client

	queue chan map[string]any

	mu           sync.Mutex
	endpointPath string
	endpointOnce sync.Once
	endpointCh   chan struct{}

	ctx    context.Context
	cancel context.CancelFunc

	log *zap.SugaredLogger
}

// New creates a Session for the given base URL. The reader does not start
// until Listen is called.
func New(baseURL string, opts Options) *Session {
	ctx, cancel := context.WithCancel(context.Background())
	return &Session{
		baseURL:    baseURL,
		stream:     &http.Client{Timeout: opts.StreamTimeout},
		submit:     &http.Client{Timeout: opts.SubmitTimeout},
		queue:      make(chan map[string]any, queueDepth),
		endpointCh: make(chan struct{}),
		ctx:        ctx,
		cancel:     cancel,
		log:        logger.Named("session"),
	}
}

// BaseURL returns the server base address this session is bound to.
func (s *Session) BaseURL() string {
	return s.baseURL
}

// Listen opens the SSE stream and runs the read loop until the connection
// closes, the read fails, or Stop is called. Run it in its own goroutine.
//
// Frames are blank-line separated; `data:` payloads accumulate across
// lines within one frame. A payload starting with a path separator is the
// control event announcing the submission endpoint; anything else is
// parsed as a JSON message and queued. Unparseable payloads (heartbeats,
// partial frames) are discarded.
func (s *Session) Listen() {
	// Whatever happens, release anyone blocked on the endpoint event so a
	// dead stream fails the connect attempt instead of hanging it.
	defer s.announceEndpoint("")

	req, err := http.NewRequestWithContext(s.ctx, http.MethodGet, s.baseURL+"/sse", nil)
	if err != nil {
		s.log.Errorw("building sse request failed", logger.FieldError, err)
		return
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.stream.Do(req)
	if err != nil {
		if s.ctx.Err() == nil {
			s.log.Warnw("sse connection failed", logger.FieldAddress, s.baseURL, logger.FieldError, err)
		}
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		s.log.Warnw("sse stream rejected", logger.FieldStatus, resp.StatusCode)
		return
	}

	scanner := bufio.NewScanner(resp.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var data []string
	for scanner.Scan() {
		if s.ctx.Err() != nil {
			return
		}
		line := strings.TrimRight(scanner.Text(), "\r")
		switch {
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		case line == "" && len(data) > 0:
			s.dispatch(strings.TrimSpace(strings.Join(data, "\n")))
			data = nil
		}
	}

	if err := scanner.Err(); err != nil && s.ctx.Err() == nil {
		s.log.Warnw("sse read error", logger.FieldError, err)
	}
}

func (s *Session) dispatch(payload string) {
	if payload == "" {
		return
	}
	if strings.HasPrefix(payload, "/") {
		s.announceEndpoint(payload)
		return
	}
	var msg map[string]any
	if err := json.Unmarshal([]byte(payload), &msg); err != nil {
		// Heartbeats and partial frames are expected; not an error.
		return
	}
	select {
	case s.queue <- msg:
	default:
		s.log.Debugw("response queue full, dropping message")
	}
}

// announceEndpoint records the submission path and signals waiters,
// exactly once per session.
func (s *Session) announceEndpoint(path string) {
	s.endpointOnce.Do(func() {
		s.mu.Lock()
		s.endpointPath = path
		s.mu.Unlock()
		close(s.endpointCh)
	})
}

// WaitEndpoint blocks until the control event announces the submission
// path, or the timeout elapses. An announced-but-empty path means the
// stream died before the announcement.
func (s *Session) WaitEndpoint(timeout time.Duration) (string, error) {
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	select {
	case <-s.endpointCh:
		s.mu.Lock()
		path := s.endpointPath
		s.mu.Unlock()
		if path == "" {
			return "", errors.Wrap(errors.ErrNoEndpoint, "stream closed before announcement")
		}
		return path, nil
	case <-timer.C:
		return "", errors.Wrapf(errors.ErrNoEndpoint, "no announcement within %s", timeout)
	}
}

// EndpointPath returns the announced submission path, or empty if none yet.
func (s *Session) EndpointPath() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.endpointPath
}

// Stop signals the reader to shut down by cancelling its request context.
// It does not wait for the goroutine to exit; teardown is best-effort.
func (s *Session) Stop() {
	s.cancel()
}
