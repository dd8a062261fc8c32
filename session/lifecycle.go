package session

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"

	"github.com/teranos/ideprobe/config"
	"github.com/teranos/ideprobe/discovery"
	"github.com/teranos/ideprobe/errors"
	"github.com/teranos/ideprobe/logger"
	"github.com/teranos/ideprobe/version"
)

// State is the lifecycle controller's connection state.
type State int

const (
	StateDisconnected State = iota
	StateConnecting
	StateHandshaking
	StateReady
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateDisconnected:
		return "disconnected"
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateReady:
		return "ready"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// initializeID is the fixed request id of the handshake call. Tool calls
// start at 2.
const initializeID = 1

// methodNotifInitialized completes the MCP handshake; the server expects
// it before serving tool calls.
const methodNotifInitialized = "notifications/initialized"

// attemptFloor is the minimum sub-timeout granted to each connect phase,
// so a nearly exhausted budget still gets a real attempt.
const attemptFloor = 2 * time.Second

// Resolver produces the base URL for a connect attempt.
type Resolver func(ctx context.Context) string

// initializeParams is the MCP initialize request payload.
type initializeParams struct {
	ProtocolVersion string                 `json:"protocolVersion"`
	Capabilities    mcp.ClientCapabilities `json:"capabilities"`
	ClientInfo      mcp.Implementation     `json:"clientInfo"`
}

// Controller drives the connect → handshake → ready state machine and owns
// the Session. One controller manages at most one live session; a retry
// tears the previous session down before starting the next.
type Controller struct {
	cfg     *config.Config
	resolve Resolver
	log     *zap.SugaredLogger

	mu    sync.Mutex
	state State
	sess  *Session
}

// NewController builds a controller that resolves the base URL from the
// config override when present, falling back to discovery.
func NewController(cfg *config.Config) *Controller {
	var resolve Resolver
	if cfg.BaseURL != "" {
		override := cfg.BaseURL
		resolve = func(context.Context) string { return override }
	} else {
		d := discovery.New(cfg)
		resolve = d.Discover
	}
	return NewControllerWithResolver(cfg, resolve)
}

// NewControllerWithResolver builds a controller with an explicit resolver.
// Tests use this to point the controller at a fixture server.
func NewControllerWithResolver(cfg *config.Config, resolve Resolver) *Controller {
	return &Controller{
		cfg:     cfg,
		resolve: resolve,
		log:     logger.Named("lifecycle"),
		state:   StateDisconnected,
	}
}

// State returns the current connection state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Session returns the live session. Valid only in StateReady.
func (c *Controller) Session() *Session {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.sess
}

// Connect runs one full connect attempt within the remaining time budget:
// resolve an address, start the stream reader, wait for the endpoint
// announcement, then perform the initialize handshake. The budget is split
// roughly 40/40 between the two waits, with a floor so tiny budgets still
// get a real attempt; the remainder is slack for the POSTs themselves.
func (c *Controller) Connect(ctx context.Context, remaining time.Duration) error {
	c.setState(StateConnecting)
	c.stopSession()

	endpointWait := subTimeout(remaining)
	handshakeWait := subTimeout(remaining)

	baseURL := c.resolve(ctx)
	sess := New(baseURL, Options{
		StreamTimeout: c.cfg.StreamReadTimeout,
		SubmitTimeout: c.cfg.SubmitTimeout,
	})

	c.mu.Lock()
	c.sess = sess
	c.mu.Unlock()

	go sess.Listen()

	path, err := sess.WaitEndpoint(endpointWait)
	if err != nil {
		c.fail(sess)
		return errors.Wrap(err, "connect failed")
	}
	c.log.Debugw("endpoint announced", logger.FieldAddress, baseURL, logger.FieldPath, path)

	c.setState(StateHandshaking)

	params := initializeParams{
		ProtocolVersion: mcp.LATEST_PROTOCOL_VERSION,
		Capabilities:    mcp.ClientCapabilities{},
		ClientInfo: mcp.Implementation{
			Name:    "ideprobe",
			Version: version.Version,
		},
	}
	resp, err := sess.Call(ctx, string(mcp.MethodInitialize), params, initializeID, handshakeWait)
	if err != nil {
		c.fail(sess)
		return errors.Wrap(err, "initialize handshake failed")
	}
	c.logServerInfo(resp)

	// Fire-and-forget; a lost notification does not fail the attempt.
	if err := sess.Notify(ctx, methodNotifInitialized, map[string]any{}); err != nil {
		c.log.Debugw("initialized notification failed", logger.FieldError, err)
	}

	c.setState(StateReady)
	return nil
}

// ConnectWithRetry repeatedly attempts Connect until ready or the connect
// deadline passes, sleeping briefly between attempts. Exhausting the
// deadline is reported as ErrUnavailable, not a crash.
func (c *Controller) ConnectWithRetry(ctx context.Context) error {
	deadline := time.Now().Add(c.cfg.ConnectDeadline)
	attempt := 0

	for time.Now().Before(deadline) {
		attempt++
		remaining := time.Until(deadline)
		if remaining <= time.Second {
			break
		}

		err := c.Connect(ctx, remaining)
		if err == nil {
			return nil
		}
		c.log.Warnw("connect attempt failed",
			logger.FieldAttempt, attempt,
			logger.FieldRemaining, time.Until(deadline).Round(time.Second),
			logger.FieldError, err)

		sleep := c.cfg.RetryDelay
		if left := time.Until(deadline); left < sleep {
			sleep = left
		}
		if sleep > 0 {
			select {
			case <-time.After(sleep):
			case <-ctx.Done():
				return ctx.Err()
			}
		}
	}

	return errors.Wrapf(errors.ErrUnavailable, "not ready after %d attempts", attempt)
}

// Close tears the session down: the reader is signalled to stop but not
// joined; the process may exit while it winds down.
func (c *Controller) Close() {
	c.stopSession()
	c.setState(StateDisconnected)
}

func (c *Controller) fail(sess *Session) {
	sess.Stop()
	c.setState(StateFailed)
}

func (c *Controller) stopSession() {
	c.mu.Lock()
	sess := c.sess
	c.mu.Unlock()
	if sess != nil {
		sess.Stop()
	}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}

func (c *Controller) logServerInfo(resp map[string]any) {
	raw, err := json.Marshal(resp["result"])
	if err != nil {
		return
	}
	var result mcp.InitializeResult
	if err := json.Unmarshal(raw, &result); err != nil || result.ServerInfo.Name == "" {
		return
	}
	c.log.Infow("mcp session ready",
		"server", result.ServerInfo.Name,
		"server_version", result.ServerInfo.Version,
		"protocol", result.ProtocolVersion)
}

func subTimeout(remaining time.Duration) time.Duration {
	t := remaining * 2 / 5
	if t < attemptFloor {
		return attemptFloor
	}
	return t
}
