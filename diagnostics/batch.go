package diagnostics

import (
	"bufio"
	"context"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teranos/ideprobe/config"
	"github.com/teranos/ideprobe/errors"
	"github.com/teranos/ideprobe/logger"
	"github.com/teranos/ideprobe/session"
)

// firstToolCallID is the id of the first tool call; id 1 belongs to the
// initialize handshake.
const firstToolCallID = 2

// perItemMargin is added to each item's wait budget so the IDE-side
// analysis timeout can expire before the client-side one does.
const perItemMargin = 5 * time.Second

// Dialer establishes a ready MCP session and returns its correlator plus
// a teardown func.
type Dialer func(ctx context.Context) (Caller, func(), error)

// BatchRunner checks many files over one shared session. It is strictly
// best-effort: connection failure, per-item timeouts, and boring results
// all silently shrink the output, never abort the batch.
type BatchRunner struct {
	dial   Dialer
	exists func(string) bool
	margin time.Duration
	log    *zap.SugaredLogger
}

// NewBatchRunner builds a runner wired to the real lifecycle controller
// and filesystem.
func NewBatchRunner(cfg *config.Config) *BatchRunner {
	dial := func(ctx context.Context) (Caller, func(), error) {
		ctrl := session.NewController(cfg)
		if err := ctrl.ConnectWithRetry(ctx); err != nil {
			ctrl.Close()
			return nil, nil, err
		}
		return ctrl.Session(), ctrl.Close, nil
	}
	return &BatchRunner{
		dial:   dial,
		exists: fileExists,
		margin: perItemMargin,
		log:    logger.Named("batch"),
	}
}

// NewBatchRunnerWithDialer builds a runner with injected collaborators.
// Tests use this to fake the session and the existence check.
func NewBatchRunnerWithDialer(dial Dialer, exists func(string) bool) *BatchRunner {
	return &BatchRunner{
		dial:   dial,
		exists: exists,
		margin: perItemMargin,
		log:    logger.Named("batch"),
	}
}

// Run checks each existing file in input order and returns the results
// that carry a non-empty errors list, in that same order. It returns an
// empty (never nil) slice when no file exists, when the session never
// becomes ready, or when nothing interesting comes back.
func (r *BatchRunner) Run(ctx context.Context, paths []string, perItemTimeout time.Duration) []FileProblems {
	results := []FileProblems{}

	existing := make([]string, 0, len(paths))
	for _, p := range paths {
		if r.exists(p) {
			existing = append(existing, p)
		}
	}
	if len(existing) == 0 {
		return results
	}

	caller, teardown, err := r.dial(ctx)
	if err != nil {
		r.log.Warnw("mcp session never became ready", logger.FieldError, err)
		return results
	}
	defer teardown()

	client := NewClient(caller)
	wait := perItemTimeout + r.margin
	id := int64(firstToolCallID)

	for _, path := range existing {
		resp, err := client.FileProblems(ctx, id, Request{
			FilePath:  path,
			TimeoutMS: int(perItemTimeout / time.Millisecond),
		}, wait)
		id++

		if err != nil {
			// One item's failure never aborts the batch.
			r.log.Debugw("skipping file", logger.FieldFile, path, logger.FieldError, err)
			if errors.Is(err, context.Canceled) {
				return results
			}
			continue
		}

		result, ok := resp["result"].(map[string]any)
		if !ok {
			continue
		}
		if problems := ExtractProblems(result); problems != nil {
			results = append(results, *problems)
		}
	}

	return results
}

// ReadFileList parses a file containing one path per line, skipping blank
// lines.
func ReadFileList(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open file list %s", path)
	}
	defer f.Close()

	var paths []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrapf(err, "failed to read file list %s", path)
	}
	return paths, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
