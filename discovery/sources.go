package discovery

import (
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/shirou/gopsutil/v3/net"
	"github.com/shirou/gopsutil/v3/process"
)

// PortFileSource reads IDE port metadata files. Each file contains a single
// integer: the IDE's built-in web server port. The MCP server listens at a
// fixed offset above it.
type PortFileSource struct {
	// Globs are home-relative glob patterns for port files.
	Globs []string

	// Offset is added to each base port to derive the MCP candidate.
	Offset int
}

// Candidates returns one candidate per readable, parseable port file.
// Unreadable or malformed files are skipped.
func (s *PortFileSource) Candidates(_ context.Context) []Candidate {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil
	}

	var candidates []Candidate
	for _, pattern := range s.Globs {
		matches, err := filepath.Glob(filepath.Join(home, pattern))
		if err != nil {
			continue
		}
		for _, path := range matches {
			data, err := os.ReadFile(path)
			if err != nil {
				continue
			}
			port, err := strconv.Atoi(strings.TrimSpace(string(data)))
			if err != nil {
				continue
			}
			candidates = append(candidates, Candidate{Port: port + s.Offset, Source: SourcePortFile})
		}
	}
	return candidates
}

// ListenerSource scans the local TCP listener table for ports held by IDE
// processes, matched by name substring.
type ListenerSource struct {
	Keywords []string
}

// Candidates returns the listening ports of matching processes. All
// failures (no permission, vanished process) are treated as "no candidate".
func (s *ListenerSource) Candidates(ctx context.Context) []Candidate {
	conns, err := net.ConnectionsWithContext(ctx, "tcp")
	if err != nil {
		return nil
	}

	// Process names are looked up once per pid; the listener table often
	// repeats pids across sockets.
	names := make(map[int32]string)

	var candidates []Candidate
	for _, conn := range conns {
		if conn.Status != "LISTEN" || conn.Pid == 0 {
			continue
		}
		name, ok := names[conn.Pid]
		if !ok {
			name = processName(ctx, conn.Pid)
			names[conn.Pid] = name
		}
		if !s.matches(name) {
			continue
		}
		candidates = append(candidates, Candidate{Port: int(conn.Laddr.Port), Source: SourceListener})
	}
	return candidates
}

func (s *ListenerSource) matches(name string) bool {
	if name == "" {
		return false
	}
	lower := strings.ToLower(name)
	for _, kw := range s.Keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

func processName(ctx context.Context, pid int32) string {
	proc, err := process.NewProcessWithContext(ctx, pid)
	if err != nil {
		return ""
	}
	name, err := proc.NameWithContext(ctx)
	if err != nil {
		return ""
	}
	return name
}
