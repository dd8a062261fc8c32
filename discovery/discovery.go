// Package discovery locates a running IDE MCP server on the local machine.
//
// The server's port is not known in advance: candidates are gathered from
// IDE port metadata files and from the local listener table, then each is
// probed for the SSE handshake. Discovery never fails — when nothing
// responds it degrades to a conventional fallback address and lets the
// connection layer report unavailability.
package discovery

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/teranos/ideprobe/config"
	"github.com/teranos/ideprobe/logger"
)

// Candidate is an unverified local port with a provenance tag.
type Candidate struct {
	Port   int
	Source string
}

// Candidate provenance tags. Port-file candidates rank above listener-scan
// candidates because the offset rule is higher-confidence than a name match.
const (
	SourcePortFile = "portfile"
	SourceListener = "listener"
)

// Source produces candidate ports. Implementations are best-effort: they
// return whatever they could gather and never an error.
type Source interface {
	Candidates(ctx context.Context) []Candidate
}

// Prober validates that a base URL speaks the expected SSE handshake.
type Prober interface {
	Probe(ctx context.Context, baseURL string) bool
}

// Discoverer ranks and probes candidates from its sources in order.
type Discoverer struct {
	sources  []Source
	prober   Prober
	fallback string
	log      *zap.SugaredLogger
}

// New builds a Discoverer with the standard sources: port metadata files
// first, then the IDE-process listener scan.
func New(cfg *config.Config) *Discoverer {
	return &Discoverer{
		sources: []Source{
			&PortFileSource{Globs: cfg.PortFileGlobs, Offset: cfg.PortOffset},
			&ListenerSource{Keywords: cfg.ProcessKeywords},
		},
		prober:   NewSSEProbe(cfg.ProbeTimeout),
		fallback: cfg.FallbackURL,
		log:      logger.Named("discovery"),
	}
}

// NewWithSources builds a Discoverer from explicit sources and prober.
// Tests use this to avoid touching real sockets or the filesystem.
func NewWithSources(sources []Source, prober Prober, fallback string) *Discoverer {
	return &Discoverer{
		sources:  sources,
		prober:   prober,
		fallback: fallback,
		log:      logger.Named("discovery"),
	}
}

// Discover returns the base URL of the first candidate that passes the
// probe, or the fallback address if none does. It never returns an error.
func (d *Discoverer) Discover(ctx context.Context) string {
	var candidates []Candidate
	for _, src := range d.sources {
		candidates = append(candidates, src.Candidates(ctx)...)
	}
	candidates = Dedupe(candidates)

	d.log.Debugw("gathered candidates", logger.FieldCount, len(candidates))

	for _, c := range candidates {
		baseURL := fmt.Sprintf("http://localhost:%d", c.Port)
		if d.prober.Probe(ctx, baseURL) {
			d.log.Infow("mcp server found",
				logger.FieldAddress, baseURL,
				logger.FieldPort, c.Port,
				"source", c.Source)
			return baseURL
		}
		d.log.Debugw("candidate failed probe", logger.FieldPort, c.Port, "source", c.Source)
	}

	d.log.Debugw("no candidate passed probe, using fallback", logger.FieldAddress, d.fallback)
	return d.fallback
}

// Dedupe removes duplicate ports, preserving first-seen order.
func Dedupe(candidates []Candidate) []Candidate {
	seen := make(map[int]bool, len(candidates))
	unique := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if seen[c.Port] {
			continue
		}
		seen[c.Port] = true
		unique = append(unique, c)
	}
	return unique
}
