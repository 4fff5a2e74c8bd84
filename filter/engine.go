package filter

import (
	"strings"

	"github.com/0xERR0R/argus/model"
	"github.com/0xERR0R/argus/rules"
)

// SnapshotSource provides the current rule set
type SnapshotSource interface {
	Snapshot() *rules.Snapshot
}

// Engine decides whether a host is blocked
type Engine struct {
	source SnapshotSource
}

// NewEngine creates an engine reading rules from source
func NewEngine(source SnapshotSource) *Engine {
	return &Engine{source: source}
}

// Decide matches the host and all its parent domains against the rule set.
// The most specific matching rule wins.
func (e *Engine) Decide(host string) model.BlockDecision {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" {
		return model.Allowed()
	}

	snapshot := e.source.Snapshot()
	if snapshot.Len() == 0 {
		return model.Allowed()
	}

	for candidate := host; ; {
		if snapshot.Contains(candidate) {
			return model.BlockedBy(candidate)
		}

		idx := strings.IndexByte(candidate, '.')
		if idx < 0 {
			return model.Allowed()
		}

		candidate = candidate[idx+1:]
	}
}
