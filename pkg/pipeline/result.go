package pipeline

import (
	"fmt"
	"slices"
	"time"
)

// ResultKind classifies the outcome of one service.
type ResultKind int

// Outcome kinds.
const (
	KindFound ResultKind = iota
	KindNotFound
	KindRateLimited
	KindError
)

// String returns the kind's name as used in logs and hooks.
func (k ResultKind) String() string {
	switch k {
	case KindFound:
		return "found"
	case KindNotFound:
		return "not_found"
	case KindRateLimited:
		return "rate_limited"
	case KindError:
		return "error"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// ServiceResult is the outcome of resolving one service.
type ServiceResult struct {
	Kind ResultKind

	// Found
	Image string
	Tag   string

	// Error: a message free of secrets. NotFound: why nothing was found.
	Message string

	// RateLimited: the upstream's wait hint, 0 if unknown.
	RetryAfter time.Duration

	// Informational; not part of the serialized result.
	Release string // raw release tag
	Version string // extracted version
}

// Found returns a successful result.
func Found(image, tag string) ServiceResult {
	return ServiceResult{Kind: KindFound, Image: image, Tag: tag}
}

// NotFound returns a result for a missing release, version or tag.
func NotFound(reason string) ServiceResult {
	return ServiceResult{Kind: KindNotFound, Message: reason}
}

// RateLimited returns a result for a throttled upstream.
func RateLimited(retryAfter time.Duration) ServiceResult {
	return ServiceResult{Kind: KindRateLimited, RetryAfter: retryAfter}
}

// Failed returns an error result carrying msg.
func Failed(msg string) ServiceResult {
	return ServiceResult{Kind: KindError, Message: msg}
}

// String implements fmt.Stringer.
func (r ServiceResult) String() string {
	switch r.Kind {
	case KindFound:
		return r.Image + ":" + r.Tag
	case KindNotFound:
		return "<NOT_FOUND>"
	case KindRateLimited:
		return "<RATE_LIMITED>"
	default:
		return "error: " + r.Message
	}
}

// Entry is one service's result in a [ResultMap].
type Entry struct {
	Name   string
	Result ServiceResult
}

// ResultMap holds the results of one run, in input order.
// It is immutable once returned by [Runner.Run].
type ResultMap struct {
	runID      string
	startedAt  time.Time
	finishedAt time.Time
	expected   int
	entries    []Entry
	index      map[string]int
}

func newResultMap(runID string, expected int) *ResultMap {
	return &ResultMap{
		runID:    runID,
		expected: expected,
		entries:  make([]Entry, 0, expected),
		index:    make(map[string]int, expected),
	}
}

func (m *ResultMap) add(name string, r ServiceResult) {
	m.index[name] = len(m.entries)
	m.entries = append(m.entries, Entry{Name: name, Result: r})
}

// NewResultMap builds a complete ResultMap from entries. It is meant for
// consumers that reassemble results, such as tests and decoders.
func NewResultMap(runID string, entries ...Entry) *ResultMap {
	m := newResultMap(runID, len(entries))
	for _, e := range entries {
		m.add(e.Name, e.Result)
	}
	return m
}

// Get returns the result for a service.
func (m *ResultMap) Get(name string) (ServiceResult, bool) {
	i, ok := m.index[name]
	if !ok {
		return ServiceResult{}, false
	}
	return m.entries[i].Result, true
}

// Len returns the number of services with a result.
func (m *ResultMap) Len() int { return len(m.entries) }

// Entries returns the results in input order.
func (m *ResultMap) Entries() []Entry { return slices.Clone(m.entries) }

// Complete reports whether every input service has a result. A cancelled
// run yields an incomplete map.
func (m *ResultMap) Complete() bool { return len(m.entries) == m.expected }

// RunID returns the identifier of the run that produced the map.
func (m *ResultMap) RunID() string { return m.runID }

// StartedAt returns when the run started.
func (m *ResultMap) StartedAt() time.Time { return m.startedAt }

// FinishedAt returns when the run finished.
func (m *ResultMap) FinishedAt() time.Time { return m.finishedAt }

// Counts returns the number of results per kind.
func (m *ResultMap) Counts() map[ResultKind]int {
	counts := make(map[ResultKind]int, 4)
	for _, e := range m.entries {
		counts[e.Result.Kind]++
	}
	return counts
}
