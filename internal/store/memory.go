package store

import (
	"errors"
	"sync"
	"time"
)

var (
	// ErrNotFound is returned when no run of the requested kind is recorded.
	ErrNotFound = errors.New("no runs recorded")
)

// RunKind distinguishes briefing runs from dispatch cycles.
type RunKind string

const (
	KindBriefing RunKind = "briefing"
	KindDispatch RunKind = "dispatch"
)

// RunRecord summarizes one briefing run or dispatch cycle.
type RunRecord struct {
	ID         string    `json:"id"`
	Kind       RunKind   `json:"kind"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Outcome    string    `json:"outcome"`
	Error      string    `json:"error,omitempty"`
	Artifacts  []string  `json:"artifacts,omitempty"`
}

// MemoryStore is a concurrency-safe in-memory run history, oldest first.
type MemoryStore struct {
	mu   sync.RWMutex
	runs []RunRecord

	// retention configuration
	maxHistory int           // max number of records kept
	maxAge     time.Duration // optional max age, measured from StartedAt
	now        func() time.Time
}

// NewMemoryStore creates a new MemoryStore with optional limits.
// If maxHistory is <= 0, it is treated as unlimited.
func NewMemoryStore(maxHistory int, maxAge time.Duration) *MemoryStore {
	return &MemoryStore{
		maxHistory: maxHistory,
		maxAge:     maxAge,
		now:        time.Now,
	}
}

// Save appends a record and enforces retention.
func (s *MemoryStore) Save(rec RunRecord) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.runs = append(s.runs, rec)

	// Enforce retention by count.
	if s.maxHistory > 0 && len(s.runs) > s.maxHistory {
		over := len(s.runs) - s.maxHistory
		s.runs = s.runs[over:]
	}

	// Enforce retention by age.
	if s.maxAge > 0 {
		cutoff := s.now().Add(-s.maxAge)
		i := 0
		for ; i < len(s.runs); i++ {
			if !s.runs[i].StartedAt.Before(cutoff) {
				break
			}
		}
		s.runs = s.runs[i:]
	}
}

// Latest returns the most recent record of kind; an empty kind matches any.
func (s *MemoryStore) Latest(kind RunKind) (RunRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for i := len(s.runs) - 1; i >= 0; i-- {
		if kind == "" || s.runs[i].Kind == kind {
			return s.runs[i], nil
		}
	}
	return RunRecord{}, ErrNotFound
}

// List returns up to limit records of kind, newest first. An empty kind
// matches any and limit <= 0 means no limit.
func (s *MemoryStore) List(kind RunKind, limit int) []RunRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []RunRecord{}
	for i := len(s.runs) - 1; i >= 0; i-- {
		if kind != "" && s.runs[i].Kind != kind {
			continue
		}
		result = append(result, s.runs[i])
		if limit > 0 && len(result) == limit {
			break
		}
	}
	return result
}
