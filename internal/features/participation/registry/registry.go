// Package registry tracks participation submissions that are in flight so a
// second submission for the same participant and prize is turned away while
// the first one is still being written.
//
// The registry is a debounce, not a uniqueness constraint: a mark lives only
// as long as one submission and is released on every exit path.
package registry

import (
	"context"
	"strconv"
	"sync"

	"giveaway-offers-backend/internal/features/participation/models"
)

// Handle identifies one acquired in-flight mark. The zero Handle is never
// issued and releasing it is a no-op.
type Handle struct {
	key string
	id  string
}

func (h Handle) Key() string { return h.key }

func (h Handle) IsZero() bool { return h.id == "" }

// Registry is implemented by Memory and Redis.
type Registry interface {
	// CanSubmit reports whether no submission for the pair is in flight.
	CanSubmit(ctx context.Context, participantID, prizeID string) bool
	// Start marks the pair in flight. It returns false without a handle when
	// the pair is already held, and an error when the registry itself failed.
	Start(ctx context.Context, participantID, prizeID string) (Handle, bool, error)
	// End releases a mark. Stale and repeated handles are ignored.
	End(ctx context.Context, h Handle)
}

// Memory is the process-local registry. Construct one per application and
// pass it to whatever drives submissions.
type Memory struct {
	mu       sync.Mutex
	inFlight map[string]string
	seq      uint64

	// serializeAll reproduces the old behaviour of allowing only one
	// submission process-wide.
	serializeAll bool
}

type Option func(*Memory)

// WithGlobalLock makes every submission exclusive, regardless of key.
func WithGlobalLock() Option {
	return func(m *Memory) { m.serializeAll = true }
}

func NewMemory(opts ...Option) *Memory {
	m := &Memory{inFlight: make(map[string]string)}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Memory) CanSubmit(_ context.Context, participantID, prizeID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.available(models.SubmissionKey(participantID, prizeID))
}

func (m *Memory) Start(_ context.Context, participantID, prizeID string) (Handle, bool, error) {
	key := models.SubmissionKey(participantID, prizeID)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.available(key) {
		return Handle{}, false, nil
	}
	m.seq++
	h := Handle{key: key, id: handleID(m.seq)}
	m.inFlight[key] = h.id
	return h, true, nil
}

func (m *Memory) End(_ context.Context, h Handle) {
	if h.IsZero() {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if current, ok := m.inFlight[h.key]; ok && current == h.id {
		delete(m.inFlight, h.key)
	}
}

// InFlight returns the number of held marks.
func (m *Memory) InFlight() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.inFlight)
}

// caller holds m.mu
func (m *Memory) available(key string) bool {
	if m.serializeAll && len(m.inFlight) > 0 {
		return false
	}
	_, held := m.inFlight[key]
	return !held
}

func handleID(seq uint64) string {
	return "m" + strconv.FormatUint(seq, 10)
}
