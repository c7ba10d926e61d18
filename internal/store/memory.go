package store

import (
	"context"
	"sync"
	"time"

	"github.com/doorlist/doorlist/internal/guest"
)

// Memory is a mutex-guarded in-memory guest store with the same
// semantics as the Postgres store: code uniqueness on insert and an
// atomic conditional attendance transition. It backs unit tests and the
// concurrency properties without a database.
type Memory struct {
	mu     sync.Mutex
	guests map[string]*guest.Guest // keyed by unique code
	order  []string                // insertion order, oldest first

	// Now is the clock used for timestamps; replaceable in tests.
	Now func() time.Time
}

// NewMemory returns an empty in-memory store.
func NewMemory() *Memory {
	return &Memory{
		guests: make(map[string]*guest.Guest),
		Now:    time.Now,
	}
}

// InsertGuests mirrors the Postgres batch insert: one row's code
// collision is retried with a fresh code, and a row that cannot be
// placed is reported without aborting its siblings.
func (m *Memory) InsertGuests(_ context.Context, guests []*guest.Guest) (int, []FailedInsert, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var (
		inserted int
		failed   []FailedInsert
	)
	for _, g := range guests {
		placed := false
		for attempt := 0; attempt <= InsertRetries; attempt++ {
			if _, taken := m.guests[g.UniqueID]; !taken {
				placed = true
				break
			}
			g.UniqueID = guest.NewCode()
		}
		if !placed {
			failed = append(failed, FailedInsert{Name: g.Name, Reason: guest.ErrDuplicateCode.Error()})
			continue
		}

		now := m.Now()
		stored := clone(g)
		stored.CreatedAt = now
		stored.UpdatedAt = now
		m.guests[stored.UniqueID] = stored
		m.order = append(m.order, stored.UniqueID)
		inserted++
	}
	return inserted, failed, nil
}

// CheckIn applies the conditional NOT_ATTENDED -> ATTENDED transition
// under the store lock, so concurrent callers serialize exactly as they
// would on the database's conditional UPDATE.
func (m *Memory) CheckIn(_ context.Context, code string) (*guest.Guest, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guests[code]
	if !ok {
		return nil, false, guest.ErrNotFound
	}
	if g.AttendanceStatus == guest.Attended {
		return clone(g), false, nil
	}

	now := m.Now()
	g.AttendanceStatus = guest.Attended
	g.CheckInTime = &now
	g.UpdatedAt = now
	return clone(g), true, nil
}

// FindByCode returns the guest with the given normalized code, or
// guest.ErrNotFound.
func (m *Memory) FindByCode(_ context.Context, code string) (*guest.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	g, ok := m.guests[code]
	if !ok {
		return nil, guest.ErrNotFound
	}
	return clone(g), nil
}

// ListGuests returns all guests, newest first.
func (m *Memory) ListGuests(_ context.Context) ([]*guest.Guest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	guests := make([]*guest.Guest, 0, len(m.order))
	for i := len(m.order) - 1; i >= 0; i-- {
		guests = append(guests, clone(m.guests[m.order[i]]))
	}
	return guests, nil
}

// Stats counts guests by attendance status.
func (m *Memory) Stats(_ context.Context) (Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	st := Stats{Total: len(m.order)}
	for _, g := range m.guests {
		if g.AttendanceStatus == guest.Attended {
			st.Attended++
		}
	}
	st.Unattended = st.Total - st.Attended
	return st, nil
}

// clone copies a record so callers never share pointers with the store.
func clone(g *guest.Guest) *guest.Guest {
	out := *g
	if g.CheckInTime != nil {
		t := *g.CheckInTime
		out.CheckInTime = &t
	}
	return &out
}
