// README: In-memory test doubles mirroring the store's conditional-update semantics.
package assignment

import (
	"context"
	"sync"
	"testing"
	"time"

	"wireconnect/internal/modules/job"
	"wireconnect/internal/modules/matching"
	"wireconnect/internal/types"
)

// memStore is an in-memory JobStore whose mutations follow the same
// compare-and-swap rules as the SQL store, so the engine's race behavior can
// be exercised under -race without a database.
type memStore struct {
	mu     sync.Mutex
	jobs   map[types.ID]*job.Job
	events []job.Event
}

func newMemStore() *memStore {
	return &memStore{jobs: make(map[types.ID]*job.Job)}
}

func (m *memStore) put(j *job.Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs[j.ID] = copyJob(j)
}

func (m *memStore) Get(_ context.Context, id types.ID) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok {
		return nil, job.ErrNotFound
	}
	return copyJob(j), nil
}

func (m *memStore) Reserve(_ context.Context, id, techID types.ID, expiresAt time.Time) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || !job.Reservable(j.Status) || j.HasDeclined(techID) || j.HasAccepted(techID) {
		return nil, nil
	}
	j.Status = job.StatusPendingAccept
	j.AssignedTechID = &techID
	now := time.Now()
	j.AssignedAt = &now
	j.ExpiresAt = &expiresAt
	if !j.WasNotified(techID) {
		j.NotifiedTechs = append(j.NotifiedTechs, techID)
	}
	return copyJob(j), nil
}

func (m *memStore) Decline(_ context.Context, id, techID types.ID) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != job.StatusPendingAccept || j.AssignedTechID == nil || *j.AssignedTechID != techID {
		return nil, nil
	}
	j.Status = job.StatusPendingAssignment
	j.AssignedTechID = nil
	j.AssignedAt = nil
	j.ExpiresAt = nil
	if !j.HasDeclined(techID) {
		j.DeclinedTechs = append(j.DeclinedTechs, techID)
	}
	return copyJob(j), nil
}

func (m *memStore) Accept(_ context.Context, id, techID types.ID) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != job.StatusPendingAccept || j.AssignedTechID == nil || *j.AssignedTechID != techID || j.HasAccepted(techID) {
		return nil, nil
	}
	m.recordAcceptance(j, techID)
	j.AssignedTechID = nil
	j.AssignedAt = nil
	j.ExpiresAt = nil
	return copyJob(j), nil
}

func (m *memStore) AcceptStandby(_ context.Context, id, techID types.ID) (*job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || j.Status != job.StatusPartial || !j.WasNotified(techID) ||
		j.HasDeclined(techID) || j.HasAccepted(techID) || j.RemainingSlots() == 0 {
		return nil, nil
	}
	m.recordAcceptance(j, techID)
	return copyJob(j), nil
}

func (m *memStore) recordAcceptance(j *job.Job, techID types.ID) {
	j.AssignedTechIDs = append(j.AssignedTechIDs, techID)
	if len(j.AssignedTechIDs) >= j.WorkersNeeded {
		j.Status = job.StatusAccepted
		now := time.Now()
		j.AcceptedAt = &now
	} else {
		j.Status = job.StatusPartial
	}
}

func (m *memStore) MarkUnassigned(_ context.Context, id types.ID) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	j, ok := m.jobs[id]
	if !ok || !job.Reservable(j.Status) {
		return false, nil
	}
	j.Status = job.StatusPendingAssignment
	j.AssignedTechID = nil
	j.AssignedAt = nil
	j.ExpiresAt = nil
	return true, nil
}

func (m *memStore) ListExpiredOffers(_ context.Context, now time.Time, limit int) ([]job.Job, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []job.Job
	for _, j := range m.jobs {
		if len(out) >= limit {
			break
		}
		if j.Status == job.StatusPendingAccept && j.ExpiresAt != nil && !j.ExpiresAt.After(now) {
			out = append(out, *copyJob(j))
		}
	}
	return out, nil
}

func (m *memStore) AppendEvent(_ context.Context, e *job.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, *e)
	return nil
}

func copyJob(j *job.Job) *job.Job {
	cp := *j
	cp.AssignedTechIDs = append([]types.ID(nil), j.AssignedTechIDs...)
	cp.DeclinedTechs = append([]types.ID(nil), j.DeclinedTechs...)
	cp.NotifiedTechs = append([]types.ID(nil), j.NotifiedTechs...)
	cp.SeenByTechs = append([]types.ID(nil), j.SeenByTechs...)
	if j.AssignedTechID != nil {
		id := *j.AssignedTechID
		cp.AssignedTechID = &id
	}
	if j.AssignedAt != nil {
		t := *j.AssignedAt
		cp.AssignedAt = &t
	}
	if j.ExpiresAt != nil {
		t := *j.ExpiresAt
		cp.ExpiresAt = &t
	}
	if j.AcceptedAt != nil {
		t := *j.AcceptedAt
		cp.AcceptedAt = &t
	}
	return &cp
}

// staticRanker serves a fixed distance-sorted pool minus the exclusion set.
type staticRanker struct {
	mu   sync.Mutex
	pool []matching.Candidate
}

func (r *staticRanker) Rank(_ context.Context, _ string, _ *types.Point, exclude map[types.ID]struct{}) ([]matching.Candidate, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []matching.Candidate
	for _, c := range r.pool {
		if _, skip := exclude[c.TechID]; skip {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

// recordingNotifier counts hook invocations.
type recordingNotifier struct {
	mu        sync.Mutex
	assigned  []types.ID
	exhausted int
}

func (n *recordingNotifier) Assigned(_ context.Context, _ *job.Job, techID types.ID) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.assigned = append(n.assigned, techID)
}

func (n *recordingNotifier) Exhausted(_ context.Context, _ *job.Job) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.exhausted++
}

func (n *recordingNotifier) assignedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.assigned)
}

func (n *recordingNotifier) exhaustedCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.exhausted
}

// manualScheduler captures expiry callbacks so tests fire them deterministically.
type manualScheduler struct {
	mu  sync.Mutex
	fns []func()
}

func (s *manualScheduler) AfterFunc(_ time.Duration, fn func()) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.fns = append(s.fns, fn)
}

// fireOnce runs the callbacks armed so far. Callbacks armed during the run
// (a re-offer arming its own expiry) stay pending for a later fireOnce.
func (s *manualScheduler) fireOnce() {
	s.mu.Lock()
	fns := s.fns
	s.fns = nil
	s.mu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// pending reports how many callbacks are armed and unfired.
func (s *manualScheduler) pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.fns)
}

// waitForStatus polls until the job reaches the wanted status; async
// assignment rounds finish in the background.
func waitForStatus(t *testing.T, store *memStore, id types.ID, want job.Status) *job.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if j.Status == want {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	j, _ := store.Get(context.Background(), id)
	t.Fatalf("job %s never reached %s (stuck at %s)", id, want, j.Status)
	return nil
}

// waitForOfferee polls until the job is pending_accept with the wanted offeree.
func waitForOfferee(t *testing.T, store *memStore, id, tech types.ID) *job.Job {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		j, err := store.Get(context.Background(), id)
		if err != nil {
			t.Fatalf("get job: %v", err)
		}
		if j.Status == job.StatusPendingAccept && j.AssignedTechID != nil && *j.AssignedTechID == tech {
			return j
		}
		time.Sleep(5 * time.Millisecond)
	}
	j, _ := store.Get(context.Background(), id)
	t.Fatalf("job %s never offered to %s (status %s)", id, tech, j.Status)
	return nil
}
