package kyc

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"testing"
	"time"

	"wireconnect/internal/types"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestCanTransition(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusApproved, true},
		{StatusPending, StatusRejected, true},
		{StatusPending, StatusPending, false},
		{StatusApproved, StatusRejected, false},
		{StatusApproved, StatusPending, false},
		{StatusRejected, StatusApproved, false},
		{StatusRejected, StatusPending, false},
	}
	for _, tt := range tests {
		if got := CanTransition(tt.from, tt.to); got != tt.want {
			t.Errorf("CanTransition(%s, %s) = %v, want %v", tt.from, tt.to, got, tt.want)
		}
	}
}

type memDocuments struct {
	docs map[types.ID]*Document
}

func newMemDocuments() *memDocuments {
	return &memDocuments{docs: make(map[types.ID]*Document)}
}

func (m *memDocuments) Create(_ context.Context, d *Document) error {
	cp := *d
	m.docs[d.ID] = &cp
	return nil
}

func (m *memDocuments) Get(_ context.Context, id types.ID) (*Document, error) {
	d, ok := m.docs[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *d
	return &cp, nil
}

func (m *memDocuments) Review(_ context.Context, id types.ID, verdict Status, note string, at time.Time) (*Document, error) {
	d, ok := m.docs[id]
	if !ok || d.Status != StatusPending {
		return nil, nil
	}
	d.Status = verdict
	d.ReviewNote = note
	d.ReviewedAt = &at
	cp := *d
	return &cp, nil
}

func (m *memDocuments) ListPending(_ context.Context, limit int) ([]Document, error) {
	var out []Document
	for _, d := range m.docs {
		if d.Status == StatusPending {
			out = append(out, *d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.Before(out[j].SubmittedAt) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *memDocuments) ListByTechnician(_ context.Context, techID types.ID) ([]Document, error) {
	var out []Document
	for _, d := range m.docs {
		if d.TechnicianID == techID {
			out = append(out, *d)
		}
	}
	return out, nil
}

type mirrorRecorder struct {
	statuses map[types.ID]string
}

func (r *mirrorRecorder) SetKYCStatus(_ context.Context, id types.ID, status string) error {
	if r.statuses == nil {
		r.statuses = make(map[types.ID]string)
	}
	r.statuses[id] = status
	return nil
}

func newTestService() (*Service, *memDocuments, *mirrorRecorder) {
	docs := newMemDocuments()
	mirror := &mirrorRecorder{}
	return &Service{store: docs, accounts: mirror, logger: testLogger()}, docs, mirror
}

func TestSubmit(t *testing.T) {
	s, _, mirror := newTestService()
	d, err := s.Submit(context.Background(), "tech1", "passport", "s3://kyc/abc")
	if err != nil {
		t.Fatalf("submit: %v", err)
	}
	if d.Status != StatusPending {
		t.Errorf("status = %s, want pending", d.Status)
	}
	if mirror.statuses["tech1"] != "pending" {
		t.Errorf("account mirror = %q, want pending", mirror.statuses["tech1"])
	}
}

func TestSubmit_Validation(t *testing.T) {
	s, _, _ := newTestService()
	if _, err := s.Submit(context.Background(), "tech1", "selfie", "s3://kyc/abc"); err != ErrBadRequest {
		t.Errorf("unknown kind: err = %v, want ErrBadRequest", err)
	}
	if _, err := s.Submit(context.Background(), "tech1", "passport", ""); err != ErrBadRequest {
		t.Errorf("empty file ref: err = %v, want ErrBadRequest", err)
	}
}

func TestReview(t *testing.T) {
	s, _, mirror := newTestService()
	ctx := context.Background()
	d, _ := s.Submit(ctx, "tech1", "passport", "s3://kyc/abc")

	reviewed, err := s.Review(ctx, d.ID, StatusApproved, "checks out")
	if err != nil {
		t.Fatalf("review: %v", err)
	}
	if reviewed.Status != StatusApproved || reviewed.ReviewedAt == nil {
		t.Errorf("verdict not recorded: %+v", reviewed)
	}
	if mirror.statuses["tech1"] != "approved" {
		t.Errorf("account mirror = %q, want approved", mirror.statuses["tech1"])
	}

	if _, err := s.Review(ctx, d.ID, StatusRejected, "second opinion"); err != ErrAlreadyReviewed {
		t.Errorf("second verdict: err = %v, want ErrAlreadyReviewed", err)
	}
	if _, err := s.Review(ctx, d.ID, StatusPending, ""); err != ErrBadRequest {
		t.Errorf("pending verdict: err = %v, want ErrBadRequest", err)
	}
	if _, err := s.Review(ctx, "missing", StatusApproved, ""); err != ErrNotFound {
		t.Errorf("unknown doc: err = %v, want ErrNotFound", err)
	}
}

func TestListPending(t *testing.T) {
	s, _, _ := newTestService()
	ctx := context.Background()
	a, _ := s.Submit(ctx, "tech1", "passport", "s3://kyc/a")
	b, _ := s.Submit(ctx, "tech2", "national_id", "s3://kyc/b")
	if _, err := s.Review(ctx, a.ID, StatusRejected, "blurry"); err != nil {
		t.Fatalf("review: %v", err)
	}

	pending, err := s.ListPending(ctx, 10)
	if err != nil {
		t.Fatalf("list pending: %v", err)
	}
	if len(pending) != 1 || pending[0].ID != b.ID {
		t.Errorf("pending = %+v, want only %s", pending, b.ID)
	}
}
