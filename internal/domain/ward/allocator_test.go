package ward

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

func newTestAllocator() (*Allocator, *Registry, Repository) {
	repo := NewMemRepo()
	reg := NewRegistry(repo)
	return NewAllocator(reg), reg, repo
}

func mustCreateWard(t *testing.T, a *Allocator, name, code string, beds int) *Ward {
	t.Helper()
	w, err := a.CreateWard(context.Background(), name, code, beds)
	if err != nil {
		t.Fatalf("create ward: %v", err)
	}
	return w
}

func TestCreateWard(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General Ward", "gen", 3)

	if w.Code != "GEN" {
		t.Errorf("expected code normalized to GEN, got %s", w.Code)
	}
	beds, err := reg.ListBeds(context.Background(), w.ID)
	if err != nil {
		t.Fatalf("list beds: %v", err)
	}
	if len(beds) != 3 {
		t.Fatalf("expected 3 beds, got %d", len(beds))
	}
	for i, b := range beds {
		if b.Number != i+1 {
			t.Errorf("expected bed number %d, got %d", i+1, b.Number)
		}
		if b.Status != BedAvailable {
			t.Errorf("expected new bed available, got %s", b.Status)
		}
	}
	if beds[0].Label != "GEN-1" {
		t.Errorf("expected label GEN-1, got %s", beds[0].Label)
	}
}

func TestCreateWard_NameRequired(t *testing.T) {
	a, _, _ := newTestAllocator()
	_, err := a.CreateWard(context.Background(), "  ", "GEN", 2)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestCreateWard_NegativeBedCount(t *testing.T) {
	a, _, _ := newTestAllocator()
	_, err := a.CreateWard(context.Background(), "General", "GEN", -1)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestClaimAndRelease(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 1)
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	admID := uuid.New()

	if err := a.Claim(context.Background(), beds[0].ID, admID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	b, _ := reg.GetBed(context.Background(), beds[0].ID)
	if b.Status != BedOccupied {
		t.Errorf("expected occupied, got %s", b.Status)
	}
	if b.OccupantAdmissionID == nil || *b.OccupantAdmissionID != admID {
		t.Error("expected occupant admission id to be set")
	}

	if err := a.Release(context.Background(), beds[0].ID); err != nil {
		t.Fatalf("release: %v", err)
	}
	b, _ = reg.GetBed(context.Background(), beds[0].ID)
	if b.Status != BedAvailable {
		t.Errorf("expected available after release, got %s", b.Status)
	}
	if b.OccupantAdmissionID != nil {
		t.Error("expected occupant cleared after release")
	}
}

func TestClaim_AlreadyOccupied(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 1)
	beds, _ := reg.ListBeds(context.Background(), w.ID)

	if err := a.Claim(context.Background(), beds[0].ID, uuid.New()); err != nil {
		t.Fatalf("first claim: %v", err)
	}
	err := a.Claim(context.Background(), beds[0].ID, uuid.New())
	if !errors.Is(err, ErrBedNotAvailable) {
		t.Errorf("expected ErrBedNotAvailable, got %v", err)
	}
}

func TestRelease_NotOccupied(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 1)
	beds, _ := reg.ListBeds(context.Background(), w.ID)

	err := a.Release(context.Background(), beds[0].ID)
	if !errors.Is(err, ErrBedNotOccupied) {
		t.Errorf("expected ErrBedNotOccupied, got %v", err)
	}
}

func TestMove(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 2)
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	admID := uuid.New()

	if err := a.Claim(context.Background(), beds[0].ID, admID); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := a.Move(context.Background(), beds[0].ID, beds[1].ID, admID); err != nil {
		t.Fatalf("move: %v", err)
	}

	from, _ := reg.GetBed(context.Background(), beds[0].ID)
	to, _ := reg.GetBed(context.Background(), beds[1].ID)
	if from.Status != BedAvailable {
		t.Errorf("expected source bed freed, got %s", from.Status)
	}
	if to.Status != BedOccupied || to.OccupantAdmissionID == nil || *to.OccupantAdmissionID != admID {
		t.Error("expected destination bed occupied by the admission")
	}
}

func TestMove_SameBed(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 1)
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	admID := uuid.New()
	a.Claim(context.Background(), beds[0].ID, admID)

	err := a.Move(context.Background(), beds[0].ID, beds[0].ID, admID)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestMove_DestinationTaken(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 2)
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	admID := uuid.New()
	a.Claim(context.Background(), beds[0].ID, admID)
	a.Claim(context.Background(), beds[1].ID, uuid.New())

	err := a.Move(context.Background(), beds[0].ID, beds[1].ID, admID)
	if !errors.Is(err, ErrBedNotAvailable) {
		t.Errorf("expected ErrBedNotAvailable, got %v", err)
	}
	// The failed move must leave the admission where it was.
	from, _ := reg.GetBed(context.Background(), beds[0].ID)
	if from.Status != BedOccupied || *from.OccupantAdmissionID != admID {
		t.Error("expected source bed untouched after failed move")
	}
}

func TestMove_WrongOccupant(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 2)
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	a.Claim(context.Background(), beds[0].ID, uuid.New())

	err := a.Move(context.Background(), beds[0].ID, beds[1].ID, uuid.New())
	if !errors.Is(err, ErrBedNotOccupied) {
		t.Errorf("expected ErrBedNotOccupied, got %v", err)
	}
}

func TestSetBedStatus(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 1)
	beds, _ := reg.ListBeds(context.Background(), w.ID)

	if err := a.SetBedStatus(context.Background(), beds[0].ID, BedMaintenance); err != nil {
		t.Fatalf("set maintenance: %v", err)
	}
	b, _ := reg.GetBed(context.Background(), beds[0].ID)
	if b.Status != BedMaintenance {
		t.Errorf("expected maintenance, got %s", b.Status)
	}

	if err := a.SetBedStatus(context.Background(), beds[0].ID, BedAvailable); err != nil {
		t.Fatalf("set available: %v", err)
	}
}

func TestSetBedStatus_OccupiedRejected(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 1)
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	a.Claim(context.Background(), beds[0].ID, uuid.New())

	err := a.SetBedStatus(context.Background(), beds[0].ID, BedMaintenance)
	if !errors.Is(err, ErrBedOccupied) {
		t.Errorf("expected ErrBedOccupied, got %v", err)
	}
	err = a.SetBedStatus(context.Background(), beds[0].ID, BedOccupied)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for setting occupied directly, got %v", err)
	}
}

func TestResize_Grow(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 2)

	if err := a.Resize(context.Background(), w.ID, 5); err != nil {
		t.Fatalf("resize: %v", err)
	}
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	if len(beds) != 5 {
		t.Fatalf("expected 5 beds, got %d", len(beds))
	}
	if beds[4].Number != 5 || beds[4].Label != "GEN-5" {
		t.Errorf("expected new beds numbered after the existing ones, got %d %s",
			beds[4].Number, beds[4].Label)
	}
}

func TestResize_Shrink(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 4)

	if err := a.Resize(context.Background(), w.ID, 2); err != nil {
		t.Fatalf("resize: %v", err)
	}
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	if len(beds) != 2 {
		t.Fatalf("expected 2 beds, got %d", len(beds))
	}
	// Highest numbers go first.
	if beds[0].Number != 1 || beds[1].Number != 2 {
		t.Errorf("expected beds 1 and 2 to remain, got %d and %d", beds[0].Number, beds[1].Number)
	}
}

func TestResize_ShrinkBlockedByOccupiedBeds(t *testing.T) {
	a, reg, _ := newTestAllocator()
	w := mustCreateWard(t, a, "General", "GEN", 3)
	beds, _ := reg.ListBeds(context.Background(), w.ID)
	a.Claim(context.Background(), beds[0].ID, uuid.New())
	a.Claim(context.Background(), beds[1].ID, uuid.New())

	err := a.Resize(context.Background(), w.ID, 1)
	if !errors.Is(err, ErrBedsInUse) {
		t.Errorf("expected ErrBedsInUse, got %v", err)
	}
	remaining, _ := reg.ListBeds(context.Background(), w.ID)
	if len(remaining) != 3 {
		t.Errorf("expected no beds removed after failed shrink, got %d", len(remaining))
	}
}

func TestResize_WardNotFound(t *testing.T) {
	a, _, _ := newTestAllocator()
	err := a.Resize(context.Background(), uuid.New(), 2)
	if !errors.Is(err, ErrWardNotFound) {
		t.Errorf("expected ErrWardNotFound, got %v", err)
	}
}
