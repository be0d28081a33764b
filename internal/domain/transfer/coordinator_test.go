package transfer

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/hims/hims/internal/domain/admission"
	"github.com/hims/hims/internal/domain/ward"
)

type testEnv struct {
	coordinator *Coordinator
	ledger      *admission.Ledger
	registry    *ward.Registry
	allocator   *ward.Allocator
	general     *ward.Ward
	icu         *ward.Ward
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	registry := ward.NewRegistry(ward.NewMemRepo())
	allocator := ward.NewAllocator(registry)
	general, err := allocator.CreateWard(context.Background(), "General", "GEN", 3)
	if err != nil {
		t.Fatalf("create ward: %v", err)
	}
	icu, err := allocator.CreateWard(context.Background(), "Intensive Care", "ICU", 2)
	if err != nil {
		t.Fatalf("create ward: %v", err)
	}
	ledger := admission.NewLedger(admission.NewMemRepo(), registry, allocator)
	return &testEnv{
		coordinator: NewCoordinator(NewMemRepo(), ledger),
		ledger:      ledger,
		registry:    registry,
		allocator:   allocator,
		general:     general,
		icu:         icu,
	}
}

func (env *testEnv) admit(t *testing.T, wardID uuid.UUID) *admission.Admission {
	t.Helper()
	a, err := env.ledger.Admit(context.Background(), admission.AdmitRequest{
		PatientID:   uuid.New(),
		PatientName: "Asha Patel",
		WardID:      wardID,
		DoctorID:    uuid.New(),
		Diagnosis:   "pneumonia",
	})
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	return a
}

func TestTransfer(t *testing.T) {
	env := newTestEnv(t)
	a := env.admit(t, env.general.ID)

	rec, err := env.coordinator.Transfer(context.Background(), a.ID, Request{
		ToWardID: env.icu.ID,
		Reason:   "needs ventilator support",
	})
	if err != nil {
		t.Fatalf("transfer: %v", err)
	}
	if rec.FromWardID != env.general.ID || rec.ToWardID != env.icu.ID {
		t.Errorf("unexpected ward movement: %+v", rec)
	}
	if rec.FromBedLabel != "GEN-1" || rec.ToBedLabel != "ICU-1" {
		t.Errorf("unexpected bed labels: %s -> %s", rec.FromBedLabel, rec.ToBedLabel)
	}

	cur, _ := env.ledger.GetAdmission(context.Background(), a.ID)
	if cur.WardID != env.icu.ID || cur.BedID != rec.ToBedID {
		t.Error("expected admission moved to the recorded destination bed")
	}
}

func TestTransfer_ReasonRequired(t *testing.T) {
	env := newTestEnv(t)
	a := env.admit(t, env.general.ID)

	_, err := env.coordinator.Transfer(context.Background(), a.ID, Request{
		ToWardID: env.icu.ID,
		Reason:   "  ",
	})
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
}

func TestTransfer_DestinationFull(t *testing.T) {
	env := newTestEnv(t)
	a := env.admit(t, env.general.ID)
	env.admit(t, env.icu.ID)
	env.admit(t, env.icu.ID)

	_, err := env.coordinator.Transfer(context.Background(), a.ID, Request{
		ToWardID: env.icu.ID,
		Reason:   "escalation",
	})
	if !errors.Is(err, ward.ErrNoBedsAvailable) {
		t.Errorf("expected ErrNoBedsAvailable, got %v", err)
	}
	history, _ := env.coordinator.History(context.Background(), a.ID)
	if len(history) != 0 {
		t.Errorf("expected no history row after failed transfer, got %d", len(history))
	}
}

func TestTransfer_DischargedAdmission(t *testing.T) {
	env := newTestEnv(t)
	a := env.admit(t, env.general.ID)
	if _, err := env.ledger.Conclude(context.Background(), a.ID, nil); err != nil {
		t.Fatalf("conclude: %v", err)
	}

	_, err := env.coordinator.Transfer(context.Background(), a.ID, Request{
		ToWardID: env.icu.ID,
		Reason:   "escalation",
	})
	if !errors.Is(err, admission.ErrAdmissionDischarged) {
		t.Errorf("expected ErrAdmissionDischarged, got %v", err)
	}
}

func TestTransfer_UnknownAdmission(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.coordinator.Transfer(context.Background(), uuid.New(), Request{
		ToWardID: env.icu.ID,
		Reason:   "escalation",
	})
	if !errors.Is(err, admission.ErrAdmissionNotFound) {
		t.Errorf("expected ErrAdmissionNotFound, got %v", err)
	}
}

// failingRepo rejects history writes so the move rollback can be observed.
type failingRepo struct {
	Repository
}

func (r *failingRepo) Create(context.Context, *Transfer) error {
	return fmt.Errorf("store unavailable")
}

func TestTransfer_HistoryWriteFailureLeavesPatientInPlace(t *testing.T) {
	env := newTestEnv(t)
	a := env.admit(t, env.general.ID)
	co := NewCoordinator(&failingRepo{NewMemRepo()}, env.ledger)

	_, err := co.Transfer(context.Background(), a.ID, Request{
		ToWardID: env.icu.ID,
		Reason:   "escalation",
	})
	if err == nil {
		t.Fatal("expected transfer to fail")
	}

	cur, _ := env.ledger.GetAdmission(context.Background(), a.ID)
	if cur.WardID != env.general.ID || cur.BedID != a.BedID {
		t.Error("expected admission unchanged after failed history write")
	}
	bed, _ := env.registry.GetBed(context.Background(), a.BedID)
	if bed.Status != ward.BedOccupied || *bed.OccupantAdmissionID != a.ID {
		t.Error("expected original bed still occupied")
	}
	icuBeds, _ := env.registry.ListBeds(context.Background(), env.icu.ID)
	if icuBeds[0].Status != ward.BedAvailable {
		t.Errorf("expected destination bed freed, got %s", icuBeds[0].Status)
	}
}

func TestHistory_Chronological(t *testing.T) {
	env := newTestEnv(t)
	a := env.admit(t, env.general.ID)

	if _, err := env.coordinator.Transfer(context.Background(), a.ID, Request{
		ToWardID: env.icu.ID, Reason: "escalation",
	}); err != nil {
		t.Fatalf("first transfer: %v", err)
	}
	if _, err := env.coordinator.Transfer(context.Background(), a.ID, Request{
		ToWardID: env.general.ID, Reason: "step down",
	}); err != nil {
		t.Fatalf("second transfer: %v", err)
	}

	history, err := env.coordinator.History(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 2 {
		t.Fatalf("expected 2 transfers, got %d", len(history))
	}
	if history[0].ToWardID != env.icu.ID || history[1].ToWardID != env.general.ID {
		t.Error("expected history in chronological order")
	}
	if history[1].FromBedID != history[0].ToBedID {
		t.Error("expected second transfer to start from the first destination bed")
	}
}

func TestHistory_UnknownAdmission(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.coordinator.History(context.Background(), uuid.New())
	if !errors.Is(err, admission.ErrAdmissionNotFound) {
		t.Errorf("expected ErrAdmissionNotFound, got %v", err)
	}
}

func TestHistory_Empty(t *testing.T) {
	env := newTestEnv(t)
	a := env.admit(t, env.general.ID)
	history, err := env.coordinator.History(context.Background(), a.ID)
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(history) != 0 {
		t.Errorf("expected empty history, got %d", len(history))
	}
}
