package admission

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"

	"github.com/hims/hims/internal/domain/ward"
)

type testEnv struct {
	ledger    *Ledger
	registry  *ward.Registry
	allocator *ward.Allocator
	ward      *ward.Ward
}

func newTestEnv(t *testing.T, beds int) *testEnv {
	t.Helper()
	registry := ward.NewRegistry(ward.NewMemRepo())
	allocator := ward.NewAllocator(registry)
	w, err := allocator.CreateWard(context.Background(), "General", "GEN", beds)
	if err != nil {
		t.Fatalf("create ward: %v", err)
	}
	return &testEnv{
		ledger:    NewLedger(NewMemRepo(), registry, allocator),
		registry:  registry,
		allocator: allocator,
		ward:      w,
	}
}

func validAdmit(wardID uuid.UUID) AdmitRequest {
	return AdmitRequest{
		PatientID:   uuid.New(),
		PatientName: "Asha Patel",
		WardID:      wardID,
		DoctorID:    uuid.New(),
		DoctorName:  "Dr. Rao",
		Diagnosis:   "pneumonia",
	}
}

func TestAdmit(t *testing.T) {
	env := newTestEnv(t, 2)
	a, err := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if a.Status != StatusActive {
		t.Errorf("expected active, got %s", a.Status)
	}
	if a.WardID != env.ward.ID {
		t.Errorf("unexpected ward id")
	}

	bed, err := env.registry.GetBed(context.Background(), a.BedID)
	if err != nil {
		t.Fatalf("get bed: %v", err)
	}
	if bed.Status != ward.BedOccupied {
		t.Errorf("expected bed occupied, got %s", bed.Status)
	}
	if bed.OccupantAdmissionID == nil || *bed.OccupantAdmissionID != a.ID {
		t.Error("expected bed to reference the admission")
	}
	if bed.Number != 1 {
		t.Errorf("expected lowest numbered bed, got %d", bed.Number)
	}
}

func TestAdmit_ValidationErrors(t *testing.T) {
	env := newTestEnv(t, 1)
	cases := []struct {
		name   string
		mutate func(*AdmitRequest)
	}{
		{"missing patient id", func(r *AdmitRequest) { r.PatientID = uuid.Nil }},
		{"blank patient name", func(r *AdmitRequest) { r.PatientName = "  " }},
		{"missing ward id", func(r *AdmitRequest) { r.WardID = uuid.Nil }},
		{"missing doctor id", func(r *AdmitRequest) { r.DoctorID = uuid.Nil }},
		{"blank diagnosis", func(r *AdmitRequest) { r.Diagnosis = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := validAdmit(env.ward.ID)
			tc.mutate(&req)
			_, err := env.ledger.Admit(context.Background(), req)
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("expected ErrInvalid, got %v", err)
			}
		})
	}
}

func TestAdmit_WardFull(t *testing.T) {
	env := newTestEnv(t, 1)
	if _, err := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID)); err != nil {
		t.Fatalf("first admit: %v", err)
	}
	_, err := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	if !errors.Is(err, ward.ErrNoBedsAvailable) {
		t.Errorf("expected ErrNoBedsAvailable, got %v", err)
	}
}

func TestAdmit_UnknownWard(t *testing.T) {
	env := newTestEnv(t, 1)
	_, err := env.ledger.Admit(context.Background(), validAdmit(uuid.New()))
	if !errors.Is(err, ward.ErrWardNotFound) {
		t.Errorf("expected ErrWardNotFound, got %v", err)
	}
}

// failOnCreateRepo forces the persistence step to fail so the bed
// rollback path can be observed.
type failOnCreateRepo struct {
	Repository
}

func (r *failOnCreateRepo) Create(context.Context, *Admission) error {
	return fmt.Errorf("store unavailable")
}

func TestAdmit_CreateFailureReleasesBed(t *testing.T) {
	registry := ward.NewRegistry(ward.NewMemRepo())
	allocator := ward.NewAllocator(registry)
	w, err := allocator.CreateWard(context.Background(), "General", "GEN", 1)
	if err != nil {
		t.Fatalf("create ward: %v", err)
	}
	ledger := NewLedger(&failOnCreateRepo{NewMemRepo()}, registry, allocator)

	_, err = ledger.Admit(context.Background(), validAdmit(w.ID))
	if err == nil {
		t.Fatal("expected admit to fail")
	}
	beds, _ := registry.ListBeds(context.Background(), w.ID)
	if beds[0].Status != ward.BedAvailable {
		t.Errorf("expected bed released after failed create, got %s", beds[0].Status)
	}
}

func TestSetClinicalStatus(t *testing.T) {
	env := newTestEnv(t, 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))

	updated, err := env.ledger.SetClinicalStatus(context.Background(), a.ID, StatusCritical)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != StatusCritical {
		t.Errorf("expected critical, got %s", updated.Status)
	}

	updated, err = env.ledger.SetClinicalStatus(context.Background(), a.ID, StatusStable)
	if err != nil {
		t.Fatalf("set status: %v", err)
	}
	if updated.Status != StatusStable {
		t.Errorf("expected stable, got %s", updated.Status)
	}
}

func TestSetClinicalStatus_Invalid(t *testing.T) {
	env := newTestEnv(t, 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))

	_, err := env.ledger.SetClinicalStatus(context.Background(), a.ID, "comatose")
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid, got %v", err)
	}
	_, err = env.ledger.SetClinicalStatus(context.Background(), a.ID, StatusDischarged)
	if !errors.Is(err, ErrInvalid) {
		t.Errorf("expected ErrInvalid for direct discharge, got %v", err)
	}
}

func TestSetClinicalStatus_AfterDischarge(t *testing.T) {
	env := newTestEnv(t, 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	if _, err := env.ledger.Conclude(context.Background(), a.ID, nil); err != nil {
		t.Fatalf("conclude: %v", err)
	}
	_, err := env.ledger.SetClinicalStatus(context.Background(), a.ID, StatusStable)
	if !errors.Is(err, ErrAdmissionDischarged) {
		t.Errorf("expected ErrAdmissionDischarged, got %v", err)
	}
}

func TestRelocate(t *testing.T) {
	env := newTestEnv(t, 1)
	icu, err := env.allocator.CreateWard(context.Background(), "Intensive Care", "ICU", 1)
	if err != nil {
		t.Fatalf("create ward: %v", err)
	}
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	origBed := a.BedID

	var got Relocation
	moved, err := env.ledger.Relocate(context.Background(), a.ID, icu.ID, func(rel Relocation) error {
		got = rel
		return nil
	})
	if err != nil {
		t.Fatalf("relocate: %v", err)
	}
	if moved.WardID != icu.ID {
		t.Errorf("expected admission in ICU")
	}
	if got.FromWardID != env.ward.ID || got.ToWardID != icu.ID {
		t.Errorf("unexpected relocation snapshot: %+v", got)
	}
	if got.FromBed.ID != origBed || got.ToBed.ID != moved.BedID {
		t.Error("relocation beds do not match admission movement")
	}

	oldBed, _ := env.registry.GetBed(context.Background(), origBed)
	newBed, _ := env.registry.GetBed(context.Background(), moved.BedID)
	if oldBed.Status != ward.BedAvailable {
		t.Errorf("expected old bed freed, got %s", oldBed.Status)
	}
	if newBed.Status != ward.BedOccupied || *newBed.OccupantAdmissionID != a.ID {
		t.Error("expected new bed occupied by the admission")
	}
}

func TestRelocate_DestinationFull(t *testing.T) {
	env := newTestEnv(t, 1)
	icu, _ := env.allocator.CreateWard(context.Background(), "Intensive Care", "ICU", 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	if _, err := env.ledger.Admit(context.Background(), validAdmit(icu.ID)); err != nil {
		t.Fatalf("fill icu: %v", err)
	}

	_, err := env.ledger.Relocate(context.Background(), a.ID, icu.ID, nil)
	if !errors.Is(err, ward.ErrNoBedsAvailable) {
		t.Errorf("expected ErrNoBedsAvailable, got %v", err)
	}
	// The admission keeps its original placement.
	cur, _ := env.ledger.GetAdmission(context.Background(), a.ID)
	if cur.WardID != env.ward.ID || cur.BedID != a.BedID {
		t.Error("expected admission unchanged after failed relocate")
	}
}

func TestRelocate_RecordFailureRollsBack(t *testing.T) {
	env := newTestEnv(t, 1)
	icu, _ := env.allocator.CreateWard(context.Background(), "Intensive Care", "ICU", 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))

	_, err := env.ledger.Relocate(context.Background(), a.ID, icu.ID, func(Relocation) error {
		return fmt.Errorf("history write failed")
	})
	if err == nil {
		t.Fatal("expected relocate to fail")
	}

	cur, _ := env.ledger.GetAdmission(context.Background(), a.ID)
	if cur.WardID != env.ward.ID || cur.BedID != a.BedID {
		t.Error("expected admission restored to original bed")
	}
	origBed, _ := env.registry.GetBed(context.Background(), a.BedID)
	if origBed.Status != ward.BedOccupied || *origBed.OccupantAdmissionID != a.ID {
		t.Error("expected original bed re-occupied")
	}
	icuBeds, _ := env.registry.ListBeds(context.Background(), icu.ID)
	if icuBeds[0].Status != ward.BedAvailable {
		t.Errorf("expected destination bed freed, got %s", icuBeds[0].Status)
	}
}

func TestRelocate_Discharged(t *testing.T) {
	env := newTestEnv(t, 2)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	env.ledger.Conclude(context.Background(), a.ID, nil)

	_, err := env.ledger.Relocate(context.Background(), a.ID, env.ward.ID, nil)
	if !errors.Is(err, ErrAdmissionDischarged) {
		t.Errorf("expected ErrAdmissionDischarged, got %v", err)
	}
}

func TestConclude(t *testing.T) {
	env := newTestEnv(t, 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))

	var recorded *Admission
	done, err := env.ledger.Conclude(context.Background(), a.ID, func(a *Admission) error {
		recorded = a
		return nil
	})
	if err != nil {
		t.Fatalf("conclude: %v", err)
	}
	if done.Status != StatusDischarged {
		t.Errorf("expected discharged, got %s", done.Status)
	}
	if recorded == nil || recorded.ID != a.ID {
		t.Error("expected record callback to receive the admission")
	}

	bed, _ := env.registry.GetBed(context.Background(), a.BedID)
	if bed.Status != ward.BedAvailable {
		t.Errorf("expected bed freed, got %s", bed.Status)
	}
}

func TestConclude_Twice(t *testing.T) {
	env := newTestEnv(t, 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	if _, err := env.ledger.Conclude(context.Background(), a.ID, nil); err != nil {
		t.Fatalf("first conclude: %v", err)
	}
	_, err := env.ledger.Conclude(context.Background(), a.ID, nil)
	if !errors.Is(err, ErrAdmissionDischarged) {
		t.Errorf("expected ErrAdmissionDischarged, got %v", err)
	}
}

func TestConclude_RecordFailureRestoresAdmission(t *testing.T) {
	env := newTestEnv(t, 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	env.ledger.SetClinicalStatus(context.Background(), a.ID, StatusStable)

	_, err := env.ledger.Conclude(context.Background(), a.ID, func(*Admission) error {
		return fmt.Errorf("history write failed")
	})
	if err == nil {
		t.Fatal("expected conclude to fail")
	}

	cur, _ := env.ledger.GetAdmission(context.Background(), a.ID)
	if cur.Status != StatusStable {
		t.Errorf("expected prior status restored, got %s", cur.Status)
	}
	bed, _ := env.registry.GetBed(context.Background(), a.BedID)
	if bed.Status != ward.BedOccupied || *bed.OccupantAdmissionID != a.ID {
		t.Error("expected bed re-claimed after failed record")
	}
}

func TestConclude_BedTakenDuringRecordFailureStaysDischarged(t *testing.T) {
	env := newTestEnv(t, 1)
	a, _ := env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))

	_, err := env.ledger.Conclude(context.Background(), a.ID, func(adm *Admission) error {
		// Housekeeping takes the freed bed out of service while the
		// record write is failing.
		if serr := env.allocator.SetBedStatus(context.Background(), adm.BedID, ward.BedMaintenance); serr != nil {
			t.Fatalf("set bed status: %v", serr)
		}
		return fmt.Errorf("history write failed")
	})
	if err == nil {
		t.Fatal("expected conclude to fail")
	}

	// The bed could not be re-claimed, so the admission must stay
	// discharged instead of becoming active without a bed.
	cur, _ := env.ledger.GetAdmission(context.Background(), a.ID)
	if cur.Status != StatusDischarged {
		t.Errorf("expected admission to remain discharged, got %s", cur.Status)
	}
	bed, _ := env.registry.GetBed(context.Background(), a.BedID)
	if bed.Status != ward.BedMaintenance {
		t.Errorf("expected bed left in maintenance, got %s", bed.Status)
	}
}

func TestListAdmissions_Filters(t *testing.T) {
	env := newTestEnv(t, 5)
	icu, _ := env.allocator.CreateWard(context.Background(), "Intensive Care", "ICU", 2)

	patient := uuid.New()
	req := validAdmit(env.ward.ID)
	req.PatientID = patient
	a1, _ := env.ledger.Admit(context.Background(), req)
	env.ledger.Admit(context.Background(), validAdmit(env.ward.ID))
	env.ledger.Admit(context.Background(), validAdmit(icu.ID))

	got, total, err := env.ledger.ListAdmissions(context.Background(), Filter{PatientID: patient}, 20, 0)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if total != 1 || len(got) != 1 || got[0].ID != a1.ID {
		t.Errorf("expected only the patient's admission, got %d", total)
	}

	_, total, _ = env.ledger.ListAdmissions(context.Background(), Filter{WardID: icu.ID}, 20, 0)
	if total != 1 {
		t.Errorf("expected 1 ICU admission, got %d", total)
	}

	env.ledger.Conclude(context.Background(), a1.ID, nil)
	_, total, _ = env.ledger.ListAdmissions(context.Background(), Filter{ActiveOnly: true}, 20, 0)
	if total != 2 {
		t.Errorf("expected 2 active admissions, got %d", total)
	}
	_, total, _ = env.ledger.ListAdmissions(context.Background(), Filter{}, 20, 0)
	if total != 3 {
		t.Errorf("expected 3 admissions unfiltered, got %d", total)
	}
}
