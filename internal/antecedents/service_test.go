package antecedents

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/internal/doctors"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

type stubGate struct{ active bool }

func (g *stubGate) ActiveBetween(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	return g.active, nil
}

type antecedentFixture struct {
	svc        *Service
	gate       *stubGate
	patient    *patients.Patient
	patientUID uuid.UUID
	doctorUID  uuid.UUID
}

func newAntecedentFixture(t *testing.T) *antecedentFixture {
	t.Helper()

	doctorSvc := doctors.NewService(doctors.NewInMemoryRepository(), logging.Default())
	patientSvc := patients.NewService(patients.NewInMemoryRepository(), logging.Default())

	doctorUser := &auth.User{ID: uuid.New(), Role: "doctor", FirstName: "Jean", LastName: "Martin"}
	if err := doctorSvc.OnSignup(context.Background(), doctorUser); err != nil {
		t.Fatalf("seed doctor: %v", err)
	}

	patientUser := &auth.User{ID: uuid.New(), Role: "patient", FirstName: "Claire", LastName: "Dubois"}
	patient, err := patientSvc.EnsureForUser(context.Background(), patientUser)
	if err != nil {
		t.Fatalf("seed patient: %v", err)
	}

	gate := &stubGate{}
	svc := NewService(NewInMemoryRepository(), doctorSvc, patientSvc, gate, logging.Default())
	return &antecedentFixture{svc: svc, gate: gate, patient: patient, patientUID: patientUser.ID, doctorUID: doctorUser.ID}
}

func TestCreateValidates(t *testing.T) {
	f := newAntecedentFixture(t)

	cases := []struct {
		name string
		req  UpsertRequest
		want error
	}{
		{"blank label", UpsertRequest{Kind: KindMedical, Label: "  "}, ErrLabelRequired},
		{"unknown kind", UpsertRequest{Kind: "autre", Label: "Asthme"}, ErrInvalidKind},
		{"unknown code system", UpsertRequest{Kind: KindMedical, Label: "Asthme", Code: "CA23", CodeSystem: "SNOMED"}, ErrInvalidCodeSystem},
		{"implausible year", UpsertRequest{Kind: KindMedical, Label: "Asthme", Year: 1850}, ErrInvalidYear},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := f.svc.Create(context.Background(), f.patientUID, &tc.req); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestPatientOwnsLifecycle(t *testing.T) {
	f := newAntecedentFixture(t)

	created, err := f.svc.Create(context.Background(), f.patientUID, &UpsertRequest{
		Kind: KindSurgical, Label: "Appendicectomie", Year: 2015,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	list, err := f.svc.ListOwn(context.Background(), f.patientUID)
	if err != nil || len(list) != 1 {
		t.Fatalf("list: %v (%d rows)", err, len(list))
	}

	updated, err := f.svc.Update(context.Background(), f.patientUID, created.ID.String(), &UpsertRequest{
		Kind: KindSurgical, Label: "Appendicectomie", Code: "QB50", CodeSystem: SystemICD11, Year: 2015,
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.Code != "QB50" || updated.CodeSystem != SystemICD11 {
		t.Errorf("expected coded entry, got %+v", updated)
	}

	if err := f.svc.Delete(context.Background(), f.patientUID, created.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := f.svc.Delete(context.Background(), f.patientUID, created.ID.String()); !errors.Is(err, ErrAntecedentNotFound) {
		t.Errorf("second delete should fail, got %v", err)
	}
}

func TestDoctorReadRequiresActiveRelationship(t *testing.T) {
	f := newAntecedentFixture(t)
	identity := httpmiddleware.Identity{UserID: f.doctorUID, Role: httpmiddleware.RoleDoctor}

	if _, err := f.svc.ListForDoctor(context.Background(), identity, f.patient.ID.String()); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	f.gate.active = true
	if _, err := f.svc.ListForDoctor(context.Background(), identity, f.patient.ID.String()); err != nil {
		t.Fatalf("gated read: %v", err)
	}
}
