package patients

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/pkg/logging"
)

func TestEnsureForUserIsIdempotent(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), logging.Default())
	ctx := context.Background()

	dob := time.Date(1975, 6, 3, 0, 0, 0, 0, time.UTC)
	user := &auth.User{
		ID:          uuid.New(),
		Role:        "patient",
		FirstName:   "Luc",
		LastName:    "Bernard",
		DateOfBirth: &dob,
	}

	first, err := svc.EnsureForUser(ctx, user)
	if err != nil {
		t.Fatalf("first ensure: %v", err)
	}
	second, err := svc.EnsureForUser(ctx, user)
	if err != nil {
		t.Fatalf("second ensure: %v", err)
	}

	if first.ID != second.ID {
		t.Errorf("second ensure must return the same row: %s vs %s", first.ID, second.ID)
	}
	if second.FirstName != "Luc" || second.LastName != "Bernard" {
		t.Errorf("unexpected profile: %+v", second)
	}
}

func TestEnsureForUserDefaultsSentinels(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), logging.Default())

	user := &auth.User{ID: uuid.New(), Role: "patient"}
	patient, err := svc.EnsureForUser(context.Background(), user)
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if patient.FirstName != DefaultFirstName {
		t.Errorf("expected %q, got %q", DefaultFirstName, patient.FirstName)
	}
	if patient.LastName != DefaultLastName {
		t.Errorf("expected %q, got %q", DefaultLastName, patient.LastName)
	}
}

func TestProfileNotFound(t *testing.T) {
	svc := NewService(NewInMemoryRepository(), logging.Default())
	if _, err := svc.Profile(context.Background(), uuid.NewString()); err != ErrPatientNotFound {
		t.Errorf("expected ErrPatientNotFound, got %v", err)
	}
}
