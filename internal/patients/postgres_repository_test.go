package patients

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	pgxmock "github.com/pashagolub/pgxmock/v4"
)

func TestEnsureInsertsThenSelects(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	userID := uuid.New()
	patientID := uuid.New()

	mock.ExpectExec("INSERT INTO patients").
		WithArgs(pgxmock.AnyArg(), userID, "Luc", "Bernard", (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	rows := pgxmock.NewRows([]string{"id", "user_id", "first_name", "last_name", "date_of_birth", "created_at"}).
		AddRow(patientID, userID, "Luc", "Bernard", nil, time.Now().UTC())
	mock.ExpectQuery("SELECT id, user_id").WithArgs(userID.String()).WillReturnRows(rows)

	got, err := repo.Ensure(context.Background(), &Patient{
		ID:        uuid.New(),
		UserID:    userID,
		FirstName: "Luc",
		LastName:  "Bernard",
	})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got.ID != patientID {
		t.Errorf("expected stored row to win, got %s", got.ID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestEnsureConflictReturnsExistingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgx mock: %v", err)
	}
	defer mock.Close()

	repo := NewPostgresRepository(mock)
	userID := uuid.New()
	existing := uuid.New()

	// Conflict: insert affects zero rows, select returns the earlier profile.
	mock.ExpectExec("INSERT INTO patients").
		WithArgs(pgxmock.AnyArg(), userID, "Patient", "Inconnu", (*time.Time)(nil)).
		WillReturnResult(pgxmock.NewResult("INSERT", 0))
	rows := pgxmock.NewRows([]string{"id", "user_id", "first_name", "last_name", "date_of_birth", "created_at"}).
		AddRow(existing, userID, "Luc", "Bernard", nil, time.Now().UTC())
	mock.ExpectQuery("SELECT id, user_id").WithArgs(userID.String()).WillReturnRows(rows)

	got, err := repo.Ensure(context.Background(), &Patient{
		ID:        uuid.New(),
		UserID:    userID,
		FirstName: "Patient",
		LastName:  "Inconnu",
	})
	if err != nil {
		t.Fatalf("ensure: %v", err)
	}
	if got.ID != existing || got.FirstName != "Luc" {
		t.Errorf("expected the existing row, got %+v", got)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
