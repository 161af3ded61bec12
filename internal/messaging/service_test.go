package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

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

func newMessagingService(t *testing.T, gate *stubGate) (*Service, *patients.Patient, uuid.UUID, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	doctorSvc := doctors.NewService(doctors.NewInMemoryRepository(), logging.Default())
	patientSvc := patients.NewService(patients.NewInMemoryRepository(), logging.Default())

	patientUser := &auth.User{ID: uuid.New(), Role: "patient", FirstName: "Claire", LastName: "Dubois"}
	patient, err := patientSvc.EnsureForUser(context.Background(), patientUser)
	require.NoError(t, err)

	svc := NewService(NewStore(db), doctorSvc, patientSvc, gate, nil, logging.Default())
	return svc, patient, patientUser.ID, mock
}

func TestOpenConversationRequiresActiveRelationship(t *testing.T) {
	svc, _, patientUserID, mock := newMessagingService(t, &stubGate{active: false})
	identity := httpmiddleware.Identity{UserID: patientUserID, Role: httpmiddleware.RolePatient}

	_, err := svc.OpenConversation(context.Background(), identity, uuid.New().String())
	require.True(t, errors.Is(err, ErrRelationshipRequired))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSendRejectsInvalidBodies(t *testing.T) {
	svc, _, patientUserID, _ := newMessagingService(t, &stubGate{active: true})
	identity := httpmiddleware.Identity{UserID: patientUserID, Role: httpmiddleware.RolePatient}

	_, err := svc.Send(context.Background(), identity, uuid.New().String(), &SendMessageRequest{Body: "   "})
	require.True(t, errors.Is(err, ErrEmptyMessage))

	long := strings.Repeat("a", maxMessageLength+1)
	_, err = svc.Send(context.Background(), identity, uuid.New().String(), &SendMessageRequest{Body: long})
	require.True(t, errors.Is(err, ErrMessageTooLong))
}

func TestOpenConversationUnknownPartyID(t *testing.T) {
	svc, _, patientUserID, _ := newMessagingService(t, &stubGate{active: true})
	identity := httpmiddleware.Identity{UserID: patientUserID, Role: httpmiddleware.RolePatient}

	_, err := svc.OpenConversation(context.Background(), identity, "not-a-uuid")
	require.True(t, errors.Is(err, ErrConversationNotFound))
}
