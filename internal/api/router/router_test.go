package router

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/antecedents"
	"github.com/somnolink/somnolink/internal/appointments"
	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/internal/directory"
	"github.com/somnolink/somnolink/internal/doctors"
	"github.com/somnolink/somnolink/internal/documents"
	"github.com/somnolink/somnolink/internal/invitations"
	"github.com/somnolink/somnolink/internal/messaging"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/internal/realtime"
	"github.com/somnolink/somnolink/internal/terminology"
	"github.com/somnolink/somnolink/pkg/logging"
)

const testSecret = "test-secret"

type testRouter struct {
	handler   http.Handler
	tokens    *auth.TokenManager
	authSvc   *auth.Service
	doctorSvc *doctors.Service
}

func newTestRouter(t *testing.T) *testRouter {
	t.Helper()

	logger := logging.Default()
	tokens := auth.NewTokenManager(testSecret, time.Hour)

	doctorSvc := doctors.NewService(doctors.NewInMemoryRepository(), logger)
	patientSvc := patients.NewService(patients.NewInMemoryRepository(), logger)
	authSvc := auth.NewService(auth.NewInMemoryRepository(), tokens, nil, doctorSvc, logger)

	invitationSvc := invitations.NewService(invitations.NewInMemoryStore(), doctorSvc, patientSvc, authSvc, nil, nil, nil, logger)
	antecedentSvc := antecedents.NewService(antecedents.NewInMemoryRepository(), doctorSvc, patientSvc, invitationSvc, logger)
	appointmentSvc := appointments.NewService(appointments.NewInMemoryRepository(), doctorSvc, patientSvc, invitationSvc, nil, logger)

	db, _, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	messagingSvc := messaging.NewService(messaging.NewStore(db), doctorSvc, patientSvc, invitationSvc, nil, logger)

	terminologySvc := terminology.NewService(nil, nil, nil, logger)
	directorySvc := directory.NewService(doctorSvc, nil, nil, nil, true, true, logger)
	documentSvc := documents.NewService(documents.NewInMemoryRepository(), documents.NewBlobStore(nil, "", logger), doctorSvc, patientSvc, invitationSvc, logger)

	cfg := &Config{
		Logger:    logger,
		JWTSecret: testSecret,

		AuthHandler:         auth.NewHandler(authSvc, logger),
		DoctorsHandler:      doctors.NewHandler(doctorSvc, logger),
		InvitationsHandler:  invitations.NewHandler(invitationSvc, logger),
		AntecedentsHandler:  antecedents.NewHandler(antecedentSvc, logger),
		AppointmentsHandler: appointments.NewHandler(appointmentSvc, logger),
		MessagingHandler:    messaging.NewHandler(messagingSvc, logger),
		TerminologyHandler:  terminology.NewHandler(terminologySvc, logger),
		DirectoryHandler:    directory.NewHandler(directorySvc, logger),
		DocumentsHandler:    documents.NewHandler(documentSvc, logger),
		RealtimeHandler:     realtime.NewHandler(realtime.NewHub(logger), nil, logger),
	}

	return &testRouter{handler: New(cfg), tokens: tokens, authSvc: authSvc, doctorSvc: doctorSvc}
}

func (tr *testRouter) tokenFor(t *testing.T, role string) string {
	t.Helper()
	token, err := tr.tokens.Issue(&auth.User{ID: uuid.New(), Role: role})
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	return token
}

func (tr *testRouter) do(method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	tr.handler.ServeHTTP(rr, req)
	return rr
}

func TestHealthIsPublic(t *testing.T) {
	tr := newTestRouter(t)
	if rr := tr.do(http.MethodGet, "/health", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
}

func TestJoinResolveIsPublic(t *testing.T) {
	tr := newTestRouter(t)
	// Unknown token: public route answers 404, not 401.
	if rr := tr.do(http.MethodGet, "/api/join/unknown-token", ""); rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rr.Code)
	}
}

func TestSearchEndpointsArePublic(t *testing.T) {
	tr := newTestRouter(t)
	if rr := tr.do(http.MethodGet, "/api/doctor-search?q=martin", ""); rr.Code != http.StatusOK {
		t.Fatalf("doctor search: expected 200, got %d", rr.Code)
	}
	if rr := tr.do(http.MethodGet, "/api/medicaments-fr?q=metformine", ""); rr.Code != http.StatusOK {
		t.Fatalf("medication search: expected 200, got %d", rr.Code)
	}
}

func TestPrivateRoutesRequireAuth(t *testing.T) {
	tr := newTestRouter(t)
	paths := []string{
		"/api/appointments/",
		"/api/antecedents/",
		"/api/messaging/conversations",
		"/api/terminology-search?q=apnee",
		"/api/documents/",
	}
	for _, path := range paths {
		if rr := tr.do(http.MethodGet, path, ""); rr.Code != http.StatusUnauthorized {
			t.Errorf("%s: expected 401, got %d", path, rr.Code)
		}
	}
}

func TestRoleGates(t *testing.T) {
	tr := newTestRouter(t)

	patientToken := tr.tokenFor(t, "patient")
	if rr := tr.do(http.MethodGet, "/api/doctor/profile", patientToken); rr.Code != http.StatusForbidden {
		t.Errorf("patient on doctor route: expected 403, got %d", rr.Code)
	}

	doctorToken := tr.tokenFor(t, "doctor")
	if rr := tr.do(http.MethodGet, "/api/patient/doctors", doctorToken); rr.Code != http.StatusForbidden {
		t.Errorf("doctor on patient route: expected 403, got %d", rr.Code)
	}
}

func TestTerminologySimulatedSearchWorks(t *testing.T) {
	tr := newTestRouter(t)
	token := tr.tokenFor(t, "patient")

	rr := tr.do(http.MethodGet, "/api/terminology-search?q=apn%C3%A9e", token)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rr.Code, rr.Body.String())
	}
}
