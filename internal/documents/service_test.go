package documents

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/somnolink/somnolink/internal/auth"
	"github.com/somnolink/somnolink/internal/doctors"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

// mockS3Client keeps blobs in a map.
type mockS3Client struct {
	objects map[string][]byte
}

func newMockS3() *mockS3Client {
	return &mockS3Client{objects: make(map[string][]byte)}
}

func (m *mockS3Client) PutObject(_ context.Context, input *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	body, _ := io.ReadAll(input.Body)
	m.objects[*input.Key] = body
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3Client) GetObject(_ context.Context, input *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	data, ok := m.objects[*input.Key]
	if !ok {
		return nil, errors.New("NoSuchKey: key not found")
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(bytes.NewReader(data))}, nil
}

func (m *mockS3Client) DeleteObject(_ context.Context, input *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	delete(m.objects, *input.Key)
	return &s3.DeleteObjectOutput{}, nil
}

type stubGate struct{ active bool }

func (g *stubGate) ActiveBetween(ctx context.Context, doctorID, patientID uuid.UUID) (bool, error) {
	return g.active, nil
}

type documentFixture struct {
	svc        *Service
	s3         *mockS3Client
	gate       *stubGate
	patient    *patients.Patient
	patientUID uuid.UUID
	doctorUID  uuid.UUID
}

func newDocumentFixture(t *testing.T) *documentFixture {
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

	mock := newMockS3()
	gate := &stubGate{}
	svc := NewService(NewInMemoryRepository(), NewBlobStore(mock, "test-bucket", logging.Default()), doctorSvc, patientSvc, gate, logging.Default())
	return &documentFixture{svc: svc, s3: mock, gate: gate, patient: patient, patientUID: patientUser.ID, doctorUID: doctorUser.ID}
}

func TestUploadAndDownloadRoundTrip(t *testing.T) {
	f := newDocumentFixture(t)
	content := []byte("%PDF-1.4 rapport de polygraphie")

	d, err := f.svc.Upload(context.Background(), f.patientUID, "polygraphie.pdf", "application/pdf", content)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if d.Size != int64(len(content)) {
		t.Errorf("unexpected size %d", d.Size)
	}

	got, data, err := f.svc.Download(context.Background(), f.patientUID, d.ID.String())
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	if got.Filename != "polygraphie.pdf" || !bytes.Equal(data, content) {
		t.Error("round trip mismatch")
	}
}

func TestUploadValidation(t *testing.T) {
	f := newDocumentFixture(t)

	if _, err := f.svc.Upload(context.Background(), f.patientUID, "  ", "application/pdf", []byte("x")); !errors.Is(err, ErrFilenameRequired) {
		t.Errorf("expected ErrFilenameRequired, got %v", err)
	}
	big := make([]byte, maxDocumentSize+1)
	if _, err := f.svc.Upload(context.Background(), f.patientUID, "big.bin", "", big); !errors.Is(err, ErrDocumentTooLarge) {
		t.Errorf("expected ErrDocumentTooLarge, got %v", err)
	}
}

func TestUploadRefusedWhenStorageDisabled(t *testing.T) {
	f := newDocumentFixture(t)
	f.svc.blobs = NewBlobStore(nil, "", logging.Default())

	if _, err := f.svc.Upload(context.Background(), f.patientUID, "a.pdf", "", []byte("x")); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("expected ErrStorageDisabled, got %v", err)
	}
}

func TestDoctorAccessIsGated(t *testing.T) {
	f := newDocumentFixture(t)
	if _, err := f.svc.Upload(context.Background(), f.patientUID, "a.pdf", "", []byte("x")); err != nil {
		t.Fatalf("upload: %v", err)
	}
	identity := httpmiddleware.Identity{UserID: f.doctorUID, Role: httpmiddleware.RoleDoctor}

	if _, err := f.svc.ListForDoctor(context.Background(), identity, f.patient.ID.String()); !errors.Is(err, ErrAccessDenied) {
		t.Fatalf("expected ErrAccessDenied, got %v", err)
	}

	f.gate.active = true
	list, err := f.svc.ListForDoctor(context.Background(), identity, f.patient.ID.String())
	if err != nil || len(list) != 1 {
		t.Fatalf("gated list: %v (%d rows)", err, len(list))
	}

	_, data, err := f.svc.DownloadForDoctor(context.Background(), identity, f.patient.ID.String(), list[0].ID.String())
	if err != nil || string(data) != "x" {
		t.Fatalf("gated download: %v %q", err, data)
	}
}

func TestDeleteRemovesBlob(t *testing.T) {
	f := newDocumentFixture(t)
	d, err := f.svc.Upload(context.Background(), f.patientUID, "a.pdf", "", []byte("x"))
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := f.svc.Delete(context.Background(), f.patientUID, d.ID.String()); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if len(f.s3.objects) != 0 {
		t.Error("blob must be deleted with the row")
	}
}
