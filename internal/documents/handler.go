package documents

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/somnolink/somnolink/internal/api/respond"
	"github.com/somnolink/somnolink/internal/doctors"
	httpmiddleware "github.com/somnolink/somnolink/internal/http/middleware"
	"github.com/somnolink/somnolink/internal/patients"
	"github.com/somnolink/somnolink/pkg/logging"
)

// Handler handles HTTP requests for documents
type Handler struct {
	service *Service
	logger  *logging.Logger
}

// NewHandler creates a new documents handler
func NewHandler(service *Service, logger *logging.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Upload handles POST /api/documents (multipart, field "file")
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	if err := r.ParseMultipartForm(maxDocumentSize); err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxDocumentSize+1))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
		return
	}

	d, err := h.service.Upload(r.Context(), identity.UserID, header.Filename, header.Header.Get("Content-Type"), data)
	if err != nil {
		h.fail(w, err, "upload document failed")
		return
	}
	respond.Success(w, http.StatusCreated, map[string]any{"document": d})
}

// List handles GET /api/documents. Patients read their own files; doctors
// pass ?patient_id= and go through the relationship gate.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	var (
		list []*Document
		err  error
	)
	if identity.Role == httpmiddleware.RoleDoctor {
		patientID := r.URL.Query().Get("patient_id")
		if patientID == "" {
			respond.Error(w, http.StatusBadRequest, respond.MsgInvalidBody)
			return
		}
		list, err = h.service.ListForDoctor(r.Context(), identity, patientID)
	} else {
		list, err = h.service.ListOwn(r.Context(), identity.UserID)
	}
	if err != nil {
		h.fail(w, err, "list documents failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"documents": list})
}

// Download handles GET /api/documents/{id}
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())
	id := chi.URLParam(r, "id")

	var (
		d    *Document
		data []byte
		err  error
	)
	if identity.Role == httpmiddleware.RoleDoctor {
		d, data, err = h.service.DownloadForDoctor(r.Context(), identity, r.URL.Query().Get("patient_id"), id)
	} else {
		d, data, err = h.service.Download(r.Context(), identity.UserID, id)
	}
	if err != nil {
		h.fail(w, err, "download document failed")
		return
	}

	w.Header().Set("Content-Type", d.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", d.Filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// Delete handles DELETE /api/documents/{id}
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	identity, _ := httpmiddleware.IdentityFromContext(r.Context())

	if err := h.service.Delete(r.Context(), identity.UserID, chi.URLParam(r, "id")); err != nil {
		h.fail(w, err, "delete document failed")
		return
	}
	respond.Success(w, http.StatusOK, map[string]any{"deleted": true})
}

func (h *Handler) fail(w http.ResponseWriter, err error, logMsg string) {
	switch {
	case errors.Is(err, ErrDocumentNotFound),
		errors.Is(err, doctors.ErrDoctorNotFound),
		errors.Is(err, patients.ErrPatientNotFound):
		respond.Error(w, http.StatusNotFound, respond.MsgNotFound)
	case errors.Is(err, ErrAccessDenied):
		respond.Error(w, http.StatusForbidden, err.Error())
	case errors.Is(err, ErrFilenameRequired):
		respond.Error(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, ErrDocumentTooLarge):
		respond.Error(w, http.StatusRequestEntityTooLarge, err.Error())
	case errors.Is(err, ErrStorageDisabled):
		respond.Error(w, http.StatusServiceUnavailable, err.Error())
	default:
		h.logger.Error(logMsg, "error", err)
		respond.Error(w, http.StatusInternalServerError, respond.MsgInternal)
	}
}
