package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/application"
	"github.com/example/irfit-gateway/internal/record"
)

type teacherRequestService interface {
	Submit(ctx context.Context, viewer *access.Viewer, input application.TeacherRequestInput) (record.TeacherRequest, error)
	List(ctx context.Context, viewer *access.Viewer) ([]record.TeacherRequest, error)
	Review(ctx context.Context, viewer *access.Viewer, id record.ID, status record.TeacherRequestStatus) (record.TeacherRequest, error)
	Delete(ctx context.Context, viewer *access.Viewer, id record.ID) error
}

// TeacherRequestHandler serves /teacher-requests.
type TeacherRequestHandler struct {
	service   teacherRequestService
	responder responder
	logger    *slog.Logger
}

// NewTeacherRequestHandler constructs a TeacherRequestHandler.
func NewTeacherRequestHandler(service teacherRequestService, logger *slog.Logger) *TeacherRequestHandler {
	base := defaultLogger(logger)
	return &TeacherRequestHandler{service: service, responder: newResponder(base), logger: base}
}

// List handles GET /teacher-requests.
func (h *TeacherRequestHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	requests, err := h.service.List(r.Context(), ViewerFromContext(r.Context()))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]teacherRequestDTO, 0, len(requests))
	for _, req := range requests {
		dtos = append(dtos, toTeacherRequestDTO(req))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listTeacherRequestsResponse{Requests: dtos})
}

// Submit handles POST /teacher-requests.
func (h *TeacherRequestHandler) Submit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var input application.TeacherRequestInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	created, err := h.service.Submit(r.Context(), ViewerFromContext(r.Context()), input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, teacherRequestResponse{Request: toTeacherRequestDTO(created)})
}

// Review handles PUT /teacher-requests/{id} with a {"status"} body.
func (h *TeacherRequestHandler) Review(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	var req reviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	status := record.TeacherRequestStatus(strings.ToLower(strings.TrimSpace(req.Status)))
	reviewed, err := h.service.Review(r.Context(), ViewerFromContext(r.Context()), id, status)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, teacherRequestResponse{Request: toTeacherRequestDTO(reviewed)})
}

// Delete handles DELETE /teacher-requests/{id}.
func (h *TeacherRequestHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	if err := h.service.Delete(r.Context(), ViewerFromContext(r.Context()), id); err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type reviewRequest struct {
	Status string `json:"status"`
}

type teacherRequestResponse struct {
	Request teacherRequestDTO `json:"request"`
}

type listTeacherRequestsResponse struct {
	Requests []teacherRequestDTO `json:"requests"`
}

type teacherRequestDTO struct {
	ID             record.ID `json:"id"`
	CreatedByID    record.ID `json:"created_by_id"`
	FullName       string    `json:"full_name"`
	Phone          string    `json:"phone,omitempty"`
	Email          string    `json:"email,omitempty"`
	Specialization string    `json:"specialization,omitempty"`
	Message        string    `json:"message,omitempty"`
	Status         string    `json:"status"`
	CreatedAt      string    `json:"created_at,omitempty"`
}

func toTeacherRequestDTO(req record.TeacherRequest) teacherRequestDTO {
	return teacherRequestDTO{
		ID:             req.ID,
		CreatedByID:    req.CreatedByID,
		FullName:       req.FullName,
		Phone:          req.Phone,
		Email:          req.Email,
		Specialization: req.Specialization,
		Message:        req.Message,
		Status:         string(req.Status),
		CreatedAt:      req.CreatedAt,
	}
}
