package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/record"
)

// TeacherRequestService handles applications from users who want to teach.
type TeacherRequestService struct {
	backend RecordBackend[record.TeacherRequest]
	now     func() time.Time
	logger  *slog.Logger
}

// NewTeacherRequestService constructs a TeacherRequestService.
func NewTeacherRequestService(backend RecordBackend[record.TeacherRequest], now func() time.Time, logger *slog.Logger) *TeacherRequestService {
	if now == nil {
		now = time.Now
	}
	return &TeacherRequestService{backend: backend, now: now, logger: defaultLogger(logger)}
}

func (s *TeacherRequestService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "TeacherRequestService", operation, attrs...)
}

// Submit files a pending application on behalf of the viewer.
func (s *TeacherRequestService) Submit(ctx context.Context, viewer *access.Viewer, input TeacherRequestInput) (created record.TeacherRequest, err error) {
	if err = access.RequireViewer(viewer); err != nil {
		return created, ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "Submit", "viewer_id", viewer.ID.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "teacher request submission failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "teacher request submitted", "request_id", created.ID.String())
	}()

	if err = validateInput(input).errOrNil(); err != nil {
		return
	}

	req := record.TeacherRequest{
		CreatedByID:    viewer.ID,
		FullName:       strings.TrimSpace(input.FullName),
		Phone:          strings.TrimSpace(input.Phone),
		Email:          strings.TrimSpace(strings.ToLower(input.Email)),
		Specialization: strings.TrimSpace(input.Specialization),
		Message:        strings.TrimSpace(input.Message),
		Status:         record.TeacherRequestPending,
		CreatedAt:      s.now().UTC().Format(time.RFC3339),
	}

	if s.backend == nil {
		err = fmt.Errorf("teacher request backend not configured")
		return
	}
	created, err = s.backend.Create(ctx, req)
	return
}

// List returns every application for administrators and the viewer's own
// applications for everyone else.
func (s *TeacherRequestService) List(ctx context.Context, viewer *access.Viewer) ([]record.TeacherRequest, error) {
	if err := access.RequireViewer(viewer); err != nil {
		return nil, ErrUnauthenticated
	}
	if s.backend == nil {
		return nil, fmt.Errorf("teacher request backend not configured")
	}

	requests, err := s.backend.List(ctx)
	if err != nil {
		s.loggerWith(ctx, "List").ErrorContext(ctx, "list failed", "error", err, "error_kind", ErrorKind(err))
		return nil, err
	}
	if access.CanReviewTeacherRequests(viewer) {
		return requests, nil
	}
	return access.OwnedBy(requests, viewer), nil
}

// Review approves or rejects an application. Only administrators may review.
func (s *TeacherRequestService) Review(ctx context.Context, viewer *access.Viewer, id record.ID, status record.TeacherRequestStatus) (updated record.TeacherRequest, err error) {
	if err = access.RequireViewer(viewer); err != nil {
		return updated, ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "Review", "viewer_id", viewer.ID.String(), "request_id", id.String(), "status", string(status))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "teacher request review failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "teacher request reviewed")
	}()

	if !access.CanReviewTeacherRequests(viewer) {
		err = ErrForbidden
		return
	}
	if status != record.TeacherRequestApproved && status != record.TeacherRequestRejected {
		vErr := &ValidationError{}
		vErr.add("status", "статус должен быть approved или rejected")
		err = vErr
		return
	}

	var current record.TeacherRequest
	current, err = s.find(ctx, id)
	if err != nil {
		return
	}
	current.Status = status
	updated, err = s.backend.Update(ctx, current)
	return
}

// Delete removes an application. Only administrators may delete.
func (s *TeacherRequestService) Delete(ctx context.Context, viewer *access.Viewer, id record.ID) (err error) {
	if err = access.RequireViewer(viewer); err != nil {
		return ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "Delete", "viewer_id", viewer.ID.String(), "request_id", id.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "teacher request deletion failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "teacher request deleted")
	}()

	if !access.CanReviewTeacherRequests(viewer) {
		return ErrForbidden
	}
	current, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return s.backend.Delete(ctx, current.ID)
}

func (s *TeacherRequestService) find(ctx context.Context, id record.ID) (record.TeacherRequest, error) {
	if id.IsZero() {
		return record.TeacherRequest{}, ErrNotFound
	}
	if s.backend == nil {
		return record.TeacherRequest{}, fmt.Errorf("teacher request backend not configured")
	}
	requests, err := s.backend.List(ctx)
	if err != nil {
		return record.TeacherRequest{}, err
	}
	var match *record.TeacherRequest
	for i, req := range requests {
		if req.ID == id {
			return req, nil
		}
		if match == nil && req.ID.SameValue(id) {
			match = &requests[i]
		}
	}
	if match != nil {
		return *match, nil
	}
	return record.TeacherRequest{}, ErrNotFound
}
