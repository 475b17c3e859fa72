package application

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/calendar"
	"github.com/example/irfit-gateway/internal/record"
)

// RecordBackend stores one kind of record on the webhook backend.
type RecordBackend[T any] interface {
	List(ctx context.Context) ([]T, error)
	Create(ctx context.Context, rec T) (T, error)
	Update(ctx context.Context, rec T) (T, error)
	Delete(ctx context.Context, id record.ID) error
}

// Entry is implemented by the dated, owned records that share the schedule
// and event workflow.
type Entry[T any] interface {
	calendar.Dated
	access.Owned
	RecordID() record.ID
	Base() record.Record
	WithBase(base record.Record) T
}

// recordInput is implemented by the caller supplied field sets.
type recordInput[T any] interface {
	timeRange() (start, end string)
	applyTo(rec T) T
}

// RecordService lists and mutates schedules or events on behalf of a viewer.
type RecordService[T Entry[T], I recordInput[T]] struct {
	name    string
	backend RecordBackend[T]
	now     func() time.Time
	logger  *slog.Logger
}

// ScheduleService manages studio schedules.
type ScheduleService = RecordService[record.Schedule, ScheduleInput]

// EventService manages events.
type EventService = RecordService[record.Event, EventInput]

// NewScheduleService constructs the schedule service.
func NewScheduleService(backend RecordBackend[record.Schedule], now func() time.Time, logger *slog.Logger) *ScheduleService {
	return newRecordService[record.Schedule, ScheduleInput]("ScheduleService", backend, now, logger)
}

// NewEventService constructs the event service.
func NewEventService(backend RecordBackend[record.Event], now func() time.Time, logger *slog.Logger) *EventService {
	return newRecordService[record.Event, EventInput]("EventService", backend, now, logger)
}

func newRecordService[T Entry[T], I recordInput[T]](name string, backend RecordBackend[T], now func() time.Time, logger *slog.Logger) *RecordService[T, I] {
	if now == nil {
		now = time.Now
	}
	return &RecordService[T, I]{
		name:    name,
		backend: backend,
		now:     now,
		logger:  defaultLogger(logger),
	}
}

func (s *RecordService[T, I]) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, s.name, operation, attrs...)
}

// List returns the records the viewer may view, narrowed by params, each
// annotated with the viewer's permissions. Input order is preserved.
//
// Anonymous viewers are rejected before the backend is contacted.
func (s *RecordService[T, I]) List(ctx context.Context, viewer *access.Viewer, params ListParams) (result []Annotated[T], err error) {
	if err = access.RequireViewer(viewer); err != nil {
		return nil, ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "List", "viewer_id", viewer.ID.String(), "mine", params.Mine)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "list failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	var records []T
	records, err = s.visible(ctx, viewer)
	if err != nil {
		return nil, err
	}
	if params.Mine {
		records = access.OwnedBy(records, viewer)
	}
	if params.Date != nil {
		records = calendar.RecordsOn(records, *params.Date)
	}

	result = make([]Annotated[T], 0, len(records))
	for _, rec := range records {
		result = append(result, Annotated[T]{Record: rec, Permissions: access.PermissionsFor(viewer, rec)})
	}
	return result, nil
}

// Month returns the month grid with the days that have active records the
// viewer may view.
func (s *RecordService[T, I]) Month(ctx context.Context, viewer *access.Viewer, year int, month time.Month) (MonthView, error) {
	if err := access.RequireViewer(viewer); err != nil {
		return MonthView{}, ErrUnauthenticated
	}

	vErr := &ValidationError{}
	if year < 1 || year > 9999 {
		vErr.add("year", "некорректный год")
	}
	if month < time.January || month > time.December {
		vErr.add("month", "месяц должен быть от 1 до 12")
	}
	if err := vErr.errOrNil(); err != nil {
		return MonthView{}, err
	}

	records, err := s.visible(ctx, viewer)
	if err != nil {
		s.loggerWith(ctx, "Month").ErrorContext(ctx, "month view failed", "error", err, "error_kind", ErrorKind(err))
		return MonthView{}, err
	}

	return MonthView{
		Year:  year,
		Month: month,
		Days:  calendar.MonthIndicators(records, year, month),
	}, nil
}

// Create stores a new record authored by the viewer.
func (s *RecordService[T, I]) Create(ctx context.Context, viewer *access.Viewer, input I) (created T, err error) {
	if err = access.RequireViewer(viewer); err != nil {
		return created, ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "Create", "viewer_id", viewer.ID.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "create failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "record created", "record_id", created.RecordID().String())
	}()

	if !access.CanCreate(viewer) {
		err = ErrForbidden
		return
	}
	if err = s.validate(input); err != nil {
		return
	}

	var zero T
	rec := input.applyTo(zero)
	base := rec.Base()
	base.ID = record.ID{}
	base.CreatedByID = viewer.ID
	base.UpdatedByID = viewer.ID
	rec = rec.WithBase(base)

	created, err = s.backend.Create(ctx, rec)
	return
}

// Update replaces the fields of an existing record. The author is kept and
// the viewer is stamped as the last editor.
func (s *RecordService[T, I]) Update(ctx context.Context, viewer *access.Viewer, id record.ID, input I) (updated T, err error) {
	if err = access.RequireViewer(viewer); err != nil {
		return updated, ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "Update", "viewer_id", viewer.ID.String(), "record_id", id.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "update failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "record updated")
	}()

	var current T
	current, err = s.find(ctx, id)
	if err != nil {
		return
	}
	if !access.PermissionsFor(viewer, current).CanEdit {
		err = ErrForbidden
		return
	}
	if err = s.validate(input); err != nil {
		return
	}

	previous := current.Base()
	rec := input.applyTo(current)
	base := rec.Base()
	base.ID = previous.ID
	base.CreatedByID = previous.CreatedByID
	base.UpdatedByID = viewer.ID
	rec = rec.WithBase(base)

	updated, err = s.backend.Update(ctx, rec)
	return
}

// Delete removes a record the viewer may delete.
func (s *RecordService[T, I]) Delete(ctx context.Context, viewer *access.Viewer, id record.ID) (err error) {
	if err = access.RequireViewer(viewer); err != nil {
		return ErrUnauthenticated
	}

	logger := s.loggerWith(ctx, "Delete", "viewer_id", viewer.ID.String(), "record_id", id.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "delete failed", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "record deleted")
	}()

	var current T
	current, err = s.find(ctx, id)
	if err != nil {
		return
	}
	if !access.PermissionsFor(viewer, current).CanDelete {
		err = ErrForbidden
		return
	}
	return s.backend.Delete(ctx, current.RecordID())
}

func (s *RecordService[T, I]) visible(ctx context.Context, viewer *access.Viewer) ([]T, error) {
	if s.backend == nil {
		return nil, fmt.Errorf("%s backend not configured", s.name)
	}
	records, err := s.backend.List(ctx)
	if err != nil {
		return nil, err
	}
	return access.Visible(records, viewer), nil
}

// find loads the current snapshot of a record. The backend has no single
// record endpoint, so the list is scanned. An exact match wins over a record
// whose identifier only shares the value.
func (s *RecordService[T, I]) find(ctx context.Context, id record.ID) (T, error) {
	var zero T
	if id.IsZero() {
		return zero, ErrNotFound
	}
	if s.backend == nil {
		return zero, fmt.Errorf("%s backend not configured", s.name)
	}
	records, err := s.backend.List(ctx)
	if err != nil {
		return zero, err
	}
	match, found := zero, false
	for _, rec := range records {
		if rec.RecordID() == id {
			return rec, nil
		}
		if !found && rec.RecordID().SameValue(id) {
			match, found = rec, true
		}
	}
	if found {
		return match, nil
	}
	return zero, ErrNotFound
}

func (s *RecordService[T, I]) validate(input I) error {
	vErr := validateInput(input)
	start, end := input.timeRange()
	vErr.merge(validateTimeRange(start, end))
	return vErr.errOrNil()
}
