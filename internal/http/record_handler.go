package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/application"
	"github.com/example/irfit-gateway/internal/calendar"
	"github.com/example/irfit-gateway/internal/record"
)

type recordService[T any, I any] interface {
	List(ctx context.Context, viewer *access.Viewer, params application.ListParams) ([]application.Annotated[T], error)
	Create(ctx context.Context, viewer *access.Viewer, input I) (T, error)
	Update(ctx context.Context, viewer *access.Viewer, id record.ID, input I) (T, error)
	Delete(ctx context.Context, viewer *access.Viewer, id record.ID) error
}

// RecordHandler serves the list and mutation endpoints of one record kind.
type RecordHandler[T access.Owned, I any, D any] struct {
	name      string
	itemKey   string
	listKey   string
	service   recordService[T, I]
	toDTO     func(rec T, perms access.Permissions) D
	responder responder
	logger    *slog.Logger
}

// ScheduleHandler serves /schedules.
type ScheduleHandler = RecordHandler[record.Schedule, application.ScheduleInput, scheduleDTO]

// EventHandler serves /events.
type EventHandler = RecordHandler[record.Event, application.EventInput, eventDTO]

// NewScheduleHandler constructs the /schedules handler.
func NewScheduleHandler(service recordService[record.Schedule, application.ScheduleInput], logger *slog.Logger) *ScheduleHandler {
	return newRecordHandler[record.Schedule, application.ScheduleInput, scheduleDTO]("ScheduleHandler", "schedule", "schedules", service, toScheduleDTO, logger)
}

// NewEventHandler constructs the /events handler.
func NewEventHandler(service recordService[record.Event, application.EventInput], logger *slog.Logger) *EventHandler {
	return newRecordHandler[record.Event, application.EventInput, eventDTO]("EventHandler", "event", "events", service, toEventDTO, logger)
}

func newRecordHandler[T access.Owned, I any, D any](name, itemKey, listKey string, service recordService[T, I], toDTO func(T, access.Permissions) D, logger *slog.Logger) *RecordHandler[T, I, D] {
	base := defaultLogger(logger)
	return &RecordHandler[T, I, D]{
		name:      name,
		itemKey:   itemKey,
		listKey:   listKey,
		service:   service,
		toDTO:     toDTO,
		responder: newResponder(base),
		logger:    base,
	}
}

func (h *RecordHandler[T, I, D]) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return handlerLogger(ctx, h.logger, h.name, operation, attrs...)
}

// List handles GET with optional date and mine query parameters.
func (h *RecordHandler[T, I, D]) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	params, err := parseListParams(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	items, err := h.service.List(r.Context(), ViewerFromContext(r.Context()), params)
	if err != nil {
		h.log(r.Context(), "List").ErrorContext(r.Context(), "list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	dtos := make([]D, 0, len(items))
	for _, item := range items {
		dtos = append(dtos, h.toDTO(item.Record, item.Permissions))
	}
	h.responder.writeJSON(r.Context(), w, http.StatusOK, map[string]any{h.listKey: dtos})
}

// Create handles POST.
func (h *RecordHandler[T, I, D]) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var input I
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	viewer := ViewerFromContext(r.Context())
	created, err := h.service.Create(r.Context(), viewer, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.render(r.Context(), w, viewer, created, http.StatusCreated)
}

// Update handles PUT /{id}.
func (h *RecordHandler[T, I, D]) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := pathID(r)
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRecordID)
		return
	}

	var input I
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	viewer := ViewerFromContext(r.Context())
	updated, err := h.service.Update(r.Context(), viewer, id, input)
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.render(r.Context(), w, viewer, updated, http.StatusOK)
}

// Delete handles DELETE /{id}.
func (h *RecordHandler[T, I, D]) Delete(w http.ResponseWriter, r *http.Request) {
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

func (h *RecordHandler[T, I, D]) render(ctx context.Context, w http.ResponseWriter, viewer *access.Viewer, rec T, status int) {
	dto := h.toDTO(rec, access.PermissionsFor(viewer, rec))
	h.responder.writeJSON(ctx, w, status, map[string]any{h.itemKey: dto})
}

func parseListParams(r *http.Request) (application.ListParams, error) {
	query := r.URL.Query()
	params := application.ListParams{}

	if raw := strings.TrimSpace(query.Get("date")); raw != "" {
		if len(raw) != len("2006-01-02") {
			return params, errInvalidDate
		}
		day, ok := calendar.ParseDate(raw)
		if !ok {
			return params, errInvalidDate
		}
		params.Date = &day
	}

	if raw := strings.TrimSpace(query.Get("mine")); raw != "" {
		mine, err := strconv.ParseBool(raw)
		if err != nil {
			return params, errBadRequestBody
		}
		params.Mine = mine
	}
	return params, nil
}

// pathID reads the {id} route variable. Digit-only values address numeric
// backend ids; anything else is a string id.
func pathID(r *http.Request) (record.ID, bool) {
	raw := strings.TrimSpace(mux.Vars(r)["id"])
	if raw == "" {
		return record.ID{}, false
	}
	if isDigits(raw) {
		return record.NumericID(raw), true
	}
	return record.StringID(raw), true
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return s != ""
}
