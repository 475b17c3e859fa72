package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/application"
)

type monthService interface {
	Month(ctx context.Context, viewer *access.Viewer, year int, month time.Month) (application.MonthView, error)
}

type exportService interface {
	Export(ctx context.Context, viewer *access.Viewer) (string, error)
}

// CalendarHandler serves the month grids and the iCalendar feed.
type CalendarHandler struct {
	months    map[string]monthService
	export    exportService
	location  *time.Location
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

// CalendarConfig wires the services behind CalendarHandler.
type CalendarConfig struct {
	Schedules monthService
	Events    monthService
	Export    exportService
	// Location decides the current month when the query omits it.
	Location *time.Location
	Now      func() time.Time
}

// NewCalendarHandler constructs a CalendarHandler.
func NewCalendarHandler(cfg CalendarConfig, logger *slog.Logger) *CalendarHandler {
	base := defaultLogger(logger)
	months := make(map[string]monthService, 2)
	if cfg.Schedules != nil {
		months["schedules"] = cfg.Schedules
	}
	if cfg.Events != nil {
		months["events"] = cfg.Events
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &CalendarHandler{
		months:    months,
		export:    cfg.Export,
		location:  cfg.Location,
		now:       cfg.Now,
		responder: newResponder(base),
		logger:    base,
	}
}

// Month handles GET /calendar/{kind}?year=&month=.
func (h *CalendarHandler) Month(w http.ResponseWriter, r *http.Request) {
	kind := strings.ToLower(mux.Vars(r)["kind"])
	service, ok := h.months[kind]
	if !ok {
		h.responder.writeError(r.Context(), w, http.StatusNotFound, errUnknownCalendarKind)
		return
	}

	year, month, err := h.parseMonth(r)
	if err != nil {
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	view, err := service.Month(r.Context(), ViewerFromContext(r.Context()), year, month)
	if err != nil {
		handlerLogger(r.Context(), h.logger, "CalendarHandler", "Month", "kind", kind).
			ErrorContext(r.Context(), "month view failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toMonthDTO(view))
}

// Export handles GET /calendar.ics.
func (h *CalendarHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h.export == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	feed, err := h.export.Export(r.Context(), ViewerFromContext(r.Context()))
	if err != nil {
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="irfit.ics"`)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write([]byte(feed)); err != nil {
		h.responder.loggerFor(r.Context()).ErrorContext(r.Context(), "failed to write calendar feed", "error", err)
	}
}

func (h *CalendarHandler) parseMonth(r *http.Request) (int, time.Month, error) {
	current := h.now().In(h.location)
	year, month := current.Year(), current.Month()

	query := r.URL.Query()
	if raw := strings.TrimSpace(query.Get("year")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errInvalidMonth
		}
		year = parsed
	}
	if raw := strings.TrimSpace(query.Get("month")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			return 0, 0, errInvalidMonth
		}
		month = time.Month(parsed)
	}
	return year, month, nil
}

type monthDTO struct {
	Year  int          `json:"year"`
	Month int          `json:"month"`
	Days  []dayCellDTO `json:"days"`
}

type dayCellDTO struct {
	Date           string `json:"date"`
	IsCurrentMonth bool   `json:"is_current_month"`
	HasRecord      bool   `json:"has_record"`
}

func toMonthDTO(view application.MonthView) monthDTO {
	days := make([]dayCellDTO, 0, len(view.Days))
	for _, day := range view.Days {
		days = append(days, dayCellDTO{
			Date:           day.Date.Format(),
			IsCurrentMonth: day.IsCurrentMonth,
			HasRecord:      day.HasRecord,
		})
	}
	return monthDTO{Year: view.Year, Month: int(view.Month), Days: days}
}
