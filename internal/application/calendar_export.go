package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/calendar"
	"github.com/example/irfit-gateway/internal/record"
)

const exportProductID = "-//IRFIT//Gateway//RU"

// CalendarExportService renders the viewer's calendar as an iCalendar feed.
type CalendarExportService struct {
	schedules RecordBackend[record.Schedule]
	events    RecordBackend[record.Event]
	location  *time.Location
	now       func() time.Time
	logger    *slog.Logger
}

// NewCalendarExportService constructs the export service. Times without a
// zone are interpreted in location.
func NewCalendarExportService(schedules RecordBackend[record.Schedule], events RecordBackend[record.Event], location *time.Location, now func() time.Time, logger *slog.Logger) *CalendarExportService {
	if location == nil {
		location = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &CalendarExportService{
		schedules: schedules,
		events:    events,
		location:  location,
		now:       now,
		logger:    defaultLogger(logger),
	}
}

// Export returns the active schedules and events the viewer may view.
func (s *CalendarExportService) Export(ctx context.Context, viewer *access.Viewer) (feed string, err error) {
	if err = access.RequireViewer(viewer); err != nil {
		return "", ErrUnauthenticated
	}

	logger := serviceLogger(ctx, s.logger, "CalendarExportService", "Export", "viewer_id", viewer.ID.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "calendar export failed", "error", err, "error_kind", ErrorKind(err))
		}
	}()

	if s.schedules == nil || s.events == nil {
		err = fmt.Errorf("calendar export backends not configured")
		return
	}

	var schedules []record.Schedule
	schedules, err = s.schedules.List(ctx)
	if err != nil {
		return
	}
	var events []record.Event
	events, err = s.events.List(ctx)
	if err != nil {
		return
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId(exportProductID)
	cal.SetXWRCalName("IRFIT")
	cal.SetXWRTimezone(s.location.String())

	stamp := s.now().UTC()
	exported := 0
	for _, sch := range access.Visible(schedules, viewer) {
		if !sch.Active() {
			continue
		}
		if s.addEvent(cal, "schedule", sch.Record, sch.Title, sch.Location, describeSchedule(sch), sch.StartTime, sch.EndTime, stamp) {
			exported++
		}
	}
	for _, ev := range access.Visible(events, viewer) {
		if !ev.Active() {
			continue
		}
		if s.addEvent(cal, "event", ev.Record, ev.Title, ev.Location, ev.Description, ev.StartTime, ev.EndTime, stamp) {
			exported++
		}
	}

	logger.InfoContext(ctx, "calendar exported", "entries", exported)
	return cal.Serialize(), nil
}

// addEvent appends one VEVENT. Records with an unreadable date are skipped.
func (s *CalendarExportService) addEvent(cal *ical.Calendar, kind string, base record.Record, title, location, description, start, end string, stamp time.Time) bool {
	day, ok := calendar.ParseDate(base.Date)
	if !ok {
		return false
	}

	uid := fmt.Sprintf("%s-%s@irfit", kind, base.ID.String())
	event := cal.AddEvent(uid)
	event.SetDtStampTime(stamp)
	event.SetSummary(title)
	if location != "" {
		event.SetLocation(location)
	}
	if description != "" {
		event.SetDescription(description)
	}

	startAt, hasStart := clockOn(day, start, s.location)
	if !hasStart {
		event.SetAllDayStartAt(day.In(time.UTC, 0, 0))
		event.SetAllDayEndAt(day.AddDays(1).In(time.UTC, 0, 0))
		return true
	}

	endAt, hasEnd := clockOn(day, end, s.location)
	if !hasEnd || !endAt.After(startAt) {
		endAt = startAt.Add(time.Hour)
	}
	event.SetStartAt(startAt)
	event.SetEndAt(endAt)
	return true
}

// clockOn combines day with an HH:MM clock value in loc.
func clockOn(day calendar.Date, clock string, loc *time.Location) (time.Time, bool) {
	if !clockPattern.MatchString(clock) {
		return time.Time{}, false
	}
	hour := int(clock[0]-'0')*10 + int(clock[1]-'0')
	minute := int(clock[3]-'0')*10 + int(clock[4]-'0')
	return day.In(loc, hour, minute), true
}

func describeSchedule(s record.Schedule) string {
	parts := make([]string, 0, 2)
	if s.TeacherName != "" {
		parts = append(parts, "Преподаватель: "+s.TeacherName)
	}
	if s.MaxParticipants > 0 {
		parts = append(parts, fmt.Sprintf("Мест: %d", s.MaxParticipants))
	}
	return strings.Join(parts, "\n")
}
