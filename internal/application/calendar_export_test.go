package application

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/example/irfit-gateway/internal/record"
)

func TestCalendarExportService_Export(t *testing.T) {
	t.Parallel()

	moscow := time.FixedZone("MSK", 3*60*60)
	schedules := newBackendStub(
		record.Schedule{Record: record.Record{ID: record.NumericID("1"), Date: "2024-03-05"}, Title: "Хатха", StartTime: "09:00", EndTime: "10:30", TeacherName: "Анна"},
		record.Schedule{Record: record.Record{ID: record.NumericID("2"), Date: "2024-03-06", IsActive: record.Bool(false)}, Title: "Hidden"},
		record.Schedule{Record: record.Record{ID: record.NumericID("3"), Date: "broken"}, Title: "Broken"},
	)
	events := newBackendStub(
		record.Event{Record: record.Record{ID: record.StringID("e1"), Date: "2024-04-01"}, Title: "Ретрит"},
	)
	now := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	svc := NewCalendarExportService(schedules, events, moscow, func() time.Time { return now }, nil)

	feed, err := svc.Export(context.Background(), teacherViewer)
	if err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	for _, want := range []string{
		"BEGIN:VCALENDAR",
		"UID:schedule-1@irfit",
		"DTSTART:20240305T060000Z",
		"DTEND:20240305T073000Z",
		"UID:event-e1@irfit",
		"DTSTART;VALUE=DATE:20240401",
		"DTEND;VALUE=DATE:20240402",
	} {
		if !strings.Contains(feed, want) {
			t.Fatalf("expected feed to contain %q:\n%s", want, feed)
		}
	}
	for _, unwanted := range []string{"Hidden", "Broken"} {
		if strings.Contains(feed, unwanted) {
			t.Fatalf("feed must not contain %q", unwanted)
		}
	}
	if got := strings.Count(feed, "BEGIN:VEVENT"); got != 2 {
		t.Fatalf("expected 2 events, got %d", got)
	}

	if _, err := svc.Export(context.Background(), nil); !errors.Is(err, ErrUnauthenticated) {
		t.Fatalf("expected ErrUnauthenticated, got %v", err)
	}
}
