// Package testfixtures builds deterministic records, viewers and sessions for
// tests across the gateway.
package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/application"
	"github.com/example/irfit-gateway/internal/persistence"
	"github.com/example/irfit-gateway/internal/record"
)

var (
	scheduleCounter uint64
	eventCounter    uint64
	requestCounter  uint64
	sessionCounter  uint64
)

var referenceTime = time.Date(2024, time.March, 5, 9, 0, 0, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ----------------------------- Viewers -----------------------------

// Admin returns an administrator with a string identifier.
func Admin() *access.Viewer {
	return &access.Viewer{ID: record.StringID("ADM"), Role: access.RoleAdmin, Name: "Админ"}
}

// Teacher returns a teacher with numeric identifier 7.
func Teacher() *access.Viewer {
	return &access.Viewer{ID: record.NumericID("7"), Role: access.RoleTeacher, Name: "Анна"}
}

// Student returns a student with numeric identifier 9.
func Student() *access.Viewer {
	return &access.Viewer{ID: record.NumericID("9"), Role: access.RoleStudent, Name: "Мария"}
}

// ----------------------------- Records -----------------------------

// RecordOption adjusts the shared record fields of a fixture.
type RecordOption func(*record.Record)

// WithID overrides the generated identifier.
func WithID(id record.ID) RecordOption {
	return func(r *record.Record) {
		r.ID = id
	}
}

// WithDate overrides the calendar date.
func WithDate(date string) RecordOption {
	return func(r *record.Record) {
		r.Date = date
	}
}

// WithCreator sets the creator and last editor.
func WithCreator(id record.ID) RecordOption {
	return func(r *record.Record) {
		r.CreatedByID = id
		r.UpdatedByID = id
	}
}

// Inactive marks the record as hidden from students.
func Inactive() RecordOption {
	return func(r *record.Record) {
		r.IsActive = record.Bool(false)
	}
}

func newRecord(id record.ID, idx uint64, opts []RecordOption) record.Record {
	base := record.Record{
		ID:          id,
		Date:        referenceTime.AddDate(0, 0, int(idx%20)).Format("2006-01-02"),
		CreatedByID: Teacher().ID,
		UpdatedByID: Teacher().ID,
	}
	for _, opt := range opts {
		opt(&base)
	}
	return base
}

// NewSchedule returns a one-hour class owned by Teacher unless opts say
// otherwise.
func NewSchedule(opts ...RecordOption) record.Schedule {
	idx := atomic.AddUint64(&scheduleCounter, 1)
	return record.Schedule{
		Record:          newRecord(record.NumericID(fmt.Sprintf("%d", idx)), idx, opts),
		Title:           fmt.Sprintf("Занятие %03d", idx),
		StartTime:       "09:00",
		EndTime:         "10:00",
		Location:        "Зал 1",
		TeacherName:     Teacher().Name,
		MaxParticipants: 12,
	}
}

// NewEvent returns an all-day event owned by Teacher unless opts say
// otherwise.
func NewEvent(opts ...RecordOption) record.Event {
	idx := atomic.AddUint64(&eventCounter, 1)
	return record.Event{
		Record:      newRecord(record.StringID(fmt.Sprintf("event-%03d", idx)), idx, opts),
		Title:       fmt.Sprintf("Событие %03d", idx),
		Description: "**Ретрит** на выходные",
	}
}

// NewTeacherRequest returns a pending application submitted by creator.
func NewTeacherRequest(creator record.ID) record.TeacherRequest {
	idx := atomic.AddUint64(&requestCounter, 1)
	return record.TeacherRequest{
		ID:             record.StringID(fmt.Sprintf("req-%03d", idx)),
		CreatedByID:    creator,
		FullName:       fmt.Sprintf("Кандидат %03d", idx),
		Email:          fmt.Sprintf("candidate%03d@irfit.ru", idx),
		Specialization: "йога",
		Status:         record.TeacherRequestPending,
		CreatedAt:      referenceTime.Format(time.RFC3339),
	}
}

// ----------------------------- Sessions -----------------------------

// SessionFixture is a session that can be materialised for either layer.
type SessionFixture struct {
	ID          string
	TokenDigest string
	Viewer      access.Viewer
	ExpiresAt   time.Time
	CreatedAt   time.Time
	RevokedAt   *time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a live teacher session expiring a day after
// ReferenceTime.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	fixture := SessionFixture{
		ID:          fmt.Sprintf("session-%03d", idx),
		TokenDigest: fmt.Sprintf("digest-%03d", idx),
		Viewer:      *Teacher(),
		CreatedAt:   referenceTime,
		ExpiresAt:   referenceTime.Add(24 * time.Hour),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionViewer sets the session owner.
func WithSessionViewer(viewer *access.Viewer) SessionOption {
	return func(f *SessionFixture) {
		f.Viewer = *viewer
	}
}

// WithSessionExpiresAt overrides the expiry.
func WithSessionExpiresAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.ExpiresAt = t
	}
}

// WithSessionRevokedAt marks the session revoked at t.
func WithSessionRevokedAt(t time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.RevokedAt = &t
	}
}

// Application converts the fixture to the service model.
func (f SessionFixture) Application() application.Session {
	return application.Session{
		ID:          f.ID,
		TokenDigest: f.TokenDigest,
		UserID:      f.Viewer.ID,
		Role:        f.Viewer.Role,
		Name:        f.Viewer.Name,
		ExpiresAt:   f.ExpiresAt,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.CreatedAt,
		RevokedAt:   copyTime(f.RevokedAt),
	}
}

// Persistence converts the fixture to the storage model.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:            f.ID,
		TokenDigest:   f.TokenDigest,
		UserID:        f.Viewer.ID.String(),
		UserIDNumeric: f.Viewer.ID.Numeric(),
		Role:          string(f.Viewer.Role),
		Name:          f.Viewer.Name,
		ExpiresAt:     f.ExpiresAt,
		CreatedAt:     f.CreatedAt,
		UpdatedAt:     f.CreatedAt,
		RevokedAt:     copyTime(f.RevokedAt),
	}
}

func copyTime(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	clone := *src
	return &clone
}
