package application

import (
	"strings"
	"time"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/calendar"
	"github.com/example/irfit-gateway/internal/record"
)

// Identity is the account confirmed by the backend during login.
type Identity struct {
	ID    record.ID
	Role  string
	Name  string
	Email string
}

// Session represents a gateway session. Only the token digest is kept.
type Session struct {
	ID          string
	TokenDigest string
	UserID      record.ID
	Role        access.Role
	Name        string
	ExpiresAt   time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RevokedAt   *time.Time
}

// Viewer builds the access policy viewer carried by the session.
func (s Session) Viewer() *access.Viewer {
	return &access.Viewer{ID: s.UserID, Role: s.Role, Name: s.Name}
}

// AuthenticateParams captures the data required to sign in.
type AuthenticateParams struct {
	Email    string
	Password string
}

// AuthenticateResult carries the bearer token handed to the client. The
// token is returned once and never stored.
type AuthenticateResult struct {
	Token   string
	Session Session
	Viewer  *access.Viewer
}

// ListParams narrows a record listing.
type ListParams struct {
	// Date keeps only the records on that calendar day.
	Date *calendar.Date
	// Mine keeps only the records authored by the viewer.
	Mine bool
}

// Annotated pairs a record with what the viewer may do with it.
type Annotated[T any] struct {
	Record      T
	Permissions access.Permissions
}

// MonthView is the calendar screen for one month.
type MonthView struct {
	Year  int
	Month time.Month
	Days  []calendar.DayIndicator
}

// ScheduleInput captures caller provided schedule fields.
type ScheduleInput struct {
	Title           string `json:"title" validate:"required,notblank,max=200"`
	Date            string `json:"date" validate:"required,isodate"`
	StartTime       string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime         string `json:"end_time" validate:"omitempty,hhmm"`
	Location        string `json:"location" validate:"max=200"`
	TeacherName     string `json:"teacher_name" validate:"max=200"`
	MaxParticipants int    `json:"max_participants" validate:"gte=0,lte=1000"`
	IsActive        *bool  `json:"is_active"`
}

func (in ScheduleInput) timeRange() (string, string) {
	return in.StartTime, in.EndTime
}

func (in ScheduleInput) applyTo(s record.Schedule) record.Schedule {
	s.Title = strings.TrimSpace(in.Title)
	s.Date = strings.TrimSpace(in.Date)
	s.StartTime = in.StartTime
	s.EndTime = in.EndTime
	s.Location = strings.TrimSpace(in.Location)
	s.TeacherName = strings.TrimSpace(in.TeacherName)
	s.MaxParticipants = in.MaxParticipants
	if in.IsActive != nil {
		s.IsActive = record.Bool(*in.IsActive)
	}
	return s
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title       string `json:"title" validate:"required,notblank,max=200"`
	Description string `json:"description" validate:"max=10000"`
	Date        string `json:"date" validate:"required,isodate"`
	StartTime   string `json:"start_time" validate:"omitempty,hhmm"`
	EndTime     string `json:"end_time" validate:"omitempty,hhmm"`
	Location    string `json:"location" validate:"max=200"`
	Price       string `json:"price" validate:"max=50"`
	ImageURL    string `json:"image_url" validate:"omitempty,url"`
	IsActive    *bool  `json:"is_active"`
}

func (in EventInput) timeRange() (string, string) {
	return in.StartTime, in.EndTime
}

func (in EventInput) applyTo(e record.Event) record.Event {
	e.Title = strings.TrimSpace(in.Title)
	e.Description = in.Description
	e.Date = strings.TrimSpace(in.Date)
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.Location = strings.TrimSpace(in.Location)
	e.Price = strings.TrimSpace(in.Price)
	e.ImageURL = strings.TrimSpace(in.ImageURL)
	if in.IsActive != nil {
		e.IsActive = record.Bool(*in.IsActive)
	}
	return e
}

// TeacherRequestInput captures an application to teach at the studio.
type TeacherRequestInput struct {
	FullName       string `json:"full_name" validate:"required,notblank,max=200"`
	Phone          string `json:"phone" validate:"required_without=Email,max=32"`
	Email          string `json:"email" validate:"omitempty,email"`
	Specialization string `json:"specialization" validate:"max=200"`
	Message        string `json:"message" validate:"max=2000"`
}
