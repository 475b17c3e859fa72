// Package record defines the records exchanged with the webhook backend.
//
// Schedules and events share one shape: a calendar date, an optional active
// flag and ownership metadata. Everything else is payload the gateway passes
// through without interpreting it.
package record

// Record holds the fields common to schedules and events.
type Record struct {
	ID          ID     `json:"id"`
	Date        string `json:"date"`
	IsActive    *bool  `json:"isActive,omitempty"`
	CreatedByID ID     `json:"createdById"`
	UpdatedByID ID     `json:"updatedById"`
}

// CalendarDate returns the raw date string as stored by the backend.
func (r Record) CalendarDate() string {
	return r.Date
}

// ActiveFlag returns the active flag, nil when the backend omitted it.
func (r Record) ActiveFlag() *bool {
	return r.IsActive
}

// OwnerID returns the identifier of the authoring user.
func (r Record) OwnerID() ID {
	return r.CreatedByID
}

// RecordID returns the record identifier.
func (r Record) RecordID() ID {
	return r.ID
}

// Base returns the shared record fields.
func (r Record) Base() Record {
	return r
}

// Active reports whether the record counts as active. Only an explicit false
// switches a record off.
func (r Record) Active() bool {
	return r.IsActive == nil || *r.IsActive
}

// Schedule is a class slot on the studio timetable.
type Schedule struct {
	Record
	Title               string `json:"title"`
	StartTime           string `json:"startTime,omitempty"`
	EndTime             string `json:"endTime,omitempty"`
	Location            string `json:"location,omitempty"`
	TeacherName         string `json:"teacherName,omitempty"`
	MaxParticipants     int    `json:"maxParticipants,omitempty"`
	CurrentParticipants int    `json:"currentParticipants,omitempty"`
}

// WithBase returns a copy of s carrying base as its shared fields.
func (s Schedule) WithBase(base Record) Schedule {
	s.Record = base
	return s
}

// Event is a one-off workshop, retreat or meetup listed on the events page.
type Event struct {
	Record
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	StartTime   string `json:"startTime,omitempty"`
	EndTime     string `json:"endTime,omitempty"`
	Location    string `json:"location,omitempty"`
	Price       string `json:"price,omitempty"`
	ImageURL    string `json:"imageUrl,omitempty"`
}

// WithBase returns a copy of e carrying base as its shared fields.
func (e Event) WithBase(base Record) Event {
	e.Record = base
	return e
}

// TeacherRequestStatus tracks the review state of a teacher application.
type TeacherRequestStatus string

const (
	// TeacherRequestPending is the state of a freshly submitted request.
	TeacherRequestPending TeacherRequestStatus = "pending"
	// TeacherRequestApproved marks a request accepted by an administrator.
	TeacherRequestApproved TeacherRequestStatus = "approved"
	// TeacherRequestRejected marks a request declined by an administrator.
	TeacherRequestRejected TeacherRequestStatus = "rejected"
)

// TeacherRequest is an application from a user who wants to teach at the studio.
type TeacherRequest struct {
	ID             ID                   `json:"id"`
	CreatedByID    ID                   `json:"createdById"`
	FullName       string               `json:"fullName"`
	Phone          string               `json:"phone,omitempty"`
	Email          string               `json:"email,omitempty"`
	Specialization string               `json:"specialization,omitempty"`
	Message        string               `json:"message,omitempty"`
	Status         TeacherRequestStatus `json:"status"`
	CreatedAt      string               `json:"createdAt,omitempty"`
}

// OwnerID returns the identifier of the applicant.
func (r TeacherRequest) OwnerID() ID {
	return r.CreatedByID
}

// ActiveFlag always reports nil; requests have no active flag.
func (r TeacherRequest) ActiveFlag() *bool {
	return nil
}

// Bool returns a pointer to v.
func Bool(v bool) *bool {
	return &v
}
