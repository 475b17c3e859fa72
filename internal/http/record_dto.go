package http

import (
	"bytes"
	"html"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"github.com/example/irfit-gateway/internal/access"
	"github.com/example/irfit-gateway/internal/record"
)

// markdown renders event descriptions. Raw HTML in the source is escaped.
var markdown = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

type permissionsDTO struct {
	CanView   bool            `json:"can_view"`
	CanEdit   bool            `json:"can_edit"`
	CanDelete bool            `json:"can_delete"`
	CanCreate bool            `json:"can_create"`
	Actions   []access.Action `json:"actions"`
}

func toPermissionsDTO(p access.Permissions) permissionsDTO {
	return permissionsDTO{
		CanView:   p.CanView,
		CanEdit:   p.CanEdit,
		CanDelete: p.CanDelete,
		CanCreate: p.CanCreate,
		Actions:   p.Actions(),
	}
}

type scheduleDTO struct {
	ID                  record.ID      `json:"id"`
	Title               string         `json:"title"`
	Date                string         `json:"date"`
	StartTime           string         `json:"start_time,omitempty"`
	EndTime             string         `json:"end_time,omitempty"`
	Location            string         `json:"location,omitempty"`
	TeacherName         string         `json:"teacher_name,omitempty"`
	MaxParticipants     int            `json:"max_participants,omitempty"`
	CurrentParticipants int            `json:"current_participants,omitempty"`
	IsActive            bool           `json:"is_active"`
	CreatedByID         record.ID      `json:"created_by_id"`
	UpdatedByID         record.ID      `json:"updated_by_id"`
	Permissions         permissionsDTO `json:"permissions"`
}

func toScheduleDTO(s record.Schedule, perms access.Permissions) scheduleDTO {
	return scheduleDTO{
		ID:                  s.ID,
		Title:               s.Title,
		Date:                s.Date,
		StartTime:           s.StartTime,
		EndTime:             s.EndTime,
		Location:            s.Location,
		TeacherName:         s.TeacherName,
		MaxParticipants:     s.MaxParticipants,
		CurrentParticipants: s.CurrentParticipants,
		IsActive:            s.Active(),
		CreatedByID:         s.CreatedByID,
		UpdatedByID:         s.UpdatedByID,
		Permissions:         toPermissionsDTO(perms),
	}
}

type eventDTO struct {
	ID              record.ID      `json:"id"`
	Title           string         `json:"title"`
	Description     string         `json:"description,omitempty"`
	DescriptionHTML string         `json:"description_html,omitempty"`
	Date            string         `json:"date"`
	StartTime       string         `json:"start_time,omitempty"`
	EndTime         string         `json:"end_time,omitempty"`
	Location        string         `json:"location,omitempty"`
	Price           string         `json:"price,omitempty"`
	ImageURL        string         `json:"image_url,omitempty"`
	IsActive        bool           `json:"is_active"`
	CreatedByID     record.ID      `json:"created_by_id"`
	UpdatedByID     record.ID      `json:"updated_by_id"`
	Permissions     permissionsDTO `json:"permissions"`
}

func toEventDTO(e record.Event, perms access.Permissions) eventDTO {
	return eventDTO{
		ID:              e.ID,
		Title:           e.Title,
		Description:     e.Description,
		DescriptionHTML: renderMarkdown(e.Description),
		Date:            e.Date,
		StartTime:       e.StartTime,
		EndTime:         e.EndTime,
		Location:        e.Location,
		Price:           e.Price,
		ImageURL:        e.ImageURL,
		IsActive:        e.Active(),
		CreatedByID:     e.CreatedByID,
		UpdatedByID:     e.UpdatedByID,
		Permissions:     toPermissionsDTO(perms),
	}
}

func renderMarkdown(source string) string {
	if source == "" {
		return ""
	}
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return html.EscapeString(source)
	}
	return buf.String()
}
