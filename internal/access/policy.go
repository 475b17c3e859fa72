// Package access decides what a viewer may do with schedule and event records.
//
// Every function here is pure: the same viewer and record always produce the
// same answer, nothing is cached and no input is mutated.
package access

import (
	"errors"
	"strings"

	"github.com/example/irfit-gateway/internal/record"
)

var (
	// ErrNoViewer is returned by screen gates when nobody is signed in or the
	// viewer carries a role outside the known set.
	ErrNoViewer = errors.New("access: viewer required")
	// ErrForbidden is returned when the viewer lacks the permission for an action.
	ErrForbidden = errors.New("access: forbidden")
)

// Role is the closed set of account roles supplied by the auth backend.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

// ParseRole maps a backend role string onto a Role. Unknown values are kept
// as-is and fail Valid, so they get no permissions.
func ParseRole(value string) Role {
	return Role(strings.ToLower(strings.TrimSpace(value)))
}

// Valid reports whether r belongs to the closed role set.
func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	default:
		return false
	}
}

// Viewer is the signed-in actor. A nil *Viewer stands for an anonymous visitor.
type Viewer struct {
	ID   record.ID
	Role Role
	Name string
}

// Owned is implemented by records that carry ownership metadata.
type Owned interface {
	OwnerID() record.ID
	ActiveFlag() *bool
}

// Action names a UI action that can be exposed for a record.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Permissions lists what a viewer may do with one record.
type Permissions struct {
	CanView   bool `json:"can_view"`
	CanEdit   bool `json:"can_edit"`
	CanDelete bool `json:"can_delete"`
	CanCreate bool `json:"can_create"`
}

// Actions returns the permitted actions in display order.
func (p Permissions) Actions() []Action {
	actions := make([]Action, 0, 4)
	if p.CanView {
		actions = append(actions, ActionView)
	}
	if p.CanCreate {
		actions = append(actions, ActionCreate)
	}
	if p.CanEdit {
		actions = append(actions, ActionEdit)
	}
	if p.CanDelete {
		actions = append(actions, ActionDelete)
	}
	return actions
}

// PermissionsFor computes the permissions of viewer on rec.
//
//   - admin: everything, for every record.
//   - teacher: may create; may view everything; may edit and delete only
//     records whose author id equals the teacher id.
//   - student: may view active records; no mutations.
//   - anonymous or unknown role: nothing.
func PermissionsFor(viewer *Viewer, rec Owned) Permissions {
	if viewer == nil {
		return Permissions{}
	}

	switch viewer.Role {
	case RoleAdmin:
		return Permissions{CanView: true, CanEdit: true, CanDelete: true, CanCreate: true}
	case RoleTeacher:
		owns := IsOwner(viewer, rec)
		return Permissions{CanView: true, CanEdit: owns, CanDelete: owns, CanCreate: true}
	case RoleStudent:
		return Permissions{CanView: isActive(rec)}
	default:
		return Permissions{}
	}
}

// CanCreate reports whether viewer may create new records at all.
func CanCreate(viewer *Viewer) bool {
	if viewer == nil {
		return false
	}
	return viewer.Role == RoleAdmin || viewer.Role == RoleTeacher
}

// IsOwner reports whether rec was authored by viewer. Records without an
// author belong to nobody.
func IsOwner(viewer *Viewer, rec Owned) bool {
	if viewer == nil || viewer.ID.IsZero() {
		return false
	}
	owner := rec.OwnerID()
	if owner.IsZero() {
		return false
	}
	return owner == viewer.ID
}

// OwnedBy narrows records to the ones authored by viewer, keeping input order.
// It is a display preference ("my records only"), not an access rule.
func OwnedBy[R Owned](records []R, viewer *Viewer) []R {
	out := make([]R, 0)
	for _, rec := range records {
		if IsOwner(viewer, rec) {
			out = append(out, rec)
		}
	}
	return out
}

// Visible keeps the records viewer may view, in input order.
func Visible[R Owned](records []R, viewer *Viewer) []R {
	out := make([]R, 0, len(records))
	for _, rec := range records {
		if PermissionsFor(viewer, rec).CanView {
			out = append(out, rec)
		}
	}
	return out
}

// RequireViewer rejects anonymous viewers and viewers with an unknown role.
// Callers run it before touching any remote data.
func RequireViewer(viewer *Viewer) error {
	if viewer == nil || !viewer.Role.Valid() {
		return ErrNoViewer
	}
	return nil
}

// CanOpenAdminScreens reports whether viewer may open the admin area.
func CanOpenAdminScreens(viewer *Viewer) bool {
	return viewer != nil && viewer.Role == RoleAdmin
}

// CanReviewTeacherRequests reports whether viewer may approve or reject
// teacher applications.
func CanReviewTeacherRequests(viewer *Viewer) bool {
	return CanOpenAdminScreens(viewer)
}

func isActive(rec Owned) bool {
	flag := rec.ActiveFlag()
	return flag == nil || *flag
}
