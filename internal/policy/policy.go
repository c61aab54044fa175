// Package policy decides what an authenticated principal may read or write.
// Every function is a pure predicate over the principal and the target.
package policy

import "github.com/internhub/intern-management-api/internal/models"

// Principal is the authenticated account acting on a request.
type Principal struct {
	ID   uint64
	Role models.Role
}

// PrincipalFromUser builds a Principal from a loaded account.
func PrincipalFromUser(u models.User) Principal {
	return Principal{ID: u.ID, Role: u.Role}
}

// Task fields an assignee may change on their own task.
const (
	FieldStatus      = "status"
	FieldProgress    = "progress"
	FieldStartedAt   = "started_at"
	FieldCompletedAt = "completed_at"
	FieldIsStarted   = "is_started"
)

// FieldMask is the set of writable fields. A nil mask means unrestricted.
type FieldMask map[string]struct{}

// Allows reports whether field may be written under the mask.
func (m FieldMask) Allows(field string) bool {
	if m == nil {
		return true
	}
	_, ok := m[field]
	return ok
}

// Unrestricted reports whether the mask permits every field.
func (m FieldMask) Unrestricted() bool {
	return m == nil
}

func assigneeMask() FieldMask {
	return FieldMask{
		FieldStatus:      {},
		FieldProgress:    {},
		FieldStartedAt:   {},
		FieldCompletedAt: {},
		FieldIsStarted:   {},
	}
}

// Decision is the outcome of a write check.
type Decision struct {
	Allowed bool
	Fields  FieldMask
}

func IsAdmin(p Principal) bool {
	return p.Role == models.RoleAdmin
}

func CanListInterns(p Principal) bool {
	return IsAdmin(p)
}

func CanCreateIntern(p Principal) bool {
	return IsAdmin(p)
}

func CanViewIntern(p Principal, targetUserID uint64) bool {
	return IsAdmin(p) || p.ID == targetUserID
}

func CanCreateTask(p Principal) bool {
	return IsAdmin(p)
}

// CanViewTask allows admins and the task's assignee.
func CanViewTask(p Principal, task models.Task) bool {
	return IsAdmin(p) || p.ID == task.AssignedToID
}

// CanUpdateTask returns an unrestricted mask for admins, the assignee mask for
// the assigned intern, and a denial otherwise.
func CanUpdateTask(p Principal, task models.Task) Decision {
	if IsAdmin(p) {
		return Decision{Allowed: true}
	}
	if p.ID == task.AssignedToID {
		return Decision{Allowed: true, Fields: assigneeMask()}
	}
	return Decision{Allowed: false, Fields: FieldMask{}}
}

func CanDeleteTask(p Principal) bool {
	return IsAdmin(p)
}

// CanInteractWithTask gates the start/update_progress/complete actions.
func CanInteractWithTask(p Principal, task models.Task) bool {
	return IsAdmin(p) || p.ID == task.AssignedToID
}

// CanGenerateTasks gates AI task drafting.
func CanGenerateTasks(p Principal) bool {
	return IsAdmin(p)
}
