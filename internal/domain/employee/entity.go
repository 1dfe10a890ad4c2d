package employee

import "time"

// Employee is the directory entry used for approval routing.
type Employee struct {
	ID         string
	FullName   string
	Email      string
	Role       Role
	TeamLeadID *string
	IsActive   bool
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

type Role string

const (
	RoleEmployee   Role = "employee"
	RoleTeamLead   Role = "tl"
	RoleHR         Role = "hr"
	RoleManagement Role = "management"
	RoleIntern     Role = "intern"
)

// HRPoolRoles lists the roles allowed to take the HR decision.
var HRPoolRoles = []Role{RoleHR, RoleManagement}

func (r Role) IsValid() bool {
	switch r {
	case RoleEmployee, RoleTeamLead, RoleHR, RoleManagement, RoleIntern:
		return true
	}
	return false
}

// IsHRPool reports whether the employee belongs to the HR decision pool.
func (e Employee) IsHRPool() bool {
	return e.Role == RoleHR || e.Role == RoleManagement
}

// IsTeamLeadOf reports whether e is the stored team lead of other.
func (e Employee) IsTeamLeadOf(other Employee) bool {
	return other.TeamLeadID != nil && *other.TeamLeadID == e.ID
}
