package domain

import "time"

// Role enumerates workshop team roles.
type Role string

const (
	RoleOperator  Role = "operator"
	RoleHeadTech  Role = "head_tech"
	RoleLogistics Role = "logistics"
	RoleManager   Role = "manager"
)

// Valid reports whether the role is known.
func (r Role) Valid() bool {
	switch r {
	case RoleOperator, RoleHeadTech, RoleLogistics, RoleManager:
		return true
	}
	return false
}

// CanSetPriority gates the urgency flag toggle.
func (r Role) CanSetPriority() bool {
	return r == RoleManager || r == RoleLogistics
}

// CanReassign gates technician reassignment.
func (r Role) CanReassign() bool {
	return r == RoleManager || r == RoleHeadTech
}

// CanManageRoles gates changing other users' roles.
func (r Role) CanManageRoles() bool {
	return r == RoleManager || r == RoleHeadTech
}

// CanEditMasterData gates settings and master-data list writes.
func (r Role) CanEditMasterData() bool {
	return r == RoleManager
}

// CanResetDatabase gates the administrative bulk reset.
func (r Role) CanResetDatabase() bool {
	return r == RoleManager
}

// UserProfile is a workshop team member.
type UserProfile struct {
	UID          string
	Email        string
	Username     *string
	Role         Role
	PasswordHash string
	CreatedAt    time.Time
}

// DisplayIdentity is the human-facing identity used for auto-assignment:
// username when set, otherwise email, otherwise a generic placeholder.
func (u *UserProfile) DisplayIdentity() string {
	if u == nil {
		return "Operatore"
	}
	if u.Username != nil && *u.Username != "" {
		return *u.Username
	}
	if u.Email != "" {
		return u.Email
	}
	return "Operatore"
}
