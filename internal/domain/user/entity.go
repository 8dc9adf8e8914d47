package user

import "time"

type Role string

const (
	RoleEmployee Role = "employee"  // Punches in, submits bills
	RoleTeamLead Role = "team_lead" // Issues QR codes, views team attendance
	RoleAdmin    Role = "admin"     // Decides on bills
)

type User struct {
	ID           string
	EmployeeID   string
	Email        string
	FullName     string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Session is the authenticated caller, passed explicitly into services.
type Session struct {
	UserID     string
	EmployeeID string
	Role       Role
}

// IsAdmin checks if the caller may decide on bills
func (s Session) IsAdmin() bool {
	return s.Role == RoleAdmin
}

// CanViewAll checks if the caller may see other employees' records
func (s Session) CanViewAll() bool {
	return s.Role == RoleAdmin || s.Role == RoleTeamLead
}
