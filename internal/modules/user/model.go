// README: Staff accounts with roles and permission levels.
package user

import (
	"strings"
	"time"

	"carwash/internal/types"
)

type Role string

const (
	RoleDeveloper Role = "developer"
	RoleAdmin     Role = "admin"
	RoleIncharge  Role = "incharge"
)

// Permission levels, higher grants more.
const (
	LevelDeveloper = 100
	LevelAdmin     = 80
	LevelIncharge  = 60
)

func ParseRole(v string) (Role, bool) {
	r := Role(strings.ToLower(strings.TrimSpace(v)))
	switch r {
	case RoleDeveloper, RoleAdmin, RoleIncharge:
		return r, true
	}
	return "", false
}

func (r Role) Level() int {
	switch r {
	case RoleDeveloper:
		return LevelDeveloper
	case RoleAdmin:
		return LevelAdmin
	case RoleIncharge:
		return LevelIncharge
	}
	return 0
}

// User is a staff account. Shift is set only for in-charge accounts.
type User struct {
	ID           types.ID
	Username     string
	FullName     string
	Role         Role
	Shift        types.Shift
	PasswordHash string
	CreatedAt    time.Time
}
