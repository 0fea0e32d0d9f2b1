package domain

import (
	"strings"
	"time"
)

// Role is a closed two-variant set. The default is applied at
// construction time (NewUser), never by late mutation.
type Role string

const (
	RoleMember    Role = "member"
	RoleLibrarian Role = "librarian"
)

func (r Role) Valid() bool { return r == RoleMember || r == RoleLibrarian }

type User struct {
	ID           string  `gorm:"primaryKey;size:36" json:"id"`
	Name         string  `gorm:"size:64;not null" json:"name"`
	Email        string  `gorm:"uniqueIndex;size:191;not null" json:"email_address"`
	PasswordHash string  `gorm:"size:100;not null" json:"-"`
	Role         Role    `gorm:"size:16;not null" json:"role"`
	AuthToken    *string `gorm:"uniqueIndex;size:64" json:"-"`

	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (User) TableName() string { return "users" }

func (u *User) IsLibrarian() bool { return u != nil && u.Role == RoleLibrarian }
func (u *User) IsMember() bool    { return u != nil && u.Role == RoleMember }

// NewUser builds a user with the role default applied and the email in
// canonical form, so every write path agrees with the unique index.
func NewUser(id, name, email, passwordHash string, role Role) *User {
	if !role.Valid() {
		role = RoleMember
	}
	return &User{
		ID:           id,
		Name:         name,
		Email:        NormalizeEmail(email),
		PasswordHash: passwordHash,
		Role:         role,
	}
}

func NormalizeEmail(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
