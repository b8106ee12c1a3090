package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID        int64     `json:"id" db:"id" example:"1"`
	Name      string    `json:"name" db:"name" example:"Jane Doe"`
	StudentID *string   `json:"studentId,omitempty" db:"student_id" example:"20231234"`
	Email     string    `json:"email" db:"email" example:"jane@example.com"`
	Password  string    `json:"-" db:"password_hash"`
	Role      RoleType  `json:"role" db:"role" example:"student"`
	CreatedAt time.Time `json:"createdAt" db:"created_at"`
	UpdatedAt time.Time `json:"updatedAt" db:"updated_at"`
}

// Identity returns the session identity of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

// UserUpdate carries the fields of a partial user update; nil means unchanged.
type UserUpdate struct {
	Name         *string
	StudentID    *string
	Email        *string
	Role         *RoleType
	PasswordHash *string
}

// Empty reports whether no field is set.
func (u UserUpdate) Empty() bool {
	return u.Name == nil && u.StudentID == nil && u.Email == nil && u.Role == nil && u.PasswordHash == nil
}
