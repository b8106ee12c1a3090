package dto

import "github.com/yigit/coursehub/internal/app/models"

// UserResponse is a user as shown in the admin panel.
type UserResponse struct {
	ID        int64   `json:"id" example:"7"`
	Name      string  `json:"name" example:"Jane Doe"`
	StudentID *string `json:"student_id" example:"20231234"`
	Email     string  `json:"email" example:"jane@example.com"`
	Role      string  `json:"role" example:"student"`
	CreatedAt string  `json:"created_at" example:"2025-01-15T10:00:00Z"`
}

// FromUser converts a user model.
func FromUser(u *models.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Name:      u.Name,
		StudentID: u.StudentID,
		Email:     u.Email,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt.UTC().Format(timestampLayout),
	}
}

// UserListResponse represents a list of users with pagination
type UserListResponse struct {
	Users      []UserResponse `json:"users"`
	Pagination PaginationInfo `json:"pagination"`
}

// CreateUserRequest is an admin-created account.
type CreateUserRequest struct {
	StudentID string `json:"student_id" example:"20231234"`
	Name      string `json:"name" example:"Jane Doe"`
	Email     string `json:"email" example:"jane@example.com"`
	Password  string `json:"password" example:"secret123"`
	Role      string `json:"role" binding:"omitempty,oneof=admin student" example:"student"`
}

// UpdateUserRequest is a partial update; omitted fields stay unchanged.
type UpdateUserRequest struct {
	StudentID *string `json:"student_id"`
	Name      *string `json:"name"`
	Email     *string `json:"email"`
	Role      *string `json:"role" binding:"omitempty,oneof=admin student"`
	Password  *string `json:"password"`
}

// ResetPasswordRequest sets a new password for another user.
type ResetPasswordRequest struct {
	NewPassword string `json:"new_password"`
}
