package dto

import "github.com/yigit/coursehub/internal/app/models"

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" example:"admin@example.com"`
	Password string `json:"password" example:"Admin@12345"`
}

// LoginResponse is returned after a successful login. The session cookie is set
// as well; the token is for API clients that cannot keep cookies.
type LoginResponse struct {
	User        IdentityResponse `json:"user"`
	AccessToken string           `json:"access_token"`
	TokenType   string           `json:"token_type" example:"Bearer"`
	ExpiresIn   int              `json:"expires_in" example:"3600"`
}

// IdentityResponse is the logged-in user as kept in the session.
type IdentityResponse struct {
	ID    int64  `json:"id" example:"1"`
	Name  string `json:"name" example:"Jane Doe"`
	Email string `json:"email" example:"jane@example.com"`
	Role  string `json:"role" example:"student" enums:"admin,student"`
}

// FromIdentity converts a session identity.
func FromIdentity(i models.Identity) IdentityResponse {
	return IdentityResponse{ID: i.ID, Name: i.Name, Email: i.Email, Role: string(i.Role)}
}

// ChangePasswordRequest represents a password change by the logged-in user
type ChangePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
	ConfirmPassword string `json:"confirm_password"`
}

// FlashResponse is one pending flash message.
type FlashResponse struct {
	Type    string `json:"type" example:"success" enums:"success,info,warning,danger"`
	Message string `json:"message" example:"Welcome back, Jane!"`
}
