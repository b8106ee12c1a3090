package services

import (
	"context"
	"fmt"
	"net/url"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/app/repositories"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/auth"
	"github.com/yigit/coursehub/internal/pkg/logger"
	"github.com/yigit/coursehub/internal/pkg/validation"
)

// UserService defines the admin user management operations
type UserService interface {
	ListUsers(ctx context.Context, query url.Values) (*dto.UserListResponse, error)
	GetUser(ctx context.Context, id int64) (*dto.UserResponse, error)
	GetUserByStudentID(ctx context.Context, studentID string) (*dto.UserResponse, error)
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, id int64, req dto.UpdateUserRequest) (*dto.UserResponse, error)
	DeleteUser(ctx context.Context, actor models.Identity, id int64) error
	ResetPassword(ctx context.Context, id int64, newPassword string) error
}

// userServiceImpl implements the UserService interface
type userServiceImpl struct {
	userRepo repositories.IUserRepository
	hasher   auth.Hasher
}

// NewUserService creates a new user service instance
func NewUserService(userRepo repositories.IUserRepository, hasher auth.Hasher) UserService {
	return &userServiceImpl{userRepo: userRepo, hasher: hasher}
}

func validatePassword(password string) error {
	return checkPasswordLength("Password", password)
}

// checkPasswordLength enforces the minimum length and the bcrypt byte limit.
func checkPasswordLength(label, password string) error {
	if len(password) < validation.PasswordMinLength {
		return apperrors.NewCustomError(apperrors.ErrPasswordTooShort,
			fmt.Sprintf("%s must be at least %d characters", label, validation.PasswordMinLength))
	}
	if len(password) > validation.PasswordMaxBytes {
		return apperrors.NewCustomError(apperrors.ErrPasswordTooLong,
			fmt.Sprintf("%s must be at most %d bytes", label, validation.PasswordMaxBytes))
	}
	return nil
}

func validateEmail(email string) error {
	if !validation.LengthBetween(email, 1, validation.EmailMaxLength) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmail,
			fmt.Sprintf("Email must be at most %d characters", validation.EmailMaxLength))
	}
	if !validation.IsEmail(email) {
		return apperrors.NewCustomError(apperrors.ErrInvalidEmail, "Invalid email format")
	}
	return nil
}

func validateStudentID(studentID string) error {
	if !validation.LengthBetween(studentID, 1, validation.StudentIDMaxLength) {
		return apperrors.NewBadRequestError(fmt.Sprintf("Student ID must be at most %d characters", validation.StudentIDMaxLength))
	}
	return nil
}

func validateName(name string) error {
	if !validation.LengthBetween(name, 1, validation.NameMaxLength) {
		return apperrors.NewBadRequestError(fmt.Sprintf("Name must be at most %d characters", validation.NameMaxLength))
	}
	return nil
}

func parseRole(role string) (models.RoleType, error) {
	if role == "" {
		return models.RoleStudent, nil
	}
	r := models.RoleType(role)
	if !r.Valid() {
		return "", apperrors.NewBadRequestError("Invalid role: " + role)
	}
	return r, nil
}

func conflictMessage(err error) error {
	switch {
	case apperrors.Is(err, apperrors.ErrEmailAlreadyExists):
		return withMessage(err, "Email already exists")
	case apperrors.Is(err, apperrors.ErrStudentIDExists):
		return withMessage(err, "Student ID already exists")
	default:
		return err
	}
}

// ListUsers returns one page of users
func (s *userServiceImpl) ListUsers(ctx context.Context, query url.Values) (*dto.UserListResponse, error) {
	params, err := parseList(repositories.UserListSpec, query)
	if err != nil {
		return nil, err
	}
	users, pagination, err := s.userRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	resp := &dto.UserListResponse{Users: make([]dto.UserResponse, 0, len(users)), Pagination: pagination}
	for _, u := range users {
		resp.Users = append(resp.Users, dto.FromUser(u))
	}
	return resp, nil
}

// GetUser returns one user
func (s *userServiceImpl) GetUser(ctx context.Context, id int64) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, withNotFound(err, apperrors.ErrUserNotFound, "User not found")
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

// GetUserByStudentID returns the user with the given student number
func (s *userServiceImpl) GetUserByStudentID(ctx context.Context, studentID string) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByStudentID(ctx, validation.Clean(studentID))
	if err != nil {
		return nil, withNotFound(err, apperrors.ErrUserNotFound, "User not found")
	}
	resp := dto.FromUser(user)
	return &resp, nil
}

// CreateUser adds an account; role defaults to student
func (s *userServiceImpl) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*dto.UserResponse, error) {
	studentID := validation.Clean(req.StudentID)
	name := validation.Clean(req.Name)
	email := validation.Clean(req.Email)

	if field, missing := validation.FirstMissing(
		[2]string{"student_id", studentID},
		[2]string{"name", name},
		[2]string{"email", email},
		[2]string{"password", req.Password},
	); missing {
		return nil, apperrors.NewMissingFieldError(field)
	}
	if err := validateName(name); err != nil {
		return nil, err
	}
	if err := validateStudentID(studentID); err != nil {
		return nil, err
	}
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validatePassword(req.Password); err != nil {
		return nil, err
	}
	role, err := parseRole(validation.Clean(req.Role))
	if err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		return nil, err
	}

	user := &models.User{Name: name, StudentID: &studentID, Email: email, Password: hash, Role: role}
	if _, err := s.userRepo.Create(ctx, user); err != nil {
		return nil, conflictMessage(err)
	}

	logger.Info().Int64("userID", user.ID).Str("role", string(role)).Msg("User created")
	resp := dto.FromUser(user)
	return &resp, nil
}

// UpdateUser applies a partial update
func (s *userServiceImpl) UpdateUser(ctx context.Context, id int64, req dto.UpdateUserRequest) (*dto.UserResponse, error) {
	update := models.UserUpdate{
		Name:      validation.CleanPtr(req.Name),
		StudentID: validation.CleanPtr(req.StudentID),
		Email:     validation.CleanPtr(req.Email),
	}

	if err := notEmpty("name", update.Name); err != nil {
		return nil, err
	}
	if err := notEmpty("student_id", update.StudentID); err != nil {
		return nil, err
	}
	if err := notEmpty("email", update.Email); err != nil {
		return nil, err
	}
	if update.Name != nil {
		if err := validateName(*update.Name); err != nil {
			return nil, err
		}
	}
	if update.StudentID != nil {
		if err := validateStudentID(*update.StudentID); err != nil {
			return nil, err
		}
	}
	if update.Email != nil {
		if err := validateEmail(*update.Email); err != nil {
			return nil, err
		}
	}
	if r := validation.CleanPtr(req.Role); r != nil {
		role, err := parseRole(*r)
		if err != nil {
			return nil, err
		}
		update.Role = &role
	}
	if req.Password != nil && *req.Password != "" {
		if err := validatePassword(*req.Password); err != nil {
			return nil, err
		}
		hash, err := s.hasher.Hash(*req.Password)
		if err != nil {
			logger.Error().Err(err).Msg("Failed to hash password")
			return nil, err
		}
		update.PasswordHash = &hash
	}
	if update.Empty() {
		return nil, errNoFields
	}

	if err := s.userRepo.Update(ctx, id, update); err != nil {
		return nil, conflictMessage(withNotFound(err, apperrors.ErrUserNotFound, "User not found"))
	}
	logger.Info().Int64("userID", id).Msg("User updated")
	return s.GetUser(ctx, id)
}

// DeleteUser removes an account; the actor cannot remove their own
func (s *userServiceImpl) DeleteUser(ctx context.Context, actor models.Identity, id int64) error {
	if actor.ID == id {
		return apperrors.NewCustomError(apperrors.ErrCannotDeleteSelf, "You cannot delete your own account")
	}
	if err := s.userRepo.Delete(ctx, id); err != nil {
		return withNotFound(err, apperrors.ErrUserNotFound, "User not found")
	}
	logger.Info().Int64("userID", id).Int64("adminID", actor.ID).Msg("User deleted")
	return nil
}

// ResetPassword sets a new password without knowing the old one
func (s *userServiceImpl) ResetPassword(ctx context.Context, id int64, newPassword string) error {
	if newPassword == "" {
		return apperrors.NewMissingFieldError("new_password")
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := s.hasher.Hash(newPassword)
	if err != nil {
		logger.Error().Err(err).Msg("Failed to hash password")
		return err
	}
	if err := s.userRepo.UpdatePassword(ctx, id, hash); err != nil {
		return withNotFound(err, apperrors.ErrUserNotFound, "User not found")
	}
	logger.Info().Int64("userID", id).Msg("Password reset by admin")
	return nil
}
