package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/dberrors"
	"github.com/yigit/coursehub/internal/pkg/listquery"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

const (
	constraintUserEmail     = "users_email_key"
	constraintUserStudentID = "users_student_id_key"
)

// UserListSpec is the allow-list of the admin user table.
var UserListSpec = listquery.Spec{
	Sortable: map[string]string{
		"name":       "name",
		"student_id": "student_id",
		"email":      "email",
	},
	DefaultSort:   "name",
	DefaultOrder:  listquery.Asc,
	SearchColumns: []string{"name", "student_id", "email"},
	TieBreaker:    "id",
}

// IUserRepository defines the interface for user-related database operations
type IUserRepository interface {
	Create(ctx context.Context, user *models.User) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetByStudentID(ctx context.Context, studentID string) (*models.User, error)
	EmailExists(ctx context.Context, email string) (bool, error)
	List(ctx context.Context, params listquery.Params) ([]*models.User, dto.PaginationInfo, error)
	Update(ctx context.Context, id int64, update models.UserUpdate) error
	UpdatePassword(ctx context.Context, id int64, passwordHash string) error
	Delete(ctx context.Context, id int64) error
}

// UserRepository handles database operations for users
type UserRepository struct {
	DB *pgxpool.Pool
}

// NewUserRepository creates a new UserRepository
func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{DB: db}
}

func selectUserQuery() squirrel.SelectBuilder {
	return psql.Select("id", "name", "student_id", "email", "password_hash", "role", "created_at", "updated_at").
		From("users")
}

func scanUser(row pgx.Row) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.StudentID, &u.Email, &u.Password, &u.Role, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrUserNotFound
		}
		logger.Error().Err(err).Msg("Error scanning user")
		return nil, err
	}
	return &u, nil
}

// mapUserWriteError translates unique violations into domain conflicts.
func mapUserWriteError(err error) error {
	switch {
	case dberrors.IsDuplicateConstraintError(err, constraintUserEmail):
		return apperrors.ErrEmailAlreadyExists
	case dberrors.IsDuplicateConstraintError(err, constraintUserStudentID):
		return apperrors.ErrStudentIDExists
	default:
		return err
	}
}

// Create inserts a new user and returns its ID
func (r *UserRepository) Create(ctx context.Context, user *models.User) (int64, error) {
	sql, args, err := psql.Insert("users").
		Columns("name", "student_id", "email", "password_hash", "role").
		Values(user.Name, user.StudentID, user.Email, user.Password, user.Role).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create user SQL")
		return 0, err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&user.ID, &user.CreatedAt, &user.UpdatedAt); err != nil {
		if mapped := mapUserWriteError(err); mapped != err {
			return 0, mapped
		}
		logger.Error().Err(err).Str("email", user.Email).Msg("Error executing create user query")
		return 0, fmt.Errorf("error creating user: %w", err)
	}
	return user.ID, nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	sql, args, err := selectUserQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.DB.QueryRow(ctx, sql, args...))
}

// GetByEmail retrieves a user by email, ignoring case
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	sql, args, err := selectUserQuery().Where("LOWER(email) = LOWER(?)", email).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.DB.QueryRow(ctx, sql, args...))
}

// GetByStudentID retrieves a user by student number
func (r *UserRepository) GetByStudentID(ctx context.Context, studentID string) (*models.User, error) {
	sql, args, err := selectUserQuery().Where(squirrel.Eq{"student_id": studentID}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanUser(r.DB.QueryRow(ctx, sql, args...))
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM users WHERE LOWER(email) = LOWER($1))`, email).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("error checking email: %w", err)
	}
	return exists, nil
}

func userListQueries(params listquery.Params) (selectQuery, countQuery squirrel.SelectBuilder) {
	return UserListSpec.ApplySearch(selectUserQuery(), params),
		UserListSpec.ApplySearch(psql.Select("COUNT(*)").From("users"), params)
}

// List returns one page of users matching the search
func (r *UserRepository) List(ctx context.Context, params listquery.Params) ([]*models.User, dto.PaginationInfo, error) {
	selectQuery, countQuery := userListQueries(params)

	selectQuery, pagination, found, err := paginate(ctx, r.DB, UserListSpec, params, selectQuery, countQuery)
	if err != nil || !found {
		return []*models.User{}, pagination, err
	}

	sql, args, err := selectQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list users SQL")
		return nil, pagination, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list users query")
		return nil, pagination, err
	}
	defer rows.Close()

	users := make([]*models.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, pagination, err
		}
		users = append(users, u)
	}
	return users, pagination, rows.Err()
}

// Update applies the non-nil fields of update
func (r *UserRepository) Update(ctx context.Context, id int64, update models.UserUpdate) error {
	set := map[string]interface{}{}
	if update.Name != nil {
		set["name"] = *update.Name
	}
	if update.StudentID != nil {
		set["student_id"] = *update.StudentID
	}
	if update.Email != nil {
		set["email"] = *update.Email
	}
	if update.Role != nil {
		set["role"] = *update.Role
	}
	if update.PasswordHash != nil {
		set["password_hash"] = *update.PasswordHash
	}
	if len(set) == 0 {
		return nil
	}

	sql, args, err := psql.Update("users").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update user SQL")
		return err
	}

	tag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		if mapped := mapUserWriteError(err); mapped != err {
			return mapped
		}
		logger.Error().Err(err).Int64("userID", id).Msg("Error executing update user query")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrUserNotFound)
}

// UpdatePassword replaces the stored password hash
func (r *UserRepository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	return r.Update(ctx, id, models.UserUpdate{PasswordHash: &passwordHash})
}

// Delete removes a user; topics and comments cascade
func (r *UserRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("userID", id).Msg("Error deleting user")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrUserNotFound)
}
