package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/listquery"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

// AssignmentListSpec is the allow-list of the assignment table.
var AssignmentListSpec = listquery.Spec{
	Sortable: map[string]string{
		"title":      "title",
		"due_date":   "due_date",
		"created_at": "created_at",
	},
	DefaultSort:   "due_date",
	DefaultOrder:  listquery.Asc,
	SearchColumns: []string{"title", "description"},
	TieBreaker:    "id",
}

// IAssignmentRepository defines the database operations on assignments
type IAssignmentRepository interface {
	Create(ctx context.Context, assignment *models.Assignment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Assignment, error)
	List(ctx context.Context, params listquery.Params) ([]*models.Assignment, dto.PaginationInfo, error)
	Update(ctx context.Context, id int64, update models.AssignmentUpdate) error
	AppendFile(ctx context.Context, id int64, fileURL string) error
	Delete(ctx context.Context, id int64) error
}

// AssignmentRepository handles database operations for assignments
type AssignmentRepository struct {
	DB *pgxpool.Pool
}

// NewAssignmentRepository creates a new AssignmentRepository
func NewAssignmentRepository(db *pgxpool.Pool) *AssignmentRepository {
	return &AssignmentRepository{DB: db}
}

func selectAssignmentQuery() squirrel.SelectBuilder {
	return psql.Select("id", "title", "description", "due_date", "files", "created_at", "updated_at").
		From("assignments")
}

func scanAssignment(row pgx.Row) (*models.Assignment, error) {
	var (
		a     models.Assignment
		files []byte
	)
	err := row.Scan(&a.ID, &a.Title, &a.Description, &a.DueDate, &files, &a.CreatedAt, &a.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrAssignmentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning assignment")
		return nil, err
	}
	if a.Files, err = decodeStringList(files); err != nil {
		logger.Error().Err(err).Int64("assignmentID", a.ID).Msg("Error decoding assignment files")
		return nil, err
	}
	return &a, nil
}

// Create inserts a new assignment
func (r *AssignmentRepository) Create(ctx context.Context, assignment *models.Assignment) (int64, error) {
	files, err := encodeStringList(assignment.Files)
	if err != nil {
		return 0, err
	}

	sql, args, err := psql.Insert("assignments").
		Columns("title", "description", "due_date", "files").
		Values(assignment.Title, assignment.Description, assignment.DueDate, files).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create assignment SQL")
		return 0, err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&assignment.ID, &assignment.CreatedAt, &assignment.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create assignment query")
		return 0, fmt.Errorf("error creating assignment: %w", err)
	}
	return assignment.ID, nil
}

// GetByID retrieves an assignment by ID
func (r *AssignmentRepository) GetByID(ctx context.Context, id int64) (*models.Assignment, error) {
	sql, args, err := selectAssignmentQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanAssignment(r.DB.QueryRow(ctx, sql, args...))
}

// List returns one page of assignments matching the search
func (r *AssignmentRepository) List(ctx context.Context, params listquery.Params) ([]*models.Assignment, dto.PaginationInfo, error) {
	selectQuery := AssignmentListSpec.ApplySearch(selectAssignmentQuery(), params)
	countQuery := AssignmentListSpec.ApplySearch(psql.Select("COUNT(*)").From("assignments"), params)

	selectQuery, pagination, found, err := paginate(ctx, r.DB, AssignmentListSpec, params, selectQuery, countQuery)
	if err != nil || !found {
		return []*models.Assignment{}, pagination, err
	}

	sql, args, err := selectQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list assignments SQL")
		return nil, pagination, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list assignments query")
		return nil, pagination, err
	}
	defer rows.Close()

	assignments := make([]*models.Assignment, 0)
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			return nil, pagination, err
		}
		assignments = append(assignments, a)
	}
	return assignments, pagination, rows.Err()
}

// Update applies the non-nil fields of update
func (r *AssignmentRepository) Update(ctx context.Context, id int64, update models.AssignmentUpdate) error {
	set := map[string]interface{}{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.DueDate != nil {
		set["due_date"] = *update.DueDate
	}
	if update.Files != nil {
		files, err := encodeStringList(*update.Files)
		if err != nil {
			return err
		}
		set["files"] = files
	}
	if len(set) == 0 {
		return nil
	}

	sql, args, err := psql.Update("assignments").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update assignment SQL")
		return err
	}

	tag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error executing update assignment query")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrAssignmentNotFound)
}

// AppendFile adds one file URL to the end of the files list
func (r *AssignmentRepository) AppendFile(ctx context.Context, id int64, fileURL string) error {
	tag, err := r.DB.Exec(ctx,
		`UPDATE assignments SET files = files || jsonb_build_array($1::text) WHERE id = $2`,
		fileURL, id)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error appending assignment file")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrAssignmentNotFound)
}

// Delete removes an assignment; its comments cascade
func (r *AssignmentRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM assignments WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("assignmentID", id).Msg("Error deleting assignment")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrAssignmentNotFound)
}

// encodeStringList renders a JSONB array literal; nil becomes [].
func encodeStringList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encode list: %w", err)
	}
	return string(b), nil
}

func decodeStringList(raw []byte) ([]string, error) {
	items := []string{}
	if len(raw) == 0 {
		return items, nil
	}
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decode list: %w", err)
	}
	return items, nil
}
