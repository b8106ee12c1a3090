package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/coursehub/internal/app/models"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/dberrors"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

// CommentScope names the comment table of one parent entity.
type CommentScope struct {
	Table        string
	ParentColumn string
	// KeyExists is returned when a comment key is already taken.
	KeyExists error
}

// Comment scopes, one table per parent.
var (
	TopicComments      = CommentScope{Table: "topic_comments", ParentColumn: "topic_id", KeyExists: apperrors.ErrReplyKeyExists}
	AssignmentComments = CommentScope{Table: "assignment_comments", ParentColumn: "assignment_id", KeyExists: apperrors.ErrCommentKeyExists}
	ResourceComments   = CommentScope{Table: "resource_comments", ParentColumn: "resource_id", KeyExists: apperrors.ErrCommentKeyExists}
	WeekComments       = CommentScope{Table: "week_comments", ParentColumn: "week_id", KeyExists: apperrors.ErrCommentKeyExists}
)

func (s CommentScope) keyConstraint() string {
	return s.Table + "_comment_key_key"
}

// ICommentRepository defines the database operations on the comments of one parent kind
type ICommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.Comment, error)
	GetByKey(ctx context.Context, key string) (*models.Comment, error)
	ListByParent(ctx context.Context, parentID int64) ([]*models.Comment, error)
	Delete(ctx context.Context, id int64) error
}

// CommentRepository handles database operations for one comment table
type CommentRepository struct {
	DB    *pgxpool.Pool
	scope CommentScope
}

// NewCommentRepository creates a repository over the table named by scope
func NewCommentRepository(db *pgxpool.Pool, scope CommentScope) *CommentRepository {
	return &CommentRepository{DB: db, scope: scope}
}

func (r *CommentRepository) selectQuery() squirrel.SelectBuilder {
	return psql.Select(
		"c.id", "c.comment_key", "c."+r.scope.ParentColumn, "c.user_id", "c.comment_text",
		"c.created_at", "c.updated_at", "u.name AS author_name", "u.role AS author_role",
	).From(r.scope.Table + " c").
		Join("users u ON u.id = c.user_id")
}

func scanComment(row pgx.Row) (*models.Comment, error) {
	var c models.Comment
	err := row.Scan(&c.ID, &c.Key, &c.ParentID, &c.UserID, &c.Text, &c.CreatedAt, &c.UpdatedAt, &c.AuthorName, &c.AuthorRole)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCommentNotFound
		}
		logger.Error().Err(err).Msg("Error scanning comment")
		return nil, err
	}
	return &c, nil
}

// Create inserts a comment. A parent deleted in the meantime surfaces as not found.
func (r *CommentRepository) Create(ctx context.Context, comment *models.Comment) (int64, error) {
	sql, args, err := psql.Insert(r.scope.Table).
		Columns("comment_key", r.scope.ParentColumn, "user_id", "comment_text").
		Values(comment.Key, comment.ParentID, comment.UserID, comment.Text).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", r.scope.Table).Msg("Error building create comment SQL")
		return 0, err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&comment.ID, &comment.CreatedAt, &comment.UpdatedAt); err != nil {
		switch {
		case dberrors.IsDuplicateConstraintError(err, r.scope.keyConstraint()):
			return 0, r.scope.KeyExists
		case dberrors.IsForeignKeyViolation(err):
			return 0, apperrors.ErrResourceNotFound
		}
		logger.Error().Err(err).Str("table", r.scope.Table).Msg("Error executing create comment query")
		return 0, fmt.Errorf("error creating comment: %w", err)
	}
	return comment.ID, nil
}

// GetByID retrieves a comment by its numeric ID
func (r *CommentRepository) GetByID(ctx context.Context, id int64) (*models.Comment, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"c.id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanComment(r.DB.QueryRow(ctx, sql, args...))
}

// GetByKey retrieves a comment by its public key
func (r *CommentRepository) GetByKey(ctx context.Context, key string) (*models.Comment, error) {
	sql, args, err := r.selectQuery().Where(squirrel.Eq{"c.comment_key": key}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanComment(r.DB.QueryRow(ctx, sql, args...))
}

func (r *CommentRepository) byParentQuery(parentID int64) squirrel.SelectBuilder {
	return r.selectQuery().
		Where(squirrel.Eq{"c." + r.scope.ParentColumn: parentID}).
		OrderBy("c.created_at ASC", "c.id ASC")
}

// ListByParent returns the comments of one parent, oldest first
func (r *CommentRepository) ListByParent(ctx context.Context, parentID int64) ([]*models.Comment, error) {
	sql, args, err := r.byParentQuery(parentID).ToSql()
	if err != nil {
		logger.Error().Err(err).Str("table", r.scope.Table).Msg("Error building list comments SQL")
		return nil, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", r.scope.Table).Msg("Error executing list comments query")
		return nil, err
	}
	defer rows.Close()

	comments := make([]*models.Comment, 0)
	for rows.Next() {
		c, err := scanComment(rows)
		if err != nil {
			return nil, err
		}
		comments = append(comments, c)
	}
	return comments, rows.Err()
}

// Delete removes one comment
func (r *CommentRepository) Delete(ctx context.Context, id int64) error {
	sql, args, err := psql.Delete(r.scope.Table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return err
	}
	tag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Str("table", r.scope.Table).Int64("commentID", id).Msg("Error deleting comment")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrCommentNotFound)
}
