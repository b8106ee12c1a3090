package repositories

import (
	"context"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/yigit/coursehub/internal/app/models/dto"
	"github.com/yigit/coursehub/internal/pkg/helpers"
	"github.com/yigit/coursehub/internal/pkg/listquery"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

// Repositories holds all the repository instances
type Repositories struct {
	UserRepository              *UserRepository
	TopicRepository             *TopicRepository
	TopicCommentRepository      *CommentRepository
	AssignmentRepository        *AssignmentRepository
	AssignmentCommentRepository *CommentRepository
	ResourceRepository          *ResourceRepository
	ResourceCommentRepository   *CommentRepository
	WeekRepository              *WeekRepository
	WeekCommentRepository       *CommentRepository
}

// NewRepositories initializes all repositories
func NewRepositories(db *pgxpool.Pool) *Repositories {
	return &Repositories{
		UserRepository:              NewUserRepository(db),
		TopicRepository:             NewTopicRepository(db),
		TopicCommentRepository:      NewCommentRepository(db, TopicComments),
		AssignmentRepository:        NewAssignmentRepository(db),
		AssignmentCommentRepository: NewCommentRepository(db, AssignmentComments),
		ResourceRepository:          NewResourceRepository(db),
		ResourceCommentRepository:   NewCommentRepository(db, ResourceComments),
		WeekRepository:              NewWeekRepository(db),
		WeekCommentRepository:       NewCommentRepository(db, WeekComments),
	}
}

// querier is satisfied by the pool and by a transaction.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// paginate counts the rows matched by countQuery and pages selectQuery accordingly.
// The caller applies search filters to both builders beforehand.
func paginate(ctx context.Context, db querier, spec listquery.Spec, p listquery.Params, selectQuery, countQuery squirrel.SelectBuilder) (squirrel.SelectBuilder, dto.PaginationInfo, bool, error) {
	countSQL, countArgs, err := countQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building count query SQL")
		return selectQuery, dto.PaginationInfo{}, false, err
	}

	var total int64
	if err := db.QueryRow(ctx, countSQL, countArgs...).Scan(&total); err != nil {
		logger.Error().Err(err).Msg("Error executing count query")
		return selectQuery, dto.PaginationInfo{}, false, err
	}

	pagination := helpers.NewPaginationInfo(total, p.Page, p.Size)
	if total == 0 {
		return selectQuery, pagination, false, nil
	}

	selectQuery = spec.ApplyOrder(selectQuery, p)
	selectQuery = spec.ApplyPage(selectQuery, p)
	return selectQuery, pagination, true, nil
}

func affectedOrNotFound(tag pgconn.CommandTag, notFound error) error {
	if tag.RowsAffected() == 0 {
		return notFound
	}
	return nil
}
