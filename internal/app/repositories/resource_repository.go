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
	"github.com/yigit/coursehub/internal/db"
	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/listquery"
	"github.com/yigit/coursehub/internal/pkg/logger"
)

// ResourceListSpec is the allow-list of the course resource table.
var ResourceListSpec = listquery.Spec{
	Sortable: map[string]string{
		"title":      "title",
		"created_at": "created_at",
	},
	DefaultSort:   "created_at",
	DefaultOrder:  listquery.Desc,
	SearchColumns: []string{"title", "description"},
	TieBreaker:    "id",
}

// IResourceRepository defines the database operations on course resources
type IResourceRepository interface {
	Create(ctx context.Context, resource *models.CourseResource) (int64, error)
	GetByID(ctx context.Context, id int64) (*models.CourseResource, error)
	List(ctx context.Context, params listquery.Params) ([]*models.CourseResource, dto.PaginationInfo, error)
	Update(ctx context.Context, id int64, update models.CourseResourceUpdate) error
	Delete(ctx context.Context, id int64) error
}

// ResourceRepository handles database operations for course resources
type ResourceRepository struct {
	DB *pgxpool.Pool
}

// NewResourceRepository creates a new ResourceRepository
func NewResourceRepository(db *pgxpool.Pool) *ResourceRepository {
	return &ResourceRepository{DB: db}
}

func selectResourceQuery() squirrel.SelectBuilder {
	return psql.Select("id", "title", "description", "link", "created_at", "updated_at").From("resources")
}

func scanResource(row pgx.Row) (*models.CourseResource, error) {
	var res models.CourseResource
	err := row.Scan(&res.ID, &res.Title, &res.Description, &res.Link, &res.CreatedAt, &res.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrCourseResNotFound
		}
		logger.Error().Err(err).Msg("Error scanning resource")
		return nil, err
	}
	return &res, nil
}

// Create inserts a new resource
func (r *ResourceRepository) Create(ctx context.Context, resource *models.CourseResource) (int64, error) {
	sql, args, err := psql.Insert("resources").
		Columns("title", "description", "link").
		Values(resource.Title, resource.Description, resource.Link).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create resource SQL")
		return 0, err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&resource.ID, &resource.CreatedAt, &resource.UpdatedAt); err != nil {
		logger.Error().Err(err).Msg("Error executing create resource query")
		return 0, fmt.Errorf("error creating resource: %w", err)
	}
	return resource.ID, nil
}

// GetByID retrieves a resource by ID
func (r *ResourceRepository) GetByID(ctx context.Context, id int64) (*models.CourseResource, error) {
	sql, args, err := selectResourceQuery().Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanResource(r.DB.QueryRow(ctx, sql, args...))
}

// List returns one page of resources matching the search
func (r *ResourceRepository) List(ctx context.Context, params listquery.Params) ([]*models.CourseResource, dto.PaginationInfo, error) {
	selectQuery := ResourceListSpec.ApplySearch(selectResourceQuery(), params)
	countQuery := ResourceListSpec.ApplySearch(psql.Select("COUNT(*)").From("resources"), params)

	selectQuery, pagination, found, err := paginate(ctx, r.DB, ResourceListSpec, params, selectQuery, countQuery)
	if err != nil || !found {
		return []*models.CourseResource{}, pagination, err
	}

	sql, args, err := selectQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list resources SQL")
		return nil, pagination, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list resources query")
		return nil, pagination, err
	}
	defer rows.Close()

	resources := make([]*models.CourseResource, 0)
	for rows.Next() {
		res, err := scanResource(rows)
		if err != nil {
			return nil, pagination, err
		}
		resources = append(resources, res)
	}
	return resources, pagination, rows.Err()
}

// Update applies the non-nil fields of update
func (r *ResourceRepository) Update(ctx context.Context, id int64, update models.CourseResourceUpdate) error {
	set := map[string]interface{}{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Link != nil {
		set["link"] = *update.Link
	}
	if len(set) == 0 {
		return nil
	}

	sql, args, err := psql.Update("resources").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update resource SQL")
		return err
	}

	tag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("resourceID", id).Msg("Error executing update resource query")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrCourseResNotFound)
}

// Delete removes the comments and then the resource in one transaction
func (r *ResourceRepository) Delete(ctx context.Context, id int64) error {
	return db.RunInTx(ctx, r.DB, func(ctx context.Context, tx pgx.Tx) error {
		return deleteResource(ctx, tx, id)
	})
}

// deleteResource removes the comments before the resource itself.
func deleteResource(ctx context.Context, q querier, id int64) error {
	if _, err := q.Exec(ctx, `DELETE FROM resource_comments WHERE resource_id = $1`, id); err != nil {
		logger.Error().Err(err).Int64("resourceID", id).Msg("Error deleting resource comments")
		return err
	}
	tag, err := q.Exec(ctx, `DELETE FROM resources WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("resourceID", id).Msg("Error deleting resource")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrCourseResNotFound)
}
