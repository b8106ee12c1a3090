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

const constraintWeekKey = "weeks_week_key_key"

// WeekListSpec is the allow-list of the weekly content table.
var WeekListSpec = listquery.Spec{
	Sortable: map[string]string{
		"start_date": "start_date",
		"title":      "title",
	},
	DefaultSort:   "start_date",
	DefaultOrder:  listquery.Asc,
	SearchColumns: []string{"title", "description"},
	TieBreaker:    "id",
}

// IWeekRepository defines the database operations on weeks
type IWeekRepository interface {
	Create(ctx context.Context, week *models.Week) (int64, error)
	GetByKey(ctx context.Context, key string) (*models.Week, error)
	List(ctx context.Context, params listquery.Params) ([]*models.Week, dto.PaginationInfo, error)
	Update(ctx context.Context, id int64, update models.WeekUpdate) error
	Delete(ctx context.Context, id int64) error
}

// WeekRepository handles database operations for weeks
type WeekRepository struct {
	DB *pgxpool.Pool
}

// NewWeekRepository creates a new WeekRepository
func NewWeekRepository(db *pgxpool.Pool) *WeekRepository {
	return &WeekRepository{DB: db}
}

func selectWeekQuery() squirrel.SelectBuilder {
	return psql.Select("id", "week_key", "title", "start_date", "description", "links", "created_at", "updated_at").
		From("weeks")
}

func scanWeek(row pgx.Row) (*models.Week, error) {
	var (
		w     models.Week
		links []byte
	)
	err := row.Scan(&w.ID, &w.Key, &w.Title, &w.StartDate, &w.Description, &links, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrWeekNotFound
		}
		logger.Error().Err(err).Msg("Error scanning week")
		return nil, err
	}
	if w.Links, err = decodeStringList(links); err != nil {
		logger.Error().Err(err).Int64("weekID", w.ID).Msg("Error decoding week links")
		return nil, err
	}
	return &w, nil
}

// Create inserts a new week
func (r *WeekRepository) Create(ctx context.Context, week *models.Week) (int64, error) {
	links, err := encodeStringList(week.Links)
	if err != nil {
		return 0, err
	}

	sql, args, err := psql.Insert("weeks").
		Columns("week_key", "title", "start_date", "description", "links").
		Values(week.Key, week.Title, week.StartDate, week.Description, links).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create week SQL")
		return 0, err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&week.ID, &week.CreatedAt, &week.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintWeekKey) {
			return 0, apperrors.ErrWeekKeyExists
		}
		logger.Error().Err(err).Str("weekKey", week.Key).Msg("Error executing create week query")
		return 0, fmt.Errorf("error creating week: %w", err)
	}
	return week.ID, nil
}

// GetByKey retrieves a week by its public key
func (r *WeekRepository) GetByKey(ctx context.Context, key string) (*models.Week, error) {
	sql, args, err := selectWeekQuery().Where(squirrel.Eq{"week_key": key}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanWeek(r.DB.QueryRow(ctx, sql, args...))
}

// List returns one page of weeks matching the search
func (r *WeekRepository) List(ctx context.Context, params listquery.Params) ([]*models.Week, dto.PaginationInfo, error) {
	selectQuery := WeekListSpec.ApplySearch(selectWeekQuery(), params)
	countQuery := WeekListSpec.ApplySearch(psql.Select("COUNT(*)").From("weeks"), params)

	selectQuery, pagination, found, err := paginate(ctx, r.DB, WeekListSpec, params, selectQuery, countQuery)
	if err != nil || !found {
		return []*models.Week{}, pagination, err
	}

	sql, args, err := selectQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list weeks SQL")
		return nil, pagination, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list weeks query")
		return nil, pagination, err
	}
	defer rows.Close()

	weeks := make([]*models.Week, 0)
	for rows.Next() {
		w, err := scanWeek(rows)
		if err != nil {
			return nil, pagination, err
		}
		weeks = append(weeks, w)
	}
	return weeks, pagination, rows.Err()
}

// Update applies the non-nil fields of update
func (r *WeekRepository) Update(ctx context.Context, id int64, update models.WeekUpdate) error {
	set := map[string]interface{}{}
	if update.Title != nil {
		set["title"] = *update.Title
	}
	if update.StartDate != nil {
		set["start_date"] = *update.StartDate
	}
	if update.Description != nil {
		set["description"] = *update.Description
	}
	if update.Links != nil {
		links, err := encodeStringList(*update.Links)
		if err != nil {
			return err
		}
		set["links"] = links
	}
	if len(set) == 0 {
		return nil
	}

	sql, args, err := psql.Update("weeks").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update week SQL")
		return err
	}

	tag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("weekID", id).Msg("Error executing update week query")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrWeekNotFound)
}

// Delete removes a week; its comments cascade
func (r *WeekRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM weeks WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("weekID", id).Msg("Error deleting week")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrWeekNotFound)
}
