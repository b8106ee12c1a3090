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

const constraintTopicKey = "topics_topic_key_key"

// TopicListSpec is the allow-list of the discussion board.
var TopicListSpec = listquery.Spec{
	Sortable: map[string]string{
		"subject":    "t.subject",
		"author":     "u.name",
		"created_at": "t.created_at",
	},
	DefaultSort:   "created_at",
	DefaultOrder:  listquery.Desc,
	SearchColumns: []string{"t.subject", "t.message", "u.name"},
	TieBreaker:    "t.id",
}

// ITopicRepository defines the database operations on discussion topics
type ITopicRepository interface {
	Create(ctx context.Context, topic *models.Topic) (int64, error)
	GetByKey(ctx context.Context, key string) (*models.Topic, error)
	List(ctx context.Context, params listquery.Params) ([]*models.Topic, dto.PaginationInfo, error)
	Update(ctx context.Context, id int64, update models.TopicUpdate) error
	Delete(ctx context.Context, id int64) error
}

// TopicRepository handles database operations for topics
type TopicRepository struct {
	DB *pgxpool.Pool
}

// NewTopicRepository creates a new TopicRepository
func NewTopicRepository(db *pgxpool.Pool) *TopicRepository {
	return &TopicRepository{DB: db}
}

// selectTopicQuery joins the author and counts the replies.
func selectTopicQuery() squirrel.SelectBuilder {
	return psql.Select(
		"t.id", "t.topic_key", "t.user_id", "t.subject", "t.message", "t.created_at", "t.updated_at",
		"u.name AS author_name", "u.role AS author_role",
		"(SELECT COUNT(*) FROM topic_comments tc WHERE tc.topic_id = t.id) AS comment_count",
	).From("topics t").
		Join("users u ON u.id = t.user_id")
}

func scanTopic(row pgx.Row) (*models.Topic, error) {
	var t models.Topic
	err := row.Scan(
		&t.ID, &t.Key, &t.UserID, &t.Subject, &t.Message, &t.CreatedAt, &t.UpdatedAt,
		&t.AuthorName, &t.AuthorRole, &t.CommentCount,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrTopicNotFound
		}
		logger.Error().Err(err).Msg("Error scanning topic")
		return nil, err
	}
	return &t, nil
}

// Create inserts a new topic
func (r *TopicRepository) Create(ctx context.Context, topic *models.Topic) (int64, error) {
	sql, args, err := psql.Insert("topics").
		Columns("topic_key", "user_id", "subject", "message").
		Values(topic.Key, topic.UserID, topic.Subject, topic.Message).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building create topic SQL")
		return 0, err
	}

	if err := r.DB.QueryRow(ctx, sql, args...).Scan(&topic.ID, &topic.CreatedAt, &topic.UpdatedAt); err != nil {
		if dberrors.IsDuplicateConstraintError(err, constraintTopicKey) {
			return 0, apperrors.ErrTopicKeyExists
		}
		logger.Error().Err(err).Str("topicKey", topic.Key).Msg("Error executing create topic query")
		return 0, fmt.Errorf("error creating topic: %w", err)
	}
	return topic.ID, nil
}

// GetByKey retrieves a topic by its public key
func (r *TopicRepository) GetByKey(ctx context.Context, key string) (*models.Topic, error) {
	sql, args, err := selectTopicQuery().Where(squirrel.Eq{"t.topic_key": key}).ToSql()
	if err != nil {
		return nil, err
	}
	return scanTopic(r.DB.QueryRow(ctx, sql, args...))
}

// topicListQueries returns the filtered page query and its count query.
// Both join users because the search covers the author name.
func topicListQueries(params listquery.Params) (selectQuery, countQuery squirrel.SelectBuilder) {
	selectQuery = TopicListSpec.ApplySearch(selectTopicQuery(), params)
	countQuery = TopicListSpec.ApplySearch(
		psql.Select("COUNT(*)").From("topics t").Join("users u ON u.id = t.user_id"), params)
	return selectQuery, countQuery
}

// List returns one page of topics matching the search
func (r *TopicRepository) List(ctx context.Context, params listquery.Params) ([]*models.Topic, dto.PaginationInfo, error) {
	selectQuery, countQuery := topicListQueries(params)

	selectQuery, pagination, found, err := paginate(ctx, r.DB, TopicListSpec, params, selectQuery, countQuery)
	if err != nil || !found {
		return []*models.Topic{}, pagination, err
	}

	sql, args, err := selectQuery.ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building list topics SQL")
		return nil, pagination, err
	}

	rows, err := r.DB.Query(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Msg("Error executing list topics query")
		return nil, pagination, err
	}
	defer rows.Close()

	topics := make([]*models.Topic, 0)
	for rows.Next() {
		t, err := scanTopic(rows)
		if err != nil {
			return nil, pagination, err
		}
		topics = append(topics, t)
	}
	return topics, pagination, rows.Err()
}

// Update applies the non-nil fields of update
func (r *TopicRepository) Update(ctx context.Context, id int64, update models.TopicUpdate) error {
	set := map[string]interface{}{}
	if update.Subject != nil {
		set["subject"] = *update.Subject
	}
	if update.Message != nil {
		set["message"] = *update.Message
	}
	if len(set) == 0 {
		return nil
	}

	sql, args, err := psql.Update("topics").SetMap(set).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		logger.Error().Err(err).Msg("Error building update topic SQL")
		return err
	}

	tag, err := r.DB.Exec(ctx, sql, args...)
	if err != nil {
		logger.Error().Err(err).Int64("topicID", id).Msg("Error executing update topic query")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrTopicNotFound)
}

// Delete removes a topic; its replies cascade
func (r *TopicRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.DB.Exec(ctx, `DELETE FROM topics WHERE id = $1`, id)
	if err != nil {
		logger.Error().Err(err).Int64("topicID", id).Msg("Error deleting topic")
		return err
	}
	return affectedOrNotFound(tag, apperrors.ErrTopicNotFound)
}
