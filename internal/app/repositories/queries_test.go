package repositories

import (
	"context"
	"errors"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/listquery"
)

// recordingQuerier answers count queries with count and Exec calls with tags, in order.
type recordingQuerier struct {
	count int64
	tags  []string
	execs []string
	args  [][]any
}

func (q *recordingQuerier) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	q.execs = append(q.execs, sql)
	q.args = append(q.args, args)
	tag := "DELETE 0"
	if len(q.tags) > 0 {
		tag, q.tags = q.tags[0], q.tags[1:]
	}
	return pgconn.NewCommandTag(tag), nil
}

func (q *recordingQuerier) Query(context.Context, string, ...any) (pgx.Rows, error) {
	return nil, errors.New("not supported")
}

func (q *recordingQuerier) QueryRow(context.Context, string, ...any) pgx.Row {
	return countRow(q.count)
}

type countRow int64

func (r countRow) Scan(dest ...any) error {
	*dest[0].(*int64) = int64(r)
	return nil
}

func toSQL(t *testing.T, b squirrel.SelectBuilder) (string, []interface{}) {
	t.Helper()
	sql, args, err := b.ToSql()
	require.NoError(t, err)
	return sql, args
}

const topicColumns = "SELECT t.id, t.topic_key, t.user_id, t.subject, t.message, t.created_at, t.updated_at, " +
	"u.name AS author_name, u.role AS author_role, " +
	"(SELECT COUNT(*) FROM topic_comments tc WHERE tc.topic_id = t.id) AS comment_count " +
	"FROM topics t JOIN users u ON u.id = t.user_id"

func TestSelectTopicQuery(t *testing.T) {
	sql, args := toSQL(t, selectTopicQuery().Where(squirrel.Eq{"t.topic_key": "topic_1"}))
	assert.Equal(t, topicColumns+" WHERE t.topic_key = $1", sql)
	assert.Equal(t, []interface{}{"topic_1"}, args)
}

func TestTopicListQueries(t *testing.T) {
	params := listquery.Params{Search: "exam", Sort: "author", Order: listquery.Asc, Page: 2, Size: 10}
	selectQuery, countQuery := topicListQueries(params)

	search := " WHERE (t.subject ILIKE $1 OR t.message ILIKE $2 OR u.name ILIKE $3)"
	sql, args := toSQL(t, countQuery)
	assert.Equal(t, "SELECT COUNT(*) FROM topics t JOIN users u ON u.id = t.user_id"+search, sql)
	assert.Equal(t, []interface{}{"%exam%", "%exam%", "%exam%"}, args)

	q := &recordingQuerier{count: 25}
	paged, pagination, found, err := paginate(context.Background(), q, TopicListSpec, params, selectQuery, countQuery)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, 3, pagination.TotalPages)
	assert.Equal(t, 2, pagination.CurrentPage)

	sql, _ = toSQL(t, paged)
	assert.Equal(t, topicColumns+search+" ORDER BY u.name ASC, t.id ASC LIMIT 10 OFFSET 10", sql)
}

func TestPaginate_EmptyCountSkipsSelect(t *testing.T) {
	params := listquery.Params{Sort: "created_at", Order: listquery.Desc, Page: 1, Size: 50}
	selectQuery, countQuery := topicListQueries(params)

	paged, pagination, found, err := paginate(context.Background(), &recordingQuerier{}, TopicListSpec, params, selectQuery, countQuery)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Equal(t, 1, pagination.TotalPages)
	assert.Zero(t, pagination.TotalItems)

	sql, _ := toSQL(t, paged)
	assert.Equal(t, topicColumns, sql)
}

func TestUserListQueries(t *testing.T) {
	params := listquery.Params{Search: "s10", Sort: "student_id", Order: listquery.Desc, Page: 1, Size: 50}
	selectQuery, countQuery := userListQueries(params)

	search := " WHERE (name ILIKE $1 OR student_id ILIKE $2 OR email ILIKE $3)"
	sql, _ := toSQL(t, countQuery)
	assert.Equal(t, "SELECT COUNT(*) FROM users"+search, sql)

	paged, _, found, err := paginate(context.Background(), &recordingQuerier{count: 1}, UserListSpec, params, selectQuery, countQuery)
	require.NoError(t, err)
	require.True(t, found)

	sql, args := toSQL(t, paged)
	assert.Equal(t,
		"SELECT id, name, student_id, email, password_hash, role, created_at, updated_at FROM users"+search+
			" ORDER BY student_id DESC, id DESC LIMIT 50 OFFSET 0",
		sql)
	assert.Equal(t, []interface{}{"%s10%", "%s10%", "%s10%"}, args)
}

func TestCommentScopes(t *testing.T) {
	tests := []struct {
		scope      CommentScope
		constraint string
		listSQL    string
	}{
		{TopicComments, "topic_comments_comment_key_key",
			"SELECT c.id, c.comment_key, c.topic_id, c.user_id, c.comment_text, c.created_at, c.updated_at, u.name AS author_name, u.role AS author_role " +
				"FROM topic_comments c JOIN users u ON u.id = c.user_id WHERE c.topic_id = $1 ORDER BY c.created_at ASC, c.id ASC"},
		{AssignmentComments, "assignment_comments_comment_key_key",
			"SELECT c.id, c.comment_key, c.assignment_id, c.user_id, c.comment_text, c.created_at, c.updated_at, u.name AS author_name, u.role AS author_role " +
				"FROM assignment_comments c JOIN users u ON u.id = c.user_id WHERE c.assignment_id = $1 ORDER BY c.created_at ASC, c.id ASC"},
		{ResourceComments, "resource_comments_comment_key_key",
			"SELECT c.id, c.comment_key, c.resource_id, c.user_id, c.comment_text, c.created_at, c.updated_at, u.name AS author_name, u.role AS author_role " +
				"FROM resource_comments c JOIN users u ON u.id = c.user_id WHERE c.resource_id = $1 ORDER BY c.created_at ASC, c.id ASC"},
		{WeekComments, "week_comments_comment_key_key",
			"SELECT c.id, c.comment_key, c.week_id, c.user_id, c.comment_text, c.created_at, c.updated_at, u.name AS author_name, u.role AS author_role " +
				"FROM week_comments c JOIN users u ON u.id = c.user_id WHERE c.week_id = $1 ORDER BY c.created_at ASC, c.id ASC"},
	}
	for _, tt := range tests {
		t.Run(tt.scope.Table, func(t *testing.T) {
			r := NewCommentRepository(nil, tt.scope)
			assert.Equal(t, tt.constraint, tt.scope.keyConstraint())

			sql, args := toSQL(t, r.byParentQuery(42))
			assert.Equal(t, tt.listSQL, sql)
			assert.Equal(t, []interface{}{int64(42)}, args)
		})
	}
	assert.Equal(t, apperrors.ErrReplyKeyExists, TopicComments.KeyExists)
	assert.Equal(t, apperrors.ErrCommentKeyExists, WeekComments.KeyExists)
}

func TestDeleteResource(t *testing.T) {
	ctx := context.Background()

	q := &recordingQuerier{tags: []string{"DELETE 3", "DELETE 1"}}
	require.NoError(t, deleteResource(ctx, q, 7))
	assert.Equal(t, []string{
		"DELETE FROM resource_comments WHERE resource_id = $1",
		"DELETE FROM resources WHERE id = $1",
	}, q.execs)
	assert.Equal(t, [][]any{{int64(7)}, {int64(7)}}, q.args)

	q = &recordingQuerier{tags: []string{"DELETE 0", "DELETE 0"}}
	assert.ErrorIs(t, deleteResource(ctx, q, 8), apperrors.ErrCourseResNotFound)
}
