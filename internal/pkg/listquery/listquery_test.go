package listquery

import (
	"errors"
	"net/url"
	"strconv"
	"testing"

	"github.com/Masterminds/squirrel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/helpers"
)

var topicSpec = Spec{
	Sortable: map[string]string{
		"subject":    "t.subject",
		"author":     "u.name",
		"created_at": "t.created_at",
	},
	DefaultSort:   "created_at",
	DefaultOrder:  Desc,
	SearchColumns: []string{"t.subject", "t.message", "u.name"},
	TieBreaker:    "t.id",
}

func TestParse_Defaults(t *testing.T) {
	p, err := topicSpec.Parse("", "", "")
	require.NoError(t, err)
	assert.Equal(t, "created_at", p.Sort)
	assert.Equal(t, Desc, p.Order)
}

func TestParse_AllowList(t *testing.T) {
	tests := []struct {
		name      string
		sort      string
		order     string
		wantSort  string
		wantOrder SortOrder
		wantErr   bool
	}{
		{name: "allowed field", sort: "subject", order: "asc", wantSort: "subject", wantOrder: Asc},
		{name: "order is case insensitive", sort: "author", order: "DESC", wantSort: "author", wantOrder: Desc},
		{name: "unknown field", sort: "password_hash", wantErr: true},
		{name: "sql in field", sort: "subject; DROP TABLE users", wantErr: true},
		{name: "column name instead of public name", sort: "t.subject", wantErr: true},
		{name: "unknown order", sort: "subject", order: "sideways", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := topicSpec.Parse("", tt.sort, tt.order)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantSort, p.Sort)
			assert.Equal(t, tt.wantOrder, p.Order)
		})
	}
}

func TestParseValues_Paging(t *testing.T) {
	p, err := topicSpec.ParseValues(url.Values{"page": {"2"}, "size": {"5"}})
	require.NoError(t, err)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 5, p.Size)

	_, err = topicSpec.ParseValues(url.Values{"size": {"1000"}})
	assert.Error(t, err)
	_, err = topicSpec.ParseValues(url.Values{"page": {"zero"}})
	assert.Error(t, err)

	last := strconv.FormatInt(helpers.MaxPage, 10)
	p, err = topicSpec.ParseValues(url.Values{"page": {last}, "size": {"100"}})
	require.NoError(t, err)
	sql, _, err := topicSpec.ApplyPage(squirrel.Select("*").From("t"), p).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT * FROM t LIMIT 100 OFFSET 9223372036854775700", sql)

	for _, page := range []string{"100000000000000000", "184467440737095517"} {
		_, err = topicSpec.ParseValues(url.Values{"page": {page}, "size": {"100"}})
		require.Error(t, err, page)
		assert.True(t, errors.Is(err, apperrors.ErrBadRequest))
		msg, _ := apperrors.Message(err)
		assert.Equal(t, "Invalid page: "+page, msg)
	}
}

func TestApply_BuildsParameterizedSQL(t *testing.T) {
	p, err := topicSpec.Parse("50%_off", "author", "asc")
	require.NoError(t, err)

	b := squirrel.Select("t.id").From("topics t").Join("users u ON u.id = t.user_id").PlaceholderFormat(squirrel.Dollar)
	b = topicSpec.ApplySearch(b, p)
	b = topicSpec.ApplyOrder(b, p)

	sql, args, err := b.ToSql()
	require.NoError(t, err)
	assert.Equal(t,
		"SELECT t.id FROM topics t JOIN users u ON u.id = t.user_id WHERE (t.subject ILIKE $1 OR t.message ILIKE $2 OR u.name ILIKE $3) ORDER BY u.name ASC, t.id ASC",
		sql)
	assert.Equal(t, []interface{}{`%50\%\_off%`, `%50\%\_off%`, `%50\%\_off%`}, args)
}

func TestApplySearch_NoTerm(t *testing.T) {
	b := squirrel.Select("id").From("resources")
	sql, _, err := topicSpec.ApplySearch(b, Params{}).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT id FROM resources", sql)
}
