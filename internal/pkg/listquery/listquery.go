// Package listquery turns search, sort, order and paging query parameters into
// allow-listed squirrel clauses.
package listquery

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/Masterminds/squirrel"

	"github.com/yigit/coursehub/internal/pkg/apperrors"
	"github.com/yigit/coursehub/internal/pkg/helpers"
)

// SortOrder is the direction of an ORDER BY clause.
type SortOrder string

const (
	Asc  SortOrder = "asc"
	Desc SortOrder = "desc"
)

// ParseSortOrder accepts "asc" or "desc" in any case.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(strings.TrimSpace(s))) {
	case Asc:
		return Asc, true
	case Desc:
		return Desc, true
	default:
		return "", false
	}
}

// SQL returns the keyword used in ORDER BY.
func (o SortOrder) SQL() string {
	if o == Desc {
		return "DESC"
	}
	return "ASC"
}

// Spec declares which fields of an entity can be searched and sorted.
type Spec struct {
	// Sortable maps the public sort name to its SQL column.
	Sortable      map[string]string
	DefaultSort   string
	DefaultOrder  SortOrder
	SearchColumns []string
	// TieBreaker keeps ordering stable across equal sort keys.
	TieBreaker string
}

// Params is a validated list request.
type Params struct {
	Search string
	Sort   string
	Order  SortOrder
	Page   int
	Size   int
}

// Parse validates raw parameters against the spec. Empty values take the defaults;
// anything outside the allow-lists is rejected.
func (s Spec) Parse(search, sort, order string) (Params, error) {
	p := Params{
		Search: strings.TrimSpace(search),
		Sort:   s.DefaultSort,
		Order:  s.DefaultOrder,
		Page:   helpers.DefaultPage,
		Size:   helpers.DefaultListSize,
	}

	if sort = strings.TrimSpace(sort); sort != "" {
		if _, ok := s.Sortable[sort]; !ok {
			return Params{}, apperrors.NewBadRequestError(fmt.Sprintf("Invalid sort field: %s", sort))
		}
		p.Sort = sort
	}

	if strings.TrimSpace(order) != "" {
		o, ok := ParseSortOrder(order)
		if !ok {
			return Params{}, apperrors.NewBadRequestError(fmt.Sprintf("Invalid sort order: %s", order))
		}
		p.Order = o
	}

	return p, nil
}

// ParseValues reads search, sort, order, page and size from URL query values.
func (s Spec) ParseValues(v url.Values) (Params, error) {
	p, err := s.Parse(v.Get("search"), v.Get("sort"), v.Get("order"))
	if err != nil {
		return Params{}, err
	}

	if raw := v.Get("page"); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 || int64(page) > helpers.MaxPage {
			return Params{}, apperrors.NewBadRequestError("Invalid page: " + raw)
		}
		p.Page = page
	}
	if raw := v.Get("size"); raw != "" {
		size, err := strconv.Atoi(raw)
		if err != nil || size < 1 || size > helpers.MaxPageSize {
			return Params{}, apperrors.NewBadRequestError("Invalid size: " + raw)
		}
		p.Size = size
	}

	return p, nil
}

// ApplySearch adds a case-insensitive match over the search columns.
func (s Spec) ApplySearch(b squirrel.SelectBuilder, p Params) squirrel.SelectBuilder {
	if p.Search == "" || len(s.SearchColumns) == 0 {
		return b
	}
	pattern := "%" + escapeLike(p.Search) + "%"
	or := make(squirrel.Or, 0, len(s.SearchColumns))
	for _, col := range s.SearchColumns {
		or = append(or, squirrel.ILike{col: pattern})
	}
	return b.Where(or)
}

// ApplyOrder adds the ORDER BY clause for an already validated Params.
func (s Spec) ApplyOrder(b squirrel.SelectBuilder, p Params) squirrel.SelectBuilder {
	col, ok := s.Sortable[p.Sort]
	if !ok {
		col = s.Sortable[s.DefaultSort]
	}
	order := p.Order
	if order == "" {
		order = s.DefaultOrder
	}
	b = b.OrderBy(col + " " + order.SQL())
	if s.TieBreaker != "" && s.TieBreaker != col {
		b = b.OrderBy(s.TieBreaker + " " + order.SQL())
	}
	return b
}

// ApplyPage adds LIMIT and OFFSET.
func (s Spec) ApplyPage(b squirrel.SelectBuilder, p Params) squirrel.SelectBuilder {
	offset, limit := helpers.CalculateOffsetLimit(p.Page, p.Size)
	return b.Limit(uint64(limit)).Offset(offset)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
