package models

import (
	"fmt"
	"strings"
	"time"

	"bitbucket.org/mmdatafocus/ledger_backend/utils"
	"gorm.io/gorm"
)

const (
	DefaultPage     = 1
	DefaultPageSize = 10
	MaxPageSize     = 100
)

type SortBy struct {
	Column  string `json:"column"`
	OrderBy string `json:"orderBy"`
}

// ListFilter is the JSON body accepted by list endpoints.
type ListFilter struct {
	StartDate string  `json:"startDate"`
	EndDate   string  `json:"endDate"`
	SortBy    *SortBy `json:"sortBy"`
	Q         string  `json:"q"`
}

// ListQuery combines the page/size query parameters with the body filter.
type ListQuery struct {
	Page int
	Size int
	ListFilter
}

// Normalize applies defaults: page 1, size 10, size capped at MaxPageSize.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = DefaultPage
	}
	if q.Size < 1 {
		q.Size = DefaultPageSize
	}
	if q.Size > MaxPageSize {
		q.Size = MaxPageSize
	}
	q.Q = strings.TrimSpace(q.Q)
	return q
}

func (q ListQuery) Offset() int {
	return (q.Page - 1) * q.Size
}

// DateBounds parses the optional date filter. A date-only end bound covers
// the whole day.
func (q ListQuery) DateBounds() (start *time.Time, end *time.Time, err error) {
	if s := strings.TrimSpace(q.StartDate); s != "" {
		t, _, err := utils.ParseDate(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", utils.ErrInvalidRequest, err.Error())
		}
		start = &t
	}
	if s := strings.TrimSpace(q.EndDate); s != "" {
		t, dateOnly, err := utils.ParseDate(s)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %s", utils.ErrInvalidRequest, err.Error())
		}
		if dateOnly {
			t = utils.EndOfDay(t)
		}
		end = &t
	}
	return start, end, nil
}

func applyDateRange(dbCtx *gorm.DB, start *time.Time, end *time.Time) *gorm.DB {
	if start != nil {
		dbCtx = dbCtx.Where("created_at >= ?", *start)
	}
	if end != nil {
		dbCtx = dbCtx.Where("created_at <= ?", *end)
	}
	return dbCtx
}

// sortColumns maps camelCase caller columns to database columns.
type sortColumns map[string]string

// Resolve normalizes the caller's sort column and direction.
// Unknown columns fall back to created_at; direction defaults to DESC.
func (c sortColumns) Resolve(sortBy *SortBy) (string, SortDirection) {
	if sortBy == nil {
		return "created_at", SortDirectionDesc
	}
	column, ok := c[utils.ToCamelCase(sortBy.Column)]
	if !ok {
		column = "created_at"
	}
	return column, ParseSortDirection(sortBy.OrderBy)
}
