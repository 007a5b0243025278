package models

import (
	"math"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PageMetadata struct {
	TotalRecords int64 `json:"totalRecords"`
	Page         int   `json:"page"`
	Size         int   `json:"size"`
	TotalPages   int   `json:"totalPages"`
}

type ListResult[T any] struct {
	Data     []*T         `json:"data"`
	Metadata PageMetadata `json:"metadata"`
}

func NewPageMetadata(total int64, page int, size int) PageMetadata {
	totalPages := 0
	if size > 0 {
		totalPages = int(math.Ceil(float64(total) / float64(size)))
	}
	return PageMetadata{
		TotalRecords: total,
		Page:         page,
		Size:         size,
		TotalPages:   totalPages,
	}
}

func emptyListResult[T any](q ListQuery) *ListResult[T] {
	return &ListResult[T]{
		Data:     make([]*T, 0),
		Metadata: NewPageMetadata(0, q.Page, q.Size),
	}
}

// paginate counts and fetches one offset page of T from dbCtx.
// Rows are ordered by the resolved sort column with id as tiebreaker.
// scopes are applied to the fetch only (preloads).
func paginate[T any](dbCtx *gorm.DB,
	q ListQuery,
	columns sortColumns,
	scopes ...func(*gorm.DB) *gorm.DB,
) ([]*T, PageMetadata, error) {

	var total int64
	if err := dbCtx.Session(&gorm.Session{}).Count(&total).Error; err != nil {
		return nil, PageMetadata{}, err
	}

	nodes := make([]*T, 0)
	metadata := NewPageMetadata(total, q.Page, q.Size)
	if total == 0 || int64(q.Offset()) >= total {
		return nodes, metadata, nil
	}

	column, direction := columns.Resolve(q.SortBy)
	desc := direction.IsDesc()
	orderBy := clause.OrderBy{Columns: []clause.OrderByColumn{
		{Column: clause.Column{Name: column}, Desc: desc},
	}}
	if column != "id" {
		orderBy.Columns = append(orderBy.Columns, clause.OrderByColumn{Column: clause.Column{Name: "id"}, Desc: desc})
	}

	fetch := dbCtx.Session(&gorm.Session{}).Scopes(scopes...).
		Clauses(orderBy).
		Offset(q.Offset()).
		Limit(q.Size)
	if err := fetch.Find(&nodes).Error; err != nil {
		return nil, PageMetadata{}, err
	}
	return nodes, metadata, nil
}
