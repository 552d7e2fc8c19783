// Package orm holds gorm helpers shared by the repositories.
package orm

import (
	"context"
	"fmt"
	"math"

	"gorm.io/gorm"
)

const (
	DefaultPerPage = 20
	MaxPerPage     = 100
)

// Pagination describes one page of a listing.
type Pagination struct {
	Page       int   `json:"page"`
	PerPage    int   `json:"per_page"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

// NewPagination clamps page and perPage into their valid ranges.
func NewPagination(page, perPage int) Pagination {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	if perPage > MaxPerPage {
		perPage = MaxPerPage
	}
	return Pagination{Page: page, PerPage: perPage}
}

// Offset is the number of rows skipped before this page.
func (p Pagination) Offset() int { return (p.Page - 1) * p.PerPage }

// Paginate counts the rows matched by q, then loads the requested page into
// dest. q must already carry Model, filters and ordering.
func Paginate(ctx context.Context, q *gorm.DB, p Pagination, dest interface{}) (Pagination, error) {
	if err := q.WithContext(ctx).Session(&gorm.Session{}).Count(&p.Total).Error; err != nil {
		return p, fmt.Errorf("orm: count: %w", err)
	}
	if p.Total > 0 {
		p.TotalPages = int(math.Ceil(float64(p.Total) / float64(p.PerPage)))
	}

	if err := q.WithContext(ctx).Offset(p.Offset()).Limit(p.PerPage).Find(dest).Error; err != nil {
		return p, fmt.Errorf("orm: page: %w", err)
	}
	return p, nil
}
