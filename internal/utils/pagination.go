// internal/utils/pagination.go
package utils

import (
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// PaginationParams is the list query shared by the catalog, order and
// customer listings. Category is a category slug.
type PaginationParams struct {
	Page     int    `json:"page"`
	Limit    int    `json:"limit"`
	Sort     string `json:"sort"`
	Order    string `json:"order"`
	Search   string `json:"search"`
	Category string `json:"category"`
	Status   string `json:"status"`
}

func (p PaginationParams) Offset() int {
	if p.Page < 1 || p.Limit < 1 {
		return 0
	}
	return (p.Page - 1) * p.Limit
}

func (p PaginationParams) Descending() bool {
	return p.Order != "asc"
}

// PageMeta is rendered under meta.pagination on list responses.
type PageMeta struct {
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	Total      int64 `json:"total"`
	TotalPages int   `json:"total_pages"`
}

type PaginationResult struct {
	PageMeta
	Data interface{} `json:"data"`
}

func GetPaginationParams(c *gin.Context) PaginationParams {
	params := PaginationParams{
		Page:     queryInt(c, "page", 1),
		Limit:    queryInt(c, "limit", DefaultPageSize),
		Sort:     c.DefaultQuery("sort", "created_at"),
		Order:    strings.ToLower(c.DefaultQuery("order", "desc")),
		Search:   strings.TrimSpace(c.Query("search")),
		Category: strings.TrimSpace(c.Query("category")),
		Status:   c.Query("status"),
	}

	if params.Page < 1 {
		params.Page = 1
	}
	if params.Limit < 1 || params.Limit > MaxPageSize {
		params.Limit = DefaultPageSize
	}
	if params.Order != "asc" {
		params.Order = "desc"
	}
	return params
}

func queryInt(c *gin.Context, key string, fallback int) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return fallback
	}
	return n
}

func ApplyPagination(db *gorm.DB, params PaginationParams) *gorm.DB {
	return db.Offset(params.Offset()).Limit(params.Limit)
}

// ApplySort orders by params.Sort when it is one of allowed and by
// allowed[0] otherwise. Columns may be table qualified ("products.name").
func ApplySort(db *gorm.DB, params PaginationParams, allowed []string) *gorm.DB {
	if len(allowed) == 0 {
		return db
	}
	column := allowed[0]
	for _, field := range allowed {
		if field == params.Sort {
			column = field
			break
		}
	}
	return db.Order(clause.OrderByColumn{
		Column: clause.Column{Name: column},
		Desc:   params.Descending(),
	})
}

func CreatePaginationResult(data interface{}, total int64, params PaginationParams) PaginationResult {
	meta := PageMeta{Page: params.Page, Limit: params.Limit, Total: total}
	if params.Limit > 0 {
		meta.TotalPages = int((total + int64(params.Limit) - 1) / int64(params.Limit))
	}
	return PaginationResult{PageMeta: meta, Data: data}
}
