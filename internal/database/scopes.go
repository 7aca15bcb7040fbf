package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/project-hub-api/internal/utils"
)

// Paginate limits a query to one page. A zero page or page size leaves the
// query unbounded.
func Paginate(page, pageSize int) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if page <= 0 || pageSize <= 0 {
			return db
		}
		params := utils.NewPaginationParams(page, pageSize)
		return db.Offset(params.Offset).Limit(params.Limit)
	}
}

// NotDeleted restricts a joined table alias to rows that are not soft deleted
func NotDeleted(alias string) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where(alias + ".deleted_at IS NULL")
	}
}
