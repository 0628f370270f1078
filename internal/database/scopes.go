package database

import (
	"gorm.io/gorm"

	"github.com/yukikurage/project-hub-api/internal/utils"
)

// Paginate restricts a query to the requested page. A zero limit leaves the
// query unbounded.
func Paginate(params utils.PaginationParams) func(db *gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if params.Limit <= 0 {
			return db
		}
		return db.Offset(params.Offset()).Limit(params.Limit)
	}
}

// Newest orders rows of table by creation time, most recent first, with ties
// broken by id. An empty table leaves the columns unqualified.
func Newest(table string) func(db *gorm.DB) *gorm.DB {
	prefix := ""
	if table != "" {
		prefix = table + "."
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Order(prefix + "created_at DESC").Order(prefix + "id DESC")
	}
}
