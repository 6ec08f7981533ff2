package repository

import "gorm.io/gorm"

const (
	defaultLimit = 100
	maxLimit     = 500
)

// paginate clamps page/limit the same way for every listing.
func paginate(q *gorm.DB, page, limit int) *gorm.DB {
	if page < 1 {
		page = 1
	}
	if limit < 1 || limit > maxLimit {
		limit = defaultLimit
	}
	return q.Offset((page - 1) * limit).Limit(limit)
}
