package persistence

import (
	"strings"

	"gorm.io/gorm"

	"github.com/erp/core/internal/domain/shared"
)

// applyFilter applies ordering and pagination to a query. The order column
// comes from user input, so it is checked against a safe list before being
// interpolated into SQL.
func applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	orderBy := filter.OrderBy
	if !isSafeOrderColumn(orderBy) {
		orderBy = "created_at"
	}
	dir := "DESC"
	if strings.EqualFold(filter.OrderDir, "asc") {
		dir = "ASC"
	}
	query = query.Order(orderBy + " " + dir)

	if filter.Page > 0 && filter.PageSize > 0 {
		query = query.Offset((filter.Page - 1) * filter.PageSize).Limit(filter.PageSize)
	}
	return query
}

var safeOrderColumns = map[string]struct{}{
	"created_at":  {},
	"updated_at":  {},
	"occurred_at": {},
	"order_no":    {},
	"status":      {},
}

func isSafeOrderColumn(col string) bool {
	_, ok := safeOrderColumns[col]
	return ok
}
