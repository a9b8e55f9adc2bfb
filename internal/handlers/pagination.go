package handlers

import "github.com/mbeiro/StudioAppBack/internal/models"

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// clampPaging normalizes raw query values into a usable page and limit.
func clampPaging(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	switch {
	case limit < 1:
		limit = defaultPageLimit
	case limit > maxPageLimit:
		limit = maxPageLimit
	}
	return page, limit
}

func buildPaginationMeta(page, limit, total int) models.PaginationMeta {
	meta := models.PaginationMeta{Page: page, Limit: limit, Total: total}
	if total > 0 {
		meta.TotalPages = (total + limit - 1) / limit
	}
	return meta
}
