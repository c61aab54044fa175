package utils

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/internhub/intern-management-api/internal/constants"
)

// PaginationParams holds the pagination parameters
type PaginationParams struct {
	Enabled bool
	Page    int
	Limit   int
	Offset  int
}

// GetPaginationParams extracts and validates pagination parameters from the request.
// Pagination is opt-in: without page or limit the window is disabled.
func GetPaginationParams(c *gin.Context) PaginationParams {
	pageStr, hasPage := c.GetQuery("page")
	limitStr, hasLimit := c.GetQuery("limit")
	if !hasPage && !hasLimit {
		return PaginationParams{}
	}

	page, _ := strconv.Atoi(pageStr)
	limit, _ := strconv.Atoi(limitStr)

	if page < constants.MinPageSize {
		page = constants.MinPageSize
	}
	if limit < constants.MinPageSize || limit > constants.MaxPageSize {
		limit = constants.DefaultPageSize
	}

	return PaginationParams{
		Enabled: true,
		Page:    page,
		Limit:   limit,
		Offset:  (page - 1) * limit,
	}
}

// SetTotalCountHeader exposes the unpaginated total when pagination is active.
func SetTotalCountHeader(c *gin.Context, params PaginationParams, total int64) {
	if params.Enabled {
		c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	}
}
