package handler

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"foodgram/internal/api/dto"
)

// Paging holds the page size limits of list endpoints.
type Paging struct {
	Default int
	Max     int
}

func (p Paging) parse(c *gin.Context) dto.Pagination {
	return dto.ParsePagination(c.Query("page"), c.Query("limit"), p.Default, p.Max)
}

// recipesLimit reads ?recipes_limit=, anything but a positive number means
// no limit.
func recipesLimit(c *gin.Context) int {
	n, err := strconv.Atoi(c.Query("recipes_limit"))
	if err != nil || n < 0 {
		return 0
	}
	return n
}
