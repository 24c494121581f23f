package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
)

// PaginatedResponse is the envelope every paginated list endpoint uses.
type PaginatedResponse struct {
	Count       int64       `json:"count"`
	TotalPages  int         `json:"total_pages"`
	CurrentPage int         `json:"current_page"`
	Results     interface{} `json:"results"`
}

// paginationParams reads page and page_size, clamping page_size to maxSize.
func paginationParams(c *gin.Context, defaultSize, maxSize int) (page, pageSize int) {
	page = 1
	if raw := c.Query("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	pageSize = defaultSize
	if raw := c.Query("page_size"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			pageSize = parsed
		}
	}
	if pageSize > maxSize {
		pageSize = maxSize
	}
	return page, pageSize
}

func respondPaginated(c *gin.Context, total int64, page, pageSize int, results interface{}) {
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))
	if totalPages < 1 {
		totalPages = 1
	}

	c.JSON(http.StatusOK, PaginatedResponse{
		Count:       total,
		TotalPages:  totalPages,
		CurrentPage: page,
		Results:     results,
	})
}

// parseUintParam reads a numeric path parameter
func parseUintParam(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint(parsed), true
}

func queryUint(c *gin.Context, name string) *uint {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil
	}
	value := uint(parsed)
	return &value
}

func queryFloat(c *gin.Context, name string) *float64 {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &parsed
}

func queryInt(c *gin.Context, name string) *int {
	raw := c.Query(name)
	if raw == "" {
		return nil
	}
	parsed, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &parsed
}
