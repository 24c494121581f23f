package controller

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func paginationContext(url string) *gin.Context {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", url, nil)
	return c
}

func TestPaginationParams_Defaults(t *testing.T) {
	c := paginationContext("/offers/")
	page, pageSize := paginationParams(c, 6, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 6, pageSize)
}

func TestPaginationParams_Explicit(t *testing.T) {
	c := paginationContext("/offers/?page=3&page_size=20")
	page, pageSize := paginationParams(c, 6, 100)
	assert.Equal(t, 3, page)
	assert.Equal(t, 20, pageSize)
}

func TestPaginationParams_ClampsToMax(t *testing.T) {
	c := paginationContext("/offers/?page_size=5000")
	_, pageSize := paginationParams(c, 6, 100)
	assert.Equal(t, 100, pageSize)
}

func TestPaginationParams_IgnoresGarbage(t *testing.T) {
	c := paginationContext("/offers/?page=abc&page_size=-2")
	page, pageSize := paginationParams(c, 6, 100)
	assert.Equal(t, 1, page)
	assert.Equal(t, 6, pageSize)
}
