package errors

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func handleErrorRecorder(t *testing.T, err error, context string) (*httptest.ResponseRecorder, map[string]interface{}) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleError(c, err, context)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestHandleError_NotFound(t *testing.T) {
	w, body := handleErrorRecorder(t, gorm.ErrRecordNotFound, "review")

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Review not found", body["error"])
}

func TestHandleError_DuplicateKey(t *testing.T) {
	err := errors.New(`duplicate key value violates unique constraint "idx_reviews_business_reviewer"`)
	w, body := handleErrorRecorder(t, err, "review")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "You have already reviewed this provider.", body["error"])
}

func TestHandleError_Unexpected(t *testing.T) {
	w, body := handleErrorRecorder(t, errors.New("dial tcp: connection refused"), "order")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "A backing service is unreachable. Please try again later.", body["error"])
}
