package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func perform(t *testing.T, h gin.HandlerFunc) (*httptest.ResponseRecorder, *gin.Context) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	h(c)
	return w, c
}

func TestInternalError_DoesNotLeakCause(t *testing.T) {
	w, c := perform(t, func(c *gin.Context) {
		InternalError(c, errors.New("pq: connection refused on 10.0.0.5"))
	})

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "10.0.0.5")
	require.Len(t, c.Errors, 1)
	assert.Contains(t, c.Errors.String(), "connection refused")

	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.False(t, body.Success)
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
}

func TestFieldError(t *testing.T) {
	w, _ := perform(t, func(c *gin.Context) {
		FieldError(c, "phone", "phone must be 09 followed by 8 digits")
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var body Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "VALIDATION_ERROR", body.Error.Code)
	assert.Equal(t, "phone", body.Error.Field)
}

func TestCreated(t *testing.T) {
	w, _ := perform(t, func(c *gin.Context) {
		Created(c, gin.H{"id": 1})
	})

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.JSONEq(t, `{"success":true,"data":{"id":1}}`, w.Body.String())
}
