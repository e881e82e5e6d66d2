package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/wms-platform/production-service/pkg/logging"
)

func TestRequestIDPropagation(t *testing.T) {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(RequestID(), CorrelationID())

	var ctxRequestID, ctxCorrelationID any
	router.GET("/echo", func(c *gin.Context) {
		ctxRequestID = c.Request.Context().Value(logging.RequestIDKey)
		ctxCorrelationID = c.Request.Context().Value(logging.CorrelationIDKey)
		c.Status(http.StatusOK)
	})

	t.Run("incoming ids reach the request context", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		req.Header.Set(HeaderRequestID, "req-123")
		req.Header.Set(HeaderCorrelationID, "corr-456")
		router.ServeHTTP(w, req)

		assert.Equal(t, "req-123", ctxRequestID)
		assert.Equal(t, "corr-456", ctxCorrelationID)
		assert.Equal(t, "req-123", w.Header().Get(HeaderRequestID))
		assert.Equal(t, "corr-456", w.Header().Get(HeaderCorrelationID))
	})

	t.Run("generated ids reach the request context", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/echo", nil)
		router.ServeHTTP(w, req)

		assert.NotEmpty(t, ctxRequestID)
		assert.NotEmpty(t, ctxCorrelationID)
		assert.Equal(t, ctxRequestID, w.Header().Get(HeaderRequestID))
	})
}
