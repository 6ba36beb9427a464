package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_EmitsRequestFields(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logrustest.NewNullLogger()

	router := gin.New()
	router.Use(Logger(logger))
	router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/ping?limit=5", nil)
	router.ServeHTTP(w, req)

	require.Len(t, hook.Entries, 1)
	entry := hook.LastEntry()
	assert.Equal(t, "Request handled", entry.Message)
	assert.Equal(t, http.StatusNoContent, entry.Data["status"])
	assert.Equal(t, "/ping", entry.Data["path"])
	assert.Equal(t, "limit=5", entry.Data["query"])
	assert.NotContains(t, entry.Data, "error")
}

func TestRecovery_Returns500Envelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	logger, hook := logrustest.NewNullLogger()

	router := gin.New()
	router.Use(Recovery(logger))
	router.GET("/boom", func(c *gin.Context) { panic("kaput") })

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.JSONEq(t, `{"error":{"code":"INTERNAL_SERVER_ERROR","message":"Internal server error"}}`, w.Body.String())

	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	assert.Equal(t, "kaput", hook.LastEntry().Data["panic"])
}
