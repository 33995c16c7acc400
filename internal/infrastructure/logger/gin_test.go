package logger

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func newObservedRouter(t *testing.T) (*gin.Engine, *observer.ObservedLogs) {
	t.Helper()
	core, logs := observer.New(zapcore.DebugLevel)
	log := zap.New(core)

	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("request_id", "req-1")
		c.Next()
	})
	r.Use(Recovery(log), GinMiddleware(log))
	return r, logs
}

func TestGinMiddleware_LevelsByStatus(t *testing.T) {
	r, logs := newObservedRouter(t)
	r.GET("/ok", func(c *gin.Context) { c.Status(http.StatusOK) })
	r.POST("/sessions/:session_id/submit", func(c *gin.Context) { c.Status(http.StatusUnprocessableEntity) })
	r.GET("/boom", func(c *gin.Context) { c.Status(http.StatusBadGateway) })

	tests := []struct {
		method string
		path   string
		level  zapcore.Level
	}{
		{http.MethodGet, "/ok", zapcore.InfoLevel},
		{http.MethodPost, "/sessions/s-1/submit", zapcore.WarnLevel},
		{http.MethodGet, "/boom", zapcore.ErrorLevel},
	}
	for _, tt := range tests {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(tt.method, tt.path, nil))

		entries := logs.TakeAll()
		require.Len(t, entries, 1, tt.path)
		assert.Equal(t, tt.level, entries[0].Level, tt.path)
		assert.Equal(t, "req-1", entries[0].ContextMap()["request_id"])
	}
}

func TestGinMiddleware_SessionIDAndScopedLogger(t *testing.T) {
	r, logs := newObservedRouter(t)
	r.GET("/sessions/:session_id", func(c *gin.Context) {
		FromGin(c).Info("handler")
		FromContext(c.Request.Context(), nil).Info("service")
		c.Status(http.StatusOK)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/sessions/abc", nil))

	entries := logs.All()
	require.Len(t, entries, 3)
	assert.Equal(t, "/sessions/:session_id", entries[0].ContextMap()["route"])
	assert.Equal(t, "/sessions/:session_id", entries[1].ContextMap()["route"])
	assert.Equal(t, "abc", entries[2].ContextMap()["session_id"])
}

func TestRecovery(t *testing.T) {
	r, logs := newObservedRouter(t)
	r.GET("/panic", func(c *gin.Context) { panic("unexpected") })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/panic", nil))

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), `"INTERNAL_ERROR"`)
	assert.Equal(t, 1, logs.FilterMessage("Panic recovered").Len())
}

func TestFromGin_Missing(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	assert.NotNil(t, FromGin(c))
}
