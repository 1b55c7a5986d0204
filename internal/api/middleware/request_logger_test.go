package middleware

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func captureLogger() (*logrus.Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	l := logrus.New()
	l.SetOutput(buf)
	l.SetFormatter(&logrus.JSONFormatter{})
	return l, buf
}

func lastLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	lines := bytes.Split(bytes.TrimSpace(buf.Bytes()), []byte("\n"))
	require.NotEmpty(t, lines)

	var entry map[string]any
	require.NoError(t, json.Unmarshal(lines[len(lines)-1], &entry))
	return entry
}

func TestRequestLoggerIncludesHandlerContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, buf := captureLogger()

	r := gin.New()
	r.Use(RequestLogger(l))
	r.POST("/chat", func(c *gin.Context) {
		c.Set("user_id", "user-1")
		c.Set("agent_slug", "sales-bot")
		c.Set("conversation_id", "conv-1")
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/chat", nil)
	req.Header.Set("X-Request-Id", "rid-123")
	r.ServeHTTP(w, req)

	entry := lastLogLine(t, buf)
	assert.Equal(t, "rid-123", entry["request_id"])
	assert.Equal(t, "sales-bot", entry["agent_slug"])
	assert.Equal(t, "conv-1", entry["conversation_id"])
	assert.Equal(t, "user-1", entry["user_id"])
	assert.Equal(t, "/chat", entry["path"])
	assert.Equal(t, "rid-123", w.Header().Get("X-Request-Id"))
}

func TestRequestLoggerOmitsUnsetContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, buf := captureLogger()

	r := gin.New()
	r.Use(RequestLogger(l))
	r.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	entry := lastLogLine(t, buf)
	assert.NotContains(t, entry, "agent_slug")
	assert.NotContains(t, entry, "conversation_id")
	assert.NotContains(t, entry, "user_id")
	assert.NotEmpty(t, entry["request_id"], "generates an id when none is sent")
}

func TestRequestLoggerUnmatchedRouteKeepsPath(t *testing.T) {
	gin.SetMode(gin.TestMode)
	l, buf := captureLogger()

	r := gin.New()
	r.Use(RequestLogger(l))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/nope", nil))

	entry := lastLogLine(t, buf)
	assert.Equal(t, "/nope", entry["path"])
	assert.Equal(t, "warning", entry["level"])
}
