package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/xiexing/askhub/internal/pkg/jwt"
)

func newTestContext(t *testing.T, method, path string) *gin.Context {
	t.Helper()
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(method, path, nil)
	return c
}

func TestAdminAuthValidToken(t *testing.T) {
	secret := []byte("test-secret")
	token, err := jwt.GenerateToken("admin", secret, time.Hour)
	require.NoError(t, err)

	c := newTestContext(t, "POST", "/kb/upload")
	c.Request.Header.Set("Authorization", "Bearer "+token)
	AdminAuth(secret)(c)

	require.False(t, c.IsAborted())
	subject, _ := c.Get(ContextSubjectKey)
	require.Equal(t, "admin", subject)
}

func TestAdminAuthMissingHeader(t *testing.T) {
	c := newTestContext(t, "POST", "/kb/upload")
	AdminAuth([]byte("test-secret"))(c)
	require.True(t, c.IsAborted())
}

func TestAdminAuthMalformedHeader(t *testing.T) {
	c := newTestContext(t, "POST", "/kb/upload")
	c.Request.Header.Set("Authorization", "Basic abc")
	AdminAuth([]byte("test-secret"))(c)
	require.True(t, c.IsAborted())
}

func TestAdminAuthBadToken(t *testing.T) {
	c := newTestContext(t, "POST", "/kb/upload")
	c.Request.Header.Set("Authorization", "Bearer not-a-token")
	AdminAuth([]byte("test-secret"))(c)
	require.True(t, c.IsAborted())
}

func TestRateLimitBlocksBurst(t *testing.T) {
	handler := RateLimit(time.Minute)

	first := newTestContext(t, "POST", "/kb/upload")
	handler(first)
	require.False(t, first.IsAborted())

	second := newTestContext(t, "POST", "/kb/upload")
	handler(second)
	require.True(t, second.IsAborted())
}

func TestRateLimitSeparatePaths(t *testing.T) {
	handler := RateLimit(time.Minute)

	first := newTestContext(t, "POST", "/kb/upload")
	handler(first)
	other := newTestContext(t, "GET", "/kb/status")
	handler(other)
	require.False(t, other.IsAborted())
}

func TestRateLimitDisabled(t *testing.T) {
	handler := RateLimit(0)
	for i := 0; i < 3; i++ {
		c := newTestContext(t, "POST", "/kb/upload")
		handler(c)
		require.False(t, c.IsAborted())
	}
}

func TestRequestIDEchoesCaller(t *testing.T) {
	c := newTestContext(t, "POST", "/qa/query")
	c.Request.Header.Set(RequestIDHeader, "req-123")
	RequestID()(c)
	id, _ := c.Get("request_id")
	require.Equal(t, "req-123", id)
	require.Equal(t, "req-123", c.Writer.Header().Get(RequestIDHeader))
}

func TestRequestIDMintsWhenAbsent(t *testing.T) {
	c := newTestContext(t, "POST", "/qa/query")
	RequestID()(c)
	id, ok := c.Get("request_id")
	require.True(t, ok)
	require.NotEmpty(t, id)
	require.Equal(t, id, c.Writer.Header().Get(RequestIDHeader))
}

func TestCORSPreflight(t *testing.T) {
	c := newTestContext(t, "OPTIONS", "/qa/query")
	c.Request.Header.Set("Origin", "https://example.com")
	CORS(nil)(c)
	require.True(t, c.IsAborted())
	require.Equal(t, "*", c.Writer.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSAllowlist(t *testing.T) {
	handler := CORS([]string{"https://allowed.example.com"})

	allowed := newTestContext(t, "GET", "/kb/status")
	allowed.Request.Header.Set("Origin", "https://allowed.example.com")
	handler(allowed)
	require.Equal(t, "https://allowed.example.com", allowed.Writer.Header().Get("Access-Control-Allow-Origin"))

	denied := newTestContext(t, "GET", "/kb/status")
	denied.Request.Header.Set("Origin", "https://evil.example.com")
	handler(denied)
	require.Empty(t, denied.Writer.Header().Get("Access-Control-Allow-Origin"))
}
