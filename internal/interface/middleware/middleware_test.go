package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

func init() { gin.SetMode(gin.TestMode) }

func newAuthEngine(jwt *helpers.JWTManager) *gin.Engine {
	r := gin.New()
	r.GET("/me", Auth(nil, jwt), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"uid": UserID(c)})
	})
	return r
}

func TestAuth_MissingToken(t *testing.T) {
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	w := httptest.NewRecorder()
	newAuthEngine(jwt).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/me", nil))
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_AcceptsHeaderSchemesAndCookie(t *testing.T) {
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	tok, _, err := jwt.GenerateAccessToken(42, "sid")
	require.NoError(t, err)
	r := newAuthEngine(jwt)

	for _, header := range []string{"Bearer " + tok, "Token " + tok} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code, header)
		assert.JSONEq(t, `{"uid":42}`, w.Body.String())
	}

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: tok})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAuth_RejectsRefreshTokenAndUnknownScheme(t *testing.T) {
	jwt := helpers.NewJWTManager("a", "r", time.Minute, time.Hour)
	refresh, _, err := jwt.GenerateRefreshToken(42, "sid")
	require.NoError(t, err)
	r := newAuthEngine(jwt)

	for _, header := range []string{"Bearer " + refresh, "Basic dXNlcjpwYXNz"} {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", header)
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		assert.Equal(t, http.StatusUnauthorized, w.Code, header)
	}
}

func TestRateLimit_PassesThroughWithoutRedis(t *testing.T) {
	r := gin.New()
	r.GET("/x", RateLimit(nil, 1, time.Minute, KeyByIPAndPath(), nil), func(c *gin.Context) { c.Status(http.StatusOK) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func ipEngine(trusted ...string) *gin.Engine {
	r := gin.New()
	r.Use(RealIP(trusted...))
	r.GET("/ip", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("real_ip")) })
	return r
}

func realIP(r *gin.Engine, remote string, headers map[string]string) string {
	req := httptest.NewRequest(http.MethodGet, "/ip", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w.Body.String()
}

func TestRealIP_HonorsForwardedHeadersFromPrivatePeer(t *testing.T) {
	r := ipEngine()

	assert.Equal(t, "203.0.113.9", realIP(r, "10.0.0.2:5000", map[string]string{"X-Forwarded-For": "203.0.113.9, 10.0.0.1"}))
	assert.Equal(t, "198.51.100.4", realIP(r, "127.0.0.1:5000", map[string]string{
		"CF-Connecting-IP": "198.51.100.4",
		"X-Forwarded-For":  "203.0.113.9",
	}))
	assert.Equal(t, "10.0.0.2", realIP(r, "10.0.0.2:5000", map[string]string{"X-Forwarded-For": "garbage"}))
}

func TestRealIP_IgnoresForwardedHeadersFromUntrustedPeer(t *testing.T) {
	r := ipEngine()
	assert.Equal(t, "192.0.2.1", realIP(r, "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "10.0.0.9"}))

	trusted := ipEngine("192.0.2.0/24", "198.51.100.7")
	assert.Equal(t, "203.0.113.9", realIP(trusted, "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "203.0.113.9"}))
	assert.Equal(t, "203.0.113.9", realIP(trusted, "198.51.100.7:80", map[string]string{"X-Forwarded-For": "203.0.113.9"}))
	assert.Equal(t, "10.0.0.2", realIP(trusted, "10.0.0.2:5000", map[string]string{"X-Forwarded-For": "203.0.113.9"}))
}

func TestAllowPrivateIP(t *testing.T) {
	r := gin.New()
	r.Use(RealIP())
	r.GET("/ip", func(c *gin.Context) {
		if AllowPrivateIP()(c) {
			c.String(http.StatusOK, "bypass")
			return
		}
		c.String(http.StatusOK, "limited")
	})

	assert.Equal(t, "bypass", realIP(r, "127.0.0.1:5000", nil))
	assert.Equal(t, "bypass", realIP(r, "172.16.4.4:5000", nil))
	assert.Equal(t, "limited", realIP(r, "192.0.2.1:1234", map[string]string{"X-Forwarded-For": "10.0.0.1"}))
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	r := gin.New()
	r.Use(RequestID())
	r.GET("/id", func(c *gin.Context) { c.String(http.StatusOK, c.GetString("request_id")) })

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/id", nil))
	require.NotEmpty(t, w.Body.String())
	assert.Equal(t, w.Body.String(), w.Header().Get(HeaderRequestID))

	req := httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(HeaderRequestID, "edge-7f3a.1")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, "edge-7f3a.1", w.Body.String())
	assert.Equal(t, "edge-7f3a.1", w.Header().Get(HeaderRequestID))

	req = httptest.NewRequest(http.MethodGet, "/id", nil)
	req.Header.Set(HeaderRequestID, "not a valid id!")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.NotEqual(t, "not a valid id!", w.Body.String())
	assert.Len(t, w.Body.String(), 36)
}

func TestMetrics_CountsByRoute(t *testing.T) {
	r := gin.New()
	r.Use(Metrics())
	r.GET("/items/:id", func(c *gin.Context) { c.Status(http.StatusTeapot) })

	before := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "418"))
	for _, p := range []string{"/items/1", "/items/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, p, nil))
	}
	after := testutil.ToFloat64(httpRequestsTotal.WithLabelValues(http.MethodGet, "/items/:id", "418"))
	assert.Equal(t, float64(2), after-before)
}
