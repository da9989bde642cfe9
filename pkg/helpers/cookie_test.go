package helpers

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func cookiesOf(w *httptest.ResponseRecorder) map[string]*http.Cookie {
	out := map[string]*http.Cookie{}
	for _, c := range w.Result().Cookies() {
		out[c.Name] = c
	}
	return out
}

func TestCookieManager_SetPair(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	m := NewCookieManager("example.com", false, ParseSameSite("strict"))
	m.SetPair(c, "acc", time.Now().Add(time.Hour), "ref", time.Now().Add(-time.Hour))

	got := cookiesOf(w)
	require.Contains(t, got, AccessCookie)
	require.Contains(t, got, RefreshCookie)
	assert.Equal(t, "acc", got[AccessCookie].Value)
	assert.True(t, got[AccessCookie].HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, got[AccessCookie].SameSite)
	assert.InDelta(t, 3600, got[AccessCookie].MaxAge, 2)
	assert.Equal(t, 0, got[RefreshCookie].MaxAge)
}

func TestCookieManager_SameSiteNoneForcesSecure(t *testing.T) {
	m := NewCookieManager("", false, ParseSameSite("None"))
	assert.True(t, m.Secure)
	assert.Equal(t, http.SameSiteLaxMode, NewCookieManager("", false, http.SameSiteDefaultMode).SameSite)
	assert.Equal(t, http.SameSiteLaxMode, ParseSameSite("bogus"))
}

func TestCookieManager_Clear(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	NewCookieManager("", false, http.SameSiteLaxMode).Clear(c)

	got := cookiesOf(w)
	assert.Equal(t, -1, got[AccessCookie].MaxAge)
	assert.Equal(t, -1, got[RefreshCookie].MaxAge)
}
