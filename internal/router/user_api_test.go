package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUser_Success(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "test@example.com", "password": "testpass123", "name": "Test Name",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	assert.NotContains(t, w.Body.String(), "password")
	assert.NotContains(t, w.Body.String(), "testpass123")

	u, err := s.repos.Users.GetByEmail(context.Background(), "test@example.com")
	require.NoError(t, err)
	assert.NotEqual(t, "testpass123", u.Password)
}

func TestCreateUser_Validation(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "test@example.com", "password": "pw", "name": "Test",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorsOf(t, w), "password")

	_, err := s.repos.Users.GetByEmail(context.Background(), "test@example.com")
	assert.Error(t, err)

	s.signup("dup@example.com")
	w = s.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "dup@example.com", "password": "testpass123", "name": "Again",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorsOf(t, w), "email")
}

func TestToken_InvalidCredentials(t *testing.T) {
	s := newTestServer(t)
	s.signup("test@example.com")

	cases := []map[string]string{
		{"email": "test@example.com", "password": "wrongpass"},
		{"email": "nobody@example.com", "password": "testpass123"},
		{"email": "test@example.com", "password": ""},
	}
	for _, body := range cases {
		w := s.do(http.MethodPost, "/api/user/token", "", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
		assert.NotContains(t, w.Body.String(), `"token"`, body)
	}

	w := s.do(http.MethodPost, "/api/user/token", "", cases[0])
	assert.Contains(t, errorsOf(t, w), "non_field_errors")
}

func TestToken_SetsCookies(t *testing.T) {
	s := newTestServer(t)
	s.signup("test@example.com")

	w := s.do(http.MethodPost, "/api/user/token", "", map[string]string{
		"email": "test@example.com", "password": "testpass123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	names := map[string]bool{}
	for _, c := range w.Result().Cookies() {
		names[c.Name] = true
	}
	assert.True(t, names["access_token"])
	assert.True(t, names["refresh_token"])
}

func TestRefresh_WithBodyToken(t *testing.T) {
	s := newTestServer(t)
	s.signup("test@example.com")

	w := s.do(http.MethodPost, "/api/user/token", "", map[string]string{
		"email": "test@example.com", "password": "testpass123",
	})
	require.Equal(t, http.StatusOK, w.Code)
	pair := decode[struct {
		RefreshToken string `json:"refresh_token"`
	}](t, w)

	w = s.do(http.MethodPost, "/api/user/refresh", "", map[string]string{"refresh_token": pair.RefreshToken})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/user/refresh", "", map[string]string{"refresh_token": "garbage"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_RequiresAuth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/api/user/me", "", nil)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe_UpdateKeepsPasswordUnlessSupplied(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("test@example.com")

	w := s.do(http.MethodGet, "/api/user/me", token, nil)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode[struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}](t, w)
	assert.Equal(t, "test@example.com", me.Email)

	w = s.do(http.MethodPatch, "/api/user/me", token, map[string]string{"name": "Updated"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Updated", decode[struct {
		Name string `json:"name"`
	}](t, w).Name)

	w = s.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "test@example.com", "password": "testpass123"})
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(http.MethodPatch, "/api/user/me", token, map[string]string{"password": "newpass456"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "test@example.com", "password": "testpass123"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = s.do(http.MethodPost, "/api/user/token", "", map[string]string{"email": "test@example.com", "password": "newpass456"})
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestMe_PutRequiresEmailAndName(t *testing.T) {
	s := newTestServer(t)
	token := s.signup("test@example.com")

	w := s.do(http.MethodPut, "/api/user/me", token, map[string]string{"name": "Only name"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, errorsOf(t, w), "email")

	w = s.do(http.MethodPut, "/api/user/me", token, map[string]string{"name": "Both", "email": "new@example.com"})
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestCreateUser_PasswordOverBcryptLimit(t *testing.T) {
	s := newTestServer(t)

	w := s.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": "long@example.com", "password": strings.Repeat("p", 73), "name": "Long",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
	assert.Contains(t, errorsOf(t, w), "password")
}

func TestUnknownRoute_ReturnsEnvelope(t *testing.T) {
	s := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/api/nope", nil)
	req.Header.Set("X-Request-ID", "trace-123")
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "trace-123", w.Header().Get("X-Request-ID"))
	assert.JSONEq(t, `{"path":"/api/nope"}`, string(envelopeOf(t, w).Error))
	assert.Contains(t, w.Body.String(), `"request_id":"trace-123"`)
	assert.Contains(t, w.Body.String(), `"success":false`)
}
