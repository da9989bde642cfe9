package router

import (
	"bytes"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"

	"github.com/oksasatya/go-recipe-api/config"
	"github.com/oksasatya/go-recipe-api/internal/container"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/memory"
	"github.com/oksasatya/go-recipe-api/internal/infrastructure/storage"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
	"github.com/oksasatya/go-recipe-api/pkg/validation"
)

type testServer struct {
	t      *testing.T
	engine *gin.Engine
	repos  memory.Repositories
	images *storage.LocalStore
}

// newTestServer builds the full router over the in-memory store, without Redis,
// Elasticsearch or RabbitMQ.
func newTestServer(t *testing.T) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	validation.Init()

	logger := logrus.New()
	logger.SetOutput(io.Discard)

	cfg := &config.Config{
		CookieDomain:        "localhost",
		MediaURL:            "/media",
		MaxUploadBytes:      1 << 20,
		ESRecipesIndex:      "recipes",
		DebugMetricsEnabled: true,
		BcryptCost:          4,
	}
	repos := memory.NewRepositories()
	images, err := storage.NewLocalStore(t.TempDir(), cfg.MediaURL)
	require.NoError(t, err)

	container.SetConfig(cfg)
	container.SetLogger(logger)
	container.SetRedis(nil)
	container.SetES(nil)
	container.SetRabbitPub(nil)
	container.SetJWT(helpers.NewJWTManager("test-access", "test-refresh", time.Hour, 24*time.Hour))
	container.SetRepositories(container.Repositories{
		Users:       repos.Users,
		Recipes:     repos.Recipes,
		Tags:        repos.Tags,
		Ingredients: repos.Ingredients,
	})
	container.SetImageStore(images)

	engine := gin.New()
	engine.Use(middleware.RequestID(), middleware.RealIP())
	reg := NewRegistry(engine)
	InitModules(reg)
	reg.RegisterAll()

	return &testServer{t: t, engine: engine, repos: repos, images: images}
}

type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   json.RawMessage `json:"error"`
}

type recipeBody struct {
	ID          int64       `json:"id"`
	Title       string      `json:"title"`
	TimeMinutes int         `json:"time_minutes"`
	Price       string      `json:"price"`
	Link        string      `json:"link"`
	Description string      `json:"description"`
	Image       *string     `json:"image"`
	Tags        []namedBody `json:"tags"`
	Ingredients []namedBody `json:"ingredients"`
}

type namedBody struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (s *testServer) do(method, path, token string, body any) *httptest.ResponseRecorder {
	s.t.Helper()
	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(s.t, err)
		rdr = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, rdr)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *testServer) upload(path, token string, data []byte) *httptest.ResponseRecorder {
	s.t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("image", "upload.bin")
	require.NoError(s.t, err)
	_, err = part.Write(data)
	require.NoError(s.t, err)
	require.NoError(s.t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	require.NotNil(t, env.Data, "envelope has no data key: %s", w.Body.String())
	var out T
	require.NoError(t, json.Unmarshal(env.Data, &out), w.Body.String())
	return out
}

func envelopeOf(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return env
}

func errorsOf(t *testing.T, w *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	env := envelopeOf(t, w)
	var out map[string]string
	require.NoError(t, json.Unmarshal(env.Error, &out), w.Body.String())
	return out
}

// signup registers a user and returns an access token for it.
func (s *testServer) signup(email string) string {
	s.t.Helper()
	w := s.do(http.MethodPost, "/api/user/create", "", map[string]string{
		"email": email, "password": "testpass123", "name": "Test User",
	})
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	w = s.do(http.MethodPost, "/api/user/token", "", map[string]string{
		"email": email, "password": "testpass123",
	})
	require.Equal(s.t, http.StatusOK, w.Code, w.Body.String())
	return decode[struct {
		Token string `json:"token"`
	}](s.t, w).Token
}

func (s *testServer) createRecipe(token string, body map[string]any) recipeBody {
	s.t.Helper()
	payload := map[string]any{"title": "Sample recipe", "time_minutes": 22, "price": "5.25"}
	for k, v := range body {
		payload[k] = v
	}
	w := s.do(http.MethodPost, "/api/recipe/recipes", token, payload)
	require.Equal(s.t, http.StatusCreated, w.Code, w.Body.String())
	return decode[recipeBody](s.t, w)
}

func pngImage(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 10, 10))))
	return buf.Bytes()
}

func tagNamesOf(tags []namedBody) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		out = append(out, t.Name)
	}
	return out
}
