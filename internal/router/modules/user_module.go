package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-recipe-api/internal/container"
	handlers "github.com/oksasatya/go-recipe-api/internal/interface/http"
	"github.com/oksasatya/go-recipe-api/internal/interface/middleware"
	"github.com/oksasatya/go-recipe-api/pkg/helpers"
)

// UserModule wires account handlers under /user.
// Public: POST /user/create, POST /user/token, POST /user/refresh
// Protected: POST /user/logout, GET|PUT|PATCH /user/me
type UserModule struct {
	Handler *handlers.UserHandler
	JWT     *helpers.JWTManager
}

func NewUserModule(h *handlers.UserHandler, jwt *helpers.JWTManager) *UserModule {
	return &UserModule{Handler: h, JWT: jwt}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	rdb := container.GetRedis()
	g := rg.Group("/user")

	// Public with rate limiting
	createLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), middleware.AllowPrivateIP())
	tokenLimiter := middleware.RateLimit(rdb, 10, time.Minute, middleware.KeyByIPAndPath(), nil) // 10 req/min per IP
	refreshLimiter := middleware.RateLimit(rdb, 60, time.Minute, middleware.KeyByIPAndPath(), nil)

	g.POST("/create", createLimiter, m.Handler.Create)
	g.POST("/token", tokenLimiter, m.Handler.Token)
	g.POST("/refresh", refreshLimiter, m.Handler.Refresh)

	// Protected
	auth := g.Group("")
	auth.Use(middleware.Auth(rdb, m.JWT))
	auth.Use(middleware.RateLimit(rdb, 120, time.Minute, middleware.KeyByUserID(), nil))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.Me)
		auth.PUT("/me", m.Handler.UpdateMe)
		auth.PATCH("/me", m.Handler.UpdateMe)
	}
}
