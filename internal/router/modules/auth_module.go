package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/vrlink/vrlink-api/internal/interface/http"
	"github.com/vrlink/vrlink-api/internal/interface/middleware"
	"github.com/vrlink/vrlink-api/pkg/helpers"
)

// AuthModule wires the auth handlers and bearer middleware into routes.
// Public: register, login, refresh. Everything else requires a valid access
// token.
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/register", m.Handler.Register)
	rg.POST("/auth/login", m.Handler.Login)
	rg.POST("/auth/refresh", m.Handler.Refresh)

	auth := rg.Group("/auth")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.POST("/logout", m.Handler.Logout)
		auth.GET("/me", m.Handler.GetMe)
		auth.PATCH("/me", m.Handler.UpdateMe)
		auth.DELETE("/me", m.Handler.DeleteMe)
		auth.GET("/link-code", m.Handler.GetLinkCode)
	}
}
