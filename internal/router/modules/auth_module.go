package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/priyasp2804/Textile-Defect-Detection/internal/interface/http"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/interface/middleware"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/helpers"
)

// AuthModule wires authentication routes.
// Public: POST /auth/signup, POST /auth/login
// Protected: GET /auth/profile, PUT /auth/profile
type AuthModule struct {
	Handler *handlers.AuthHandler
	JWT     *helpers.JWTManager
}

func NewAuthModule(h *handlers.AuthHandler, jwt *helpers.JWTManager) *AuthModule {
	return &AuthModule{Handler: h, JWT: jwt}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	rg.POST("/auth/signup", m.Handler.Signup)
	rg.POST("/auth/login", m.Handler.Login)

	auth := rg.Group("/auth")
	auth.Use(middleware.Auth(m.JWT))
	{
		auth.GET("/profile", m.Handler.GetProfile)
		auth.PUT("/profile", m.Handler.UpdateProfile)
	}
}
