package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/priyasp2804/Textile-Defect-Detection/internal/interface/http"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/interface/middleware"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/helpers"
)

// ReportModule wires the owner-scoped report CRUD. Every route requires a
// bearer session token.
type ReportModule struct {
	Handler *handlers.ReportHandler
	JWT     *helpers.JWTManager
}

func NewReportModule(h *handlers.ReportHandler, jwt *helpers.JWTManager) *ReportModule {
	return &ReportModule{Handler: h, JWT: jwt}
}

func (m *ReportModule) Register(rg *gin.RouterGroup) {
	report := rg.Group("/report")
	report.Use(middleware.Auth(m.JWT))
	{
		report.POST("/upload", m.Handler.Upload)
		report.GET("/", m.Handler.List)
		report.PATCH("/:id", m.Handler.Update)
		report.DELETE("/:id", m.Handler.Delete)
	}
}
