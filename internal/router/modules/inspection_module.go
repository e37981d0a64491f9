package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/priyasp2804/Textile-Defect-Detection/internal/interface/http"
)

// InspectionModule wires the stateless analyze endpoint. It persists nothing
// and requires no session.
type InspectionModule struct {
	Handler *handlers.InspectionHandler
}

func NewInspectionModule(h *handlers.InspectionHandler) *InspectionModule {
	return &InspectionModule{Handler: h}
}

func (m *InspectionModule) Register(rg *gin.RouterGroup) {
	rg.POST("/inspection/analyze", m.Handler.Analyze)
}
