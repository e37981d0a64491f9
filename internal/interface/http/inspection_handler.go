package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/application"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/response"
)

type InspectionHandler struct {
	Svc    *application.InspectionService
	Logger *logrus.Logger
}

func NewInspectionHandler(svc *application.InspectionService, logger *logrus.Logger) *InspectionHandler {
	return &InspectionHandler{Svc: svc, Logger: logger}
}

// Analyze POST /inspection/analyze
// Accepts a multipart image, runs inference and returns the synthesized
// quality report without persisting anything.
func (h *InspectionHandler) Analyze(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "file is required", nil)
		c.JSON(resp.Status, resp)
		return
	}
	location := c.Query("location")
	if location == "" {
		location = c.PostForm("location")
	}

	f, err := fh.Open()
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "cannot read uploaded file", nil)
		c.JSON(resp.Status, resp)
		return
	}
	defer func() { _ = f.Close() }()

	res, err := h.Svc.AnalyzeUpload(c.Request.Context(), f, fh.Filename, location)
	if err != nil {
		h.Logger.WithError(err).Error("analysis failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "inference failed", err.Error())
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, res, "analysis complete")
	c.JSON(resp.Status, resp)
}
