package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/application"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/entity"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/domain/repository"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/interface/middleware"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/response"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/validation"
)

type ReportHandler struct {
	Svc    *application.ReportService
	Logger *logrus.Logger
}

func NewReportHandler(svc *application.ReportService, logger *logrus.Logger) *ReportHandler {
	return &ReportHandler{Svc: svc, Logger: logger}
}

type updateReportRequest struct {
	Summary  *string `json:"summary"`
	Archived *bool   `json:"archived"`
}

// Upload POST /report/upload (bearer token, multipart image)
func (h *ReportHandler) Upload(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	fh, err := c.FormFile("image")
	if err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "image is required", nil)
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

	report, err := h.Svc.Upload(c.Request.Context(), uid, f, fh.Filename, location)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("report upload failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "inference failed", err.Error())
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"message": "Report saved", "report": report}, "report saved")
	c.JSON(resp.Status, resp)
}

// List GET /report/ (bearer token)
func (h *ReportHandler) List(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	reports, err := h.Svc.List(c.Request.Context(), uid)
	if err != nil {
		h.Logger.WithError(err).WithField("user_id", uid).Error("report list failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "could not list reports", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"reports": reports}, "reports")
	c.JSON(resp.Status, resp)
}

// Update PATCH /report/:id (bearer token)
func (h *ReportHandler) Update(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id := c.Param("id")

	var req updateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	report, err := h.Svc.Update(c.Request.Context(), uid, id, entity.ReportUpdate{Summary: req.Summary, Archived: req.Archived})
	if err != nil {
		h.writeReportError(c, uid, err)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"report": report}, "report updated")
	c.JSON(resp.Status, resp)
}

// Delete DELETE /report/:id (bearer token)
func (h *ReportHandler) Delete(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	id := c.Param("id")

	if err := h.Svc.Delete(c.Request.Context(), uid, id); err != nil {
		h.writeReportError(c, uid, err)
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"message": "Report deleted"}, "report deleted")
	c.JSON(resp.Status, resp)
}

func (h *ReportHandler) writeReportError(c *gin.Context, uid string, err error) {
	switch {
	case errors.Is(err, repository.ErrInvalidID):
		resp := response.Error[any](c, http.StatusBadRequest, "invalid report id", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrNoUpdateFields):
		resp := response.Error[any](c, http.StatusBadRequest, "no fields provided", nil)
		c.JSON(resp.Status, resp)
	case errors.Is(err, application.ErrReportNotFound):
		resp := response.Error[any](c, http.StatusNotFound, "report not found", nil)
		c.JSON(resp.Status, resp)
	default:
		h.Logger.WithError(err).WithField("user_id", uid).Error("report operation failed")
		resp := response.Error[any](c, http.StatusInternalServerError, "report operation failed", nil)
		c.JSON(resp.Status, resp)
	}
}
