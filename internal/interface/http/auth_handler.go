package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/priyasp2804/Textile-Defect-Detection/internal/application"
	"github.com/priyasp2804/Textile-Defect-Detection/internal/interface/middleware"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/response"
	"github.com/priyasp2804/Textile-Defect-Detection/pkg/validation"
)

type AuthHandler struct {
	Svc    *application.UserService
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.UserService, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type signupRequest struct {
	Name            string `json:"name" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type updateProfileRequest struct {
	Name     string `json:"name"`
	Password string `json:"password"`
}

// Signup POST /auth/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var req signupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	id, err := h.Svc.Signup(c.Request.Context(), req.Name, req.Email, req.Password, req.ConfirmPassword)
	if err != nil {
		switch {
		case errors.Is(err, application.ErrPasswordMismatch), errors.Is(err, application.ErrEmailTaken):
			resp := response.Error[any](c, http.StatusBadRequest, err.Error(), nil)
			c.JSON(resp.Status, resp)
		default:
			h.Logger.WithError(err).Error("signup failed")
			resp := response.Error[any](c, http.StatusInternalServerError, "signup failed", nil)
			c.JSON(resp.Status, resp)
		}
		return
	}
	resp := response.Success(c, http.StatusCreated, gin.H{"user_id": id}, "user created")
	c.JSON(resp.Status, resp)
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	tok, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		resp := response.Error[any](c, http.StatusUnauthorized, "invalid credentials", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{
		"access_token": tok.AccessToken,
		"token_type":   "bearer",
		"expires_in":   tok.ExpiresIn,
	}, "login successful")
	c.JSON(resp.Status, resp)
}

// GetProfile GET /auth/profile (bearer token)
func (h *AuthHandler) GetProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	u, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		resp := response.Error[any](c, http.StatusNotFound, "user not found", nil)
		c.JSON(resp.Status, resp)
		return
	}
	resp := response.Success(c, http.StatusOK, gin.H{"profile": u}, "profile")
	c.JSON(resp.Status, resp)
}

// UpdateProfile PUT /auth/profile (bearer token)
func (h *AuthHandler) UpdateProfile(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp := response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		c.JSON(resp.Status, resp)
		return
	}
	err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{Name: req.Name, Password: req.Password})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrNoUpdateFields):
			resp := response.Error[any](c, http.StatusBadRequest, "no fields to update", nil)
			c.JSON(resp.Status, resp)
		case errors.Is(err, application.ErrUserNotFound):
			resp := response.Error[any](c, http.StatusNotFound, "no changes made", nil)
			c.JSON(resp.Status, resp)
		default:
			h.Logger.WithError(err).WithField("user_id", uid).Error("profile update failed")
			resp := response.Error[any](c, http.StatusInternalServerError, "profile update failed", nil)
			c.JSON(resp.Status, resp)
		}
		return
	}
	resp := response.Success[any](c, http.StatusOK, gin.H{"message": "profile updated"}, "profile updated")
	c.JSON(resp.Status, resp)
}
