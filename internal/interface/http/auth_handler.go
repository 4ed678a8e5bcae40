package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/vrlink/vrlink-api/internal/application"
	"github.com/vrlink/vrlink-api/internal/interface/middleware"
	"github.com/vrlink/vrlink-api/pkg/response"
	"github.com/vrlink/vrlink-api/pkg/validation"
)

// AuthHandler maps the auth HTTP surface onto the application service.
// Failures keep their messages generic on purpose: a 401 never says whether
// the email was unknown, the password wrong, or the token superseded.
type AuthHandler struct {
	Svc    *application.Service
	Logger *logrus.Logger
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger}
}

type registerRequest struct {
	Email       string  `json:"email" binding:"required,email"`
	Password    string  `json:"password" binding:"required,pwd"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=64"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token" binding:"required"`
}

type updateMeRequest struct {
	Email       *string `json:"email" binding:"omitempty,email"`
	Password    *string `json:"password" binding:"omitempty,pwd"`
	DisplayName *string `json:"display_name" binding:"omitempty,max=64"`
}

// Register POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	pub, err := h.Svc.Register(c.Request.Context(), req.Email, req.Password, req.DisplayName)
	if err != nil {
		if errors.Is(err, application.ErrEmailTaken) {
			response.Error(c, http.StatusBadRequest, "email already in use", nil)
			return
		}
		h.Logger.WithError(err).Error("register failed")
		response.Error(c, http.StatusInternalServerError, "registration failed", nil)
		return
	}
	response.Success(c, http.StatusCreated, pub, "registered")
}

// Login POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	pub, pair, err := h.Svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, application.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "invalid credentials", nil)
			return
		}
		h.Logger.WithError(err).Error("login failed")
		response.Error(c, http.StatusInternalServerError, "login failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"user":          pub,
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"expires_in":    pair.ExpiresIn,
	}, "login successful")
}

// Refresh POST /api/auth/refresh
func (h *AuthHandler) Refresh(c *gin.Context) {
	var req refreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	pair, err := h.Svc.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, application.ErrInvalidToken) {
			response.Error(c, http.StatusUnauthorized, "invalid refresh token", nil)
			return
		}
		h.Logger.WithError(err).Error("refresh failed")
		response.Error(c, http.StatusInternalServerError, "refresh failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
		"token_type":    pair.TokenType,
		"expires_in":    pair.ExpiresIn,
	}, "token refreshed")
}

// Logout POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.Logout(c.Request.Context(), uid); err != nil && !errors.Is(err, application.ErrUserNotFound) {
		h.Logger.WithError(err).WithField("user_id", uid).Error("logout failed")
		response.Error(c, http.StatusInternalServerError, "logout failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true}, "logged out")
}

// GetMe GET /api/auth/me
func (h *AuthHandler) GetMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	pub, err := h.Svc.GetProfile(c.Request.Context(), uid)
	if err != nil {
		response.Error(c, http.StatusNotFound, "user not found", nil)
		return
	}
	response.Success(c, http.StatusOK, pub, "profile")
}

// UpdateMe PATCH /api/auth/me
func (h *AuthHandler) UpdateMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	var req updateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	pub, err := h.Svc.UpdateProfile(c.Request.Context(), uid, application.UpdateProfileInput{
		Email:       req.Email,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	if err != nil {
		switch {
		case errors.Is(err, application.ErrUserNotFound):
			response.Error(c, http.StatusNotFound, "user not found", nil)
		case errors.Is(err, application.ErrEmailTaken):
			response.Error(c, http.StatusBadRequest, "email already in use", nil)
		default:
			h.Logger.WithError(err).WithField("user_id", uid).Error("update profile failed")
			response.Error(c, http.StatusInternalServerError, "update failed", nil)
		}
		return
	}
	response.Success(c, http.StatusOK, pub, "profile updated")
}

// DeleteMe DELETE /api/auth/me
func (h *AuthHandler) DeleteMe(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	if err := h.Svc.DeleteProfile(c.Request.Context(), uid); err != nil {
		if errors.Is(err, application.ErrUserNotFound) {
			response.Error(c, http.StatusNotFound, "user not found", nil)
			return
		}
		h.Logger.WithError(err).WithField("user_id", uid).Error("delete profile failed")
		response.Error(c, http.StatusInternalServerError, "delete failed", nil)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"success": true}, "account deleted")
}

// GetLinkCode GET /api/auth/link-code
func (h *AuthHandler) GetLinkCode(c *gin.Context) {
	uid := c.GetString(middleware.CtxUserIDKey)
	lc := h.Svc.GetLinkCode(uid)
	response.Success(c, http.StatusOK, gin.H{
		"code":       lc.Code,
		"expires_at": lc.ExpiresAt.Format(time.RFC3339),
		"qr_payload": lc.Code,
	}, "link code")
}
