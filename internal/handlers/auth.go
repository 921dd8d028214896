package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terenamutolder-oss/pro-node/internal/auth"
	"github.com/terenamutolder-oss/pro-node/internal/repositories"
	"github.com/terenamutolder-oss/pro-node/internal/telemetry"
)

// AuthHandler manages signup and login.
type AuthHandler struct {
	userRepo repositories.UserRepository
	audit    *telemetry.AuditEmitter
}

// NewAuthHandler builds an AuthHandler.
func NewAuthHandler(userRepo repositories.UserRepository, audit *telemetry.AuditEmitter) *AuthHandler {
	return &AuthHandler{userRepo: userRepo, audit: audit}
}

type credentialsRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Signup handles POST /api/auth/signup.
func (h *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	user, err := h.userRepo.CreateUser(c.Request.Context(), req.Username, hash)
	if err != nil {
		if errors.Is(err, repositories.ErrUsernameTaken) {
			c.JSON(http.StatusConflict, gin.H{"error": "Passcode or username already used"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "could not create user"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "user_signup", "user created", requestIDFromContext(c), user.ID)
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}

// Login handles POST /api/auth/login.
func (h *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Missing fields"})
		return
	}

	user, err := h.userRepo.FindByUsername(c.Request.Context(), req.Username)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "login failed"})
		return
	}

	if !auth.CheckPassword(req.Password, user.PasswordHash) {
		h.audit.Emit(c.Request.Context(), "WARN", "user_login", "bad credentials", requestIDFromContext(c), user.ID)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	h.audit.Emit(c.Request.Context(), "INFO", "user_login", "login ok", requestIDFromContext(c), user.ID)
	c.JSON(http.StatusOK, gin.H{"user": user.Public()})
}
