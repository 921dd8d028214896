package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/terenamutolder-oss/pro-node/internal/repositories"
)

// UserHandler serves user lookups.
type UserHandler struct {
	userRepo repositories.UserRepository
}

// NewUserHandler builds a UserHandler.
func NewUserHandler(userRepo repositories.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// GetUser handles GET /api/users/:id. The credential hash never leaves the
// service.
func (h *UserHandler) GetUser(c *gin.Context) {
	user, err := h.userRepo.GetUser(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to load user"})
		return
	}

	c.JSON(http.StatusOK, user.Public())
}
