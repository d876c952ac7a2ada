package handlers

import (
	"errors"
	"net/http"
	"time"

	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// UserHandler is the admin's account management API.
type UserHandler struct {
	Store    database.Store
	Sessions *auth.Sessions
	Log      zerolog.Logger
}

type CreateUserRequest struct {
	Email      string `json:"email" binding:"required,email"`
	Name       string `json:"name" binding:"required"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required,oneof=employee hr admin"`
	Department string `json:"department" binding:"required"`
	Position   string `json:"position"`
}

type UserStatusRequest struct {
	Status string `json:"status" binding:"required,oneof=active disabled"`
}

// CreateUser adds an account. The email is the document id.
func (h *UserHandler) CreateUser(c *gin.Context) {
	var req CreateUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	ctx := c.Request.Context()
	id := database.UserID(req.Email)

	var existing models.User
	err := h.Store.Get(ctx, models.CollectionUsers, id, &existing)
	if err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "A user with this email already exists"})
		return
	}
	if !errors.Is(err, database.ErrNotFound) {
		h.Log.Error().Err(err).Msg("lookup user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database error checking for user"})
		return
	}

	hashed, err := auth.HashPassword(req.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}
	user := models.User{
		Email:      id,
		Name:       req.Name,
		Password:   hashed,
		Role:       req.Role,
		Department: req.Department,
		Position:   req.Position,
		Status:     "active",
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Store.Set(ctx, models.CollectionUsers, id, user); err != nil {
		h.Log.Error().Err(err).Msg("create user")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create user"})
		return
	}
	user.ID = id
	h.Log.Info().Str("user", id).Str("role", user.Role).Str("by", mustViewer(c).ID).Msg("user created")
	c.JSON(http.StatusCreated, user)
}

// ListUsers returns every account, optionally filtered by ?role=.
func (h *UserHandler) ListUsers(c *gin.Context) {
	q := database.Query{}.Order("email", false)
	if role := c.Query("role"); role != "" {
		q = q.Where("role", role)
	}
	var users []models.User
	if err := h.Store.Find(c.Request.Context(), models.CollectionUsers, q, &users); err != nil {
		h.Log.Error().Err(err).Msg("list users")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve users"})
		return
	}
	if users == nil {
		users = []models.User{}
	}
	c.JSON(http.StatusOK, users)
}

// SetUserStatus enables or disables an account. Disabling also stops the
// user's live dashboards.
func (h *UserHandler) SetUserStatus(c *gin.Context) {
	var req UserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	id := c.Param("id")
	err := h.Store.Update(c.Request.Context(), models.CollectionUsers, id, map[string]any{"status": req.Status})
	if errors.Is(err, database.ErrNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
		return
	}
	if err != nil {
		h.Log.Error().Err(err).Str("user", id).Msg("update user status")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update user"})
		return
	}
	if req.Status == "disabled" {
		h.Sessions.Logout(id)
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "status": req.Status})
}
