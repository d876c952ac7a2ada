package handlers

import (
	"errors"
	"net/http"
	"strings"

	"gaming-ops-portal/internal/api/middleware"
	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const msgInvalidLogin = "Invalid email or password."

type AuthHandler struct {
	Store    database.Store
	Signer   *auth.Signer
	Sessions *auth.Sessions
	Renderer *view.Renderer
	Log      zerolog.Logger
}

type LoginRequest struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required"`
}

type loginView struct {
	Email string
	Error string
}

func (h *AuthHandler) renderLogin(c *gin.Context, status int, lv loginView) {
	content, err := h.Renderer.Fragment("login", lv)
	if err != nil {
		h.Log.Error().Err(err).Msg("render login")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	page, err := h.Renderer.PageBytes(view.Page{Title: "Sign in", Flashes: takeFlashes(c), Content: content})
	if err != nil {
		h.Log.Error().Err(err).Msg("render login")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", page)
}

func (h *AuthHandler) LoginPage(c *gin.Context) {
	if v, ok := middleware.CurrentViewer(c); ok {
		c.Redirect(http.StatusSeeOther, BoardPath(HomeBoard(v)))
		return
	}
	h.renderLogin(c, http.StatusOK, loginView{})
}

// Login checks the credentials, sets the session cookie and sends the user
// to their board. JSON clients get the token back instead.
func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBind(&req); err != nil {
		h.loginFailed(c, http.StatusBadRequest, req.Email)
		return
	}

	user, err := h.authenticate(c, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			h.Log.Warn().Str("email", database.UserID(req.Email)).Msg("login rejected")
			h.loginFailed(c, http.StatusUnauthorized, req.Email)
			return
		}
		h.Log.Error().Err(err).Msg("login lookup")
		h.loginFailed(c, http.StatusInternalServerError, req.Email)
		return
	}

	token, err := h.Signer.Generate(user.ID, user.Email, user.Name, user.Role, user.Department)
	if err != nil {
		h.Log.Error().Err(err).Msg("sign token")
		h.loginFailed(c, http.StatusInternalServerError, req.Email)
		return
	}
	middleware.SetSession(c, token, int(h.Signer.TTL().Seconds()))
	h.Log.Info().Str("user", user.ID).Str("role", user.Role).Msg("login")

	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(http.StatusOK, gin.H{"token": token, "role": user.Role})
		return
	}
	v := view.Viewer{ID: user.ID, Role: user.Role}
	c.Redirect(http.StatusSeeOther, BoardPath(HomeBoard(v)))
}

func (h *AuthHandler) authenticate(c *gin.Context, email, password string) (models.User, error) {
	var user models.User
	err := h.Store.Get(c.Request.Context(), models.CollectionUsers, database.UserID(email), &user)
	if errors.Is(err, database.ErrNotFound) {
		return user, auth.ErrInvalidCredentials
	}
	if err != nil {
		return user, err
	}
	if user.Status == "disabled" || !auth.CheckPasswordHash(password, user.Password) {
		return user, auth.ErrInvalidCredentials
	}
	return user, nil
}

func (h *AuthHandler) loginFailed(c *gin.Context, status int, email string) {
	if strings.Contains(c.GetHeader("Accept"), "application/json") {
		c.JSON(status, gin.H{"error": msgInvalidLogin})
		return
	}
	msg := msgInvalidLogin
	if status == http.StatusInternalServerError {
		msg = "Sign-in is unavailable right now. Please try again."
	}
	h.renderLogin(c, status, loginView{Email: email, Error: msg})
}

// Logout cancels the user's dashboard listeners and clears the cookie.
func (h *AuthHandler) Logout(c *gin.Context) {
	if v, ok := middleware.CurrentViewer(c); ok {
		n := h.Sessions.Logout(v.ID)
		h.Log.Info().Str("user", v.ID).Int("listeners", n).Msg("logout")
	}
	middleware.ClearSession(c)
	c.Redirect(http.StatusSeeOther, "/login")
}
