package handlers

import (
	"encoding/base64"
	"encoding/json"
	"net/http"

	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
)

const flashCookie = "portal_flash"

// setFlashes stores banners for the next page load, so a POST can redirect.
func setFlashes(c *gin.Context, flashes ...view.Flash) {
	raw, err := json.Marshal(flashes)
	if err != nil {
		return
	}
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(flashCookie, base64.RawURLEncoding.EncodeToString(raw), 60, "/", "", c.Request.TLS != nil, true)
}

// takeFlashes reads and clears the pending banners.
func takeFlashes(c *gin.Context) []view.Flash {
	v, err := c.Cookie(flashCookie)
	if err != nil || v == "" {
		return nil
	}
	c.SetCookie(flashCookie, "", -1, "/", "", c.Request.TLS != nil, true)
	raw, err := base64.RawURLEncoding.DecodeString(v)
	if err != nil {
		return nil
	}
	var flashes []view.Flash
	if err := json.Unmarshal(raw, &flashes); err != nil {
		return nil
	}
	return flashes
}

// redirectWithFlashes is the post/redirect/get step after a form.
func redirectWithFlashes(c *gin.Context, to string, flashes ...view.Flash) {
	setFlashes(c, flashes...)
	c.Redirect(http.StatusSeeOther, to)
}
