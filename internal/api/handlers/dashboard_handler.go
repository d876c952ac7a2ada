package handlers

import (
	"net/http"

	"gaming-ops-portal/internal/dashboard"

	"github.com/gin-gonic/gin"
)

type DashboardHandler struct {
	*Portal
}

func (h *DashboardHandler) Home(c *gin.Context) {
	c.Redirect(http.StatusSeeOther, BoardPath(HomeBoard(mustViewer(c))))
}

// Show renders one board. Routes gate the roles; the check here covers
// boards reached by name.
func (h *DashboardHandler) Show(board string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := mustViewer(c)
		b, ok := dashboard.Lookup(board)
		if !ok || !b.Allowed(v.Role) {
			c.String(http.StatusForbidden, "You do not have permission to access this page.")
			return
		}
		h.renderBoard(c, http.StatusOK, board, v, takeFlashes(c))
	}
}

// Board returns a board's sections as JSON.
func (h *DashboardHandler) Board(c *gin.Context) {
	v := mustViewer(c)
	b, ok := dashboard.Lookup(c.Param("board"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown board"})
		return
	}
	if !b.Allowed(v.Role) {
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
		return
	}
	bv, err := h.Feed.View(c.Request.Context(), b, v, viewOptions(c))
	if err != nil {
		h.Log.Error().Err(err).Str("board", b.Name).Msg("load board")
		c.JSON(http.StatusInternalServerError, gin.H{"error": msgDashboardUnavailable})
		return
	}
	c.JSON(http.StatusOK, bv)
}

// Announcements returns the viewer's feed items.
func (h *DashboardHandler) Announcements(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"items": h.Announcer.Build(c.Request.Context(), mustViewer(c))})
}
