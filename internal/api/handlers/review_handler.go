package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"gaming-ops-portal/internal/dashboard"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/submission"
	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
)

type ReviewRequest struct {
	Status  string `form:"status" json:"status" binding:"required"`
	Remarks string `form:"remarks" json:"remarks" binding:"max=1000"`
}

// ReviewHandler moves pending records along the approval workflow.
type ReviewHandler struct {
	*Portal
	Submissions *submission.Service
}

// Review handles POST <board>/:collection/:id/status.
func (h *ReviewHandler) Review(board string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v := mustViewer(c)
		collection, id := c.Param("collection"), c.Param("id")
		back := BoardPath(board)

		var req ReviewRequest
		if err := c.ShouldBind(&req); err != nil {
			redirectWithFlashes(c, back, view.Flash{Kind: view.FlashError, Message: "Choose a status to apply."})
			return
		}
		status := models.Status(req.Status)
		if !allowedAction(dashboard.ReviewActions(board, collection), status) {
			c.String(http.StatusForbidden, "You cannot set this status here.")
			return
		}

		err := h.Submissions.Review(c.Request.Context(), collection, id, status, v.Name, strings.TrimSpace(req.Remarks))
		switch {
		case errors.Is(err, database.ErrNotFound):
			redirectWithFlashes(c, back, view.Flash{Kind: view.FlashError, Message: "That record no longer exists."})
		case err != nil:
			h.Log.Error().Err(err).Str("collection", collection).Str("id", id).Msg("review record")
			redirectWithFlashes(c, back, view.Flash{Kind: view.FlashError, Message: "The status could not be updated. Please try again."})
		default:
			redirectWithFlashes(c, back, view.Flash{Kind: view.FlashSuccess, Message: fmt.Sprintf("Marked as %s.", status)})
		}
	}
}

func allowedAction(actions []string, status models.Status) bool {
	for _, a := range actions {
		if a == string(status) {
			return true
		}
	}
	return false
}
