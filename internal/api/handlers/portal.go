// Package handlers serves the portal's pages, forms and JSON endpoints.
package handlers

import (
	"context"
	"net/http"
	"strings"

	"gaming-ops-portal/internal/announcement"
	"gaming-ops-portal/internal/api/middleware"
	"gaming-ops-portal/internal/dashboard"
	"gaming-ops-portal/internal/database"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

const (
	msgDashboardUnavailable = "The dashboard could not be loaded. Please try again."
	msgModalUnavailable     = "This window could not be opened. Please reload the page."
)

// Portal holds what every page handler needs to draw a board page.
type Portal struct {
	Store     database.Store
	Renderer  *view.Renderer
	Feed      *dashboard.Feed
	Announcer *announcement.Builder
	Log       zerolog.Logger
}

// HomeBoard is the board a viewer lands on.
func HomeBoard(v view.Viewer) string {
	switch v.Role {
	case models.RoleAdmin:
		return dashboard.BoardAdmin
	case models.RoleHR:
		return dashboard.BoardHR
	}
	return dashboard.BoardEmployee
}

// BoardPath is the URL of a board.
func BoardPath(board string) string {
	switch board {
	case dashboard.BoardAdmin:
		return "/admin"
	case dashboard.BoardHR:
		return "/hr"
	}
	return "/dashboard"
}

// pageBytes renders a board inside the layout. A board that cannot be
// loaded is replaced by an error banner.
func (p *Portal) pageBytes(ctx context.Context, board string, v view.Viewer, opts dashboard.ViewOptions, flashes []view.Flash) ([]byte, error) {
	b, ok := dashboard.Lookup(board)
	if !ok {
		b, _ = dashboard.Lookup(dashboard.BoardEmployee)
	}
	content, err := p.Feed.Render(ctx, b, v, opts)
	if err != nil {
		p.Log.Error().Err(err).Str("board", b.Name).Str("user", v.ID).Msg("render board")
		flashes = append(flashes, view.Flash{Kind: view.FlashError, Message: msgDashboardUnavailable})
		content = ""
	}

	page := view.Page{
		Title:   b.Title,
		Viewer:  &v,
		Flashes: flashes,
		Content: content,
	}
	if items := p.Announcer.Build(ctx, v); len(items) > 0 {
		page.Announcements = items
	}
	return p.Renderer.PageBytes(page)
}

// renderBoard writes a board page.
func (p *Portal) renderBoard(c *gin.Context, status int, board string, v view.Viewer, flashes []view.Flash) {
	page, err := p.pageBytes(c.Request.Context(), board, v, viewOptions(c), flashes)
	if err != nil {
		p.Log.Error().Err(err).Msg("render page")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	c.Data(status, "text/html; charset=utf-8", page)
}

// renderModal draws the board, mounts m over it and checks that the
// mounted modal exposes the wanted elements. If it does not, the bare board is shown with
// an error banner and nothing else happens.
func (p *Portal) renderModal(c *gin.Context, status int, board string, v view.Viewer, m view.Modal, want view.AttachSpec, flashes []view.Flash) {
	page, err := p.pageBytes(c.Request.Context(), board, v, dashboard.ViewOptions{}, flashes)
	if err != nil {
		p.Log.Error().Err(err).Msg("render page")
		c.String(http.StatusInternalServerError, "internal error")
		return
	}
	mounted, err := view.Mount(page, m)
	if err == nil {
		err = view.Attach(mounted, want)
	}
	if err != nil {
		p.Log.Error().Err(err).Str("modal", m.RootID).Msg("mount modal")
		p.renderBoard(c, http.StatusInternalServerError, board, v, append(flashes, view.Flash{Kind: view.FlashError, Message: msgModalUnavailable}))
		return
	}
	c.Data(status, "text/html; charset=utf-8", mounted)
}

// viewOptions reads the search box and the "section:column" dropdowns
// from the query string.
func viewOptions(c *gin.Context) dashboard.ViewOptions {
	opts := dashboard.ViewOptions{Search: c.Query("q")}
	for key, vals := range c.Request.URL.Query() {
		if !strings.Contains(key, ":") || len(vals) == 0 || vals[0] == "" {
			continue
		}
		if opts.Filters == nil {
			opts.Filters = make(map[string]string)
		}
		opts.Filters[key] = vals[0]
	}
	return opts
}

func mustViewer(c *gin.Context) view.Viewer {
	v, _ := middleware.CurrentViewer(c)
	return v
}
