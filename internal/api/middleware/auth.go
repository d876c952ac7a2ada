package middleware

import (
	"net/http"
	"strings"

	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/view"

	"github.com/gin-gonic/gin"
)

// CookieName is the session cookie carrying the JWT.
const CookieName = "portal_session"

const viewerKey = "viewer"

// Authenticate reads the JWT from the session cookie or an
// Authorization: Bearer header and stores the viewer in the context. It
// never rejects; RequireViewer does that.
func Authenticate(signer *auth.Signer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tok string
		if v, err := c.Cookie(CookieName); err == nil && v != "" {
			tok = v
		} else if h := c.GetHeader("Authorization"); strings.HasPrefix(h, "Bearer ") {
			tok = strings.TrimPrefix(h, "Bearer ")
		}
		if tok == "" {
			c.Next()
			return
		}

		claims, err := signer.Parse(tok)
		if err != nil {
			// Stop the browser from sending a broken or expired cookie.
			ClearSession(c)
			c.Next()
			return
		}
		c.Set(viewerKey, view.Viewer{
			ID:         claims.UserID,
			Name:       claims.Name,
			Email:      claims.Email,
			Role:       claims.Role,
			Department: claims.Department,
		})
		c.Next()
	}
}

// SetSession writes the session cookie.
func SetSession(c *gin.Context, token string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, token, maxAge, "/", "", c.Request.TLS != nil, true)
}

func ClearSession(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(CookieName, "", -1, "/", "", c.Request.TLS != nil, true)
}

// CurrentViewer returns the signed-in user, if any.
func CurrentViewer(c *gin.Context) (view.Viewer, bool) {
	v, ok := c.Get(viewerKey)
	if !ok {
		return view.Viewer{}, false
	}
	viewer, ok := v.(view.Viewer)
	return viewer, ok
}

func wantsJSON(c *gin.Context) bool {
	return strings.HasPrefix(c.Request.URL.Path, "/api/") ||
		strings.Contains(c.GetHeader("Accept"), "application/json")
}

// RequireViewer sends anonymous page requests to the login form and
// anonymous API calls a 401.
func RequireViewer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := CurrentViewer(c); ok {
			c.Next()
			return
		}
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
			return
		}
		c.Redirect(http.StatusSeeOther, "/login")
		c.Abort()
	}
}

// Authorize lets the request through only for the given roles.
func Authorize(allowedRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		v, ok := CurrentViewer(c)
		if ok {
			for _, role := range allowedRoles {
				if role == v.Role {
					c.Next()
					return
				}
			}
		}
		if wantsJSON(c) {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "You do not have permission to access this resource"})
			return
		}
		c.String(http.StatusForbidden, "You do not have permission to access this page.")
		c.Abort()
	}
}
