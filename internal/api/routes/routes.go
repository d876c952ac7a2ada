package routes

import (
	"net/http"
	"time"

	"gaming-ops-portal/internal/api/handlers"
	"gaming-ops-portal/internal/api/middleware"
	"gaming-ops-portal/internal/auth"
	"gaming-ops-portal/internal/dashboard"
	"gaming-ops-portal/internal/forms"
	"gaming-ops-portal/internal/models"
	"gaming-ops-portal/internal/relay"
	"gaming-ops-portal/internal/socket"
	"gaming-ops-portal/internal/submission"
	"gaming-ops-portal/internal/view"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// Deps are the components the router hands to its handlers.
type Deps struct {
	Portal      *handlers.Portal
	Signer      *auth.Signer
	Sessions    *auth.Sessions
	Submissions *submission.Service
	Relay       relay.Relay
	Hub         *socket.Hub
	CORSOrigins []string
	Log         zerolog.Logger
}

// SetupRouter wires every page, form and JSON route of the portal.
func SetupRouter(d Deps) *gin.Engine {
	router := gin.New()
	router.Use(middleware.Recoverer(d.Log), middleware.RequestLogger(d.Log))
	router.Use(middleware.Authenticate(d.Signer))
	router.StaticFS("/static", http.FS(view.Static()))

	authHandler := &handlers.AuthHandler{Store: d.Portal.Store, Signer: d.Signer, Sessions: d.Sessions, Renderer: d.Portal.Renderer, Log: d.Log}
	dashboardHandler := &handlers.DashboardHandler{Portal: d.Portal}
	formHandler := &handlers.FormHandler{Portal: d.Portal, Submissions: d.Submissions}
	reviewHandler := &handlers.ReviewHandler{Portal: d.Portal, Submissions: d.Submissions}
	recordHandler := &handlers.RecordHandler{Portal: d.Portal, Relay: d.Relay}
	wsHandler := &handlers.WebSocketHandler{Portal: d.Portal, Hub: d.Hub, Origins: d.CORSOrigins}
	userHandler := &handlers.UserHandler{Store: d.Portal.Store, Sessions: d.Sessions, Log: d.Log}

	router.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	router.GET("/login", authHandler.LoginPage)
	router.POST("/login", authHandler.Login)

	// === Signed-in pages ===
	pages := router.Group("/")
	pages.Use(middleware.RequireViewer())
	{
		pages.GET("/", dashboardHandler.Home)
		pages.POST("/logout", authHandler.Logout)
		pages.GET("/dashboard", dashboardHandler.Show(dashboard.BoardEmployee))
		pages.GET("/forms/:kind/new", formHandler.New)
		pages.GET("/records/:collection/:id", recordHandler.Show)
		pages.GET("/records/:collection/:id/media/:n", recordHandler.File)

		pages.POST("/travel-orders", formHandler.Submit(forms.KindTravelOrder))
		pages.POST("/accomplishments", formHandler.Submit(forms.KindAccomplishment))
		pages.POST("/device-changes", formHandler.Submit(forms.KindDeviceChange))
		pages.POST("/requests/leave", formHandler.Submit(forms.KindLeave))
		pages.POST("/requests/early-rest", formHandler.Submit(forms.KindEarlyRest))
		pages.POST("/requests/it-service", formHandler.Submit(forms.KindITService))
	}

	admin := router.Group("/admin")
	admin.Use(middleware.RequireViewer(), middleware.Authorize(models.RoleAdmin))
	{
		admin.GET("", dashboardHandler.Show(dashboard.BoardAdmin))
		admin.POST("/clients", formHandler.Submit(forms.KindClient))
		admin.POST("/:collection/:id/status", reviewHandler.Review(dashboard.BoardAdmin))
	}

	hr := router.Group("/hr")
	hr.Use(middleware.RequireViewer(), middleware.Authorize(models.RoleHR, models.RoleAdmin))
	{
		hr.GET("", dashboardHandler.Show(dashboard.BoardHR))
		hr.POST("/:collection/:id/status", reviewHandler.Review(dashboard.BoardHR))
	}

	// === JSON API ===
	api := router.Group("/api")
	api.Use(cors.New(corsConfig(d.CORSOrigins)))
	api.POST("/login", authHandler.Login)
	api.Use(middleware.RequireViewer())
	{
		api.GET("/ws", wsHandler.ServeWs)
		api.POST("/forms/:kind/validate", formHandler.Validate)
		api.GET("/boards/:board", dashboardHandler.Board)
		api.GET("/announcements", dashboardHandler.Announcements)
		api.GET("/records/:collection/:id/media", recordHandler.Media)

		users := api.Group("/admin/users", middleware.Authorize(models.RoleAdmin))
		{
			users.POST("", userHandler.CreateUser)
			users.GET("", userHandler.ListUsers)
			users.PUT("/:id/status", userHandler.SetUserStatus)
		}
	}

	return router
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(origins) == 0 {
		cfg.AllowOriginFunc = func(string) bool { return false }
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			cfg.AllowCredentials = false
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
