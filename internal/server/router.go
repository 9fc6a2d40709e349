package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"supportdesk/internal/accounts"
	"supportdesk/internal/controllers"
	"supportdesk/internal/middleware"
	"supportdesk/internal/monitoring"
	"supportdesk/internal/storage"
	"supportdesk/internal/store"
	"supportdesk/internal/verification"
)

type Deps struct {
	Store          *store.Store
	Codes          *verification.Service
	Photos         storage.PhotoStore
	MaxUploadBytes int64
	Log            *slog.Logger
}

func NewRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestIDMiddleware(d.Log))
	r.Use(monitoring.RequestMetricsMiddleware())

	authn := accounts.NewAuthenticator(d.Store)
	auth := controllers.NewAuthController(d.Codes, authn, d.Log)
	users := controllers.NewUserController(d.Store, d.Photos, d.MaxUploadBytes, d.Log)
	support := controllers.NewSupportController(d.Store, d.Log)

	r.GET("/health", health(d.Store))
	r.GET("/metrics", monitoring.Handler())

	api := r.Group("/api")
	{
		api.POST("/register", auth.Register)
		api.POST("/verify", auth.Verify)
		api.POST("/login", auth.Login)
		api.GET("/user", users.GetUser)
		api.POST("/user/update", users.UpdateUser)
		api.GET("/solutions", support.ListSolutions)
	}

	protected := r.Group("/api")
	protected.Use(middleware.BasicAuthMiddleware(authn, "support", d.Log))
	{
		protected.POST("/submit-issue", support.SubmitIssue)
	}

	return r
}

func health(st *store.Store) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := st.Ping(ctx); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
