// Package httpapi wires the HTTP transport (Gin) to the application
// services, middleware, and route handlers. It centralizes cross-cutting
// concerns such as tracing, correlation IDs, logging with redaction, panic
// recovery, metrics, compression, CORS, and security headers.
//
// Two surfaces hang off the same engine: the JSON webhook API the WhatsApp
// gateway calls, and the server-rendered admin panel behind session auth.
package httpapi

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/gzip"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"
	"gorm.io/gorm"

	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/config"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/http/handlers"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/http/middleware"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/ingest"
	"github.com/cuneytkuscu/whatsapp-rag-bot/internal/services"
)

// Deps carries the constructed application services into the router.
type Deps struct {
	DB       *gorm.DB
	Pipeline *services.WebhookService
	Settings *services.SettingsService
	Ingestor *ingest.Ingestor
}

// RegisterRoutes attaches all middleware and endpoints to the given engine.
//
// Middleware order matters:
//  1. OpenTelemetry: trace everything
//  2. RequestID: generate/propagate correlation id
//  3. RedactingLogger: structured logs with PII scrubbing
//  4. Recovery: capture panics after logger
//  5. Body size limiter (sized for document uploads)
//  6. Metrics
//  7. Compression, CORS, security headers
func RegisterRoutes(r *gin.Engine, deps Deps, cfg config.Config) {
	r.HandleMethodNotAllowed = true

	r.Use(otelgin.Middleware(cfg.OTEL.ServiceName))
	r.Use(middleware.RequestID())
	r.Use(middleware.RedactingLogger(middleware.RedactOptions{
		MaskHeaders: []string{"apikey"},
	}))
	r.Use(middleware.Recovery())

	// Uploads pass through here, so the cap follows the configured upload
	// limit rather than a small JSON-only value.
	r.Use(limitBody(int64(cfg.MaxUploadMB) << 20))

	r.Use(middleware.Metrics())
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	r.Use(gzip.Gzip(gzip.DefaultCompression, gzip.WithExcludedPaths([]string{"/metrics"})))

	if len(cfg.CORS.AllowedOrigins) == 0 {
		r.Use(cors.New(cors.Config{
			AllowAllOrigins:  true,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: false, // must remain false with AllowAllOrigins
			MaxAge:           12 * time.Hour,
		}))
	} else {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowedOrigins,
			AllowMethods:     []string{"GET", "POST", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"X-Request-ID", "Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.Use(middleware.SecurityHeaders(middleware.SecurityOptions{
		EnableHSTS: cfg.Security.EnableHSTS,
		HSTSMaxAge: cfg.Security.HSTSMaxAge,
		NoStore:    false,
	}))

	// Fallbacks
	r.NoRoute(func(c *gin.Context) {
		handlers.Fail(c, http.StatusNotFound, handlers.ErrCodeNotFound, "route not found")
	})
	r.NoMethod(func(c *gin.Context) {
		handlers.Fail(c, http.StatusMethodNotAllowed, handlers.ErrCodeMethodNotAllowed, "method not allowed")
	})

	// Liveness/health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	// Webhook API
	wh := &handlers.WebhookHandler{Pipeline: deps.Pipeline}
	r.POST("/webhook/whatsapp", wh.Receive)

	// Admin panel
	admin := &handlers.AdminHandler{
		DB:          deps.DB,
		Sessions:    handlers.NewSessionStore(cfg.Admin.SessionTTL),
		Settings:    deps.Settings,
		Ingestor:    deps.Ingestor,
		Auth:        cfg.Admin,
		MaxUploadMB: cfg.MaxUploadMB,
	}
	r.GET("/admin/login", admin.LoginForm)
	r.POST("/admin/login", admin.Login)
	r.POST("/admin/logout", admin.Logout)

	authed := r.Group("/admin", admin.RequireSession())
	{
		authed.GET("", admin.Dashboard)
		authed.POST("/upload", admin.Upload)
		authed.POST("/settings", admin.SaveSettings)
		authed.POST("/whitelist", admin.AddWhitelist)
		authed.POST("/whitelist/:id/delete", admin.DeleteWhitelist)
	}
}

// limitBody caps the request body size using http.MaxBytesReader; reads past
// the cap error downstream.
func limitBody(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxBytes)
		c.Next()
	}
}
