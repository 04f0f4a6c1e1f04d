package app

import (
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"Tracker/internal/auth"
	"Tracker/internal/cache"
	"Tracker/internal/config"
	"Tracker/internal/handlers"
	"Tracker/internal/repo"
	"Tracker/internal/service"
	"Tracker/internal/views"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"github.com/swaggo/swag"
)

// Stores are the backends the router is built on.
type Stores struct {
	Users      repo.UserRepo
	Activities repo.ActivityRepo
	Redis      *redis.Client
}

// NewRouter builds the engine with every route and middleware.
func NewRouter(cfg config.Config, log *slog.Logger, st Stores) (*gin.Engine, error) {
	tmpl, err := views.Load()
	if err != nil {
		return nil, fmt.Errorf("load views: %w", err)
	}

	var activityCache *cache.ActivityCache
	if ttl := cfg.Redis.DefaultTTL.Duration(); ttl > 0 {
		activityCache = cache.NewActivityCache(st.Redis, ttl)
	}
	gateways, err := service.NewGateways(service.Deps{
		Users:      st.Users,
		Activities: st.Activities,
		Cache:      activityCache,
		BcryptCost: cfg.App.BcryptCost,
	})
	if err != nil {
		return nil, fmt.Errorf("gateways: %w", err)
	}

	deps := handlers.Deps{
		Sessions: auth.NewStore(st.Redis, cfg.Session.MaxAge.Duration()),
		Cookie: auth.CookieConfig{
			Name:   cfg.Session.CookieName,
			MaxAge: cfg.Session.MaxAge.Duration(),
			Secure: cfg.Session.Secure,
		},
		Gateways: gateways,
		Log:      log,
	}

	r := gin.New()
	r.Use(
		requestLogger(log),
		handlers.ErrorBoundary(log),
		handlers.Recover(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.CORS.AllowOrigins,
			AllowMethods:     []string{"GET", "POST", "HEAD", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Cookie"},
			ExposeHeaders:    []string{"Content-Length", "Content-Type", requestIDHeader},
			AllowCredentials: !allowsAnyOrigin(cfg.CORS.AllowOrigins),
			MaxAge:           12 * time.Hour,
		}),
	)
	r.SetHTMLTemplate(tmpl)
	r.NoRoute(handlers.NoRoute)

	r.StaticFS("/static", views.Static())
	r.GET("/health", healthHandler(cfg))
	r.GET("/version", versionHandler(cfg))
	r.GET("/swagger-doc.json", swaggerDocHandler())
	r.GET("/swagger", func(c *gin.Context) { c.Redirect(http.StatusFound, "/swagger/index.html") })
	r.GET("/swagger/*any", ginSwagger.WrapHandler(
		swaggerFiles.Handler,
		ginSwagger.URL("/swagger-doc.json"),
		ginSwagger.DefaultModelsExpandDepth(-1),
	))

	web := r.Group("", auth.LoadSession(deps.Sessions, deps.Cookie))
	protected := web.Group("", auth.RequireSignIn(deps.Sessions))

	activities := handlers.NewActivityHandler(deps)
	users := handlers.NewUserHandler(deps)
	web.GET("/", activities.Home)
	registerUserRoutes(web, protected, users)
	registerActivityRoutes(protected, activities)

	return r, nil
}

// allowsAnyOrigin reports whether origins contains the "*" wildcard, which
// gin-contrib/cors refuses to combine with credentials.
func allowsAnyOrigin(origins []string) bool {
	for _, o := range origins {
		if o == "*" {
			return true
		}
	}
	return false
}

func healthHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true, "env": cfg.App.Env})
	}
}

func versionHandler(cfg config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"version": cfg.App.Version})
	}
}

func swaggerDocHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		doc, err := swag.ReadDoc("swagger")
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		c.Data(http.StatusOK, "application/json; charset=utf-8", []byte(doc))
	}
}

func registerActivityRoutes(g *gin.RouterGroup, h *handlers.ActivityHandler) {
	g.GET("/activities/page/:pageNum", h.List)
	g.GET("/activity/new", h.NewForm)
	g.POST("/activity/new", h.Create)
	g.GET("/activities/edit/:activityId", h.EditForm)
	g.POST("/activities/edit/:activityId", h.Update)
	g.POST("/activity/delete/:activityId", h.Delete)
	g.GET("/sort/:column/:pageNum", h.Sort)
}

func registerUserRoutes(web, protected *gin.RouterGroup, h *handlers.UserHandler) {
	web.GET("/users/signin", h.SignInForm)
	web.POST("/users/signin", h.SignIn)
	web.POST("/users/signout", h.SignOut)
	web.GET("/users/create-account", h.CreateAccountForm)
	web.POST("/users/create-account", h.CreateAccount)

	protected.POST("/users/delete", h.Delete)
	protected.GET("/users/edit-account", h.EditAccountForm)
	protected.POST("/users/edit-account", h.EditAccount)
}
