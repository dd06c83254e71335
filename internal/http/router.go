package http

import (
	"context"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/presslane/newsdesk/internal/auth"
	"github.com/presslane/newsdesk/internal/cache"
	"github.com/presslane/newsdesk/internal/config"
	"github.com/presslane/newsdesk/internal/domain/user"
	"github.com/presslane/newsdesk/internal/http/handlers"
	"github.com/presslane/newsdesk/internal/http/middlewares"
	"github.com/presslane/newsdesk/internal/observability"
	"github.com/presslane/newsdesk/internal/repo/postgres"
)

func NewRouter(cfg config.Config, log *slog.Logger, pool *pgxpool.Pool, throttle handlers.LoginThrottle, prom *observability.Prom) *gin.Engine {
	if cfg.Env != "dev" {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()

	// middleware

	r.Use(gin.Recovery())
	r.Use(middlewares.RequestID())
	r.Use(middlewares.RequestLogger(log))
	r.Use(middlewares.SecurityHeaders())
	r.Use(middlewares.CORSMiddleware(nil))
	r.Use(middlewares.MaxBodyBytes(1 << 20))

	if prom != nil {
		r.Use(prom.GinHandleMiddleware())
	}

	r.Use(otelgin.Middleware("newsdesk-api"))

	// health
	ping := func() error {
		if pool == nil {
			return nil
		}

		ctx, cancel := context.WithTimeout(context.Background(), 1*time.Second)
		defer cancel()

		return pool.Ping(ctx)
	}

	h := handlers.NewHealthHandler(ping)
	r.GET("/healthz", h.Healthz)
	r.GET("/readyz", h.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// wire up repositories
	articlesRepo := postgres.NewArticlesRepo(pool, prom)
	usersRepo := postgres.NewUsersRepo(pool, prom)
	statsRepo := postgres.NewStatsRepo(pool, prom)

	jwtManager := auth.NewManager(cfg.JWTSecret, time.Duration(cfg.SessionTTLDays)*24*time.Hour)
	authMw := middlewares.NewAuthMiddleware(jwtManager, cfg.SessionCookieName)

	listCache := cache.New(30 * time.Second)

	// wire up handlers
	authHandler := handlers.NewAuthHandler(usersRepo, jwtManager, throttle, cfg)
	articlesHandler := handlers.NewArticlesHandlerWithCache(articlesRepo, listCache)
	engagementHandler := handlers.NewEngagementHandler(articlesRepo, prom)
	commentsHandler := handlers.NewCommentsHandler(articlesRepo)
	usersHandler := handlers.NewUsersHandler(usersRepo)
	statsHandler := handlers.NewStatsHandler(statsRepo)
	profileHandler := handlers.NewProfileHandler(usersRepo)
	dashboardHandler := handlers.NewDashboardHandler(articlesRepo, usersRepo, statsRepo, articlesRepo)

	// auth endpoints get a per-IP brake on top of the per-email redis throttle
	authLimiter := middlewares.NewRateLimiter(30, time.Minute)

	authGroup := r.Group("/auth")
	authGroup.Use(authLimiter.RateLimiterMiddleware(middlewares.KeyByIP))
	{
		authGroup.POST("/signup", middlewares.RequireJSON(), authHandler.SignUp)
		authGroup.POST("/login", middlewares.RequireJSON(), authHandler.Login)
		authGroup.POST("/logout", authHandler.Logout)
	}

	// public reads
	r.GET("/articles", articlesHandler.ListArticles)
	r.GET("/articles/:id", articlesHandler.GetArticleById)
	r.GET("/articles/category/:categories", articlesHandler.ListByCategory)
	r.GET("/comments", commentsHandler.RecentComments)

	// writes need a session
	authed := r.Group("/")
	authed.Use(authMw.RequireAuth())
	{
		authed.POST("/articles", middlewares.RequireJSON(), articlesHandler.CreateArticle)
		authed.PUT("/articles/:id", middlewares.RequireJSON(), articlesHandler.UpdateArticle)
		authed.DELETE("/articles/:id", articlesHandler.DeleteArticle)

		// body-dispatched engagement: like toggle or comment
		authed.POST("/articles/:id", middlewares.RequireJSON(), engagementHandler.Engage)

		authed.GET("/profile", profileHandler.GetProfile)
		authed.PUT("/profile", middlewares.RequireJSON(), profileHandler.UpdateProfile)
	}

	// admin API surface
	adminAPI := r.Group("/")
	adminAPI.Use(authMw.RequireAuth(), authMw.RequireMinRole(user.RoleAdmin))
	{
		adminAPI.GET("/users", usersHandler.ListRecentUsers)
		adminAPI.GET("/stats", statsHandler.GetStats)
	}

	// browser-facing pages: the gate redirects instead of returning JSON
	// errors
	r.GET("/login", handlers.LoginPage)
	r.GET("/unauthorized", handlers.UnauthorizedPage)

	r.GET("/user", authMw.PageGate(user.RoleUser), dashboardHandler.UserDashboard)
	r.GET("/admin", authMw.PageGate(user.RoleAdmin), dashboardHandler.AdminDashboard)
	r.GET("/superadmin", authMw.PageGate(user.RoleSuperadmin), dashboardHandler.SuperadminDashboard)

	return r
}
