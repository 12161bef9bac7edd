package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	_ "github.com/devfolio-io/devfolio/docs"
	"github.com/devfolio-io/devfolio/internal/config"
	"github.com/devfolio-io/devfolio/internal/middleware"
	"github.com/devfolio-io/devfolio/internal/modules/handler"
	"github.com/devfolio-io/devfolio/internal/modules/serializer"
	"github.com/devfolio-io/devfolio/internal/web"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

const dashboardPath = "/dashboard"

type RouterDeps struct {
	Config         *config.Config
	Log            *zap.Logger
	Sessions       middleware.SessionLookup
	RateLimiter    *middleware.RateLimiter
	ProjectHandler *handler.ProjectHandler
	AuthHandler    *handler.AuthHandler
	PageHandler    *handler.PageHandler
}

func NewRouter(d RouterDeps) *gin.Engine {
	// Initialize logger for serializer package
	serializer.SetLogger(d.Log)

	r := gin.New()
	r.Use(gin.Recovery())

	// Add OpenTelemetry middleware if enabled (using configuration system)
	if d.Config.Telemetry.Enabled && d.Config.Telemetry.OtlpEndpoint != "" {
		r.Use(middleware.OtelTracing(d.Config.App.Name))
		// Add trace ID to response header
		r.Use(middleware.TraceID())
	}

	r.Use(middleware.ZapLogger(d.Log))
	r.Use(middleware.CORS(d.Config.CORS.AllowOrigins))
	r.SetHTMLTemplate(web.Templates())

	// health
	r.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, serializer.OK(nil)) })

	// swagger
	r.GET("/swagger", func(c *gin.Context) {
		c.Redirect(http.StatusMovedPermanently, "/swagger/index.html")
	})
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// pages
	signIn := d.Config.Auth.SignInPath
	r.GET(signIn, d.PageHandler.SignIn)
	r.GET("/", func(c *gin.Context) { c.Redirect(http.StatusFound, dashboardPath) })
	dashboard := r.Group(dashboardPath)
	{
		dashboard.Use(middleware.SessionGate(d.Sessions, signIn, d.Log))
		dashboard.GET("", d.PageHandler.Dashboard)
		dashboard.GET("/*any", d.PageHandler.Dashboard)
	}

	api := r.Group("/api")
	{
		auth := api.Group("/auth")
		{
			limited := auth.Group("")
			if d.RateLimiter != nil {
				limited.Use(d.RateLimiter.Middleware())
			}
			limited.POST("/sign-up/email", d.AuthHandler.SignUpEmail)
			limited.POST("/sign-in/username", d.AuthHandler.SignInUsername)
			limited.POST("/sign-in/email", d.AuthHandler.SignInEmail)

			auth.POST("/sign-out", d.AuthHandler.SignOut)
			auth.GET("/session", d.AuthHandler.GetSession)
		}

		public := api.Group("/public")
		{
			public.GET("/projects", d.ProjectHandler.ListPublicProjects)
			public.GET("/projects/:slug", d.ProjectHandler.GetPublicProject)
		}

		projects := api.Group("/projects")
		{
			projects.Use(middleware.SessionRequired(d.Sessions, d.Log))

			projects.GET("", d.ProjectHandler.ListProjects)
			projects.POST("", d.ProjectHandler.CreateProject)
			projects.GET("/:id", d.ProjectHandler.GetProject)
			projects.PATCH("/:id", d.ProjectHandler.UpdateProject)
			projects.DELETE("/:id", d.ProjectHandler.DeleteProject)
		}
	}
	return r
}
