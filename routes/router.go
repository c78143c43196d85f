package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/rizqiaditya/stories/config"
	"github.com/rizqiaditya/stories/controllers"
	_ "github.com/rizqiaditya/stories/docs" // swagger docs
	"github.com/rizqiaditya/stories/middleware"
	"github.com/rizqiaditya/stories/services"
	"github.com/rizqiaditya/stories/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(cfg config.AppConfig, svc services.StoryService, stories *controllers.StoryController) *gin.Engine {
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.MaxMultipartMemory = int64(cfg.UploadMaxSizeMB) << 20

	// Access log and panic recovery go to a rolling file when one is configured
	if cfg.GinPath != "" && cfg.GinMode != "test" {
		if gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg); err == nil {
			r.Use(ginzap.Ginzap(gl, time.RFC3339, true))
			r.Use(ginzap.RecoveryWithZap(gl, true))
		} else {
			utils.Sugar.Warnf("gin log file unavailable, falling back to default recovery: %v", err)
			r.Use(gin.Recovery())
		}
	} else {
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}
	r.Use(cors.New(corsCfg))

	if strings.HasPrefix(cfg.UploadPublicBase, "/") {
		r.Static(cfg.UploadPublicBase, cfg.UploadDir)
	}

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, "ok", gin.H{"status": "ok"})
	})

	// API docs: /swagger/index.html, raw document at /swagger/doc.json
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	limiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute).Handler()

	api := r.Group("/api")
	storiesGroup := api.Group("/stories")
	storiesGroup.GET("", stories.ListStories)
	storiesGroup.GET("/archive", stories.ListArchivedStories)
	storiesGroup.GET("/:id", middleware.StoryViewRecorder(svc), stories.GetStory)
	storiesGroup.POST("", limiter, stories.CreateStory)
	storiesGroup.DELETE("/:id", limiter, stories.DeleteStory)
	storiesGroup.GET("/:id/comments", stories.ListComments)
	storiesGroup.POST("/:id/comments", limiter, stories.CommentOnStory)
	storiesGroup.GET("/:id/stats", stories.GetStoryStats)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
