package routes

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/bhishma-ai/bhishma/config"
	"github.com/bhishma-ai/bhishma/controllers"
	"github.com/bhishma-ai/bhishma/middleware"
	"github.com/bhishma-ai/bhishma/services"
	"github.com/bhishma-ai/bhishma/utils"
)

// SetupRouter wires routes, middlewares, and controllers.
func SetupRouter(db *gorm.DB) *gin.Engine {
	// Load config and set Gin mode from configuration
	cfg := config.Get()
	switch strings.ToLower(cfg.GinMode) {
	case "debug":
		gin.SetMode(gin.DebugMode)
	case "test":
		gin.SetMode(gin.TestMode)
	default:
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	// Replace default console logger with file-based zap logger
	gl, err := utils.NewRollingFileLogger(cfg.GinPath, cfg.LogLevel, cfg.LogMaxSizeMB, cfg.LogMaxBackups, cfg.LogMaxAgeDays, cfg.LogCompress)
	if err == nil {
		r.Use(utils.Ginzap(gl, time.RFC3339, true))
		r.Use(utils.RecoveryWithZap(gl, false))
	} else {
		// fallback to default recovery if logger failed to init
		r.Use(gin.Recovery())
	}

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Authorization", "Content-Type"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}

	if len(cfg.AllowedOrigins) == 1 && cfg.AllowedOrigins[0] == "*" {
		corsCfg.AllowAllOrigins = true
	} else {
		corsCfg.AllowOrigins = cfg.AllowedOrigins
	}

	r.Use(cors.New(corsCfg))

	rewardService := services.NewRewardService(db)
	// Successful mutating requests count as today's qualifying activity
	r.Use(middleware.ActivityRecorder(rewardService))

	r.GET("/health", func(ctx *gin.Context) {
		utils.Success(ctx, gin.H{"status": "ok"})
	})

	openAI := utils.NewOpenAIClient()
	gemini := utils.NewGeminiClient()

	authController := controllers.NewAuthController(db)
	rewardController := controllers.NewRewardController(db)
	moodController := controllers.NewMoodController(db)
	detectionController := controllers.NewDetectionController(db)
	journalController := controllers.NewJournalController(db)
	yogaController := controllers.NewYogaController(db)
	counselingController := controllers.NewCounselingController(db)
	chatController := controllers.NewChatController(db, openAI)
	insightController := controllers.NewInsightController(db, gemini)
	statsController := controllers.NewStatsController(db)
	gameController := controllers.NewGameController(db)
	preferenceController := controllers.NewPreferenceController(db)

	api := r.Group("/api/v1")

	authGroup := api.Group("/auth")
	authGroup.Use(middleware.RateLimitMiddleware())
	authGroup.POST("/register", authController.Register)
	authGroup.POST("/login", authController.Login)
	authGroup.GET("/oauth/google/login", authController.OAuthRedirect)
	authGroup.GET("/oauth/google/callback", authController.OAuthCallback)
	authGroup.POST("/logout", middleware.AuthRequired(), authController.Logout)
	authGroup.GET("/me", middleware.AuthRequired(), authController.Me)
	authGroup.PATCH("/profile", middleware.AuthRequired(), authController.UpdateProfile)

	protected := api.Group("")
	protected.Use(middleware.AuthRequired())

	rewardsGroup := protected.Group("/rewards")
	rewardsGroup.GET("/summary", rewardController.Summary)
	rewardsGroup.GET("/transactions", rewardController.Transactions)
	rewardsGroup.POST("/claim-special", rewardController.ClaimSpecial)
	rewardsGroup.POST("/check-in", rewardController.CheckIn)

	moodGroup := protected.Group("/moods")
	moodGroup.POST("", moodController.Create)
	moodGroup.GET("", moodController.List)
	moodGroup.GET("/trend", moodController.Trend)
	moodGroup.DELETE("/:id", moodController.Delete)

	detectionGroup := protected.Group("/detection")
	detectionGroup.POST("/sessions", detectionController.CreateSession)
	detectionGroup.GET("/sessions/:id", detectionController.Status)
	detectionGroup.POST("/sessions/:id/camera-denied", detectionController.CameraDenied)
	detectionGroup.POST("/sessions/:id/model-ready", detectionController.ModelReady)
	detectionGroup.POST("/sessions/:id/start", detectionController.Start)
	detectionGroup.POST("/sessions/:id/pause", detectionController.Pause)
	detectionGroup.POST("/sessions/:id/resume", detectionController.Resume)
	detectionGroup.POST("/sessions/:id/stop", detectionController.Stop)
	detectionGroup.POST("/sessions/:id/tick", detectionController.Tick)
	detectionGroup.POST("/save", detectionController.Save)
	detectionGroup.GET("/recent", detectionController.Recent)

	journalGroup := protected.Group("/journal")
	journalGroup.POST("", journalController.Create)
	journalGroup.GET("", journalController.List)
	journalGroup.GET("/:id", journalController.Get)
	journalGroup.PATCH("/:id", journalController.Update)
	journalGroup.DELETE("/:id", journalController.Delete)

	yogaGroup := protected.Group("/yoga")
	yogaGroup.GET("/sessions", yogaController.Catalog)
	yogaGroup.POST("/progress", yogaController.Start)
	yogaGroup.POST("/progress/:id/complete", yogaController.Complete)
	yogaGroup.GET("/progress", yogaController.Progress)

	counselingGroup := protected.Group("/counseling")
	counselingGroup.GET("/therapists", counselingController.Therapists)
	counselingGroup.POST("/bookings", counselingController.Book)
	counselingGroup.GET("/bookings", counselingController.Bookings)
	counselingGroup.POST("/bookings/:id/cancel", counselingController.Cancel)

	chatGroup := protected.Group("/chat")
	chatGroup.POST("/messages", chatController.Send)
	chatGroup.GET("/conversations", chatController.Conversations)
	chatGroup.GET("/conversations/:id/messages", chatController.Messages)

	insightGroup := protected.Group("/insights")
	insightGroup.GET("/daily", insightController.Daily)
	insightGroup.GET("/mood-analysis", insightController.MoodAnalysis)

	gameGroup := protected.Group("/games/memory")
	gameGroup.POST("/scores", gameController.SubmitScore)
	gameGroup.GET("/scores", gameController.Scores)
	gameGroup.GET("/best", gameController.BestScore)

	protected.GET("/preferences", preferenceController.Get)
	protected.PATCH("/preferences", preferenceController.Update)

	protected.GET("/stats/dashboard", statsController.Dashboard)

	r.NoRoute(func(ctx *gin.Context) {
		utils.Error(ctx, http.StatusNotFound, 40400, "route not found")
	})

	return r
}
