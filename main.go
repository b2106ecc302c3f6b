package main

import (
	"fmt"
	"log"
	"os"
	"time"

	"main/handler"
	"main/middleware"
	"main/realtime"
	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func init() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil && os.Getenv("GO_ENV") != "test" {
		log.Printf("No .env file loaded: %v", err)
	}

	if os.Getenv("JWT_SECRET_KEY") == "" && os.Getenv("GO_ENV") != "test" {
		log.Fatal("Required environment variable JWT_SECRET_KEY is not set")
	}

	utils.InitValidator()
	utils.InitJWT()
}

// deps bundles the process-lifetime instances. Everything is constructed
// once at startup and passed down; nothing here is a package-level singleton.
type deps struct {
	users    *repository.UserStore
	sessions *repository.SessionRegistry
	limiter  *services.RateLimiter
	hub      *realtime.Hub
}

func setupRouter(d deps) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(middleware.RecoveryMiddleware())
	router.Use(middleware.CORSMiddleware())
	router.Use(middleware.MetricsMiddleware())

	authHandler := handler.NewAuthHandler(d.users, d.sessions)
	statusHandler := handler.NewStatusHandler(d.users, d.sessions)
	taskHandler := handler.NewTaskHandler(d.hub)

	loginLimit := utils.GetEnvAsInt("AUTH_RATE_LIMIT", 10)
	loginWindow := utils.GetEnvAsDuration("AUTH_RATE_WINDOW", time.Minute)

	router.GET("/", statusHandler.Root)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/ws", realtime.ServeWS(d.hub, d.sessions))

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup",
			middleware.RateLimit(d.limiter, loginLimit, loginWindow),
			authHandler.Signup)
		auth.POST("/login",
			middleware.RateLimit(d.limiter, loginLimit, loginWindow),
			authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthRequired(d.users, d.sessions))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/me", authHandler.Me)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
			protected.GET("/sessions", authHandler.GetSessions)
			protected.DELETE("/sessions/:sessionId", authHandler.TerminateSession)
			protected.GET("/users", middleware.RequireRole("admin"), authHandler.ListUsers)

			twofa := protected.Group("/2fa")
			{
				twofa.POST("/setup", authHandler.Setup2FA)
				twofa.POST("/enable", authHandler.Enable2FA)
				twofa.POST("/disable", authHandler.Disable2FA)
			}
		}
	}

	status := api.Group("/status")
	{
		status.GET("/health", statusHandler.Health)
		status.GET("/system",
			middleware.AuthOptional(d.users, d.sessions),
			statusHandler.System)
		status.GET("/users",
			middleware.AuthRequired(d.users, d.sessions),
			statusHandler.ActiveUsers)
	}

	tasks := api.Group("/tasks")
	tasks.Use(middleware.AuthOptional(d.users, d.sessions))
	{
		tasks.POST("/extract",
			middleware.RateLimit(d.limiter, utils.GetEnvAsInt("TASK_RATE_LIMIT", 100), time.Minute),
			taskHandler.ExtractTasks)
	}

	return router
}

func main() {
	d := deps{
		users:    repository.NewUserStore(),
		sessions: repository.NewSessionRegistry(),
		limiter:  services.NewRateLimiter(),
	}
	d.hub = realtime.NewHub(d.sessions)

	sweeper := services.NewSessionSweeper(
		d.sessions,
		utils.GetEnvAsDuration("SESSION_SWEEP_INTERVAL", time.Hour),
		utils.GetEnvAsDuration("SESSION_TTL", 24*time.Hour),
	)
	sweeper.Start()
	defer sweeper.Stop()
	defer d.limiter.Stop()

	router := setupRouter(d)

	port := os.Getenv("PORT")
	if port == "" {
		port = "5000"
	}

	serverAddr := fmt.Sprintf(":%s", port)
	log.Printf("Server starting on %s", serverAddr)
	if err := router.Run(serverAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
