package testutils

import (
	"os"
	"sync"
	"time"

	"main/handler"
	"main/middleware"
	"main/realtime"
	"main/repository"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

var initOnce sync.Once

// Init puts the process in test mode and loads the shared auth config.
// Safe to call from every test.
func Init() {
	initOnce.Do(func() {
		os.Setenv("GO_ENV", "test")
		gin.SetMode(gin.TestMode)
		utils.InitValidator()
		utils.InitJWT()
	})
}

// Env is a full application instance with fresh stores, one per test.
type Env struct {
	Users    *repository.UserStore
	Sessions *repository.SessionRegistry
	Limiter  *services.RateLimiter
	Hub      *realtime.Hub
	Router   *gin.Engine
}

// NewEnv wires the same route table as main.setupRouter against fresh
// in-memory state.
func NewEnv() *Env {
	Init()

	env := &Env{
		Users:    repository.NewUserStore(),
		Sessions: repository.NewSessionRegistry(),
		Limiter:  services.NewRateLimiter(),
	}
	env.Hub = realtime.NewHub(env.Sessions)

	authHandler := handler.NewAuthHandler(env.Users, env.Sessions)
	statusHandler := handler.NewStatusHandler(env.Users, env.Sessions)
	taskHandler := handler.NewTaskHandler(env.Hub)

	router := gin.New()
	router.Use(middleware.RecoveryMiddleware())

	router.GET("/", statusHandler.Root)
	router.GET("/ws", realtime.ServeWS(env.Hub, env.Sessions))

	api := router.Group("/api")

	auth := api.Group("/auth")
	{
		auth.POST("/signup",
			middleware.RateLimit(env.Limiter, 10, time.Minute),
			authHandler.Signup)
		auth.POST("/login",
			middleware.RateLimit(env.Limiter, 10, time.Minute),
			authHandler.Login)

		protected := auth.Group("")
		protected.Use(middleware.AuthRequired(env.Users, env.Sessions))
		{
			protected.POST("/logout", authHandler.Logout)
			protected.GET("/me", authHandler.Me)
			protected.PUT("/profile", authHandler.UpdateProfile)
			protected.PUT("/password", authHandler.ChangePassword)
			protected.GET("/sessions", authHandler.GetSessions)
			protected.DELETE("/sessions/:sessionId", authHandler.TerminateSession)
			protected.GET("/users", middleware.RequireRole("admin"), authHandler.ListUsers)
		}
	}

	status := api.Group("/status")
	{
		status.GET("/health", statusHandler.Health)
		status.GET("/system",
			middleware.AuthOptional(env.Users, env.Sessions),
			statusHandler.System)
		status.GET("/users",
			middleware.AuthRequired(env.Users, env.Sessions),
			statusHandler.ActiveUsers)
	}

	tasks := api.Group("/tasks")
	tasks.Use(middleware.AuthOptional(env.Users, env.Sessions))
	{
		tasks.POST("/extract", taskHandler.ExtractTasks)
	}

	env.Router = router
	return env
}

// Close releases the env's background goroutines.
func (e *Env) Close() {
	e.Limiter.Stop()
}
