package handler

import (
	"log"
	"time"

	"main/middleware"
	"main/repository"
	"main/utils"

	"github.com/gin-gonic/gin"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
)

type StatusHandler struct {
	Users    *repository.UserStore
	Sessions *repository.SessionRegistry
	started  time.Time
}

func NewStatusHandler(users *repository.UserStore, sessions *repository.SessionRegistry) *StatusHandler {
	return &StatusHandler{
		Users:    users,
		Sessions: sessions,
		started:  time.Now(),
	}
}

// Root is the service card listing the API surface.
func (h *StatusHandler) Root(c *gin.Context) {
	c.JSON(200, gin.H{
		"status":   "Server is running",
		"message":  "Meeting Task Automation Backend",
		"version":  "2.0.0",
		"features": []string{"Multi-user support", "Authentication", "Real-time connections"},
		"endpoints": gin.H{
			"auth": gin.H{
				"signup":         "POST /api/auth/signup",
				"login":          "POST /api/auth/login",
				"logout":         "POST /api/auth/logout",
				"profile":        "GET /api/auth/me",
				"updateProfile":  "PUT /api/auth/profile",
				"changePassword": "PUT /api/auth/password",
				"sessions":       "GET /api/auth/sessions",
			},
			"tasks": gin.H{
				"extractTasks": "POST /api/tasks/extract",
			},
			"status": gin.H{
				"system": "GET /api/status/system",
				"health": "GET /api/status/health",
				"users":  "GET /api/status/users",
			},
		},
	})
}

func (h *StatusHandler) Health(c *gin.Context) {
	c.JSON(200, gin.H{
		"success":   true,
		"status":    "healthy",
		"timestamp": time.Now(),
	})
}

// System reports registry and user counters plus host resource usage.
func (h *StatusHandler) System(c *gin.Context) {
	utils.Success(c, gin.H{
		"server": gin.H{
			"status":    "online",
			"uptime":    time.Since(h.started).Seconds(),
			"timestamp": time.Now(),
			"version":   "2.0.0",
		},
		"sessions": h.Sessions.Stats(),
		"users":    h.Users.Stats(),
		"system":   hostUsage(),
	})
}

// ActiveUsers reports presence counters for the authenticated caller.
func (h *StatusHandler) ActiveUsers(c *gin.Context) {
	stats := h.Sessions.Stats()

	utils.Success(c, gin.H{
		"activeUsersCount": h.Sessions.CountConnectedUsers(),
		"connectedUsers":   stats.ConnectedUsers,
		"totalSessions":    stats.ActiveSessions,
		"currentUser":      c.GetString(middleware.CtxUserID),
	})
}

func hostUsage() gin.H {
	usage := gin.H{}

	if percents, err := cpu.Percent(0, false); err == nil && len(percents) > 0 {
		usage["cpu_percent"] = percents[0]
	} else if err != nil {
		log.Printf("Error getting CPU usage: %v", err)
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		usage["memory"] = gin.H{
			"used_mb":  vm.Used / 1024 / 1024,
			"total_mb": vm.Total / 1024 / 1024,
			"percent":  vm.UsedPercent,
		}
	} else {
		log.Printf("Error getting memory usage: %v", err)
	}

	return usage
}
