package handler

import (
	"errors"

	"main/dto"
	"main/middleware"
	"main/realtime"
	"main/services"
	"main/utils"

	"github.com/gin-gonic/gin"
)

// TaskHandler fronts the transcript-to-task pipeline. Extraction itself is
// the deterministic rule-based pass; outbound Jira/Trello creation happens in
// external services the extracted items are handed to.
type TaskHandler struct {
	Hub *realtime.Hub
}

func NewTaskHandler(hub *realtime.Hub) *TaskHandler {
	return &TaskHandler{Hub: hub}
}

// ExtractTasks parses a meeting transcript into action items and announces
// the result to connected clients.
func (h *TaskHandler) ExtractTasks(c *gin.Context) {
	var req dto.ExtractTasksRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.BadRequest(c, "Transcript is required")
		return
	}

	tasks, err := services.ExtractTasks(req.Transcript)
	if err != nil {
		if errors.Is(err, services.ErrEmptyTranscript) {
			utils.BadRequest(c, "Transcript text cannot be empty")
			return
		}
		middleware.TrackError("tasks")
		utils.InternalError(c, "Task extraction failed")
		return
	}

	if h.Hub != nil {
		h.Hub.Broadcast("task_update", gin.H{
			"sessionId": c.GetString(middleware.CtxSessionID),
			"status":    "extracted",
			"count":     len(tasks),
		})
	}

	utils.Success(c, gin.H{
		"tasks": tasks,
		"count": len(tasks),
	})
}
