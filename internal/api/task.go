package api

import (
	"errors"
	"net/http"
	"time"

	"taskdeck/internal/model"
	"taskdeck/internal/service"
	"taskdeck/pkg/auth"
	"taskdeck/pkg/logger"
	"go.uber.org/zap"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type taskRoutes struct {
	ts service.TaskServiceI
	a  *auth.BearerAuth
}

func NewTaskRoutes(handler *gin.RouterGroup, ts service.TaskServiceI, a *auth.BearerAuth) {
	r := &taskRoutes{ts: ts, a: a}

	h := handler.Group("/tasks")
	h.Use(a.Middleware())
	{
		h.POST("", r.CreateTask)
		h.GET("", r.ListTasks)
		h.POST("/:task_id/complete", r.CompleteTask)
	}
}

type createTaskRequest struct {
	Title string `json:"title" binding:"required"`
	Notes string `json:"notes"`
}

type taskResponse struct {
	TaskID      string     `json:"task_id"`
	Title       string     `json:"title"`
	Notes       string     `json:"notes,omitempty"`
	Completed   bool       `json:"completed"`
	CreatedAt   time.Time  `json:"created_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

func toTaskResponse(t *model.Task) taskResponse {
	return taskResponse{
		TaskID:      t.TaskID.String(),
		Title:       t.Title,
		Notes:       t.Notes,
		Completed:   t.Completed,
		CreatedAt:   t.CreatedAt,
		CompletedAt: t.CompletedAt,
	}
}

func (r *taskRoutes) CreateTask(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title is required"})
		return
	}

	task, err := r.ts.Create(c.Request.Context(), userID, req.Title, req.Notes)
	if err != nil {
		log.Error("failed to create task", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

func (r *taskRoutes) ListTasks(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	tasks, err := r.ts.List(c.Request.Context(), userID)
	if err != nil {
		log.Error("failed to list tasks", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tasks"})
		return
	}

	response := make([]taskResponse, len(tasks))
	for i, t := range tasks {
		response[i] = toTaskResponse(t)
	}

	c.JSON(http.StatusOK, response)
}

func (r *taskRoutes) CompleteTask(c *gin.Context) {
	log := logger.Logger()

	userID, ok := auth.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	taskID, err := uuid.Parse(c.Param("task_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid task_id"})
		return
	}

	err = r.ts.Complete(c.Request.Context(), userID, taskID)
	if err != nil {
		log.Error("failed to complete task", zap.Error(err))
		switch {
		case errors.Is(err, service.ErrTaskNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "task not found"})
		case errors.Is(err, service.ErrTaskAlreadyCompleted):
			c.JSON(http.StatusConflict, gin.H{"error": "task already completed"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to complete task"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{})
}
