package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"todo/internal/middleware"
	"todo/internal/model"
	"todo/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

const (
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

type TaskHandler struct {
	log  *logrus.Logger
	repo repository.TaskRepositoryInterface
}

func NewTaskHandler(repo repository.TaskRepositoryInterface, log *logrus.Logger) *TaskHandler {
	return &TaskHandler{
		log:  log,
		repo: repo,
	}
}

type CreateTaskRequest struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description"`
}

type UpdateTaskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	Completed   *bool   `json:"completed"`
}

type TaskResponse struct {
	ID          uint    `json:"id"`
	UserID      string  `json:"user_id"`
	Title       string  `json:"title"`
	Description *string `json:"description"`
	Completed   bool    `json:"completed"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func toTaskResponse(task *model.Task) TaskResponse {
	resp := TaskResponse{
		ID:        task.ID,
		UserID:    task.UserID.String(),
		Title:     task.Title,
		Completed: task.Completed,
		CreatedAt: task.CreatedAt.Format(time.RFC3339),
		UpdatedAt: task.UpdatedAt.Format(time.RFC3339),
	}
	if task.Description != "" {
		resp.Description = &task.Description
	}
	return resp
}

// authenticatedUser returns the subject placed in the context by the auth
// middleware. The ownership guard has already matched it against the path.
func authenticatedUser(c *gin.Context) (uuid.UUID, bool) {
	value, exists := c.Get(middleware.UserIDKey)
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
		return uuid.Nil, false
	}

	userID, ok := value.(uuid.UUID)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Invalid user ID format"})
		return uuid.Nil, false
	}

	return userID, true
}

func taskIDParam(c *gin.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid task ID format"})
		return 0, false
	}
	return uint(id), true
}

// validTitle trims and length-checks a title. Limits are counted in runes.
func validTitle(title string) (string, bool) {
	trimmed := strings.TrimSpace(title)
	if trimmed == "" || utf8.RuneCountInString(trimmed) > MaxTitleLength {
		return "", false
	}
	return trimmed, true
}

// List returns all tasks of the authenticated user, optionally filtered by
// the completed flag
func (h *TaskHandler) List(c *gin.Context) {
	const op = "handler.Task.List"
	log := h.log.WithField("operation", op)

	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	var completed *bool
	if raw, exists := c.GetQuery("completed"); exists {
		value, err := strconv.ParseBool(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid completed filter"})
			return
		}
		completed = &value
	}

	tasks, err := h.repo.ListByUser(c.Request.Context(), userID, completed)
	if err != nil {
		log.WithError(err).Error("failed to list tasks")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve tasks"})
		return
	}

	responses := make([]TaskResponse, 0, len(tasks))
	for i := range tasks {
		responses = append(responses, toTaskResponse(&tasks[i]))
	}

	c.JSON(http.StatusOK, responses)
}

// Create adds a new task owned by the authenticated user
func (h *TaskHandler) Create(c *gin.Context) {
	const op = "handler.Task.Create"
	log := h.log.WithField("operation", op)

	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	title, ok := validTitle(req.Title)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be between 1 and 200 characters"})
		return
	}

	if utf8.RuneCountInString(req.Description) > MaxDescriptionLength {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Description must be at most 1000 characters"})
		return
	}

	task := &model.Task{
		UserID:      userID,
		Title:       title,
		Description: req.Description,
	}

	if err := h.repo.Create(c.Request.Context(), task); err != nil {
		log.WithError(err).Error("failed to create task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create task"})
		return
	}

	c.JSON(http.StatusCreated, toTaskResponse(task))
}

// GetByID returns a single task. Tasks of other users look exactly like
// missing ones.
func (h *TaskHandler) GetByID(c *gin.Context) {
	const op = "handler.Task.GetByID"
	log := h.log.WithField("operation", op)

	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.repo.GetByID(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		log.WithError(err).Error("failed to retrieve task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to retrieve task"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Update applies a partial update; absent fields are left untouched
func (h *TaskHandler) Update(c *gin.Context) {
	const op = "handler.Task.Update"
	log := h.log.WithField("operation", op)

	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
		return
	}

	task, err := h.repo.GetByID(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		log.WithError(err).Error("failed to retrieve task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	if req.Title != nil {
		title, ok := validTitle(*req.Title)
		if !ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Title must be between 1 and 200 characters"})
			return
		}
		task.Title = title
	}

	if req.Description != nil {
		if utf8.RuneCountInString(*req.Description) > MaxDescriptionLength {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Description must be at most 1000 characters"})
			return
		}
		task.Description = *req.Description
	}

	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	task.UpdatedAt = time.Now()

	if err := h.repo.Update(c.Request.Context(), task); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		log.WithError(err).Error("failed to update task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update task"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}

// Delete removes a task permanently
func (h *TaskHandler) Delete(c *gin.Context) {
	const op = "handler.Task.Delete"
	log := h.log.WithField("operation", op)

	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	if err := h.repo.Delete(c.Request.Context(), userID, taskID); err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		log.WithError(err).Error("failed to delete task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete task"})
		return
	}

	c.Status(http.StatusNoContent)
}

// ToggleComplete flips the completed flag
func (h *TaskHandler) ToggleComplete(c *gin.Context) {
	const op = "handler.Task.ToggleComplete"
	log := h.log.WithField("operation", op)

	userID, ok := authenticatedUser(c)
	if !ok {
		return
	}

	taskID, ok := taskIDParam(c)
	if !ok {
		return
	}

	task, err := h.repo.ToggleComplete(c.Request.Context(), userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrTaskNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
			return
		}
		log.WithError(err).Error("failed to toggle task")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to toggle task"})
		return
	}

	c.JSON(http.StatusOK, toTaskResponse(task))
}
