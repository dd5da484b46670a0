package repository

import (
	"context"
	"errors"
	"time"

	"todo/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type TaskRepository struct {
	db *gorm.DB
}

type TaskRepositoryInterface interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, userID uuid.UUID, id uint) (*model.Task, error)
	ListByUser(ctx context.Context, userID uuid.UUID, completed *bool) ([]model.Task, error)
	Update(ctx context.Context, task *model.Task) error
	Delete(ctx context.Context, userID uuid.UUID, id uint) error
	ToggleComplete(ctx context.Context, userID uuid.UUID, id uint) (*model.Task, error)
}

var _ TaskRepositoryInterface = (*TaskRepository)(nil)

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create adds a new task to the database
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID within the owner's partition. Tasks owned
// by other users are never matched by the query, so the caller cannot tell a
// foreign task from a missing one.
func (r *TaskRepository) GetByID(ctx context.Context, userID uuid.UUID, id uint) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&task)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// ListByUser retrieves all tasks of one owner, newest first. The id is a
// tie-break so the order stays deterministic for tasks created in the same
// instant.
func (r *TaskRepository) ListByUser(ctx context.Context, userID uuid.UUID, completed *bool) ([]model.Task, error) {
	var tasks []model.Task
	query := r.db.WithContext(ctx).Where("user_id = ?", userID)
	if completed != nil {
		query = query.Where("completed = ?", *completed)
	}
	result := query.Order("created_at DESC, id DESC").Find(&tasks)
	if result.Error != nil {
		return nil, result.Error
	}
	return tasks, nil
}

// Update persists an edited task. The write itself carries the owner id, so
// even a stale or forged task pointer cannot touch another user's row.
func (r *TaskRepository) Update(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Updates(map[string]interface{}{
			"title":       task.Title,
			"description": task.Description,
			"completed":   task.Completed,
			"updated_at":  task.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// Delete removes a task from the owner's partition. Hard delete.
func (r *TaskRepository) Delete(ctx context.Context, userID uuid.UUID, id uint) error {
	result := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&model.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ToggleComplete flips the completed flag in a single scoped UPDATE, so two
// near-simultaneous toggles serialize on the row lock.
func (r *TaskRepository) ToggleComplete(ctx context.Context, userID uuid.UUID, id uint) (*model.Task, error) {
	result := r.db.WithContext(ctx).Model(&model.Task{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{
			"completed":  gorm.Expr("NOT completed"),
			"updated_at": time.Now(),
		})
	if result.Error != nil {
		return nil, result.Error
	}
	if result.RowsAffected == 0 {
		return nil, ErrTaskNotFound
	}
	return r.GetByID(ctx, userID, id)
}
