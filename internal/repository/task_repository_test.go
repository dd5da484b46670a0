package repository_test

import (
	"context"
	"testing"
	"time"

	"todo/internal/model"
	"todo/internal/repository"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

func taskRows(task *model.Task) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}).
		AddRow(task.ID, task.UserID.String(), task.Title, task.Description, task.Completed, task.CreatedAt, task.UpdatedAt)
}

func TestTaskRepository_Create(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()
	task := &model.Task{
		UserID: userID,
		Title:  "Buy milk",
	}

	mock.ExpectBegin()
	mock.ExpectQuery(`INSERT INTO "tasks"`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(1))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Create(context.Background(), task)

	// Assert
	assert.NoError(t, err)
	assert.Equal(t, uint(1), task.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_Found(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()
	now := time.Now()
	stored := &model.Task{ID: 42, UserID: userID, Title: "Buy milk", CreatedAt: now, UpdatedAt: now}

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* AND user_id = .*`).
		WithArgs(42, userID.String()).
		WillReturnRows(taskRows(stored))

	// Act
	task, err := taskRepo.GetByID(context.Background(), userID, 42)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, task)
	assert.Equal(t, uint(42), task.ID)
	assert.Equal(t, "Buy milk", task.Title)
	assert.False(t, task.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_GetByID_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()

	// The scoped query matches nothing, whether the row is absent or owned
	// by another user
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* AND user_id = .*`).
		WithArgs(42, userID.String()).
		WillReturnError(gorm.ErrRecordNotFound)

	// Act
	task, err := taskRepo.GetByID(context.Background(), userID, 42)

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByUser(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()
	now := time.Now()

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}).
		AddRow(2, userID.String(), "Second", "", false, now, now).
		AddRow(1, userID.String(), "First", "", true, now.Add(-time.Minute), now.Add(-time.Minute))

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE user_id = .* ORDER BY created_at DESC, id DESC`).
		WithArgs(userID.String()).
		WillReturnRows(rows)

	// Act
	tasks, err := taskRepo.ListByUser(context.Background(), userID, nil)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, tasks, 2)
	assert.Equal(t, "Second", tasks[0].Title)
	assert.Equal(t, "First", tasks[1].Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ListByUser_CompletedFilter(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()
	now := time.Now()
	completed := true

	rows := sqlmock.NewRows([]string{"id", "user_id", "title", "description", "completed", "created_at", "updated_at"}).
		AddRow(1, userID.String(), "Done", "", true, now, now)

	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE user_id = .* AND completed = .* ORDER BY created_at DESC, id DESC`).
		WithArgs(userID.String(), true).
		WillReturnRows(rows)

	// Act
	tasks, err := taskRepo.ListByUser(context.Background(), userID, &completed)

	// Assert
	assert.NoError(t, err)
	assert.Len(t, tasks, 1)
	assert.True(t, tasks[0].Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update_ScopedToOwner(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()
	task := &model.Task{
		ID:          42,
		UserID:      userID,
		Title:       "Buy milk",
		Description: "2 liters",
		Completed:   true,
		UpdatedAt:   time.Now(),
	}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE id = .* AND user_id = .*`).
		WithArgs(true, "2 liters", "Buy milk", sqlmock.AnyArg(), 42, userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Update(context.Background(), task)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Update_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	task := &model.Task{ID: 42, UserID: uuid.New(), Title: "Buy milk", UpdatedAt: time.Now()}

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE id = .* AND user_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Update(context.Background(), task)

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = .* AND user_id = .*`).
		WithArgs(42, userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Delete(context.Background(), userID, 42)

	// Assert
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_Delete_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`DELETE FROM "tasks" WHERE id = .* AND user_id = .*`).
		WithArgs(42, userID.String()).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	err := taskRepo.Delete(context.Background(), userID, 42)

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ToggleComplete(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE id = .* AND user_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	flipped := &model.Task{ID: 42, UserID: userID, Title: "Buy milk", Completed: true, CreatedAt: now, UpdatedAt: now}
	mock.ExpectQuery(`SELECT .* FROM "tasks" WHERE id = .* AND user_id = .*`).
		WithArgs(42, userID.String()).
		WillReturnRows(taskRows(flipped))

	// Act
	task, err := taskRepo.ToggleComplete(context.Background(), userID, 42)

	// Assert
	assert.NoError(t, err)
	assert.NotNil(t, task)
	assert.True(t, task.Completed)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestTaskRepository_ToggleComplete_NotFound(t *testing.T) {
	// Arrange
	gormDB, mock := setupMockDB(t)
	taskRepo := repository.NewTaskRepository(gormDB)

	userID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec(`UPDATE "tasks" SET .* WHERE id = .* AND user_id = .*`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectCommit()

	// Act
	task, err := taskRepo.ToggleComplete(context.Background(), userID, 42)

	// Assert
	assert.ErrorIs(t, err, repository.ErrTaskNotFound)
	assert.Nil(t, task)
	assert.NoError(t, mock.ExpectationsWereMet())
}
