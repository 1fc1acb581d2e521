package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
)

// TaskRepository определяет интерфейс для работы с задачами
type TaskRepository interface {
	Create(ctx context.Context, t model.Task) (model.Task, error)
	CreateMany(ctx context.Context, tasks []model.Task) error
	Get(ctx context.Context, id uuid.UUID) (model.Task, error)
	List(ctx context.Context, filter model.TaskFilter, limit, skip int) ([]model.Task, error)
	Count(ctx context.Context, filter model.TaskFilter) (int, error)
	Update(ctx context.Context, t model.Task) (model.Task, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// UserRepository определяет интерфейс для работы с пользователями
type UserRepository interface {
	Create(ctx context.Context, u model.User) (model.User, error)
	Get(ctx context.Context, id uuid.UUID) (model.User, error)
	GetByEmail(ctx context.Context, email string) (model.User, error)
	Exists(ctx context.Context, id uuid.UUID) (bool, error)
	List(ctx context.Context, filter model.UserFilter, limit, skip int) ([]model.User, error)
	Count(ctx context.Context, filter model.UserFilter) (int, error)
	Update(ctx context.Context, u model.User) (model.User, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
