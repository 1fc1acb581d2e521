package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
	"github.com/BuzzLyutic/task-planner-api/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
)

const maxDescriptionLength = 500

type TaskService struct {
	tasks    repo.TaskRepository
	users    repo.UserRepository
	tzOffset time.Duration // смещение для дат по умолчанию
}

func NewTaskService(tasks repo.TaskRepository, users repo.UserRepository, tzOffset time.Duration) *TaskService {
	return &TaskService{
		tasks:    tasks,
		users:    users,
		tzOffset: tzOffset,
	}
}

// Create сохраняет базовую задачу и, если она помечена как повторяющаяся,
// синхронно разворачивает серию. Ошибки разворачивания приходят уже после
// компенсирующего удаления базовой задачи.
func (s *TaskService) Create(ctx context.Context, t model.Task) (model.Task, error) {
	if err := s.validate(t); err != nil {
		return t, err
	}

	if err := s.checkUserExists(ctx, t.UserID); err != nil {
		return t, err
	}

	t.ID = uuid.New()
	now := time.Now().Add(s.tzOffset)
	if t.SuggestedStartDate.IsZero() {
		t.SuggestedStartDate = now
	}
	if t.CompletionDeadline.IsZero() {
		t.CompletionDeadline = now
	}

	created, err := s.tasks.Create(ctx, t)
	if err != nil {
		return created, err
	}

	if created.Appellant {
		if err := s.expandSeries(ctx, created); err != nil {
			return created, err
		}
	}

	return created, nil
}

func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (model.Task, error) {
	return s.tasks.Get(ctx, id)
}

// List проверяет пользователей из фильтра, после чего страница и общее
// количество выбираются параллельно
func (s *TaskService) List(ctx context.Context, filter model.TaskFilter, pg model.Pagination) (model.TaskPage, error) {
	for _, userID := range filter.Users {
		if err := s.checkUserExists(ctx, userID); err != nil {
			return model.TaskPage{}, err
		}
	}

	var (
		tasks []model.Task
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		tasks, err = s.tasks.List(gctx, filter, pg.Limit, pg.Skip)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.tasks.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.TaskPage{}, err
	}

	return model.TaskPage{
		Data:       tasks,
		Page:       pg.Page,
		Limit:      pg.Limit,
		Total:      total,
		TotalPages: (total + pg.Limit - 1) / pg.Limit,
	}, nil
}

// Update - полная замена изменяемых полей, серия заново не разворачивается
func (s *TaskService) Update(ctx context.Context, t model.Task) (model.Task, error) {
	if err := s.validate(t); err != nil {
		return t, err
	}
	return s.tasks.Update(ctx, t)
}

func (s *TaskService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.tasks.Delete(ctx, id)
}

func (s *TaskService) checkUserExists(ctx context.Context, id uuid.UUID) error {
	exists, err := s.users.Exists(ctx, id)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("user with id %s not found: %w", id, repo.ErrorNotFound)
	}
	return nil
}

func (s *TaskService) validate(t model.Task) error {
	if strings.TrimSpace(t.Title) == "" {
		return fmt.Errorf("%w: title is required", ErrValidation)
	}
	if strings.TrimSpace(t.Description) == "" {
		return fmt.Errorf("%w: description is required", ErrValidation)
	}
	// Лимит считаем в символах, не в байтах
	if utf8.RuneCountInString(t.Description) > maxDescriptionLength {
		return fmt.Errorf("%w: description must be at most %d characters", ErrValidation, maxDescriptionLength)
	}
	if !t.Status.Valid() {
		return fmt.Errorf("%w: status %q is invalid", ErrValidation, string(t.Status))
	}
	if t.UserID == uuid.Nil {
		return fmt.Errorf("%w: user is required", ErrValidation)
	}
	return nil
}
