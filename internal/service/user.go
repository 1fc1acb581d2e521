package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/sync/errgroup"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
	"github.com/BuzzLyutic/task-planner-api/internal/repo"
)

const maxEmailLength = 100

type UserService struct {
	users repo.UserRepository
}

func NewUserService(users repo.UserRepository) *UserService {
	return &UserService{users: users}
}

// Register создает пользователя с bcrypt-хэшем пароля
func (s *UserService) Register(ctx context.Context, email, password string) (model.User, error) {
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}
	if password == "" {
		return model.User{}, fmt.Errorf("%w: password is required", ErrValidation)
	}

	if _, err := s.users.GetByEmail(ctx, email); err == nil {
		return model.User{}, fmt.Errorf("email %q is already registered: %w", email, repo.ErrorConflict)
	} else if !errors.Is(err, repo.ErrorNotFound) {
		return model.User{}, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return model.User{}, err
	}

	return s.users.Create(ctx, model.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
	})
}

func (s *UserService) Get(ctx context.Context, id uuid.UUID) (model.User, error) {
	return s.users.Get(ctx, id)
}

func (s *UserService) List(ctx context.Context, filter model.UserFilter, pg model.Pagination) (model.UserPage, error) {
	var (
		users []model.User
		total int
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		users, err = s.users.List(gctx, filter, pg.Limit, pg.Skip)
		return err
	})
	g.Go(func() error {
		var err error
		total, err = s.users.Count(gctx, filter)
		return err
	})
	if err := g.Wait(); err != nil {
		return model.UserPage{}, err
	}

	return model.UserPage{
		Data:       users,
		Page:       pg.Page,
		Limit:      pg.Limit,
		Total:      total,
		TotalPages: (total + pg.Limit - 1) / pg.Limit,
	}, nil
}

// Update меняет email и, если передан новый пароль, перехэширует его
func (s *UserService) Update(ctx context.Context, id uuid.UUID, email, password string) (model.User, error) {
	if err := validateEmail(email); err != nil {
		return model.User{}, err
	}

	if existing, err := s.users.GetByEmail(ctx, email); err == nil && existing.ID != id {
		return model.User{}, fmt.Errorf("email %q is already registered: %w", email, repo.ErrorConflict)
	} else if err != nil && !errors.Is(err, repo.ErrorNotFound) {
		return model.User{}, err
	}

	current, err := s.users.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}

	current.Email = email
	if password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return model.User{}, err
		}
		current.PasswordHash = string(hash)
	}

	return s.users.Update(ctx, current)
}

func (s *UserService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.users.Delete(ctx, id)
}

func validateEmail(email string) error {
	if strings.TrimSpace(email) == "" {
		return fmt.Errorf("%w: email is required", ErrValidation)
	}
	if utf8.RuneCountInString(email) > maxEmailLength {
		return fmt.Errorf("%w: email must be at most %d characters", ErrValidation, maxEmailLength)
	}
	if !strings.Contains(email, "@") {
		return fmt.Errorf("%w: email %q is invalid", ErrValidation, email)
	}
	return nil
}
