package repo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorConflict = errors.New("conflict")
)

const taskColumns = `id, title, description, suggested_start_date, completion_deadline,
		completion_date, status, appellant, recurrence, recurrence_end_date, user_id, parent_task_id`

type TaskRepo struct { // Репозиторий для работы непосредственно с БД
	pool *pgxpool.Pool
}

func NewTaskRepo(pool *pgxpool.Pool) *TaskRepo {
	return &TaskRepo{
		pool: pool,
	}
}

func (r *TaskRepo) Create(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		INSERT INTO tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		RETURNING `+taskColumns+`
	`, t.ID, t.Title, t.Description, t.SuggestedStartDate, t.CompletionDeadline,
		t.CompletionDate, t.Status, t.Appellant, t.Recurrence, t.RecurrenceEndDate,
		t.UserID, t.ParentTaskID)

	created, err := scanTask(row)
	return created, mapError(err)
}

// CreateMany вставляет сгенерированную серию одним батчем через COPY
func (r *TaskRepo) CreateMany(ctx context.Context, tasks []model.Task) error {
	rows := make([][]any, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []any{
			t.ID, t.Title, t.Description, t.SuggestedStartDate, t.CompletionDeadline,
			t.CompletionDate, t.Status, t.Appellant, t.Recurrence, t.RecurrenceEndDate,
			t.UserID, t.ParentTaskID,
		})
	}

	_, err := r.pool.CopyFrom(ctx,
		pgx.Identifier{"tasks"},
		[]string{"id", "title", "description", "suggested_start_date", "completion_deadline",
			"completion_date", "status", "appellant", "recurrence", "recurrence_end_date",
			"user_id", "parent_task_id"},
		pgx.CopyFromRows(rows),
	)
	return mapError(err)
}

func (r *TaskRepo) Get(ctx context.Context, id uuid.UUID) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+taskColumns+`
		FROM tasks
		WHERE id = $1
	`, id)

	t, err := scanTask(row)
	return t, mapError(err)
}

func (r *TaskRepo) List(ctx context.Context, filter model.TaskFilter, limit, skip int) ([]model.Task, error) {
	where, args := buildTaskWhere(filter)
	args = append(args, limit, skip)

	query := fmt.Sprintf(`
		SELECT `+taskColumns+`
		FROM tasks
		%s
		ORDER BY suggested_start_date, id
		LIMIT $%d OFFSET $%d
	`, where, len(args)-1, len(args))

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]model.Task, 0, limit)
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (r *TaskRepo) Count(ctx context.Context, filter model.TaskFilter) (int, error) {
	where, args := buildTaskWhere(filter)

	var total int
	err := r.pool.QueryRow(ctx, "SELECT count(*) FROM tasks "+where, args...).Scan(&total)
	return total, err
}

func (r *TaskRepo) Update(ctx context.Context, t model.Task) (model.Task, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE tasks
		SET title = $2, description = $3, suggested_start_date = $4, completion_deadline = $5,
			completion_date = $6, status = $7, appellant = $8, recurrence = $9,
			recurrence_end_date = $10, user_id = $11, parent_task_id = $12
		WHERE id = $1
		RETURNING `+taskColumns+`
	`, t.ID, t.Title, t.Description, t.SuggestedStartDate, t.CompletionDeadline,
		t.CompletionDate, t.Status, t.Appellant, t.Recurrence, t.RecurrenceEndDate,
		t.UserID, t.ParentTaskID)

	updated, err := scanTask(row)
	return updated, mapError(err)
}

func (r *TaskRepo) Delete(ctx context.Context, id uuid.UUID) error {
	cmd, err := r.pool.Exec(ctx, "DELETE FROM tasks WHERE id = $1", id)
	if err != nil {
		return mapError(err)
	}
	if cmd.RowsAffected() == 0 {
		return ErrorNotFound
	}
	return nil
}

// buildTaskWhere собирает WHERE из дескриптора фильтра.
// Подстрочные предикаты транслируются в ILIKE, списки пользователей
// в = ANY, диапазоны дат в >= / <= (обе границы включительно).
func buildTaskWhere(filter model.TaskFilter) (string, []any) {
	var conds []string
	var args []any

	contains := func(column string, value *string) {
		if value == nil {
			return
		}
		args = append(args, *value)
		conds = append(conds, fmt.Sprintf("%s ILIKE '%%' || $%d || '%%'", column, len(args)))
	}

	contains("title", filter.TitleContains)
	contains("description", filter.DescriptionContains)
	contains("status", filter.StatusContains)
	contains("recurrence", filter.RecurrenceContains)

	if len(filter.Users) > 0 {
		args = append(args, filter.Users)
		conds = append(conds, fmt.Sprintf("user_id = ANY($%d)", len(args)))
	}

	dateRange := func(column string, r *model.DateRange) {
		if r == nil {
			return
		}
		if r.From != nil {
			args = append(args, *r.From)
			conds = append(conds, fmt.Sprintf("%s >= $%d", column, len(args)))
		}
		if r.To != nil {
			args = append(args, *r.To)
			conds = append(conds, fmt.Sprintf("%s <= $%d", column, len(args)))
		}
	}

	dateRange("suggested_start_date", filter.SuggestedStartDate)
	dateRange("completion_deadline", filter.CompletionDeadline)
	dateRange("completion_date", filter.CompletionDate)

	if len(conds) == 0 {
		return "", args
	}
	return "WHERE " + strings.Join(conds, " AND "), args
}

func scanTask(row pgx.Row) (model.Task, error) {
	var t model.Task
	var recurrence *string
	err := row.Scan(
		&t.ID, &t.Title, &t.Description, &t.SuggestedStartDate, &t.CompletionDeadline,
		&t.CompletionDate, &t.Status, &t.Appellant, &recurrence, &t.RecurrenceEndDate,
		&t.UserID, &t.ParentTaskID,
	)
	if err != nil {
		return t, err
	}
	if recurrence != nil {
		r := model.Recurrence(*recurrence)
		t.Recurrence = &r
	}
	return t, nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrorNotFound
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23505": // unique_violation
			return ErrorConflict
		case "23503": // foreign_key_violation - ссылка на несуществующую запись
			return ErrorNotFound
		}
	}
	return err
}
