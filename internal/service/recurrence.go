package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
)

// expandSeries генерирует серию дочерних задач для только что созданной
// повторяющейся задачи. Если данные рекуррентности невалидны, базовая
// задача уже лежит в БД, поэтому сначала компенсирующее удаление,
// потом ошибка наружу.
func (s *TaskService) expandSeries(ctx context.Context, base model.Task) error {
	if base.RecurrenceEndDate == nil {
		return s.rollbackBase(ctx, base.ID,
			fmt.Errorf("%w: cannot create a recurring task without recurrenceEndDate", ErrValidation))
	}

	var cadence model.Recurrence
	if base.Recurrence != nil {
		cadence = *base.Recurrence
	}
	if !cadence.Valid() {
		return s.rollbackBase(ctx, base.ID,
			fmt.Errorf("%w: recurrence %q does not exist", ErrValidation, string(cadence)))
	}

	end := dateOnly(*base.RecurrenceEndDate)
	parentID := base.ID

	var children []model.Task
	nextStart := base.SuggestedStartDate
	nextDeadline := base.CompletionDeadline

	for {
		newStart := advance(cadence, nextStart)
		newDeadline := advance(cadence, nextDeadline)

		// Сравнение только по календарной дате: экземпляр может попасть
		// ровно на дату окончания, но не после нее
		if dateOnly(newStart).After(end) {
			break
		}

		children = append(children, model.Task{
			ID:                 uuid.New(),
			Title:              base.Title,
			Description:        base.Description,
			SuggestedStartDate: newStart,
			CompletionDeadline: newDeadline,
			Status:             base.Status,
			Appellant:          false,
			UserID:             base.UserID,
			ParentTaskID:       &parentID,
		})

		nextStart = newStart
		nextDeadline = newDeadline
	}

	if len(children) > 0 {
		return s.tasks.CreateMany(ctx, children)
	}
	return nil
}

// rollbackBase удаляет базовую задачу и возвращает исходную ошибку валидации
func (s *TaskService) rollbackBase(ctx context.Context, id uuid.UUID, verr error) error {
	if err := s.tasks.Delete(ctx, id); err != nil {
		return err
	}
	return verr
}

// advance сдвигает дату ровно на одну единицу периодичности. Для monthly и
// annual используется AddDate с его переносом через конец месяца
// (31 января + месяц уходит в март), без нормализации к концу месяца.
func advance(cadence model.Recurrence, t time.Time) time.Time {
	switch cadence {
	case model.RecurrenceDaily:
		return t.AddDate(0, 0, 1)
	case model.RecurrenceWeekly:
		return t.AddDate(0, 0, 7)
	case model.RecurrenceMonthly:
		return t.AddDate(0, 1, 0)
	case model.RecurrenceAnnual:
		return t.AddDate(1, 0, 0)
	}
	// Периодичность проверена до входа в цикл, сюда попадать не должны
	panic(fmt.Sprintf("unhandled recurrence %q", cadence))
}

func dateOnly(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}
