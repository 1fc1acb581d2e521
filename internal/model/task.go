package model

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusStarted   Status = "started"
	StatusCompleted Status = "completed"
	StatusCanceled  Status = "canceled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusStarted, StatusCompleted, StatusCanceled:
		return true
	}
	return false
}

// Recurrence - периодичность повторяющейся задачи
type Recurrence string

const (
	RecurrenceDaily   Recurrence = "daily"
	RecurrenceWeekly  Recurrence = "weekly"
	RecurrenceMonthly Recurrence = "monthly"
	RecurrenceAnnual  Recurrence = "annual"
)

func (r Recurrence) Valid() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceAnnual:
		return true
	}
	return false
}

type Task struct {
	ID                 uuid.UUID   `json:"id"`
	Title              string      `json:"title"`
	Description        string      `json:"description"`
	SuggestedStartDate time.Time   `json:"suggestedStartDate"`
	CompletionDeadline time.Time   `json:"completionDeadline"`
	CompletionDate     *time.Time  `json:"completionDate,omitempty"`
	Status             Status      `json:"status"`
	Appellant          bool        `json:"appellant"`
	Recurrence         *Recurrence `json:"recurrence,omitempty"`
	RecurrenceEndDate  *time.Time  `json:"recurrenceEndDate,omitempty"`
	UserID             uuid.UUID   `json:"user"`
	ParentTaskID       *uuid.UUID  `json:"parentTask,omitempty"`
}

// DateRange - границы по дате, обе стороны включительно, любая может отсутствовать
type DateRange struct {
	From *time.Time
	To   *time.Time
}

// TaskFilter - нормализованный фильтр для выборки задач.
// Тип поля кодирует вид предиката: *string - регистронезависимое
// вхождение подстроки, []uuid.UUID - совпадение с одним из,
// *DateRange - диапазон по дате.
type TaskFilter struct {
	TitleContains       *string
	DescriptionContains *string
	StatusContains      *string
	RecurrenceContains  *string
	Users               []uuid.UUID
	SuggestedStartDate  *DateRange
	CompletionDeadline  *DateRange
	CompletionDate      *DateRange
}

// Pagination - номер страницы и лимит, Skip всегда (Page-1)*Limit
type Pagination struct {
	Page  int
	Limit int
	Skip  int
}

type TaskPage struct {
	Data       []Task `json:"data"`
	Page       int    `json:"page"`
	Limit      int    `json:"limit"`
	Total      int    `json:"total"`
	TotalPages int    `json:"totalPages"`
}
