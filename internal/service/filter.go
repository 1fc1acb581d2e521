package service

import (
	"fmt"
	"net/url"
	"time"

	"github.com/google/uuid"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
)

// Форматы, которые принимаем в параметрах ...From/...To
var dateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// BuildTaskFilter превращает сырые query-параметры в дескриптор фильтра.
// Текстовые поля заворачиваются в подстрочный предикат, user сопоставляется
// по точному равенству идентификатора, пары <поле>From/<поле>To собираются
// в диапазон. Пустые и нераспознанные параметры отбрасываются.
func BuildTaskFilter(params url.Values) (model.TaskFilter, error) {
	var f model.TaskFilter

	if v := params.Get("title"); v != "" {
		f.TitleContains = &v
	}
	if v := params.Get("description"); v != "" {
		f.DescriptionContains = &v
	}
	if v := params.Get("status"); v != "" {
		f.StatusContains = &v
	}
	if v := params.Get("recurrence"); v != "" {
		f.RecurrenceContains = &v
	}

	for _, raw := range params["user"] {
		if raw == "" {
			continue
		}
		id, err := uuid.Parse(raw)
		if err != nil {
			return model.TaskFilter{}, fmt.Errorf("%w: id %q is invalid", ErrValidation, raw)
		}
		f.Users = append(f.Users, id)
	}

	var err error
	if f.SuggestedStartDate, err = buildDateRange(params, "suggestedStartDate"); err != nil {
		return model.TaskFilter{}, err
	}
	if f.CompletionDeadline, err = buildDateRange(params, "completionDeadline"); err != nil {
		return model.TaskFilter{}, err
	}
	if f.CompletionDate, err = buildDateRange(params, "completionDate"); err != nil {
		return model.TaskFilter{}, err
	}

	return f, nil
}

// BuildUserFilter - фильтр списка пользователей, только подстрока по email
func BuildUserFilter(params url.Values) model.UserFilter {
	var f model.UserFilter
	if v := params.Get("email"); v != "" {
		f.EmailContains = &v
	}
	return f
}

func buildDateRange(params url.Values, field string) (*model.DateRange, error) {
	from := params.Get(field + "From")
	to := params.Get(field + "To")
	if from == "" && to == "" {
		return nil, nil
	}

	var r model.DateRange
	if from != "" {
		t, err := parseDateTime(from)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date format: %sFrom", ErrValidation, field)
		}
		r.From = &t
	}
	if to != "" {
		t, err := parseDateTime(to)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid date format: %sTo", ErrValidation, field)
		}
		r.To = &t
	}
	return &r, nil
}

func parseDateTime(raw string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}
