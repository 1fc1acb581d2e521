package service

import (
	"fmt"
	"strconv"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
)

const (
	defaultPage  = 1
	defaultLimit = 10
)

// ResolvePagination нормализует page/limit. Отсутствующий параметр получает
// значение по умолчанию, а переданный обязан быть положительным целым.
// Верхней границы на limit нет.
func ResolvePagination(rawPage, rawLimit string) (model.Pagination, error) {
	page, err := positiveInt(rawPage, defaultPage)
	if err != nil {
		return model.Pagination{}, fmt.Errorf("%w: page and limit must be positive integers", ErrValidation)
	}

	limit, err := positiveInt(rawLimit, defaultLimit)
	if err != nil {
		return model.Pagination{}, fmt.Errorf("%w: page and limit must be positive integers", ErrValidation)
	}

	return model.Pagination{
		Page:  page,
		Limit: limit,
		Skip:  (page - 1) * limit,
	}, nil
}

func positiveInt(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("value %q is not a positive integer", raw)
	}
	return n, nil
}
