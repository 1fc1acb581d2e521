package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-planner-api/internal/repo"
	"github.com/BuzzLyutic/task-planner-api/internal/service"
	"github.com/BuzzLyutic/task-planner-api/pkg/respond"
)

// writeError транслирует ошибки ядра в статус-коды:
// валидация - 400, не найдено - 404, конфликт - 409, остальное - 500
func writeError(logger *zap.Logger, w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, service.ErrValidation):
		respond.Error(w, r, http.StatusBadRequest, err.Error())
	case errors.Is(err, repo.ErrorNotFound):
		respond.Error(w, r, http.StatusNotFound, err.Error())
	case errors.Is(err, repo.ErrorConflict):
		respond.Error(w, r, http.StatusConflict, err.Error())
	default:
		logger.Error("internal error", zap.Error(err))
		respond.Error(w, r, http.StatusInternalServerError, "internal error")
	}
}

func parseID(raw string) (uuid.UUID, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, fmt.Errorf("%w: id %q is invalid", service.ErrValidation, raw)
	}
	return id, nil
}
