package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-planner-api/internal/model"
	"github.com/BuzzLyutic/task-planner-api/internal/service"
	"github.com/BuzzLyutic/task-planner-api/pkg/respond"
)

type TaskHandler struct {
	service *service.TaskService
	logger  *zap.Logger
}

func NewTaskHandler(srv *service.TaskService, logger *zap.Logger) *TaskHandler {
	return &TaskHandler{
		service: srv,
		logger:  logger,
	}
}

// taskRequest - тело create/update. Идентификаторы приходят строками,
// чтобы невалидное значение вернуть клиенту в ошибке как есть
type taskRequest struct {
	Title              string     `json:"title"`
	Description        string     `json:"description"`
	SuggestedStartDate *time.Time `json:"suggestedStartDate"`
	CompletionDeadline *time.Time `json:"completionDeadline"`
	CompletionDate     *time.Time `json:"completionDate"`
	Status             string     `json:"status"`
	Appellant          bool       `json:"appellant"`
	Recurrence         *string    `json:"recurrence"`
	RecurrenceEndDate  *time.Time `json:"recurrenceEndDate"`
	User               string     `json:"user"`
	ParentTask         *string    `json:"parentTask"`
}

func (req taskRequest) toModel() (model.Task, error) {
	t := model.Task{
		Title:             req.Title,
		Description:       req.Description,
		CompletionDate:    req.CompletionDate,
		Status:            model.Status(req.Status),
		Appellant:         req.Appellant,
		RecurrenceEndDate: req.RecurrenceEndDate,
	}

	if req.SuggestedStartDate != nil {
		t.SuggestedStartDate = *req.SuggestedStartDate
	}
	if req.CompletionDeadline != nil {
		t.CompletionDeadline = *req.CompletionDeadline
	}
	if req.Recurrence != nil {
		r := model.Recurrence(*req.Recurrence)
		t.Recurrence = &r
	}

	if req.User != "" {
		userID, err := parseID(req.User)
		if err != nil {
			return t, err
		}
		t.UserID = userID
	}
	if req.ParentTask != nil {
		parentID, err := parseID(*req.ParentTask)
		if err != nil {
			return t, err
		}
		t.ParentTaskID = &parentID
	}

	return t, nil
}

func (h *TaskHandler) Create(w http.ResponseWriter, r *http.Request) {
	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.logger.Error("failed to decode json", zap.Error(err))
		respond.Error(w, r, http.StatusBadRequest, fmt.Sprintf("invalid json: %v", err))
		return
	}

	t, err := req.toModel()
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	created, err := h.service.Create(r.Context(), t)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	// Тело не возвращаем, дочерние задачи клиенту не отдаются
	w.Header().Set("Location", fmt.Sprintf("/api/tasks/%s", created.ID))
	w.WriteHeader(http.StatusCreated)
}

func (h *TaskHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	task, err := h.service.Get(r.Context(), id)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	filter, err := service.BuildTaskFilter(query)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	pg, err := service.ResolvePagination(query.Get("page"), query.Get("limit"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	page, err := h.service.List(r.Context(), filter, pg)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, page)
}

func (h *TaskHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	if r.ContentLength == 0 {
		respond.Error(w, r, http.StatusBadRequest, "empty request body")
		return
	}

	var req taskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, r, http.StatusBadRequest, "invalid json")
		return
	}

	t, err := req.toModel()
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	t.ID = id

	task, err := h.service.Update(r.Context(), t)
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.JSON(w, r, http.StatusOK, task)
}

func (h *TaskHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "id"))
	if err != nil {
		h.handleErrors(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		h.handleErrors(w, r, err)
		return
	}
	respond.NoContent(w, r)
}

func (h *TaskHandler) handleErrors(w http.ResponseWriter, r *http.Request, err error) {
	writeError(h.logger, w, r, err)
}
