package httpapi

import (
	"errors"
	"net/http"
	"strings"

	"bauliver.org/internal/audit"
	"bauliver.org/internal/auth"
	"bauliver.org/internal/bot"
)

const maxListLimit = 100

type taskCreateRequest struct {
	TaskType string         `json:"task_type"`
	Input    map[string]any `json:"input_data"`
}

type workflowCreateRequest struct {
	Name         string           `json:"name"`
	Description  string           `json:"description"`
	WorkflowType string           `json:"workflow_type"`
	Steps        []map[string]any `json:"steps"`
}

func (a *API) handleBotStatus(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	report, err := a.bot.Status(r.Context())
	if err != nil {
		writeError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (a *API) handleTasksCollection(w http.ResponseWriter, r *http.Request) {
	actor, ok := auth.UserFromContext(r.Context())
	if !ok {
		writeError(w, r, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 50)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
			return
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		skip, err := parseNonNegativeInt(r.URL.Query().Get("skip"), 0)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "skip "+err.Error())
			return
		}
		tasks, err := a.bot.ListTasks(r.Context(), r.URL.Query().Get("status"), limit, skip)
		if err != nil {
			handleBotError(w, r, err)
			return
		}
		if tasks == nil {
			tasks = []*bot.Task{}
		}
		writeJSON(w, http.StatusOK, tasks)
	case http.MethodPost:
		var req taskCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
		task, err := a.bot.CreateTask(r.Context(), actor.ID, req.TaskType, req.Input)
		if err != nil {
			handleBotError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "bot.task_created", map[string]any{
			"task_id":   task.ID,
			"task_type": task.Type,
		})
		writeJSON(w, http.StatusOK, task)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleTaskResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	rest := strings.TrimPrefix(r.URL.Path, "/bot/tasks/")
	id, action, hasAction := strings.Cut(rest, "/")
	if id == "" {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}

	switch {
	case !hasAction:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, r, http.MethodGet)
			return
		}
		task, err := a.bot.GetTask(r.Context(), id)
		if err != nil {
			handleBotError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, task)
	case action == "execute":
		if r.Method != http.MethodPost {
			methodNotAllowed(w, r, http.MethodPost)
			return
		}
		task, err := a.bot.ExecuteTask(r.Context(), id)
		if err != nil {
			handleBotError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "bot.task_executed", map[string]any{
			"task_id": task.ID,
			"status":  task.Status,
		})
		writeJSON(w, http.StatusOK, map[string]any{
			"message": "Task execution completed",
			"task_id": task.ID,
			"status":  task.Status,
			"output":  task.Output,
		})
	default:
		writeError(w, r, http.StatusNotFound, "resource not found")
	}
}

func (a *API) handleWorkflowsCollection(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	switch r.Method {
	case http.MethodGet:
		activeOnly := true
		if raw := r.URL.Query().Get("active_only"); raw != "" {
			activeOnly = raw == "true" || raw == "1"
		}
		limit, err := parsePositiveInt(r.URL.Query().Get("limit"), 50)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "limit "+err.Error())
			return
		}
		if limit > maxListLimit {
			limit = maxListLimit
		}
		skip, err := parseNonNegativeInt(r.URL.Query().Get("skip"), 0)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, "skip "+err.Error())
			return
		}
		workflows, err := a.bot.ListWorkflows(r.Context(), activeOnly, limit, skip)
		if err != nil {
			handleBotError(w, r, err)
			return
		}
		if workflows == nil {
			workflows = []*bot.Workflow{}
		}
		writeJSON(w, http.StatusOK, workflows)
	case http.MethodPost:
		var req workflowCreateRequest
		if err := decodeJSON(r, &req); err != nil {
			writeError(w, r, http.StatusBadRequest, "invalid request body")
			return
		}
		wf, err := a.bot.CreateWorkflow(r.Context(), req.Name, req.Description, req.WorkflowType, req.Steps)
		if err != nil {
			handleBotError(w, r, err)
			return
		}
		audit.LogEvent(r.Context(), "bot.workflow_created", map[string]any{
			"workflow_id": wf.ID,
		})
		writeJSON(w, http.StatusOK, wf)
	default:
		methodNotAllowed(w, r, http.MethodGet, http.MethodPost)
	}
}

func (a *API) handleWorkflowResource(w http.ResponseWriter, r *http.Request) {
	if _, ok := auth.UserFromContext(r.Context()); !ok {
		writeError(w, r, http.StatusUnauthorized, "could not validate credentials")
		return
	}

	id := strings.TrimPrefix(r.URL.Path, "/bot/workflows/")
	if id == "" || strings.Contains(id, "/") {
		writeError(w, r, http.StatusNotFound, "resource not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, r, http.MethodGet)
		return
	}
	wf, err := a.bot.GetWorkflow(r.Context(), id)
	if err != nil {
		handleBotError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, wf)
}

func handleBotError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, bot.ErrNotFound):
		writeError(w, r, http.StatusNotFound, "not found")
	case errors.Is(err, bot.ErrAlreadyCompleted):
		writeError(w, r, http.StatusBadRequest, "task already completed")
	case errors.Is(err, bot.ErrInvalidInput):
		writeError(w, r, http.StatusBadRequest, err.Error())
	default:
		writeError(w, r, http.StatusInternalServerError, "internal error")
	}
}
