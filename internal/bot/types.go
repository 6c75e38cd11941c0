package bot

import (
	"context"
	"errors"
	"time"
)

// Task types understood by the execution dispatch. Unknown types fall through
// to a generic completion.
const (
	TaskPermitProcessing  = "permit_processing"
	TaskProjectAutomation = "project_automation"
	TaskWorkflowExecution = "workflow_execution"
)

// Task statuses. Transitions are one-directional:
// pending -> running -> completed | failed; a failed task may run again,
// a completed task may not.
const (
	StatusPending   = "pending"
	StatusRunning   = "running"
	StatusCompleted = "completed"
	StatusFailed    = "failed"
)

var (
	ErrNotFound         = errors.New("bot: not found")
	ErrAlreadyCompleted = errors.New("bot: task already completed")
	ErrInvalidInput     = errors.New("bot: invalid input")
)

// Task is a unit of asynchronous automation work.
type Task struct {
	ID           string         `json:"id"`
	Type         string         `json:"task_type"`
	Status       string         `json:"status"`
	Input        map[string]any `json:"input_data,omitempty"`
	Output       map[string]any `json:"output_data,omitempty"`
	StartedAt    *time.Time     `json:"started_at,omitempty"`
	CompletedAt  *time.Time     `json:"completed_at,omitempty"`
	ErrorMessage string         `json:"error_message,omitempty"`
	CreatedBy    string         `json:"created_by"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

// Workflow is a reusable automation template. Its counters are advisory
// bookkeeping with no enforced linkage to task outcomes.
type Workflow struct {
	ID           string           `json:"id"`
	Name         string           `json:"name"`
	Description  string           `json:"description,omitempty"`
	Type         string           `json:"workflow_type"`
	Steps        []map[string]any `json:"steps"`
	Active       bool             `json:"is_active"`
	SuccessCount int              `json:"success_count"`
	FailureCount int              `json:"failure_count"`
	CreatedAt    time.Time        `json:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at"`
}

// StatusReport aggregates task and workflow counters for the public status
// endpoint.
type StatusReport struct {
	Status          string `json:"status"`
	Message         string `json:"message"`
	ActiveWorkflows int    `json:"active_workflows"`
	TotalTasks      int    `json:"total_tasks"`
	PendingTasks    int    `json:"pending_tasks"`
	RunningTasks    int    `json:"running_tasks"`
	CompletedTasks  int    `json:"completed_tasks"`
	FailedTasks     int    `json:"failed_tasks"`
}

// TaskStore persists tasks.
type TaskStore interface {
	Create(ctx context.Context, t *Task) error
	Find(ctx context.Context, id string) (*Task, error)
	// List returns tasks, optionally filtered by status; limit caps the
	// result size (0 means the store default) and offset skips that many
	// matching rows.
	List(ctx context.Context, status string, limit, offset int) ([]*Task, error)
	Update(ctx context.Context, t *Task) error
	CountByStatus(ctx context.Context) (map[string]int, error)
}

// WorkflowStore persists workflows.
type WorkflowStore interface {
	Create(ctx context.Context, w *Workflow) error
	Find(ctx context.Context, id string) (*Workflow, error)
	List(ctx context.Context, activeOnly bool, limit, offset int) ([]*Workflow, error)
	// IncrementCounters bumps exactly one of the outcome counters; counters
	// never decrease.
	IncrementCounters(ctx context.Context, id string, success bool) error
	CountActive(ctx context.Context) (int, error)
}
