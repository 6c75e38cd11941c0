package bot

import (
	"context"
	"strings"
	"time"

	"bauliver.org/internal/ids"
	"bauliver.org/internal/obs"
	"bauliver.org/internal/stream"
)

// Service drives the task state machine and workflow bookkeeping. Execution
// runs inline within the calling request; there is no background scheduler.
type Service struct {
	tasks     TaskStore
	workflows WorkflowStore
	events    *stream.Stream
	now       func() time.Time
}

// Option configures Service behavior.
type Option func(*Service)

// WithEventStream publishes task transitions to the given stream.
func WithEventStream(s *stream.Stream) Option {
	return func(svc *Service) { svc.events = s }
}

// WithClock overrides the time source (useful for tests).
func WithClock(fn func() time.Time) Option {
	return func(svc *Service) {
		if fn != nil {
			svc.now = fn
		}
	}
}

// NewService constructs a bot service.
func NewService(tasks TaskStore, workflows WorkflowStore, opts ...Option) *Service {
	svc := &Service{
		tasks:     tasks,
		workflows: workflows,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// CreateTask registers a pending task created by the given user.
func (s *Service) CreateTask(ctx context.Context, createdBy, taskType string, input map[string]any) (*Task, error) {
	taskType = strings.TrimSpace(taskType)
	if taskType == "" {
		return nil, ErrInvalidInput
	}
	now := s.now().UTC()
	t := &Task{
		ID:        ids.New(),
		Type:      taskType,
		Status:    StatusPending,
		Input:     input,
		CreatedBy: createdBy,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.tasks.Create(ctx, t); err != nil {
		return nil, err
	}
	s.publish(t)
	return t, nil
}

// ListTasks returns tasks, optionally filtered by status, skipping offset
// rows for pagination.
func (s *Service) ListTasks(ctx context.Context, status string, limit, offset int) ([]*Task, error) {
	return s.tasks.List(ctx, strings.TrimSpace(status), limit, offset)
}

// GetTask returns a task by id.
func (s *Service) GetTask(ctx context.Context, id string) (*Task, error) {
	return s.tasks.Find(ctx, id)
}

// ExecuteTask drives a task through the state machine: pending|failed ->
// running -> completed|failed. A completed task may not run again; its output
// is never mutated. Internal execution faults are captured and downgraded to
// a failed status; the returned error covers only lookup and persistence
// problems.
func (s *Service) ExecuteTask(ctx context.Context, id string) (*Task, error) {
	t, err := s.tasks.Find(ctx, id)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusCompleted {
		return nil, ErrAlreadyCompleted
	}

	started := s.now().UTC()
	t.Status = StatusRunning
	t.StartedAt = &started
	t.ErrorMessage = ""
	t.UpdatedAt = started
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	s.publish(t)

	output, execErr := runTask(t.Type, t.Input)

	finished := s.now().UTC()
	t.CompletedAt = &finished
	t.UpdatedAt = finished
	if execErr != nil {
		t.Status = StatusFailed
		t.ErrorMessage = execErr.Error()
	} else {
		t.Status = StatusCompleted
		t.Output = output
	}
	if err := s.tasks.Update(ctx, t); err != nil {
		return nil, err
	}
	obs.ObserveTaskExecution(t.Type, t.Status)
	s.publish(t)
	return t, nil
}

// CreateWorkflow registers a reusable automation template, active by default.
func (s *Service) CreateWorkflow(ctx context.Context, name, description, workflowType string, steps []map[string]any) (*Workflow, error) {
	name = strings.TrimSpace(name)
	workflowType = strings.TrimSpace(workflowType)
	if name == "" || workflowType == "" {
		return nil, ErrInvalidInput
	}
	if steps == nil {
		steps = []map[string]any{}
	}
	now := s.now().UTC()
	w := &Workflow{
		ID:          ids.New(),
		Name:        name,
		Description: strings.TrimSpace(description),
		Type:        workflowType,
		Steps:       steps,
		Active:      true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.workflows.Create(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ListWorkflows returns workflows, active-only by default, skipping offset
// rows for pagination.
func (s *Service) ListWorkflows(ctx context.Context, activeOnly bool, limit, offset int) ([]*Workflow, error) {
	return s.workflows.List(ctx, activeOnly, limit, offset)
}

// GetWorkflow returns a workflow by id.
func (s *Service) GetWorkflow(ctx context.Context, id string) (*Workflow, error) {
	return s.workflows.Find(ctx, id)
}

// RecordOutcome attributes a task outcome to a workflow by bumping one of its
// advisory counters. Nothing verifies that a matching task actually ran.
func (s *Service) RecordOutcome(ctx context.Context, workflowID string, success bool) error {
	return s.workflows.IncrementCounters(ctx, workflowID, success)
}

// Status aggregates task and workflow counters.
func (s *Service) Status(ctx context.Context) (*StatusReport, error) {
	counts, err := s.tasks.CountByStatus(ctx)
	if err != nil {
		return nil, err
	}
	active, err := s.workflows.CountActive(ctx)
	if err != nil {
		return nil, err
	}
	total := 0
	for _, n := range counts {
		total += n
	}
	return &StatusReport{
		Status:          "operational",
		Message:         "Autonomous bot system is running",
		ActiveWorkflows: active,
		TotalTasks:      total,
		PendingTasks:    counts[StatusPending],
		RunningTasks:    counts[StatusRunning],
		CompletedTasks:  counts[StatusCompleted],
		FailedTasks:     counts[StatusFailed],
	}, nil
}

func (s *Service) publish(t *Task) {
	if s.events == nil {
		return
	}
	s.events.Publish(stream.TaskEvent{
		TaskID:    t.ID,
		TaskType:  t.Type,
		Status:    t.Status,
		Error:     t.ErrorMessage,
		Timestamp: s.now().UTC(),
	})
}
