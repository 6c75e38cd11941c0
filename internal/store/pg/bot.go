package pg

import (
	"context"
	"database/sql"
	"encoding/json"

	"bauliver.org/internal/bot"
)

// TaskStore is the SQL-backed bot task repository. Task payloads are stored
// as jsonb columns.
type TaskStore struct {
	db *sql.DB
}

var _ bot.TaskStore = (*TaskStore)(nil)

const taskColumns = `id, task_type, status, input_data, output_data, started_at, completed_at, error_message, created_by, created_at, updated_at`

const taskDefaultLimit = 100

func (s *TaskStore) Create(ctx context.Context, t *bot.Task) error {
	input, output, err := marshalTaskPayloads(t)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into bot_tasks(id, task_type, status, input_data, output_data, started_at, completed_at, error_message, created_by, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
	`, t.ID, t.Type, t.Status, input, output, t.StartedAt, t.CompletedAt,
		t.ErrorMessage, t.CreatedBy, t.CreatedAt, t.UpdatedAt)
	return err
}

func (s *TaskStore) Find(ctx context.Context, id string) (*bot.Task, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+taskColumns+` from bot_tasks where id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, bot.ErrNotFound
	}
	return scanTask(rows)
}

func (s *TaskStore) List(ctx context.Context, status string, limit, offset int) ([]*bot.Task, error) {
	if limit <= 0 {
		limit = taskDefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	query := `select ` + taskColumns + ` from bot_tasks`
	args := []any{}
	if status != "" {
		query += ` where status=$1 order by id limit $2 offset $3`
		args = append(args, status, limit, offset)
	} else {
		query += ` order by id limit $1 offset $2`
		args = append(args, limit, offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*bot.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *TaskStore) Update(ctx context.Context, t *bot.Task) error {
	input, output, err := marshalTaskPayloads(t)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx, `
		update bot_tasks
		set status=$2, input_data=$3, output_data=$4, started_at=$5, completed_at=$6, error_message=$7, updated_at=$8
		where id=$1
	`, t.ID, t.Status, input, output, t.StartedAt, t.CompletedAt, t.ErrorMessage, t.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res, bot.ErrNotFound)
}

func (s *TaskStore) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := s.db.QueryContext(ctx,
		`select status, count(*) from bot_tasks group by status`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := map[string]int{}
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, err
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

func marshalTaskPayloads(t *bot.Task) ([]byte, []byte, error) {
	input, err := json.Marshal(t.Input)
	if err != nil {
		return nil, nil, err
	}
	output, err := json.Marshal(t.Output)
	if err != nil {
		return nil, nil, err
	}
	return input, output, nil
}

func scanTask(rows *sql.Rows) (*bot.Task, error) {
	var t bot.Task
	var input, output []byte
	if err := rows.Scan(&t.ID, &t.Type, &t.Status, &input, &output,
		&t.StartedAt, &t.CompletedAt, &t.ErrorMessage, &t.CreatedBy,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	if len(input) > 0 {
		if err := json.Unmarshal(input, &t.Input); err != nil {
			return nil, err
		}
	}
	if len(output) > 0 {
		if err := json.Unmarshal(output, &t.Output); err != nil {
			return nil, err
		}
	}
	return &t, nil
}

// WorkflowStore is the SQL-backed bot workflow repository.
type WorkflowStore struct {
	db *sql.DB
}

var _ bot.WorkflowStore = (*WorkflowStore)(nil)

const workflowColumns = `id, name, description, workflow_type, steps, is_active, success_count, failure_count, created_at, updated_at`

func (s *WorkflowStore) Create(ctx context.Context, w *bot.Workflow) error {
	steps, err := json.Marshal(w.Steps)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
		insert into bot_workflows(id, name, description, workflow_type, steps, is_active, success_count, failure_count, created_at, updated_at)
		values ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, w.ID, w.Name, w.Description, w.Type, steps, w.Active,
		w.SuccessCount, w.FailureCount, w.CreatedAt, w.UpdatedAt)
	return err
}

func (s *WorkflowStore) Find(ctx context.Context, id string) (*bot.Workflow, error) {
	rows, err := s.db.QueryContext(ctx,
		`select `+workflowColumns+` from bot_workflows where id=$1`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, err
		}
		return nil, bot.ErrNotFound
	}
	return scanWorkflow(rows)
}

func (s *WorkflowStore) List(ctx context.Context, activeOnly bool, limit, offset int) ([]*bot.Workflow, error) {
	if limit <= 0 {
		limit = taskDefaultLimit
	}
	if offset < 0 {
		offset = 0
	}
	query := `select ` + workflowColumns + ` from bot_workflows`
	if activeOnly {
		query += ` where is_active`
	}
	query += ` order by id limit $1 offset $2`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*bot.Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (s *WorkflowStore) IncrementCounters(ctx context.Context, id string, success bool) error {
	column := "failure_count"
	if success {
		column = "success_count"
	}
	res, err := s.db.ExecContext(ctx,
		`update bot_workflows set `+column+` = `+column+` + 1, updated_at = now() where id=$1`, id)
	if err != nil {
		return err
	}
	return requireRow(res, bot.ErrNotFound)
}

func (s *WorkflowStore) CountActive(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx,
		`select count(*) from bot_workflows where is_active`).Scan(&n)
	return n, err
}

func scanWorkflow(rows *sql.Rows) (*bot.Workflow, error) {
	var w bot.Workflow
	var steps []byte
	if err := rows.Scan(&w.ID, &w.Name, &w.Description, &w.Type, &steps,
		&w.Active, &w.SuccessCount, &w.FailureCount, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	if len(steps) > 0 {
		if err := json.Unmarshal(steps, &w.Steps); err != nil {
			return nil, err
		}
	}
	return &w, nil
}
