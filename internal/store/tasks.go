package store

import "context"

// TaskRepo is the typed CRUD surface over the "task" table, plus the state
// transitions the worker pool (C5) drives a task through.
type TaskRepo struct {
	db *DB
}

func NewTaskRepo(db *DB) *TaskRepo {
	return &TaskRepo{db: db}
}

func (r *TaskRepo) FindByID(ctx context.Context, id int64) (*Task, error) {
	var t Task
	err := r.db.QueryRowContext(ctx, `SELECT id, message_id, user_id, transport, transport_type,
		chat_id, state, retry_count, reason, creation_time FROM task WHERE id = $1`, id).
		Scan(&t.ID, &t.MessageID, &t.UserID, &t.TransportID, &t.TransportType,
			&t.ChatID, &t.State, &t.RetryCount, &t.Reason, &t.CreationTime)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}

// SetDone transitions a task to the terminal "done" state.
func (r *TaskRepo) SetDone(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `UPDATE task SET state = $1 WHERE id = $2`, TaskDone, id)
	return err
}

// SetFail transitions a task to the terminal "fail" state, recording the
// reason. Not exercised by the default retry-forever policy (spec.md §4.5
// retries indefinitely) but available for a max-attempts policy layered on
// top (spec.md §9 open issue).
func (r *TaskRepo) SetFail(ctx context.Context, id int64, reason string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE task SET state = $1, reason = $2 WHERE id = $3`,
		TaskFail, reason, id)
	return err
}

// UpdateRetryState moves a task to "retrying", increments retry_count, and
// stores the failure reason — spec.md §4.5's retry_task operation.
func (r *TaskRepo) UpdateRetryState(ctx context.Context, id int64, reason string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE task
		SET state = $1, retry_count = retry_count + 1, reason = $2 WHERE id = $3`,
		TaskRetrying, reason, id)
	return err
}
