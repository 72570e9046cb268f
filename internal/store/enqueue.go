package store

import (
	"context"
	"fmt"
)

// Enqueuer wraps the single composite operation the repository layer
// exposes beyond per-entity CRUD: enqueue_message (spec.md §4.2). It
// inserts one message row and one task row per deliverable transport
// inside a single transaction, preserving caller order, and either commits
// every insert or none of them (spec.md §8 property 4).
type Enqueuer struct {
	db *DB
}

func NewEnqueuer(db *DB) *Enqueuer {
	return &Enqueuer{db: db}
}

// EnqueueMessage creates one message and one pending task per deliverable
// entry of transports; non-deliverable entries are skipped. Callers must
// not reorder transports; the returned task ids are in the same order.
func (e *Enqueuer) EnqueueMessage(ctx context.Context, userID int64, title, content string, transports []*Transport) (messageID int64, taskIDs []int64, err error) {
	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err != nil {
			tx.Rollback()
		}
	}()

	err = tx.QueryRowContext(ctx, `INSERT INTO message (user_id, title, content, creation_time)
		VALUES ($1, $2, $3, now()) RETURNING id`, userID, title, content).Scan(&messageID)
	if err != nil {
		return 0, nil, fmt.Errorf("insert message: %w", err)
	}

	taskIDs = make([]int64, 0, len(transports))
	for _, t := range transports {
		if !t.Deliverable() {
			continue
		}

		var taskID int64
		err = tx.QueryRowContext(ctx, `INSERT INTO task
			(message_id, user_id, transport, transport_type, chat_id, state, retry_count, creation_time)
			VALUES ($1, $2, $3, $4, $5, $6, 0, now()) RETURNING id`,
			messageID, userID, t.ID, t.Type, *t.ChatID, TaskPending).Scan(&taskID)
		if err != nil {
			return 0, nil, fmt.Errorf("insert task for transport %d: %w", t.ID, err)
		}
		taskIDs = append(taskIDs, taskID)
	}

	if err = tx.Commit(); err != nil {
		return 0, nil, err
	}
	return messageID, taskIDs, nil
}
