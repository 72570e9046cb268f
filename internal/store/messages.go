package store

import "context"

// MessageRepo is the typed CRUD surface over the immutable "message" table.
type MessageRepo struct {
	db *DB
}

func NewMessageRepo(db *DB) *MessageRepo {
	return &MessageRepo{db: db}
}

func (r *MessageRepo) FindByID(ctx context.Context, id int64) (*Message, error) {
	var m Message
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, title, content, creation_time
		FROM message WHERE id = $1`, id).
		Scan(&m.ID, &m.UserID, &m.Title, &m.Content, &m.CreationTime)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &m, nil
}

// FindAllByUserID lists a user's messages newest first. Supplemented from
// original_source/src/model/message.rs (find_all_by_user_id), dropped by
// the distilled spec but not excluded by any Non-goal.
func (r *MessageRepo) FindAllByUserID(ctx context.Context, userID int64, limit, offset int) ([]*Message, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, title, content, creation_time
		FROM message WHERE user_id = $1 ORDER BY id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.UserID, &m.Title, &m.Content, &m.CreationTime); err != nil {
			return nil, err
		}
		out = append(out, &m)
	}
	return out, rows.Err()
}
