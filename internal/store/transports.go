package store

import "context"

// TransportRepo is the typed CRUD surface over the "transport" table.
// Invariant: at most one row per (user_id, type) — enforced by a unique
// index in the migration and relied on by UpdateChatID, which addresses the
// row by (user_id, type) (spec.md §3, §4.7).
type TransportRepo struct {
	db *DB
}

func NewTransportRepo(db *DB) *TransportRepo {
	return &TransportRepo{db: db}
}

func (r *TransportRepo) FindByID(ctx context.Context, id int64) (*Transport, error) {
	return r.findOne(ctx, `SELECT id, user_id, type, chat_id, username, connected, creation_time
		FROM transport WHERE id = $1`, id)
}

func (r *TransportRepo) FindByUserIDAndType(ctx context.Context, userID int64, typ TransportType) (*Transport, error) {
	return r.findOne(ctx, `SELECT id, user_id, type, chat_id, username, connected, creation_time
		FROM transport WHERE user_id = $1 AND type = $2`, userID, typ)
}

func (r *TransportRepo) FindAllByUserID(ctx context.Context, userID int64) ([]*Transport, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT id, user_id, type, chat_id, username, connected, creation_time
		FROM transport WHERE user_id = $1`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*Transport
	for rows.Next() {
		t, err := scanTransport(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

// FindDeliverableByUserID returns every transport that is connected and has
// a bound chat_id — the set the ingestion endpoint (C6) fans a push out to.
func (r *TransportRepo) FindDeliverableByUserID(ctx context.Context, userID int64) ([]*Transport, error) {
	all, err := r.FindAllByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]*Transport, 0, len(all))
	for _, t := range all {
		if t.Deliverable() {
			out = append(out, t)
		}
	}
	return out, nil
}

func (r *TransportRepo) Insert(ctx context.Context, t *Transport) error {
	query := `INSERT INTO transport (user_id, type, chat_id, username, connected, creation_time)
		VALUES ($1, $2, $3, $4, $5, now()) RETURNING id, creation_time`
	return r.db.QueryRowContext(ctx, query, t.UserID, t.Type, t.ChatID, t.Username, t.Connected).
		Scan(&t.ID, &t.CreationTime)
}

// UpdateChatID rebinds an existing (user_id, type) transport to a new
// chat_id/username pair, leaving in-flight tasks' denormalized snapshots
// untouched (spec.md §3).
func (r *TransportRepo) UpdateChatID(ctx context.Context, userID int64, typ TransportType, chatID string, username *string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE transport
		SET chat_id = $1, username = $2, connected = true WHERE user_id = $3 AND type = $4`,
		chatID, username, userID, typ)
	return err
}

func (r *TransportRepo) findOne(ctx context.Context, query string, args ...interface{}) (*Transport, error) {
	row := r.db.QueryRowContext(ctx, query, args...)
	t, err := scanTransport(row)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return t, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTransport(row rowScanner) (*Transport, error) {
	var t Transport
	if err := row.Scan(&t.ID, &t.UserID, &t.Type, &t.ChatID, &t.Username, &t.Connected, &t.CreationTime); err != nil {
		return nil, err
	}
	return &t, nil
}
