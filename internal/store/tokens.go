package store

import "context"

// TokenRepo persists issued access tokens. Grounded on
// original_source/src/model/token.rs; the distilled spec documents only
// the bearer token's wire contract, not its storage, so this is a
// supplemented feature that makes the token auditable/revocable.
type TokenRepo struct {
	db *DB
}

func NewTokenRepo(db *DB) *TokenRepo {
	return &TokenRepo{db: db}
}

func (r *TokenRepo) Insert(ctx context.Context, t *Token) error {
	query := `INSERT INTO token (user_id, access_token, creation_time)
		VALUES ($1, $2, now()) RETURNING id, creation_time`
	return r.db.QueryRowContext(ctx, query, t.UserID, t.AccessToken).Scan(&t.ID, &t.CreationTime)
}

func (r *TokenRepo) FindByAccessToken(ctx context.Context, accessToken string) (*Token, error) {
	var t Token
	err := r.db.QueryRowContext(ctx, `SELECT id, user_id, access_token, creation_time
		FROM token WHERE access_token = $1`, accessToken).
		Scan(&t.ID, &t.UserID, &t.AccessToken, &t.CreationTime)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &t, nil
}
