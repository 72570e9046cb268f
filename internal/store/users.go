package store

import (
	"context"
	"crypto/rand"
	"fmt"

	"github.com/google/uuid"
)

const projectIDLength = 45

const projectIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// genProjectID samples projectIDLength characters directly from the
// alphanumeric alphabet. spec.md §9 flags the original implementation's
// lossy byte-to-string conversion (it samples raw bytes and runs them
// through a lossy UTF-8 decode, silently discarding entropy from any byte
// that doesn't decode cleanly); this samples by indexing the alphabet,
// rejecting bytes at or above the largest multiple of the alphabet size so
// every character is chosen uniformly.
func genProjectID() (string, error) {
	limit := 256 - 256%len(projectIDAlphabet)
	buf := make([]byte, projectIDLength)
	out := make([]byte, 0, projectIDLength)
	for len(out) < projectIDLength {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("generate project id: %w", err)
		}
		for _, b := range buf {
			if int(b) < limit && len(out) < projectIDLength {
				out = append(out, projectIDAlphabet[int(b)%len(projectIDAlphabet)])
			}
		}
	}
	return string(out), nil
}

// UserRepo is the typed CRUD surface over the "user" table (spec.md §4.2).
type UserRepo struct {
	db *DB
}

func NewUserRepo(db *DB) *UserRepo {
	return &UserRepo{db: db}
}

// FindOrCreateByWalletAddress upserts a user by wallet address: inserts a
// fresh row (with a new open_id/project_id) on first sight, otherwise
// returns the existing row untouched — spec.md §8 property 6 requires
// open_id/project_id to stay stable across repeated auth calls.
func (r *UserRepo) FindOrCreateByWalletAddress(ctx context.Context, walletAddress string) (*User, error) {
	existing, err := r.FindByWalletAddress(ctx, walletAddress)
	if err == nil {
		return existing, nil
	}
	if err != ErrNotFound {
		return nil, err
	}

	projectID, err := genProjectID()
	if err != nil {
		return nil, err
	}

	u := &User{
		OpenID:        uuid.New(),
		ProjectID:     projectID,
		WalletAddress: walletAddress,
	}

	query := `INSERT INTO "user" (open_id, project_id, wallet_address, creation_time)
		VALUES ($1, $2, $3, now()) RETURNING id, creation_time`
	err = r.db.QueryRowContext(ctx, query, u.OpenID, u.ProjectID, u.WalletAddress).
		Scan(&u.ID, &u.CreationTime)
	if err != nil {
		return nil, err
	}
	return u, nil
}

func (r *UserRepo) FindByWalletAddress(ctx context.Context, walletAddress string) (*User, error) {
	return r.findOne(ctx, `SELECT id, open_id, project_id, wallet_address, creation_time
		FROM "user" WHERE wallet_address = $1`, walletAddress)
}

func (r *UserRepo) FindByOpenID(ctx context.Context, openID uuid.UUID) (*User, error) {
	return r.findOne(ctx, `SELECT id, open_id, project_id, wallet_address, creation_time
		FROM "user" WHERE open_id = $1`, openID)
}

func (r *UserRepo) FindByProjectID(ctx context.Context, projectID string) (*User, error) {
	return r.findOne(ctx, `SELECT id, open_id, project_id, wallet_address, creation_time
		FROM "user" WHERE project_id = $1`, projectID)
}

func (r *UserRepo) FindByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, `SELECT id, open_id, project_id, wallet_address, creation_time
		FROM "user" WHERE id = $1`, id)
}

func (r *UserRepo) findOne(ctx context.Context, query string, arg interface{}) (*User, error) {
	var u User
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.OpenID, &u.ProjectID, &u.WalletAddress, &u.CreationTime)
	if err != nil {
		return nil, wrapNotFound(err)
	}
	return &u, nil
}
