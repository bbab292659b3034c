package repo

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// RefreshRecord is a row of refresh_sessions.
type RefreshRecord struct {
	ID        int64     `db:"id"`
	UserID    int64     `db:"user_id"`
	ClientID  string    `db:"client_id"`
	ExpiresAt time.Time `db:"expires_at"`
}

type RefreshRepo struct {
	db *sqlx.DB
}

func NewRefreshRepo(db *sqlx.DB) *RefreshRepo {
	return &RefreshRepo{db: db}
}

func (r *RefreshRepo) Save(ctx context.Context, token string, rec RefreshRecord) error {
	const q = `INSERT INTO refresh_sessions (token, id, user_id, client_id, expires_at) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, token, rec.ID, rec.UserID, rec.ClientID, rec.ExpiresAt)
	return err
}

// Get returns sql.ErrNoRows when the token is unknown.
func (r *RefreshRepo) Get(ctx context.Context, token string) (*RefreshRecord, error) {
	const q = `SELECT id, user_id, client_id, expires_at FROM refresh_sessions WHERE token = $1`
	var rec RefreshRecord
	if err := r.db.GetContext(ctx, &rec, q, token); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Delete removes the token and reports whether it existed.
func (r *RefreshRepo) Delete(ctx context.Context, token string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE token = $1`, token)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *RefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM refresh_sessions WHERE expires_at < $1`, now)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
