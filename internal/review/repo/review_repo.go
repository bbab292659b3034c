package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/review/entity"
)

type Repo struct {
	db sqlx.ExtContext
}

func NewRepo(db sqlx.ExtContext) *Repo { return &Repo{db: db} }

// WithTx returns a Repo bound to tx.
func (r *Repo) WithTx(tx *sqlx.Tx) *Repo { return &Repo{db: tx} }

const columns = `id, user_id, collection_point_id, rating, comment, created_at`

// GetByID returns sql.ErrNoRows when missing.
func (r *Repo) GetByID(ctx context.Context, id int64) (*entity.Review, error) {
	var rv entity.Review
	if err := sqlx.GetContext(ctx, r.db, &rv, `SELECT `+columns+` FROM reviews WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &rv, nil
}

// ListByPoint returns the reviews of a collection point, newest first.
func (r *Repo) ListByPoint(ctx context.Context, pointID int64) ([]*entity.Review, error) {
	out := []*entity.Review{}
	if err := sqlx.SelectContext(ctx, r.db, &out, `SELECT `+columns+` FROM reviews WHERE collection_point_id = $1 ORDER BY created_at DESC, id DESC`, pointID); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repo) Create(ctx context.Context, rv *entity.Review) error {
	const q = `INSERT INTO reviews (id, user_id, collection_point_id, rating, comment, created_at) VALUES ($1, $2, $3, $4, $5, $6)`
	_, err := r.db.ExecContext(ctx, q, rv.ID, rv.UserID, rv.CollectionPointID, rv.Rating, rv.Comment, rv.CreatedAt)
	return err
}

// Delete removes a review and returns the number of rows affected.
func (r *Repo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
