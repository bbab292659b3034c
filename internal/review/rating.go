package review

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// RatingMaintainer keeps collection_points.avg_rating equal to the mean
// rating of the point's surviving reviews, or NULL when it has none.
type RatingMaintainer struct {
	db sqlx.ExtContext
}

func NewRatingMaintainer(db sqlx.ExtContext) *RatingMaintainer {
	return &RatingMaintainer{db: db}
}

// WithTx returns a maintainer that recomputes inside tx.
func (m *RatingMaintainer) WithTx(tx *sqlx.Tx) *RatingMaintainer {
	return &RatingMaintainer{db: tx}
}

const recomputeSQL = `UPDATE collection_points SET avg_rating = (SELECT AVG(rating)::float8 FROM reviews WHERE collection_point_id = $1) WHERE id = $1`

// Recompute rewrites the average for one collection point. Call it after
// every review insert or delete, in the same transaction.
func (m *RatingMaintainer) Recompute(ctx context.Context, pointID int64) error {
	_, err := m.db.ExecContext(ctx, recomputeSQL, pointID)
	return err
}
