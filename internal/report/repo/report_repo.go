package repo

import (
	"context"
	"time"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/report/entity"
)

var dialect = goqu.Dialect("postgres")

type Repo struct {
	db sqlx.ExtContext
}

func NewRepo(db sqlx.ExtContext) *Repo { return &Repo{db: db} }

func (r *Repo) Create(ctx context.Context, rp *entity.Report) error {
	const q = `INSERT INTO reports (id, user_id, collection_point_id, type, description, status, resolved_by, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q, rp.ID, rp.UserID, rp.CollectionPointID, rp.Type, rp.Description, rp.Status, rp.ResolvedBy, rp.CreatedAt, rp.UpdatedAt)
	return err
}

type reportWithOperator struct {
	entity.Report
	OperatorID int64 `db:"operator_id"`
}

// GetWithOperator returns a report and the operator owning its collection
// point, or sql.ErrNoRows.
func (r *Repo) GetWithOperator(ctx context.Context, id int64) (*entity.Report, int64, error) {
	var row reportWithOperator
	const q = `SELECT r.id, r.user_id, r.collection_point_id, r.type, r.description, r.status, r.resolved_by, r.created_at, r.updated_at, cp.operator_id FROM reports r JOIN collection_points cp ON cp.id = r.collection_point_id WHERE r.id = $1`
	if err := sqlx.GetContext(ctx, r.db, &row, q, id); err != nil {
		return nil, 0, err
	}
	return &row.Report, row.OperatorID, nil
}

// UpdateStatus sets status and resolved_by on report id.
func (r *Repo) UpdateStatus(ctx context.Context, id int64, status entity.Status, resolvedBy *int64, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE reports SET status = $2, resolved_by = $3, updated_at = $4 WHERE id = $1`, id, status, resolvedBy, at)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// List returns reports matching f, newest first.
func (r *Repo) List(ctx context.Context, f entity.Filter) ([]*entity.Report, error) {
	ds := dialect.From(goqu.T("reports").As("r")).Prepared(true).Select(
		goqu.I("r.id"), goqu.I("r.user_id"), goqu.I("r.collection_point_id"), goqu.I("r.type"),
		goqu.I("r.description"), goqu.I("r.status"), goqu.I("r.resolved_by"),
		goqu.I("r.created_at"), goqu.I("r.updated_at"),
	)
	if f.OperatorID != 0 {
		ds = ds.InnerJoin(goqu.T("collection_points").As("cp"), goqu.On(goqu.I("cp.id").Eq(goqu.I("r.collection_point_id")))).
			Where(goqu.I("cp.operator_id").Eq(f.OperatorID))
	}
	if f.UserID != 0 {
		ds = ds.Where(goqu.I("r.user_id").Eq(f.UserID))
	}
	if f.CollectionPointID != 0 {
		ds = ds.Where(goqu.I("r.collection_point_id").Eq(f.CollectionPointID))
	}
	if f.Status != "" {
		ds = ds.Where(goqu.I("r.status").Eq(string(f.Status)))
	}
	q, args, err := ds.Order(goqu.I("r.created_at").Desc(), goqu.I("r.id").Desc()).ToSQL()
	if err != nil {
		return nil, err
	}
	out := []*entity.Report{}
	if err := sqlx.SelectContext(ctx, r.db, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}
