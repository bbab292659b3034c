package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/entity"
)

// Repo is the repository implementation for waste types backed by PostgreSQL.
type Repo struct {
	db sqlx.ExtContext
}

// NewRepo constructs a new Repo with an existing connection or transaction.
func NewRepo(db sqlx.ExtContext) *Repo {
	return &Repo{db: db}
}

const columns = `id, name, description, color, icon_name, disposal_info, examples`

// List returns all waste types ordered by name.
func (r *Repo) List(ctx context.Context) ([]*entity.WasteType, error) {
	out := []*entity.WasteType{}
	if err := sqlx.SelectContext(ctx, r.db, &out, `SELECT `+columns+` FROM waste_types ORDER BY name`); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns sql.ErrNoRows when missing.
func (r *Repo) GetByID(ctx context.Context, id int64) (*entity.WasteType, error) {
	var wt entity.WasteType
	if err := sqlx.GetContext(ctx, r.db, &wt, `SELECT `+columns+` FROM waste_types WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &wt, nil
}

// Create inserts wt with its preassigned id.
func (r *Repo) Create(ctx context.Context, wt *entity.WasteType) error {
	const q = `INSERT INTO waste_types (id, name, description, color, icon_name, disposal_info, examples) VALUES ($1, $2, $3, $4, $5, $6, $7)`
	_, err := r.db.ExecContext(ctx, q, wt.ID, wt.Name, wt.Description, wt.Color, wt.IconName, wt.DisposalInfo, wt.Examples)
	return err
}

// Delete removes a waste type and returns the number of rows affected.
func (r *Repo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM waste_types WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
