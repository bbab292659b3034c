package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
)

// OperatorRepo stores the organization record of OPERATOR users.
type OperatorRepo struct {
	db sqlx.ExtContext
}

func NewOperatorRepo(db sqlx.ExtContext) *OperatorRepo {
	return &OperatorRepo{db: db}
}

func (r *OperatorRepo) WithTx(tx *sqlx.Tx) *OperatorRepo { return &OperatorRepo{db: tx} }

func (r *OperatorRepo) Create(ctx context.Context, o *entity.Operator) error {
	const q = `INSERT INTO operators (user_id, organization_name, vat_number, telephone, website) VALUES ($1, $2, $3, $4, $5)`
	_, err := r.db.ExecContext(ctx, q, o.UserID, o.OrganizationName, o.VATNumber, o.Telephone, o.Website)
	return err
}

// GetByUserID returns sql.ErrNoRows for users without an operator record.
func (r *OperatorRepo) GetByUserID(ctx context.Context, userID int64) (*entity.Operator, error) {
	const q = `SELECT user_id, organization_name, vat_number, telephone, website FROM operators WHERE user_id = $1`
	var o entity.Operator
	if err := sqlx.GetContext(ctx, r.db, &o, q, userID); err != nil {
		return nil, err
	}
	return &o, nil
}
