package repo

import (
	"context"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
)

// UserRepo provides data access for users table using sqlx.
type UserRepo struct {
	db sqlx.ExtContext
}

func NewUserRepo(db sqlx.ExtContext) *UserRepo { return &UserRepo{db: db} }

// WithTx returns a repo bound to tx.
func (r *UserRepo) WithTx(tx *sqlx.Tx) *UserRepo { return &UserRepo{db: tx} }

const userColumns = `id, email, name, surname, cellphone, role, password_hash, oauth_provider, created_at, updated_at`

// Create inserts u. ID, CreatedAt and UpdatedAt must already be set.
func (r *UserRepo) Create(ctx context.Context, u *entity.User) error {
	const q = `INSERT INTO users (id, email, name, surname, cellphone, role, password_hash, oauth_provider, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.db.ExecContext(ctx, q, u.ID, u.Email, u.Name, u.Surname, u.Cellphone, u.Role, u.PasswordHash, u.OAuthProvider, u.CreatedAt, u.UpdatedAt)
	return err
}

// GetByEmail returns sql.ErrNoRows when no user has that email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*entity.User, error) {
	var u entity.User
	if err := sqlx.GetContext(ctx, r.db, &u, `SELECT `+userColumns+` FROM users WHERE email = $1`, email); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetByID fetches a full user row.
func (r *UserRepo) GetByID(ctx context.Context, id int64) (*entity.User, error) {
	var u entity.User
	if err := sqlx.GetContext(ctx, r.db, &u, `SELECT `+userColumns+` FROM users WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &u, nil
}

// GetRole returns only the role, used when refreshing tokens.
func (r *UserRepo) GetRole(ctx context.Context, id int64) (entity.Role, error) {
	var role entity.Role
	if err := sqlx.GetContext(ctx, r.db, &role, `SELECT role FROM users WHERE id = $1`, id); err != nil {
		return "", err
	}
	return role, nil
}

// UpdatePassword replaces the password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id int64, hash string) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET password_hash = $2, updated_at = NOW() WHERE id = $1`, id, hash)
	return err
}
