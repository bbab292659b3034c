package user

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	userrepo "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/repo"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/database"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// PasswordHasher defines minimal hashing interface (abstract so we can swap to argon2 later).
type PasswordHasher interface {
	Hash(pw string) (string, error)
	Verify(hash, pw string) bool
	NeedsRehash(hash string) bool
}

// BcryptHasher implementation.
type BcryptHasher struct{ Cost int }

func (b BcryptHasher) cost() int {
	if b.Cost == 0 {
		return bcrypt.DefaultCost
	}
	return b.Cost
}

func (b BcryptHasher) Hash(pw string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(pw), b.cost())
	if err != nil {
		return "", err
	}
	return string(h), nil
}

func (b BcryptHasher) Verify(hash, pw string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw)) == nil
}

// NeedsRehash is true for hashes made with a lower cost than configured,
// e.g. the cost-10 hashes written by the seed script.
func (b BcryptHasher) NeedsRehash(hash string) bool {
	c, err := bcrypt.Cost([]byte(hash))
	if err != nil {
		return false
	}
	return c < b.cost()
}

var ErrBadCredentials = errors.New("invalid credentials")

// SignupInput is the validated signup payload.
type SignupInput struct {
	Email     string
	Password  string
	Name      string
	Surname   string
	Cellphone *string
	Role      entity.Role
	Operator  *entity.Operator
}

// UserService orchestrates authentication and user lifecycle flows.
type UserService struct {
	db        *sqlx.DB
	repo      *userrepo.UserRepo
	operators *userrepo.OperatorRepo
	hasher    PasswordHasher
	now       func() time.Time
}

func NewUserService(db *sqlx.DB, hasher PasswordHasher) *UserService {
	if hasher == nil {
		hasher = BcryptHasher{Cost: 12}
	}
	return &UserService{
		db:        db,
		repo:      userrepo.NewUserRepo(db),
		operators: userrepo.NewOperatorRepo(db),
		hasher:    hasher,
		now:       time.Now,
	}
}

// Signup creates a user, and the operator record for OPERATOR accounts,
// in one transaction.
func (s *UserService) Signup(ctx context.Context, in SignupInput) (*entity.Profile, error) {
	if in.Role == "" {
		in.Role = entity.RoleUser
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("%w: unknown role %q", utilities.ErrValidation, in.Role)
	}
	if in.Role == entity.RoleAdmin {
		return nil, fmt.Errorf("%w: cannot sign up as %s", utilities.ErrForbidden, in.Role)
	}
	if in.Role == entity.RoleOperator && (in.Operator == nil || strings.TrimSpace(in.Operator.OrganizationName) == "") {
		return nil, fmt.Errorf("%w: operator accounts need an organization name", utilities.ErrValidation)
	}
	if in.Role != entity.RoleOperator {
		in.Operator = nil
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	u := &entity.User{
		ID:            utilities.NewID(),
		Email:         strings.ToLower(strings.TrimSpace(in.Email)),
		Name:          strings.TrimSpace(in.Name),
		Surname:       strings.TrimSpace(in.Surname),
		Cellphone:     in.Cellphone,
		Role:          in.Role,
		PasswordHash:  &hash,
		OAuthProvider: "APP",
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	err = database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.repo.WithTx(tx).Create(ctx, u); err != nil {
			return err
		}
		if in.Operator != nil {
			in.Operator.UserID = u.ID
			return s.operators.WithTx(tx).Create(ctx, in.Operator)
		}
		return nil
	})
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: email already registered", utilities.ErrConflict)
		}
		return nil, err
	}
	return &entity.Profile{User: *u, Operator: in.Operator}, nil
}

// AuthenticatePassword checks email and password and returns the user.
// Unknown emails and wrong passwords produce the same error.
func (s *UserService) AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil, ErrBadCredentials
	}
	u, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if u.PasswordHash == nil || *u.PasswordHash == "" {
		// oauth-only account
		return nil, ErrBadCredentials
	}
	if !s.hasher.Verify(*u.PasswordHash, password) {
		return nil, ErrBadCredentials
	}
	if s.hasher.NeedsRehash(*u.PasswordHash) {
		if newHash, hErr := s.hasher.Hash(password); hErr == nil {
			_ = s.repo.UpdatePassword(ctx, u.ID, newHash)
		}
	}
	return u, nil
}

// Profile loads a user with its operator record.
func (s *UserService) Profile(ctx context.Context, id int64) (*entity.Profile, error) {
	u, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: user %d", utilities.ErrNotFound, id)
		}
		return nil, err
	}
	p := &entity.Profile{User: *u}
	if u.Role == entity.RoleOperator {
		op, err := s.operators.GetByUserID(ctx, id)
		if err != nil && !errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		p.Operator = op
	}
	return p, nil
}

// Role returns the current role of a user.
func (s *UserService) Role(ctx context.Context, id int64) (entity.Role, error) {
	r, err := s.repo.GetRole(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", fmt.Errorf("%w: user %d", utilities.ErrNotFound, id)
		}
		return "", err
	}
	return r, nil
}
