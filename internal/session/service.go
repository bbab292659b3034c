package session

import (
	"context"
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session/repo"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

var (
	ErrInvalidToken   = errors.New("invalid token")
	ErrInvalidRefresh = errors.New("invalid refresh token")
)

type Config struct {
	Secret     []byte
	Issuer     string
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ConfigFromEnv reads JWT_SECRET, JWT_ISSUER and ACCESS_TOKEN_TTL (a Go duration).
func ConfigFromEnv() Config {
	issuer := os.Getenv("JWT_ISSUER")
	if issuer == "" {
		issuer = "smartwaste"
	}
	ttl := 15 * time.Minute
	if v, err := time.ParseDuration(os.Getenv("ACCESS_TOKEN_TTL")); err == nil && v > 0 {
		ttl = v
	}
	return Config{
		Secret:     []byte(os.Getenv("JWT_SECRET")),
		Issuer:     issuer,
		AccessTTL:  ttl,
		RefreshTTL: 30 * 24 * time.Hour,
	}
}

// RandomSecret returns 32 random bytes for when no JWT_SECRET is configured.
// Tokens signed with it do not survive a restart.
func RandomSecret() []byte {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return b
}

// Claims are the access token claims. Subject carries the user id.
type Claims struct {
	Role entity.Role `json:"role"`
	jwt.RegisteredClaims
}

// Service issues and verifies session tokens.
type Service struct {
	cfg         Config
	refreshRepo *repo.RefreshRepo
	now         func() time.Time
}

func NewService(db *sqlx.DB, cfg Config) (*Service, error) {
	if len(cfg.Secret) == 0 {
		return nil, errors.New("session: empty signing secret")
	}
	if cfg.AccessTTL <= 0 {
		cfg.AccessTTL = 15 * time.Minute
	}
	if cfg.RefreshTTL <= 0 {
		cfg.RefreshTTL = 30 * 24 * time.Hour
	}
	var rr *repo.RefreshRepo
	if db != nil {
		rr = repo.NewRefreshRepo(db)
	}
	return &Service{cfg: cfg, refreshRepo: rr, now: time.Now}, nil
}

// AccessToken signs an HS256 access token for the user.
func (s *Service) AccessToken(userID int64, role entity.Role) (string, error) {
	now := s.now()
	claims := Claims{
		Role: role,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    s.cfg.Issuer,
			Subject:   strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.AccessTTL)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.cfg.Secret)
}

// Parse verifies an access token and returns the session it carries.
func (s *Service) Parse(token string) (*Session, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		return s.cfg.Secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(s.cfg.Issuer),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	id, err := strconv.ParseInt(claims.Subject, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%w: bad subject", ErrInvalidToken)
	}
	if !claims.Role.Valid() {
		return nil, fmt.Errorf("%w: bad role", ErrInvalidToken)
	}
	return &Session{UserID: id, Role: claims.Role}, nil
}

// IssueTokens creates an access token and a persisted opaque refresh token.
func (s *Service) IssueTokens(ctx context.Context, userID int64, role entity.Role, clientID string) (*Tokens, error) {
	access, err := s.AccessToken(userID, role)
	if err != nil {
		return nil, err
	}
	rtBytes := make([]byte, 32)
	if _, err := rand.Read(rtBytes); err != nil {
		return nil, err
	}
	refresh := base64.RawURLEncoding.EncodeToString(rtBytes)
	rec := repo.RefreshRecord{
		ID:        utilities.NewID(),
		UserID:    userID,
		ClientID:  clientID,
		ExpiresAt: s.now().Add(s.cfg.RefreshTTL),
	}
	if err := s.refreshRepo.Save(ctx, refresh, rec); err != nil {
		return nil, err
	}
	return &Tokens{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    "Bearer",
		ExpiresIn:    int64(s.cfg.AccessTTL / time.Second),
	}, nil
}

// ValidateRefreshToken checks an opaque refresh token and returns the session if valid.
func (s *Service) ValidateRefreshToken(ctx context.Context, token string) (*RefreshSession, error) {
	rec, err := s.refreshRepo.Get(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidRefresh
		}
		return nil, err
	}
	if rec.ExpiresAt.Before(s.now()) {
		return nil, ErrInvalidRefresh
	}
	return &RefreshSession{ID: rec.ID, UserID: rec.UserID, ClientID: rec.ClientID, ExpiresAt: rec.ExpiresAt}, nil
}

// Rotate revokes token and issues a new pair for the same user. role is
// looked up by the caller so a role change takes effect on refresh.
func (s *Service) Rotate(ctx context.Context, token string, role func(ctx context.Context, userID int64) (entity.Role, error)) (*Tokens, error) {
	rs, err := s.ValidateRefreshToken(ctx, token)
	if err != nil {
		return nil, err
	}
	removed, err := s.refreshRepo.Delete(ctx, token)
	if err != nil {
		return nil, err
	}
	if !removed {
		// lost a race with another refresh of the same token
		return nil, ErrInvalidRefresh
	}
	r, err := role(ctx, rs.UserID)
	if err != nil {
		return nil, err
	}
	return s.IssueTokens(ctx, rs.UserID, r, rs.ClientID)
}

// RevokeRefreshToken removes a refresh token from store.
func (s *Service) RevokeRefreshToken(ctx context.Context, token string) error {
	_, err := s.refreshRepo.Delete(ctx, token)
	return err
}

// PurgeExpired drops refresh sessions past their expiry.
func (s *Service) PurgeExpired(ctx context.Context) (int64, error) {
	return s.refreshRepo.DeleteExpired(ctx, s.now())
}
