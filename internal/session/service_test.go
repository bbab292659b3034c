package session

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/golang-jwt/jwt/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
)

func newTestService(t *testing.T, db *sqlx.DB) *Service {
	t.Helper()
	svc, err := NewService(db, Config{Secret: []byte("test-secret"), Issuer: "smartwaste", AccessTTL: time.Minute})
	require.NoError(t, err)
	return svc
}

func TestNewServiceRequiresSecret(t *testing.T) {
	_, err := NewService(nil, Config{})
	require.Error(t, err)
}

func TestAccessTokenRoundTrip(t *testing.T) {
	svc := newTestService(t, nil)

	tok, err := svc.AccessToken(1234567890123, entity.RoleClient)
	require.NoError(t, err)

	s, err := svc.Parse(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(1234567890123), s.UserID)
	assert.Equal(t, entity.RoleClient, s.Role)
}

func TestParseRejectsExpiredToken(t *testing.T) {
	svc := newTestService(t, nil)
	issued := time.Now().Add(-time.Hour)
	svc.now = func() time.Time { return issued }
	tok, err := svc.AccessToken(1, entity.RoleUser)
	require.NoError(t, err)

	svc.now = time.Now
	_, err = svc.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsForeignSignature(t *testing.T) {
	svc := newTestService(t, nil)
	other, err := NewService(nil, Config{Secret: []byte("other"), Issuer: "smartwaste"})
	require.NoError(t, err)
	tok, err := other.AccessToken(1, entity.RoleAdmin)
	require.NoError(t, err)

	_, err = svc.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsUnknownRole(t *testing.T) {
	svc := newTestService(t, nil)
	claims := Claims{
		Role: "ROOT",
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "smartwaste",
			Subject:   "7",
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
		},
	}
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	require.NoError(t, err)

	_, err = svc.Parse(tok)
	require.ErrorIs(t, err, ErrInvalidToken)
}

func TestRotateIssuesNewPair(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	svc := newTestService(t, sqlx.NewDb(mockDB, "postgres"))

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT id, user_id, client_id, expires_at FROM refresh_sessions WHERE token = $1`)).
		WithArgs("old").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "client_id", "expires_at"}).
			AddRow(int64(1), int64(42), "web", time.Now().Add(time.Hour)))
	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM refresh_sessions WHERE token = $1`)).
		WithArgs("old").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO refresh_sessions (token, id, user_id, client_id, expires_at)`)).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), int64(42), "web", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	tokens, err := svc.Rotate(context.Background(), "old", func(context.Context, int64) (entity.Role, error) {
		return entity.RoleOperator, nil
	})
	require.NoError(t, err)
	assert.NotEqual(t, "old", tokens.RefreshToken)
	assert.Equal(t, "Bearer", tokens.TokenType)

	s, err := svc.Parse(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, entity.RoleOperator, s.Role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRotateUnknownToken(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	svc := newTestService(t, sqlx.NewDb(mockDB, "postgres"))

	mock.ExpectQuery(regexp.QuoteMeta(`FROM refresh_sessions WHERE token = $1`)).
		WithArgs("nope").WillReturnError(sql.ErrNoRows)

	_, err = svc.Rotate(context.Background(), "nope", func(context.Context, int64) (entity.Role, error) {
		return "", errors.New("must not be called")
	})
	require.ErrorIs(t, err, ErrInvalidRefresh)
	require.NoError(t, mock.ExpectationsWereMet())
}
