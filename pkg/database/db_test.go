package database

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithSessionOptions(t *testing.T) {
	base := "postgres://u:p@localhost:5432/smartwaste"

	assert.Equal(t, base, withSessionOptions(Config{DSN: base}))
	assert.Equal(t, base+"?timezone=Europe%2FRome",
		withSessionOptions(Config{DSN: base, TimeZone: "Europe/Rome"}))
	assert.Equal(t, base+"?sslmode=disable&client_encoding=UTF8&timezone=UTC",
		withSessionOptions(Config{DSN: base + "?sslmode=disable", TimeZone: "UTC", ClientEncoding: "UTF8"}))
}

func TestConfigFromEnvDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("DATABASE_MAX_CONNS", "nope")

	cfg := ConfigFromEnv()
	assert.Contains(t, cfg.DSN, "/smartwaste")
	assert.Equal(t, 10, cfg.MaxConns)
}

func TestPqErrorClassification(t *testing.T) {
	unique := fmt.Errorf("insert: %w", &pq.Error{Code: "23505"})
	fk := &pq.Error{Code: "23503"}

	assert.True(t, IsUniqueViolation(unique))
	assert.False(t, IsForeignKeyViolation(unique))
	assert.True(t, IsForeignKeyViolation(fk))
	assert.False(t, IsUniqueViolation(errors.New("other")))
}

func TestInTxRollsBackOnError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "postgres")

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM reviews").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err = InTx(context.Background(), db, func(tx *sqlx.Tx) error {
		if _, err := tx.ExecContext(context.Background(), "DELETE FROM reviews WHERE id = $1", 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInTxCommits(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	db := sqlx.NewDb(mockDB, "postgres")

	mock.ExpectBegin()
	mock.ExpectCommit()

	require.NoError(t, InTx(context.Background(), db, func(*sqlx.Tx) error { return nil }))
	require.NoError(t, mock.ExpectationsWereMet())
}
