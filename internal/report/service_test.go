package report

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/report/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	userentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

var fixedNow = time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

func newMockService(t *testing.T) (*Service, sqlmock.Sqlmock) {
	t.Helper()
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { mockDB.Close() })
	svc := NewService(sqlx.NewDb(mockDB, "postgres"))
	svc.now = func() time.Time { return fixedNow }
	return svc, mock
}

const getWithOperator = `SELECT r.id, r.user_id, r.collection_point_id, r.type, r.description, r.status, r.resolved_by, r.created_at, r.updated_at, cp.operator_id FROM reports r JOIN collection_points cp ON cp.id = r.collection_point_id WHERE r.id = $1`

func reportRow(operatorID int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "collection_point_id", "type", "description", "status", "resolved_by", "created_at", "updated_at", "operator_id"}).
		AddRow(int64(70), int64(10), int64(3), "FULL_BIN", "pieno", "PENDING", nil, fixedNow, fixedNow, operatorID)
}

func TestUpdateStatusByOwningOperator(t *testing.T) {
	svc, mock := newMockService(t)
	op := &session.Session{UserID: 20, Role: userentity.RoleOperator}

	mock.ExpectQuery(regexp.QuoteMeta(getWithOperator)).WithArgs(int64(70)).WillReturnRows(reportRow(20))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reports SET status = $2, resolved_by = $3, updated_at = $4 WHERE id = $1`)).
		WithArgs(int64(70), "RESOLVED", int64(20), fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rp, err := svc.UpdateStatus(context.Background(), op, 70, entity.StatusResolved)
	require.NoError(t, err)
	assert.Equal(t, entity.StatusResolved, rp.Status)
	require.NotNil(t, rp.ResolvedBy)
	assert.Equal(t, int64(20), *rp.ResolvedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusBackToPendingClearsResolver(t *testing.T) {
	svc, mock := newMockService(t)
	admin := &session.Session{UserID: 1, Role: userentity.RoleAdmin}

	mock.ExpectQuery(regexp.QuoteMeta(getWithOperator)).WithArgs(int64(70)).WillReturnRows(reportRow(20))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE reports SET status = $2`)).
		WithArgs(int64(70), "PENDING", nil, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rp, err := svc.UpdateStatus(context.Background(), admin, 70, entity.StatusPending)
	require.NoError(t, err)
	assert.Nil(t, rp.ResolvedBy)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusByOtherOperator(t *testing.T) {
	svc, mock := newMockService(t)
	op := &session.Session{UserID: 21, Role: userentity.RoleOperator}

	mock.ExpectQuery(regexp.QuoteMeta(getWithOperator)).WithArgs(int64(70)).WillReturnRows(reportRow(20))

	_, err := svc.UpdateStatus(context.Background(), op, 70, entity.StatusInProgress)
	require.ErrorIs(t, err, utilities.ErrForbidden)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStatusRejections(t *testing.T) {
	svc, mock := newMockService(t)

	_, err := svc.UpdateStatus(context.Background(), &session.Session{UserID: 10, Role: userentity.RoleClient}, 70, entity.StatusResolved)
	require.ErrorIs(t, err, utilities.ErrForbidden)

	_, err = svc.UpdateStatus(context.Background(), &session.Session{UserID: 1, Role: userentity.RoleAdmin}, 70, "CLOSED")
	require.ErrorIs(t, err, utilities.ErrValidation)

	mock.ExpectQuery(regexp.QuoteMeta(getWithOperator)).WithArgs(int64(71)).WillReturnError(sql.ErrNoRows)
	_, err = svc.UpdateStatus(context.Background(), &session.Session{UserID: 1, Role: userentity.RoleAdmin}, 71, entity.StatusResolved)
	require.ErrorIs(t, err, utilities.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReport(t *testing.T) {
	svc, mock := newMockService(t)
	caller := &session.Session{UserID: 10, Role: userentity.RoleUser}

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reports (id, user_id, collection_point_id, type, description, status, resolved_by, created_at, updated_at)`)).
		WithArgs(sqlmock.AnyArg(), int64(10), int64(3), "DAMAGED", "coperchio rotto", "PENDING", nil, fixedNow, fixedNow).
		WillReturnResult(sqlmock.NewResult(0, 1))

	rp, err := svc.Create(context.Background(), caller, CreateInput{CollectionPointID: 3, Type: entity.TypeDamaged, Description: " coperchio rotto "})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, rp.Status)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateReportUnknownPoint(t *testing.T) {
	svc, mock := newMockService(t)

	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO reports`)).WillReturnError(&pq.Error{Code: "23503"})

	_, err := svc.Create(context.Background(), &session.Session{UserID: 10, Role: userentity.RoleUser}, CreateInput{CollectionPointID: 404, Type: entity.TypeOther})
	require.ErrorIs(t, err, utilities.ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListScopesByRole(t *testing.T) {
	cols := []string{"id", "user_id", "collection_point_id", "type", "description", "status", "resolved_by", "created_at", "updated_at"}

	t.Run("citizen sees own", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(regexp.QuoteMeta(`"r"."user_id" = $1`)).
			WithArgs(int64(10)).
			WillReturnRows(sqlmock.NewRows(cols))
		_, err := svc.List(context.Background(), &session.Session{UserID: 10, Role: userentity.RoleUser}, entity.Filter{UserID: 99})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("operator sees own points", func(t *testing.T) {
		svc, mock := newMockService(t)
		mock.ExpectQuery(regexp.QuoteMeta(`"cp"."operator_id" = $1`)).
			WithArgs(int64(20)).
			WillReturnRows(sqlmock.NewRows(cols))
		_, err := svc.List(context.Background(), &session.Session{UserID: 20, Role: userentity.RoleOperator}, entity.Filter{})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("bad status", func(t *testing.T) {
		svc, _ := newMockService(t)
		_, err := svc.List(context.Background(), &session.Session{UserID: 1, Role: userentity.RoleAdmin}, entity.Filter{Status: "DONE"})
		require.ErrorIs(t, err, utilities.ErrValidation)
	})
}
