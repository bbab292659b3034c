package repo

import (
	"context"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/collectionpoint/entity"
)

func TestListQueryFilters(t *testing.T) {
	q, args, err := listQuery(entity.Filter{OperatorID: 7, City: " Roma ", WasteTypeID: 4, Limit: 10, Offset: 20})
	require.NoError(t, err)

	assert.Contains(t, q, `FROM "collection_points" AS "cp"`)
	assert.Contains(t, q, `INNER JOIN "addresses" AS "a"`)
	assert.Contains(t, q, `LOWER("a"."city")`)
	// goqu parenthesizes a subquery operand, so the IN list may be doubly wrapped
	assert.Regexp(t, `"cp"\."id" IN \(\(?SELECT "collection_point_id" FROM "collection_point_waste_types" WHERE \("waste_type_id" = \$\d\)\)?\)`, q)
	assert.Contains(t, q, `ORDER BY "cp"."name" ASC`)
	assert.Contains(t, q, "LIMIT")
	assert.Contains(t, q, "OFFSET")
	assert.Contains(t, args, int64(7))
	assert.Contains(t, args, "roma")
	assert.Contains(t, args, int64(4))
}

func TestListQueryWithoutFilters(t *testing.T) {
	q, args, err := listQuery(entity.Filter{})
	require.NoError(t, err)

	assert.NotContains(t, q, "WHERE")
	assert.NotContains(t, q, "JOIN")
	assert.NotContains(t, q, "LIMIT")
	assert.Empty(t, args)
}

func TestReplaceWasteTypes(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	r := NewRepo(sqlx.NewDb(mockDB, "postgres"))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM collection_point_waste_types WHERE collection_point_id = $1`)).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO collection_point_waste_types (collection_point_id, waste_type_id) SELECT $1, unnest($2::bigint[])`)).
		WithArgs(int64(3), "{1,2}").WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, r.ReplaceWasteTypes(context.Background(), 3, []int64{1, 2}))

	mock.ExpectExec(regexp.QuoteMeta(`DELETE FROM collection_point_waste_types`)).
		WithArgs(int64(3)).WillReturnResult(sqlmock.NewResult(0, 2))
	require.NoError(t, r.ReplaceWasteTypes(context.Background(), 3, nil))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWasteTypesForGroupsByPoint(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()
	r := NewRepo(sqlx.NewDb(mockDB, "postgres"))

	rows := sqlmock.NewRows([]string{"collection_point_id", "id", "name", "description", "color", "icon_name", "disposal_info", "examples"}).
		AddRow(int64(1), int64(10), "Carta e Cartone", "", "#0066CC", "newspaper", "", "").
		AddRow(int64(1), int64(11), "Plastica", "", "#FFD700", "recycle", "", "").
		AddRow(int64(2), int64(11), "Plastica", "", "#FFD700", "recycle", "", "")
	mock.ExpectQuery(regexp.QuoteMeta(`FROM collection_point_waste_types l JOIN waste_types w`)).
		WithArgs("{1,2}").WillReturnRows(rows)

	got, err := r.WasteTypesFor(context.Background(), []int64{1, 2})
	require.NoError(t, err)
	require.Len(t, got[1], 2)
	require.Len(t, got[2], 1)
	assert.Equal(t, "Carta e Cartone", got[1][0].Name)
	assert.Equal(t, int64(11), got[2][0].ID)
	require.NoError(t, mock.ExpectationsWereMet())
}
