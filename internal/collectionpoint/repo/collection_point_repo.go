package repo

import (
	"context"
	"strings"

	"github.com/doug-martin/goqu/v9"
	_ "github.com/doug-martin/goqu/v9/dialect/postgres"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/collectionpoint/entity"
	wtentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/entity"
)

var dialect = goqu.Dialect("postgres")

// Repo persists collection points and their address, schedule and
// waste-type links.
type Repo struct {
	db sqlx.ExtContext
}

func NewRepo(db sqlx.ExtContext) *Repo {
	return &Repo{db: db}
}

// WithTx returns a Repo bound to tx.
func (r *Repo) WithTx(tx *sqlx.Tx) *Repo {
	return &Repo{db: tx}
}

const pointColumns = `id, operator_id, name, description, is_active, accessibility, capacity, avg_rating, created_at, updated_at`

// Insert stores cp with its preassigned id. avg_rating starts NULL.
func (r *Repo) Insert(ctx context.Context, cp *entity.CollectionPoint) error {
	const q = `INSERT INTO collection_points (id, operator_id, name, description, is_active, accessibility, capacity, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`
	_, err := r.db.ExecContext(ctx, q, cp.ID, cp.OperatorID, cp.Name, cp.Description, cp.IsActive, cp.Accessibility, cp.Capacity, cp.CreatedAt, cp.UpdatedAt)
	return err
}

// Update overwrites the editable columns. avg_rating is owned by the
// review rating maintainer and never written here.
func (r *Repo) Update(ctx context.Context, cp *entity.CollectionPoint) (int64, error) {
	const q = `UPDATE collection_points SET operator_id = $2, name = $3, description = $4, is_active = $5, accessibility = $6, capacity = $7, updated_at = $8 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, cp.ID, cp.OperatorID, cp.Name, cp.Description, cp.IsActive, cp.Accessibility, cp.Capacity, cp.UpdatedAt)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the point; dependent rows go with it via ON DELETE CASCADE.
func (r *Repo) Delete(ctx context.Context, id int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM collection_points WHERE id = $1`, id)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// OperatorOf returns the owner of a point, or sql.ErrNoRows.
func (r *Repo) OperatorOf(ctx context.Context, id int64) (int64, error) {
	var op int64
	err := sqlx.GetContext(ctx, r.db, &op, `SELECT operator_id FROM collection_points WHERE id = $1`, id)
	return op, err
}

func (r *Repo) UpsertAddress(ctx context.Context, a *entity.Address) error {
	const q = `INSERT INTO addresses (collection_point_id, street, number, city, zip, country, latitude, longitude) VALUES ($1, $2, $3, $4, $5, $6, $7, $8) ON CONFLICT (collection_point_id) DO UPDATE SET street = EXCLUDED.street, number = EXCLUDED.number, city = EXCLUDED.city, zip = EXCLUDED.zip, country = EXCLUDED.country, latitude = EXCLUDED.latitude, longitude = EXCLUDED.longitude`
	_, err := r.db.ExecContext(ctx, q, a.CollectionPointID, a.Street, a.Number, a.City, a.Zip, a.Country, a.Latitude, a.Longitude)
	return err
}

func (r *Repo) UpsertSchedule(ctx context.Context, s *entity.Schedule) error {
	const q = `INSERT INTO schedules (collection_point_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday, opening_time, closing_time, is_always_open, notes) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12) ON CONFLICT (collection_point_id) DO UPDATE SET monday = EXCLUDED.monday, tuesday = EXCLUDED.tuesday, wednesday = EXCLUDED.wednesday, thursday = EXCLUDED.thursday, friday = EXCLUDED.friday, saturday = EXCLUDED.saturday, sunday = EXCLUDED.sunday, opening_time = EXCLUDED.opening_time, closing_time = EXCLUDED.closing_time, is_always_open = EXCLUDED.is_always_open, notes = EXCLUDED.notes`
	_, err := r.db.ExecContext(ctx, q, s.CollectionPointID, s.Monday, s.Tuesday, s.Wednesday, s.Thursday, s.Friday, s.Saturday, s.Sunday, s.OpeningTime, s.ClosingTime, s.IsAlwaysOpen, s.Notes)
	return err
}

// DeleteSchedule drops the schedule of point id, if any.
func (r *Repo) DeleteSchedule(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM schedules WHERE collection_point_id = $1`, id)
	return err
}

// ReplaceWasteTypes makes ids the exact waste-type set of point id.
func (r *Repo) ReplaceWasteTypes(ctx context.Context, id int64, ids []int64) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM collection_point_waste_types WHERE collection_point_id = $1`, id); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	_, err := r.db.ExecContext(ctx, `INSERT INTO collection_point_waste_types (collection_point_id, waste_type_id) SELECT $1, unnest($2::bigint[]) ON CONFLICT DO NOTHING`, id, pq.Array(ids))
	return err
}

// GetByID returns the bare point (no relations) or sql.ErrNoRows.
func (r *Repo) GetByID(ctx context.Context, id int64) (*entity.CollectionPoint, error) {
	var cp entity.CollectionPoint
	if err := sqlx.GetContext(ctx, r.db, &cp, `SELECT `+pointColumns+` FROM collection_points WHERE id = $1`, id); err != nil {
		return nil, err
	}
	return &cp, nil
}

// List returns the points matching f. Relations are not loaded.
func (r *Repo) List(ctx context.Context, f entity.Filter) ([]*entity.CollectionPoint, error) {
	q, args, err := listQuery(f)
	if err != nil {
		return nil, err
	}
	out := []*entity.CollectionPoint{}
	if err := sqlx.SelectContext(ctx, r.db, &out, q, args...); err != nil {
		return nil, err
	}
	return out, nil
}

func listQuery(f entity.Filter) (string, []any, error) {
	ds := dialect.From(goqu.T("collection_points").As("cp")).Prepared(true).Select(
		goqu.I("cp.id"), goqu.I("cp.operator_id"), goqu.I("cp.name"), goqu.I("cp.description"),
		goqu.I("cp.is_active"), goqu.I("cp.accessibility"), goqu.I("cp.capacity"),
		goqu.I("cp.avg_rating"), goqu.I("cp.created_at"), goqu.I("cp.updated_at"),
	)
	if f.Active != nil {
		ds = ds.Where(goqu.I("cp.is_active").Eq(*f.Active))
	}
	if f.OperatorID != 0 {
		ds = ds.Where(goqu.I("cp.operator_id").Eq(f.OperatorID))
	}
	if city := strings.TrimSpace(f.City); city != "" {
		ds = ds.InnerJoin(goqu.T("addresses").As("a"), goqu.On(goqu.I("a.collection_point_id").Eq(goqu.I("cp.id")))).
			Where(goqu.Func("LOWER", goqu.I("a.city")).Eq(strings.ToLower(city)))
	}
	if f.WasteTypeID != 0 {
		sub := dialect.From("collection_point_waste_types").Select("collection_point_id").
			Where(goqu.C("waste_type_id").Eq(f.WasteTypeID))
		ds = ds.Where(goqu.I("cp.id").In(sub))
	}
	ds = ds.Order(goqu.I("cp.name").Asc(), goqu.I("cp.id").Asc())
	if f.Limit > 0 {
		ds = ds.Limit(f.Limit)
	}
	if f.Offset > 0 {
		ds = ds.Offset(f.Offset)
	}
	return ds.ToSQL()
}

// AddressesFor loads the addresses of ids keyed by point id.
func (r *Repo) AddressesFor(ctx context.Context, ids []int64) (map[int64]*entity.Address, error) {
	var rows []*entity.Address
	const q = `SELECT collection_point_id, street, number, city, zip, country, latitude, longitude FROM addresses WHERE collection_point_id = ANY($1)`
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, pq.Array(ids)); err != nil {
		return nil, err
	}
	out := make(map[int64]*entity.Address, len(rows))
	for _, a := range rows {
		out[a.CollectionPointID] = a
	}
	return out, nil
}

// SchedulesFor loads the schedules of ids keyed by point id.
func (r *Repo) SchedulesFor(ctx context.Context, ids []int64) (map[int64]*entity.Schedule, error) {
	var rows []*entity.Schedule
	const q = `SELECT collection_point_id, monday, tuesday, wednesday, thursday, friday, saturday, sunday, opening_time, closing_time, is_always_open, notes FROM schedules WHERE collection_point_id = ANY($1)`
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, pq.Array(ids)); err != nil {
		return nil, err
	}
	out := make(map[int64]*entity.Schedule, len(rows))
	for _, s := range rows {
		out[s.CollectionPointID] = s
	}
	return out, nil
}

type pointWasteType struct {
	CollectionPointID int64 `db:"collection_point_id"`
	wtentity.WasteType
}

// WasteTypesFor loads the waste types linked to ids keyed by point id.
func (r *Repo) WasteTypesFor(ctx context.Context, ids []int64) (map[int64][]*wtentity.WasteType, error) {
	var rows []pointWasteType
	const q = `SELECT l.collection_point_id, w.id, w.name, w.description, w.color, w.icon_name, w.disposal_info, w.examples FROM collection_point_waste_types l JOIN waste_types w ON w.id = l.waste_type_id WHERE l.collection_point_id = ANY($1) ORDER BY w.name`
	if err := sqlx.SelectContext(ctx, r.db, &rows, q, pq.Array(ids)); err != nil {
		return nil, err
	}
	out := make(map[int64][]*wtentity.WasteType)
	for i := range rows {
		wt := rows[i].WasteType
		out[rows[i].CollectionPointID] = append(out[rows[i].CollectionPointID], &wt)
	}
	return out, nil
}
