package collectionpoint

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/collectionpoint/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/collectionpoint/repo"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	userentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	wtentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/database"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// Input is the writable part of a collection point.
type Input struct {
	OperatorID    int64
	Name          string
	Description   string
	IsActive      *bool
	Accessibility *string
	Capacity      *string
	Address       *entity.Address
	Schedule      *entity.Schedule
	WasteTypeIDs  []int64
}

type Service struct {
	db   *sqlx.DB
	repo *repo.Repo
	now  func() time.Time
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db, repo: repo.NewRepo(db), now: time.Now}
}

// List returns the points matching f with their relations loaded.
func (s *Service) List(ctx context.Context, f entity.Filter) ([]*entity.CollectionPoint, error) {
	points, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, points); err != nil {
		return nil, err
	}
	return points, nil
}

// Get returns one point with its relations.
func (s *Service) Get(ctx context.Context, id int64) (*entity.CollectionPoint, error) {
	cp, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: collection point %d", utilities.ErrNotFound, id)
		}
		return nil, err
	}
	if err := s.hydrate(ctx, []*entity.CollectionPoint{cp}); err != nil {
		return nil, err
	}
	return cp, nil
}

func (s *Service) hydrate(ctx context.Context, points []*entity.CollectionPoint) error {
	if len(points) == 0 {
		return nil
	}
	ids := make([]int64, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	addrs, err := s.repo.AddressesFor(ctx, ids)
	if err != nil {
		return err
	}
	scheds, err := s.repo.SchedulesFor(ctx, ids)
	if err != nil {
		return err
	}
	wts, err := s.repo.WasteTypesFor(ctx, ids)
	if err != nil {
		return err
	}
	for _, p := range points {
		p.Address = addrs[p.ID]
		p.Schedule = scheds[p.ID]
		p.WasteTypes = wts[p.ID]
		if p.WasteTypes == nil {
			p.WasteTypes = []*wtentity.WasteType{}
		}
	}
	return nil
}

// Create stores a new point owned by in.OperatorID. Operators can only
// create points for themselves.
func (s *Service) Create(ctx context.Context, caller *session.Session, in Input) (*entity.CollectionPoint, error) {
	switch {
	case caller.HasRole(userentity.RoleOperator):
		in.OperatorID = caller.UserID
	case caller.HasRole(userentity.RoleAdmin):
		if in.OperatorID == 0 {
			return nil, fmt.Errorf("%w: operatorId is required", utilities.ErrValidation)
		}
	default:
		return nil, fmt.Errorf("%w: only operators can create collection points", utilities.ErrForbidden)
	}
	if err := normalize(&in); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	cp := &entity.CollectionPoint{
		ID:            utilities.NewID(),
		OperatorID:    in.OperatorID,
		Name:          in.Name,
		Description:   in.Description,
		IsActive:      in.IsActive == nil || *in.IsActive,
		Accessibility: in.Accessibility,
		Capacity:      in.Capacity,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		r := s.repo.WithTx(tx)
		if err := r.Insert(ctx, cp); err != nil {
			return err
		}
		return writeRelations(ctx, r, cp.ID, in)
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.Get(ctx, cp.ID)
}

// Update replaces the fields and relations of point id. Only ADMIN can
// move a point to another operator.
func (s *Service) Update(ctx context.Context, caller *session.Session, id int64, in Input) (*entity.CollectionPoint, error) {
	owner, err := s.authorize(ctx, caller, id)
	if err != nil {
		return nil, err
	}
	switch {
	case in.OperatorID == 0:
		in.OperatorID = owner
	case in.OperatorID != owner && caller.Role != userentity.RoleAdmin:
		return nil, fmt.Errorf("%w: only admins can reassign collection points", utilities.ErrForbidden)
	}
	if err := normalize(&in); err != nil {
		return nil, err
	}
	cp := &entity.CollectionPoint{
		ID:            id,
		OperatorID:    in.OperatorID,
		Name:          in.Name,
		Description:   in.Description,
		IsActive:      in.IsActive == nil || *in.IsActive,
		Accessibility: in.Accessibility,
		Capacity:      in.Capacity,
		UpdatedAt:     s.now().UTC(),
	}
	err = database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		r := s.repo.WithTx(tx)
		n, err := r.Update(ctx, cp)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: collection point %d", utilities.ErrNotFound, id)
		}
		if in.Schedule == nil {
			if err := r.DeleteSchedule(ctx, id); err != nil {
				return err
			}
		}
		return writeRelations(ctx, r, id, in)
	})
	if err != nil {
		return nil, translate(err)
	}
	return s.Get(ctx, id)
}

// Delete removes point id and everything hanging off it.
func (s *Service) Delete(ctx context.Context, caller *session.Session, id int64) error {
	if _, err := s.authorize(ctx, caller, id); err != nil {
		return err
	}
	n, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: collection point %d", utilities.ErrNotFound, id)
	}
	return nil
}

// authorize lets ADMIN through and requires OPERATOR callers to own the
// point. It returns the current owner.
func (s *Service) authorize(ctx context.Context, caller *session.Session, id int64) (int64, error) {
	if !caller.HasRole(userentity.RoleOperator, userentity.RoleAdmin) {
		return 0, fmt.Errorf("%w: only operators can manage collection points", utilities.ErrForbidden)
	}
	owner, err := s.repo.OperatorOf(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, fmt.Errorf("%w: collection point %d", utilities.ErrNotFound, id)
		}
		return 0, err
	}
	if caller.Role != userentity.RoleAdmin && owner != caller.UserID {
		return 0, fmt.Errorf("%w: not the operator of this collection point", utilities.ErrForbidden)
	}
	return owner, nil
}

func normalize(in *Input) error {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return fmt.Errorf("%w: name is required", utilities.ErrValidation)
	}
	if in.Address == nil {
		return fmt.Errorf("%w: address is required", utilities.ErrValidation)
	}
	if sc := in.Schedule; sc != nil && !sc.IsAlwaysOpen && sc.OpeningTime != nil && sc.ClosingTime != nil && *sc.OpeningTime >= *sc.ClosingTime {
		return fmt.Errorf("%w: openingTime must be before closingTime", utilities.ErrValidation)
	}
	return nil
}

func writeRelations(ctx context.Context, r *repo.Repo, id int64, in Input) error {
	in.Address.CollectionPointID = id
	if err := r.UpsertAddress(ctx, in.Address); err != nil {
		return err
	}
	if in.Schedule != nil {
		in.Schedule.CollectionPointID = id
		if err := r.UpsertSchedule(ctx, in.Schedule); err != nil {
			return err
		}
	}
	return r.ReplaceWasteTypes(ctx, id, in.WasteTypeIDs)
}

func translate(err error) error {
	if database.IsForeignKeyViolation(err) {
		return fmt.Errorf("%w: unknown operator or waste type", utilities.ErrValidation)
	}
	return err
}
