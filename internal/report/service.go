package report

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/report/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/report/repo"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	userentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/database"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

type CreateInput struct {
	CollectionPointID int64
	Type              entity.Type
	Description       string
}

type Service struct {
	repo *repo.Repo
	now  func() time.Time
}

func NewService(db *sqlx.DB) *Service {
	return &Service{repo: repo.NewRepo(db), now: time.Now}
}

// Create files a PENDING report on behalf of caller.
func (s *Service) Create(ctx context.Context, caller *session.Session, in CreateInput) (*entity.Report, error) {
	if !in.Type.Valid() {
		return nil, fmt.Errorf("%w: unknown report type %q", utilities.ErrValidation, in.Type)
	}
	now := s.now().UTC()
	rp := &entity.Report{
		ID:                utilities.NewID(),
		UserID:            caller.UserID,
		CollectionPointID: in.CollectionPointID,
		Type:              in.Type,
		Description:       strings.TrimSpace(in.Description),
		Status:            entity.StatusPending,
		CreatedAt:         now,
		UpdatedAt:         now,
	}
	if err := s.repo.Create(ctx, rp); err != nil {
		if database.IsForeignKeyViolation(err) {
			return nil, fmt.Errorf("%w: collection point %d", utilities.ErrNotFound, in.CollectionPointID)
		}
		return nil, err
	}
	return rp, nil
}

// List returns the reports caller may see: ADMIN all of them, OPERATOR
// those on its own points, everyone else their own.
func (s *Service) List(ctx context.Context, caller *session.Session, f entity.Filter) ([]*entity.Report, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", utilities.ErrValidation, f.Status)
	}
	switch caller.Role {
	case userentity.RoleAdmin:
	case userentity.RoleOperator:
		f.OperatorID = caller.UserID
		f.UserID = 0
	default:
		f.UserID = caller.UserID
		f.OperatorID = 0
	}
	return s.repo.List(ctx, f)
}

// UpdateStatus moves a report to status. Only ADMIN or the operator owning
// the report's collection point may do so; IN_PROGRESS and RESOLVED record
// the caller in resolved_by, PENDING clears it.
func (s *Service) UpdateStatus(ctx context.Context, caller *session.Session, id int64, status entity.Status) (*entity.Report, error) {
	if !caller.HasRole(userentity.RoleOperator, userentity.RoleAdmin) {
		return nil, fmt.Errorf("%w: only operators can update reports", utilities.ErrForbidden)
	}
	if !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", utilities.ErrValidation, status)
	}
	rp, owner, err := s.repo.GetWithOperator(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: report %d", utilities.ErrNotFound, id)
		}
		return nil, err
	}
	if caller.Role != userentity.RoleAdmin && owner != caller.UserID {
		return nil, fmt.Errorf("%w: not the operator of this collection point", utilities.ErrForbidden)
	}

	var resolvedBy *int64
	if status != entity.StatusPending {
		uid := caller.UserID
		resolvedBy = &uid
	}
	now := s.now().UTC()
	n, err := s.repo.UpdateStatus(ctx, id, status, resolvedBy, now)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, fmt.Errorf("%w: report %d", utilities.ErrNotFound, id)
	}
	rp.Status = status
	rp.ResolvedBy = resolvedBy
	rp.UpdatedAt = now
	return rp, nil
}
