package wastetype

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/repo"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/database"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// Service encapsulates business logic for waste types and depends on a repo.
type Service struct {
	repo *repo.Repo
}

// NewService constructs a Service over db.
func NewService(db *sqlx.DB) *Service {
	return &Service{repo: repo.NewRepo(db)}
}

// List returns every waste type.
func (s *Service) List(ctx context.Context) ([]*entity.WasteType, error) {
	return s.repo.List(ctx)
}

// Get returns a waste type by id.
func (s *Service) Get(ctx context.Context, id int64) (*entity.WasteType, error) {
	wt, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: waste type %d", utilities.ErrNotFound, id)
		}
		return nil, err
	}
	return wt, nil
}

// Create assigns an id to in and stores it.
func (s *Service) Create(ctx context.Context, in *entity.WasteType) (*entity.WasteType, error) {
	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, fmt.Errorf("%w: name is required", utilities.ErrValidation)
	}
	in.ID = utilities.NewID()
	if err := s.repo.Create(ctx, in); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, fmt.Errorf("%w: waste type %q already exists", utilities.ErrConflict, in.Name)
		}
		return nil, err
	}
	return in, nil
}

// Delete removes a waste type by id.
func (s *Service) Delete(ctx context.Context, id int64) error {
	rows, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%w: waste type %d", utilities.ErrNotFound, id)
	}
	return nil
}
