package review

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/review/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/review/repo"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/database"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// CreateInput is a validated review submission.
type CreateInput struct {
	UserID            int64
	CollectionPointID int64
	Rating            int
	Comment           *string
}

// Service writes reviews and keeps the point's average rating in step.
type Service struct {
	db     *sqlx.DB
	repo   *repo.Repo
	rating *RatingMaintainer
	now    func() time.Time
}

func NewService(db *sqlx.DB) *Service {
	return &Service{db: db, repo: repo.NewRepo(db), rating: NewRatingMaintainer(db), now: time.Now}
}

func (s *Service) List(ctx context.Context, pointID int64) ([]*entity.Review, error) {
	return s.repo.ListByPoint(ctx, pointID)
}

// Get returns a review or an ErrNotFound-wrapped error.
func (s *Service) Get(ctx context.Context, id int64) (*entity.Review, error) {
	rv, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: review %d", utilities.ErrNotFound, id)
		}
		return nil, err
	}
	return rv, nil
}

// Create stores a review and recomputes the point's average in one transaction.
func (s *Service) Create(ctx context.Context, in CreateInput) (*entity.Review, error) {
	if in.Rating < entity.MinRating || in.Rating > entity.MaxRating {
		return nil, fmt.Errorf("%w: rating must be between %d and %d", utilities.ErrValidation, entity.MinRating, entity.MaxRating)
	}
	if in.Comment != nil {
		c := strings.TrimSpace(*in.Comment)
		in.Comment = &c
		if c == "" {
			in.Comment = nil
		}
	}
	rv := &entity.Review{
		ID:                utilities.NewID(),
		UserID:            in.UserID,
		CollectionPointID: in.CollectionPointID,
		Rating:            in.Rating,
		Comment:           in.Comment,
		CreatedAt:         s.now().UTC(),
	}
	err := database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		if err := s.repo.WithTx(tx).Create(ctx, rv); err != nil {
			return err
		}
		return s.rating.WithTx(tx).Recompute(ctx, rv.CollectionPointID)
	})
	if err != nil {
		switch {
		case database.IsUniqueViolation(err):
			return nil, fmt.Errorf("%w: you have already reviewed this collection point", utilities.ErrConflict)
		case database.IsForeignKeyViolation(err):
			return nil, fmt.Errorf("%w: collection point %d", utilities.ErrNotFound, in.CollectionPointID)
		}
		return nil, err
	}
	return rv, nil
}

// Delete removes rv and recomputes the average of its collection point in
// one transaction. A review already gone yields ErrNotFound.
func (s *Service) Delete(ctx context.Context, rv *entity.Review) error {
	return database.InTx(ctx, s.db, func(tx *sqlx.Tx) error {
		n, err := s.repo.WithTx(tx).Delete(ctx, rv.ID)
		if err != nil {
			return err
		}
		if n == 0 {
			return fmt.Errorf("%w: review %d", utilities.ErrNotFound, rv.ID)
		}
		return s.rating.WithTx(tx).Recompute(ctx, rv.CollectionPointID)
	})
}
