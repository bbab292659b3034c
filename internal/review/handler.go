package review

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/review/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	userentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// Store is what the handler needs from Service.
type Store interface {
	List(ctx context.Context, pointID int64) ([]*entity.Review, error)
	Get(ctx context.Context, id int64) (*entity.Review, error)
	Create(ctx context.Context, in CreateInput) (*entity.Review, error)
	Delete(ctx context.Context, rv *entity.Review) error
}

type Handler struct {
	svc      Store
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewHandler(svc Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

// List answers GET /api/reviews?collectionPointId=N.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	pointID, err := strconv.ParseInt(r.URL.Query().Get("collectionPointId"), 10, 64)
	if err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "collectionPointId is required")
		return
	}
	out, err := h.svc.List(r.Context(), pointID)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to fetch reviews")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, out)
}

type createRequest struct {
	CollectionPointID int64   `json:"collectionPointId,string" validate:"required"`
	Rating            int     `json:"rating" validate:"required,min=1,max=5"`
	Comment           *string `json:"comment,omitempty" validate:"omitempty,max=1000"`
}

// Create is restricted to CLIENT users.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	if !s.HasRole(userentity.RoleClient) {
		utilities.WriteErrorMessage(w, http.StatusForbidden, "User not authorized")
		return
	}
	var req createRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid review payload", "err", err)
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input", "details": err.Error()})
		return
	}
	rv, err := h.svc.Create(r.Context(), CreateInput{
		UserID:            s.UserID,
		CollectionPointID: req.CollectionPointID,
		Rating:            req.Rating,
		Comment:           req.Comment,
	})
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to create review")
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, rv)
}

// Delete answers DELETE /api/reviews/{id}. Only the CLIENT who wrote a
// review may delete it.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	if s.Role != userentity.RoleClient {
		utilities.WriteErrorMessage(w, http.StatusForbidden, "User not authorized")
		return
	}
	id, err := utilities.PathID(r, "id")
	if err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}

	rv, err := h.svc.Get(r.Context(), id)
	if err != nil {
		h.deleteFailed(w, id, err)
		return
	}
	if rv.UserID != s.UserID {
		utilities.WriteErrorMessage(w, http.StatusForbidden, "Not authorized to delete this review")
		return
	}
	if err := h.svc.Delete(r.Context(), rv); err != nil {
		h.deleteFailed(w, id, err)
		return
	}
	h.logger.Infow("review deleted", "id", id, "collection_point", rv.CollectionPointID, "by", s.UserID)
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) deleteFailed(w http.ResponseWriter, id int64, err error) {
	if errors.Is(err, utilities.ErrNotFound) {
		utilities.WriteErrorMessage(w, http.StatusNotFound, "Review not found")
		return
	}
	h.logger.Errorw("delete review failed", "id", id, "err", err)
	utilities.WriteErrorMessage(w, http.StatusInternalServerError, "Failed to delete review")
}
