package report

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/report/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// Store is what the handler needs from Service.
type Store interface {
	Create(ctx context.Context, caller *session.Session, in CreateInput) (*entity.Report, error)
	List(ctx context.Context, caller *session.Session, f entity.Filter) ([]*entity.Report, error)
	UpdateStatus(ctx context.Context, caller *session.Session, id int64, status entity.Status) (*entity.Report, error)
}

type Handler struct {
	svc      Store
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewHandler(svc Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

type createRequest struct {
	CollectionPointID int64  `json:"collectionPointId,string" validate:"required"`
	Type              string `json:"type" validate:"required,oneof=FULL_BIN NEEDS_CLEANING DAMAGED ILLEGAL_DUMPING OTHER"`
	Description       string `json:"description" validate:"max=2000"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	var req createRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid report payload", "err", err)
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input", "details": err.Error()})
		return
	}
	rp, err := h.svc.Create(r.Context(), s, CreateInput{
		CollectionPointID: req.CollectionPointID,
		Type:              entity.Type(req.Type),
		Description:       req.Description,
	})
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to create report")
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, rp)
}

// List answers GET /api/reports?status=&collectionPointId=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	q := r.URL.Query()
	f := entity.Filter{Status: entity.Status(q.Get("status"))}
	if v := q.Get("collectionPointId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			utilities.WriteErrorMessage(w, http.StatusBadRequest, "Invalid query")
			return
		}
		f.CollectionPointID = id
	}
	out, err := h.svc.List(r.Context(), s, f)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to fetch reports")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, out)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=PENDING IN_PROGRESS RESOLVED"`
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	id, err := utilities.PathID(r, "id")
	if err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	var req statusRequest
	if err := utilities.DecodeJSON(r, &req); err != nil || h.validate.Struct(&req) != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "status must be one of PENDING, IN_PROGRESS, RESOLVED")
		return
	}
	rp, err := h.svc.UpdateStatus(r.Context(), s, id, entity.Status(req.Status))
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to update report")
		return
	}
	h.logger.Infow("report status changed", "id", id, "status", rp.Status, "by", s.UserID)
	utilities.WriteJSON(w, http.StatusOK, rp)
}
