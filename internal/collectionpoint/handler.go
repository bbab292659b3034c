package collectionpoint

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/collectionpoint/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

const maxLimit = 100

// Store is what the handler needs from Service.
type Store interface {
	List(ctx context.Context, f entity.Filter) ([]*entity.CollectionPoint, error)
	Get(ctx context.Context, id int64) (*entity.CollectionPoint, error)
	Create(ctx context.Context, caller *session.Session, in Input) (*entity.CollectionPoint, error)
	Update(ctx context.Context, caller *session.Session, id int64, in Input) (*entity.CollectionPoint, error)
	Delete(ctx context.Context, caller *session.Session, id int64) error
}

type Handler struct {
	svc      Store
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

func NewHandler(svc Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

// List answers GET /api/collection-points with the optional filters
// active, wasteTypeId, city, limit and offset.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	f, err := filterFromQuery(r)
	if err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "Invalid query")
		return
	}
	out, err := h.svc.List(r.Context(), f)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to fetch collection points")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, out)
}

func filterFromQuery(r *http.Request) (entity.Filter, error) {
	q := r.URL.Query()
	f := entity.Filter{City: q.Get("city")}
	if v := q.Get("active"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return f, err
		}
		f.Active = &b
	}
	if v := q.Get("wasteTypeId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, err
		}
		f.WasteTypeID = id
	}
	if v := q.Get("operatorId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return f, err
		}
		f.OperatorID = id
	}
	if v := q.Get("limit"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, err
		}
		f.Limit = uint(min(n, maxLimit))
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return f, err
		}
		f.Offset = uint(n)
	}
	return f, nil
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utilities.PathID(r, "id")
	if err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	cp, err := h.svc.Get(r.Context(), id)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to fetch collection point")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, cp)
}

type pointRequest struct {
	OperatorID    string           `json:"operatorId,omitempty" validate:"omitempty,number"`
	Name          string           `json:"name" validate:"required,max=200"`
	Description   string           `json:"description" validate:"max=2000"`
	IsActive      *bool            `json:"isActive,omitempty"`
	Accessibility *string          `json:"accessibility,omitempty" validate:"omitempty,max=200"`
	Capacity      *string          `json:"capacity,omitempty" validate:"omitempty,max=100"`
	Address       *entity.Address  `json:"address" validate:"required"`
	Schedule      *entity.Schedule `json:"schedule,omitempty"`
	WasteTypeIDs  []string         `json:"wasteTypeIds" validate:"dive,number"`
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Input, bool) {
	var req pointRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid collection point payload", "err", err)
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "invalid payload")
		return Input{}, false
	}
	if err := h.validate.Struct(&req); err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input", "details": err.Error()})
		return Input{}, false
	}
	in := Input{
		Name:          req.Name,
		Description:   req.Description,
		IsActive:      req.IsActive,
		Accessibility: req.Accessibility,
		Capacity:      req.Capacity,
		Address:       req.Address,
		Schedule:      req.Schedule,
	}
	if req.OperatorID != "" {
		id, err := strconv.ParseInt(req.OperatorID, 10, 64)
		if err != nil {
			utilities.WriteErrorMessage(w, http.StatusBadRequest, "invalid operatorId")
			return Input{}, false
		}
		in.OperatorID = id
	}
	for _, s := range req.WasteTypeIDs {
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			utilities.WriteErrorMessage(w, http.StatusBadRequest, "invalid wasteTypeIds")
			return Input{}, false
		}
		in.WasteTypeIDs = append(in.WasteTypeIDs, id)
	}
	return in, true
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	cp, err := h.svc.Create(r.Context(), s, in)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to create collection point")
		return
	}
	h.logger.Infow("collection point created", "id", cp.ID, "operator", cp.OperatorID, "by", s.UserID)
	utilities.WriteJSON(w, http.StatusCreated, cp)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
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
	in, ok := h.decode(w, r)
	if !ok {
		return
	}
	cp, err := h.svc.Update(r.Context(), s, id, in)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to update collection point")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, cp)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
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
	if err := h.svc.Delete(r.Context(), s, id); err != nil {
		utilities.WriteError(w, h.logger, err, "Failed to delete collection point")
		return
	}
	h.logger.Infow("collection point deleted", "id", id, "by", s.UserID)
	w.WriteHeader(http.StatusNoContent)
}
