package wastetype

import (
	"context"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	userentity "github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/wastetype/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// Store is what the handler needs from Service.
type Store interface {
	List(ctx context.Context) ([]*entity.WasteType, error)
	Get(ctx context.Context, id int64) (*entity.WasteType, error)
	Create(ctx context.Context, in *entity.WasteType) (*entity.WasteType, error)
	Delete(ctx context.Context, id int64) error
}

// Handler contains dependencies for handling waste type endpoints.
type Handler struct {
	svc      Store
	validate *validator.Validate
	logger   *zap.SugaredLogger
}

// NewHandler constructs a new Handler.
func NewHandler(svc Store, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, validate: validator.New(), logger: logger}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	out, err := h.svc.List(r.Context())
	if err != nil {
		utilities.WriteError(w, h.logger, err, "failed to list waste types")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := utilities.PathID(r, "id")
	if err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	wt, err := h.svc.Get(r.Context(), id)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "failed to load waste type")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, wt)
}

type createRequest struct {
	Name         string `json:"name" validate:"required,max=100"`
	Description  string `json:"description" validate:"max=500"`
	Color        string `json:"color" validate:"omitempty,hexcolor"`
	IconName     string `json:"iconName" validate:"max=50"`
	DisposalInfo string `json:"disposalInfo" validate:"max=2000"`
	Examples     string `json:"examples" validate:"max=2000"`
}

// Create is restricted to ADMIN.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	if !s.HasRole(userentity.RoleAdmin) {
		utilities.WriteErrorMessage(w, http.StatusForbidden, "User not authorized")
		return
	}
	var req createRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input", "details": err.Error()})
		return
	}
	wt, err := h.svc.Create(r.Context(), entity.NewWasteType(0, req.Name, req.Description, req.Color, req.IconName, req.DisposalInfo, req.Examples))
	if err != nil {
		utilities.WriteError(w, h.logger, err, "failed to create waste type")
		return
	}
	h.logger.Infow("waste type created", "id", wt.ID, "by", s.UserID)
	utilities.WriteJSON(w, http.StatusCreated, wt)
}

// Delete is restricted to ADMIN.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	if !s.HasRole(userentity.RoleAdmin) {
		utilities.WriteErrorMessage(w, http.StatusForbidden, "User not authorized")
		return
	}
	id, err := utilities.PathID(r, "id")
	if err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "Invalid ID")
		return
	}
	if err := h.svc.Delete(r.Context(), id); err != nil {
		utilities.WriteError(w, h.logger, err, "failed to delete waste type")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
