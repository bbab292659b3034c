package health

import (
	"context"
	"net/http"
	"reflect"
	"time"

	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// PingTimeout bounds the database probe so the endpoint stays fast when
// the database is unreachable.
const PingTimeout = time.Second

// Pinger is satisfied by *sql.DB and *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

type Status struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type Handler struct {
	db     Pinger
	logger *zap.SugaredLogger
}

// NewHandler treats a nil db, including a typed nil pointer such as a nil
// *sqlx.DB, as a database that is not configured.
func NewHandler(db Pinger, logger *zap.SugaredLogger) *Handler {
	if v := reflect.ValueOf(db); db != nil && v.Kind() == reflect.Pointer && v.IsNil() {
		db = nil
	}
	return &Handler{db: db, logger: logger}
}

// Check always answers 200; a failed ping only flips the database field.
func (h *Handler) Check(w http.ResponseWriter, r *http.Request) {
	st := Status{Status: "healthy", Database: "connected"}
	ctx, cancel := context.WithTimeout(r.Context(), PingTimeout)
	defer cancel()
	if h.db == nil {
		st.Database = "disconnected"
	} else if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warnw("health check: database unreachable", "err", err)
		st.Database = "disconnected"
	}
	utilities.WriteJSON(w, http.StatusOK, st)
}
