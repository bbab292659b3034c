package user

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/session"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/internal/user/entity"
	"github.com/Smeroo/Progetto-Cloud-SmartWaste/pkg/utilities"
)

// Service is what the handler needs from UserService.
type Service interface {
	Signup(ctx context.Context, in SignupInput) (*entity.Profile, error)
	AuthenticatePassword(ctx context.Context, email, password string) (*entity.User, error)
	Profile(ctx context.Context, id int64) (*entity.Profile, error)
	Role(ctx context.Context, id int64) (entity.Role, error)
}

// Sessions is what the handler needs from session.Service.
type Sessions interface {
	IssueTokens(ctx context.Context, userID int64, role entity.Role, clientID string) (*session.Tokens, error)
	Rotate(ctx context.Context, token string, role func(ctx context.Context, userID int64) (entity.Role, error)) (*session.Tokens, error)
	RevokeRefreshToken(ctx context.Context, token string) error
}

// Handler exposes HTTP endpoints for user operations (signup / login).
type Handler struct {
	svc      Service
	sessions Sessions
	validate *validator.Validate
	logger   *zap.SugaredLogger
	// SecureCookie forces the Secure flag on the session cookie. Requests
	// arriving over TLS or via an https proxy get it regardless.
	SecureCookie bool
}

func NewHandler(svc Service, sessions Sessions, logger *zap.SugaredLogger) *Handler {
	return &Handler{svc: svc, sessions: sessions, validate: validator.New(), logger: logger}
}

// OperatorRequest is the organization block of an operator signup.
type OperatorRequest struct {
	OrganizationName string  `json:"organizationName" validate:"required,max=200"`
	VATNumber        *string `json:"vatNumber,omitempty" validate:"omitempty,max=32"`
	Telephone        *string `json:"telephone,omitempty" validate:"omitempty,max=32"`
	Website          *string `json:"website,omitempty" validate:"omitempty,url"`
}

// SignupRequest request body for signup endpoint.
type SignupRequest struct {
	Email     string           `json:"email" validate:"required,email"`
	Password  string           `json:"password" validate:"required,min=8,max=72"`
	Name      string           `json:"name" validate:"required,max=100"`
	Surname   string           `json:"surname" validate:"required,max=100"`
	Cellphone *string          `json:"cellphone,omitempty" validate:"omitempty,max=32"`
	Role      string           `json:"role,omitempty" validate:"omitempty,oneof=USER CLIENT OPERATOR"`
	Operator  *OperatorRequest `json:"operator,omitempty"`
}

func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid signup payload", "err", err)
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		utilities.WriteJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid input", "details": err.Error()})
		return
	}
	in := SignupInput{
		Email:     req.Email,
		Password:  req.Password,
		Name:      req.Name,
		Surname:   req.Surname,
		Cellphone: req.Cellphone,
		Role:      entity.Role(req.Role),
	}
	if req.Operator != nil {
		in.Operator = &entity.Operator{
			OrganizationName: req.Operator.OrganizationName,
			VATNumber:        req.Operator.VATNumber,
			Telephone:        req.Operator.Telephone,
			Website:          req.Operator.Website,
		}
	}
	p, err := h.svc.Signup(r.Context(), in)
	if err != nil {
		h.logger.Warnw("signup failed", "err", err)
		utilities.WriteError(w, h.logger, err, "signup failed")
		return
	}
	utilities.WriteJSON(w, http.StatusCreated, p)
}

// LoginRequest login payload.
type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
	ClientID string `json:"clientId,omitempty"`
}

// LoginResponse carries the token pair and the user.
type LoginResponse struct {
	session.Tokens
	User *entity.User `json:"user"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := utilities.DecodeJSON(r, &req); err != nil {
		h.logger.Debugw("invalid login payload", "err", err)
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "invalid payload")
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "email and password are required")
		return
	}
	u, err := h.svc.AuthenticatePassword(r.Context(), req.Email, req.Password)
	if err != nil {
		h.logger.Debugw("login failed", "err", err)
		if errors.Is(err, ErrBadCredentials) {
			utilities.WriteErrorMessage(w, http.StatusUnauthorized, "invalid credentials")
			return
		}
		utilities.WriteError(w, h.logger, err, "login failed")
		return
	}
	tokens, err := h.sessions.IssueTokens(r.Context(), u.ID, u.Role, req.ClientID)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "login failed")
		return
	}
	h.setCookie(w, r, tokens)
	utilities.WriteJSON(w, http.StatusOK, LoginResponse{Tokens: *tokens, User: u})
}

// RefreshRequest carries the opaque refresh token.
type RefreshRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

func (h *Handler) Refresh(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := utilities.DecodeJSON(r, &req); err != nil || h.validate.Struct(&req) != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "refreshToken is required")
		return
	}
	tokens, err := h.sessions.Rotate(r.Context(), req.RefreshToken, h.svc.Role)
	if err != nil {
		if errors.Is(err, session.ErrInvalidRefresh) || errors.Is(err, utilities.ErrNotFound) {
			utilities.WriteErrorMessage(w, http.StatusUnauthorized, "invalid refresh token")
			return
		}
		utilities.WriteError(w, h.logger, err, "refresh failed")
		return
	}
	h.setCookie(w, r, tokens)
	utilities.WriteJSON(w, http.StatusOK, tokens)
}

// Logout revokes the refresh token and clears the cookie. Unknown tokens
// are not an error.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	var req RefreshRequest
	if err := utilities.DecodeJSON(r, &req); err != nil || h.validate.Struct(&req) != nil {
		utilities.WriteErrorMessage(w, http.StatusBadRequest, "refreshToken is required")
		return
	}
	if err := h.sessions.RevokeRefreshToken(r.Context(), req.RefreshToken); err != nil {
		utilities.WriteError(w, h.logger, err, "logout failed")
		return
	}
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
	w.WriteHeader(http.StatusNoContent)
}

// Me returns the profile of the caller.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	s := session.FromContext(r.Context())
	if s == nil {
		utilities.WriteErrorMessage(w, http.StatusUnauthorized, "User not authenticated")
		return
	}
	p, err := h.svc.Profile(r.Context(), s.UserID)
	if err != nil {
		utilities.WriteError(w, h.logger, err, "failed to load profile")
		return
	}
	utilities.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) secure(r *http.Request) bool {
	return h.SecureCookie || r.TLS != nil || strings.EqualFold(r.Header.Get("X-Forwarded-Proto"), "https")
}

func (h *Handler) setCookie(w http.ResponseWriter, r *http.Request, t *session.Tokens) {
	http.SetCookie(w, &http.Cookie{
		Name:     session.CookieName,
		Value:    t.AccessToken,
		Path:     "/",
		MaxAge:   int(t.ExpiresIn),
		HttpOnly: true,
		Secure:   h.secure(r),
		SameSite: http.SameSiteLaxMode,
	})
}
