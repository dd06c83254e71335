package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/presslane/newsdesk/internal/auth"
	"github.com/presslane/newsdesk/internal/config"
	"github.com/presslane/newsdesk/internal/domain/user"
	"github.com/presslane/newsdesk/internal/repo/postgres"
	"github.com/presslane/newsdesk/internal/security"
)

type UsersStore interface {
	Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error)
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error)
	ListRecent(ctx context.Context, limit int) ([]user.User, int, error)
}

// LoginThrottle gates login attempts per email. Allow returns false when the
// caller burned through its attempts for the current window.
type LoginThrottle interface {
	Allow(ctx context.Context, email string) (bool, error)
	Reset(ctx context.Context, email string) error
}

type AuthHandler struct {
	users    UsersStore
	jwt      *auth.Manager
	throttle LoginThrottle
	cfg      config.Config
}

func NewAuthHandler(users UsersStore, jwt *auth.Manager, throttle LoginThrottle, cfg config.Config) *AuthHandler {
	return &AuthHandler{users: users, jwt: jwt, throttle: throttle, cfg: cfg}
}

type SignUpRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=72"`
	Name     string `json:"name" binding:"required,min=1,max=100"`
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type sessionResponse struct {
	AccessToken string    `json:"accessToken"`
	User        user.User `json:"user"`
}

func (h *AuthHandler) SignUp(ctx *gin.Context) {
	var req SignUpRequest

	if !BindJSON(ctx, &req) {
		return
	}

	hash, err := security.HashPassword(req.Password)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "hash password failed", "err", err)
		RespondInternal(ctx, "Could not create account")
		return
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	// everyone starts as a plain user; role changes are an operator action
	u, err := h.users.Create(cctx, req.Email, hash, strings.TrimSpace(req.Name), user.RoleUser)

	if err != nil {
		if errors.Is(err, postgres.ErrEmailAlreadyUsed) {
			RespondError(ctx, http.StatusBadRequest, "email_taken", "Email is already registered", nil)
			return
		}

		slog.Default().ErrorContext(ctx.Request.Context(), "create user failed", "err", err)
		RespondInternal(ctx, "Could not create account")
		return
	}

	token, err := h.jwt.GenerateSessionToken(u.ID, u.Email, u.Name, u.Role)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "issue session token failed", "err", err)
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusCreated, sessionResponse{AccessToken: token, User: u})
}

func (h *AuthHandler) Login(ctx *gin.Context) {
	var req LoginRequest

	if !BindJSON(ctx, &req) {
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	if h.throttle != nil {
		allowed, err := h.throttle.Allow(ctx.Request.Context(), email)

		if err != nil {
			// redis being down should not lock everyone out
			slog.Default().WarnContext(ctx.Request.Context(), "login throttle unavailable", "err", err)
		} else if !allowed {
			RespondError(ctx, http.StatusTooManyRequests, "too_many_attempts", "Too many login attempts, try again later", nil)
			return
		}
	}

	cctx, cancel := config.WithTimeout(3 * time.Second)
	defer cancel()

	u, err := h.users.GetByEmail(cctx, email)

	if err != nil {
		if !errors.Is(err, user.ErrNotFound) {
			slog.Default().ErrorContext(ctx.Request.Context(), "login lookup failed", "err", err)
		}

		// same answer for unknown email and bad password
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	if err := security.CheckPassword(u.PasswordHash, req.Password); err != nil {
		RespondUnAuthorized(ctx, "invalid_credentials", "Invalid email or password")
		return
	}

	if h.throttle != nil {
		if err := h.throttle.Reset(ctx.Request.Context(), email); err != nil {
			slog.Default().WarnContext(ctx.Request.Context(), "login throttle reset failed", "err", err)
		}
	}

	token, err := h.jwt.GenerateSessionToken(u.ID, u.Email, u.Name, u.Role)

	if err != nil {
		slog.Default().ErrorContext(ctx.Request.Context(), "issue session token failed", "err", err)
		RespondInternal(ctx, "Could not create session")
		return
	}

	h.setSessionCookie(ctx, token)

	ctx.JSON(http.StatusOK, sessionResponse{AccessToken: token, User: u})
}

func (h *AuthHandler) Logout(ctx *gin.Context) {
	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(h.cfg.SessionCookieName, "", -1, "/", "", h.cfg.Env == "prod", true)

	ctx.Status(http.StatusNoContent)
}

func (h *AuthHandler) setSessionCookie(ctx *gin.Context, token string) {
	maxAge := int(h.jwt.SessionTTL() / time.Second)

	ctx.SetSameSite(http.SameSiteLaxMode)
	ctx.SetCookie(h.cfg.SessionCookieName, token, maxAge, "/", "", h.cfg.Env == "prod", true)
}
