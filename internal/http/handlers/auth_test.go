package handlers_test

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/presslane/newsdesk/internal/auth"
	"github.com/presslane/newsdesk/internal/config"
	"github.com/presslane/newsdesk/internal/domain/user"
	"github.com/presslane/newsdesk/internal/http/handlers"
	"github.com/presslane/newsdesk/internal/repo/postgres"
	"github.com/presslane/newsdesk/internal/security"
)

type fakeUsersRepo struct {
	createFn     func(ctx context.Context, email, passwordHash, name, role string) (user.User, error)
	getByEmailFn func(ctx context.Context, email string) (user.User, error)
	getByIDFn    func(ctx context.Context, id string) (user.User, error)
	updateFn     func(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error)
	listRecentFn func(ctx context.Context, limit int) ([]user.User, int, error)
}

func (f *fakeUsersRepo) Create(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
	if f.createFn != nil {
		return f.createFn(ctx, email, passwordHash, name, role)
	}

	return user.User{}, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (user.User, error) {
	if f.getByEmailFn != nil {
		return f.getByEmailFn(ctx, email)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (user.User, error) {
	if f.getByIDFn != nil {
		return f.getByIDFn(ctx, id)
	}

	return user.User{}, user.ErrNotFound
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id string, req user.UpdateProfileRequest) (user.User, error) {
	if f.updateFn != nil {
		return f.updateFn(ctx, id, req)
	}

	return user.User{}, nil
}

func (f *fakeUsersRepo) ListRecent(ctx context.Context, limit int) ([]user.User, int, error) {
	if f.listRecentFn != nil {
		return f.listRecentFn(ctx, limit)
	}

	return nil, 0, nil
}

type fakeThrottle struct {
	allowFn func(ctx context.Context, email string) (bool, error)
	resets  []string
}

func (f *fakeThrottle) Allow(ctx context.Context, email string) (bool, error) {
	if f.allowFn != nil {
		return f.allowFn(ctx, email)
	}

	return true, nil
}

func (f *fakeThrottle) Reset(ctx context.Context, email string) error {
	f.resets = append(f.resets, email)
	return nil
}

func testAuthHandler(users handlers.UsersStore, throttle handlers.LoginThrottle) *handlers.AuthHandler {
	cfg := config.Config{
		Env:               "dev",
		SessionCookieName: "session_token",
		SessionTTLDays:    30,
	}

	jwt := auth.NewManager("test-secret", 30*24*time.Hour)

	return handlers.NewAuthHandler(users, jwt, throttle, cfg)
}

func TestSignUpHandler(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		repoSetUp      func(*fakeUsersRepo)
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"email": "dana@example.com", "password": "correct-horse", "name": "Dana"}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
					if role != "user" {
						t.Fatalf("new accounts must start as user, got %s", role)
					}
					if passwordHash == "correct-horse" {
						t.Fatalf("password must be hashed before storage")
					}
					return user.User{ID: newUUID(), Email: email, Name: name, Role: role}, nil
				}
			},
			wantStatusCode: http.StatusCreated,
		},
		{
			name:           "short password rejected",
			body:           `{"email": "dana@example.com", "password": "short", "name": "Dana"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "bad email rejected",
			body:           `{"email": "not-an-email", "password": "correct-horse", "name": "Dana"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "duplicate email maps to email_taken",
			body: `{"email": "dana@example.com", "password": "correct-horse", "name": "Dana"}`,
			repoSetUp: func(f *fakeUsersRepo) {
				f.createFn = func(ctx context.Context, email, passwordHash, name, role string) (user.User, error) {
					return user.User{}, postgres.ErrEmailAlreadyUsed
				}
			},
			wantStatusCode: http.StatusBadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{}

			if tt.repoSetUp != nil {
				tt.repoSetUp(repo)
			}

			h := testAuthHandler(repo, &fakeThrottle{})
			r := setupRouter(http.MethodPost, "/auth/signup", h.SignUp)

			w := doJSON(r, http.MethodPost, "/auth/signup", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatusCode, w.Code, w.Body.String())
			}

			if tt.wantStatusCode == http.StatusCreated {
				cookies := w.Result().Cookies()

				found := false
				for _, c := range cookies {
					if c.Name == "session_token" && c.Value != "" && c.HttpOnly {
						found = true
					}
				}

				if !found {
					t.Fatalf("expected HttpOnly session cookie, got %v", cookies)
				}
			}
		})
	}
}

func TestLoginHandler(t *testing.T) {
	hash, err := security.HashPassword("correct-horse")

	if err != nil {
		t.Fatalf("hash: %v", err)
	}

	known := user.User{
		ID:           newUUID(),
		Email:        "dana@example.com",
		PasswordHash: hash,
		Name:         "Dana",
		Role:         "user",
	}

	lookup := func(ctx context.Context, email string) (user.User, error) {
		if email == known.Email {
			return known, nil
		}
		return user.User{}, user.ErrNotFound
	}

	tests := []struct {
		name           string
		body           string
		throttle       *fakeThrottle
		wantStatusCode int
		wantReset      bool
	}{
		{
			name:           "success resets the throttle",
			body:           `{"email": "dana@example.com", "password": "correct-horse"}`,
			throttle:       &fakeThrottle{},
			wantStatusCode: http.StatusOK,
			wantReset:      true,
		},
		{
			name:           "email is case insensitive",
			body:           `{"email": "Dana@Example.com", "password": "correct-horse"}`,
			throttle:       &fakeThrottle{},
			wantStatusCode: http.StatusOK,
			wantReset:      true,
		},
		{
			name:           "wrong password is a generic 401",
			body:           `{"email": "dana@example.com", "password": "wrong"}`,
			throttle:       &fakeThrottle{},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "unknown email is the same 401",
			body:           `{"email": "nobody@example.com", "password": "whatever"}`,
			throttle:       &fakeThrottle{},
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name: "throttled caller gets 429 before any lookup",
			body: `{"email": "dana@example.com", "password": "correct-horse"}`,
			throttle: &fakeThrottle{
				allowFn: func(ctx context.Context, email string) (bool, error) {
					return false, nil
				},
			},
			wantStatusCode: http.StatusTooManyRequests,
		},
		{
			name: "throttle outage fails open",
			body: `{"email": "dana@example.com", "password": "correct-horse"}`,
			throttle: &fakeThrottle{
				allowFn: func(ctx context.Context, email string) (bool, error) {
					return false, errors.New("redis down")
				},
			},
			wantStatusCode: http.StatusOK,
			wantReset:      true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeUsersRepo{getByEmailFn: lookup}

			h := testAuthHandler(repo, tt.throttle)
			r := setupRouter(http.MethodPost, "/auth/login", h.Login)

			w := doJSON(r, http.MethodPost, "/auth/login", tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatusCode, w.Code, w.Body.String())
			}

			if tt.wantReset && len(tt.throttle.resets) == 0 {
				t.Fatalf("expected throttle reset after successful login")
			}

			if tt.wantStatusCode == http.StatusOK && !strings.Contains(w.Body.String(), "accessToken") {
				t.Fatalf("expected accessToken in response: %s", w.Body.String())
			}
		})
	}
}

func TestLogoutHandler(t *testing.T) {
	h := testAuthHandler(&fakeUsersRepo{}, &fakeThrottle{})
	r := setupRouter(http.MethodPost, "/auth/logout", h.Logout)

	w := doJSON(r, http.MethodPost, "/auth/logout", "")

	if w.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", w.Code)
	}

	for _, c := range w.Result().Cookies() {
		if c.Name == "session_token" && c.MaxAge >= 0 {
			t.Fatalf("expected cookie expiry on logout, got MaxAge=%d", c.MaxAge)
		}
	}
}
