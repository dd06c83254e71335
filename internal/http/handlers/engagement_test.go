package handlers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/presslane/newsdesk/internal/auth"
	"github.com/presslane/newsdesk/internal/domain/article"
	"github.com/presslane/newsdesk/internal/http/handlers"
)

type fakeEngagementRepo struct {
	toggleFn func(ctx context.Context, id, userID string, like bool) (int, bool, error)
	appendFn func(ctx context.Context, id string, c article.Comment) error
}

func (f *fakeEngagementRepo) ToggleLike(ctx context.Context, id, userID string, like bool) (int, bool, error) {
	if f.toggleFn != nil {
		return f.toggleFn(ctx, id, userID, like)
	}

	return 0, false, nil
}

func (f *fakeEngagementRepo) AppendComment(ctx context.Context, id string, c article.Comment) error {
	if f.appendFn != nil {
		return f.appendFn(ctx, id, c)
	}

	return nil
}

func TestEngageHandler_Likes(t *testing.T) {
	id := newUUID()

	tests := []struct {
		name           string
		body           string
		toggleFn       func(ctx context.Context, id, userID string, like bool) (int, bool, error)
		wantStatusCode int
		wantLikes      int
		wantLiked      bool
	}{
		{
			name: "like adds the caller",
			body: `{"action": "like"}`,
			toggleFn: func(ctx context.Context, _ string, userID string, like bool) (int, bool, error) {
				if userID != "user-1" || !like {
					t.Fatalf("unexpected toggle args: %s %v", userID, like)
				}
				return 3, true, nil
			},
			wantStatusCode: http.StatusOK,
			wantLikes:      3,
			wantLiked:      true,
		},
		{
			name: "unlike removes the caller",
			body: `{"action": "unlike"}`,
			toggleFn: func(ctx context.Context, _ string, userID string, like bool) (int, bool, error) {
				if like {
					t.Fatalf("expected unlike")
				}
				return 2, false, nil
			},
			wantStatusCode: http.StatusOK,
			wantLikes:      2,
			wantLiked:      false,
		},
		{
			name:           "unknown action rejected",
			body:           `{"action": "love"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "empty body rejected",
			body:           `{}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "action and comment together rejected",
			body:           `{"action": "like", "comment": "hi"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown article maps to 404",
			body: `{"action": "like"}`,
			toggleFn: func(ctx context.Context, _ string, _ string, _ bool) (int, bool, error) {
				return 0, false, article.ErrNotFound
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEngagementRepo{toggleFn: tt.toggleFn}

			h := handlers.NewEngagementHandler(repo, nil)
			r := authedRouter(asUser("user-1", "user"), http.MethodPost, "/articles/:id", h.Engage)

			w := doJSON(r, http.MethodPost, "/articles/"+id, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatusCode, w.Code, w.Body.String())
			}

			if tt.wantStatusCode != http.StatusOK {
				return
			}

			var resp struct {
				Likes int  `json:"likes"`
				Liked bool `json:"liked"`
			}

			if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}

			if resp.Likes != tt.wantLikes || resp.Liked != tt.wantLiked {
				t.Fatalf("expected likes=%d liked=%v, got %+v", tt.wantLikes, tt.wantLiked, resp)
			}
		})
	}
}

func TestEngageHandler_CommentWithoutDisplayName(t *testing.T) {
	appended := false

	repo := &fakeEngagementRepo{
		appendFn: func(ctx context.Context, _ string, c article.Comment) error {
			appended = true
			return nil
		},
	}

	h := handlers.NewEngagementHandler(repo, nil)

	// session with no display name
	claims := &auth.Claims{UserID: "user-1", Role: "user"}

	r := authedRouter(claims, http.MethodPost, "/articles/:id", h.Engage)

	w := doJSON(r, http.MethodPost, "/articles/"+newUUID(), `{"comment": "hi"}`)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without a display name, got %d: %s", w.Code, w.Body.String())
	}

	if appended {
		t.Fatalf("comment must not reach the store without a display name")
	}
}

func TestEngageHandler_Comments(t *testing.T) {
	id := newUUID()

	tests := []struct {
		name           string
		body           string
		appendFn       func(ctx context.Context, id string, c article.Comment) error
		wantStatusCode int
	}{
		{
			name: "success",
			body: `{"comment": "great piece"}`,
			appendFn: func(ctx context.Context, _ string, c article.Comment) error {
				if c.AuthorID != "user-1" || c.Text != "great piece" {
					t.Fatalf("unexpected comment %+v", c)
				}
				if c.ID == "" || c.CreatedAt.IsZero() {
					t.Fatalf("comment must carry id and timestamp")
				}
				return nil
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name: "html stripped before storage",
			body: `{"comment": "<script>alert(1)</script>hello"}`,
			appendFn: func(ctx context.Context, _ string, c article.Comment) error {
				if c.Text != "hello" {
					t.Fatalf("expected sanitized text, got %q", c.Text)
				}
				return nil
			},
			wantStatusCode: http.StatusOK,
		},
		{
			name:           "empty text rejected",
			body:           `{"comment": "   "}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name:           "tag-only text rejected after sanitizing",
			body:           `{"comment": "<b></b>"}`,
			wantStatusCode: http.StatusBadRequest,
		},
		{
			name: "unknown article maps to 404",
			body: `{"comment": "hi"}`,
			appendFn: func(ctx context.Context, _ string, c article.Comment) error {
				return article.ErrNotFound
			},
			wantStatusCode: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeEngagementRepo{appendFn: tt.appendFn}

			h := handlers.NewEngagementHandler(repo, nil)
			r := authedRouter(asUser("user-1", "user"), http.MethodPost, "/articles/:id", h.Engage)

			w := doJSON(r, http.MethodPost, "/articles/"+id, tt.body)

			if w.Code != tt.wantStatusCode {
				t.Fatalf("expected status %d, got %d: %s", tt.wantStatusCode, w.Code, w.Body.String())
			}
		})
	}
}
