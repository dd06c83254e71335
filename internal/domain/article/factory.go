package article

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// NewFromCreateRequest builds the stored article. Category must already be
// normalized by the caller. publishedAt is set only when the article is
// published at creation.
func NewFromCreateRequest(req CreateArticleRequest, authorID string) Article {
	now := time.Now().UTC()

	var publishedAt *time.Time

	if req.Published {
		t := now
		publishedAt = &t
	}

	return Article{
		ID:          uuid.NewString(),
		Title:       strings.TrimSpace(req.Title),
		Content:     req.Content,
		Excerpt:     req.Excerpt,
		Author:      strings.TrimSpace(req.Author),
		AuthorID:    authorID,
		Category:    req.Category,
		Tags:        TrimTags(req.Tags),
		ImageURL:    strings.TrimSpace(req.ImageURL),
		Published:   req.Published,
		PublishedAt: publishedAt,
		Likes:       []string{},
		Comments:    []Comment{},
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}

// NewComment builds a server-timestamped comment for appending.
func NewComment(authorID, authorName, text string) Comment {
	return Comment{
		ID:         uuid.NewString(),
		AuthorID:   authorID,
		AuthorName: strings.TrimSpace(authorName),
		Text:       text,
		CreatedAt:  time.Now().UTC(),
	}
}
