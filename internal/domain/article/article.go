package article

import (
	"errors"
	"time"
)

type Comment struct {
	ID         string    `json:"id"`
	AuthorID   string    `json:"authorId"`
	AuthorName string    `json:"authorName"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}

type Article struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Content     string     `json:"content"`
	Excerpt     string     `json:"excerpt,omitempty"`
	Author      string     `json:"author"` // display copy; AuthorID is the source of truth
	AuthorID    string     `json:"authorId,omitempty"`
	Category    string     `json:"category"`
	Tags        []string   `json:"tags"`
	ImageURL    string     `json:"imageUrl,omitempty"`
	Published   bool       `json:"published"`
	PublishedAt *time.Time `json:"publishedAt"`
	Likes       []string   `json:"likes"`
	Comments    []Comment  `json:"comments"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

var ErrNotFound = errors.New("article not found")

type CreateArticleRequest struct {
	Title     string   `json:"title" binding:"required,max=200"`
	Content   string   `json:"content" binding:"required"`
	Excerpt   string   `json:"excerpt" binding:"omitempty,max=300"`
	Author    string   `json:"author" binding:"required"`
	Category  string   `json:"category" binding:"required"`
	Tags      []string `json:"tags"`
	ImageURL  string   `json:"imageUrl"`
	Published bool     `json:"published"`
}

// UpdateArticleRequest is a patch; only non-nil fields are applied.
type UpdateArticleRequest struct {
	Title     *string   `json:"title" binding:"omitempty,min=1,max=200"`
	Content   *string   `json:"content" binding:"omitempty,min=1"`
	Excerpt   *string   `json:"excerpt" binding:"omitempty,max=300"`
	Author    *string   `json:"author" binding:"omitempty,min=1"`
	Category  *string   `json:"category"`
	Tags      *[]string `json:"tags"`
	ImageURL  *string   `json:"imageUrl"`
	Published *bool     `json:"published"`
}

// with pointers if optional, it will be nil
type ListArticlesFilter struct {
	Categories []string
	Published  *bool
	Author     *string
	AuthorID   *string
	Query      *string
	Limit      int
	Skip       int
}
