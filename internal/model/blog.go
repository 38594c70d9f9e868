package model

import (
	"time"

	"github.com/google/uuid"
)

// BlogPost is a public announcement written by an admin.
type BlogPost struct {
	ID          uuid.UUID  `json:"id"`
	AuthorID    uuid.UUID  `json:"author_id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Body        string     `json:"body"`
	Published   bool       `json:"published"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
}

// CreateBlogPostRequest is the admin payload for a new post.
type CreateBlogPostRequest struct {
	Title     string `json:"title" binding:"required,min=3,max=255"`
	Body      string `json:"body" binding:"required,min=1"`
	Published bool   `json:"published"`
}

// UpdateBlogPostRequest is the admin payload for editing a post.
type UpdateBlogPostRequest struct {
	Title     string `json:"title" binding:"omitempty,min=3,max=255"`
	Body      string `json:"body" binding:"omitempty,min=1"`
	Published *bool  `json:"published" binding:"omitempty"`
}
