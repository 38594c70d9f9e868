package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
	"github.com/saralgov/licence-backend/internal/response"
)

// ErrPostNotFound is returned for unknown or unpublished posts.
var ErrPostNotFound = errors.New("post not found")

// BlogService handles public announcement content.
type BlogService struct {
	blogRepo *repository.BlogRepository
}

// NewBlogService creates a new BlogService.
func NewBlogService(blogRepo *repository.BlogRepository) *BlogService {
	return &BlogService{blogRepo: blogRepo}
}

// List retrieves posts with pagination. Public callers see published
// posts only; the back office sees drafts too.
func (s *BlogService) List(ctx context.Context, publishedOnly bool, page, perPage int) ([]model.BlogPost, *response.Pagination, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 10
	}
	if perPage > 50 {
		perPage = 50
	}

	posts, total, err := s.blogRepo.List(ctx, publishedOnly, perPage, (page-1)*perPage)
	if err != nil {
		return nil, nil, err
	}
	if posts == nil {
		posts = []model.BlogPost{}
	}

	pagination := &response.Pagination{
		Page:       page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: (total + perPage - 1) / perPage,
	}
	return posts, pagination, nil
}

// GetBySlug retrieves a published post by its slug.
func (s *BlogService) GetBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	post, err := s.blogRepo.GetBySlug(ctx, slug)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// Get retrieves any post by id, drafts included.
func (s *BlogService) Get(ctx context.Context, id uuid.UUID) (*model.BlogPost, error) {
	post, err := s.blogRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return post, nil
}

// Create stores a new post with a slug derived from the title. Slug
// collisions get a numeric suffix.
func (s *BlogService) Create(ctx context.Context, authorID uuid.UUID, req *model.CreateBlogPostRequest) (*model.BlogPost, error) {
	post := &model.BlogPost{
		AuthorID:  authorID,
		Title:     req.Title,
		Body:      req.Body,
		Published: req.Published,
	}

	base := slugify(req.Title)
	post.Slug = base
	for attempt := 2; ; attempt++ {
		err := s.blogRepo.Create(ctx, post)
		if err == nil {
			return post, nil
		}
		var pgErr *pgconn.PgError
		if !errors.As(err, &pgErr) || pgErr.Code != "23505" || attempt > 10 {
			return nil, err
		}
		post.Slug = fmt.Sprintf("%s-%d", base, attempt)
	}
}

// Update applies a partial edit. Publishing a draft stamps its
// published_at once; unpublishing keeps the original stamp.
func (s *BlogService) Update(ctx context.Context, id uuid.UUID, req *model.UpdateBlogPostRequest) (*model.BlogPost, error) {
	post, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		post.Title = req.Title
	}
	if req.Body != "" {
		post.Body = req.Body
	}
	if req.Published != nil {
		post.Published = *req.Published
	}

	if err := s.blogRepo.Update(ctx, post); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes a post.
func (s *BlogService) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return s.blogRepo.Delete(ctx, id)
}

// slugify lowercases a title and collapses everything that is not a
// letter or digit into single hyphens.
func slugify(title string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(title) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
