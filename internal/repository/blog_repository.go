package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/saralgov/licence-backend/internal/model"
)

// BlogRepository handles blog post data access.
type BlogRepository struct {
	pool *pgxpool.Pool
}

// NewBlogRepository creates a new BlogRepository.
func NewBlogRepository(pool *pgxpool.Pool) *BlogRepository {
	return &BlogRepository{pool: pool}
}

// Create inserts a new post.
func (r *BlogRepository) Create(ctx context.Context, p *model.BlogPost) error {
	return r.pool.QueryRow(ctx,
		`INSERT INTO blog_posts (author_id, title, slug, body, published, published_at)
		 VALUES ($1, $2, $3, $4, $5, CASE WHEN $5 THEN NOW() END)
		 RETURNING id, created_at, updated_at, published_at`,
		p.AuthorID, p.Title, p.Slug, p.Body, p.Published,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
}

// Update edits a post; publishing for the first time stamps published_at.
func (r *BlogRepository) Update(ctx context.Context, p *model.BlogPost) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE blog_posts
		 SET title = $1, slug = $2, body = $3, published = $4,
		     published_at = CASE WHEN $4 AND published_at IS NULL THEN NOW() ELSE published_at END,
		     updated_at = NOW()
		 WHERE id = $5`,
		p.Title, p.Slug, p.Body, p.Published, p.ID)
	return err
}

// Delete removes a post.
func (r *BlogRepository) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM blog_posts WHERE id = $1`, id)
	return err
}

// GetByID retrieves one post regardless of publication state.
func (r *BlogRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.BlogPost, error) {
	return r.get(ctx, `WHERE id = $1`, id)
}

// GetBySlug retrieves one published post for the public site.
func (r *BlogRepository) GetBySlug(ctx context.Context, slug string) (*model.BlogPost, error) {
	return r.get(ctx, `WHERE slug = $1 AND published`, slug)
}

func (r *BlogRepository) get(ctx context.Context, where string, arg any) (*model.BlogPost, error) {
	p := &model.BlogPost{}
	err := r.pool.QueryRow(ctx,
		`SELECT id, author_id, title, slug, body, published, created_at, updated_at, published_at
		 FROM blog_posts `+where, arg,
	).Scan(&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

// List retrieves posts newest first. publishedOnly restricts to the
// public view.
func (r *BlogRepository) List(ctx context.Context, publishedOnly bool, limit, offset int) ([]model.BlogPost, int, error) {
	where := ""
	if publishedOnly {
		where = ` WHERE published`
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM blog_posts`+where).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx,
		`SELECT id, author_id, title, slug, body, published, created_at, updated_at, published_at
		 FROM blog_posts`+where+`
		 ORDER BY created_at DESC
		 LIMIT $1 OFFSET $2`, limit, offset,
	)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var posts []model.BlogPost
	for rows.Next() {
		var p model.BlogPost
		if err := rows.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Slug, &p.Body, &p.Published, &p.CreatedAt, &p.UpdatedAt, &p.PublishedAt); err != nil {
			return nil, 0, err
		}
		posts = append(posts, p)
	}
	return posts, total, rows.Err()
}
