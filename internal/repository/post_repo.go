package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Petroo-2/marnstack4/internal/models"

	"github.com/google/uuid"
)

type PostRepository struct {
	db *sql.DB
}

func NewPostRepository(db *sql.DB) *PostRepository { return &PostRepository{db: db} }

var _ Posts = (*PostRepository)(nil)

const (
	insertPostSQL = `
		INSERT INTO posts (id, title, content, author_id, image_url, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	selectPostSQL = `
		SELECT id, title, content, author_id, image_url, created_at, updated_at
		FROM posts WHERE id = ?
	`

	selectPostsSQL = `
		SELECT id, title, content, author_id, image_url, created_at, updated_at
		FROM posts ORDER BY created_at DESC
	`

	selectPostsByAuthorSQL = `
		SELECT id, title, content, author_id, image_url, created_at, updated_at
		FROM posts WHERE author_id = ? ORDER BY created_at DESC
	`

	updatePostSQL = `UPDATE posts SET title = ?, content = ?, updated_at = ? WHERE id = ?`

	setPostImageSQL = `UPDATE posts SET image_url = ?, updated_at = ? WHERE id = ?`

	deletePostSQL         = `DELETE FROM posts WHERE id = ?`
	deletePostCommentsSQL = `DELETE FROM post_comments WHERE post_id = ?`

	selectCommentsSQL = `
		SELECT id, seq, author_id, body, created_at
		FROM post_comments WHERE post_id = ? ORDER BY seq ASC
	`

	postExistsSQL = `SELECT 1 FROM posts WHERE id = ?`

	// Seq is computed inside the INSERT itself, so two concurrent appends can
	// never both read the same tail and overwrite each other. UNIQUE(post_id, seq)
	// backs this up at the schema level.
	appendCommentSQL = `
		INSERT INTO post_comments (id, post_id, seq, author_id, body, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM post_comments WHERE post_id = ?), ?, ?, ?)
		RETURNING seq
	`
)

// Create inserts a new post. ID and timestamps are set if empty.
func (r *PostRepository) Create(ctx context.Context, p *models.Post) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = p.CreatedAt

	_, err := r.db.ExecContext(ctx, insertPostSQL,
		p.ID, p.Title, p.Content, p.AuthorID, p.ImageURL, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert post %q: %w", p.ID, err)
	}
	return nil
}

// GetByID loads a post together with its comments in seq order.
func (r *PostRepository) GetByID(ctx context.Context, id string) (*models.Post, error) {
	row := r.db.QueryRowContext(ctx, selectPostSQL, id)

	var p models.Post
	var imageURL sql.NullString
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &imageURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("select post %q: %w", id, err)
	}
	p.ImageURL = imageURL.String

	comments, err := r.loadComments(ctx, id)
	if err != nil {
		return nil, err
	}
	p.Comments = comments
	return &p, nil
}

// List returns all posts, newest first, each with its comments.
func (r *PostRepository) List(ctx context.Context) ([]models.Post, error) {
	return r.listQuery(ctx, selectPostsSQL)
}

// ListByAuthor returns the given user's posts, newest first.
func (r *PostRepository) ListByAuthor(ctx context.Context, authorID int64) ([]models.Post, error) {
	return r.listQuery(ctx, selectPostsByAuthorSQL, authorID)
}

func (r *PostRepository) listQuery(ctx context.Context, query string, args ...any) ([]models.Post, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("select posts: %w", err)
	}
	defer rows.Close()

	out := make([]models.Post, 0, 16)
	for rows.Next() {
		var p models.Post
		var imageURL sql.NullString
		if err := rows.Scan(&p.ID, &p.Title, &p.Content, &p.AuthorID, &imageURL, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan post: %w", err)
		}
		p.ImageURL = imageURL.String
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate posts: %w", err)
	}

	for i := range out {
		comments, err := r.loadComments(ctx, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Comments = comments
	}
	return out, nil
}

// Update rewrites title/content only; author and creation time are immutable here.
func (r *PostRepository) Update(ctx context.Context, p *models.Post) error {
	p.UpdatedAt = time.Now().UTC()
	res, err := r.db.ExecContext(ctx, updatePostSQL, p.Title, p.Content, p.UpdatedAt, p.ID)
	if err != nil {
		return fmt.Errorf("update post %q: %w", p.ID, err)
	}
	return requireRow(res, p.ID)
}

// SetImageURL stores the hosted image reference after a successful upload.
func (r *PostRepository) SetImageURL(ctx context.Context, id, imageURL string) error {
	res, err := r.db.ExecContext(ctx, setPostImageSQL, imageURL, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("set image for post %q: %w", id, err)
	}
	return requireRow(res, id)
}

// Delete removes the post and its comments in one transaction.
func (r *PostRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete of post %q: %w", id, err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, deletePostCommentsSQL, id); err != nil {
		return fmt.Errorf("delete comments of post %q: %w", id, err)
	}
	res, err := tx.ExecContext(ctx, deletePostSQL, id)
	if err != nil {
		return fmt.Errorf("delete post %q: %w", id, err)
	}
	if err := requireRow(res, id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete of post %q: %w", id, err)
	}
	return nil
}

// AppendComment atomically appends a comment to the end of the post's
// sequence. The assigned seq is written back into c.
func (r *PostRepository) AppendComment(ctx context.Context, postID string, c *models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin comment append on post %q: %w", postID, err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	if err := tx.QueryRowContext(ctx, postExistsSQL, postID).Scan(&exists); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("check post %q: %w", postID, err)
	}

	err = tx.QueryRowContext(ctx, appendCommentSQL,
		c.ID, postID, postID, c.AuthorID, c.Body, c.CreatedAt).Scan(&c.Seq)
	if err != nil {
		return fmt.Errorf("append comment to post %q: %w", postID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit comment append on post %q: %w", postID, err)
	}
	return nil
}

func (r *PostRepository) loadComments(ctx context.Context, postID string) ([]models.Comment, error) {
	rows, err := r.db.QueryContext(ctx, selectCommentsSQL, postID)
	if err != nil {
		return nil, fmt.Errorf("select comments of post %q: %w", postID, err)
	}
	defer rows.Close()

	out := make([]models.Comment, 0, 8)
	for rows.Next() {
		var c models.Comment
		if err := rows.Scan(&c.ID, &c.Seq, &c.AuthorID, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan comment: %w", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate comments of post %q: %w", postID, err)
	}
	return out, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected for post %q: %w", id, err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
