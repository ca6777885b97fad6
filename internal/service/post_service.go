package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/Petroo-2/marnstack4/internal/models"
	"github.com/Petroo-2/marnstack4/internal/repository"
)

// Uploader is the external image-hosting collaborator. One call, no
// further coupling: it takes the file and returns the hosted URL.
type Uploader interface {
	Upload(ctx context.Context, filename string, content io.Reader) (string, error)
}

// PostService enforces ownership rules and coordinates image attachment.
type PostService struct {
	posts    repository.Posts
	uploader Uploader
}

func NewPostService(posts repository.Posts, uploader Uploader) *PostService {
	return &PostService{posts: posts, uploader: uploader}
}

// Create stores a new post authored by the caller. The author reference is
// fixed here and no later operation can change it.
func (s *PostService) Create(ctx context.Context, ident models.Identity, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	p := &models.Post{
		Title:    title,
		Content:  content,
		AuthorID: ident.UserID,
		Comments: []models.Comment{},
	}
	if err := s.posts.Create(ctx, p); err != nil {
		return nil, fmt.Errorf("create post: %w", err)
	}
	return p, nil
}

// Get returns a single post with its comments. Public.
func (s *PostService) Get(ctx context.Context, id string) (*models.Post, error) {
	return s.load(ctx, id)
}

// List returns all posts, newest first. Public.
func (s *PostService) List(ctx context.Context) ([]models.Post, error) {
	posts, err := s.posts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	return posts, nil
}

// ListByAuthor returns the caller's own posts.
func (s *PostService) ListByAuthor(ctx context.Context, ident models.Identity) ([]models.Post, error) {
	posts, err := s.posts.ListByAuthor(ctx, ident.UserID)
	if err != nil {
		return nil, fmt.Errorf("list posts of user %d: %w", ident.UserID, err)
	}
	return posts, nil
}

// Update rewrites title and content. Ownership-checked; the author field
// is not part of the update surface at all.
func (s *PostService) Update(ctx context.Context, ident models.Identity, id, title, content string) (*models.Post, error) {
	title = strings.TrimSpace(title)
	content = strings.TrimSpace(content)
	if title == "" || content == "" {
		return nil, fmt.Errorf("%w: title and content are required", ErrInvalidInput)
	}

	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, ident); err != nil {
		return nil, err
	}

	p.Title = title
	p.Content = content
	if err := s.posts.Update(ctx, p); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update post %q: %w", id, err)
	}
	return p, nil
}

// Delete removes the post and its embedded comments. Ownership-checked.
func (s *PostService) Delete(ctx context.Context, ident models.Identity, id string) error {
	p, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorize(p, ident); err != nil {
		return err
	}
	if err := s.posts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return ErrNotFound
		}
		return fmt.Errorf("delete post %q: %w", id, err)
	}
	return nil
}

// AttachImage uploads the file to the external host and stores the returned
// reference. The post row is touched only after the upload succeeds, so an
// upload failure leaves the post exactly as it was. No lock is held across
// the external call.
func (s *PostService) AttachImage(ctx context.Context, ident models.Identity, id, filename string, content io.Reader) (*models.Post, error) {
	p, err := s.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorize(p, ident); err != nil {
		return nil, err
	}

	url, err := s.uploader.Upload(ctx, filename, content)
	if err != nil {
		return nil, fmt.Errorf("upload image for post %q: %w", id, err)
	}

	if err := s.posts.SetImageURL(ctx, id, url); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("store image url for post %q: %w", id, err)
	}
	p.ImageURL = url
	p.UpdatedAt = time.Now().UTC()
	return p, nil
}

// AddComment appends a comment to the end of the post's sequence. Any
// authenticated identity may comment; there is no ownership restriction.
func (s *PostService) AddComment(ctx context.Context, ident models.Identity, id, text string) (*models.Post, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: comment text is required", ErrInvalidInput)
	}

	c := &models.Comment{
		AuthorID: ident.UserID,
		Body:     text,
	}
	if err := s.posts.AppendComment(ctx, id, c); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("append comment to post %q: %w", id, err)
	}
	return s.load(ctx, id)
}

// authorize applies the ownership rule: the author may mutate the post, and
// admin always wins regardless of authorship.
func (s *PostService) authorize(p *models.Post, ident models.Identity) error {
	if p.AuthorID == ident.UserID || ident.IsAdmin() {
		return nil
	}
	return ErrForbidden
}

func (s *PostService) load(ctx context.Context, id string) (*models.Post, error) {
	p, err := s.posts.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load post %q: %w", id, err)
	}
	return p, nil
}
