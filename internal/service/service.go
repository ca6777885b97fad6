package service

import (
	"context"
	"io"

	"github.com/Petroo-2/marnstack4/internal/models"
	"github.com/Petroo-2/marnstack4/internal/repository"
)

type Authorization interface {
	Register(ctx context.Context, username, email, password string) (*models.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (string, error)
	VerifyToken(accessToken string) (models.Identity, error)
	EnsureAdmin(ctx context.Context, username, email, password string) error
}

// Posts exposes post CRUD, comment appends and image attachment.
// Mutating operations take the caller's identity for the ownership check.
type Posts interface {
	Create(ctx context.Context, ident models.Identity, title, content string) (*models.Post, error)
	Get(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, ident models.Identity) ([]models.Post, error)
	Update(ctx context.Context, ident models.Identity, id, title, content string) (*models.Post, error)
	Delete(ctx context.Context, ident models.Identity, id string) error
	AttachImage(ctx context.Context, ident models.Identity, id, filename string, content io.Reader) (*models.Post, error)
	AddComment(ctx context.Context, ident models.Identity, id, text string) (*models.Post, error)
}

//
// Root Service aggregates all sub-services.
//

type Service struct {
	Authorization
	Posts
}

// Deps carries the externally configured collaborators: the token manager
// (built from the config-provided secret) and the image host client.
type Deps struct {
	Tokens         *TokenManager
	Uploader       Uploader
	MinPasswordLen int
}

// NewService wires the repository layer into concrete services.
func NewService(repos *repository.Repository, deps Deps) *Service {
	return &Service{
		Authorization: NewAuthService(repos.Users, deps.Tokens, deps.MinPasswordLen),
		Posts:         NewPostService(repos.Posts, deps.Uploader),
	}
}
