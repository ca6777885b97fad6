package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/Petroo-2/marnstack4/internal/models"
)

// Store-level sentinels. Services translate these into the domain error
// taxonomy; raw driver errors never leave this package unwrapped.
var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

type Users interface {
	Create(ctx context.Context, u *models.User) (int64, error)
	GetByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error)
	GetByID(ctx context.Context, id int64) (*models.User, error)
}

type Posts interface {
	Create(ctx context.Context, p *models.Post) error
	GetByID(ctx context.Context, id string) (*models.Post, error)
	List(ctx context.Context) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID int64) ([]models.Post, error)
	Update(ctx context.Context, p *models.Post) error
	SetImageURL(ctx context.Context, id, imageURL string) error
	Delete(ctx context.Context, id string) error
	AppendComment(ctx context.Context, postID string, c *models.Comment) error
}

type Repository struct {
	Users Users
	Posts Posts
}

func NewRepository(db *sql.DB) *Repository {
	return &Repository{
		Users: NewUserRepository(db),
		Posts: NewPostRepository(db),
	}
}
