package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Petroo-2/marnstack4/internal/models"
)

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Ensure implementation of Users interface at compile time.
var _ Users = (*UserRepository)(nil)

const (
	insertUserSQL = `INSERT INTO users (username, email, password_hash, role, created_at) VALUES (?, ?, ?, ?, ?)`

	selectUserByLoginSQL = `SELECT id, username, email, password_hash, role, created_at FROM users WHERE username = ? OR email = ?`
	selectUserByIDSQL    = `SELECT id, username, email, password_hash, role, created_at FROM users WHERE id = ?`
)

// Create inserts a new user and returns its ID. A UNIQUE violation on
// username or email surfaces as ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, u *models.User) (int64, error) {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.ExecContext(ctx, insertUserSQL, u.Username, u.Email, u.PasswordHash, u.Role, u.CreatedAt.UTC())
	if err != nil {
		if isUniqueViolation(err) {
			return 0, fmt.Errorf("insert user %q: %w", u.Username, ErrDuplicate)
		}
		return 0, fmt.Errorf("insert user %q: %w", u.Username, err)
	}
	lastID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("get last insert id for user %q: %w", u.Username, err)
	}
	u.ID = lastID
	return lastID, nil
}

// GetByLogin fetches a user by username or email. Returns (nil, nil) if not found.
func (r *UserRepository) GetByLogin(ctx context.Context, usernameOrEmail string) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUserByLoginSQL, usernameOrEmail, usernameOrEmail), usernameOrEmail)
}

// GetByID fetches a user by primary key. Returns (nil, nil) if not found.
func (r *UserRepository) GetByID(ctx context.Context, id int64) (*models.User, error) {
	return r.scanOne(r.db.QueryRowContext(ctx, selectUserByIDSQL, id), fmt.Sprint(id))
}

func (r *UserRepository) scanOne(row *sql.Row, key string) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Role, &u.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("select user %q: %w", key, err)
	}
	return &u, nil
}

// isUniqueViolation detects sqlite UNIQUE constraint failures. modernc.org/sqlite
// exposes them only through the error text.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
