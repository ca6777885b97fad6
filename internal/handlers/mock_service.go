package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/Petroo-2/marnstack4/internal/models"
	"github.com/Petroo-2/marnstack4/internal/service"

	"github.com/gin-gonic/gin"
)

// ---- Service Mocks ----

type mockAuth struct {
	registerUser *models.User
	registerErr  error
	loginToken   string
	loginErr     error
	verifyIdent  models.Identity
	verifyErr    error

	lastRegisterUsername string
	lastRegisterEmail    string
	lastLoginLogin       string
	lastVerifyToken      string
}

func (m *mockAuth) Register(_ context.Context, username, email, password string) (*models.User, error) {
	m.lastRegisterUsername = username
	m.lastRegisterEmail = email
	return m.registerUser, m.registerErr
}

func (m *mockAuth) Login(_ context.Context, usernameOrEmail, password string) (string, error) {
	m.lastLoginLogin = usernameOrEmail
	return m.loginToken, m.loginErr
}

func (m *mockAuth) VerifyToken(accessToken string) (models.Identity, error) {
	m.lastVerifyToken = accessToken
	return m.verifyIdent, m.verifyErr
}

func (m *mockAuth) EnsureAdmin(_ context.Context, username, email, password string) error {
	return nil
}

type mockPosts struct {
	post    *models.Post
	posts   []models.Post
	err     error
	delErr  error
	listErr error

	lastIdent   models.Identity
	lastID      string
	lastTitle   string
	lastContent string
	lastText    string
	lastFile    string
}

func (m *mockPosts) Create(_ context.Context, ident models.Identity, title, content string) (*models.Post, error) {
	m.lastIdent, m.lastTitle, m.lastContent = ident, title, content
	return m.post, m.err
}

func (m *mockPosts) Get(_ context.Context, id string) (*models.Post, error) {
	m.lastID = id
	return m.post, m.err
}

func (m *mockPosts) List(_ context.Context) ([]models.Post, error) {
	return m.posts, m.listErr
}

func (m *mockPosts) ListByAuthor(_ context.Context, ident models.Identity) ([]models.Post, error) {
	m.lastIdent = ident
	return m.posts, m.listErr
}

func (m *mockPosts) Update(_ context.Context, ident models.Identity, id, title, content string) (*models.Post, error) {
	m.lastIdent, m.lastID, m.lastTitle, m.lastContent = ident, id, title, content
	return m.post, m.err
}

func (m *mockPosts) Delete(_ context.Context, ident models.Identity, id string) error {
	m.lastIdent, m.lastID = ident, id
	return m.delErr
}

func (m *mockPosts) AttachImage(_ context.Context, ident models.Identity, id, filename string, content io.Reader) (*models.Post, error) {
	m.lastIdent, m.lastID, m.lastFile = ident, id, filename
	_, _ = io.Copy(io.Discard, content)
	return m.post, m.err
}

func (m *mockPosts) AddComment(_ context.Context, ident models.Identity, id, text string) (*models.Post, error) {
	m.lastIdent, m.lastID, m.lastText = ident, id, text
	return m.post, m.err
}

// ---- Shared Test Helpers ----

func newTestRouter(s *service.Service) *gin.Engine {
	h := NewHandler(s, nil)
	gin.SetMode(gin.TestMode)
	return h.InitRoutes()
}

func authHeader(token string) http.Header {
	h := http.Header{}
	if token != "" {
		h.Set("Authorization", "Bearer "+token)
	}
	return h
}
