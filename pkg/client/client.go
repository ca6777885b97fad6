// Package client is a thin typed wrapper over the blog HTTP API, meant for
// UI code and integration tests. It keeps the session token after SignIn and
// sends it on every authenticated call.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/Petroo-2/marnstack4/internal/models"
)

const defaultTimeout = 15 * time.Second

// APIError is the decoded error envelope of a non-2xx response.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// Client talks to a running blog service.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
}

func New(baseURL string) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: defaultTimeout},
	}
}

// SetToken installs a session token obtained elsewhere (e.g. stored from a
// previous run). SignIn sets it automatically.
func (c *Client) SetToken(token string) { c.token = token }

type registeredUser struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
	Role     string `json:"role"`
}

// SignUp registers a new user.
func (c *Client) SignUp(ctx context.Context, username, email, password string) (int64, error) {
	var out registeredUser
	err := c.doJSON(ctx, http.MethodPost, "/auth/sign-up", map[string]string{
		"username": username,
		"email":    email,
		"password": password,
	}, &out)
	if err != nil {
		return 0, err
	}
	return out.ID, nil
}

// SignIn logs in with a username or email and stores the returned token.
func (c *Client) SignIn(ctx context.Context, login, password string) (string, error) {
	var out struct {
		Token string `json:"token"`
	}
	err := c.doJSON(ctx, http.MethodPost, "/auth/sign-in", map[string]string{
		"login":    login,
		"password": password,
	}, &out)
	if err != nil {
		return "", err
	}
	c.token = out.Token
	return out.Token, nil
}

type postList struct {
	Count int           `json:"count"`
	Posts []models.Post `json:"posts"`
}

// Posts lists all posts.
func (c *Client) Posts(ctx context.Context) ([]models.Post, error) {
	var out postList
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/posts", nil, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

// MyPosts lists the authenticated user's posts.
func (c *Client) MyPosts(ctx context.Context) ([]models.Post, error) {
	var out postList
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/posts/my", nil, &out); err != nil {
		return nil, err
	}
	return out.Posts, nil
}

// Post fetches one post with its comments.
func (c *Client) Post(ctx context.Context, id string) (*models.Post, error) {
	var out models.Post
	if err := c.doJSON(ctx, http.MethodGet, "/api/v1/posts/"+id, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreatePost creates a post authored by the signed-in user.
func (c *Client) CreatePost(ctx context.Context, title, content string) (*models.Post, error) {
	var out models.Post
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/posts", map[string]string{
		"title":   title,
		"content": content,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdatePost rewrites title and content of an owned post.
func (c *Client) UpdatePost(ctx context.Context, id, title, content string) (*models.Post, error) {
	var out models.Post
	err := c.doJSON(ctx, http.MethodPut, "/api/v1/posts/"+id, map[string]string{
		"title":   title,
		"content": content,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// DeletePost removes an owned post and its comments.
func (c *Client) DeletePost(ctx context.Context, id string) error {
	return c.doJSON(ctx, http.MethodDelete, "/api/v1/posts/"+id, nil, nil)
}

// AddComment appends a comment and returns the refreshed post.
func (c *Client) AddComment(ctx context.Context, id, text string) (*models.Post, error) {
	var out models.Post
	err := c.doJSON(ctx, http.MethodPost, "/api/v1/posts/"+id+"/comments", map[string]string{
		"text": text,
	}, &out)
	if err != nil {
		return nil, err
	}
	return &out, nil
}

// UploadImage attaches an image file to an owned post.
func (c *Client) UploadImage(ctx context.Context, id, filename string, content io.Reader) (*models.Post, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", filename)
	if err != nil {
		return nil, fmt.Errorf("build multipart body: %w", err)
	}
	if _, err := io.Copy(part, content); err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("finish multipart body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/posts/"+id+"/image", &body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out models.Post
	if err := c.send(req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) doJSON(ctx context.Context, method, path string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
		body = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out any) error {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.URL.Path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var envelope struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&envelope)
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
		return &APIError{StatusCode: resp.StatusCode, Message: envelope.Error}
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

// IsStatus reports whether err is an APIError with the given status code.
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}
