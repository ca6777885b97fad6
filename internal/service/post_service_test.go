package service

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/Petroo-2/marnstack4/internal/models"
	"github.com/Petroo-2/marnstack4/internal/repository"
)

// mockPostRepo is an in-memory stand-in for repository.Posts.
type mockPostRepo struct {
	byID map[string]*models.Post

	setImageCalls []string
	deleteCalls   []string
	updateCalls   []models.Post
	appendCalls   []models.Comment

	failAppend error
}

func newMockPostRepo(posts ...*models.Post) *mockPostRepo {
	m := &mockPostRepo{byID: map[string]*models.Post{}}
	for _, p := range posts {
		m.byID[p.ID] = p
	}
	return m
}

func (m *mockPostRepo) Create(_ context.Context, p *models.Post) error {
	if p.ID == "" {
		p.ID = "generated-id"
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now
	m.byID[p.ID] = p
	return nil
}

func (m *mockPostRepo) GetByID(_ context.Context, id string) (*models.Post, error) {
	p, ok := m.byID[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	cp := *p
	cp.Comments = append([]models.Comment(nil), p.Comments...)
	return &cp, nil
}

func (m *mockPostRepo) List(_ context.Context) ([]models.Post, error) {
	out := make([]models.Post, 0, len(m.byID))
	for _, p := range m.byID {
		out = append(out, *p)
	}
	return out, nil
}

func (m *mockPostRepo) ListByAuthor(_ context.Context, authorID int64) ([]models.Post, error) {
	out := make([]models.Post, 0)
	for _, p := range m.byID {
		if p.AuthorID == authorID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *mockPostRepo) Update(_ context.Context, p *models.Post) error {
	m.updateCalls = append(m.updateCalls, *p)
	stored, ok := m.byID[p.ID]
	if !ok {
		return repository.ErrNotFound
	}
	stored.Title = p.Title
	stored.Content = p.Content
	stored.UpdatedAt = time.Now().UTC()
	return nil
}

func (m *mockPostRepo) SetImageURL(_ context.Context, id, imageURL string) error {
	m.setImageCalls = append(m.setImageCalls, id)
	stored, ok := m.byID[id]
	if !ok {
		return repository.ErrNotFound
	}
	stored.ImageURL = imageURL
	return nil
}

func (m *mockPostRepo) Delete(_ context.Context, id string) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if _, ok := m.byID[id]; !ok {
		return repository.ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *mockPostRepo) AppendComment(_ context.Context, postID string, c *models.Comment) error {
	if m.failAppend != nil {
		return m.failAppend
	}
	stored, ok := m.byID[postID]
	if !ok {
		return repository.ErrNotFound
	}
	c.Seq = len(stored.Comments) + 1
	if c.ID == "" {
		c.ID = "comment-id"
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}
	stored.Comments = append(stored.Comments, *c)
	m.appendCalls = append(m.appendCalls, *c)
	return nil
}

// mockUploader records upload calls and can be set to fail.
type mockUploader struct {
	url   string
	err   error
	calls []string
}

func (m *mockUploader) Upload(_ context.Context, filename string, _ io.Reader) (string, error) {
	m.calls = append(m.calls, filename)
	if m.err != nil {
		return "", m.err
	}
	return m.url, nil
}

var (
	owner    = models.Identity{UserID: 1, Role: models.RoleUser}
	stranger = models.Identity{UserID: 2, Role: models.RoleUser}
	admin    = models.Identity{UserID: 99, Role: models.RoleAdmin}
)

func seedPost() *models.Post {
	return &models.Post{
		ID:       "p1",
		Title:    "Hi",
		Content:  "World",
		AuthorID: owner.UserID,
	}
}

// --- Create ---

func TestPostService_Create_SetsAuthorFromIdentity(t *testing.T) {
	repo := newMockPostRepo()
	svc := NewPostService(repo, &mockUploader{})

	p, err := svc.Create(context.Background(), owner, "Hi", "World")
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if p.AuthorID != owner.UserID {
		t.Fatalf("expected author %d, got %d", owner.UserID, p.AuthorID)
	}
	if p.ID == "" {
		t.Fatalf("expected assigned post id")
	}
}

func TestPostService_Create_InvalidInput(t *testing.T) {
	cases := []struct {
		name           string
		title, content string
	}{
		{name: "empty title", title: "", content: "body"},
		{name: "empty content", title: "title", content: ""},
		{name: "whitespace only", title: "  ", content: "\t"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			svc := NewPostService(newMockPostRepo(), &mockUploader{})
			if _, err := svc.Create(context.Background(), owner, tc.title, tc.content); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

// --- Ownership matrix: update / delete / attach image ---

func TestPostService_OwnershipChecks(t *testing.T) {
	type op func(svc *PostService, ident models.Identity) error

	ops := map[string]op{
		"update": func(svc *PostService, ident models.Identity) error {
			_, err := svc.Update(context.Background(), ident, "p1", "New", "Body")
			return err
		},
		"delete": func(svc *PostService, ident models.Identity) error {
			return svc.Delete(context.Background(), ident, "p1")
		},
		"attach image": func(svc *PostService, ident models.Identity) error {
			_, err := svc.AttachImage(context.Background(), ident, "p1", "pic.png", strings.NewReader("img"))
			return err
		},
	}

	cases := []struct {
		name      string
		ident     models.Identity
		forbidden bool
	}{
		{name: "owner allowed", ident: owner},
		{name: "stranger forbidden", ident: stranger, forbidden: true},
		{name: "admin overrides ownership", ident: admin},
	}

	for opName, run := range ops {
		for _, tc := range cases {
			t.Run(opName+"/"+tc.name, func(t *testing.T) {
				repo := newMockPostRepo(seedPost())
				svc := NewPostService(repo, &mockUploader{url: "https://img.host/x.png"})

				err := run(svc, tc.ident)
				if tc.forbidden {
					if !errors.Is(err, ErrForbidden) {
						t.Fatalf("expected ErrForbidden, got %v", err)
					}
					return
				}
				if err != nil {
					t.Fatalf("expected success, got %v", err)
				}
			})
		}
	}
}

func TestPostService_Update_DoesNotTouchAuthor(t *testing.T) {
	repo := newMockPostRepo(seedPost())
	svc := NewPostService(repo, &mockUploader{})

	p, err := svc.Update(context.Background(), admin, "p1", "Edited", "By admin")
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if p.AuthorID != owner.UserID {
		t.Fatalf("author changed: expected %d, got %d", owner.UserID, p.AuthorID)
	}
}

func TestPostService_Update_UnknownPost(t *testing.T) {
	svc := NewPostService(newMockPostRepo(), &mockUploader{})
	if _, err := svc.Update(context.Background(), owner, "missing", "t", "c"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// --- Delete cascades ---

func TestPostService_Delete_RemovesPostWithComments(t *testing.T) {
	p := seedPost()
	p.Comments = []models.Comment{{ID: "c1", Seq: 1, AuthorID: 2, Body: "hi"}}
	repo := newMockPostRepo(p)
	svc := NewPostService(repo, &mockUploader{})

	if err := svc.Delete(context.Background(), owner, "p1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if _, err := svc.Get(context.Background(), "p1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

// --- AttachImage ---

func TestPostService_AttachImage_StoresURLAfterUpload(t *testing.T) {
	repo := newMockPostRepo(seedPost())
	up := &mockUploader{url: "https://img.host/cat.png"}
	svc := NewPostService(repo, up)

	p, err := svc.AttachImage(context.Background(), owner, "p1", "cat.png", strings.NewReader("img"))
	if err != nil {
		t.Fatalf("AttachImage returned error: %v", err)
	}
	if p.ImageURL != "https://img.host/cat.png" {
		t.Fatalf("unexpected image url: %q", p.ImageURL)
	}
	if len(up.calls) != 1 || up.calls[0] != "cat.png" {
		t.Fatalf("unexpected upload calls: %v", up.calls)
	}
}

// Upload failure must leave the post unmodified.
func TestPostService_AttachImage_UploadFailureLeavesPostUntouched(t *testing.T) {
	repo := newMockPostRepo(seedPost())
	up := &mockUploader{err: errors.New("image host down")}
	svc := NewPostService(repo, up)

	_, err := svc.AttachImage(context.Background(), owner, "p1", "cat.png", strings.NewReader("img"))
	if err == nil {
		t.Fatalf("expected upload error, got nil")
	}
	if len(repo.setImageCalls) != 0 {
		t.Fatalf("post must not be updated after a failed upload")
	}
	stored, _ := repo.GetByID(context.Background(), "p1")
	if stored.ImageURL != "" {
		t.Fatalf("image url set despite failed upload: %q", stored.ImageURL)
	}
}

// --- Comments ---

func TestPostService_AddComment_AppendsInOrder(t *testing.T) {
	repo := newMockPostRepo(seedPost())
	svc := NewPostService(repo, &mockUploader{})

	for i, text := range []string{"first", "second", "third"} {
		// alternate commenters; commenting needs no ownership
		ident := owner
		if i%2 == 1 {
			ident = stranger
		}
		if _, err := svc.AddComment(context.Background(), ident, "p1", text); err != nil {
			t.Fatalf("AddComment(%q) returned error: %v", text, err)
		}
	}

	p, err := svc.Get(context.Background(), "p1")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if len(p.Comments) != 3 {
		t.Fatalf("expected 3 comments, got %d", len(p.Comments))
	}
	for i, want := range []string{"first", "second", "third"} {
		if p.Comments[i].Body != want {
			t.Errorf("comment %d: expected %q, got %q", i, want, p.Comments[i].Body)
		}
		if p.Comments[i].Seq != i+1 {
			t.Errorf("comment %d: expected seq %d, got %d", i, i+1, p.Comments[i].Seq)
		}
	}
	if p.Comments[1].AuthorID != stranger.UserID {
		t.Errorf("expected second comment authored by %d, got %d", stranger.UserID, p.Comments[1].AuthorID)
	}
}

func TestPostService_AddComment_Validation(t *testing.T) {
	repo := newMockPostRepo(seedPost())
	svc := NewPostService(repo, &mockUploader{})

	if _, err := svc.AddComment(context.Background(), owner, "p1", "   "); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for blank text, got %v", err)
	}
	if _, err := svc.AddComment(context.Background(), owner, "missing", "hello"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown post, got %v", err)
	}
}
