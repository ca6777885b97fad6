package handlers

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Petroo-2/marnstack4/internal/models"
	"github.com/Petroo-2/marnstack4/internal/service"
)

func doJSON(t *testing.T, r http.Handler, method, path, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf *bytes.Buffer
	if body != "" {
		buf = bytes.NewBufferString(body)
	} else {
		buf = &bytes.Buffer{}
	}
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, path, buf)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, vs := range authHeader(token) {
		for _, v := range vs {
			req.Header.Set(k, v)
		}
	}
	r.ServeHTTP(w, req)
	return w
}

func TestPostHandlers_PublicReads(t *testing.T) {
	posts := &mockPosts{
		posts: []models.Post{{ID: "p1", Title: "Hi", AuthorID: 1}},
		post:  &models.Post{ID: "p1", Title: "Hi", AuthorID: 1},
	}
	s := &service.Service{Posts: posts}
	r := newTestRouter(s)

	// list needs no token
	w := doJSON(t, r, http.MethodGet, "/api/v1/posts", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("list status=%d, body=%s", w.Code, w.Body.String())
	}
	var listResp struct {
		Count int           `json:"count"`
		Posts []models.Post `json:"posts"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if listResp.Count != 1 || len(listResp.Posts) != 1 {
		t.Fatalf("unexpected list response: %+v", listResp)
	}

	// get needs no token
	w = doJSON(t, r, http.MethodGet, "/api/v1/posts/p1", "", "")
	if w.Code != http.StatusOK {
		t.Fatalf("get status=%d, body=%s", w.Code, w.Body.String())
	}
	if posts.lastID != "p1" {
		t.Fatalf("Get got id %q", posts.lastID)
	}
}

func TestPostHandlers_GetUnknownMapsTo404(t *testing.T) {
	posts := &mockPosts{err: service.ErrNotFound}
	s := &service.Service{Posts: posts}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodGet, "/api/v1/posts/nope", "", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d (body=%s)", w.Code, w.Body.String())
	}
}

func TestPostHandlers_MutationsRequireToken(t *testing.T) {
	s := &service.Service{Authorization: &mockAuth{}, Posts: &mockPosts{}}
	r := newTestRouter(s)

	cases := []struct {
		method, path, body string
	}{
		{http.MethodPost, "/api/v1/posts", `{"title":"Hi","content":"World"}`},
		{http.MethodPut, "/api/v1/posts/p1", `{"title":"Hi","content":"World"}`},
		{http.MethodDelete, "/api/v1/posts/p1", ""},
		{http.MethodPost, "/api/v1/posts/p1/comments", `{"text":"hi"}`},
	}
	for _, tc := range cases {
		w := doJSON(t, r, tc.method, tc.path, tc.body, "")
		if w.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected 401 without token, got %d", tc.method, tc.path, w.Code)
		}
	}
}

func TestPostHandlers_CreatePassesIdentity(t *testing.T) {
	ident := models.Identity{UserID: 7, Role: models.RoleUser}
	posts := &mockPosts{post: &models.Post{ID: "p1", Title: "Hi", Content: "World", AuthorID: 7}}
	s := &service.Service{
		Authorization: &mockAuth{verifyIdent: ident},
		Posts:         posts,
	}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts", `{"title":"Hi","content":"World"}`, "tok")
	if w.Code != http.StatusOK {
		t.Fatalf("create status=%d, body=%s", w.Code, w.Body.String())
	}
	if posts.lastIdent != ident {
		t.Fatalf("service got identity %+v, want %+v", posts.lastIdent, ident)
	}
	if posts.lastTitle != "Hi" || posts.lastContent != "World" {
		t.Fatalf("unexpected payload: %q %q", posts.lastTitle, posts.lastContent)
	}
}

func TestPostHandlers_ForbiddenMapsTo403(t *testing.T) {
	posts := &mockPosts{err: service.ErrForbidden, delErr: service.ErrForbidden}
	s := &service.Service{
		Authorization: &mockAuth{verifyIdent: models.Identity{UserID: 2, Role: models.RoleUser}},
		Posts:         posts,
	}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPut, "/api/v1/posts/p1", `{"title":"x","content":"y"}`, "tok")
	if w.Code != http.StatusForbidden {
		t.Fatalf("update: expected 403, got %d", w.Code)
	}

	w = doJSON(t, r, http.MethodDelete, "/api/v1/posts/p1", "", "tok")
	if w.Code != http.StatusForbidden {
		t.Fatalf("delete: expected 403, got %d", w.Code)
	}
}

func TestPostHandlers_AddComment(t *testing.T) {
	ident := models.Identity{UserID: 5, Role: models.RoleUser}
	posts := &mockPosts{post: &models.Post{
		ID: "p1", Title: "Hi", AuthorID: 1,
		Comments: []models.Comment{{ID: "c1", Seq: 1, AuthorID: 5, Body: "nice"}},
	}}
	s := &service.Service{
		Authorization: &mockAuth{verifyIdent: ident},
		Posts:         posts,
	}
	r := newTestRouter(s)

	w := doJSON(t, r, http.MethodPost, "/api/v1/posts/p1/comments", `{"text":"nice"}`, "tok")
	if w.Code != http.StatusOK {
		t.Fatalf("comment status=%d, body=%s", w.Code, w.Body.String())
	}
	if posts.lastText != "nice" || posts.lastID != "p1" {
		t.Fatalf("service got (%q, %q)", posts.lastID, posts.lastText)
	}

	var p models.Post
	if err := json.Unmarshal(w.Body.Bytes(), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(p.Comments) != 1 || p.Comments[0].Body != "nice" {
		t.Fatalf("unexpected post in response: %+v", p)
	}
}

func TestPostHandlers_UploadImage(t *testing.T) {
	ident := models.Identity{UserID: 1, Role: models.RoleUser}
	posts := &mockPosts{post: &models.Post{ID: "p1", ImageURL: "https://img.host/cat.png", AuthorID: 1}}
	s := &service.Service{
		Authorization: &mockAuth{verifyIdent: ident},
		Posts:         posts,
	}
	r := newTestRouter(s)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("image", "cat.png")
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := part.Write([]byte("fake-image-bytes")); err != nil {
		t.Fatalf("write part: %v", err)
	}
	_ = mw.Close()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/posts/p1/image", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("upload status=%d, body=%s", w.Code, w.Body.String())
	}
	if posts.lastFile != "cat.png" {
		t.Fatalf("AttachImage got filename %q", posts.lastFile)
	}

	// missing file part → 400
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/posts/p1/image", bytes.NewBufferString("not-multipart"))
	req.Header.Set("Authorization", "Bearer tok")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing file, got %d", w.Code)
	}
}
