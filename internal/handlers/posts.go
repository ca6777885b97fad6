package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// maxImageBytes caps uploaded files before they are streamed to the host.
const maxImageBytes = 10 << 20 // 10 MB

type postRequest struct {
	Title   string `json:"title" binding:"required"`
	Content string `json:"content" binding:"required"`
}

type commentRequest struct {
	Text string `json:"text" binding:"required"`
}

// @Summary      List all posts
// @Tags         posts
// @Produce      json
// @Success      200  {object}  map[string]interface{}  "count, posts"
// @Failure      500  {object}  map[string]string
// @Router       /api/v1/posts [get]
func (h *Handler) listPosts(c *gin.Context) {
	posts, err := h.services.List(c.Request.Context())
	if err != nil {
		h.respondError(c, err, "posts_list_failed")
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(posts), "posts": posts})
}

// @Summary      Get one post with its comments
// @Tags         posts
// @Produce      json
// @Param        id   path      string  true  "Post ID"
// @Success      200  {object}  map[string]interface{}
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/posts/{id} [get]
func (h *Handler) getPost(c *gin.Context) {
	p, err := h.services.Posts.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.respondError(c, err, "posts_get_failed", "id", c.Param("id"))
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      List own posts
// @Tags         posts
// @Produce      json
// @Success      200  {object}  map[string]interface{}
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/posts/my [get]
// @Security     BearerAuth
func (h *Handler) myPosts(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	posts, err := h.services.ListByAuthor(c.Request.Context(), ident)
	if err != nil {
		h.respondError(c, err, "posts_list_own_failed", "user_id", ident.UserID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"count": len(posts), "posts": posts})
}

// @Summary      Create a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        body  body  postRequest  true  "Title and content"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      401  {object}  map[string]string
// @Router       /api/v1/posts [post]
// @Security     BearerAuth
func (h *Handler) createPost(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	var input postRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	p, err := h.services.Posts.Create(c.Request.Context(), ident, input.Title, input.Content)
	if err != nil {
		h.respondError(c, err, "posts_create_failed", "user_id", ident.UserID)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Update a post (owner or admin)
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id    path  string       true  "Post ID"
// @Param        body  body  postRequest  true  "New title and content"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/posts/{id} [put]
// @Security     BearerAuth
func (h *Handler) updatePost(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	var input postRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	p, err := h.services.Posts.Update(c.Request.Context(), ident, c.Param("id"), input.Title, input.Content)
	if err != nil {
		h.respondError(c, err, "posts_update_failed", "id", c.Param("id"), "user_id", ident.UserID)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Delete a post and its comments (owner or admin)
// @Tags         posts
// @Produce      json
// @Param        id   path  string  true  "Post ID"
// @Success      200  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/posts/{id} [delete]
// @Security     BearerAuth
func (h *Handler) deletePost(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	if err := h.services.Posts.Delete(c.Request.Context(), ident, c.Param("id")); err != nil {
		h.respondError(c, err, "posts_delete_failed", "id", c.Param("id"), "user_id", ident.UserID)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}

// @Summary      Attach an image to a post (owner or admin)
// @Description  Multipart form with an "image" file; the file is forwarded to the image host.
// @Tags         posts
// @Accept       multipart/form-data
// @Produce      json
// @Param        id     path      string  true  "Post ID"
// @Param        image  formData  file    true  "Image file"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      403  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/posts/{id}/image [post]
// @Security     BearerAuth
func (h *Handler) uploadImage(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, maxImageBytes)
	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing 'image' file"})
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		h.respondError(c, err, "posts_image_open_failed", "id", c.Param("id"))
		return
	}
	defer func() { _ = file.Close() }()

	p, err := h.services.AttachImage(c.Request.Context(), ident, c.Param("id"), fileHeader.Filename, file)
	if err != nil {
		h.respondError(c, err, "posts_image_failed", "id", c.Param("id"), "user_id", ident.UserID)
		return
	}
	c.JSON(http.StatusOK, p)
}

// @Summary      Append a comment to a post
// @Tags         posts
// @Accept       json
// @Produce      json
// @Param        id    path  string          true  "Post ID"
// @Param        body  body  commentRequest  true  "Comment text"
// @Success      200  {object}  map[string]interface{}
// @Failure      400  {object}  map[string]string
// @Failure      404  {object}  map[string]string
// @Router       /api/v1/posts/{id}/comments [post]
// @Security     BearerAuth
func (h *Handler) addComment(c *gin.Context) {
	ident, ok := identityFromContext(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "missing identity"})
		return
	}
	var input commentRequest
	if ok := h.bindJSONOrBadRequest(c, &input); !ok {
		return
	}
	p, err := h.services.AddComment(c.Request.Context(), ident, c.Param("id"), input.Text)
	if err != nil {
		h.respondError(c, err, "posts_comment_failed", "id", c.Param("id"), "user_id", ident.UserID)
		return
	}
	c.JSON(http.StatusOK, p)
}
