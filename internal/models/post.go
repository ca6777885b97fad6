package models

import "time"

// Post is a blog entry with its comments embedded in display order.
// AuthorID is fixed at creation and never changes afterwards.
type Post struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	AuthorID  int64     `json:"author_id"`
	ImageURL  string    `json:"image_url,omitempty"`
	Comments  []Comment `json:"comments"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Comment lives inside a post's ordered sequence; it is append-only and
// not addressable on its own. Seq is the position within the post.
type Comment struct {
	ID        string    `json:"id"`
	Seq       int       `json:"seq"`
	AuthorID  int64     `json:"author_id"`
	Body      string    `json:"body"`
	CreatedAt time.Time `json:"created_at"`
}
