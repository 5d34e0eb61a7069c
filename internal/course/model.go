package course

import "time"

// Course is a community catalog entry. Image and resource payloads live in
// the blob store; the *Key fields identify them for release.
type Course struct {
	ID          int64     `json:"id"`
	AuthorID    int64     `json:"author_id"`
	AuthorName  string    `json:"author_name,omitempty"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Categories  []string  `json:"categories"`
	Tags        []string  `json:"tags"`
	ImageURL    *string   `json:"image_url,omitempty"`
	ImageKey    *string   `json:"-"`
	ResourceURL *string   `json:"resource_url,omitempty"`
	ResourceKey *string   `json:"-"`
	Link        *string   `json:"link,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// Filter narrows the catalog listing
type Filter struct {
	AuthorID int64
	Category string
	Tag      string
}
