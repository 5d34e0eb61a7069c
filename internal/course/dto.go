package course

import "time"

// CourseRequest creates or replaces a course. Empty payload fields keep the
// current object; the Remove flags drop it.
type CourseRequest struct {
	Name           string   `json:"name" validate:"required,min=1,max=200"`
	Description    string   `json:"description" validate:"max=5000"`
	Categories     []string `json:"categories" validate:"max=20,dive,min=1,max=50"`
	Tags           []string `json:"tags" validate:"max=20,dive,min=1,max=50"`
	Link           *string  `json:"link" validate:"omitempty,url"`
	ImageName      string   `json:"image_name" validate:"max=255"`
	ImageData      string   `json:"image_data"`
	RemoveImage    bool     `json:"remove_image"`
	ResourceName   string   `json:"resource_name" validate:"max=255"`
	ResourceData   string   `json:"resource_data"`
	RemoveResource bool     `json:"remove_resource"`
}

// CourseResponse represents a course
type CourseResponse struct {
	ID          int64    `json:"id"`
	AuthorID    int64    `json:"author_id"`
	AuthorName  string   `json:"author_name,omitempty"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Categories  []string `json:"categories"`
	Tags        []string `json:"tags"`
	ImageURL    *string  `json:"image_url,omitempty"`
	ResourceURL *string  `json:"resource_url,omitempty"`
	Link        *string  `json:"link,omitempty"`
	CreatedAt   string   `json:"created_at"`
	UpdatedAt   string   `json:"updated_at"`
}

// ToResponse converts a Course model to a CourseResponse DTO
func (c *Course) ToResponse() *CourseResponse {
	return &CourseResponse{
		ID:          c.ID,
		AuthorID:    c.AuthorID,
		AuthorName:  c.AuthorName,
		Name:        c.Name,
		Description: c.Description,
		Categories:  nonNil(c.Categories),
		Tags:        nonNil(c.Tags),
		ImageURL:    c.ImageURL,
		ResourceURL: c.ResourceURL,
		Link:        c.Link,
		CreatedAt:   c.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   c.UpdatedAt.UTC().Format(time.RFC3339),
	}
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
