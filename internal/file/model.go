package file

import "time"

// File is a group file whose content lives in the blob store
type File struct {
	ID         int64     `json:"id"`
	GroupID    int64     `json:"group_id"`
	UserID     int64     `json:"user_id"`
	Name       string    `json:"name"`
	StorageKey string    `json:"-"`
	URL        string    `json:"url"`
	CreatedAt  time.Time `json:"created_at"`

	// Populated from JOIN
	UploaderName string `json:"uploader_name,omitempty"`
}
