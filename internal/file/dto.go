package file

const timeLayout = "2006-01-02T15:04:05Z"

// UploadRequest carries a file as base64 (optionally a data URI)
type UploadRequest struct {
	GroupID  int64  `json:"group_id" validate:"required,gt=0"`
	FileName string `json:"file_name" validate:"required,max=255"`
	FileData string `json:"file_data" validate:"required"`
}

// FileResponse represents a group file
type FileResponse struct {
	ID           int64  `json:"id"`
	GroupID      int64  `json:"group_id"`
	UserID       int64  `json:"user_id"`
	UploaderName string `json:"uploader_name,omitempty"`
	Name         string `json:"name"`
	URL          string `json:"url"`
	CreatedAt    string `json:"created_at"`
}

// ToResponse converts a File model to a FileResponse DTO
func (f *File) ToResponse() *FileResponse {
	return &FileResponse{
		ID:           f.ID,
		GroupID:      f.GroupID,
		UserID:       f.UserID,
		UploaderName: f.UploaderName,
		Name:         f.Name,
		URL:          f.URL,
		CreatedAt:    f.CreatedAt.UTC().Format(timeLayout),
	}
}
