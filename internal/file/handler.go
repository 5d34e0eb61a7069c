package file

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

// Handler handles HTTP requests for group files
type Handler struct {
	service *Service
}

// NewHandler creates a new file handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for file endpoints. The path ID is a group ID
// for GET and a file ID for DELETE.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Upload)
	r.Get("/{id}", h.List)
	r.Delete("/{id}", h.Delete)

	return r
}

func pathID(w http.ResponseWriter, r *http.Request, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

// List handles GET /files/{groupId}
// @Summary      List group files
// @Tags         files
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]FileResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /files/{id} [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	groupID, ok := pathID(w, r, "group")
	if !ok {
		return
	}

	files, err := h.service.List(r.Context(), groupID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to list files")
		return
	}

	out := make([]*FileResponse, len(files))
	for i, f := range files {
		out[i] = f.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Upload handles POST /files
// @Summary      Upload a group file
// @Description  The content is sent base64 encoded, optionally as a data URI
// @Tags         files
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body UploadRequest true "File"
// @Success      201 {object} response.APIResponse{data=FileResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /files [post]
func (h *Handler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	// room for the base64 expansion and the JSON envelope
	limit := h.service.MaxBytes()/3*4 + 64*1024

	var req UploadRequest
	if !response.DecodeLimit(w, r, &req, limit) {
		return
	}

	f, err := h.service.Upload(r.Context(), userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to upload file")
		return
	}

	response.JSON(w, http.StatusCreated, f.ToResponse())
}

// Delete handles DELETE /files/{fileId}
// @Summary      Delete my file
// @Tags         files
// @Security     BearerAuth
// @Param        id path int true "File ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /files/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	fileID, ok := pathID(w, r, "file")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), fileID, userID); err != nil {
		response.FromError(w, err, "Failed to delete file")
		return
	}

	response.JSON(w, http.StatusOK, map[string]interface{}{"message": "File deleted successfully", "file_id": fileID})
}
