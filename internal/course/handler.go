package course

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

// Handler handles HTTP requests for the course catalog
type Handler struct {
	service *Service
}

// NewHandler creates a new course handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for course endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	r.Route("/{id}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
	})

	return r
}

func courseID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid course ID")
		return 0, false
	}
	return id, true
}

// bodyLimit leaves room for two base64 attachments and the JSON around them
func (h *Handler) bodyLimit() int64 {
	return 2*(h.service.maxBytes/3*4+1024) + 64<<10
}

// List handles GET /courses
// @Summary      List the course catalog
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        mine query bool false "Only my courses"
// @Param        category query string false "Category label"
// @Param        tag query string false "Tag label"
// @Success      200 {object} response.APIResponse{data=[]CourseResponse}
// @Router       /courses [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	q := r.URL.Query()
	filter := Filter{Category: q.Get("category"), Tag: q.Get("tag")}
	if mine, _ := strconv.ParseBool(q.Get("mine")); mine {
		filter.AuthorID = userID
	}

	courses, err := h.service.List(r.Context(), filter)
	if err != nil {
		response.FromError(w, err, "Failed to list courses")
		return
	}

	out := make([]*CourseResponse, len(courses))
	for i, c := range courses {
		out[i] = c.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Create handles POST /courses
// @Summary      Create a course
// @Description  Image and resource attachments are sent base64 encoded
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CourseRequest true "Course details"
// @Success      201 {object} response.APIResponse{data=CourseResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /courses [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req CourseRequest
	if !response.DecodeLimit(w, r, &req, h.bodyLimit()) {
		return
	}

	c, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create course")
		return
	}

	response.JSON(w, http.StatusCreated, c.ToResponse())
}

// Get handles GET /courses/{id}
// @Summary      Get a course
// @Tags         courses
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Course ID"
// @Success      200 {object} response.APIResponse{data=CourseResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /courses/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(r.Context(), id)
	if err != nil {
		response.FromError(w, err, "Failed to get course")
		return
	}

	response.JSON(w, http.StatusOK, c.ToResponse())
}

// Update handles PUT /courses/{id}
// @Summary      Update a course
// @Tags         courses
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Course ID"
// @Param        request body CourseRequest true "Course details"
// @Success      200 {object} response.APIResponse{data=CourseResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /courses/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	var req CourseRequest
	if !response.DecodeLimit(w, r, &req, h.bodyLimit()) {
		return
	}

	c, err := h.service.Update(r.Context(), id, userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update course")
		return
	}

	response.JSON(w, http.StatusOK, c.ToResponse())
}

// Delete handles DELETE /courses/{id}
// @Summary      Delete a course
// @Tags         courses
// @Security     BearerAuth
// @Param        id path int true "Course ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /courses/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}
	id, ok := courseID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		response.FromError(w, err, "Failed to delete course")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Course deleted"})
}
