package event

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

// Handler handles HTTP requests for calendar events
type Handler struct {
	service *Service
}

// NewHandler creates a new event handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for event endpoints
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

func requestIDs(w http.ResponseWriter, r *http.Request) (userID, id int64, ok bool) {
	userID, ok = middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return 0, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid event ID")
		return 0, 0, false
	}
	return userID, id, true
}

// List handles GET /events
// @Summary      List my events
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]EventResponse}
// @Router       /events [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	events, err := h.service.List(r.Context(), userID)
	if err != nil {
		response.FromError(w, err, "Failed to list events")
		return
	}

	out := make([]*EventResponse, len(events))
	for i, e := range events {
		out[i] = e.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Create handles POST /events
// @Summary      Create an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body EventRequest true "Event details"
// @Success      201 {object} response.APIResponse{data=EventResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /events [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return
	}

	var req EventRequest
	if !response.Decode(w, r, &req) {
		return
	}

	e, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create event")
		return
	}

	response.JSON(w, http.StatusCreated, e.ToResponse())
}

// Get handles GET /events/{id}
// @Summary      Get an event
// @Tags         events
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestIDs(w, r)
	if !ok {
		return
	}

	e, err := h.service.Get(r.Context(), id, userID)
	if err != nil {
		response.FromError(w, err, "Failed to get event")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Update handles PUT /events/{id}
// @Summary      Update an event
// @Tags         events
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Param        request body EventRequest true "Event details"
// @Success      200 {object} response.APIResponse{data=EventResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestIDs(w, r)
	if !ok {
		return
	}

	var req EventRequest
	if !response.Decode(w, r, &req) {
		return
	}

	e, err := h.service.Update(r.Context(), id, userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update event")
		return
	}

	response.JSON(w, http.StatusOK, e.ToResponse())
}

// Delete handles DELETE /events/{id}
// @Summary      Delete an event
// @Tags         events
// @Security     BearerAuth
// @Param        id path int true "Event ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /events/{id} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, id, ok := requestIDs(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), id, userID); err != nil {
		response.FromError(w, err, "Failed to delete event")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Event deleted"})
}
