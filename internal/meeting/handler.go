package meeting

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

// Handler handles HTTP requests for meetings
type Handler struct {
	service *Service
}

// NewHandler creates a new meeting handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GroupRoutes returns the router mounted under /groups/{groupId}/meetings
func (h *Handler) GroupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Create)

	return r
}

// Routes returns the router for /meetings
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Put("/{meetingId}", h.Update)
	r.Delete("/{meetingId}", h.Delete)

	return r
}

func ids(w http.ResponseWriter, r *http.Request, param string) (userID, id int64, ok bool) {
	userID, ok = middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
		return 0, 0, false
	}

	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+param)
		return 0, 0, false
	}
	return userID, id, true
}

func toResponses(meetings []*Meeting) []*MeetingResponse {
	out := make([]*MeetingResponse, len(meetings))
	for i, m := range meetings {
		out[i] = m.ToResponse()
	}
	return out
}

// List handles GET /groups/{groupId}/meetings
// @Summary      List group meetings
// @Tags         meetings
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MeetingResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/meetings [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := ids(w, r, "groupId")
	if !ok {
		return
	}

	meetings, err := h.service.List(r.Context(), groupID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to list meetings")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(meetings))
}

// Create handles POST /groups/{groupId}/meetings
// @Summary      Schedule a meeting
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Param        request body MeetingRequest true "Meeting time"
// @Success      201 {object} response.APIResponse{data=MeetingResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/meetings [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := ids(w, r, "groupId")
	if !ok {
		return
	}

	var req MeetingRequest
	if !response.Decode(w, r, &req) {
		return
	}

	m, err := h.service.Create(r.Context(), groupID, userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create meeting")
		return
	}

	response.JSON(w, http.StatusCreated, m.ToResponse())
}

// Update handles PUT /meetings/{meetingId}
// @Summary      Reschedule a meeting
// @Tags         meetings
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        meetingId path int true "Meeting ID"
// @Param        request body MeetingRequest true "Meeting time"
// @Success      200 {object} response.APIResponse{data=MeetingResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /meetings/{meetingId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, meetingID, ok := ids(w, r, "meetingId")
	if !ok {
		return
	}

	var req MeetingRequest
	if !response.Decode(w, r, &req) {
		return
	}

	m, err := h.service.Update(r.Context(), meetingID, userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update meeting")
		return
	}

	response.JSON(w, http.StatusOK, m.ToResponse())
}

// Delete handles DELETE /meetings/{meetingId}
// @Summary      Cancel a meeting
// @Tags         meetings
// @Security     BearerAuth
// @Param        meetingId path int true "Meeting ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /meetings/{meetingId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, meetingID, ok := ids(w, r, "meetingId")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), meetingID, userID); err != nil {
		response.FromError(w, err, "Failed to delete meeting")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Meeting deleted successfully"})
}
