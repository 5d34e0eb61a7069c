package chat

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

// Handler handles HTTP requests for chat messages
type Handler struct {
	service *Service
}

// NewHandler creates a new chat handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// GroupRoutes returns the router mounted under /groups/{groupId}/messages
func (h *Handler) GroupRoutes() chi.Router {
	r := chi.NewRouter()

	r.Get("/", h.List)
	r.Post("/", h.Post)

	return r
}

// Routes returns the router for /messages
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Delete("/{messageId}", h.Delete)
	r.Put("/{messageId}/reaction", h.React)
	r.Delete("/{messageId}/reaction", h.RemoveReaction)

	return r
}

func pathID(w http.ResponseWriter, r *http.Request, param, label string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, param), 10, 64)
	if err != nil || id <= 0 {
		response.BadRequest(w, "Invalid "+label+" ID")
		return 0, false
	}
	return id, true
}

func currentUser(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
	}
	return userID, ok
}

// List handles GET /groups/{groupId}/messages
// @Summary      Message history
// @Description  Full history of the group, oldest first
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MessageResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/messages [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "groupId", "group")
	if !ok {
		return
	}

	messages, err := h.service.List(r.Context(), groupID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to list messages")
		return
	}

	out := make([]*MessageResponse, len(messages))
	for i, m := range messages {
		out[i] = m.ToResponse()
	}
	response.JSON(w, http.StatusOK, out)
}

// Post handles POST /groups/{groupId}/messages
// @Summary      Post a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Param        request body PostMessageRequest true "Message"
// @Success      201 {object} response.APIResponse{data=MessageResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/messages [post]
func (h *Handler) Post(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	groupID, ok := pathID(w, r, "groupId", "group")
	if !ok {
		return
	}

	var req PostMessageRequest
	if !response.Decode(w, r, &req) {
		return
	}

	msg, err := h.service.Post(r.Context(), groupID, userID, req.Content)
	if err != nil {
		response.FromError(w, err, "Failed to post message")
		return
	}

	response.JSON(w, http.StatusCreated, msg.ToResponse())
}

// Delete handles DELETE /messages/{messageId}
// @Summary      Delete my message
// @Tags         messages
// @Security     BearerAuth
// @Param        messageId path int true "Message ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /messages/{messageId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	messageID, ok := pathID(w, r, "messageId", "message")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), messageID, userID); err != nil {
		response.FromError(w, err, "Failed to delete message")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Message deleted successfully"})
}

// React handles PUT /messages/{messageId}/reaction
// @Summary      React to a message
// @Tags         messages
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        messageId path int true "Message ID"
// @Param        request body ReactRequest true "Reaction"
// @Success      200 {object} response.APIResponse{data=[]ReactionResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /messages/{messageId}/reaction [put]
func (h *Handler) React(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	messageID, ok := pathID(w, r, "messageId", "message")
	if !ok {
		return
	}

	var req ReactRequest
	if !response.Decode(w, r, &req) {
		return
	}

	reactions, err := h.service.React(r.Context(), messageID, userID, req.Reaction)
	if err != nil {
		response.FromError(w, err, "Failed to react")
		return
	}

	response.JSON(w, http.StatusOK, reactionResponses(reactions))
}

// RemoveReaction handles DELETE /messages/{messageId}/reaction
// @Summary      Clear my reaction
// @Tags         messages
// @Produce      json
// @Security     BearerAuth
// @Param        messageId path int true "Message ID"
// @Success      200 {object} response.APIResponse{data=[]ReactionResponse}
// @Router       /messages/{messageId}/reaction [delete]
func (h *Handler) RemoveReaction(w http.ResponseWriter, r *http.Request) {
	userID, ok := currentUser(w, r)
	if !ok {
		return
	}
	messageID, ok := pathID(w, r, "messageId", "message")
	if !ok {
		return
	}

	reactions, err := h.service.RemoveReaction(r.Context(), messageID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to clear reaction")
		return
	}

	response.JSON(w, http.StatusOK, reactionResponses(reactions))
}
