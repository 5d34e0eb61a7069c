package group

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/studyhive/studyhive/pkg/middleware"
	"github.com/studyhive/studyhive/pkg/response"
)

// Handler handles HTTP requests for group operations
type Handler struct {
	service *Service
	nested  map[string]http.Handler
}

// NewHandler creates a new group handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service, nested: make(map[string]http.Handler)}
}

// Nest mounts a per-group sub-resource under /{groupId}/<path>. The
// sub-router reads the group with chi.URLParam(r, "groupId").
func (h *Handler) Nest(path string, sub http.Handler) {
	h.nested[path] = sub
}

// Routes returns the router for group endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/user", h.ListMine)
	r.Get("/public", h.ListPublic)

	// Membership by join code
	r.Post("/join", h.Join)
	r.Post("/remove", h.RemoveMember)
	r.Post("/block", h.BlockMember)
	r.Post("/role", h.SetRole)

	r.Route("/{groupId}", func(r chi.Router) {
		r.Get("/", h.Get)
		r.Put("/", h.Update)
		r.Delete("/", h.Delete)
		r.Post("/leave", h.Leave)
		r.Get("/members", h.ListMembers)
		r.Get("/blocked", h.ListBlocked)

		for path, sub := range h.nested {
			r.Mount(path, sub)
		}
	})

	return r
}

// GroupID parses the groupId URL parameter
func GroupID(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "groupId"), 10, 64)
	return id, err == nil && id > 0
}

func requestContext(w http.ResponseWriter, r *http.Request) (int64, bool) {
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		response.Unauthorized(w, "Authentication required")
	}
	return userID, ok
}

func groupContext(w http.ResponseWriter, r *http.Request) (userID, groupID int64, ok bool) {
	if userID, ok = requestContext(w, r); !ok {
		return 0, 0, false
	}
	if groupID, ok = GroupID(r); !ok {
		response.BadRequest(w, "Invalid group ID")
		return 0, 0, false
	}
	return userID, groupID, true
}

// Create handles POST /groups
// @Summary      Create a new group
// @Description  Create a new group with the caller as host
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body CreateGroupRequest true "Group creation request"
// @Success      201 {object} response.APIResponse{data=GroupResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /groups [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req CreateGroupRequest
	if !response.Decode(w, r, &req) {
		return
	}

	group, err := h.service.Create(r.Context(), userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to create group")
		return
	}

	response.JSON(w, http.StatusCreated, group.ToResponse())
}

// ListMine handles GET /groups/user
// @Summary      List my groups
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups/user [get]
func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestContext(w, r)
	if !ok {
		return
	}

	groups, err := h.service.ListForUser(r.Context(), userID)
	if err != nil {
		response.FromError(w, err, "Failed to list groups")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(groups))
}

// ListPublic handles GET /groups/public
// @Summary      List public groups
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse{data=[]GroupResponse}
// @Router       /groups/public [get]
func (h *Handler) ListPublic(w http.ResponseWriter, r *http.Request) {
	groups, err := h.service.ListPublic(r.Context())
	if err != nil {
		response.FromError(w, err, "Failed to list groups")
		return
	}

	response.JSON(w, http.StatusOK, toResponses(groups))
}

// Join handles POST /groups/join
// @Summary      Join a group by code
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body JoinRequest true "Join code"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /groups/join [post]
func (h *Handler) Join(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req JoinRequest
	if !response.Decode(w, r, &req) {
		return
	}

	group, err := h.service.Join(r.Context(), userID, req.JoinCode)
	if err != nil {
		response.FromError(w, err, "Failed to join group")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// RemoveMember handles POST /groups/remove
// @Summary      Remove a member
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body MemberActionRequest true "Group code and member"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /groups/remove [post]
func (h *Handler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req MemberActionRequest
	if !response.Decode(w, r, &req) {
		return
	}

	if err := h.service.RemoveMember(r.Context(), userID, &req); err != nil {
		response.FromError(w, err, "Failed to remove member")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member removed successfully"})
}

// BlockMember handles POST /groups/block
// @Summary      Block a member
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body MemberActionRequest true "Group code and member"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /groups/block [post]
func (h *Handler) BlockMember(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req MemberActionRequest
	if !response.Decode(w, r, &req) {
		return
	}

	if err := h.service.BlockMember(r.Context(), userID, &req); err != nil {
		response.FromError(w, err, "Failed to block member")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Member blocked successfully"})
}

// SetRole handles POST /groups/role
// @Summary      Change a member's role
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body SetRoleRequest true "Group code, member and role"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /groups/role [post]
func (h *Handler) SetRole(w http.ResponseWriter, r *http.Request) {
	userID, ok := requestContext(w, r)
	if !ok {
		return
	}

	var req SetRoleRequest
	if !response.Decode(w, r, &req) {
		return
	}

	if err := h.service.SetRole(r.Context(), userID, &req); err != nil {
		response.FromError(w, err, "Failed to set role")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Role updated successfully"})
}

// Get handles GET /groups/{groupId}
// @Summary      Get group by ID
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId} [get]
func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := groupContext(w, r)
	if !ok {
		return
	}

	group, err := h.service.Get(r.Context(), groupID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to get group")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// Update handles PUT /groups/{groupId}
// @Summary      Edit a group
// @Tags         groups
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Param        request body UpdateGroupRequest true "Fields to change"
// @Success      200 {object} response.APIResponse{data=GroupResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId} [put]
func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := groupContext(w, r)
	if !ok {
		return
	}

	var req UpdateGroupRequest
	if !response.Decode(w, r, &req) {
		return
	}

	group, err := h.service.Update(r.Context(), groupID, userID, &req)
	if err != nil {
		response.FromError(w, err, "Failed to update group")
		return
	}

	response.JSON(w, http.StatusOK, group.ToResponse())
}

// Delete handles DELETE /groups/{groupId}
// @Summary      Delete a group
// @Description  Deletes the group with its members, messages, meetings and files
// @Tags         groups
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      502 {object} response.APIResponse
// @Router       /groups/{groupId} [delete]
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := groupContext(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), groupID, userID); err != nil {
		response.FromError(w, err, "Failed to delete group")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Group deleted successfully"})
}

// Leave handles POST /groups/{groupId}/leave
// @Summary      Leave a group
// @Tags         groups
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Router       /groups/{groupId}/leave [post]
func (h *Handler) Leave(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := groupContext(w, r)
	if !ok {
		return
	}

	if err := h.service.Leave(r.Context(), groupID, userID); err != nil {
		response.FromError(w, err, "Failed to leave group")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Left group successfully"})
}

// ListMembers handles GET /groups/{groupId}/members
// @Summary      List group members
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]MemberResponse}
// @Failure      404 {object} response.APIResponse
// @Router       /groups/{groupId}/members [get]
func (h *Handler) ListMembers(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := groupContext(w, r)
	if !ok {
		return
	}

	members, err := h.service.ListMembers(r.Context(), groupID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to get members")
		return
	}

	memberResponses := make([]*MemberResponse, len(members))
	for i, m := range members {
		memberResponses[i] = m.ToResponse()
	}

	response.JSON(w, http.StatusOK, memberResponses)
}

// ListBlocked handles GET /groups/{groupId}/blocked
// @Summary      List blocked users
// @Tags         groups
// @Produce      json
// @Security     BearerAuth
// @Param        groupId path int true "Group ID"
// @Success      200 {object} response.APIResponse{data=[]BlockedResponse}
// @Failure      403 {object} response.APIResponse
// @Router       /groups/{groupId}/blocked [get]
func (h *Handler) ListBlocked(w http.ResponseWriter, r *http.Request) {
	userID, groupID, ok := groupContext(w, r)
	if !ok {
		return
	}

	blocked, err := h.service.ListBlocked(r.Context(), groupID, userID)
	if err != nil {
		response.FromError(w, err, "Failed to get blocked users")
		return
	}

	out := make([]*BlockedResponse, len(blocked))
	for i, b := range blocked {
		out[i] = &BlockedResponse{UserID: b.UserID, Name: b.Name, BlockedAt: b.BlockedAt.UTC().Format(timeLayout)}
	}

	response.JSON(w, http.StatusOK, out)
}
