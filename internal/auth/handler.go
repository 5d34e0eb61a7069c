package auth

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/studyhive/studyhive/internal/user"
	"github.com/studyhive/studyhive/pkg/response"
)

// Accounts is the part of the user service needed for credentials
type Accounts interface {
	Register(ctx context.Context, req *user.RegisterRequest) (*user.User, error)
	Authenticate(ctx context.Context, email, password string) (*user.User, error)
}

// Handler handles signup and login
type Handler struct {
	accounts Accounts
	tokens   *TokenManager
}

// NewHandler creates a new auth handler
func NewHandler(accounts Accounts, tokens *TokenManager) *Handler {
	return &Handler{accounts: accounts, tokens: tokens}
}

// Routes returns the router for auth endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/signup", h.Signup)
	r.Post("/login", h.Login)

	return r
}

// Signup handles POST /auth/signup
// @Summary      Create an account
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body user.RegisterRequest true "Account details"
// @Success      201 {object} response.APIResponse{data=SessionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /auth/signup [post]
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req user.RegisterRequest
	if !response.Decode(w, r, &req) {
		return
	}

	u, err := h.accounts.Register(r.Context(), &req)
	if err != nil {
		response.FromError(w, err, "Failed to create account")
		return
	}

	h.respondWithSession(w, http.StatusCreated, u)
}

// Login handles POST /auth/login
// @Summary      Log in with email and password
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body LoginRequest true "Credentials"
// @Success      200 {object} response.APIResponse{data=SessionResponse}
// @Failure      401 {object} response.APIResponse
// @Router       /auth/login [post]
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if !response.Decode(w, r, &req) {
		return
	}

	u, err := h.accounts.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		response.FromError(w, err, "Failed to log in")
		return
	}

	h.respondWithSession(w, http.StatusOK, u)
}

func (h *Handler) respondWithSession(w http.ResponseWriter, status int, u *user.User) {
	token, expiresAt, err := h.tokens.Issue(u.ID)
	if err != nil {
		response.FromError(w, err, "Failed to issue token")
		return
	}

	response.JSON(w, status, &SessionResponse{
		Token:     token,
		ExpiresAt: expiresAt.UTC().Format(time.RFC3339),
		User:      u.ToResponse(),
	})
}
