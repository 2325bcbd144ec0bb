package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
)

// SessionHandler handles authentication, profile and view-state requests.
type SessionHandler struct {
	store store.Servicer
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(s store.Servicer) *SessionHandler {
	return &SessionHandler{store: s}
}

// ScopeRequest represents the request payload for changing the active account scope.
type ScopeRequest struct {
	Scope string `json:"scope"`
}

// UserResponse wraps the signed-in user.
type UserResponse struct {
	User *models.User `json:"user"`
}

// GetState returns the complete local state.
// @Summary     Get state
// @Description Snapshot of the user, transactions, budget, habits and chat history
// @Tags        state
// @Produce     json
// @Success     200 {object} store.Snapshot
// @Router      /state [get]
func (h *SessionHandler) GetState(c *gin.Context) {
	c.JSON(http.StatusOK, h.store.Snapshot())
}

// Login handles user login
// @Summary     Log in
// @Description Authenticate against the budget service and load the user's data
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.LoginRequest true "Login credentials"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Invalid credentials"
// @Failure     502 {object} ErrorResponse "Budget service unavailable"
// @Router      /auth/login [post]
func (h *SessionHandler) Login(c *gin.Context) {
	var req models.LoginRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.store.Login(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

// Signup handles user registration
// @Summary     Sign up
// @Description Create an account on the budget service and start a session
// @Tags        auth
// @Accept      json
// @Produce     json
// @Param       request body models.SignupRequest true "Signup details"
// @Success     201 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     502 {object} ErrorResponse "Budget service rejected the signup"
// @Router      /auth/signup [post]
func (h *SessionHandler) Signup(c *gin.Context) {
	var req models.SignupRequest
	if !bindJSON(c, &req) {
		return
	}

	user, err := h.store.Signup(c.Request.Context(), req)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, UserResponse{User: user})
}

// Logout ends the session and forgets the stored credential.
// @Summary     Log out
// @Tags        auth
// @Produce     json
// @Success     200 {object} MessageResponse
// @Router      /auth/logout [post]
func (h *SessionHandler) Logout(c *gin.Context) {
	h.store.Logout(c.Request.Context())
	c.JSON(http.StatusOK, MessageResponse{Message: "Logged out"})
}

// UpdateProfile handles profile changes
// @Summary     Update profile
// @Tags        profile
// @Accept      json
// @Produce     json
// @Param       request body models.ProfileUpdate true "Fields to change"
// @Success     200 {object} UserResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not logged in"
// @Router      /profile [put]
func (h *SessionHandler) UpdateProfile(c *gin.Context) {
	var update models.ProfileUpdate
	if !bindJSON(c, &update) {
		return
	}

	user, err := h.store.UpdateProfile(c.Request.Context(), update)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, UserResponse{User: user})
}

// ChangePassword handles password changes
// @Summary     Change password
// @Tags        profile
// @Accept      json
// @Produce     json
// @Param       request body models.PasswordChange true "Current and new password"
// @Success     200 {object} MessageResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not logged in"
// @Router      /profile/password [put]
func (h *SessionHandler) ChangePassword(c *gin.Context) {
	var change models.PasswordChange
	if !bindJSON(c, &change) {
		return
	}

	if err := h.store.ChangePassword(c.Request.Context(), change); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: store.SuccessMessage(store.OpChangePassword)})
}

// SetScope changes the account the transaction list is filtered by.
// @Summary     Set active scope
// @Description "all" (or an empty scope) shows every account
// @Tags        state
// @Accept      json
// @Produce     json
// @Param       request body ScopeRequest true "Account name or all"
// @Success     200 {object} ScopeRequest
// @Router      /scope [put]
func (h *SessionHandler) SetScope(c *gin.Context) {
	var req ScopeRequest
	if !bindJSON(c, &req) {
		return
	}

	h.store.SetActiveScope(req.Scope)
	c.JSON(http.StatusOK, ScopeRequest{Scope: h.store.ActiveScope()})
}
