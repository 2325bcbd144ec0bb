package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
)

// HabitHandler handles habit-related requests.
type HabitHandler struct {
	store store.Servicer
}

// NewHabitHandler creates a new HabitHandler.
func NewHabitHandler(s store.Servicer) *HabitHandler {
	return &HabitHandler{store: s}
}

// HabitResponse wraps a single habit.
type HabitResponse struct {
	Habit *models.Habit `json:"habit"`
}

// HabitRequest represents the request payload for creating or renaming a habit.
type HabitRequest struct {
	Name string `json:"name" binding:"required,max=100"`
}

// HabitDateRequest represents the request payload for marking a day.
type HabitDateRequest struct {
	Completed *bool `json:"completed" binding:"required"`
}

type habitDateURI struct {
	ID   string `uri:"id" binding:"required"`
	Date string `uri:"date" binding:"required,iso_day"`
}

// CreateHabit handles the creation of a habit
// @Summary     Add a habit
// @Tags        habits
// @Accept      json
// @Produce     json
// @Param       request body HabitRequest true "Habit name"
// @Success     201 {object} HabitResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /habits [post]
func (h *HabitHandler) CreateHabit(c *gin.Context) {
	var req HabitRequest
	if !bindJSON(c, &req) {
		return
	}

	habit, err := h.store.AddHabit(c.Request.Context(), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, HabitResponse{Habit: habit})
}

// RenameHabit handles habit renames
// @Summary     Rename a habit
// @Tags        habits
// @Accept      json
// @Produce     json
// @Param       id      path string       true "Habit ID"
// @Param       request body HabitRequest true "New name"
// @Success     200 {object} HabitResponse
// @Failure     404 {object} ErrorResponse "Habit not found"
// @Router      /habits/{id} [put]
func (h *HabitHandler) RenameHabit(c *gin.Context) {
	var req HabitRequest
	if !bindJSON(c, &req) {
		return
	}

	habit, err := h.store.RenameHabit(c.Request.Context(), c.Param("id"), req.Name)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, HabitResponse{Habit: habit})
}

// ToggleHabitDate marks or unmarks a day optimistically.
// @Summary     Mark a habit day
// @Description The change is visible at once and rolled back if the budget service refuses.
// @Tags        habits
// @Accept      json
// @Produce     json
// @Param       id      path  string           true  "Habit ID"
// @Param       date    path  string           true  "Day (YYYY-MM-DD)"
// @Param       request body  HabitDateRequest true  "Completion flag"
// @Param       wait    query bool             false "Wait for confirmation"
// @Success     202 {object} PendingResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Habit not found"
// @Router      /habits/{id}/dates/{date} [put]
func (h *HabitHandler) ToggleHabitDate(c *gin.Context) {
	var uri habitDateURI
	if err := c.ShouldBindUri(&uri); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}
	var req HabitDateRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.store.ToggleHabitDate(c.Request.Context(), uri.ID, uri.Date, *req.Completed)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondPending(c, p)
}

// DeleteHabit handles habit removal
// @Summary     Delete a habit
// @Tags        habits
// @Produce     json
// @Param       id path string true "Habit ID"
// @Success     200 {object} MessageResponse
// @Router      /habits/{id} [delete]
func (h *HabitHandler) DeleteHabit(c *gin.Context) {
	if err := h.store.DeleteHabit(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: store.SuccessMessage(store.OpDeleteHabit)})
}
