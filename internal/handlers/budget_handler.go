package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
)

// BudgetHandler handles budget settings, accounts and goals.
type BudgetHandler struct {
	store store.Servicer
}

// NewBudgetHandler creates a new BudgetHandler.
func NewBudgetHandler(s store.Servicer) *BudgetHandler {
	return &BudgetHandler{store: s}
}

// BudgetResponse wraps the budget with its accounts and goals.
type BudgetResponse struct {
	Budget models.Budget `json:"budget"`
}

// AccountResponse wraps a created account.
type AccountResponse struct {
	Account *models.Account `json:"account"`
}

// GoalResponse wraps a created goal.
type GoalResponse struct {
	Goal *models.Goal `json:"goal"`
}

// GetBudget returns the budget settings with accounts and goals.
// @Summary     Get budget
// @Tags        budget
// @Produce     json
// @Success     200 {object} BudgetResponse
// @Router      /budget [get]
func (h *BudgetHandler) GetBudget(c *gin.Context) {
	c.JSON(http.StatusOK, BudgetResponse{Budget: h.store.Snapshot().Budget})
}

// UpdateBudget replaces salary, fixed costs and the free-form configuration.
// @Summary     Update budget settings
// @Tags        budget
// @Accept      json
// @Produce     json
// @Param       request body models.BudgetSettings true "Budget settings"
// @Success     200 {object} BudgetResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     502 {object} ErrorResponse "Budget service rejected the change"
// @Router      /budget [put]
func (h *BudgetHandler) UpdateBudget(c *gin.Context) {
	var settings models.BudgetSettings
	if !bindJSON(c, &settings) {
		return
	}

	if err := h.store.UpdateBudgetSettings(c.Request.Context(), settings); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, BudgetResponse{Budget: h.store.Snapshot().Budget})
}

// CreateAccount handles the creation of an account
// @Summary     Create an account
// @Tags        accounts
// @Accept      json
// @Produce     json
// @Param       request body models.AccountInput true "Account details"
// @Success     201 {object} AccountResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /accounts [post]
func (h *BudgetHandler) CreateAccount(c *gin.Context) {
	var in models.AccountInput
	if !bindJSON(c, &in) {
		return
	}

	account, err := h.store.CreateAccount(c.Request.Context(), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, AccountResponse{Account: account})
}

// DeleteAccount handles account removal
// @Summary     Delete an account
// @Tags        accounts
// @Produce     json
// @Param       id path string true "Account ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Account not found"
// @Router      /accounts/{id} [delete]
func (h *BudgetHandler) DeleteAccount(c *gin.Context) {
	if err := h.store.DeleteAccount(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: store.SuccessMessage(store.OpDeleteAccount)})
}

// CreateGoal handles the creation of a savings goal
// @Summary     Add a goal
// @Tags        goals
// @Accept      json
// @Produce     json
// @Param       request body models.GoalInput true "Goal details"
// @Success     201 {object} GoalResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Router      /goals [post]
func (h *BudgetHandler) CreateGoal(c *gin.Context) {
	var in models.GoalInput
	if !bindJSON(c, &in) {
		return
	}

	goal, err := h.store.AddGoal(c.Request.Context(), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, GoalResponse{Goal: goal})
}

// DeleteGoal handles goal removal
// @Summary     Delete a goal
// @Tags        goals
// @Produce     json
// @Param       id path string true "Goal ID"
// @Success     200 {object} MessageResponse
// @Failure     404 {object} ErrorResponse "Goal not found"
// @Router      /goals/{id} [delete]
func (h *BudgetHandler) DeleteGoal(c *gin.Context) {
	if err := h.store.DeleteGoal(c.Request.Context(), c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: store.SuccessMessage(store.OpDeleteGoal)})
}
