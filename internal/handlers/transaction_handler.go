package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/pagination"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
)

// TransactionHandler handles transaction-related requests.
type TransactionHandler struct {
	store store.Servicer
}

// NewTransactionHandler creates a new TransactionHandler.
func NewTransactionHandler(s store.Servicer) *TransactionHandler {
	return &TransactionHandler{store: s}
}

// TransactionResponse wraps a single transaction.
type TransactionResponse struct {
	Transaction *models.Transaction `json:"transaction"`
}

// GetTransactions lists the transactions visible under the active scope,
// newest first.
// @Summary     List transactions
// @Tags        transactions
// @Produce     json
// @Param       page      query int false "Page number" minimum(1)
// @Param       page_size query int false "Items per page" minimum(1) maximum(100)
// @Success     200 {object} pagination.PageResponse[models.Transaction]
// @Failure     400 {object} ErrorResponse "Invalid pagination"
// @Router      /transactions [get]
func (h *TransactionHandler) GetTransactions(c *gin.Context) {
	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	c.JSON(http.StatusOK, pagination.Slice(h.store.Transactions(), page))
}

// CreateTransaction adds a transaction optimistically.
// @Summary     Add a transaction
// @Description The transaction is visible at once under a temporary id. Pass wait=true to block until the budget service confirms it.
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       request body models.TransactionInput true "Transaction details"
// @Param       wait    query bool false "Wait for confirmation"
// @Success     202 {object} PendingResponse "Accepted, confirmation pending"
// @Success     200 {object} PendingResponse "Confirmed (wait=true)"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Not logged in"
// @Router      /transactions [post]
func (h *TransactionHandler) CreateTransaction(c *gin.Context) {
	var in models.TransactionInput
	if !bindJSON(c, &in) {
		return
	}

	p, err := h.store.AddTransaction(c.Request.Context(), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondPending(c, p)
}

// UpdateTransaction replaces a confirmed transaction.
// @Summary     Edit a transaction
// @Tags        transactions
// @Accept      json
// @Produce     json
// @Param       id      path string true "Transaction ID"
// @Param       request body models.TransactionInput true "New transaction details"
// @Success     200 {object} TransactionResponse
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Transaction still being saved"
// @Router      /transactions/{id} [put]
func (h *TransactionHandler) UpdateTransaction(c *gin.Context) {
	var in models.TransactionInput
	if !bindJSON(c, &in) {
		return
	}

	tx, err := h.store.EditTransaction(c.Request.Context(), c.Param("id"), in)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, TransactionResponse{Transaction: tx})
}

// DeleteTransaction removes a transaction optimistically.
// @Summary     Delete a transaction
// @Description The transaction disappears at once and is restored if the budget service refuses.
// @Tags        transactions
// @Produce     json
// @Param       id   path  string true  "Transaction ID"
// @Param       wait query bool   false "Wait for confirmation"
// @Success     202 {object} PendingResponse
// @Failure     404 {object} ErrorResponse "Transaction not found"
// @Failure     409 {object} ErrorResponse "Transaction still being saved"
// @Router      /transactions/{id} [delete]
func (h *TransactionHandler) DeleteTransaction(c *gin.Context) {
	p, err := h.store.DeleteTransaction(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondPending(c, p)
}
