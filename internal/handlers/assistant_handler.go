package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
)

// AssistantHandler handles the AI parse, chat and planning requests.
type AssistantHandler struct {
	store store.Servicer
}

// NewAssistantHandler creates a new AssistantHandler.
func NewAssistantHandler(s store.Servicer) *AssistantHandler {
	return &AssistantHandler{store: s}
}

// ParsedTransactionResponse wraps a transaction extracted from free text.
type ParsedTransactionResponse struct {
	Transaction *models.TransactionInput `json:"transaction"`
}

// ChatResponse wraps the assistant's reply.
type ChatResponse struct {
	Reply *models.ChatMessage `json:"reply"`
}

// PlanResponse wraps a generated plan.
type PlanResponse struct {
	Plan *models.Plan `json:"plan"`
}

// TextRequest carries a free-text transaction description.
type TextRequest struct {
	Text string `json:"text" binding:"required,max=500"`
}

// ChatRequest carries a chat message.
type ChatRequest struct {
	Message string `json:"message" binding:"required,max=2000"`
}

// PlanRequest carries the optional free-form context of a budget plan.
type PlanRequest struct {
	UserContext   string `json:"user_context" binding:"max=2000"`
	PeriodContext string `json:"period_context" binding:"max=500"`
}

// ParseTransaction turns free text into a prefilled transaction.
// @Summary     Parse a transaction
// @Description Returns a prefilled transaction; nothing is saved
// @Tags        ai
// @Accept      json
// @Produce     json
// @Param       request body TextRequest true "Free text"
// @Success     200 {object} ParsedTransactionResponse
// @Failure     502 {object} ErrorResponse "AI couldn't understand that"
// @Router      /ai/parse [post]
func (h *AssistantHandler) ParseTransaction(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}

	in, err := h.store.ParseTransaction(c.Request.Context(), req.Text)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ParsedTransactionResponse{Transaction: in})
}

// QuickAdd parses free text and adds the result as a transaction.
// @Summary     Quick add
// @Tags        ai
// @Accept      json
// @Produce     json
// @Param       request body  TextRequest true  "Free text"
// @Param       wait    query bool        false "Wait for confirmation"
// @Success     202 {object} PendingResponse
// @Failure     502 {object} ErrorResponse "AI couldn't understand that"
// @Router      /ai/quick-add [post]
func (h *AssistantHandler) QuickAdd(c *gin.Context) {
	var req TextRequest
	if !bindJSON(c, &req) {
		return
	}

	p, err := h.store.QuickAdd(c.Request.Context(), req.Text)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondPending(c, p)
}

// Chat sends a message to the assistant together with a summary of the
// current month.
// @Summary     Chat
// @Tags        ai
// @Accept      json
// @Produce     json
// @Param       request body ChatRequest true "Message"
// @Success     200 {object} ChatResponse
// @Failure     502 {object} ErrorResponse "Assistant unavailable"
// @Router      /ai/chat [post]
func (h *AssistantHandler) Chat(c *gin.Context) {
	var req ChatRequest
	if !bindJSON(c, &req) {
		return
	}

	reply, err := h.store.Chat(c.Request.Context(), req.Message)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, ChatResponse{Reply: reply})
}

// ClearChat empties the chat history.
// @Summary     Clear chat
// @Tags        ai
// @Produce     json
// @Success     200 {object} MessageResponse
// @Router      /ai/chat [delete]
func (h *AssistantHandler) ClearChat(c *gin.Context) {
	h.store.ClearChat()
	c.JSON(http.StatusOK, MessageResponse{Message: "Chat cleared"})
}

// Plan asks the assistant for a budget plan.
// @Summary     Budget plan
// @Tags        ai
// @Accept      json
// @Produce     json
// @Param       request body PlanRequest false "Extra context"
// @Success     200 {object} PlanResponse
// @Failure     502 {object} ErrorResponse "Failed to generate budget plan"
// @Router      /ai/plan [post]
func (h *AssistantHandler) Plan(c *gin.Context) {
	var req PlanRequest
	if c.Request.ContentLength != 0 && !bindJSON(c, &req) {
		return
	}

	plan, err := h.store.Plan(c.Request.Context(), req.UserContext, req.PeriodContext)
	if err != nil {
		respondWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, PlanResponse{Plan: plan})
}
