package remote

import (
	"context"
	"net/http"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// ParseTransaction asks the service to read a free-text entry as a transaction.
func (c *Client) ParseTransaction(ctx context.Context, text string) (*models.ParsedTransaction, error) {
	body := struct {
		Text string `json:"text"`
	}{Text: text}

	var parsed models.ParsedTransaction
	if err := c.do(ctx, http.MethodPost, "/ai/parse", body, &parsed); err != nil {
		return nil, err
	}
	return &parsed, nil
}

// Chat sends a message together with a plain-text financial context and
// returns the assistant's reply.
func (c *Client) Chat(ctx context.Context, message, financialContext string) (string, error) {
	body := struct {
		Message string `json:"message"`
		Context string `json:"context,omitempty"`
	}{Message: message, Context: financialContext}

	var result struct {
		Response string `json:"response"`
	}
	if err := c.do(ctx, http.MethodPost, "/ai/chat", body, &result); err != nil {
		return "", err
	}
	return result.Response, nil
}

// Plan requests a budget plan for the given profile.
func (c *Client) Plan(ctx context.Context, req models.PlanRequest) (*models.Plan, error) {
	var plan models.Plan
	if err := c.do(ctx, http.MethodPost, "/ai/plan", req, &plan); err != nil {
		return nil, err
	}
	return &plan, nil
}
