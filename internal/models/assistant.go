package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ParsedTransaction is the budget service's reading of a free-text entry.
type ParsedTransaction struct {
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
	Date     string          `json:"date"`
	Type     TransactionType `json:"type"`
	Account  string          `json:"account"`
}

// ChatRole identifies the author of a chat message.
type ChatRole string

const (
	ChatRoleUser      ChatRole = "user"
	ChatRoleAssistant ChatRole = "assistant"
)

// ChatMessage is one entry of the in-memory conversation.
type ChatMessage struct {
	Role    ChatRole  `json:"role"`
	Content string    `json:"content"`
	At      time.Time `json:"at"`
}

// PlanRequest is the budget profile sent to the planning endpoint.
type PlanRequest struct {
	Salary          decimal.Decimal            `json:"salary"`
	FixedCosts      FixedCosts                 `json:"fixed_costs"`
	Goals           []Goal                     `json:"goals"`
	CurrentSpending decimal.Decimal            `json:"current_spending"`
	SpendingSummary map[string]decimal.Decimal `json:"spending_summary"`
	UserContext     string                     `json:"user_context"`
	PeriodContext   string                     `json:"period_context"`
}

// Plan is the planning endpoint's answer. Breakdown and Alternatives are
// free-form objects rendered as-is.
type Plan struct {
	Summary      string           `json:"summary"`
	Breakdown    []map[string]any `json:"breakdown"`
	Tips         []string         `json:"tips"`
	Alternatives []map[string]any `json:"alternatives"`
}
