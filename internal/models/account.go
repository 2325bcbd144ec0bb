package models

import "github.com/shopspring/decimal"

// Account is a named money holder. Its Name is the key transactions refer to.
type Account struct {
	ID      string          `json:"id"`
	Name    string          `json:"name"`
	Type    string          `json:"type"`
	Balance decimal.Decimal `json:"balance"`
}

// AccountInput is the payload for creating an account.
type AccountInput struct {
	Name    string          `json:"name" validate:"required,max=100"`
	Type    string          `json:"type" validate:"required,max=50"`
	Balance decimal.Decimal `json:"balance"`
}
