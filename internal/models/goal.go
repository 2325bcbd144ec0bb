package models

import "github.com/shopspring/decimal"

// Goal is a savings target. Goals are only ever created or deleted.
type Goal struct {
	ID     string          `json:"id"`
	Name   string          `json:"name"`
	Amount decimal.Decimal `json:"amount"`
}

// GoalInput is the payload for creating a goal.
type GoalInput struct {
	Name   string          `json:"name" validate:"required,max=100"`
	Amount decimal.Decimal `json:"amount" validate:"gt=0"`
}
