package models

import (
	"github.com/goccy/go-json"
	"github.com/shopspring/decimal"
)

// TransactionType represents the type of transaction
type TransactionType string

const (
	TransactionTypeIncome  TransactionType = "income"
	TransactionTypeExpense TransactionType = "expense"
)

// Valid reports whether t is income or expense.
func (t TransactionType) Valid() bool {
	return t == TransactionTypeIncome || t == TransactionTypeExpense
}

// Transaction is a transaction as stored by the budget service. Account holds
// the account name, not its id.
type Transaction struct {
	ID       string          `json:"id"`
	UserID   string          `json:"user_id,omitempty"`
	Date     string          `json:"date"`
	Amount   decimal.Decimal `json:"amount"`
	Category string          `json:"category"`
	Note     string          `json:"note"`
	Type     TransactionType `json:"type"`
	Account  string          `json:"account"`
}

// UnmarshalJSON accepts records keyed by either "id" or the raw "_id".
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	if err := json.Unmarshal(data, (*alias)(t)); err != nil {
		return err
	}
	if t.ID != "" {
		return nil
	}
	var raw struct {
		MongoID string `json:"_id"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	t.ID = raw.MongoID
	return nil
}

// Equal reports whether two transactions carry the same values.
func (t Transaction) Equal(o Transaction) bool {
	return t.ID == o.ID && t.UserID == o.UserID && t.Date == o.Date &&
		t.Amount.Equal(o.Amount) && t.Category == o.Category && t.Note == o.Note &&
		t.Type == o.Type && t.Account == o.Account
}

// TransactionInput is the payload for creating or replacing a transaction.
type TransactionInput struct {
	Date     string          `json:"date" validate:"required,iso_day"`
	Amount   decimal.Decimal `json:"amount" validate:"gt=0"`
	Category string          `json:"category" validate:"required,max=100"`
	Note     string          `json:"note" validate:"max=500"`
	Type     TransactionType `json:"type" validate:"transaction_type"`
	Account  string          `json:"account" validate:"required,max=100"`
}

// WithID materialises the input as a transaction carrying id.
func (in TransactionInput) WithID(id string) Transaction {
	return Transaction{
		ID:       id,
		Date:     in.Date,
		Amount:   in.Amount,
		Category: in.Category,
		Note:     in.Note,
		Type:     in.Type,
		Account:  in.Account,
	}
}
