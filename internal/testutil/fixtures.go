package testutil

import (
	"fmt"
	"sync/atomic"

	"github.com/shopspring/decimal"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// counter provides unique values across fixtures within a test run.
var counter atomic.Int64

func nextID() int64 {
	return counter.Add(1)
}

// ObjectID returns a fresh 24-char hex id shaped like the service's ids.
func ObjectID() string {
	return fmt.Sprintf("%024x", nextID())
}

// Amount parses a decimal literal and panics on malformed input.
func Amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

// NewTransaction returns a confirmed expense of 100 on the given account.
func NewTransaction(account string) models.Transaction {
	return models.Transaction{
		ID:       ObjectID(),
		Date:     "2025-01-15",
		Amount:   decimal.NewFromInt(100),
		Category: "Food",
		Note:     fmt.Sprintf("Test transaction %d", nextID()),
		Type:     models.TransactionTypeExpense,
		Account:  account,
	}
}

// NewTransactionInput returns a valid expense payload.
func NewTransactionInput(amount, category, account string) models.TransactionInput {
	return models.TransactionInput{
		Date:     "2025-01-15",
		Amount:   Amount(amount),
		Category: category,
		Note:     category,
		Type:     models.TransactionTypeExpense,
		Account:  account,
	}
}

// NewAccount returns an account with a fresh id.
func NewAccount(name string) models.Account {
	return models.Account{ID: ObjectID(), Name: name, Type: "cash", Balance: decimal.Zero}
}

// NewHabit returns a habit with a fresh id and the given completed dates.
func NewHabit(name string, dates ...string) models.Habit {
	if dates == nil {
		dates = []string{}
	}
	return models.Habit{ID: ObjectID(), Name: name, CompletedDates: dates}
}

// TestUser is the user the fake backend authenticates.
func TestUser() models.User {
	return models.User{ID: "u-1", Name: "Asha", Email: "asha@test.com"}
}
