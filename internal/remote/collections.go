package remote

import (
	"context"
	"net/http"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// ListTransactions fetches every transaction of the current user.
func (c *Client) ListTransactions(ctx context.Context) ([]models.Transaction, error) {
	var txs []models.Transaction
	if err := c.do(ctx, http.MethodGet, "/transactions/", nil, &txs); err != nil {
		return nil, err
	}
	return txs, nil
}

// CreateTransaction stores a new transaction and returns it with its server id.
func (c *Client) CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error) {
	var tx models.Transaction
	if err := c.do(ctx, http.MethodPost, "/transactions/", in, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// UpdateTransaction replaces the transaction with the given id.
func (c *Client) UpdateTransaction(ctx context.Context, id string, in models.TransactionInput) (*models.Transaction, error) {
	var tx models.Transaction
	if err := c.do(ctx, http.MethodPut, itemPath("transactions", id), in, &tx); err != nil {
		return nil, err
	}
	return &tx, nil
}

// DeleteTransaction removes the transaction with the given id.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath("transactions", id), nil, nil)
}

// ListAccounts fetches the current user's accounts.
func (c *Client) ListAccounts(ctx context.Context) ([]models.Account, error) {
	var accounts []models.Account
	if err := c.do(ctx, http.MethodGet, "/accounts/", nil, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

// CreateAccount stores a new account.
func (c *Client) CreateAccount(ctx context.Context, in models.AccountInput) (*models.Account, error) {
	var acc models.Account
	if err := c.do(ctx, http.MethodPost, "/accounts/", in, &acc); err != nil {
		return nil, err
	}
	return &acc, nil
}

// DeleteAccount removes the account with the given id.
func (c *Client) DeleteAccount(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath("accounts", id), nil, nil)
}

// ListGoals fetches the current user's goals.
func (c *Client) ListGoals(ctx context.Context) ([]models.Goal, error) {
	var goals []models.Goal
	if err := c.do(ctx, http.MethodGet, "/goals/", nil, &goals); err != nil {
		return nil, err
	}
	return goals, nil
}

// CreateGoal stores a new goal.
func (c *Client) CreateGoal(ctx context.Context, in models.GoalInput) (*models.Goal, error) {
	var goal models.Goal
	if err := c.do(ctx, http.MethodPost, "/goals/", in, &goal); err != nil {
		return nil, err
	}
	return &goal, nil
}

// DeleteGoal removes the goal with the given id.
func (c *Client) DeleteGoal(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath("goals", id), nil, nil)
}

// GetBudgetSettings fetches the budget settings; the service returns zero
// values when none were saved yet.
func (c *Client) GetBudgetSettings(ctx context.Context) (*models.BudgetSettings, error) {
	var settings models.BudgetSettings
	if err := c.do(ctx, http.MethodGet, "/budget/", nil, &settings); err != nil {
		return nil, err
	}
	return &settings, nil
}

// UpdateBudgetSettings replaces the budget settings wholesale.
func (c *Client) UpdateBudgetSettings(ctx context.Context, settings models.BudgetSettings) error {
	return c.do(ctx, http.MethodPut, "/budget/", settings, nil)
}

// ListHabits fetches the current user's habits.
func (c *Client) ListHabits(ctx context.Context) ([]models.Habit, error) {
	var habits []models.Habit
	if err := c.do(ctx, http.MethodGet, "/habits/", nil, &habits); err != nil {
		return nil, err
	}
	return habits, nil
}

// CreateHabit stores a new habit with no completed dates.
func (c *Client) CreateHabit(ctx context.Context, name string) (*models.Habit, error) {
	body := struct {
		Name string `json:"name"`
	}{Name: name}

	var habit models.Habit
	if err := c.do(ctx, http.MethodPost, "/habits/", body, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

// UpdateHabit applies a partial update and returns the stored habit.
func (c *Client) UpdateHabit(ctx context.Context, id string, update models.HabitUpdate) (*models.Habit, error) {
	var habit models.Habit
	if err := c.do(ctx, http.MethodPut, itemPath("habits", id), update, &habit); err != nil {
		return nil, err
	}
	return &habit, nil
}

// DeleteHabit removes the habit with the given id.
func (c *Client) DeleteHabit(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, itemPath("habits", id), nil, nil)
}
