package models

import "github.com/shopspring/decimal"

// FixedCosts are the recurring monthly costs subtracted from salary.
type FixedCosts struct {
	Rent          decimal.Decimal `json:"rent"`
	Travel        decimal.Decimal `json:"travel"`
	Phone         decimal.Decimal `json:"phone"`
	Subscriptions decimal.Decimal `json:"subscriptions"`
}

// Total sums all fixed costs.
func (f FixedCosts) Total() decimal.Decimal {
	return f.Rent.Add(f.Travel).Add(f.Phone).Add(f.Subscriptions)
}

// BudgetSettings is the wire form of the per-user budget document.
// Config is an opaque serialized string owned by the rendering layer.
type BudgetSettings struct {
	Salary     decimal.Decimal `json:"salary"`
	FixedCosts FixedCosts      `json:"fixed_costs"`
	Config     string          `json:"config"`
}

// Budget is the local aggregate: settings plus the goal and account lists.
type Budget struct {
	Salary     decimal.Decimal `json:"salary"`
	FixedCosts FixedCosts      `json:"fixed_costs"`
	Config     string          `json:"config"`
	Goals      []Goal          `json:"goals"`
	Accounts   []Account       `json:"accounts"`
}

// Settings extracts the settings part of the budget.
func (b Budget) Settings() BudgetSettings {
	return BudgetSettings{Salary: b.Salary, FixedCosts: b.FixedCosts, Config: b.Config}
}

// EmptyBudget returns a budget with zero amounts and empty, non-nil lists.
func EmptyBudget() Budget {
	return Budget{Goals: []Goal{}, Accounts: []Account{}}
}
