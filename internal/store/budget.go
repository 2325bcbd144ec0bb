package store

import (
	"context"
	"slices"
	"strings"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/validator"
)

// writeThrough runs call for op inside the live session. apply runs under the
// store's lock only if call succeeded and the session is still current.
func writeThrough(ctx context.Context, s *Store, op Op, input any, call func(ctx context.Context) error, apply func()) error {
	if input != nil {
		if err := validator.Struct(input); err != nil {
			return s.failed(ctx, op, 0, err)
		}
	}
	epoch, err := s.session()
	if err != nil {
		return s.failed(ctx, op, 0, err)
	}

	if err := call(ctx); err != nil {
		return s.failed(ctx, op, epoch, err)
	}

	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		s.stale(op, epoch)
		return apperrors.ErrNoSession
	}
	if apply != nil {
		apply()
	}
	s.mu.Unlock()

	s.publish()
	s.succeeded(op)
	return nil
}

// CreateAccount adds an account once the budget service has created it.
func (s *Store) CreateAccount(ctx context.Context, in models.AccountInput) (*models.Account, error) {
	var created *models.Account
	err := writeThrough(ctx, s, OpCreateAccount, in,
		func(ctx context.Context) (err error) {
			created, err = s.remote.CreateAccount(ctx, in)
			return err
		},
		func() { s.budget.Accounts = append(s.budget.Accounts, *created) },
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteAccount removes an account once the budget service has deleted it.
// If the account was the active scope, the scope returns to ScopeAll.
func (s *Store) DeleteAccount(ctx context.Context, id string) error {
	return writeThrough(ctx, s, OpDeleteAccount, nil,
		func(ctx context.Context) error { return s.remote.DeleteAccount(ctx, id) },
		func() {
			i := slices.IndexFunc(s.budget.Accounts, func(a models.Account) bool { return a.ID == id })
			if i < 0 {
				return
			}
			name := s.budget.Accounts[i].Name
			s.budget.Accounts = slices.Delete(s.budget.Accounts, i, i+1)
			if strings.EqualFold(s.scope, name) || s.scope == id {
				s.scope = ScopeAll
			}
		},
	)
}

// AddGoal adds a savings goal once the budget service has created it.
func (s *Store) AddGoal(ctx context.Context, in models.GoalInput) (*models.Goal, error) {
	var created *models.Goal
	err := writeThrough(ctx, s, OpAddGoal, in,
		func(ctx context.Context) (err error) {
			created, err = s.remote.CreateGoal(ctx, in)
			return err
		},
		func() { s.budget.Goals = append(s.budget.Goals, *created) },
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// DeleteGoal removes a goal once the budget service has deleted it.
func (s *Store) DeleteGoal(ctx context.Context, id string) error {
	return writeThrough(ctx, s, OpDeleteGoal, nil,
		func(ctx context.Context) error { return s.remote.DeleteGoal(ctx, id) },
		func() {
			s.budget.Goals = slices.DeleteFunc(s.budget.Goals, func(g models.Goal) bool { return g.ID == id })
		},
	)
}

// UpdateBudgetSettings replaces salary, fixed costs and config wholesale.
func (s *Store) UpdateBudgetSettings(ctx context.Context, settings models.BudgetSettings) error {
	if settings.Salary.IsNegative() {
		return s.failed(ctx, OpUpdateBudget, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "salary must not be negative"))
	}
	return writeThrough(ctx, s, OpUpdateBudget, nil,
		func(ctx context.Context) error { return s.remote.UpdateBudgetSettings(ctx, settings) },
		func() {
			s.budget.Salary = settings.Salary
			s.budget.FixedCosts = settings.FixedCosts
			s.budget.Config = settings.Config
		},
	)
}

// UpdateProfile merges the changed fields into the user once the budget
// service has stored them.
func (s *Store) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	var user models.User
	err := writeThrough(ctx, s, OpUpdateProfile, update,
		func(ctx context.Context) error { return s.remote.UpdateProfile(ctx, update) },
		func() {
			if s.user == nil {
				return
			}
			u := *s.user
			update.ApplyTo(&u)
			s.user = &u
			user = u
		},
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword changes the password. No local state changes.
func (s *Store) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	return writeThrough(ctx, s, OpChangePassword, change,
		func(ctx context.Context) error { return s.remote.ChangePassword(ctx, change) },
		nil,
	)
}
