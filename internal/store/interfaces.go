package store

import (
	"context"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/remote"
)

// Remote defines the contract of the budget service client.
type Remote interface {
	SetToken(token string)
	Invalidate()

	Login(ctx context.Context, req models.LoginRequest) (*models.Token, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.Token, error)
	Me(ctx context.Context) (*models.User, error)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) error
	ChangePassword(ctx context.Context, change models.PasswordChange) error

	ListTransactions(ctx context.Context) ([]models.Transaction, error)
	CreateTransaction(ctx context.Context, in models.TransactionInput) (*models.Transaction, error)
	UpdateTransaction(ctx context.Context, id string, in models.TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) error

	ListAccounts(ctx context.Context) ([]models.Account, error)
	CreateAccount(ctx context.Context, in models.AccountInput) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error

	ListGoals(ctx context.Context) ([]models.Goal, error)
	CreateGoal(ctx context.Context, in models.GoalInput) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error

	GetBudgetSettings(ctx context.Context) (*models.BudgetSettings, error)
	UpdateBudgetSettings(ctx context.Context, settings models.BudgetSettings) error

	ListHabits(ctx context.Context) ([]models.Habit, error)
	CreateHabit(ctx context.Context, name string) (*models.Habit, error)
	UpdateHabit(ctx context.Context, id string, update models.HabitUpdate) (*models.Habit, error)
	DeleteHabit(ctx context.Context, id string) error

	ParseTransaction(ctx context.Context, text string) (*models.ParsedTransaction, error)
	Chat(ctx context.Context, message, financialContext string) (string, error)
	Plan(ctx context.Context, req models.PlanRequest) (*models.Plan, error)
}

// Servicer is the store as seen by the local API.
type Servicer interface {
	Snapshot() Snapshot
	Transactions() []models.Transaction
	ActiveScope() string
	SetActiveScope(scope string)

	Login(ctx context.Context, req models.LoginRequest) (*models.User, error)
	Signup(ctx context.Context, req models.SignupRequest) (*models.User, error)
	Logout(ctx context.Context)
	UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	ChangePassword(ctx context.Context, change models.PasswordChange) error

	AddTransaction(ctx context.Context, in models.TransactionInput) (*Pending, error)
	EditTransaction(ctx context.Context, id string, in models.TransactionInput) (*models.Transaction, error)
	DeleteTransaction(ctx context.Context, id string) (*Pending, error)

	CreateAccount(ctx context.Context, in models.AccountInput) (*models.Account, error)
	DeleteAccount(ctx context.Context, id string) error
	AddGoal(ctx context.Context, in models.GoalInput) (*models.Goal, error)
	DeleteGoal(ctx context.Context, id string) error
	UpdateBudgetSettings(ctx context.Context, settings models.BudgetSettings) error

	AddHabit(ctx context.Context, name string) (*models.Habit, error)
	RenameHabit(ctx context.Context, id, name string) (*models.Habit, error)
	ToggleHabitDate(ctx context.Context, id, day string, completed bool) (*Pending, error)
	DeleteHabit(ctx context.Context, id string) error

	ParseTransaction(ctx context.Context, text string) (*models.TransactionInput, error)
	QuickAdd(ctx context.Context, text string) (*Pending, error)
	Chat(ctx context.Context, message string) (*models.ChatMessage, error)
	ClearChat()
	Plan(ctx context.Context, userContext, periodContext string) (*models.Plan, error)
}

var (
	_ Remote   = (*remote.Client)(nil)
	_ Servicer = (*Store)(nil)
)
