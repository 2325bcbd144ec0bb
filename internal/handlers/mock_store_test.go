package handlers

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/goccy/go-json"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/store"
	"github.com/kaniyamudhan/rupeeraiser/internal/validator"
)

// --- mock store ---

type mockStore struct {
	snapshotFn             func() store.Snapshot
	transactionsFn         func() []models.Transaction
	scope                  string
	loginFn                func(ctx context.Context, req models.LoginRequest) (*models.User, error)
	signupFn               func(ctx context.Context, req models.SignupRequest) (*models.User, error)
	logoutCalls            int
	updateProfileFn        func(ctx context.Context, update models.ProfileUpdate) (*models.User, error)
	changePasswordFn       func(ctx context.Context, change models.PasswordChange) error
	addTransactionFn       func(ctx context.Context, in models.TransactionInput) (*store.Pending, error)
	editTransactionFn      func(ctx context.Context, id string, in models.TransactionInput) (*models.Transaction, error)
	deleteTransactionFn    func(ctx context.Context, id string) (*store.Pending, error)
	createAccountFn        func(ctx context.Context, in models.AccountInput) (*models.Account, error)
	deleteAccountFn        func(ctx context.Context, id string) error
	addGoalFn              func(ctx context.Context, in models.GoalInput) (*models.Goal, error)
	deleteGoalFn           func(ctx context.Context, id string) error
	updateBudgetSettingsFn func(ctx context.Context, settings models.BudgetSettings) error
	addHabitFn             func(ctx context.Context, name string) (*models.Habit, error)
	renameHabitFn          func(ctx context.Context, id, name string) (*models.Habit, error)
	toggleHabitDateFn      func(ctx context.Context, id, day string, completed bool) (*store.Pending, error)
	deleteHabitFn          func(ctx context.Context, id string) error
	parseTransactionFn     func(ctx context.Context, text string) (*models.TransactionInput, error)
	quickAddFn             func(ctx context.Context, text string) (*store.Pending, error)
	chatFn                 func(ctx context.Context, message string) (*models.ChatMessage, error)
	clearChatCalls         int
	planFn                 func(ctx context.Context, userContext, periodContext string) (*models.Plan, error)
}

func (m *mockStore) Snapshot() store.Snapshot {
	if m.snapshotFn != nil {
		return m.snapshotFn()
	}
	return store.Snapshot{}
}

func (m *mockStore) Transactions() []models.Transaction {
	if m.transactionsFn != nil {
		return m.transactionsFn()
	}
	return []models.Transaction{}
}

func (m *mockStore) ActiveScope() string {
	if m.scope == "" {
		return store.ScopeAll
	}
	return m.scope
}

func (m *mockStore) SetActiveScope(scope string) { m.scope = scope }

func (m *mockStore) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if m.loginFn != nil {
		return m.loginFn(ctx, req)
	}
	return &models.User{}, nil
}

func (m *mockStore) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if m.signupFn != nil {
		return m.signupFn(ctx, req)
	}
	return &models.User{}, nil
}

func (m *mockStore) Logout(context.Context) { m.logoutCalls++ }

func (m *mockStore) UpdateProfile(ctx context.Context, update models.ProfileUpdate) (*models.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, update)
	}
	return &models.User{}, nil
}

func (m *mockStore) ChangePassword(ctx context.Context, change models.PasswordChange) error {
	if m.changePasswordFn != nil {
		return m.changePasswordFn(ctx, change)
	}
	return nil
}

func (m *mockStore) AddTransaction(ctx context.Context, in models.TransactionInput) (*store.Pending, error) {
	if m.addTransactionFn != nil {
		return m.addTransactionFn(ctx, in)
	}
	return store.Resolved(store.Result{Op: store.OpAddTransaction, Key: store.Confirmed("x")}), nil
}

func (m *mockStore) EditTransaction(ctx context.Context, id string, in models.TransactionInput) (*models.Transaction, error) {
	if m.editTransactionFn != nil {
		return m.editTransactionFn(ctx, id, in)
	}
	tx := in.WithID(id)
	return &tx, nil
}

func (m *mockStore) DeleteTransaction(ctx context.Context, id string) (*store.Pending, error) {
	if m.deleteTransactionFn != nil {
		return m.deleteTransactionFn(ctx, id)
	}
	return store.Resolved(store.Result{Op: store.OpDeleteTransaction, Key: store.Confirmed(id)}), nil
}

func (m *mockStore) CreateAccount(ctx context.Context, in models.AccountInput) (*models.Account, error) {
	if m.createAccountFn != nil {
		return m.createAccountFn(ctx, in)
	}
	return &models.Account{}, nil
}

func (m *mockStore) DeleteAccount(ctx context.Context, id string) error {
	if m.deleteAccountFn != nil {
		return m.deleteAccountFn(ctx, id)
	}
	return nil
}

func (m *mockStore) AddGoal(ctx context.Context, in models.GoalInput) (*models.Goal, error) {
	if m.addGoalFn != nil {
		return m.addGoalFn(ctx, in)
	}
	return &models.Goal{}, nil
}

func (m *mockStore) DeleteGoal(ctx context.Context, id string) error {
	if m.deleteGoalFn != nil {
		return m.deleteGoalFn(ctx, id)
	}
	return nil
}

func (m *mockStore) UpdateBudgetSettings(ctx context.Context, settings models.BudgetSettings) error {
	if m.updateBudgetSettingsFn != nil {
		return m.updateBudgetSettingsFn(ctx, settings)
	}
	return nil
}

func (m *mockStore) AddHabit(ctx context.Context, name string) (*models.Habit, error) {
	if m.addHabitFn != nil {
		return m.addHabitFn(ctx, name)
	}
	return &models.Habit{Name: name, CompletedDates: []string{}}, nil
}

func (m *mockStore) RenameHabit(ctx context.Context, id, name string) (*models.Habit, error) {
	if m.renameHabitFn != nil {
		return m.renameHabitFn(ctx, id, name)
	}
	return &models.Habit{ID: id, Name: name, CompletedDates: []string{}}, nil
}

func (m *mockStore) ToggleHabitDate(ctx context.Context, id, day string, completed bool) (*store.Pending, error) {
	if m.toggleHabitDateFn != nil {
		return m.toggleHabitDateFn(ctx, id, day, completed)
	}
	return store.Resolved(store.Result{Op: store.OpToggleHabit, Key: store.Confirmed(id)}), nil
}

func (m *mockStore) DeleteHabit(ctx context.Context, id string) error {
	if m.deleteHabitFn != nil {
		return m.deleteHabitFn(ctx, id)
	}
	return nil
}

func (m *mockStore) ParseTransaction(ctx context.Context, text string) (*models.TransactionInput, error) {
	if m.parseTransactionFn != nil {
		return m.parseTransactionFn(ctx, text)
	}
	return &models.TransactionInput{}, nil
}

func (m *mockStore) QuickAdd(ctx context.Context, text string) (*store.Pending, error) {
	if m.quickAddFn != nil {
		return m.quickAddFn(ctx, text)
	}
	return store.Resolved(store.Result{Op: store.OpAddTransaction, Key: store.Confirmed("x")}), nil
}

func (m *mockStore) Chat(ctx context.Context, message string) (*models.ChatMessage, error) {
	if m.chatFn != nil {
		return m.chatFn(ctx, message)
	}
	return &models.ChatMessage{Role: models.ChatRoleAssistant}, nil
}

func (m *mockStore) ClearChat() { m.clearChatCalls++ }

func (m *mockStore) Plan(ctx context.Context, userContext, periodContext string) (*models.Plan, error) {
	if m.planFn != nil {
		return m.planFn(ctx, userContext, periodContext)
	}
	return &models.Plan{}, nil
}

// verify interface compliance
var _ store.Servicer = (*mockStore)(nil)

type mockNotifications struct {
	queued []store.Notification
}

func (m *mockNotifications) Drain() []store.Notification {
	out := m.queued
	m.queued = []store.Notification{}
	return out
}

// --- helpers ---

func init() {
	gin.SetMode(gin.TestMode)
	validator.Register()
}

func setupRouter(s store.Servicer) *gin.Engine {
	return NewRouter(RouterConfig{Store: s, Notifications: &mockNotifications{}})
}

func doRequest(r *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, "/api/v1"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func parseJSON(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var result map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("failed to parse JSON response: %v\nbody: %s", err, rec.Body.String())
	}
	return result
}

func assertErrorCode(t *testing.T, result map[string]interface{}, code string) {
	t.Helper()
	errObj, ok := result["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object in response, got: %v", result)
	}
	if errObj["code"] != code {
		t.Errorf("expected error code %q, got %q", code, errObj["code"])
	}
}

