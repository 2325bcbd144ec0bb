package store

import (
	"context"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/kaniyamudhan/rupeeraiser/internal/credentials"
	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/testutil"
)

// loadingRecorder counts true to false transitions of the loading flag.
type loadingRecorder struct {
	mu          sync.Mutex
	last        bool
	transitions int
	snapshots   []Snapshot
}

func recordLoading(s *Store) *loadingRecorder {
	r := &loadingRecorder{last: s.Snapshot().Loading}
	s.Subscribe(func(snap Snapshot) {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.last && !snap.Loading {
			r.transitions++
		}
		r.last = snap.Loading
		r.snapshots = append(r.snapshots, snap)
	})
	return r
}

func expiredJWT(t *testing.T) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "asha@test.com",
		"exp": testNow.Add(-time.Hour).Unix(),
	})
	s, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("signing token: %v", err)
	}
	return s
}

func assertLoggedOut(t *testing.T, h *harness) {
	t.Helper()
	snap := h.store.Snapshot()
	if snap.User != nil {
		t.Errorf("expected no user, got %+v", snap.User)
	}
	if len(snap.AllTransactions) != 0 || len(snap.Habits) != 0 || len(snap.Chat) != 0 {
		t.Errorf("expected empty collections, got %d transactions, %d habits, %d chat messages",
			len(snap.AllTransactions), len(snap.Habits), len(snap.Chat))
	}
	if len(snap.Budget.Accounts) != 0 || len(snap.Budget.Goals) != 0 || !snap.Budget.Salary.IsZero() {
		t.Errorf("expected empty budget, got %+v", snap.Budget)
	}
	if snap.ActiveScope != ScopeAll {
		t.Errorf("expected scope %q, got %q", ScopeAll, snap.ActiveScope)
	}
	if _, ok, _ := h.creds.Load(context.Background()); ok {
		t.Error("expected stored credential to be cleared")
	}
	if h.client.HasToken() {
		t.Error("expected client credential to be dropped")
	}
}

func TestStart(t *testing.T) {
	t.Run("restores session and loads every collection", func(t *testing.T) {
		h := newHarness(t)
		txs := []models.Transaction{testutil.NewTransaction("Cash"), testutil.NewTransaction("Bank")}
		h.backend.Seed(txs, []models.Account{testutil.NewAccount("Cash")}, []models.Habit{testutil.NewHabit("Read")})
		h.backend.SetBudget(models.BudgetSettings{Salary: testutil.Amount("50000"), Config: "{}"})
		rec := recordLoading(h.store)

		h.start(t)

		snap := h.store.Snapshot()
		if snap.Loading {
			t.Error("expected loading to be cleared")
		}
		if snap.User == nil || snap.User.Email != "asha@test.com" {
			t.Errorf("expected restored user, got %+v", snap.User)
		}
		if len(snap.AllTransactions) != 2 || len(snap.Habits) != 1 || len(snap.Budget.Accounts) != 1 {
			t.Errorf("unexpected collections: %+v", snap)
		}
		if !snap.Budget.Salary.Equal(testutil.Amount("50000")) || snap.Budget.Config != "{}" {
			t.Errorf("unexpected budget settings: %+v", snap.Budget)
		}
		if len(snap.PendingIDs) != 0 {
			t.Errorf("expected no pending ids, got %v", snap.PendingIDs)
		}
		if rec.transitions != 1 {
			t.Errorf("expected loading to clear exactly once, got %d", rec.transitions)
		}
		for _, s := range rec.snapshots {
			loaded := len(s.AllTransactions) > 0
			if loaded != (len(s.Habits) > 0) || loaded != (len(s.Budget.Accounts) > 0) {
				t.Errorf("observed a partially loaded snapshot: %+v", s)
			}
		}
		for _, route := range []string{
			testutil.RouteMe, testutil.RouteListTransactions, testutil.RouteListAccounts,
			testutil.RouteListGoals, testutil.RouteGetBudget, testutil.RouteListHabits,
		} {
			if calls := h.backend.Calls(route); calls != 1 {
				t.Errorf("expected 1 call to %s, got %d", route, calls)
			}
		}
	})

	t.Run("no stored credential", func(t *testing.T) {
		h := newHarness(t)
		rec := recordLoading(h.store)

		testutil.AssertNoError(t, h.store.Start(context.Background()))

		if h.store.Snapshot().Loading || rec.transitions != 1 {
			t.Errorf("expected loading to clear once, transitions=%d", rec.transitions)
		}
		if calls := h.backend.Calls(testutil.RouteMe); calls != 0 {
			t.Errorf("expected no request, got %d", calls)
		}
	})

	t.Run("rejected credential logs out", func(t *testing.T) {
		h := newHarness(t)
		h.backend.Seed([]models.Transaction{testutil.NewTransaction("Cash")}, nil, nil)
		_ = h.creds.Save(context.Background(), credentials.Credential{Token: "revoked-token", UserName: "Asha"})
		rec := recordLoading(h.store)

		err := h.store.Start(context.Background())

		testutil.AssertKind(t, err, apperrors.KindAuth)
		assertLoggedOut(t, h)
		if h.store.Snapshot().Loading || rec.transitions != 1 {
			t.Errorf("expected loading to clear exactly once, transitions=%d", rec.transitions)
		}
		if calls := h.backend.Calls(testutil.RouteListTransactions); calls != 0 {
			t.Errorf("expected no bulk fetch after rejection, got %d", calls)
		}
	})

	t.Run("expired jwt logs out without a request", func(t *testing.T) {
		h := newHarness(t)
		_ = h.creds.Save(context.Background(), credentials.Credential{Token: expiredJWT(t), UserName: "Asha"})
		rec := recordLoading(h.store)

		err := h.store.Start(context.Background())

		testutil.AssertKind(t, err, apperrors.KindAuth)
		assertLoggedOut(t, h)
		if calls := h.backend.Calls(testutil.RouteMe); calls != 0 {
			t.Errorf("expected no request for an expired token, got %d", calls)
		}
		if rec.transitions != 1 {
			t.Errorf("expected loading to clear exactly once, got %d", rec.transitions)
		}
	})

	t.Run("service error keeps the stored credential", func(t *testing.T) {
		h := newHarness(t)
		h.backend.Fail(testutil.RouteMe, http.StatusServiceUnavailable)
		_ = h.creds.Save(context.Background(), credentials.Credential{Token: testutil.ValidToken, UserName: "Asha"})

		err := h.store.Start(context.Background())

		testutil.AssertKind(t, err, apperrors.KindRejected)
		if _, ok, _ := h.creds.Load(context.Background()); !ok {
			t.Error("expected stored credential to survive a non-auth failure")
		}
		if h.store.Snapshot().User != nil || h.store.Snapshot().Loading {
			t.Error("expected logged-out, loaded state")
		}
	})

	t.Run("failed fetch applies nothing", func(t *testing.T) {
		h := newHarness(t)
		h.backend.Seed([]models.Transaction{testutil.NewTransaction("Cash")}, []models.Account{testutil.NewAccount("Cash")}, nil)
		h.backend.Fail(testutil.RouteListHabits, http.StatusInternalServerError)
		_ = h.creds.Save(context.Background(), credentials.Credential{Token: testutil.ValidToken, UserName: "Asha"})
		rec := recordLoading(h.store)

		err := h.store.Start(context.Background())

		testutil.AssertKind(t, err, apperrors.KindRejected)
		snap := h.store.Snapshot()
		if len(snap.AllTransactions) != 0 || len(snap.Budget.Accounts) != 0 {
			t.Errorf("expected nothing applied, got %+v", snap)
		}
		if snap.Loading || rec.transitions != 1 {
			t.Errorf("expected loading to clear exactly once, transitions=%d", rec.transitions)
		}
	})
}

func TestLogout(t *testing.T) {
	h := newHarness(t)
	h.backend.Seed([]models.Transaction{testutil.NewTransaction("Cash")}, []models.Account{testutil.NewAccount("Cash")}, []models.Habit{testutil.NewHabit("Run")})
	h.start(t)
	h.store.SetActiveScope("Cash")
	_, _ = h.store.Chat(context.Background(), "How am I doing?")

	h.store.Logout(context.Background())
	once := h.store.Snapshot()
	assertLoggedOut(t, h)

	h.store.Logout(context.Background())
	twice := h.store.Snapshot()
	assertLoggedOut(t, h)

	if once.ActiveScope != twice.ActiveScope || len(once.AllTransactions) != len(twice.AllTransactions) ||
		(once.User == nil) != (twice.User == nil) || len(once.Chat) != len(twice.Chat) {
		t.Errorf("second logout changed state: %+v vs %+v", once, twice)
	}

	_, err := h.store.AddTransaction(context.Background(), testutil.NewTransactionInput("10", "Food", "Cash"))
	testutil.AssertKind(t, err, apperrors.KindNoSession)
}

func TestLogin(t *testing.T) {
	ctx := context.Background()

	t.Run("success loads data and persists credential", func(t *testing.T) {
		h := newHarness(t)
		h.backend.Seed([]models.Transaction{testutil.NewTransaction("Cash")}, nil, nil)
		testutil.AssertNoError(t, h.store.Start(ctx))

		user, err := h.store.Login(ctx, models.LoginRequest{Email: "asha@test.com", Password: "password123"})
		testutil.AssertNoError(t, err)
		if user.Email != "asha@test.com" {
			t.Errorf("expected logged in user, got %+v", user)
		}
		if got := len(h.store.AllTransactions()); got != 1 {
			t.Errorf("expected 1 transaction after login, got %d", got)
		}
		cred, ok, _ := h.creds.Load(ctx)
		if !ok || cred.Token != testutil.ValidToken || cred.UserName != "Asha" {
			t.Errorf("expected persisted credential, got %+v", cred)
		}
		if n := h.lastNotification(t); !n.Success || n.Op != OpLogin {
			t.Errorf("expected login success notification, got %+v", n)
		}
	})

	t.Run("wrong password", func(t *testing.T) {
		h := newHarness(t)
		testutil.AssertNoError(t, h.store.Start(ctx))

		_, err := h.store.Login(ctx, models.LoginRequest{Email: "asha@test.com", Password: "nope"})

		testutil.AssertKind(t, err, apperrors.KindAuth)
		if err.Error() != "Incorrect email or password" {
			t.Errorf("expected service detail as message, got %q", err.Error())
		}
		if h.store.Snapshot().User != nil {
			t.Error("expected no session after failed login")
		}
		assertFailureNotice(t, h.lastNotification(t), OpLogin)
	})

	t.Run("user fetch failure ends the session", func(t *testing.T) {
		h := newHarness(t)
		testutil.AssertNoError(t, h.store.Start(ctx))
		h.backend.Fail(testutil.RouteMe, http.StatusServiceUnavailable)

		_, err := h.store.Login(ctx, models.LoginRequest{Email: "asha@test.com", Password: "password123"})

		testutil.AssertKind(t, err, apperrors.KindRejected)
		if h.store.Snapshot().User != nil {
			t.Error("expected no user after failed login")
		}
		_, err = h.store.AddTransaction(ctx, testutil.NewTransactionInput("10", "Food", "Cash"))
		testutil.AssertKind(t, err, apperrors.KindNoSession)
		if got := h.backend.TransactionCount(); got != 0 {
			t.Errorf("expected nothing sent to the service, got %d transactions", got)
		}
		if _, ok, _ := h.creds.Load(ctx); !ok {
			t.Error("expected the stored credential to be kept for the next start")
		}
	})

	t.Run("invalid email never reaches the service", func(t *testing.T) {
		h := newHarness(t)

		_, err := h.store.Login(ctx, models.LoginRequest{Email: "not-an-email", Password: "x"})

		testutil.AssertKind(t, err, apperrors.KindInvalidInput)
		if calls := h.backend.Calls(testutil.RouteLogin); calls != 0 {
			t.Errorf("expected no request, got %d", calls)
		}
	})
}

func TestSignup(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	testutil.AssertNoError(t, h.store.Start(ctx))

	user, err := h.store.Signup(ctx, models.SignupRequest{Name: "Ravi", Email: "ravi@test.com", Password: "secret1"})
	testutil.AssertNoError(t, err)
	if user.Name != "Ravi" || user.Email != "ravi@test.com" {
		t.Errorf("unexpected user %+v", user)
	}
	cred, ok, _ := h.creds.Load(ctx)
	if !ok || cred.UserName != "Ravi" {
		t.Errorf("expected persisted credential for Ravi, got %+v", cred)
	}

	_, err = h.store.AddTransaction(ctx, testutil.NewTransactionInput("10", "Food", "Cash"))
	testutil.AssertNoError(t, err)

	_, err = h.store.Signup(ctx, models.SignupRequest{Name: "Ravi", Email: "ravi@test.com", Password: "secret1"})
	testutil.AssertKind(t, err, apperrors.KindRejected)
}

func TestStaleResponses(t *testing.T) {
	ctx := context.Background()

	t.Run("dropped after logout", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		gate := h.backend.Hold(testutil.RouteCreateTransaction)

		p, err := h.store.AddTransaction(ctx, testutil.NewTransactionInput("140", "Food", "Cash"))
		testutil.AssertNoError(t, err)
		<-gate.Arrived()

		h.store.Logout(ctx)
		gate.Release()
		res := p.Wait()

		if !res.Dropped || res.OK() {
			t.Errorf("expected dropped result, got %+v", res)
		}
		if got := len(h.store.AllTransactions()); got != 0 {
			t.Errorf("expected no resurrected transaction, got %d", got)
		}
	})

	t.Run("dropped after a new login", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)
		gate := h.backend.Hold(testutil.RouteCreateTransaction)

		p, err := h.store.AddTransaction(ctx, testutil.NewTransactionInput("140", "Food", "Cash"))
		testutil.AssertNoError(t, err)
		<-gate.Arrived()

		_, err = h.store.Login(ctx, models.LoginRequest{Email: "asha@test.com", Password: "password123"})
		testutil.AssertNoError(t, err)
		gate.Release()
		res := p.Wait()

		if !res.Dropped {
			t.Errorf("expected dropped result, got %+v", res)
		}
		for _, tx := range h.store.AllTransactions() {
			if tx.ID == p.Key().ID() {
				t.Errorf("temporary record %s leaked into the new session", tx.ID)
			}
		}
	})
}

func TestAuthFailureForcesLogout(t *testing.T) {
	h := newHarness(t)
	h.backend.Seed([]models.Transaction{testutil.NewTransaction("Cash")}, nil, nil)
	h.start(t)
	h.backend.RevokeAll()

	p, err := h.store.AddTransaction(context.Background(), testutil.NewTransactionInput("140", "Food", "Cash"))
	testutil.AssertNoError(t, err)
	res := p.Wait()

	testutil.AssertKind(t, res.Err, apperrors.KindAuth)
	assertLoggedOut(t, h)
}
