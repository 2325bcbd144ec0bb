package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/goccy/go-json"

	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// ValidToken is the only bearer token the fake backend accepts.
const ValidToken = "valid-token"

// Route names accepted by Backend.Fail and Backend.Hold.
const (
	RouteLogin             = "POST /auth/login"
	RouteSignup            = "POST /auth/signup"
	RouteMe                = "GET /auth/me"
	RouteProfile           = "PUT /auth/profile"
	RoutePassword          = "PUT /auth/password"
	RouteListTransactions  = "GET /transactions/"
	RouteCreateTransaction = "POST /transactions/"
	RouteUpdateTransaction = "PUT /transactions/{id}"
	RouteDeleteTransaction = "DELETE /transactions/{id}"
	RouteListAccounts      = "GET /accounts/"
	RouteCreateAccount     = "POST /accounts/"
	RouteDeleteAccount     = "DELETE /accounts/{id}"
	RouteListGoals         = "GET /goals/"
	RouteCreateGoal        = "POST /goals/"
	RouteDeleteGoal        = "DELETE /goals/{id}"
	RouteGetBudget         = "GET /budget/"
	RouteUpdateBudget      = "PUT /budget/"
	RouteListHabits        = "GET /habits/"
	RouteCreateHabit       = "POST /habits/"
	RouteUpdateHabit       = "PUT /habits/{id}"
	RouteDeleteHabit       = "DELETE /habits/{id}"
	RouteParse             = "POST /ai/parse"
	RouteChat              = "POST /ai/chat"
	RoutePlan              = "POST /ai/plan"
)

// StatusDropConnection makes Fail abort the connection instead of answering.
const StatusDropConnection = -1

// Gate blocks requests to one route until released.
type Gate struct {
	arrived chan struct{}
	release chan struct{}
	once    sync.Once
}

// Arrived is closed when the first request reaches the gate.
func (g *Gate) Arrived() <-chan struct{} { return g.arrived }

// Release lets held requests continue.
func (g *Gate) Release() { g.once.Do(func() { close(g.release) }) }

// Backend is an in-memory stand-in for the budget service.
type Backend struct {
	Server *httptest.Server

	mu           sync.Mutex
	User         models.User
	Password     string
	Transactions []models.Transaction
	Accounts     []models.Account
	Goals        []models.Goal
	Budget       models.BudgetSettings
	Habits       []models.Habit
	Parsed       models.ParsedTransaction
	ChatReply    string
	LastChat     string
	LastContext  string

	failures map[string]int
	gates    map[string]*Gate
	arrivals map[string]bool
	calls    map[string]int
	tokens   map[string]bool
}

// NewBackend starts a fake budget service that is closed with the test.
func NewBackend(t *testing.T) *Backend {
	t.Helper()

	b := &Backend{
		User:      TestUser(),
		Password:  "password123",
		ChatReply: "Spend less on food.",
		failures:  make(map[string]int),
		gates:     make(map[string]*Gate),
		arrivals:  make(map[string]bool),
		calls:     make(map[string]int),
		tokens:    map[string]bool{ValidToken: true},
	}

	mux := http.NewServeMux()
	public := map[string]bool{RouteLogin: true, RouteSignup: true}
	for route, h := range b.handlers() {
		mux.HandleFunc(pattern(route), func(w http.ResponseWriter, r *http.Request) {
			b.serve(w, r, route, public[route], h)
		})
	}

	b.Server = httptest.NewServer(mux)
	t.Cleanup(b.Server.Close)
	return b
}

// URL returns the base URL of the fake service.
func (b *Backend) URL() string { return b.Server.URL }

// Fail makes every later request to route answer with status, or drop the
// connection when status is StatusDropConnection.
func (b *Backend) Fail(route string, status int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failures[route] = status
}

// Recover clears a failure set with Fail.
func (b *Backend) Recover(route string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.failures, route)
}

// Hold makes requests to route wait until the returned gate is released.
func (b *Backend) Hold(route string) *Gate {
	b.mu.Lock()
	defer b.mu.Unlock()
	g := &Gate{arrived: make(chan struct{}), release: make(chan struct{})}
	b.gates[route] = g
	delete(b.arrivals, route)
	return g
}

// Calls returns how many requests reached route.
func (b *Backend) Calls(route string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.calls[route]
}

// RevokeAll invalidates every issued token, including ValidToken.
func (b *Backend) RevokeAll() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.tokens = make(map[string]bool)
}

// TransactionCount returns the number of stored transactions.
func (b *Backend) TransactionCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.Transactions)
}

// Habit returns a copy of the stored habit with the given id.
func (b *Backend) Habit(id string) (models.Habit, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, h := range b.Habits {
		if h.ID == id {
			h.CompletedDates = append([]string(nil), h.CompletedDates...)
			return h, true
		}
	}
	return models.Habit{}, false
}

// SetBudget replaces the stored budget settings.
func (b *Backend) SetBudget(settings models.BudgetSettings) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Budget = settings
}

// SetParsed sets what the parse endpoint answers.
func (b *Backend) SetParsed(parsed models.ParsedTransaction) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Parsed = parsed
}

// SetChatReply sets what the chat endpoint answers.
func (b *Backend) SetChatReply(reply string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.ChatReply = reply
}

// LastChatRequest returns the message and context of the latest chat request.
func (b *Backend) LastChatRequest() (message, financialContext string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.LastChat, b.LastContext
}

// Seed replaces the stored collections.
func (b *Backend) Seed(txs []models.Transaction, accounts []models.Account, habits []models.Habit) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Transactions = append([]models.Transaction(nil), txs...)
	b.Accounts = append([]models.Account(nil), accounts...)
	b.Habits = append([]models.Habit(nil), habits...)
}

type handlerFunc func(w http.ResponseWriter, r *http.Request)

func (b *Backend) serve(w http.ResponseWriter, r *http.Request, route string, public bool, h handlerFunc) {
	b.mu.Lock()
	b.calls[route]++
	gate := b.gates[route]
	if gate != nil && !b.arrivals[route] {
		b.arrivals[route] = true
		close(gate.arrived)
	}
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate.release:
		case <-r.Context().Done():
			return
		}
	}

	b.mu.Lock()
	status, failing := b.failures[route]
	authorized := public || b.tokens[strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")]
	b.mu.Unlock()

	if failing {
		if status == StatusDropConnection {
			panic(http.ErrAbortHandler)
		}
		writeJSON(w, status, map[string]string{"detail": "injected failure"})
		return
	}
	if !authorized {
		writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Could not validate credentials"})
		return
	}
	h(w, r)
}

func (b *Backend) handlers() map[string]handlerFunc {
	return map[string]handlerFunc{
		RouteLogin: func(w http.ResponseWriter, r *http.Request) {
			var req models.LoginRequest
			if !decode(w, r, &req) {
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			if req.Email != b.User.Email || req.Password != b.Password {
				writeJSON(w, http.StatusUnauthorized, map[string]string{"detail": "Incorrect email or password"})
				return
			}
			writeJSON(w, http.StatusOK, models.Token{AccessToken: ValidToken, TokenType: "bearer", UserName: b.User.Name})
		},
		RouteSignup: func(w http.ResponseWriter, r *http.Request) {
			var req models.SignupRequest
			if !decode(w, r, &req) {
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			if req.Email == b.User.Email {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Email already registered"})
				return
			}
			token := "token-" + ObjectID()
			b.tokens[token] = true
			b.User = models.User{ID: ObjectID(), Name: req.Name, Email: req.Email}
			b.Password = req.Password
			writeJSON(w, http.StatusOK, models.Token{AccessToken: token, TokenType: "bearer", UserName: req.Name})
		},
		RouteMe: func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, b.User)
		},
		RouteProfile: func(w http.ResponseWriter, r *http.Request) {
			var update models.ProfileUpdate
			if !decode(w, r, &update) {
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			update.ApplyTo(&b.User)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Profile updated"})
		},
		RoutePassword: func(w http.ResponseWriter, r *http.Request) {
			var change models.PasswordChange
			if !decode(w, r, &change) {
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			if change.CurrentPassword != b.Password {
				writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Incorrect current password"})
				return
			}
			b.Password = change.NewPassword
			writeJSON(w, http.StatusOK, map[string]string{"message": "Password updated"})
		},
		RouteListTransactions: func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, nonNil(b.Transactions))
		},
		RouteCreateTransaction: func(w http.ResponseWriter, r *http.Request) {
			var in models.TransactionInput
			if !decode(w, r, &in) {
				return
			}
			tx := in.WithID(ObjectID())
			b.mu.Lock()
			tx.UserID = b.User.ID
			b.Transactions = append([]models.Transaction{tx}, b.Transactions...)
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, tx)
		},
		RouteUpdateTransaction: func(w http.ResponseWriter, r *http.Request) {
			var in models.TransactionInput
			if !decode(w, r, &in) {
				return
			}
			id := r.PathValue("id")
			b.mu.Lock()
			defer b.mu.Unlock()
			for i := range b.Transactions {
				if b.Transactions[i].ID == id {
					tx := in.WithID(id)
					tx.UserID = b.Transactions[i].UserID
					b.Transactions[i] = tx
					writeJSON(w, http.StatusOK, tx)
					return
				}
			}
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Transaction not found"})
		},
		RouteDeleteTransaction: func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			deleteByID(w, r.PathValue("id"), &b.Transactions, func(t models.Transaction) string { return t.ID })
		},
		RouteListAccounts: func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, nonNil(b.Accounts))
		},
		RouteCreateAccount: func(w http.ResponseWriter, r *http.Request) {
			var in models.AccountInput
			if !decode(w, r, &in) {
				return
			}
			acc := models.Account{ID: ObjectID(), Name: in.Name, Type: in.Type, Balance: in.Balance}
			b.mu.Lock()
			b.Accounts = append(b.Accounts, acc)
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, acc)
		},
		RouteDeleteAccount: func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			deleteByID(w, r.PathValue("id"), &b.Accounts, func(a models.Account) string { return a.ID })
		},
		RouteListGoals: func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, nonNil(b.Goals))
		},
		RouteCreateGoal: func(w http.ResponseWriter, r *http.Request) {
			var in models.GoalInput
			if !decode(w, r, &in) {
				return
			}
			goal := models.Goal{ID: ObjectID(), Name: in.Name, Amount: in.Amount}
			b.mu.Lock()
			b.Goals = append(b.Goals, goal)
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, goal)
		},
		RouteDeleteGoal: func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			deleteByID(w, r.PathValue("id"), &b.Goals, func(g models.Goal) string { return g.ID })
		},
		RouteGetBudget: func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, b.Budget)
		},
		RouteUpdateBudget: func(w http.ResponseWriter, r *http.Request) {
			var settings models.BudgetSettings
			if !decode(w, r, &settings) {
				return
			}
			b.mu.Lock()
			b.Budget = settings
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, map[string]string{"message": "Budget settings updated"})
		},
		RouteListHabits: func(w http.ResponseWriter, _ *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, nonNil(b.Habits))
		},
		RouteCreateHabit: func(w http.ResponseWriter, r *http.Request) {
			var in struct {
				Name string `json:"name"`
			}
			if !decode(w, r, &in) {
				return
			}
			habit := models.Habit{ID: ObjectID(), Name: in.Name, CompletedDates: []string{}}
			b.mu.Lock()
			b.Habits = append(b.Habits, habit)
			b.mu.Unlock()
			writeJSON(w, http.StatusOK, habit)
		},
		RouteUpdateHabit: func(w http.ResponseWriter, r *http.Request) {
			var update models.HabitUpdate
			if !decode(w, r, &update) {
				return
			}
			id := r.PathValue("id")
			b.mu.Lock()
			defer b.mu.Unlock()
			for i := range b.Habits {
				if b.Habits[i].ID != id {
					continue
				}
				if update.Name != nil {
					b.Habits[i].Name = *update.Name
				}
				if update.CompletedDates != nil {
					b.Habits[i].CompletedDates = *update.CompletedDates
				}
				writeJSON(w, http.StatusOK, b.Habits[i])
				return
			}
			writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Habit not found"})
		},
		RouteDeleteHabit: func(w http.ResponseWriter, r *http.Request) {
			b.mu.Lock()
			defer b.mu.Unlock()
			deleteByID(w, r.PathValue("id"), &b.Habits, func(h models.Habit) string { return h.ID })
		},
		RouteParse: func(w http.ResponseWriter, r *http.Request) {
			var in struct {
				Text string `json:"text"`
			}
			if !decode(w, r, &in) {
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			writeJSON(w, http.StatusOK, b.Parsed)
		},
		RouteChat: func(w http.ResponseWriter, r *http.Request) {
			var in struct {
				Message string `json:"message"`
				Context string `json:"context"`
			}
			if !decode(w, r, &in) {
				return
			}
			b.mu.Lock()
			defer b.mu.Unlock()
			b.LastChat = in.Message
			b.LastContext = in.Context
			writeJSON(w, http.StatusOK, map[string]string{"response": b.ChatReply})
		},
		RoutePlan: func(w http.ResponseWriter, r *http.Request) {
			var req models.PlanRequest
			if !decode(w, r, &req) {
				return
			}
			writeJSON(w, http.StatusOK, models.Plan{
				Summary: fmt.Sprintf("Salary %s covers %d goals", req.Salary.String(), len(req.Goals)),
				Tips:    []string{"Track your expenses regularly."},
			})
		},
	}
}

// pattern turns a route name into a ServeMux pattern; collection roots only
// match exactly.
func pattern(route string) string {
	if strings.HasSuffix(route, "/") {
		return route + "{$}"
	}
	return route
}

func deleteByID[T any](w http.ResponseWriter, id string, items *[]T, idOf func(T) string) {
	for i, item := range *items {
		if idOf(item) == id {
			*items = append((*items)[:i], (*items)[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Deleted"})
			return
		}
	}
	writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not found"})
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

func decode(w http.ResponseWriter, r *http.Request, v any) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"detail": []map[string]string{{"msg": err.Error()}},
		})
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
