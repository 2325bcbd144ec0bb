package remote

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/testutil"
)

func TestListTransactions_NormalisesIDs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			t.Errorf("expected GET, got %s", r.Method)
		}
		if r.URL.Path != "/transactions/" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok" {
			t.Errorf("expected bearer token, got %q", got)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `[
			{"id": "a1", "date": "2025-01-15", "amount": 140, "category": "Food", "note": "Lunch", "type": "expense", "account": "Cash"},
			{"_id": "b2", "date": "2025-01-16", "amount": 99.5, "category": "Fuel", "note": "", "type": "expense", "account": "Bank"}
		]`)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	c.SetToken("tok")

	txs, err := c.ListTransactions(context.Background())
	testutil.AssertNoError(t, err)
	if len(txs) != 2 {
		t.Fatalf("expected 2 transactions, got %d", len(txs))
	}
	if txs[0].ID != "a1" || txs[1].ID != "b2" {
		t.Errorf("expected ids a1 and b2, got %q and %q", txs[0].ID, txs[1].ID)
	}
	if !txs[1].Amount.Equal(testutil.Amount("99.5")) {
		t.Errorf("expected amount 99.5, got %s", txs[1].Amount)
	}
}

func TestCreateTransaction_SendsPayload(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/transactions/" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("expected JSON content type, got %q", ct)
		}

		var body map[string]any
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			t.Errorf("decoding body: %v", err)
			return
		}
		if amount, ok := body["amount"].(float64); !ok || amount != 140 {
			t.Errorf("expected numeric amount 140, got %#v", body["amount"])
		}
		if body["account"] != "Cash" || body["type"] != "expense" {
			t.Errorf("unexpected body %v", body)
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, `{"_id": "srv-1", "date": "2025-01-15", "amount": 140, "category": "Food", "note": "Food", "type": "expense", "account": "Cash"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	tx, err := c.CreateTransaction(context.Background(), testutil.NewTransactionInput("140", "Food", "Cash"))
	testutil.AssertNoError(t, err)
	if tx.ID != "srv-1" {
		t.Errorf("expected server id, got %q", tx.ID)
	}
}

func TestClient_ErrorMapping(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantKind    apperrors.Kind
		wantCode    string
		wantMessage string
	}{
		{"unauthorized", http.StatusUnauthorized, `{"detail":"Could not validate credentials"}`, apperrors.KindAuth, "UNAUTHORIZED", "Could not validate credentials"},
		{"forbidden", http.StatusForbidden, ``, apperrors.KindAuth, "UNAUTHORIZED", "Authentication required"},
		{"not found", http.StatusNotFound, `{"detail":"Transaction not found"}`, apperrors.KindRejected, "NOT_FOUND", "Transaction not found"},
		{"validation list", http.StatusUnprocessableEntity, `{"detail":[{"msg":"field required"},{"msg":"value is not a valid float"}]}`, apperrors.KindRejected, "REJECTED", "field required; value is not a valid float"},
		{"server error", http.StatusInternalServerError, `oops`, apperrors.KindRejected, "REJECTED", "Request rejected by the budget service"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = io.WriteString(w, tt.body)
			}))
			defer server.Close()

			c := NewClient(server.URL, server.Client())
			err := c.DeleteTransaction(context.Background(), "abc")

			testutil.AssertAppError(t, err, tt.wantCode)
			testutil.AssertKind(t, err, tt.wantKind)
			if err.Error() != tt.wantMessage {
				t.Errorf("expected message %q, got %q", tt.wantMessage, err.Error())
			}
		})
	}
}

func TestClient_TransportFailures(t *testing.T) {
	t.Run("connection refused", func(t *testing.T) {
		server := httptest.NewServer(http.NotFoundHandler())
		url := server.URL
		server.Close()

		c := NewClient(url, nil)
		_, err := c.Me(context.Background())
		testutil.AssertKind(t, err, apperrors.KindTransport)
	})

	t.Run("timeout", func(t *testing.T) {
		release := make(chan struct{})
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			select {
			case <-release:
			case <-r.Context().Done():
			}
		}))
		defer server.Close()
		defer close(release)

		httpClient := server.Client()
		httpClient.Timeout = 50 * time.Millisecond
		c := NewClient(server.URL, httpClient)

		_, err := c.ListHabits(context.Background())
		testutil.AssertKind(t, err, apperrors.KindTransport)
	})

	t.Run("undecodable body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			_, _ = io.WriteString(w, `not json`)
		}))
		defer server.Close()

		c := NewClient(server.URL, server.Client())
		_, err := c.ListAccounts(context.Background())
		testutil.AssertKind(t, err, apperrors.KindRejected)
	})
}

func TestClient_Invalidate(t *testing.T) {
	var auth []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		auth = append(auth, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `{"id":"u-1","name":"Asha","email":"asha@test.com"}`)
	}))
	defer server.Close()

	c := NewClient(server.URL, server.Client())
	c.SetToken("tok")
	if !c.HasToken() {
		t.Fatal("expected token to be set")
	}
	_, _ = c.Me(context.Background())

	c.Invalidate()
	if c.HasToken() {
		t.Error("expected token to be cleared")
	}
	_, _ = c.Me(context.Background())

	if len(auth) != 2 || auth[0] != "Bearer tok" || auth[1] != "" {
		t.Errorf("expected credential only on the first request, got %q", auth)
	}
}

func TestHabitsAndAI(t *testing.T) {
	b := testutil.NewBackend(t)
	c := NewClient(b.URL(), b.Server.Client())
	c.SetToken(testutil.ValidToken)
	ctx := context.Background()

	habit, err := c.CreateHabit(ctx, "Walk")
	testutil.AssertNoError(t, err)
	if habit.Name != "Walk" || habit.CompletedDates == nil {
		t.Errorf("unexpected habit %+v", habit)
	}

	dates := []string{"2025-01-01"}
	updated, err := c.UpdateHabit(ctx, habit.ID, models.HabitUpdate{CompletedDates: &dates})
	testutil.AssertNoError(t, err)
	if len(updated.CompletedDates) != 1 || updated.Name != "Walk" {
		t.Errorf("expected dates to change and name to stay, got %+v", updated)
	}

	b.SetChatReply("hello")
	reply, err := c.Chat(ctx, "hi", "CURRENT DATE: today")
	testutil.AssertNoError(t, err)
	if reply != "hello" {
		t.Errorf("expected reply hello, got %q", reply)
	}
	if msg, fctx := b.LastChatRequest(); msg != "hi" || !strings.HasPrefix(fctx, "CURRENT DATE") {
		t.Errorf("unexpected chat request %q / %q", msg, fctx)
	}

	b.SetParsed(models.ParsedTransaction{Amount: testutil.Amount("140"), Category: "Food", Type: models.TransactionTypeExpense})
	parsed, err := c.ParseTransaction(ctx, "lunch 140")
	testutil.AssertNoError(t, err)
	if parsed.Category != "Food" || !parsed.Amount.Equal(testutil.Amount("140")) {
		t.Errorf("unexpected parse %+v", parsed)
	}

	testutil.AssertNoError(t, c.DeleteHabit(ctx, habit.ID))
	if _, ok := b.Habit(habit.ID); ok {
		t.Error("expected habit to be deleted")
	}
}
