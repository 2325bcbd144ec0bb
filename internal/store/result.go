package store

import (
	"sync"
	"time"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
)

// Op names a store operation in results and notifications.
type Op string

const (
	OpLogin             Op = "login"
	OpSignup            Op = "signup"
	OpAddTransaction    Op = "add_transaction"
	OpEditTransaction   Op = "edit_transaction"
	OpDeleteTransaction Op = "delete_transaction"
	OpCreateAccount     Op = "create_account"
	OpDeleteAccount     Op = "delete_account"
	OpAddGoal           Op = "add_goal"
	OpDeleteGoal        Op = "delete_goal"
	OpUpdateBudget      Op = "update_budget"
	OpUpdateProfile     Op = "update_profile"
	OpChangePassword    Op = "change_password"
	OpAddHabit          Op = "add_habit"
	OpRenameHabit       Op = "rename_habit"
	OpToggleHabit       Op = "toggle_habit"
	OpDeleteHabit       Op = "delete_habit"
	OpParse             Op = "parse"
	OpChat              Op = "chat"
	OpPlan              Op = "plan"
)

type opMessages struct {
	success string
	failure string
}

var messages = map[Op]opMessages{
	OpLogin:             {"Welcome back", "Login failed"},
	OpSignup:            {"Account created successfully", "Signup failed"},
	OpAddTransaction:    {"Transaction added", "Failed to add transaction"},
	OpEditTransaction:   {"Transaction updated", "Failed to update transaction"},
	OpDeleteTransaction: {"Transaction deleted", "Failed to delete transaction"},
	OpCreateAccount:     {"Account created", "Failed to create account"},
	OpDeleteAccount:     {"Account deleted", "Failed to delete account"},
	OpAddGoal:           {"Goal added", "Failed to add goal"},
	OpDeleteGoal:        {"Goal deleted", "Failed to delete goal"},
	OpUpdateBudget:      {"Budget settings updated", "Failed to update budget settings"},
	OpUpdateProfile:     {"Profile updated", "Failed to update profile"},
	OpChangePassword:    {"Password changed", "Failed to change password"},
	OpAddHabit:          {"Habit added!", "Failed to add habit"},
	OpRenameHabit:       {"Habit updated", "Failed to update habit"},
	OpToggleHabit:       {"Habit updated", "Failed to update habit"},
	OpDeleteHabit:       {"Habit deleted!", "Failed to delete habit"},
	OpParse:             {"AI filled the details! Verify account & category.", "AI couldn't understand that."},
	OpChat:              {"", "Failed to reach the assistant"},
	OpPlan:              {"Budget plan ready", "Failed to generate budget plan"},
}

// FailureMessage returns the user-facing failure text of op.
func FailureMessage(op Op) string { return messages[op].failure }

// SuccessMessage returns the user-facing success text of op. It may be empty
// for operations that do not announce success.
func SuccessMessage(op Op) string { return messages[op].success }

// Result is the outcome of one mutation.
type Result struct {
	Op  Op
	Key Key
	Err error
	// Dropped is set when the session that issued the request ended before the
	// response arrived; the response was not applied.
	Dropped bool
}

// OK reports whether the mutation was confirmed.
func (r Result) OK() bool { return r.Err == nil && !r.Dropped }

// Kind returns the error kind of a failed result.
func (r Result) Kind() apperrors.Kind { return apperrors.KindOf(r.Err) }

// Pending is an optimistic mutation whose local effect is already visible and
// whose remote round trip is still in flight.
type Pending struct {
	op     Op
	key    Key
	done   chan struct{}
	result Result
}

func newPending(op Op, key Key) *Pending {
	return &Pending{op: op, key: key, done: make(chan struct{})}
}

// Op returns the mutation kind.
func (p *Pending) Op() Op { return p.op }

// Key returns the key the optimistic record was written under.
func (p *Pending) Key() Key { return p.key }

// Done is closed once the mutation is confirmed or rolled back.
func (p *Pending) Done() <-chan struct{} { return p.done }

// Wait blocks until the mutation resolves.
func (p *Pending) Wait() Result {
	<-p.done
	return p.result
}

// Resolved returns a Pending that has already resolved to r.
func Resolved(r Result) *Pending {
	p := newPending(r.Op, r.Key)
	p.resolve(r)
	return p
}

func (p *Pending) resolve(r Result) {
	p.result = r
	close(p.done)
}

// Notification is a user-visible message about a finished operation.
type Notification struct {
	Op      Op             `json:"op"`
	Success bool           `json:"success"`
	Message string         `json:"message"`
	Kind    apperrors.Kind `json:"kind,omitempty"`
	Detail  string         `json:"detail,omitempty"`
	At      time.Time      `json:"at"`
}

// Notifier receives notifications. Implementations must not call back into
// the store.
type Notifier interface {
	Notify(n Notification)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Notification)

// Notify implements Notifier.
func (f NotifierFunc) Notify(n Notification) { f(n) }

// QueueNotifier buffers notifications until they are drained. When full, the
// oldest notification is discarded.
type QueueNotifier struct {
	mu    sync.Mutex
	items []Notification
	limit int
}

// DefaultQueueLimit is the capacity used when NewQueueNotifier gets 0.
const DefaultQueueLimit = 100

// NewQueueNotifier creates a notifier that keeps at most limit entries.
func NewQueueNotifier(limit int) *QueueNotifier {
	if limit <= 0 {
		limit = DefaultQueueLimit
	}
	return &QueueNotifier{limit: limit}
}

// Notify implements Notifier.
func (q *QueueNotifier) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.items) == q.limit {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns and removes every queued notification, oldest first.
func (q *QueueNotifier) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := q.items
	q.items = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}

// Len returns the number of queued notifications.
func (q *QueueNotifier) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}
