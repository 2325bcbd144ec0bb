// Package store keeps the in-memory mirror of the user's budget data and
// synchronises every mutation with the budget service.
//
// Transaction creation is optimistic: the record appears under a Temporary
// key before the service answers and is either re-keyed to Confirmed or
// removed. Transaction deletion and habit date toggles are optimistic with a
// full snapshot rollback. Every other mutation is write-through: local state
// changes only after the service confirms.
//
// Each login starts a new session epoch. A response is applied only if the
// epoch that issued the request is still current, so nothing issued before a
// logout can resurrect data afterwards.
package store

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kaniyamudhan/rupeeraiser/internal/credentials"
	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/logger"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// ScopeAll is the active-scope value that disables account filtering.
const ScopeAll = "all"

// entry is one transaction in the local mirror.
type entry struct {
	key Key
	tx  models.Transaction
}

// Store owns all local state. It is safe for concurrent use.
type Store struct {
	remote         Remote
	creds          credentials.Store
	notifier       Notifier
	defaultAccount string
	log            *zap.SugaredLogger
	now            func() time.Time

	// inflight tracks reconciliation goroutines.
	inflight sync.WaitGroup

	mu      sync.Mutex
	epoch   uint64
	active  bool
	loading bool
	user    *models.User
	entries []entry
	budget  models.Budget
	habits  []models.Habit
	chat    []models.ChatMessage
	scope   string

	// resolved records how temporary keys were settled while a snapshot
	// rollback could still restore them. A nil value means rolled back.
	resolved  map[string]*models.Transaction
	rollbacks int

	subs    map[int]func(Snapshot)
	nextSub int
}

// New creates a store. The loading flag is set until Start finishes.
func New(remote Remote, creds credentials.Store, notifier Notifier, defaultAccount string) *Store {
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Store{
		remote:         remote,
		creds:          creds,
		notifier:       notifier,
		defaultAccount: defaultAccount,
		log:            logger.Named("store"),
		now:            time.Now,
		loading:        true,
		budget:         models.EmptyBudget(),
		habits:         []models.Habit{},
		chat:           []models.ChatMessage{},
		scope:          ScopeAll,
		resolved:       make(map[string]*models.Transaction),
		subs:           make(map[int]func(Snapshot)),
	}
}

// Snapshot is a deep copy of the store's state.
type Snapshot struct {
	User            *models.User         `json:"user"`
	Loading         bool                 `json:"loading"`
	ActiveScope     string               `json:"active_account"`
	Transactions    []models.Transaction `json:"transactions"`
	AllTransactions []models.Transaction `json:"all_transactions"`
	PendingIDs      []string             `json:"pending_ids"`
	Budget          models.Budget        `json:"budget"`
	Habits          []models.Habit       `json:"habits"`
	Chat            []models.ChatMessage `json:"chat"`
}

// Snapshot returns the current state.
func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	snap := Snapshot{
		Loading:         s.loading,
		ActiveScope:     s.scope,
		Transactions:    s.projectLocked(),
		AllTransactions: s.allLocked(),
		PendingIDs:      []string{},
		Budget:          cloneBudget(s.budget),
		Habits:          cloneHabits(s.habits),
		Chat:            slices.Clone(s.chat),
	}
	if s.user != nil {
		u := *s.user
		snap.User = &u
	}
	for _, e := range s.entries {
		if e.key.IsTemporary() {
			snap.PendingIDs = append(snap.PendingIDs, e.key.ID())
		}
	}
	return snap
}

// Subscribe registers fn to receive a snapshot after every state change and
// returns a function that removes it. fn runs outside the store's lock.
func (s *Store) Subscribe(fn func(Snapshot)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}
}

func (s *Store) publish() {
	s.mu.Lock()
	if len(s.subs) == 0 {
		s.mu.Unlock()
		return
	}
	snap := s.snapshotLocked()
	subs := make([]func(Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.mu.Unlock()

	for _, fn := range subs {
		fn(snap)
	}
}

// Transactions returns the transactions visible under the active scope.
// The projection is computed on every call.
func (s *Store) Transactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.projectLocked()
}

// AllTransactions returns every transaction regardless of scope.
func (s *Store) AllTransactions() []models.Transaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.allLocked()
}

func (s *Store) allLocked() []models.Transaction {
	out := make([]models.Transaction, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e.tx)
	}
	return out
}

func (s *Store) projectLocked() []models.Transaction {
	if s.scope == ScopeAll {
		return s.allLocked()
	}
	out := make([]models.Transaction, 0, len(s.entries))
	for _, e := range s.entries {
		if strings.EqualFold(e.tx.Account, s.scope) {
			out = append(out, e.tx)
		}
	}
	return out
}

// ActiveScope returns the selected account name or ScopeAll.
func (s *Store) ActiveScope() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.scope
}

// SetActiveScope selects the account whose transactions are projected.
// An empty scope or any casing of "all" selects every account.
func (s *Store) SetActiveScope(scope string) {
	scope = strings.TrimSpace(scope)
	if scope == "" || strings.EqualFold(scope, ScopeAll) {
		scope = ScopeAll
	}
	s.mu.Lock()
	s.scope = scope
	s.mu.Unlock()
	s.publish()
}

// Wait blocks until every in-flight reconciliation has finished.
func (s *Store) Wait() {
	s.inflight.Wait()
}

// session returns the current epoch, or ErrNoSession when logged out.
func (s *Store) session() (uint64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.active {
		return 0, apperrors.ErrNoSession
	}
	return s.epoch, nil
}

// currentLocked reports whether epoch still identifies the live session.
func (s *Store) currentLocked(epoch uint64) bool {
	return s.active && s.epoch == epoch
}

func (s *Store) succeeded(op Op) {
	if SuccessMessage(op) == "" {
		return
	}
	s.notifier.Notify(Notification{
		Op:      op,
		Success: true,
		Message: SuccessMessage(op),
		At:      s.now(),
	})
}

// failed reports err for op. An auth failure within the live session forces
// a logout.
func (s *Store) failed(ctx context.Context, op Op, epoch uint64, err error) error {
	kind := apperrors.KindOf(err)
	s.log.Warnw("Operation failed", "op", op, "kind", kind, "error", err)
	s.notifier.Notify(Notification{
		Op:      op,
		Message: FailureMessage(op),
		Kind:    kind,
		Detail:  err.Error(),
		At:      s.now(),
	})

	if kind == apperrors.KindAuth {
		s.mu.Lock()
		live := s.currentLocked(epoch)
		s.mu.Unlock()
		if live {
			s.log.Infow("Credential rejected, logging out", "op", op)
			s.Logout(context.WithoutCancel(ctx))
		}
	}
	return err
}

// stale logs a response that arrived after its session ended.
func (s *Store) stale(op Op, epoch uint64) {
	s.log.Debugw("Dropping response from ended session", "op", op, "epoch", epoch)
}

func cloneBudget(b models.Budget) models.Budget {
	b.Goals = slices.Clone(b.Goals)
	b.Accounts = slices.Clone(b.Accounts)
	if b.Goals == nil {
		b.Goals = []models.Goal{}
	}
	if b.Accounts == nil {
		b.Accounts = []models.Account{}
	}
	return b
}

func cloneHabits(habits []models.Habit) []models.Habit {
	out := make([]models.Habit, len(habits))
	for i, h := range habits {
		h.CompletedDates = slices.Clone(h.CompletedDates)
		if h.CompletedDates == nil {
			h.CompletedDates = []string{}
		}
		out[i] = h
	}
	return out
}
