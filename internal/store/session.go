package store

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/kaniyamudhan/rupeeraiser/internal/credentials"
	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/validator"
)

// Start restores the persisted session, if any. It validates the stored
// credential by fetching the current user and then loads every collection in
// parallel. The loading flag is cleared when Start returns, whatever the
// outcome.
//
// A rejected or expired credential logs the store out. Other failures leave
// the stored credential in place for the next start.
func (s *Store) Start(ctx context.Context) error {
	defer s.finishLoading()

	cred, ok, err := s.creds.Load(ctx)
	if err != nil {
		s.log.Errorw("Failed to load stored credential", "error", err)
		return apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	if !ok {
		s.log.Info("No stored credential, starting logged out")
		return nil
	}

	if credentials.Expired(cred.Token, s.now()) {
		s.log.Info("Stored credential has expired, logging out")
		s.Logout(ctx)
		return apperrors.WithMessage(apperrors.ErrUnauthorized, "Stored credential has expired")
	}

	epoch := s.beginSession(cred.Token, nil)
	user, err := s.remote.Me(ctx)
	if err != nil {
		if apperrors.IsKind(err, apperrors.KindAuth) {
			s.log.Infow("Stored credential rejected, logging out", "error", err)
			s.Logout(ctx)
		} else {
			s.log.Warnw("Could not validate stored credential", "kind", apperrors.KindOf(err), "error", err)
			s.endSession(epoch)
		}
		return err
	}

	s.mu.Lock()
	if s.currentLocked(epoch) {
		s.user = user
	}
	s.mu.Unlock()

	s.log.Infow("Session restored", "user_id", user.ID)
	return s.fetchAll(ctx, epoch)
}

// Login authenticates, persists the credential and loads the user's data.
func (s *Store) Login(ctx context.Context, req models.LoginRequest) (*models.User, error) {
	if err := validator.Struct(req); err != nil {
		return nil, s.failed(ctx, OpLogin, 0, err)
	}

	token, err := s.remote.Login(ctx, req)
	if err != nil {
		return nil, s.failed(ctx, OpLogin, 0, err)
	}
	s.persist(ctx, token)

	epoch := s.beginSession(token.AccessToken, nil)
	user, err := s.remote.Me(ctx)
	if err != nil {
		err = s.failed(ctx, OpLogin, epoch, err)
		// Auth failures have already logged out; anything else keeps the
		// stored credential for the next start, as Start does.
		s.endSession(epoch)
		return nil, err
	}

	s.mu.Lock()
	if s.currentLocked(epoch) {
		s.user = user
	}
	s.mu.Unlock()

	if err := s.fetchAll(ctx, epoch); err != nil {
		s.log.Warnw("Logged in but could not load data", "error", err)
	}
	s.finishLoading()
	s.succeeded(OpLogin)

	out := *user
	return &out, nil
}

// Signup creates a user and starts a session for it.
func (s *Store) Signup(ctx context.Context, req models.SignupRequest) (*models.User, error) {
	if err := validator.Struct(req); err != nil {
		return nil, s.failed(ctx, OpSignup, 0, err)
	}

	token, err := s.remote.Signup(ctx, req)
	if err != nil {
		return nil, s.failed(ctx, OpSignup, 0, err)
	}
	s.persist(ctx, token)

	user := &models.User{Name: token.UserName, Email: req.Email}
	epoch := s.beginSession(token.AccessToken, user)

	if err := s.fetchAll(ctx, epoch); err != nil {
		s.log.Warnw("Signed up but could not load data", "error", err)
	}
	s.finishLoading()
	s.succeeded(OpSignup)

	out := *user
	return &out, nil
}

// Logout clears every collection, the active scope, the chat history and the
// stored credential, and drops the client's credential. Responses to
// requests issued before Logout are ignored. Calling it again has no further
// effect.
func (s *Store) Logout(ctx context.Context) {
	s.reset()
	if err := s.creds.Clear(ctx); err != nil {
		s.log.Errorw("Failed to clear stored credential", "error", err)
	}
	s.publish()
}

// endSession drops the in-memory session but keeps the stored credential.
func (s *Store) endSession(epoch uint64) {
	s.mu.Lock()
	live := s.currentLocked(epoch)
	s.mu.Unlock()
	if live {
		s.reset()
		s.publish()
	}
}

func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.active = false
	s.user = nil
	s.entries = nil
	s.budget = models.EmptyBudget()
	s.habits = []models.Habit{}
	s.chat = []models.ChatMessage{}
	s.scope = ScopeAll
	s.resolved = make(map[string]*models.Transaction)
	s.remote.Invalidate()
}

// beginSession starts a new epoch with empty collections and returns it.
func (s *Store) beginSession(token string, user *models.User) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.epoch++
	s.active = true
	s.user = user
	s.entries = nil
	s.budget = models.EmptyBudget()
	s.habits = []models.Habit{}
	s.chat = []models.ChatMessage{}
	s.scope = ScopeAll
	s.resolved = make(map[string]*models.Transaction)
	s.remote.SetToken(token)
	return s.epoch
}

func (s *Store) persist(ctx context.Context, token *models.Token) {
	err := s.creds.Save(ctx, credentials.Credential{Token: token.AccessToken, UserName: token.UserName})
	if err != nil {
		s.log.Errorw("Failed to persist credential", "error", err)
	}
}

func (s *Store) finishLoading() {
	s.mu.Lock()
	changed := s.loading
	s.loading = false
	s.mu.Unlock()
	if changed {
		s.publish()
	}
}

// fetchAll loads every collection in parallel and applies them in one step
// once all requests have settled. Nothing is applied if any request fails.
func (s *Store) fetchAll(ctx context.Context, epoch uint64) error {
	var (
		txs      []models.Transaction
		accounts []models.Account
		goals    []models.Goal
		settings *models.BudgetSettings
		habits   []models.Habit
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		txs, err = s.remote.ListTransactions(gctx)
		return err
	})
	g.Go(func() (err error) {
		accounts, err = s.remote.ListAccounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		goals, err = s.remote.ListGoals(gctx)
		return err
	})
	g.Go(func() (err error) {
		settings, err = s.remote.GetBudgetSettings(gctx)
		return err
	})
	g.Go(func() (err error) {
		habits, err = s.remote.ListHabits(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		s.log.Errorw("Failed to fetch data", "kind", apperrors.KindOf(err), "error", err)
		if apperrors.IsKind(err, apperrors.KindAuth) {
			s.mu.Lock()
			live := s.currentLocked(epoch)
			s.mu.Unlock()
			if live {
				s.Logout(context.WithoutCancel(ctx))
			}
		}
		return err
	}

	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		s.stale("fetch_all", epoch)
		return nil
	}
	s.entries = make([]entry, 0, len(txs))
	for _, tx := range txs {
		s.entries = append(s.entries, entry{key: Confirmed(tx.ID), tx: tx})
	}
	s.budget = models.Budget{
		Goals:    nonNil(goals),
		Accounts: nonNil(accounts),
	}
	if settings != nil {
		s.budget.Salary = settings.Salary
		s.budget.FixedCosts = settings.FixedCosts
		s.budget.Config = settings.Config
	}
	s.habits = cloneHabits(habits)
	s.mu.Unlock()

	s.log.Infow("Data loaded",
		"transactions", len(txs),
		"accounts", len(accounts),
		"goals", len(goals),
		"habits", len(habits),
	)
	s.publish()
	return nil
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
