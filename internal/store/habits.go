package store

import (
	"context"
	"slices"
	"strings"
	"time"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
)

// AddHabit adds a habit once the budget service has created it.
func (s *Store) AddHabit(ctx context.Context, name string) (*models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.failed(ctx, OpAddHabit, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "habit name is required"))
	}

	var created *models.Habit
	err := writeThrough(ctx, s, OpAddHabit, nil,
		func(ctx context.Context) (err error) {
			created, err = s.remote.CreateHabit(ctx, name)
			return err
		},
		func() { s.habits = append(s.habits, cloneHabits([]models.Habit{*created})...) },
	)
	if err != nil {
		return nil, err
	}
	return created, nil
}

// RenameHabit changes a habit's name once the budget service has stored it.
func (s *Store) RenameHabit(ctx context.Context, id, name string) (*models.Habit, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, s.failed(ctx, OpRenameHabit, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "habit name is required"))
	}
	if _, err := s.session(); err != nil {
		return nil, s.failed(ctx, OpRenameHabit, 0, err)
	}
	if _, ok := s.habit(id); !ok {
		return nil, s.failed(ctx, OpRenameHabit, 0, apperrors.ErrHabitNotFound)
	}

	var renamed models.Habit
	err := writeThrough(ctx, s, OpRenameHabit, nil,
		func(ctx context.Context) error {
			_, err := s.remote.UpdateHabit(ctx, id, models.HabitUpdate{Name: &name})
			return err
		},
		func() {
			i := s.habitIndexLocked(id)
			if i < 0 {
				return
			}
			s.habits[i].Name = name
			renamed = cloneHabits(s.habits[i : i+1])[0]
		},
	)
	if err != nil {
		return nil, err
	}
	return &renamed, nil
}

// DeleteHabit removes a habit once the budget service has deleted it.
func (s *Store) DeleteHabit(ctx context.Context, id string) error {
	return writeThrough(ctx, s, OpDeleteHabit, nil,
		func(ctx context.Context) error { return s.remote.DeleteHabit(ctx, id) },
		func() {
			s.habits = slices.DeleteFunc(s.habits, func(h models.Habit) bool { return h.ID == id })
		},
	)
}

// ToggleHabitDate marks or unmarks day on a habit immediately and sends the
// new date set to the budget service. If the service refuses, the habit
// collection is restored as it was before the toggle.
func (s *Store) ToggleHabitDate(ctx context.Context, id, day string, completed bool) (*Pending, error) {
	if _, err := time.Parse(models.ISODay, day); err != nil {
		return nil, s.failed(ctx, OpToggleHabit, 0, apperrors.WithMessage(apperrors.ErrInvalidInput, "date must be YYYY-MM-DD"))
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, s.failed(ctx, OpToggleHabit, 0, apperrors.ErrNoSession)
	}
	epoch := s.epoch
	i := s.habitIndexLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, s.failed(ctx, OpToggleHabit, epoch, apperrors.ErrHabitNotFound)
	}
	snapshot := cloneHabits(s.habits)
	toggled := s.habits[i].WithDate(day, completed)
	s.habits[i] = toggled
	s.mu.Unlock()
	s.publish()

	key := Confirmed(id)
	p := newPending(OpToggleHabit, key)
	dates := slices.Clone(toggled.CompletedDates)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		_, err := s.remote.UpdateHabit(context.WithoutCancel(ctx), id, models.HabitUpdate{CompletedDates: &dates})
		p.resolve(s.reconcileToggle(ctx, epoch, key, snapshot, err))
	}()
	return p, nil
}

func (s *Store) reconcileToggle(ctx context.Context, epoch uint64, key Key, snapshot []models.Habit, err error) Result {
	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		s.stale(OpToggleHabit, epoch)
		return Result{Op: OpToggleHabit, Key: key, Err: err, Dropped: true}
	}
	if err != nil {
		s.habits = rollback(snapshot, s.habits, habitID, key.ID(), false, false)
	}
	s.mu.Unlock()

	if err != nil {
		s.publish()
		return Result{Op: OpToggleHabit, Key: key, Err: s.failed(ctx, OpToggleHabit, epoch, err)}
	}
	s.succeeded(OpToggleHabit)
	return Result{Op: OpToggleHabit, Key: key}
}

func (s *Store) habit(id string) (models.Habit, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.habitIndexLocked(id)
	if i < 0 {
		return models.Habit{}, false
	}
	return cloneHabits(s.habits[i : i+1])[0], true
}

func (s *Store) habitIndexLocked(id string) int {
	return slices.IndexFunc(s.habits, func(h models.Habit) bool { return h.ID == id })
}

func habitID(h models.Habit) string { return h.ID }
