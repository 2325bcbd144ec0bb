package store

import (
	"context"
	"net/http"
	"slices"
	"testing"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/testutil"
)

func TestHabits_WriteThrough(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.start(t)

	habit, err := h.store.AddHabit(ctx, "  Meditate ")
	testutil.AssertNoError(t, err)
	if habit.Name != "Meditate" {
		t.Errorf("expected trimmed name, got %q", habit.Name)
	}

	_, err = h.store.AddHabit(ctx, " ")
	testutil.AssertKind(t, err, apperrors.KindInvalidInput)

	renamed, err := h.store.RenameHabit(ctx, habit.ID, "Meditate 10 min")
	testutil.AssertNoError(t, err)
	if renamed.Name != "Meditate 10 min" || h.store.Snapshot().Habits[0].Name != "Meditate 10 min" {
		t.Errorf("expected rename to apply, got %+v", renamed)
	}

	_, err = h.store.RenameHabit(ctx, "missing", "x")
	testutil.AssertAppError(t, err, "HABIT_NOT_FOUND")

	h.backend.Fail(testutil.RouteDeleteHabit, http.StatusInternalServerError)
	testutil.AssertKind(t, h.store.DeleteHabit(ctx, habit.ID), apperrors.KindRejected)
	assertFailureNotice(t, h.lastNotification(t), OpDeleteHabit)
	if got := len(h.store.Snapshot().Habits); got != 1 {
		t.Errorf("expected habit to survive failed delete, got %d", got)
	}

	h.backend.Recover(testutil.RouteDeleteHabit)
	testutil.AssertNoError(t, h.store.DeleteHabit(ctx, habit.ID))
	if got := len(h.store.Snapshot().Habits); got != 0 {
		t.Errorf("expected no habits, got %d", got)
	}
}

func TestToggleHabitDate(t *testing.T) {
	ctx := context.Background()

	t.Run("marks and unmarks", func(t *testing.T) {
		h := newHarness(t)
		habit := testutil.NewHabit("Run", "2025-01-01")
		h.backend.Seed(nil, nil, []models.Habit{habit})
		h.start(t)

		p, err := h.store.ToggleHabitDate(ctx, habit.ID, "2025-01-02", true)
		testutil.AssertNoError(t, err)
		if got := h.store.Snapshot().Habits[0].CompletedDates; !slices.Contains(got, "2025-01-02") {
			t.Errorf("expected optimistic date, got %v", got)
		}
		if res := p.Wait(); !res.OK() {
			t.Fatalf("expected success, got %+v", res)
		}

		p, err = h.store.ToggleHabitDate(ctx, habit.ID, "2025-01-02", true)
		testutil.AssertNoError(t, err)
		p.Wait()
		if got := h.store.Snapshot().Habits[0].CompletedDates; len(got) != 2 {
			t.Errorf("expected a date to appear once, got %v", got)
		}

		for _, day := range []string{"2025-01-01", "2025-01-02"} {
			p, err = h.store.ToggleHabitDate(ctx, habit.ID, day, false)
			testutil.AssertNoError(t, err)
			p.Wait()
		}
		if got := h.store.Snapshot().Habits[0].CompletedDates; len(got) != 0 {
			t.Errorf("expected no dates, got %v", got)
		}
		if stored, _ := h.backend.Habit(habit.ID); len(stored.CompletedDates) != 0 {
			t.Errorf("expected service to clear every date, got %v", stored.CompletedDates)
		}
	})

	t.Run("failure restores the habit collection", func(t *testing.T) {
		h := newHarness(t)
		h.backend.Seed(nil, nil, []models.Habit{testutil.NewHabit("Run", "2025-01-01"), testutil.NewHabit("Read")})
		h.start(t)
		before := h.store.Snapshot().Habits
		h.backend.Fail(testutil.RouteUpdateHabit, testutil.StatusDropConnection)

		p, err := h.store.ToggleHabitDate(ctx, before[0].ID, "2025-01-01", false)
		testutil.AssertNoError(t, err)
		res := p.Wait()

		testutil.AssertKind(t, res.Err, apperrors.KindTransport)
		after := h.store.Snapshot().Habits
		if len(after) != len(before) {
			t.Fatalf("expected %d habits, got %d", len(before), len(after))
		}
		for i := range before {
			if before[i].ID != after[i].ID || !slices.Equal(before[i].CompletedDates, after[i].CompletedDates) {
				t.Errorf("habit %d: expected %+v, got %+v", i, before[i], after[i])
			}
		}
		assertFailureNotice(t, h.lastNotification(t), OpToggleHabit)
	})

	t.Run("failure does not bring back a habit deleted meanwhile", func(t *testing.T) {
		h := newHarness(t)
		run := testutil.NewHabit("Run", "2025-01-01")
		h.backend.Seed(nil, nil, []models.Habit{run, testutil.NewHabit("Read")})
		h.start(t)
		gate := h.backend.Hold(testutil.RouteUpdateHabit)
		h.backend.Fail(testutil.RouteUpdateHabit, http.StatusInternalServerError)

		p, err := h.store.ToggleHabitDate(ctx, run.ID, "2025-01-02", true)
		testutil.AssertNoError(t, err)
		<-gate.Arrived()
		testutil.AssertNoError(t, h.store.DeleteHabit(ctx, run.ID))
		gate.Release()
		res := p.Wait()

		testutil.AssertKind(t, res.Err, apperrors.KindRejected)
		if _, ok := h.backend.Habit(run.ID); ok {
			t.Fatal("expected the service to have deleted the habit")
		}
		habits := h.store.Snapshot().Habits
		if len(habits) != 1 || habits[0].Name != "Read" {
			t.Errorf("expected only Read to remain, got %+v", habits)
		}
	})

	t.Run("bad input", func(t *testing.T) {
		h := newHarness(t)
		h.start(t)

		_, err := h.store.ToggleHabitDate(ctx, "missing", "2025-01-01", true)
		testutil.AssertAppError(t, err, "HABIT_NOT_FOUND")

		_, err = h.store.ToggleHabitDate(ctx, "missing", "01/01/2025", true)
		testutil.AssertKind(t, err, apperrors.KindInvalidInput)
	})
}
