package store

import (
	"context"
	"slices"

	apperrors "github.com/kaniyamudhan/rupeeraiser/internal/errors"
	"github.com/kaniyamudhan/rupeeraiser/internal/models"
	"github.com/kaniyamudhan/rupeeraiser/internal/uuid"
	"github.com/kaniyamudhan/rupeeraiser/internal/validator"
)

// AddTransaction inserts the transaction at the front of the collection under
// a Temporary key and sends it to the budget service. On success the record is
// re-keyed to the server's id; on failure it is removed. The returned Pending
// resolves once either has happened.
func (s *Store) AddTransaction(ctx context.Context, in models.TransactionInput) (*Pending, error) {
	if err := validator.Struct(in); err != nil {
		return nil, s.failed(ctx, OpAddTransaction, 0, err)
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, s.failed(ctx, OpAddTransaction, 0, apperrors.ErrNoSession)
	}
	epoch := s.epoch
	key := Temporary(uuid.New())
	s.entries = slices.Insert(s.entries, 0, entry{key: key, tx: in.WithID(key.ID())})
	s.mu.Unlock()
	s.publish()

	p := newPending(OpAddTransaction, key)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		created, err := s.remote.CreateTransaction(context.WithoutCancel(ctx), in)
		if err == nil && created.ID == "" {
			err = apperrors.WithMessage(apperrors.ErrRejected, "Budget service returned a transaction without an id")
		}
		p.resolve(s.reconcileCreate(ctx, epoch, key, created, err))
	}()
	return p, nil
}

func (s *Store) reconcileCreate(ctx context.Context, epoch uint64, temp Key, created *models.Transaction, err error) Result {
	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		s.stale(OpAddTransaction, epoch)
		return Result{Op: OpAddTransaction, Key: temp, Err: err, Dropped: true}
	}

	i := s.indexLocked(temp)
	if err != nil {
		if i >= 0 {
			s.entries = slices.Delete(s.entries, i, i+1)
		}
		s.settleLocked(temp, nil)
		s.mu.Unlock()
		s.publish()
		return Result{Op: OpAddTransaction, Key: temp, Err: s.failed(ctx, OpAddTransaction, epoch, err)}
	}

	tx := *created
	confirmed := Confirmed(tx.ID)
	if i >= 0 {
		s.entries[i] = entry{key: confirmed, tx: tx}
	}
	s.settleLocked(temp, &tx)
	s.mu.Unlock()

	s.log.Debugw("Transaction confirmed", "temp_id", temp.ID(), "id", tx.ID)
	s.publish()
	s.succeeded(OpAddTransaction)
	return Result{Op: OpAddTransaction, Key: confirmed}
}

// EditTransaction replaces a confirmed transaction once the budget service
// has accepted the change. Local state is untouched on failure.
func (s *Store) EditTransaction(ctx context.Context, id string, in models.TransactionInput) (*models.Transaction, error) {
	if err := validator.Struct(in); err != nil {
		return nil, s.failed(ctx, OpEditTransaction, 0, err)
	}

	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, s.failed(ctx, OpEditTransaction, 0, apperrors.ErrNoSession)
	}
	epoch := s.epoch
	i := s.indexByIDLocked(id)
	var lookupErr error
	switch {
	case i < 0:
		lookupErr = apperrors.ErrTransactionNotFound
	case s.entries[i].key.IsTemporary():
		lookupErr = apperrors.ErrTransactionPending
	}
	s.mu.Unlock()
	if lookupErr != nil {
		return nil, s.failed(ctx, OpEditTransaction, epoch, lookupErr)
	}

	updated, err := s.remote.UpdateTransaction(ctx, id, in)
	if err != nil {
		return nil, s.failed(ctx, OpEditTransaction, epoch, err)
	}
	tx := *updated
	if tx.ID == "" {
		tx.ID = id
	}

	s.mu.Lock()
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		s.stale(OpEditTransaction, epoch)
		return nil, apperrors.ErrNoSession
	}
	if i := s.indexLocked(Confirmed(id)); i >= 0 {
		s.entries[i] = entry{key: Confirmed(tx.ID), tx: tx}
	}
	s.mu.Unlock()

	s.publish()
	s.succeeded(OpEditTransaction)
	return &tx, nil
}

// DeleteTransaction removes a confirmed transaction immediately and asks the
// budget service to delete it. If the service refuses, the collection is
// restored as it was before the removal.
func (s *Store) DeleteTransaction(ctx context.Context, id string) (*Pending, error) {
	s.mu.Lock()
	if !s.active {
		s.mu.Unlock()
		return nil, s.failed(ctx, OpDeleteTransaction, 0, apperrors.ErrNoSession)
	}
	epoch := s.epoch
	i := s.indexByIDLocked(id)
	if i < 0 {
		s.mu.Unlock()
		return nil, s.failed(ctx, OpDeleteTransaction, epoch, apperrors.ErrTransactionNotFound)
	}
	key := s.entries[i].key
	if key.IsTemporary() {
		s.mu.Unlock()
		return nil, s.failed(ctx, OpDeleteTransaction, epoch, apperrors.ErrTransactionPending)
	}
	snapshot := slices.Clone(s.entries)
	s.entries = slices.Delete(s.entries, i, i+1)
	s.rollbacks++
	s.mu.Unlock()
	s.publish()

	p := newPending(OpDeleteTransaction, key)
	s.inflight.Add(1)
	go func() {
		defer s.inflight.Done()
		err := s.remote.DeleteTransaction(context.WithoutCancel(ctx), id)
		p.resolve(s.reconcileDelete(ctx, epoch, key, snapshot, err))
	}()
	return p, nil
}

func (s *Store) reconcileDelete(ctx context.Context, epoch uint64, key Key, snapshot []entry, err error) Result {
	s.mu.Lock()
	s.rollbacks--
	if !s.currentLocked(epoch) {
		s.mu.Unlock()
		s.stale(OpDeleteTransaction, epoch)
		return Result{Op: OpDeleteTransaction, Key: key, Err: err, Dropped: true}
	}

	if err != nil {
		s.entries = rollback(s.settledSnapshotLocked(snapshot), s.entries, entryID, key.ID(), true, true)
	}
	if s.rollbacks == 0 {
		clear(s.resolved)
	}
	s.mu.Unlock()

	if err != nil {
		s.publish()
		return Result{Op: OpDeleteTransaction, Key: key, Err: s.failed(ctx, OpDeleteTransaction, epoch, err)}
	}
	s.succeeded(OpDeleteTransaction)
	return Result{Op: OpDeleteTransaction, Key: key}
}

// settleLocked remembers how a temporary key resolved while a rollback might
// still restore a snapshot holding it. tx is nil when the insert was rolled
// back.
func (s *Store) settleLocked(temp Key, tx *models.Transaction) {
	if s.rollbacks > 0 {
		s.resolved[temp.ID()] = tx
	}
}

// settledSnapshotLocked applies the resolutions recorded since snapshot was
// taken to its temporary entries.
func (s *Store) settledSnapshotLocked(snapshot []entry) []entry {
	out := make([]entry, 0, len(snapshot))
	for _, e := range snapshot {
		switch e.key.State() {
		case KeyTemporary:
			tx, settled := s.resolved[e.key.ID()]
			switch {
			case !settled:
				out = append(out, e)
			case tx != nil:
				out = append(out, entry{key: Confirmed(tx.ID), tx: *tx})
			}
		case KeyConfirmed:
			out = append(out, e)
		}
	}
	return out
}

func (s *Store) indexLocked(key Key) int {
	return slices.IndexFunc(s.entries, func(e entry) bool { return e.key == key })
}

func (s *Store) indexByIDLocked(id string) int {
	return slices.IndexFunc(s.entries, func(e entry) bool { return e.key.ID() == id })
}

func entryID(e entry) string { return e.key.ID() }
