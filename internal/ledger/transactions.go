package ledger

import (
	"context"

	"github.com/google/uuid"

	"github.com/propbooks/cardledger/internal/domain"
)

// AddTransaction validates and prepends a transaction to the active
// collection. Newest-first ordering is significant: it is the display
// order and the candidate order for reconciliation.
func (s *Store) AddTransaction(ctx context.Context, tx domain.Transaction) (domain.Transaction, error) {
	if !tx.Amount.IsPositive() {
		return domain.Transaction{}, ErrInvalidAmount
	}
	if tx.ID == "" {
		tx.ID = uuid.New().String()
	}
	if tx.Date.IsZero() {
		tx.Date = domain.Today()
	}
	s.transactions = append([]domain.Transaction{tx}, s.transactions...)
	if err := s.persist(ctx, keyTransactions, s.transactions); err != nil {
		return domain.Transaction{}, err
	}
	return tx, nil
}

// UpdateTransaction replaces the active record matching tx.ID. An
// absent id is a no-op, not an error.
func (s *Store) UpdateTransaction(ctx context.Context, tx domain.Transaction) error {
	if !tx.Amount.IsPositive() {
		return ErrInvalidAmount
	}
	for i := range s.transactions {
		if s.transactions[i].ID == tx.ID {
			s.transactions[i] = tx
			return s.persist(ctx, keyTransactions, s.transactions)
		}
	}
	return nil
}

// SetReconciled flags an active transaction as reconciled (or clears
// the flag). An absent id is a no-op.
func (s *Store) SetReconciled(ctx context.Context, id string, reconciled bool) error {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].Reconciled = reconciled
			return s.persist(ctx, keyTransactions, s.transactions)
		}
	}
	return nil
}

// ConfirmDuplicate marks an active transaction as a confirmed
// duplicate, permanently removing it from duplicate-signature grouping.
// An absent id is a no-op.
func (s *Store) ConfirmDuplicate(ctx context.Context, id string) error {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			s.transactions[i].DuplicateConfirmed = true
			return s.persist(ctx, keyTransactions, s.transactions)
		}
	}
	return nil
}

// SoftDelete moves a transaction from the active collection to the
// deleted collection. The record is moved, never copied: it lives in
// exactly one collection at a time. An absent id is a no-op.
//
// Active is persisted before deleted. If the second write fails the two
// blobs can diverge until the next successful write; this is a known
// consistency gap, accepted for a single-user ledger.
func (s *Store) SoftDelete(ctx context.Context, id string) error {
	for i := range s.transactions {
		if s.transactions[i].ID == id {
			tx := s.transactions[i]
			s.transactions = append(s.transactions[:i], s.transactions[i+1:]...)
			s.deleted = append([]domain.Transaction{tx}, s.deleted...)
			if err := s.persist(ctx, keyTransactions, s.transactions); err != nil {
				return err
			}
			return s.persist(ctx, keyDeleted, s.deleted)
		}
	}
	return nil
}

// Restore moves a transaction from the deleted collection back to the
// active collection. Inverse of SoftDelete; an absent id is a no-op.
func (s *Store) Restore(ctx context.Context, id string) error {
	for i := range s.deleted {
		if s.deleted[i].ID == id {
			tx := s.deleted[i]
			s.deleted = append(s.deleted[:i], s.deleted[i+1:]...)
			s.transactions = append([]domain.Transaction{tx}, s.transactions...)
			if err := s.persist(ctx, keyTransactions, s.transactions); err != nil {
				return err
			}
			return s.persist(ctx, keyDeleted, s.deleted)
		}
	}
	return nil
}

// Purge permanently removes a transaction from the deleted collection.
// An absent id is a no-op.
func (s *Store) Purge(ctx context.Context, id string) error {
	for i := range s.deleted {
		if s.deleted[i].ID == id {
			s.deleted = append(s.deleted[:i], s.deleted[i+1:]...)
			return s.persist(ctx, keyDeleted, s.deleted)
		}
	}
	return nil
}
