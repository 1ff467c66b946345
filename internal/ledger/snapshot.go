package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/propbooks/cardledger/internal/domain"
)

// SnapshotVersion tags the backup format written by ExportSnapshot.
const SnapshotVersion = "1"

// ErrInvalidSnapshot is returned by ImportSnapshot when the payload is
// structurally malformed. The import is rejected wholesale; no existing
// state is mutated.
var ErrInvalidSnapshot = errors.New("ledger: invalid snapshot")

// ExportSnapshot captures all five collections plus a timestamp and the
// format version as one backup unit.
func (s *Store) ExportSnapshot() domain.Snapshot {
	return domain.Snapshot{
		Investors:           s.Investors(),
		Properties:          s.Properties(),
		Cards:               s.Cards(),
		Transactions:        s.Transactions(),
		DeletedTransactions: s.DeletedTransactions(),
		Timestamp:           time.Now().Format(time.RFC3339),
		Version:             SnapshotVersion,
	}
}

// ImportSnapshot validates a JSON backup payload and, on success,
// replaces all five collections and persists them. Validation is
// all-or-nothing: any structural problem rejects the entire import
// before any state changes. Transaction dates are renormalized exactly
// as in Load.
func (s *Store) ImportSnapshot(ctx context.Context, data []byte) error {
	// Pointer fields distinguish "absent" from "empty".
	var probe struct {
		Investors           *[]domain.Investor    `json:"investors"`
		Properties          *[]string             `json:"properties"`
		Cards               *[]domain.Card        `json:"cards"`
		Transactions        *[]domain.Transaction `json:"transactions"`
		DeletedTransactions *[]domain.Transaction `json:"deletedTransactions"`
		Timestamp           *string               `json:"timestamp"`
		Version             *string               `json:"version"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidSnapshot, err)
	}
	switch {
	case probe.Investors == nil:
		return fmt.Errorf("%w: missing investors", ErrInvalidSnapshot)
	case probe.Properties == nil:
		return fmt.Errorf("%w: missing properties", ErrInvalidSnapshot)
	case probe.Cards == nil:
		return fmt.Errorf("%w: missing cards", ErrInvalidSnapshot)
	case probe.Transactions == nil:
		return fmt.Errorf("%w: missing transactions", ErrInvalidSnapshot)
	case probe.DeletedTransactions == nil:
		return fmt.Errorf("%w: missing deletedTransactions", ErrInvalidSnapshot)
	case probe.Timestamp == nil:
		return fmt.Errorf("%w: missing timestamp", ErrInvalidSnapshot)
	case probe.Version == nil:
		return fmt.Errorf("%w: missing version", ErrInvalidSnapshot)
	}

	transactions := *probe.Transactions
	deleted := *probe.DeletedTransactions
	if n := normalizeDates(transactions); n > 0 {
		s.log.Warn().Int("coerced", n).Msg("Imported transactions with unparseable dates coerced to today")
	}
	if n := normalizeDates(deleted); n > 0 {
		s.log.Warn().Int("coerced", n).Msg("Imported deleted transactions with unparseable dates coerced to today")
	}

	s.investors = *probe.Investors
	s.properties = *probe.Properties
	s.cards = *probe.Cards
	s.transactions = transactions
	s.deleted = deleted

	if err := s.persist(ctx, keyInvestors, s.investors); err != nil {
		return err
	}
	if err := s.persist(ctx, keyProperties, s.properties); err != nil {
		return err
	}
	if err := s.persist(ctx, keyCards, s.cards); err != nil {
		return err
	}
	if err := s.persist(ctx, keyTransactions, s.transactions); err != nil {
		return err
	}
	if err := s.persist(ctx, keyDeleted, s.deleted); err != nil {
		return err
	}

	s.log.Info().
		Str("version", *probe.Version).
		Str("timestamp", *probe.Timestamp).
		Int("transactions", len(s.transactions)).
		Msg("Snapshot imported")

	return nil
}
