// Package ledger owns the authoritative in-memory collections of the
// bookkeeping ledger and their persisted mirror in a blob store. Every
// mutation is written through to the backing store before the call
// returns; there is no write-behind buffering.
//
// The store does not lock. Per the single-user execution model, callers
// embedding it in a concurrent host must serialize access themselves.
package ledger

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/propbooks/cardledger/internal/blob"
	"github.com/propbooks/cardledger/internal/domain"
)

// Blob keys, one per collection.
const (
	keyInvestors    = "investors"
	keyProperties   = "properties"
	keyCards        = "cards"
	keyTransactions = "transactions"
	keyDeleted      = "deleted_transactions"
)

// ErrInvalidAmount is returned when a transaction amount is zero or
// negative.
var ErrInvalidAmount = errors.New("ledger: transaction amount must be positive")

// Store holds the five ledger collections and their blob-store mirror.
type Store struct {
	blobs blob.Store
	log   zerolog.Logger

	investors    []domain.Investor
	properties   []string
	cards        []domain.Card
	transactions []domain.Transaction
	deleted      []domain.Transaction
}

// New creates a Store over the given blob backend. Call Load before use.
func New(blobs blob.Store, log zerolog.Logger) *Store {
	return &Store{
		blobs: blobs,
		log:   log,
	}
}

// Load reads all five collections from the blob store. A missing key is
// seeded with the default dataset. A key that is present but does not
// parse as the expected shape is discarded: the corrupt blob is deleted
// and the defaults take its place. This is a deliberate
// availability-over-correctness policy; the application never refuses to
// start because of bad persisted state.
//
// Transaction-shaped collections additionally get their dates
// normalized: a record whose date could not be parsed is coerced to
// today rather than rejected.
func (s *Store) Load(ctx context.Context) error {
	if err := loadCollection(ctx, s, keyInvestors, &s.investors, defaultInvestors()); err != nil {
		return err
	}
	if err := loadCollection(ctx, s, keyProperties, &s.properties, defaultProperties()); err != nil {
		return err
	}
	if err := loadCollection(ctx, s, keyCards, &s.cards, defaultCards()); err != nil {
		return err
	}
	if err := loadCollection(ctx, s, keyTransactions, &s.transactions, defaultTransactions()); err != nil {
		return err
	}
	if err := loadCollection(ctx, s, keyDeleted, &s.deleted, defaultTransactions()); err != nil {
		return err
	}

	if n := normalizeDates(s.transactions); n > 0 {
		s.log.Warn().Int("coerced", n).Msg("Active transactions with unparseable dates coerced to today")
		if err := s.persist(ctx, keyTransactions, s.transactions); err != nil {
			return err
		}
	}
	if n := normalizeDates(s.deleted); n > 0 {
		s.log.Warn().Int("coerced", n).Msg("Deleted transactions with unparseable dates coerced to today")
		if err := s.persist(ctx, keyDeleted, s.deleted); err != nil {
			return err
		}
	}

	s.log.Info().
		Int("investors", len(s.investors)).
		Int("properties", len(s.properties)).
		Int("cards", len(s.cards)).
		Int("transactions", len(s.transactions)).
		Int("deleted", len(s.deleted)).
		Msg("Ledger loaded")

	return nil
}

// loadCollection reads one blob key into dst, applying the seed-default
// and discard-and-default recovery policies.
func loadCollection[T any](ctx context.Context, s *Store, key string, dst *[]T, defaults []T) error {
	data, err := s.blobs.Get(ctx, key)
	if errors.Is(err, blob.ErrNotExist) {
		*dst = defaults
		return s.persist(ctx, key, *dst)
	}
	if err != nil {
		return fmt.Errorf("Load: reading %q: %w", key, err)
	}

	var parsed []T
	if err := json.Unmarshal(data, &parsed); err != nil {
		// Corrupt blob: delete the key and fall back to defaults.
		s.log.Warn().Str("key", key).Err(err).Msg("Discarding corrupt blob, falling back to defaults")
		if err := s.blobs.Delete(ctx, key); err != nil {
			return fmt.Errorf("Load: deleting corrupt %q: %w", key, err)
		}
		*dst = defaults
		return s.persist(ctx, key, *dst)
	}
	if parsed == nil {
		parsed = []T{}
	}
	*dst = parsed
	return nil
}

// normalizeDates coerces zero dates to today and returns how many
// records were touched.
func normalizeDates(txs []domain.Transaction) int {
	coerced := 0
	for i := range txs {
		if txs[i].Date.IsZero() {
			txs[i].Date = domain.Today()
			coerced++
		}
	}
	return coerced
}

// persist writes one collection through to the blob store. A failed
// write fails the calling operation; in-memory state may then be ahead
// of the persisted state until the next successful write.
func (s *Store) persist(ctx context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("persist %q: marshal: %w", key, err)
	}
	if err := s.blobs.Put(ctx, key, data); err != nil {
		return fmt.Errorf("persist %q: %w", key, err)
	}
	return nil
}

// AddInvestor creates an investor with a fresh id and persists the
// collection.
func (s *Store) AddInvestor(ctx context.Context, name, email string) (domain.Investor, error) {
	inv := domain.Investor{
		ID:    uuid.New().String(),
		Name:  name,
		Email: email,
	}
	s.investors = append(s.investors, inv)
	if err := s.persist(ctx, keyInvestors, s.investors); err != nil {
		return domain.Investor{}, err
	}
	return inv, nil
}

// AddProperty adds a property name. Properties are set-like: adding an
// existing name is a no-op that returns the existing name.
func (s *Store) AddProperty(ctx context.Context, name string) (string, error) {
	name = strings.TrimSpace(name)
	for _, p := range s.properties {
		if p == name {
			return p, nil
		}
	}
	s.properties = append(s.properties, name)
	if err := s.persist(ctx, keyProperties, s.properties); err != nil {
		return "", err
	}
	return name, nil
}

// AddCard creates a card with a fresh id and persists the collection.
// The investor reference is not enforced; consumers treat a dangling
// id as "unknown".
func (s *Store) AddCard(ctx context.Context, card domain.Card) (domain.Card, error) {
	card.ID = uuid.New().String()
	s.cards = append(s.cards, card)
	if err := s.persist(ctx, keyCards, s.cards); err != nil {
		return domain.Card{}, err
	}
	return card, nil
}

// Investors returns a copy of the investor collection.
func (s *Store) Investors() []domain.Investor {
	out := make([]domain.Investor, len(s.investors))
	copy(out, s.investors)
	return out
}

// Properties returns a copy of the property name list.
func (s *Store) Properties() []string {
	out := make([]string, len(s.properties))
	copy(out, s.properties)
	return out
}

// Cards returns a copy of the card collection.
func (s *Store) Cards() []domain.Card {
	out := make([]domain.Card, len(s.cards))
	copy(out, s.cards)
	return out
}

// Transactions returns a copy of the active transaction collection,
// newest first.
func (s *Store) Transactions() []domain.Transaction {
	out := make([]domain.Transaction, len(s.transactions))
	copy(out, s.transactions)
	return out
}

// DeletedTransactions returns a copy of the deleted collection.
func (s *Store) DeletedTransactions() []domain.Transaction {
	out := make([]domain.Transaction, len(s.deleted))
	copy(out, s.deleted)
	return out
}

// Unreconciled returns the active transactions not yet reconciled, in
// collection order.
func (s *Store) Unreconciled() []domain.Transaction {
	var out []domain.Transaction
	for _, tx := range s.transactions {
		if !tx.Reconciled {
			out = append(out, tx)
		}
	}
	return out
}

// TransactionByID looks up an active transaction by id.
func (s *Store) TransactionByID(id string) (domain.Transaction, bool) {
	for _, tx := range s.transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return domain.Transaction{}, false
}

// InvestorByID looks up an investor. The second return value is false
// when the id is unknown; callers display "unknown" rather than failing.
func (s *Store) InvestorByID(id string) (domain.Investor, bool) {
	for _, inv := range s.investors {
		if inv.ID == id {
			return inv, true
		}
	}
	return domain.Investor{}, false
}

// CardByID looks up a card by id.
func (s *Store) CardByID(id string) (domain.Card, bool) {
	for _, c := range s.cards {
		if c.ID == id {
			return c, true
		}
	}
	return domain.Card{}, false
}

// CardByLast4 resolves a card by its last four digits, used by the bulk
// import path.
func (s *Store) CardByLast4(last4 string) (domain.Card, bool) {
	for _, c := range s.cards {
		if c.Last4Digits != "" && c.Last4Digits == last4 {
			return c, true
		}
	}
	return domain.Card{}, false
}
