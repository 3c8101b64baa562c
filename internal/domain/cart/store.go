package cart

import (
	"context"

	"github.com/go-faster/sdk/zctx"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Store holds the cart state for a single session. It is the authoritative
// view of what the shopper intends to buy until checkout; mutations are
// synchronous and the store is not safe for concurrent writers. Two sessions
// sharing a persistence key overwrite each other last-write-wins.
type Store struct {
	session   string
	lines     []Line
	persister Persister
}

// NewStore creates a Store for the given session and rehydrates it from the
// persister. A load failure or malformed persisted payload yields an empty
// cart rather than an error.
func NewStore(ctx context.Context, session string, p Persister) *Store {
	s := &Store{session: session, persister: p}
	lines, err := p.Load(ctx, session)
	if err != nil {
		zctx.From(ctx).Debug("cart rehydration failed, starting empty",
			zap.String("session", session), zap.Error(err))
		return s
	}
	s.lines = lines
	return s
}

// AddItem appends a new line with the given quantity, or increments the
// quantity of an existing line with the same ID. Quantities below 1 are
// treated as 1.
func (s *Store) AddItem(ctx context.Context, line Line, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range s.lines {
		if s.lines[i].ID == line.ID {
			s.lines[i].Quantity += quantity
			s.persist(ctx)
			return
		}
	}
	line.Quantity = quantity
	s.lines = append(s.lines, line)
	s.persist(ctx)
}

// RemoveItem deletes the line with the given ID. Unknown IDs are a no-op.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines = append(s.lines[:i], s.lines[i+1:]...)
			s.persist(ctx)
			return
		}
	}
}

// UpdateQuantity sets the line's quantity, clamped to a minimum of 1.
// Unknown IDs are a no-op.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity < 1 {
		quantity = 1
	}
	for i := range s.lines {
		if s.lines[i].ID == id {
			s.lines[i].Quantity = quantity
			s.persist(ctx)
			return
		}
	}
}

// Clear empties the cart. Called after a successful order placement.
func (s *Store) Clear(ctx context.Context) {
	s.lines = nil
	if s.persister == nil {
		return
	}
	if err := s.persister.Delete(ctx, s.session); err != nil {
		zctx.From(ctx).Warn("cart clear not persisted",
			zap.String("session", s.session), zap.Error(err))
	}
}

// Lines returns a copy of the current line list in insertion order.
func (s *Store) Lines() []Line {
	out := make([]Line, len(s.lines))
	copy(out, s.lines)
	return out
}

// Count returns the sum of quantities across all lines.
func (s *Store) Count() int {
	total := 0
	for _, l := range s.lines {
		total += l.Quantity
	}
	return total
}

// Subtotal returns the sum of price times quantity across all lines.
func (s *Store) Subtotal() decimal.Decimal {
	total := decimal.Zero
	for _, l := range s.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// persist mirrors the whole line list to the persister. Write failures are
// logged and otherwise swallowed: no cart mutation is allowed to fail in a
// way visible to the caller.
func (s *Store) persist(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Save(ctx, s.session, s.lines); err != nil {
		zctx.From(ctx).Warn("cart state not persisted",
			zap.String("session", s.session), zap.Error(err))
	}
}
