package cart

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"RocketShoes/internal/slot"
)

type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

// Catalog answers product and stock lookups. Every call may fail.
type Catalog interface {
	Stock(ctx context.Context, productID int) (Stock, error)
	Product(ctx context.Context, productID int) (Product, error)
}

type Notifier interface {
	Error(ctx context.Context, msg string)
}

// Slot is the durable mirror of one cart. Load returns slot.ErrEmpty when
// nothing was stored yet.
type Slot interface {
	Load(ctx context.Context) ([]byte, error)
	Save(ctx context.Context, value []byte) error
}

type Deps struct {
	Catalog  Catalog
	Notifier Notifier
	Slot     Slot
	Log      *zap.Logger
	Metrics  *Metrics
}

// Store owns one cart and its durable mirror.
//
// Mutations are serialized: opMu is held for the whole operation, collaborator
// calls included, so a mutation always starts from the state the previous one
// committed. mu only guards the committed value, so Cart never waits on the
// catalog.
type Store struct {
	catalog  Catalog
	notifier Notifier
	slot     Slot
	log      *zap.Logger
	metrics  *Metrics

	opMu sync.Mutex

	mu   sync.RWMutex
	cart Cart
}

// NewStore builds a store initialized from the slot. An empty slot or a value
// that does not parse yields an empty cart; a failed read is returned so the
// stored cart is never overwritten by a store that could not see it.
func NewStore(ctx context.Context, deps Deps) (*Store, error) {
	s := &Store{
		catalog:  deps.Catalog,
		notifier: deps.Notifier,
		slot:     deps.Slot,
		log:      deps.Log,
		metrics:  deps.Metrics,
		cart:     Cart{},
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	if err := s.load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Store) load(ctx context.Context) error {
	raw, err := s.slot.Load(ctx)
	if errors.Is(err, slot.ErrEmpty) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("load cart: %w", err)
	}

	c, err := Decode(raw)
	if err != nil {
		s.log.Warn("stored cart unparseable, starting empty", zap.Error(err))
		return nil
	}
	s.cart = c
	return nil
}

// Cart returns a copy of the committed cart.
func (s *Store) Cart() Cart {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cart.clone()
}

// AddProduct puts one more unit of productID in the cart, fetching the product
// record when it is not in the cart yet.
func (s *Store) AddProduct(ctx context.Context, productID int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cur := s.Cart()
	idx := cur.index(productID)

	st, err := s.catalog.Stock(ctx, productID)
	if err != nil {
		return s.fail(ctx, OpAdd, productID, KindCollaborator, fmt.Errorf("stock: %w", err))
	}

	required := 1
	if idx >= 0 {
		required = cur[idx].Amount + 1
	}
	if st.Amount < required {
		return s.fail(ctx, OpAdd, productID, KindInsufficientStock,
			fmt.Errorf("available %d, required %d", st.Amount, required))
	}

	next := cur.clone()
	if idx >= 0 {
		next[idx].Amount++
	} else {
		p, err := s.catalog.Product(ctx, productID)
		if err != nil {
			return s.fail(ctx, OpAdd, productID, KindCollaborator, fmt.Errorf("product: %w", err))
		}
		p.ID = productID
		p.Amount = 1
		next = append(next, p)
	}

	if err := s.commit(ctx, next); err != nil {
		return s.fail(ctx, OpAdd, productID, KindCollaborator, err)
	}
	s.succeed(OpAdd)
	return nil
}

// RemoveProduct drops the line item of productID.
func (s *Store) RemoveProduct(ctx context.Context, productID int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	cur := s.Cart()
	next := make(Cart, 0, len(cur))
	for _, p := range cur {
		if p.ID != productID {
			next = append(next, p)
		}
	}

	if len(next) == len(cur) {
		return s.fail(ctx, OpRemove, productID, KindNotFound, nil)
	}

	if err := s.commit(ctx, next); err != nil {
		return s.fail(ctx, OpRemove, productID, KindCollaborator, err)
	}
	s.succeed(OpRemove)
	return nil
}

// UpdateProductAmount sets the amount of an existing line item. Stock is
// checked first; an item that is not in the cart is never created.
func (s *Store) UpdateProductAmount(ctx context.Context, productID, amount int) error {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	st, err := s.catalog.Stock(ctx, productID)
	if err != nil {
		return s.fail(ctx, OpUpdate, productID, KindCollaborator, fmt.Errorf("stock: %w", err))
	}
	if st.Amount < amount {
		return s.fail(ctx, OpUpdate, productID, KindInsufficientStock,
			fmt.Errorf("available %d, requested %d", st.Amount, amount))
	}

	cur := s.Cart()
	idx := cur.index(productID)
	if idx < 0 {
		return s.fail(ctx, OpUpdate, productID, KindNotFound, nil)
	}
	if amount < 1 {
		return s.fail(ctx, OpUpdate, productID, KindInvalidQuantity, fmt.Errorf("amount %d", amount))
	}

	next := cur.clone()
	next[idx].Amount = amount

	if err := s.commit(ctx, next); err != nil {
		return s.fail(ctx, OpUpdate, productID, KindCollaborator, err)
	}
	s.succeed(OpUpdate)
	return nil
}

// commit writes next to the slot and only then swaps it in, so a failed write
// leaves memory and storage on the previous cart.
func (s *Store) commit(ctx context.Context, next Cart) error {
	raw, err := Encode(next)
	if err != nil {
		return fmt.Errorf("encode cart: %w", err)
	}
	if err := s.slot.Save(ctx, raw); err != nil {
		return fmt.Errorf("save cart: %w", err)
	}

	s.mu.Lock()
	s.cart = next
	s.mu.Unlock()
	return nil
}

func (s *Store) fail(ctx context.Context, op string, productID int, kind Kind, cause error) error {
	err := &Error{Op: op, Kind: kind, ProductID: productID, Err: cause}

	s.log.Warn("cart operation failed",
		zap.String("op", op),
		zap.Int("product_id", productID),
		zap.String("kind", kind.String()),
		zap.Error(err),
	)
	if s.notifier != nil {
		s.notifier.Error(context.WithoutCancel(ctx), err.Message())
	}
	s.metrics.observe(op, kind.String())
	return err
}

func (s *Store) succeed(op string) {
	s.metrics.observe(op, outcomeOK)
}
