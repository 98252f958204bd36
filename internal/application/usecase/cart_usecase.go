// internal/application/usecase/cart_usecase.go
package usecase

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"primepicks/internal/application/query/dto"
	cartdom "primepicks/internal/domain/cart"
	productdom "primepicks/internal/domain/product"
)

// Clock provides current time (for testability).
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// CartObserver receives one call per finished store operation.
// Implementations must be safe for concurrent use.
type CartObserver interface {
	ObserveOperation(op string, err error, elapsed time.Duration)
}

type noopObserver struct{}

func (noopObserver) ObserveOperation(string, error, time.Duration) {}

// CartStore owns the in-memory carts, one per identity.
//
// Locking:
//   - mu guards the identity map only.
//   - each cartEntry.mu is held for a whole mutation, catalog lookup included,
//     so aggregates are never observed half-updated.
//   - different identities never share a lock.
type CartStore struct {
	catalog  productdom.Catalog
	clock    Clock
	newID    func() string
	observer CartObserver

	mu    sync.Mutex
	carts map[string]*cartEntry
}

type cartEntry struct {
	mu   sync.Mutex
	cart *cartdom.Cart
}

type CartStoreOption func(*CartStore)

func WithClock(c Clock) CartStoreOption {
	return func(s *CartStore) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithIDGenerator overrides the line id generator (uuid v4 by default).
func WithIDGenerator(f func() string) CartStoreOption {
	return func(s *CartStore) {
		if f != nil {
			s.newID = f
		}
	}
}

func WithObserver(o CartObserver) CartStoreOption {
	return func(s *CartStore) {
		if o != nil {
			s.observer = o
		}
	}
}

func NewCartStore(catalog productdom.Catalog, opts ...CartStoreOption) *CartStore {
	s := &CartStore{
		catalog:  catalog,
		clock:    systemClock{},
		newID:    uuid.NewString,
		observer: noopObserver{},
		carts:    map[string]*cartEntry{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AddItemInput is the add request; Size and Color are optional.
type AddItemInput struct {
	Identity  string
	ProductID string
	Quantity  int
	Size      string
	Color     string
}

// GetOrCreate returns the identity's cart, creating an empty one on first access.
// The enriched view lives in query.CartQuery.
func (s *CartStore) GetOrCreate(identity string) *cartdom.Cart {
	e := s.entry(identity)
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cart.Clone()
}

// Add puts quantity units of a product/variant into the cart.
//   - ErrInvalidInput: productId missing or quantity <= 0
//   - ErrProductNotFound: catalog lookup failed (cart untouched)
func (s *CartStore) Add(ctx context.Context, in AddItemInput) (*cartdom.Cart, error) {
	start := time.Now()
	c, err := s.add(ctx, in)
	s.finish("add", in.Identity, err, start)
	return c, err
}

func (s *CartStore) add(ctx context.Context, in AddItemInput) (*cartdom.Cart, error) {
	pid := strings.TrimSpace(in.ProductID)
	if pid == "" {
		return nil, fmt.Errorf("%w: productId is required", cartdom.ErrInvalidInput)
	}
	if in.Quantity <= 0 {
		return nil, fmt.Errorf("%w: quantity must be >= 1 (got %d)", cartdom.ErrInvalidInput, in.Quantity)
	}
	if s.catalog == nil {
		return nil, fmt.Errorf("%w: catalog is not configured", cartdom.ErrProductNotFound)
	}

	e := s.entry(in.Identity)
	e.mu.Lock()
	defer e.mu.Unlock()

	p, err := s.catalog.GetProductByID(ctx, pid)
	if err != nil {
		return nil, fmt.Errorf("%w: id=%q: %w", cartdom.ErrProductNotFound, pid, err)
	}

	snap := cartdom.ProductSnapshot{
		ProductID: pid,
		Name:      p.Name,
		UnitPrice: p.Price,
	}
	v := cartdom.Variant{Size: in.Size, Color: in.Color}
	if _, err := e.cart.Add(snap, in.Quantity, v, s.newID, s.clock.Now()); err != nil {
		return nil, err
	}
	return e.cart.Clone(), nil
}

// UpdateQuantity sets the quantity of an existing line.
func (s *CartStore) UpdateQuantity(identity, itemID string, quantity int) (*cartdom.Cart, error) {
	start := time.Now()
	c, err := s.mutate(identity, func(c *cartdom.Cart, now time.Time) error {
		return c.SetQuantity(itemID, quantity, now)
	})
	s.finish("update", identity, err, start)
	return c, err
}

// Remove deletes a line from the cart.
func (s *CartStore) Remove(identity, itemID string) (*cartdom.Cart, error) {
	start := time.Now()
	c, err := s.mutate(identity, func(c *cartdom.Cart, now time.Time) error {
		return c.Remove(itemID, now)
	})
	s.finish("remove", identity, err, start)
	return c, err
}

// Clear empties the cart. Never fails.
func (s *CartStore) Clear(identity string) *cartdom.Cart {
	start := time.Now()
	c, _ := s.mutate(identity, func(c *cartdom.Cart, now time.Time) error {
		c.Clear(now)
		return nil
	})
	s.finish("clear", identity, nil, start)
	return c
}

// Summary is a pure read of the aggregates.
func (s *CartStore) Summary(identity string) dto.SummaryDTO {
	e := s.entry(identity)
	e.mu.Lock()
	defer e.mu.Unlock()
	return dto.NewSummaryDTO(e.cart.Summary())
}

// CartCount reports how many identities currently hold a cart.
func (s *CartStore) CartCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.carts)
}

// ----------------------------
// internals
// ----------------------------

func (s *CartStore) entry(identity string) *cartEntry {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.carts[identity]
	if !ok {
		e = &cartEntry{cart: cartdom.NewCart(identity, s.clock.Now())}
		s.carts[identity] = e
	}
	return e
}

func (s *CartStore) mutate(identity string, fn func(c *cartdom.Cart, now time.Time) error) (*cartdom.Cart, error) {
	e := s.entry(identity)
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(e.cart, s.clock.Now()); err != nil {
		return nil, err
	}
	return e.cart.Clone(), nil
}

func (s *CartStore) finish(op, identity string, err error, start time.Time) {
	elapsed := time.Since(start)
	s.observer.ObserveOperation(op, err, elapsed)

	if err != nil {
		log.Printf("[cart_store] op=%s identity=%q kind=%s err=%v elapsed=%s", op, maskID(identity), cartdom.ErrorKind(err), err, elapsed)
		return
	}
	log.Printf("[cart_store] op=%s identity=%q ok elapsed=%s", op, maskID(identity), elapsed)
}
