package usecase

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	cartdom "primepicks/internal/domain/cart"
	productdom "primepicks/internal/domain/product"
)

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

type fakeCatalog struct {
	mu       sync.Mutex
	products map[string]productdom.Product
	failing  map[string]error
	calls    int
}

func newFakeCatalog() *fakeCatalog {
	return &fakeCatalog{
		products: map[string]productdom.Product{
			"P1": {ID: "P1", Name: "Runner", Brand: "Acme", Price: decimal.RequireFromString("49.99"), Image: "p1.png", InStock: true, Stock: 7},
			"P2": {ID: "P2", Name: "Sock", Brand: "Acme", Price: decimal.RequireFromString("4.50"), Image: "p2.png", InStock: true, Stock: 100},
			"P3": {ID: "P3", Name: "Cap", Brand: "Hatter", Price: decimal.RequireFromString("12"), InStock: false},
		},
		failing: map[string]error{},
	}
}

func (f *fakeCatalog) GetProductByID(_ context.Context, id string) (productdom.Product, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if err, ok := f.failing[id]; ok {
		return productdom.Product{}, err
	}
	p, ok := f.products[id]
	if !ok {
		return productdom.Product{}, productdom.ErrNotFound
	}
	return p, nil
}

func (f *fakeCatalog) fail(id string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing[id] = err
}

type recordingObserver struct {
	mu    sync.Mutex
	ops   map[string]int
	kinds map[string]int
}

func newRecordingObserver() *recordingObserver {
	return &recordingObserver{ops: map[string]int{}, kinds: map[string]int{}}
}

func (o *recordingObserver) ObserveOperation(op string, err error, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.ops[op]++
	if err != nil {
		o.kinds[cartdom.ErrorKind(err)]++
	}
}

func seqIDs() func() string {
	var mu sync.Mutex
	n := 0
	return func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return fmt.Sprintf("item-%d", n)
	}
}

func newTestStore(cat productdom.Catalog, opts ...CartStoreOption) *CartStore {
	base := []CartStoreOption{
		WithClock(fixedClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}),
		WithIDGenerator(seqIDs()),
	}
	return NewCartStore(cat, append(base, opts...)...)
}

func checkAggregates(t *testing.T, c *cartdom.Cart) {
	t.Helper()
	total := decimal.Zero
	count := 0
	for _, it := range c.Items {
		if !it.Subtotal.Equal(it.UnitPrice.Mul(decimal.NewFromInt(int64(it.Quantity)))) {
			t.Fatalf("line %s subtotal %s != %s x %d", it.ID, it.Subtotal, it.UnitPrice, it.Quantity)
		}
		total = total.Add(it.Subtotal)
		count += it.Quantity
	}
	if !c.Total.Equal(total) || c.ItemCount != count {
		t.Fatalf("aggregates total=%s itemCount=%d, want %s/%d", c.Total, c.ItemCount, total, count)
	}
}

func TestCartStore_GetOrCreateIsLazyAndStable(t *testing.T) {
	s := newTestStore(newFakeCatalog())
	if s.CartCount() != 0 {
		t.Fatalf("CartCount = %d, want 0", s.CartCount())
	}

	c1 := s.GetOrCreate("u1")
	c2 := s.GetOrCreate("u1")
	if s.CartCount() != 1 {
		t.Fatalf("CartCount = %d, want 1", s.CartCount())
	}
	if c1.Identity != "u1" || len(c1.Items) != 0 || !c1.CreatedAt.Equal(c2.CreatedAt) {
		t.Fatalf("unexpected carts %+v / %+v", c1, c2)
	}
}

func TestCartStore_AddSameLineFolds(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())

	if _, err := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 2}); err != nil {
		t.Fatalf("add: %v", err)
	}
	c, err := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 3})
	if err != nil {
		t.Fatalf("add: %v", err)
	}

	if len(c.Items) != 1 {
		t.Fatalf("lines = %d, want 1", len(c.Items))
	}
	it := c.Items[0]
	if it.Quantity != 5 || !it.Subtotal.Equal(decimal.RequireFromString("249.95")) {
		t.Fatalf("line = %+v, want quantity 5 subtotal 249.95", it)
	}
	if it.Name != "Runner" {
		t.Fatalf("name snapshot = %q, want Runner", it.Name)
	}
	checkAggregates(t, c)
}

func TestCartStore_AddDistinctSizes(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())

	_, _ = s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 1, Size: "10"})
	c, err := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 1, Size: "11"})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(c.Items) != 2 {
		t.Fatalf("lines = %d, want 2", len(c.Items))
	}
	if c.Items[0].Size != "10" || c.Items[1].Size != "11" {
		t.Fatalf("sizes = %q,%q", c.Items[0].Size, c.Items[1].Size)
	}
	checkAggregates(t, c)
}

func TestCartStore_AddInvalidInputLeavesCartUnchanged(t *testing.T) {
	ctx := context.Background()
	cat := newFakeCatalog()
	s := newTestStore(cat)
	_, _ = s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P2", Quantity: 1})
	callsBefore := cat.calls

	tests := []struct {
		name string
		in   AddItemInput
	}{
		{name: "zero", in: AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 0}},
		{name: "negative", in: AddItemInput{Identity: "u1", ProductID: "P1", Quantity: -1}},
		{name: "no product", in: AddItemInput{Identity: "u1", ProductID: " ", Quantity: 1}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Add(ctx, tt.in)
			if !errors.Is(err, cartdom.ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}

	if cat.calls != callsBefore {
		t.Fatalf("catalog called for invalid input: %d -> %d", callsBefore, cat.calls)
	}
	sum := s.Summary("u1")
	if sum.ItemCount != 1 || sum.DistinctLineCount != 1 {
		t.Fatalf("summary = %+v, want unchanged", sum)
	}
}

func TestCartStore_AddUnknownProduct(t *testing.T) {
	ctx := context.Background()
	cat := newFakeCatalog()
	cat.fail("P9", errors.New("connection refused"))
	s := newTestStore(cat)
	_, _ = s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P2", Quantity: 2})

	for _, pid := range []string{"NOPE", "P9"} {
		_, err := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: pid, Quantity: 1})
		if !errors.Is(err, cartdom.ErrProductNotFound) {
			t.Fatalf("%s: expected ErrProductNotFound, got %v", pid, err)
		}
		if errors.Is(err, cartdom.ErrInvalidInput) {
			t.Fatalf("%s: ErrProductNotFound must be distinct from ErrInvalidInput", pid)
		}
	}

	c := s.GetOrCreate("u1")
	if len(c.Items) != 1 || c.ItemCount != 2 {
		t.Fatalf("cart changed after failed add: %+v", c)
	}
}

func TestCartStore_AddWithoutCatalog(t *testing.T) {
	s := newTestStore(nil)
	_, err := s.Add(context.Background(), AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 1})
	if !errors.Is(err, cartdom.ErrProductNotFound) {
		t.Fatalf("expected ErrProductNotFound, got %v", err)
	}
}

func TestCartStore_UpdateAndRemove(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())
	_, _ = s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 1})
	c, _ := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P2", Quantity: 1})
	p2 := c.Items[1].ID

	c, err := s.UpdateQuantity("u1", p2, 4)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if c.Items[1].Quantity != 4 || !c.Total.Equal(decimal.RequireFromString("67.99")) {
		t.Fatalf("after update: %+v", c)
	}
	checkAggregates(t, c)

	if _, err := s.UpdateQuantity("u1", p2, 0); !errors.Is(err, cartdom.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if _, err := s.UpdateQuantity("u1", "missing", 2); !errors.Is(err, cartdom.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if _, err := s.Remove("u1", "missing"); !errors.Is(err, cartdom.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound, got %v", err)
	}
	if got := s.Summary("u1"); got.ItemCount != 5 {
		t.Fatalf("summary after failures = %+v, want itemCount 5", got)
	}

	c, err = s.Remove("u1", p2)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Items) != 1 || c.Items[0].ProductID != "P1" {
		t.Fatalf("after remove: %+v", c.Items)
	}
	checkAggregates(t, c)
}

func TestCartStore_RemoveOnlyLine(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())
	c, _ := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P3", Quantity: 3})

	c, err := s.Remove("u1", c.Items[0].ID)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(c.Items) != 0 || c.ItemCount != 0 || !c.Total.IsZero() {
		t.Fatalf("expected empty cart, got %+v", c)
	}
}

func TestCartStore_ClearThenSummary(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())
	_, _ = s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 1})
	_, _ = s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P2", Quantity: 2, Color: "red"})

	c := s.Clear("u1")
	if len(c.Items) != 0 {
		t.Fatalf("items after clear = %d", len(c.Items))
	}
	sum := s.Summary("u1")
	if sum.ItemCount != 0 || sum.DistinctLineCount != 0 || !sum.Total.IsZero() {
		t.Fatalf("summary = %+v, want zeros", sum)
	}
}

func TestCartStore_IdentitiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())
	c, _ := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 1})

	if _, err := s.Remove("u2", c.Items[0].ID); !errors.Is(err, cartdom.ErrItemNotFound) {
		t.Fatalf("expected ErrItemNotFound across identities, got %v", err)
	}
	if got := s.Summary("u1"); got.ItemCount != 1 {
		t.Fatalf("u1 summary = %+v", got)
	}
}

func TestCartStore_ObserverSeesErrorKinds(t *testing.T) {
	obs := newRecordingObserver()
	s := newTestStore(newFakeCatalog(), WithObserver(obs))
	ctx := context.Background()

	_, _ = s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 0})
	_, _ = s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "ZZ", Quantity: 1})
	_, _ = s.Remove("u1", "nope")

	obs.mu.Lock()
	defer obs.mu.Unlock()
	for _, kind := range []string{cartdom.KindInvalidInput, cartdom.KindProductNotFound, cartdom.KindItemNotFound} {
		if obs.kinds[kind] != 1 {
			t.Fatalf("kind %s observed %d times, want 1 (all=%v)", kind, obs.kinds[kind], obs.kinds)
		}
	}
}

func TestCartStore_ConcurrentAddsSameIdentity(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())

	const workers = 32
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P2", Quantity: 1}); err != nil {
				t.Errorf("add: %v", err)
			}
		}()
	}
	wg.Wait()

	c := s.GetOrCreate("u1")
	if len(c.Items) != 1 || c.Items[0].Quantity != workers {
		t.Fatalf("after concurrent adds: %+v", c.Items)
	}
	checkAggregates(t, c)
}

func TestCartStore_ConcurrentIdentities(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		identity := fmt.Sprintf("user-%d", i)
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 5; j++ {
				_, _ = s.Add(ctx, AddItemInput{Identity: identity, ProductID: "P1", Quantity: 1})
				_ = s.GetOrCreate(identity)
			}
		}()
	}
	wg.Wait()

	if s.CartCount() != 16 {
		t.Fatalf("CartCount = %d, want 16", s.CartCount())
	}
	for i := 0; i < 16; i++ {
		if got := s.Summary(fmt.Sprintf("user-%d", i)); got.ItemCount != 5 || got.DistinctLineCount != 1 {
			t.Fatalf("user-%d summary = %+v", i, got)
		}
	}
}

func TestCartStore_ReturnedCartIsDetached(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(newFakeCatalog())
	c, _ := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: 1})

	c.Items[0].Quantity = 1000
	if got := s.Summary("u1"); got.ItemCount != 1 {
		t.Fatalf("store mutated through returned cart: %+v", got)
	}
}

func TestCartStore_AddQuantityOverflow(t *testing.T) {
	ctx := context.Background()
	obs := newRecordingObserver()
	s := newTestStore(newFakeCatalog(), WithObserver(obs))

	c, err := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P1", Quantity: math.MaxInt})
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	itemID := c.Items[0].ID

	for _, in := range []AddItemInput{
		{Identity: "u1", ProductID: "P1", Quantity: 1},
		{Identity: "u1", ProductID: "P2", Quantity: 5},
	} {
		if _, err := s.Add(ctx, in); !errors.Is(err, cartdom.ErrInvalidInput) {
			t.Fatalf("add %s x%d: expected ErrInvalidInput, got %v", in.ProductID, in.Quantity, err)
		}
	}

	c = s.GetOrCreate("u1")
	if len(c.Items) != 1 || c.Items[0].Quantity != math.MaxInt || c.ItemCount != math.MaxInt || c.Total.IsNegative() {
		t.Fatalf("cart changed after overflowing add: %+v", c)
	}
	checkAggregates(t, c)

	if _, err := s.UpdateQuantity("u1", itemID, 1); err != nil {
		t.Fatalf("update down: %v", err)
	}
	if _, err := s.Add(ctx, AddItemInput{Identity: "u1", ProductID: "P2", Quantity: 5}); err != nil {
		t.Fatalf("add after shrinking: %v", err)
	}
	if got := s.Summary("u1"); got.ItemCount != 6 || got.DistinctLineCount != 2 {
		t.Fatalf("summary = %+v, want 6 items / 2 lines", got)
	}

	obs.mu.Lock()
	defer obs.mu.Unlock()
	if obs.kinds[cartdom.KindInvalidInput] != 2 {
		t.Fatalf("invalid_input observed %d times, want 2", obs.kinds[cartdom.KindInvalidInput])
	}
}
