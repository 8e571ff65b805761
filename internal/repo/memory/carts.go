package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/naturlife/storefront/internal/domain/cart"
)

type CartStore struct {
	mu    sync.Mutex
	carts map[string]map[string]int
}

func NewCartStore() *CartStore {
	return &CartStore{carts: make(map[string]map[string]int)}
}

func (s *CartStore) Get(_ context.Context, userID string) (cart.Cart, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := cart.Cart{UserID: userID, Lines: make([]cart.Line, 0)}
	for id, qty := range s.carts[userID] {
		c.Lines = append(c.Lines, cart.Line{ProductID: id, Quantity: qty})
	}
	sort.Slice(c.Lines, func(i, j int) bool { return c.Lines[i].ProductID < c.Lines[j].ProductID })
	return c, nil
}

func (s *CartStore) SetQuantity(_ context.Context, userID, productID string, qty int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	lines, ok := s.carts[userID]
	if !ok {
		lines = make(map[string]int)
		s.carts[userID] = lines
	}
	if qty <= 0 {
		delete(lines, productID)
		return nil
	}
	lines[productID] = qty
	return nil
}

func (s *CartStore) Clear(_ context.Context, userID string) error {
	s.mu.Lock()
	delete(s.carts, userID)
	s.mu.Unlock()
	return nil
}
