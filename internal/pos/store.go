package pos

import "sync"

// Store holds the active cart per terminal in memory. Held carts live in
// Redis; active carts do not survive a restart.
type Store struct {
	mu    sync.RWMutex
	carts map[string]*Cart
}

func NewStore() *Store {
	return &Store{carts: make(map[string]*Cart)}
}

// Get returns the terminal's cart, creating an empty one on first use.
func (s *Store) Get(terminalID string) *Cart {
	s.mu.RLock()
	cart, ok := s.carts[terminalID]
	s.mu.RUnlock()
	if ok {
		return cart
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if cart, ok := s.carts[terminalID]; ok {
		return cart
	}
	cart = newCart(terminalID)
	s.carts[terminalID] = cart
	return cart
}
