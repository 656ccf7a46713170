package orders

import (
	"errors"
	"sort"
	"sync"

	"github.com/kieracarman/tablepos/internal/models"
)

// ErrOrderNotFound is returned by Update and RemoveIf for unknown ids
var ErrOrderNotFound = models.NewNotFound(models.ErrMsgOrderNotFound)

type entry struct {
	mu      sync.Mutex
	order   *models.Order
	removed bool
}

// Store keeps orders in memory. Mutations to one order are serialized by
// that order's lock and applied copy-on-write, so readers only ever see
// complete orders
type Store struct {
	mu     sync.RWMutex
	orders map[string]*entry
}

func NewStore() *Store {
	return &Store{
		orders: make(map[string]*entry),
	}
}

// Put inserts or replaces an order
func (s *Store) Put(order *models.Order) {
	c := order.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.orders[c.ID]; ok {
		e.mu.Lock()
		e.order = c
		e.mu.Unlock()
		return
	}
	s.orders[c.ID] = &entry{order: c}
}

// Get returns a snapshot of the order
func (s *Store) Get(id string) (*models.Order, bool) {
	e := s.lookup(id)
	if e == nil {
		return nil, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, false
	}
	return e.order.Clone(), true
}

// Update runs fn against a copy of the order while holding its lock. The
// copy replaces the stored order only when fn returns nil
func (s *Store) Update(id string, fn func(*models.Order) error) (*models.Order, error) {
	e := s.lookup(id)
	if e == nil {
		return nil, ErrOrderNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return nil, ErrOrderNotFound
	}

	draft := e.order.Clone()
	if err := fn(draft); err != nil {
		return e.order.Clone(), err
	}
	e.order = draft
	return draft.Clone(), nil
}

// Remove deletes an order whatever its status
func (s *Store) Remove(id string) bool {
	removed, err := s.RemoveIf(id, nil)
	return removed && err == nil
}

// RemoveIf deletes an order if guard accepts it. The guard runs under the
// order's lock
func (s *Store) RemoveIf(id string, guard func(*models.Order) error) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.orders[id]
	if !ok {
		return false, ErrOrderNotFound
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if guard != nil {
		if err := guard(e.order.Clone()); err != nil {
			return false, err
		}
	}
	e.removed = true
	delete(s.orders, id)
	return true, nil
}

// List returns every order, oldest first
func (s *Store) List() []*models.Order {
	return s.filter(func(*models.Order) bool { return true })
}

func (s *Store) ListByTable(tableNo int) []*models.Order {
	return s.filter(func(o *models.Order) bool { return o.TableNo == tableNo })
}

func (s *Store) ListByStatus(status models.OrderStatus) []*models.Order {
	return s.filter(func(o *models.Order) bool { return o.Status == status })
}

func (s *Store) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.orders[id]
}

func (s *Store) filter(keep func(*models.Order) bool) []*models.Order {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.orders))
	for _, e := range s.orders {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	out := make([]*models.Order, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed && keep(e.order) {
			out = append(out, e.order.Clone())
		}
		e.mu.Unlock()
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out
}

// IsNotFound reports whether err means the order does not exist
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound)
}
