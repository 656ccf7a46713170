package menu

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kieracarman/tablepos/internal/models"
)

type entry struct {
	mu      sync.Mutex
	item    models.MenuItem
	removed bool
}

// Store is the in-memory catalog. Each item has its own lock so stock and
// availability are always read and written together
type Store struct {
	mu    sync.RWMutex
	items map[string]*entry
}

// NewStore creates an empty catalog
func NewStore() *Store {
	return &Store{
		items: make(map[string]*entry),
	}
}

// Put inserts or replaces an item
func (s *Store) Put(item models.MenuItem) {
	item = item.Clone()

	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.items[item.ID]; ok {
		e.mu.Lock()
		e.item = item
		e.mu.Unlock()
		return
	}
	s.items[item.ID] = &entry{item: item}
}

// Get returns a copy of the item
func (s *Store) Get(id string) (models.MenuItem, bool) {
	e := s.lookup(id)
	if e == nil {
		return models.MenuItem{}, false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return models.MenuItem{}, false
	}
	return e.item.Clone(), true
}

// List returns every item sorted by name
func (s *Store) List() []models.MenuItem {
	return s.filter(func(models.MenuItem) bool { return true })
}

// ListAvailable returns the items with stock left
func (s *Store) ListAvailable() []models.MenuItem {
	return s.filter(models.MenuItem.Available)
}

// ListByType returns the items of one type
func (s *Store) ListByType(t models.ItemType) []models.MenuItem {
	return s.filter(func(m models.MenuItem) bool { return m.Type == t })
}

// Update edits an item in place under its lock. The edit is kept only if fn
// returns nil; the identifier cannot be changed
func (s *Store) Update(id string, fn func(*models.MenuItem) error) (models.MenuItem, bool, error) {
	e := s.lookup(id)
	if e == nil {
		return models.MenuItem{}, false, nil
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return models.MenuItem{}, false, nil
	}
	draft := e.item.Clone()
	if err := fn(&draft); err != nil {
		return e.item.Clone(), true, err
	}
	draft.ID = e.item.ID
	e.item = draft
	return draft.Clone(), true, nil
}

// Remove deletes an item
func (s *Store) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.items[id]
	if !ok {
		return false
	}
	e.mu.Lock()
	e.removed = true
	e.mu.Unlock()
	delete(s.items, id)
	return true
}

// DecreaseStock takes qty units out of stock. It only mutates when qty > 0
// and enough stock is left
func (s *Store) DecreaseStock(id string, qty int) bool {
	e := s.lookup(id)
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed || !e.item.HasStock(qty) {
		return false
	}
	e.item.Stock -= qty
	return true
}

// IncreaseStock returns qty units to stock. Non-positive quantities are
// ignored
func (s *Store) IncreaseStock(id string, qty int) bool {
	if qty <= 0 {
		return false
	}
	e := s.lookup(id)
	if e == nil {
		return false
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.removed {
		return false
	}
	e.item.Stock += qty
	return true
}

// StockError reports the item that blocked a batch decrement
type StockError struct {
	ItemID    string
	ItemName  string
	Requested int
	InStock   int
	Missing   bool
}

func (e *StockError) Error() string {
	if e.Missing {
		return fmt.Sprintf("menu item %s not found", e.ItemID)
	}
	return fmt.Sprintf("insufficient stock for %s: %d requested, %d in stock", e.ItemName, e.Requested, e.InStock)
}

// DecreaseStockBatch decrements several items at once. Items are locked in
// sorted id order, every quantity is validated, and only then is stock
// changed, so either all items are decremented or none is
func (s *Store) DecreaseStockBatch(quantities map[string]int) error {
	ids, entries, err := s.lockAll(quantities)
	if err != nil {
		return err
	}
	defer unlockAll(entries)

	for i, id := range ids {
		e := entries[i]
		qty := quantities[id]
		if e.removed {
			return &StockError{ItemID: id, Missing: true}
		}
		if !e.item.HasStock(qty) {
			return &StockError{ItemID: id, ItemName: e.item.Name, Requested: qty, InStock: e.item.Stock}
		}
	}

	for i, id := range ids {
		entries[i].item.Stock -= quantities[id]
	}
	return nil
}

// IncreaseStockBatch returns stock for several items at once
func (s *Store) IncreaseStockBatch(quantities map[string]int) error {
	ids, entries, err := s.lockAll(quantities)
	if err != nil {
		return err
	}
	defer unlockAll(entries)

	for i, id := range ids {
		if qty := quantities[id]; qty > 0 && !entries[i].removed {
			entries[i].item.Stock += qty
		}
	}
	return nil
}

func (s *Store) lockAll(quantities map[string]int) ([]string, []*entry, error) {
	ids := make([]string, 0, len(quantities))
	for id := range quantities {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	s.mu.RLock()
	entries := make([]*entry, len(ids))
	for i, id := range ids {
		e, ok := s.items[id]
		if !ok {
			s.mu.RUnlock()
			return nil, nil, &StockError{ItemID: id, Missing: true}
		}
		entries[i] = e
	}
	s.mu.RUnlock()

	for _, e := range entries {
		e.mu.Lock()
	}
	return ids, entries, nil
}

func unlockAll(entries []*entry) {
	for i := len(entries) - 1; i >= 0; i-- {
		entries[i].mu.Unlock()
	}
}

func (s *Store) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.items[id]
}

func (s *Store) filter(keep func(models.MenuItem) bool) []models.MenuItem {
	s.mu.RLock()
	entries := make([]*entry, 0, len(s.items))
	for _, e := range s.items {
		entries = append(entries, e)
	}
	s.mu.RUnlock()

	items := make([]models.MenuItem, 0, len(entries))
	for _, e := range entries {
		e.mu.Lock()
		if !e.removed && keep(e.item) {
			items = append(items, e.item.Clone())
		}
		e.mu.Unlock()
	}

	sort.Slice(items, func(i, j int) bool {
		return strings.ToLower(items[i].Name) < strings.ToLower(items[j].Name)
	})
	return items
}
