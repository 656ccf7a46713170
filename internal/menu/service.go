package menu

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kieracarman/tablepos/internal/models"
)

// Service manages the menu on top of the catalog store
type Service struct {
	store  *Store
	logger *zap.SugaredLogger
	now    func() time.Time
}

// NewService creates a menu service
func NewService(store *Store, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// Store exposes the underlying catalog
func (s *Service) Store() *Store {
	return s.store
}

func (s *Service) AllItems() []models.MenuItem {
	return s.store.List()
}

func (s *Service) AvailableItems() []models.MenuItem {
	return s.store.ListAvailable()
}

func (s *Service) ItemsByType(t models.ItemType) []models.MenuItem {
	return s.store.ListByType(t)
}

func (s *Service) Item(id string) (models.MenuItem, bool) {
	return s.store.Get(id)
}

// HasStock reports whether qty units of the item can be sold right now
func (s *Service) HasStock(id string, qty int) bool {
	item, ok := s.store.Get(id)
	return ok && item.HasStock(qty)
}

// CreateFoodItem validates and stores a new food item
func (s *Service) CreateFoodItem(name string, price decimal.Decimal, stock int, cuisine string, vegetarian bool) (models.MenuItem, error) {
	if err := validateItem(name, price, stock); err != nil {
		return models.MenuItem{}, err
	}
	item := models.NewFoodItem(strings.TrimSpace(name), price, stock, cuisine, vegetarian)
	item.UpdatedAt = s.now()
	s.store.Put(item)

	s.logger.Infow("menu item created", "item_id", item.ID, "name", item.Name, "type", item.Type.String())
	return item, nil
}

// CreateDrinkItem validates and stores a new drink item
func (s *Service) CreateDrinkItem(name string, price decimal.Decimal, stock int, alcoholic bool, temperature string) (models.MenuItem, error) {
	if err := validateItem(name, price, stock); err != nil {
		return models.MenuItem{}, err
	}
	item := models.NewDrinkItem(strings.TrimSpace(name), price, stock, alcoholic, temperature)
	item.UpdatedAt = s.now()
	s.store.Put(item)

	s.logger.Infow("menu item created", "item_id", item.ID, "name", item.Name, "type", item.Type.String())
	return item, nil
}

// UpdateItem edits name, price and stock. Lines already on orders keep
// the price they were added with
func (s *Service) UpdateItem(id, name string, price decimal.Decimal, stock int) (models.MenuItem, error) {
	if err := validateItem(name, price, stock); err != nil {
		return models.MenuItem{}, err
	}
	item, ok, err := s.store.Update(id, func(m *models.MenuItem) error {
		m.Name = strings.TrimSpace(name)
		m.Price = price
		m.Stock = stock
		m.UpdatedAt = s.now()
		return nil
	})
	if err != nil {
		return models.MenuItem{}, err
	}
	if !ok {
		return models.MenuItem{}, models.NewNotFound(models.ErrMsgItemNotFound)
	}

	s.logger.Infow("menu item updated", "item_id", id, "price", price.String(), "stock", stock)
	return item, nil
}

// DeleteItem removes an item from the catalog
func (s *Service) DeleteItem(id string) bool {
	removed := s.store.Remove(id)
	if removed {
		s.logger.Infow("menu item deleted", "item_id", id)
	}
	return removed
}

func validateItem(name string, price decimal.Decimal, stock int) error {
	if strings.TrimSpace(name) == "" {
		return models.NewInvalidArgument(models.ErrMsgNameRequired)
	}
	if price.IsNegative() {
		return models.NewInvalidArgument(models.ErrMsgPriceNonNegative)
	}
	if stock < 0 {
		return models.NewInvalidArgument(models.ErrMsgStockNonNegative)
	}
	return nil
}
