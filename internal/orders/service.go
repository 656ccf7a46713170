package orders

import (
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kieracarman/tablepos/internal/metrics"
	"github.com/kieracarman/tablepos/internal/models"
)

// Catalog is the read side of the menu the order service needs
type Catalog interface {
	Get(id string) (models.MenuItem, bool)
}

// Service drives the order lifecycle up to, but not including, payment
type Service struct {
	store   *Store
	catalog Catalog
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewService(store *Store, catalog Catalog, m *metrics.Metrics, logger *zap.SugaredLogger) *Service {
	return &Service{
		store:   store,
		catalog: catalog,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// CreateOrder starts a Draft order for a table
func (s *Service) CreateOrder(tableNo int) (*models.Order, error) {
	order, err := models.NewOrder(tableNo, s.now())
	s.metrics.ObserveOrderOp("create", err)
	if err != nil {
		return nil, err
	}
	s.store.Put(order)

	s.logger.Infow("order created", "order_id", order.ID, "table_no", tableNo)
	return order.Clone(), nil
}

func (s *Service) GetOrder(id string) (*models.Order, bool) {
	return s.store.Get(id)
}

func (s *Service) OrdersByTable(tableNo int) []*models.Order {
	return s.store.ListByTable(tableNo)
}

func (s *Service) DraftOrders() []*models.Order {
	return s.store.ListByStatus(models.Draft)
}

func (s *Service) PaidOrders() []*models.Order {
	return s.store.ListByStatus(models.Paid)
}

// AddItem adds qty units of a catalog item. Stock is checked, not taken;
// it is committed when the order is paid
func (s *Service) AddItem(orderID, itemID string, qty int) (*models.Order, error) {
	item, ok := s.catalog.Get(itemID)
	if !ok {
		err := models.NewNotFound(models.ErrMsgItemNotFound)
		s.metrics.ObserveOrderOp("add_item", err)
		return nil, err
	}

	order, err := s.store.Update(orderID, func(o *models.Order) error {
		return o.AddLine(item, qty)
	})
	s.metrics.ObserveOrderOp("add_item", err)
	if err != nil {
		s.logger.Warnw("add item rejected", "order_id", orderID, "item_id", itemID, "quantity", qty, "error", err)
		return order, err
	}

	s.logger.Infow("item added", "order_id", orderID, "item_id", itemID, "quantity", qty, "total", order.Total.String())
	return order, nil
}

// RemoveItem drops an item's line from the order
func (s *Service) RemoveItem(orderID, itemID string) (*models.Order, error) {
	order, err := s.store.Update(orderID, func(o *models.Order) error {
		return o.RemoveLine(itemID)
	})
	s.metrics.ObserveOrderOp("remove_item", err)
	if err != nil {
		s.logger.Warnw("remove item rejected", "order_id", orderID, "item_id", itemID, "error", err)
		return order, err
	}

	s.logger.Infow("item removed", "order_id", orderID, "item_id", itemID, "total", order.Total.String())
	return order, nil
}

// UpdateItemQuantity sets a line's quantity after checking current stock
func (s *Service) UpdateItemQuantity(orderID, itemID string, qty int) (*models.Order, error) {
	item, ok := s.catalog.Get(itemID)
	if !ok {
		err := models.NewNotFound(models.ErrMsgItemNotFound)
		s.metrics.ObserveOrderOp("update_quantity", err)
		return nil, err
	}

	order, err := s.store.Update(orderID, func(o *models.Order) error {
		return o.UpdateLineQuantity(item, qty)
	})
	s.metrics.ObserveOrderOp("update_quantity", err)
	if err != nil {
		s.logger.Warnw("quantity update rejected", "order_id", orderID, "item_id", itemID, "quantity", qty, "error", err)
		return order, err
	}

	s.logger.Infow("quantity updated", "order_id", orderID, "item_id", itemID, "quantity", qty, "total", order.Total.String())
	return order, nil
}

// ApplyDiscount sets a percentage discount on the order
func (s *Service) ApplyDiscount(orderID string, pct decimal.Decimal) (*models.Order, error) {
	order, err := s.store.Update(orderID, func(o *models.Order) error {
		return o.ApplyDiscount(pct)
	})
	s.metrics.ObserveOrderOp("apply_discount", err)
	if err != nil {
		s.logger.Warnw("discount rejected", "order_id", orderID, "percentage", pct.String(), "error", err)
		return order, err
	}

	s.logger.Infow("discount applied", "order_id", orderID, "percentage", pct.String(), "discount", order.Discount.String())
	return order, nil
}

// DeleteOrder abandons a Draft order. Paid orders are kept
func (s *Service) DeleteOrder(orderID string) error {
	_, err := s.store.RemoveIf(orderID, func(o *models.Order) error {
		if !o.IsDraft() {
			return models.NewFailedPrecondition(models.ErrMsgPaidOrderNotDeleted)
		}
		return nil
	})
	s.metrics.ObserveOrderOp("delete", err)
	if err != nil {
		s.logger.Warnw("delete rejected", "order_id", orderID, "error", err)
		return err
	}

	s.logger.Infow("order deleted", "order_id", orderID)
	return nil
}
