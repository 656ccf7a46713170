package inventory

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/kieracarman/tablepos/internal/models"
)

// ErrAlreadyCommitted is returned when stock was already taken for an order
var ErrAlreadyCommitted = errors.New("stock already committed for order")

// ErrNotCommitted is returned when reverting an order with no commit
var ErrNotCommitted = errors.New("no stock commit for order")

// Stock is the part of the catalog the ledger writes to
type Stock interface {
	DecreaseStockBatch(quantities map[string]int) error
	IncreaseStockBatch(quantities map[string]int) error
}

// Movement is one stock decrement caused by a paid order
type Movement struct {
	OrderID  string
	ItemID   string
	ItemName string
	Quantity int
	At       time.Time
}

// Ledger is the single place where orders take stock out of the catalog.
// Each order commits at most once
type Ledger struct {
	stock     Stock
	logger    *zap.SugaredLogger
	now       func() time.Time
	mu        sync.Mutex
	committed map[string][]Movement // idempotency key -> movements
	journal   []Movement
}

func NewLedger(stock Stock, logger *zap.SugaredLogger) *Ledger {
	return &Ledger{
		stock:     stock,
		logger:    logger,
		now:       time.Now,
		committed: make(map[string][]Movement),
	}
}

func commitKey(orderID string) string {
	return orderID + ":paid"
}

// Commit takes the stock for every line of the order in one atomic batch
func (l *Ledger) Commit(order *models.Order) error {
	key := commitKey(order.ID)

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, done := l.committed[key]; done {
		return ErrAlreadyCommitted
	}

	if err := l.stock.DecreaseStockBatch(order.Quantities()); err != nil {
		l.logger.Warnw("stock commit failed", "order_id", order.ID, "error", err)
		return fmt.Errorf("commit stock for order %s: %w", order.ID, err)
	}

	at := l.now()
	lines := order.Lines()
	moves := make([]Movement, 0, len(lines))
	for _, line := range lines {
		moves = append(moves, Movement{
			OrderID:  order.ID,
			ItemID:   line.ItemID,
			ItemName: line.ItemName,
			Quantity: line.Quantity,
			At:       at,
		})
	}
	l.committed[key] = moves
	l.journal = append(l.journal, moves...)

	l.logger.Infow("stock committed", "order_id", order.ID, "lines", len(moves))
	return nil
}

// Revert gives back the stock of a commit whose paid transition failed
func (l *Ledger) Revert(orderID string) error {
	key := commitKey(orderID)

	l.mu.Lock()
	defer l.mu.Unlock()

	moves, ok := l.committed[key]
	if !ok {
		return ErrNotCommitted
	}

	quantities := make(map[string]int, len(moves))
	for _, m := range moves {
		quantities[m.ItemID] += m.Quantity
	}
	if err := l.stock.IncreaseStockBatch(quantities); err != nil {
		return fmt.Errorf("revert stock for order %s: %w", orderID, err)
	}

	delete(l.committed, key)
	kept := l.journal[:0]
	for _, m := range l.journal {
		if m.OrderID != orderID {
			kept = append(kept, m)
		}
	}
	l.journal = kept

	l.logger.Warnw("stock commit reverted", "order_id", orderID)
	return nil
}

// Committed reports whether stock was taken for the order
func (l *Ledger) Committed(orderID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.committed[commitKey(orderID)]
	return ok
}

// Movements returns the journal, oldest first
func (l *Ledger) Movements() []Movement {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Movement, len(l.journal))
	copy(out, l.journal)
	return out
}
