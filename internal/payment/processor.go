package payment

import (
	"errors"
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kieracarman/tablepos/internal/menu"
	"github.com/kieracarman/tablepos/internal/metrics"
	"github.com/kieracarman/tablepos/internal/models"
	"github.com/kieracarman/tablepos/internal/orders"
)

// Method is one way of paying for an order
type Method interface {
	Process(order *models.Order, input models.PaymentInput) models.PaymentResult
	DisplayName() string
}

type cashMethod struct{}

func (cashMethod) DisplayName() string { return "Cash" }

func (cashMethod) Process(order *models.Order, input models.PaymentInput) models.PaymentResult {
	if input.Type != models.Cash {
		return models.PaymentFailed("Invalid payment type for cash payment")
	}
	if input.CashGiven.LessThan(order.Total) {
		return models.PaymentFailed(fmt.Sprintf("Insufficient cash. Total: $%s, Given: $%s",
			order.Total.StringFixed(2), input.CashGiven.StringFixed(2)))
	}
	return models.PaymentSucceeded("Cash payment successful", input.CashGiven.Sub(order.Total))
}

var cardPattern = regexp.MustCompile(`^\d{4}-\d{4}-\d{4}-\d{4}$`)

type cardMethod struct{}

func (cardMethod) DisplayName() string { return "Card" }

func (cardMethod) Process(_ *models.Order, input models.PaymentInput) models.PaymentResult {
	if input.Type != models.Card {
		return models.PaymentFailed("Invalid payment type for card payment")
	}
	if !cardPattern.MatchString(input.CardNumber) {
		return models.PaymentFailed("Invalid card number format. Expected: ####-####-####-####")
	}
	return models.PaymentSucceeded("Card payment successful", decimal.Zero)
}

// methods is the closed set of supported payment types
var methods = map[models.PaymentType]Method{
	models.Cash: cashMethod{},
	models.Card: cardMethod{},
}

// OrderUpdater applies a locked, all-or-nothing change to an order
type OrderUpdater interface {
	Update(id string, fn func(*models.Order) error) (*models.Order, error)
}

// StockCommitter takes stock for a paid order exactly once
type StockCommitter interface {
	Commit(order *models.Order) error
	Revert(orderID string) error
}

// errDeclined marks a payment the method refused; the result carries why
var errDeclined = errors.New("payment declined")

// Processor takes payments for orders and commits them
type Processor struct {
	orders  OrderUpdater
	stock   StockCommitter
	metrics *metrics.Metrics
	logger  *zap.SugaredLogger
	now     func() time.Time
}

func NewProcessor(orders OrderUpdater, stock StockCommitter, m *metrics.Metrics, logger *zap.SugaredLogger) *Processor {
	return &Processor{
		orders:  orders,
		stock:   stock,
		metrics: m,
		logger:  logger,
		now:     time.Now,
	}
}

// Supported reports whether a payment type has a method
func (p *Processor) Supported(t models.PaymentType) bool {
	_, ok := methods[t]
	return ok
}

// Methods returns the display names of the supported methods in
// PaymentTypes order
func (p *Processor) Methods() []string {
	names := make([]string, 0, len(methods))
	for _, t := range models.PaymentTypes() {
		if m, ok := methods[t]; ok {
			names = append(names, m.DisplayName())
		}
	}
	return names
}

// ProcessPayment pays for an order. On success the catalog stock for every
// line is committed and the order becomes Paid, both under the order's
// lock. On failure nothing changes and the order can be paid again
func (p *Processor) ProcessPayment(orderID string, input models.PaymentInput) models.PaymentResult {
	method, ok := methods[input.Type]
	if !ok {
		p.metrics.ObservePayment(metrics.MethodUnsupported, false)
		return models.PaymentFailed("Unsupported payment method: " + input.Type.String())
	}

	var result models.PaymentResult
	_, err := p.orders.Update(orderID, func(o *models.Order) error {
		if !o.IsDraft() {
			return models.NewFailedPrecondition(models.ErrMsgOrderPaid)
		}
		if o.LineCount() == 0 {
			return models.NewFailedPrecondition(models.ErrMsgOrderEmpty)
		}

		result = method.Process(o, input)
		if !result.Success {
			return errDeclined
		}

		err := p.stock.Commit(o)
		p.metrics.ObserveStockCommit(err)
		if err != nil {
			return err
		}
		if err := o.MarkPaid(p.now()); err != nil {
			if rerr := p.stock.Revert(o.ID); rerr != nil {
				p.logger.Errorw("stock revert failed", "order_id", o.ID, "error", rerr)
			}
			return err
		}
		return nil
	})

	if err != nil {
		result = failure(err, result)
		p.metrics.ObservePayment(method.DisplayName(), false)
		p.logger.Warnw("payment failed", "order_id", orderID, "method", method.DisplayName(), "reason", result.Message)
		return result
	}

	p.metrics.ObservePayment(method.DisplayName(), true)
	p.logger.Infow("payment succeeded", "order_id", orderID, "method", method.DisplayName(), "change", result.Change.String())
	return result
}

func failure(err error, declined models.PaymentResult) models.PaymentResult {
	var stockErr *menu.StockError
	var coreErr *models.Error

	switch {
	case errors.Is(err, errDeclined):
		return declined
	case orders.IsNotFound(err):
		return models.PaymentFailed(models.ErrMsgOrderNotFound)
	case errors.As(err, &stockErr):
		if stockErr.Missing {
			return models.PaymentFailed(models.ErrMsgItemNotFound)
		}
		return models.PaymentFailed(models.ErrMsgInsufficientStock + " for " + stockErr.ItemName)
	case errors.As(err, &coreErr):
		return models.PaymentFailed(coreErr.Message)
	default:
		return models.PaymentFailed("Payment failed: " + err.Error())
	}
}
