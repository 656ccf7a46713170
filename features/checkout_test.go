package features

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kieracarman/tablepos/internal/inventory"
	"github.com/kieracarman/tablepos/internal/menu"
	"github.com/kieracarman/tablepos/internal/metrics"
	"github.com/kieracarman/tablepos/internal/models"
	"github.com/kieracarman/tablepos/internal/orders"
	"github.com/kieracarman/tablepos/internal/payment"
)

type checkoutTestContext struct {
	menu     *menu.Service
	orders   *orders.Service
	payments *payment.Processor
	items    map[string]string // name -> item id
	order    *models.Order
	result   models.PaymentResult
	err      error
}

func (c *checkoutTestContext) reset() {
	logger := zap.NewNop().Sugar()
	m := metrics.New(prometheus.NewRegistry())

	catalog := menu.NewStore()
	store := orders.NewStore()
	c.menu = menu.NewService(catalog, logger)
	c.orders = orders.NewService(store, catalog, m, logger)
	c.payments = payment.NewProcessor(store, inventory.NewLedger(catalog, logger), m, logger)
	c.items = make(map[string]string)
	c.order = nil
	c.result = models.PaymentResult{}
	c.err = nil
}

func (c *checkoutTestContext) itemID(name string) (string, error) {
	id, ok := c.items[name]
	if !ok {
		return "", fmt.Errorf("no catalog item named %q", name)
	}
	return id, nil
}

func (c *checkoutTestContext) refresh() error {
	o, ok := c.orders.GetOrder(c.order.ID)
	if !ok {
		return errors.New("order disappeared")
	}
	c.order = o
	return nil
}

func (c *checkoutTestContext) theCatalogHasPricedWithStock(name, price string, stock int) error {
	p, err := decimal.NewFromString(price)
	if err != nil {
		return err
	}
	item, err := c.menu.CreateFoodItem(name, p, stock, "House", false)
	if err != nil {
		return err
	}
	c.items[name] = item.ID
	return nil
}

func (c *checkoutTestContext) anOrderForTable(table int) error {
	o, err := c.orders.CreateOrder(table)
	if err != nil {
		return err
	}
	c.order = o
	return nil
}

func (c *checkoutTestContext) iAdd(qty int, name string) error {
	id, err := c.itemID(name)
	if err != nil {
		return err
	}
	_, c.err = c.orders.AddItem(c.order.ID, id, qty)
	return c.refresh()
}

func (c *checkoutTestContext) iRemove(name string) error {
	id, err := c.itemID(name)
	if err != nil {
		return err
	}
	_, c.err = c.orders.RemoveItem(c.order.ID, id)
	return c.refresh()
}

func (c *checkoutTestContext) iApplyAPercentDiscount(pct int) error {
	_, c.err = c.orders.ApplyDiscount(c.order.ID, decimal.NewFromInt(int64(pct)))
	return c.refresh()
}

func (c *checkoutTestContext) iPayCash(amount string) error {
	given, err := decimal.NewFromString(amount)
	if err != nil {
		return err
	}
	c.result = c.payments.ProcessPayment(c.order.ID, models.CashPayment(given))
	return c.refresh()
}

func (c *checkoutTestContext) iPayByCard(number string) error {
	c.result = c.payments.ProcessPayment(c.order.ID, models.CardPayment(number))
	return c.refresh()
}

func (c *checkoutTestContext) anotherTerminalSells(qty int, name string) error {
	id, err := c.itemID(name)
	if err != nil {
		return err
	}
	other, err := c.orders.CreateOrder(9)
	if err != nil {
		return err
	}
	if _, err := c.orders.AddItem(other.ID, id, qty); err != nil {
		return err
	}
	if res := c.payments.ProcessPayment(other.ID, models.CardPayment("4242-4242-4242-4242")); !res.Success {
		return fmt.Errorf("other terminal payment failed: %s", res.Message)
	}
	return nil
}

func expectAmount(field, want string, got decimal.Decimal) error {
	w, err := decimal.NewFromString(want)
	if err != nil {
		return err
	}
	if !w.Equal(got) {
		return fmt.Errorf("expected %s %s, got %s", field, want, got)
	}
	return nil
}

func (c *checkoutTestContext) theSubtotalIs(want string) error {
	return expectAmount("subtotal", want, c.order.Subtotal)
}

func (c *checkoutTestContext) theTaxIs(want string) error {
	return expectAmount("tax", want, c.order.Tax)
}

func (c *checkoutTestContext) theDiscountIs(want string) error {
	return expectAmount("discount", want, c.order.Discount)
}

func (c *checkoutTestContext) theTotalIs(want string) error {
	if err := expectAmount("total", want, c.order.Total); err != nil {
		return err
	}
	if !c.order.Total.Equal(c.order.Subtotal.Add(c.order.Tax).Sub(c.order.Discount)) {
		return fmt.Errorf("total %s is not subtotal + tax - discount", c.order.Total)
	}
	return nil
}

func (c *checkoutTestContext) thePaymentSucceeds() error {
	if !c.result.Success {
		return fmt.Errorf("expected payment to succeed, got %q", c.result.Message)
	}
	return nil
}

func (c *checkoutTestContext) thePaymentFailsWith(substring string) error {
	if c.result.Success {
		return errors.New("expected payment to fail but it succeeded")
	}
	if !strings.Contains(strings.ToLower(c.result.Message), strings.ToLower(substring)) {
		return fmt.Errorf("expected payment message to contain %q, got %q", substring, c.result.Message)
	}
	return nil
}

func (c *checkoutTestContext) theChangeIs(want string) error {
	return expectAmount("change", want, c.result.Change)
}

func (c *checkoutTestContext) theOrderStatusIs(status string) error {
	if c.order.Status.String() != status {
		return fmt.Errorf("expected status %s, got %s", status, c.order.Status)
	}
	return nil
}

func (c *checkoutTestContext) theStockOfIs(name string, want int) error {
	id, err := c.itemID(name)
	if err != nil {
		return err
	}
	item, ok := c.menu.Item(id)
	if !ok {
		return fmt.Errorf("item %q not in catalog", name)
	}
	if item.Stock != want {
		return fmt.Errorf("expected stock %d for %s, got %d", want, name, item.Stock)
	}
	return nil
}

func (c *checkoutTestContext) theOperationFailsWithStatus(statusName string) error {
	if c.err == nil {
		return errors.New("expected operation to fail but it succeeded")
	}
	var coreErr *models.Error
	if !errors.As(c.err, &coreErr) {
		return fmt.Errorf("expected *models.Error, got %T", c.err)
	}
	if coreErr.Code.String() != statusName {
		return fmt.Errorf("expected status %s, got %s", statusName, coreErr.Code)
	}
	return nil
}

func (c *checkoutTestContext) theErrorMessageContains(substring string) error {
	if c.err == nil {
		return errors.New("expected error but operation succeeded")
	}
	if !strings.Contains(strings.ToLower(c.err.Error()), strings.ToLower(substring)) {
		return fmt.Errorf("expected error message to contain %q, got %q", substring, c.err.Error())
	}
	return nil
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	tc := &checkoutTestContext{}

	ctx.Before(func(ctx context.Context, sc *godog.Scenario) (context.Context, error) {
		tc.reset()
		return ctx, nil
	})

	// Given steps
	ctx.Step(`^the catalog has "([^"]*)" priced "([^"]*)" with stock (\d+)$`, tc.theCatalogHasPricedWithStock)
	ctx.Step(`^an order for table (\d+)$`, tc.anOrderForTable)
	ctx.Step(`^another terminal sells (\d+) "([^"]*)"$`, tc.anotherTerminalSells)

	// When steps
	ctx.Step(`^I add (\d+) "([^"]*)"$`, tc.iAdd)
	ctx.Step(`^I remove "([^"]*)"$`, tc.iRemove)
	ctx.Step(`^I apply a (\d+) percent discount$`, tc.iApplyAPercentDiscount)
	ctx.Step(`^I pay cash "([^"]*)"$`, tc.iPayCash)
	ctx.Step(`^I pay by card "([^"]*)"$`, tc.iPayByCard)

	// Then steps
	ctx.Step(`^the subtotal is "([^"]*)"$`, tc.theSubtotalIs)
	ctx.Step(`^the tax is "([^"]*)"$`, tc.theTaxIs)
	ctx.Step(`^the discount is "([^"]*)"$`, tc.theDiscountIs)
	ctx.Step(`^the total is "([^"]*)"$`, tc.theTotalIs)
	ctx.Step(`^the payment succeeds$`, tc.thePaymentSucceeds)
	ctx.Step(`^the payment fails with "([^"]*)"$`, tc.thePaymentFailsWith)
	ctx.Step(`^the change is "([^"]*)"$`, tc.theChangeIs)
	ctx.Step(`^the order status is "([^"]*)"$`, tc.theOrderStatusIs)
	ctx.Step(`^the stock of "([^"]*)" is (\d+)$`, tc.theStockOfIs)
	ctx.Step(`^the operation fails with status "([^"]*)"$`, tc.theOperationFailsWithStatus)
	ctx.Step(`^the error message contains "([^"]*)"$`, tc.theErrorMessageContains)
}

func TestFeatures(t *testing.T) {
	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			Format:   "pretty",
			Paths:    []string{"checkout.feature"},
			TestingT: t,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}
}
