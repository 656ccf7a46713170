package main

import (
	"bufio"
	"errors"
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/kieracarman/tablepos/internal/env"
	"github.com/kieracarman/tablepos/internal/inventory"
	"github.com/kieracarman/tablepos/internal/loadtest"
	"github.com/kieracarman/tablepos/internal/menu"
	"github.com/kieracarman/tablepos/internal/metrics"
	"github.com/kieracarman/tablepos/internal/models"
	"github.com/kieracarman/tablepos/internal/orders"
	"github.com/kieracarman/tablepos/internal/payment"
)

const (
	defaultRushTerminals = 10
	defaultRushOrders    = 20
)

type config struct {
	env           string
	metricsAddr   string
	rushTerminals int
	rushOrders    int
}

type app struct {
	menu     *menu.Service
	orders   *orders.Service
	payments *payment.Processor
	ledger   *inventory.Ledger
	reader   *bufio.Reader
	cfg      config
	current  string // id of the order being worked on
}

func main() {
	_ = godotenv.Load()

	cfg := config{
		env:           env.GetString("ENV", "development"),
		metricsAddr:   env.GetString("METRICS_ADDR", ""),
		rushTerminals: env.GetInt("RUSH_TERMINALS", defaultRushTerminals),
		rushOrders:    env.GetInt("RUSH_ORDERS", defaultRushOrders),
	}

	logger := newLogger(cfg.env)
	defer logger.Sync()

	cfg.rushTerminals = positiveOr(logger, "RUSH_TERMINALS", cfg.rushTerminals, defaultRushTerminals)
	cfg.rushOrders = positiveOr(logger, "RUSH_ORDERS", cfg.rushOrders, defaultRushOrders)

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)
	if cfg.metricsAddr != "" {
		go func() {
			mux := http.NewServeMux()
			mux.Handle("/metrics", metrics.Handler(registry))
			if err := http.ListenAndServe(cfg.metricsAddr, mux); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorw("metrics listener stopped", "addr", cfg.metricsAddr, "error", err)
			}
		}()
		logger.Infow("serving metrics", "addr", cfg.metricsAddr)
	}

	// stores live for the whole process
	catalog := menu.NewStore()
	menu.Seed(catalog, menu.SampleCatalog())
	orderStore := orders.NewStore()
	ledger := inventory.NewLedger(catalog, logger)

	a := &app{
		menu:     menu.NewService(catalog, logger),
		orders:   orders.NewService(orderStore, catalog, m, logger),
		payments: payment.NewProcessor(orderStore, ledger, m, logger),
		ledger:   ledger,
		reader:   bufio.NewReader(os.Stdin),
		cfg:      cfg,
	}

	logger.Infow("catalog seeded", "items", len(catalog.List()))
	a.loop()
}

// positiveOr returns v, or fallback when v is below 1
func positiveOr(logger *zap.SugaredLogger, key string, v, fallback int) int {
	if v > 0 {
		return v
	}
	logger.Warnw("invalid setting, using default", "key", key, "value", v, "default", fallback)
	return fallback
}

func newLogger(environment string) *zap.SugaredLogger {
	if environment == "production" {
		return zap.Must(zap.NewProduction()).Sugar()
	}
	return zap.Must(zap.NewDevelopment()).Sugar()
}

func (a *app) loop() {
	fmt.Println("=== Table POS ===")
	for {
		fmt.Println("\n1. Show menu")
		fmt.Println("2. Start order")
		fmt.Println("3. Add item")
		fmt.Println("4. Remove item")
		fmt.Println("5. Change quantity")
		fmt.Println("6. Apply discount")
		fmt.Println("7. Pay")
		fmt.Println("8. Show order")
		fmt.Println("9. List orders")
		fmt.Println("d. Delete current draft")
		fmt.Println("r. Rush hour simulation")
		fmt.Println("q. Quit")

		switch a.prompt("Enter your choice") {
		case "1":
			a.showMenu()
		case "2":
			a.startOrder()
		case "3":
			a.addItem()
		case "4":
			a.removeItem()
		case "5":
			a.changeQuantity()
		case "6":
			a.applyDiscount()
		case "7":
			a.pay()
		case "8":
			a.showOrder()
		case "9":
			a.listOrders()
		case "d", "D":
			a.deleteOrder()
		case "r", "R":
			a.rush()
		case "q", "Q", "quit", "exit":
			fmt.Println("Goodbye!")
			return
		default:
			fmt.Println("Invalid choice. Please try again.")
		}
	}
}

func (a *app) prompt(label string) string {
	fmt.Printf("%s: ", label)
	input, _ := a.reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func (a *app) promptInt(label string) (int, bool) {
	n, err := strconv.Atoi(a.prompt(label))
	if err != nil {
		fmt.Println("Please enter a whole number.")
		return 0, false
	}
	return n, true
}

func (a *app) promptDecimal(label string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(a.prompt(label))
	if err != nil {
		fmt.Println("Please enter an amount.")
		return decimal.Zero, false
	}
	return d, true
}

// pickItem lets the user choose an available item by its list number
func (a *app) pickItem() (models.MenuItem, bool) {
	items := a.menu.AvailableItems()
	for i, item := range items {
		fmt.Printf("%d. %s $%s (%d left)\n", i+1, item.Description(), item.Price.StringFixed(2), item.Stock)
	}
	n, ok := a.promptInt("Item")
	if !ok || n < 1 || n > len(items) {
		fmt.Println("No such item.")
		return models.MenuItem{}, false
	}
	return items[n-1], true
}

func (a *app) requireOrder() bool {
	if a.current == "" {
		fmt.Println("Start an order first.")
		return false
	}
	return true
}

func (a *app) showMenu() {
	for _, t := range []models.ItemType{models.Food, models.Drink} {
		fmt.Printf("\n%s\n", t)
		for _, item := range a.menu.ItemsByType(t) {
			status := fmt.Sprintf("%d left", item.Stock)
			if !item.Available() {
				status = "sold out"
			}
			fmt.Printf("  %-32s $%6s  %s\n", item.Description(), item.Price.StringFixed(2), status)
		}
	}
}

func (a *app) startOrder() {
	table, ok := a.promptInt("Table number")
	if !ok {
		return
	}
	order, err := a.orders.CreateOrder(table)
	if err != nil {
		fmt.Println(err)
		return
	}
	a.current = order.ID
	fmt.Printf("Order %s started for table %d\n", short(order.ID), table)
}

func (a *app) addItem() {
	if !a.requireOrder() {
		return
	}
	item, ok := a.pickItem()
	if !ok {
		return
	}
	qty, ok := a.promptInt("Quantity")
	if !ok {
		return
	}
	order, err := a.orders.AddItem(a.current, item.ID, qty)
	if err != nil {
		fmt.Println(err)
		return
	}
	printTotals(order)
}

func (a *app) pickLine() (models.OrderLine, bool) {
	order, ok := a.orders.GetOrder(a.current)
	if !ok {
		fmt.Println(models.ErrMsgOrderNotFound)
		return models.OrderLine{}, false
	}
	lines := order.Lines()
	for i, line := range lines {
		fmt.Printf("%d. %s x%d\n", i+1, line.ItemName, line.Quantity)
	}
	n, ok := a.promptInt("Line")
	if !ok || n < 1 || n > len(lines) {
		fmt.Println("No such line.")
		return models.OrderLine{}, false
	}
	return lines[n-1], true
}

func (a *app) removeItem() {
	if !a.requireOrder() {
		return
	}
	line, ok := a.pickLine()
	if !ok {
		return
	}
	order, err := a.orders.RemoveItem(a.current, line.ItemID)
	if err != nil {
		fmt.Println(err)
		return
	}
	printTotals(order)
}

func (a *app) changeQuantity() {
	if !a.requireOrder() {
		return
	}
	line, ok := a.pickLine()
	if !ok {
		return
	}
	qty, ok := a.promptInt("New quantity")
	if !ok {
		return
	}
	order, err := a.orders.UpdateItemQuantity(a.current, line.ItemID, qty)
	if err != nil {
		fmt.Println(err)
		return
	}
	printTotals(order)
}

func (a *app) applyDiscount() {
	if !a.requireOrder() {
		return
	}
	pct, ok := a.promptDecimal("Discount %")
	if !ok {
		return
	}
	order, err := a.orders.ApplyDiscount(a.current, pct)
	if err != nil {
		fmt.Println(err)
		return
	}
	printTotals(order)
}

func (a *app) pay() {
	if !a.requireOrder() {
		return
	}
	fmt.Printf("Methods: %s\n", strings.Join(a.payments.Methods(), ", "))

	var input models.PaymentInput
	switch strings.ToLower(a.prompt("Method")) {
	case "cash":
		given, ok := a.promptDecimal("Cash given")
		if !ok {
			return
		}
		input = models.CashPayment(given)
	case "card":
		input = models.CardPayment(a.prompt("Card number (####-####-####-####)"))
	default:
		fmt.Println("Unknown payment method.")
		return
	}

	result := a.payments.ProcessPayment(a.current, input)
	fmt.Println(result.Message)
	if !result.Success {
		return
	}
	if input.Type == models.Cash {
		fmt.Printf("Change: $%s\n", result.Change.StringFixed(2))
	}
	a.showOrder()
	a.current = ""
}

func (a *app) showOrder() {
	if !a.requireOrder() {
		return
	}
	order, ok := a.orders.GetOrder(a.current)
	if !ok {
		fmt.Println(models.ErrMsgOrderNotFound)
		return
	}
	fmt.Printf("\nOrder %s  table %d  %s\n", short(order.ID), order.TableNo, order.Status)
	for _, line := range order.Lines() {
		fmt.Printf("  %-20s %3d x $%6s = $%7s\n", line.ItemName, line.Quantity, line.UnitPrice.StringFixed(2), line.LineTotal().StringFixed(2))
	}
	printTotals(order)
}

func (a *app) listOrders() {
	var list []*models.Order
	switch strings.ToLower(a.prompt("Filter (draft, paid, table)")) {
	case "draft":
		list = a.orders.DraftOrders()
	case "paid":
		list = a.orders.PaidOrders()
	case "table":
		table, ok := a.promptInt("Table number")
		if !ok {
			return
		}
		list = a.orders.OrdersByTable(table)
	default:
		fmt.Println("Unknown filter.")
		return
	}
	if len(list) == 0 {
		fmt.Println("No orders.")
		return
	}
	for _, o := range list {
		fmt.Printf("  %s  table %-3d %-5s %2d lines  $%s\n", short(o.ID), o.TableNo, o.Status, o.LineCount(), o.Total.StringFixed(2))
	}
}

func (a *app) deleteOrder() {
	if !a.requireOrder() {
		return
	}
	if err := a.orders.DeleteOrder(a.current); err != nil {
		fmt.Println(err)
		return
	}
	fmt.Println("Order deleted.")
	a.current = ""
}

func (a *app) rush() {
	tester := loadtest.NewTester(a.orders, a.payments, a.menu.Store())
	tester.SetTerminals(a.cfg.rushTerminals)
	tester.SetOrdersPerTerminal(a.cfg.rushOrders)

	fmt.Printf("\nRunning %d terminals x %d orders...\n", a.cfg.rushTerminals, a.cfg.rushOrders)
	results := tester.Run()

	fmt.Printf("- Orders attempted: %d\n", results.RequestCount)
	fmt.Printf("- Paid: %d\n", results.PaidCount)
	fmt.Printf("- Rejected: %d\n", results.RejectedCount)
	fmt.Printf("- Throughput: %.2f orders/second\n", results.RPS)
	fmt.Printf("- Avg response time: %v\n", results.AvgResponseTime)
	fmt.Printf("- Stock movements recorded: %d\n", len(a.ledger.Movements()))
}

func printTotals(o *models.Order) {
	fmt.Printf("  Subtotal: $%s\n", o.Subtotal.StringFixed(2))
	fmt.Printf("  Tax:      $%s\n", o.Tax.StringFixed(2))
	if !o.Discount.IsZero() {
		fmt.Printf("  %s: -$%s\n", o.DiscountDescription(), o.Discount.StringFixed(2))
	}
	fmt.Printf("  Total:    $%s\n", o.Total.StringFixed(2))
}

func short(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
