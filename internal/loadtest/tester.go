package loadtest

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kieracarman/tablepos/internal/models"
	"github.com/kieracarman/tablepos/internal/orders"
	"github.com/kieracarman/tablepos/internal/payment"
)

// Menu is the catalog view the terminals browse
type Menu interface {
	ListAvailable() []models.MenuItem
}

// Tester simulates several terminals ordering and paying at the same time
// against shared stores
type Tester struct {
	orders    *orders.Service
	payments  *payment.Processor
	menu      Menu
	terminals int
	perTerm   int
	maxLines  int
	maxQty    int
	seed      int64
}

// Results holds the outcome of a run
type Results struct {
	RequestCount    int
	PaidCount       int
	RejectedCount   int
	ItemsSold       map[string]int // item id -> units on paid orders
	TotalDuration   time.Duration
	MinResponseTime time.Duration
	MaxResponseTime time.Duration
	AvgResponseTime time.Duration
	RPS             float64
}

// NewTester creates a tester with 10 terminals placing 20 orders each
func NewTester(o *orders.Service, p *payment.Processor, menu Menu) *Tester {
	return &Tester{
		orders:    o,
		payments:  p,
		menu:      menu,
		terminals: 10,
		perTerm:   20,
		maxLines:  3,
		maxQty:    3,
		seed:      time.Now().UnixNano(),
	}
}

// SetTerminals sets the number of concurrent terminals. Values below 1 are ignored
func (t *Tester) SetTerminals(n int) {
	if n > 0 {
		t.terminals = n
	}
}

// SetOrdersPerTerminal sets how many orders each terminal places. Values below 1 are ignored
func (t *Tester) SetOrdersPerTerminal(n int) {
	if n > 0 {
		t.perTerm = n
	}
}

// SetMaxQuantity caps the quantity of a single line. Values below 1 are ignored
func (t *Tester) SetMaxQuantity(n int) {
	if n > 0 {
		t.maxQty = n
	}
}

// SetSeed makes the random order mix reproducible
func (t *Tester) SetSeed(seed int64) {
	t.seed = seed
}

type outcome struct {
	paid         bool
	sold         map[string]int
	responseTime time.Duration
}

// placeOrder runs one terminal interaction: open, fill, pay
func (t *Tester) placeOrder(rng *rand.Rand, table int) outcome {
	order, err := t.orders.CreateOrder(table)
	if err != nil {
		return outcome{}
	}

	items := t.menu.ListAvailable()
	if len(items) == 0 {
		_ = t.orders.DeleteOrder(order.ID)
		return outcome{}
	}

	lines := 1 + rng.Intn(t.maxLines)
	for i := 0; i < lines; i++ {
		item := items[rng.Intn(len(items))]
		// Rejections for stock are expected under contention
		_, _ = t.orders.AddItem(order.ID, item.ID, 1+rng.Intn(t.maxQty))
	}

	current, ok := t.orders.GetOrder(order.ID)
	if !ok || current.LineCount() == 0 {
		_ = t.orders.DeleteOrder(order.ID)
		return outcome{}
	}

	var input models.PaymentInput
	if rng.Intn(2) == 0 {
		// Round up to the next whole unit so cash always covers the total
		input = models.CashPayment(current.Total.Ceil().Add(decimal.NewFromInt(int64(rng.Intn(20)))))
	} else {
		input = models.CardPayment(fmt.Sprintf("4242-4242-4242-%04d", rng.Intn(10000)))
	}

	result := t.payments.ProcessPayment(order.ID, input)
	if !result.Success {
		_ = t.orders.DeleteOrder(order.ID)
		return outcome{}
	}
	return outcome{paid: true, sold: current.Quantities()}
}

// Run starts every terminal, waits for all of them and aggregates results
func (t *Tester) Run() *Results {
	start := time.Now()

	var wg sync.WaitGroup
	resultsChan := make(chan outcome, t.terminals*t.perTerm)

	for i := 0; i < t.terminals; i++ {
		wg.Add(1)
		go func(terminal int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(t.seed + int64(terminal)))

			for n := 0; n < t.perTerm; n++ {
				requestStart := time.Now()
				res := t.placeOrder(rng, terminal+1)
				res.responseTime = time.Since(requestStart)
				resultsChan <- res
			}
		}(i)
	}

	go func() {
		wg.Wait()
		close(resultsChan)
	}()

	results := &Results{ItemsSold: make(map[string]int)}
	var totalResponseTime time.Duration
	results.MinResponseTime = time.Hour

	for res := range resultsChan {
		results.RequestCount++
		if res.paid {
			results.PaidCount++
			for id, qty := range res.sold {
				results.ItemsSold[id] += qty
			}
		} else {
			results.RejectedCount++
		}

		if res.responseTime < results.MinResponseTime {
			results.MinResponseTime = res.responseTime
		}
		if res.responseTime > results.MaxResponseTime {
			results.MaxResponseTime = res.responseTime
		}
		totalResponseTime += res.responseTime
	}

	results.TotalDuration = time.Since(start)
	if results.RequestCount > 0 {
		results.AvgResponseTime = totalResponseTime / time.Duration(results.RequestCount)
	} else {
		results.MinResponseTime = 0
	}
	if secs := results.TotalDuration.Seconds(); secs > 0 {
		results.RPS = float64(results.RequestCount) / secs
	}
	return results
}
