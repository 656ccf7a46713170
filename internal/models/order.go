package models

import (
	"slices"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/kieracarman/tablepos/internal/pricing"
)

// Order represents a table order. Amounts are derived from the lines and
// the discount percentage on every mutation
type Order struct {
	ID        string
	TableNo   int
	Status    OrderStatus
	CreatedAt time.Time
	PaidAt    time.Time

	Subtotal        decimal.Decimal
	Tax             decimal.Decimal
	Discount        decimal.Decimal
	Total           decimal.Decimal
	DiscountPercent decimal.Decimal

	lines []OrderLine
}

// NewOrder starts a Draft order for a table
func NewOrder(tableNo int, at time.Time) (*Order, error) {
	if tableNo <= 0 {
		return nil, NewInvalidArgument(ErrMsgTableNoPositive)
	}
	return &Order{
		ID:              uuid.NewString(),
		TableNo:         tableNo,
		Status:          Draft,
		CreatedAt:       at,
		Subtotal:        decimal.Zero,
		Tax:             decimal.Zero,
		Discount:        decimal.Zero,
		Total:           decimal.Zero,
		DiscountPercent: decimal.Zero,
	}, nil
}

func (o *Order) IsDraft() bool { return o.Status == Draft }
func (o *Order) IsPaid() bool  { return o.Status == Paid }

// Lines returns a copy of the lines in insertion order
func (o *Order) Lines() []OrderLine {
	return slices.Clone(o.lines)
}

// Line returns the line for itemID, if any
func (o *Order) Line(itemID string) (OrderLine, bool) {
	if i := o.lineIndex(itemID); i >= 0 {
		return o.lines[i], true
	}
	return OrderLine{}, false
}

// LineCount is the number of distinct items on the order
func (o *Order) LineCount() int {
	return len(o.lines)
}

// Quantities maps item id to ordered quantity
func (o *Order) Quantities() map[string]int {
	q := make(map[string]int, len(o.lines))
	for _, l := range o.lines {
		q[l.ItemID] += l.Quantity
	}
	return q
}

// Clone returns a deep copy
func (o *Order) Clone() *Order {
	c := *o
	c.lines = slices.Clone(o.lines)
	return &c
}

// AddLine snapshots the item's name and price. Adding an item that is
// already on the order grows that line; stock must cover the combined
// quantity. Catalog stock is not decremented here
func (o *Order) AddLine(item MenuItem, qty int) error {
	if err := o.ensureDraft(); err != nil {
		return err
	}
	if qty <= 0 {
		return NewInvalidArgument(ErrMsgQuantityPositive)
	}

	if i := o.lineIndex(item.ID); i >= 0 {
		combined := o.lines[i].Quantity + qty
		if !item.HasStock(combined) {
			return NewFailedPreconditionf("%s for %s: %d requested, %d in stock", ErrMsgInsufficientStock, item.Name, combined, item.Stock)
		}
		o.lines[i].Quantity = combined
		o.recalculate()
		return nil
	}

	if !item.HasStock(qty) {
		return NewFailedPreconditionf("%s for %s: %d requested, %d in stock", ErrMsgInsufficientStock, item.Name, qty, item.Stock)
	}
	o.lines = append(o.lines, OrderLine{
		ItemID:    item.ID,
		ItemName:  item.Name,
		UnitPrice: item.Price,
		Quantity:  qty,
	})
	o.recalculate()
	return nil
}

// RemoveLine drops the line for itemID
func (o *Order) RemoveLine(itemID string) error {
	if err := o.ensureDraft(); err != nil {
		return err
	}
	i := o.lineIndex(itemID)
	if i < 0 {
		return NewNotFound(ErrMsgLineNotFound)
	}
	o.lines = slices.Delete(o.lines, i, i+1)
	o.recalculate()
	return nil
}

// UpdateLineQuantity sets the quantity of the line for item, checking the
// item's current stock
func (o *Order) UpdateLineQuantity(item MenuItem, qty int) error {
	if err := o.ensureDraft(); err != nil {
		return err
	}
	if qty <= 0 {
		return NewInvalidArgument(ErrMsgQuantityPositive)
	}
	i := o.lineIndex(item.ID)
	if i < 0 {
		return NewNotFound(ErrMsgLineNotFound)
	}
	if !item.HasStock(qty) {
		return NewFailedPreconditionf("%s for %s: %d requested, %d in stock", ErrMsgInsufficientStock, item.Name, qty, item.Stock)
	}
	o.lines[i].Quantity = qty
	o.recalculate()
	return nil
}

// ApplyDiscount stores pct and re-derives the discount from it. Later line
// changes keep applying the same percentage
func (o *Order) ApplyDiscount(pct decimal.Decimal) error {
	if err := o.ensureDraft(); err != nil {
		return err
	}
	if !pricing.ValidPercentage(pct) {
		return NewInvalidArgument(ErrMsgPercentageRange)
	}
	o.DiscountPercent = pct
	o.recalculate()
	return nil
}

// MarkPaid is the only state transition. The payment dispatcher calls it
// once, after the payment and the stock commit succeeded
func (o *Order) MarkPaid(at time.Time) error {
	if err := o.ensureDraft(); err != nil {
		return err
	}
	o.Status = Paid
	o.PaidAt = at
	return nil
}

// DiscountDescription is the display text of the active discount
func (o *Order) DiscountDescription() string {
	return o.discount().Description()
}

func (o *Order) discount() pricing.Discount {
	if o.DiscountPercent.IsZero() {
		return pricing.NoDiscount{}
	}
	return pricing.NewPercentageDiscount(o.DiscountPercent)
}

func (o *Order) recalculate() {
	t := pricing.Compute(o.lines, o.discount())
	o.Subtotal = t.Subtotal
	o.Tax = t.Tax
	o.Discount = t.Discount
	o.Total = t.Total
}

func (o *Order) ensureDraft() error {
	if !o.IsDraft() {
		return NewFailedPrecondition(ErrMsgOrderPaid)
	}
	return nil
}

func (o *Order) lineIndex(itemID string) int {
	return slices.IndexFunc(o.lines, func(l OrderLine) bool {
		return l.ItemID == itemID
	})
}
