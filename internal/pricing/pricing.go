package pricing

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// taxRate is fixed; callers read it through TaxRate
var taxRate = decimal.New(10, -2)

var hundred = decimal.NewFromInt(100)

// Line is anything that contributes a line total to an order
type Line interface {
	LineTotal() decimal.Decimal
}

// Totals holds every derived amount of an order
type Totals struct {
	Subtotal decimal.Decimal
	Tax      decimal.Decimal
	Discount decimal.Decimal
	Total    decimal.Decimal
}

// Subtotal sums the line totals
func Subtotal[L Line](lines []L) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.LineTotal())
	}
	return sum
}

// TaxRate returns the surcharge applied to the subtotal
func TaxRate() decimal.Decimal {
	return taxRate
}

// Tax is subtotal × TaxRate
func Tax(subtotal decimal.Decimal) decimal.Decimal {
	return subtotal.Mul(taxRate)
}

// ValidPercentage reports whether pct is within [0, 100]
func ValidPercentage(pct decimal.Decimal) bool {
	return !pct.IsNegative() && pct.LessThanOrEqual(hundred)
}

// DiscountAmount is subtotal × pct/100. Callers must reject invalid
// percentages with ValidPercentage first; an invalid pct yields zero
func DiscountAmount(subtotal, pct decimal.Decimal) decimal.Decimal {
	if !ValidPercentage(pct) {
		return decimal.Zero
	}
	return subtotal.Mul(pct).Shift(-2)
}

// Total is subtotal + tax - discount
func Total(subtotal, tax, discount decimal.Decimal) decimal.Decimal {
	return subtotal.Add(tax).Sub(discount)
}

// Discount derives a discount amount from a subtotal
type Discount interface {
	Apply(subtotal decimal.Decimal) decimal.Decimal
	Description() string
}

// NoDiscount never reduces the subtotal
type NoDiscount struct{}

func (NoDiscount) Apply(decimal.Decimal) decimal.Decimal { return decimal.Zero }
func (NoDiscount) Description() string                   { return "No Discount" }

// PercentageDiscount takes a fixed percentage off the subtotal
type PercentageDiscount struct {
	pct decimal.Decimal
}

// NewPercentageDiscount panics if pct is outside [0, 100]. User input must
// be checked with ValidPercentage before it gets here
func NewPercentageDiscount(pct decimal.Decimal) PercentageDiscount {
	if !ValidPercentage(pct) {
		panic(fmt.Sprintf("pricing: discount percentage %s outside [0, 100]", pct))
	}
	return PercentageDiscount{pct: pct}
}

func (d PercentageDiscount) Apply(subtotal decimal.Decimal) decimal.Decimal {
	return DiscountAmount(subtotal, d.pct)
}

func (d PercentageDiscount) Description() string {
	return d.pct.String() + "% Discount"
}

// Compute derives every amount from scratch. The discount is clamped to
// [0, subtotal] so the total can never drop below the tax
func Compute[L Line](lines []L, discount Discount) Totals {
	if discount == nil {
		discount = NoDiscount{}
	}
	subtotal := Subtotal(lines)
	tax := Tax(subtotal)
	off := discount.Apply(subtotal)
	if off.IsNegative() {
		off = decimal.Zero
	}
	if off.GreaterThan(subtotal) {
		off = subtotal
	}
	return Totals{
		Subtotal: subtotal,
		Tax:      tax,
		Discount: off,
		Total:    Total(subtotal, tax, off),
	}
}
