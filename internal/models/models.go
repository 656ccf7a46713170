package models

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ItemType tags a menu item as food or drink
type ItemType int

const (
	Food ItemType = iota + 1
	Drink
)

func (t ItemType) String() string {
	switch t {
	case Food:
		return "Food"
	case Drink:
		return "Drink"
	default:
		return fmt.Sprintf("ItemType(%d)", int(t))
	}
}

// FoodDetails holds display attributes of a food item
type FoodDetails struct {
	Cuisine    string `json:"cuisine"`
	Vegetarian bool   `json:"vegetarian"`
}

// DrinkDetails holds display attributes of a drink item
type DrinkDetails struct {
	Temperature string `json:"temperature"` // Hot, Cold, Room
	Alcoholic   bool   `json:"alcoholic"`
}

// MenuItem represents an item on the menu
type MenuItem struct {
	ID    string          `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
	Stock int             `json:"stock"`
	Type  ItemType        `json:"type"`

	// Exactly one of these is set, matching Type
	Food  *FoodDetails  `json:"food,omitempty"`
	Drink *DrinkDetails `json:"drink,omitempty"`

	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// NewFoodItem creates a food item with a fresh identifier
func NewFoodItem(name string, price decimal.Decimal, stock int, cuisine string, vegetarian bool) MenuItem {
	return MenuItem{
		ID:    uuid.NewString(),
		Name:  name,
		Price: price,
		Stock: stock,
		Type:  Food,
		Food:  &FoodDetails{Cuisine: cuisine, Vegetarian: vegetarian},
	}
}

// NewDrinkItem creates a drink item with a fresh identifier
func NewDrinkItem(name string, price decimal.Decimal, stock int, alcoholic bool, temperature string) MenuItem {
	return MenuItem{
		ID:    uuid.NewString(),
		Name:  name,
		Price: price,
		Stock: stock,
		Type:  Drink,
		Drink: &DrinkDetails{Temperature: temperature, Alcoholic: alcoholic},
	}
}

// Available is derived from stock and never stored
func (m MenuItem) Available() bool {
	return m.Stock > 0
}

// HasStock reports whether qty units can be sold
func (m MenuItem) HasStock(qty int) bool {
	return qty > 0 && m.Stock >= qty
}

// Description is the display text for the item
func (m MenuItem) Description() string {
	switch {
	case m.Food != nil:
		desc := fmt.Sprintf("%s (%s)", m.Name, m.Food.Cuisine)
		if m.Food.Vegetarian {
			desc += " [Veg]"
		}
		return desc
	case m.Drink != nil:
		desc := fmt.Sprintf("%s (%s)", m.Name, m.Drink.Temperature)
		if m.Drink.Alcoholic {
			desc += " [Alcoholic]"
		}
		return desc
	default:
		return m.Name
	}
}

// Clone returns a copy that shares no pointers with m
func (m MenuItem) Clone() MenuItem {
	if m.Food != nil {
		f := *m.Food
		m.Food = &f
	}
	if m.Drink != nil {
		d := *m.Drink
		m.Drink = &d
	}
	return m
}

// OrderStatus is the lifecycle state of an order
type OrderStatus int

const (
	Draft OrderStatus = iota + 1
	Paid
)

func (s OrderStatus) String() string {
	switch s {
	case Draft:
		return "Draft"
	case Paid:
		return "Paid"
	default:
		return fmt.Sprintf("OrderStatus(%d)", int(s))
	}
}

// OrderLine is one item-quantity pairing with a price snapshot taken when
// the item was added
type OrderLine struct {
	ItemID    string
	ItemName  string
	UnitPrice decimal.Decimal
	Quantity  int
}

// LineTotal is UnitPrice × Quantity
func (l OrderLine) LineTotal() decimal.Decimal {
	return l.UnitPrice.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// PaymentType tags a payment request
type PaymentType int

const (
	Cash PaymentType = iota + 1
	Card
)

// PaymentTypes lists every payment type the core knows about
func PaymentTypes() []PaymentType {
	return []PaymentType{Cash, Card}
}

func (t PaymentType) String() string {
	switch t {
	case Cash:
		return "Cash"
	case Card:
		return "Card"
	default:
		return fmt.Sprintf("PaymentType(%d)", int(t))
	}
}

// PaymentInput is a payment request. CashGiven is used for cash,
// CardNumber for card
type PaymentInput struct {
	Type       PaymentType
	CashGiven  decimal.Decimal
	CardNumber string
}

// CashPayment builds a cash payment request
func CashPayment(given decimal.Decimal) PaymentInput {
	return PaymentInput{Type: Cash, CashGiven: given}
}

// CardPayment builds a card payment request
func CardPayment(number string) PaymentInput {
	return PaymentInput{Type: Card, CardNumber: number}
}

// PaymentResult is the outcome of a payment attempt
type PaymentResult struct {
	Success bool
	Message string
	Change  decimal.Decimal
}

// PaymentSucceeded builds a successful result
func PaymentSucceeded(message string, change decimal.Decimal) PaymentResult {
	return PaymentResult{Success: true, Message: message, Change: change}
}

// PaymentFailed builds a failed result with zero change
func PaymentFailed(message string) PaymentResult {
	return PaymentResult{Message: message, Change: decimal.Zero}
}
