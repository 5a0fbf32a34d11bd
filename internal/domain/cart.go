package domain

import (
	"fmt"
	"math"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/text/currency"
)

const StatusActive = "ACTIVE"

const (
	MaxQuantity = math.MaxInt32
	// AmountScale is the number of decimal places kept for prices and totals.
	AmountScale = 4
)

// MaxAmount is the exclusive upper bound of a price or total: NUMERIC(19, 4) holds 15 integer digits.
var MaxAmount = decimal.New(1, 15)

// AmountFits reports whether d is non-negative, below MaxAmount and has at most AmountScale decimal places.
func AmountFits(d decimal.Decimal) bool {
	return !d.IsNegative() && d.LessThan(MaxAmount) && d.Equal(d.Round(AmountScale))
}

// CheckStorable reports the first item or total that a store could not keep exactly.
func (c Cart) CheckStorable() error {
	for _, item := range c.Items {
		if item.Quantity < 1 || item.Quantity > MaxQuantity {
			return fmt.Errorf("item[%s] quantity[%d] is out of range", item.ID, item.Quantity)
		}
		if !AmountFits(item.Price) {
			return fmt.Errorf("item[%s] price[%s] is out of range", item.ID, item.Price)
		}
	}
	if !AmountFits(c.TotalAmount) {
		return fmt.Errorf("total amount[%s] is out of range", c.TotalAmount)
	}
	return nil
}

type Cart struct {
	ID          string
	UserID      string
	Status      string
	Currency    currency.Unit
	Items       []CartItem
	TotalAmount decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time
}

type CartItem struct {
	ID          string
	CartID      string
	ProductID   string
	ProductName string
	Price       decimal.Decimal
	Quantity    int
}

// Subtotal is Price x Quantity.
func (i CartItem) Subtotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Total re-sums every item subtotal from scratch.
func (c Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, item := range c.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// RemoveItem drops the first item with the given id and reports whether one was found.
func (c *Cart) RemoveItem(itemID string) bool {
	for i, item := range c.Items {
		if item.ID == itemID {
			c.Items = append(c.Items[:i:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

// ItemInput is an item as supplied by a client. Nil pointers mean the field was absent.
type ItemInput struct {
	ProductID   string
	ProductName string
	Price       *decimal.Decimal
	Quantity    *int
	Currency    string
}
