// internal/models/order.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "Pending"
	OrderStatusProcessing OrderStatus = "Processing"
	OrderStatusShipped    OrderStatus = "Shipped"
	OrderStatusDelivered  OrderStatus = "Delivered"
	OrderStatusCancelled  OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in lifecycle order.
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusProcessing,
	OrderStatusShipped,
	OrderStatusDelivered,
	OrderStatusCancelled,
}

// Fulfilment only moves forward one step at a time; any open order may be cancelled.
var orderTransitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending:    {OrderStatusProcessing, OrderStatusCancelled},
	OrderStatusProcessing: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped:    {OrderStatusDelivered, OrderStatusCancelled},
	OrderStatusDelivered:  {},
	OrderStatusCancelled:  {},
}

func (s OrderStatus) Valid() bool {
	_, ok := orderTransitions[s]
	return ok
}

func (s OrderStatus) IsTerminal() bool {
	return s.Valid() && len(orderTransitions[s]) == 0
}

// NextStatuses returns the statuses an order in s may move to.
func (s OrderStatus) NextStatuses() []OrderStatus {
	next := orderTransitions[s]
	out := make([]OrderStatus, len(next))
	copy(out, next)
	return out
}

func (s OrderStatus) CanTransitionTo(to OrderStatus) bool {
	for _, next := range orderTransitions[s] {
		if next == to {
			return true
		}
	}
	return false
}

// TransitionError reports a status change the order lifecycle does not allow.
type TransitionError struct {
	From OrderStatus
	To   OrderStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// ValidateTransition checks a move from s to to. Re-applying the current
// status is allowed and is a no-op for the caller.
func (s OrderStatus) ValidateTransition(to OrderStatus) error {
	if !to.Valid() {
		return &TransitionError{From: s, To: to}
	}
	if s == to || s.CanTransitionTo(to) {
		return nil
	}
	return &TransitionError{From: s, To: to}
}

// CartItem is one line of a cart; orders keep an immutable copy of them.
type CartItem struct {
	ProductID   string          `json:"product_id"`
	VariantID   string          `json:"variant_id"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Name        string          `json:"name"`
	VariantName string          `json:"variant_name"`
	Image       string          `json:"image"`
}

func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// ItemsTotal is the sum of price times quantity over items.
func ItemsTotal(items []CartItem) decimal.Decimal {
	total := decimal.Zero
	for _, item := range items {
		total = total.Add(item.LineTotal())
	}
	return total
}

type OrderItems []CartItem

func (o OrderItems) Value() (driver.Value, error) {
	if o == nil {
		return "[]", nil
	}
	return json.Marshal(o)
}

func (o *OrderItems) Scan(value interface{}) error {
	return scanJSON(value, o)
}

type ShippingAddress struct {
	Name    string `json:"name" validate:"required,max=255"`
	Address string `json:"address" validate:"required,max=500"`
	City    string `json:"city" validate:"required,max=100"`
	Country string `json:"country" validate:"required,max=100"`
	Zip     string `json:"zip" validate:"required,max=20"`
}

func (a ShippingAddress) Value() (driver.Value, error) {
	return json.Marshal(a)
}

func (a *ShippingAddress) Scan(value interface{}) error {
	return scanJSON(value, a)
}

type Order struct {
	BaseModel
	UserID          uuid.UUID       `json:"user_id" gorm:"type:uuid;not null;index"`
	Items           OrderItems      `json:"items" gorm:"type:jsonb;not null"`
	Total           decimal.Decimal `json:"total" gorm:"type:numeric(14,2);not null"`
	Status          OrderStatus     `json:"status" gorm:"type:varchar(20);not null;default:'Pending';index"`
	ShippingAddress ShippingAddress `json:"shipping_address" gorm:"type:jsonb;not null"`
	PaymentMethod   string          `json:"payment_method" gorm:"size:50"`
	PaymentStatus   PaymentStatus   `json:"payment_status" gorm:"type:varchar(20);not null;default:'Pending';index"`
	PaymentID       string          `json:"payment_id" gorm:"size:255;index"`
	IdempotencyKey  *string         `json:"idempotency_key,omitempty" gorm:"size:255;uniqueIndex"`

	NextStatuses []OrderStatus `json:"next_statuses" gorm:"-"`
}

func (o *Order) AfterFind(tx *gorm.DB) error {
	o.NextStatuses = o.Status.NextStatuses()
	return nil
}

func (o *Order) AfterSave(tx *gorm.DB) error {
	o.NextStatuses = o.Status.NextStatuses()
	return nil
}
