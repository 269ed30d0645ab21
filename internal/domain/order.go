package domain

import (
	"strings"
	"time"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "Pending"
	OrderStatusShipped   OrderStatus = "Shipped"
	OrderStatusCompleted OrderStatus = "Completed"
	OrderStatusCancelled OrderStatus = "Cancelled"
)

// OrderStatuses lists every status in workflow order
var OrderStatuses = []OrderStatus{
	OrderStatusPending,
	OrderStatusShipped,
	OrderStatusCompleted,
	OrderStatusCancelled,
}

// transitions holds the legal edges of the order workflow
var transitions = map[OrderStatus][]OrderStatus{
	OrderStatusPending: {OrderStatusShipped, OrderStatusCancelled},
	OrderStatusShipped: {OrderStatusCompleted, OrderStatusCancelled},
}

// IsValid checks if the status is a valid OrderStatus
func (s OrderStatus) IsValid() bool {
	switch s {
	case OrderStatusPending, OrderStatusShipped, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// IsTerminal reports whether no transition leaves s
func (s OrderStatus) IsTerminal() bool {
	return s == OrderStatusCompleted || s == OrderStatusCancelled
}

// String returns the string representation of OrderStatus
func (s OrderStatus) String() string {
	return string(s)
}

// CanTransitionTo reports whether the workflow has an edge from s to next
func (s OrderStatus) CanTransitionTo(next OrderStatus) bool {
	for _, to := range transitions[s] {
		if to == next {
			return true
		}
	}
	return false
}

// OrderItem is a line item snapshot taken at checkout
type OrderItem struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	Price     float64 `json:"price"`
	Quantity  int     `json:"quantity"`
	Image     string  `json:"image,omitempty"`
	Variant   string  `json:"variant,omitempty"`
	Slug      string  `json:"slug,omitempty"`
}

// Subtotal returns price times quantity
func (i OrderItem) Subtotal() float64 {
	return i.Price * float64(i.Quantity)
}

// ShippingInfo is the delivery address snapshot taken at checkout
type ShippingInfo struct {
	Name       string `json:"name"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postal_code"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email,omitempty"`
	Note       string `json:"note,omitempty"`
}

// Validate checks that every required address field is present
func (s *ShippingInfo) Validate() error {
	for _, f := range []string{s.Name, s.Address, s.City, s.PostalCode, s.Country, s.Phone} {
		if strings.TrimSpace(f) == "" {
			return ErrMissingShippingInfo
		}
	}
	return nil
}

// Order represents a customer order
type Order struct {
	ID             int64        `json:"id"`
	UserID         int64        `json:"user_id"`
	Items          []OrderItem  `json:"items"`
	ShippingInfo   ShippingInfo `json:"shipping_info"`
	Total          float64      `json:"total"`
	Status         OrderStatus  `json:"status"`
	TrackingNumber string       `json:"tracking_number,omitempty"`
	CreatedAt      time.Time    `json:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at"`
}

// NewOrder builds a Pending order after validating its contents
func NewOrder(userID int64, items []OrderItem, shipping ShippingInfo, total float64) (*Order, error) {
	o := &Order{
		UserID:       userID,
		Items:        items,
		ShippingInfo: shipping,
		Total:        total,
		Status:       OrderStatusPending,
	}
	if err := o.Validate(); err != nil {
		return nil, err
	}
	now := time.Now()
	o.CreatedAt = now
	o.UpdatedAt = now
	return o, nil
}

// Validate validates the order contents
func (o *Order) Validate() error {
	if len(o.Items) == 0 {
		return ErrEmptyOrder
	}
	for _, item := range o.Items {
		if item.Quantity < 1 {
			return ErrInvalidQuantity
		}
	}
	if o.Total < 0 {
		return ErrInvalidTotal
	}
	if err := o.ShippingInfo.Validate(); err != nil {
		return err
	}
	if !o.Status.IsValid() {
		return ErrInvalidOrderStatus
	}
	return nil
}

// ItemsSubtotal sums the line items without shipping
func (o *Order) ItemsSubtotal() float64 {
	var sum float64
	for _, item := range o.Items {
		sum += item.Subtotal()
	}
	return sum
}

// IsOwnedBy reports whether userID placed the order
func (o *Order) IsOwnedBy(userID int64) bool {
	return o.UserID == userID
}

// StatusChange describes a requested workflow step and the state it expects to find
type StatusChange struct {
	OrderID        int64
	From           OrderStatus
	To             OrderStatus
	TrackingNumber string
}

// Transition validates moving o to next and returns the change to persist.
// o itself is never modified. Re-submitting Shipped on a shipped order updates
// only the tracking number.
func (o *Order) Transition(next OrderStatus, trackingNumber string) (*StatusChange, error) {
	if !next.IsValid() {
		return nil, ErrInvalidOrderStatus
	}
	trackingNumber = strings.TrimSpace(trackingNumber)

	sameShipped := o.Status == OrderStatusShipped && next == OrderStatusShipped
	if !sameShipped && !o.Status.CanTransitionTo(next) {
		return nil, ErrInvalidTransition
	}

	change := &StatusChange{
		OrderID:        o.ID,
		From:           o.Status,
		To:             next,
		TrackingNumber: o.TrackingNumber,
	}
	if next == OrderStatusShipped {
		if trackingNumber == "" {
			return nil, ErrTrackingNumberRequired
		}
		change.TrackingNumber = trackingNumber
	} else if trackingNumber != "" {
		change.TrackingNumber = trackingNumber
	}
	return change, nil
}

// Apply returns a copy of o with the change applied
func (o *Order) Apply(change *StatusChange, at time.Time) *Order {
	updated := *o
	updated.Status = change.To
	updated.TrackingNumber = change.TrackingNumber
	updated.UpdatedAt = at
	return &updated
}

// OrderFilter narrows order listings
type OrderFilter struct {
	UserID *int64
	Status OrderStatus
}
