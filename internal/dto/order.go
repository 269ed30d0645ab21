package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Bronny721/nadu-website/internal/domain"
)

// ProductRefError rejects an item id that is not a product id
type ProductRefError struct {
	Raw string
}

func (e *ProductRefError) Error() string {
	return fmt.Sprintf("product id %s is not a non-negative integer", e.Raw)
}

// ProductRef is a product id sent either as a JSON number or a numeric string
type ProductRef int64

// UnmarshalJSON accepts 7, "7" and null
func (r *ProductRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if strings.TrimSpace(s) == "" {
			return nil
		}
		data = []byte(strings.TrimSpace(s))
	}
	id, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil || id < 0 {
		return &ProductRefError{Raw: string(data)}
	}
	*r = ProductRef(id)
	return nil
}

// OrderItemRequest is one line of a checkout submission
type OrderItemRequest struct {
	ID        ProductRef `json:"id"`
	ProductID int64      `json:"product_id"`
	Name      string     `json:"name" binding:"required"`
	Price     float64    `json:"price" binding:"gte=0"`
	Quantity  int        `json:"quantity"`
	Image     string     `json:"image"`
	Variant   string     `json:"variant"`
	Slug      string     `json:"slug"`
}

// productID prefers id over product_id
func (it OrderItemRequest) productID() int64 {
	if it.ID != 0 {
		return int64(it.ID)
	}
	return it.ProductID
}

// ShippingInfoRequest is the delivery address of a checkout submission.
// The checkout form sends firstName and lastName instead of name.
type ShippingInfoRequest struct {
	Name       string `json:"name"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
	Address    string `json:"address"`
	City       string `json:"city"`
	PostalCode string `json:"postalCode"`
	Country    string `json:"country"`
	Phone      string `json:"phone"`
	Email      string `json:"email"`
	Note       string `json:"note"`
}

// FullName returns name, or firstName and lastName joined
func (s *ShippingInfoRequest) FullName() string {
	if name := strings.TrimSpace(s.Name); name != "" {
		return name
	}
	return strings.TrimSpace(strings.TrimSpace(s.FirstName) + " " + strings.TrimSpace(s.LastName))
}

// CreateOrderRequest represents a checkout submission
type CreateOrderRequest struct {
	Items        []OrderItemRequest   `json:"items" binding:"dive"`
	Total        *float64             `json:"total"`
	ShippingInfo *ShippingInfoRequest `json:"shippingInfo"`
}

// Validate reports the first invalid field of a checkout submission
func (r *CreateOrderRequest) Validate() error {
	if len(r.Items) == 0 {
		return &FieldError{Field: "items", Err: domain.ErrEmptyOrder}
	}
	for i, it := range r.Items {
		if it.Quantity < 1 {
			return &FieldError{Field: fmt.Sprintf("items[%d].quantity", i), Err: domain.ErrInvalidQuantity}
		}
	}
	if r.Total == nil || *r.Total < 0 || math.IsNaN(*r.Total) || math.IsInf(*r.Total, 0) {
		return &FieldError{Field: "total", Err: domain.ErrInvalidTotal}
	}
	if !hasCents(*r.Total) {
		return &FieldError{Field: "total", Err: domain.ErrTotalPrecision}
	}
	if r.ShippingInfo == nil {
		return &FieldError{Field: "shippingInfo", Err: domain.ErrMissingShippingInfo}
	}
	s := r.ShippingInfo
	for _, f := range []struct{ name, value string }{
		{"name", s.FullName()},
		{"address", s.Address},
		{"city", s.City},
		{"postalCode", s.PostalCode},
		{"country", s.Country},
		{"phone", s.Phone},
	} {
		if strings.TrimSpace(f.value) == "" {
			return &FieldError{Field: "shippingInfo." + f.name, Err: domain.ErrMissingShippingInfo}
		}
	}
	return nil
}

// hasCents reports whether v is representable with at most two decimal places,
// the precision of the orders.total column
func hasCents(v float64) bool {
	cents := v * 100
	return math.Abs(cents-math.Round(cents)) < 1e-6
}

// ToItems converts the request lines into order item snapshots
func (r *CreateOrderRequest) ToItems() []domain.OrderItem {
	items := make([]domain.OrderItem, 0, len(r.Items))
	for _, it := range r.Items {
		items = append(items, domain.OrderItem{
			ProductID: it.productID(),
			Name:      strings.TrimSpace(it.Name),
			Price:     it.Price,
			Quantity:  it.Quantity,
			Image:     it.Image,
			Variant:   it.Variant,
			Slug:      it.Slug,
		})
	}
	return items
}

// ToShippingInfo converts the request address into a snapshot
func (r *CreateOrderRequest) ToShippingInfo() domain.ShippingInfo {
	if r.ShippingInfo == nil {
		return domain.ShippingInfo{}
	}
	s := r.ShippingInfo
	return domain.ShippingInfo{
		Name:       s.FullName(),
		Address:    strings.TrimSpace(s.Address),
		City:       strings.TrimSpace(s.City),
		PostalCode: strings.TrimSpace(s.PostalCode),
		Country:    strings.TrimSpace(s.Country),
		Phone:      strings.TrimSpace(s.Phone),
		Email:      strings.TrimSpace(s.Email),
		Note:       s.Note,
	}
}

// UpdateOrderStatusRequest is a merchant workflow step
type UpdateOrderStatusRequest struct {
	Status         string `json:"status" binding:"required"`
	TrackingNumber string `json:"trackingNumber"`
}

// ParseOrderStatus validates a status supplied by a client
func ParseOrderStatus(raw string) (domain.OrderStatus, error) {
	s := domain.OrderStatus(strings.TrimSpace(raw))
	if !s.IsValid() {
		return "", &FieldError{Field: "status", Err: domain.ErrInvalidOrderStatus}
	}
	return s, nil
}

// OrderListResponse wraps an order listing
type OrderListResponse struct {
	Orders []*domain.Order `json:"orders"`
	Total  int             `json:"total"`
}

// NewOrderListResponse never returns a nil slice so clients always see an array
func NewOrderListResponse(orders []*domain.Order) OrderListResponse {
	if orders == nil {
		orders = []*domain.Order{}
	}
	return OrderListResponse{Orders: orders, Total: len(orders)}
}

// StoreConfigResponse exposes the pricing rules clients use at checkout
type StoreConfigResponse struct {
	ShippingFee float64 `json:"shipping_fee"`
	Currency    string  `json:"currency"`
}
