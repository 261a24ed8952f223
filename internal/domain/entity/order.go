package entity

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrCustomerIncomplete = errors.New("customer name, whatsapp and address are required")
	ErrInvalidPaymentType = errors.New("payment type must be cash or qris")
	ErrInvalidStatus      = errors.New("invalid order status")
	ErrOrderClosed        = errors.New("order is no longer pending")
	ErrPaymentExpired     = errors.New("payment window has expired")
)

type PaymentType string

const (
	PaymentCash PaymentType = "cash"
	PaymentQRIS PaymentType = "qris"
)

func (p PaymentType) Valid() bool {
	return p == PaymentCash || p == PaymentQRIS
}

type OrderStatus string

const (
	StatusPending   OrderStatus = "pending"
	StatusConfirmed OrderStatus = "confirmed"
	StatusRejected  OrderStatus = "rejected"
	StatusCancelled OrderStatus = "cancelled"
)

type Customer struct {
	Name     string   `json:"name"`
	WhatsApp string   `json:"wa"`
	Address  string   `json:"address"`
	Lat      *float64 `json:"lat,omitempty"`
	Lng      *float64 `json:"lng,omitempty"`
}

func (c Customer) Validate() error {
	if strings.TrimSpace(c.Name) == "" || strings.TrimSpace(c.WhatsApp) == "" || strings.TrimSpace(c.Address) == "" {
		return ErrCustomerIncomplete
	}
	return nil
}

type OrderItem struct {
	ProductID int64  `json:"id"`
	Name      string `json:"name"`
	Qty       int    `json:"qty"`
	Price     int64  `json:"price"`
}

type Order struct {
	id          string
	paymentType PaymentType
	customer    Customer
	items       []OrderItem
	total       int64
	fee         int64
	status      OrderStatus
	proofURL    string
	archived    bool
	createdAt   time.Time
	resolvedAt  time.Time
}

func NewOrder(paymentType PaymentType, customer Customer, items []OrderItem, fee int64, now time.Time) *Order {
	var subtotal int64
	for _, it := range items {
		subtotal += it.Price * int64(it.Qty)
	}
	return &Order{
		id:          newOrderID(now),
		paymentType: paymentType,
		customer:    customer,
		items:       items,
		total:       subtotal + fee,
		fee:         fee,
		status:      StatusPending,
		createdAt:   now,
	}
}

func ReconstructOrder(
	id string,
	paymentType PaymentType,
	customer Customer,
	items []OrderItem,
	total, fee int64,
	status OrderStatus,
	proofURL string,
	archived bool,
	createdAt, resolvedAt time.Time,
) *Order {
	return &Order{
		id:          id,
		paymentType: paymentType,
		customer:    customer,
		items:       items,
		total:       total,
		fee:         fee,
		status:      status,
		proofURL:    proofURL,
		archived:    archived,
		createdAt:   createdAt,
		resolvedAt:  resolvedAt,
	}
}

func newOrderID(now time.Time) string {
	return fmt.Sprintf("ORD-%d-%s", now.UnixMilli(), uuid.NewString()[:8])
}

func (o *Order) ID() string {
	return o.id
}

func (o *Order) PaymentType() PaymentType {
	return o.paymentType
}

func (o *Order) Customer() Customer {
	return o.customer
}

func (o *Order) Items() []OrderItem {
	return o.items
}

func (o *Order) Total() int64 {
	return o.total
}

func (o *Order) Fee() int64 {
	return o.fee
}

func (o *Order) Subtotal() int64 {
	return o.total - o.fee
}

func (o *Order) ItemCount() int {
	n := 0
	for _, it := range o.items {
		n += it.Qty
	}
	return n
}

func (o *Order) Status() OrderStatus {
	return o.status
}

func (o *Order) ProofURL() string {
	return o.proofURL
}

// Archived reports whether the order has left the active queue for history.
func (o *Order) Archived() bool {
	return o.archived
}

func (o *Order) CreatedAt() time.Time {
	return o.createdAt
}

func (o *Order) ResolvedAt() time.Time {
	return o.resolvedAt
}

func (o *Order) ExpiresAt(window time.Duration) time.Time {
	return o.createdAt.Add(window)
}

// Expired is only ever true for pending QRIS orders; cash orders have no
// payment window.
func (o *Order) Expired(now time.Time, window time.Duration) bool {
	if o.paymentType != PaymentQRIS || o.status != StatusPending {
		return false
	}
	return !now.Before(o.ExpiresAt(window))
}

func (o *Order) AttachProof(url string, now time.Time, window time.Duration) error {
	if o.status != StatusPending || o.archived {
		return ErrOrderClosed
	}
	if o.Expired(now, window) {
		return ErrPaymentExpired
	}
	o.proofURL = url
	return nil
}

// Resolve records the merchant's decision. An active order moves to history;
// an order already in history only has its status rewritten.
func (o *Order) Resolve(status OrderStatus, now time.Time) error {
	switch status {
	case StatusConfirmed, StatusRejected, StatusCancelled:
	default:
		return ErrInvalidStatus
	}
	o.status = status
	if !o.archived {
		o.archived = true
		o.resolvedAt = now
	}
	return nil
}

func (o *Order) Cancel(now time.Time) error {
	if o.status != StatusPending || o.archived {
		return ErrOrderClosed
	}
	return o.Resolve(StatusCancelled, now)
}
