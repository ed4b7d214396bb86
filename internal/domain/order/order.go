package order

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
)

// Sentinel errors for order lookup and status validation.
var (
	ErrNotFound             = errors.New("order not found")
	ErrUnknownStatus        = errors.New("unknown order status")
	ErrUnknownPaymentStatus = errors.New("unknown payment status")
)

// PersistenceError wraps a storage failure during an order update. The
// in-memory order passed by the caller is left unchanged when it is returned.
type PersistenceError struct {
	Op      string
	OrderID string
	Err     error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("%s order %s: %v", e.Op, e.OrderID, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// Status is the fulfilment state of an order.
type Status string

const (
	StatusPending    Status = "Pending"
	StatusProcessing Status = "Processing"
	StatusShipped    Status = "Shipped"
	StatusDelivered  Status = "Delivered"
	StatusCancelled  Status = "Cancelled"
)

// Statuses lists all order statuses in workflow order.
var Statuses = []Status{StatusPending, StatusProcessing, StatusShipped, StatusDelivered, StatusCancelled}

// ParseStatus returns ErrUnknownStatus for values outside Statuses.
func ParseStatus(s string) (Status, error) {
	for _, st := range Statuses {
		if string(st) == s {
			return st, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownStatus, "%q", s)
}

// IsTerminal reports whether no further fulfilment is expected.
func (s Status) IsTerminal() bool {
	return s == StatusDelivered || s == StatusCancelled
}

// Rank is the position of s along the forward path. Cancelled sits off the
// path and ranks -1.
func (s Status) Rank() int {
	switch s {
	case StatusPending:
		return 0
	case StatusProcessing:
		return 1
	case StatusShipped:
		return 2
	case StatusDelivered:
		return 3
	default:
		return -1
	}
}

// PaymentStatus is the settlement state of an order.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "Unpaid"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

// PaymentStatuses lists all payment statuses in workflow order.
var PaymentStatuses = []PaymentStatus{PaymentUnpaid, PaymentPaid, PaymentRefunded}

// ParsePaymentStatus returns ErrUnknownPaymentStatus for values outside
// PaymentStatuses.
func ParsePaymentStatus(s string) (PaymentStatus, error) {
	for _, ps := range PaymentStatuses {
		if string(ps) == s {
			return ps, nil
		}
	}
	return "", errors.Wrapf(ErrUnknownPaymentStatus, "%q", s)
}

func (p PaymentStatus) IsTerminal() bool { return p == PaymentRefunded }

func (p PaymentStatus) Rank() int {
	switch p {
	case PaymentUnpaid:
		return 0
	case PaymentPaid:
		return 1
	case PaymentRefunded:
		return 2
	default:
		return -1
	}
}

// Order is a customer order as seen by the admin backend.
type Order struct {
	ID              string
	CustomerName    string
	CustomerPhone   string
	ShippingAddress Address
	PaymentMethod   string
	Status          Status
	PaymentStatus   PaymentStatus
	TotalAmount     decimal.Decimal
	IsGiftWrapped   bool
	GSTIN           string
	Items           []Item
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// Address is the delivery address of an order.
type Address struct {
	Line1 string `json:"line1"`
	City  string `json:"city"`
	State string `json:"state"`
	Zip   string `json:"zip"`
}

// Item is a single line of an order.
type Item struct {
	ID              string
	ProductID       string
	ProductName     string
	Quantity        int
	PriceAtPurchase decimal.Decimal
	VariantColor    string
	VariantSize     string
}

// LineTotal returns quantity × price at purchase.
func (i Item) LineTotal() decimal.Decimal {
	return i.PriceAtPurchase.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Subtotal sums the line totals of all items.
func (o *Order) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, it := range o.Items {
		sum = sum.Add(it.LineTotal())
	}
	return sum
}

// IsCOD reports whether the order is paid cash on delivery.
func (o *Order) IsCOD() bool {
	return strings.EqualFold(strings.TrimSpace(o.PaymentMethod), "cod")
}

// CanInvoice reports whether an invoice may be issued.
func (o *Order) CanInvoice() bool {
	return o.Status != StatusCancelled
}

// CanRefund reports whether the order holds a payment that can be refunded.
func (o *Order) CanRefund() bool {
	return o.PaymentStatus == PaymentPaid
}

// Clone returns a deep copy of o.
func (o *Order) Clone() *Order {
	c := *o
	if o.Items != nil {
		c.Items = make([]Item, len(o.Items))
		copy(c.Items, o.Items)
	}
	return &c
}

// Field names the order column a Change applies to.
type Field string

const (
	FieldStatus        Field = "status"
	FieldPaymentStatus Field = "payment_status"
)

// Change is a single audited update of an order status column.
type Change struct {
	OrderID    string
	Field      Field
	From       string
	To         string
	Regression bool
	Note       string
	TraceID    string
	SpanID     string
	At         time.Time
}

// Filter narrows order listings. Zero values mean no constraint.
type Filter struct {
	Status Status
	Limit  int
}

// Repository defines persistence operations for orders.
type Repository interface {
	Get(ctx context.Context, id string) (*Order, error)
	List(ctx context.Context, f Filter) ([]Order, error)
	// ApplyChange updates the column named by c.Field and appends c to the
	// order history atomically. Returns ErrNotFound for an unknown order.
	ApplyChange(ctx context.Context, c Change) error
	History(ctx context.Context, orderID string) ([]Change, error)
}
