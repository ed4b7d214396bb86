package order

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/zctx"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/store-admin/internal/domain/fee"
	"github.com/xenking/store-admin/internal/domain/settings"
)

// Service encapsulates the order status workflow.
type Service struct {
	orders      Repository
	now         func() time.Time
	transitions metric.Int64Counter
}

// NewService creates an order Service. Transition counts are reported to mp.
func NewService(orders Repository, mp metric.MeterProvider) (*Service, error) {
	counter, err := mp.Meter("store-admin/order").Int64Counter("order.transitions",
		metric.WithDescription("Order status and payment status changes"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "create transitions counter")
	}
	return &Service{
		orders:      orders,
		now:         time.Now,
		transitions: counter,
	}, nil
}

// Get returns a single order with its items.
func (s *Service) Get(ctx context.Context, id string) (*Order, error) {
	o, err := s.orders.Get(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "get order")
	}
	return o, nil
}

// List returns orders newest first.
func (s *Service) List(ctx context.Context, f Filter) ([]Order, error) {
	if f.Status != "" {
		if _, err := ParseStatus(string(f.Status)); err != nil {
			return nil, err
		}
	}
	orders, err := s.orders.List(ctx, f)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// History returns the audited changes of an order, oldest first.
func (s *Service) History(ctx context.Context, id string) ([]Change, error) {
	changes, err := s.orders.History(ctx, id)
	if err != nil {
		return nil, errors.Wrap(err, "order history")
	}
	return changes, nil
}

// UpdateStatus moves o to status and returns the updated copy. Any transition
// between known statuses is allowed; backward moves are flagged as
// regressions in the audit trail.
//
// Exactly one write is made per call, including when status equals the
// current value. On failure o is untouched and a *PersistenceError is
// returned.
func (s *Service) UpdateStatus(ctx context.Context, o *Order, status Status) (*Order, error) {
	if _, err := ParseStatus(string(status)); err != nil {
		return nil, err
	}
	c := s.newChange(ctx, o.ID, FieldStatus, string(o.Status), string(status), statusRegression(o.Status, status))
	if err := s.apply(ctx, c); err != nil {
		return nil, err
	}

	updated := o.Clone()
	updated.Status = status
	updated.UpdatedAt = c.At
	return updated, nil
}

// UpdatePaymentStatus is the payment status counterpart of UpdateStatus.
func (s *Service) UpdatePaymentStatus(ctx context.Context, o *Order, status PaymentStatus) (*Order, error) {
	if _, err := ParsePaymentStatus(string(status)); err != nil {
		return nil, err
	}
	c := s.newChange(ctx, o.ID, FieldPaymentStatus, string(o.PaymentStatus), string(status), paymentRegression(o.PaymentStatus, status))
	if err := s.apply(ctx, c); err != nil {
		return nil, err
	}

	updated := o.Clone()
	updated.PaymentStatus = status
	updated.UpdatedAt = c.At
	return updated, nil
}

type noteKey struct{}

// WithNote attaches an admin note to changes made with the returned context.
func WithNote(ctx context.Context, note string) context.Context {
	return context.WithValue(ctx, noteKey{}, note)
}

func (s *Service) newChange(ctx context.Context, id string, field Field, from, to string, regression bool) Change {
	note, _ := ctx.Value(noteKey{}).(string)
	c := Change{
		OrderID:    id,
		Field:      field,
		From:       from,
		To:         to,
		Regression: regression,
		Note:       note,
		At:         s.now().UTC(),
	}
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		c.TraceID = sc.TraceID().String()
		c.SpanID = sc.SpanID().String()
	}
	return c
}

func (s *Service) apply(ctx context.Context, c Change) error {
	lg := zctx.From(ctx).With(
		zap.String("order_id", c.OrderID),
		zap.String("field", string(c.Field)),
		zap.String("from", c.From),
		zap.String("to", c.To),
	)
	if err := s.orders.ApplyChange(ctx, c); err != nil {
		lg.Error("Order update failed", zap.Error(err))
		return &PersistenceError{Op: "update " + string(c.Field), OrderID: c.OrderID, Err: err}
	}

	s.transitions.Add(ctx, 1, metric.WithAttributes(
		attribute.String("field", string(c.Field)),
		attribute.String("to", c.To),
		attribute.Bool("regression", c.Regression),
	))
	switch {
	case c.Regression:
		lg.Warn("Order moved backwards")
	case c.From == c.To:
		lg.Info("Order rewritten with unchanged value")
	default:
		lg.Info("Order updated")
	}
	return nil
}

// statusRegression reports moves that leave a terminal status or go back
// along the forward path. Cancelling is never a regression.
func statusRegression(from, to Status) bool {
	if from == to || to == StatusCancelled {
		return false
	}
	if from.IsTerminal() {
		return true
	}
	return to.Rank() < from.Rank()
}

func paymentRegression(from, to PaymentStatus) bool {
	if from == to {
		return false
	}
	return from.IsTerminal() || to.Rank() < from.Rank()
}

// Detail is the admin view of a single order.
type Detail struct {
	Order      *Order
	Timeline   Timeline
	CanInvoice bool
	CanRefund  bool
	IsCOD      bool

	// Serviceable reports whether the shipping pincode is in the delivery area.
	Serviceable bool
	// Breakdown is the order priced under the current settings, or nil when
	// the settings cannot be priced.
	Breakdown *fee.Breakdown
}

// Detail loads an order and assembles its admin view. Fees are recomputed
// from st; the COD fee only applies to COD orders.
func (s *Service) Detail(ctx context.Context, id string, st *settings.StoreSettings) (*Detail, error) {
	o, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	d := &Detail{
		Order:       o,
		Timeline:    DeriveTimeline(o.Status),
		CanInvoice:  o.CanInvoice(),
		CanRefund:   o.CanRefund(),
		IsCOD:       o.IsCOD(),
		Serviceable: st.IsServiceable(o.ShippingAddress.Zip),
	}

	priced := *st
	if !d.IsCOD {
		priced.EnableCodFee = false
	}
	b, err := fee.Quote(o.Subtotal(), &priced, fee.Extras{GiftWrap: o.IsGiftWrapped})
	if err != nil {
		zctx.From(ctx).Warn("Cannot price order", zap.String("order_id", o.ID), zap.Error(err))
		return d, nil
	}
	d.Breakdown = &b
	return d, nil
}
