package order

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"

	"github.com/xenking/store-admin/internal/domain/settings"
)

// --- Mock implementations ---

type mockOrderRepo struct {
	mu       sync.Mutex
	byID     map[string]*Order
	changes  []Change
	applyErr error
	listErr  error
	lastList Filter
}

func newOrderRepo(orders ...Order) *mockOrderRepo {
	byID := make(map[string]*Order, len(orders))
	for i := range orders {
		byID[orders[i].ID] = &orders[i]
	}
	return &mockOrderRepo{byID: byID}
}

func (m *mockOrderRepo) Get(_ context.Context, id string) (*Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	o, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return o.Clone(), nil
}

func (m *mockOrderRepo) List(_ context.Context, f Filter) ([]Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastList = f
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]Order, 0, len(m.byID))
	for _, o := range m.byID {
		if f.Status != "" && o.Status != f.Status {
			continue
		}
		out = append(out, *o)
	}
	return out, nil
}

func (m *mockOrderRepo) ApplyChange(_ context.Context, c Change) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.applyErr != nil {
		return m.applyErr
	}
	o, ok := m.byID[c.OrderID]
	if !ok {
		return ErrNotFound
	}
	switch c.Field {
	case FieldStatus:
		o.Status = Status(c.To)
	case FieldPaymentStatus:
		o.PaymentStatus = PaymentStatus(c.To)
	}
	m.changes = append(m.changes, c)
	return nil
}

func (m *mockOrderRepo) History(_ context.Context, id string) ([]Change, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []Change
	for _, c := range m.changes {
		if c.OrderID == id {
			out = append(out, c)
		}
	}
	return out, nil
}

// --- Helpers ---

var fixedNow = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func newTestOrder(id string, status Status, payment PaymentStatus) Order {
	return Order{
		ID:              id,
		CustomerName:    "Asha Rao",
		CustomerPhone:   "+91 98450 00000",
		ShippingAddress: Address{Line1: "12 MG Road", City: "Bengaluru", State: "KA", Zip: "560001"},
		PaymentMethod:   "COD",
		Status:          status,
		PaymentStatus:   payment,
		TotalAmount:     decimal.RequireFromString("1020"),
		Items: []Item{
			{ID: "i1", ProductID: "p1", ProductName: "Kurta", Quantity: 2, PriceAtPurchase: decimal.RequireFromString("400")},
			{ID: "i2", ProductID: "p2", ProductName: "Dupatta", Quantity: 1, PriceAtPurchase: decimal.RequireFromString("200")},
		},
	}
}

func newTestService(t *testing.T, repo Repository) *Service {
	t.Helper()
	svc, err := NewService(repo, noop.NewMeterProvider())
	require.NoError(t, err)
	svc.now = func() time.Time { return fixedNow }
	return svc
}

// --- Tests ---

func TestUpdateStatus(t *testing.T) {
	o := newTestOrder("o1", StatusPending, PaymentUnpaid)
	repo := newOrderRepo(o)
	svc := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), &o, StatusShipped)
	require.NoError(t, err)

	assert.Equal(t, StatusShipped, updated.Status)
	assert.Equal(t, fixedNow, updated.UpdatedAt)
	assert.Equal(t, StatusPending, o.Status, "input must not be mutated")

	require.Len(t, repo.changes, 1)
	c := repo.changes[0]
	assert.Equal(t, "o1", c.OrderID)
	assert.Equal(t, FieldStatus, c.Field)
	assert.Equal(t, "Pending", c.From)
	assert.Equal(t, "Shipped", c.To)
	assert.False(t, c.Regression)
}

func TestUpdateStatus_Twice(t *testing.T) {
	o := newTestOrder("o1", StatusProcessing, PaymentUnpaid)
	repo := newOrderRepo(o)
	svc := newTestService(t, repo)
	ctx := context.Background()

	first, err := svc.UpdateStatus(ctx, &o, StatusShipped)
	require.NoError(t, err)
	second, err := svc.UpdateStatus(ctx, first, StatusShipped)
	require.NoError(t, err)

	assert.Equal(t, StatusShipped, second.Status)
	require.Len(t, repo.changes, 2, "one write per call")
	assert.Equal(t, "Shipped", repo.changes[1].From)
	assert.Equal(t, "Shipped", repo.changes[1].To)
	assert.False(t, repo.changes[1].Regression)
}

func TestUpdateStatus_PersistenceFailure(t *testing.T) {
	o := newTestOrder("o1", StatusPending, PaymentUnpaid)
	repo := newOrderRepo(o)
	repo.applyErr = errors.New("connection refused")
	svc := newTestService(t, repo)

	updated, err := svc.UpdateStatus(context.Background(), &o, StatusDelivered)
	require.Error(t, err)
	assert.Nil(t, updated)

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.Equal(t, "o1", pErr.OrderID)
	assert.Equal(t, StatusPending, o.Status)
	assert.Empty(t, repo.changes)
}

func TestUpdateStatus_UnknownOrder(t *testing.T) {
	o := newTestOrder("ghost", StatusPending, PaymentUnpaid)
	svc := newTestService(t, newOrderRepo())

	_, err := svc.UpdateStatus(context.Background(), &o, StatusProcessing)

	var pErr *PersistenceError
	require.ErrorAs(t, err, &pErr)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateStatus_UnknownValue(t *testing.T) {
	o := newTestOrder("o1", StatusPending, PaymentUnpaid)
	repo := newOrderRepo(o)
	svc := newTestService(t, repo)

	_, err := svc.UpdateStatus(context.Background(), &o, "Lost")
	require.ErrorIs(t, err, ErrUnknownStatus)
	assert.Empty(t, repo.changes, "invalid values are never written")
}

func TestUpdateStatus_Regressions(t *testing.T) {
	tests := []struct {
		from, to Status
		want     bool
	}{
		{StatusPending, StatusProcessing, false},
		{StatusShipped, StatusDelivered, false},
		{StatusShipped, StatusCancelled, false},
		{StatusPending, StatusCancelled, false},
		{StatusShipped, StatusProcessing, true},
		{StatusDelivered, StatusPending, true},
		{StatusDelivered, StatusCancelled, false},
		{StatusCancelled, StatusPending, true},
		{StatusCancelled, StatusDelivered, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := newTestOrder("o1", tt.from, PaymentUnpaid)
			repo := newOrderRepo(o)
			svc := newTestService(t, repo)

			updated, err := svc.UpdateStatus(context.Background(), &o, tt.to)
			require.NoError(t, err, "transitions are permissive")
			assert.Equal(t, tt.to, updated.Status)
			require.Len(t, repo.changes, 1)
			assert.Equal(t, tt.want, repo.changes[0].Regression)
		})
	}
}

func TestUpdatePaymentStatus(t *testing.T) {
	tests := []struct {
		from, to       PaymentStatus
		wantRegression bool
	}{
		{PaymentUnpaid, PaymentPaid, false},
		{PaymentPaid, PaymentRefunded, false},
		{PaymentPaid, PaymentUnpaid, true},
		{PaymentRefunded, PaymentPaid, true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"->"+string(tt.to), func(t *testing.T) {
			o := newTestOrder("o1", StatusDelivered, tt.from)
			repo := newOrderRepo(o)
			svc := newTestService(t, repo)

			updated, err := svc.UpdatePaymentStatus(context.Background(), &o, tt.to)
			require.NoError(t, err)
			assert.Equal(t, tt.to, updated.PaymentStatus)
			assert.Equal(t, tt.from, o.PaymentStatus)
			assert.Equal(t, StatusDelivered, updated.Status)

			require.Len(t, repo.changes, 1)
			assert.Equal(t, FieldPaymentStatus, repo.changes[0].Field)
			assert.Equal(t, tt.wantRegression, repo.changes[0].Regression)
		})
	}
}

func TestUpdatePaymentStatus_UnknownValue(t *testing.T) {
	o := newTestOrder("o1", StatusPending, PaymentUnpaid)
	svc := newTestService(t, newOrderRepo(o))

	_, err := svc.UpdatePaymentStatus(context.Background(), &o, "Pending")
	require.ErrorIs(t, err, ErrUnknownPaymentStatus)
}

func TestUpdateStatus_RecordsTrace(t *testing.T) {
	o := newTestOrder("o1", StatusPending, PaymentUnpaid)
	repo := newOrderRepo(o)
	svc := newTestService(t, repo)

	sc := trace.NewSpanContext(trace.SpanContextConfig{
		TraceID:    trace.TraceID{0x01, 0x02, 0x03},
		SpanID:     trace.SpanID{0x0a},
		TraceFlags: trace.FlagsSampled,
	})
	ctx := trace.ContextWithSpanContext(context.Background(), sc)

	_, err := svc.UpdateStatus(ctx, &o, StatusProcessing)
	require.NoError(t, err)
	require.Len(t, repo.changes, 1)
	assert.Equal(t, sc.TraceID().String(), repo.changes[0].TraceID)
	assert.Equal(t, sc.SpanID().String(), repo.changes[0].SpanID)
}

func TestHistory(t *testing.T) {
	o := newTestOrder("o1", StatusPending, PaymentUnpaid)
	repo := newOrderRepo(o)
	svc := newTestService(t, repo)
	ctx := context.Background()

	step, err := svc.UpdateStatus(ctx, &o, StatusProcessing)
	require.NoError(t, err)
	_, err = svc.UpdatePaymentStatus(ctx, step, PaymentPaid)
	require.NoError(t, err)

	got, err := svc.History(ctx, "o1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, FieldStatus, got[0].Field)
	assert.Equal(t, FieldPaymentStatus, got[1].Field)
}

func TestList_RejectsUnknownStatus(t *testing.T) {
	repo := newOrderRepo()
	svc := newTestService(t, repo)

	_, err := svc.List(context.Background(), Filter{Status: "Lost"})
	require.ErrorIs(t, err, ErrUnknownStatus)

	_, err = svc.List(context.Background(), Filter{Status: StatusPending, Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, 10, repo.lastList.Limit)
}

func TestDetail(t *testing.T) {
	st := settings.Fallback()
	st.ShippingCharge = decimal.NewFromInt(100)
	st.FreeShippingThreshold = decimal.NewNullDecimal(decimal.NewFromInt(999))
	st.EnableCodFee = true
	st.CodFeePercentage = decimal.NewFromInt(2)
	st.GiftWrapFee = decimal.NewFromInt(50)

	t.Run("cod order", func(t *testing.T) {
		o := newTestOrder("o1", StatusShipped, PaymentUnpaid)
		o.IsGiftWrapped = true
		svc := newTestService(t, newOrderRepo(o))

		d, err := svc.Detail(context.Background(), "o1", &st)
		require.NoError(t, err)

		assert.True(t, d.IsCOD)
		assert.True(t, d.CanInvoice)
		assert.False(t, d.CanRefund)
		assert.True(t, d.Timeline.Reached(StageShipped))
		assert.False(t, d.Timeline.Reached(StageDelivered))

		require.NotNil(t, d.Breakdown)
		// 1000 subtotal ships free, 2% cod, 50 gift wrap
		assert.True(t, decimal.NewFromInt(1000).Equal(d.Breakdown.Subtotal))
		assert.True(t, decimal.NewFromInt(20).Equal(d.Breakdown.Cod))
		assert.True(t, decimal.NewFromInt(1070).Equal(d.Breakdown.Total))
	})

	t.Run("prepaid order skips cod fee", func(t *testing.T) {
		o := newTestOrder("o2", StatusCancelled, PaymentPaid)
		o.PaymentMethod = "Stripe"
		svc := newTestService(t, newOrderRepo(o))

		d, err := svc.Detail(context.Background(), "o2", &st)
		require.NoError(t, err)

		assert.False(t, d.IsCOD)
		assert.False(t, d.CanInvoice)
		assert.True(t, d.CanRefund)
		require.NotNil(t, d.Breakdown)
		assert.True(t, d.Breakdown.Cod.IsZero())
		assert.True(t, st.EnableCodFee, "settings must not be mutated")
	})

	t.Run("unpriceable settings", func(t *testing.T) {
		bad := st
		bad.CodFeeType = "tiered"
		o := newTestOrder("o3", StatusPending, PaymentUnpaid)
		svc := newTestService(t, newOrderRepo(o))

		d, err := svc.Detail(context.Background(), "o3", &bad)
		require.NoError(t, err)
		assert.Nil(t, d.Breakdown)
	})

	t.Run("missing order", func(t *testing.T) {
		svc := newTestService(t, newOrderRepo())

		_, err := svc.Detail(context.Background(), "nope", &st)
		require.ErrorIs(t, err, ErrNotFound)
	})
}

func TestUpdateStatus_Note(t *testing.T) {
	o := newTestOrder("o1", StatusShipped, PaymentUnpaid)
	repo := newOrderRepo(o)
	svc := newTestService(t, repo)

	ctx := WithNote(context.Background(), "courier returned parcel")
	_, err := svc.UpdateStatus(ctx, &o, StatusProcessing)
	require.NoError(t, err)
	require.Len(t, repo.changes, 1)
	assert.Equal(t, "courier returned parcel", repo.changes[0].Note)
	assert.True(t, repo.changes[0].Regression)
}
