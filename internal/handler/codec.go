package handler

import (
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"

	"github.com/xenking/store-admin/internal/domain/fee"
	"github.com/xenking/store-admin/internal/domain/order"
	"github.com/xenking/store-admin/internal/domain/product"
	"github.com/xenking/store-admin/internal/domain/settings"
)

// Amounts are written as exact JSON numbers.
func encodeDecimal(e *jx.Encoder, d decimal.Decimal) {
	e.Num(jx.Num(d.String()))
}

func encodeTime(e *jx.Encoder, t time.Time) {
	if t.IsZero() {
		e.Null()
		return
	}
	e.Str(t.UTC().Format(time.RFC3339Nano))
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	switch d.Next() {
	case jx.Number:
		n, err := d.Num()
		if err != nil {
			return decimal.Zero, err
		}
		raw = n.String()
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return decimal.Zero, err
		}
		raw = s
	default:
		return decimal.Zero, errors.New("expected number")
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, errors.Wrapf(err, "parse amount %q", raw)
	}
	return v, nil
}

func decodeNullDecimal(d *jx.Decoder) (decimal.NullDecimal, error) {
	if d.Next() == jx.Null {
		return decimal.NullDecimal{}, d.Null()
	}
	v, err := decodeDecimal(d)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return decimal.NewNullDecimal(v), nil
}

func encodeSettings(e *jx.Encoder, s *settings.StoreSettings) {
	e.ObjStart()
	e.FieldStart("store_name")
	e.Str(s.StoreName)
	e.FieldStart("support_email")
	e.Str(s.SupportEmail)
	e.FieldStart("support_phone")
	e.Str(s.SupportPhone)
	e.FieldStart("store_description")
	e.Str(s.StoreDescription)
	e.FieldStart("pincodes")
	e.ArrStart()
	for _, p := range s.Pincodes {
		e.Str(p)
	}
	e.ArrEnd()
	e.FieldStart("shipping_charge")
	encodeDecimal(e, s.ShippingCharge)
	e.FieldStart("free_shipping_threshold")
	if s.FreeShippingThreshold.Valid {
		encodeDecimal(e, s.FreeShippingThreshold.Decimal)
	} else {
		e.Null()
	}
	e.FieldStart("is_cod_enabled")
	e.Bool(s.IsCodEnabled)
	e.FieldStart("is_stripe_enabled")
	e.Bool(s.IsStripeEnabled)
	e.FieldStart("enable_cod_fee")
	e.Bool(s.EnableCodFee)
	e.FieldStart("cod_fee_type")
	e.Str(string(s.CodFeeType))
	e.FieldStart("cod_fee_percentage")
	encodeDecimal(e, s.CodFeePercentage)
	e.FieldStart("cod_fee_fixed")
	encodeDecimal(e, s.CodFeeFixed)
	e.FieldStart("cod_fee_min_order")
	encodeDecimal(e, s.CodFeeMinOrder)
	e.FieldStart("gift_wrap_fee")
	encodeDecimal(e, s.GiftWrapFee)
	e.FieldStart("loyalty_rate")
	encodeDecimal(e, s.LoyaltyRate)
	e.FieldStart("email_alerts")
	e.Bool(s.EmailAlerts)
	e.FieldStart("sms_alerts")
	e.Bool(s.SmsAlerts)
	e.FieldStart("updated_at")
	encodeTime(e, s.UpdatedAt)
	e.ObjEnd()
}

// decodeSettingsField applies a single settings field to s. It reports false
// for keys that are not settings fields, leaving the value unread.
func decodeSettingsField(d *jx.Decoder, key string, s *settings.StoreSettings) (bool, error) {
	var err error
	switch key {
	case "store_name":
		s.StoreName, err = d.Str()
	case "support_email":
		s.SupportEmail, err = d.Str()
	case "support_phone":
		s.SupportPhone, err = d.Str()
	case "store_description":
		s.StoreDescription, err = d.Str()
	case "pincodes":
		s.Pincodes = s.Pincodes[:0:0]
		err = d.Arr(func(d *jx.Decoder) error {
			p, err := d.Str()
			if err != nil {
				return err
			}
			s.Pincodes = append(s.Pincodes, p)
			return nil
		})
	case "shipping_charge":
		s.ShippingCharge, err = decodeDecimal(d)
	case "free_shipping_threshold":
		s.FreeShippingThreshold, err = decodeNullDecimal(d)
	case "is_cod_enabled":
		s.IsCodEnabled, err = d.Bool()
	case "is_stripe_enabled":
		s.IsStripeEnabled, err = d.Bool()
	case "enable_cod_fee":
		s.EnableCodFee, err = d.Bool()
	case "cod_fee_type":
		var raw string
		raw, err = d.Str()
		s.CodFeeType = settings.FeeType(raw)
	case "cod_fee_percentage":
		s.CodFeePercentage, err = decodeDecimal(d)
	case "cod_fee_fixed":
		s.CodFeeFixed, err = decodeDecimal(d)
	case "cod_fee_min_order":
		s.CodFeeMinOrder, err = decodeDecimal(d)
	case "gift_wrap_fee":
		s.GiftWrapFee, err = decodeDecimal(d)
	case "loyalty_rate":
		s.LoyaltyRate, err = decodeDecimal(d)
	case "email_alerts":
		s.EmailAlerts, err = d.Bool()
	case "sms_alerts":
		s.SmsAlerts, err = d.Bool()
	default:
		return false, nil
	}
	if err != nil {
		return true, badRequest("field %s: %v", key, err)
	}
	return true, nil
}

func encodeBreakdown(e *jx.Encoder, b *fee.Breakdown) {
	if b == nil {
		e.Null()
		return
	}
	parts := []struct {
		name  string
		value decimal.Decimal
	}{
		{"subtotal", b.Subtotal},
		{"shipping", b.Shipping},
		{"cod_fee", b.Cod},
		{"gift_wrap", b.GiftWrap},
		{"discount", b.Discount},
		{"total", b.Total},
	}

	e.ObjStart()
	for _, p := range parts {
		e.FieldStart(p.name)
		encodeDecimal(e, p.value)
	}
	e.FieldStart("display")
	e.ObjStart()
	for _, p := range parts {
		e.FieldStart(p.name)
		e.Str(fee.Display(p.value))
	}
	e.ObjEnd()
	e.ObjEnd()
}

func encodeOrder(e *jx.Encoder, o *order.Order) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(o.ID)
	e.FieldStart("customer_name")
	e.Str(o.CustomerName)
	e.FieldStart("customer_phone")
	e.Str(o.CustomerPhone)
	e.FieldStart("shipping_address")
	e.ObjStart()
	e.FieldStart("line1")
	e.Str(o.ShippingAddress.Line1)
	e.FieldStart("city")
	e.Str(o.ShippingAddress.City)
	e.FieldStart("state")
	e.Str(o.ShippingAddress.State)
	e.FieldStart("zip")
	e.Str(o.ShippingAddress.Zip)
	e.ObjEnd()
	e.FieldStart("payment_method")
	e.Str(o.PaymentMethod)
	e.FieldStart("status")
	e.Str(string(o.Status))
	e.FieldStart("payment_status")
	e.Str(string(o.PaymentStatus))
	e.FieldStart("total_amount")
	encodeDecimal(e, o.TotalAmount)
	e.FieldStart("is_gift_wrapped")
	e.Bool(o.IsGiftWrapped)
	e.FieldStart("gstin")
	e.Str(o.GSTIN)
	e.FieldStart("created_at")
	encodeTime(e, o.CreatedAt)
	e.FieldStart("updated_at")
	encodeTime(e, o.UpdatedAt)
	if o.Items != nil {
		e.FieldStart("items")
		e.ArrStart()
		for _, it := range o.Items {
			encodeItem(e, it)
		}
		e.ArrEnd()
	}
	e.ObjEnd()
}

func encodeItem(e *jx.Encoder, it order.Item) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(it.ID)
	e.FieldStart("product_id")
	e.Str(it.ProductID)
	e.FieldStart("product_name")
	e.Str(it.ProductName)
	e.FieldStart("quantity")
	e.Int(it.Quantity)
	e.FieldStart("price_at_purchase")
	encodeDecimal(e, it.PriceAtPurchase)
	e.FieldStart("line_total")
	encodeDecimal(e, it.LineTotal())
	e.FieldStart("variant_color")
	e.Str(it.VariantColor)
	e.FieldStart("variant_size")
	e.Str(it.VariantSize)
	e.ObjEnd()
}

func encodeTimeline(e *jx.Encoder, t order.Timeline) {
	e.ArrStart()
	for _, s := range t {
		e.ObjStart()
		e.FieldStart("stage")
		e.Str(string(s.Stage))
		e.FieldStart("reached")
		e.Bool(s.Reached)
		e.ObjEnd()
	}
	e.ArrEnd()
}

func encodeChange(e *jx.Encoder, c order.Change) {
	e.ObjStart()
	e.FieldStart("field")
	e.Str(string(c.Field))
	e.FieldStart("from")
	e.Str(c.From)
	e.FieldStart("to")
	e.Str(c.To)
	e.FieldStart("regression")
	e.Bool(c.Regression)
	if c.Note != "" {
		e.FieldStart("note")
		e.Str(c.Note)
	}
	if c.TraceID != "" {
		e.FieldStart("trace_id")
		e.Str(c.TraceID)
	}
	e.FieldStart("at")
	encodeTime(e, c.At)
	e.ObjEnd()
}

func encodeProduct(e *jx.Encoder, p product.Product) {
	e.ObjStart()
	e.FieldStart("id")
	e.Str(p.ID)
	e.FieldStart("name")
	e.Str(p.Name)
	e.FieldStart("inventory_count")
	e.Int(p.InventoryCount)
	e.FieldStart("image")
	e.Str(p.Image)
	e.ObjEnd()
}
