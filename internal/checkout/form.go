// Package checkout implements the order/quote submission pipeline:
// form validation, payload building, submission to the order desk, and
// payment-status polling.
package checkout

import "strings"

// SupplierStatusSupplier is the product classification that requires
// the customer to tick the supplier confirmation checkbox.
const SupplierStatusSupplier = "supplier"

// Form is the collected state of the place-order form. String fields
// carry the raw values as entered; the builder is responsible for
// mapping them onto the wire payload.
type Form struct {
	FirstName string
	LastName  string
	Email     string
	Phone     string

	ProductName string
	ProductURL  string
	SKU         string
	ZohoID      string
	Quantity    string

	PriceNZD          string
	UnitPriceNZD      string
	TotalUnitPriceNZD string
	UnitGST           string
	TotalGST          string
	TotalPrice        string
	TotalAmount       string
	ShippingFee       string

	// Delivery is "true" when the customer chose courier delivery
	// rather than collection.
	Delivery    string
	PayInPerson string
	Address     string
	Message     string
	PickupDate  string
	PickupTime  string

	SupplierStatus string
	SupplierName   string
	AutoSupplier   string
	SupplierItemID string

	// SupplierConfirmed mirrors the confirmation checkbox shown for
	// supplier-classified products.
	SupplierConfirmed bool
}

// FieldError is one inline validation message, anchored to a field.
type FieldError struct {
	Field   string
	Message string
}

// Result is the outcome of one validation pass. It is pure data: the
// presentation layer decides how to render banners, inline messages,
// and where to scroll.
type Result struct {
	FieldErrors []FieldError

	// NoProduct is the hard "no product selected" banner condition.
	NoProduct bool

	// SupplierUnconfirmed is set when a supplier-classified product is
	// ordered without ticking the confirmation checkbox.
	SupplierUnconfirmed bool
}

// OK reports whether the form may be submitted.
func (r Result) OK() bool {
	return len(r.FieldErrors) == 0 && !r.NoProduct && !r.SupplierUnconfirmed
}

// Anchor names for error rendering and scroll targets.
const (
	AnchorFirstName = "first_name_order"
	AnchorLastName  = "last_name_order"
	AnchorEmail     = "email_order"
	AnchorPhone     = "phone_order"
	AnchorNoProduct = "no_product_banner"
	AnchorSupplier  = "supplier_confirmation"
)

// ScrollTarget returns the anchor the page should scroll to, or ""
// when the form is valid. The supplier-confirmation error is a
// secondary concern: it is only the target when nothing else failed.
func (r Result) ScrollTarget() string {
	if r.NoProduct {
		return AnchorNoProduct
	}
	if len(r.FieldErrors) > 0 {
		return r.FieldErrors[0].Field
	}
	if r.SupplierUnconfirmed {
		return AnchorSupplier
	}
	return ""
}

// Validate checks the required-field and cross-field rules. Each call
// produces a fresh Result, so re-validation after the customer edits
// the form never accumulates stale errors.
func Validate(form Form) Result {
	var res Result

	required := []struct {
		anchor  string
		value   string
		message string
	}{
		{AnchorFirstName, form.FirstName, "First name is required"},
		{AnchorLastName, form.LastName, "Last name is required"},
		{AnchorEmail, form.Email, "Email is required"},
		{AnchorPhone, form.Phone, "Phone number is required"},
	}
	for _, f := range required {
		if strings.TrimSpace(f.value) == "" {
			res.FieldErrors = append(res.FieldErrors, FieldError{Field: f.anchor, Message: f.message})
		}
	}

	if strings.TrimSpace(form.ProductName) == "" {
		res.NoProduct = true
	}

	if form.SupplierStatus == SupplierStatusSupplier && !form.SupplierConfirmed {
		res.SupplierUnconfirmed = true
	}

	return res
}
