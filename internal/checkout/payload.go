package checkout

import "strings"

// OrderPayload is the wire format POSTed to {base}/create. Field names
// are fixed by the order-management backend.
type OrderPayload struct {
	FirstName string `json:"first_name_order"`
	LastName  string `json:"last_name_order"`
	Email     string `json:"email_order"`
	Phone     string `json:"phone_order"`

	ProductName string `json:"product_name_full"`
	Quantity    string `json:"quantity"`
	PriceNZD    string `json:"price_nzd"`
	ZohoID      string `json:"zoho_id"`
	SKU         string `json:"sku"`

	Delivery      string `json:"delivery"`
	PayInPerson   string `json:"pay_in_person"`
	CheckboxOrder string `json:"checkbox_order"`
	Address       string `json:"address"`
	Message       string `json:"message"`
	PickupDate    string `json:"date_picker_order"`
	PickupTime    string `json:"time_picker_order"`

	TotalPrice        string `json:"total_price"`
	TotalAmount       string `json:"total_amount"`
	ShippingFee       string `json:"shippingfee"`
	UnitGST           string `json:"unit_gst"`
	TotalGST          string `json:"total_gst"`
	UnitPriceNZD      string `json:"unit_price_nzd"`
	TotalUnitPriceNZD string `json:"total_unit_price_nzd"`

	SupplierStatus string `json:"supplier_status"`
	SupplierName   string `json:"supplier_name"`
	AutoSupplier   string `json:"auto_supplier"`
	SupplierItemID string `json:"supplier_item_id"`
}

// QuoteItem is one product line in a quote request.
type QuoteItem struct {
	ProductName  string `json:"product_name_full"`
	SKU          string `json:"sku"`
	ZohoID       string `json:"zoho_id"`
	Quantity     string `json:"quantity"`
	UnitPriceNZD string `json:"unit_price_nzd"`
	TotalPrice   string `json:"total_price"`
}

// QuotePayload is the wire format POSTed to {base}/create-quote. A
// quote may reference several products, so the lines are nested.
type QuotePayload struct {
	FirstName string `json:"first_name_order"`
	LastName  string `json:"last_name_order"`
	Email     string `json:"email_order"`
	Phone     string `json:"phone_order"`
	Message   string `json:"message"`

	Products []QuoteItem `json:"products"`
}

// BuildOrderPayload maps a validated form onto the wire payload. It is
// a pure function: no lookups, no clock, no network.
//
// The shipping fee override is deliberate: the fee only applies to
// courier deliveries, so anything else is forced to "0" regardless of
// what the fee field held.
func BuildOrderPayload(form Form) OrderPayload {
	shippingFee := strings.TrimSpace(form.ShippingFee)
	if shippingFee == "" || form.Delivery != "true" {
		shippingFee = "0"
	}

	checkbox := "false"
	if form.SupplierConfirmed {
		checkbox = "true"
	}

	return OrderPayload{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Email:     strings.TrimSpace(form.Email),
		Phone:     strings.TrimSpace(form.Phone),

		ProductName: strings.TrimSpace(form.ProductName),
		Quantity:    form.Quantity,
		PriceNZD:    form.PriceNZD,
		ZohoID:      form.ZohoID,
		SKU:         form.SKU,

		Delivery:      form.Delivery,
		PayInPerson:   form.PayInPerson,
		CheckboxOrder: checkbox,
		Address:       strings.TrimSpace(form.Address),
		Message:       strings.TrimSpace(form.Message),
		PickupDate:    form.PickupDate,
		PickupTime:    form.PickupTime,

		TotalPrice:        form.TotalPrice,
		TotalAmount:       form.TotalAmount,
		ShippingFee:       shippingFee,
		UnitGST:           form.UnitGST,
		TotalGST:          form.TotalGST,
		UnitPriceNZD:      form.UnitPriceNZD,
		TotalUnitPriceNZD: form.TotalUnitPriceNZD,

		SupplierStatus: form.SupplierStatus,
		SupplierName:   form.SupplierName,
		AutoSupplier:   form.AutoSupplier,
		SupplierItemID: form.SupplierItemID,
	}
}

// BuildQuotePayload maps the contact fields of a form plus one or more
// product lines onto the quote wire payload.
func BuildQuotePayload(form Form, items []QuoteItem) QuotePayload {
	return QuotePayload{
		FirstName: strings.TrimSpace(form.FirstName),
		LastName:  strings.TrimSpace(form.LastName),
		Email:     strings.TrimSpace(form.Email),
		Phone:     strings.TrimSpace(form.Phone),
		Message:   strings.TrimSpace(form.Message),
		Products:  items,
	}
}
