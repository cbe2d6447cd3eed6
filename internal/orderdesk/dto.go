package orderdesk

// createOrderRequest is the subset of the order payload the stub cares
// about; everything else is accepted and ignored.
type createOrderRequest struct {
	FirstName   string `json:"first_name_order"`
	LastName    string `json:"last_name_order"`
	Email       string `json:"email_order"`
	ProductName string `json:"product_name_full"`
	Quantity    string `json:"quantity"`
	TotalPrice  string `json:"total_price"`
}

type quoteProduct struct {
	ProductName string `json:"product_name_full"`
	Quantity    string `json:"quantity"`
}

type createQuoteRequest struct {
	FirstName string         `json:"first_name_order"`
	Email     string         `json:"email_order"`
	Products  []quoteProduct `json:"products"`
}

// createResponse is the shape the pipeline's submitter expects.
type createResponse struct {
	Token             string `json:"token"`
	TradeOrder        string `json:"trade_order"`
	OrderCreationTime string `json:"order_creation_time"`
}

type paymentLink struct {
	PaymentURL string `json:"payment_url"`
}

type paymentStatusResponse struct {
	Payments map[string]paymentLink `json:"payments"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
