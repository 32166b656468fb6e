package orders

const (
	TableOrders = "orders"
	TableItems  = "order_items"
)

// Order is a row of the orders table.
type Order struct {
	OrderID           string  `json:"order_id"`
	OrderNumber       string  `json:"order_number"`
	CreatedAt         *string `json:"created_at"`
	Customer          string  `json:"customer"`
	ShippingName      string  `json:"shipping_name"`
	ShippingPhone     string  `json:"shipping_phone"`
	ShippingCountry   string  `json:"shipping_country"`
	FulfillmentStatus *string `json:"fulfillment_status"`
	FinancialStatus   *string `json:"financial_status"`
	CancelledAt       *string `json:"cancelled_at"`
}

// Item is a row of the order_items table. SIMNumber is filled in later,
// after fulfilment, by a separate process.
type Item struct {
	OrderID        string `json:"order_id"`
	Title          string `json:"title"`
	SIMType        string `json:"sim_type"`
	SIMNumber      string `json:"sim_number"`
	Quantity       int    `json:"quantity"`
	ActivationPlan string `json:"activation_plan"`
}
