package orders

import (
	"strings"

	"github.com/mrussa/orderhook/internal/shopify"
)

const (
	AttrSIMType        = "Physical SIM / eSIM"
	PropActivationPlan = "Activation Plan"
)

func FromWebhook(src shopify.Order) (Order, []Item) {
	o := Order{
		OrderID:           src.ID.String(),
		OrderNumber:       src.Name,
		CreatedAt:         src.CreatedAt,
		Customer:          customerName(src.Customer),
		FulfillmentStatus: src.FulfillmentStatus,
		FinancialStatus:   src.FinancialStatus,
		CancelledAt:       src.CancelledAt,
	}
	if a := src.ShippingAddress; a != nil {
		o.ShippingName = a.Name
		o.ShippingPhone = a.Phone
		o.ShippingCountry = a.CountryCode
	}

	simType := src.NoteAttributes.Lookup(AttrSIMType)

	items := make([]Item, 0, len(src.LineItems))
	for _, li := range src.LineItems {
		items = append(items, Item{
			OrderID:        o.OrderID,
			Title:          li.Title,
			SIMType:        simType,
			SIMNumber:      "",
			Quantity:       li.Quantity,
			ActivationPlan: li.Properties.Lookup(PropActivationPlan),
		})
	}
	return o, items
}

// customerName joins then trims, so a lone last name has no leading space.
func customerName(c *shopify.Customer) string {
	var first, last string
	if c != nil {
		first, last = c.FirstName, c.LastName
	}
	return strings.TrimSpace(first + " " + last)
}
