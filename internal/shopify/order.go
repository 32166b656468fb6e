package shopify

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var ErrMalformedPayload = errors.New("malformed order payload")

type Order struct {
	ID                json.Number `json:"id"`
	Name              string      `json:"name"`
	CreatedAt         *string     `json:"created_at"`
	Customer          *Customer   `json:"customer"`
	ShippingAddress   *Address    `json:"shipping_address"`
	FulfillmentStatus *string     `json:"fulfillment_status"`
	FinancialStatus   *string     `json:"financial_status"`
	CancelledAt       *string     `json:"cancelled_at"`
	NoteAttributes    Attributes  `json:"note_attributes"`
	LineItems         []LineItem  `json:"line_items"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type Address struct {
	Name        string `json:"name"`
	Phone       string `json:"phone"`
	CountryCode string `json:"country_code"`
}

type LineItem struct {
	Title      string     `json:"title"`
	Quantity   int        `json:"quantity"`
	Properties Attributes `json:"properties"`
}

type Attribute struct {
	Name  string `json:"name"`
	Value Value  `json:"value"`
}

type Attributes []Attribute

// Lookup returns the value of the first attribute named name, or "".
func (a Attributes) Lookup(name string) string {
	for _, at := range a {
		if at.Name == name {
			return string(at.Value)
		}
	}
	return ""
}

// Value is an attribute value. Shopify sends strings, but merchants' apps
// occasionally put numbers, booleans or JSON here; those keep their literal
// (compacted) text.
// null decodes to "".
type Value string

func (v *Value) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	switch {
	case bytes.Equal(b, []byte("null")):
		*v = ""
		return nil
	case len(b) > 0 && b[0] == '"':
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*v = Value(s)
		return nil
	case len(b) > 0 && (b[0] == '{' || b[0] == '['):
		var buf bytes.Buffer
		if err := json.Compact(&buf, b); err != nil {
			return err
		}
		*v = Value(buf.String())
		return nil
	default:
		*v = Value(b)
		return nil
	}
}

// ParseOrder decodes a webhook body. Numbers inside id are kept verbatim so
// large ids survive without float rounding.
func ParseOrder(body []byte) (Order, error) {
	var o Order
	if err := json.Unmarshal(body, &o); err != nil {
		return Order{}, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}
	if o.ID == "" {
		return Order{}, fmt.Errorf("%w: id missing", ErrMalformedPayload)
	}
	return o, nil
}
