package stripe

import (
	"encoding/json"
	"fmt"
)

// CheckoutSession is the subset of Stripe's checkout session record the
// verifier cares about. PaymentStatus must be "paid"; Status, when the
// record carries one at all, must be "complete".
type CheckoutSession struct {
	ID            string `json:"id"`
	PaymentStatus string `json:"payment_status"`
	Status        string `json:"status"`
}

// ProductRef is a line item's product reference. Stripe returns either a
// bare product identifier string or, when expanded, the full product
// object; both decode into the same internal form so nothing outside this
// package sees the ambiguity.
type ProductRef struct {
	id string
}

func (p *ProductRef) UnmarshalJSON(data []byte) error {
	var id string
	if err := json.Unmarshal(data, &id); err == nil {
		p.id = id
		return nil
	}

	var expanded struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(data, &expanded); err != nil {
		return fmt.Errorf("error unmarshaling product reference: %w", err)
	}
	p.id = expanded.ID
	return nil
}

// ID returns the referenced product identifier, or "" when the line item
// carried no usable product reference.
func (p ProductRef) ID() string {
	return p.id
}

// LineItem is one purchased item on a checkout session.
type LineItem struct {
	Price struct {
		Product ProductRef `json:"product"`
	} `json:"price"`
}

// LineItemList is Stripe's paginated line item collection.
type LineItemList struct {
	Data []LineItem `json:"data"`
}
