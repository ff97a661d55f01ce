package cart

import (
	"encoding/json"
	"errors"
	"fmt"
)

// Product is a cart line item: the catalog record plus the amount in the cart.
type Product struct {
	ID     int     `json:"id"`
	Title  string  `json:"title"`
	Price  float64 `json:"price"`
	Image  string  `json:"image"`
	Amount int     `json:"amount"`
}

// Cart keeps line items in insertion order.
type Cart []Product

func (c Cart) index(productID int) int {
	for i, p := range c {
		if p.ID == productID {
			return i
		}
	}
	return -1
}

func (c Cart) clone() Cart {
	out := make(Cart, len(c))
	copy(out, c)
	return out
}

// Validate checks the line item invariants: positive amounts and unique ids.
func (c Cart) Validate() error {
	seen := make(map[int]struct{}, len(c))
	for _, p := range c {
		if p.Amount < 1 {
			return fmt.Errorf("product %d: amount %d", p.ID, p.Amount)
		}
		if _, dup := seen[p.ID]; dup {
			return fmt.Errorf("product %d: duplicate line item", p.ID)
		}
		seen[p.ID] = struct{}{}
	}
	return nil
}

func Encode(c Cart) ([]byte, error) {
	if c == nil {
		c = Cart{}
	}
	return json.Marshal(c)
}

// Decode parses a stored cart. A value that parses but breaks the line item
// invariants is rejected like malformed JSON.
func Decode(b []byte) (Cart, error) {
	var c Cart
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, err
	}
	if c == nil {
		return nil, errors.New("stored cart is null")
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
