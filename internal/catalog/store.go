package catalog

import "context"

type Product struct {
	ID    int     `json:"id"`
	Title string  `json:"title"`
	Price float64 `json:"price"`
	Image string  `json:"image"`
}

// Stock is the amount currently available for a product.
type Stock struct {
	ID     int `json:"id"`
	Amount int `json:"amount"`
}

type Store interface {
	Ping(ctx context.Context) error
	ListSortedByID(ctx context.Context) ([]Product, error)
	Get(ctx context.Context, id int) (Product, bool, error)
	Stock(ctx context.Context, id int) (Stock, bool, error)
}
