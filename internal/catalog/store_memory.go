package catalog

import (
	"context"
	"sort"
	"sync"
)

type MemStore struct {
	mu       sync.RWMutex
	products map[int]Product
	stock    map[int]int
}

func NewMemStore() *MemStore {
	return &MemStore{
		products: map[int]Product{},
		stock:    map[int]int{},
	}
}

// NewSeededMemStore returns a store holding the demo storefront catalog.
func NewSeededMemStore() *MemStore {
	s := NewMemStore()
	s.Put(Product{ID: 1, Title: "Tênis de Caminhada Leve Confortável", Price: 179.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis1.jpg"}, 3)
	s.Put(Product{ID: 2, Title: "Tênis VR Caminhada Confortável Detalhes Couro Masculino", Price: 139.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis2.jpg"}, 5)
	s.Put(Product{ID: 3, Title: "Tênis Adidas Duramo Lite 2.0", Price: 219.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis3.jpg"}, 2)
	s.Put(Product{ID: 4, Title: "Tênis Nike Revolution 5 Masculino", Price: 159.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis4.jpg"}, 1)
	s.Put(Product{ID: 5, Title: "Tênis Adidas Ultraboost 20", Price: 799.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis5.jpg"}, 5)
	s.Put(Product{ID: 6, Title: "Tênis Puma Softride Enzo", Price: 259.9, Image: "https://rocketseat-cdn.s3-sa-east-1.amazonaws.com/modulo-redux/tenis6.jpg"}, 10)
	return s
}

// Put inserts or replaces a product together with its stock level.
func (s *MemStore) Put(p Product, stock int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.products[p.ID] = p
	s.stock[p.ID] = stock
}

// SetStock changes the available amount of a known product.
func (s *MemStore) SetStock(id, amount int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[id]; !ok {
		return false
	}
	s.stock[id] = amount
	return true
}

func (s *MemStore) Ping(ctx context.Context) error { return nil }

func (s *MemStore) ListSortedByID(ctx context.Context) ([]Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemStore) Get(ctx context.Context, id int) (Product, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.products[id]
	return p, ok, nil
}

func (s *MemStore) Stock(ctx context.Context, id int) (Stock, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	amount, ok := s.stock[id]
	if !ok {
		return Stock{}, false, nil
	}
	return Stock{ID: id, Amount: amount}, true, nil
}
