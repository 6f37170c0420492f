package cart

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Item is one line of a cart. A product appears at most once per cart.
type Item struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Price    decimal.Decimal `json:"price"`
	Quantity int             `json:"quantity"`
	Image    string          `json:"image"`
}

// Store is the working set of products selected by one owner.
// The zero value is an empty cart ready to use.
// It is not safe for concurrent use; Service serialises access per owner.
type Store struct {
	items []Item
	index map[string]int // item ID -> position in items
}

func NewStore() *Store {
	return &Store{index: make(map[string]int)}
}

// AddItem increments the quantity of an existing entry, or inserts item with a quantity of 1.
func (s *Store) AddItem(item Item) {
	if i, ok := s.index[item.ID]; ok {
		s.items[i].Quantity++
		return
	}
	if s.index == nil {
		s.index = make(map[string]int)
	}
	item.Quantity = 1
	s.index[item.ID] = len(s.items)
	s.items = append(s.items, item)
}

// RemoveItem deletes the entry with the given ID, if any.
func (s *Store) RemoveItem(id string) {
	i, ok := s.index[id]
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, id)
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID] = j
	}
}

// SetQuantity sets the quantity of an existing entry. Non-positive quantities are ignored.
func (s *Store) SetQuantity(id string, n int) {
	if n <= 0 {
		return
	}
	if i, ok := s.index[id]; ok {
		s.items[i].Quantity = n
	}
}

// Has reports whether the cart holds an entry for id.
func (s *Store) Has(id string) bool {
	_, ok := s.index[id]
	return ok
}

func (s *Store) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return total
}

// ItemCount returns the number of distinct entries.
func (s *Store) ItemCount() int {
	return len(s.items)
}

// TotalQuantity returns the number of units across all entries.
func (s *Store) TotalQuantity() int {
	n := 0
	for _, item := range s.items {
		n += item.Quantity
	}
	return n
}

func (s *Store) Clear() {
	s.items = nil
	s.index = make(map[string]int)
}

// Items returns a copy of the entries in insertion order.
func (s *Store) Items() []Item {
	items := make([]Item, len(s.items))
	copy(items, s.items)
	return items
}

type snapshot struct {
	Items []Item `json:"items"`
}

func (s *Store) MarshalJSON() ([]byte, error) {
	return json.Marshal(snapshot{Items: s.Items()})
}

// UnmarshalJSON restores a snapshot. Duplicate IDs are merged and invalid quantities reset to 1.
func (s *Store) UnmarshalJSON(data []byte) error {
	var snap snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return err
	}
	s.Clear()
	for _, item := range snap.Items {
		qty := item.Quantity
		if qty < 1 {
			qty = 1
		}
		if i, ok := s.index[item.ID]; ok {
			s.items[i].Quantity += qty
			continue
		}
		item.Quantity = qty
		s.index[item.ID] = len(s.items)
		s.items = append(s.items, item)
	}
	return nil
}

// Summary is a read-only view of a cart with its derived totals.
type Summary struct {
	Items         []Item          `json:"items"`
	TotalPrice    decimal.Decimal `json:"total_price"`
	ItemCount     int             `json:"item_count"`
	TotalQuantity int             `json:"total_quantity"`
}

func (s *Store) Summary() Summary {
	return Summary{
		Items:         s.Items(),
		TotalPrice:    s.TotalPrice(),
		ItemCount:     s.ItemCount(),
		TotalQuantity: s.TotalQuantity(),
	}
}
