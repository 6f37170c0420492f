package cart

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func item(id string, price int64) Item {
	return Item{ID: id, Name: "Product " + id, Price: decimal.NewFromInt(price)}
}

func TestStore_AddItem(t *testing.T) {
	s := NewStore()
	s.AddItem(item("p1", 10))
	s.AddItem(item("p1", 10))

	items := s.Items()
	require.Len(t, items, 1)
	assert.Equal(t, 2, items[0].Quantity)
	assert.Equal(t, 1, s.ItemCount())
	assert.Equal(t, 2, s.TotalQuantity())
}

func TestStore_ZeroValue(t *testing.T) {
	var s Store
	assert.False(t, s.Has("p1"))
	s.RemoveItem("p1")
	s.SetQuantity("p1", 3)

	s.AddItem(item("p1", 10))
	s.AddItem(item("p1", 10))
	assert.True(t, s.Has("p1"))
	assert.Equal(t, 2, s.TotalQuantity())
	assert.True(t, s.TotalPrice().Equal(decimal.NewFromInt(20)))
}

func TestStore_AddItemIgnoresGivenQuantity(t *testing.T) {
	s := NewStore()
	it := item("p1", 10)
	it.Quantity = 7
	s.AddItem(it)
	assert.Equal(t, 1, s.Items()[0].Quantity)
}

func TestStore_SetQuantity(t *testing.T) {
	tests := []struct {
		name string
		qty  int
		want int
	}{
		{name: "positive", qty: 5, want: 5},
		{name: "one", qty: 1, want: 1},
		{name: "zero is ignored", qty: 0, want: 3},
		{name: "negative is ignored", qty: -2, want: 3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewStore()
			s.AddItem(item("p1", 10))
			s.SetQuantity("p1", 3)
			s.SetQuantity("p1", tt.qty)
			assert.Equal(t, tt.want, s.Items()[0].Quantity)
		})
	}
}

func TestStore_SetQuantityAbsent(t *testing.T) {
	s := NewStore()
	s.SetQuantity("nope", 4)
	assert.Zero(t, s.ItemCount())
}

func TestStore_RemoveItem(t *testing.T) {
	s := NewStore()
	s.AddItem(item("p1", 10))
	s.AddItem(item("p2", 20))
	s.AddItem(item("p3", 30))

	s.RemoveItem("absent")
	assert.Equal(t, 3, s.ItemCount())

	s.RemoveItem("p2")
	assert.Equal(t, 2, s.ItemCount())
	assert.False(t, s.Has("p2"))

	// index must follow the shifted entries
	s.SetQuantity("p3", 4)
	items := s.Items()
	assert.Equal(t, "p1", items[0].ID)
	assert.Equal(t, "p3", items[1].ID)
	assert.Equal(t, 4, items[1].Quantity)
}

func TestStore_TotalPrice(t *testing.T) {
	s := NewStore()
	assert.True(t, s.TotalPrice().IsZero())

	s.AddItem(Item{ID: "a", Price: decimal.RequireFromString("19.99")})
	s.AddItem(Item{ID: "b", Price: decimal.RequireFromString("0.01")})
	s.SetQuantity("a", 3)
	s.AddItem(Item{ID: "b"})

	want := decimal.Zero
	for _, it := range s.Items() {
		want = want.Add(it.Price.Mul(decimal.NewFromInt(int64(it.Quantity))))
	}
	assert.True(t, want.Equal(s.TotalPrice()))
	assert.Equal(t, "59.99", s.TotalPrice().StringFixed(2))
}

func TestStore_Scenario(t *testing.T) {
	s := NewStore()
	s.AddItem(item("p1", 168))
	s.AddItem(item("p1", 168))
	s.AddItem(item("p2", 45))
	s.SetQuantity("p1", 1)

	assert.Equal(t, "213", s.TotalPrice().String())
	assert.Equal(t, 2, s.ItemCount())
	assert.Equal(t, 2, s.TotalQuantity())
}

func TestStore_Clear(t *testing.T) {
	s := NewStore()
	s.AddItem(item("p1", 1))
	s.Clear()
	assert.Zero(t, s.ItemCount())
	assert.Empty(t, s.Items())

	s.AddItem(item("p1", 1))
	assert.Equal(t, 1, s.TotalQuantity())
}

func TestStore_JSON(t *testing.T) {
	s := NewStore()
	s.AddItem(item("p1", 168))
	s.AddItem(item("p2", 45))
	s.SetQuantity("p2", 2)

	data, err := json.Marshal(s)
	require.NoError(t, err)

	got := NewStore()
	require.NoError(t, json.Unmarshal(data, got))
	assert.Equal(t, s.Items(), got.Items())

	got.AddItem(item("p2", 45))
	assert.Equal(t, 3, got.Items()[1].Quantity)
}

func TestStore_UnmarshalRepairsSnapshot(t *testing.T) {
	data := []byte(`{"items":[{"id":"a","price":"2","quantity":0},{"id":"a","price":"2","quantity":2}]}`)
	s := NewStore()
	require.NoError(t, json.Unmarshal(data, s))
	require.Equal(t, 1, s.ItemCount())
	assert.Equal(t, 3, s.TotalQuantity())
}
