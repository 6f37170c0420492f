package inmemdb

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/appointment"
	"github.com/belleza/salon/core/customer"
	"github.com/belleza/salon/core/product"
	"github.com/belleza/salon/core/staff"
	"github.com/belleza/salon/core/user"
)

type (
	// DB is a process-local database used by tests and demo runs.
	DB struct {
		user        *table[user.User]
		customer    *table[customer.Customer]
		staff       *table[staff.Staff]
		product     *table[product.Product]
		appointment *table[appointment.Appointment]
	}

	table[T any] struct {
		sync.RWMutex
		rows map[string]*T
	}
)

func newTable[T any]() *table[T] {
	return &table[T]{rows: make(map[string]*T)}
}

func Open() *DB {
	return &DB{
		user:        newTable[user.User](),
		customer:    newTable[customer.Customer](),
		staff:       newTable[staff.Staff](),
		product:     newTable[product.Product](),
		appointment: newTable[appointment.Appointment](),
	}
}

func newID() string {
	return uuid.New().String()
}

// all returns copies of the rows that satisfy keep. The caller must hold the lock.
func (t *table[T]) all(keep func(row T) bool) []T {
	rows := make([]T, 0, len(t.rows))
	for _, r := range t.rows {
		if keep == nil || keep(*r) {
			rows = append(rows, *r)
		}
	}
	return rows
}

func (t *table[T]) deleteByID(ids ...string) int {
	t.Lock()
	defer t.Unlock()
	cnt := 0
	for _, id := range ids {
		if _, ok := t.rows[id]; ok {
			delete(t.rows, id)
			cnt++
		}
	}
	return cnt
}

func contains(val, search string) bool {
	return strings.Contains(strings.ToLower(val), strings.ToLower(search))
}

// fieldFunc returns the value of a named column of a row.
type fieldFunc[T any] func(row T, field string) interface{}

// sortRows orders rows by the given orderings, falling back to `fallback`.
func sortRows[T any](rows []T, orderings []core.DBOrdering, fallback core.DBOrdering, field fieldFunc[T]) {
	orderings = append(orderings, fallback)
	sort.SliceStable(rows, func(i, j int) bool {
		for _, ord := range orderings {
			c := compare(field(rows[i], ord.Field), field(rows[j], ord.Field))
			if c == 0 {
				continue
			}
			if ord.Ascending {
				return c < 0
			}
			return c > 0
		}
		return false
	})
}

func compare(a, b interface{}) int {
	switch av := a.(type) {
	case string:
		return strings.Compare(strings.ToLower(av), strings.ToLower(b.(string)))
	case int:
		return av - b.(int)
	case bool:
		bv := b.(bool)
		switch {
		case av == bv:
			return 0
		case !av:
			return -1
		default:
			return 1
		}
	case float64:
		bv := b.(float64)
		switch {
		case av < bv:
			return -1
		case av > bv:
			return 1
		}
		return 0
	case time.Time:
		return av.Compare(b.(time.Time))
	case decimal.Decimal:
		return av.Cmp(b.(decimal.Decimal))
	}
	return 0
}

func floatOrZero(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}

func timeOrZero(t *time.Time) time.Time {
	if t == nil {
		return time.Time{}
	}
	return *t
}
