package badgerdb

import (
	"context"
	"encoding/json"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"

	"github.com/belleza/salon/core/cart"
)

const cartKeyPrefix = "cart:"

type cartRepository struct {
	db  *badger.DB
	ttl time.Duration
}

var _ cart.Repository = (*cartRepository)(nil)

// NewCartRepository stores carts as JSON snapshots. Carts untouched for ttl expire (never when ttl <= 0).
func NewCartRepository(db *badger.DB, ttl time.Duration) *cartRepository {
	return &cartRepository{db: db, ttl: ttl}
}

func cartKey(owner string) []byte {
	return []byte(cartKeyPrefix + owner)
}

func (repo *cartRepository) Load(ctx context.Context, owner string) (*cart.Store, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := cart.NewStore()
	err := repo.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cartKey(owner))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, s)
		})
	})
	if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
		return nil, errors.Wrap(err, "reading cart")
	}
	return s, nil
}

func (repo *cartRepository) Save(ctx context.Context, owner string, s *cart.Store) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encoding cart")
	}
	return repo.db.Update(func(txn *badger.Txn) error {
		entry := badger.NewEntry(cartKey(owner), data)
		if repo.ttl > 0 {
			entry = entry.WithTTL(repo.ttl)
		}
		return txn.SetEntry(entry)
	})
}

func (repo *cartRepository) Delete(ctx context.Context, owner string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return repo.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(cartKey(owner))
	})
}
