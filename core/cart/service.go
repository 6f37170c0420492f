package cart

import (
	"context"
	"sync"

	"github.com/pkg/errors"

	"github.com/belleza/salon/core/product"
)

var ErrItemNotFound = errors.New("item not in cart")

type (
	// Repository persists one cart per owner. Load returns an empty Store for unknown owners.
	Repository interface {
		Load(ctx context.Context, owner string) (*Store, error)
		Save(ctx context.Context, owner string, s *Store) error
		Delete(ctx context.Context, owner string) error
	}

	ProductService interface {
		GetByID(ctx context.Context, id string) (product.Product, error)
	}

	Service struct {
		repo    Repository
		prodSvc ProductService
		locks   *ownerLocks
	}
)

func NewService(repo Repository, prodSvc ProductService) *Service {
	return &Service{
		repo:    repo,
		prodSvc: prodSvc,
		locks:   newOwnerLocks(),
	}
}

func (svc *Service) Get(ctx context.Context, owner string) (Summary, error) {
	s, err := svc.repo.Load(ctx, owner)
	if err != nil {
		return Summary{}, errors.Wrap(err, "loading cart")
	}
	return s.Summary(), nil
}

// AddProduct adds one unit of a catalogue product to the owner's cart.
func (svc *Service) AddProduct(ctx context.Context, owner, productID string) (Summary, error) {
	prod, err := svc.prodSvc.GetByID(ctx, productID)
	if err != nil {
		return Summary{}, err
	}
	return svc.mutate(ctx, owner, func(s *Store) error {
		s.AddItem(Item{
			ID:    prod.ID,
			Name:  prod.Name,
			Price: prod.Price,
			Image: prod.Image,
		})
		return nil
	})
}

func (svc *Service) SetQuantity(ctx context.Context, owner, itemID string, n int) (Summary, error) {
	return svc.mutate(ctx, owner, func(s *Store) error {
		if !s.Has(itemID) {
			return ErrItemNotFound
		}
		s.SetQuantity(itemID, n)
		return nil
	})
}

func (svc *Service) RemoveItem(ctx context.Context, owner, itemID string) (Summary, error) {
	return svc.mutate(ctx, owner, func(s *Store) error {
		s.RemoveItem(itemID)
		return nil
	})
}

func (svc *Service) Clear(ctx context.Context, owner string) error {
	unlock := svc.locks.lock(owner)
	defer unlock()
	return errors.Wrap(svc.repo.Delete(ctx, owner), "deleting cart")
}

func (svc *Service) mutate(ctx context.Context, owner string, fn func(s *Store) error) (Summary, error) {
	unlock := svc.locks.lock(owner)
	defer unlock()

	s, err := svc.repo.Load(ctx, owner)
	if err != nil {
		return Summary{}, errors.Wrap(err, "loading cart")
	}
	if err = fn(s); err != nil {
		return Summary{}, err
	}
	if err = svc.repo.Save(ctx, owner, s); err != nil {
		return Summary{}, errors.Wrap(err, "saving cart")
	}
	return s.Summary(), nil
}

// ownerLocks hands out one mutex per owner, dropping it once no goroutine holds or waits for it.
type ownerLocks struct {
	mu    sync.Mutex
	locks map[string]*ownerLock
}

type ownerLock struct {
	sync.Mutex
	refs int
}

func newOwnerLocks() *ownerLocks {
	return &ownerLocks{locks: make(map[string]*ownerLock)}
}

func (ol *ownerLocks) lock(owner string) (unlock func()) {
	ol.mu.Lock()
	l, ok := ol.locks[owner]
	if !ok {
		l = &ownerLock{}
		ol.locks[owner] = l
	}
	l.refs++
	ol.mu.Unlock()

	l.Lock()
	return func() {
		l.Unlock()
		ol.mu.Lock()
		l.refs--
		if l.refs == 0 {
			delete(ol.locks, owner)
		}
		ol.mu.Unlock()
	}
}
