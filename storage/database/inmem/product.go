package inmemdb

import (
	"context"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/product"
)

type productRepository struct {
	db *table[product.Product]
}

var _ product.Repository = (*productRepository)(nil)

func NewProductRepository(db *DB) *productRepository {
	return &productRepository{db: db.product}
}

func (repo *productRepository) CreateProduct(_ context.Context, p product.Product) (product.Product, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	p.ID = newID()
	repo.db.rows[p.ID] = &p
	return p, nil
}

func (repo *productRepository) QueryProducts(_ context.Context, filter *product.QueryFilter, ordering []core.DBOrdering) ([]product.Product, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	products := repo.db.all(func(p product.Product) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" && !contains(p.Name, filter.Search) && !contains(p.Description, filter.Search) {
			return false
		}
		if filter.Category != "" && p.Category != filter.Category {
			return false
		}
		if filter.InStock != nil && (p.Stock > 0) != *filter.InStock {
			return false
		}
		return true
	})
	sortRows(products, ordering, core.DBOrdering{Field: "name", Ascending: true}, productField)
	return products, nil
}

func productField(p product.Product, field string) interface{} {
	switch field {
	case "category":
		return p.Category
	case "price":
		return p.Price
	case "stock":
		return p.Stock
	case "created_at":
		return p.CreatedAt
	case "updated_at":
		return p.UpdatedAt
	default:
		return p.Name
	}
}

func (repo *productRepository) GetProductByID(_ context.Context, id string) (product.Product, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if p, ok := repo.db.rows[id]; ok {
		return *p, nil
	}
	return product.Product{}, product.ErrNotFound
}

func (repo *productRepository) UpdateProduct(_ context.Context, p product.Product) (product.Product, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[p.ID]; !ok {
		return product.Product{}, product.ErrNotFound
	}
	repo.db.rows[p.ID] = &p
	return p, nil
}

func (repo *productRepository) DeleteProductsByID(_ context.Context, ids ...string) (int, error) {
	return repo.db.deleteByID(ids...), nil
}
