package product

import (
	"context"
	"time"

	"github.com/belleza/salon/core"
)

var ErrNotFound = core.NewNotFoundError("product")

type (
	Repository interface {
		CreateProduct(ctx context.Context, p Product) (Product, error)
		// QueryProducts does a case-insensitive match of QueryFilter.Search on name or description.
		QueryProducts(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Product, error)
		GetProductByID(ctx context.Context, id string) (Product, error)
		UpdateProduct(ctx context.Context, p Product) (Product, error)
		DeleteProductsByID(ctx context.Context, ids ...string) (int, error)
	}

	Service struct {
		repo Repository
	}
)

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

var orderingFields = []string{"name", "category", "price", "stock", "created_at", "updated_at"}

func (svc *Service) Create(ctx context.Context, np NewProduct) (Product, error) {
	now := time.Now().UTC()
	return svc.repo.CreateProduct(ctx, Product{
		Name:        np.Name,
		Description: np.Description,
		Category:    np.Category,
		Price:       np.Price,
		Stock:       np.Stock,
		Image:       np.Image,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
}

func (svc *Service) Query(ctx context.Context, filter *QueryFilter, ordering []core.DBOrdering) ([]Product, error) {
	return svc.repo.QueryProducts(ctx, filter, core.CleanOrderings(ordering, orderingFields...))
}

func (svc *Service) GetByID(ctx context.Context, id string) (Product, error) {
	return svc.repo.GetProductByID(ctx, id)
}

func (svc *Service) Update(ctx context.Context, p Product, up UpdateProduct) (Product, error) {
	if up.Name != "" {
		p.Name = up.Name
	}
	if up.Description != nil {
		p.Description = *up.Description
	}
	if up.Category != "" {
		p.Category = up.Category
	}
	if up.Price != nil {
		p.Price = *up.Price
	}
	if up.Stock != nil {
		p.Stock = *up.Stock
	}
	if up.Image != nil {
		p.Image = core.CleanString(*up.Image)
	}
	p.UpdatedAt = time.Now().UTC()
	return svc.repo.UpdateProduct(ctx, p)
}

func (svc *Service) Delete(ctx context.Context, ids ...string) error {
	_, err := svc.repo.DeleteProductsByID(ctx, ids...)
	return err
}
