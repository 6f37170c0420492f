package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/product"
)

type productRow struct {
	ID          string          `db:"id"`
	Name        string          `db:"name"`
	Description null.String     `db:"description"`
	Category    string          `db:"category"`
	Price       decimal.Decimal `db:"price"`
	Stock       int             `db:"stock"`
	Image       null.String     `db:"image"`
	CreatedAt   time.Time       `db:"created_at"`
	UpdatedAt   time.Time       `db:"updated_at"`
}

const productColumns = `id, name, description, category, price, stock, image, created_at, updated_at`

type productRepository struct {
	db *sqlx.DB
}

var _ product.Repository = (*productRepository)(nil)

func NewProductRepository(db *sqlx.DB) *productRepository {
	return &productRepository{db: db}
}

func (repo productRepository) boil(p product.Product) productRow {
	return productRow{
		ID:          p.ID,
		Name:        p.Name,
		Description: null.NewString(p.Description, p.Description != ""),
		Category:    p.Category,
		Price:       p.Price,
		Stock:       p.Stock,
		Image:       null.NewString(p.Image, p.Image != ""),
		CreatedAt:   p.CreatedAt.UTC(),
		UpdatedAt:   p.UpdatedAt.UTC(),
	}
}

func (repo productRepository) unboil(row productRow) product.Product {
	return product.Product{
		ID:          row.ID,
		Name:        row.Name,
		Description: row.Description.String,
		Category:    row.Category,
		Price:       row.Price,
		Stock:       row.Stock,
		Image:       row.Image.String,
		CreatedAt:   row.CreatedAt.UTC(),
		UpdatedAt:   row.UpdatedAt.UTC(),
	}
}

func (repo productRepository) CreateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	p.ID = uuid.New().String()
	q := `INSERT INTO product (` + productColumns + `) VALUES (:id, :name, :description, :category, :price, :stock, :image, :created_at, :updated_at)`
	if _, err := repo.db.NamedExecContext(ctx, q, repo.boil(p)); err != nil {
		return product.Product{}, errors.Wrap(err, "inserting product")
	}
	return p, nil
}

func (repo productRepository) QueryProducts(ctx context.Context, filter *product.QueryFilter, ordering []core.DBOrdering) ([]product.Product, error) {
	var w where
	if filter != nil {
		if filter.Search != "" {
			val := like(filter.Search)
			w.add("(name ILIKE ? OR description ILIKE ?)", val, val)
		}
		if filter.Category != "" {
			w.add("category = ?", filter.Category)
		}
		if filter.InStock != nil {
			if *filter.InStock {
				w.add("stock > 0")
			} else {
				w.add("stock <= 0")
			}
		}
	}

	var rows []productRow
	q := `SELECT ` + productColumns + ` FROM product` + w.String() + orderBy(ordering, "name ASC")
	if err := repo.db.SelectContext(ctx, &rows, q, w.args...); err != nil {
		return nil, errors.Wrap(err, "querying products")
	}
	products := make([]product.Product, 0, len(rows))
	for _, row := range rows {
		products = append(products, repo.unboil(row))
	}
	return products, nil
}

func (repo productRepository) GetProductByID(ctx context.Context, id string) (product.Product, error) {
	if _, err := uuid.Parse(id); err != nil {
		return product.Product{}, product.ErrNotFound
	}
	var row productRow
	q := `SELECT ` + productColumns + ` FROM product WHERE id = $1`
	if err := repo.db.GetContext(ctx, &row, q, id); err != nil {
		return product.Product{}, trapNoRowsErr(err, product.ErrNotFound, "finding product by ID")
	}
	return repo.unboil(row), nil
}

func (repo productRepository) UpdateProduct(ctx context.Context, p product.Product) (product.Product, error) {
	q := `UPDATE product SET name = :name, description = :description, category = :category,
		price = :price, stock = :stock, image = :image, updated_at = :updated_at
		WHERE id = :id`
	res, err := repo.db.NamedExecContext(ctx, q, repo.boil(p))
	if err != nil {
		return product.Product{}, errors.Wrap(err, "updating product")
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return product.Product{}, product.ErrNotFound
	}
	return p, nil
}

func (repo productRepository) DeleteProductsByID(ctx context.Context, ids ...string) (int, error) {
	return deleteByID(ctx, repo.db, "product", ids)
}
