package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/metinatakli/room-booking-bridge/internal/domain"
)

type PostgresProductRepository struct {
	db DBTX
}

func NewPostgresProductRepository(db DBTX) *PostgresProductRepository {
	return &PostgresProductRepository{
		db: db,
	}
}

func (p *PostgresProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	query := `SELECT id, sku, name, price, hidden FROM products WHERE id = $1`

	return p.get(ctx, query, id)
}

func (p *PostgresProductRepository) GetBySKU(ctx context.Context, sku string) (*domain.Product, error) {
	query := `SELECT id, sku, name, price, hidden FROM products WHERE sku = $1`

	return p.get(ctx, query, sku)
}

func (p *PostgresProductRepository) get(ctx context.Context, query string, arg any) (*domain.Product, error) {
	var product domain.Product

	err := p.db.QueryRow(ctx, query, arg).Scan(
		&product.ID,
		&product.SKU,
		&product.Name,
		&product.Price,
		&product.Hidden,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, err
	}

	return &product, nil
}

func (p *PostgresProductRepository) Create(ctx context.Context, product *domain.Product) error {
	query := `INSERT INTO products (sku, name, price, hidden)
		VALUES ($1, $2, $3, $4)
		RETURNING id`

	err := p.db.QueryRow(ctx,
		query,
		product.SKU,
		product.Name,
		product.Price,
		product.Hidden).Scan(&product.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrEditConflict
		}

		return err
	}

	return nil
}
