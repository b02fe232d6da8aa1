package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spoils/internal/store"
)

const productColumns = `id, barcode, product_name, brands, categories, quantity, image_url,
	       nutriscore_grade, nova_group, ecoscore_grade, ingredients_text, allergens,
	       full_response, created_at, updated_at`

// UpsertProduct inserts or refreshes the cached record for p.Barcode.
func (s *Store) UpsertProduct(ctx context.Context, p *store.Product) (int64, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO products (
			barcode, product_name, brands, categories, quantity, image_url,
			nutriscore_grade, nova_group, ecoscore_grade, ingredients_text,
			allergens, full_response
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (barcode) DO UPDATE SET
			product_name = EXCLUDED.product_name,
			brands = EXCLUDED.brands,
			categories = EXCLUDED.categories,
			quantity = EXCLUDED.quantity,
			image_url = EXCLUDED.image_url,
			nutriscore_grade = EXCLUDED.nutriscore_grade,
			nova_group = EXCLUDED.nova_group,
			ecoscore_grade = EXCLUDED.ecoscore_grade,
			ingredients_text = EXCLUDED.ingredients_text,
			allergens = EXCLUDED.allergens,
			full_response = EXCLUDED.full_response,
			updated_at = NOW()
		RETURNING id
	`,
		p.Barcode,
		p.ProductName,
		p.Brands,
		p.Categories,
		p.Quantity,
		p.ImageURL,
		p.NutriscoreGrade,
		p.NovaGroup,
		p.EcoscoreGrade,
		p.IngredientsText,
		p.Allergens,
		p.FullResponse,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to upsert product %s: %w", p.Barcode, err)
	}
	return id, nil
}

// GetProductByBarcode returns a cached product by barcode.
func (s *Store) GetProductByBarcode(ctx context.Context, barcode string) (*store.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE barcode = $1`, barcode)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", barcode, err)
	}
	return p, nil
}

// GetProduct returns a cached product by id.
func (s *Store) GetProduct(ctx context.Context, id int64) (*store.Product, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+productColumns+` FROM products WHERE id = $1`, id)

	p, err := scanProduct(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get product %d: %w", id, err)
	}
	return p, nil
}

func scanProduct(row rowScanner) (*store.Product, error) {
	var p store.Product
	if err := row.Scan(
		&p.ID,
		&p.Barcode,
		&p.ProductName,
		&p.Brands,
		&p.Categories,
		&p.Quantity,
		&p.ImageURL,
		&p.NutriscoreGrade,
		&p.NovaGroup,
		&p.EcoscoreGrade,
		&p.IngredientsText,
		&p.Allergens,
		&p.FullResponse,
		&p.CreatedAt,
		&p.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &p, nil
}
