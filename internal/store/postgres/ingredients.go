package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"spoils/internal/store"

	"github.com/lib/pq"
)

const ingredientColumns = `id, name, branded, protein_per_gram, carbs_per_gram, fat_per_gram,
	       fiber_per_gram, sub_ingredients, parent_ingredients, created_at, updated_at`

// InsertIngredient inserts ing, returning the id. The unique index on
// LOWER(name) is the arbiter for the create_ingredient race: a losing
// insert returns the winner's id with created=false.
func (s *Store) InsertIngredient(ctx context.Context, ing *store.Ingredient) (int64, bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO ingredients (name, branded, protein_per_gram, carbs_per_gram, fat_per_gram, fiber_per_gram)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (LOWER(name)) DO NOTHING
		RETURNING id
	`,
		ing.Name,
		ing.Branded,
		ing.ProteinPerGram,
		ing.CarbsPerGram,
		ing.FatPerGram,
		ing.FiberPerGram,
	).Scan(&id)
	if err == nil {
		return id, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return 0, false, fmt.Errorf("failed to insert ingredient %q: %w", ing.Name, err)
	}

	existing, err := s.FindIngredientByName(ctx, ing.Name)
	if err != nil {
		return 0, false, fmt.Errorf("failed to resolve racing insert of %q: %w", ing.Name, err)
	}
	return existing.ID, false, nil
}

// FindIngredientByName looks up an ingredient by case-insensitive name.
func (s *Store) FindIngredientByName(ctx context.Context, name string) (*store.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE LOWER(name) = LOWER($1)`, name)

	ing, err := scanIngredient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find ingredient %q: %w", name, err)
	}
	return ing, nil
}

// GetIngredient returns an ingredient by id.
func (s *Store) GetIngredient(ctx context.Context, id int64) (*store.Ingredient, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+ingredientColumns+` FROM ingredients WHERE id = $1`, id)

	ing, err := scanIngredient(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ingredient %d: %w", id, err)
	}
	return ing, nil
}

// LinkSubIngredient records the parent -> child reference and the child's
// back-reference. Appends are guarded so repeated links are no-ops.
func (s *Store) LinkSubIngredient(ctx context.Context, parentID, childID int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin link tx: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		UPDATE ingredients
		SET sub_ingredients = array_append(sub_ingredients, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(sub_ingredients))
	`, parentID, childID)
	if err != nil {
		return fmt.Errorf("failed to link sub-ingredient %d -> %d: %w", parentID, childID, err)
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE ingredients
		SET parent_ingredients = array_append(parent_ingredients, $2), updated_at = NOW()
		WHERE id = $1 AND NOT ($2 = ANY(parent_ingredients))
	`, childID, parentID)
	if err != nil {
		return fmt.Errorf("failed to back-reference ingredient %d -> %d: %w", childID, parentID, err)
	}

	return tx.Commit()
}

func scanIngredient(row rowScanner) (*store.Ingredient, error) {
	var ing store.Ingredient
	if err := row.Scan(
		&ing.ID,
		&ing.Name,
		&ing.Branded,
		&ing.ProteinPerGram,
		&ing.CarbsPerGram,
		&ing.FatPerGram,
		&ing.FiberPerGram,
		pq.Array(&ing.SubIngredients),
		pq.Array(&ing.ParentIngredients),
		&ing.CreatedAt,
		&ing.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &ing, nil
}
