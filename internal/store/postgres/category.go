package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
)

type categoryStore struct {
	Pool *pgxpool.Pool
}

func NewCategoryStore(pool *pgxpool.Pool) *categoryStore {
	return &categoryStore{Pool: pool}
}

func (cs *categoryStore) InsertCategory(ctx context.Context, category *models.Category) error {
	query := `
		INSERT INTO categories (id, user_id, name, kind, created_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id, name, kind) DO NOTHING
	`
	cmd, err := cs.Pool.Exec(ctx, query,
		category.ID, category.UserID, category.Name, string(category.Kind), category.CreatedAt)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return errs.NewAlreadyExistsError("category already exists")
	}
	return nil
}

func (cs *categoryStore) GetCategoryByName(ctx context.Context, userID, name string, kind models.CategoryKind) (*models.Category, error) {
	query := `
		SELECT id, user_id, name, kind, created_at
		FROM categories WHERE user_id = $1 AND name = $2 AND kind = $3
	`
	category, err := scanCategory(cs.Pool.QueryRow(ctx, query, userID, name, string(kind)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return category, nil
}

func (cs *categoryStore) ListCategories(ctx context.Context, userID string) ([]models.Category, error) {
	query := `
		SELECT id, user_id, name, kind, created_at
		FROM categories WHERE user_id = $1
		ORDER BY name, kind
	`
	rows, err := cs.Pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		category, err := scanCategory(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, *category)
	}
	return categories, rows.Err()
}

func (cs *categoryStore) DeleteCategoriesByName(ctx context.Context, userID, name string) ([]string, error) {
	query := `
		DELETE FROM categories WHERE user_id = $1 AND name = $2
		RETURNING id
	`
	rows, err := cs.Pool.Query(ctx, query, userID, name)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func scanCategory(row pgx.Row) (*models.Category, error) {
	var (
		category models.Category
		kind     string
	)
	err := row.Scan(&category.ID, &category.UserID, &category.Name, &kind, &category.CreatedAt)
	if err != nil {
		return nil, err
	}
	category.Kind = models.CategoryKind(kind)
	return &category, nil
}
