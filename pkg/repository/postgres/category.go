package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

type categoryRepository struct {
	db *sql.DB
}

func (r *categoryRepository) Put(ctx context.Context, c *model.Category) (*model.Category, error) {
	var result model.Category
	err := r.db.QueryRowContext(ctx,
		`INSERT INTO categories (id, name, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (id) DO UPDATE SET name = EXCLUDED.name, description = EXCLUDED.description, updated_at = EXCLUDED.updated_at
		RETURNING id, name, description, created_at, updated_at`,
		c.ID, c.Name, c.Description, c.CreatedAt, c.UpdatedAt,
	).Scan(&result.ID, &result.Name, &result.Description, &result.CreatedAt, &result.UpdatedAt)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to put category", goerr.V("id", c.ID))
	}
	return &result, nil
}

func (r *categoryRepository) Get(ctx context.Context, id types.CategoryID) (*model.Category, error) {
	var c model.Category
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM categories WHERE id = $1`, id,
	).Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "category not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get category", goerr.V("id", id))
	}
	return &c, nil
}

func (r *categoryRepository) List(ctx context.Context) ([]*model.Category, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at, updated_at FROM categories ORDER BY name ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query categories")
	}
	defer rows.Close()

	result := []*model.Category{}
	for rows.Next() {
		var c model.Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan category")
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate categories")
	}
	return result, nil
}

func (r *categoryRepository) Delete(ctx context.Context, id types.CategoryID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = $1`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete category", goerr.V("id", id))
	}
	return expectAffected(res, "category not found", goerr.V("id", id))
}
