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

type frameworkRepository struct {
	db *sql.DB
}

func (r *frameworkRepository) Create(ctx context.Context, f *model.Framework) (*model.Framework, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO frameworks (id, name, description, created_at) VALUES ($1, $2, $3, $4)`,
		f.ID, f.Name, f.Description, f.CreatedAt)
	if err != nil {
		return nil, wrapWriteErr(err, "failed to create framework", goerr.V("id", f.ID))
	}
	result := *f
	return &result, nil
}

func (r *frameworkRepository) Get(ctx context.Context, id types.FrameworkID) (*model.Framework, error) {
	var f model.Framework
	err := r.db.QueryRowContext(ctx,
		`SELECT id, name, description, created_at FROM frameworks WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.Description, &f.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "framework not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get framework", goerr.V("id", id))
	}
	return &f, nil
}

func (r *frameworkRepository) List(ctx context.Context) ([]*model.Framework, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, description, created_at FROM frameworks ORDER BY name ASC`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query frameworks")
	}
	defer rows.Close()

	result := []*model.Framework{}
	for rows.Next() {
		var f model.Framework
		if err := rows.Scan(&f.ID, &f.Name, &f.Description, &f.CreatedAt); err != nil {
			return nil, goerr.Wrap(err, "failed to scan framework")
		}
		result = append(result, &f)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate frameworks")
	}
	return result, nil
}

type controlRepository struct {
	db *sql.DB
}

func (r *controlRepository) Create(ctx context.Context, c *model.ControlMapping) (*model.ControlMapping, error) {
	var name string
	err := r.db.QueryRowContext(ctx,
		`WITH inserted AS (
			INSERT INTO risk_controls (id, risk_id, framework_id, control_ref, notes, created_at, created_by)
			VALUES ($1, $2, $3, $4, $5, $6, $7)
			RETURNING framework_id
		)
		SELECT f.name FROM inserted i JOIN frameworks f ON f.id = i.framework_id`,
		c.ID, c.RiskID, c.FrameworkID, c.ControlRef, c.Notes, c.CreatedAt, c.CreatedBy,
	).Scan(&name)
	if err != nil {
		return nil, wrapWriteErr(err, "failed to create control mapping", goerr.V("id", c.ID))
	}
	result := *c
	result.FrameworkName = name
	return &result, nil
}

func (r *controlRepository) ListByRisk(ctx context.Context, riskID types.RiskID) ([]*model.ControlMapping, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT rc.id, rc.risk_id, rc.framework_id, f.name, rc.control_ref, rc.notes, rc.created_at, rc.created_by
		FROM risk_controls rc
		JOIN frameworks f ON f.id = rc.framework_id
		WHERE rc.risk_id = $1
		ORDER BY rc.created_at ASC`, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query control mappings", goerr.V("risk_id", riskID))
	}
	defer rows.Close()

	result := []*model.ControlMapping{}
	for rows.Next() {
		var c model.ControlMapping
		if err := rows.Scan(&c.ID, &c.RiskID, &c.FrameworkID, &c.FrameworkName,
			&c.ControlRef, &c.Notes, &c.CreatedAt, &c.CreatedBy); err != nil {
			return nil, goerr.Wrap(err, "failed to scan control mapping")
		}
		result = append(result, &c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate control mappings")
	}
	return result, nil
}

func (r *controlRepository) Delete(ctx context.Context, id types.ControlMappingID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM risk_controls WHERE id = $1`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete control mapping", goerr.V("id", id))
	}
	return expectAffected(res, "control mapping not found", goerr.V("id", id))
}
