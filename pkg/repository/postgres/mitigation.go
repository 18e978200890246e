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

const mitigationColumns = `id, risk_id, description, owner, status, due_date, created_at, updated_at, created_by, updated_by`

type mitigationRepository struct {
	db *sql.DB
}

func scanMitigation(row rowScanner) (*model.Mitigation, error) {
	var (
		m   model.Mitigation
		due sql.NullTime
	)
	if err := row.Scan(&m.ID, &m.RiskID, &m.Description, &m.Owner, &m.Status, &due,
		&m.CreatedAt, &m.UpdatedAt, &m.CreatedBy, &m.UpdatedBy); err != nil {
		return nil, err
	}
	m.DueDate = timePtr(due)
	return &m, nil
}

func (r *mitigationRepository) Create(ctx context.Context, m *model.Mitigation) (*model.Mitigation, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO mitigations (`+mitigationColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		m.ID, m.RiskID, m.Description, m.Owner, m.Status, nullTime(m.DueDate),
		m.CreatedAt, m.UpdatedAt, m.CreatedBy, m.UpdatedBy,
	)
	if err != nil {
		return nil, wrapWriteErr(err, "failed to create mitigation", goerr.V("id", m.ID))
	}
	return m.Copy(), nil
}

func (r *mitigationRepository) Get(ctx context.Context, id types.MitigationID) (*model.Mitigation, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+mitigationColumns+` FROM mitigations WHERE id = $1`, id)
	m, err := scanMitigation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "mitigation not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get mitigation", goerr.V("id", id))
	}
	return m, nil
}

func (r *mitigationRepository) ListByRisk(ctx context.Context, riskID types.RiskID) ([]*model.Mitigation, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+mitigationColumns+` FROM mitigations WHERE risk_id = $1 ORDER BY created_at ASC`, riskID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query mitigations", goerr.V("risk_id", riskID))
	}
	defer rows.Close()

	result := []*model.Mitigation{}
	for rows.Next() {
		m, err := scanMitigation(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan mitigation")
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate mitigations")
	}
	return result, nil
}

func (r *mitigationRepository) Update(ctx context.Context, m *model.Mitigation) (*model.Mitigation, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE mitigations SET description = $2, owner = $3, status = $4, due_date = $5,
			updated_at = $6, updated_by = $7
		WHERE id = $1 RETURNING `+mitigationColumns,
		m.ID, m.Description, m.Owner, m.Status, nullTime(m.DueDate), m.UpdatedAt, m.UpdatedBy,
	)
	updated, err := scanMitigation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "mitigation not found", goerr.V("id", m.ID))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to update mitigation", goerr.V("id", m.ID))
	}
	return updated, nil
}

func (r *mitigationRepository) Delete(ctx context.Context, id types.MitigationID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM mitigations WHERE id = $1`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete mitigation", goerr.V("id", id))
	}
	return expectAffected(res, "mitigation not found", goerr.V("id", id))
}
