package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

const riskColumns = `id, title, description, owner_id, status, severity, category_id, review_date, created_at, updated_at, created_by, updated_by`

// sortColumns maps allowed sort keys to ORDER BY expressions
var sortColumns = map[string]string{
	"created_at":  "created_at",
	"updated_at":  "updated_at",
	"title":       "title",
	"status":      "status",
	"review_date": "review_date",
	"severity":    "CASE severity WHEN 'low' THEN 1 WHEN 'medium' THEN 2 WHEN 'high' THEN 3 WHEN 'critical' THEN 4 ELSE 0 END",
}

type riskRepository struct {
	db *sql.DB
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRisk(row rowScanner) (*model.Risk, error) {
	var (
		r          model.Risk
		categoryID sql.NullString
		reviewDate sql.NullTime
	)
	if err := row.Scan(
		&r.ID, &r.Title, &r.Description, &r.OwnerID, &r.Status, &r.Severity,
		&categoryID, &reviewDate, &r.CreatedAt, &r.UpdatedAt, &r.CreatedBy, &r.UpdatedBy,
	); err != nil {
		return nil, err
	}
	if categoryID.Valid {
		id := types.CategoryID(categoryID.String)
		r.CategoryID = &id
	}
	r.ReviewDate = timePtr(reviewDate)
	return &r, nil
}

func (r *riskRepository) Create(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO risks (`+riskColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`,
		risk.ID, risk.Title, risk.Description, risk.OwnerID, risk.Status, risk.Severity,
		nullString(risk.CategoryID), nullTime(risk.ReviewDate), risk.CreatedAt, risk.UpdatedAt,
		risk.CreatedBy, risk.UpdatedBy,
	)
	if err != nil {
		return nil, wrapWriteErr(err, "failed to create risk", goerr.V("id", risk.ID))
	}
	return risk.Copy(), nil
}

func (r *riskRepository) Get(ctx context.Context, id types.RiskID) (*model.Risk, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+riskColumns+` FROM risks WHERE id = $1`, id)
	risk, err := scanRisk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get risk", goerr.V("id", id))
	}
	return risk, nil
}

// buildRiskWhere renders the filters of q as a WHERE clause with positional args
func buildRiskWhere(q *model.RiskQuery) (string, []any) {
	var (
		conds []string
		args  []any
	)
	add := func(cond string, arg any) {
		args = append(args, arg)
		conds = append(conds, fmt.Sprintf(cond, len(args)))
	}

	if q.Status != nil {
		add("status = $%d", string(*q.Status))
	}
	if q.Severity != nil {
		add("severity = $%d", string(*q.Severity))
	}
	if q.CategoryID != nil {
		add("category_id = $%d", string(*q.CategoryID))
	}
	if q.OwnerID != nil {
		add("owner_id = $%d", string(*q.OwnerID))
	}
	if q.Search != "" {
		args = append(args, "%"+q.Search+"%")
		n := len(args)
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", n, n))
	}

	if len(conds) == 0 {
		return "", args
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

func orderClause(q *model.RiskQuery) string {
	col, ok := sortColumns[q.Sort]
	if !ok {
		col = sortColumns["created_at"]
	}
	dir := "DESC"
	if q.Order == "asc" {
		dir = "ASC"
	}
	return fmt.Sprintf(" ORDER BY %s %s, id ASC", col, dir)
}

func (r *riskRepository) List(ctx context.Context, query *model.RiskQuery) (*model.RiskPage, error) {
	q := query.Normalize()
	where, args := buildRiskWhere(q)

	var total int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM risks`+where, args...).Scan(&total); err != nil {
		return nil, goerr.Wrap(err, "failed to count risks")
	}

	pageArgs := append(args, q.Limit, q.Offset())
	stmt := `SELECT ` + riskColumns + ` FROM risks` + where + orderClause(q) +
		fmt.Sprintf(" LIMIT $%d OFFSET $%d", len(pageArgs)-1, len(pageArgs))

	risks, err := r.query(ctx, stmt, pageArgs...)
	if err != nil {
		return nil, err
	}

	return &model.RiskPage{
		Data: risks,
		Meta: model.Meta{Page: q.Page, Limit: q.Limit, Total: total},
	}, nil
}

func (r *riskRepository) ListAll(ctx context.Context) ([]*model.Risk, error) {
	return r.query(ctx, `SELECT `+riskColumns+` FROM risks ORDER BY created_at ASC, id ASC`)
}

func (r *riskRepository) query(ctx context.Context, stmt string, args ...any) ([]*model.Risk, error) {
	rows, err := r.db.QueryContext(ctx, stmt, args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query risks")
	}
	defer rows.Close()

	risks := []*model.Risk{}
	for rows.Next() {
		risk, err := scanRisk(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan risk")
		}
		risks = append(risks, risk)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate risks")
	}
	return risks, nil
}

func (r *riskRepository) Update(ctx context.Context, risk *model.Risk) (*model.Risk, error) {
	row := r.db.QueryRowContext(ctx,
		`UPDATE risks SET title = $2, description = $3, owner_id = $4, status = $5, severity = $6,
			category_id = $7, review_date = $8, updated_at = $9, updated_by = $10
		WHERE id = $1 RETURNING `+riskColumns,
		risk.ID, risk.Title, risk.Description, risk.OwnerID, risk.Status, risk.Severity,
		nullString(risk.CategoryID), nullTime(risk.ReviewDate), risk.UpdatedAt, risk.UpdatedBy,
	)
	updated, err := scanRisk(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, goerr.Wrap(interfaces.ErrNotFound, "risk not found", goerr.V("id", risk.ID))
	}
	if err != nil {
		return nil, wrapWriteErr(err, "failed to update risk", goerr.V("id", risk.ID))
	}
	return updated, nil
}

// Delete removes the risk; mitigations and control mappings cascade
func (r *riskRepository) Delete(ctx context.Context, id types.RiskID) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM risks WHERE id = $1`, id)
	if err != nil {
		return goerr.Wrap(err, "failed to delete risk", goerr.V("id", id))
	}
	return expectAffected(res, "risk not found", goerr.V("id", id))
}
