package board

import (
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

var (
	// ErrInvalidStatus is returned when a risk carries a status outside the board columns
	ErrInvalidStatus = goerr.New("risk has invalid status")
)

// Column is the ordered group of risks sharing one status
type Column struct {
	Status types.RiskStatus `json:"status"`
	Label  string           `json:"label"`
	Risks  []*model.Risk    `json:"risks"`
}

// Count returns the number of risks in the column
func (c *Column) Count() int {
	return len(c.Risks)
}

// Columns holds one column per status in display order
type Columns []*Column

// Partition groups risks into one column per status. Relative input order
// is kept inside each column and every input risk lands in exactly one
// column. A nil risk or a status outside the columns fails with
// ErrInvalidStatus. It performs no I/O.
func Partition(risks []*model.Risk) (Columns, error) {
	statuses := types.AllRiskStatuses()
	cols := make(Columns, len(statuses))
	index := make(map[types.RiskStatus]int, len(statuses))
	for i, s := range statuses {
		cols[i] = &Column{Status: s, Label: s.Label(), Risks: []*model.Risk{}}
		index[s] = i
	}

	for i, r := range risks {
		if r == nil {
			return nil, goerr.Wrap(ErrInvalidStatus, "cannot partition nil risk", goerr.V("index", i))
		}
		col, ok := index[r.Status]
		if !ok {
			return nil, goerr.Wrap(ErrInvalidStatus, "cannot partition risk",
				goerr.V("risk_id", r.ID),
				goerr.V("status", r.Status))
		}
		cols[col].Risks = append(cols[col].Risks, r)
	}

	return cols, nil
}

// Column returns the column for status, or nil if status is not a board column
func (c Columns) Column(status types.RiskStatus) *Column {
	for _, col := range c {
		if col.Status == status {
			return col
		}
	}
	return nil
}

// Find returns the risk with id and the status of the column holding it
func (c Columns) Find(id types.RiskID) (*model.Risk, types.RiskStatus, bool) {
	for _, col := range c {
		for _, r := range col.Risks {
			if r.ID == id {
				return r, col.Status, true
			}
		}
	}
	return nil, "", false
}

// Total returns the number of risks across all columns
func (c Columns) Total() int {
	n := 0
	for _, col := range c {
		n += col.Count()
	}
	return n
}

// Visible returns a copy of the columns with the active risk hidden. The
// receiver is left untouched. An empty activeID hides nothing.
func (c Columns) Visible(activeID types.RiskID) Columns {
	out := make(Columns, len(c))
	for i, col := range c {
		risks := make([]*model.Risk, 0, len(col.Risks))
		for _, r := range col.Risks {
			if activeID != "" && r.ID == activeID {
				continue
			}
			risks = append(risks, r)
		}
		out[i] = &Column{Status: col.Status, Label: col.Label, Risks: risks}
	}
	return out
}
