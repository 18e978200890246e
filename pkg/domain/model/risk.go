package model

import (
	"math"
	"sort"
	"strings"
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

// Risk is a tracked organizational hazard
type Risk struct {
	ID          types.RiskID      `json:"id"`
	Title       string            `json:"title"`
	Description string            `json:"description,omitempty"`
	OwnerID     types.UserID      `json:"owner_id"`
	Owner       *User             `json:"owner,omitempty" firestore:"-"`
	Status      types.RiskStatus  `json:"status"`
	Severity    types.Severity    `json:"severity"`
	CategoryID  *types.CategoryID `json:"category_id,omitempty"`
	Category    *Category         `json:"category,omitempty" firestore:"-"`
	ReviewDate  *time.Time        `json:"review_date,omitempty"`
	CreatedAt   time.Time         `json:"created_at"`
	UpdatedAt   time.Time         `json:"updated_at"`
	CreatedBy   types.UserID      `json:"created_by"`
	UpdatedBy   types.UserID      `json:"updated_by"`
}

// Copy returns a deep copy of the risk without the joined Owner/Category
func (r *Risk) Copy() *Risk {
	c := *r
	c.Owner = nil
	c.Category = nil
	if r.CategoryID != nil {
		id := *r.CategoryID
		c.CategoryID = &id
	}
	if r.ReviewDate != nil {
		d := *r.ReviewDate
		c.ReviewDate = &d
	}
	return &c
}

const (
	DefaultRiskPageLimit = 20
	MaxRiskPageLimit     = 100
	MaxRiskTitleLength   = 255
)

// Sortable risk columns. Anything else falls back to created_at.
var riskSortKeys = map[string]bool{
	"created_at":  true,
	"updated_at":  true,
	"title":       true,
	"severity":    true,
	"status":      true,
	"review_date": true,
}

// RiskQuery filters, sorts and paginates the risk list
type RiskQuery struct {
	Status     *types.RiskStatus
	Severity   *types.Severity
	CategoryID *types.CategoryID
	OwnerID    *types.UserID
	Search     string
	Sort       string
	Order      string
	Page       int
	Limit      int
}

// Normalize fills defaults and clamps paging values. It returns a copy
// so callers may pass nil.
func (q *RiskQuery) Normalize() *RiskQuery {
	n := RiskQuery{}
	if q != nil {
		n = *q
	}
	if n.Page < 1 {
		n.Page = 1
	}
	if n.Limit < 1 || n.Limit > MaxRiskPageLimit {
		n.Limit = DefaultRiskPageLimit
	}
	// keep Offset within int
	if maxPage := math.MaxInt/n.Limit + 1; n.Page > maxPage {
		n.Page = maxPage
	}
	if !riskSortKeys[n.Sort] {
		n.Sort = "created_at"
	}
	if n.Order != "asc" {
		n.Order = "desc"
	}
	n.Search = strings.TrimSpace(n.Search)
	return &n
}

// Offset returns the number of rows skipped before the current page
func (q *RiskQuery) Offset() int {
	return (q.Page - 1) * q.Limit
}

// Match reports whether risk satisfies every filter in q
func (q *RiskQuery) Match(r *Risk) bool {
	if q.Status != nil && r.Status != *q.Status {
		return false
	}
	if q.Severity != nil && r.Severity != *q.Severity {
		return false
	}
	if q.CategoryID != nil && (r.CategoryID == nil || *r.CategoryID != *q.CategoryID) {
		return false
	}
	if q.OwnerID != nil && r.OwnerID != *q.OwnerID {
		return false
	}
	if q.Search != "" {
		needle := strings.ToLower(q.Search)
		if !strings.Contains(strings.ToLower(r.Title), needle) &&
			!strings.Contains(strings.ToLower(r.Description), needle) {
			return false
		}
	}
	return true
}

func (q *RiskQuery) less(a, b *Risk) bool {
	var cmp int
	switch q.Sort {
	case "title":
		cmp = strings.Compare(a.Title, b.Title)
	case "severity":
		cmp = a.Severity.Rank() - b.Severity.Rank()
	case "status":
		cmp = strings.Compare(string(a.Status), string(b.Status))
	case "updated_at":
		cmp = a.UpdatedAt.Compare(b.UpdatedAt)
	case "review_date":
		cmp = compareOptionalTime(a.ReviewDate, b.ReviewDate)
	default:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	}
	if q.Order == "asc" {
		return cmp < 0
	}
	return cmp > 0
}

func compareOptionalTime(a, b *time.Time) int {
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	default:
		return a.Compare(*b)
	}
}

// RiskPage is one page of a risk listing
type RiskPage struct {
	Data []*Risk `json:"data"`
	Meta Meta    `json:"meta"`
}

// Meta describes the position of a page in the full result
type Meta struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
	Total int `json:"total"`
}

// ApplyRiskQuery filters, sorts and paginates risks in memory. Backends
// without native query support (memory, firestore) share this path.
func ApplyRiskQuery(risks []*Risk, query *RiskQuery) *RiskPage {
	q := query.Normalize()

	matched := make([]*Risk, 0, len(risks))
	for _, r := range risks {
		if q.Match(r) {
			matched = append(matched, r)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return q.less(matched[i], matched[j])
	})

	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit, total)

	return &RiskPage{
		Data: matched[start:end],
		Meta: Meta{Page: q.Page, Limit: q.Limit, Total: total},
	}
}
