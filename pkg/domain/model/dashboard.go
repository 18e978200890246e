package model

import (
	"sort"
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

const (
	DefaultUpcomingDays = 30
	SoonReviewDays      = 7
)

// DashboardSummary is the headline view of the register
type DashboardSummary struct {
	TotalRisks    int            `json:"total_risks"`
	ByStatus      map[string]int `json:"by_status"`
	BySeverity    map[string]int `json:"by_severity"`
	ByCategory    []NamedCount   `json:"by_category"`
	OverdueCount  int            `json:"overdue_reviews"`
	UpcomingCount int            `json:"upcoming_reviews"`
}

// NamedCount is a label with its number of risks
type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

// ReviewItem is a risk with a scheduled review
type ReviewItem struct {
	RiskID     types.RiskID     `json:"risk_id"`
	Title      string           `json:"title"`
	Severity   types.Severity   `json:"severity"`
	Status     types.RiskStatus `json:"status"`
	ReviewDate time.Time        `json:"review_date"`
	OwnerName  string           `json:"owner_name,omitempty"`
}

// truncateDay drops the time of day in the location of t
func truncateDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// calendarDate returns the calendar date of t, as seen in t's location, at
// UTC midnight. Review dates are date-only values stored at UTC midnight,
// so both sides of a comparison must go through here.
func calendarDate(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// reviewDay is the calendar date of a stored review date
func reviewDay(t time.Time) time.Time {
	return calendarDate(t.UTC())
}

// UpcomingReviews returns reviews between today and today+days, oldest first
func UpcomingReviews(risks []*Risk, now time.Time, days int) []*ReviewItem {
	if days <= 0 {
		days = DefaultUpcomingDays
	}
	today := calendarDate(now)
	until := today.AddDate(0, 0, days)
	return collectReviews(risks, func(d time.Time) bool {
		return !d.Before(today) && !d.After(until)
	})
}

// OverdueReviews returns reviews dated before today, oldest first
func OverdueReviews(risks []*Risk, now time.Time) []*ReviewItem {
	today := calendarDate(now)
	return collectReviews(risks, func(d time.Time) bool {
		return d.Before(today)
	})
}

func collectReviews(risks []*Risk, keep func(time.Time) bool) []*ReviewItem {
	items := []*ReviewItem{}
	for _, r := range risks {
		if r.ReviewDate == nil || !keep(reviewDay(*r.ReviewDate)) {
			continue
		}
		item := &ReviewItem{
			RiskID:     r.ID,
			Title:      r.Title,
			Severity:   r.Severity,
			Status:     r.Status,
			ReviewDate: *r.ReviewDate,
		}
		if r.Owner != nil {
			item.OwnerName = r.Owner.Name
		}
		items = append(items, item)
	}
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].ReviewDate.Before(items[j].ReviewDate)
	})
	return items
}

// Summarize builds the dashboard summary. Every known category is listed
// even when empty; risks without a category are counted as "Uncategorized".
func Summarize(risks []*Risk, categories []*Category, now time.Time) *DashboardSummary {
	s := &DashboardSummary{
		TotalRisks: len(risks),
		ByStatus:   map[string]int{},
		BySeverity: map[string]int{},
	}
	for _, st := range types.AllRiskStatuses() {
		s.ByStatus[st.String()] = 0
	}
	for _, sv := range types.AllSeverities() {
		s.BySeverity[sv.String()] = 0
	}

	names := make(map[types.CategoryID]string, len(categories))
	byCategory := map[string]int{}
	for _, c := range categories {
		names[c.ID] = c.Name
		byCategory[c.Name] = 0
	}

	for _, r := range risks {
		s.ByStatus[r.Status.String()]++
		s.BySeverity[r.Severity.String()]++

		name := "Uncategorized"
		if r.CategoryID != nil {
			if n, ok := names[*r.CategoryID]; ok {
				name = n
			}
		}
		byCategory[name]++
	}

	s.ByCategory = sortedCounts(byCategory)
	s.OverdueCount = len(OverdueReviews(risks, now))
	s.UpcomingCount = len(UpcomingReviews(risks, now, DefaultUpcomingDays))
	return s
}

// sortedCounts orders by count desc, then name asc
func sortedCounts(m map[string]int) []NamedCount {
	out := make([]NamedCount, 0, len(m))
	for name, n := range m {
		out = append(out, NamedCount{Name: name, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	return out
}
