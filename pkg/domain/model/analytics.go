package model

import (
	"fmt"
	"time"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

const AnalyticsMonths = 12

// Analytics is the aggregated view used by the analytics page
type Analytics struct {
	Granularity  types.Granularity `json:"granularity"`
	BySeverity   map[string]int    `json:"by_severity"`
	ByStatus     map[string]int    `json:"by_status"`
	ByCategory   []NamedCount      `json:"by_category"`
	CreatedTrend []PeriodCount     `json:"created_over_time"`
	StatusTrend  []OpenClosedCount `json:"open_closed_over_time"`
}

// PeriodCount is a number of risks in one period
type PeriodCount struct {
	Period string `json:"period"`
	Count  int    `json:"count"`
}

// OpenClosedCount counts risks opened and closed in one period
type OpenClosedCount struct {
	Period string `json:"period"`
	Opened int    `json:"opened"`
	Closed int    `json:"closed"`
}

// PeriodKey formats t as YYYY-MM or ISO YYYY-Www
func PeriodKey(t time.Time, g types.Granularity) string {
	if g == types.GranularityWeekly {
		y, w := t.ISOWeek()
		return fmt.Sprintf("%04d-W%02d", y, w)
	}
	return t.Format("2006-01")
}

// periods lists the keys from since to now inclusive, oldest first
func periods(since, now time.Time, g types.Granularity) []string {
	var out []string
	seen := map[string]bool{}
	step := func(t time.Time) time.Time { return t.AddDate(0, 1, 0) }
	if g == types.GranularityWeekly {
		step = func(t time.Time) time.Time { return t.AddDate(0, 0, 7) }
	}
	for t := since; !t.After(now); t = step(t) {
		k := PeriodKey(t, g)
		if !seen[k] {
			seen[k] = true
			out = append(out, k)
		}
	}
	if k := PeriodKey(now, g); !seen[k] {
		out = append(out, k)
	}
	return out
}

// BuildAnalytics aggregates risks over the last twelve months
func BuildAnalytics(risks []*Risk, categories []*Category, now time.Time, g types.Granularity) *Analytics {
	summary := Summarize(risks, categories, now)

	since := now.AddDate(0, -AnalyticsMonths, 0)
	if g == types.GranularityMonthly {
		since = time.Date(since.Year(), since.Month(), 1, 0, 0, 0, 0, now.Location())
	} else {
		// align to the Monday of the starting week
		offset := (int(since.Weekday()) + 6) % 7
		since = truncateDay(since).AddDate(0, 0, -offset)
	}

	keys := periods(since, now, g)
	created := make(map[string]int, len(keys))
	opened := make(map[string]int, len(keys))
	closed := make(map[string]int, len(keys))

	for _, r := range risks {
		if !r.CreatedAt.Before(since) {
			k := PeriodKey(r.CreatedAt.In(now.Location()), g)
			created[k]++
			opened[k]++
		}
		if r.Status.IsClosed() && !r.UpdatedAt.Before(since) {
			closed[PeriodKey(r.UpdatedAt.In(now.Location()), g)]++
		}
	}

	a := &Analytics{
		Granularity:  g,
		BySeverity:   summary.BySeverity,
		ByStatus:     summary.ByStatus,
		ByCategory:   summary.ByCategory,
		CreatedTrend: make([]PeriodCount, 0, len(keys)),
		StatusTrend:  make([]OpenClosedCount, 0, len(keys)),
	}
	for _, k := range keys {
		a.CreatedTrend = append(a.CreatedTrend, PeriodCount{Period: k, Count: created[k]})
		a.StatusTrend = append(a.StatusTrend, OpenClosedCount{Period: k, Opened: opened[k], Closed: closed[k]})
	}
	return a
}
