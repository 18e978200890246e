package model_test

import (
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

func TestPeriodKey(t *testing.T) {
	ts := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	gt.Value(t, model.PeriodKey(ts, types.GranularityMonthly)).Equal("2025-01")
	// 2025-01-01 falls in ISO week 1 of 2025
	gt.Value(t, model.PeriodKey(ts, types.GranularityWeekly)).Equal("2025-W01")
	gt.Value(t, model.PeriodKey(time.Date(2024, 12, 30, 0, 0, 0, 0, time.UTC), types.GranularityWeekly)).Equal("2025-W01")
}

func TestBuildAnalytics(t *testing.T) {
	now := time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC)
	risks := []*model.Risk{
		{ID: "a", Status: types.RiskStatusOpen, Severity: types.SeverityHigh, CreatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)},
		{ID: "b", Status: types.RiskStatusResolved, Severity: types.SeverityLow, CreatedAt: time.Date(2025, 5, 3, 0, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC)},
		{ID: "old", Status: types.RiskStatusAccepted, Severity: types.SeverityLow, CreatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC), UpdatedAt: time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	t.Run("monthly", func(t *testing.T) {
		a := model.BuildAnalytics(risks, nil, now, types.GranularityMonthly)
		gt.Array(t, a.CreatedTrend).Length(13).Required()
		gt.Value(t, a.CreatedTrend[0].Period).Equal("2024-06")
		last := a.CreatedTrend[len(a.CreatedTrend)-1]
		gt.Value(t, last).Equal(model.PeriodCount{Period: "2025-06", Count: 1})

		june := a.StatusTrend[len(a.StatusTrend)-1]
		gt.Value(t, june).Equal(model.OpenClosedCount{Period: "2025-06", Opened: 1, Closed: 1})
		may := a.StatusTrend[len(a.StatusTrend)-2]
		gt.Value(t, may).Equal(model.OpenClosedCount{Period: "2025-05", Opened: 1, Closed: 0})

		gt.Number(t, a.BySeverity["low"]).Equal(2)
		gt.Number(t, a.ByStatus["accepted"]).Equal(1)
	})

	t.Run("weekly", func(t *testing.T) {
		a := model.BuildAnalytics(risks, nil, now, types.GranularityWeekly)
		gt.Number(t, len(a.CreatedTrend)).GreaterOrEqual(52)
		last := a.CreatedTrend[len(a.CreatedTrend)-1]
		gt.Value(t, last.Period).Equal("2025-W24")
		total := 0
		for _, p := range a.CreatedTrend {
			total += p.Count
		}
		gt.Number(t, total).Equal(2)
	})
}
