package model_test

import (
	"math"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
)

func ptr[T any](v T) *T {
	return &v
}

func TestRiskQueryNormalize(t *testing.T) {
	t.Run("nil query gets defaults", func(t *testing.T) {
		var q *model.RiskQuery
		n := q.Normalize()
		gt.Number(t, n.Page).Equal(1)
		gt.Number(t, n.Limit).Equal(model.DefaultRiskPageLimit)
		gt.Value(t, n.Sort).Equal("created_at")
		gt.Value(t, n.Order).Equal("desc")
		gt.Number(t, n.Offset()).Equal(0)
	})

	t.Run("out of range values are reset", func(t *testing.T) {
		n := (&model.RiskQuery{Page: -2, Limit: 500, Sort: "password", Order: "sideways"}).Normalize()
		gt.Number(t, n.Page).Equal(1)
		gt.Number(t, n.Limit).Equal(model.DefaultRiskPageLimit)
		gt.Value(t, n.Sort).Equal("created_at")
		gt.Value(t, n.Order).Equal("desc")
	})

	t.Run("page is clamped so the offset stays positive", func(t *testing.T) {
		n := (&model.RiskQuery{Page: math.MaxInt, Limit: 20}).Normalize()
		gt.Number(t, n.Offset()).GreaterOrEqual(0)
		gt.Number(t, n.Page).Equal(math.MaxInt/20 + 1)
	})

	t.Run("valid values are kept", func(t *testing.T) {
		n := (&model.RiskQuery{Page: 3, Limit: 10, Sort: "title", Order: "asc"}).Normalize()
		gt.Number(t, n.Offset()).Equal(20)
		gt.Value(t, n.Sort).Equal("title")
		gt.Value(t, n.Order).Equal("asc")
	})
}

func sampleRisks() []*model.Risk {
	base := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	cat := types.CategoryID("security")
	return []*model.Risk{
		{ID: "r1", Title: "Phishing campaign", Status: types.RiskStatusOpen, Severity: types.SeverityHigh, OwnerID: "u1", CategoryID: &cat, CreatedAt: base},
		{ID: "r2", Title: "Vendor outage", Description: "Cloud provider PHISHING-unrelated", Status: types.RiskStatusMitigating, Severity: types.SeverityLow, OwnerID: "u2", CreatedAt: base.Add(time.Hour)},
		{ID: "r3", Title: "Data loss", Status: types.RiskStatusOpen, Severity: types.SeverityCritical, OwnerID: "u1", CreatedAt: base.Add(2 * time.Hour)},
	}
}

func TestApplyRiskQuery(t *testing.T) {
	t.Run("default sort is newest first", func(t *testing.T) {
		page := model.ApplyRiskQuery(sampleRisks(), nil)
		gt.Number(t, page.Meta.Total).Equal(3)
		gt.Value(t, page.Data[0].ID).Equal(types.RiskID("r3"))
		gt.Value(t, page.Data[2].ID).Equal(types.RiskID("r1"))
	})

	t.Run("filters combine", func(t *testing.T) {
		page := model.ApplyRiskQuery(sampleRisks(), &model.RiskQuery{
			Status:  ptr(types.RiskStatusOpen),
			OwnerID: ptr(types.UserID("u1")),
		})
		gt.Number(t, page.Meta.Total).Equal(2)

		page = model.ApplyRiskQuery(sampleRisks(), &model.RiskQuery{
			CategoryID: ptr(types.CategoryID("security")),
		})
		gt.Array(t, page.Data).Length(1)
		gt.Value(t, page.Data[0].ID).Equal(types.RiskID("r1"))
	})

	t.Run("search is case-insensitive over title and description", func(t *testing.T) {
		page := model.ApplyRiskQuery(sampleRisks(), &model.RiskQuery{Search: "phishing"})
		gt.Number(t, page.Meta.Total).Equal(2)
	})

	t.Run("severity sort uses rank", func(t *testing.T) {
		page := model.ApplyRiskQuery(sampleRisks(), &model.RiskQuery{Sort: "severity", Order: "asc"})
		gt.Value(t, page.Data[0].Severity).Equal(types.SeverityLow)
		gt.Value(t, page.Data[2].Severity).Equal(types.SeverityCritical)
	})

	t.Run("pagination past the end is empty", func(t *testing.T) {
		page := model.ApplyRiskQuery(sampleRisks(), &model.RiskQuery{Page: 2, Limit: 2})
		gt.Array(t, page.Data).Length(1)
		page = model.ApplyRiskQuery(sampleRisks(), &model.RiskQuery{Page: 5, Limit: 2})
		gt.Array(t, page.Data).Length(0)
		gt.Number(t, page.Meta.Total).Equal(3)
	})

	t.Run("huge page numbers do not overflow the offset", func(t *testing.T) {
		for _, pageNum := range []int{500000000000000001, math.MaxInt} {
			page := model.ApplyRiskQuery(sampleRisks(), &model.RiskQuery{Page: pageNum, Limit: 20})
			gt.Array(t, page.Data).Length(0)
			gt.Number(t, page.Meta.Total).Equal(3)
		}
	})
}

func TestRiskCopy(t *testing.T) {
	cat := types.CategoryID("ops")
	review := time.Now()
	r := &model.Risk{ID: "r1", CategoryID: &cat, ReviewDate: &review, Owner: &model.User{Name: "x"}}
	c := r.Copy()
	*c.CategoryID = "changed"
	gt.Value(t, *r.CategoryID).Equal(types.CategoryID("ops"))
	gt.Value(t, c.Owner).Nil()
}
