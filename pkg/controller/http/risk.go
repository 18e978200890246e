package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

type riskRequest struct {
	Title       *string `json:"title"`
	Description *string `json:"description"`
	OwnerID     *string `json:"owner_id"`
	Status      *string `json:"status"`
	Severity    *string `json:"severity"`
	CategoryID  *string `json:"category_id"`
	ReviewDate  *string `json:"review_date"`
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func convert[T ~string](s *string) *T {
	if s == nil {
		return nil
	}
	v := T(*s)
	return &v
}

func (x *riskRequest) createInput() usecase.CreateRiskInput {
	return usecase.CreateRiskInput{
		Title:       deref(x.Title),
		Description: deref(x.Description),
		OwnerID:     types.UserID(deref(x.OwnerID)),
		Status:      types.RiskStatus(deref(x.Status)),
		Severity:    types.Severity(deref(x.Severity)),
		CategoryID:  convert[types.CategoryID](x.CategoryID),
		ReviewDate:  deref(x.ReviewDate),
	}
}

func (x *riskRequest) updateInput() usecase.UpdateRiskInput {
	return usecase.UpdateRiskInput{
		Title:       x.Title,
		Description: x.Description,
		OwnerID:     convert[types.UserID](x.OwnerID),
		Status:      convert[types.RiskStatus](x.Status),
		Severity:    convert[types.Severity](x.Severity),
		CategoryID:  convert[types.CategoryID](x.CategoryID),
		ReviewDate:  x.ReviewDate,
	}
}

// parseRiskQuery reads filters, sort and paging from the query string
func parseRiskQuery(r *http.Request) (*model.RiskQuery, error) {
	q := r.URL.Query()
	query := &model.RiskQuery{
		Search: q.Get("search"),
		Sort:   q.Get("sort"),
		Order:  q.Get("order"),
		Page:   queryInt(r, "page", 1),
		Limit:  queryInt(r, "limit", model.DefaultRiskPageLimit),
	}

	if v := q.Get("status"); v != "" {
		status, err := types.ParseRiskStatus(v)
		if err != nil {
			return nil, goerr.Wrap(errBadRequest, "invalid status filter", goerr.V("status", v))
		}
		query.Status = &status
	}
	if v := q.Get("severity"); v != "" {
		severity, err := types.ParseSeverity(v)
		if err != nil {
			return nil, goerr.Wrap(errBadRequest, "invalid severity filter", goerr.V("severity", v))
		}
		query.Severity = &severity
	}
	if v := q.Get("category_id"); v != "" {
		id := types.CategoryID(v)
		query.CategoryID = &id
	}
	if v := q.Get("owner_id"); v != "" {
		id := types.UserID(v)
		query.OwnerID = &id
	}
	return query, nil
}

func listRisksHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		query, err := parseRiskQuery(r)
		if err != nil {
			writeError(w, r, err)
			return
		}

		page, err := uc.ListRisks(r.Context(), query)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, page)
	}
}

func getRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		risk, err := uc.GetRisk(r.Context(), types.RiskID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, risk)
	}
}

func createRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req riskRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		risk, err := uc.CreateRisk(r.Context(), req.createInput())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, risk)
	}
}

func updateRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req riskRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		risk, err := uc.UpdateRisk(r.Context(), types.RiskID(chi.URLParam(r, "id")), req.updateInput())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, risk)
	}
}

func deleteRiskHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteRisk(r.Context(), types.RiskID(chi.URLParam(r, "id"))); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

func updateRiskStatusHandler(uc *usecase.RiskUseCase) http.HandlerFunc {
	type request struct {
		Status string `json:"status"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		id := types.RiskID(chi.URLParam(r, "id"))
		if err := uc.UpdateStatus(r.Context(), id, types.RiskStatus(req.Status)); err != nil {
			writeError(w, r, err)
			return
		}

		risk, err := uc.GetRisk(r.Context(), id)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, risk)
	}
}
