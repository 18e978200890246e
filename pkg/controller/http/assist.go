package http

import (
	"net/http"

	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func summarizeHandler(uc *usecase.AssistUseCase) http.HandlerFunc {
	type request struct {
		Title       string `json:"title"`
		Description string `json:"description"`
		Severity    string `json:"severity"`
		Status      string `json:"status"`
	}
	type response struct {
		Summary string `json:"summary"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		summary := uc.Summarize(usecase.SummarizeInput{
			Title:       req.Title,
			Description: req.Description,
			Severity:    types.Severity(req.Severity),
			Status:      types.RiskStatus(req.Status),
		})
		writeJSON(r.Context(), w, http.StatusOK, response{Summary: summary})
	}
}

func draftMitigationHandler(uc *usecase.AssistUseCase) http.HandlerFunc {
	type request struct {
		RiskTitle       string `json:"risk_title"`
		RiskDescription string `json:"risk_description"`
		Severity        string `json:"severity"`
	}
	type response struct {
		Draft string `json:"draft"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		draft := uc.DraftMitigation(usecase.DraftMitigationInput{
			RiskTitle:       req.RiskTitle,
			RiskDescription: req.RiskDescription,
			Severity:        types.Severity(req.Severity),
		})
		writeJSON(r.Context(), w, http.StatusOK, response{Draft: draft})
	}
}
