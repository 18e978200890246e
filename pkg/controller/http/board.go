package http

import (
	"net/http"

	"github.com/secmon-lab/riskregister/pkg/domain/model/board"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func boardHandler(uc *usecase.BoardUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		view, err := uc.View(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, view)
	}
}

func dragStartHandler(uc *usecase.BoardUseCase) http.HandlerFunc {
	type request struct {
		RiskID string `json:"risk_id"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		if err := uc.BeginDrag(r.Context(), types.RiskID(req.RiskID)); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

// dragEndHandler drops the card on column. An empty column means the card
// was released outside any column.
func dragEndHandler(uc *usecase.BoardUseCase) http.HandlerFunc {
	type request struct {
		RiskID string `json:"risk_id"`
		Column string `json:"column"`
	}
	type response struct {
		Outcome board.Outcome `json:"outcome"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		var dest *types.RiskStatus
		if req.Column != "" {
			status := types.RiskStatus(req.Column)
			dest = &status
		}

		outcome, err := uc.EndDrag(r.Context(), types.RiskID(req.RiskID), dest)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, response{Outcome: outcome})
	}
}
