package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

type mitigationRequest struct {
	Description *string `json:"description"`
	Owner       *string `json:"owner"`
	Status      *string `json:"status"`
	DueDate     *string `json:"due_date"`
}

func listMitigationsHandler(uc *usecase.MitigationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := uc.ListMitigations(r.Context(), types.RiskID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, list)
	}
}

func createMitigationHandler(uc *usecase.MitigationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mitigationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		m, err := uc.CreateMitigation(r.Context(), types.RiskID(chi.URLParam(r, "id")), usecase.CreateMitigationInput{
			Description: deref(req.Description),
			Owner:       deref(req.Owner),
			Status:      types.MitigationStatus(deref(req.Status)),
			DueDate:     deref(req.DueDate),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, m)
	}
}

func getMitigationHandler(uc *usecase.MitigationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		m, err := uc.GetMitigation(r.Context(), types.MitigationID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, m)
	}
}

func updateMitigationHandler(uc *usecase.MitigationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req mitigationRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		m, err := uc.UpdateMitigation(r.Context(), types.MitigationID(chi.URLParam(r, "id")), usecase.UpdateMitigationInput{
			Description: req.Description,
			Owner:       req.Owner,
			Status:      convert[types.MitigationStatus](req.Status),
			DueDate:     req.DueDate,
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, m)
	}
}

func deleteMitigationHandler(uc *usecase.MitigationUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteMitigation(r.Context(), types.MitigationID(chi.URLParam(r, "id"))); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}
