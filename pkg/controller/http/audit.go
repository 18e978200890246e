package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

func auditHandler(uc *usecase.AuditUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		logs, err := uc.List(r.Context(),
			types.EntityType(chi.URLParam(r, "entity_type")),
			chi.URLParam(r, "entity_id"),
			queryInt(r, "limit", 0),
		)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, logs)
	}
}
