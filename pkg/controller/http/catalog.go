package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/secmon-lab/riskregister/pkg/domain/types"
	"github.com/secmon-lab/riskregister/pkg/usecase"
)

type categoryRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
}

func listCategoriesHandler(uc *usecase.CategoryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := uc.ListCategories(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, list)
	}
}

func getCategoryHandler(uc *usecase.CategoryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c, err := uc.GetCategory(r.Context(), types.CategoryID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, c)
	}
}

func createCategoryHandler(uc *usecase.CategoryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		c, err := uc.CreateCategory(r.Context(), usecase.CategoryInput{
			Name:        deref(req.Name),
			Description: deref(req.Description),
		})
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, c)
	}
}

func updateCategoryHandler(uc *usecase.CategoryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req categoryRequest
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		c, err := uc.UpdateCategory(r.Context(), types.CategoryID(chi.URLParam(r, "id")), req.Name, req.Description)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, c)
	}
}

func deleteCategoryHandler(uc *usecase.CategoryUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.DeleteCategory(r.Context(), types.CategoryID(chi.URLParam(r, "id"))); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}

func listFrameworksHandler(uc *usecase.FrameworkUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := uc.ListFrameworks(r.Context())
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, list)
	}
}

func createFrameworkHandler(uc *usecase.FrameworkUseCase) http.HandlerFunc {
	type request struct {
		Name        string `json:"name"`
		Description string `json:"description"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		fw, err := uc.CreateFramework(r.Context(), req.Name, req.Description)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, fw)
	}
}

func listControlsHandler(uc *usecase.FrameworkUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := uc.ListControls(r.Context(), types.RiskID(chi.URLParam(r, "id")))
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, list)
	}
}

func linkControlHandler(uc *usecase.FrameworkUseCase) http.HandlerFunc {
	type request struct {
		FrameworkID string `json:"framework_id"`
		ControlRef  string `json:"control_ref"`
		Notes       string `json:"notes"`
	}
	return func(w http.ResponseWriter, r *http.Request) {
		var req request
		if err := decodeJSON(w, r, &req); err != nil {
			writeError(w, r, err)
			return
		}

		mapping, err := uc.LinkControl(r.Context(),
			types.RiskID(chi.URLParam(r, "id")),
			types.FrameworkID(req.FrameworkID),
			req.ControlRef,
			req.Notes,
		)
		if err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusCreated, mapping)
	}
}

func unlinkControlHandler(uc *usecase.FrameworkUseCase) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := uc.UnlinkControl(r.Context(), types.ControlMappingID(chi.URLParam(r, "id"))); err != nil {
			writeError(w, r, err)
			return
		}
		writeJSON(r.Context(), w, http.StatusOK, successResponse{Success: true})
	}
}
