package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/riskregister/pkg/domain/interfaces"
	"github.com/secmon-lab/riskregister/pkg/domain/model"
	"github.com/secmon-lab/riskregister/pkg/domain/model/board"
	"github.com/secmon-lab/riskregister/pkg/usecase"
	"github.com/secmon-lab/riskregister/pkg/utils/errutil"
	"github.com/secmon-lab/riskregister/pkg/utils/safe"
)

const maxBodySize = 1 << 20

var errBadRequest = goerr.New("bad request")

type successResponse struct {
	Success bool `json:"success"`
}

// writeJSON encodes v as the response body
func writeJSON(ctx context.Context, w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		errutil.HandleHTTP(ctx, w, goerr.Wrap(err, "failed to marshal response"), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	safe.Write(ctx, w, data)
}

// decodeJSON reads a JSON request body into v
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(v); err != nil {
		return goerr.Wrap(errBadRequest, "invalid request body", goerr.V("cause", err.Error()))
	}
	return nil
}

// writeError maps use case errors to HTTP status codes
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, statusOf(err))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, usecase.ErrRiskNotFound),
		errors.Is(err, usecase.ErrMitigationNotFound),
		errors.Is(err, usecase.ErrCategoryNotFound),
		errors.Is(err, usecase.ErrFrameworkNotFound),
		errors.Is(err, usecase.ErrControlNotFound),
		errors.Is(err, usecase.ErrUserNotFound),
		errors.Is(err, interfaces.ErrNotFound):
		return http.StatusNotFound

	case errors.Is(err, usecase.ErrInvalidCredentials),
		errors.Is(err, usecase.ErrInvalidToken):
		return http.StatusUnauthorized

	case errors.Is(err, usecase.ErrForbidden):
		return http.StatusForbidden

	case errors.Is(err, usecase.ErrCategoryExists),
		errors.Is(err, usecase.ErrEmailTaken),
		errors.Is(err, interfaces.ErrConflict):
		return http.StatusConflict

	case errors.Is(err, errBadRequest),
		errors.Is(err, model.ErrMissingRequired),
		errors.Is(err, model.ErrInvalidValue),
		errors.Is(err, model.ErrValueTooLong),
		errors.Is(err, model.ErrInvalidDate):
		return http.StatusBadRequest

	// a stored risk with an unknown status is a server side fault
	case errors.Is(err, board.ErrInvalidStatus):
		return http.StatusInternalServerError

	default:
		return http.StatusInternalServerError
	}
}

// queryInt parses an integer query parameter, falling back to def when the
// value is missing or malformed
func queryInt(r *http.Request, name string, def int) int {
	v := r.URL.Query().Get(name)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}
