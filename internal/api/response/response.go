package response

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/edvin/routemanager/internal/core"
	"github.com/edvin/routemanager/internal/validate"
)

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, message string) {
	WriteJSON(w, status, map[string]string{"error": message})
}

// WriteMessage writes a 200 confirmation body.
func WriteMessage(w http.ResponseWriter, message string) {
	WriteJSON(w, http.StatusOK, map[string]string{"message": message})
}

// WriteServiceError maps an error from request decoding or the core
// service to its status code:
//
//	*validate.Error            422, with "field"
//	core.ErrNotFound           404
//	core.ErrConflict           400
//	core.ErrStorageUnavailable 503
//	anything else              500
func WriteServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var ve *validate.Error
	switch {
	case errors.As(err, &ve):
		WriteJSON(w, http.StatusUnprocessableEntity, map[string]string{
			"error": ve.Message,
			"field": ve.Field,
		})
	case errors.Is(err, core.ErrNotFound):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, core.ErrConflict):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, core.ErrStorageUnavailable):
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("graph store unavailable")
		WriteError(w, http.StatusServiceUnavailable, "storage unavailable")
	default:
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("unhandled error")
		WriteError(w, http.StatusInternalServerError, "internal server error")
	}
}
