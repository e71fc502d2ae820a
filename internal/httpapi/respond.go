package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	log "github.com/sirupsen/logrus"

	"corkboard/internal/domain"
	"corkboard/internal/render"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warnf("[HTTP] encode response: %v", err)
	}
}

// writeError maps domain sentinels onto status codes.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, domain.ErrItemNotFound),
		errors.Is(err, domain.ErrTaskNotFound),
		errors.Is(err, domain.ErrSnapshotNotFound):
		status = http.StatusNotFound
	case errors.Is(err, domain.ErrNotConfirmed):
		status = http.StatusPreconditionRequired
	case errors.Is(err, render.ErrEmptyScene):
		status = http.StatusConflict
	case errors.Is(err, domain.ErrEmptyTask), errors.Is(err, domain.ErrInvalidInput):
		status = http.StatusBadRequest
	}
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

var validate = validator.New()

// decode reads a JSON body into v and checks its validate tags. Both kinds
// of failure are reported as ErrInvalidInput.
func decode(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	if err := validate.Struct(v); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	return nil
}
