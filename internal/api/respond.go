package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/azzamfsta/Pharmacy-Management-System/domain"
	"github.com/azzamfsta/Pharmacy-Management-System/internal/pos"
)

func decodeJSON(r *http.Request, dest interface{}) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(dest)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	encoder := json.NewEncoder(w)
	encoder.SetEscapeHTML(false)
	_ = encoder.Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain and POS errors onto HTTP status codes.
func statusFor(err error) int {
	var commitErr *pos.CommitError
	switch {
	case errors.Is(err, pos.ErrCheckoutInProgress):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInsufficientStock), errors.As(err, &commitErr):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrAlreadyExists), errors.Is(err, domain.ErrGroupInUse):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvalidInput), errors.Is(err, domain.ErrUnknownGroup), errors.Is(err, pos.ErrEmptyCart):
		return http.StatusBadRequest
	case errors.Is(err, pos.ErrInvoiceUnavailable):
		return http.StatusConflict
	case errors.Is(err, pos.ErrSurfaceUnavailable):
		return http.StatusNotAcceptable
	default:
		return http.StatusInternalServerError
	}
}

// respondFailure logs unexpected errors and hides their detail from clients.
func (h *Handler) respondFailure(w http.ResponseWriter, r *http.Request, err error, fallback string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Printf("%s %s: %v", r.Method, r.URL.Path, err)
		respondError(w, status, fallback)
		return
	}
	respondError(w, status, err.Error())
}

func pathInt64(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

func queryBool(r *http.Request, name string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(r.URL.Query().Get(name)))
	return err == nil && v
}

func queryInt(r *http.Request, name string, def int) int {
	v, err := strconv.Atoi(strings.TrimSpace(r.URL.Query().Get(name)))
	if err != nil || v <= 0 {
		return def
	}
	return v
}
