package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/example/ecolife-shop/internal/domain/cart"
	"github.com/example/ecolife-shop/internal/domain/catalog"
	"github.com/example/ecolife-shop/internal/domain/checkout"
	"github.com/example/ecolife-shop/internal/domain/delivery"
	"github.com/example/ecolife-shop/internal/domain/pricing"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var errInvalidBody = errors.New("invalid request body")

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	var verrs validator.ValidationErrors
	switch {
	case errors.Is(err, catalog.ErrProductNotFound):
		return http.StatusNotFound
	case errors.Is(err, errInvalidBody),
		errors.Is(err, pricing.ErrInvalidPromo),
		errors.Is(err, delivery.ErrUnknownMethod),
		errors.Is(err, checkout.ErrEmptyCart),
		errors.Is(err, cart.ErrQuantityLimit),
		errors.As(err, &verrs):
		return http.StatusBadRequest
	case errors.Is(err, cart.ErrCheckoutInProgress):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func (h *Handlers) respondErr(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		respondJSONError(w, "internal error", status)
		return
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, strings.ToLower(fe.Field()))
		}
		respondJSON(w, status, map[string]any{"error": "invalid contact", "fields": fields})
		return
	}
	respondJSONError(w, err.Error(), status)
}

func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return errInvalidBody
	}
	return nil
}
