package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nekruzvatanshoev/carval/pkg/carval/apperr"
	"github.com/nekruzvatanshoev/carval/pkg/carval/dal"
	"github.com/nekruzvatanshoev/carval/pkg/carval/listings"
)

// TestCredentials checks the configured valuation credentials.
func (h *httpServer) TestCredentials(w http.ResponseWriter, r *http.Request) {
	msg, err := h.svc.Valuator.TestCredentials(r.Context())
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	h.respond(w, r, http.StatusOK, dal.MessageResponse{Success: true, Message: msg})
}

// FetchVehicle returns default valuation data for {vin, odometer}.
func (h *httpServer) FetchVehicle(w http.ResponseWriter, r *http.Request) {
	vin, odometer, err := validateVINAndNumber(r, "odometer", "Odometer reading is required", "Odometer must be a valid number")
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	data, err := h.svc.Valuator.FetchVehicleData(r.Context(), vin, odometer)
	if err != nil {
		h.failComponent(w, r, err, http.StatusBadRequest)
		return
	}
	h.respond(w, r, http.StatusOK, dal.VehicleResponse{Success: true, Data: *data})
}

// GetSchema returns the valuation service introspection payload.
func (h *httpServer) GetSchema(w http.ResponseWriter, r *http.Request) {
	schema, err := h.svc.Valuator.GetSchemaInfo(r.Context())
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	h.respond(w, r, http.StatusOK, dal.SchemaResponse{Success: true, Data: schema})
}

// PricingCards returns the thirteen province cards for {vin, mileage}.
func (h *httpServer) PricingCards(w http.ResponseWriter, r *http.Request) {
	vin, mileage, err := validateVINAndNumber(r, "mileage", "Mileage is required", "Mileage must be a valid number")
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	cards, err := h.svc.Valuator.FetchPricingCards(r.Context(), vin, mileage)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	h.respond(w, r, http.StatusOK, dal.PricingCardsResponse{Cards: cards})
}

// DecodeVIN decodes {vin} with the public decoder.
func (h *httpServer) DecodeVIN(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	vin := p.str("vin")
	if vin == "" {
		h.fail(w, r, http.StatusBadRequest, apperr.NewValidationError("VIN is required"))
		return
	}

	decoded, err := h.svc.Decoder.DecodeVIN(r.Context(), vin)
	if err != nil {
		h.fail(w, r, decodeStatus(err), err)
		return
	}
	h.respond(w, r, http.StatusOK, dal.DecodeResponse{Success: true, VehicleInfo: *decoded})
}

func decodeStatus(err error) int {
	switch apperr.KindOf(err) {
	case apperr.KindValidation, apperr.KindRemote, apperr.KindMalformedResponse:
		return http.StatusBadRequest
	case apperr.KindTimeout:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// MarketListings searches comparable listings and compares them against
// blackbook_retail.
func (h *httpServer) MarketListings(w http.ResponseWriter, r *http.Request) {
	p, err := decodePayload(r)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}

	q, err := validateListingQuery(p)
	if err != nil {
		h.fail(w, r, http.StatusBadRequest, err)
		return
	}
	q.MaxResults = h.maxListings

	reference := 0.0
	if p.present("blackbook_retail") {
		if reference, err = p.float("blackbook_retail"); err != nil {
			h.fail(w, r, http.StatusBadRequest, apperr.NewValidationError("Blackbook retail must be a valid number"))
			return
		}
	}

	found, err := h.svc.Listings.Search(r.Context(), q)
	if err != nil {
		if apperr.Is(err, apperr.KindValidation) {
			h.fail(w, r, http.StatusBadRequest, err)
			return
		}
		h.fail(w, r, http.StatusInternalServerError, fmt.Errorf("Error fetching market listings: %w", err))
		return
	}

	compared := dal.CompareListings(found, reference)
	h.respond(w, r, http.StatusOK, dal.MarketListingsResponse{
		Success:         true,
		Listings:        compared,
		BlackbookRetail: reference,
		Count:           len(compared),
	})
}

// Health always reports healthy.
func (h *httpServer) Health(w http.ResponseWriter, r *http.Request) {
	h.respond(w, r, http.StatusOK, dal.HealthResponse{Status: "healthy", Service: ServiceName})
}

func validateVINAndNumber(r *http.Request, field, missingMsg, invalidMsg string) (string, int, error) {
	p, err := decodePayload(r)
	if err != nil {
		return "", 0, err
	}

	vin := p.str("vin")
	if vin == "" {
		return "", 0, apperr.NewValidationError("VIN is required")
	}

	if !p.present(field) {
		return "", 0, apperr.NewValidationError(missingMsg)
	}
	n, err := p.integer(field)
	if err != nil {
		return "", 0, apperr.NewValidationError(invalidMsg)
	}
	return vin, n, nil
}

func validateListingQuery(p payload) (listings.Query, error) {
	if !p.truthy("year") || !p.truthy("make") || !p.truthy("model") {
		return listings.Query{}, apperr.NewValidationError("Year, make, and model are required")
	}
	year, err := p.integer("year")
	if err != nil {
		return listings.Query{}, apperr.NewValidationError("Year must be a valid number")
	}

	q := listings.Query{
		Year:     year,
		Make:     p.str("make"),
		Model:    p.str("model"),
		Province: p.str("province"),
	}
	if q.Make == "" || q.Model == "" {
		return listings.Query{}, apperr.NewValidationError("Year, make, and model are required")
	}
	return q, nil
}

// failComponent answers with fallback for component errors and 500 for
// anything else.
func (h *httpServer) failComponent(w http.ResponseWriter, r *http.Request, err error, fallback int) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		h.fail(w, r, fallback, err)
		return
	}
	h.fail(w, r, http.StatusInternalServerError, fmt.Errorf("Server error: %w", err))
}

func (h *httpServer) fail(w http.ResponseWriter, r *http.Request, status int, err error) {
	fields := map[string]interface{}{
		"status": status,
		"kind":   string(apperr.KindOf(err)),
	}
	if status >= http.StatusInternalServerError {
		h.requestLogger(r).WithError(err).Error("request failed", fields)
	} else {
		h.requestLogger(r).WithError(err).Warn("request rejected", fields)
	}
	h.respond(w, r, status, dal.ErrorResponse{Success: false, Error: err.Error()})
}

func (h *httpServer) respond(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.requestLogger(r).WithError(err).Error("failed to encode response", nil)
	}
}
