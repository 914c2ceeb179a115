package dal

// ErrorResponse is the failure envelope of every endpoint.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

type MessageResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type VehicleResponse struct {
	Success bool        `json:"success"`
	Data    VehicleData `json:"data"`
}

type SchemaResponse struct {
	Success bool                   `json:"success"`
	Data    map[string]interface{} `json:"data"`
}

type PricingCardsResponse struct {
	Cards []PricingRecord `json:"cards"`
}

type DecodeResponse struct {
	Success     bool           `json:"success"`
	VehicleInfo DecodedVehicle `json:"vehicle_info"`
}

type MarketListingsResponse struct {
	Success         bool            `json:"success"`
	Listings        []MarketListing `json:"listings"`
	BlackbookRetail float64         `json:"blackbook_retail"`
	Count           int             `json:"count"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
}
