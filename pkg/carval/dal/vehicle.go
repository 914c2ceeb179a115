package dal

// UsedVehicle is one vehicle record returned by the valuation service.
// Price figures are nil when the service has no value for them.
type UsedVehicle struct {
	VIN                  string     `json:"vin,omitempty"`
	ModelYear            FlexString `json:"model_year,omitempty"`
	Make                 string     `json:"make,omitempty"`
	Model                string     `json:"model,omitempty"`
	Series               string     `json:"series,omitempty"`
	Style                string     `json:"style,omitempty"`
	UVC                  FlexString `json:"uvc,omitempty"`
	PublishDate          string     `json:"publish_date,omitempty"`
	DescriptionScore     *float64   `json:"description_score,omitempty"`
	BaseWholeRough       *float64   `json:"base_whole_rough,omitempty"`
	MileageWholeRough    *float64   `json:"mileage_whole_rough,omitempty"`
	AdjustedWholeRough   *float64   `json:"adjusted_whole_rough,omitempty"`
	BaseRetailRough      *float64   `json:"base_retail_rough,omitempty"`
	MileageRetailRough   *float64   `json:"mileage_retail_rough,omitempty"`
	AdjustedRetailRough  *float64   `json:"adjusted_retail_rough,omitempty"`
	BaseTradeinRough     *float64   `json:"base_tradein_rough,omitempty"`
	MileageTradeinRough  *float64   `json:"mileage_tradein_rough,omitempty"`
	AdjustedTradeinRough *float64   `json:"adjusted_tradein_rough,omitempty"`
}

// Message is an entry of the valuation service's message list.
type Message struct {
	Description string      `json:"description"`
	Code        interface{} `json:"code"`
	Type        string      `json:"type"`
}

// VehicleData is the result of a single default-region valuation.
type VehicleData struct {
	Vehicle       UsedVehicle `json:"vehicle"`
	WarningCount  int         `json:"warning_count"`
	Messages      []Message   `json:"messages"`
	OdometerKm    int         `json:"odometer_km"`
	OdometerMiles int         `json:"odometer_miles"`
}

// VehicleInfo identifies a vehicle. It is fetched once per pricing request
// and shared by every region record.
type VehicleInfo struct {
	VIN         string     `json:"vin"`
	UVC         FlexString `json:"uvc"`
	ModelYear   FlexString `json:"model_year"`
	Make        string     `json:"make"`
	Model       string     `json:"model"`
	PublishDate string     `json:"publish_date"`
}

// RegionPricing holds the adjusted figures for one region.
type RegionPricing struct {
	AdjustedWholesale *float64
	AdjustedRetail    *float64
	AdjustedTradein   *float64
	Series            string
	Style             string
}

// PricingRecord is one province card.
type PricingRecord struct {
	Province          string   `json:"province"`
	ProvinceCode      string   `json:"province_code"`
	VIN               string   `json:"vin"`
	OdometerKm        int      `json:"odometer_km"`
	OdometerMiles     int      `json:"odometer_miles"`
	UVC               string   `json:"uvc"`
	Year              string   `json:"year"`
	Make              string   `json:"make"`
	Model             string   `json:"model"`
	Series            string   `json:"series"`
	Style             string   `json:"style"`
	PublishDate       string   `json:"publish_date"`
	AdjustedWholesale *float64 `json:"adjusted_wholesale"`
	AdjustedRetail    *float64 `json:"adjusted_retail"`
	AdjustedTradein   *float64 `json:"adjusted_tradein"`
}

// DecodedVehicle is the reshaped VIN decoder output. Empty attributes are
// omitted from the JSON.
type DecodedVehicle struct {
	VIN                string `json:"vin,omitempty"`
	Make               string `json:"make,omitempty"`
	Model              string `json:"model,omitempty"`
	Year               string `json:"year,omitempty"`
	Trim               string `json:"trim,omitempty"`
	TrimLevel          string `json:"trim_level,omitempty"`
	Series             string `json:"series,omitempty"`
	BodyClass          string `json:"body_class,omitempty"`
	Engine             string `json:"engine,omitempty"`
	EngineConfig       string `json:"engine_config,omitempty"`
	Cylinders          string `json:"cylinders,omitempty"`
	Displacement       string `json:"displacement,omitempty"`
	Transmission       string `json:"transmission,omitempty"`
	TransmissionSpeeds string `json:"transmission_speeds,omitempty"`
	DriveType          string `json:"drive_type,omitempty"`
	FuelType           string `json:"fuel_type,omitempty"`
	Manufacturer       string `json:"manufacturer,omitempty"`
	Plant              string `json:"plant,omitempty"`
	VehicleType        string `json:"vehicle_type,omitempty"`
	Doors              string `json:"doors,omitempty"`
	Windows            string `json:"windows,omitempty"`
	SeatRows           string `json:"seat_rows,omitempty"`
}
