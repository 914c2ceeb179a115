package nhtsa

import (
	"strings"

	"github.com/nekruzvatanshoev/carval/pkg/carval/dal"
)

// Upstream variable names.
const (
	varMake               = "Make"
	varModel              = "Model"
	varModelYear          = "Model Year"
	varTrim               = "Trim"
	varTrim2              = "Trim2"
	varSeries             = "Series"
	varSeries2            = "Series2"
	varBodyClass          = "Body Class"
	varEngineModel        = "Engine Model"
	varEngineConfig       = "Engine Configuration"
	varCylinders          = "Engine Number of Cylinders"
	varDisplacement       = "Displacement (L)"
	varTransmission       = "Transmission Style"
	varTransmissionSpeeds = "Transmission Speeds"
	varDriveType          = "Drive Type"
	varFuelType           = "Fuel Type - Primary"
	varManufacturer       = "Manufacturer Name"
	varPlantCity          = "Plant City"
	varPlantCountry       = "Plant Country"
	varVehicleType        = "Vehicle Type"
	varDoors              = "Doors"
	varWindows            = "Windows"
	varSeatRows           = "Seat Rows"
)

// fieldMapping assigns the first non-empty upstream variable to a target
// attribute. Later variables are fallbacks.
type fieldMapping struct {
	variables []string
	assign    func(v *dal.DecodedVehicle, value string)
}

var fieldMappings = []fieldMapping{
	{[]string{varMake}, func(v *dal.DecodedVehicle, s string) { v.Make = s }},
	{[]string{varModel}, func(v *dal.DecodedVehicle, s string) { v.Model = s }},
	{[]string{varModelYear}, func(v *dal.DecodedVehicle, s string) { v.Year = s }},
	{[]string{varTrim}, func(v *dal.DecodedVehicle, s string) { v.TrimLevel = s }},
	{[]string{varSeries}, func(v *dal.DecodedVehicle, s string) { v.Series = s }},
	{[]string{varBodyClass}, func(v *dal.DecodedVehicle, s string) { v.BodyClass = s }},
	{[]string{varEngineModel, varDisplacement}, func(v *dal.DecodedVehicle, s string) { v.Engine = s }},
	{[]string{varEngineConfig}, func(v *dal.DecodedVehicle, s string) { v.EngineConfig = s }},
	{[]string{varCylinders}, func(v *dal.DecodedVehicle, s string) { v.Cylinders = s }},
	{[]string{varDisplacement}, func(v *dal.DecodedVehicle, s string) { v.Displacement = s }},
	{[]string{varTransmission}, func(v *dal.DecodedVehicle, s string) { v.Transmission = s }},
	{[]string{varTransmissionSpeeds}, func(v *dal.DecodedVehicle, s string) { v.TransmissionSpeeds = s }},
	{[]string{varDriveType}, func(v *dal.DecodedVehicle, s string) { v.DriveType = s }},
	{[]string{varFuelType}, func(v *dal.DecodedVehicle, s string) { v.FuelType = s }},
	{[]string{varManufacturer}, func(v *dal.DecodedVehicle, s string) { v.Manufacturer = s }},
	{[]string{varPlantCity, varPlantCountry}, func(v *dal.DecodedVehicle, s string) { v.Plant = s }},
	{[]string{varVehicleType}, func(v *dal.DecodedVehicle, s string) { v.VehicleType = s }},
	{[]string{varDoors}, func(v *dal.DecodedVehicle, s string) { v.Doors = s }},
	{[]string{varWindows}, func(v *dal.DecodedVehicle, s string) { v.Windows = s }},
	{[]string{varSeatRows}, func(v *dal.DecodedVehicle, s string) { v.SeatRows = s }},
}

// variables indexes the first non-blank value of every upstream variable.
type variables map[string]string

func indexResults(results []result) variables {
	vars := make(variables, len(results))
	for _, r := range results {
		value := strings.TrimSpace(string(r.Value))
		if value == "" {
			continue
		}
		if _, seen := vars[r.Variable]; !seen {
			vars[r.Variable] = value
		}
	}
	return vars
}

func (vars variables) first(names ...string) string {
	for _, name := range names {
		if value, ok := vars[name]; ok {
			return value
		}
	}
	return ""
}

// reshape applies fieldMappings and the composite trim rule. Attributes
// without a value stay empty and are dropped on encoding.
func reshape(vin string, vars variables) dal.DecodedVehicle {
	decoded := dal.DecodedVehicle{VIN: vin}
	for _, m := range fieldMappings {
		if value := vars.first(m.variables...); value != "" {
			m.assign(&decoded, value)
		}
	}
	decoded.Trim = compositeTrim(vars)
	return decoded
}

// compositeTrim joins Series, Series2, Trim and Trim2, skipping a second
// value equal to its first.
func compositeTrim(vars variables) string {
	series, series2 := vars[varSeries], vars[varSeries2]
	trim, trim2 := vars[varTrim], vars[varTrim2]

	var parts []string
	if series != "" {
		parts = append(parts, series)
	}
	if series2 != "" && series2 != series {
		parts = append(parts, series2)
	}
	if trim != "" {
		parts = append(parts, trim)
	}
	if trim2 != "" && trim2 != trim {
		parts = append(parts, trim2)
	}
	// With no parts both Trim and Series are empty, so there is nothing to
	// fall back to.
	return strings.Join(parts, " ")
}
