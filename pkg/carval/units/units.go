// Package units converts odometer readings between kilometres and miles.
package units

const (
	KmToMiles = 0.621371
	MilesToKm = 1.60934
)

// KmToMi converts kilometres to whole miles, truncating toward zero.
func KmToMi(km int) int {
	return int(float64(km) * KmToMiles)
}

// MiToKm converts miles to whole kilometres, truncating toward zero.
func MiToKm(miles int) int {
	return int(float64(miles) * MilesToKm)
}
