package dal

// Listing is one market listing. Only Price is guaranteed.
type Listing struct {
	Price     int    `json:"price"`
	MileageKm *int   `json:"mileage_km,omitempty"`
	Location  string `json:"location,omitempty"`
	URL       string `json:"url,omitempty"`
	IsSample  bool   `json:"is_sample,omitempty"`
}

// MarketListing is a Listing compared against a reference retail value.
type MarketListing struct {
	Listing
	PriceVsBlackbook *float64 `json:"price_vs_blackbook"`
}

// CompareListings attaches price_vs_blackbook to every listing. The
// difference is only computed for a positive reference.
func CompareListings(listings []Listing, reference float64) []MarketListing {
	out := make([]MarketListing, 0, len(listings))
	for _, l := range listings {
		ml := MarketListing{Listing: l}
		if reference > 0 {
			diff := float64(l.Price) - reference
			ml.PriceVsBlackbook = &diff
		}
		out = append(out, ml)
	}
	return out
}
