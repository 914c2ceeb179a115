package blackbook

import (
	"context"

	"github.com/nekruzvatanshoev/carval/pkg/carval/dal"
	"github.com/nekruzvatanshoev/carval/pkg/carval/logger"
	"github.com/nekruzvatanshoev/carval/pkg/carval/province"
)

// RegionPricer fetches pricing for a single region.
type RegionPricer interface {
	FetchRegionPricing(ctx context.Context, vin string, odometerMiles int, region province.Region) (*dal.RegionPricing, error)
}

// Aggregator walks province.All in order and stops at the first failure.
type Aggregator struct {
	pricer    RegionPricer
	provinces []string
	logger    logger.Logger
}

func NewAggregator(pricer RegionPricer, log logger.Logger) *Aggregator {
	return &Aggregator{
		pricer:    pricer,
		provinces: province.All,
		logger:    log,
	}
}

// Aggregate merges info with the pricing of every province. On any region
// error it returns that error and no records.
func (a *Aggregator) Aggregate(ctx context.Context, info dal.VehicleInfo, odometerKm, odometerMiles int) ([]dal.PricingRecord, error) {
	records := make([]dal.PricingRecord, 0, len(a.provinces))

	for _, name := range a.provinces {
		region, known := regionFor(name)
		if !known {
			a.logger.Warn("unknown province, using fallback code", map[string]interface{}{
				"province": name,
				"code":     region.Code,
			})
		}

		pricing, err := a.pricer.FetchRegionPricing(ctx, info.VIN, odometerMiles, region)
		if err != nil {
			a.logger.Warn("province pricing failed, aborting", map[string]interface{}{
				"province": name,
				"error":    err.Error(),
			})
			return nil, err
		}

		records = append(records, dal.PricingRecord{
			Province:          region.Name,
			ProvinceCode:      region.Code,
			VIN:               info.VIN,
			OdometerKm:        odometerKm,
			OdometerMiles:     odometerMiles,
			UVC:               string(info.UVC),
			Year:              string(info.ModelYear),
			Make:              info.Make,
			Model:             info.Model,
			Series:            pricing.Series,
			Style:             pricing.Style,
			PublishDate:       info.PublishDate,
			AdjustedWholesale: pricing.AdjustedWholesale,
			AdjustedRetail:    pricing.AdjustedRetail,
			AdjustedTradein:   pricing.AdjustedTradein,
		})
	}

	return records, nil
}
