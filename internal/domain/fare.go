package domain

// Currency is the only currency this engine moves.
const Currency = "TZS"

// FareRounding is the granularity every fare is rounded up to. Quotes are
// always positive multiples of this value.
const FareRounding int64 = 500

// FareBreakdown is the audit snapshot captured when a fare is quoted. It is
// embedded in the trip at creation and never recomputed, so later changes to
// the commodity index or pricing rules cannot retroactively alter a quoted
// or reserved fare.
type FareBreakdown struct {
	CommodityPrice float64      `json:"commodity_price"`
	RawPrice       float64      `json:"raw_price"`
	Model          PricingModel `json:"model"`
	TierMaxKm      float64      `json:"tier_max_km,omitempty"` // zero when no tier applied
	MinFareApplied bool         `json:"min_fare_applied"`
	BusinessMargin bool         `json:"business_margin"`
}

// FareQuote is the priced result for a distance and vehicle class.
type FareQuote struct {
	DistanceKm   float64       `json:"distance_km"`
	VehicleClass VehicleClass  `json:"vehicle_class"`
	Fare         int64         `json:"fare"`
	Currency     string        `json:"currency"`
	Breakdown    FareBreakdown `json:"breakdown"`
}
