package domain

import "time"

// VehicleClass identifies a cargo vehicle class.
type VehicleClass string

const (
	VehicleClassKirikuu VehicleClass = "KIRIKUU"
	VehicleClassCarry   VehicleClass = "CARRY"
	VehicleClassTownace VehicleClass = "TOWNACE"
	VehicleClassCanter  VehicleClass = "CANTER"
	VehicleClassFuso    VehicleClass = "FUSO"
)

// VehicleClasses lists every known vehicle class. Pricing rules are keyed
// by this set; a class outside it can never be priced.
var VehicleClasses = []VehicleClass{
	VehicleClassKirikuu,
	VehicleClassCarry,
	VehicleClassTownace,
	VehicleClassCanter,
	VehicleClassFuso,
}

// Valid reports whether the vehicle class is one of the known classes.
func (v VehicleClass) Valid() bool {
	for _, c := range VehicleClasses {
		if v == c {
			return true
		}
	}
	return false
}

// PricingModel selects how a rule turns distance into a price.
type PricingModel string

const (
	// PricingModelRange picks a flat multiplier from the first distance
	// bracket the trip fits into.
	PricingModelRange PricingModel = "RANGE"

	// PricingModelLinear computes base + per-km, floored at a minimum.
	PricingModelLinear PricingModel = "LINEAR"
)

// RangeTier is one distance bracket of a range-priced rule.
type RangeTier struct {
	MaxKm      float64 `json:"max_km"`
	Multiplier float64 `json:"multiplier"`
}

// PricingRule prices one vehicle class. Range rules still carry the linear
// multipliers: trips past the last tier fall back to the linear formula.
type PricingRule struct {
	ID                 string
	VehicleClass       VehicleClass
	Model              PricingModel
	BaseFareMultiplier float64
	PerKmMultiplier    float64
	MinFareMultiplier  float64
	Tiers              []RangeTier // ascending MaxKm, RANGE model only
	Active             bool
	UpdatedAt          time.Time
}

// TierFor returns the first tier covering the given distance, or nil if the
// distance is past every tier (long trips price via the linear fallback).
func (r *PricingRule) TierFor(distanceKm float64) *RangeTier {
	for i := range r.Tiers {
		if distanceKm <= r.Tiers[i].MaxKm {
			return &r.Tiers[i]
		}
	}
	return nil
}

// Commodity index keys.
const (
	CommodityFuelPrice      = "fuel_price"
	CommodityBusinessMargin = "business_margin"
	CommodityTrafficBuffer  = "traffic_buffer"
)

// Fallback values used when a commodity key has never been set. Quotes must
// keep working if the admin index is empty.
var commodityDefaults = map[string]float64{
	CommodityFuelPrice:      3200,
	CommodityBusinessMargin: 0.05,
	CommodityTrafficBuffer:  1.0,
}

// CommodityDefault returns the hard-coded fallback for a commodity key.
// Unknown keys default to zero.
func CommodityDefault(key string) float64 {
	return commodityDefaults[key]
}

// CommodityPrice is one indexed unit price (e.g. fuel per liter) or global
// multiplier, updated by an external admin operation.
type CommodityPrice struct {
	Key         string
	Value       float64
	Description string
	UpdatedBy   string
	UpdatedAt   time.Time
}
