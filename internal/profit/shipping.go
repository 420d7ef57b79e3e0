package profit

import (
	"math"

	"github.com/shopspring/decimal"
)

// flat cost of a 5 kg parcel; the heavy tier builds on it
const heavyBase = 263

// ShippingCost maps a total parcel weight in kilograms to the carrier charge.
// Any started kilogram above 2 kg is billed in full.
func ShippingCost(totalWeightKg float64) decimal.Decimal {
	w := totalWeightKg
	switch {
	case w <= 0.5:
		return decimal.NewFromInt(76)
	case w <= 1.0:
		return decimal.NewFromInt(100)
	case w <= 2.0:
		return decimal.NewFromInt(143)
	case w <= 5.0:
		return decimal.NewFromInt(143 + int64(math.Ceil(w-2.0))*40)
	default:
		return decimal.NewFromInt(heavyBase + int64(math.Ceil(w-5.0))*26)
	}
}
