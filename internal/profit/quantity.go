package profit

import (
	"math"
	"strconv"
	"strings"
)

// QuantityPolicy decides the order quantity used for a profit computation when the
// supplied value is missing or unusable.
type QuantityPolicy struct {
	Default int
}

// DefaultQuantityPolicy falls back to a single unit.
var DefaultQuantityPolicy = QuantityPolicy{Default: 1}

// Coerce converts a raw quantity into an int. Integers, integral floats and numeric
// strings are taken as-is; anything else yields p.Default.
func (p QuantityPolicy) Coerce(raw any) int {
	switch v := raw.(type) {
	case int:
		return v
	case int32:
		return int(v)
	case int64:
		return int(v)
	case float32:
		return p.fromFloat(float64(v))
	case float64:
		return p.fromFloat(v)
	case string:
		s := strings.TrimSpace(v)
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
		if f, err := strconv.ParseFloat(s, 64); err == nil {
			return p.fromFloat(f)
		}
	}
	return p.Default
}

func (p QuantityPolicy) fromFloat(f float64) int {
	if math.IsNaN(f) || math.IsInf(f, 0) || f != math.Trunc(f) {
		return p.Default
	}
	return int(f)
}

// CoerceQuantity applies DefaultQuantityPolicy.
func CoerceQuantity(raw any) int {
	return DefaultQuantityPolicy.Coerce(raw)
}
