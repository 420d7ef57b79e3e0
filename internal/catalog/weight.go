package catalog

import (
	"regexp"
	"strconv"
	"strings"
)

// DefaultWeightKg is used when a description carries no recognizable unit.
const DefaultWeightKg = 0.5

var (
	reGrams     = regexp.MustCompile(`(\d+)\s*(?:grams?|gms?|g)\b`)
	reKilograms = regexp.MustCompile(`(\d+(?:\.\d+)?)\s*(?:kilograms?|kgs?)\b`)
)

// ExtractWeight derives a package weight in kilograms from a product description.
// Grams are checked before kilograms and the first match wins.
func ExtractWeight(description string) float64 {
	s := strings.ToLower(description)
	if m := reGrams.FindStringSubmatch(s); m != nil {
		if g, err := strconv.ParseFloat(m[1], 64); err == nil {
			return g / 1000
		}
	}
	if m := reKilograms.FindStringSubmatch(s); m != nil {
		if kg, err := strconv.ParseFloat(m[1], 64); err == nil {
			return kg
		}
	}
	return DefaultWeightKg
}
