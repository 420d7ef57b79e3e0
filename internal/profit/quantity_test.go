package profit

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCoerceQuantity(t *testing.T) {
	tests := []struct {
		name string
		raw  any
		want int
	}{
		{"int", 3, 3},
		{"int64", int64(4), 4},
		{"integral float", 2.0, 2},
		{"numeric string", " 5 ", 5},
		{"float string", "6.0", 6},
		{"zero kept", 0, 0},
		{"negative kept", -2, -2},
		{"fractional float", 2.5, 1},
		{"nan", math.NaN(), 1},
		{"text", "two", 1},
		{"empty string", "", 1},
		{"nil", nil, 1},
		{"unsupported type", []int{1}, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CoerceQuantity(tt.raw))
		})
	}
}

func TestQuantityPolicyDefault(t *testing.T) {
	p := QuantityPolicy{Default: 7}
	assert.Equal(t, 7, p.Coerce("n/a"))
	assert.Equal(t, 2, p.Coerce("2"))
}
