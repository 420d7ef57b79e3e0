package profit

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-tracker/internal/catalog"
)

func defaultCalculator(t *testing.T) *Calculator {
	t.Helper()
	cat, err := catalog.Default()
	require.NoError(t, err)
	return NewCalculator(cat)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal) {
	t.Helper()
	assert.Truef(t, decimal.RequireFromString(want).Equal(got), "want %s, got %s", want, got)
}

func TestCompute(t *testing.T) {
	calc := defaultCalculator(t)

	t.Run("single known product", func(t *testing.T) {
		assertDecimal(t, "114.73", calc.Compute("Cashew Nuts, 1kg", 1))
	})

	t.Run("embedded in a longer description", func(t *testing.T) {
		assertDecimal(t, "114.73", calc.Compute("Premium W320 Cashew Nuts, 1kg Pack | Whole", "1"))
	})

	t.Run("unknown product", func(t *testing.T) {
		assertDecimal(t, "0", calc.Compute("unknown product xyz", 1))
	})

	t.Run("empty description", func(t *testing.T) {
		assertDecimal(t, "0", calc.Compute("", 3))
	})

	t.Run("quantity scales costs and weight", func(t *testing.T) {
		// 2760 - 2330.54 - ship(2.0kg)=143
		assertDecimal(t, "286.46", calc.Compute("Cashew Nuts, 1kg", 2))
	})

	t.Run("bad quantity falls back to one", func(t *testing.T) {
		assertDecimal(t, "114.73", calc.Compute("Cashew Nuts, 1kg", "abc"))
	})

	t.Run("two concatenated products both contribute", func(t *testing.T) {
		// revenue 1800, costs 1502.67, ship(1.25kg)=143
		assertDecimal(t, "154.33", calc.Compute("Cashew Nuts, 1kg Almonds, 250g", 1))
	})

	t.Run("shorter name inside longer one is not double counted", func(t *testing.T) {
		b := calc.Breakdown("Sprouted Ragi Flour, 500g", 1)
		assert.Equal(t, []string{"sprouted ragi flour, 500g"}, b.Matched)
		assertDecimal(t, "-2", b.Profit)
	})

	t.Run("repeated name counts every occurrence", func(t *testing.T) {
		b := calc.Breakdown("Black Pepper, 100g + Black Pepper, 100g", 1)
		assert.Len(t, b.Matched, 2)
		assertDecimal(t, "420", b.Revenue)
	})
}

func TestBreakdown(t *testing.T) {
	calc := defaultCalculator(t)
	b := calc.Breakdown("CASHEW NUTS, 1KG", 1)

	assert.Equal(t, 1, b.Qty)
	assert.Equal(t, []string{"cashew nuts, 1kg"}, b.Matched)
	assertDecimal(t, "1380", b.Revenue)
	assertDecimal(t, "920", b.Purchase)
	assertDecimal(t, "225.27", b.Referral)
	assertDecimal(t, "20", b.Packing)
	assertDecimal(t, "100", b.Shipping)
	assert.Equal(t, 1.0, b.WeightKg)
}

type fixedMatcher []catalog.Entry

func (m fixedMatcher) Match(string) []catalog.Entry { return m }

func TestCalculatorOptions(t *testing.T) {
	entry := catalog.Entry{
		Name:         "widget",
		SellingPrice: decimal.NewFromInt(500),
		Purchase:     decimal.NewFromInt(100),
		Referral:     decimal.NewFromInt(50),
		Packing:      decimal.NewFromInt(10),
		WeightKg:     0.4,
	}
	calc := NewCalculator(nil,
		WithMatcher(fixedMatcher{entry}),
		WithQuantityPolicy(QuantityPolicy{Default: 2}),
		WithLogger(nil),
	)

	// qty 2: 1000 - 320 - ship(0.8kg)=100
	assertDecimal(t, "580", calc.Compute("anything", "not a number"))
}
