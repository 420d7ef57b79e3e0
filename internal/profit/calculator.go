package profit

import (
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/joseph-ayodele/invoice-tracker/internal/catalog"
)

// Breakdown holds the intermediate sums behind a profit figure.
type Breakdown struct {
	Matched  []string
	Qty      int
	Revenue  decimal.Decimal
	Purchase decimal.Decimal
	Referral decimal.Decimal
	Packing  decimal.Decimal
	WeightKg float64
	Shipping decimal.Decimal
	Profit   decimal.Decimal
}

// Calculator computes per-order profit against an immutable catalog.
type Calculator struct {
	matcher Matcher
	policy  QuantityPolicy
	logger  *slog.Logger
}

// Option configures a Calculator.
type Option func(*Calculator)

// WithMatcher replaces the default longest-match matcher.
func WithMatcher(m Matcher) Option { return func(c *Calculator) { c.matcher = m } }

// WithQuantityPolicy replaces the default quantity policy.
func WithQuantityPolicy(p QuantityPolicy) Option { return func(c *Calculator) { c.policy = p } }

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option { return func(c *Calculator) { c.logger = l } }

// NewCalculator creates a Calculator over cat.
func NewCalculator(cat *catalog.Catalog, opts ...Option) *Calculator {
	c := &Calculator{
		matcher: LongestMatch{Catalog: cat},
		policy:  DefaultQuantityPolicy,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Compute returns the net profit for an order, rounded to 2 decimal places.
// Unknown products yield zero.
func (c *Calculator) Compute(description string, qty any) decimal.Decimal {
	return c.Breakdown(description, qty).Profit
}

// Breakdown returns the full computation for an order.
func (c *Calculator) Breakdown(description string, qty any) Breakdown {
	q := c.policy.Coerce(qty)
	if description == "" {
		q = c.policy.Default
	}
	b := Breakdown{
		Qty:      q,
		Revenue:  decimal.Zero,
		Purchase: decimal.Zero,
		Referral: decimal.Zero,
		Packing:  decimal.Zero,
		Shipping: decimal.Zero,
		Profit:   decimal.Zero,
	}

	matches := c.matcher.Match(description)
	if len(matches) == 0 {
		c.logger.Debug("no catalog match", "description", description)
		return b
	}

	sp, purchase, referral, packing := decimal.Zero, decimal.Zero, decimal.Zero, decimal.Zero
	weight := 0.0
	for _, e := range matches {
		b.Matched = append(b.Matched, e.Name)
		sp = sp.Add(e.SellingPrice)
		purchase = purchase.Add(e.Purchase)
		referral = referral.Add(e.Referral)
		packing = packing.Add(e.Packing)
		weight += e.WeightKg
	}

	dq := decimal.NewFromInt(int64(q))
	b.Revenue = sp.Mul(dq)
	b.Purchase = purchase.Mul(dq)
	b.Referral = referral.Mul(dq)
	b.Packing = packing.Mul(dq)
	b.WeightKg = weight * float64(q)
	b.Shipping = ShippingCost(b.WeightKg)
	b.Profit = b.Revenue.
		Sub(b.Purchase).
		Sub(b.Referral).
		Sub(b.Packing).
		Sub(b.Shipping).
		Round(2)
	return b
}
