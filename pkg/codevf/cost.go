package codevf

import (
	"github.com/shopspring/decimal"
)

// CalculateFinalCreditCost estimates the credits charged for a task:
// ceil(maxCredits × tier SLA multiplier × tag cost multiplier).
//
// The product is computed in exact decimal arithmetic and always rounded up.
// The estimate is advisory; the service performs the authoritative billing.
func CalculateFinalCreditCost(maxCredits int64, tier Tier, tagMultiplier decimal.Decimal) (int64, error) {
	if !tier.Valid() {
		_, err := ParseTier(string(tier))
		return 0, err
	}
	if tagMultiplier.IsNegative() {
		return 0, newValidationError("tag cost multiplier cannot be negative, got %s", tagMultiplier)
	}
	if maxCredits < 0 {
		return 0, newValidationError("maxCredits cannot be negative, got %d", maxCredits)
	}

	raw := decimal.NewFromInt(maxCredits).Mul(tier.SLAMultiplier()).Mul(tagMultiplier)
	return raw.Ceil().IntPart(), nil
}
