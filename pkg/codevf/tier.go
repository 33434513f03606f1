package codevf

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Tier is the service level of a task. It is sent on the wire as "mode".
type Tier string

const (
	// TierRealtimeAnswer requests an immediate answer.
	TierRealtimeAnswer Tier = "realtime_answer"
	// TierFast requests expedited handling.
	TierFast Tier = "fast"
	// TierStandard is the default service level.
	TierStandard Tier = "standard"
)

// Tiers lists every supported tier.
var Tiers = []Tier{TierRealtimeAnswer, TierFast, TierStandard}

// CreditRange is an inclusive range of maxCredits values.
type CreditRange struct {
	Min int64
	Max int64
}

// Contains reports whether n lies within the range.
func (r CreditRange) Contains(n int64) bool {
	return n >= r.Min && n <= r.Max
}

func (r CreditRange) String() string {
	return fmt.Sprintf("[%d, %d]", r.Min, r.Max)
}

// GlobalCreditRange bounds maxCredits regardless of tier.
var GlobalCreditRange = CreditRange{Min: 60, Max: 115200}

// ParseTier resolves a wire value to a Tier.
func ParseTier(s string) (Tier, error) {
	switch t := Tier(s); t {
	case TierRealtimeAnswer, TierFast, TierStandard:
		return t, nil
	default:
		return "", newLocalError(KindInvalidMode,
			fmt.Sprintf("'%s' is not a supported service tier", s),
			map[string]any{"mode": s})
	}
}

// SLAMultiplier returns the exact cost multiplier of the tier, or zero for an
// unknown tier.
func (t Tier) SLAMultiplier() decimal.Decimal {
	switch t {
	case TierRealtimeAnswer:
		return decimal.NewFromInt(2)
	case TierFast:
		return decimal.New(15, -1)
	case TierStandard:
		return decimal.NewFromInt(1)
	default:
		return decimal.Zero
	}
}

// CreditRange returns the tier-specific maxCredits bounds.
func (t Tier) CreditRange() (CreditRange, bool) {
	switch t {
	case TierRealtimeAnswer:
		return CreditRange{Min: 60, Max: 600}, true
	case TierFast, TierStandard:
		return CreditRange{Min: 240, Max: 115200}, true
	default:
		return CreditRange{}, false
	}
}

// Valid reports whether t is a supported tier.
func (t Tier) Valid() bool {
	_, ok := t.CreditRange()
	return ok
}

func (t Tier) String() string {
	return string(t)
}
