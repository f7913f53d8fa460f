// Package highlight classifies items into engagement tiers.
//
// Classification is a pure function of an item's score and descendant count
// against two ordered threshold tiers. Both bounds of a tier must hold: a
// high score with few replies does not qualify.
package highlight

// Tier is an item's highlight classification.
type Tier string

const (
	// TierNone marks items below every threshold tier.
	TierNone Tier = "none"

	// TierRising marks items clearing the rising thresholds but not hot.
	TierRising Tier = "rising"

	// TierHot marks items clearing both hot thresholds.
	TierHot Tier = "hot"
)

// Default threshold values.
const (
	DefaultHotScore          = 300
	DefaultHotDescendants    = 150
	DefaultRisingScore       = 100
	DefaultRisingDescendants = 50
)

// Thresholds holds the tier bounds. Values are configuration constants,
// never computed at runtime.
type Thresholds struct {
	// HotScore and HotDescendants are the minimums for TierHot.
	HotScore       int
	HotDescendants int

	// RisingScore and RisingDescendants are the minimums for TierRising.
	RisingScore       int
	RisingDescendants int
}

// DefaultThresholds returns the documented default tier bounds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		HotScore:          DefaultHotScore,
		HotDescendants:    DefaultHotDescendants,
		RisingScore:       DefaultRisingScore,
		RisingDescendants: DefaultRisingDescendants,
	}
}

// Classify maps engagement metrics to a tier. Total and deterministic.
func (t Thresholds) Classify(score, descendants int) Tier {
	if score >= t.HotScore && descendants >= t.HotDescendants {
		return TierHot
	}
	if score >= t.RisingScore && descendants >= t.RisingDescendants {
		return TierRising
	}
	return TierNone
}

// Classify applies the default thresholds.
func Classify(score, descendants int) Tier {
	return DefaultThresholds().Classify(score, descendants)
}
