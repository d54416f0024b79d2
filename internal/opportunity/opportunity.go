// Package opportunity scores how likely a registrant is to get a vacancy.
//
// Two conventions are in use and both are kept: AvailabilityRatio measures the
// share of seats still free, RelativeSaturation measures seats per registrant.
// They agree when nobody has registered and diverge otherwise, so callers must
// pick one explicitly.
package opportunity

import "fmt"

type Convention int

const (
	// AvailabilityRatio is (capacity - registrants) / capacity, 100 when capacity is 0.
	AvailabilityRatio Convention = iota
	// RelativeSaturation is capacity / registrants, 100 when nobody registered.
	RelativeSaturation
)

func (c Convention) String() string {
	switch c {
	case AvailabilityRatio:
		return "availability-ratio"
	case RelativeSaturation:
		return "relative-saturation"
	default:
		return fmt.Sprintf("convention(%d)", int(c))
	}
}

type Tier string

const (
	TierVeryHigh Tier = "very high"
	TierHigh     Tier = "high"
	TierMedium   Tier = "medium"
	TierLow      Tier = "low"
	TierFull     Tier = "full"
)

// Label is the portal's Indonesian caption for the tier.
func (t Tier) Label() string {
	switch t {
	case TierVeryHigh:
		return "🎯 Peluang Sangat Tinggi"
	case TierHigh:
		return "✨ Peluang Tinggi"
	case TierMedium:
		return "⭐ Peluang Sedang"
	case TierLow:
		return "⚠️ Peluang Rendah"
	default:
		return "❌ Kuota Penuh"
	}
}

type Score struct {
	Convention Convention `json:"-"`
	Percentage float64    `json:"percentage"`
	Tier       Tier       `json:"tier"`
}

// Evaluate scores a vacancy under the given convention. Negative inputs are treated as 0.
func Evaluate(convention Convention, capacity, registrants int) Score {
	percentage := Percentage(convention, capacity, registrants)

	return Score{
		Convention: convention,
		Percentage: percentage,
		Tier:       TierFor(percentage),
	}
}

// Percentage returns the score in [0, 100].
func Percentage(convention Convention, capacity, registrants int) float64 {
	capacity = max(capacity, 0)
	registrants = max(registrants, 0)

	switch convention {
	case RelativeSaturation:
		if registrants == 0 {
			return 100
		}
		return clamp(float64(capacity) / float64(registrants) * 100)
	default:
		if capacity == 0 {
			return 100
		}
		return clamp(float64(capacity-registrants) / float64(capacity) * 100)
	}
}

func TierFor(percentage float64) Tier {
	switch {
	case percentage >= 90:
		return TierVeryHigh
	case percentage >= 75:
		return TierHigh
	case percentage >= 50:
		return TierMedium
	case percentage > 0:
		return TierLow
	default:
		return TierFull
	}
}

func clamp(v float64) float64 {
	return min(max(v, 0), 100)
}
