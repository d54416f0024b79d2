package filtering

import (
	"fmt"
	"strings"

	"github.com/spigell/maganghub/internal/maganghub"
)

// Ratio is a minimum share of free seats a vacancy must have to be shown.
type Ratio string

const (
	RatioAny       Ratio = ""
	RatioVeryHigh  Ratio = "90"
	RatioHigh      Ratio = "75"
	RatioMedium    Ratio = "50"
	RatioLow       Ratio = "25"
	RatioAvailable Ratio = "0"
	RatioFull      Ratio = "full"
)

// Ratios lists the accepted values in the order the portal offers them.
var Ratios = []Ratio{RatioAny, RatioVeryHigh, RatioHigh, RatioMedium, RatioLow, RatioAvailable, RatioFull}

// thresholds are percentages of free seats over capacity.
var thresholds = map[Ratio]int{
	RatioVeryHigh: 90,
	RatioHigh:     75,
	RatioMedium:   50,
	RatioLow:      25,
}

// ParseRatio accepts the values listed in Ratios, case-insensitively for "full".
func ParseRatio(s string) (Ratio, error) {
	r := Ratio(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Ratios {
		if r == known {
			return r, nil
		}
	}
	return RatioAny, fmt.Errorf("unsupported opportunity ratio %q", s)
}

// Label is the Indonesian caption shown in the filter selector.
func (r Ratio) Label() string {
	switch r {
	case RatioVeryHigh:
		return "Sangat Tinggi (≥90%)"
	case RatioHigh:
		return "Tinggi (≥75%)"
	case RatioMedium:
		return "Sedang (≥50%)"
	case RatioLow:
		return "Rendah (≥25%)"
	case RatioAvailable:
		return "Masih Tersedia"
	case RatioFull:
		return "Kuota Penuh"
	default:
		return "Semua"
	}
}

// Match reports whether a vacancy with the given counts passes the ratio.
// Thresholds are inclusive and never pass a vacancy without capacity.
func (r Ratio) Match(capacity, registrants int) bool {
	capacity = max(capacity, 0)
	registrants = max(registrants, 0)
	remaining := capacity - registrants

	switch r {
	case RatioAny:
		return true
	case RatioAvailable:
		return remaining > 0
	case RatioFull:
		return remaining <= 0
	}

	threshold, ok := thresholds[r]
	if !ok || capacity == 0 {
		return false
	}

	// integer form of remaining/capacity*100 >= threshold
	return remaining*100 >= threshold*capacity
}

// ApplyRatio returns the vacancies passing the ratio in their original order.
// The input slice is not modified.
func ApplyRatio(records []*maganghub.Vacancy, r Ratio) []*maganghub.Vacancy {
	result := make([]*maganghub.Vacancy, 0, len(records))
	for _, vacancy := range records {
		if vacancy == nil {
			continue
		}
		if r.Match(vacancy.Capacity(), vacancy.Registrants()) {
			result = append(result, vacancy)
		}
	}
	return result
}

// droppedIDs returns the IDs of the records in all that are missing from kept.
// kept must be an ordered subsequence of all.
func droppedIDs(all, kept []*maganghub.Vacancy) []string {
	var dropped []string
	i := 0
	for _, vacancy := range all {
		if vacancy == nil {
			continue
		}
		if i < len(kept) && kept[i] == vacancy {
			i++
			continue
		}
		dropped = append(dropped, vacancy.ID)
	}
	return dropped
}
