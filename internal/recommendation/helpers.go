package recommendation

import (
	"strings"
)

// Accuracy is the confidence label derived from request completeness
type Accuracy string

const (
	AccuracyLow    Accuracy = "Low"
	AccuracyMedium Accuracy = "Medium"
	AccuracyHigh   Accuracy = "High"
)

// InferClimate derives a climate profile from a free-text location. The first region
// whose name is contained in the location wins; unmatched locations get the fallback
// profile. An empty location returns nil.
func (t *Tables) InferClimate(location string) *ClimateData {
	loc := strings.ToLower(strings.TrimSpace(location))
	if loc == "" {
		return nil
	}
	for _, r := range t.Regions {
		if r.Region != "" && strings.Contains(loc, r.Region) {
			data := r.ClimateData
			return &data
		}
	}
	fallback := t.FallbackClimate
	return &fallback
}

// SeasonMonthsFor maps a season name to its calendar months. Unknown names map to an empty set.
func (t *Tables) SeasonMonthsFor(season string) []int {
	months := t.Months(season)
	if months == nil {
		return []int{}
	}
	out := make([]int, len(months))
	copy(out, months)
	return out
}

// EstimateAccuracy labels a request by the share of its ten scoring inputs that are filled
func EstimateAccuracy(req *Request) Accuracy {
	fields := []bool{
		// critical
		req.SoilType != "",
		req.Season != "",
		// important
		req.PH.Valid,
		req.Rainfall.Valid,
		req.Temperature.Valid,
		req.WaterAvailability != "",
		// optional
		req.BudgetLevel != "",
		req.RiskPreference != "",
		req.ExperienceLevel != "",
		req.PlotSize.Valid,
	}

	filled := 0
	for _, ok := range fields {
		if ok {
			filled++
		}
	}

	ratio := float64(filled) / float64(len(fields))
	switch {
	case ratio >= 0.8:
		return AccuracyHigh
	case ratio >= 0.5:
		return AccuracyMedium
	default:
		return AccuracyLow
	}
}
