package recommendation

import (
	"bytes"
	"encoding/json"
	"errors"
	"math"
	"strconv"
	"strings"

	"github.com/Goopi7/crop-connect/pkg/geospatial"
)

// ErrSoilTypeRequired is matched by the validation error returned for a missing soil type
var ErrSoilTypeRequired = errors.New("soil_type is required for crop recommendations")

// ValidationError describes a rejected recommendation request
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is match a missing soil type against ErrSoilTypeRequired
func (e *ValidationError) Is(target error) bool {
	return target == ErrSoilTypeRequired && e.Field == "soil_type"
}

// OptionalFloat is a tolerant numeric input. Numbers and numeric strings decode
// to a valid value; null, empty or non-numeric strings, NaN, ±Inf and values of
// any other JSON type decode to absent.
type OptionalFloat struct {
	Value float64
	Valid bool
}

// Float returns a present OptionalFloat
func Float(v float64) OptionalFloat {
	return OptionalFloat{Value: v, Valid: true}
}

// UnmarshalJSON implements json.Unmarshaler and never fails
func (f *OptionalFloat) UnmarshalJSON(data []byte) error {
	*f = OptionalFloat{}
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}

	var raw string
	if data[0] == '"' {
		if err := json.Unmarshal(data, &raw); err != nil {
			return nil
		}
	} else {
		raw = string(data)
	}
	*f = ParseOptionalFloat(raw)
	return nil
}

// MarshalJSON implements json.Marshaler
func (f OptionalFloat) MarshalJSON() ([]byte, error) {
	if !f.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(f.Value)
}

// ParseOptionalFloat parses a textual number, returning absent for anything unusable
func ParseOptionalFloat(s string) OptionalFloat {
	s = strings.TrimSpace(s)
	if s == "" {
		return OptionalFloat{}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return OptionalFloat{}
	}
	return Float(v)
}

// Request is a crop recommendation request
type Request struct {
	SoilType          string        `json:"soil_type"`
	Location          string        `json:"location,omitempty"`
	PH                OptionalFloat `json:"ph"`
	Rainfall          OptionalFloat `json:"rainfall"`
	PlotSize          OptionalFloat `json:"plot_size"`
	Season            string        `json:"season,omitempty"`
	BudgetLevel       string        `json:"budget_level,omitempty"`
	RiskPreference    string        `json:"risk_preference,omitempty"`
	CropCategory      string        `json:"crop_category,omitempty"`
	WaterAvailability string        `json:"water_availability,omitempty"`
	Temperature       OptionalFloat `json:"temperature"`
	ExperienceLevel   string        `json:"experience_level,omitempty"`
	MarketDistance    OptionalFloat `json:"market_distance"`
	MinScore          OptionalFloat `json:"min_score"`
	// FieldBoundary is an optional GeoJSON polygon of the field. Its area fills
	// plot_size (acres) when plot_size is absent.
	FieldBoundary json.RawMessage `json:"field_boundary,omitempty"`
}

// Normalize canonicalizes string inputs and bounds numeric ones.
// A pH outside 0-14 is dropped and min_score is clamped to 0-100.
func (r *Request) Normalize() {
	norm := func(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

	r.SoilType = strings.Join(strings.Fields(norm(r.SoilType)), " ")
	r.Location = strings.TrimSpace(r.Location)
	r.Season = norm(r.Season)
	r.BudgetLevel = norm(r.BudgetLevel)
	r.RiskPreference = norm(r.RiskPreference)
	r.CropCategory = strings.TrimSpace(r.CropCategory)
	r.WaterAvailability = norm(r.WaterAvailability)
	r.ExperienceLevel = norm(r.ExperienceLevel)

	if r.PH.Valid && (r.PH.Value < 0 || r.PH.Value > 14) {
		r.PH = OptionalFloat{}
	}
	if r.MinScore.Valid {
		r.MinScore.Value = math.Max(0, math.Min(100, r.MinScore.Value))
	}
}

// Validate rejects requests without a soil type
func (r *Request) Validate() error {
	if strings.TrimSpace(r.SoilType) == "" {
		return &ValidationError{Field: "soil_type", Message: ErrSoilTypeRequired.Error()}
	}
	return nil
}

// resolveBoundary derives plot_size from the field boundary when one is given
func (r *Request) resolveBoundary() error {
	if len(r.FieldBoundary) == 0 || string(r.FieldBoundary) == "null" {
		return nil
	}
	geometry, err := geospatial.ParseBoundary(r.FieldBoundary)
	if err != nil {
		return &ValidationError{Field: "field_boundary", Message: err.Error()}
	}
	if !r.PlotSize.Valid {
		r.PlotSize = Float(geospatial.ConvertToAcres(geospatial.CalculateArea(geometry)))
	}
	return nil
}

// Threshold returns the minimum score a candidate needs to be returned
func (r *Request) Threshold() float64 {
	if !r.MinScore.Valid {
		return 0
	}
	return r.MinScore.Value
}
