package recommendation

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Goopi7/crop-connect/internal/crops"
)

// Complexity classifies how demanding a crop is to cultivate
type Complexity string

const (
	ComplexityEasy     Complexity = "easy"
	ComplexityModerate Complexity = "moderate"
	ComplexityComplex  Complexity = "complex"
)

// ClimateData is the climate profile inferred for a location
type ClimateData struct {
	AvgRainfall float64 `yaml:"avg_rainfall" json:"avg_rainfall"`
	AvgTemp     float64 `yaml:"avg_temp" json:"avg_temp"`
	ClimateZone string  `yaml:"climate_zone" json:"climate_zone"`
}

// RegionClimate maps a region name to its climate profile
type RegionClimate struct {
	Region      string `yaml:"region" json:"region"`
	ClimateData `yaml:",inline"`
}

// BudgetTier is the cultivation cost range a budget level expects.
// A nil Max means the tier is unbounded above.
type BudgetTier struct {
	Min          float64  `yaml:"min" json:"min"`
	Max          *float64 `yaml:"max,omitempty" json:"max,omitempty"`
	MinExclusive bool     `yaml:"min_exclusive,omitempty" json:"min_exclusive,omitempty"`
}

// Contains reports whether cost lies inside the tier
func (t BudgetTier) Contains(cost float64) bool {
	return t.aboveMin(cost) && (t.Max == nil || cost <= *t.Max)
}

func (t BudgetTier) aboveMin(cost float64) bool {
	if t.MinExclusive {
		return cost > t.Min
	}
	return cost >= t.Min
}

// Tables is the versioned reference data driving scoring. Every lookup key is lower-case.
type Tables struct {
	Version              string                `yaml:"version" json:"version"`
	SoilCompatibility    map[string][]string   `yaml:"soil_compatibility" json:"soil_compatibility"`
	SeasonMonths         map[string][]int      `yaml:"season_months" json:"season_months"`
	Regions              []RegionClimate       `yaml:"regions" json:"regions"`
	FallbackClimate      ClimateData           `yaml:"fallback_climate" json:"fallback_climate"`
	BudgetTiers          map[string]BudgetTier `yaml:"budget_tiers" json:"budget_tiers"`
	CropComplexity       map[string]Complexity `yaml:"crop_complexity" json:"crop_complexity"`
	ExperienceComplexity map[string]Complexity `yaml:"experience_complexity" json:"experience_complexity"`
}

func limit(v float64) *float64 { return &v }

// DefaultTables returns the built-in reference tables
func DefaultTables() *Tables {
	t := &Tables{
		Version: "2024.1",
		SoilCompatibility: map[string][]string{
			"loamy":  {"sandy loam", "clay loam"},
			"sandy":  {"sandy loam"},
			"clayey": {"clay loam", "loamy"},
			"black":  {"loamy", "clayey"},
		},
		SeasonMonths: map[string][]int{
			"kharif":  {6, 7, 8, 9, 10},
			"rabi":    {10, 11, 12, 1, 2},
			"summer":  {3, 4, 5, 6},
			"winter":  {11, 12, 1, 2},
			"monsoon": {6, 7, 8, 9},
			"autumn":  {9, 10, 11},
		},
		Regions: []RegionClimate{
			{Region: "punjab", ClimateData: ClimateData{AvgRainfall: 600, AvgTemp: 25, ClimateZone: "Temperate"}},
			{Region: "haryana", ClimateData: ClimateData{AvgRainfall: 550, AvgTemp: 26, ClimateZone: "Semi-arid"}},
			{Region: "uttar pradesh", ClimateData: ClimateData{AvgRainfall: 1000, AvgTemp: 27, ClimateZone: "Subtropical"}},
			{Region: "maharashtra", ClimateData: ClimateData{AvgRainfall: 1200, AvgTemp: 28, ClimateZone: "Tropical"}},
			{Region: "karnataka", ClimateData: ClimateData{AvgRainfall: 1100, AvgTemp: 27, ClimateZone: "Tropical"}},
			{Region: "tamil nadu", ClimateData: ClimateData{AvgRainfall: 950, AvgTemp: 29, ClimateZone: "Tropical"}},
			{Region: "andhra pradesh", ClimateData: ClimateData{AvgRainfall: 900, AvgTemp: 29, ClimateZone: "Tropical"}},
			{Region: "telangana", ClimateData: ClimateData{AvgRainfall: 900, AvgTemp: 29, ClimateZone: "Tropical"}},
			{Region: "west bengal", ClimateData: ClimateData{AvgRainfall: 1500, AvgTemp: 26, ClimateZone: "Subtropical"}},
			{Region: "bihar", ClimateData: ClimateData{AvgRainfall: 1200, AvgTemp: 27, ClimateZone: "Subtropical"}},
		},
		FallbackClimate: ClimateData{AvgRainfall: 800, AvgTemp: 27, ClimateZone: "Tropical"},
		BudgetTiers: map[string]BudgetTier{
			"low":    {Min: 0, Max: limit(30000)},
			"medium": {Min: 30000, Max: limit(60000), MinExclusive: true},
			"high":   {Min: 60000, MinExclusive: true},
		},
		CropComplexity: map[string]Complexity{},
		ExperienceComplexity: map[string]Complexity{
			"beginner":     ComplexityEasy,
			"intermediate": ComplexityModerate,
			"expert":       ComplexityComplex,
		},
	}
	for complexity, names := range map[Complexity][]string{
		ComplexityComplex:  {"saffron", "vanilla", "coffee", "tea", "grapes", "orchids", "cardamom"},
		ComplexityModerate: {"cotton", "sugarcane", "tobacco", "rice", "wheat", "maize", "corn", "potato"},
		ComplexityEasy:     {"radish", "spinach", "lettuce", "beans", "bean", "peas", "pea", "tomatoes", "tomato", "onion"},
	} {
		for _, name := range names {
			t.CropComplexity[name] = complexity
		}
	}
	return t
}

// LoadTables overlays a YAML file on the default tables. Maps are merged key by key;
// lists such as regions replace the defaults when present in the file.
func LoadTables(path string) (*Tables, error) {
	t := DefaultTables()
	if path == "" {
		return t, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read reference tables: %w", err)
	}
	if err := yaml.Unmarshal(data, t); err != nil {
		return nil, fmt.Errorf("failed to parse reference tables: %w", err)
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	t.normalize()
	return t, nil
}

// Validate checks that the tables are internally consistent
func (t *Tables) Validate() error {
	for season, months := range t.SeasonMonths {
		for _, m := range months {
			if m < 1 || m > 12 {
				return fmt.Errorf("season %q has invalid month %d", season, m)
			}
		}
	}
	for level, tier := range t.BudgetTiers {
		if tier.Max != nil && *tier.Max < tier.Min {
			return fmt.Errorf("budget tier %q has max below min", level)
		}
	}
	for name, c := range t.CropComplexity {
		if !c.valid() {
			return fmt.Errorf("crop %q has unknown complexity %q", name, c)
		}
	}
	for level, c := range t.ExperienceComplexity {
		if !c.valid() {
			return fmt.Errorf("experience level %q has unknown complexity %q", level, c)
		}
	}
	return nil
}

// YAML renders the tables as a YAML document
func (t *Tables) YAML() ([]byte, error) {
	return yaml.Marshal(t)
}

// ComplexityOf returns the complexity class of a crop by its canonical name
func (t *Tables) ComplexityOf(cropName string) (Complexity, bool) {
	c, ok := t.CropComplexity[crops.CanonicalName(cropName)]
	return c, ok
}

// Months returns the calendar months of a season, or nil when unknown
func (t *Tables) Months(season string) []int {
	return t.SeasonMonths[strings.ToLower(strings.TrimSpace(season))]
}

// Tier returns the budget tier of a level. Unknown levels accept any cost.
func (t *Tables) Tier(level string) (BudgetTier, bool) {
	tier, ok := t.BudgetTiers[level]
	if !ok {
		return BudgetTier{Min: 0}, false
	}
	return tier, true
}

// normalize lower-cases and canonicalizes every lookup key loaded from a file
func (t *Tables) normalize() {
	lowerKeys := func(m map[string][]string) map[string][]string {
		out := make(map[string][]string, len(m))
		for k, v := range m {
			vals := make([]string, len(v))
			for i, s := range v {
				vals[i] = strings.ToLower(strings.TrimSpace(s))
			}
			out[strings.ToLower(strings.TrimSpace(k))] = vals
		}
		return out
	}
	t.SoilCompatibility = lowerKeys(t.SoilCompatibility)

	seasons := make(map[string][]int, len(t.SeasonMonths))
	for k, v := range t.SeasonMonths {
		seasons[strings.ToLower(strings.TrimSpace(k))] = v
	}
	t.SeasonMonths = seasons

	complexity := make(map[string]Complexity, len(t.CropComplexity))
	for k, v := range t.CropComplexity {
		complexity[crops.CanonicalName(k)] = v
	}
	t.CropComplexity = complexity

	for i := range t.Regions {
		t.Regions[i].Region = strings.ToLower(strings.TrimSpace(t.Regions[i].Region))
	}
}

func (c Complexity) valid() bool {
	switch c {
	case ComplexityEasy, ComplexityModerate, ComplexityComplex:
		return true
	}
	return false
}
