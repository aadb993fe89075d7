package crops

import (
	"errors"
	"strings"
	"time"
)

var (
	ErrNotFound      = errors.New("crop not found")
	ErrDuplicateName = errors.New("crop with this name already exists")
)

type DroughtTolerance string

const (
	DroughtLow    DroughtTolerance = "low"
	DroughtMedium DroughtTolerance = "medium"
	DroughtHigh   DroughtTolerance = "high"
)

type DemandTrend string

const (
	TrendStable     DemandTrend = "stable"
	TrendIncreasing DemandTrend = "increasing"
	TrendDecreasing DemandTrend = "decreasing"
)

// CropRecord is a crop knowledge-base document. Optional groups are pointers;
// nil means the attribute is absent for this crop.
type CropRecord struct {
	ID                     string              `json:"id" bson:"_id"`
	Name                   string              `json:"name" bson:"name"`
	ScientificName         string              `json:"scientific_name,omitempty" bson:"scientific_name,omitempty"`
	Description            string              `json:"description" bson:"description"`
	Categories             []string            `json:"categories" bson:"categories"`
	DefaultGrowthCycleDays int                 `json:"default_growth_cycle_days,omitempty" bson:"default_growth_cycle_days,omitempty"`
	TypicalSeasonMonths    []int               `json:"typical_season_months,omitempty" bson:"typical_season_months,omitempty"`
	ClimateZones           []ClimateZone       `json:"climate_zones" bson:"climate_zones"`
	SoilRequirements       *SoilRequirements   `json:"soil_requirements,omitempty" bson:"soil_requirements,omitempty"`
	WaterRequirements      *WaterRequirements  `json:"water_requirements,omitempty" bson:"water_requirements,omitempty"`
	PlantingDetails        *PlantingDetails    `json:"planting_details,omitempty" bson:"planting_details,omitempty"`
	NutrientManagement     *NutrientManagement `json:"nutrient_management,omitempty" bson:"nutrient_management,omitempty"`
	PestsDiseases          []PestDisease       `json:"pests_diseases,omitempty" bson:"pests_diseases,omitempty"`
	Harvesting             *Harvesting         `json:"harvesting,omitempty" bson:"harvesting,omitempty"`
	PostHarvest            *PostHarvest        `json:"post_harvest,omitempty" bson:"post_harvest,omitempty"`
	MarketInfo             *MarketInfo         `json:"market_info,omitempty" bson:"market_info,omitempty"`
	Economics              *Economics          `json:"economics,omitempty" bson:"economics,omitempty"`
	RegionSpecificNotes    []RegionNote        `json:"region_specific_notes,omitempty" bson:"region_specific_notes,omitempty"`
	CreatedAt              time.Time           `json:"created_at" bson:"created_at"`
	UpdatedAt              time.Time           `json:"updated_at" bson:"updated_at"`
}

// Range is a closed numeric interval.
type Range struct {
	Min float64 `json:"min" bson:"min"`
	Max float64 `json:"max" bson:"max"`
}

// Contains reports whether v lies within [Min, Max].
func (r Range) Contains(v float64) bool {
	return v >= r.Min && v <= r.Max
}

// Midpoint returns the centre of the interval.
func (r Range) Midpoint() float64 {
	return (r.Min + r.Max) / 2
}

// MonthWindow is a sowing window. Zero months mean the window is unknown.
type MonthWindow struct {
	StartMonth int `json:"start_month" bson:"start_month"`
	EndMonth   int `json:"end_month" bson:"end_month"`
}

// Known reports whether both ends of the window are set.
func (w MonthWindow) Known() bool {
	return w.StartMonth > 0 && w.EndMonth > 0
}

// Includes reports whether month falls in the window. A window whose start is
// after its end wraps the year boundary (e.g. 11..2).
func (w MonthWindow) Includes(month int) bool {
	if !w.Known() {
		return false
	}
	if w.StartMonth <= w.EndMonth {
		return month >= w.StartMonth && month <= w.EndMonth
	}
	return month >= w.StartMonth || month <= w.EndMonth
}

type ClimateZone struct {
	ZoneName            string       `json:"zone_name" bson:"zone_name"`
	SowingWindow        *MonthWindow `json:"sowing_window,omitempty" bson:"sowing_window,omitempty"`
	TemperatureRange    *Range       `json:"temperature_range,omitempty" bson:"temperature_range,omitempty"`
	RainfallRequirement *Range       `json:"rainfall_requirement,omitempty" bson:"rainfall_requirement,omitempty"`
	HumidityRange       *Range       `json:"humidity_range,omitempty" bson:"humidity_range,omitempty"`
}

// PHRange is the accepted soil pH interval. Optimal of zero means "use the midpoint".
type PHRange struct {
	Min     float64 `json:"min" bson:"min"`
	Max     float64 `json:"max" bson:"max"`
	Optimal float64 `json:"optimal,omitempty" bson:"optimal,omitempty"`
}

// OptimalValue returns Optimal, falling back to the midpoint of the range.
func (p PHRange) OptimalValue() float64 {
	if p.Optimal != 0 {
		return p.Optimal
	}
	return (p.Min + p.Max) / 2
}

func (p PHRange) Contains(ph float64) bool {
	return ph >= p.Min && ph <= p.Max
}

type SoilRequirements struct {
	SoilTypes []string `json:"soil_types" bson:"soil_types"`
	PHRange   *PHRange `json:"ph_range,omitempty" bson:"ph_range,omitempty"`
	Drainage  string   `json:"drainage,omitempty" bson:"drainage,omitempty"`
}

// AcceptsSoil reports whether soil is one of the accepted soil types,
// compared case-insensitively.
func (s *SoilRequirements) AcceptsSoil(soil string) bool {
	if s == nil {
		return false
	}
	for _, t := range s.SoilTypes {
		if strings.EqualFold(strings.TrimSpace(t), soil) {
			return true
		}
	}
	return false
}

type IrrigationSchedule struct {
	Frequency      string   `json:"frequency,omitempty" bson:"frequency,omitempty"`
	CriticalStages []string `json:"critical_stages,omitempty" bson:"critical_stages,omitempty"`
}

type WaterRequirements struct {
	AnnualRainfall     *Range              `json:"annual_rainfall,omitempty" bson:"annual_rainfall,omitempty"`
	IrrigationSchedule *IrrigationSchedule `json:"irrigation_schedule,omitempty" bson:"irrigation_schedule,omitempty"`
	DroughtTolerance   DroughtTolerance    `json:"drought_tolerance,omitempty" bson:"drought_tolerance,omitempty"`
}

// Quantity is a value with a unit, e.g. 25 kg/ha.
type Quantity struct {
	Value float64 `json:"value" bson:"value"`
	Unit  string  `json:"unit,omitempty" bson:"unit,omitempty"`
}

// String renders the value followed by its unit, if any
func (q Quantity) String() string {
	if q.Unit == "" {
		return FormatNumber(q.Value)
	}
	return FormatNumber(q.Value) + " " + q.Unit
}

type Spacing struct {
	RowToRow     *Quantity `json:"row_to_row,omitempty" bson:"row_to_row,omitempty"`
	PlantToPlant *Quantity `json:"plant_to_plant,omitempty" bson:"plant_to_plant,omitempty"`
}

type PlantingDetails struct {
	SeedRate *Quantity `json:"seed_rate,omitempty" bson:"seed_rate,omitempty"`
	Spacing  *Spacing  `json:"spacing,omitempty" bson:"spacing,omitempty"`
	Depth    *Quantity `json:"depth,omitempty" bson:"depth,omitempty"`
	Method   string    `json:"method,omitempty" bson:"method,omitempty"`
}

type Nutrient struct {
	Requirement *Quantity `json:"requirement,omitempty" bson:"requirement,omitempty"`
	Schedule    string    `json:"schedule,omitempty" bson:"schedule,omitempty"`
}

type Micronutrient struct {
	Name               string    `json:"name" bson:"name"`
	Requirement        *Quantity `json:"requirement,omitempty" bson:"requirement,omitempty"`
	DeficiencySymptoms string    `json:"deficiency_symptoms,omitempty" bson:"deficiency_symptoms,omitempty"`
	ApplicationMethod  string    `json:"application_method,omitempty" bson:"application_method,omitempty"`
}

type NutrientManagement struct {
	Nitrogen       *Nutrient       `json:"nitrogen,omitempty" bson:"nitrogen,omitempty"`
	Phosphorus     *Nutrient       `json:"phosphorus,omitempty" bson:"phosphorus,omitempty"`
	Potassium      *Nutrient       `json:"potassium,omitempty" bson:"potassium,omitempty"`
	Micronutrients []Micronutrient `json:"micronutrients,omitempty" bson:"micronutrients,omitempty"`
}

type Treatment struct {
	Name      string `json:"name" bson:"name"`
	Method    string `json:"method,omitempty" bson:"method,omitempty"`
	Dosage    string `json:"dosage,omitempty" bson:"dosage,omitempty"`
	Frequency string `json:"frequency,omitempty" bson:"frequency,omitempty"`
	Organic   bool   `json:"organic" bson:"organic"`
}

type PestDisease struct {
	Name               string      `json:"name" bson:"name"`
	Type               string      `json:"type" bson:"type"` // pest, disease, weed
	Symptoms           string      `json:"symptoms" bson:"symptoms"`
	Threshold          string      `json:"threshold,omitempty" bson:"threshold,omitempty"`
	Treatments         []Treatment `json:"treatments,omitempty" bson:"treatments,omitempty"`
	PreventiveMeasures []string    `json:"preventive_measures,omitempty" bson:"preventive_measures,omitempty"`
}

type YieldRange struct {
	Min  float64 `json:"min" bson:"min"`
	Max  float64 `json:"max" bson:"max"`
	Unit string  `json:"unit,omitempty" bson:"unit,omitempty"`
}

type Harvesting struct {
	DaysToMaturity *Range      `json:"days_to_maturity,omitempty" bson:"days_to_maturity,omitempty"`
	Indicators     []string    `json:"indicators,omitempty" bson:"indicators,omitempty"`
	Method         string      `json:"method,omitempty" bson:"method,omitempty"`
	ExpectedYield  *YieldRange `json:"expected_yield,omitempty" bson:"expected_yield,omitempty"`
}

type Storage struct {
	Method     string `json:"method,omitempty" bson:"method,omitempty"`
	Conditions string `json:"conditions,omitempty" bson:"conditions,omitempty"`
	ShelfLife  string `json:"shelf_life,omitempty" bson:"shelf_life,omitempty"`
}

type PostHarvest struct {
	Storage    *Storage `json:"storage,omitempty" bson:"storage,omitempty"`
	Processing []string `json:"processing,omitempty" bson:"processing,omitempty"`
}

type PriceRange struct {
	Min      float64 `json:"min" bson:"min"`
	Max      float64 `json:"max" bson:"max"`
	Currency string  `json:"currency,omitempty" bson:"currency,omitempty"`
}

type MarketInfo struct {
	PriceRange   *PriceRange `json:"price_range,omitempty" bson:"price_range,omitempty"`
	DemandTrend  DemandTrend `json:"demand_trend,omitempty" bson:"demand_trend,omitempty"`
	MajorMarkets []string    `json:"major_markets,omitempty" bson:"major_markets,omitempty"`
}

type Economics struct {
	CostOfCultivation *Quantity `json:"cost_of_cultivation,omitempty" bson:"cost_of_cultivation,omitempty"`
	BenefitCostRatio  float64   `json:"benefit_cost_ratio,omitempty" bson:"benefit_cost_ratio,omitempty"`
}

type RegionNote struct {
	Region    string   `json:"region" bson:"region"`
	Notes     string   `json:"notes,omitempty" bson:"notes,omitempty"`
	Varieties []string `json:"varieties,omitempty" bson:"varieties,omitempty"`
}

// HasCategory reports whether the record is tagged with category.
func (c *CropRecord) HasCategory(category string) bool {
	for _, cat := range c.Categories {
		if cat == category {
			return true
		}
	}
	return false
}

// FirstTemperatureRange returns the temperature range of the first climate zone, if any.
func (c *CropRecord) FirstTemperatureRange() *Range {
	if len(c.ClimateZones) == 0 {
		return nil
	}
	return c.ClimateZones[0].TemperatureRange
}

// AnnualRainfall returns the annual rainfall range, if recorded.
func (c *CropRecord) AnnualRainfall() *Range {
	if c.WaterRequirements == nil {
		return nil
	}
	return c.WaterRequirements.AnnualRainfall
}

// PH returns the soil pH range, if recorded.
func (c *CropRecord) PH() *PHRange {
	if c.SoilRequirements == nil {
		return nil
	}
	return c.SoilRequirements.PHRange
}

// DroughtTolerance returns the drought tolerance class or "".
func (c *CropRecord) DroughtTolerance() DroughtTolerance {
	if c.WaterRequirements == nil {
		return ""
	}
	return DroughtTolerance(strings.ToLower(strings.TrimSpace(string(c.WaterRequirements.DroughtTolerance))))
}

// DemandTrend returns the market demand trend or "".
func (c *CropRecord) DemandTrend() DemandTrend {
	if c.MarketInfo == nil {
		return ""
	}
	return DemandTrend(strings.ToLower(strings.TrimSpace(string(c.MarketInfo.DemandTrend))))
}

// CultivationCost returns the cost of cultivation. A zero value counts as absent.
func (c *CropRecord) CultivationCost() (*Quantity, bool) {
	if c.Economics == nil || c.Economics.CostOfCultivation == nil || c.Economics.CostOfCultivation.Value == 0 {
		return nil, false
	}
	return c.Economics.CostOfCultivation, true
}

// SowsIn reports whether any climate zone's sowing window contains month.
func (c *CropRecord) SowsIn(month int) bool {
	for _, z := range c.ClimateZones {
		if z.SowingWindow != nil && z.SowingWindow.Includes(month) {
			return true
		}
	}
	return false
}

// ListFilter narrows catalogue listings.
type ListFilter struct {
	Category         string
	ClimateZone      string
	SowMonth         int
	SoilType         string
	DroughtTolerance string
	Search           string
	Page             int
	Limit            int
	Sort             string
}

// Normalize applies paging defaults and bounds.
func (f *ListFilter) Normalize() {
	if f.Category == "all" {
		f.Category = ""
	}
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 {
		f.Limit = 20
	}
	if f.Limit > 100 {
		f.Limit = 100
	}
	if f.Sort == "" {
		f.Sort = "name"
	}
}
