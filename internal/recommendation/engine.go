package recommendation

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/crops"
	"github.com/Goopi7/crop-connect/internal/metrics"
)

// Sub-score weights of the final suitability score
const (
	WeightSoil         = 0.35
	WeightClimateWater = 0.35
	WeightSeason       = 0.15
	WeightEconomics    = 0.15
)

// CropSource enumerates crop records, optionally restricted to a category
type CropSource interface {
	FindAll(ctx context.Context, category string) ([]crops.CropRecord, error)
}

// Breakdown holds the four sub-scores of a candidate, each in [0,100]
type Breakdown struct {
	Soil         float64 `json:"soil"`
	ClimateWater float64 `json:"climate_water"`
	Season       float64 `json:"season"`
	Economics    float64 `json:"economics"`
}

// Weighted combines the sub-scores into the final 0-100 score
func (b Breakdown) Weighted() int {
	raw := WeightSoil*b.Soil + WeightClimateWater*b.ClimateWater + WeightSeason*b.Season + WeightEconomics*b.Economics
	score := int(math.Floor(raw + 0.5))
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}

// ScoredCandidate is one crop scored against a request
type ScoredCandidate struct {
	Crop      *crops.CropRecord `json:"crop"`
	Score     int               `json:"score"`
	Breakdown Breakdown         `json:"breakdown"`
	Why       []string          `json:"why"`
	Accuracy  Accuracy          `json:"accuracy"`
}

// Result is the ranked outcome of a recommendation request
type Result struct {
	Recommendations      []ScoredCandidate `json:"recommendations"`
	Accuracy             Accuracy          `json:"accuracy"`
	TotalCropsEvaluated  int               `json:"total_crops_evaluated"`
	RecommendationsCount int               `json:"recommendations_count"`
	Climate              *ClimateData      `json:"climate,omitempty"`
}

// Engine scores and ranks crops against recommendation requests
type Engine struct {
	source CropSource
	tables *Tables
	logger *zap.Logger
	now    func() time.Time
}

// Option configures an Engine
type Option func(*Engine)

// WithClock overrides the clock used for current-season explanations
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// NewEngine creates a recommendation engine. Nil tables mean the defaults.
func NewEngine(source CropSource, tables *Tables, logger *zap.Logger, opts ...Option) *Engine {
	if tables == nil {
		tables = DefaultTables()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Engine{
		source: source,
		tables: tables,
		logger: logger,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Tables returns the reference tables the engine scores with
func (e *Engine) Tables() *Tables {
	return e.tables
}

// Recommend scores every candidate crop and returns them ranked by score.
// A request without a soil type is rejected before the store is read.
func (e *Engine) Recommend(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	req.Normalize()
	if err := req.Validate(); err != nil {
		metrics.RecordRecommendationError("validation")
		return nil, err
	}
	if err := req.resolveBoundary(); err != nil {
		metrics.RecordRecommendationError("validation")
		return nil, err
	}

	candidates, err := e.source.FindAll(ctx, req.CropCategory)
	if err != nil {
		metrics.RecordRecommendationError("store")
		return nil, fmt.Errorf("failed to load crops: %w", err)
	}

	in := e.resolveInputs(&req)
	accuracy := EstimateAccuracy(&req)

	scored := make([]ScoredCandidate, 0, len(candidates))
	for i := range candidates {
		crop := &candidates[i]
		breakdown := Breakdown{
			Soil:         e.soilScore(crop, &req),
			ClimateWater: climateWaterScore(crop, &req, in),
			Season:       e.seasonScore(crop, in),
			Economics:    e.economicsScore(crop, &req),
		}
		scored = append(scored, ScoredCandidate{
			Crop:      crop,
			Score:     breakdown.Weighted(),
			Breakdown: breakdown,
			Why:       e.explain(crop, &req, in),
			Accuracy:  accuracy,
		})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	threshold := req.Threshold()
	kept := scored[:0]
	for _, s := range scored {
		if float64(s.Score) >= threshold {
			kept = append(kept, s)
		}
	}

	result := &Result{
		Recommendations:      kept,
		Accuracy:             accuracy,
		TotalCropsEvaluated:  len(candidates),
		RecommendationsCount: len(kept),
		Climate:              in.climate,
	}

	metrics.RecordRecommendation(string(accuracy), len(candidates), time.Since(start))
	e.logger.Info("Recommendations evaluated",
		zap.String("soil_type", req.SoilType),
		zap.String("category", req.CropCategory),
		zap.Int("total", result.TotalCropsEvaluated),
		zap.Int("returned", result.RecommendationsCount),
		zap.String("accuracy", string(accuracy)),
	)
	return result, nil
}

// IsValidationError reports whether err is a rejected request
func IsValidationError(err error) bool {
	var verr *ValidationError
	return errors.As(err, &verr)
}

// inputs are the request values after climate inference
type inputs struct {
	rainfall     OptionalFloat
	temperature  OptionalFloat
	seasonMonths []int
	climate      *ClimateData
}

func (e *Engine) resolveInputs(req *Request) inputs {
	in := inputs{
		rainfall:     req.Rainfall,
		temperature:  req.Temperature,
		seasonMonths: e.tables.SeasonMonthsFor(req.Season),
	}
	if climate := e.tables.InferClimate(req.Location); climate != nil {
		in.climate = climate
		if !in.rainfall.Valid {
			in.rainfall = Float(climate.AvgRainfall)
		}
		if !in.temperature.Valid {
			in.temperature = Float(climate.AvgTemp)
		}
	}
	return in
}

// =====================================================
// Sub-scores
// =====================================================

// soilScore rates soil type fit, then adjusts for pH when both sides have data
func (e *Engine) soilScore(c *crops.CropRecord, req *Request) float64 {
	score := 30.0
	switch {
	case c.SoilRequirements.AcceptsSoil(req.SoilType):
		score = 100
	case e.compatibleSoil(c, req.SoilType):
		score = 70
	}

	ph := c.PH()
	if !req.PH.Valid || ph == nil {
		return score
	}
	if ph.Contains(req.PH.Value) {
		if math.Abs(req.PH.Value-ph.OptimalValue()) < 0.5 {
			return math.Min(100, score+20)
		}
		return math.Min(100, score+10)
	}
	return math.Max(0, score-20)
}

func (e *Engine) compatibleSoil(c *crops.CropRecord, soil string) bool {
	for _, alt := range e.tables.SoilCompatibility[soil] {
		if c.SoilRequirements.AcceptsSoil(alt) {
			return true
		}
	}
	return false
}

// climateWaterScore accumulates rainfall, temperature and water terms in that order.
// A water mismatch subtracts from the running total; the total is clamped only at the end.
func climateWaterScore(c *crops.CropRecord, req *Request, in inputs) float64 {
	total := 0.0

	if rain := c.AnnualRainfall(); in.rainfall.Valid && rain != nil {
		r := in.rainfall.Value
		switch {
		case r < rain.Min:
			total += math.Max(0, 50-(rain.Min-r)/10)
		case r > rain.Max:
			total += math.Max(0, 50-(r-rain.Max)/10)
		default:
			total += 50
		}
	} else {
		total += 30
	}

	if temp := c.FirstTemperatureRange(); in.temperature.Valid && temp != nil {
		t := in.temperature.Value
		if temp.Contains(t) {
			total += 30
		} else {
			total += math.Max(0, 30-math.Abs(t-temp.Midpoint())/2)
		}
	} else {
		total += 20
	}

	tolerance := c.DroughtTolerance()
	water := req.WaterAvailability
	switch {
	case water == "" || tolerance == "":
		total += 10
	case waterFits(water, tolerance):
		total += 20
	case water == "high":
		total += 10
	default:
		total = math.Max(0, total-20)
	}

	return math.Min(100, total)
}

func waterFits(water string, tolerance crops.DroughtTolerance) bool {
	switch water {
	case "low":
		return tolerance == crops.DroughtHigh
	case "medium":
		return tolerance == crops.DroughtMedium || tolerance == crops.DroughtHigh
	}
	return false
}

// seasonScore is 100 when any month of the requested season opens a sowing window
func (e *Engine) seasonScore(c *crops.CropRecord, in inputs) float64 {
	if len(in.seasonMonths) == 0 {
		return 50
	}
	if sowsInAny(c, in.seasonMonths) {
		return 100
	}
	return 30
}

// economicsScore sums budget, risk and experience terms, capped at 100
func (e *Engine) economicsScore(c *crops.CropRecord, req *Request) float64 {
	total := 0.0

	if cost, ok := c.CultivationCost(); ok && req.BudgetLevel != "" {
		tier, _ := e.tables.Tier(req.BudgetLevel)
		switch {
		case tier.Contains(cost.Value):
			total += 40
		case !tier.aboveMin(cost.Value):
			total += 50
		default:
			total += math.Max(0, 40-(cost.Value-*tier.Max)/1000)
		}
	} else {
		total += 30
	}

	if trend := c.DemandTrend(); req.RiskPreference != "" && trend != "" {
		if riskFits(req.RiskPreference, trend) {
			total += 30
		} else {
			total += 10
		}
	} else {
		total += 20
	}

	if req.ExperienceLevel != "" {
		if e.experienceFits(c, req.ExperienceLevel) {
			total += 30
		} else {
			total += 15
		}
	} else {
		total += 20
	}

	return math.Min(100, total)
}

func riskFits(risk string, trend crops.DemandTrend) bool {
	switch risk {
	case "low":
		return trend == crops.TrendStable
	case "medium":
		return trend != crops.TrendDecreasing
	case "high":
		return trend == crops.TrendIncreasing
	}
	return false
}

func (e *Engine) experienceFits(c *crops.CropRecord, level string) bool {
	want, ok := e.tables.ExperienceComplexity[level]
	if !ok {
		return false
	}
	got, ok := e.tables.ComplexityOf(c.Name)
	return ok && got == want
}
