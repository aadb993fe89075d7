package recommendation

import (
	"fmt"
	"math"

	"github.com/Goopi7/crop-connect/internal/crops"
)

// explain lists the plain-language reasons behind a candidate's ranking in a fixed order:
// soil, pH, rainfall, season, budget, risk, water, experience, yield, cost ratio, maturity.
func (e *Engine) explain(c *crops.CropRecord, req *Request, in inputs) []string {
	var why []string
	add := func(format string, args ...interface{}) {
		why = append(why, fmt.Sprintf(format, args...))
	}

	if c.SoilRequirements.AcceptsSoil(req.SoilType) {
		add("Suitable for %s soil type", req.SoilType)
	}

	if ph := c.PH(); req.PH.Valid && ph != nil && ph.Contains(req.PH.Value) {
		value := crops.FormatNumber(req.PH.Value)
		if math.Abs(req.PH.Value-ph.OptimalValue()) < 0.5 {
			add("Ideal pH level of %s (optimal for this crop)", value)
		} else {
			add("Compatible with soil pH of %s", value)
		}
	}

	if rain := c.AnnualRainfall(); in.rainfall.Valid && rain != nil && rain.Contains(in.rainfall.Value) {
		add("Suitable for annual rainfall of %s mm", crops.FormatNumber(in.rainfall.Value))
	}

	if len(in.seasonMonths) > 0 {
		current := int(e.now().Month())
		switch {
		case containsMonth(in.seasonMonths, current):
			add("Ideal planting time in the current %s season", req.Season)
		case sowsInAny(c, in.seasonMonths):
			add("Can be planted in the %s season", req.Season)
		}
	}

	if cost, ok := c.CultivationCost(); ok && req.BudgetLevel != "" {
		if tier, _ := e.tables.Tier(req.BudgetLevel); tier.Contains(cost.Value) {
			switch req.BudgetLevel {
			case "low":
				add("Low cultivation cost (%s) fits your budget", cost)
			case "medium":
				add("Medium cultivation cost (%s) fits your budget", cost)
			case "high":
				add("Higher investment crop with potential for greater returns")
			default:
				add("Cultivation cost (%s) fits your budget", cost)
			}
		}
	}

	if trend := c.DemandTrend(); req.RiskPreference != "" && trend != "" && riskFits(req.RiskPreference, trend) {
		switch req.RiskPreference {
		case "low":
			add("Market demand is stable - lower risk option")
		case "medium":
			add("Market demand is favorable - balanced risk-reward")
		case "high":
			add("Market demand is increasing - higher potential returns")
		}
	}

	if tolerance := c.DroughtTolerance(); req.WaterAvailability != "" && waterFits(req.WaterAvailability, tolerance) {
		if req.WaterAvailability == "low" {
			add("High drought tolerance - suitable for limited water availability")
		} else {
			add("Good drought tolerance - suitable for your water availability")
		}
	}

	if req.ExperienceLevel != "" && e.experienceFits(c, req.ExperienceLevel) {
		switch e.tables.ExperienceComplexity[req.ExperienceLevel] {
		case ComplexityEasy:
			add("Easy to grow - suitable for beginners")
		case ComplexityModerate:
			add("Moderate complexity - good match for your experience level")
		case ComplexityComplex:
			add("Complex cultivation - suitable for experienced farmers")
		}
	}

	if h := c.Harvesting; h != nil && h.ExpectedYield != nil {
		y := h.ExpectedYield
		add("Expected yield: %s-%s %s", crops.FormatNumber(y.Min), crops.FormatNumber(y.Max), y.Unit)
	} else {
		add("Expected yield: unavailable")
	}

	if c.Economics != nil && c.Economics.BenefitCostRatio != 0 {
		add("Benefit-cost ratio: %s", crops.FormatNumber(c.Economics.BenefitCostRatio))
	}

	if h := c.Harvesting; h != nil && h.DaysToMaturity != nil {
		add("Days to maturity: %s-%s days", crops.FormatNumber(h.DaysToMaturity.Min), crops.FormatNumber(h.DaysToMaturity.Max))
	} else {
		add("Days to maturity: unavailable")
	}

	return why
}

func containsMonth(months []int, month int) bool {
	for _, m := range months {
		if m == month {
			return true
		}
	}
	return false
}

func sowsInAny(c *crops.CropRecord, months []int) bool {
	for _, m := range months {
		if c.SowsIn(m) {
			return true
		}
	}
	return false
}
