package crops

import (
	"fmt"
	"strconv"
	"strings"
)

// ProcedureStep is one stage of a crop's growing procedure
type ProcedureStep struct {
	Step        string `json:"step"`
	Description string `json:"description"`
}

// BuildProcedure derives the step-by-step growing procedure of a crop.
// Missing attribute groups shorten the affected sentences instead of failing.
func BuildProcedure(c *CropRecord) []ProcedureStep {
	return []ProcedureStep{
		{Step: "Land Preparation", Description: landPreparation(c)},
		{Step: "Sowing", Description: sowing(c)},
		{Step: "Nutrient Management", Description: nutrients(c)},
		{Step: "Irrigation", Description: irrigation(c)},
		{Step: "Pest and Disease Management", Description: pestManagement(c)},
		{Step: "Harvesting", Description: harvesting(c)},
		{Step: "Post-Harvest Management", Description: postHarvest(c)},
	}
}

func landPreparation(c *CropRecord) string {
	parts := []string{"Prepare the land by plowing and leveling. Ensure proper drainage."}
	if s := c.SoilRequirements; s != nil {
		if len(s.SoilTypes) > 0 {
			parts = append(parts, fmt.Sprintf("Ideal soil type: %s.", strings.Join(s.SoilTypes, ", ")))
		}
		if s.PHRange != nil {
			parts = append(parts, fmt.Sprintf("Optimal soil pH: %s.", FormatNumber(s.PHRange.OptimalValue())))
		}
	}
	return strings.Join(parts, " ")
}

func sowing(c *CropRecord) string {
	p := c.PlantingDetails
	if p == nil {
		return "Sow seeds at the locally recommended rate, depth and spacing."
	}
	var parts []string
	if p.SeedRate != nil {
		parts = append(parts, fmt.Sprintf("Sow seeds at a rate of %s.", p.SeedRate.String()))
	}
	if p.Depth != nil {
		parts = append(parts, fmt.Sprintf("Plant at a depth of %s.", p.Depth.String()))
	}
	if sp := p.Spacing; sp != nil && sp.RowToRow != nil && sp.PlantToPlant != nil {
		parts = append(parts, fmt.Sprintf("Maintain spacing of %s between rows and %s between plants.",
			sp.RowToRow, sp.PlantToPlant))
	}
	if p.Method != "" {
		parts = append(parts, fmt.Sprintf("Method: %s.", p.Method))
	}
	if len(parts) == 0 {
		return "Sow seeds at the locally recommended rate, depth and spacing."
	}
	return strings.Join(parts, " ")
}

func nutrients(c *CropRecord) string {
	n := c.NutrientManagement
	if n == nil {
		return "Apply fertilizers based on a soil test."
	}
	var doses []string
	for _, item := range []struct {
		name string
		n    *Nutrient
	}{{"nitrogen", n.Nitrogen}, {"phosphorus", n.Phosphorus}, {"potassium", n.Potassium}} {
		if item.n != nil && item.n.Requirement != nil {
			doses = append(doses, fmt.Sprintf("%s of %s", item.n.Requirement, item.name))
		}
	}
	out := "Apply fertilizers based on a soil test."
	if len(doses) > 0 {
		out = "Apply " + joinList(doses) + "."
	}
	if n.Nitrogen != nil && n.Nitrogen.Schedule != "" {
		out += " " + n.Nitrogen.Schedule
	}
	return out
}

func irrigation(c *CropRecord) string {
	w := c.WaterRequirements
	if w == nil || w.IrrigationSchedule == nil {
		return "Irrigate as required by soil moisture."
	}
	s := w.IrrigationSchedule
	out := s.Frequency
	if out == "" {
		out = "Irrigate as required by soil moisture"
	}
	out = strings.TrimSuffix(out, ".") + "."
	if len(s.CriticalStages) > 0 {
		out += fmt.Sprintf(" Critical stages for irrigation: %s.", strings.Join(s.CriticalStages, ", "))
	}
	return out
}

func pestManagement(c *CropRecord) string {
	parts := []string{"Monitor regularly for pests and diseases."}
	for _, pd := range c.PestsDiseases {
		names := make([]string, 0, len(pd.Treatments))
		for _, t := range pd.Treatments {
			names = append(names, t.Name)
		}
		entry := fmt.Sprintf("%s (%s): Symptoms - %s.", pd.Name, pd.Type, pd.Symptoms)
		if len(names) > 0 {
			entry += fmt.Sprintf(" Treatment - %s.", strings.Join(names, ", "))
		}
		parts = append(parts, entry)
	}
	return strings.Join(parts, " ")
}

func harvesting(c *CropRecord) string {
	h := c.Harvesting
	if h == nil {
		return "Harvest at physiological maturity."
	}
	var parts []string
	if h.DaysToMaturity != nil {
		parts = append(parts, fmt.Sprintf("Harvest after %s-%s days from sowing.",
			FormatNumber(h.DaysToMaturity.Min), FormatNumber(h.DaysToMaturity.Max)))
	} else {
		parts = append(parts, "Harvest at physiological maturity.")
	}
	if len(h.Indicators) > 0 {
		parts = append(parts, fmt.Sprintf("Indicators of maturity: %s.", strings.Join(h.Indicators, ", ")))
	}
	if h.Method != "" {
		parts = append(parts, fmt.Sprintf("Method: %s.", h.Method))
	}
	if y := h.ExpectedYield; y != nil {
		parts = append(parts, fmt.Sprintf("Expected yield: %s-%s %s.", FormatNumber(y.Min), FormatNumber(y.Max), y.Unit))
	}
	return strings.Join(parts, " ")
}

func postHarvest(c *CropRecord) string {
	if c.PostHarvest == nil || c.PostHarvest.Storage == nil {
		return "Store the produce in a clean, dry place."
	}
	s := c.PostHarvest.Storage
	var parts []string
	if s.Method != "" {
		parts = append(parts, fmt.Sprintf("Storage: %s.", s.Method))
	}
	if s.Conditions != "" {
		parts = append(parts, fmt.Sprintf("Conditions: %s.", s.Conditions))
	}
	if s.ShelfLife != "" {
		parts = append(parts, fmt.Sprintf("Shelf life: %s.", s.ShelfLife))
	}
	if len(parts) == 0 {
		return "Store the produce in a clean, dry place."
	}
	return strings.Join(parts, " ")
}

// FormatNumber renders a float without trailing zeros (600, 6.5)
func FormatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func joinList(items []string) string {
	switch len(items) {
	case 1:
		return items[0]
	case 2:
		return items[0] + " and " + items[1]
	default:
		return strings.Join(items[:len(items)-1], ", ") + ", and " + items[len(items)-1]
	}
}
