package crops

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// PDFColor represents an RGB color
type PDFColor struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

// GuideOptions configures growing-guide PDF rendering
type GuideOptions struct {
	PageSize      string
	FontFamily    string
	FontSize      float64
	HeadingSize   float64
	TitleFontSize float64
	HeadingColor  PDFColor
	Margin        float64
	DateFormat    string
}

// DefaultGuideOptions returns default guide options
func DefaultGuideOptions() GuideOptions {
	return GuideOptions{
		PageSize:      "A4",
		FontFamily:    "Arial",
		FontSize:      10,
		HeadingSize:   13,
		TitleFontSize: 20,
		HeadingColor:  PDFColor{R: 46, G: 125, B: 50},
		Margin:        15,
		DateFormat:    "2006-01-02",
	}
}

// GuideRenderer renders a crop's growing guide as a PDF document
type GuideRenderer struct {
	options GuideOptions
	now     func() time.Time
}

// NewGuideRenderer creates a renderer with default options
func NewGuideRenderer() *GuideRenderer {
	return &GuideRenderer{options: DefaultGuideOptions(), now: time.Now}
}

// Render writes the guide for c to w
func (g *GuideRenderer) Render(w io.Writer, c *CropRecord) error {
	o := g.options
	pdf := gofpdf.New("P", "mm", o.PageSize, "")
	pdf.SetMargins(o.Margin, o.Margin, o.Margin)
	pdf.SetAutoPageBreak(true, o.Margin)
	pdf.SetTitle(c.Name+" Growing Guide", true)
	tr := pdf.UnicodeTranslatorFromDescriptor("")
	pdf.AddPage()

	// Title
	pdf.SetFont(o.FontFamily, "B", o.TitleFontSize)
	pdf.CellFormat(0, 12, tr(c.Name+" Growing Guide"), "", 1, "C", false, 0, "")
	if c.ScientificName != "" {
		pdf.SetFont(o.FontFamily, "I", o.FontSize+2)
		pdf.SetTextColor(100, 100, 100)
		pdf.CellFormat(0, 8, tr(c.ScientificName), "", 1, "C", false, 0, "")
	}
	pdf.SetFont(o.FontFamily, "", o.FontSize-1)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated: %s", g.now().Format(o.DateFormat)), "", 1, "R", false, 0, "")
	pdf.Ln(4)

	g.paragraph(pdf, tr, c.Description)

	g.heading(pdf, tr, "Growing Conditions")
	for _, line := range conditionLines(c) {
		g.bullet(pdf, tr, line)
	}

	g.heading(pdf, tr, "Crop Details")
	for _, line := range detailLines(c) {
		g.bullet(pdf, tr, line)
	}

	g.heading(pdf, tr, "Growing Procedure")
	for i, step := range BuildProcedure(c) {
		pdf.SetFont(o.FontFamily, "B", o.FontSize+1)
		pdf.SetTextColor(0, 0, 0)
		pdf.CellFormat(0, 7, tr(fmt.Sprintf("%d. %s", i+1, step.Step)), "", 1, "L", false, 0, "")
		g.paragraph(pdf, tr, step.Description)
	}

	if len(c.PestsDiseases) > 0 {
		g.heading(pdf, tr, "Pests and Diseases")
		for _, pd := range c.PestsDiseases {
			g.bullet(pdf, tr, fmt.Sprintf("%s (%s): %s", pd.Name, pd.Type, pd.Symptoms))
			for _, prevention := range pd.PreventiveMeasures {
				g.bullet(pdf, tr, "  Prevention: "+prevention)
			}
		}
	}

	if err := pdf.Error(); err != nil {
		return fmt.Errorf("failed to build guide: %w", err)
	}
	return pdf.Output(w)
}

func (g *GuideRenderer) heading(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	c := g.options.HeadingColor
	pdf.Ln(3)
	pdf.SetFont(g.options.FontFamily, "B", g.options.HeadingSize)
	pdf.SetTextColor(c.R, c.G, c.B)
	pdf.CellFormat(0, 9, tr(text), "B", 1, "L", false, 0, "")
	pdf.Ln(2)
}

func (g *GuideRenderer) paragraph(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	if text == "" {
		return
	}
	pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 5, tr(text), "", "L", false)
	pdf.Ln(1)
}

func (g *GuideRenderer) bullet(pdf *gofpdf.Fpdf, tr func(string) string, text string) {
	pdf.SetFont(g.options.FontFamily, "", g.options.FontSize)
	pdf.SetTextColor(0, 0, 0)
	pdf.MultiCell(0, 5, tr("- "+text), "", "L", false)
}

func conditionLines(c *CropRecord) []string {
	var lines []string
	if s := c.SoilRequirements; s != nil {
		if len(s.SoilTypes) > 0 {
			lines = append(lines, "Soil types: "+strings.Join(s.SoilTypes, ", "))
		}
		if ph := s.PHRange; ph != nil {
			lines = append(lines, fmt.Sprintf("Soil pH: %s - %s (optimal %s)",
				FormatNumber(ph.Min), FormatNumber(ph.Max), FormatNumber(ph.OptimalValue())))
		}
		if s.Drainage != "" {
			lines = append(lines, "Drainage: "+s.Drainage)
		}
	}
	if r := c.AnnualRainfall(); r != nil {
		lines = append(lines, fmt.Sprintf("Annual rainfall: %s - %s mm", FormatNumber(r.Min), FormatNumber(r.Max)))
	}
	if t := c.FirstTemperatureRange(); t != nil {
		lines = append(lines, fmt.Sprintf("Temperature: %s - %s °C", FormatNumber(t.Min), FormatNumber(t.Max)))
	}
	if d := c.DroughtTolerance(); d != "" {
		lines = append(lines, "Drought tolerance: "+string(d))
	}
	for _, z := range c.ClimateZones {
		if z.SowingWindow != nil && z.SowingWindow.Known() {
			lines = append(lines, fmt.Sprintf("Sowing in %s: %s to %s", z.ZoneName,
				time.Month(z.SowingWindow.StartMonth), time.Month(z.SowingWindow.EndMonth)))
		}
	}
	if len(lines) == 0 {
		lines = append(lines, "No growing conditions recorded")
	}
	return lines
}

func detailLines(c *CropRecord) []string {
	var lines []string
	if len(c.Categories) > 0 {
		lines = append(lines, "Categories: "+strings.Join(c.Categories, ", "))
	}
	if c.DefaultGrowthCycleDays > 0 {
		lines = append(lines, fmt.Sprintf("Growth cycle: %d days", c.DefaultGrowthCycleDays))
	}
	if h := c.Harvesting; h != nil && h.ExpectedYield != nil {
		y := h.ExpectedYield
		lines = append(lines, fmt.Sprintf("Expected yield: %s - %s %s", FormatNumber(y.Min), FormatNumber(y.Max), y.Unit))
	}
	if cost, ok := c.CultivationCost(); ok {
		lines = append(lines, "Cost of cultivation: "+cost.String())
	}
	if c.Economics != nil && c.Economics.BenefitCostRatio != 0 {
		lines = append(lines, "Benefit-cost ratio: "+FormatNumber(c.Economics.BenefitCostRatio))
	}
	if m := c.MarketInfo; m != nil {
		if m.PriceRange != nil {
			lines = append(lines, fmt.Sprintf("Market price: %s - %s %s",
				FormatNumber(m.PriceRange.Min), FormatNumber(m.PriceRange.Max), m.PriceRange.Currency))
		}
		if m.DemandTrend != "" {
			lines = append(lines, "Demand trend: "+string(m.DemandTrend))
		}
	}
	for _, note := range c.RegionSpecificNotes {
		lines = append(lines, fmt.Sprintf("%s: %s", note.Region, note.Notes))
	}
	if len(lines) == 0 {
		lines = append(lines, "No crop details recorded")
	}
	return lines
}
