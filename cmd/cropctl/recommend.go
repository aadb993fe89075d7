package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Goopi7/crop-connect/internal/crops"
	"github.com/Goopi7/crop-connect/internal/recommendation"
)

var (
	requestTextFlags = []struct{ name, usage string }{
		{"soil-type", "Soil type of the field (required)"},
		{"location", "Region or state name"},
		{"season", "Planting season (kharif|rabi|summer|winter|monsoon|autumn)"},
		{"budget-level", "Budget level (low|medium|high)"},
		{"risk-preference", "Risk preference (low|medium|high)"},
		{"crop-category", "Only consider crops in this category"},
		{"water-availability", "Water availability (low|medium|high)"},
		{"experience-level", "Farming experience (beginner|intermediate|expert)"},
	}
	requestNumberFlags = []struct{ name, usage string }{
		{"ph", "Soil pH (0-14)"},
		{"rainfall", "Annual rainfall in mm"},
		{"temperature", "Average temperature in Celsius"},
		{"plot-size", "Plot size in acres"},
		{"market-distance", "Distance to the nearest market in km"},
		{"min-score", "Minimum score a crop needs to be listed (0-100)"},
	}
)

func newRecommendCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "recommend",
		Short: "Rank crops for a field offline",
		Long: `Recommend runs the scoring engine against a JSON catalogue (the embedded
starter catalogue by default) and prints the ranked crops.

  cropctl recommend --soil-type loamy --location punjab --season rabi
  cropctl recommend --soil-type "clay loam" --ph 6.8 --format json --limit 3`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := crops.LoadCatalog(v.GetString("recommend.catalog"))
			if err != nil {
				return err
			}
			tables, err := recommendation.LoadTables(v.GetString("recommend.tables"))
			if err != nil {
				return err
			}
			log, err := newLogger(v)
			if err != nil {
				return err
			}
			defer log.Sync()

			req := requestFromViper(v)
			if path := v.GetString("recommend.boundary"); path != "" {
				boundary, err := os.ReadFile(path)
				if err != nil {
					return fmt.Errorf("failed to read field boundary: %w", err)
				}
				req.FieldBoundary = boundary
			}

			engine := recommendation.NewEngine(crops.NewMemoryRepository(records...), tables, log)
			result, err := engine.Recommend(cmd.Context(), req)
			if err != nil {
				return err
			}

			view := recommendation.NewResultView(result, v.GetInt("recommend.limit"))
			switch format := v.GetString("recommend.format"); format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(view)
			case "table", "":
				printRanking(cmd.OutOrStdout(), view)
				return nil
			default:
				return fmt.Errorf("unknown output format %q (table|json)", format)
			}
		},
	}

	for _, f := range requestTextFlags {
		cmd.Flags().String(f.name, "", f.usage)
		_ = v.BindPFlag("recommend."+f.name, cmd.Flags().Lookup(f.name))
	}
	for _, f := range requestNumberFlags {
		cmd.Flags().String(f.name, "", f.usage)
		_ = v.BindPFlag("recommend."+f.name, cmd.Flags().Lookup(f.name))
	}
	cmd.Flags().String("catalog", "", "JSON catalogue file (default: embedded catalogue)")
	cmd.Flags().String("tables", "", "YAML file overlaid on the default reference tables")
	cmd.Flags().String("boundary", "", "GeoJSON file with the field polygon; fills --plot-size")
	cmd.Flags().String("format", "table", "Output format (table|json)")
	cmd.Flags().Int("limit", 10, "Maximum crops to print (0 = all)")
	for _, name := range []string{"catalog", "tables", "boundary", "format", "limit"} {
		_ = v.BindPFlag("recommend."+name, cmd.Flags().Lookup(name))
	}
	return cmd
}

func requestFromViper(v *viper.Viper) recommendation.Request {
	num := func(name string) recommendation.OptionalFloat {
		return recommendation.ParseOptionalFloat(v.GetString("recommend." + name))
	}
	str := func(name string) string {
		return v.GetString("recommend." + name)
	}
	return recommendation.Request{
		SoilType:          str("soil-type"),
		Location:          str("location"),
		Season:            str("season"),
		BudgetLevel:       str("budget-level"),
		RiskPreference:    str("risk-preference"),
		CropCategory:      str("crop-category"),
		WaterAvailability: str("water-availability"),
		ExperienceLevel:   str("experience-level"),
		PH:                num("ph"),
		Rainfall:          num("rainfall"),
		Temperature:       num("temperature"),
		PlotSize:          num("plot-size"),
		MarketDistance:    num("market-distance"),
		MinScore:          num("min-score"),
	}
}

// printStyles holds the styles used by the ranking table
type printStyles struct {
	header lipgloss.Style
	high   lipgloss.Style
	medium lipgloss.Style
	low    lipgloss.Style
	dim    lipgloss.Style
}

func newPrintStyles() printStyles {
	return printStyles{
		header: lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12")),
		high:   lipgloss.NewStyle().Foreground(lipgloss.Color("10")),
		medium: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		low:    lipgloss.NewStyle().Foreground(lipgloss.Color("9")),
		dim:    lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

func (s printStyles) score(score int) lipgloss.Style {
	switch {
	case score >= 70:
		return s.high
	case score >= 50:
		return s.medium
	default:
		return s.low
	}
}

func printRanking(w io.Writer, view recommendation.ResultView) {
	styles := newPrintStyles()

	fmt.Fprintf(w, "%s %d of %d crops, accuracy %s\n",
		styles.header.Render("Recommendations:"),
		view.RecommendationsCount, view.TotalCropsEvaluated, view.Accuracy)
	if view.Climate != nil {
		fmt.Fprintln(w, styles.dim.Render(fmt.Sprintf("Climate: %s, %s mm rainfall, %s C",
			view.Climate.ClimateZone,
			crops.FormatNumber(view.Climate.AvgRainfall),
			crops.FormatNumber(view.Climate.AvgTemp))))
	}
	if len(view.Recommendations) == 0 {
		fmt.Fprintln(w, styles.dim.Render("No crops matched."))
		return
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "%-4s %-24s %5s  %5s %7s %6s %9s\n", "#", "Crop", "Score", "Soil", "Climate", "Season", "Economics")
	for i, rec := range view.Recommendations {
		b := rec.Breakdown
		fmt.Fprintf(w, "%-4d %-24s %s  %5s %7s %6s %9s\n",
			i+1, truncate(rec.Name, 24),
			styles.score(rec.Score).Render(fmt.Sprintf("%5d", rec.Score)),
			crops.FormatNumber(b.Soil), crops.FormatNumber(b.ClimateWater),
			crops.FormatNumber(b.Season), crops.FormatNumber(b.Economics))
		if len(rec.Why) > 0 {
			fmt.Fprintln(w, styles.dim.Render("     "+strings.Join(rec.Why[:min(len(rec.Why), 3)], "; ")))
		}
	}
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
