package recommendation

import (
	"context"
	"math"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/Goopi7/crop-connect/internal/crops"
)

// mockSource is a mock implementation of the CropSource interface
type mockSource struct {
	mock.Mock
}

func (m *mockSource) FindAll(ctx context.Context, category string) ([]crops.CropRecord, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]crops.CropRecord), args.Error(1)
}

var march = time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)

func fixedClock(t time.Time) Option {
	return WithClock(func() time.Time { return t })
}

func newTestEngine(records ...crops.CropRecord) *Engine {
	return NewEngine(crops.NewMemoryRepository(records...), DefaultTables(), nil, fixedClock(march))
}

// expectedScore recomputes the weighted score independently of Breakdown.Weighted
func expectedScore(b Breakdown) int {
	v := int(math.Floor(0.35*b.Soil + 0.35*b.ClimateWater + 0.15*b.Season + 0.15*b.Economics + 0.5))
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func soilOnlyCrop(name string, soils ...string) crops.CropRecord {
	return crops.CropRecord{
		Name:             name,
		Description:      name,
		Categories:       []string{"test"},
		SoilRequirements: &crops.SoilRequirements{SoilTypes: soils},
	}
}

func wheat() crops.CropRecord {
	return crops.CropRecord{
		Name:           "Wheat",
		ScientificName: "Triticum aestivum",
		Description:    "Staple rabi cereal.",
		Categories:     []string{"cereal"},
		ClimateZones: []crops.ClimateZone{{
			ZoneName:         "Temperate",
			SowingWindow:     &crops.MonthWindow{StartMonth: 11, EndMonth: 12},
			TemperatureRange: &crops.Range{Min: 10, Max: 25},
		}},
		SoilRequirements: &crops.SoilRequirements{
			SoilTypes: []string{"loamy", "clay loam"},
			PHRange:   &crops.PHRange{Min: 6, Max: 7.5, Optimal: 6.8},
		},
		WaterRequirements: &crops.WaterRequirements{
			AnnualRainfall:   &crops.Range{Min: 500, Max: 900},
			DroughtTolerance: crops.DroughtMedium,
		},
		Harvesting: &crops.Harvesting{
			DaysToMaturity: &crops.Range{Min: 120, Max: 150},
			ExpectedYield:  &crops.YieldRange{Min: 40, Max: 50, Unit: "quintal/ha"},
		},
		MarketInfo: &crops.MarketInfo{DemandTrend: crops.TrendStable},
		Economics: &crops.Economics{
			CostOfCultivation: &crops.Quantity{Value: 40000, Unit: "INR/ha"},
			BenefitCostRatio:  1.8,
		},
	}
}

func tomatoes() crops.CropRecord {
	return crops.CropRecord{
		Name:        "Tomatoes",
		Description: "Warm season vegetable.",
		Categories:  []string{"vegetable"},
		ClimateZones: []crops.ClimateZone{{
			ZoneName:         "Tropical",
			SowingWindow:     &crops.MonthWindow{StartMonth: 11, EndMonth: 2},
			TemperatureRange: &crops.Range{Min: 18, Max: 30},
		}},
		SoilRequirements: &crops.SoilRequirements{
			SoilTypes: []string{"sandy loam", "loamy"},
			PHRange:   &crops.PHRange{Min: 6, Max: 7},
		},
		WaterRequirements: &crops.WaterRequirements{
			AnnualRainfall:   &crops.Range{Min: 600, Max: 1000},
			DroughtTolerance: crops.DroughtLow,
		},
		MarketInfo: &crops.MarketInfo{DemandTrend: crops.TrendIncreasing},
		Economics: &crops.Economics{
			CostOfCultivation: &crops.Quantity{Value: 75000, Unit: "INR/ha"},
		},
	}
}

func pearlMillet() crops.CropRecord {
	return crops.CropRecord{
		Name:        "Pearl Millet",
		Description: "Hardy millet for sandy soils and low rainfall.",
		Categories:  []string{"cereal", "millet"},
		ClimateZones: []crops.ClimateZone{{
			ZoneName:         "Arid",
			SowingWindow:     &crops.MonthWindow{StartMonth: 6, EndMonth: 7},
			TemperatureRange: &crops.Range{Min: 25, Max: 35},
		}},
		SoilRequirements: &crops.SoilRequirements{
			SoilTypes: []string{"sandy", "sandy loam"},
			PHRange:   &crops.PHRange{Min: 6.5, Max: 8.5},
		},
		WaterRequirements: &crops.WaterRequirements{
			AnnualRainfall:   &crops.Range{Min: 250, Max: 700},
			DroughtTolerance: crops.DroughtHigh,
		},
		MarketInfo: &crops.MarketInfo{DemandTrend: crops.TrendIncreasing},
		Economics: &crops.Economics{
			CostOfCultivation: &crops.Quantity{Value: 18000, Unit: "INR/ha"},
		},
	}
}
