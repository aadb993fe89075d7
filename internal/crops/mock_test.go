package crops

import (
	"context"

	"github.com/stretchr/testify/mock"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) FindAll(ctx context.Context, category string) ([]CropRecord, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]CropRecord), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, filter ListFilter) ([]CropRecord, int64, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, 0, args.Error(2)
	}
	return args.Get(0).([]CropRecord), args.Get(1).(int64), args.Error(2)
}

func (m *MockRepository) GetByID(ctx context.Context, id string) (*CropRecord, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CropRecord), args.Error(1)
}

func (m *MockRepository) GetByName(ctx context.Context, name string) (*CropRecord, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*CropRecord), args.Error(1)
}

func (m *MockRepository) Create(ctx context.Context, record *CropRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) Update(ctx context.Context, record *CropRecord) error {
	args := m.Called(ctx, record)
	return args.Error(0)
}

func (m *MockRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRepository) Upsert(ctx context.Context, records []CropRecord) (int, error) {
	args := m.Called(ctx, records)
	return args.Int(0), args.Error(1)
}

func sampleCrop(name string) CropRecord {
	return CropRecord{
		Name:        name,
		Description: name + " crop",
		Categories:  []string{"cereal"},
		ClimateZones: []ClimateZone{{
			ZoneName:         "Temperate",
			SowingWindow:     &MonthWindow{StartMonth: 11, EndMonth: 12},
			TemperatureRange: &Range{Min: 10, Max: 28},
		}},
		SoilRequirements: &SoilRequirements{
			SoilTypes: []string{"loamy"},
			PHRange:   &PHRange{Min: 6, Max: 7.5, Optimal: 6.8},
		},
		WaterRequirements: &WaterRequirements{
			AnnualRainfall:   &Range{Min: 500, Max: 900},
			DroughtTolerance: DroughtMedium,
		},
	}
}
