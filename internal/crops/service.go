package crops

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ErrInvalidCrop wraps every crop validation failure
var ErrInvalidCrop = errors.New("invalid crop")

// ListResponse is a page of catalogue records
type ListResponse struct {
	Page  int          `json:"page"`
	Limit int          `json:"limit"`
	Total int64        `json:"total"`
	Count int          `json:"count"`
	Crops []CropRecord `json:"crops"`
}

// Service provides crop catalogue operations
type Service struct {
	repo   Repository
	guide  *GuideRenderer
	logger *zap.Logger
	now    func() time.Time
}

// NewService creates a new crop service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{
		repo:   repo,
		guide:  NewGuideRenderer(),
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// =====================================================
// Catalogue Reads
// =====================================================

// List returns a filtered, paginated page of crops
func (s *Service) List(ctx context.Context, filter ListFilter) (*ListResponse, error) {
	filter.Normalize()
	records, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to list crops: %w", err)
	}
	return &ListResponse{
		Page:  filter.Page,
		Limit: filter.Limit,
		Total: total,
		Count: len(records),
		Crops: records,
	}, nil
}

// Get returns a crop by ID
func (s *Service) Get(ctx context.Context, id string) (*CropRecord, error) {
	return s.repo.GetByID(ctx, id)
}

// Procedure returns the growing procedure of a crop
func (s *Service) Procedure(ctx context.Context, id string) ([]ProcedureStep, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return BuildProcedure(record), nil
}

// RenderGuide writes the growing-guide PDF of a crop to w and returns the crop
func (s *Service) RenderGuide(ctx context.Context, id string, w io.Writer) (*CropRecord, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.guide.Render(w, record); err != nil {
		return nil, fmt.Errorf("failed to render guide: %w", err)
	}
	return record, nil
}

// =====================================================
// Catalogue Writes
// =====================================================

// Create validates and stores a new crop
func (s *Service) Create(ctx context.Context, record *CropRecord) (*CropRecord, error) {
	if err := Validate(record); err != nil {
		return nil, err
	}
	now := s.now()
	record.ID = ""
	record.CreatedAt = now
	record.UpdatedAt = now

	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Crop created", zap.String("crop_id", record.ID), zap.String("name", record.Name))
	return record, nil
}

// Update replaces an existing crop, keeping its ID and creation time
func (s *Service) Update(ctx context.Context, id string, record *CropRecord) (*CropRecord, error) {
	if err := Validate(record); err != nil {
		return nil, err
	}
	existing, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	record.ID = existing.ID
	record.CreatedAt = existing.CreatedAt
	record.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("Crop updated", zap.String("crop_id", record.ID), zap.String("name", record.Name))
	return record, nil
}

// Delete removes a crop
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("Crop deleted", zap.String("crop_id", id))
	return nil
}

// Seed validates and upserts records keyed by name
func (s *Service) Seed(ctx context.Context, records []CropRecord) (int, error) {
	for i := range records {
		if err := Validate(&records[i]); err != nil {
			return 0, fmt.Errorf("crop %d (%s): %w", i, records[i].Name, err)
		}
	}
	n, err := s.repo.Upsert(ctx, records)
	if err != nil {
		return n, fmt.Errorf("failed to seed crops: %w", err)
	}
	s.logger.Info("Crop catalogue seeded", zap.Int("crops", n))
	return n, nil
}

// =====================================================
// Validation
// =====================================================

// Validate checks the internal consistency of a crop record
func Validate(c *CropRecord) error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" {
		return invalid("name is required")
	}
	if strings.TrimSpace(c.Description) == "" {
		return invalid("description is required")
	}
	for _, m := range c.TypicalSeasonMonths {
		if !validMonth(m) {
			return invalid("typical_season_months must be between 1 and 12")
		}
	}
	for _, z := range c.ClimateZones {
		if w := z.SowingWindow; w != nil {
			if (w.StartMonth != 0 && !validMonth(w.StartMonth)) || (w.EndMonth != 0 && !validMonth(w.EndMonth)) {
				return invalid("sowing_window months must be between 1 and 12 in zone %q", z.ZoneName)
			}
		}
		if err := checkRange("temperature_range", z.TemperatureRange); err != nil {
			return err
		}
		if err := checkRange("rainfall_requirement", z.RainfallRequirement); err != nil {
			return err
		}
	}
	if ph := c.PH(); ph != nil {
		if ph.Min < 0 || ph.Max > 14 {
			return invalid("ph_range must lie within 0-14")
		}
		if ph.Min > ph.Max {
			return invalid("ph_range min must not exceed max")
		}
		if ph.Optimal != 0 && !ph.Contains(ph.Optimal) {
			return invalid("ph_range optimal must lie within min and max")
		}
	}
	if err := checkRange("annual_rainfall", c.AnnualRainfall()); err != nil {
		return err
	}
	if c.Harvesting != nil {
		if err := checkRange("days_to_maturity", c.Harvesting.DaysToMaturity); err != nil {
			return err
		}
	}
	switch c.DroughtTolerance() {
	case "", DroughtLow, DroughtMedium, DroughtHigh:
	default:
		return invalid("drought_tolerance must be one of low, medium, high")
	}
	switch c.DemandTrend() {
	case "", TrendStable, TrendIncreasing, TrendDecreasing:
	default:
		return invalid("demand_trend must be one of stable, increasing, decreasing")
	}
	return nil
}

func checkRange(field string, r *Range) error {
	if r != nil && r.Min > r.Max {
		return invalid("%s min must not exceed max", field)
	}
	return nil
}

func validMonth(m int) bool {
	return m >= 1 && m <= 12
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%w: "+format, append([]interface{}{ErrInvalidCrop}, args...)...)
}
