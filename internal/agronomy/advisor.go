package agronomy

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/Goopi7/crop-connect/internal/crops"
	"github.com/Goopi7/crop-connect/internal/metrics"
)

// CropLookup resolves crop records for the category fallback
type CropLookup interface {
	GetByID(ctx context.Context, id string) (*crops.CropRecord, error)
	GetByName(ctx context.Context, name string) (*crops.CropRecord, error)
}

// Advisor resolves fertilizer and pesticide advice through a chain of
// progressively less specific lookups
type Advisor struct {
	repo   Repository
	crops  CropLookup
	logger *zap.Logger
}

// NewAdvisor creates a new advisor
func NewAdvisor(repo Repository, lookup CropLookup, logger *zap.Logger) *Advisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Advisor{repo: repo, crops: lookup, logger: logger}
}

// Advise returns the most specific stored advice for the query, falling back
// to built-in stage defaults when nothing is stored
func (a *Advisor) Advise(ctx context.Context, q Query) (*Advice, error) {
	q.CropID = strings.TrimSpace(q.CropID)
	q.CropName = strings.TrimSpace(q.CropName)
	q.LocationID = strings.TrimSpace(q.LocationID)
	stage := normalizeStage(q.GrowthStage)

	if q.CropID == "" && q.CropName == "" {
		return nil, ErrCropRequired
	}

	crop := Criteria{CropID: q.CropID, CropName: q.CropName}
	steps := []struct {
		criteria   Criteria
		confidence Confidence
		source     Source
	}{
		{withScope(crop, q.LocationID, stage), ConfidenceHigh, SourceExact},
		{withScope(crop, q.LocationID, StageGeneric), ConfidenceMedium, SourceGeneric},
		{withScope(crop, "", stage), ConfidenceMedium, SourceCropStage},
	}

	for _, step := range steps {
		records, err := a.repo.Find(ctx, step.criteria)
		if err != nil {
			return nil, fmt.Errorf("failed to look up advice: %w", err)
		}
		if len(records) > 0 {
			return a.resolved(q, stage, records, step.confidence, step.source), nil
		}
	}

	record, err := a.categoryFallback(ctx, q, stage)
	if err != nil {
		return nil, err
	}
	if record != nil {
		return a.resolved(q, stage, []Record{*record}, ConfidenceMedium, SourceCategoryFallback), nil
	}

	return a.resolved(q, stage, []Record{ruleFallback(q.CropName, stage)}, ConfidenceLow, SourceRuleFallback), nil
}

// Create validates and stores a recommendation record
func (a *Advisor) Create(ctx context.Context, record *Record) (*Record, error) {
	if err := record.Validate(); err != nil {
		return nil, err
	}
	if err := a.repo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create agronomy record: %w", err)
	}
	a.logger.Info("Agronomy record created",
		zap.String("id", record.ID),
		zap.String("crop_name", record.CropName),
		zap.String("growth_stage", record.GrowthStage),
	)
	return record, nil
}

// categoryFallback looks for advice stored under one of the crop's categories
func (a *Advisor) categoryFallback(ctx context.Context, q Query, stage string) (*Record, error) {
	if a.crops == nil {
		return nil, nil
	}

	var (
		crop *crops.CropRecord
		err  error
	)
	if q.CropID != "" {
		crop, err = a.crops.GetByID(ctx, q.CropID)
	} else {
		crop, err = a.crops.GetByName(ctx, q.CropName)
	}
	if errors.Is(err, crops.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up crop: %w", err)
	}
	if len(crop.Categories) == 0 {
		return nil, nil
	}

	records, err := a.repo.Find(ctx, Criteria{
		CropNames: crop.Categories,
		Stages:    []string{stage, StageGeneric},
		Limit:     1,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to look up category advice: %w", err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return &records[0], nil
}

func (a *Advisor) resolved(q Query, stage string, records []Record, confidence Confidence, source Source) *Advice {
	metrics.RecordAgronomyAdvice(string(source))
	a.logger.Debug("Agronomy advice resolved",
		zap.String("crop_id", q.CropID),
		zap.String("crop_name", q.CropName),
		zap.String("growth_stage", stage),
		zap.String("source", string(source)),
		zap.Int("records", len(records)),
	)
	return &Advice{Recommendations: records, Confidence: confidence, Source: source}
}

func withScope(c Criteria, location, stage string) Criteria {
	c.LocationID = location
	c.Stages = []string{stage}
	return c
}
