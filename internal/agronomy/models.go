package agronomy

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

var (
	// ErrCropRequired is returned when advice is requested without a crop id or name
	ErrCropRequired = errors.New("crop_id or crop_name is required")
	// ErrInvalidRecord wraps every stored-advice validation failure
	ErrInvalidRecord = errors.New("invalid agronomy record")
)

// Growth stages a stored record may be tagged with
const (
	StageSeedling    = "seedling"
	StageVegetative  = "vegetative"
	StageFlowering   = "flowering"
	StageFruiting    = "fruiting"
	StagePreHarvest  = "pre-harvest"
	StagePostHarvest = "post-harvest"
	StageGeneric     = "generic"
)

var validStages = map[string]bool{
	StageSeedling: true, StageVegetative: true, StageFlowering: true, StageFruiting: true,
	StagePreHarvest: true, StagePostHarvest: true, StageGeneric: true,
}

// Confidence labels how specific the resolved advice is
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Source names the lookup step that produced the advice
type Source string

const (
	SourceExact            Source = "database-exact"
	SourceGeneric          Source = "database-generic"
	SourceCropStage        Source = "database-crop-stage"
	SourceCategoryFallback Source = "category-fallback"
	SourceRuleFallback     Source = "rule-fallback"
)

// Item is a single fertilizer or pesticide application
type Item struct {
	Name                string `json:"name" bson:"name"`
	NPKRatio            string `json:"npk_ratio,omitempty" bson:"npk_ratio,omitempty"`
	Dosage              string `json:"dosage,omitempty" bson:"dosage,omitempty"`
	ApplicationTime     string `json:"application_time,omitempty" bson:"application_time,omitempty"`
	TargetPest          string `json:"target_pest,omitempty" bson:"target_pest,omitempty"`
	SafetyWaitingPeriod string `json:"safety_waiting_period,omitempty" bson:"safety_waiting_period,omitempty"`
}

// Record is a stored fertilizer and pesticide recommendation for a crop at a growth stage
type Record struct {
	ID                     string    `json:"id" bson:"_id"`
	CropID                 string    `json:"crop_id,omitempty" bson:"crop_id,omitempty"`
	CropName               string    `json:"crop_name" bson:"crop_name"`
	LocationID             string    `json:"location_id,omitempty" bson:"location_id,omitempty"`
	GrowthStage            string    `json:"growth_stage" bson:"growth_stage"`
	DaysSinceSowing        int       `json:"days_since_sowing,omitempty" bson:"days_since_sowing,omitempty"`
	SoilType               string    `json:"soil_type,omitempty" bson:"soil_type,omitempty"`
	CommonPestsDiseases    []string  `json:"common_pests_diseases,omitempty" bson:"common_pests_diseases,omitempty"`
	RecommendedFertilizers []Item    `json:"recommended_fertilizers" bson:"recommended_fertilizers"`
	RecommendedPesticides  []Item    `json:"recommended_pesticides" bson:"recommended_pesticides"`
	CreatedAt              time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt              time.Time `json:"updated_at" bson:"updated_at"`
}

// Validate checks a record before it is stored and normalizes its stage
func (r *Record) Validate() error {
	r.CropName = strings.TrimSpace(r.CropName)
	r.GrowthStage = normalizeStage(r.GrowthStage)
	if r.CropName == "" {
		return fmt.Errorf("%w: crop_name is required", ErrInvalidRecord)
	}
	if !validStages[r.GrowthStage] {
		return fmt.Errorf("%w: unknown growth_stage %q", ErrInvalidRecord, r.GrowthStage)
	}
	return nil
}

// Query identifies the crop, location and stage advice is wanted for
type Query struct {
	CropID      string `form:"crop_id" json:"crop_id"`
	CropName    string `form:"crop_name" json:"crop_name"`
	LocationID  string `form:"location_id" json:"location_id"`
	GrowthStage string `form:"growth_stage" json:"growth_stage"`
}

// Advice is the resolved set of recommendations and where it came from
type Advice struct {
	Recommendations []Record   `json:"recommendations"`
	Confidence      Confidence `json:"confidence"`
	Source          Source     `json:"source"`
}

// Criteria narrows a record lookup. Empty fields are unconstrained.
type Criteria struct {
	CropID     string
	CropName   string
	CropNames  []string
	LocationID string
	Stages     []string
	Limit      int
}

// Matches reports whether r satisfies the criteria
func (c Criteria) Matches(r *Record) bool {
	if c.CropID != "" && r.CropID != c.CropID {
		return false
	}
	if c.CropName != "" && !strings.EqualFold(r.CropName, c.CropName) {
		return false
	}
	if len(c.CropNames) > 0 && !containsFold(c.CropNames, r.CropName) {
		return false
	}
	if c.LocationID != "" && r.LocationID != c.LocationID {
		return false
	}
	if len(c.Stages) > 0 && !containsFold(c.Stages, r.GrowthStage) {
		return false
	}
	return true
}

func normalizeStage(stage string) string {
	stage = strings.ToLower(strings.TrimSpace(stage))
	if stage == "" {
		return StageGeneric
	}
	return stage
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
