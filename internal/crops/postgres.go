package crops

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// cropRow is the postgres representation of a crop: indexed columns plus the full document as JSONB
type cropRow struct {
	ID         string                         `gorm:"type:uuid;primaryKey"`
	Name       string                         `gorm:"not null"`
	NameKey    string                         `gorm:"not null;uniqueIndex"`
	Categories pq.StringArray                 `gorm:"type:text[]"`
	Document   datatypes.JSONType[CropRecord] `gorm:"type:jsonb;not null"`
	CreatedAt  time.Time                      `gorm:"index"`
	UpdatedAt  time.Time
}

// TableName specifies the table name
func (cropRow) TableName() string {
	return "crops"
}

func newCropRow(rec *CropRecord) cropRow {
	return cropRow{
		ID:         rec.ID,
		Name:       rec.Name,
		NameKey:    CanonicalName(rec.Name),
		Categories: pq.StringArray(rec.Categories),
		Document:   datatypes.NewJSONType(*rec),
		CreatedAt:  rec.CreatedAt,
		UpdatedAt:  rec.UpdatedAt,
	}
}

func (row cropRow) record() CropRecord {
	rec := row.Document.Data()
	rec.ID = row.ID
	rec.Name = row.Name
	rec.CreatedAt = row.CreatedAt
	rec.UpdatedAt = row.UpdatedAt
	return rec
}

// PostgresRepository implements Repository with gorm. The gorm.DB must be opened
// with TranslateError so unique violations surface as gorm.ErrDuplicatedKey.
type PostgresRepository struct {
	db *gorm.DB
}

// NewPostgresRepository creates a new gorm-backed crop repository
func NewPostgresRepository(db *gorm.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Migrate creates or updates the crops table
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if err := r.db.WithContext(ctx).AutoMigrate(&cropRow{}); err != nil {
		return fmt.Errorf("failed to migrate crops table: %w", err)
	}
	return nil
}

func (r *PostgresRepository) FindAll(ctx context.Context, category string) ([]CropRecord, error) {
	query := r.db.WithContext(ctx).Model(&cropRow{}).Order("created_at, id")
	if category != "" {
		query = query.Where("? = ANY(categories)", category)
	}

	var rows []cropRow
	if err := query.Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query crops: %w", err)
	}
	return rowsToRecords(rows), nil
}

func (r *PostgresRepository) List(ctx context.Context, filter ListFilter) ([]CropRecord, int64, error) {
	filter.Normalize()
	db := r.db.WithContext(ctx)

	var total int64
	if err := applyFilter(db.Model(&cropRow{}), filter).Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count crops: %w", err)
	}

	field, desc := filter.SortField()
	if field == "name" {
		field = "name_key"
	}
	if desc {
		field += " DESC"
	}

	var rows []cropRow
	err := applyFilter(db.Model(&cropRow{}), filter).
		Order(field).Order("id").
		Offset(filter.Offset()).
		Limit(filter.Limit).
		Find(&rows).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list crops: %w", err)
	}
	return rowsToRecords(rows), total, nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*CropRecord, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, ErrNotFound
	}
	var row cropRow
	if err := r.db.WithContext(ctx).First(&row, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get crop: %w", err)
	}
	rec := row.record()
	return &rec, nil
}

func (r *PostgresRepository) GetByName(ctx context.Context, name string) (*CropRecord, error) {
	var row cropRow
	if err := r.db.WithContext(ctx).First(&row, "name_key = ?", CanonicalName(name)).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get crop by name: %w", err)
	}
	rec := row.record()
	return &rec, nil
}

func (r *PostgresRepository) Create(ctx context.Context, record *CropRecord) error {
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	row := newCropRow(record)
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to insert crop: %w", err)
	}
	return nil
}

func (r *PostgresRepository) Update(ctx context.Context, record *CropRecord) error {
	row := newCropRow(record)
	res := r.db.WithContext(ctx).Model(&cropRow{}).
		Where("id = ?", record.ID).
		Select("name", "name_key", "categories", "document", "updated_at").
		Updates(&row)
	if res.Error != nil {
		if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
			return ErrDuplicateName
		}
		return fmt.Errorf("failed to update crop: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	res := r.db.WithContext(ctx).Delete(&cropRow{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete crop: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepository) Upsert(ctx context.Context, records []CropRecord) (int, error) {
	written := 0
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()
		for i, rec := range records {
			var existing cropRow
			err := tx.First(&existing, "name_key = ?", CanonicalName(rec.Name)).Error
			switch {
			case err == nil:
				rec.ID = existing.ID
				rec.CreatedAt = existing.CreatedAt
			case errors.Is(err, gorm.ErrRecordNotFound):
				if rec.ID == "" {
					rec.ID = uuid.New().String()
				}
				if rec.CreatedAt.IsZero() {
					rec.CreatedAt = seedTimestamp(now, i)
				}
			default:
				return err
			}
			rec.UpdatedAt = now

			row := newCropRow(&rec)
			if err := tx.Save(&row).Error; err != nil {
				return fmt.Errorf("failed to upsert crop %s: %w", rec.Name, err)
			}
			written++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return written, nil
}

// DeleteAll removes every crop row
func (r *PostgresRepository) DeleteAll(ctx context.Context) (int64, error) {
	res := r.db.WithContext(ctx).Where("1 = 1").Delete(&cropRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to clear crops: %w", res.Error)
	}
	return res.RowsAffected, nil
}

func rowsToRecords(rows []cropRow) []CropRecord {
	records := make([]CropRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records
}

func applyFilter(query *gorm.DB, f ListFilter) *gorm.DB {
	if f.Category != "" {
		query = query.Where("? = ANY(categories)", f.Category)
	}
	if f.ClimateZone != "" {
		query = query.Where(`EXISTS (SELECT 1 FROM jsonb_array_elements(document->'climate_zones') z
			WHERE z->>'zone_name' ILIKE ?)`, "%"+likeEscape(f.ClimateZone)+"%")
	}
	if f.SowMonth >= 1 && f.SowMonth <= 12 {
		query = query.Where(`EXISTS (SELECT 1 FROM jsonb_array_elements(document->'climate_zones') z,
			LATERAL (SELECT (z->'sowing_window'->>'start_month')::int AS s, (z->'sowing_window'->>'end_month')::int AS e) w
			WHERE w.s > 0 AND w.e > 0 AND
				CASE WHEN w.s <= w.e THEN @m BETWEEN w.s AND w.e ELSE @m >= w.s OR @m <= w.e END)`,
			map[string]interface{}{"m": f.SowMonth})
	}
	if f.SoilType != "" {
		query = query.Where(`EXISTS (SELECT 1 FROM jsonb_array_elements_text(document->'soil_requirements'->'soil_types') s
			WHERE lower(s) = ?)`, strings.ToLower(strings.TrimSpace(f.SoilType)))
	}
	if f.DroughtTolerance != "" {
		query = query.Where("lower(document->'water_requirements'->>'drought_tolerance') = ?",
			strings.ToLower(strings.TrimSpace(f.DroughtTolerance)))
	}
	if f.Search != "" {
		like := "%" + likeEscape(f.Search) + "%"
		query = query.Where("name ILIKE ? OR document->>'scientific_name' ILIKE ? OR document->>'description' ILIKE ?",
			like, like, like)
	}
	return query
}

var likeReplacer = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func likeEscape(s string) string {
	return likeReplacer.Replace(s)
}
