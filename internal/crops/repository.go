package crops

import (
	"context"
	"sort"
	"strings"
	"time"
)

// Repository defines the interface for crop knowledge store operations
type Repository interface {
	// FindAll returns every record, optionally restricted to a category, in store order
	FindAll(ctx context.Context, category string) ([]CropRecord, error)
	List(ctx context.Context, filter ListFilter) ([]CropRecord, int64, error)
	GetByID(ctx context.Context, id string) (*CropRecord, error)
	GetByName(ctx context.Context, name string) (*CropRecord, error)
	Create(ctx context.Context, record *CropRecord) error
	Update(ctx context.Context, record *CropRecord) error
	Delete(ctx context.Context, id string) error
	// Upsert inserts or replaces records keyed by name and returns how many were written
	Upsert(ctx context.Context, records []CropRecord) (int, error)
}

// seedTimestamp spaces the creation times of a batch so that ordering by
// created_at keeps the batch order. Mongo stores milliseconds.
func seedTimestamp(now time.Time, i int) time.Time {
	return now.Add(time.Duration(i) * time.Millisecond)
}

// Matches reports whether a record passes every non-empty filter field
func (f ListFilter) Matches(c *CropRecord) bool {
	if f.Category != "" && !c.HasCategory(f.Category) {
		return false
	}
	if f.ClimateZone != "" {
		zone := strings.ToLower(f.ClimateZone)
		found := false
		for _, z := range c.ClimateZones {
			if strings.Contains(strings.ToLower(z.ZoneName), zone) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if f.SowMonth >= 1 && f.SowMonth <= 12 && !c.SowsIn(f.SowMonth) {
		return false
	}
	if f.SoilType != "" && !c.SoilRequirements.AcceptsSoil(strings.ToLower(strings.TrimSpace(f.SoilType))) {
		return false
	}
	if f.DroughtTolerance != "" && !strings.EqualFold(string(c.DroughtTolerance()), f.DroughtTolerance) {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(c.Name), q) &&
			!strings.Contains(strings.ToLower(c.ScientificName), q) &&
			!strings.Contains(strings.ToLower(c.Description), q) {
			return false
		}
	}
	return true
}

// SortField returns the sort column and direction parsed from the filter
func (f ListFilter) SortField() (field string, desc bool) {
	field = f.Sort
	if strings.HasPrefix(field, "-") {
		desc = true
		field = field[1:]
	}
	switch field {
	case "name", "created_at", "updated_at":
	default:
		field = "name"
	}
	return field, desc
}

// Offset returns the number of records to skip for the current page
func (f ListFilter) Offset() int {
	return (f.Page - 1) * f.Limit
}

func sortRecords(records []CropRecord, filter ListFilter) {
	field, desc := filter.SortField()
	less := func(a, b *CropRecord) bool {
		switch field {
		case "created_at":
			return a.CreatedAt.Before(b.CreatedAt)
		case "updated_at":
			return a.UpdatedAt.Before(b.UpdatedAt)
		default:
			return strings.ToLower(a.Name) < strings.ToLower(b.Name)
		}
	}
	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return less(&records[j], &records[i])
		}
		return less(&records[i], &records[j])
	})
}

func paginate(records []CropRecord, filter ListFilter) []CropRecord {
	start := filter.Offset()
	if start >= len(records) {
		return []CropRecord{}
	}
	end := start + filter.Limit
	if end > len(records) {
		end = len(records)
	}
	return records[start:end]
}

// CanonicalName lower-cases, trims and collapses inner whitespace of a crop name
func CanonicalName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}
