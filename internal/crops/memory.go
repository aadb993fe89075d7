package crops

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// MemoryRepository keeps records in insertion order behind a RWMutex
type MemoryRepository struct {
	mu      sync.RWMutex
	records []CropRecord
}

// NewMemoryRepository creates a repository pre-loaded with records
func NewMemoryRepository(records ...CropRecord) *MemoryRepository {
	r := &MemoryRepository{}
	for _, rec := range records {
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		r.records = append(r.records, rec)
	}
	return r
}

func (r *MemoryRepository) FindAll(ctx context.Context, category string) ([]CropRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]CropRecord, 0, len(r.records))
	for _, rec := range r.records {
		if category != "" && !rec.HasCategory(category) {
			continue
		}
		out = append(out, rec)
	}
	return out, nil
}

func (r *MemoryRepository) List(ctx context.Context, filter ListFilter) ([]CropRecord, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	filter.Normalize()

	r.mu.RLock()
	matched := make([]CropRecord, 0)
	for i := range r.records {
		if filter.Matches(&r.records[i]) {
			matched = append(matched, r.records[i])
		}
	}
	r.mu.RUnlock()

	sortRecords(matched, filter)
	return paginate(matched, filter), int64(len(matched)), nil
}

func (r *MemoryRepository) GetByID(ctx context.Context, id string) (*CropRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, rec := range r.records {
		if rec.ID == id {
			out := rec
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (r *MemoryRepository) GetByName(ctx context.Context, name string) (*CropRecord, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	i := r.indexByName(name)
	if i < 0 {
		return nil, ErrNotFound
	}
	out := r.records[i]
	return &out, nil
}

func (r *MemoryRepository) Create(ctx context.Context, record *CropRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.indexByName(record.Name) >= 0 {
		return ErrDuplicateName
	}
	if record.ID == "" {
		record.ID = uuid.New().String()
	}
	r.records = append(r.records, *record)
	return nil
}

func (r *MemoryRepository) Update(ctx context.Context, record *CropRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if j := r.indexByName(record.Name); j >= 0 && r.records[j].ID != record.ID {
		return ErrDuplicateName
	}
	for i := range r.records {
		if r.records[i].ID == record.ID {
			r.records[i] = *record
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i := range r.records {
		if r.records[i].ID == id {
			r.records = append(r.records[:i], r.records[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}

func (r *MemoryRepository) Upsert(ctx context.Context, records []CropRecord) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().UTC()
	for _, rec := range records {
		if rec.UpdatedAt.IsZero() {
			rec.UpdatedAt = now
		}
		if i := r.indexByName(rec.Name); i >= 0 {
			rec.ID = r.records[i].ID
			rec.CreatedAt = r.records[i].CreatedAt
			r.records[i] = rec
			continue
		}
		if rec.ID == "" {
			rec.ID = uuid.New().String()
		}
		if rec.CreatedAt.IsZero() {
			rec.CreatedAt = now
		}
		r.records = append(r.records, rec)
	}
	return len(records), nil
}

// DeleteAll removes every record
func (r *MemoryRepository) DeleteAll(ctx context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := int64(len(r.records))
	r.records = nil
	return n, nil
}

// Len returns the number of stored records
func (r *MemoryRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.records)
}

func (r *MemoryRepository) indexByName(name string) int {
	key := CanonicalName(name)
	for i := range r.records {
		if CanonicalName(r.records[i].Name) == key {
			return i
		}
	}
	return -1
}
