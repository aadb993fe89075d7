package crops

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seededMemory(t *testing.T) *MemoryRepository {
	t.Helper()
	catalog, err := DefaultCatalog()
	require.NoError(t, err)
	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range catalog {
		catalog[i].CreatedAt = base.Add(time.Duration(i) * time.Hour)
	}
	return NewMemoryRepository(catalog...)
}

func TestMemoryRepository_FindAllKeepsOrder(t *testing.T) {
	repo := seededMemory(t)

	all, err := repo.FindAll(context.Background(), "")
	require.NoError(t, err)
	require.Len(t, all, 6)
	assert.Equal(t, "Wheat", all[0].Name)
	assert.Equal(t, "Pearl Millet", all[5].Name)

	cereals, err := repo.FindAll(context.Background(), "cereal")
	require.NoError(t, err)
	names := make([]string, 0, len(cereals))
	for _, c := range cereals {
		names = append(names, c.Name)
	}
	assert.Equal(t, []string{"Wheat", "Rice", "Maize", "Pearl Millet"}, names)
}

func TestMemoryRepository_FindAllCancelled(t *testing.T) {
	repo := seededMemory(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := repo.FindAll(ctx, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryRepository_ListFilters(t *testing.T) {
	repo := seededMemory(t)
	ctx := context.Background()

	tests := []struct {
		name   string
		filter ListFilter
		want   []string
	}{
		{"search by description", ListFilter{Search: "sandy"}, []string{"Pearl Millet"}},
		{"search by scientific name", ListFilter{Search: "oryza"}, []string{"Rice"}},
		{"climate zone substring", ListFilter{ClimateZone: "tropic"}, []string{"Maize", "Rice", "Tomatoes"}},
		{"soil type case insensitive", ListFilter{SoilType: "Black"}, []string{"Cotton", "Wheat"}},
		{"drought tolerance", ListFilter{DroughtTolerance: "high"}, []string{"Cotton", "Pearl Millet"}},
		{"sow month in wrapping window", ListFilter{SowMonth: 1}, []string{"Tomatoes"}},
		{"sow month", ListFilter{SowMonth: 11}, []string{"Maize", "Tomatoes", "Wheat"}},
		{"category all", ListFilter{Category: "all", Search: "wheat"}, []string{"Wheat"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			records, total, err := repo.List(ctx, tt.filter)
			require.NoError(t, err)
			names := make([]string, 0, len(records))
			for _, r := range records {
				names = append(names, r.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, int64(len(tt.want)), total)
		})
	}
}

func TestMemoryRepository_ListSortAndPaging(t *testing.T) {
	repo := seededMemory(t)
	ctx := context.Background()

	page, total, err := repo.List(ctx, ListFilter{Sort: "-created_at", Page: 2, Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	require.Len(t, page, 2)
	assert.Equal(t, "Tomatoes", page[0].Name)
	assert.Equal(t, "Maize", page[1].Name)

	empty, total, err := repo.List(ctx, ListFilter{Page: 9, Limit: 5})
	require.NoError(t, err)
	assert.Equal(t, int64(6), total)
	assert.Empty(t, empty)
}

func TestMemoryRepository_CRUD(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	crop := sampleCrop("Barley")
	require.NoError(t, repo.Create(ctx, &crop))
	assert.NotEmpty(t, crop.ID)

	dup := sampleCrop("  barley ")
	assert.ErrorIs(t, repo.Create(ctx, &dup), ErrDuplicateName)

	got, err := repo.GetByName(ctx, "BARLEY")
	require.NoError(t, err)
	assert.Equal(t, crop.ID, got.ID)

	got.Description = "updated"
	require.NoError(t, repo.Update(ctx, got))
	again, err := repo.GetByID(ctx, crop.ID)
	require.NoError(t, err)
	assert.Equal(t, "updated", again.Description)

	missing := sampleCrop("Oats")
	missing.ID = "nope"
	assert.ErrorIs(t, repo.Update(ctx, &missing), ErrNotFound)

	require.NoError(t, repo.Delete(ctx, crop.ID))
	assert.ErrorIs(t, repo.Delete(ctx, crop.ID), ErrNotFound)
	_, err = repo.GetByID(ctx, crop.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryRepository_UpsertKeepsID(t *testing.T) {
	repo := NewMemoryRepository()
	ctx := context.Background()

	n, err := repo.Upsert(ctx, []CropRecord{sampleCrop("Wheat")})
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	first, _ := repo.GetByName(ctx, "wheat")

	replacement := sampleCrop("Wheat")
	replacement.Description = "new text"
	_, err = repo.Upsert(ctx, []CropRecord{replacement})
	require.NoError(t, err)

	second, _ := repo.GetByName(ctx, "wheat")
	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "new text", second.Description)
	assert.Equal(t, 1, repo.Len())
}
