package crops

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCachedRepository_FindAllHitsStoreOnce(t *testing.T) {
	mockRepo := new(MockRepository)
	ctx := context.Background()
	mockRepo.On("FindAll", ctx, "cereal").Return([]CropRecord{sampleCrop("Wheat")}, nil).Once()

	repo := NewCachedRepository(mockRepo, time.Minute).(*CachedRepository)
	defer repo.Close()

	for i := 0; i < 3; i++ {
		records, err := repo.FindAll(ctx, "cereal")
		require.NoError(t, err)
		assert.Len(t, records, 1)
	}

	mockRepo.AssertNumberOfCalls(t, "FindAll", 1)
	stats := repo.Stats()
	assert.Equal(t, int64(2), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 2.0/3.0, stats.HitRate, 1e-9)
}

func TestCachedRepository_WritesInvalidate(t *testing.T) {
	mockRepo := new(MockRepository)
	ctx := context.Background()
	mockRepo.On("FindAll", ctx, "").Return([]CropRecord{}, nil).Twice()
	mockRepo.On("Create", ctx, mock.Anything).Return(nil)

	repo := NewCachedRepository(mockRepo, time.Minute).(*CachedRepository)
	defer repo.Close()

	_, err := repo.FindAll(ctx, "")
	require.NoError(t, err)

	crop := sampleCrop("Wheat")
	require.NoError(t, repo.Create(ctx, &crop))

	_, err = repo.FindAll(ctx, "")
	require.NoError(t, err)

	mockRepo.AssertNumberOfCalls(t, "FindAll", 2)
}

func TestCachedRepository_ErrorsAreNotCached(t *testing.T) {
	mockRepo := new(MockRepository)
	ctx := context.Background()
	storeErr := errors.New("timeout")
	mockRepo.On("FindAll", ctx, "").Return(nil, storeErr).Once()
	mockRepo.On("FindAll", ctx, "").Return([]CropRecord{sampleCrop("Rice")}, nil).Once()

	repo := NewCachedRepository(mockRepo, time.Minute).(*CachedRepository)
	defer repo.Close()

	_, err := repo.FindAll(ctx, "")
	assert.ErrorIs(t, err, storeErr)

	records, err := repo.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

func TestNewCachedRepository_ZeroTTLDisablesCache(t *testing.T) {
	mem := NewMemoryRepository()
	repo := NewCachedRepository(mem, 0)
	assert.Same(t, mem, repo)
}

// gatedRepository reads from memory, then holds the first FindAll until released
type gatedRepository struct {
	*MemoryRepository
	started chan struct{}
	release chan struct{}
	once    sync.Once
}

func newGatedRepository(records ...CropRecord) *gatedRepository {
	return &gatedRepository{
		MemoryRepository: NewMemoryRepository(records...),
		started:          make(chan struct{}),
		release:          make(chan struct{}),
	}
}

func (r *gatedRepository) FindAll(ctx context.Context, category string) ([]CropRecord, error) {
	records, err := r.MemoryRepository.FindAll(ctx, category)
	r.once.Do(func() {
		close(r.started)
		<-r.release
	})
	return records, err
}

func TestCachedRepository_WriteDuringLoadIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	gated := newGatedRepository(sampleCrop("Rice"))
	repo := NewCachedRepository(gated, time.Minute).(*CachedRepository)
	defer repo.Close()

	loaded := make(chan []CropRecord, 1)
	go func() {
		records, _ := repo.FindAll(ctx, "")
		loaded <- records
	}()

	<-gated.started
	wheat := sampleCrop("Wheat")
	require.NoError(t, repo.Create(ctx, &wheat))
	close(gated.release)
	assert.Len(t, <-loaded, 1)

	records, err := repo.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCachedRepository_WriteDuringRefreshIsNotOverwritten(t *testing.T) {
	ctx := context.Background()
	gated := newGatedRepository(sampleCrop("Rice"))
	repo := NewCachedRepository(gated, time.Minute).(*CachedRepository)
	defer repo.Close()

	refreshed := make(chan error, 1)
	go func() {
		_, err := repo.Refresh(ctx)
		refreshed <- err
	}()

	<-gated.started
	wheat := sampleCrop("Wheat")
	require.NoError(t, repo.Create(ctx, &wheat))
	close(gated.release)
	require.NoError(t, <-refreshed)

	_, ok := repo.cache.Get(enumerationPrefix)
	assert.False(t, ok)

	records, err := repo.FindAll(ctx, "")
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestCatalogCache_SetIfCurrent(t *testing.T) {
	cache := NewCatalogCache(time.Minute)
	defer cache.Stop()

	gen := cache.Generation()
	assert.True(t, cache.SetIfCurrent("findall:", []CropRecord{sampleCrop("Wheat")}, gen))

	cache.DeleteByPrefix("findall:")
	assert.False(t, cache.SetIfCurrent("findall:", []CropRecord{sampleCrop("Wheat")}, gen))
	assert.Equal(t, 0, cache.Size())
	assert.Equal(t, gen+1, cache.Generation())
}

func TestCatalogCache_Expiry(t *testing.T) {
	cache := NewCatalogCache(10 * time.Millisecond)
	defer cache.Stop()

	cache.Set("findall:", []CropRecord{sampleCrop("Wheat")})
	_, ok := cache.Get("findall:")
	assert.True(t, ok)

	time.Sleep(20 * time.Millisecond)
	_, ok = cache.Get("findall:")
	assert.False(t, ok)

	cache.removeExpired()
	assert.Equal(t, 0, cache.Size())
}

func TestWarmer_RefreshesCache(t *testing.T) {
	mem := NewMemoryRepository(sampleCrop("Wheat"))
	repo := NewCachedRepository(mem, time.Hour).(*CachedRepository)
	defer repo.Close()

	warmer := NewWarmer(repo, "@every 1h", zap.NewNop())
	require.NoError(t, warmer.Start(context.Background()))
	defer warmer.Stop()

	assert.Error(t, warmer.Start(context.Background()))
	assert.False(t, warmer.NextRun().IsZero())

	records, ok := repo.cache.Get(enumerationPrefix)
	require.True(t, ok)
	assert.Len(t, records, 1)
}

func TestWarmer_InvalidSchedule(t *testing.T) {
	warmer := NewWarmer(NewCachedRepository(NewMemoryRepository(), time.Minute).(*CachedRepository), "not a cron", zap.NewNop())
	assert.Error(t, warmer.Start(context.Background()))
}

func TestValidateSchedule(t *testing.T) {
	assert.NoError(t, ValidateSchedule("*/15 * * * *"))
	assert.NoError(t, ValidateSchedule("@every 10m"))
	assert.Error(t, ValidateSchedule("* * *"))
}
