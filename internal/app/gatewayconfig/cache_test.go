package gatewayconfig_test

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diillson/gateway-admin-go/internal/app/gatewayconfig"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/domain/repository"
	"github.com/diillson/gateway-admin-go/internal/mocks"
	"github.com/diillson/gateway-admin-go/internal/testutils"
	"github.com/diillson/gateway-admin-go/pkg/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func newTestCache(t *testing.T, repo repository.VersionRepository) *gatewayconfig.ConfigurationCache {
	logger := testutils.TestLogger(t)
	memCache := cache.NewMemoryCache(time.Minute, 2*time.Minute, nil, logger)
	return gatewayconfig.NewConfigurationCache(repo, memCache, time.Minute, nil, logger)
}

func activeVersion(environment string) *model.ConfigurationVersion {
	version := model.NewConfigurationVersion("v1", "", environment, "tests")
	version.AddRoute(testutils.NewTestRoute("orders", environment))
	version.Publish("tests")
	return version
}

func TestConfigurationCache_ReadThrough(t *testing.T) {
	mockRepo := new(mocks.MockVersionRepository)
	configCache := newTestCache(t, mockRepo)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	// The store is consulted exactly once; the second read is served from cache
	mockRepo.On("GetActiveVersion", mock.Anything, "Production").
		Return(activeVersion("Production"), nil).Once()

	first, err := configCache.Get(ctx, "Production")
	require.NoError(t, err)
	require.Len(t, first.Rules, 1)
	assert.Equal(t, "orders", first.Rules[0].Key)

	second, err := configCache.Get(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, first.Rules, second.Rules)

	mockRepo.AssertExpectations(t)
}

func TestConfigurationCache_EmptyConfigurationWhenNoActiveVersion(t *testing.T) {
	mockRepo := new(mocks.MockVersionRepository)
	configCache := newTestCache(t, mockRepo)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	mockRepo.On("GetActiveVersion", mock.Anything, "Staging").
		Return(nil, repository.ErrVersionNotFound).Once()

	// An environment without an active version routes with the empty
	// configuration, never an error
	cfg, err := configCache.Get(ctx, "Staging")
	require.NoError(t, err)
	assert.Equal(t, "Staging", cfg.Environment)
	assert.Empty(t, cfg.Rules)
	assert.Equal(t, "GwRequestId", cfg.Global.RequestIDKey)

	mockRepo.AssertExpectations(t)
}

func TestConfigurationCache_InvalidateForcesReload(t *testing.T) {
	mockRepo := new(mocks.MockVersionRepository)
	configCache := newTestCache(t, mockRepo)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	v1 := model.NewConfigurationVersion("v1", "", "Production", "tests")
	v1.Publish("tests")
	v2 := activeVersion("Production")
	v2.Version = "v2"

	mockRepo.On("GetActiveVersion", mock.Anything, "Production").
		Return(v1, nil).Once()
	mockRepo.On("GetActiveVersion", mock.Anything, "Production").
		Return(v2, nil).Once()

	before, err := configCache.Get(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, "v1", before.Version)

	require.NoError(t, configCache.Invalidate(ctx, "Production"))

	// A read after invalidation always observes the store again
	after, err := configCache.Get(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, "v2", after.Version)
	assert.Len(t, after.Rules, 1)

	mockRepo.AssertExpectations(t)
}

func TestConfigurationCache_StoreFailurePropagates(t *testing.T) {
	mockRepo := new(mocks.MockVersionRepository)
	configCache := newTestCache(t, mockRepo)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	storeErr := errors.New("connection refused")
	mockRepo.On("GetActiveVersion", mock.Anything, "Production").
		Return(nil, storeErr).Once()

	_, err := configCache.Get(ctx, "Production")
	require.Error(t, err)
	assert.ErrorIs(t, err, storeErr)

	mockRepo.AssertExpectations(t)
}

// blockingVersionRepo holds every GetActiveVersion call until released, so the
// test can pile up concurrent readers behind one in-flight reload.
type blockingVersionRepo struct {
	mocks.MockVersionRepository
	calls   int32
	release chan struct{}
	version *model.ConfigurationVersion
}

func (r *blockingVersionRepo) GetActiveVersion(ctx context.Context, environment string) (*model.ConfigurationVersion, error) {
	atomic.AddInt32(&r.calls, 1)
	<-r.release
	return r.version, nil
}

func TestConfigurationCache_ConcurrentReadsCollapseIntoOneReload(t *testing.T) {
	repo := &blockingVersionRepo{
		release: make(chan struct{}),
		version: activeVersion("Production"),
	}
	configCache := newTestCache(t, repo)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	const readers = 8
	var started, done sync.WaitGroup
	started.Add(readers)
	done.Add(readers)

	for i := 0; i < readers; i++ {
		go func() {
			defer done.Done()
			started.Done()
			cfg, err := configCache.Get(ctx, "Production")
			assert.NoError(t, err)
			assert.Len(t, cfg.Rules, 1)
		}()
	}

	started.Wait()
	// Let every reader miss the cache and join the single flight
	time.Sleep(100 * time.Millisecond)
	close(repo.release)
	done.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&repo.calls),
		"concurrent reloads for the same environment must collapse into one store read")
}

// gatedVersionRepo serves a swappable active version and blocks the first
// GetActiveVersion call after it has read the version, so an invalidation
// can land while that reload is still in flight.
type gatedVersionRepo struct {
	mocks.MockVersionRepository

	mu      sync.Mutex
	current *model.ConfigurationVersion

	gateOnce sync.Once
	entered  chan struct{}
	release  chan struct{}
}

func newGatedVersionRepo(current *model.ConfigurationVersion) *gatedVersionRepo {
	return &gatedVersionRepo{
		current: current,
		entered: make(chan struct{}),
		release: make(chan struct{}),
	}
}

func (r *gatedVersionRepo) setCurrent(version *model.ConfigurationVersion) {
	r.mu.Lock()
	r.current = version
	r.mu.Unlock()
}

func (r *gatedVersionRepo) GetActiveVersion(ctx context.Context, environment string) (*model.ConfigurationVersion, error) {
	r.mu.Lock()
	version := r.current
	r.mu.Unlock()

	gated := false
	r.gateOnce.Do(func() { gated = true })
	if gated {
		close(r.entered)
		<-r.release
	}
	return version, nil
}

func TestConfigurationCache_InvalidateAbandonsInflightReload(t *testing.T) {
	v1 := model.NewConfigurationVersion("v1", "", "Production", "tests")
	v1.Publish("tests")
	v2 := activeVersion("Production")
	v2.Version = "v2"

	repo := newGatedVersionRepo(v1)
	configCache := newTestCache(t, repo)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	// Reader A observes v1 inside the reload and then blocks.
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		cfg, err := configCache.Get(ctx, "Production")
		assert.NoError(t, err)
		assert.Equal(t, "v1", cfg.Version)
	}()
	<-repo.entered

	// The store moves to v2 and the admin side invalidates the environment
	// while A's reload is still in flight.
	repo.setCurrent(v2)
	require.NoError(t, configCache.Invalidate(ctx, "Production"))

	// Reader B must not join A's stale flight: it starts a fresh reload and
	// sees v2.
	cfg, err := configCache.Get(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, "v2", cfg.Version)

	close(repo.release)
	wg.Wait()

	// A's result, read before the invalidation, must not have been written
	// back over v2: the cached entry still serves v2.
	cfg, err = configCache.Get(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, "v2", cfg.Version)
}

func TestConfigurationCache_InvalidateAllAbandonsInflightReloads(t *testing.T) {
	v1 := model.NewConfigurationVersion("v1", "", "Production", "tests")
	v1.Publish("tests")
	v2 := activeVersion("Production")
	v2.Version = "v2"

	repo := newGatedVersionRepo(v1)
	configCache := newTestCache(t, repo)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err := configCache.Get(ctx, "Production")
		assert.NoError(t, err)
	}()
	<-repo.entered

	repo.setCurrent(v2)
	require.NoError(t, configCache.InvalidateAll(ctx))

	cfg, err := configCache.Get(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, "v2", cfg.Version)

	close(repo.release)
	wg.Wait()
}
