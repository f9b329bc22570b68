package database_test

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/diillson/gateway-admin-go/internal/adapter/database"
	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/domain/repository"
	"github.com/diillson/gateway-admin-go/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	gormlogger "gorm.io/gorm/logger"
)

// setupTestDB creates a temporary SQLite database with the schema migrated
func setupTestDB(t *testing.T) *database.Database {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := database.NewDatabase(context.Background(), database.Config{
		Driver:          "sqlite",
		DSN:             dbPath,
		MaxIdleConns:    2,
		MaxOpenConns:    2,
		ConnMaxLifetime: time.Hour,
		LogLevel:        gormlogger.Silent,
		SlowThreshold:   200 * time.Millisecond,
	}, testutils.TestLogger(t))
	require.NoError(t, err)

	t.Cleanup(func() { _ = db.Close() })
	return db
}

func setupRepositories(t *testing.T) (repository.RouteRepository, repository.VersionRepository) {
	t.Helper()
	db := setupTestDB(t)
	logger := testutils.TestLogger(t)
	return database.NewRouteRepository(db.DB(), logger), database.NewVersionRepository(db.DB(), logger)
}

func seedRoute(t *testing.T, routes repository.RouteRepository, name, environment string) *model.Route {
	t.Helper()
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	r := testutils.NewTestRoute(name, environment)
	require.NoError(t, routes.AddRoute(ctx, r))
	return r
}

func seedVersion(t *testing.T, routes repository.RouteRepository, versions repository.VersionRepository, label, environment string, routeNames ...string) *model.ConfigurationVersion {
	t.Helper()
	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	v := model.NewConfigurationVersion(label, "", environment, "tests")
	for _, name := range routeNames {
		v.AddRoute(seedRoute(t, routes, name, environment))
	}
	require.NoError(t, versions.AddVersion(ctx, v))
	return v
}

func TestVersionRepository_RoundTripKeepsSnapshotOrder(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := seedVersion(t, routes, versions, "v1", "Production", "orders", "billing", "catalog")

	loaded, err := versions.GetVersion(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, "v1", loaded.Version)
	assert.Equal(t, "Production", loaded.Environment)
	assert.False(t, loaded.IsActive)

	// Snapshot comes back in insertion order
	require.Len(t, loaded.Routes, 3)
	assert.Equal(t, "orders", loaded.Routes[0].Name)
	assert.Equal(t, "billing", loaded.Routes[1].Name)
	assert.Equal(t, "catalog", loaded.Routes[2].Name)

	// Route payload survives the JSON columns
	assert.Equal(t, []string{"GET", "POST"}, loaded.Routes[0].Methods)
	require.Len(t, loaded.Routes[0].DownstreamHostAndPorts, 1)
	assert.Equal(t, "orders.svc.local", loaded.Routes[0].DownstreamHostAndPorts[0].Host)
	assert.Equal(t, 8080, loaded.Routes[0].DownstreamHostAndPorts[0].Port)
}

func TestVersionRepository_GetActiveVersion(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	t.Run("no active version", func(t *testing.T) {
		_, err := versions.GetActiveVersion(ctx, "Production")
		assert.ErrorIs(t, err, repository.ErrVersionNotFound)
	})

	t.Run("after publish", func(t *testing.T) {
		created := seedVersion(t, routes, versions, "v1", "Production", "orders")

		published, err := versions.PublishVersion(ctx, created.ID, "operator")
		require.NoError(t, err)
		assert.True(t, published.IsActive)
		require.NotNil(t, published.PublishedAt)
		assert.Equal(t, "operator", published.PublishedBy)

		active, err := versions.GetActiveVersion(ctx, "Production")
		require.NoError(t, err)
		assert.Equal(t, created.ID, active.ID)
	})
}

func TestVersionRepository_PublishSwapsActiveVersion(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	v1 := seedVersion(t, routes, versions, "v1", "Production", "orders")
	v2 := seedVersion(t, routes, versions, "v2", "Production", "billing")

	_, err := versions.PublishVersion(ctx, v1.ID, "operator")
	require.NoError(t, err)

	_, err = versions.PublishVersion(ctx, v2.ID, "operator")
	require.NoError(t, err)

	// Publishing v2 deactivated v1 in the same transaction
	active, err := versions.GetActiveVersion(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, v2.ID, active.ID)

	former, err := versions.GetVersion(ctx, v1.ID)
	require.NoError(t, err)
	assert.False(t, former.IsActive)
}

func TestVersionRepository_PublishIsScopedByEnvironment(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	prod := seedVersion(t, routes, versions, "v1", "Production", "orders")
	staging := seedVersion(t, routes, versions, "v1", "Staging", "billing")

	_, err := versions.PublishVersion(ctx, prod.ID, "operator")
	require.NoError(t, err)
	_, err = versions.PublishVersion(ctx, staging.ID, "operator")
	require.NoError(t, err)

	// One active version per environment, independently
	activeProd, err := versions.GetActiveVersion(ctx, "Production")
	require.NoError(t, err)
	assert.Equal(t, prod.ID, activeProd.ID)

	activeStaging, err := versions.GetActiveVersion(ctx, "Staging")
	require.NoError(t, err)
	assert.Equal(t, staging.ID, activeStaging.ID)
}

func TestVersionRepository_ConcurrentPublishesLeaveOneActive(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	v1 := seedVersion(t, routes, versions, "v1", "Production", "orders")
	v2 := seedVersion(t, routes, versions, "v2", "Production", "billing")

	var successes int32
	var wg sync.WaitGroup
	for _, id := range []string{v1.ID, v2.ID} {
		wg.Add(1)
		go func(versionID string) {
			defer wg.Done()
			if _, err := versions.PublishVersion(ctx, versionID, "racer"); err == nil {
				atomic.AddInt32(&successes, 1)
			}
		}(id)
	}
	wg.Wait()

	require.GreaterOrEqual(t, atomic.LoadInt32(&successes), int32(1))

	// Whatever the interleaving, exactly one version ends up active
	all, err := versions.ListVersions(ctx, "Production")
	require.NoError(t, err)

	activeCount := 0
	for _, v := range all {
		if v.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount, "exactly one version must be active after concurrent publishes")
}

func TestVersionRepository_UnpublishIsIdempotent(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := seedVersion(t, routes, versions, "v1", "Production", "orders")
	_, err := versions.PublishVersion(ctx, created.ID, "operator")
	require.NoError(t, err)

	first, err := versions.UnpublishVersion(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, first.IsActive)

	// Second unpublish is a no-op, not an error
	second, err := versions.UnpublishVersion(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, second.IsActive)

	// The environment now has no active version
	_, err = versions.GetActiveVersion(ctx, "Production")
	assert.ErrorIs(t, err, repository.ErrVersionNotFound)
}

func TestVersionRepository_DeleteVersion(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	t.Run("active version is protected", func(t *testing.T) {
		created := seedVersion(t, routes, versions, "v1", "Production", "orders")
		_, err := versions.PublishVersion(ctx, created.ID, "operator")
		require.NoError(t, err)

		err = versions.DeleteVersion(ctx, created.ID)
		assert.ErrorIs(t, err, repository.ErrVersionActive)

		// Still there, still active
		still, err := versions.GetVersion(ctx, created.ID)
		require.NoError(t, err)
		assert.True(t, still.IsActive)
	})

	t.Run("inactive version is removed with associations", func(t *testing.T) {
		created := seedVersion(t, routes, versions, "v2", "Staging", "billing")
		routeID := created.Routes[0].ID

		require.NoError(t, versions.DeleteVersion(ctx, created.ID))

		_, err := versions.GetVersion(ctx, created.ID)
		assert.ErrorIs(t, err, repository.ErrVersionNotFound)

		// The route itself survives; only the association is gone
		_, err = routes.GetRoute(ctx, routeID)
		assert.NoError(t, err)
	})

	t.Run("unknown version", func(t *testing.T) {
		err := versions.DeleteVersion(ctx, "missing")
		assert.ErrorIs(t, err, repository.ErrVersionNotFound)
	})
}

func TestVersionRepository_SnapshotAssociations(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := seedVersion(t, routes, versions, "v1", "Production", "orders")
	extra := seedRoute(t, routes, "billing", "Production")

	t.Run("append keeps order", func(t *testing.T) {
		require.NoError(t, versions.AddRouteToVersion(ctx, created.ID, extra.ID))

		loaded, err := versions.GetVersion(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Routes, 2)
		assert.Equal(t, "orders", loaded.Routes[0].Name)
		assert.Equal(t, "billing", loaded.Routes[1].Name)
	})

	t.Run("duplicate association is a no-op", func(t *testing.T) {
		require.NoError(t, versions.AddRouteToVersion(ctx, created.ID, extra.ID))

		loaded, err := versions.GetVersion(ctx, created.ID)
		require.NoError(t, err)
		assert.Len(t, loaded.Routes, 2)
	})

	t.Run("remove association", func(t *testing.T) {
		require.NoError(t, versions.RemoveRouteFromVersion(ctx, created.ID, extra.ID))

		loaded, err := versions.GetVersion(ctx, created.ID)
		require.NoError(t, err)
		require.Len(t, loaded.Routes, 1)
		assert.Equal(t, "orders", loaded.Routes[0].Name)
	})

	t.Run("unknown version or route", func(t *testing.T) {
		assert.ErrorIs(t, versions.AddRouteToVersion(ctx, "missing", extra.ID), repository.ErrVersionNotFound)
		assert.ErrorIs(t, versions.AddRouteToVersion(ctx, created.ID, "missing"), repository.ErrRouteNotFound)
	})
}

func TestVersionRepository_GetByVersion(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := seedVersion(t, routes, versions, "v1", "Production", "orders")

	found, err := versions.GetByVersion(ctx, "v1", "Production")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	_, err = versions.GetByVersion(ctx, "v1", "Staging")
	assert.ErrorIs(t, err, repository.ErrVersionNotFound)
}

func TestVersionRepository_UpdateDescription(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := seedVersion(t, routes, versions, "v1", "Production", "orders")

	require.NoError(t, versions.UpdateDescription(ctx, created.ID, "hotfix rollout"))

	loaded, err := versions.GetVersion(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "hotfix rollout", loaded.Description)

	assert.ErrorIs(t, versions.UpdateDescription(ctx, "missing", "x"), repository.ErrVersionNotFound)
}
