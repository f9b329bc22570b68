package database_test

import (
	"testing"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/diillson/gateway-admin-go/internal/domain/repository"
	"github.com/diillson/gateway-admin-go/internal/testutils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRouteRepository_AddAndGet(t *testing.T) {
	routes, _ := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := testutils.NewTestRoute("orders", "Production")
	created.LoadBalancerOptions = `{"type":"LeastConnection"}`
	require.NoError(t, routes.AddRoute(ctx, created))

	loaded, err := routes.GetRoute(ctx, created.ID)
	require.NoError(t, err)

	assert.Equal(t, created.Name, loaded.Name)
	assert.Equal(t, created.DownstreamPathTemplate, loaded.DownstreamPathTemplate)
	assert.Equal(t, created.Methods, loaded.Methods)
	assert.Equal(t, created.DownstreamHostAndPorts, loaded.DownstreamHostAndPorts)
	assert.Equal(t, `{"type":"LeastConnection"}`, loaded.LoadBalancerOptions)
	assert.True(t, loaded.IsActive)

	_, err = routes.GetRoute(ctx, "missing")
	assert.ErrorIs(t, err, repository.ErrRouteNotFound)
}

func TestRouteRepository_ListRoutes(t *testing.T) {
	routes, _ := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	seedRoute(t, routes, "orders", "Production")
	seedRoute(t, routes, "billing", "Production")
	seedRoute(t, routes, "experimental", "Staging")

	t.Run("filtered by environment", func(t *testing.T) {
		prod, err := routes.ListRoutes(ctx, "Production")
		require.NoError(t, err)
		assert.Len(t, prod, 2)
	})

	t.Run("empty environment lists everything", func(t *testing.T) {
		all, err := routes.ListRoutes(ctx, "")
		require.NoError(t, err)
		assert.Len(t, all, 3)
	})
}

func TestRouteRepository_ListActiveRoutes(t *testing.T) {
	routes, _ := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	active := seedRoute(t, routes, "orders", "Production")
	disabled := seedRoute(t, routes, "legacy", "Production")
	require.NoError(t, routes.SetRouteActive(ctx, disabled.ID, false))

	got, err := routes.ListActiveRoutes(ctx, "Production")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, active.ID, got[0].ID)
}

func TestRouteRepository_UpdateRoute(t *testing.T) {
	routes, _ := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := seedRoute(t, routes, "orders", "Production")

	created.DownstreamPathTemplate = "/api/v2/orders/{everything}"
	created.Methods = []string{"GET"}
	created.DownstreamHostAndPorts = []model.HostAndPort{{Host: "orders-v2.svc", Port: 9090}}
	created.UpdatedBy = "admin"
	require.NoError(t, routes.UpdateRoute(ctx, created))

	loaded, err := routes.GetRoute(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "/api/v2/orders/{everything}", loaded.DownstreamPathTemplate)
	assert.Equal(t, []string{"GET"}, loaded.Methods)
	assert.Equal(t, []model.HostAndPort{{Host: "orders-v2.svc", Port: 9090}}, loaded.DownstreamHostAndPorts)
	assert.Equal(t, "admin", loaded.UpdatedBy)

	t.Run("unknown route", func(t *testing.T) {
		ghost := testutils.NewTestRoute("ghost", "Production")
		assert.ErrorIs(t, routes.UpdateRoute(ctx, ghost), repository.ErrRouteNotFound)
	})
}

func TestRouteRepository_SetRouteActive(t *testing.T) {
	routes, _ := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := seedRoute(t, routes, "orders", "Production")

	require.NoError(t, routes.SetRouteActive(ctx, created.ID, false))
	loaded, err := routes.GetRoute(ctx, created.ID)
	require.NoError(t, err)
	assert.False(t, loaded.IsActive)

	assert.ErrorIs(t, routes.SetRouteActive(ctx, "missing", true), repository.ErrRouteNotFound)
}

func TestRouteRepository_DeleteRoute_CascadesAssociations(t *testing.T) {
	routes, versions := setupRepositories(t)

	ctx, cancel := testutils.ContextWithTimeout(t)
	defer cancel()

	created := seedVersion(t, routes, versions, "v1", "Production", "orders", "billing")
	doomed := created.Routes[0]

	require.NoError(t, routes.DeleteRoute(ctx, doomed.ID))

	_, err := routes.GetRoute(ctx, doomed.ID)
	assert.ErrorIs(t, err, repository.ErrRouteNotFound)

	// The version survives with a smaller snapshot
	loaded, err := versions.GetVersion(ctx, created.ID)
	require.NoError(t, err)
	require.Len(t, loaded.Routes, 1)
	assert.Equal(t, "billing", loaded.Routes[0].Name)

	t.Run("unknown route", func(t *testing.T) {
		assert.ErrorIs(t, routes.DeleteRoute(ctx, "missing"), repository.ErrRouteNotFound)
	})
}
