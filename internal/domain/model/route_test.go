package model_test

import (
	"testing"

	"github.com/diillson/gateway-admin-go/internal/domain/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRoute_Defaults(t *testing.T) {
	route := model.NewRoute("orders", "/api/orders", "/orders", nil, "", nil, "", "")

	assert.NotEmpty(t, route.ID)
	assert.Equal(t, "http", route.DownstreamScheme)
	assert.Equal(t, "Development", route.Environment)
	assert.Equal(t, "System", route.CreatedBy)
	assert.True(t, route.IsActive)

	// Empty method list defaults to GET
	assert.Equal(t, []string{"GET"}, route.Methods)
}

func TestRoute_Validate(t *testing.T) {
	valid := func() *model.Route {
		return model.NewRoute("orders", "/api/orders", "/orders",
			[]string{"GET"}, "http",
			[]model.HostAndPort{{Host: "orders.svc", Port: 8080}},
			"Production", "admin")
	}

	t.Run("valid route passes", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})

	t.Run("missing name", func(t *testing.T) {
		r := valid()
		r.Name = ""
		assert.Error(t, r.Validate())
	})

	t.Run("missing downstream path", func(t *testing.T) {
		r := valid()
		r.DownstreamPathTemplate = ""
		assert.Error(t, r.Validate())
	})

	t.Run("missing upstream path", func(t *testing.T) {
		r := valid()
		r.UpstreamPathTemplate = ""
		assert.Error(t, r.Validate())
	})

	t.Run("invalid scheme", func(t *testing.T) {
		r := valid()
		r.DownstreamScheme = "ftp"
		assert.Error(t, r.Validate())
	})

	t.Run("no downstream targets", func(t *testing.T) {
		r := valid()
		r.DownstreamHostAndPorts = nil
		assert.Error(t, r.Validate())
	})

	t.Run("target with invalid port", func(t *testing.T) {
		r := valid()
		r.DownstreamHostAndPorts = []model.HostAndPort{{Host: "orders.svc", Port: 0}}
		assert.Error(t, r.Validate())

		r.DownstreamHostAndPorts = []model.HostAndPort{{Host: "orders.svc", Port: 70000}}
		assert.Error(t, r.Validate())
	})

	t.Run("target with empty host", func(t *testing.T) {
		r := valid()
		r.DownstreamHostAndPorts = []model.HostAndPort{{Host: "  ", Port: 8080}}
		assert.Error(t, r.Validate())
	})
}

func TestNormalizeMethods(t *testing.T) {
	t.Run("upper-cases and de-duplicates", func(t *testing.T) {
		got := model.NormalizeMethods([]string{"get", "POST", "Get", " post "})
		assert.Equal(t, []string{"GET", "POST"}, got)
	})

	t.Run("empty defaults to GET", func(t *testing.T) {
		assert.Equal(t, []string{"GET"}, model.NormalizeMethods(nil))
		assert.Equal(t, []string{"GET"}, model.NormalizeMethods([]string{"", "  "}))
	})

	t.Run("preserves first-seen order", func(t *testing.T) {
		got := model.NormalizeMethods([]string{"delete", "put", "DELETE"})
		assert.Equal(t, []string{"DELETE", "PUT"}, got)
	})
}

func TestConfigurationVersion_Lifecycle(t *testing.T) {
	version := model.NewConfigurationVersion("v1", "initial rollout", "Production", "admin")

	require.NoError(t, version.Validate())
	assert.False(t, version.IsActive)
	assert.Nil(t, version.PublishedAt)
	assert.Empty(t, version.Routes)

	version.Publish("operator")
	assert.True(t, version.IsActive)
	require.NotNil(t, version.PublishedAt)
	assert.Equal(t, "operator", version.PublishedBy)

	version.Unpublish()
	assert.False(t, version.IsActive)
}

func TestConfigurationVersion_AddRoute_KeepsInsertionOrder(t *testing.T) {
	version := model.NewConfigurationVersion("v1", "", "Production", "admin")

	first := model.NewRoute("a", "/api/a", "/a", nil, "http",
		[]model.HostAndPort{{Host: "a.svc", Port: 80}}, "Production", "admin")
	second := model.NewRoute("b", "/api/b", "/b", nil, "http",
		[]model.HostAndPort{{Host: "b.svc", Port: 80}}, "Production", "admin")

	version.AddRoute(first)
	version.AddRoute(nil) // ignored
	version.AddRoute(second)

	require.Len(t, version.Routes, 2)
	assert.Equal(t, "a", version.Routes[0].Name)
	assert.Equal(t, "b", version.Routes[1].Name)
}
