package topology

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildThreeTierCounts(t *testing.T) {
	g, err := BuildThreeTier(nil, DefaultThreeTierConfig)
	require.NoError(t, err)

	// 2 cores + 2 aggregation + 3 access + 36 endpoints.
	assert.Equal(t, 43, g.NumNodes())
	// core-agg 4, agg-access 6, access-endpoint 36.
	assert.Equal(t, 46, g.NumEdges())

	// Every aggregation switch dual-homes into both cores.
	for i := 0; i < DefaultThreeTierConfig.NumASW; i++ {
		asw := fmt.Sprintf("asw%d", i)
		assert.True(t, g.HasEdge(asw, "csw0"), asw)
		assert.True(t, g.HasEdge(asw, "csw1"), asw)
	}

	// Every access switch dual-homes into its aggregation pair.
	for i := 0; i < DefaultThreeTierConfig.NumESW; i++ {
		esw := fmt.Sprintf("esw%d", i)
		assert.True(t, g.HasEdge(esw, "asw0"), esw)
		assert.True(t, g.HasEdge(esw, "asw1"), esw)
		assert.Equal(t, DefaultThreeTierConfig.EndpointsPerESW+2, g.Degree(esw), esw)
	}

	// Endpoints are single-homed.
	assert.Equal(t, 1, g.Degree("ep0_0"))
	assert.Equal(t, []string{"esw2"}, g.Neighbors("ep2_11"))
}

func TestBuildThreeTierRejectsOddAggregationCount(t *testing.T) {
	cfg := DefaultThreeTierConfig
	cfg.NumASW = 3
	_, err := BuildThreeTier(nil, cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "even")
}

func TestBuildThreeTierSecondPairServesLaterBlock(t *testing.T) {
	cfg := DefaultThreeTierConfig
	cfg.NumASW = 4
	cfg.AggPortCapacity = 2
	cfg.NumESW = 4

	g, err := BuildThreeTier(nil, cfg)
	require.NoError(t, err)

	// Pair 0 (asw0, asw1) serves esw0-1, pair 1 (asw2, asw3) serves esw2-3.
	assert.True(t, g.HasEdge("esw0", "asw0"))
	assert.True(t, g.HasEdge("esw1", "asw1"))
	assert.False(t, g.HasEdge("esw2", "asw0"))
	assert.True(t, g.HasEdge("esw2", "asw2"))
	assert.True(t, g.HasEdge("esw3", "asw3"))
}

func TestBuildFatTreeCounts(t *testing.T) {
	g, err := BuildFatTree(nil, DefaultFatTreeConfig)
	require.NoError(t, err)

	// k=4: 4 cores, 8 aggregation, 8 edge, 16 servers.
	assert.Equal(t, 36, g.NumNodes())
	// Intra-pod mesh 4*4, agg-core 4*4, edge-server 16.
	assert.Equal(t, 48, g.NumEdges())

	// Pod-local mesh.
	assert.True(t, g.HasEdge("esw0_0", "asw0_0"))
	assert.True(t, g.HasEdge("esw0_1", "asw0_1"))
	assert.False(t, g.HasEdge("esw0_0", "asw1_0"))

	// Upper aggregation group reaches the first core block, lower group
	// the rest.
	assert.True(t, g.HasEdge("asw0_0", "csw0"))
	assert.True(t, g.HasEdge("asw0_0", "csw1"))
	assert.False(t, g.HasEdge("asw0_0", "csw2"))
	assert.True(t, g.HasEdge("asw0_1", "csw2"))
	assert.True(t, g.HasEdge("asw0_1", "csw3"))
	assert.False(t, g.HasEdge("asw0_1", "csw0"))

	assert.Equal(t, []string{"esw3_1"}, g.Neighbors("srv3_1_1"))
}

func TestBuildFatTreeValidation(t *testing.T) {
	cfg := DefaultFatTreeConfig
	cfg.K = 3
	_, err := BuildFatTree(nil, cfg)
	require.Error(t, err)

	cfg = DefaultFatTreeConfig
	cfg.SwitchPortCapacity = 2
	_, err = BuildFatTree(nil, cfg)
	require.Error(t, err)

	cfg = DefaultFatTreeConfig
	cfg.ServersPerESW = 3
	_, err = BuildFatTree(nil, cfg)
	require.Error(t, err)
}

func TestBuildSpineLeafCounts(t *testing.T) {
	g, err := BuildSpineLeaf(nil, DefaultSpineLeafConfig)
	require.NoError(t, err)

	// 4 spines + 8 leaves + 80 servers.
	assert.Equal(t, 92, g.NumNodes())
	// Full mesh 32 + leaf-server 80.
	assert.Equal(t, 112, g.NumEdges())

	for s := 0; s < DefaultSpineLeafConfig.NumSpine; s++ {
		for l := 0; l < DefaultSpineLeafConfig.NumLeaf; l++ {
			assert.True(t, g.HasEdge(fmt.Sprintf("spine%d", s), fmt.Sprintf("leaf%d", l)))
		}
	}

	assert.Equal(t, []string{"leaf7"}, g.Neighbors("srv7_9"))
	assert.Equal(t, DefaultSpineLeafConfig.NumSpine+DefaultSpineLeafConfig.ServersPerLeaf, g.Degree("leaf0"))
}

func TestBuildCollapsedCoreCounts(t *testing.T) {
	cfg := CollapsedCoreConfig{
		NumESW:           4,
		EndpointsPerESW:  6,
		CorePortCapacity: 8,
		EdgePortCapacity: 8,
	}
	g, err := BuildCollapsedCore(nil, cfg)
	require.NoError(t, err)

	// 2 cores + 4 edge + 24 endpoints.
	assert.Equal(t, 30, g.NumNodes())
	// Core-edge 8, edge-endpoint 24.
	assert.Equal(t, 32, g.NumEdges())

	for e := 0; e < cfg.NumESW; e++ {
		esw := fmt.Sprintf("esw%d", e)
		assert.True(t, g.HasEdge(esw, "ccsw0"), esw)
		assert.True(t, g.HasEdge(esw, "ccsw1"), esw)
		// Both core uplinks come before any endpoint.
		assert.Equal(t, []string{"ccsw0", "ccsw1"}, g.Neighbors(esw)[:2], esw)
	}
	assert.Equal(t, []string{"esw3"}, g.Neighbors("ep3_5"))
}

func TestBuildCollapsedCoreValidation(t *testing.T) {
	cfg := DefaultCollapsedCoreConfig
	cfg.CorePortCapacity = 8
	_, err := BuildCollapsedCore(nil, cfg)
	require.Error(t, err)

	cfg = DefaultCollapsedCoreConfig
	cfg.EdgePortCapacity = 24
	_, err = BuildCollapsedCore(nil, cfg)
	require.Error(t, err)
}

func TestBuildSpineLeafValidation(t *testing.T) {
	cfg := DefaultSpineLeafConfig
	cfg.SpinePortCapacity = 4
	_, err := BuildSpineLeaf(nil, cfg)
	require.Error(t, err)

	cfg = DefaultSpineLeafConfig
	cfg.ServersPerLeaf = 30
	_, err = BuildSpineLeaf(nil, cfg)
	require.Error(t, err)
}
