package ipam

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dcnetlab/dcipam/graph"
)

func TestClassifyNodesByPrefix(t *testing.T) {
	g := graph.New()
	g.AddNodes(
		"csw0", "csw1",
		"ccsw0",
		"asw0",
		"spine0",
		"leaf0", "leaf1",
		"esw0",
		"ep0_0", "ep0_1",
		"srv0_0",
		"mgmt-station", // unrecognized, stays unclassified
	)

	roles := ClassifyNodes(g)

	assert.Equal(t, []string{"csw0", "csw1"}, roles[RoleCore])
	assert.Equal(t, []string{"ccsw0"}, roles[RoleCollapsedCore])
	assert.Equal(t, []string{"asw0"}, roles[RoleAggregation])
	assert.Equal(t, []string{"spine0"}, roles[RoleSpine])
	assert.Equal(t, []string{"leaf0", "leaf1"}, roles[RoleLeaf])
	assert.Equal(t, []string{"ep0_0", "ep0_1"}, roles[RoleEndpoint])
	assert.Equal(t, []string{"srv0_0"}, roles[RoleServer])
}

func TestClassifyESWCarriesBothAccessAndEdge(t *testing.T) {
	g := graph.New()
	g.AddNodes("esw0", "esw1_0")

	roles := ClassifyNodes(g)

	// The esw prefix is an access switch in 3-tier and an edge switch in
	// fat-tree; classification records both and the topology type decides.
	assert.Equal(t, []string{"esw0", "esw1_0"}, roles[RoleAccess])
	assert.Equal(t, []string{"esw0", "esw1_0"}, roles[RoleEdge])
}

func TestClassifyEmptyGraph(t *testing.T) {
	roles := ClassifyNodes(graph.New())
	for role, nodes := range roles {
		assert.Empty(t, nodes, "role %s", role)
	}
}
