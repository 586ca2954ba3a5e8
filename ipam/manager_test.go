package ipam

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dcnetlab/dcipam/graph"
)

// newSmallThreeTier wires 2 cores, one aggregation pair, 2 access switches
// and 2 endpoints per access switch.
func newSmallThreeTier(t *testing.T) *graph.Graph {
	t.Helper()
	g := graph.New()
	g.AddNodes("csw0", "csw1")
	for _, asw := range []string{"asw0", "asw1"} {
		g.AddEdge(asw, "csw0")
		g.AddEdge(asw, "csw1")
	}
	for _, esw := range []string{"esw0", "esw1"} {
		g.AddEdge(esw, "asw0")
		g.AddEdge(esw, "asw1")
	}
	g.AddEdge("esw0", "ep0_0")
	g.AddEdge("esw0", "ep0_1")
	g.AddEdge("esw1", "ep1_0")
	g.AddEdge("esw1", "ep1_1")
	return g
}

func TestThreeTierSingleDistribution(t *testing.T) {
	g := newSmallThreeTier(t)
	m := NewManager(nil, g, nil)
	require.NoError(t, m.AssignNetworkAttributes(TopologyThreeTier))

	// VLANs issue in classification order: cores, aggregation, access.
	assert.Equal(t, 10, g.Node("csw0")[AttrInterfaceVLAN])
	assert.Equal(t, 11, g.Node("csw1")[AttrInterfaceVLAN])
	assert.Equal(t, 12, g.Node("asw0")[AttrInterfaceVLAN])
	assert.Equal(t, 13, g.Node("asw1")[AttrInterfaceVLAN])
	assert.Equal(t, 14, g.Node("esw0")[AttrInterfaceVLAN])
	assert.Equal(t, 15, g.Node("esw1")[AttrInterfaceVLAN])

	// Aggregation switches carry the gateway; their own address is distinct.
	assert.Equal(t, "10.12.0.1", g.Node("asw0")[AttrInterfaceVLANGateway])
	assert.Equal(t, "10.12.0.2", g.Node("asw0")[AttrInterfaceVLANIP])
	assert.Equal(t, "10.13.0.1", g.Node("asw1")[AttrInterfaceVLANGateway])

	// Core and access switches get management addresses only.
	assert.Equal(t, "10.10.0.2", g.Node("csw0")[AttrInterfaceVLANIP])
	assert.NotContains(t, g.Node("csw0"), AttrInterfaceVLANGateway)
	assert.NotContains(t, g.Node("esw0"), AttrInterfaceVLANGateway)

	// Both access switches dual-home into the pair; asw0 is first in the
	// adjacency, so every endpoint lands in its VLAN.
	wantIPs := map[string]string{
		"ep0_0": "10.12.0.3",
		"ep0_1": "10.12.0.4",
		"ep1_0": "10.12.0.5",
		"ep1_1": "10.12.0.6",
	}
	for ep, wantIP := range wantIPs {
		attrs := g.Node(ep)
		assert.Equal(t, wantIP, attrs[AttrIPAddress], ep)
		assert.Equal(t, "10.12.0.1", attrs[AttrDefaultGateway], ep)
		assert.Equal(t, 12, attrs[AttrVLANID], ep)
		assert.Equal(t, "10.12.0.0/24", attrs[AttrSubnet], ep)
	}

	// Access links record the VLAN; switch memberships come out sorted.
	assert.Equal(t, 12, g.Edge("esw0", "ep0_0")[AttrVLANID])
	assert.Equal(t, []int{12, 14}, g.Node("esw0")[AttrVLANsSupported])
	assert.Equal(t, []int{12, 15}, g.Node("esw1")[AttrVLANsSupported])
	assert.Equal(t, []int{12}, g.Node("asw0")[AttrVLANsSupported])
	assert.Equal(t, []int{10}, g.Node("csw0")[AttrVLANsSupported])
}

func TestAllAssignedAddressesUnique(t *testing.T) {
	g := newSmallThreeTier(t)
	m := NewManager(nil, g, nil)
	require.NoError(t, m.AssignNetworkAttributes(TopologyThreeTier))

	seen := make(map[string]string)
	for _, node := range g.Nodes() {
		for _, key := range []string{AttrInterfaceVLANIP, AttrIPAddress} {
			ip, ok := g.Node(node)[key].(string)
			if !ok {
				continue
			}
			prev, dup := seen[ip]
			require.False(t, dup, "address %s assigned to both %s and %s", ip, prev, node)
			seen[ip] = node
		}
	}
}

func TestUnsupportedTopologyRejected(t *testing.T) {
	m := NewManager(nil, newSmallThreeTier(t), nil)
	err := m.AssignNetworkAttributes("ring")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUnsupportedTopology))
}

func TestSecondPassRejected(t *testing.T) {
	m := NewManager(nil, newSmallThreeTier(t), nil)
	require.NoError(t, m.AssignNetworkAttributes(TopologyThreeTier))

	err := m.AssignNetworkAttributes(TopologyThreeTier)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrAlreadyAssigned))
}

func TestVLANPoolExhaustionIsFatal(t *testing.T) {
	g := graph.New()
	g.AddEdge("spine0", "leaf0")

	m := NewManager(nil, g, &Config{VLANPool: []int{10}, UniqueSwitchVLANs: true})
	err := m.AssignNetworkAttributes(TopologySpineLeaf)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrVLANPoolExhausted))
}

func TestSharedSwitchVLAN(t *testing.T) {
	g := newSmallThreeTier(t)
	m := NewManager(nil, g, &Config{UniqueSwitchVLANs: false})
	require.NoError(t, m.AssignNetworkAttributes(TopologyThreeTier))

	for _, sw := range []string{"csw0", "csw1", "asw0", "asw1", "esw0", "esw1"} {
		assert.Equal(t, 10, g.Node(sw)[AttrInterfaceVLAN], sw)
	}

	// Everything shares 10.10.0.0/24; the gateway slot is still skipped.
	assert.Equal(t, "10.10.0.2", g.Node("csw0")[AttrInterfaceVLANIP])
	assert.Equal(t, "10.10.0.1", g.Node("asw0")[AttrInterfaceVLANGateway])
	assert.Equal(t, "10.10.0.1", g.Node("asw1")[AttrInterfaceVLANGateway])
	assert.Equal(t, "10.10.0.8", g.Node("ep0_0")[AttrIPAddress])
	assert.Equal(t, 1, m.pool.VLANsIssued())
}

func TestPartialSuccessSkipsBrokenEndpoints(t *testing.T) {
	g := newSmallThreeTier(t)
	g.AddNode("ep_lone")             // no access link at all
	g.AddEdge("esw_orphan", "ep9_0") // access switch with no aggregation uplink

	m := NewManager(nil, g, nil)
	require.NoError(t, m.AssignNetworkAttributes(TopologyThreeTier))

	for _, ep := range []string{"ep_lone", "ep9_0"} {
		assert.NotContains(t, g.Node(ep), AttrIPAddress, ep)
		assert.NotContains(t, g.Node(ep), AttrDefaultGateway, ep)
	}

	// The healthy endpoints still complete around the skipped ones.
	assert.Equal(t, "10.12.0.1", g.Node("ep0_0")[AttrDefaultGateway])
	assert.Contains(t, g.Node("ep1_1"), AttrIPAddress)
}

func TestGatewaySwitchWithoutAddressSkipsEndpoint(t *testing.T) {
	g := graph.New()
	g.AddEdge("esw0", "asw0")
	g.AddEdge("esw0", "ep0_0")

	m := NewManager(nil, g, nil)
	roles := ClassifyNodes(g)

	// Run the endpoint phase against a gateway switch that never got a
	// routed interface: the VLAN resolution falls back to a fresh VLAN,
	// but no gateway address is ever published on the switch.
	require.NoError(t, m.assignEndpointNetworks(roles, TopologyThreeTier))

	assert.Equal(t, 10, g.Edge("esw0", "ep0_0")[AttrVLANID])
	assert.NotContains(t, g.Node("ep0_0"), AttrIPAddress)
	assert.NotContains(t, g.Node("ep0_0"), AttrDefaultGateway)
}

func TestEndpointWithMultipleUplinksSkipped(t *testing.T) {
	g := newSmallThreeTier(t)
	g.AddEdge("esw0", "ep_bad")
	g.AddEdge("esw1", "ep_bad")

	m := NewManager(nil, g, nil)
	require.NoError(t, m.AssignNetworkAttributes(TopologyThreeTier))

	assert.NotContains(t, g.Node("ep_bad"), AttrIPAddress)
	assert.NotContains(t, g.Node("ep_bad"), AttrDefaultGateway)
}

func TestSwitchOnlyGraphCompletes(t *testing.T) {
	g := graph.New()
	g.AddEdge("asw0", "csw0")
	g.AddEdge("esw0", "asw0")

	m := NewManager(nil, g, nil)
	require.NoError(t, m.AssignNetworkAttributes(TopologyThreeTier))

	// Interfaces are assigned, but with no endpoints the membership lists
	// are never published past their placeholder.
	assert.Equal(t, 12, g.Node("esw0")[AttrInterfaceVLAN])
	assert.Equal(t, []int{}, g.Node("esw0")[AttrVLANsSupported])
}

func TestSummaryReportsSubnets(t *testing.T) {
	g := newSmallThreeTier(t)
	m := NewManager(nil, g, nil)
	require.NoError(t, m.AssignNetworkAttributes(TopologyThreeTier))

	s := m.Summary()
	assert.Equal(t, 6, s.VLANsIssued)
	require.Len(t, s.Subnets, 6)

	byVLAN := make(map[int]SubnetInfo)
	for _, info := range s.Subnets {
		byVLAN[info.VLAN] = info
	}

	// asw0's VLAN carries its own address plus all four endpoints.
	assert.Equal(t, "10.12.0.0/24", byVLAN[12].Subnet)
	assert.Equal(t, "10.12.0.1", byVLAN[12].Gateway)
	assert.Equal(t, 5, byVLAN[12].Allocated)

	// Management VLANs carry one address each.
	assert.Equal(t, 1, byVLAN[10].Allocated)
	assert.Equal(t, 1, byVLAN[14].Allocated)
}
