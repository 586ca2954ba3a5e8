package ipam

import (
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dcnetlab/dcipam/graph"
)

// Manager binds one allocation pass to one topology graph. It owns every
// piece of allocator state (VLAN cursor, subnet and gateway tables,
// address cursors, reserved sets); the graph's attribute bags are the only
// state it shares with callers.
//
// A Manager is single-use: AssignNetworkAttributes refuses to run twice on
// the same instance, because a second pass would double-consume the VLAN
// pool and overwrite the first pass inconsistently.
type Manager struct {
	logger *zap.Logger
	graph  *graph.Graph
	cfg    Config
	pool   *addressPool

	switchVLANs             map[string][]int
	endpointVLANAssignments map[string][]int

	sharedVLAN    int
	sharedVLANSet bool

	rng      *rand.Rand
	assigned bool
}

// NewManager creates a manager for the given graph. A nil config selects
// DefaultConfig; a nil logger disables logging.
//
// Callers overriding individual options should copy DefaultConfig and
// change fields on the copy: the zero value of Config selects shared
// switch VLANs, not the default unique mode.
func NewManager(logger *zap.Logger, g *graph.Graph, cfg *Config) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}

	c := DefaultConfig
	if cfg != nil {
		c = *cfg
	}
	c = c.withDefaults()
	c.VLANPool = append([]int(nil), c.VLANPool...)
	c.EndpointVLANs = append([]int(nil), c.EndpointVLANs...)

	m := &Manager{
		logger:                  logger,
		graph:                   g,
		cfg:                     c,
		pool:                    newAddressPool(logger, c.VLANPool, c.ReservedIPs),
		switchVLANs:             make(map[string][]int),
		endpointVLANAssignments: make(map[string][]int),
		rng:                     rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	logger.Info("ipam manager initialized",
		zap.Int("nodes", g.NumNodes()),
		zap.Int("edges", g.NumEdges()),
		zap.Int("vlanPoolSize", len(c.VLANPool)),
		zap.String("distribution", c.Distribution))

	if len(c.ReservedIPs) > 0 {
		vlans := make([]int, 0, len(c.ReservedIPs))
		for vlan := range c.ReservedIPs {
			vlans = append(vlans, vlan)
		}
		sort.Ints(vlans)
		logger.Info("reserved addresses configured", zap.Ints("vlans", vlans))
	}

	return m
}

// AssignNetworkAttributes runs the allocation pass: classify nodes, assign
// switch interface VLANs, then walk endpoints and servers handing out
// addresses. Fatal errors (unsupported topology, pool exhaustion) abort
// the pass; the graph keeps whatever was written before the failing step.
func (m *Manager) AssignNetworkAttributes(topologyType string) error {
	switch topologyType {
	case TopologyThreeTier, TopologyFatTree, TopologySpineLeaf, TopologyCollapsedCore:
	default:
		return errors.Wrapf(ErrUnsupportedTopology, "%q", topologyType)
	}

	if m.assigned {
		return errors.Wrap(ErrAlreadyAssigned, "create a new Manager for another pass")
	}
	m.assigned = true

	m.logger = m.logger.With(
		zap.String("run", uuid.NewString()),
		zap.String("topology", topologyType))
	m.pool.logger = m.logger

	m.logger.Info("starting allocation pass")

	roles := ClassifyNodes(m.graph)
	m.logger.Info("classified nodes",
		zap.Int("core", len(roles[RoleCore])),
		zap.Int("collapsedCore", len(roles[RoleCollapsedCore])),
		zap.Int("aggregation", len(roles[RoleAggregation])),
		zap.Int("spine", len(roles[RoleSpine])),
		zap.Int("leaf", len(roles[RoleLeaf])),
		zap.Int("access", len(roles[RoleAccess])),
		zap.Int("endpoints", len(roles[RoleEndpoint])),
		zap.Int("servers", len(roles[RoleServer])))

	if err := m.assignSwitchVLANs(roles, topologyType); err != nil {
		return err
	}
	if err := m.assignEndpointNetworks(roles, topologyType); err != nil {
		return err
	}

	m.logger.Info("allocation pass complete",
		zap.Int("vlansAssigned", m.pool.VLANsIssued()),
		zap.Int("subnetsCreated", len(m.pool.subnets)))
	return nil
}

// assignSwitchVLANs gives every switch of the active topology its
// interface VLAN. Which roles get a routed (gateway-capable) interface and
// which get management-only depends on the topology type: the tier right
// above the end hosts is the first-hop router.
func (m *Manager) assignSwitchVLANs(roles NodeRoles, topologyType string) error {
	m.logger.Info("assigning switch interface VLANs")

	switch topologyType {
	case TopologyThreeTier:
		for _, sw := range roles[RoleCore] {
			if err := m.assignManagementInterface(sw); err != nil {
				return err
			}
		}
		for _, sw := range roles[RoleAggregation] {
			if err := m.assignGatewayInterface(sw); err != nil {
				return err
			}
		}
		for _, sw := range roles[RoleAccess] {
			if err := m.assignManagementInterface(sw); err != nil {
				return err
			}
		}

	case TopologyFatTree:
		for _, sw := range roles[RoleCore] {
			if err := m.assignManagementInterface(sw); err != nil {
				return err
			}
		}
		for _, sw := range roles[RoleAggregation] {
			if err := m.assignGatewayInterface(sw); err != nil {
				return err
			}
		}
		for _, sw := range roles[RoleEdge] {
			if err := m.assignManagementInterface(sw); err != nil {
				return err
			}
		}

	case TopologySpineLeaf:
		for _, sw := range roles[RoleSpine] {
			if err := m.assignGatewayInterface(sw); err != nil {
				return err
			}
		}
		for _, sw := range roles[RoleLeaf] {
			if err := m.assignManagementInterface(sw); err != nil {
				return err
			}
		}

	case TopologyCollapsedCore:
		for _, sw := range roles[RoleCollapsedCore] {
			if err := m.assignGatewayInterface(sw); err != nil {
				return err
			}
		}
		for _, sw := range roles[RoleAccess] {
			if err := m.assignManagementInterface(sw); err != nil {
				return err
			}
		}
	}

	return nil
}

// assignManagementInterface gives a switch an interface VLAN carrying only
// its own management address. The VLAN's gateway slot stays reserved but
// is not published: these switches do not route for end hosts.
func (m *Manager) assignManagementInterface(sw string) error {
	m.initSwitch(sw)

	vlan, err := m.interfaceVLAN()
	if err != nil {
		return err
	}
	mgmtIP, err := m.pool.NextAddressFor(vlan)
	if err != nil {
		return err
	}

	attrs := m.graph.Node(sw)
	attrs[AttrInterfaceVLAN] = vlan
	attrs[AttrInterfaceVLANIP] = mgmtIP.String()
	m.switchVLANs[sw] = append(m.switchVLANs[sw], vlan)

	m.logger.Debug("assigned management interface",
		zap.String("switch", sw), zap.Int("vlan", vlan), zap.String("ip", mgmtIP.String()))
	return nil
}

// assignGatewayInterface gives a first-hop switch an interface VLAN with a
// reserved virtual gateway plus its own management address in the same
// subnet, distinct from the gateway.
func (m *Manager) assignGatewayInterface(sw string) error {
	m.initSwitch(sw)

	vlan, err := m.interfaceVLAN()
	if err != nil {
		return err
	}
	gw, err := m.pool.GatewayFor(vlan)
	if err != nil {
		return err
	}
	swIP, err := m.pool.NextAddressFor(vlan)
	if err != nil {
		return err
	}

	attrs := m.graph.Node(sw)
	attrs[AttrInterfaceVLAN] = vlan
	attrs[AttrInterfaceVLANIP] = swIP.String()
	attrs[AttrInterfaceVLANGateway] = gw.String()
	m.switchVLANs[sw] = append(m.switchVLANs[sw], vlan)

	m.logger.Debug("assigned gateway interface",
		zap.String("switch", sw), zap.Int("vlan", vlan),
		zap.String("ip", swIP.String()), zap.String("gateway", gw.String()))
	return nil
}

func (m *Manager) initSwitch(sw string) {
	m.switchVLANs[sw] = []int{}
	m.graph.Node(sw)[AttrVLANsSupported] = []int{}
}

// interfaceVLAN returns a fresh VLAN per switch, or the one VLAN every
// switch of the run shares when UniqueSwitchVLANs is off.
func (m *Manager) interfaceVLAN() (int, error) {
	if m.cfg.UniqueSwitchVLANs {
		return m.pool.NextVLAN()
	}
	if !m.sharedVLANSet {
		vlan, err := m.pool.NextVLAN()
		if err != nil {
			return 0, err
		}
		m.sharedVLAN = vlan
		m.sharedVLANSet = true
	}
	return m.sharedVLAN, nil
}

// assignEndpointNetworks walks every endpoint and server in graph
// iteration order, resolves its access and gateway switches, picks a VLAN
// through the distribution strategy and hands out an address. Endpoints
// with wiring gaps are logged and skipped; the pass continues.
func (m *Manager) assignEndpointNetworks(roles NodeRoles, topologyType string) error {
	m.logger.Info("assigning endpoint networks")

	endpoints := append(append([]string(nil), roles[RoleEndpoint]...), roles[RoleServer]...)
	if len(endpoints) == 0 {
		m.logger.Warn("no endpoints or servers found in graph")
		return nil
	}

	total := len(endpoints)
	for idx, endpoint := range endpoints {
		neighbors := m.graph.Neighbors(endpoint)
		if len(neighbors) == 0 {
			m.logger.Warn("endpoint has no connections", zap.String("endpoint", endpoint))
			continue
		}
		if len(neighbors) > 1 {
			// One access link per endpoint is part of the contract; picking
			// an arbitrary neighbor would hide the wiring error.
			m.logger.Error("endpoint has more than one neighbor, skipping",
				zap.String("endpoint", endpoint), zap.Strings("neighbors", neighbors))
			continue
		}
		accessSwitch := neighbors[0]

		gatewaySwitch := m.findGatewaySwitch(accessSwitch, topologyType, roles)
		if gatewaySwitch == "" {
			m.logger.Warn("no gateway switch found for endpoint",
				zap.String("endpoint", endpoint), zap.String("accessSwitch", accessSwitch))
			continue
		}

		vlan, err := m.endpointVLAN(idx, total, gatewaySwitch)
		if err != nil {
			return err
		}

		m.graph.Edge(accessSwitch, endpoint)[AttrVLANID] = vlan
		if !containsInt(m.switchVLANs[accessSwitch], vlan) {
			m.switchVLANs[accessSwitch] = append(m.switchVLANs[accessSwitch], vlan)
		}

		gatewayIP, _ := m.graph.Node(gatewaySwitch)[AttrInterfaceVLANGateway].(string)
		if gatewayIP == "" {
			m.logger.Warn("gateway switch has no gateway address",
				zap.String("endpoint", endpoint), zap.String("gatewaySwitch", gatewaySwitch))
			continue
		}

		endpointIP, err := m.pool.NextAddressFor(vlan)
		if err != nil {
			return err
		}

		attrs := m.graph.Node(endpoint)
		attrs[AttrIPAddress] = endpointIP.String()
		attrs[AttrDefaultGateway] = gatewayIP
		attrs[AttrVLANID] = vlan
		attrs[AttrSubnet] = m.pool.SubnetString(vlan)

		m.logger.Debug("assigned endpoint network",
			zap.String("endpoint", endpoint),
			zap.String("ip", endpointIP.String()),
			zap.String("gateway", gatewayIP),
			zap.Int("vlan", vlan))
	}

	// Publish the accumulated VLAN memberships, sorted.
	for sw, vlans := range m.switchVLANs {
		sorted := append([]int(nil), vlans...)
		sort.Ints(sorted)
		m.graph.Node(sw)[AttrVLANsSupported] = sorted
	}

	return nil
}

// findGatewaySwitch scans an access-tier switch's neighbors for the first
// one in the gateway-capable role of the active topology: aggregation for
// 3-tier and fat-tree, spine for spine-leaf, the core pair for
// collapsed-core. Returns "" when the switch has no such neighbor.
func (m *Manager) findGatewaySwitch(accessSwitch, topologyType string, roles NodeRoles) string {
	var gatewayRole string
	switch topologyType {
	case TopologyThreeTier, TopologyFatTree:
		gatewayRole = RoleAggregation
	case TopologySpineLeaf:
		gatewayRole = RoleSpine
	case TopologyCollapsedCore:
		gatewayRole = RoleCollapsedCore
	default:
		return ""
	}

	for _, neighbor := range m.graph.Neighbors(accessSwitch) {
		if containsString(roles[gatewayRole], neighbor) {
			return neighbor
		}
	}
	return ""
}

func containsInt(list []int, v int) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

func containsString(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}
