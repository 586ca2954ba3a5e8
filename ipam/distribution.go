package ipam

import (
	"net"

	"go.uber.org/zap"
)

// endpointVLAN resolves the VLAN an endpoint's access link uses, according
// to the configured distribution strategy. idx and total describe the
// endpoint's position in the pass so strategies can spread deterministically.
// Unrecognized strategy names behave like "single".
func (m *Manager) endpointVLAN(idx, total int, gatewaySwitch string) (int, error) {
	switch m.cfg.Distribution {
	case DistributionEqual:
		if len(m.cfg.EndpointVLANs) == 0 {
			return m.gatewayVLAN(gatewaySwitch)
		}
		vlans, err := m.endpointVLANsFor(gatewaySwitch)
		if err != nil {
			return 0, err
		}
		return vlans[idx%len(vlans)], nil

	case DistributionRandom:
		if len(m.cfg.EndpointVLANs) == 0 {
			return m.gatewayVLAN(gatewaySwitch)
		}
		vlans, err := m.endpointVLANsFor(gatewaySwitch)
		if err != nil {
			return 0, err
		}
		return vlans[m.rng.Intn(len(vlans))], nil

	default:
		return m.gatewayVLAN(gatewaySwitch)
	}
}

// gatewayVLAN is the "single" strategy: every endpoint behind a gateway
// switch lands on that switch's interface VLAN. A gateway switch without
// one (possible with hand-built graphs) gets a fresh VLAN on first demand.
func (m *Manager) gatewayVLAN(gatewaySwitch string) (int, error) {
	if vlan, ok := m.graph.Node(gatewaySwitch)[AttrInterfaceVLAN].(int); ok {
		return vlan, nil
	}

	m.logger.Warn("gateway switch has no interface VLAN, allocating one",
		zap.String("gatewaySwitch", gatewaySwitch))
	vlan, err := m.pool.NextVLAN()
	if err != nil {
		return 0, err
	}
	if _, err := m.pool.SubnetFor(vlan); err != nil {
		return 0, err
	}
	if _, err := m.pool.GatewayFor(vlan); err != nil {
		return 0, err
	}
	m.graph.Node(gatewaySwitch)[AttrInterfaceVLAN] = vlan
	return vlan, nil
}

// endpointVLANsFor materializes the configured endpoint VLAN list behind a
// gateway switch: each VLAN gets its subnet created and, since none of
// them carries a gateway of its own, the switch's gateway address aliased
// onto it. Done once per gateway switch, then memoized.
func (m *Manager) endpointVLANsFor(gatewaySwitch string) ([]int, error) {
	if vlans, ok := m.endpointVLANAssignments[gatewaySwitch]; ok {
		return vlans, nil
	}

	gw, _ := m.graph.Node(gatewaySwitch)[AttrInterfaceVLANGateway].(string)
	gwIP := net.ParseIP(gw)

	vlans := append([]int(nil), m.cfg.EndpointVLANs...)
	for _, vlan := range vlans {
		if _, err := m.pool.SubnetFor(vlan); err != nil {
			return nil, err
		}
		if gwIP != nil {
			m.pool.SetGatewayAlias(vlan, gwIP)
		}
	}

	m.endpointVLANAssignments[gatewaySwitch] = vlans
	m.logger.Debug("materialized endpoint VLANs",
		zap.String("gatewaySwitch", gatewaySwitch), zap.Ints("vlans", vlans))
	return vlans, nil
}
