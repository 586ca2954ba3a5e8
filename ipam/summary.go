package ipam

import (
	"sort"
)

// SubnetInfo describes one VLAN's allocation state after a pass.
type SubnetInfo struct {
	VLAN      int    `json:"vlan"`
	Subnet    string `json:"subnet"`
	Gateway   string `json:"gateway,omitempty"`
	Allocated int    `json:"allocated"`
}

// Summary is the per-run allocation report.
type Summary struct {
	VLANsIssued int          `json:"vlansIssued"`
	Subnets     []SubnetInfo `json:"subnets"`
}

// Summary reports what the pass allocated: every subnet created, its
// effective gateway and how many host addresses were handed out in it,
// ordered by VLAN id.
func (m *Manager) Summary() Summary {
	vlans := make([]int, 0, len(m.pool.subnets))
	for vlan := range m.pool.subnets {
		vlans = append(vlans, vlan)
	}
	sort.Ints(vlans)

	s := Summary{
		VLANsIssued: m.pool.VLANsIssued(),
		Subnets:     make([]SubnetInfo, 0, len(vlans)),
	}
	for _, vlan := range vlans {
		info := SubnetInfo{
			VLAN:   vlan,
			Subnet: m.pool.SubnetString(vlan),
		}
		if gw := m.pool.GatewayIP(vlan); gw != nil {
			info.Gateway = gw.String()
		}
		// Cursor distance from the first assignable offset; reserved-address
		// skips count toward it.
		if cursor, ok := m.pool.cursors[vlan]; ok && cursor > firstAssignableOffset {
			info.Allocated = cursor - firstAssignableOffset
		}
		s.Subnets = append(s.Subnets, info)
	}
	return s
}
