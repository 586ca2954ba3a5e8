package ipam

import (
	"net"
	"strings"

	"github.com/apparentlymart/go-cidr/cidr"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const (
	// Host offset reserved for the gateway in every derived subnet. It is
	// never issued to a device.
	gatewayHostOffset = 1

	// firstAssignableOffset is where a VLAN's allocation cursor starts:
	// past the gateway position, whether or not the gateway was
	// materialized for that VLAN.
	firstAssignableOffset = 2

	subnetPrefixLen = 24
)

// addressPool owns the allocator state of one run: the VLAN cursor, the
// VLAN to subnet and VLAN to gateway tables, per-VLAN address cursors and
// reserved address sets.
//
// Subnets derive deterministically from the VLAN id as 10.<vlan>.0.0/24,
// which keeps the VLAN/subnet mapping bijective without extra bookkeeping
// and trivially invertible for diagnostics.
type addressPool struct {
	logger *zap.Logger

	vlans     []int
	vlanIndex int

	subnets map[int]*net.IPNet

	// gateways holds addresses reserved inside a VLAN's own subnet.
	// gatewayAlias holds externally-set gateway addresses pinned onto
	// endpoint VLANs by the equal/random distribution strategies; keeping
	// them apart keeps the VLAN/gateway bijection of gateways intact.
	gateways     map[int]net.IP
	gatewayAlias map[int]net.IP

	cursors  map[int]int
	reserved map[int]map[uint32]struct{}
}

func newAddressPool(logger *zap.Logger, vlans []int, reservedSpecs map[int][]string) *addressPool {
	p := &addressPool{
		logger:       logger,
		vlans:        vlans,
		subnets:      make(map[int]*net.IPNet),
		gateways:     make(map[int]net.IP),
		gatewayAlias: make(map[int]net.IP),
		cursors:      make(map[int]int),
		reserved:     make(map[int]map[uint32]struct{}),
	}
	p.parseReservedIPs(reservedSpecs)
	return p
}

// parseReservedIPs expands single-address and inclusive-range reservation
// specs into per-VLAN sets. Malformed specs are logged and dropped so a
// bad entry cannot fail construction.
func (p *addressPool) parseReservedIPs(specs map[int][]string) {
	for vlan, list := range specs {
		for _, spec := range list {
			if strings.Contains(spec, "-") {
				parts := strings.SplitN(spec, "-", 2)
				start, err1 := parseIPv4(strings.TrimSpace(parts[0]))
				end, err2 := parseIPv4(strings.TrimSpace(parts[1]))
				if err1 != nil || err2 != nil || start > end {
					p.logger.Warn("dropping malformed reserved address range",
						zap.Int("vlan", vlan), zap.String("spec", spec))
					continue
				}
				for addr := start; addr <= end; addr++ {
					p.reserve(vlan, addr)
				}
				continue
			}
			addr, err := parseIPv4(strings.TrimSpace(spec))
			if err != nil {
				p.logger.Warn("dropping malformed reserved address",
					zap.Int("vlan", vlan), zap.String("spec", spec))
				continue
			}
			p.reserve(vlan, addr)
		}
	}
}

func (p *addressPool) reserve(vlan int, addr uint32) {
	set := p.reserved[vlan]
	if set == nil {
		set = make(map[uint32]struct{})
		p.reserved[vlan] = set
	}
	set[addr] = struct{}{}
}

// NextVLAN returns the next unconsumed VLAN id from the pool and advances
// the cursor.
func (p *addressPool) NextVLAN() (int, error) {
	if p.vlanIndex >= len(p.vlans) {
		return 0, errors.Wrapf(ErrVLANPoolExhausted, "%d of %d VLAN ids consumed", p.vlanIndex, len(p.vlans))
	}
	vlan := p.vlans[p.vlanIndex]
	p.vlanIndex++
	return vlan, nil
}

// VLANsIssued returns how many VLAN ids the pool has handed out.
func (p *addressPool) VLANsIssued() int {
	return p.vlanIndex
}

// SubnetFor returns the subnet derived for a VLAN, creating it on first
// use. Creation also positions the VLAN's allocation cursor past the
// gateway slot.
func (p *addressPool) SubnetFor(vlan int) (*net.IPNet, error) {
	if subnet, ok := p.subnets[vlan]; ok {
		return subnet, nil
	}
	if vlan < 1 || vlan > 255 {
		return nil, errors.Wrapf(ErrInvalidVLAN, "vlan %d does not fit 10.<vlan>.0.0/%d", vlan, subnetPrefixLen)
	}
	subnet := &net.IPNet{
		IP:   net.IPv4(10, byte(vlan), 0, 0).To4(),
		Mask: net.CIDRMask(subnetPrefixLen, 32),
	}
	p.subnets[vlan] = subnet
	p.cursors[vlan] = firstAssignableOffset
	p.logger.Debug("created subnet", zap.Int("vlan", vlan), zap.String("subnet", subnet.String()))
	return subnet, nil
}

// GatewayFor returns the reserved gateway address of a VLAN's subnet,
// reserving it on first use.
func (p *addressPool) GatewayFor(vlan int) (net.IP, error) {
	if gw, ok := p.gateways[vlan]; ok {
		return gw, nil
	}
	subnet, err := p.SubnetFor(vlan)
	if err != nil {
		return nil, err
	}
	gw, err := cidr.Host(subnet, gatewayHostOffset)
	if err != nil {
		return nil, errors.Wrapf(err, "deriving gateway for vlan %d", vlan)
	}
	p.gateways[vlan] = gw
	p.logger.Debug("reserved gateway", zap.Int("vlan", vlan), zap.String("gateway", gw.String()))
	return gw, nil
}

// SetGatewayAlias pins an externally owned gateway address onto a VLAN
// that has no gateway of its own. Used by the equal/random distribution
// strategies to route several endpoint VLANs through one first-hop switch.
func (p *addressPool) SetGatewayAlias(vlan int, gw net.IP) {
	if _, ok := p.gateways[vlan]; ok {
		return
	}
	if _, ok := p.gatewayAlias[vlan]; ok {
		return
	}
	p.gatewayAlias[vlan] = gw
	p.logger.Debug("aliased gateway", zap.Int("vlan", vlan), zap.String("gateway", gw.String()))
}

// GatewayIP returns the effective gateway of a VLAN: the reserved address
// if one exists, the alias otherwise, nil if neither is set.
func (p *addressPool) GatewayIP(vlan int) net.IP {
	if gw, ok := p.gateways[vlan]; ok {
		return gw
	}
	return p.gatewayAlias[vlan]
}

func (p *addressPool) hasGateway(vlan int) bool {
	return p.GatewayIP(vlan) != nil
}

// NextAddressFor returns the next host address of a VLAN's subnet that is
// neither the gateway nor reserved, advancing the cursor. The VLAN's
// subnet and gateway reservation are ensured first, so management and
// device addresses can never land on the gateway slot.
func (p *addressPool) NextAddressFor(vlan int) (net.IP, error) {
	subnet, err := p.SubnetFor(vlan)
	if err != nil {
		return nil, err
	}
	if !p.hasGateway(vlan) {
		if _, err := p.GatewayFor(vlan); err != nil {
			return nil, err
		}
	}

	// Last usable host: the broadcast address stays out of the range.
	maxOffset := int(cidr.AddressCount(subnet)) - 2

	for off := p.cursors[vlan]; off <= maxOffset; off++ {
		host, err := cidr.Host(subnet, off)
		if err != nil {
			return nil, errors.Wrapf(err, "computing host %d of vlan %d", off, vlan)
		}
		if p.IsReserved(vlan, host) {
			p.logger.Debug("skipping reserved address",
				zap.Int("vlan", vlan), zap.String("address", host.String()))
			continue
		}
		p.cursors[vlan] = off + 1
		return host, nil
	}

	p.cursors[vlan] = maxOffset + 1
	return nil, errors.Wrapf(ErrAddressPoolExhausted, "vlan %d subnet %s", vlan, subnet)
}

// IsReserved reports whether an address is excluded from allocation in a
// VLAN by the reserved-address configuration.
func (p *addressPool) IsReserved(vlan int, ip net.IP) bool {
	set := p.reserved[vlan]
	if set == nil {
		return false
	}
	addr, err := parseIPv4(ip.String())
	if err != nil {
		return false
	}
	_, ok := set[addr]
	return ok
}

// SubnetString returns the string form of a VLAN's subnet, or "" if the
// subnet was never created.
func (p *addressPool) SubnetString(vlan int) string {
	if subnet, ok := p.subnets[vlan]; ok {
		return subnet.String()
	}
	return ""
}

// parseIPv4 converts a dotted-quad string to its numeric form.
func parseIPv4(s string) (uint32, error) {
	ip := net.ParseIP(s)
	if ip = ip.To4(); ip == nil {
		return 0, errors.Errorf("%q is not an IPv4 address", s)
	}
	var n uint32
	for _, b := range ip {
		n = n<<8 | uint32(b)
	}
	return n, nil
}
