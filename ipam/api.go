package ipam

import (
	"github.com/pkg/errors"
)

// Topology types understood by the allocation engine.
const (
	TopologyThreeTier     = "3-tier"
	TopologyFatTree       = "fat-tree"
	TopologySpineLeaf     = "spine-leaf"
	TopologyCollapsedCore = "collapsed-core"
)

// Graph attribute keys written by an allocation pass. These are the wire
// contract consumed by exporters, device-config generators and validators.
const (
	// Switch node attributes.
	AttrVLANsSupported       = "vlans_supported"
	AttrInterfaceVLAN        = "interface_vlan"
	AttrInterfaceVLANIP      = "interface_vlan_ip"
	AttrInterfaceVLANGateway = "interface_vlan_gateway"

	// Endpoint and server node attributes.
	AttrIPAddress      = "ip_address"
	AttrDefaultGateway = "default_gateway"
	AttrVLANID         = "vlan_id"
	AttrSubnet         = "subnet"
)

// Errors returned by the allocation engine. Exhaustion of the VLAN pool
// and of a single VLAN's address range are distinct conditions; both are
// fatal to the allocation call that hits them.
var (
	ErrVLANPoolExhausted    = errors.New("VLAN pool exhausted")
	ErrAddressPoolExhausted = errors.New("address pool exhausted")
	ErrUnsupportedTopology  = errors.New("unsupported topology type")
	ErrInvalidVLAN          = errors.New("VLAN id outside the derivable subnet range")
	ErrAlreadyAssigned      = errors.New("allocation pass already ran on this instance")
)
