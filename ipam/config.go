package ipam

// Endpoint distribution strategies. They decide which VLAN an endpoint's
// access link uses when more than one endpoint VLAN is available.
const (
	DistributionSingle = "single"
	DistributionEqual  = "equal"
	DistributionRandom = "random"
)

const (
	defaultVLANPoolStart = 10
	defaultVLANPoolEnd   = 200 // exclusive
)

// Config carries the construction parameters of a Manager. Every field is
// optional; missing fields fall back to DefaultConfig.
type Config struct {
	// VLANPool is the ordered sequence of candidate VLAN ids, consumed
	// strictly left to right. Defaults to 10..199.
	VLANPool []int `json:"vlanPool,omitempty"`

	// Distribution selects the endpoint distribution strategy: "single",
	// "equal" or "random".
	Distribution string `json:"distribution,omitempty"`

	// EndpointVLANs is the VLAN list used by the "equal" and "random"
	// strategies. When empty, both fall back to "single" behavior.
	EndpointVLANs []int `json:"endpointVlans,omitempty"`

	// UniqueSwitchVLANs gives every switch a fresh interface VLAN. When
	// false all switches of a run share one VLAN. The zero value means
	// shared; start from DefaultConfig to keep the unique default.
	UniqueSwitchVLANs bool `json:"uniqueSwitchVlans"`

	// ReservedIPs lists addresses excluded from allocation, per VLAN.
	// Entries are single addresses ("10.10.0.2") or inclusive ranges
	// ("10.10.0.10-10.10.0.20"). Malformed entries are logged and dropped.
	ReservedIPs map[int][]string `json:"reservedIps,omitempty"`
}

// DefaultConfig is the configuration a Manager runs with when the caller
// supplies none.
var DefaultConfig = Config{
	Distribution:      DistributionSingle,
	UniqueSwitchVLANs: true,
}

// withDefaults fills the gaps a caller-supplied config leaves open.
func (c Config) withDefaults() Config {
	if len(c.VLANPool) == 0 {
		c.VLANPool = defaultVLANPool()
	}
	if c.Distribution == "" {
		c.Distribution = DistributionSingle
	}
	return c
}

func defaultVLANPool() []int {
	pool := make([]int, 0, defaultVLANPoolEnd-defaultVLANPoolStart)
	for v := defaultVLANPoolStart; v < defaultVLANPoolEnd; v++ {
		pool = append(pool, v)
	}
	return pool
}
