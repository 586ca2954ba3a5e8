package topology

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dcnetlab/dcipam/graph"
)

// FatTreeConfig sizes a classic k-ary fat-tree. K alone determines the
// switch counts: k pods, (k/2)^2 cores, k/2 aggregation and k/2 edge
// switches per pod.
type FatTreeConfig struct {
	// K is the arity. Must be even.
	K int `json:"k"`

	// ServersPerESW caps at K/2 to keep the fabric non-blocking.
	ServersPerESW int `json:"serversPerEsw"`

	// SwitchPortCapacity applies to every switch and must be at least K.
	SwitchPortCapacity int `json:"switchPortCapacity"`
}

// DefaultFatTreeConfig is the smallest non-trivial fat-tree: k=4, fully
// populated server slots.
var DefaultFatTreeConfig = FatTreeConfig{
	K:                  4,
	ServersPerESW:      2,
	SwitchPortCapacity: 4,
}

// BuildFatTree constructs the k-ary fat-tree graph. All sizing constraints
// are hard: violating any breaks the pod structure, so they fail the build
// instead of warning.
func BuildFatTree(logger *zap.Logger, cfg FatTreeConfig) (*graph.Graph, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.K%2 != 0 {
		return nil, errors.Errorf("k %d must be even for pod structure", cfg.K)
	}
	if cfg.SwitchPortCapacity < cfg.K {
		return nil, errors.Errorf("switch port capacity %d below k %d", cfg.SwitchPortCapacity, cfg.K)
	}
	if cfg.ServersPerESW > cfg.K/2 {
		return nil, errors.Errorf("servers per edge switch %d above k/2 %d", cfg.ServersPerESW, cfg.K/2)
	}

	k := cfg.K
	kHalf := k / 2
	numPods := k
	numCores := kHalf * kHalf

	g := graph.New()

	for i := 0; i < numCores; i++ {
		g.AddNode(fmt.Sprintf("csw%d", i))
	}
	for pod := 0; pod < numPods; pod++ {
		for i := 0; i < kHalf; i++ {
			g.AddNode(fmt.Sprintf("asw%d_%d", pod, i))
		}
	}
	for pod := 0; pod < numPods; pod++ {
		for i := 0; i < kHalf; i++ {
			g.AddNode(fmt.Sprintf("esw%d_%d", pod, i))
		}
	}

	// Intra-pod full mesh: every edge switch to every aggregation switch
	// of its pod.
	for pod := 0; pod < numPods; pod++ {
		for e := 0; e < kHalf; e++ {
			esw := fmt.Sprintf("esw%d_%d", pod, e)
			for a := 0; a < kHalf; a++ {
				g.AddEdge(esw, fmt.Sprintf("asw%d_%d", pod, a))
			}
		}
	}

	// Inter-pod uplinks: the upper half of each pod's aggregation switches
	// reach the first k/2 cores, the lower half the rest.
	for pod := 0; pod < numPods; pod++ {
		for aggIndex := 0; aggIndex < kHalf; aggIndex++ {
			asw := fmt.Sprintf("asw%d_%d", pod, aggIndex)
			if aggIndex < kHalf/2 {
				for core := 0; core < kHalf; core++ {
					g.AddEdge(asw, fmt.Sprintf("csw%d", core))
				}
			} else {
				for core := kHalf; core < numCores; core++ {
					g.AddEdge(asw, fmt.Sprintf("csw%d", core))
				}
			}
		}
	}

	for pod := 0; pod < numPods; pod++ {
		for e := 0; e < kHalf; e++ {
			esw := fmt.Sprintf("esw%d_%d", pod, e)
			for s := 0; s < cfg.ServersPerESW; s++ {
				srv := fmt.Sprintf("srv%d_%d_%d", pod, e, s)
				g.AddNode(srv)
				g.AddEdge(esw, srv)
			}
		}
	}

	logger.Info("built fat-tree topology",
		zap.Int("nodes", g.NumNodes()), zap.Int("edges", g.NumEdges()),
		zap.Int("k", k), zap.Int("pods", numPods), zap.Int("cores", numCores),
		zap.Int("serversPerEsw", cfg.ServersPerESW))
	return g, nil
}
