package topology

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dcnetlab/dcipam/graph"
)

// collapsedCoreSwitches is fixed: the design collapses core and
// aggregation into one redundant switch pair.
const collapsedCoreSwitches = 2

// CollapsedCoreConfig sizes a collapsed-core fabric: a core pair doing
// both routing tiers, edge switches dual-homed into it, endpoints off the
// edges.
type CollapsedCoreConfig struct {
	NumESW           int `json:"numEsw"`
	EndpointsPerESW  int `json:"endpointsPerEsw"`
	CorePortCapacity int `json:"corePortCapacity"`
	EdgePortCapacity int `json:"edgePortCapacity"`
}

// DefaultCollapsedCoreConfig is a campus-size build: 16 edge switches
// fully populated with two dozen endpoints each.
var DefaultCollapsedCoreConfig = CollapsedCoreConfig{
	NumESW:           16,
	EndpointsPerESW:  24,
	CorePortCapacity: 24,
	EdgePortCapacity: 26,
}

// BuildCollapsedCore constructs the collapsed-core fabric graph. Port
// capacities are hard constraints: the core pair must reach every edge
// switch and every edge switch must fit its uplinks plus endpoints.
func BuildCollapsedCore(logger *zap.Logger, cfg CollapsedCoreConfig) (*graph.Graph, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.CorePortCapacity < cfg.NumESW {
		return nil, errors.Errorf("core port capacity %d below edge switch count %d", cfg.CorePortCapacity, cfg.NumESW)
	}
	if required := collapsedCoreSwitches + cfg.EndpointsPerESW; cfg.EdgePortCapacity < required {
		return nil, errors.Errorf("edge port capacity %d below required %d (core uplinks plus endpoints)",
			cfg.EdgePortCapacity, required)
	}

	g := graph.New()

	for i := 0; i < collapsedCoreSwitches; i++ {
		g.AddNode(fmt.Sprintf("ccsw%d", i))
	}
	for i := 0; i < cfg.NumESW; i++ {
		g.AddNode(fmt.Sprintf("esw%d", i))
	}

	for c := 0; c < collapsedCoreSwitches; c++ {
		ccsw := fmt.Sprintf("ccsw%d", c)
		for e := 0; e < cfg.NumESW; e++ {
			g.AddEdge(ccsw, fmt.Sprintf("esw%d", e))
		}
	}

	for e := 0; e < cfg.NumESW; e++ {
		esw := fmt.Sprintf("esw%d", e)
		for p := 0; p < cfg.EndpointsPerESW; p++ {
			ep := fmt.Sprintf("ep%d_%d", e, p)
			g.AddNode(ep)
			g.AddEdge(esw, ep)
		}
	}

	logger.Info("built collapsed-core topology",
		zap.Int("nodes", g.NumNodes()), zap.Int("edges", g.NumEdges()),
		zap.Int("numEsw", cfg.NumESW), zap.Int("endpointsPerEsw", cfg.EndpointsPerESW))
	return g, nil
}
