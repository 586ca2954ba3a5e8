// Package topology builds the data-center fabric graphs consumed by the
// allocation engine: resilient 3-tier, k-ary fat-tree and spine-leaf.
// Node identifiers follow the naming scheme the engine classifies on
// (csw, asw, esw, spine, leaf, ep, srv).
package topology

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dcnetlab/dcipam/graph"
)

// ThreeTierConfig sizes a resilient 3-tier fabric: two core switches, an
// even number of aggregation switches working in redundancy pairs, and a
// row of access switches each carrying a block of endpoints.
type ThreeTierConfig struct {
	// NumASW is the aggregation switch count. Must be even: access blocks
	// dual-home into aggregation pairs.
	NumASW int `json:"numAsw"`

	NumESW             int `json:"numEsw"`
	EndpointsPerESW    int `json:"endpointsPerEsw"`
	CorePortCapacity   int `json:"corePortCapacity"`
	AggPortCapacity    int `json:"aggPortCapacity"`
	AccessPortCapacity int `json:"accessPortCapacity"`
}

// DefaultThreeTierConfig mirrors a small lab build: one aggregation pair
// serving three access switches of a dozen endpoints each.
var DefaultThreeTierConfig = ThreeTierConfig{
	NumASW:             2,
	NumESW:             3,
	EndpointsPerESW:    12,
	CorePortCapacity:   24,
	AggPortCapacity:    24,
	AccessPortCapacity: 24,
}

// BuildThreeTier constructs the 3-tier fabric graph. Pairing requires an
// even aggregation count; port capacity overruns are logged and tolerated.
func BuildThreeTier(logger *zap.Logger, cfg ThreeTierConfig) (*graph.Graph, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.NumASW%2 != 0 {
		return nil, errors.Errorf("aggregation switch count %d must be even for redundancy pairing", cfg.NumASW)
	}
	if cfg.NumASW > cfg.CorePortCapacity {
		logger.Warn("aggregation switch count exceeds core port capacity, proceeding",
			zap.Int("numAsw", cfg.NumASW), zap.Int("corePortCapacity", cfg.CorePortCapacity))
	}
	if cfg.EndpointsPerESW > cfg.AccessPortCapacity {
		logger.Warn("endpoints per access switch exceed access port capacity, proceeding",
			zap.Int("endpointsPerEsw", cfg.EndpointsPerESW), zap.Int("accessPortCapacity", cfg.AccessPortCapacity))
	}

	g := graph.New()

	g.AddNodes("csw0", "csw1")

	for i := 0; i < cfg.NumASW; i++ {
		asw := fmt.Sprintf("asw%d", i)
		g.AddNode(asw)
		g.AddEdge(asw, "csw0")
		g.AddEdge(asw, "csw1")
	}

	for i := 0; i < cfg.NumESW; i++ {
		g.AddNode(fmt.Sprintf("esw%d", i))
	}

	// Aggregation pairs each serve a contiguous block of access switches;
	// every access switch in the block dual-homes into both pair members.
	for pairIndex := 0; pairIndex < cfg.NumASW; pairIndex += 2 {
		asw1 := fmt.Sprintf("asw%d", pairIndex)
		asw2 := fmt.Sprintf("asw%d", pairIndex+1)

		startESW := pairIndex / 2 * cfg.AggPortCapacity
		endESW := startESW + cfg.AggPortCapacity
		if endESW > cfg.NumESW {
			endESW = cfg.NumESW
		}

		for eswIndex := startESW; eswIndex < endESW; eswIndex++ {
			esw := fmt.Sprintf("esw%d", eswIndex)
			g.AddEdge(esw, asw1)
			g.AddEdge(esw, asw2)
		}
	}

	for eswIndex := 0; eswIndex < cfg.NumESW; eswIndex++ {
		esw := fmt.Sprintf("esw%d", eswIndex)
		for pcIndex := 0; pcIndex < cfg.EndpointsPerESW; pcIndex++ {
			ep := fmt.Sprintf("ep%d_%d", eswIndex, pcIndex)
			g.AddNode(ep)
			g.AddEdge(esw, ep)
		}
	}

	logger.Info("built 3-tier topology",
		zap.Int("nodes", g.NumNodes()), zap.Int("edges", g.NumEdges()),
		zap.Int("numAsw", cfg.NumASW), zap.Int("numEsw", cfg.NumESW),
		zap.Int("endpointsPerEsw", cfg.EndpointsPerESW))
	return g, nil
}
