package topology

import (
	"fmt"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/dcnetlab/dcipam/graph"
)

// SpineLeafConfig sizes a two-tier spine-leaf fabric: a full mesh between
// the spine and leaf rows, servers hanging off the leaves.
type SpineLeafConfig struct {
	NumSpine          int `json:"numSpine"`
	NumLeaf           int `json:"numLeaf"`
	ServersPerLeaf    int `json:"serversPerLeaf"`
	SpinePortCapacity int `json:"spinePortCapacity"`
	LeafPortCapacity  int `json:"leafPortCapacity"`
}

// DefaultSpineLeafConfig is a mid-size fabric: 4 spines, 8 leaves, ten
// servers per leaf.
var DefaultSpineLeafConfig = SpineLeafConfig{
	NumSpine:          4,
	NumLeaf:           8,
	ServersPerLeaf:    10,
	SpinePortCapacity: 8,
	LeafPortCapacity:  24,
}

// BuildSpineLeaf constructs the spine-leaf fabric graph. The full mesh
// makes port capacities hard constraints; odd row counts merely cost
// redundancy and only warn.
func BuildSpineLeaf(logger *zap.Logger, cfg SpineLeafConfig) (*graph.Graph, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if cfg.NumSpine%2 != 0 {
		logger.Warn("odd spine count reduces redundancy", zap.Int("numSpine", cfg.NumSpine))
	}
	if cfg.NumLeaf%2 != 0 {
		logger.Warn("odd leaf count reduces redundancy", zap.Int("numLeaf", cfg.NumLeaf))
	}
	if cfg.SpinePortCapacity < cfg.NumLeaf {
		return nil, errors.Errorf("spine port capacity %d below leaf count %d", cfg.SpinePortCapacity, cfg.NumLeaf)
	}
	if required := cfg.NumSpine + cfg.ServersPerLeaf; cfg.LeafPortCapacity < required {
		return nil, errors.Errorf("leaf port capacity %d below required %d (spine uplinks plus servers)",
			cfg.LeafPortCapacity, required)
	}

	g := graph.New()

	for i := 0; i < cfg.NumSpine; i++ {
		g.AddNode(fmt.Sprintf("spine%d", i))
	}
	for i := 0; i < cfg.NumLeaf; i++ {
		g.AddNode(fmt.Sprintf("leaf%d", i))
	}

	for s := 0; s < cfg.NumSpine; s++ {
		spine := fmt.Sprintf("spine%d", s)
		for l := 0; l < cfg.NumLeaf; l++ {
			g.AddEdge(spine, fmt.Sprintf("leaf%d", l))
		}
	}

	for l := 0; l < cfg.NumLeaf; l++ {
		leaf := fmt.Sprintf("leaf%d", l)
		for s := 0; s < cfg.ServersPerLeaf; s++ {
			srv := fmt.Sprintf("srv%d_%d", l, s)
			g.AddNode(srv)
			g.AddEdge(leaf, srv)
		}
	}

	logger.Info("built spine-leaf topology",
		zap.Int("nodes", g.NumNodes()), zap.Int("edges", g.NumEdges()),
		zap.Int("numSpine", cfg.NumSpine), zap.Int("numLeaf", cfg.NumLeaf),
		zap.Int("serversPerLeaf", cfg.ServersPerLeaf))
	return g, nil
}
