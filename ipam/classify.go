package ipam

import (
	"strings"

	"github.com/dcnetlab/dcipam/graph"
)

// Topology roles derived from node naming.
const (
	RoleCore          = "core"
	RoleCollapsedCore = "collapsed-core"
	RoleAggregation   = "aggregation"
	RoleSpine         = "spine"
	RoleLeaf          = "leaf"
	RoleAccess        = "access"
	RoleEdge          = "edge"
	RoleEndpoint      = "endpoint"
	RoleServer        = "server"
)

// NodeRoles maps a role to the node identifiers bearing it, in graph
// iteration order.
type NodeRoles map[string][]string

// ClassifyNodes tags every node with a role from its identifier prefix.
// Nodes named esw* land under both access and edge: the same prefix is an
// access switch in a 3-tier topology and an edge switch in a fat-tree,
// and only the topology type passed to later stages disambiguates.
// Unrecognized prefixes are left unclassified. Pure read, no side effects.
func ClassifyNodes(g *graph.Graph) NodeRoles {
	roles := NodeRoles{
		RoleCore:          nil,
		RoleCollapsedCore: nil,
		RoleAggregation:   nil,
		RoleSpine:         nil,
		RoleLeaf:          nil,
		RoleAccess:        nil,
		RoleEdge:          nil,
		RoleEndpoint:      nil,
		RoleServer:        nil,
	}

	for _, node := range g.Nodes() {
		switch {
		case strings.HasPrefix(node, "ccsw"):
			roles[RoleCollapsedCore] = append(roles[RoleCollapsedCore], node)
		case strings.HasPrefix(node, "csw"):
			roles[RoleCore] = append(roles[RoleCore], node)
		case strings.HasPrefix(node, "asw"):
			roles[RoleAggregation] = append(roles[RoleAggregation], node)
		case strings.HasPrefix(node, "spine"):
			roles[RoleSpine] = append(roles[RoleSpine], node)
		case strings.HasPrefix(node, "leaf"):
			roles[RoleLeaf] = append(roles[RoleLeaf], node)
		case strings.HasPrefix(node, "esw"):
			roles[RoleAccess] = append(roles[RoleAccess], node)
			roles[RoleEdge] = append(roles[RoleEdge], node)
		case strings.HasPrefix(node, "ep"):
			roles[RoleEndpoint] = append(roles[RoleEndpoint], node)
		case strings.HasPrefix(node, "srv"):
			roles[RoleServer] = append(roles[RoleServer], node)
		}
	}

	return roles
}
