// Package graph implements the undirected topology graph shared by the
// topology generators, the allocation engine and the exporters.
//
// Node and adjacency iteration follow insertion order. Allocation results
// depend on iteration order (the endpoint pass consumes VLAN and address
// cursors as it walks the graph), so generators must add nodes and edges
// in a stable order to get reproducible output.
package graph

// Attrs is the open-ended attribute bag carried by every node and edge.
type Attrs map[string]interface{}

type edgeKey struct {
	u, v string
}

// newEdgeKey normalizes an undirected node pair so both directions map to
// the same edge attributes.
func newEdgeKey(u, v string) edgeKey {
	if u > v {
		u, v = v, u
	}
	return edgeKey{u: u, v: v}
}

// Graph is an undirected graph keyed by node identifier.
type Graph struct {
	nodes []string
	attrs map[string]Attrs
	adj   map[string][]string
	edges map[edgeKey]Attrs
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		attrs: make(map[string]Attrs),
		adj:   make(map[string][]string),
		edges: make(map[edgeKey]Attrs),
	}
}

// AddNode adds a node with an empty attribute bag. Adding an existing node
// is a no-op.
func (g *Graph) AddNode(id string) {
	if _, ok := g.attrs[id]; ok {
		return
	}
	g.nodes = append(g.nodes, id)
	g.attrs[id] = Attrs{}
	g.adj[id] = nil
}

// AddNodes adds every given node in order.
func (g *Graph) AddNodes(ids ...string) {
	for _, id := range ids {
		g.AddNode(id)
	}
}

// AddEdge adds an undirected edge, creating missing endpoints. Adding an
// existing edge is a no-op.
func (g *Graph) AddEdge(u, v string) {
	g.AddNode(u)
	g.AddNode(v)

	key := newEdgeKey(u, v)
	if _, ok := g.edges[key]; ok {
		return
	}
	g.edges[key] = Attrs{}
	g.adj[u] = append(g.adj[u], v)
	g.adj[v] = append(g.adj[v], u)
}

// HasNode reports whether the node exists.
func (g *Graph) HasNode(id string) bool {
	_, ok := g.attrs[id]
	return ok
}

// HasEdge reports whether the edge exists, in either direction.
func (g *Graph) HasEdge(u, v string) bool {
	_, ok := g.edges[newEdgeKey(u, v)]
	return ok
}

// Nodes returns all node identifiers in insertion order.
func (g *Graph) Nodes() []string {
	out := make([]string, len(g.nodes))
	copy(out, g.nodes)
	return out
}

// Neighbors returns the neighbors of a node in edge insertion order.
func (g *Graph) Neighbors(id string) []string {
	adj := g.adj[id]
	out := make([]string, len(adj))
	copy(out, adj)
	return out
}

// Degree returns the number of neighbors of a node.
func (g *Graph) Degree(id string) int {
	return len(g.adj[id])
}

// Node returns the attribute bag of a node, or nil if the node does not
// exist. The returned map is live; writes land on the graph.
func (g *Graph) Node(id string) Attrs {
	return g.attrs[id]
}

// Edge returns the attribute bag of an edge, or nil if the edge does not
// exist. Both directions return the same map.
func (g *Graph) Edge(u, v string) Attrs {
	return g.edges[newEdgeKey(u, v)]
}

// NumNodes returns the node count.
func (g *Graph) NumNodes() int {
	return len(g.nodes)
}

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int {
	return len(g.edges)
}
