// Package export serializes an annotated topology graph to node-link
// JSON, the interchange shape downstream config generators consume.
package export

import (
	"encoding/json"
	"io"

	"github.com/pkg/errors"

	"github.com/dcnetlab/dcipam/graph"
)

// Node is one graph node with the attributes an allocation pass wrote.
type Node struct {
	ID    string                 `json:"id"`
	Attrs map[string]interface{} `json:"attrs,omitempty"`
}

// Link is one undirected edge. Source and Target carry no direction; they
// record which endpoint appeared first.
type Link struct {
	Source string                 `json:"source"`
	Target string                 `json:"target"`
	Attrs  map[string]interface{} `json:"attrs,omitempty"`
}

// Document is the node-link form of a graph.
type Document struct {
	Directed bool   `json:"directed"`
	Nodes    []Node `json:"nodes"`
	Links    []Link `json:"links"`
}

// FromGraph flattens a graph into node-link form. Nodes keep insertion
// order; links appear once each, ordered by the first endpoint's position
// and the adjacency order beneath it.
func FromGraph(g *graph.Graph) *Document {
	doc := &Document{
		Nodes: make([]Node, 0, g.NumNodes()),
		Links: make([]Link, 0, g.NumEdges()),
	}

	for _, id := range g.Nodes() {
		node := Node{ID: id}
		if attrs := g.Node(id); len(attrs) > 0 {
			node.Attrs = attrs
		}
		doc.Nodes = append(doc.Nodes, node)
	}

	seen := make(map[[2]string]struct{}, g.NumEdges())
	for _, u := range g.Nodes() {
		for _, v := range g.Neighbors(u) {
			key := [2]string{u, v}
			if u > v {
				key = [2]string{v, u}
			}
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}

			link := Link{Source: u, Target: v}
			if attrs := g.Edge(u, v); len(attrs) > 0 {
				link.Attrs = attrs
			}
			doc.Links = append(doc.Links, link)
		}
	}

	return doc
}

// Write encodes the graph as indented node-link JSON.
func Write(w io.Writer, g *graph.Graph) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(FromGraph(g)); err != nil {
		return errors.Wrap(err, "encoding node-link document")
	}
	return nil
}
