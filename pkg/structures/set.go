// Package structures provides a few generic data structures.
package structures

import (
	"cmp"
	"slices"
)

type Set[Node comparable] map[Node]struct{}

// NewSet makes a set containing the provided nodes.
func NewSet[Node comparable](nodes ...Node) Set[Node] {
	s := make(Set[Node], len(nodes))
	for _, n := range nodes {
		s.Add(n)
	}
	return s
}

// Add adds the node to the set. If the node was already in the set, nothing changes.
func (s Set[Node]) Add(n Node) {
	s[n] = struct{}{}
}

// Has checks whether the node is already in the set.
func (s Set[Node]) Has(n Node) bool {
	_, ok := s[n]
	return ok
}

// Sorted returns the nodes of the set in ascending order.
func Sorted[Node cmp.Ordered](s Set[Node]) []Node {
	nodes := make([]Node, 0, len(s))
	for n := range s {
		nodes = append(nodes, n)
	}
	slices.Sort(nodes)
	return nodes
}
