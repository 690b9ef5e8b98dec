package nav

import "github.com/vango-dev/fractals/pkg/routepath"

// routeNode is a node in the route tree. Route paths are static, so each
// node matches exactly one segment.
type routeNode struct {
	// segment is the path segment this node matches
	segment string

	// route is the index of the route registered at this node, or -1
	route int

	// children are the static segment children
	children []*routeNode
}

func newRouteNode(segment string) *routeNode {
	return &routeNode{segment: segment, route: -1}
}

// findChild finds a child node with an exact segment match.
func (n *routeNode) findChild(segment string) *routeNode {
	for _, child := range n.children {
		if child.segment == segment {
			return child
		}
	}
	return nil
}

// addChild adds or retrieves a child node for the given segment.
func (n *routeNode) addChild(segment string) *routeNode {
	if child := n.findChild(segment); child != nil {
		return child
	}
	child := newRouteNode(segment)
	n.children = append(n.children, child)
	return child
}

// insert registers route index idx at path. The first registration of a
// path wins; insert reports false when the node was already taken by a
// different route.
func (n *routeNode) insert(path string, idx int) bool {
	current := n
	for _, seg := range routepath.Segments(path) {
		current = current.addChild(seg)
	}
	if current.route >= 0 {
		return current.route == idx
	}
	current.route = idx
	return true
}

// match returns the route index registered at the canonical path.
func (n *routeNode) match(path string) (int, bool) {
	current := n
	for _, seg := range routepath.Segments(path) {
		current = current.findChild(seg)
		if current == nil {
			return -1, false
		}
	}
	if current.route < 0 {
		return -1, false
	}
	return current.route, true
}
