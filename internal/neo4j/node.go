// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package neo4j

// Node is a labeled object stored in the graph backend. The REST API
// returns both data properties and hypermedia action links for every
// node; a Node keeps the two apart and exposes each by name.
type Node struct {
	data    map[string]any
	actions map[string]string
}

// newNode splits a raw node response into data properties and action
// links. Everything outside the "data" member that carries a string
// value is treated as an action link.
func newNode(raw map[string]any) *Node {
	n := &Node{
		data:    map[string]any{},
		actions: map[string]string{},
	}
	for key, value := range raw {
		if key == "data" {
			if props, ok := value.(map[string]any); ok {
				n.data = props
			}
			continue
		}
		if link, ok := value.(string); ok {
			n.actions[key] = link
		}
	}
	return n
}

// Self returns the canonical URL for this node.
func (n *Node) Self() string { return n.actions["self"] }

// ActionLink returns the URL for a named hypermedia action.
func (n *Node) ActionLink(name string) (string, bool) {
	link, ok := n.actions[name]
	return link, ok
}

// Property returns a data property by name.
func (n *Node) Property(name string) (any, bool) {
	value, ok := n.data[name]
	return value, ok
}

// ExternalID returns the opaque identifier the storage layer assigned
// to this node, or the empty string when the property is missing.
func (n *Node) ExternalID() string {
	if value, ok := n.data[externalIDProperty]; ok {
		if id, ok := value.(string); ok {
			return id
		}
	}
	return ""
}
