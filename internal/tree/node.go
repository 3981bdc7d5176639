package tree

import (
	"regexp"
	"strings"
)

// Link is a cross-reference to another node in the same tree, resolved by
// id lookup at evaluation time. The target may be an ancestor, the node
// itself, or missing entirely.
type Link struct {
	TargetID string `json:"target_id"`
	Relation string `json:"relation"` // "AND" or "OR"
}

// Node is one event in a fault/event tree. Children are exclusively owned;
// Links are weak references.
type Node struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Probability float64  `json:"probability"`
	LogicGate   string   `json:"logicGate"` // "AND" or "OR", only meaningful with children
	Notes       string   `json:"notes"`
	Children    []*Node  `json:"children"`
	Links       []Link   `json:"links"`
	Calculated  *float64 `json:"calculatedProbability,omitempty"`
}

// NodeRef is a flattened (id, name) pair.
type NodeRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// NewRoot returns the default single-node tree a fresh analysis starts with.
func NewRoot() *Node {
	return &Node{
		ID:          "root",
		Name:        "RootEvent",
		Type:        "Root",
		Probability: 1.0,
		LogicGate:   "OR",
		Children:    []*Node{},
		Links:       []Link{},
	}
}

var whitespaceRE = regexp.MustCompile(`\s+`)

// SanitizeName collapses runs of whitespace to single spaces and trims.
func SanitizeName(s string) string {
	return strings.TrimSpace(whitespaceRE.ReplaceAllString(s, " "))
}

// Find returns the first node with the given id in pre-order, or nil.
func (n *Node) Find(id string) *Node {
	if n == nil {
		return nil
	}
	if n.ID == id {
		return n
	}
	for _, c := range n.Children {
		if found := c.Find(id); found != nil {
			return found
		}
	}
	return nil
}

// Insert appends child as the last child of the node identified by parentID.
// If parentID does not resolve anywhere in the tree the call is a silent
// no-op and the child is discarded. That matches the historical behavior of
// the editor; callers that care should Find the parent first.
func (n *Node) Insert(parentID string, child *Node) {
	if parent := n.Find(parentID); parent != nil {
		parent.Children = append(parent.Children, child)
	}
}

// Delete removes every direct child matching id from every node in the tree,
// taking the matched child's entire subtree with it. No-op if id is absent.
func (n *Node) Delete(id string) {
	kept := n.Children[:0]
	for _, c := range n.Children {
		if c.ID != id {
			kept = append(kept, c)
		}
	}
	n.Children = kept
	for _, c := range n.Children {
		c.Delete(id)
	}
}

// NodeUpdate holds optional replacement fields for Update. Nil fields are
// left untouched.
type NodeUpdate struct {
	Name        *string
	Type        *string
	Probability *float64
	LogicGate   *string
	Notes       *string
	Links       *[]Link
}

// Update merges upd into the node identified by id. Returns false if no such
// node exists.
func (n *Node) Update(id string, upd NodeUpdate) bool {
	node := n.Find(id)
	if node == nil {
		return false
	}
	if upd.Name != nil {
		node.Name = SanitizeName(*upd.Name)
	}
	if upd.Type != nil {
		node.Type = *upd.Type
	}
	if upd.Probability != nil {
		node.Probability = *upd.Probability
	}
	if upd.LogicGate != nil {
		node.LogicGate = strings.ToUpper(strings.TrimSpace(*upd.LogicGate))
	}
	if upd.Notes != nil {
		node.Notes = *upd.Notes
	}
	if upd.Links != nil {
		node.Links = *upd.Links
	}
	return true
}

// Flatten returns all (id, name) pairs in pre-order. The slice is rebuilt on
// every call.
func (n *Node) Flatten() []NodeRef {
	var refs []NodeRef
	n.walk(func(node *Node) {
		refs = append(refs, NodeRef{ID: node.ID, Name: node.Name})
	})
	return refs
}

// Count returns the number of nodes in the subtree rooted at n.
func (n *Node) Count() int {
	total := 0
	n.walk(func(*Node) { total++ })
	return total
}

func (n *Node) walk(fn func(*Node)) {
	fn(n)
	for _, c := range n.Children {
		c.walk(fn)
	}
}
