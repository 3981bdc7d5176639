// Package session orchestrates a loaded analysis: it owns the document,
// applies structural mutations, and keeps derived state fresh by running a
// full recalculation after every change.
package session

import (
	"fmt"
	"strings"
	"time"

	"faulttree/fta/internal/eval"
	"faulttree/fta/internal/tree"
)

// Core holds the in-memory analysis state. All mutations are synchronous;
// a recalculation pass completes before the next mutation is applied.
type Core struct {
	doc       *tree.Document
	lastSaved string
	zeroIDs   []string
}

// New returns a Core with a fresh default document, already evaluated.
func New() *Core {
	c := &Core{doc: tree.NewDocument()}
	c.recalculate()
	return c
}

// Load reads a document from path and evaluates it.
func Load(path string) (*Core, error) {
	doc, err := tree.LoadFile(path)
	if err != nil {
		return nil, err
	}
	c := &Core{doc: doc, lastSaved: path}
	c.recalculate()
	return c, nil
}

// Document exposes the underlying document. Callers must not mutate it
// directly; use the Core mutation methods so derived state stays consistent.
func (c *Core) Document() *tree.Document { return c.doc }

// LastSaved returns the path of the last save or load, if any.
func (c *Core) LastSaved() string { return c.lastSaved }

// ZeroIDs returns the ids whose base or calculated probability was zero
// after the most recent recalculation, for presentation highlighting.
func (c *Core) ZeroIDs() []string { return c.zeroIDs }

// Save writes the document to path, or to the last saved path when path is
// empty.
func (c *Core) Save(path string) error {
	if path == "" {
		path = c.lastSaved
	}
	if path == "" {
		return fmt.Errorf("no file path specified")
	}
	if err := c.doc.SaveFile(path); err != nil {
		return err
	}
	c.lastSaved = path
	return nil
}

// SetMode switches between FTA and ETA semantics and recalculates.
func (c *Core) SetMode(mode string) error {
	m := strings.ToUpper(strings.TrimSpace(mode))
	if m != tree.ModeFTA && m != tree.ModeETA {
		return fmt.Errorf("unknown mode %q (want FTA or ETA)", mode)
	}
	c.doc.Mode = m
	c.recalculate()
	return nil
}

// SetMetadata updates title and/or date. Setting a title without a date
// refreshes the date to today, mirroring the editor's behavior.
func (c *Core) SetMetadata(title, date *string) {
	if title != nil {
		c.doc.Title = *title
	}
	if date != nil {
		c.doc.Date = *date
	} else if title != nil {
		c.doc.Date = time.Now().Format("2006-01-02")
	}
}

// AddNode validates and inserts a node under parentID, then recalculates.
// An unresolvable parent silently discards the node (see tree.Insert).
func (c *Core) AddNode(parentID string, n *tree.Node) error {
	n.Name = tree.SanitizeName(n.Name)
	if err := tree.Validate(n); err != nil {
		return err
	}
	c.doc.Tree.Insert(parentID, n)
	c.recalculate()
	return nil
}

// UpdateNode merges upd into the node with the given id and recalculates.
// Returns false if the node does not exist.
func (c *Core) UpdateNode(id string, upd tree.NodeUpdate) (bool, error) {
	if upd.Probability != nil && (*upd.Probability < 0 || *upd.Probability > 1) {
		return false, fmt.Errorf("probability %g outside [0,1]", *upd.Probability)
	}
	if upd.LogicGate != nil {
		g := strings.ToUpper(strings.TrimSpace(*upd.LogicGate))
		if g != "" && g != "AND" && g != "OR" {
			return false, fmt.Errorf("unknown logic gate %q", *upd.LogicGate)
		}
	}
	if upd.Links != nil {
		for _, l := range *upd.Links {
			rel := strings.ToUpper(l.Relation)
			if rel != "AND" && rel != "OR" {
				return false, fmt.Errorf("link to %q: unknown relation %q", l.TargetID, l.Relation)
			}
		}
	}
	ok := c.doc.Tree.Update(id, upd)
	if ok {
		c.recalculate()
	}
	return ok, nil
}

// DeleteNode removes the node and its subtree, then recalculates. Deleting
// an unknown id is a no-op; the pass still runs so derived state matches.
func (c *Core) DeleteNode(id string) {
	c.doc.Tree.Delete(id)
	c.recalculate()
}

// NextChildID generates the next free "{parent}_{n}" id under parentID,
// following the numbering the interactive editor used. Returns an error if
// the parent does not exist, so callers can distinguish a doomed insert.
func (c *Core) NextChildID(parentID string) (string, error) {
	parent := c.doc.Tree.Find(parentID)
	if parent == nil {
		return "", fmt.Errorf("parent node not found: %s", parentID)
	}
	maxIndex := -1
	prefix := parentID + "_"
	for _, child := range parent.Children {
		if !strings.HasPrefix(child.ID, prefix) {
			continue
		}
		var idx int
		if _, err := fmt.Sscanf(child.ID[len(prefix):], "%d", &idx); err == nil && idx > maxIndex {
			maxIndex = idx
		}
	}
	return fmt.Sprintf("%s_%d", parentID, maxIndex+1), nil
}

func (c *Core) recalculate() {
	eval.Recalculate(c.doc)
	c.zeroIDs = eval.ZeroProbabilityIDs(c.doc.Tree)
}
