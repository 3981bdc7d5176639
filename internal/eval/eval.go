// Package eval derives calculatedProbability for every node of a fault or
// event tree. A single call recomputes the whole tree from scratch; nothing
// is cached across passes.
package eval

import (
	"math"
	"strings"

	"faulttree/fta/internal/tree"
)

// Recalculate runs the evaluator selected by the document's mode over its
// tree. Unknown modes fall back to FTA.
func Recalculate(doc *tree.Document) {
	if doc.Tree == nil {
		return
	}
	if strings.EqualFold(doc.Mode, tree.ModeETA) {
		ETA(doc.Tree)
	} else {
		FTA(doc.Tree)
	}
}

// pass carries the state of one FTA evaluation: a memo of resolved values
// and the set of ids on the active recursion path. Both live only as long
// as the pass, keeping the evaluator reentrant.
type pass struct {
	root     *tree.Node
	memo     map[string]float64
	visiting map[string]bool
}

// FTA evaluates bottom-up: a node's value is its children combined through
// its logic gate, then folded with its link targets. Cycles through links
// are broken by substituting the re-entered node's base probability for
// that occurrence, an approximation rather than a fixed-point solve.
func FTA(root *tree.Node) {
	p := &pass{
		root:     root,
		memo:     make(map[string]float64),
		visiting: make(map[string]bool),
	}
	p.eval(root)
}

func (p *pass) eval(n *tree.Node) float64 {
	if v, ok := p.memo[n.ID]; ok {
		return v
	}
	if p.visiting[n.ID] {
		// Re-entered while still unresolved: use the base probability for
		// this occurrence. The outer frame overwrites the memo on completion.
		v := n.Probability
		p.memo[n.ID] = v
		return v
	}
	p.visiting[n.ID] = true

	var base float64
	if len(n.Children) == 0 {
		base = n.Probability
	} else {
		values := make([]float64, len(n.Children))
		for i, c := range n.Children {
			values[i] = p.eval(c)
		}
		if gate(n) == "AND" {
			base = Round(product(values))
		} else {
			base = Round(1 - complementProduct(values))
		}
	}

	// Resolve links in declaration order; dangling targets are skipped.
	var andVals, orVals []float64
	for _, l := range n.Links {
		if l.TargetID == "" {
			continue
		}
		target := p.root.Find(l.TargetID)
		if target == nil {
			continue
		}
		v := p.eval(target)
		if strings.ToUpper(l.Relation) == "AND" {
			andVals = append(andVals, v)
		} else {
			orVals = append(orVals, v)
		}
	}

	// AND links multiply into the base before any OR union, regardless of
	// the order links were declared in.
	if len(andVals) > 0 {
		base = Round(base * product(andVals))
	}
	if len(orVals) > 0 {
		base = Round(1 - (1-base)*complementProduct(orVals))
	}

	base = Round(base)
	p.memo[n.ID] = base
	delete(p.visiting, n.ID)
	n.Calculated = &base
	return base
}

// gate normalizes a node's logic gate; empty or unrecognized values mean OR.
func gate(n *tree.Node) string {
	g := strings.ToUpper(strings.TrimSpace(n.LogicGate))
	if g == "AND" {
		return "AND"
	}
	return "OR"
}

// ETA evaluates top-down: each node's value is the cumulative product of
// base probabilities along its ancestor chain. Gates and links are ignored.
// Ownership edges are acyclic, so no guard is needed.
func ETA(root *tree.Node) {
	etaWalk(root, 1.0)
}

func etaWalk(n *tree.Node, parentValue float64) {
	v := Round(parentValue * n.Probability)
	n.Calculated = &v
	for _, c := range n.Children {
		etaWalk(c, v)
	}
}

// Round rounds to 6 decimal digits, the precision every stored
// calculatedProbability carries.
func Round(v float64) float64 {
	return math.Round(v*1e6) / 1e6
}

func product(values []float64) float64 {
	result := 1.0
	for _, v := range values {
		result *= v
	}
	return result
}

func complementProduct(values []float64) float64 {
	result := 1.0
	for _, v := range values {
		result *= 1 - v
	}
	return result
}

// ZeroProbabilityIDs returns, in pre-order, the ids of all nodes whose base
// or calculated probability is exactly zero. A node not yet evaluated counts
// its base probability as the calculated one.
func ZeroProbabilityIDs(root *tree.Node) []string {
	var ids []string
	var walk func(n *tree.Node)
	walk = func(n *tree.Node) {
		calc := n.Probability
		if n.Calculated != nil {
			calc = *n.Calculated
		}
		if n.Probability == 0 || calc == 0 {
			ids = append(ids, n.ID)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(root)
	return ids
}
