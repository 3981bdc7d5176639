// Package render turns an evaluated tree into a Graphviz diagram. It expects
// calculatedProbability to be populated on every node; it never runs the
// evaluator itself.
package render

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"faulttree/fta/internal/tree"
)

// Options controls diagram generation.
type Options struct {
	Title    string
	Date     string
	HideZero bool // drop nodes whose calculated probability is exactly 0
}

type edge struct {
	from, to string
	label    string
	isLink   bool
}

// BuildDOT produces Graphviz DOT text for the document's tree. Ownership
// edges are solid and ordered; link edges are dashed, non-constraining, and
// drawn after the tree so layout follows the hierarchy.
func BuildDOT(doc *tree.Document, opts Options) string {
	title := opts.Title
	if title == "" {
		title = doc.Title
	}
	date := opts.Date
	if date == "" {
		date = doc.Date
	}

	nodes, edges, order := gather(doc.Tree, opts.HideZero)

	var b strings.Builder
	b.WriteString("digraph G {\n")
	b.WriteString("  labelloc=\"t\";\n")
	fmt.Fprintf(&b, "  label=%q;\n", title+"\\nDate: "+date)
	b.WriteString("  rankdir=LR;\n")
	b.WriteString("  graph [nodesep=0.12, ranksep=0.5, margin=0.05, overlap=false];\n")
	b.WriteString("  node [shape=box, style=filled, fontname=\"Helvetica\"];\n")
	b.WriteString("  edge [fontname=\"Helvetica\", arrowsize=0.6];\n")

	for _, id := range order {
		n := nodes[id]
		fmt.Fprintf(&b, "  %s [label=%q, fillcolor=%q];\n",
			dotID(id), nodeLabel(n), fillColor(n))
	}

	// Keep siblings at the same depth aligned and ordered.
	for _, depthIDs := range sameRankGroups(doc.Tree, nodes) {
		if len(depthIDs) < 2 {
			continue
		}
		b.WriteString("  { rank=same; ")
		for i := 0; i+1 < len(depthIDs); i++ {
			fmt.Fprintf(&b, "%s -> %s [style=invis]; ", dotID(depthIDs[i]), dotID(depthIDs[i+1]))
		}
		b.WriteString("}\n")
	}

	for _, e := range edges {
		if e.isLink {
			fmt.Fprintf(&b, "  %s -> %s [style=dashed, constraint=false, color=\"blue\", label=%q];\n",
				dotID(e.from), dotID(e.to), e.label)
		} else {
			fmt.Fprintf(&b, "  %s -> %s [style=solid, color=\"black\"];\n", dotID(e.from), dotID(e.to))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

// gather walks the tree twice: first the ownership hierarchy to fix node
// membership and order, then all links, so a link can surface a node that
// the hide-zero filter would otherwise keep but never reorder the layout.
func gather(root *tree.Node, hideZero bool) (map[string]*tree.Node, []edge, []string) {
	nodes := make(map[string]*tree.Node)
	var edges []edge
	var order []string

	var walkTree func(n *tree.Node)
	walkTree = func(n *tree.Node) {
		if _, seen := nodes[n.ID]; seen {
			return
		}
		if hideZero && isZero(n) {
			return
		}
		nodes[n.ID] = n
		order = append(order, n.ID)
		for _, c := range n.Children {
			if hideZero && isZero(c) {
				continue
			}
			edges = append(edges, edge{from: n.ID, to: c.ID})
			walkTree(c)
		}
	}
	walkTree(root)

	var walkLinks func(n *tree.Node)
	walkLinks = func(n *tree.Node) {
		if _, ok := nodes[n.ID]; ok {
			for _, l := range n.Links {
				if l.TargetID == "" {
					continue
				}
				target := root.Find(l.TargetID)
				if target == nil {
					continue
				}
				if _, ok := nodes[l.TargetID]; !ok {
					if hideZero && isZero(target) {
						continue
					}
					nodes[l.TargetID] = target
					order = append(order, l.TargetID)
				}
				edges = append(edges, edge{from: n.ID, to: l.TargetID, label: l.Relation, isLink: true})
			}
		}
		for _, c := range n.Children {
			walkLinks(c)
		}
	}
	walkLinks(root)

	return nodes, edges, order
}

func isZero(n *tree.Node) bool {
	return n.Calculated != nil && *n.Calculated == 0.0
}

// fillColor maps calculated probability to the highlight palette: certain
// events pink, impossible ones light blue, high-risk (>= 0.7) light yellow.
func fillColor(n *tree.Node) string {
	if n.Calculated == nil {
		return "white"
	}
	switch cp := *n.Calculated; {
	case cp == 1.0:
		return "pink"
	case cp == 0.0:
		return "lightblue"
	case cp >= 0.7:
		return "lightyellow"
	default:
		return "white"
	}
}

func nodeLabel(n *tree.Node) string {
	calc := "N/A"
	if n.Calculated != nil {
		calc = fmt.Sprintf("%.3f", *n.Calculated)
	}
	gatePrefix := ""
	if len(n.Children) > 0 && n.LogicGate != "" {
		gatePrefix = "Gate: " + n.LogicGate + " | "
	}
	return fmt.Sprintf("%s\n%sP:%.3f | P_calc:%s", n.Name, gatePrefix, n.Probability, calc)
}

// sameRankGroups buckets included nodes by ownership depth, preserving
// pre-order within each bucket.
func sameRankGroups(root *tree.Node, included map[string]*tree.Node) [][]string {
	byDepth := make(map[int][]string)
	var walk func(n *tree.Node, depth int)
	walk = func(n *tree.Node, depth int) {
		if _, ok := included[n.ID]; ok {
			byDepth[depth] = append(byDepth[depth], n.ID)
		}
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(root, 0)

	depths := make([]int, 0, len(byDepth))
	for d := range byDepth {
		depths = append(depths, d)
	}
	sort.Ints(depths)

	groups := make([][]string, 0, len(depths))
	for _, d := range depths {
		groups = append(groups, byDepth[d])
	}
	return groups
}

var unsafeDotRE = regexp.MustCompile(`[^0-9A-Za-z_]`)

func dotID(id string) string {
	return "n_" + unsafeDotRE.ReplaceAllString(id, "_")
}
