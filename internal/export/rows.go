package export

import (
	"faulttree/fta/internal/tree"
)

// Row is one node's reporting view: stored and derived probabilities, gate,
// notes, and the resolved names of its link targets.
type Row struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Type        string   `json:"type"`
	Depth       int      `json:"depth"`
	Probability float64  `json:"probability"`
	Calculated  *float64 `json:"calculatedProbability,omitempty"`
	LogicGate   string   `json:"logicGate"`
	Notes       string   `json:"notes,omitempty"`
	LinkTargets []string `json:"linkTargets,omitempty"`
}

// Rows flattens the tree into report rows in pre-order. Dangling link
// targets are reported by id since there is no name to resolve.
func Rows(doc *tree.Document) []Row {
	var rows []Row
	var walk func(n *tree.Node, depth int)
	walk = func(n *tree.Node, depth int) {
		row := Row{
			ID:          n.ID,
			Name:        n.Name,
			Type:        n.Type,
			Depth:       depth,
			Probability: n.Probability,
			Calculated:  n.Calculated,
			LogicGate:   n.LogicGate,
			Notes:       n.Notes,
		}
		for _, l := range n.Links {
			label := l.TargetID
			if target := doc.Tree.Find(l.TargetID); target != nil {
				label = target.Name
			}
			row.LinkTargets = append(row.LinkTargets, l.Relation+"→"+label)
		}
		rows = append(rows, row)
		for _, c := range n.Children {
			walk(c, depth+1)
		}
	}
	walk(doc.Tree, 0)
	return rows
}
