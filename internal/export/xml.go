// Package export renders an evaluated document for external consumers. It
// only reads node fields; no recalculation happens here.
package export

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"

	"faulttree/fta/internal/tree"
)

type xmlLink struct {
	XMLName  xml.Name `xml:"Link"`
	Target   string   `xml:"target,attr"`
	Relation string   `xml:"relation,attr"`
	Name     string   `xml:",chardata"`
}

type xmlLinks struct {
	XMLName xml.Name `xml:"Links"`
	Links   []xmlLink
}

type xmlNode struct {
	XMLName   xml.Name `xml:"Node"`
	Name      string   `xml:"name,attr"`
	Type      string   `xml:"type,attr"`
	BaseProb  string   `xml:"baseProbability,attr"`
	CalcProb  string   `xml:"calculatedProbability,attr"`
	LogicGate string   `xml:"logicGate,attr"`
	Notes     string   `xml:"Notes,omitempty"`
	Links     *xmlLinks
	Children  []xmlNode
}

type xmlFaultTree struct {
	XMLName xml.Name `xml:"FaultTree"`
	Root    xmlNode
}

// XML serializes the tree as a FaultTree document. Link targets are
// annotated with the target node's name, resolved against the whole tree.
func XML(doc *tree.Document) ([]byte, error) {
	out, err := xml.MarshalIndent(xmlFaultTree{Root: buildXMLNode(doc.Tree, doc.Tree)}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling XML: %w", err)
	}
	return append([]byte(xml.Header), append(out, '\n')...), nil
}

// XMLFile writes the XML serialization to path.
func XMLFile(doc *tree.Document, path string) error {
	data, err := XML(doc)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing XML: %w", err)
	}
	return nil
}

func buildXMLNode(root, n *tree.Node) xmlNode {
	out := xmlNode{
		Name:      n.Name,
		Type:      n.Type,
		BaseProb:  strconv.FormatFloat(n.Probability, 'g', -1, 64),
		LogicGate: n.LogicGate,
		Notes:     n.Notes,
	}
	if n.Calculated != nil {
		out.CalcProb = strconv.FormatFloat(*n.Calculated, 'g', -1, 64)
	}
	if len(n.Links) > 0 {
		links := &xmlLinks{}
		for _, l := range n.Links {
			xl := xmlLink{Target: l.TargetID, Relation: l.Relation}
			if target := root.Find(l.TargetID); target != nil {
				xl.Name = target.Name
			}
			links.Links = append(links.Links, xl)
		}
		out.Links = links
	}
	for _, c := range n.Children {
		out.Children = append(out.Children, buildXMLNode(root, c))
	}
	return out
}
