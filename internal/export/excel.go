package export

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"faulttree/fta/internal/tree"
)

// Depth fill colors, cycled for trees deeper than the palette.
var depthColors = []string{"E6F3FF", "FFF4E6", "F0E6FF", "E6FFE6", "FFE6F0", "FFFFE6"}

const (
	maxColWidth    = 50.0
	excelRowHeight = 45.0
)

// Excel writes the tree to an xlsx workbook in hierarchical column layout:
// the root in column A, its children in column B, and so on. The first child
// shares its parent's row; later siblings start new rows.
func Excel(doc *tree.Document, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "FTA"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	w := &excelWriter{f: f, sheet: sheet, row: 1, colWidths: map[int]float64{}}
	if err := w.writeNode(doc.Tree, doc.Tree, 0); err != nil {
		return err
	}

	for col, width := range w.colWidths {
		name, err := excelize.ColumnNumberToName(col)
		if err != nil {
			continue
		}
		if width > maxColWidth {
			width = maxColWidth
		}
		if err := f.SetColWidth(sheet, name, name, width); err != nil {
			return fmt.Errorf("setting column width: %w", err)
		}
	}
	for r := 1; r <= w.row; r++ {
		if err := f.SetRowHeight(sheet, r, excelRowHeight); err != nil {
			return fmt.Errorf("setting row height: %w", err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

type excelWriter struct {
	f         *excelize.File
	sheet     string
	row       int
	colWidths map[int]float64
}

func (w *excelWriter) writeNode(root, n *tree.Node, depth int) error {
	col := depth + 1
	cell, err := excelize.CoordinatesToCellName(col, w.row)
	if err != nil {
		return fmt.Errorf("resolving cell: %w", err)
	}

	value := cellText(root, n)
	if err := w.f.SetCellValue(w.sheet, cell, value); err != nil {
		return fmt.Errorf("writing cell %s: %w", cell, err)
	}

	styleID, err := w.cellStyle(depth)
	if err != nil {
		return err
	}
	if err := w.f.SetCellStyle(w.sheet, cell, cell, styleID); err != nil {
		return fmt.Errorf("styling cell %s: %w", cell, err)
	}

	if width := widestLine(value) + 2; width > w.colWidths[col] {
		w.colWidths[col] = width
	}

	for i, child := range n.Children {
		if i > 0 {
			w.row++
		}
		if err := w.writeNode(root, child, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func (w *excelWriter) cellStyle(depth int) (int, error) {
	style := &excelize.Style{
		Alignment: &excelize.Alignment{WrapText: true, Vertical: "top"},
		Fill: excelize.Fill{
			Type:    "pattern",
			Pattern: 1,
			Color:   []string{depthColors[depth%len(depthColors)]},
		},
	}
	if depth == 0 {
		style.Font = &excelize.Font{Bold: true, Size: 11}
	}
	id, err := w.f.NewStyle(style)
	if err != nil {
		return 0, fmt.Errorf("creating style: %w", err)
	}
	return id, nil
}

// cellText assembles the multi-line cell body: name, detail summary, notes,
// and resolved links.
func cellText(root, n *tree.Node) string {
	var b strings.Builder
	b.WriteString(n.Name)

	details := []string{
		"Type: " + n.Type,
		fmt.Sprintf("P: %g", n.Probability),
	}
	if n.Calculated != nil {
		details = append(details, fmt.Sprintf("Calc: %g", *n.Calculated))
	}
	if n.LogicGate != "" {
		details = append(details, "Gate: "+n.LogicGate)
	}
	fmt.Fprintf(&b, "\n(%s)", strings.Join(details, ", "))

	if n.Notes != "" {
		b.WriteString("\nNotes: " + n.Notes)
	}
	if len(n.Links) > 0 {
		var parts []string
		for _, l := range n.Links {
			label := l.TargetID
			if target := root.Find(l.TargetID); target != nil {
				label = target.Name
			}
			parts = append(parts, l.Relation+"→"+label)
		}
		b.WriteString("\nLinks: " + strings.Join(parts, ", "))
	}
	return b.String()
}

func widestLine(s string) float64 {
	widest := 0
	for _, line := range strings.Split(s, "\n") {
		if len(line) > widest {
			widest = len(line)
		}
	}
	return float64(widest)
}
