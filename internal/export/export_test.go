package export

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	"faulttree/fta/internal/eval"
	"faulttree/fta/internal/tree"
)

func sampleDoc() *tree.Document {
	doc := &tree.Document{
		Title: "Sample",
		Date:  "2025-01-01",
		Mode:  tree.ModeFTA,
		Tree: &tree.Node{
			ID: "root", Name: "Top Event", Type: "Root", Probability: 1.0, LogicGate: "AND",
			Children: []*tree.Node{
				{ID: "root_0", Name: "Valve Stuck", Type: "Event", Probability: 0.5, LogicGate: "OR",
					Notes: "inspect quarterly",
					Links: []tree.Link{{TargetID: "root_1", Relation: "AND"}}},
				{ID: "root_1", Name: "Power Loss", Type: "Event", Probability: 0.4, LogicGate: "OR"},
			},
		},
	}
	eval.Recalculate(doc)
	return doc
}

func TestXML_Structure(t *testing.T) {
	data, err := XML(sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	for _, want := range []string{
		"<FaultTree>",
		`name="Top Event"`,
		`logicGate="AND"`,
		`baseProbability="0.5"`,
		`<Link target="root_1" relation="AND">Power Loss</Link>`,
		"<Notes>inspect quarterly</Notes>",
	} {
		if !strings.Contains(out, want) {
			t.Errorf("XML missing %q\n%s", want, out)
		}
	}
}

func TestXML_CalculatedCarried(t *testing.T) {
	data, err := XML(sampleDoc())
	if err != nil {
		t.Fatal(err)
	}
	// root = AND(0.5 linked AND 0.4 -> 0.2, 0.4) = 0.08
	if !strings.Contains(string(data), `calculatedProbability="0.08"`) {
		t.Errorf("root calculated probability missing:\n%s", data)
	}
}

func TestRows_PreorderWithResolvedLinks(t *testing.T) {
	rows := Rows(sampleDoc())
	if len(rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(rows))
	}
	if rows[0].ID != "root" || rows[1].ID != "root_0" || rows[2].ID != "root_1" {
		t.Errorf("rows out of pre-order: %v", rows)
	}
	if rows[1].Depth != 1 {
		t.Errorf("depth = %d, want 1", rows[1].Depth)
	}
	if len(rows[1].LinkTargets) != 1 || rows[1].LinkTargets[0] != "AND→Power Loss" {
		t.Errorf("link targets = %v, want resolved name", rows[1].LinkTargets)
	}
	if rows[1].Calculated == nil {
		t.Error("rows should carry the calculated probability without recalculating")
	}
}

func TestRows_DanglingLinkKeepsID(t *testing.T) {
	doc := sampleDoc()
	doc.Tree.Children[0].Links = []tree.Link{{TargetID: "ghost", Relation: "OR"}}
	rows := Rows(doc)
	if rows[1].LinkTargets[0] != "OR→ghost" {
		t.Errorf("dangling link should fall back to the id, got %v", rows[1].LinkTargets)
	}
}

func TestExcel_HierarchicalLayout(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.xlsx")
	if err := Excel(sampleDoc(), path); err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	a1, err := f.GetCellValue("FTA", "A1")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(a1, "Top Event") {
		t.Errorf("A1 = %q, want the root node", a1)
	}

	b1, _ := f.GetCellValue("FTA", "B1")
	if !strings.Contains(b1, "Valve Stuck") {
		t.Errorf("B1 = %q, want the first child on the parent's row", b1)
	}
	if !strings.Contains(b1, "Notes: inspect quarterly") {
		t.Errorf("B1 should include notes, got %q", b1)
	}
	if !strings.Contains(b1, "Links: AND→Power Loss") {
		t.Errorf("B1 should include resolved links, got %q", b1)
	}

	b2, _ := f.GetCellValue("FTA", "B2")
	if !strings.Contains(b2, "Power Loss") {
		t.Errorf("B2 = %q, want the second sibling on the next row", b2)
	}
}
