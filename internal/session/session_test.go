package session

import (
	"path/filepath"
	"testing"

	"faulttree/fta/internal/tree"
)

func calcOf(t *testing.T, c *Core, id string) float64 {
	t.Helper()
	n := c.Document().Tree.Find(id)
	if n == nil {
		t.Fatalf("node %s not found", id)
	}
	if n.Calculated == nil {
		t.Fatalf("node %s was never evaluated", id)
	}
	return *n.Calculated
}

func TestNew_DefaultDocumentEvaluated(t *testing.T) {
	c := New()
	root := c.Document().Tree
	if root.ID != "root" || root.Probability != 1.0 {
		t.Errorf("default root = %+v", root)
	}
	if got := calcOf(t, c, "root"); got != 1.0 {
		t.Errorf("fresh root calculated = %v, want 1.0", got)
	}
}

func TestAddNode_TriggersRecalculation(t *testing.T) {
	c := New()
	if err := c.AddNode("root", &tree.Node{ID: "root_0", Name: "C1", Probability: 0.5}); err != nil {
		t.Fatal(err)
	}
	if err := c.AddNode("root", &tree.Node{ID: "root_1", Name: "C2", Probability: 0.4}); err != nil {
		t.Fatal(err)
	}
	// Default root gate is OR.
	if got := calcOf(t, c, "root"); got != 0.7 {
		t.Errorf("root after adds = %v, want 0.7", got)
	}
}

func TestUpdateNode_GateSwitchRecalculates(t *testing.T) {
	c := New()
	c.AddNode("root", &tree.Node{ID: "root_0", Probability: 0.5})
	c.AddNode("root", &tree.Node{ID: "root_1", Probability: 0.4})

	gate := "and"
	ok, err := c.UpdateNode("root", tree.NodeUpdate{LogicGate: &gate})
	if err != nil || !ok {
		t.Fatalf("update failed: ok=%v err=%v", ok, err)
	}
	if got := calcOf(t, c, "root"); got != 0.2 {
		t.Errorf("root after gate switch = %v, want 0.2", got)
	}
}

func TestUpdateNode_RejectsBadValues(t *testing.T) {
	c := New()
	bad := 1.5
	if _, err := c.UpdateNode("root", tree.NodeUpdate{Probability: &bad}); err == nil {
		t.Error("out-of-range probability must be rejected before evaluation")
	}
	gate := "XOR"
	if _, err := c.UpdateNode("root", tree.NodeUpdate{LogicGate: &gate}); err == nil {
		t.Error("unknown gate must be rejected")
	}
}

func TestDeleteNode_Recalculates(t *testing.T) {
	c := New()
	c.AddNode("root", &tree.Node{ID: "root_0", Probability: 0.5})
	c.AddNode("root", &tree.Node{ID: "root_1", Probability: 0.4})
	c.DeleteNode("root_1")
	if got := calcOf(t, c, "root"); got != 0.5 {
		t.Errorf("root after delete = %v, want 0.5", got)
	}
	if c.Document().Tree.Find("root_1") != nil {
		t.Error("deleted node still present")
	}
}

func TestSetMode_SwitchesSemantics(t *testing.T) {
	c := New()
	c.AddNode("root", &tree.Node{ID: "root_0", Probability: 0.8})
	c.AddNode("root_0", &tree.Node{ID: "root_0_0", Probability: 0.9})

	if err := c.SetMode("eta"); err != nil {
		t.Fatal(err)
	}
	if got := calcOf(t, c, "root_0_0"); got != 0.72 {
		t.Errorf("ETA leaf = %v, want 0.72", got)
	}

	if err := c.SetMode("FTA"); err != nil {
		t.Fatal(err)
	}
	if got := calcOf(t, c, "root_0"); got != 0.9 {
		t.Errorf("FTA middle node = %v, want OR over child 0.9", got)
	}

	if err := c.SetMode("bogus"); err == nil {
		t.Error("unknown mode must be rejected")
	}
}

func TestZeroIDs_RefreshedByMutations(t *testing.T) {
	c := New()
	c.AddNode("root", &tree.Node{ID: "root_0", Probability: 0.0})
	found := false
	for _, id := range c.ZeroIDs() {
		if id == "root_0" {
			found = true
		}
	}
	if !found {
		t.Fatalf("zero set %v should contain root_0", c.ZeroIDs())
	}

	prob := 0.5
	c.UpdateNode("root_0", tree.NodeUpdate{Probability: &prob})
	for _, id := range c.ZeroIDs() {
		if id == "root_0" {
			t.Errorf("zero set %v still contains repaired node", c.ZeroIDs())
		}
	}
}

func TestAddNode_SilentDiscardUnderUnknownParent(t *testing.T) {
	c := New()
	if err := c.AddNode("missing", &tree.Node{ID: "ghost", Probability: 0.5}); err != nil {
		t.Fatalf("silent no-op should not error: %v", err)
	}
	if c.Document().Tree.Find("ghost") != nil {
		t.Error("node should have been discarded")
	}
}

func TestNextChildID(t *testing.T) {
	c := New()
	id, err := c.NextChildID("root")
	if err != nil {
		t.Fatal(err)
	}
	if id != "root_0" {
		t.Errorf("first child id = %q, want root_0", id)
	}
	c.AddNode("root", &tree.Node{ID: "root_0", Probability: 0.5})
	c.AddNode("root", &tree.Node{ID: "root_3", Probability: 0.5})

	id, err = c.NextChildID("root")
	if err != nil {
		t.Fatal(err)
	}
	if id != "root_4" {
		t.Errorf("next child id = %q, want root_4 (after highest index)", id)
	}

	if _, err := c.NextChildID("missing"); err == nil {
		t.Error("unknown parent must error")
	}
}

func TestSaveAndLoad(t *testing.T) {
	c := New()
	title := "Persisted"
	c.SetMetadata(&title, nil)
	c.AddNode("root", &tree.Node{ID: "root_0", Name: "Child", Probability: 0.25})

	path := filepath.Join(t.TempDir(), "fta.json")
	if err := c.Save(path); err != nil {
		t.Fatal(err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Document().Title != "Persisted" {
		t.Errorf("title = %q", loaded.Document().Title)
	}
	if got := calcOf(t, loaded, "root_0"); got != 0.25 {
		t.Errorf("loaded child calculated = %v, want 0.25", got)
	}
	if loaded.LastSaved() != path {
		t.Errorf("last saved = %q, want %q", loaded.LastSaved(), path)
	}
}

func TestSave_NoPath(t *testing.T) {
	c := New()
	if err := c.Save(""); err == nil {
		t.Error("save without a path must fail")
	}
}
