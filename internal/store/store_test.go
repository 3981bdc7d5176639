package store

import (
	"path/filepath"
	"testing"
	"time"

	"faulttree/fta/internal/tree"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("opening archive: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func sampleDoc(title string) *tree.Document {
	doc := tree.NewDocument()
	doc.Title = title
	doc.Tree.Children = append(doc.Tree.Children, &tree.Node{
		ID: "root_0", Name: "Child", Type: "Event", Probability: 0.5, LogicGate: "OR",
	})
	return doc
}

func TestSaveAndGet_Roundtrip(t *testing.T) {
	db := openTestDB(t)
	id, err := db.Save(sampleDoc("First"))
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if id == "" {
		t.Fatal("empty revision id")
	}

	rev, err := db.Get(id)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if rev.Title != "First" || rev.Mode != tree.ModeFTA {
		t.Errorf("metadata = %+v", rev)
	}
	if rev.NodeCount != 2 {
		t.Errorf("node count = %d, want 2", rev.NodeCount)
	}

	doc, err := rev.Document()
	if err != nil {
		t.Fatalf("decoding payload: %v", err)
	}
	if doc.Tree.Find("root_0") == nil {
		t.Error("archived tree lost its child")
	}
}

func TestGet_PrefixMatch(t *testing.T) {
	db := openTestDB(t)
	id, err := db.Save(sampleDoc("Only"))
	if err != nil {
		t.Fatal(err)
	}
	rev, err := db.Get(id[:8])
	if err != nil {
		t.Fatalf("prefix get: %v", err)
	}
	if rev.ID != id {
		t.Errorf("got %s, want %s", rev.ID, id)
	}
}

func TestGet_NotFound(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Get("ffffffff"); err == nil {
		t.Error("missing revision should error")
	}
}

func TestList_NewestFirst(t *testing.T) {
	db := openTestDB(t)
	if _, err := db.Save(sampleDoc("Older")); err != nil {
		t.Fatal(err)
	}
	time.Sleep(5 * time.Millisecond) // saved_at has millisecond resolution
	if _, err := db.Save(sampleDoc("Newer")); err != nil {
		t.Fatal(err)
	}

	revisions, err := db.List(10)
	if err != nil {
		t.Fatal(err)
	}
	if len(revisions) != 2 {
		t.Fatalf("expected 2 revisions, got %d", len(revisions))
	}
	if revisions[0].Title != "Newer" || revisions[1].Title != "Older" {
		t.Errorf("not newest-first: %v, %v", revisions[0].Title, revisions[1].Title)
	}
	if revisions[0].Payload != nil {
		t.Error("list should not load payloads")
	}
}

func TestList_Limit(t *testing.T) {
	db := openTestDB(t)
	for i := 0; i < 5; i++ {
		if _, err := db.Save(sampleDoc("Doc")); err != nil {
			t.Fatal(err)
		}
	}
	revisions, err := db.List(3)
	if err != nil {
		t.Fatal(err)
	}
	if len(revisions) != 3 {
		t.Errorf("expected 3 revisions, got %d", len(revisions))
	}
}
