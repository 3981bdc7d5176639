package cmd

import "testing"

func TestParseLinkFlags_Valid(t *testing.T) {
	links, err := parseLinkFlags([]string{"AND:root_1", "or:root_2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("expected 2 links, got %d", len(links))
	}
	if links[0].Relation != "AND" || links[0].TargetID != "root_1" {
		t.Errorf("first link = %+v", links[0])
	}
	if links[1].Relation != "OR" || links[1].TargetID != "root_2" {
		t.Errorf("relation should be upper-cased: %+v", links[1])
	}
}

func TestParseLinkFlags_Invalid(t *testing.T) {
	for _, bad := range []string{"root_1", "XOR:root_1", "AND:", ""} {
		if _, err := parseLinkFlags([]string{bad}); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}

func TestParseLinkFlags_Empty(t *testing.T) {
	links, err := parseLinkFlags(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(links) != 0 {
		t.Errorf("expected no links, got %v", links)
	}
}
