package tree

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"
)

// Document wraps a tree with its analysis metadata. Mode selects the
// propagation semantics: "FTA" (bottom-up gates) or "ETA" (top-down chain).
type Document struct {
	Title string `json:"title"`
	Date  string `json:"date"`
	Mode  string `json:"mode"`
	Tree  *Node  `json:"tree"`
}

const (
	ModeFTA = "FTA"
	ModeETA = "ETA"

	DefaultTitle = "Untitled Analysis"
)

// NewDocument returns a document holding the default single-root tree.
func NewDocument() *Document {
	return &Document{
		Title: DefaultTitle,
		Date:  time.Now().Format("2006-01-02"),
		Mode:  ModeFTA,
		Tree:  NewRoot(),
	}
}

// LoadFile reads and parses a document from disk. See Parse for the accepted
// shapes.
func LoadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}
	doc, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return doc, nil
}

// Parse decodes a document from JSON. Three shapes are accepted: the current
// {title, date, mode, tree} wrapper, a legacy {"FTA": {...}} wrapper, and a
// bare tree object. Double-wrapped payloads ({{...}}) produced by a buggy
// exporter are repaired before decoding. The tree is normalized and validated
// before return; an uncoercible probability is an error here, never inside
// the evaluator.
func Parse(data []byte) (*Document, error) {
	raw := bytes.TrimSpace(data)
	raw = bytes.TrimPrefix(raw, []byte("\xef\xbb\xbf"))
	if bytes.HasPrefix(raw, []byte("{{")) && bytes.HasSuffix(raw, []byte("}}")) {
		raw = bytes.TrimSpace(raw[1 : len(raw)-1])
	}

	var probe map[string]json.RawMessage
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, fmt.Errorf("document root must be a JSON object: %w", err)
	}

	doc := &Document{
		Title: DefaultTitle,
		Date:  time.Now().Format("2006-01-02"),
		Mode:  ModeFTA,
	}

	var treeRaw json.RawMessage
	switch {
	case probe["tree"] != nil:
		var header struct {
			Title string `json:"title"`
			Date  string `json:"date"`
			Mode  string `json:"mode"`
		}
		if err := json.Unmarshal(raw, &header); err != nil {
			return nil, err
		}
		if header.Title != "" {
			doc.Title = header.Title
		}
		if header.Date != "" {
			doc.Date = header.Date
		}
		if header.Mode != "" {
			doc.Mode = strings.ToUpper(header.Mode)
		}
		treeRaw = probe["tree"]
	case probe["FTA"] != nil:
		treeRaw = probe["FTA"]
	default:
		treeRaw = raw
	}

	var root Node
	if err := json.Unmarshal(treeRaw, &root); err != nil {
		return nil, err
	}
	doc.Tree = &root

	Normalize(doc.Tree)
	if err := Validate(doc.Tree); err != nil {
		return nil, err
	}
	return doc, nil
}

// SaveFile writes the document to disk as indented JSON in the wrapper
// shape. An empty date is refreshed to today before writing.
func (d *Document) SaveFile(path string) error {
	if d.Date == "" {
		d.Date = time.Now().Format("2006-01-02")
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(d); err != nil {
		return fmt.Errorf("encoding document: %w", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("writing document: %w", err)
	}
	return nil
}
