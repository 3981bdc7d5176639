package tree

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// UnmarshalJSON decodes a node while coercing loosely-typed fields: numeric
// strings are accepted for probabilities, numbers are accepted for ids.
// Missing probabilities default to 1.0, matching documents written by older
// editors that omitted the field.
func (n *Node) UnmarshalJSON(data []byte) error {
	type alias Node
	aux := struct {
		*alias
		ID          json.RawMessage `json:"id"`
		Probability json.RawMessage `json:"probability"`
		Calculated  json.RawMessage `json:"calculatedProbability"`
	}{alias: (*alias)(n)}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}

	n.ID = coerceString(aux.ID)

	if isPresent(aux.Probability) {
		v, err := coerceFloat(aux.Probability)
		if err != nil {
			return fmt.Errorf("node %q: probability: %w", n.ID, err)
		}
		n.Probability = v
	} else {
		n.Probability = 1.0
	}

	if isPresent(aux.Calculated) {
		v, err := coerceFloat(aux.Calculated)
		if err != nil {
			return fmt.Errorf("node %q: calculatedProbability: %w", n.ID, err)
		}
		n.Calculated = &v
	}
	return nil
}

// UnmarshalJSON coerces link target ids that were written as bare numbers.
func (l *Link) UnmarshalJSON(data []byte) error {
	aux := struct {
		TargetID json.RawMessage `json:"target_id"`
		Relation string          `json:"relation"`
	}{}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	l.TargetID = coerceString(aux.TargetID)
	l.Relation = aux.Relation
	return nil
}

func isPresent(raw json.RawMessage) bool {
	return len(raw) > 0 && string(raw) != "null"
}

func coerceFloat(raw json.RawMessage) (float64, error) {
	s := strings.TrimSpace(string(raw))
	s = strings.Trim(s, `"`)
	if s == "" {
		return 0, fmt.Errorf("empty value")
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("cannot coerce %s to float", string(raw))
	}
	return v, nil
}

func coerceString(raw json.RawMessage) string {
	if !isPresent(raw) {
		return ""
	}
	s := string(raw)
	if strings.HasPrefix(s, `"`) {
		var out string
		if err := json.Unmarshal(raw, &out); err == nil {
			return out
		}
	}
	return strings.TrimSpace(s)
}

// Normalize recursively repairs a freshly loaded subtree: default ids of the
// form {parentID}_{index}, sanitized names, default type, upper-cased gate
// and link relations with OR as the fallback. Applied top-down before the
// first evaluation pass.
func Normalize(n *Node) {
	normalizeNode(n, "root", 0)
}

func normalizeNode(n *Node, parentID string, idx int) {
	if n.ID == "" {
		n.ID = fmt.Sprintf("%s_%d", parentID, idx)
	}
	if n.Name == "" {
		n.Name = "Node_" + n.ID
	}
	n.Name = SanitizeName(n.Name)
	if n.Type == "" {
		n.Type = "Event"
	}
	gate := strings.ToUpper(strings.TrimSpace(n.LogicGate))
	if gate == "" {
		gate = "OR"
	}
	n.LogicGate = gate

	if n.Links == nil {
		n.Links = []Link{}
	}
	for i := range n.Links {
		rel := strings.ToUpper(strings.TrimSpace(n.Links[i].Relation))
		if rel == "" {
			rel = "OR"
		}
		n.Links[i].Relation = rel
	}

	if n.Children == nil {
		n.Children = []*Node{}
	}
	for i, c := range n.Children {
		normalizeNode(c, n.ID, i)
	}
}

// Validate enforces the data-entry invariants the evaluator assumes: every
// probability within [0,1] and recognized gate/relation values. Run after
// Normalize on load and on every edit; the evaluator itself re-checks
// nothing.
func Validate(n *Node) error {
	if n.Probability < 0 || n.Probability > 1 {
		return fmt.Errorf("node %q: probability %g outside [0,1]", n.ID, n.Probability)
	}
	switch n.LogicGate {
	case "", "AND", "OR":
	default:
		return fmt.Errorf("node %q: unknown logic gate %q", n.ID, n.LogicGate)
	}
	for _, l := range n.Links {
		switch l.Relation {
		case "AND", "OR":
		default:
			return fmt.Errorf("node %q: link to %q has unknown relation %q", n.ID, l.TargetID, l.Relation)
		}
	}
	for _, c := range n.Children {
		if err := Validate(c); err != nil {
			return err
		}
	}
	return nil
}
