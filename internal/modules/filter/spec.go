package filter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
)

// rawNode is the first decoding phase of a condition tree node. Children and
// the literal stay raw until the node kind is known.
type rawNode struct {
	Column   *string           `json:"column"`
	Operator *string           `json:"operator"`
	Value    json.RawMessage   `json:"value"`
	Logic    *string           `json:"logic"`
	Filters  []json.RawMessage `json:"filters"`
}

func (n rawNode) hasLeafFields() bool {
	return n.Column != nil || n.Operator != nil || len(n.Value) > 0
}

// ParseFilterSpec builds a condition tree from a filter document.
//
// raw may be JSON text (string, []byte, json.RawMessage) or an already decoded
// object or array, which is re-encoded as JSON. The result is always a group:
//   - an object with "filters" is the root group
//   - an object with leaf fields becomes a group holding that one condition
//   - an array becomes an "and" group of its elements
//   - "{}" is an empty group, which matches every record
//
// A nil document is a missing_argument error. Text that is not shaped like a
// JSON object or array, or does not decode into a valid tree, is an
// invalid_filter_specification error. Operator tokens are checked here, so an
// unknown operator fails before any record is evaluated.
func ParseFilterSpec(raw interface{}) (*Group, error) {
	data, err := filterDocument(raw)
	if err != nil {
		return nil, err
	}

	trimmed := bytes.TrimSpace(data)
	if !isJSONShaped(trimmed) {
		return nil, errhandling.NewInvalidFilterSpecificationError(
			"filter specification must be a JSON object or array", nil)
	}
	if !json.Valid(trimmed) {
		var probe interface{}
		err := json.Unmarshal(trimmed, &probe)
		return nil, errhandling.NewInvalidFilterSpecificationError("filter specification is not valid JSON", err)
	}

	if trimmed[0] == '[' {
		children, err := parseChildren(trimmed, "$")
		if err != nil {
			return nil, err
		}
		return &Group{Logic: LogicAnd, Children: children}, nil
	}

	node, err := parseNode(trimmed, "$", true)
	if err != nil {
		return nil, err
	}
	if g, ok := node.(*Group); ok {
		return g, nil
	}
	return &Group{Logic: LogicAnd, Children: []Node{node}}, nil
}

func filterDocument(raw interface{}) ([]byte, error) {
	switch v := raw.(type) {
	case nil:
		return nil, errhandling.NewMissingArgumentError("filters")
	case string:
		return []byte(v), nil
	case []byte:
		return v, nil
	case json.RawMessage:
		return v, nil
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return nil, errhandling.NewInvalidFilterSpecificationError("filter specification cannot be encoded as JSON", err)
		}
		return data, nil
	}
}

func isJSONShaped(b []byte) bool {
	if len(b) < 2 {
		return false
	}
	first, last := b[0], b[len(b)-1]
	return (first == '{' && last == '}') || (first == '[' && last == ']')
}

func parseChildren(data []byte, path string) ([]Node, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, invalidAt(path, "expected an array of conditions", err)
	}
	children := make([]Node, 0, len(items))
	for i, item := range items {
		child, err := parseNode(item, fmt.Sprintf("%s[%d]", path, i), false)
		if err != nil {
			return nil, err
		}
		children = append(children, child)
	}
	return children, nil
}

func parseNode(data []byte, path string, root bool) (Node, error) {
	var raw rawNode
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, invalidAt(path, "expected a condition or group object", err)
	}

	switch {
	case len(raw.Filters) > 0 && raw.hasLeafFields():
		return nil, invalidAt(path, "node cannot be both a condition and a group", nil)
	case len(raw.Filters) > 0:
		return parseGroup(raw, path)
	case raw.hasLeafFields():
		return parseCondition(raw, path)
	case raw.Filters != nil || raw.Logic != nil || root:
		return &Group{Logic: logicOf(raw.Logic)}, nil
	default:
		return nil, invalidAt(path, "node must have 'filters' or 'column', 'operator' and 'value'", nil)
	}
}

func parseGroup(raw rawNode, path string) (*Group, error) {
	g := &Group{Logic: logicOf(raw.Logic), Children: make([]Node, 0, len(raw.Filters))}
	for i, item := range raw.Filters {
		child, err := parseNode(item, fmt.Sprintf("%s.filters[%d]", path, i), false)
		if err != nil {
			return nil, err
		}
		g.Children = append(g.Children, child)
	}
	return g, nil
}

func parseCondition(raw rawNode, path string) (*Condition, error) {
	if raw.Column == nil || *raw.Column == "" {
		return nil, invalidAt(path, "condition requires a non-empty 'column'", nil)
	}
	if raw.Operator == nil || strings.TrimSpace(*raw.Operator) == "" {
		return nil, invalidAt(path, "condition requires an 'operator'", nil)
	}
	value, err := literal(raw.Value)
	if err != nil {
		return nil, invalidAt(path, err.Error(), nil)
	}
	op, err := ParseOperator(*raw.Operator)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &Condition{Column: *raw.Column, Operator: op, Value: value}, nil
}

// literal returns the comparison text of a condition value. Strings are
// unquoted; numbers and booleans keep their JSON spelling.
func literal(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return "", fmt.Errorf("condition requires a 'value'")
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", fmt.Errorf("invalid 'value': %v", err)
		}
		return s, nil
	case '{', '[':
		return "", fmt.Errorf("'value' must be a string, number or boolean")
	default:
		return string(trimmed), nil
	}
}

func logicOf(s *string) Logic {
	if s == nil {
		return LogicAnd
	}
	return ParseLogic(*s)
}

func invalidAt(path, message string, err error) error {
	return errhandling.NewInvalidFilterSpecificationError(fmt.Sprintf("%s: %s", path, message), err)
}
