package filter

import (
	"strings"

	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Node is an element of a condition tree: *Condition or *Group.
type Node interface {
	// Evaluate reports whether record satisfies the node.
	Evaluate(record csvplugin.Record) (bool, error)
	node()
}

// Condition is a leaf comparing one column against a literal.
type Condition struct {
	Column   string   `json:"column"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value"`
}

// Logic combines the children of a group.
type Logic int

// Group logics.
const (
	LogicAnd Logic = iota
	LogicOr
)

// ParseLogic returns LogicOr for "or" in any case and LogicAnd for anything else.
func ParseLogic(s string) Logic {
	if strings.EqualFold(strings.TrimSpace(s), "or") {
		return LogicOr
	}
	return LogicAnd
}

func (l Logic) String() string {
	if l == LogicOr {
		return "or"
	}
	return "and"
}

// MarshalText implements encoding.TextMarshaler.
func (l Logic) MarshalText() ([]byte, error) {
	return []byte(l.String()), nil
}

// Group combines child nodes with a logic.
type Group struct {
	Logic    Logic  `json:"logic"`
	Children []Node `json:"filters"`
}

func (*Condition) node() {}
func (*Group) node()     {}

// Evaluate implements Node.
func (c *Condition) Evaluate(record csvplugin.Record) (bool, error) {
	return EvaluateCondition(record, c)
}

// Evaluate implements Node.
func (g *Group) Evaluate(record csvplugin.Record) (bool, error) {
	return EvaluateGroup(record, g)
}

// EvaluateCondition tests one record against a leaf condition.
// A record without the column never matches. Otherwise the cell and the
// literal are resolved to a common kind and the operator applied; an operator
// undefined for that kind is an unsupported_operator error.
func EvaluateCondition(record csvplugin.Record, c *Condition) (bool, error) {
	cell, ok := record.Get(c.Column)
	if !ok {
		return false, nil
	}
	return c.Operator.Apply(Resolve(cell.String(), c.Value))
}
