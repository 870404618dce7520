package filter

import (
	"strings"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
)

// Operator is a comparison operator of a filter condition.
type Operator int

// Supported operators.
const (
	OpEquals Operator = iota + 1
	OpNotEquals
	OpContains
	OpStartsWith
	OpEndsWith
	OpGreaterThan
	OpLessThan
	OpGreaterThanOrEqual
	OpLessThanOrEqual
)

var operatorTokens = map[Operator]string{
	OpEquals:             "equals",
	OpNotEquals:          "notEquals",
	OpContains:           "contains",
	OpStartsWith:         "startsWith",
	OpEndsWith:           "endsWith",
	OpGreaterThan:        "greaterThan",
	OpLessThan:           "lessThan",
	OpGreaterThanOrEqual: "greaterThanOrEqual",
	OpLessThanOrEqual:    "lessThanOrEqual",
}

var operatorsByToken = func() map[string]Operator {
	m := make(map[string]Operator, len(operatorTokens))
	for op, token := range operatorTokens {
		m[strings.ToLower(token)] = op
	}
	return m
}()

// ParseOperator maps a token such as "greaterThan" to its Operator.
// Matching ignores case. Unknown tokens yield an unsupported_operator error.
func ParseOperator(token string) (Operator, error) {
	op, ok := operatorsByToken[strings.ToLower(strings.TrimSpace(token))]
	if !ok {
		return 0, errhandling.NewUnknownOperatorError(token)
	}
	return op, nil
}

// String returns the canonical token.
func (op Operator) String() string {
	if token, ok := operatorTokens[op]; ok {
		return token
	}
	return "unknown"
}

// MarshalText implements encoding.TextMarshaler.
func (op Operator) MarshalText() ([]byte, error) {
	return []byte(op.String()), nil
}

// Supports reports whether op is defined for values of kind k.
// Strings have equality and substring operators; numbers and dates have
// equality and ordering operators.
func (op Operator) Supports(k Kind) bool {
	switch op {
	case OpEquals, OpNotEquals:
		return true
	case OpContains, OpStartsWith, OpEndsWith:
		return k == KindString
	case OpGreaterThan, OpLessThan, OpGreaterThanOrEqual, OpLessThanOrEqual:
		return k == KindNumber || k == KindDate
	default:
		return false
	}
}

// Apply evaluates op over resolved operands.
func (op Operator) Apply(o Operands) (bool, error) {
	if !op.Supports(o.Kind) {
		return false, errhandling.NewUnsupportedOperatorError(op.String(), o.Kind.String())
	}

	if o.Kind == KindString {
		left, right := strings.ToLower(o.LeftText), strings.ToLower(o.RightText)
		switch op {
		case OpEquals:
			return strings.EqualFold(o.LeftText, o.RightText), nil
		case OpNotEquals:
			return !strings.EqualFold(o.LeftText, o.RightText), nil
		case OpContains:
			return strings.Contains(left, right), nil
		case OpStartsWith:
			return strings.HasPrefix(left, right), nil
		case OpEndsWith:
			return strings.HasSuffix(left, right), nil
		}
	}

	c := o.compare()
	switch op {
	case OpEquals:
		return c == 0, nil
	case OpNotEquals:
		return c != 0, nil
	case OpGreaterThan:
		return c > 0, nil
	case OpLessThan:
		return c < 0, nil
	case OpGreaterThanOrEqual:
		return c >= 0, nil
	case OpLessThanOrEqual:
		return c <= 0, nil
	}
	return false, errhandling.NewUnsupportedOperatorError(op.String(), o.Kind.String())
}
