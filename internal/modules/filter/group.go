package filter

import "github.com/flowsynx/plugin-csv/pkg/csvplugin"

// EvaluateGroup tests one record against a group.
//
// Every child is evaluated, including after an "or" group already has a true
// child, so an invalid operator anywhere in the tree surfaces on every record
// that reaches it. The first child error aborts evaluation. An empty "and"
// group is true and an empty "or" group is false.
func EvaluateGroup(record csvplugin.Record, g *Group) (bool, error) {
	anyTrue, allTrue := false, true
	for _, child := range g.Children {
		ok, err := child.Evaluate(record)
		if err != nil {
			return false, err
		}
		anyTrue = anyTrue || ok
		allTrue = allTrue && ok
	}
	if g.Logic == LogicOr {
		return anyTrue, nil
	}
	return allTrue, nil
}
