package operation

import (
	"github.com/flowsynx/plugin-csv/internal/modules/filter"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Built-in operation names.
const (
	Read   = "read"
	Map    = "map"
	Filter = "filter"
	Where  = "where"
	Script = "script"
)

func init() {
	registerBuiltins()
}

func registerBuiltins() {
	// read - pass-through
	Register(Read, func(_ csvplugin.Parameters) (filter.Module, error) {
		return filter.NewRead(), nil
	})

	// map - project records onto Mappings
	Register(Map, func(p csvplugin.Parameters) (filter.Module, error) {
		return filter.NewMapFromConfig(p.Mappings)
	})

	// filter - keep records matching the condition tree in Filters
	Register(Filter, func(p csvplugin.Parameters) (filter.Module, error) {
		return filter.NewFilterFromConfig(p.Filters)
	})

	// where - keep records for which Expression evaluates to true
	Register(Where, func(p csvplugin.Parameters) (filter.Module, error) {
		return filter.NewExpressionFromConfig(p.Expression)
	})

	// script - transform or drop records with a JavaScript transform(record)
	Register(Script, func(p csvplugin.Parameters) (filter.Module, error) {
		return filter.NewScriptFromConfig(filter.ScriptConfig{Script: p.Script, ScriptFile: p.ScriptFile})
	})
}
