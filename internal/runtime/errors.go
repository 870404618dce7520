package runtime

import (
	"errors"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/modules/filter"
)

// ErrorCategory is re-exported from errhandling for callers of Execute.
type ErrorCategory = errhandling.ErrorCategory

// Re-exported error categories.
const (
	CategoryMissingArgument            = errhandling.CategoryMissingArgument
	CategoryInvalidFilterSpecification = errhandling.CategoryInvalidFilterSpecification
	CategoryUnsupportedOperator        = errhandling.CategoryUnsupportedOperator
	CategoryUnsupportedOperation       = errhandling.CategoryUnsupportedOperation
	CategoryInvalidExpression          = errhandling.CategoryInvalidExpression
	CategoryEvaluation                 = errhandling.CategoryEvaluation
	CategoryInvalidData                = errhandling.CategoryInvalidData
	CategoryIO                         = errhandling.CategoryIO
	CategoryCanceled                   = errhandling.CategoryCanceled
	CategoryUnknown                    = errhandling.CategoryUnknown
)

// Re-exported functions.
var (
	GetErrorCategory     = errhandling.GetErrorCategory
	IsSpecificationError = errhandling.IsSpecificationError
)

// moduleErrorDetails extracts the module code and record index of
// expression and script errors.
func moduleErrorDetails(err error) (code string, index int, ok bool) {
	var exprErr *filter.ExpressionError
	if errors.As(err, &exprErr) {
		return exprErr.Code, exprErr.RecordIndex, true
	}
	var scriptErr *filter.ScriptError
	if errors.As(err, &scriptErr) {
		return scriptErr.Code, scriptErr.RecordIndex, true
	}
	return "", -1, false
}

// recordIndex returns the failing record position, or -1.
func recordIndex(err error) int {
	_, index, _ := moduleErrorDetails(err)
	return index
}
