// Package errhandling defines the error taxonomy of the CSV plugin.
// Every failure surfaced by an operation is a *ClassifiedError carrying a
// category, so callers can branch with errors.Is against the sentinel values
// or read the category with GetErrorCategory. Nothing here is retryable:
// evaluation is deterministic and a failed operation produces no output.
package errhandling

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
)

// ErrorCategory represents the type/category of an error.
type ErrorCategory string

// Error categories for classification.
const (
	// CategoryMissingArgument means a required parameter (filters, mappings,
	// data, expression, script) was absent.
	CategoryMissingArgument ErrorCategory = "missing_argument"

	// CategoryInvalidFilterSpecification means the filter document is not a
	// JSON object or array, or is structurally malformed.
	CategoryInvalidFilterSpecification ErrorCategory = "invalid_filter_specification"

	// CategoryUnsupportedOperator means an operator token is unknown, or is
	// not defined for the type a comparison resolved to.
	CategoryUnsupportedOperator ErrorCategory = "unsupported_operator"

	// CategoryUnsupportedOperation means the operation name is not registered.
	CategoryUnsupportedOperation ErrorCategory = "unsupported_operation"

	// CategoryInvalidExpression means an expression or script failed to compile.
	CategoryInvalidExpression ErrorCategory = "invalid_expression"

	// CategoryEvaluation means an expression or script failed while running.
	CategoryEvaluation ErrorCategory = "evaluation"

	// CategoryInvalidData means input data could not be interpreted.
	CategoryInvalidData ErrorCategory = "invalid_data"

	// CategoryIO represents file system failures.
	CategoryIO ErrorCategory = "io"

	// CategoryCanceled means the context was canceled or its deadline passed.
	CategoryCanceled ErrorCategory = "canceled"

	// CategoryUnknown represents unclassified errors.
	CategoryUnknown ErrorCategory = "unknown"
)

// Sentinels for errors.Is. A ClassifiedError matches the sentinel of its category.
var (
	ErrMissingArgument            = &ClassifiedError{Category: CategoryMissingArgument}
	ErrInvalidFilterSpecification = &ClassifiedError{Category: CategoryInvalidFilterSpecification}
	ErrUnsupportedOperator        = &ClassifiedError{Category: CategoryUnsupportedOperator}
	ErrUnsupportedOperation       = &ClassifiedError{Category: CategoryUnsupportedOperation}
	ErrInvalidExpression          = &ClassifiedError{Category: CategoryInvalidExpression}
	ErrEvaluation                 = &ClassifiedError{Category: CategoryEvaluation}
	ErrInvalidData                = &ClassifiedError{Category: CategoryInvalidData}
	ErrIO                         = &ClassifiedError{Category: CategoryIO}
)

// ClassifiedError wraps an error with its category.
type ClassifiedError struct {
	// Category is the error classification category.
	Category ErrorCategory

	// Message is a human-readable error message.
	Message string

	// OriginalErr is the underlying error, if any.
	OriginalErr error
}

// Error implements the error interface.
func (e *ClassifiedError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = string(e.Category)
	}
	if e.OriginalErr != nil {
		return fmt.Sprintf("%s error: %s: %v", e.Category, msg, e.OriginalErr)
	}
	return fmt.Sprintf("%s error: %s", e.Category, msg)
}

// Unwrap returns the original error for use with errors.Is and errors.As.
func (e *ClassifiedError) Unwrap() error {
	return e.OriginalErr
}

// Is reports whether target is the sentinel for e's category.
func (e *ClassifiedError) Is(target error) bool {
	t, ok := target.(*ClassifiedError)
	if !ok {
		return false
	}
	return t.Message == "" && t.OriginalErr == nil && t.Category == e.Category
}

// NewMissingArgumentError reports that the named argument was not supplied.
func NewMissingArgumentError(argument string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryMissingArgument,
		Message:  fmt.Sprintf("missing required argument '%s'", argument),
	}
}

// NewInvalidFilterSpecificationError creates an error for a malformed filter document.
func NewInvalidFilterSpecificationError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryInvalidFilterSpecification,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewUnknownOperatorError reports an operator token outside the vocabulary.
func NewUnknownOperatorError(token string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryUnsupportedOperator,
		Message:  fmt.Sprintf("operator '%s' is not supported", token),
	}
}

// NewUnsupportedOperatorError reports an operator that is not defined for the
// value kind (string, number, date) a comparison resolved to.
func NewUnsupportedOperatorError(operator string, kind string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryUnsupportedOperator,
		Message:  fmt.Sprintf("%s operator '%s' is not supported", kind, operator),
	}
}

// NewUnsupportedOperationError reports an unregistered operation name.
func NewUnsupportedOperationError(operation string) *ClassifiedError {
	return &ClassifiedError{
		Category: CategoryUnsupportedOperation,
		Message:  fmt.Sprintf("operation '%s' is not supported", operation),
	}
}

// NewInvalidExpressionError creates an error for expressions or scripts that do not compile.
func NewInvalidExpressionError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryInvalidExpression,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewEvaluationError creates an error for runtime expression or script failures.
func NewEvaluationError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryEvaluation,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewInvalidDataError creates an error for input data that cannot be interpreted.
func NewInvalidDataError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryInvalidData,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// NewIOError creates an error for file system failures.
func NewIOError(message string, originalErr error) *ClassifiedError {
	return &ClassifiedError{
		Category:    CategoryIO,
		Message:     message,
		OriginalErr: originalErr,
	}
}

// ClassifyError returns err as a ClassifiedError.
// Already classified errors are returned as-is (found through the wrap chain);
// context and file system errors get their own categories.
func ClassifyError(err error) *ClassifiedError {
	if err == nil {
		return nil
	}

	var classified *ClassifiedError
	if errors.As(err, &classified) {
		return classified
	}

	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return &ClassifiedError{Category: CategoryCanceled, Message: err.Error(), OriginalErr: err}
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return &ClassifiedError{Category: CategoryIO, Message: err.Error(), OriginalErr: err}
	}

	return &ClassifiedError{Category: CategoryUnknown, Message: err.Error(), OriginalErr: err}
}

// GetErrorCategory returns the category of err.
// Returns CategoryUnknown for nil errors.
func GetErrorCategory(err error) ErrorCategory {
	if err == nil {
		return CategoryUnknown
	}
	return ClassifyError(err).Category
}

// IsCategory reports whether err classifies as category.
func IsCategory(err error, category ErrorCategory) bool {
	return err != nil && GetErrorCategory(err) == category
}

// IsSpecificationError reports whether err stems from the caller's parameters
// rather than from the data or the environment.
func IsSpecificationError(err error) bool {
	switch GetErrorCategory(err) {
	case CategoryMissingArgument,
		CategoryInvalidFilterSpecification,
		CategoryUnsupportedOperator,
		CategoryUnsupportedOperation,
		CategoryInvalidExpression:
		return err != nil
	default:
		return false
	}
}
