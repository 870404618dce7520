package filter

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/flowsynx/plugin-csv/internal/errhandling"
	"github.com/flowsynx/plugin-csv/internal/logger"
	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// Error codes for the expression module
const (
	ErrCodeInvalidExpression = "INVALID_EXPRESSION"
	ErrCodeEvaluationFailed  = "EVALUATION_FAILED"
	ErrCodeNotBoolean        = "NOT_BOOLEAN"
)

// ExpressionModule keeps the records for which a boolean expression holds.
//
// Columns are variables: numeric-looking cells are float64, null cells are
// nil, everything else is the cell text. Columns whose names are not
// identifiers are reachable as $env["unit price"].
type ExpressionModule struct {
	expression string
	program    *vm.Program
}

// ExpressionError carries structured context for expression failures.
type ExpressionError struct {
	Code        string
	Message     string
	Expression  string
	RecordIndex int
	Err         error
}

func (e *ExpressionError) Error() string {
	return e.Message
}

// Unwrap exposes the classified cause.
func (e *ExpressionError) Unwrap() error {
	return e.Err
}

// NewExpressionFromConfig compiles expression.
// An empty expression is a missing_argument error; a syntax error is an
// invalid_expression error.
func NewExpressionFromConfig(expression string) (*ExpressionModule, error) {
	if strings.TrimSpace(expression) == "" {
		return nil, errhandling.NewMissingArgumentError("expression")
	}

	program, err := expr.Compile(expression, expr.AllowUndefinedVariables(), expr.AsBool())
	if err != nil {
		return nil, &ExpressionError{
			Code:        ErrCodeInvalidExpression,
			Message:     fmt.Sprintf("invalid expression %q: %v", expression, err),
			Expression:  expression,
			RecordIndex: -1,
			Err:         errhandling.NewInvalidExpressionError("expression does not compile", err),
		}
	}

	logger.Debug("expression module initialized", slog.String("expression", expression))
	return &ExpressionModule{expression: expression, program: program}, nil
}

// Process returns the matching records in order. The first evaluation
// failure aborts the batch.
func (m *ExpressionModule) Process(ctx context.Context, records []csvplugin.Record) ([]csvplugin.Record, error) {
	if err := checkContext(ctx); err != nil {
		return nil, err
	}

	result := make([]csvplugin.Record, 0, len(records))
	for i, record := range records {
		out, err := expr.Run(m.program, expressionEnv(record))
		if err != nil {
			return nil, m.fail(ErrCodeEvaluationFailed, i, fmt.Sprintf("expression evaluation failed at record %d: %v", i, err), err)
		}
		keep, ok := out.(bool)
		if !ok {
			return nil, m.fail(ErrCodeNotBoolean, i, fmt.Sprintf("expression returned %T at record %d, expected bool", out, i), nil)
		}
		if keep {
			result = append(result, record)
		}
	}
	return result, nil
}

func (m *ExpressionModule) fail(code string, index int, message string, cause error) error {
	logger.Error("expression evaluation failed",
		slog.String("expression", m.expression),
		slog.Int("record_index", index),
		slog.String("error", message),
	)
	return &ExpressionError{
		Code:        code,
		Message:     message,
		Expression:  m.expression,
		RecordIndex: index,
		Err:         errhandling.NewEvaluationError(message, cause),
	}
}

func expressionEnv(record csvplugin.Record) map[string]interface{} {
	env := make(map[string]interface{}, record.Len())
	for _, f := range record.Fields() {
		v := f.Value
		switch typed := v.Interface().(type) {
		case nil:
			env[f.Name] = nil
		case string:
			if n, ok := ParseNumber(typed); ok {
				env[f.Name] = n
			} else {
				env[f.Name] = typed
			}
		case int64:
			env[f.Name] = float64(typed)
		default:
			env[f.Name] = typed
		}
	}
	return env
}
