package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

//go:embed schema/job-schema.json
var embeddedSchema []byte

const schemaURL = "https://flowsynx.io/schemas/plugins/csv/v1/job-schema.json"

var printer = message.NewPrinter(language.English)

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaInitErr  error
)

// GetEmbeddedSchema returns the embedded job schema.
func GetEmbeddedSchema() []byte {
	return embeddedSchema
}

// getCompiledSchema compiles the embedded schema on first use.
func getCompiledSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		var schemaDoc interface{}
		if err := json.Unmarshal(embeddedSchema, &schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to parse embedded schema: %w", err)
			return
		}

		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, schemaDoc); err != nil {
			schemaInitErr = fmt.Errorf("failed to add schema resource: %w", err)
			return
		}

		compiledSchema, schemaInitErr = compiler.Compile(schemaURL)
		if schemaInitErr != nil {
			schemaInitErr = fmt.Errorf("failed to compile schema: %w", schemaInitErr)
		}
	})
	return compiledSchema, schemaInitErr
}

// ValidateConfig validates a parsed job document against the job schema.
func ValidateConfig(data map[string]interface{}) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if len(data) == 0 {
		msg := "job is empty"
		if data == nil {
			msg = "job data is nil"
		}
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{Path: "/", Type: "required", Message: msg})
		return result
	}

	schema, err := getCompiledSchema()
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, ValidationError{
			Path:    "/",
			Type:    "schema",
			Message: fmt.Sprintf("failed to load schema: %v", err),
		})
		return result
	}

	if err := schema.Validate(data); err != nil {
		result.Valid = false
		var detailed *jsonschema.ValidationError
		if errors.As(err, &detailed) {
			result.Errors = convertValidationErrors(detailed)
		}
		if len(result.Errors) == 0 {
			result.Errors = append(result.Errors, ValidationError{Path: "/", Type: "validation", Message: err.Error()})
		}
	}
	return result
}

// convertValidationErrors flattens the leaves of a jsonschema error tree.
func convertValidationErrors(err *jsonschema.ValidationError) []ValidationError {
	if len(err.Causes) == 0 {
		return []ValidationError{{
			Path:    formatInstanceLocation(err.InstanceLocation),
			Type:    errorType(err),
			Message: errorMessage(err),
		}}
	}

	var out []ValidationError
	for _, cause := range err.Causes {
		out = append(out, convertValidationErrors(cause)...)
	}
	return out
}

func formatInstanceLocation(loc []string) string {
	if len(loc) == 0 {
		return "/"
	}
	return "/" + strings.Join(loc, "/")
}

// errorType is the schema keyword that failed (required, type, ...).
func errorType(err *jsonschema.ValidationError) string {
	if err.ErrorKind == nil {
		return "validation"
	}
	path := err.ErrorKind.KeywordPath()
	if len(path) == 0 {
		return "validation"
	}
	return path[len(path)-1]
}

func errorMessage(err *jsonschema.ValidationError) string {
	if err.ErrorKind == nil {
		return err.Error()
	}
	return err.ErrorKind.LocalizedString(printer)
}
