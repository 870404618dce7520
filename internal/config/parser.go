package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseJSONFile parses a JSON job file.
func ParseJSONFile(filepath string) *ParseResult {
	return parseFile(filepath, FormatJSON)
}

// ParseYAMLFile parses a YAML job file.
func ParseYAMLFile(filepath string) *ParseResult {
	return parseFile(filepath, FormatYAML)
}

func parseFile(filepath, format string) *ParseResult {
	content, err := os.ReadFile(filepath)
	if err != nil {
		return &ParseResult{
			FilePath: filepath,
			Format:   format,
			Errors:   []ParseError{readError(filepath, err)},
		}
	}

	var result *ParseResult
	if format == FormatJSON {
		result = ParseJSONString(string(content))
	} else {
		result = ParseYAMLString(string(content))
	}
	result.FilePath = filepath
	for i := range result.Errors {
		if result.Errors[i].Path == "" {
			result.Errors[i].Path = filepath
		}
	}
	return result
}

func readError(filepath string, err error) ParseError {
	return ParseError{
		Path:    filepath,
		Message: fmt.Sprintf("failed to read file: %v", err),
		Type:    ErrorTypeIO,
	}
}

// ParseJSONString parses JSON content from a string.
func ParseJSONString(content string) *ParseResult {
	result := &ParseResult{Format: FormatJSON, Raw: []byte(content)}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected JSON object",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := json.Unmarshal([]byte(trimmed), &data); err != nil {
		result.Errors = append(result.Errors, parseJSONError(err, trimmed))
		return result
	}
	if data == nil {
		return result
	}

	dataMap, ok := data.(map[string]interface{})
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid job: expected JSON object, got %T", data),
			Type:    ErrorTypeFormat,
		})
		return result
	}
	result.Data = dataMap
	return result
}

func parseJSONError(err error, content string) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var syntaxErr *json.SyntaxError
	if errors.As(err, &syntaxErr) {
		parseErr.Offset = syntaxErr.Offset
		parseErr.Line, parseErr.Column = offsetToLineColumn(content, syntaxErr.Offset)
		parseErr.Message = fmt.Sprintf("JSON syntax error at offset %d: %s", syntaxErr.Offset, syntaxErr.Error())
	}
	return parseErr
}

// offsetToLineColumn converts a byte offset to 1-based line and column.
func offsetToLineColumn(content string, offset int64) (line, column int) {
	line, column = 1, 1
	for i := int64(0); i < offset && i < int64(len(content)); i++ {
		if content[i] == '\n' {
			line++
			column = 1
		} else {
			column++
		}
	}
	return line, column
}

// ParseYAMLString parses YAML content from a string.
func ParseYAMLString(content string) *ParseResult {
	result := &ParseResult{Format: FormatYAML, Raw: []byte(content)}

	if strings.TrimSpace(content) == "" {
		result.Errors = append(result.Errors, ParseError{
			Message: "empty content: expected YAML document",
			Type:    ErrorTypeSyntax,
		})
		return result
	}

	var data interface{}
	if err := yaml.Unmarshal([]byte(content), &data); err != nil {
		result.Errors = append(result.Errors, parseYAMLError(err))
		return result
	}
	if data == nil {
		return result
	}

	dataMap, ok := data.(map[string]interface{})
	if !ok {
		result.Errors = append(result.Errors, ParseError{
			Message: fmt.Sprintf("invalid job: expected YAML mapping, got %T", data),
			Type:    ErrorTypeFormat,
		})
		return result
	}
	result.Data = dataMap
	return result
}

func parseYAMLError(err error) ParseError {
	parseErr := ParseError{
		Message: err.Error(),
		Type:    ErrorTypeSyntax,
	}

	var typeErr *yaml.TypeError
	if errors.As(err, &typeErr) {
		parseErr.Message = fmt.Sprintf("YAML type error: %s", strings.Join(typeErr.Errors, "; "))
	}

	// yaml.v3 reports "yaml: line N: ..."
	var line int
	if _, scanErr := fmt.Sscanf(err.Error(), "yaml: line %d:", &line); scanErr == nil {
		parseErr.Line = line
	}
	return parseErr
}

// ParseConfig parses and validates a job file. The format is taken from
// the extension (.json, .yaml, .yml) or detected from the content.
func ParseConfig(filepath string) *Result {
	var parsed *ParseResult
	switch DetectFormat(filepath) {
	case FormatJSON:
		parsed = ParseJSONFile(filepath)
	case FormatYAML:
		parsed = ParseYAMLFile(filepath)
	default:
		content, err := os.ReadFile(filepath)
		if err != nil {
			return &Result{FilePath: filepath, ParseErrors: []ParseError{readError(filepath, err)}}
		}
		format := detectContentFormat(string(content))
		if format == "" {
			return &Result{FilePath: filepath, ParseErrors: []ParseError{{
				Path:    filepath,
				Message: "unable to detect job format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			}}}
		}
		parsed = parseContent(string(content), format)
		parsed.FilePath = filepath
	}

	result := fromParseResult(parsed)
	result.FilePath = filepath
	return result
}

// ParseConfigString parses and validates job content. An empty format is
// detected from the content.
func ParseConfigString(content string, format string) *Result {
	if format == "" {
		format = detectContentFormat(content)
		if format == "" {
			return &Result{ParseErrors: []ParseError{{
				Message: "unable to detect job format: not valid JSON or YAML",
				Type:    ErrorTypeFormat,
			}}}
		}
	}
	format = strings.ToLower(format)
	if format != FormatJSON && format != FormatYAML {
		return &Result{Format: format, ParseErrors: []ParseError{{
			Message: fmt.Sprintf("unsupported format: %s", format),
			Type:    ErrorTypeFormat,
		}}}
	}
	return fromParseResult(parseContent(content, format))
}

func parseContent(content, format string) *ParseResult {
	if format == FormatJSON {
		return ParseJSONString(content)
	}
	return ParseYAMLString(content)
}

func fromParseResult(parsed *ParseResult) *Result {
	result := &Result{
		Data:        parsed.Data,
		Raw:         parsed.Raw,
		ParseErrors: parsed.Errors,
		FilePath:    parsed.FilePath,
		Format:      parsed.Format,
	}
	if !parsed.IsValid() {
		return result
	}
	result.ValidationErrors = ValidateConfig(parsed.Data).Errors
	return result
}

func detectContentFormat(content string) string {
	switch {
	case IsJSON(content):
		return FormatJSON
	case IsYAML(content):
		return FormatYAML
	default:
		return ""
	}
}

// DetectFormat returns the format implied by the file extension, or "".
func DetectFormat(filepath string) string {
	switch strings.ToLower(path.Ext(filepath)) {
	case ".json":
		return FormatJSON
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return ""
	}
}

// IsJSON reports whether content looks like a JSON document.
func IsJSON(content string) bool {
	content = strings.TrimSpace(content)
	return strings.HasPrefix(content, "{") || strings.HasPrefix(content, "[")
}

// IsYAML reports whether content parses as a non-empty YAML document.
// JSON is also YAML, so this is true for JSON content too.
func IsYAML(content string) bool {
	if strings.TrimSpace(content) == "" {
		return false
	}
	var data interface{}
	err := yaml.Unmarshal([]byte(content), &data)
	return err == nil && data != nil
}
