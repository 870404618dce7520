package config

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/flowsynx/plugin-csv/pkg/csvplugin"
)

// ConvertToJob converts a parsed job document to a Job.
// The document should have been validated against the schema first.
//
// The document has this structure:
//
//	{
//	  "name": "adults",
//	  "source": {"path": "people.csv"},
//	  "operation": "filter",
//	  "filters": {"logic": "and", "filters": [...]},
//	  "output": {"path": "adults.csv", "overwrite": true}
//	}
//
// Inline data objects become records with sorted keys; use ConvertResult to
// keep the key order of the document.
func ConvertToJob(data map[string]interface{}) (*csvplugin.Job, error) {
	if data == nil {
		return nil, fmt.Errorf("job data is nil")
	}

	job := &csvplugin.Job{}
	job.Name, _ = data["name"].(string)

	if sourceData, ok := data["source"].(map[string]interface{}); ok {
		path, okPath := sourceData["path"].(string)
		if !okPath {
			return nil, fmt.Errorf("missing required field 'source.path'")
		}
		job.Source = &csvplugin.Source{Path: path}
	}

	params, err := convertParameters(data)
	if err != nil {
		return nil, err
	}
	job.Parameters = params

	if outputData, ok := data["output"].(map[string]interface{}); ok {
		out, err := convertOutput(outputData)
		if err != nil {
			return nil, fmt.Errorf("invalid output config: %w", err)
		}
		job.Output = out
	}

	return job, nil
}

// ConvertResult converts a parse result to a Job. When the document text is
// available, inline data objects keep their key order.
func ConvertResult(result *Result) (*csvplugin.Job, error) {
	if result == nil {
		return nil, fmt.Errorf("parse result is nil")
	}
	job, err := ConvertToJob(result.Data)
	if err != nil {
		return nil, err
	}
	if len(result.Raw) == 0 {
		return job, nil
	}

	if _, isList := job.Parameters.Data.([]interface{}); !isList {
		return job, nil
	}
	records, err := orderedData(result.Raw, result.Format)
	if err != nil {
		return nil, fmt.Errorf("invalid data: %w", err)
	}
	if records != nil {
		job.Parameters.Data = records
	}
	return job, nil
}

func convertParameters(data map[string]interface{}) (csvplugin.Parameters, error) {
	var p csvplugin.Parameters

	operation, ok := data["operation"].(string)
	if !ok {
		return p, fmt.Errorf("missing required field 'operation'")
	}
	p.Operation = operation
	p.Data = data["data"]
	p.Delimiter, _ = data["delimiter"].(string)
	p.Expression, _ = data["expression"].(string)
	p.Script, _ = data["script"].(string)
	p.ScriptFile, _ = data["scriptFile"].(string)
	p.Filters = data["filters"]

	if v, ok := data["ignoreBlankLines"].(bool); ok {
		p.IgnoreBlankLines = &v
	}
	if v, ok := data["hasHeader"].(bool); ok {
		p.HasHeader = &v
	}

	if raw, ok := data["mappings"]; ok {
		list, ok := raw.([]interface{})
		if !ok {
			return p, fmt.Errorf("'mappings' must be a list of column names, got %T", raw)
		}
		p.Mappings = make([]string, len(list))
		for i, item := range list {
			name, ok := item.(string)
			if !ok {
				return p, fmt.Errorf("mappings[%d]: expected string, got %T", i, item)
			}
			p.Mappings[i] = name
		}
	}

	return p, nil
}

func convertOutput(data map[string]interface{}) (*csvplugin.Output, error) {
	path, ok := data["path"].(string)
	if !ok {
		return nil, fmt.Errorf("missing required field 'path'")
	}
	out := &csvplugin.Output{Path: path}
	out.Delimiter, _ = data["delimiter"].(string)
	out.Overwrite, _ = data["overwrite"].(bool)
	if v, ok := data["writeHeader"].(bool); ok {
		out.WriteHeader = &v
	}
	return out, nil
}

// orderedData decodes the "data" list of the document into records,
// keeping each object's key order. Returns nil if data is not a list.
func orderedData(raw []byte, format string) ([]csvplugin.Record, error) {
	if format == FormatJSON {
		var doc struct {
			Data json.RawMessage `json:"data"`
		}
		if err := json.Unmarshal(raw, &doc); err != nil {
			return nil, err
		}
		trimmed := bytes.TrimSpace(doc.Data)
		if len(trimmed) == 0 || trimmed[0] != '[' {
			return nil, nil
		}
		var records []csvplugin.Record
		if err := json.Unmarshal(trimmed, &records); err != nil {
			return nil, err
		}
		return records, nil
	}

	var doc struct {
		Data yaml.Node `yaml:"data"`
	}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, err
	}
	if doc.Data.Kind != yaml.SequenceNode {
		return nil, nil
	}
	var records []csvplugin.Record
	if err := doc.Data.Decode(&records); err != nil {
		return nil, err
	}
	return records, nil
}
