package lint

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// frontMatterSchema validates the raw front matter of each document against a
// compiled JSON schema.
type frontMatterSchema struct {
	compiled *jsonschema.Schema
}

func compileFrontMatterSchema(schema map[string]any) (*frontMatterSchema, error) {
	encoded, err := json.Marshal(schema)
	if err != nil {
		return nil, err
	}
	compiler := jsonschema.NewCompiler()
	compiler.Draft = jsonschema.Draft2020
	if err := compiler.AddResource("frontmatter.json", bytes.NewReader(encoded)); err != nil {
		return nil, err
	}
	compiled, err := compiler.Compile("frontmatter.json")
	if err != nil {
		return nil, err
	}
	return &frontMatterSchema{compiled: compiled}, nil
}

func (s *frontMatterSchema) check(in Input) []Finding {
	if in.Document == nil {
		return nil
	}

	payload, err := toJSONValue(in.Document.FrontMatter.Raw)
	if err != nil {
		return []Finding{errorFinding(RuleFrontMatterSchema, in, "",
			fmt.Sprintf("front matter cannot be validated: %v", err))}
	}

	if err := s.compiled.Validate(payload); err != nil {
		var findings []Finding
		for _, issue := range schemaIssues(err) {
			field := strings.TrimPrefix(issue.location, "/")
			findings = append(findings, errorFinding(RuleFrontMatterSchema, in, field, issue.message))
		}
		return findings
	}
	return nil
}

type schemaIssue struct {
	location string
	message  string
}

// schemaIssues flattens the validator's cause tree into leaf messages.
func schemaIssues(err error) []schemaIssue {
	validationErr, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []schemaIssue{{message: err.Error()}}
	}

	issues := []schemaIssue{}
	var walk func(node *jsonschema.ValidationError)
	walk = func(node *jsonschema.ValidationError) {
		if node == nil {
			return
		}
		if len(node.Causes) == 0 {
			issues = append(issues, schemaIssue{
				location: strings.TrimSpace(node.InstanceLocation),
				message:  strings.TrimSpace(node.Message),
			})
			return
		}
		for _, cause := range node.Causes {
			walk(cause)
		}
	}
	walk(validationErr)
	return issues
}

// LoadSchemaFile reads a JSON schema document from disk.
func LoadSchemaFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("lint: read schema %s: %w", path, err)
	}
	var schema map[string]any
	if err := json.Unmarshal(data, &schema); err != nil {
		return nil, fmt.Errorf("lint: parse schema %s: %w", path, err)
	}
	return schema, nil
}

// toJSONValue converts YAML-decoded values into the shapes the JSON schema
// validator expects: string keys everywhere and JSON number types.
func toJSONValue(value any) (any, error) {
	normalized := normalizeYAML(value)
	encoded, err := json.Marshal(normalized)
	if err != nil {
		return nil, err
	}
	var out any
	if err := json.Unmarshal(encoded, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizeYAML(value any) any {
	switch typed := value.(type) {
	case map[string]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[key] = normalizeYAML(item)
		}
		return out
	case map[any]any:
		out := make(map[string]any, len(typed))
		for key, item := range typed {
			out[fmt.Sprint(key)] = normalizeYAML(item)
		}
		return out
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = normalizeYAML(item)
		}
		return out
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out
	case time.Time:
		return typed.Format(time.RFC3339)
	default:
		return typed
	}
}
