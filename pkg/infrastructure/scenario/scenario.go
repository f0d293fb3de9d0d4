// Package scenario reads and writes staffing scenarios: a named set of weekly
// minimums and cost parameters stored as YAML or JSON. Both formats are checked
// against the same embedded JSON Schema before they are turned into a problem.
package scenario

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/vsinha/workforce/pkg/domain/entities"
)

//go:embed scenario.schema.json
var schemaJSON string

var schemaLoader = gojsonschema.NewStringLoader(schemaJSON)

const rootContext = "(root)"

// Format is a scenario file encoding
type Format string

const (
	YAML Format = "yaml"
	JSON Format = "json"
)

// FormatFromPath picks the format from a file extension
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".json":
		return JSON, nil
	default:
		return "", fmt.Errorf("unsupported scenario file extension %q (expected .yaml, .yml or .json)", filepath.Ext(path))
	}
}

// Amount is a non-negative currency value. It accepts numbers or numeric strings.
type Amount struct {
	decimal.Decimal
}

// NewAmount wraps a decimal
func NewAmount(d decimal.Decimal) Amount {
	return Amount{Decimal: d}
}

// UnmarshalYAML parses the scalar text directly so no precision is lost through float64
func (a *Amount) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: amount must be a scalar", node.Line)
	}
	d, err := decimal.NewFromString(node.Value)
	if err != nil {
		return fmt.Errorf("line %d: invalid amount %q: %w", node.Line, node.Value, err)
	}
	a.Decimal = d
	return nil
}

// MarshalYAML emits the amount as a plain number
func (a Amount) MarshalYAML() (interface{}, error) {
	return &yaml.Node{Kind: yaml.ScalarNode, Value: a.String()}, nil
}

// HiringCost mirrors entities.HiringCost in file form
type HiringCost struct {
	Fixed   Amount `json:"fixed" yaml:"fixed"`
	PerHead Amount `json:"per_head" yaml:"per_head"`
}

// Scenario is the file representation of a staffing problem
type Scenario struct {
	Name string `json:"name" yaml:"name"`
	// Weeks defaults to the number of minimums when omitted
	Weeks      int                  `json:"weeks,omitempty" yaml:"weeks,omitempty"`
	Minimums   []entities.Headcount `json:"minimums" yaml:"minimums"`
	ExcessCost Amount               `json:"excess_cost" yaml:"excess_cost"`
	Hiring     HiringCost           `json:"hiring_cost" yaml:"hiring_cost"`
	Strategy   string               `json:"strategy,omitempty" yaml:"strategy,omitempty"`
}

// FromProblem creates a scenario describing problem
func FromProblem(name string, problem *entities.Problem) *Scenario {
	return &Scenario{
		Name:       name,
		Weeks:      problem.Weeks,
		Minimums:   append([]entities.Headcount(nil), problem.Minimums...),
		ExcessCost: NewAmount(problem.ExcessCost),
		Hiring: HiringCost{
			Fixed:   NewAmount(problem.Hiring.Fixed),
			PerHead: NewAmount(problem.Hiring.PerHead),
		},
	}
}

// Problem converts the scenario into validated problem parameters
func (s *Scenario) Problem() (*entities.Problem, error) {
	weeks := s.Weeks
	if weeks == 0 {
		weeks = len(s.Minimums)
	}
	return entities.NewProblem(weeks, s.Minimums, s.ExcessCost.Decimal, entities.HiringCost{
		Fixed:   s.Hiring.Fixed.Decimal,
		PerHead: s.Hiring.PerHead.Decimal,
	})
}

// Load reads a scenario file, choosing the format from its extension
func Load(path string) (*Scenario, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file %s: %w", path, err)
	}

	s, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("scenario file %s: %w", path, err)
	}
	return s, nil
}

// Parse decodes and schema-checks a scenario document
func Parse(data []byte, format Format) (*Scenario, error) {
	var (
		document any
		s        Scenario
	)

	switch format {
	case YAML:
		if err := yaml.Unmarshal(data, &document); err != nil {
			return nil, fmt.Errorf("failed to parse YAML: %w", err)
		}
		if err := validateDocument(gojsonschema.NewGoLoader(document)); err != nil {
			return nil, err
		}
		if err := yaml.Unmarshal(data, &s); err != nil {
			return nil, fmt.Errorf("failed to decode scenario: %w", err)
		}
	case JSON:
		if err := validateDocument(gojsonschema.NewBytesLoader(data)); err != nil {
			return nil, err
		}
		decoder := json.NewDecoder(bytes.NewReader(data))
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&s); err != nil {
			return nil, fmt.Errorf("failed to decode scenario: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported scenario format: %s", format)
	}

	return &s, nil
}

// Write encodes the scenario in the given format
func (s *Scenario) Write(w io.Writer, format Format) error {
	switch format {
	case YAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(s); err != nil {
			return fmt.Errorf("failed to encode scenario: %w", err)
		}
		return encoder.Close()
	case JSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(s); err != nil {
			return fmt.Errorf("failed to encode scenario: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unsupported scenario format: %s", format)
	}
}

// SchemaError lists every place a scenario document breaks the schema
type SchemaError struct {
	Errors []FieldError
}

// FieldError represents a single validation error at a specific field
type FieldError struct {
	Field   string
	Message string
}

func (e *SchemaError) Error() string {
	var sb strings.Builder
	sb.WriteString("scenario does not match schema:")
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "\n  - %s: %s", err.Field, err.Message)
	}
	return sb.String()
}

// Is reports schema violations as invalid problems
func (e *SchemaError) Is(target error) bool {
	return target == entities.ErrInvalidProblem
}

func validateDocument(document gojsonschema.JSONLoader) error {
	result, err := gojsonschema.Validate(schemaLoader, document)
	if err != nil {
		return fmt.Errorf("failed to validate scenario: %w", err)
	}
	if result.Valid() {
		return nil
	}

	schemaErr := &SchemaError{Errors: make([]FieldError, 0, len(result.Errors()))}
	for _, desc := range result.Errors() {
		field := strings.TrimPrefix(desc.Context().String(), rootContext+".")
		schemaErr.Errors = append(schemaErr.Errors, FieldError{Field: field, Message: desc.Description()})
	}
	return schemaErr
}
