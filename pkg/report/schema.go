package report

import (
	_ "embed"
	"errors"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed report.schema.json
var schemaJSON []byte

// Schema returns the JSON schema of report documents.
func Schema() []byte {
	return schemaJSON
}

// Violation is one schema violation of a report document.
type Violation struct {
	// Field is the dotted path of the offending value, "(root)" for the document.
	Field       string
	Description string
}

func (v Violation) String() string {
	return v.Field + ": " + v.Description
}

// Validate checks a YAML or JSON report document against the schema. The
// error is only set when data is not YAML at all or the schema cannot run.
func Validate(data []byte) ([]Violation, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	if doc == nil {
		return []Violation{{Field: "(root)", Description: "document is empty"}}, nil
	}

	result, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewGoLoader(doc))
	if err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	violations := make([]Violation, 0, len(result.Errors()))
	for _, resultErr := range result.Errors() {
		violations = append(violations, Violation{Field: resultErr.Field(), Description: resultErr.Description()})
	}

	return violations, nil
}

func violationsError(violations []Violation) error {
	errs := make([]error, 0, len(violations))
	for _, violation := range violations {
		errs = append(errs, errors.New(violation.String())) //nolint:err113 // message-only detail joined under ErrInvalidReport.
	}

	return fmt.Errorf("%w: %w", ErrInvalidReport, errors.Join(errs...))
}
