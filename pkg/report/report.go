// Package report reads analysis report documents, YAML or JSON, and adapts
// them to the tracking collaborators: issue inputs per file, changed lines,
// SCM attribution, the component tree and the analysis metadata.
package report

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ErrInvalidReport is returned for documents that fail the schema or refer
// to unknown components, rules or dates.
var ErrInvalidReport = errors.New("invalid report")

// Report is the decoded document. JSON documents decode through the same
// YAML tags.
type Report struct {
	Version      int           `yaml:"version"`
	Project      string        `yaml:"project"`
	Revision     string        `yaml:"revision,omitempty"`
	AnalysisDate string        `yaml:"analysis_date"`
	BaseAnalysis *BaseAnalysis `yaml:"base_analysis,omitempty"`
	Branch       Branch        `yaml:"branch,omitempty"`
	Root         *Node         `yaml:"root"`
}

// BaseAnalysis is the previous analysis of the branch. It is absent on a
// first analysis.
type BaseAnalysis struct {
	UUID      string `yaml:"uuid"`
	CreatedAt string `yaml:"created_at"`
}

// Branch describes the analysed branch or pull request.
type Branch struct {
	Name        string `yaml:"name,omitempty"`
	Type        string `yaml:"type,omitempty"`
	Target      string `yaml:"target,omitempty"`
	PullRequest string `yaml:"pull_request,omitempty"`
	Main        bool   `yaml:"main,omitempty"`
}

// Node is a component of the tree.
type Node struct {
	UUID     string  `yaml:"uuid"`
	Key      string  `yaml:"key"`
	Name     string  `yaml:"name,omitempty"`
	Type     string  `yaml:"type"`
	Status   string  `yaml:"status,omitempty"`
	Path     string  `yaml:"path,omitempty"`
	Children []*Node `yaml:"children,omitempty"`
	File     *File   `yaml:"file,omitempty"`
}

// File carries the tracking data of a FILE node.
//
// ChangedLines and Target distinguish absent from empty: absent means no
// data, an empty list means nothing changed or no target issue.
type File struct {
	// Source is the current content; line hashes derive from it unless
	// LineHashes is given.
	Source     string   `yaml:"source,omitempty"`
	LineHashes []string `yaml:"line_hashes,omitempty"`
	// PreviousSource is the content at the base analysis, hashing base and
	// closed issues.
	PreviousSource string `yaml:"previous_source,omitempty"`
	// ReferenceSource is the content on the pull request target, hashing
	// target issues and diffed for changed lines.
	ReferenceSource *string     `yaml:"reference_source,omitempty"`
	ChangedLines    []int       `yaml:"changed_lines,omitempty"`
	Scm             []Changeset `yaml:"scm,omitempty"`
	Raw             []Issue     `yaml:"raw,omitempty"`
	Base            []Issue     `yaml:"base,omitempty"`
	Closed          []Issue     `yaml:"closed,omitempty"`
	Target          []Issue     `yaml:"target,omitempty"`
}

// Changeset attributes one line to a commit.
type Changeset struct {
	Line     int    `yaml:"line"`
	Revision string `yaml:"revision"`
	Author   string `yaml:"author,omitempty"`
	Date     string `yaml:"date"`
}

// Range is a line range, both ends inclusive.
type Range struct {
	StartLine int `yaml:"start_line"`
	EndLine   int `yaml:"end_line"`
}

// Location is a secondary location of an issue.
type Location struct {
	Component string `yaml:"component,omitempty"`
	TextRange Range  `yaml:"text_range"`
	Message   string `yaml:"message,omitempty"`
}

// Issue is an issue as stored in a report. Raw issues usually carry only
// rule, location and message.
type Issue struct {
	Key          string       `yaml:"key,omitempty"`
	Rule         string       `yaml:"rule"`
	Line         int          `yaml:"line,omitempty"`
	LineHash     string       `yaml:"line_hash,omitempty"`
	Message      string       `yaml:"message,omitempty"`
	Severity     string       `yaml:"severity,omitempty"`
	Status       string       `yaml:"status,omitempty"`
	Resolution   string       `yaml:"resolution,omitempty"`
	Assignee     string       `yaml:"assignee,omitempty"`
	TextRange    *Range       `yaml:"text_range,omitempty"`
	Flows        [][]Location `yaml:"flows,omitempty"`
	CreationDate string       `yaml:"creation_date,omitempty"`
	UpdateDate   string       `yaml:"update_date,omitempty"`
	CloseDate    string       `yaml:"close_date,omitempty"`
	ManualReopen bool         `yaml:"manual_reopen,omitempty"`
}

// Decode validates data against the schema and decodes it.
func Decode(data []byte) (*Report, error) {
	violations, err := Validate(data)
	if err != nil {
		return nil, err
	}

	if len(violations) > 0 {
		return nil, violationsError(violations)
	}

	var doc Report
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidReport, err)
	}

	return &doc, nil
}

// Load reads, validates and decodes the report at path.
func Load(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}

	doc, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return doc, nil
}
