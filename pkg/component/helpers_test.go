package component_test

import (
	"context"
	"fmt"

	"github.com/Sumatoshi-tech/issuetrack/pkg/component"
)

// sampleTree builds PROJECT -> DIRECTORY -> {FILE a.go, FILE b.go}.
func sampleTree() *component.Component {
	return &component.Component{
		UUID: "p", Key: "proj", Type: component.TypeProject,
		Children: []*component.Component{{
			UUID: "d", Key: "proj:src", Type: component.TypeDirectory,
			Children: []*component.Component{
				{UUID: "f1", Key: "proj:src/a.go", Type: component.TypeFile, Path: "src/a.go"},
				{UUID: "f2", Key: "proj:src/b.go", Type: component.TypeFile, Path: "src/b.go"},
			},
		}},
	}
}

// recordingVisitor appends "<name>:<type>:<key>" for each typed callback.
type recordingVisitor struct {
	component.TypeAwareVisitorAdapter

	name   string
	events *[]string
	failOn string
}

func (v *recordingVisitor) record(c *component.Component) error {
	*v.events = append(*v.events, fmt.Sprintf("%s:%s:%s", v.name, c.Type, c.Key))

	if c.Key == v.failOn {
		return errBoom
	}

	return nil
}

func (v *recordingVisitor) VisitProject(_ context.Context, c *component.Component) error {
	return v.record(c)
}

func (v *recordingVisitor) VisitDirectory(_ context.Context, c *component.Component) error {
	return v.record(c)
}

func (v *recordingVisitor) VisitFile(_ context.Context, c *component.Component) error {
	return v.record(c)
}

// fileOnlyVisitor records only files.
type fileOnlyVisitor struct {
	component.TypeAwareVisitorAdapter

	name   string
	events *[]string
}

func (v *fileOnlyVisitor) VisitFile(_ context.Context, c *component.Component) error {
	*v.events = append(*v.events, v.name+":"+c.Key)

	return nil
}

// projectOnlyVisitor records only the project.
type projectOnlyVisitor struct {
	component.TypeAwareVisitorAdapter

	name   string
	events *[]string
}

func (v *projectOnlyVisitor) VisitProject(_ context.Context, c *component.Component) error {
	*v.events = append(*v.events, v.name+":"+c.Key)

	return nil
}
