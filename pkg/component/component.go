package component

// Component is one node of the analysed tree. Trees are built once per
// analysis and only read afterwards.
type Component struct {
	UUID      string
	Key       string
	Name      string
	Type      Type
	Status    Status
	ReportRef int
	// Path is the repository-relative path of a FILE, empty otherwise.
	Path     string
	Children []*Component
}

// IsFile reports whether c is a FILE component.
func (c *Component) IsFile() bool {
	return c != nil && c.Type == TypeFile
}

// Files returns every FILE under c, c included, in pre-order.
func (c *Component) Files() []*Component {
	var files []*Component

	c.walk(func(node *Component) {
		if node.IsFile() {
			files = append(files, node)
		}
	})

	return files
}

// FindByUUID returns the node of the subtree with the given uuid, or nil.
func (c *Component) FindByUUID(uuid string) *Component {
	var found *Component

	c.walk(func(node *Component) {
		if found == nil && node.UUID == uuid {
			found = node
		}
	})

	return found
}

func (c *Component) walk(fn func(*Component)) {
	if c == nil {
		return
	}

	fn(c)

	for _, child := range c.Children {
		child.walk(fn)
	}
}
