package model

// FlatElement is an element with a path breadcrumb instead of children.
type FlatElement struct {
	ID          string `yaml:"id"                    json:"id"`
	Role        Role   `yaml:"role"                  json:"role"`
	Title       string `yaml:"title,omitempty"       json:"title,omitempty"`
	Value       string `yaml:"value,omitempty"       json:"value,omitempty"`
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Path        string `yaml:"path,omitempty"        json:"path,omitempty"`
}

// FlattenElements converts a tree of elements into a flat list.
// Each element gets a path string showing its location in the tree
// using role codes joined with " > ".
func FlattenElements(elements []Element) []FlatElement {
	var result []FlatElement
	for _, el := range elements {
		flattenRecursive(el, "", &result)
	}
	return result
}

func flattenRecursive(el Element, parentPath string, result *[]FlatElement) {
	currentPath := el.Role.String()
	if parentPath != "" {
		currentPath = parentPath + " > " + el.Role.String()
	}

	*result = append(*result, FlatElement{
		ID:          el.ID,
		Role:        el.Role,
		Title:       el.Title,
		Value:       el.Value,
		Description: el.Description,
		Path:        currentPath,
	})

	for _, child := range el.Children {
		flattenRecursive(child, currentPath, result)
	}
}
