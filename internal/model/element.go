package model

// Element is one node of an application's accessibility tree as declared in
// a scripted tree file. Role is the raw AX role or a compact code.
type Element struct {
	ID          string    `yaml:"id"                    json:"id"`
	Role        Role      `yaml:"role"                  json:"role"`
	Title       string    `yaml:"title,omitempty"       json:"title,omitempty"`
	Value       string    `yaml:"value,omitempty"       json:"value,omitempty"`
	Description string    `yaml:"description,omitempty" json:"description,omitempty"`
	Children    []Element `yaml:"children,omitempty"    json:"children,omitempty"`
}
