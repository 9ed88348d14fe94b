package model

// AppID identifies an application by its bundle identifier. It is only a
// lookup key; nothing owns it.
type AppID string

// App is an application with its accessibility tree.
type App struct {
	ID       AppID     `yaml:"id"             json:"id"`
	Name     string    `yaml:"name,omitempty" json:"name,omitempty"`
	Elements []Element `yaml:"elements"       json:"elements"`
}
