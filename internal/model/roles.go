package model

import (
	"fmt"
	"strings"
)

// Role is the semantic role of a focusable element. The set is closed:
// anything the accessibility layer reports outside it maps to RoleOther,
// and a role that could not be read at all is RoleUnknown.
type Role int

const (
	RoleUnknown Role = iota
	RoleWebArea
	RoleGroup
	RoleTextField
	RoleTextArea
	RoleScrollArea
	RoleRow
	RoleCell
	RoleButton
	RoleStaticText
	RoleLink
	RoleImage
	RoleCheckBox
	RoleList
	RoleTable
	RoleMenu
	RoleMenuItem
	RoleToolbar
	RoleWindow
	RoleOther
)

// axRoles maps macOS AXRole values to roles.
var axRoles = map[string]Role{
	"AXWebArea":     RoleWebArea,
	"AXGroup":       RoleGroup,
	"AXSplitGroup":  RoleGroup,
	"AXTextField":   RoleTextField,
	"AXSearchField": RoleTextField,
	"AXTextArea":    RoleTextArea,
	"AXScrollArea":  RoleScrollArea,
	"AXRow":         RoleRow,
	"AXCell":        RoleCell,
	"AXButton":      RoleButton,
	"AXStaticText":  RoleStaticText,
	"AXLink":        RoleLink,
	"AXImage":       RoleImage,
	"AXCheckBox":    RoleCheckBox,
	"AXList":        RoleList,
	"AXOutline":     RoleList,
	"AXTable":       RoleTable,
	"AXMenu":        RoleMenu,
	"AXMenuBar":     RoleMenu,
	"AXMenuItem":    RoleMenuItem,
	"AXToolbar":     RoleToolbar,
	"AXWindow":      RoleWindow,
}

var roleCodes = [...]string{
	RoleUnknown:    "unknown",
	RoleWebArea:    "web",
	RoleGroup:      "group",
	RoleTextField:  "input",
	RoleTextArea:   "textarea",
	RoleScrollArea: "scroll",
	RoleRow:        "row",
	RoleCell:       "cell",
	RoleButton:     "btn",
	RoleStaticText: "txt",
	RoleLink:       "lnk",
	RoleImage:      "img",
	RoleCheckBox:   "chk",
	RoleList:       "list",
	RoleTable:      "table",
	RoleMenu:       "menu",
	RoleMenuItem:   "menuitem",
	RoleToolbar:    "toolbar",
	RoleWindow:     "window",
	RoleOther:      "other",
}

var spokenNames = [...]string{
	RoleUnknown:    "",
	RoleWebArea:    "web content",
	RoleGroup:      "group",
	RoleTextField:  "text field",
	RoleTextArea:   "text area",
	RoleScrollArea: "scroll area",
	RoleRow:        "row",
	RoleCell:       "cell",
	RoleButton:     "button",
	RoleStaticText: "text",
	RoleLink:       "link",
	RoleImage:      "image",
	RoleCheckBox:   "checkbox",
	RoleList:       "list",
	RoleTable:      "table",
	RoleMenu:       "menu",
	RoleMenuItem:   "menu item",
	RoleToolbar:    "toolbar",
	RoleWindow:     "window",
	RoleOther:      "",
}

// MapRole converts a raw accessibility role to a Role.
// Empty input means the attribute was missing and maps to RoleUnknown.
func MapRole(axRole string) Role {
	if axRole == "" {
		return RoleUnknown
	}
	if r, ok := axRoles[axRole]; ok {
		return r
	}
	return RoleOther
}

// ParseRole accepts either a compact code ("web", "textarea") or a raw
// AX role ("AXWebArea").
func ParseRole(s string) (Role, error) {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "AX") {
		return MapRole(s), nil
	}
	for i, code := range roleCodes {
		if strings.EqualFold(code, s) {
			return Role(i), nil
		}
	}
	return RoleUnknown, fmt.Errorf("unknown role: %q", s)
}

// String returns the compact role code.
func (r Role) String() string {
	if r < 0 || int(r) >= len(roleCodes) {
		return roleCodes[RoleOther]
	}
	return roleCodes[r]
}

// Spoken returns the name read out after an element's description.
// Unknown and other roles have no spoken name.
func (r Role) Spoken() string {
	if r < 0 || int(r) >= len(spokenNames) {
		return ""
	}
	return spokenNames[r]
}

// MarshalText lets roles appear as codes in YAML and JSON output.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText parses a role code or AX role.
func (r *Role) UnmarshalText(b []byte) error {
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// IsWebContainer reports whether the role is a web-content area or generic
// group, the roles that put a browser into Browse mode.
func (r Role) IsWebContainer() bool {
	return r == RoleWebArea || r == RoleGroup
}

// IsEditable reports whether the role takes direct text input.
func (r Role) IsEditable() bool {
	return r == RoleTextField || r == RoleTextArea
}
