package model

import "testing"

func TestMapRole_KnownRoles(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"AXWebArea", RoleWebArea},
		{"AXGroup", RoleGroup},
		{"AXSplitGroup", RoleGroup},
		{"AXTextField", RoleTextField},
		{"AXSearchField", RoleTextField},
		{"AXTextArea", RoleTextArea},
		{"AXScrollArea", RoleScrollArea},
		{"AXRow", RoleRow},
		{"AXCell", RoleCell},
		{"AXButton", RoleButton},
		{"AXStaticText", RoleStaticText},
		{"AXLink", RoleLink},
		{"AXTable", RoleTable},
		{"AXMenuBar", RoleMenu},
		{"AXWindow", RoleWindow},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got := MapRole(tt.input)
			if got != tt.want {
				t.Errorf("MapRole(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestMapRole_UnknownFallback(t *testing.T) {
	unknowns := []string{"AXPopUpButton", "AXSlider", "AXProgressIndicator", "SomethingElse"}
	for _, role := range unknowns {
		got := MapRole(role)
		if got != RoleOther {
			t.Errorf("MapRole(%q) = %v, want %v", role, got, RoleOther)
		}
	}
	if got := MapRole(""); got != RoleUnknown {
		t.Errorf("MapRole(\"\") = %v, want %v", got, RoleUnknown)
	}
}

func TestParseRole(t *testing.T) {
	tests := []struct {
		input string
		want  Role
	}{
		{"web", RoleWebArea},
		{"Web", RoleWebArea},
		{"textarea", RoleTextArea},
		{"input", RoleTextField},
		{" scroll ", RoleScrollArea},
		{"AXTextArea", RoleTextArea},
		{"AXNope", RoleOther},
	}
	for _, tt := range tests {
		got, err := ParseRole(tt.input)
		if err != nil {
			t.Errorf("ParseRole(%q): %v", tt.input, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseRole(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
	if _, err := ParseRole("bogus"); err == nil {
		t.Error("ParseRole(\"bogus\") should fail")
	}
}

func TestRole_StringRoundTrip(t *testing.T) {
	for r := RoleUnknown; r <= RoleOther; r++ {
		got, err := ParseRole(r.String())
		if err != nil {
			t.Fatalf("ParseRole(%q): %v", r.String(), err)
		}
		if got != r {
			t.Errorf("ParseRole(%q) = %v, want %v", r.String(), got, r)
		}
	}
	if Role(99).String() != "other" {
		t.Errorf("out of range role should print as other, got %q", Role(99).String())
	}
}

func TestRole_Predicates(t *testing.T) {
	if !RoleWebArea.IsWebContainer() || !RoleGroup.IsWebContainer() {
		t.Error("web area and group should be web containers")
	}
	if RoleTextField.IsWebContainer() {
		t.Error("text field is not a web container")
	}
	if !RoleTextField.IsEditable() || !RoleTextArea.IsEditable() {
		t.Error("text field and text area should be editable")
	}
	if RoleScrollArea.IsEditable() || RoleUnknown.IsEditable() {
		t.Error("scroll area and unknown are not editable")
	}
}

func TestRole_Spoken(t *testing.T) {
	if got := RoleTextField.Spoken(); got != "text field" {
		t.Errorf("got %q, want %q", got, "text field")
	}
	if got := RoleUnknown.Spoken(); got != "" {
		t.Errorf("unknown role should have no spoken name, got %q", got)
	}
}
