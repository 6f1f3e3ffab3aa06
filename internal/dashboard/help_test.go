package dashboard

import (
	"testing"

	"github.com/charmbracelet/bubbles/help"
)

func TestHelpBindings_ListMode(t *testing.T) {
	// Given: help bindings for list mode
	allKeys := collectKeys(HelpBindings(ModeList).ShortHelp())

	// Then: expand and quit keys are present
	if !containsKey(allKeys, "enter") {
		t.Error("list help should contain 'enter' key")
	}
	if !containsKey(allKeys, "q") {
		t.Error("list help should contain 'q' key")
	}
}

func TestHelpBindings_FormMode(t *testing.T) {
	// Given: help bindings for form mode
	allKeys := collectKeys(HelpBindings(ModeForm).ShortHelp())

	// Then: save is present but quit-on-q is not
	if !containsKey(allKeys, "ctrl+s") {
		t.Error("form help should contain 'ctrl+s' key")
	}
	if containsKey(allKeys, "q") {
		t.Error("form help should not contain 'q' key")
	}
}

func TestHelpBindings_ConfirmMode(t *testing.T) {
	allKeys := collectKeys(HelpBindings(ModeConfirmDelete).ShortHelp())

	if !containsKey(allKeys, "y") || !containsKey(allKeys, "esc") {
		t.Errorf("confirm help keys = %v, want y and esc", allKeys)
	}
}

func TestHelpBindings_RendersWithHelpModel(t *testing.T) {
	// Given: a help model
	h := help.New()
	h.Width = 120

	// Then: every mode renders a non-empty help bar
	for _, mode := range []Mode{ModeList, ModeForm, ModeConfirmDelete} {
		if got := h.View(HelpBindings(mode)); got == "" {
			t.Errorf("help view for mode %d is empty", mode)
		}
	}
}
