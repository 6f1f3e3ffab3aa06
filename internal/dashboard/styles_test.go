package dashboard

import "testing"

func TestBanner_RendersText(t *testing.T) {
	// Given: success and failure banners
	// When: text is rendered through each
	// Then: the text survives and a border is drawn
	for _, isErr := range []bool{false, true} {
		got := Banner(isErr).Render("User Created")
		if !containsPlainText(got, "User Created") {
			t.Errorf("Banner(%v) lost text: %q", isErr, got)
		}
		if !containsPlainText(got, "╭") {
			t.Errorf("Banner(%v) has no border: %q", isErr, got)
		}
	}
}

func TestTableStyles_RenderPlainText(t *testing.T) {
	st := TableStyles()
	if got := stripANSI(st.Header.Render("Name")); got != "Name" {
		t.Errorf("header render = %q, want %q", got, "Name")
	}
}
