package assets

import "testing"

func TestGuidelines(t *testing.T) {
	g := Guidelines()
	if len(g) != 5 {
		t.Fatalf("expected 5 guidelines, got %d: %q", len(g), g)
	}
	for _, line := range g {
		if line == "" || line[0] == '#' {
			t.Fatalf("comment or blank line leaked: %q", line)
		}
	}
}
