package styles

import (
	"strings"
	"testing"
)

func TestRenderMarkdown(t *testing.T) {
	out := RenderMarkdown("# sim86\n\n```\nmov ax, 5\n```\n", 60)
	for _, want := range []string{"sim86", "mov", "ax"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered markdown lost %q: %q", want, out)
		}
	}
}
