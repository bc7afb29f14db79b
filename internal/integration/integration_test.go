package integration

import (
	"os/exec"
	"strings"
	"testing"
)

func TestRenderSubstitutesShell(t *testing.T) {
	out, err := render("/usr/local/bin/zsh")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	if !strings.HasPrefix(out, "#!/usr/local/bin/zsh\n") {
		t.Errorf("unexpected shebang: %q", strings.SplitN(out, "\n", 2)[0])
	}

	for _, want := range []string{"dupfind()", "--output plain", "fzf"} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered script lacks %q", want)
		}
	}
}

func TestRenderUsesLocalZsh(t *testing.T) {
	if _, err := exec.LookPath("zsh"); err != nil {
		t.Skip("zsh not installed")
	}

	if _, err := Render(); err != nil {
		t.Fatalf("Render: %v", err)
	}
}
