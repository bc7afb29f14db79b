package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
)

func TestNewLevels(t *testing.T) {
	var buf bytes.Buffer

	log := New(&buf, false)
	log.Debug("hidden")
	log.Warn("shown", zap.String("path", "/tmp/x"))

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("debug entry written without debug enabled: %q", out)
	}

	if !strings.Contains(out, "WARN") || !strings.Contains(out, "/tmp/x") {
		t.Errorf("warning missing from output: %q", out)
	}

	buf.Reset()

	log = New(&buf, true)
	log.Debug("visible")

	if !strings.Contains(buf.String(), "visible") {
		t.Errorf("debug entry missing with debug enabled: %q", buf.String())
	}
}
