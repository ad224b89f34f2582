package logging

import (
	"bytes"
	"strings"
	"testing"
)

func TestNew_VerboseEnablesDebug(t *testing.T) {
	var buf bytes.Buffer
	log := New("registry", Options{Verbose: true, Out: &buf})
	log.Debug("probing", "url", "http://localhost:8761/")
	out := buf.String()
	if !strings.Contains(out, "component=registry") || !strings.Contains(out, "probing") {
		t.Fatalf("unexpected output: %q", out)
	}
}

func TestNew_DefaultHidesDebug(t *testing.T) {
	t.Setenv("LOG_LEVEL", "")
	var buf bytes.Buffer
	log := New("registry", Options{Out: &buf})
	log.Debug("hidden")
	log.Info("shown")
	if strings.Contains(buf.String(), "hidden") || !strings.Contains(buf.String(), "shown") {
		t.Fatalf("unexpected output: %q", buf.String())
	}
}

func TestDiscard(t *testing.T) {
	t.Parallel()
	Discard().Error("nothing to see")
}
