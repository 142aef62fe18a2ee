package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"runtime/debug"
	"strings"
	"testing"
)

func TestBuildDetails(t *testing.T) {
	t.Parallel()

	if got := buildDetails(nil); got.Module != "github.com/ginjaninja78/quote-converter" || got.Commit != "" {
		t.Fatalf("nil build info: %+v", got)
	}

	info := &debug.BuildInfo{
		Main: debug.Module{Path: "example.com/fork/quote-converter"},
		Settings: []debug.BuildSetting{
			{Key: "vcs.revision", Value: "3f2a9c1d0e8b"},
			{Key: "vcs.modified", Value: "true"},
		},
	}
	got := buildDetails(info)
	if got.Module != "example.com/fork/quote-converter" || got.Commit != "3f2a9c1" || !got.Modified {
		t.Fatalf("unexpected details %+v", got)
	}
}

func TestPrintVersion(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	present := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(present, []byte("log_level: info\n"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	var out bytes.Buffer
	if err := printVersion(&out, build{Module: "m", Commit: "abc1234", Modified: true}, present); err != nil {
		t.Fatalf("print: %v", err)
	}
	for _, want := range []string{"quoteconv " + Version, "Commit:     abc1234 (modified)", "Config:     " + present + "\n"} {
		if !strings.Contains(out.String(), want) {
			t.Fatalf("missing %q in:\n%s", want, out.String())
		}
	}

	out.Reset()
	absent := filepath.Join(dir, "absent.yaml")
	if err := printVersion(&out, build{Module: "m"}, absent); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(out.String(), "Commit:     unknown") || !strings.Contains(out.String(), "(not found, defaults in use)") {
		t.Fatalf("unexpected output:\n%s", out.String())
	}
}
