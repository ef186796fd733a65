package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseConfig_Full(t *testing.T) {
	yaml := `
compile_threshold: 10
max_compile_attempts: 1
recompile_after_deopts: 4
interpreter: tree
trace: true
`
	cfg, err := ParseConfig([]byte(yaml), "tiervm.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CompileThreshold != 10 {
		t.Errorf("compile_threshold = %d, want 10", cfg.CompileThreshold)
	}
	if cfg.MaxCompileAttempts != 1 {
		t.Errorf("max_compile_attempts = %d, want 1", cfg.MaxCompileAttempts)
	}
	if cfg.RecompileAfterDeopts != 4 {
		t.Errorf("recompile_after_deopts = %d, want 4", cfg.RecompileAfterDeopts)
	}
	if cfg.Interpreter != InterpreterTree {
		t.Errorf("interpreter = %q, want tree", cfg.Interpreter)
	}
	if !cfg.Trace {
		t.Error("expected trace to be true")
	}
}

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("trace: false\n"), "tiervm.yaml")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if *cfg != *Default() {
		t.Errorf("config = %+v, want defaults %+v", *cfg, *Default())
	}
	if cfg.CompileThreshold != DefaultCompileThreshold || cfg.Interpreter != InterpreterAbstract {
		t.Errorf("defaults not applied: %+v", *cfg)
	}
}

func TestParseConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"negative threshold", "compile_threshold: -1", "compile_threshold"},
		{"negative attempts", "max_compile_attempts: -2", "max_compile_attempts"},
		{"negative deopts", "recompile_after_deopts: -3", "recompile_after_deopts"},
		{"unknown interpreter", "interpreter: jit", "unknown interpreter"},
		{"malformed", "compile_threshold: [1", "parsing"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml), "tiervm.yaml")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q does not mention %q", err, tt.want)
			}
		})
	}
}

func TestFindConfig_WalksUp(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	path := filepath.Join(root, "tiervm.yml")
	if err := os.WriteFile(path, []byte("compile_threshold: 5\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfig(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if found != path {
		t.Errorf("found %q, want %q", found, path)
	}

	cfg, err := Resolve(nested)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.CompileThreshold != 5 {
		t.Errorf("compile_threshold = %d, want 5", cfg.CompileThreshold)
	}
}

func TestLoadConfig_Missing(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "tiervm.yaml"))
	if err == nil || !strings.Contains(err.Error(), "reading config") {
		t.Errorf("expected read error, got %v", err)
	}
}
