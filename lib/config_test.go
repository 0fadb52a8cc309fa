package lib

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadFile_Plain(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "mkvnmp4.conf")
	content := `# media drives
/Volumes/Movies

  /Volumes/TV  
# /Volumes/Old
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	fc, err := LoadFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	expected := []string{"/Volumes/Movies", "/Volumes/TV"}
	if !equalStrings(fc.Roots, expected) {
		t.Errorf("Expected roots %v, got %v", expected, fc.Roots)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	tmpDir := t.TempDir()
	cfgPath := filepath.Join(tmpDir, "config.yaml")
	content := `roots:
  - /Volumes/Movies
  - ~/Videos
max_depth: 6
ignore: "@eaDir"
wait_timeout: 120
trash: false
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write config: %v", err)
	}

	fc, err := LoadFile(cfgPath)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}

	home, _ := os.UserHomeDir()
	if len(fc.Roots) != 2 || fc.Roots[1] != filepath.Join(home, "Videos") {
		t.Errorf("Expected ~ to expand, got %v", fc.Roots)
	}

	cfg := DefaultConfig().WithFile(fc)
	if cfg.MaxDepth != 6 {
		t.Errorf("Expected max depth 6, got %d", cfg.MaxDepth)
	}
	if cfg.IgnoreSubstring != "@eaDir" {
		t.Errorf("Expected ignore @eaDir, got %q", cfg.IgnoreSubstring)
	}
	if cfg.WaitTimeout != 120*time.Second {
		t.Errorf("Expected 120s timeout, got %s", cfg.WaitTimeout)
	}
	if cfg.Trash {
		t.Error("Expected trash to be disabled")
	}
}

func TestLoadFile_Errors(t *testing.T) {
	tmpDir := t.TempDir()

	empty := filepath.Join(tmpDir, "empty.conf")
	if err := os.WriteFile(empty, []byte("# nothing\n\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(empty); err == nil {
		t.Error("Expected error for config without directories")
	}

	bad := filepath.Join(tmpDir, "bad.yaml")
	if err := os.WriteFile(bad, []byte("roots: [unterminated"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFile(bad); err == nil {
		t.Error("Expected error for malformed YAML")
	}

	if _, err := LoadFile(filepath.Join(tmpDir, "missing.conf")); err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Action != ActionSend {
		t.Errorf("Expected default action send, got %s", cfg.Action)
	}
	if cfg.MaxDepth != 4 || cfg.IgnoreSubstring != "recycle" || cfg.WaitTimeout != 600*time.Second {
		t.Errorf("Unexpected defaults: %+v", cfg)
	}
	if !cfg.Trash {
		t.Error("Expected trash to be enabled by default")
	}
}

func TestFindConfigFile(t *testing.T) {
	tmpDir := t.TempDir()
	first := filepath.Join(tmpDir, "first.conf")
	second := filepath.Join(tmpDir, "second.conf")
	if err := os.WriteFile(second, []byte("/a\n"), 0644); err != nil {
		t.Fatal(err)
	}

	path, err := FindConfigFile([]string{first, second})
	if err != nil {
		t.Fatalf("FindConfigFile failed: %v", err)
	}
	if path != second {
		t.Errorf("Expected %s, got %s", second, path)
	}

	if err := os.WriteFile(first, []byte("/b\n"), 0644); err != nil {
		t.Fatal(err)
	}
	path, _ = FindConfigFile([]string{first, second})
	if path != first {
		t.Errorf("Expected earlier candidate %s to win, got %s", first, path)
	}

	_, err = FindConfigFile([]string{filepath.Join(tmpDir, "none.conf")})
	if !errors.Is(err, ErrNoConfig) {
		t.Errorf("Expected ErrNoConfig, got %v", err)
	}
}

func TestWithEnv(t *testing.T) {
	tests := []struct {
		name     string
		value    string
		expected time.Duration
		wantErr  bool
	}{
		{"unset", "", DefaultWaitTimeout, false},
		{"override", "30", 30 * time.Second, false},
		{"not a number", "soon", 0, true},
		{"zero", "0", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			getenv := func(key string) string {
				if key == "WAIT_TIMEOUT" {
					return tt.value
				}
				return ""
			}
			cfg, err := DefaultConfig().WithEnv(getenv)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("Unexpected error: %v", err)
			}
			if cfg.WaitTimeout != tt.expected {
				t.Errorf("Expected %s, got %s", tt.expected, cfg.WaitTimeout)
			}
		})
	}
}

func TestExistingRoots(t *testing.T) {
	tmpDir := t.TempDir()
	present := filepath.Join(tmpDir, "present")
	if err := os.Mkdir(present, 0755); err != nil {
		t.Fatal(err)
	}
	file := filepath.Join(tmpDir, "file")
	if err := os.WriteFile(file, nil, 0644); err != nil {
		t.Fatal(err)
	}

	roots, err := ExistingRoots([]string{filepath.Join(tmpDir, "absent"), file, present})
	if err != nil {
		t.Fatalf("ExistingRoots failed: %v", err)
	}
	if !equalStrings(roots, []string{present}) {
		t.Errorf("Expected only %s, got %v", present, roots)
	}

	_, err = ExistingRoots([]string{filepath.Join(tmpDir, "absent")})
	if !errors.Is(err, ErrNoRoots) {
		t.Errorf("Expected ErrNoRoots, got %v", err)
	}
}
