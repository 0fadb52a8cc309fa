package lib

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const DefaultWaitTimeout = 600 * time.Second

var (
	ErrNoConfig = errors.New("no config file found")
	ErrNoRoots  = errors.New("no configured directory is present")
)

// Config is built once at startup and handed to every component by value.
type Config struct {
	Roots           []string
	Action          Action
	MaxDepth        int
	IgnoreSubstring string
	WaitTimeout     time.Duration
	DryRun          bool
	Verbose         int
	Trash           bool
}

func DefaultConfig() Config {
	return Config{
		Action:          ActionSend,
		MaxDepth:        DefaultMaxDepth,
		IgnoreSubstring: DefaultIgnoreSubstring,
		WaitTimeout:     DefaultWaitTimeout,
		Trash:           true,
	}
}

// FileConfig is the on-disk configuration. Plain files carry only roots.
type FileConfig struct {
	Roots       []string `yaml:"roots"`
	MaxDepth    int      `yaml:"max_depth"`
	Ignore      *string  `yaml:"ignore"`
	WaitTimeout int      `yaml:"wait_timeout"`
	Trash       *bool    `yaml:"trash"`
}

// ConfigPaths lists the candidate config files in lookup order.
func ConfigPaths() []string {
	paths := []string{
		"/etc/mkvnmp4.conf",
		"/etc/mkvnmp4/mkvnmp4.conf",
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".mkvnmp4.conf"),
			filepath.Join(home, ".config", "mkvnmp4.conf"),
			filepath.Join(home, ".config", "mkvnmp4", "config.yaml"),
		)
	}
	return paths
}

// FindConfigFile returns the first candidate that exists.
func FindConfigFile(candidates []string) (string, error) {
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w; looked at: %s", ErrNoConfig, strings.Join(candidates, ", "))
}

// LoadFile parses path as YAML when its extension says so, otherwise as a
// list of directories, one per line, with # comments.
func LoadFile(path string) (FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return FileConfig{}, fmt.Errorf("failed to read config: %w", err)
	}

	var fc FileConfig
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &fc); err != nil {
			return FileConfig{}, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	default:
		fc.Roots = parseRootList(data)
	}

	for i, root := range fc.Roots {
		fc.Roots[i] = expandHome(strings.TrimSpace(root))
	}
	if len(fc.Roots) == 0 {
		return FileConfig{}, fmt.Errorf("config %s lists no directories", path)
	}
	if fc.MaxDepth < 0 || fc.WaitTimeout < 0 {
		return FileConfig{}, fmt.Errorf("config %s: max_depth and wait_timeout must not be negative", path)
	}
	return fc, nil
}

func parseRootList(data []byte) []string {
	var roots []string
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		roots = append(roots, line)
	}
	return roots
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// WithFile layers fc over c.
func (c Config) WithFile(fc FileConfig) Config {
	c.Roots = append([]string(nil), fc.Roots...)
	if fc.MaxDepth > 0 {
		c.MaxDepth = fc.MaxDepth
	}
	if fc.Ignore != nil {
		c.IgnoreSubstring = *fc.Ignore
	}
	if fc.WaitTimeout > 0 {
		c.WaitTimeout = time.Duration(fc.WaitTimeout) * time.Second
	}
	if fc.Trash != nil {
		c.Trash = *fc.Trash
	}
	return c
}

// WithEnv applies WAIT_TIMEOUT (seconds) from getenv.
func (c Config) WithEnv(getenv func(string) string) (Config, error) {
	raw := strings.TrimSpace(getenv("WAIT_TIMEOUT"))
	if raw == "" {
		return c, nil
	}
	secs, err := strconv.Atoi(raw)
	if err != nil || secs <= 0 {
		return c, fmt.Errorf("invalid WAIT_TIMEOUT %q (use a positive number of seconds)", raw)
	}
	c.WaitTimeout = time.Duration(secs) * time.Second
	return c, nil
}

// ExistingRoots keeps the roots that exist as directories, warning about
// the rest. It fails with ErrNoRoots when none survive.
func ExistingRoots(roots []string) ([]string, error) {
	var existing []string
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			slog.Warn("Configured directory not available, skipping", "dir", root, "error", err)
			continue
		}
		if !info.IsDir() {
			slog.Warn("Configured path is not a directory, skipping", "path", root)
			continue
		}
		if err := checkReadable(root); err != nil {
			slog.Warn("Configured directory may not be fully readable", "dir", root, "error", err)
		}
		existing = append(existing, root)
	}
	if len(existing) == 0 {
		return nil, fmt.Errorf("%w; mount them and retry", ErrNoRoots)
	}
	return existing, nil
}
