package lib

import (
	"errors"
	"fmt"
	"runtime"

	"mkvnmp4/lib/osa"
)

var (
	ErrUnsupportedPlatform = errors.New("unsupported platform")
	ErrToolMissing         = errors.New("required tool missing")
)

// availabilityChecker is implemented by processors that can tell up front
// whether the host is able to drive them.
type availabilityChecker interface {
	CheckAvailable() error
}

// Preflight verifies that everything the action needs is present before
// any scan starts. Listing needs nothing; dry runs never call out.
func Preflight(cfg Config, proc Processor, runner *osa.Runner) error {
	return preflight(runtime.GOOS, cfg, proc, runner)
}

func preflight(goos string, cfg Config, proc Processor, runner *osa.Runner) error {
	if cfg.DryRun || cfg.Action == ActionList {
		return nil
	}
	if cfg.Action.NeedsProcessor() {
		if goos != "darwin" {
			return fmt.Errorf("%w: sending to Subler requires macOS, running on %s", ErrUnsupportedPlatform, goos)
		}
		if checker, ok := proc.(availabilityChecker); ok {
			if err := checker.CheckAvailable(); err != nil {
				return fmt.Errorf("%w: %v", ErrToolMissing, err)
			}
		}
	}

	finderTrash := cfg.Trash && goos == "darwin" && (cfg.Action == ActionRemove || cfg.Action == ActionWait)
	if !finderTrash {
		return nil
	}
	if err := runner.Check(); err != nil {
		return fmt.Errorf("%w: %v", ErrToolMissing, err)
	}
	return nil
}
