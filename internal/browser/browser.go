// Package browser opens generated images and links with the desktop's default viewer.
package browser

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
)

// ErrNoLauncher is returned when no viewer command is known for this system
var ErrNoLauncher = errors.New("no program available to open links")

// starter launches a command without waiting for it; replaced in tests
var starter = func(ctx context.Context, name string, args ...string) error {
	return exec.CommandContext(ctx, name, args...).Start()
}

// lookPath is exec.LookPath; replaced in tests
var lookPath = exec.LookPath

// Command returns the program and arguments that open target.
// $BROWSER takes precedence over the platform default.
func Command(goos, target string) (string, []string, error) {
	if custom := strings.TrimSpace(os.Getenv("BROWSER")); custom != "" {
		fields := strings.Fields(custom)
		return fields[0], append(fields[1:], target), nil
	}

	switch goos {
	case "darwin":
		return "open", []string{target}, nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		for _, candidate := range []string{"xdg-open", "wslview", "sensible-browser"} {
			if _, err := lookPath(candidate); err == nil {
				return candidate, []string{target}, nil
			}
		}
		return "", nil, ErrNoLauncher
	default:
		return "", nil, fmt.Errorf("%w on %s", ErrNoLauncher, goos)
	}
}

// Open shows target (a URL or a local file) in the default viewer.
// Data URIs are rejected; save them to a file first.
func Open(ctx context.Context, target string) error {
	if strings.HasPrefix(target, "data:") {
		return errors.New("data URIs cannot be opened directly")
	}

	name, args, err := Command(runtime.GOOS, target)
	if err != nil {
		return err
	}

	if err := starter(ctx, name, args...); err != nil {
		return fmt.Errorf("failed to start %s: %w", name, err)
	}
	return nil
}
