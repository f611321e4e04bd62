package browser

import (
	"context"
	"errors"
	"testing"
)

func stubLookPath(t *testing.T, available ...string) {
	t.Helper()
	orig := lookPath
	t.Cleanup(func() { lookPath = orig })

	lookPath = func(file string) (string, error) {
		for _, a := range available {
			if a == file {
				return "/usr/bin/" + file, nil
			}
		}
		return "", errors.New("not found")
	}
}

func TestCommand(t *testing.T) {
	t.Setenv("BROWSER", "")
	stubLookPath(t, "xdg-open")

	tests := []struct {
		goos     string
		wantName string
		wantArgs []string
	}{
		{"darwin", "open", []string{"https://x.test/a.png"}},
		{"windows", "rundll32", []string{"url.dll,FileProtocolHandler", "https://x.test/a.png"}},
		{"linux", "xdg-open", []string{"https://x.test/a.png"}},
	}

	for _, tt := range tests {
		t.Run(tt.goos, func(t *testing.T) {
			name, args, err := Command(tt.goos, "https://x.test/a.png")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if name != tt.wantName {
				t.Errorf("name = %s, want %s", name, tt.wantName)
			}
			if len(args) != len(tt.wantArgs) {
				t.Fatalf("args = %v, want %v", args, tt.wantArgs)
			}
			for i := range args {
				if args[i] != tt.wantArgs[i] {
					t.Errorf("args[%d] = %s, want %s", i, args[i], tt.wantArgs[i])
				}
			}
		})
	}
}

func TestCommand_LinuxFallbacks(t *testing.T) {
	t.Setenv("BROWSER", "")

	stubLookPath(t, "wslview")
	name, _, err := Command("linux", "x")
	if err != nil || name != "wslview" {
		t.Errorf("got %s, %v; want wslview", name, err)
	}

	stubLookPath(t)
	if _, _, err := Command("linux", "x"); !errors.Is(err, ErrNoLauncher) {
		t.Errorf("err = %v, want ErrNoLauncher", err)
	}
}

func TestCommand_UnknownOS(t *testing.T) {
	t.Setenv("BROWSER", "")

	if _, _, err := Command("plan9", "x"); !errors.Is(err, ErrNoLauncher) {
		t.Errorf("err = %v, want ErrNoLauncher", err)
	}
}

func TestCommand_BrowserEnv(t *testing.T) {
	t.Setenv("BROWSER", "firefox --new-tab")

	name, args, err := Command("linux", "https://x.test")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if name != "firefox" || len(args) != 2 || args[0] != "--new-tab" || args[1] != "https://x.test" {
		t.Errorf("got %s %v", name, args)
	}
}

func TestOpen(t *testing.T) {
	t.Setenv("BROWSER", "viewer")

	var gotName string
	var gotArgs []string
	orig := starter
	t.Cleanup(func() { starter = orig })
	starter = func(_ context.Context, name string, args ...string) error {
		gotName, gotArgs = name, args
		return nil
	}

	if err := Open(context.Background(), "/tmp/kucing.png"); err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	if gotName != "viewer" || len(gotArgs) != 1 || gotArgs[0] != "/tmp/kucing.png" {
		t.Errorf("started %s %v", gotName, gotArgs)
	}
}

func TestOpen_Errors(t *testing.T) {
	t.Setenv("BROWSER", "viewer")

	orig := starter
	t.Cleanup(func() { starter = orig })
	starter = func(context.Context, string, ...string) error {
		return errors.New("exec: not found")
	}

	if err := Open(context.Background(), "https://x.test"); err == nil {
		t.Error("expected start error")
	}
	if err := Open(context.Background(), "data:image/png;base64,AA=="); err == nil {
		t.Error("expected error for data URI")
	}
}
