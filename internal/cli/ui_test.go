package cli

import (
	"io"
	"os"
	"strings"
	"testing"
)

// captureStdout runs fn with os.Stdout redirected to a pipe and returns
// everything it printed.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	orig := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()
	w.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("reading captured output: %v", err)
	}
	return string(out)
}

func TestPrintHelpers(t *testing.T) {
	tests := []struct {
		name     string
		fn       func()
		wantIcon string
		wantMsg  string
	}{
		{
			name:     "success",
			fn:       func() { printSuccess("solved %d", 3) },
			wantIcon: iconSuccess,
			wantMsg:  "solved 3",
		},
		{
			name:     "error",
			fn:       func() { printError("generator %d failed", 2) },
			wantIcon: iconError,
			wantMsg:  "generator 2 failed",
		},
		{
			name:     "warning",
			fn:       func() { printWarning("removing session %q", "fbarc") },
			wantIcon: iconWarning,
			wantMsg:  `removing session "fbarc"`,
		},
		{
			name:     "info",
			fn:       func() { printInfo("starting session %s", "fbarc-1234") },
			wantIcon: iconInfo,
			wantMsg:  "starting session fbarc-1234",
		},
		{
			name:    "detail",
			fn:      func() { printDetail("%d generators", 4) },
			wantMsg: "4 generators",
		},
		{
			name:     "file",
			fn:       func() { printFile("graph.svg") },
			wantIcon: iconArrow,
			wantMsg:  "graph.svg",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := captureStdout(t, tt.fn)
			if tt.wantIcon != "" && !strings.Contains(out, tt.wantIcon) {
				t.Errorf("output %q missing icon %q", out, tt.wantIcon)
			}
			if !strings.Contains(out, tt.wantMsg) {
				t.Errorf("output %q missing message %q", out, tt.wantMsg)
			}
		})
	}
}
