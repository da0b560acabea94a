package automation

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// macOS tool bindings. Each constructor probes for its binary so a
// missing tool fails at assembly time instead of mid-automation.

// ScreenCapture shells out to the screencapture utility.
type ScreenCapture struct{}

func NewScreenCapture() (*ScreenCapture, error) {
	if _, err := exec.LookPath("screencapture"); err != nil {
		return nil, fmt.Errorf("automation: screencapture not found: %w", err)
	}
	return &ScreenCapture{}, nil
}

func (*ScreenCapture) Capture(ctx context.Context, path string) error {
	// -x silences the shutter sound.
	out, err := exec.CommandContext(ctx, "screencapture", "-x", path).CombinedOutput()
	if err != nil {
		return fmt.Errorf("screencapture: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

// Cliclick drives the cursor through the cliclick binary.
type Cliclick struct{}

func NewCliclick() (*Cliclick, error) {
	if _, err := exec.LookPath("cliclick"); err != nil {
		return nil, fmt.Errorf("automation: cliclick not found: %w", err)
	}
	return &Cliclick{}, nil
}

func (*Cliclick) Click(ctx context.Context, x, y float64) error {
	spec := fmt.Sprintf("c:%d,%d", int(x), int(y))
	out, err := exec.CommandContext(ctx, "cliclick", spec).CombinedOutput()
	if err != nil {
		return fmt.Errorf("cliclick %s: %w: %s", spec, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// PasteKeyboard types through the clipboard. Writing the text with
// pbcopy and pasting with a synthetic Cmd-V is the only reliable way
// to enter CJK text, which key-event tools cannot compose.
type PasteKeyboard struct{}

func NewPasteKeyboard() (*PasteKeyboard, error) {
	for _, tool := range []string{"pbcopy", "osascript"} {
		if _, err := exec.LookPath(tool); err != nil {
			return nil, fmt.Errorf("automation: %s not found: %w", tool, err)
		}
	}
	return &PasteKeyboard{}, nil
}

func (*PasteKeyboard) Type(ctx context.Context, text string) error {
	copyCmd := exec.CommandContext(ctx, "pbcopy")
	copyCmd.Stdin = strings.NewReader(text)
	if out, err := copyCmd.CombinedOutput(); err != nil {
		return fmt.Errorf("pbcopy: %w: %s", err, strings.TrimSpace(string(out)))
	}
	// Give the pasteboard a moment to settle before pasting.
	select {
	case <-time.After(200 * time.Millisecond):
	case <-ctx.Done():
		return ctx.Err()
	}
	script := `tell application "System Events" to keystroke "v" using command down`
	if out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript paste: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}

func (*PasteKeyboard) Press(ctx context.Context, key string) error {
	script := fmt.Sprintf(`tell application "System Events" to key code %d`, keyCode(key))
	if out, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput(); err != nil {
		return fmt.Errorf("osascript key %s: %w: %s", key, err, strings.TrimSpace(string(out)))
	}
	return nil
}

// keyCode maps a small set of named keys to macOS virtual key codes.
// Unknown names fall back to return.
func keyCode(key string) int {
	switch strings.ToLower(key) {
	case "enter", "return":
		return 36
	case "tab":
		return 48
	case "space":
		return 49
	case "escape", "esc":
		return 53
	default:
		return 36
	}
}
