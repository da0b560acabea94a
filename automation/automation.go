// Package automation drives the desktop through OCR. A Robot captures
// the screen, recognizes text with any configured engine, and turns
// matched items into synthetic clicks and keyboard input.
package automation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"ocrpipe/observability"
	"ocrpipe/ocr"
)

// ErrTextNotFound reports that no recognized item contained the target
// substring.
var ErrTextNotFound = errors.New("automation: text not found on screen")

// Screen captures the current display contents into an image file.
type Screen interface {
	Capture(ctx context.Context, path string) error
}

// Pointer moves and clicks the cursor in logical screen coordinates.
type Pointer interface {
	Click(ctx context.Context, x, y float64) error
}

// Keyboard injects text and key presses into the focused application.
// Type must handle arbitrary unicode, including CJK input.
type Keyboard interface {
	Type(ctx context.Context, text string) error
	Press(ctx context.Context, key string) error
}

// Robot finds on-screen text and acts on it. Screenshots are taken in
// physical pixels while clicks land in logical coordinates, so matched
// centers are divided by Scale before clicking. On Retina displays the
// factor is 2.
type Robot struct {
	engine   ocr.Engine
	screen   Screen
	pointer  Pointer
	keyboard Keyboard

	scale float64
	log   observability.Logger
}

// RobotConfig assembles a Robot from its collaborators.
type RobotConfig struct {
	Engine   ocr.Engine
	Screen   Screen
	Pointer  Pointer
	Keyboard Keyboard

	// Scale is the display scaling divisor applied to matched
	// coordinates. Zero selects the Retina default of 2.
	Scale  float64
	Logger observability.Logger
}

func NewRobot(cfg RobotConfig) (*Robot, error) {
	if cfg.Engine == nil {
		return nil, errors.New("automation: engine is required")
	}
	if cfg.Screen == nil || cfg.Pointer == nil || cfg.Keyboard == nil {
		return nil, errors.New("automation: screen, pointer and keyboard are required")
	}
	scale := cfg.Scale
	if scale <= 0 {
		scale = 2
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Robot{
		engine:   cfg.Engine,
		screen:   cfg.Screen,
		pointer:  cfg.Pointer,
		keyboard: cfg.Keyboard,
		scale:    scale,
		log:      log,
	}, nil
}

// FindText captures the screen, recognizes it, and returns the logical
// center of the first item whose text contains target. Items without
// geometry cannot be clicked and are skipped. Returns ErrTextNotFound
// when nothing matches.
func (r *Robot) FindText(ctx context.Context, target string) (x, y float64, err error) {
	shot := filepath.Join(os.TempDir(), "ocrpipe_screen.png")
	if err := r.screen.Capture(ctx, shot); err != nil {
		return 0, 0, fmt.Errorf("capture screen: %w", err)
	}
	defer os.Remove(shot)

	res, err := r.engine.Recognize(ctx, shot)
	if err != nil {
		return 0, 0, fmt.Errorf("recognize screen: %w", err)
	}
	r.log.Debug("screen recognized", observability.String("engine", r.engine.Name()),
		observability.Int("items", res.Len()))

	for _, item := range res.Items {
		if item.Box == nil || !strings.Contains(item.Text, target) {
			continue
		}
		center := item.Box.Center()
		x, y = center.X/r.scale, center.Y/r.scale
		r.log.Info("text located", observability.String("text", item.Text),
			observability.Float64("x", x), observability.Float64("y", y))
		return x, y, nil
	}
	return 0, 0, fmt.Errorf("%w: %q", ErrTextNotFound, target)
}

// ClickText finds target on screen and clicks its center.
func (r *Robot) ClickText(ctx context.Context, target string) error {
	x, y, err := r.FindText(ctx, target)
	if err != nil {
		return err
	}
	return r.pointer.Click(ctx, x, y)
}

// TypeText sends text to the focused application.
func (r *Robot) TypeText(ctx context.Context, text string) error {
	return r.keyboard.Type(ctx, text)
}

// PressKey sends a single named key, such as "enter" or "tab".
func (r *Robot) PressKey(ctx context.Context, key string) error {
	return r.keyboard.Press(ctx, key)
}
