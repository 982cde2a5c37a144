package progress

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/lipgloss"
	"github.com/vvka-141/csvstage/pkg/csvstage"
)

// Inserting is the frame set cycled while a file loads.
var Inserting = spinner.Spinner{
	Frames: []string{"Inserting.", "Inserting..", "Inserting...", "Inserting   "},
	FPS:    csvstage.ProgressTick,
}

// Indicator is an animated csvstage.ProgressReporter.
type Indicator struct {
	out     io.Writer
	frames  spinner.Spinner
	visible time.Duration
	blank   time.Duration
	style   lipgloss.Style
	label   lipgloss.Style
}

// Option configures an Indicator.
type Option func(*Indicator)

// WithTiming sets how long each frame is shown and how long the line stays blank after it.
func WithTiming(visible, blank time.Duration) Option {
	return func(i *Indicator) {
		i.visible = visible
		i.blank = blank
	}
}

// WithFrames replaces the frame set.
func WithFrames(frames spinner.Spinner) Option {
	return func(i *Indicator) {
		i.frames = frames
	}
}

// WithoutColor renders frames without styling.
func WithoutColor() Option {
	return func(i *Indicator) {
		i.style = lipgloss.NewStyle()
		i.label = lipgloss.NewStyle()
	}
}

// NewIndicator creates an indicator writing to w.
// Panics if w is nil.
func NewIndicator(w io.Writer, opts ...Option) *Indicator {
	if w == nil {
		panic("writer cannot be nil")
	}
	i := &Indicator{
		out:     w,
		frames:  Inserting,
		visible: csvstage.ProgressTick,
		blank:   csvstage.ProgressPause,
		style:   lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
		label:   lipgloss.NewStyle().Foreground(lipgloss.Color("252")),
	}
	for _, opt := range opts {
		opt(i)
	}
	if len(i.frames.Frames) == 0 {
		i.frames = Inserting
	}
	return i
}

// Start launches the animation goroutine for one file.
func (i *Indicator) Start(label string) csvstage.ProgressHandle {
	ctx, cancel := context.WithCancel(context.Background())
	h := &Handle{
		cancel: cancel,
		done:   make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		i.run(ctx, label)
	}()

	return h
}

func (i *Indicator) run(ctx context.Context, label string) {
	width := 0
	for n := 0; ; n++ {
		frame := i.frames.Frames[n%len(i.frames.Frames)]
		line := i.style.Render(frame)
		if label != "" {
			line += " " + i.label.Render(label)
		}
		width = max(width, lipgloss.Width(line))

		fmt.Fprint(i.out, "\r"+line)
		if !sleep(ctx, i.visible) {
			break
		}

		fmt.Fprint(i.out, "\r"+strings.Repeat(" ", width))
		if !sleep(ctx, i.blank) {
			break
		}
	}
	fmt.Fprint(i.out, "\r"+strings.Repeat(" ", width)+"\r")
}

// sleep waits for d or until ctx is cancelled; it reports whether d elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		select {
		case <-ctx.Done():
			return false
		default:
			return true
		}
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}

// Handle controls one running animation.
type Handle struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
}

// Stop signals the goroutine and waits for it to exit. Safe to call more than once.
func (h *Handle) Stop() {
	h.once.Do(h.cancel)
	<-h.done
}

// Done is closed once the animation goroutine has exited.
func (h *Handle) Done() <-chan struct{} {
	return h.done
}

var _ csvstage.ProgressReporter = (*Indicator)(nil)
