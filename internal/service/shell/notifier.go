package shell

import (
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fatih/color"
)

// consoleNotifier renders the ringing indicator on the terminal. The
// dismiss/snooze affordances are the shell's line commands (and the
// interrupt key), which map 1:1 onto the engine transitions.
type consoleNotifier struct {
	// out receives the banner output.
	out io.Writer
	// mu serializes writes with the clock face renderer.
	mu *sync.Mutex
}

// newConsoleNotifier creates a notifier writing to out, sharing mu with
// the clock face renderer so lines never interleave.
func newConsoleNotifier(out io.Writer, mu *sync.Mutex) *consoleNotifier {
	return &consoleNotifier{
		out: out,
		mu:  mu,
	}
}

// ShowRinging prints the ringing banner with the alarm's label and time.
// The BEL keeps a minimal audible cue even without an audio sink.
func (n *consoleNotifier) ShowRinging(_ context.Context, label, timeOfDay string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	banner := color.New(color.FgHiRed, color.Bold)
	_, _ = fmt.Fprintf(n.out, "\r\n%s %s\n", banner.Sprintf("RINGING: %s", label), color.HiWhiteString("Time: %s", timeOfDay))
	_, _ = fmt.Fprintf(n.out, "%s\a\n", color.HiBlackString("type 'dismiss' or 'snooze' (Ctrl+C dismisses too)"))
}

// HideRinging clears the ringing indicator.
func (n *consoleNotifier) HideRinging(context.Context) {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, _ = fmt.Fprintf(n.out, "\r%s\n", color.HiBlackString("ringing stopped"))
}
