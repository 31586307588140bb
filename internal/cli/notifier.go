package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/muesli/termenv"
	"golang.org/x/term"

	"github.com/glosskit/gloss/pkg/ports"
)

// ConsoleNotifier prints dialog notifications to a terminal stream. Levels
// are color coded when the stream is a TTY and left plain otherwise.
type ConsoleNotifier struct {
	out     io.Writer
	profile termenv.Profile
}

// NewConsoleNotifier builds a notifier writing to w. Passing os.Stderr keeps
// notifications off stdout so piped output stays clean.
func NewConsoleNotifier(w io.Writer) *ConsoleNotifier {
	profile := termenv.Ascii
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		profile = termenv.ColorProfile()
	}
	return &ConsoleNotifier{out: w, profile: profile}
}

func (n *ConsoleNotifier) Notify(level ports.NotifyLevel, msg string) {
	fmt.Fprintln(n.out, n.format(level, msg))
}

// Alert prints the message and waits for the user to press enter, mirroring
// a blocking dialog. When stdin is not a terminal it degrades to Notify.
func (n *ConsoleNotifier) Alert(msg string) {
	fmt.Fprintln(n.out, n.format(ports.NotifyError, msg))
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return
	}
	fmt.Fprint(n.out, "Press enter to continue...")
	var discard string
	fmt.Fscanln(os.Stdin, &discard)
}

func (n *ConsoleNotifier) format(level ports.NotifyLevel, msg string) string {
	msg = strings.TrimRight(msg, "\n")
	switch level {
	case ports.NotifyWarn:
		return termenv.String("! " + msg).Foreground(n.profile.Color("#eab308")).String()
	case ports.NotifyError:
		return termenv.String("x " + msg).Foreground(n.profile.Color("#ef4444")).Bold().String()
	default:
		return termenv.String("- " + msg).Foreground(n.profile.Color("#22c55e")).String()
	}
}

var _ ports.Notifier = (*ConsoleNotifier)(nil)
