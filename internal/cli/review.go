package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/glosskit/gloss/internal/config"
	"github.com/glosskit/gloss/internal/presentation/tui"
	"github.com/glosskit/gloss/internal/wizard"
	"github.com/glosskit/gloss/pkg/domain"
)

// ReviewOptions contains all the configuration for the review command.
type ReviewOptions struct {
	Config      *config.Config
	HeadingHTML string
	LoadStored  bool
	Debug       bool
}

const reviewHelp = `# Review dialog

**Compose** | chapter · title N TEXT · note N QUOTE | ADVICE · rm N
**Edit**    | set (finish with a single ".")
**Diff**    | commit
**Any step**| show · next · back · quit
`

// RunReview drives one review dialog interactively on the terminal.
func RunReview(opts ReviewOptions) error {
	logger := createLogger(opts.Debug)
	notifier := NewConsoleNotifier(os.Stderr)

	engine, err := createEngine(opts.Config, logger, notifier)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dialog := engine.OpenDialog(opts.HeadingHTML)
	defer engine.Sessions().Release(dialog)
	w := dialog.Wizard()

	if opts.LoadStored {
		if t := w.Target(); t.PageTitle != "" {
			// Best effort: a miss already surfaced as a warning.
			_ = w.LoadFromStore(ctx, engine.Store(), t.PageTitle)
		}
	}

	printHelp()
	printSystemMessage("Reviewing %s", describeTarget(w.Target()))
	printStep(w)

	reader := bufio.NewReader(os.Stdin)
	for w.IsOpen() {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if ctx.Err() != nil {
			break
		}

		cmd, rest := splitCommand(line)
		switch cmd {
		case "":
			continue
		case "quit", "exit":
			printSystemMessage("Review discarded.")
			return nil
		case "help":
			printHelp()
		case "show":
			printStep(w)
		case "next":
			if w.Advance(ctx) {
				printStep(w)
			} else {
				printSystemMessage("Already at the last step.")
			}
		case "back":
			if w.Regress() {
				printStep(w)
			} else {
				printSystemMessage("Already at the first step.")
			}
		case "commit":
			if w.Step() != wizard.DefaultConfig().Steps-1 {
				printSystemMessage("Commit is offered at the diff step; use 'next' to get there.")
				continue
			}
			if err := w.Commit(ctx); err != nil {
				logger.Debug("commit failed", "err", err)
				continue
			}
			printSystemMessage("Review committed.")
			return nil
		case "chapter":
			w.AddChapter()
			printStep(w)
		case "title":
			handleTitle(w, rest)
		case "note":
			handleNote(w, rest)
		case "rm":
			handleRemove(w, rest)
		case "set":
			handleSetDraft(w, reader)
		default:
			printSystemMessage("Unknown command %q. Type 'help'.", cmd)
		}
	}

	printSystemMessage("Dialog closed.")
	return nil
}

func splitCommand(line string) (string, string) {
	line = strings.TrimSpace(line)
	cmd, rest, _ := strings.Cut(line, " ")
	return strings.ToLower(cmd), strings.TrimSpace(rest)
}

func handleTitle(w *wizard.Wizard, rest string) {
	idxStr, title, _ := strings.Cut(rest, " ")
	idx, err := strconv.Atoi(idxStr)
	if err != nil || idx < 1 || idx > len(w.Chapters()) {
		printSystemMessage("Usage: title N TEXT")
		return
	}
	w.SetTitle(idx-1, strings.TrimSpace(title))
	printStep(w)
}

func handleNote(w *wizard.Wizard, rest string) {
	idxStr, body, _ := strings.Cut(rest, " ")
	idx, err := strconv.Atoi(idxStr)
	chapters := w.Chapters()
	if err != nil || idx < 1 || idx > len(chapters) {
		printSystemMessage("Usage: note N QUOTE | ADVICE")
		return
	}
	quote, advice, _ := strings.Cut(body, "|")
	s := domain.Suggestion{
		Quote:  strings.TrimSpace(quote),
		Advice: strings.TrimSpace(advice),
	}

	ch := chapters[idx-1]
	// A fresh chapter carries one blank suggestion; fill it before adding.
	if len(ch.Suggestions) == 1 && ch.Suggestions[0] == (domain.Suggestion{}) {
		w.SetSuggestion(idx-1, 0, s)
	} else {
		w.AddSuggestion(idx - 1)
		w.SetSuggestion(idx-1, len(ch.Suggestions), s)
	}
	printStep(w)
}

func handleRemove(w *wizard.Wizard, rest string) {
	idx, err := strconv.Atoi(rest)
	if err != nil || idx < 1 || idx > len(w.Chapters()) {
		printSystemMessage("Usage: rm N")
		return
	}
	w.RemoveChapter(idx - 1)
	printStep(w)
}

// handleSetDraft reads replacement draft lines until a lone ".".
func handleSetDraft(w *wizard.Wizard, reader *bufio.Reader) {
	fmt.Println("Enter draft, end with a single '.' line:")
	var lines []string
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			break
		}
		if strings.TrimRight(line, "\n") == "." {
			break
		}
		lines = append(lines, strings.TrimRight(line, "\n"))
	}
	w.SetDraft(strings.Join(lines, "\n"))
	printStep(w)
}

func printHelp() {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		render := tui.NewRenderer()
		if out, err := render(reviewHelp); err == nil {
			fmt.Print(out)
			return
		}
	}
	fmt.Print(reviewHelp)
}

func printStep(w *wizard.Wizard) {
	cfg := wizard.DefaultConfig()
	switch w.Step() {
	case cfg.EditStep:
		printSystemMessage("Step 2/4: edit the wikitext draft")
		fmt.Println(w.Draft())
	case cfg.PreviewStep:
		printSystemMessage("Step 3/4: preview")
		if html := w.PreviewHTML(); html != "" {
			fmt.Println(html)
		} else {
			fmt.Println(w.PreviewWikitext())
		}
	case cfg.DiffStep:
		printSystemMessage("Step 4/4: changes to append")
		printDiff(w)
	default:
		printSystemMessage("Step 1/4: compose annotations")
		printChapters(w.Chapters())
	}
}

func printDiff(w *wizard.Wizard) {
	if lines := w.DiffLines(); len(lines) > 0 {
		if term.IsTerminal(int(os.Stdout.Fd())) {
			lines = tui.ColorizeDiffLines(lines)
		}
		for _, l := range lines {
			fmt.Println(l)
		}
		return
	}
	fmt.Println(w.DiffHTML())
}

func printChapters(chapters []domain.Chapter) {
	for i, ch := range chapters {
		title := ch.Title
		if title == "" {
			title = "(untitled)"
		}
		fmt.Printf("%d. %s\n", i+1, title)
		for _, s := range ch.Suggestions {
			if s == (domain.Suggestion{}) {
				fmt.Println("   (empty)")
				continue
			}
			fmt.Printf("   %q: %s\n", s.Quote, s.Advice)
		}
	}
}

func describeTarget(t domain.Target) string {
	if !t.Resolved() {
		return fmt.Sprintf("%s (section unresolved)", orUnknown(t.PageTitle))
	}
	return fmt.Sprintf("%s section %d", orUnknown(t.PageTitle), *t.SectionID)
}

func orUnknown(s string) string {
	if s == "" {
		return "(unknown page)"
	}
	return s
}

// printSystemMessage prints a standardized system message to stdout.
func printSystemMessage(format string, args ...any) {
	fmt.Printf(">>> %s\n", fmt.Sprintf(format, args...))
}
