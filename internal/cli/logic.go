package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"github.com/idelchi/dupfind/internal/dupfind"
	"github.com/idelchi/dupfind/internal/logging"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)

	return ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd()))
}

func (c CLI) logic(ctx context.Context, s settings) error {
	enableProgress := s.output != "json" &&
		!s.debug &&
		isTerminal(c.stderr)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()

	log := logging.New(c.stderr, s.debug)
	defer log.Sync() //nolint:errcheck // Nothing to do about a failed flush of stderr

	s.scan.Logger = log

	// Simple progress callback that prints directly to stderr
	var progressHook func(dupfind.Progress)

	if enableProgress {
		// Hide cursor for in-place updates; restore on exit.
		fmt.Fprint(c.stderr, "\033[?25l")
		defer fmt.Fprint(c.stderr, "\033[?25h")

		progressHook = func(p dupfind.Progress) {
			msg := fmt.Sprintf("Scanning… %d files, %d hashed (%s)",
				p.Files, p.Hashed, humanize.IBytes(uint64(p.Bytes))) //nolint:gosec // Bytes is always positive
			fmt.Fprintf(c.stderr, "\r\033[2K%s\r", msg)
		}
	}

	result, err := dupfind.Run(ctx, s.scan, progressHook)

	// Clear the status line
	if enableProgress {
		fmt.Fprint(c.stderr, "\r\033[2K\r")
	}

	if err != nil {
		return err
	}

	switch s.output {
	case "json":
		return PrintJSON(result, c.stdout)
	case "plain":
		return PrintPlain(result, c.stdout)
	case "table":
		return PrintTable(result, c.stdout)
	default:
		return fmt.Errorf("unknown output format: %s", s.output)
	}
}
