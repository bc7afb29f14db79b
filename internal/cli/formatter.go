package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/idelchi/dupfind/internal/dupfind"
)

const (
	// TabSpacing is the number of spaces between tabwriter columns.
	TabSpacing = 2
	// DigestPrefix is the number of digest characters shown in tables.
	DigestPrefix = 12
	// NoDuplicates is printed when a scan finds nothing.
	NoDuplicates = "No duplicates found"
)

// theme holds the styles of the table output.
type theme struct {
	header lipgloss.Style
	path   lipgloss.Style
	size   lipgloss.Style
	muted  lipgloss.Style
	title  lipgloss.Style
}

// newTheme returns styles rendered for w. Colors are dropped automatically
// when w is not a terminal.
func newTheme(w io.Writer) theme {
	r := lipgloss.NewRenderer(w)

	return theme{
		header: r.NewStyle().Bold(true).Foreground(lipgloss.Color("#7C3AED")),
		path:   r.NewStyle().Foreground(lipgloss.Color("#3B82F6")),
		size:   r.NewStyle().Foreground(lipgloss.Color("#F59E0B")),
		muted:  r.NewStyle().Foreground(lipgloss.Color("#6B7280")),
		title:  r.NewStyle().Bold(true),
	}
}

// displayPaths shortens paths below the working directory to relative form.
type displayPaths struct {
	cwd string
}

func newDisplayPaths() displayPaths {
	cwd, err := os.Getwd()
	if err != nil {
		return displayPaths{}
	}

	return displayPaths{cwd: cwd}
}

func (d displayPaths) show(path string) string {
	if d.cwd == "" {
		return path
	}

	rel, err := filepath.Rel(d.cwd, path)
	if err != nil || strings.HasPrefix(rel, "..") {
		return path
	}

	return filepath.ToSlash(rel)
}

// PrintJSON outputs the result in JSON format.
func PrintJSON(result *dupfind.Result, writer io.Writer) error {
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding JSON output: %w", err)
	}

	if _, err := fmt.Fprintln(writer, string(data)); err != nil {
		return err
	}

	return nil
}

// PrintPlain outputs one path per line with a blank line after each group.
func PrintPlain(result *dupfind.Result, writer io.Writer) error {
	if len(result.Groups) == 0 {
		_, err := fmt.Fprintln(writer, NoDuplicates)

		return err
	}

	paths := newDisplayPaths()

	for _, g := range result.Groups {
		for _, f := range g.Files {
			if _, err := fmt.Fprintln(writer, paths.show(f)); err != nil {
				return err
			}
		}

		if _, err := fmt.Fprintln(writer); err != nil {
			return err
		}
	}

	_, err := fmt.Fprintf(writer, "Found %d dups in %v\n", len(result.Groups), result.Stats.Elapsed)

	return err
}

// PrintTable outputs the groups and statistics in human-readable form.
//
//nolint:forbidigo // This function prints output to the console.
func PrintTable(result *dupfind.Result, writer io.Writer) error {
	style := newTheme(writer)
	paths := newDisplayPaths()
	w := tabwriter.NewWriter(writer, 0, 4, TabSpacing, ' ', 0)

	if len(result.Groups) == 0 {
		fmt.Fprintln(w, NoDuplicates)
	} else {
		fmt.Fprintln(w, style.title.Render("Duplicate groups:"))

		for i, g := range result.Groups {
			digest := g.Digest
			if len(digest) > DigestPrefix {
				digest = digest[:DigestPrefix]
			}

			fmt.Fprintf(w, "\n  %s %s %s\n",
				style.header.Render(fmt.Sprintf("%d)", i+1)),
				style.size.Render(fmt.Sprintf("%d × %s", len(g.Files), humanize.IBytes(uint64(g.Size)))), //nolint:gosec // Sizes are positive
				style.muted.Render(fmt.Sprintf("(%s %s)", result.Algorithm, digest)))

			for _, f := range g.Files {
				fmt.Fprintf(w, "     %s\n", style.path.Render(paths.show(f)))
			}
		}
	}

	stats := result.Stats

	// Stats summary
	fmt.Fprintln(w, "\n"+style.title.Render("Stats:")+"\t\t")
	fmt.Fprintf(w, "Files scanned:\t%d\n", stats.FilesScanned)
	fmt.Fprintf(w, "Files hashed:\t%d (%s)\n", stats.FilesHashed, humanize.IBytes(uint64(stats.BytesHashed))) //nolint:gosec // Sizes are positive
	fmt.Fprintf(w, "Duplicate groups:\t%d\n", len(result.Groups))
	fmt.Fprintf(w, "Duplicate files:\t%d\n", stats.DuplicateFiles)
	fmt.Fprintf(w, "Wasted space:\t%s (%d bytes)\n",
		humanize.IBytes(uint64(stats.WastedBytes)), stats.WastedBytes) //nolint:gosec // Sizes are positive

	if stats.ErrorCount > 0 {
		fmt.Fprintf(w, "Errors:\t%d\n", stats.ErrorCount)
	}

	fmt.Fprintf(w, "\nElapsed:\t%v\n", stats.Elapsed)

	return w.Flush()
}
