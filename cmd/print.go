package cmd

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"
)

// Formats of the reports.
const (
	formatMarkdown = "md"
	formatCSV      = "csv"
	formatHTML     = "html"
)

// checkFormat returns an error if format is not one of allowed.
func checkFormat(format string, allowed ...string) error {
	for _, a := range allowed {
		if format == a {
			return nil
		}
	}
	return fmt.Errorf("unknown format %q, want one of %s", format, strings.Join(allowed, ", "))
}

// renderMarkdown renders md for the terminal, or returns it unchanged if it cannot.
func renderMarkdown(md string) string {
	r, err := glamour.NewTermRenderer(glamour.WithAutoStyle(), glamour.WithWordWrap(0))
	if err != nil {
		return md
	}
	out, err := r.Render(md)
	if err != nil {
		return md
	}
	return out
}

// printMarkdown prints md on the terminal.
func printMarkdown(md string) {
	fmt.Print(renderMarkdown(md))
}

// writeOutput calls write on the file at path, or on stdout if path is empty.
func writeOutput(path string, write func(io.Writer) error) error {
	if path == "" {
		return write(os.Stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := write(f); err != nil {
		f.Close()
		return fmt.Errorf("cannot write %q: %w", path, err)
	}
	return f.Close()
}

// writeMarkdown writes md to path, or renders it on the terminal if path is empty.
func writeMarkdown(path, md string) error {
	if path == "" {
		printMarkdown(md)
		return nil
	}
	return writeOutput(path, func(w io.Writer) error {
		_, err := io.WriteString(w, md)
		return err
	})
}
