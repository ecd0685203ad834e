package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/initializ/edgard/installer"
	"github.com/initializ/edgard/internal/tui"
)

var classifyInfer bool

var classifyCmd = &cobra.Command{
	Use:   "classify [file]",
	Short: "Classify installer output lines from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runClassify,
}

func init() {
	classifyCmd.Flags().BoolVar(&classifyInfer, "infer", false, "also print the step transitions each line implies")
}

func runClassify(cmd *cobra.Command, args []string) error {
	in := io.Reader(os.Stdin)
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening input: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}

	var styles *tui.StyleSet
	if term.IsTerminal(int(os.Stdout.Fd())) {
		styles = tui.NewStyleSet(tui.DetectTheme(themeOverride))
	}
	return classifyLines(in, os.Stdout, styles, classifyInfer)
}

// classifyLines writes one classified line per input line. A nil styles
// prints plain "severity<TAB>message" output.
func classifyLines(r io.Reader, w io.Writer, styles *tui.StyleSet, infer bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if strings.TrimSpace(line) == "" {
			continue
		}
		sev, msg := installer.Classify(line)
		if styles != nil {
			fmt.Fprintln(w, tui.RenderLogLine(styles, installer.LogEntry{Severity: sev, Message: msg}))
		} else {
			fmt.Fprintf(w, "%s\t%s\n", sev, msg)
		}
		if infer {
			for _, t := range installer.InferSteps(msg) {
				fmt.Fprintf(w, "\t-> %s: %s\n", installer.Registry[t.Index].ID, t.Status)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	return nil
}
