package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pagewatch/internal/detect"
	"pagewatch/internal/fetch"
)

func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze [file]",
		Short: "Report keyword matches in a local file",
		Long: `Run keyword detection on a file, or on standard input when no file or
"-" is given. HTML input is reduced to its visible text with --html.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runAnalyze,
	}

	addDetectFlags(cmd)
	cmd.Flags().Bool("html", false, "Treat input as HTML and extract its body text")

	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	keywords, previous, err := detectInputs(cmd)
	if err != nil {
		return err
	}

	source := "-"
	if len(args) == 1 {
		source = args[0]
	}

	var r io.Reader = cmd.InOrStdin()
	if source != "-" {
		f, err := os.Open(source)
		if err != nil {
			return fmt.Errorf("analyze: %w", err)
		}
		defer f.Close()
		r = f
	}

	asHTML, _ := cmd.Flags().GetBool("html")
	text, err := readText(r, asHTML)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	report, err := detect.Analyze(keywords, text, previous.Fingerprint, previous.Counts)
	if err != nil {
		return fmt.Errorf("analyze: %w", err)
	}

	return writeReport(cmd, source, keywords, report)
}

func readText(r io.Reader, asHTML bool) (string, error) {
	if asHTML {
		return fetch.ExtractText(r)
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return fetch.Normalize(string(data)), nil
}
