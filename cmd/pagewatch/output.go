package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"pagewatch/internal/detect"
	"pagewatch/internal/validation"
)

func addDetectFlags(cmd *cobra.Command) {
	cmd.Flags().StringSliceP("keyword", "k", nil, "Keyword to look for (repeatable)")
	cmd.Flags().String("previous", "", "JSON report of an earlier run to diff against")
	_ = cmd.MarkFlagRequired("keyword")
}

// detectInputs reads the keywords and the optional previous report.
func detectInputs(cmd *cobra.Command) ([]string, *detect.Report, error) {
	raw, _ := cmd.Flags().GetStringSlice("keyword")
	keywords := validation.NormalizeKeywords(raw)
	if valid, msg := validation.ValidateKeywords(keywords); !valid {
		return nil, nil, errors.New(msg)
	}

	previous := &detect.Report{}
	path, _ := cmd.Flags().GetString("previous")
	if path == "" {
		return keywords, previous, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read previous report: %w", err)
	}
	if err := json.Unmarshal(data, previous); err != nil {
		return nil, nil, fmt.Errorf("parse previous report %s: %w", path, err)
	}
	return keywords, previous, nil
}

type reportOutput struct {
	Source string `json:"source"`
	*detect.Report
}

func writeReport(cmd *cobra.Command, source string, keywords []string, r *detect.Report) error {
	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(reportOutput{Source: source, Report: r})
	}

	renderReport(cmd, source, keywords, r)
	return nil
}

// renderReport prints one row per keyword, in the order given.
func renderReport(cmd *cobra.Command, source string, keywords []string, r *detect.Report) {
	out := cmd.OutOrStdout()

	t := table.NewWriter()
	t.SetOutputMirror(out)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{"Keyword", "Count", "Notable", "Context"})

	for _, kw := range keywords {
		n, _ := r.Counts.Get(kw)
		notable := ""
		if slices.Contains(r.Notable, kw) {
			notable = "yes"
		}
		t.AppendRow(table.Row{kw, n, notable, strings.Join(r.Contexts[detect.NormalizeKeyword(kw)], "\n")})
	}
	t.Render()

	changed := "no"
	if r.Changed {
		changed = "yes"
	}
	fmt.Fprintf(out, "Source:      %s\nFingerprint: %s\nChanged:     %s\n", source, r.Fingerprint, changed)
}
