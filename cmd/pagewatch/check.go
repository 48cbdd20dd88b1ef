package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"pagewatch/internal/detect"
	"pagewatch/internal/fetch"
	"pagewatch/internal/validation"
)

func NewCheckCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check <url>",
		Short: "Fetch a page and report keyword matches",
		Long: `Fetch a page, count each keyword in its visible text and print the
sentences around every keyword that is new or more frequent than in the
report passed with --previous.`,
		Args: cobra.ExactArgs(1),
		RunE: runCheck,
	}

	addDetectFlags(cmd)
	cmd.Flags().Duration("timeout", 15*time.Second, "HTTP timeout")
	cmd.Flags().String("user-agent", "pagewatch/1.0", "User-Agent header")
	cmd.Flags().Bool("allow-private", false, "Allow fetching private and loopback addresses")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string) error {
	url := args[0]
	if valid, msg := validation.ValidateURL(url); !valid {
		return fmt.Errorf("%s: %s", msg, url)
	}

	keywords, previous, err := detectInputs(cmd)
	if err != nil {
		return err
	}

	timeout, _ := cmd.Flags().GetDuration("timeout")
	userAgent, _ := cmd.Flags().GetString("user-agent")
	allowPrivate, _ := cmd.Flags().GetBool("allow-private")

	f := fetch.New(fetch.Options{
		Timeout:      timeout,
		UserAgent:    userAgent,
		AllowPrivate: allowPrivate,
	})
	text, err := f.FetchText(cmd.Context(), url)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	report, err := detect.Analyze(keywords, text, previous.Fingerprint, previous.Counts)
	if err != nil {
		return fmt.Errorf("check: %w", err)
	}

	return writeReport(cmd, url, keywords, report)
}
