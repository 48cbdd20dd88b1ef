// Package fetch retrieves web pages and reduces them to normalized text.
package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/unicode/norm"

	"pagewatch/internal/validation"
)

// nonContentSelectors lists elements removed before reading body text.
const nonContentSelectors = "script, style, noscript, template"

// Options configures a Fetcher.
type Options struct {
	Timeout      time.Duration
	MaxBytes     int64
	UserAgent    string
	AllowPrivate bool // skip the private address check, for tests and trusted networks
}

// Fetcher downloads pages over HTTP and extracts their visible text.
type Fetcher struct {
	client       *http.Client
	maxBytes     int64
	userAgent    string
	allowPrivate bool
}

// New creates a Fetcher.
func New(opts Options) *Fetcher {
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 5 << 20
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "pagewatch/1.0"
	}

	return &Fetcher{
		client: &http.Client{
			Timeout: opts.Timeout,
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				if len(via) >= 10 {
					return errors.New("too many redirects")
				}
				if !opts.AllowPrivate {
					if valid, msg := validation.ValidateURLForFetch(req.URL.String()); !valid {
						return fmt.Errorf("redirect refused: %s", msg)
					}
				}
				return nil
			},
		},
		maxBytes:     opts.MaxBytes,
		userAgent:    opts.UserAgent,
		allowPrivate: opts.AllowPrivate,
	}
}

// FetchText downloads url and returns its normalized body text.
// Validates URLs before making requests to prevent SSRF attacks.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	check := validation.ValidateURLForFetch
	if f.allowPrivate {
		check = validation.ValidateURL
	}
	if valid, msg := check(url); !valid {
		return "", fmt.Errorf("refusing to fetch %s: %s", url, msg)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("invalid URL: %w", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.5")

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("connection failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("fetch %s: HTTP %s", url, resp.Status)
	}

	return ExtractText(io.LimitReader(resp.Body, f.maxBytes))
}

// ExtractText parses HTML and returns the normalized text of its body with
// scripts and styles removed.
func ExtractText(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}

	body := doc.Find("body").First()
	if body.Length() == 0 {
		return "", nil
	}
	body.Find(nonContentSelectors).Remove()

	return Normalize(body.Text()), nil
}

// Normalize composes text to NFC and collapses all whitespace to single
// spaces, so equal-looking pages fingerprint equally.
func Normalize(text string) string {
	return strings.Join(strings.Fields(norm.NFC.String(text)), " ")
}
