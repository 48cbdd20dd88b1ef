package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"
)

// Limits on what a single target may watch.
const (
	MaxKeywords      = 100
	MaxKeywordLength = 200
	MaxURLs          = 50
)

// NormalizeKeywords trims each keyword, drops blank ones and removes
// duplicates case-insensitively, keeping the first spelling seen.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]bool, len(keywords))
	for _, kw := range keywords {
		kw = strings.TrimSpace(kw)
		if kw == "" {
			continue
		}
		key := strings.ToLower(strings.Join(strings.Fields(kw), " "))
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, kw)
	}
	return out
}

// truncate returns at most n runes of s.
func truncate(s string, n int) string {
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

// ValidateKeywords checks an already normalized keyword list.
func ValidateKeywords(keywords []string) (bool, string) {
	if len(keywords) == 0 {
		return false, "At least one keyword is required"
	}
	if len(keywords) > MaxKeywords {
		return false, fmt.Sprintf("At most %d keywords are allowed", MaxKeywords)
	}
	for _, kw := range keywords {
		if strings.TrimSpace(kw) == "" {
			return false, "Keywords must not be blank"
		}
		if utf8.RuneCountInString(kw) > MaxKeywordLength {
			return false, fmt.Sprintf("Keyword %q is longer than %d characters", truncate(kw, 20)+"...", MaxKeywordLength)
		}
	}
	return true, ""
}

// NormalizeURLs trims URLs and removes blanks and exact duplicates.
// URLs are compared literally; no escaping is applied.
func NormalizeURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	seen := make(map[string]bool, len(urls))
	for _, u := range urls {
		u = strings.TrimSpace(u)
		if u == "" || seen[u] {
			continue
		}
		seen[u] = true
		out = append(out, u)
	}
	return out
}

// ValidateURLs checks every URL of an already normalized list.
func ValidateURLs(urls []string) (bool, string) {
	if len(urls) == 0 {
		return false, "At least one URL is required"
	}
	if len(urls) > MaxURLs {
		return false, fmt.Sprintf("At most %d URLs are allowed", MaxURLs)
	}
	for _, u := range urls {
		if valid, msg := ValidateURL(u); !valid {
			return false, msg + ": " + u
		}
	}
	return true, ""
}

// ValidateURL checks if a URL is valid and uses an allowed scheme (http/https only).
// This prevents javascript:, data:, vbscript:, and other dangerous URL schemes.
func ValidateURL(urlStr string) (bool, string) {
	if urlStr == "" {
		return false, "URL is required"
	}

	u, err := url.Parse(urlStr)
	if err != nil {
		return false, "Invalid URL format"
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return false, "URL must use http:// or https:// scheme"
	}

	if u.Host == "" {
		return false, "URL must have a valid host"
	}

	return true, ""
}

// IsPrivateIP checks if an IP address is in a private/reserved range.
// Used to prevent SSRF attacks against internal networks.
func IsPrivateIP(ip net.IP) bool {
	if ip == nil {
		return false
	}

	if ip.IsLoopback() {
		return true
	}

	if ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() {
		return true
	}

	if ip.IsPrivate() {
		return true
	}

	if ip.IsUnspecified() {
		return true
	}

	// Cloud metadata endpoints (AWS/GCP, Azure)
	for _, meta := range []string{"169.254.169.254", "168.63.129.16"} {
		if ip.Equal(net.ParseIP(meta)) {
			return true
		}
	}

	return false
}

// IsPrivateHost checks if a hostname resolves to a private IP address.
// Returns true if the host is private/blocked, false if it's safe to access.
func IsPrivateHost(host string) (bool, error) {
	hostname := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		hostname = h
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		// If we can't resolve, be conservative and block
		return true, err
	}

	for _, ip := range ips {
		if IsPrivateIP(ip) {
			return true, nil
		}
	}

	return false, nil
}

// ValidateURLForFetch validates a URL is safe to scrape.
// Blocks private IPs, localhost, and cloud metadata endpoints.
func ValidateURLForFetch(urlStr string) (bool, string) {
	valid, msg := ValidateURL(urlStr)
	if !valid {
		return false, msg
	}

	u, _ := url.Parse(urlStr)

	isPrivate, err := IsPrivateHost(u.Host)
	if err != nil {
		return false, "Cannot resolve hostname"
	}
	if isPrivate {
		return false, "URL points to a private or reserved IP address"
	}

	return true, ""
}
