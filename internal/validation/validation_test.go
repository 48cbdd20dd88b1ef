package validation

import (
	"net"
	"reflect"
	"strings"
	"testing"
	"unicode/utf8"
)

func TestNormalizeKeywords(t *testing.T) {
	tests := []struct {
		name     string
		keywords []string
		want     []string
	}{
		{"trims", []string{"  launch ", "price"}, []string{"launch", "price"}},
		{"drops blanks", []string{"", "  ", "launch", "\t"}, []string{"launch"}},
		{"dedupes case-insensitively", []string{"Launch", "launch", "LAUNCH"}, []string{"Launch"}},
		{"dedupes on collapsed whitespace", []string{"foo bar", "foo   bar"}, []string{"foo bar"}},
		{"keeps order", []string{"zeta", "alpha"}, []string{"zeta", "alpha"}},
		{"nil input", nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeKeywords(tt.keywords)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("NormalizeKeywords(%q) = %q, want %q", tt.keywords, got, tt.want)
			}
		})
	}
}

func TestValidateKeywords(t *testing.T) {
	tooMany := make([]string, MaxKeywords+1)
	for i := range tooMany {
		tooMany[i] = "k"
	}

	tests := []struct {
		name     string
		keywords []string
		valid    bool
	}{
		{"single", []string{"launch"}, true},
		{"multi word", []string{"product launch"}, true},
		{"empty list", nil, false},
		{"blank keyword", []string{"launch", " "}, false},
		{"too long", []string{strings.Repeat("a", MaxKeywordLength+1)}, false},
		{"max length", []string{strings.Repeat("a", MaxKeywordLength)}, true},
		{"max length multibyte", []string{strings.Repeat("é", MaxKeywordLength)}, true},
		{"too many", tooMany, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateKeywords(tt.keywords)
			if valid != tt.valid {
				t.Errorf("ValidateKeywords() valid = %v, want %v (msg: %s)", valid, tt.valid, msg)
			}
			if !valid && msg == "" {
				t.Error("ValidateKeywords() returned no message for invalid input")
			}
		})
	}
}

func TestValidateKeywords_LongMultibyteMessage(t *testing.T) {
	valid, msg := ValidateKeywords([]string{strings.Repeat("日本", MaxKeywordLength)})
	if valid {
		t.Fatal("ValidateKeywords() accepted an overlong keyword")
	}
	if !utf8.ValidString(msg) {
		t.Errorf("message is not valid UTF-8: %q", msg)
	}
	if !strings.Contains(msg, strings.Repeat("日本", 10)+"...") {
		t.Errorf("message = %q, want the first 20 characters", msg)
	}
}

func TestNormalizeURLs(t *testing.T) {
	got := NormalizeURLs([]string{" https://example.com/a.b ", "", "https://example.com/a.b", "https://example.com/ab"})
	want := []string{"https://example.com/a.b", "https://example.com/ab"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("NormalizeURLs() = %q, want %q", got, want)
	}
}

func TestValidateURLs(t *testing.T) {
	if valid, _ := ValidateURLs(nil); valid {
		t.Error("ValidateURLs(nil) should be invalid")
	}
	if valid, msg := ValidateURLs([]string{"https://example.com", "ftp://example.com"}); valid || !strings.Contains(msg, "ftp://example.com") {
		t.Errorf("ValidateURLs() = %v, %q, want invalid naming the bad URL", valid, msg)
	}
	if valid, msg := ValidateURLs([]string{"https://example.com", "http://example.org/page"}); !valid {
		t.Errorf("ValidateURLs() = invalid: %s", msg)
	}
}

func TestValidateURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		valid   bool
		wantMsg string
	}{
		{"valid https", "https://example.com", true, ""},
		{"valid with path", "https://example.com/path/to/page", true, ""},
		{"valid with query", "https://example.com?foo=bar", true, ""},
		{"empty string", "", false, "URL is required"},
		{"javascript scheme", "javascript:alert(1)", false, "URL must use http:// or https:// scheme"},
		{"file scheme", "file:///etc/passwd", false, "URL must use http:// or https:// scheme"},
		{"no scheme", "example.com", false, "URL must use http:// or https:// scheme"},
		{"uppercase scheme", "HTTPS://example.com", true, ""},
		{"scheme only", "https://", false, "URL must have a valid host"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURL(tt.url)
			if valid != tt.valid {
				t.Errorf("ValidateURL(%q) valid = %v, want %v", tt.url, valid, tt.valid)
			}
			if !valid && msg != tt.wantMsg {
				t.Errorf("ValidateURL(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}

func TestIsPrivateIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		want bool
	}{
		// Loopback addresses
		{"localhost IPv4", "127.0.0.1", true},
		{"localhost IPv4 other", "127.0.0.2", true},
		{"localhost IPv6", "::1", true},

		// Private ranges
		{"10.x.x.x range", "10.0.0.1", true},
		{"10.x.x.x range max", "10.255.255.255", true},
		{"172.16.x.x range", "172.16.0.1", true},
		{"172.31.x.x range", "172.31.255.255", true},
		{"192.168.x.x range", "192.168.0.1", true},
		{"192.168.x.x range max", "192.168.255.255", true},

		// Link-local
		{"link-local IPv4", "169.254.1.1", true},
		{"link-local IPv6", "fe80::1", true},

		// Cloud metadata endpoints
		{"AWS/GCP metadata", "169.254.169.254", true},
		{"Azure metadata", "168.63.129.16", true},

		// Unspecified
		{"unspecified IPv4", "0.0.0.0", true},
		{"unspecified IPv6", "::", true},

		// Public IPs (should not be blocked)
		{"Google DNS", "8.8.8.8", false},
		{"Cloudflare DNS", "1.1.1.1", false},
		{"random public IP", "203.0.113.1", false},
		{"public IPv6", "2001:4860:4860::8888", false},

		// Edge cases
		{"nil IP", "", false}, // Will be handled specially
		{"172.15.x.x not private", "172.15.255.255", false},
		{"172.32.x.x not private", "172.32.0.0", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var ip net.IP
			if tt.ip != "" {
				ip = net.ParseIP(tt.ip)
			}
			got := IsPrivateIP(ip)
			if got != tt.want {
				t.Errorf("IsPrivateIP(%q) = %v, want %v", tt.ip, got, tt.want)
			}
		})
	}
}

func TestValidateURLForFetch(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantMsg string
	}{
		{"javascript scheme", "javascript:alert(1)", "URL must use http:// or https:// scheme"},
		{"empty url", "", "URL is required"},
		{"loopback", "http://127.0.0.1", "URL points to a private or reserved IP address"},
		{"loopback with port", "http://127.0.0.1:8080/page", "URL points to a private or reserved IP address"},
		{"10.x range", "http://10.0.0.1", "URL points to a private or reserved IP address"},
		{"192.168.x range", "http://192.168.1.1", "URL points to a private or reserved IP address"},
		{"metadata", "http://169.254.169.254/latest/meta-data/", "URL points to a private or reserved IP address"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			valid, msg := ValidateURLForFetch(tt.url)
			if valid {
				t.Errorf("ValidateURLForFetch(%q) = valid, want invalid", tt.url)
			}
			if msg != tt.wantMsg {
				t.Errorf("ValidateURLForFetch(%q) msg = %q, want %q", tt.url, msg, tt.wantMsg)
			}
		})
	}
}
