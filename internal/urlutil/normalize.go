// Package urlutil reduces submitted addresses to their canonical scheme://authority form.
package urlutil

import (
	"net"
	"net/url"
	"strings"

	"github.com/JakeFAU/page-analyzer/internal/analyzer"
)

// MaxLength is the longest normalized address accepted for registration.
const MaxLength = 255

// Normalize returns "{scheme}://{host[:port]}" for raw, dropping path, query, fragment, and
// credentials. Scheme and host are lowercased. It never fails: input without a scheme, or
// input that does not parse, yields the degenerate "://" which Validate rejects.
// Normalize(Normalize(x)) == Normalize(x) for every x.
func Normalize(raw string) string {
	out := canonical(raw)
	if canonical(out) != out {
		// Hosts that only round-trip through their escaped form collapse to the degenerate value.
		return "://"
	}
	return out
}

func canonical(raw string) string {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil || u.Scheme == "" {
		return "://"
	}
	return strings.ToLower(u.Scheme) + "://" + strings.ToLower(u.Host)
}

// Validate reports whether a normalized address is fit for registration.
func Validate(normalized string) error {
	if normalized == "" {
		return &analyzer.ValidationError{Input: normalized, Reason: "empty"}
	}
	if len(normalized) > MaxLength {
		return &analyzer.ValidationError{Input: normalized, Reason: "longer than 255 characters"}
	}
	u, err := url.Parse(normalized)
	if err != nil {
		return &analyzer.ValidationError{Input: normalized, Reason: "malformed"}
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return &analyzer.ValidationError{Input: normalized, Reason: "scheme must be http or https"}
	}
	host := u.Hostname()
	if host == "" {
		return &analyzer.ValidationError{Input: normalized, Reason: "missing host"}
	}
	if !plausibleHost(host) {
		return &analyzer.ValidationError{Input: normalized, Reason: "host is not a domain or address"}
	}
	return nil
}

func plausibleHost(host string) bool {
	if host == "localhost" || net.ParseIP(host) != nil {
		return true
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, label := range labels {
		if label == "" || len(label) > 63 {
			return false
		}
		if strings.HasPrefix(label, "-") || strings.HasSuffix(label, "-") {
			return false
		}
		for _, r := range label {
			if !isHostRune(r) {
				return false
			}
		}
	}
	return true
}

func isHostRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
		return true
	default:
		// Internationalized labels are accepted as-is.
		return r > 0x7f
	}
}
