package utils

import (
	"regexp"
	"strings"
)

// replayPattern matches Albion Online replay URLs and captures the replay ID.
var replayPattern = regexp.MustCompile(`(?i)https?://(?:www\.)?albiononline\.com/(?:[^/]+/)?replay/([a-f0-9-]+)`)

// ValidateReplayURL checks a replay link: scheme, domain, and the presence
// of a replay identifier. Returns "" when the URL is acceptable, otherwise
// a caller-facing reason.
func ValidateReplayURL(url string) string {
	url = strings.TrimSpace(url)
	if url == "" {
		return "replay URL cannot be empty"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "invalid URL format (must start with http:// or https://)"
	}
	if !strings.Contains(strings.ToLower(url), "albiononline.com") {
		return "URL must be from albiononline.com domain"
	}
	if !replayPattern.MatchString(url) {
		return "invalid replay URL format, must contain a replay ID"
	}
	return ""
}

// ExtractReplayID pulls the replay identifier out of a valid replay URL.
func ExtractReplayID(url string) string {
	m := replayPattern.FindStringSubmatch(url)
	if m == nil {
		return ""
	}
	return m[1]
}

// canonicalRoles maps each canonical role name to its accepted aliases.
// Declaration order drives suggestion order.
var canonicalRoles = []struct {
	Name    string
	Aliases []string
}{
	{"D-Tank", []string{"dtank", "d-tank", "dark tank"}},
	{"E-Tank", []string{"etank", "e-tank", "light tank"}},
	{"Healer", []string{"healer", "heal"}},
	{"Support", []string{"support", "supp"}},
	{"DPS", []string{"dps", "damage"}},
	{"Battlemount", []string{"battlemount", "bm", "mount"}},
}

// AllRoles returns the canonical role set in declaration order.
func AllRoles() []string {
	out := make([]string, len(canonicalRoles))
	for i, r := range canonicalRoles {
		out[i] = r.Name
	}
	return out
}

// NormalizeRole resolves user input to a canonical role name, or ""
// when the input matches neither a canonical name nor an alias.
func NormalizeRole(input string) string {
	lower := strings.ToLower(strings.TrimSpace(input))
	if lower == "" {
		return ""
	}
	for _, r := range canonicalRoles {
		if lower == strings.ToLower(r.Name) {
			return r.Name
		}
		for _, a := range r.Aliases {
			if lower == a {
				return r.Name
			}
		}
	}
	return ""
}

// RoleSuggestions returns up to five canonical roles whose names contain
// the given partial input, for "did you mean" hints.
func RoleSuggestions(partial string) []string {
	partial = strings.ToLower(strings.TrimSpace(partial))
	var out []string
	for _, r := range canonicalRoles {
		if strings.Contains(strings.ToLower(r.Name), partial) {
			out = append(out, r.Name)
			if len(out) == 5 {
				break
			}
		}
	}
	return out
}
