// Package validate enforces the identifier and URL safety invariants the
// rest of the system relies on.
package validate

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

const (
	// MaxSlugLen is the upper bound of the slug grammar.
	MaxSlugLen = 120
	// MaxTitleLen is the upper bound for titles.
	MaxTitleLen = 180
)

var (
	slugRe     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	nonSlugRe  = regexp.MustCompile(`[^a-z0-9]+`)
	dbNameRe   = regexp.MustCompile(`^[a-z0-9][a-z0-9._-]*\.db$`)
	scriptRe   = regexp.MustCompile(`(?is)<script\b[^>]*>.*?</script\s*>`)
	allowedSch = map[string]struct{}{
		"http":   {},
		"https":  {},
		"mailto": {},
		"tel":    {},
	}
)

// ValidateSlug checks s against the slug grammar: lowercase ASCII letters,
// digits, and single internal hyphens, length 1-120. It returns every reason
// the slug is invalid, or nil when it is valid.
func ValidateSlug(s string) []string {
	var reasons []string
	if s == "" {
		return []string{"slug is empty"}
	}
	if len(s) > MaxSlugLen {
		reasons = append(reasons, fmt.Sprintf("slug exceeds %d characters", MaxSlugLen))
	}
	if strings.HasPrefix(s, "-") || strings.HasSuffix(s, "-") {
		reasons = append(reasons, "slug has a leading or trailing hyphen")
	}
	if strings.Contains(s, "--") {
		reasons = append(reasons, "slug has consecutive hyphens")
	}
	if !slugRe.MatchString(s) && len(reasons) == 0 {
		reasons = append(reasons, "slug may only contain lowercase letters, digits, and hyphens")
	}
	return reasons
}

// NormalizeSlug derives a valid slug from arbitrary input: lowercase, trim,
// collapse runs of disallowed characters to single hyphens, and strip edge
// hyphens. The result satisfies ValidateSlug or is empty.
func NormalizeSlug(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	s = nonSlugRe.ReplaceAllString(s, "-")
	s = strings.Trim(s, "-")
	if len(s) > MaxSlugLen {
		s = strings.Trim(s[:MaxSlugLen], "-")
	}
	return s
}

// ValidateTitle checks that a title is non-empty and within limits.
func ValidateTitle(title string) error {
	if strings.TrimSpace(title) == "" {
		return fmt.Errorf("title is empty")
	}
	if len(title) > MaxTitleLen {
		return fmt.Errorf("title exceeds %d characters", MaxTitleLen)
	}
	return nil
}

// ValidateDatabaseName checks that name is a safe database file name
// (no separators, .db extension).
func ValidateDatabaseName(name string) error {
	if !dbNameRe.MatchString(name) {
		return fmt.Errorf("invalid database name %q: must match %s", name, dbNameRe.String())
	}
	return nil
}

// IsSafeURL reports whether raw is safe to emit as a link target. Relative
// URLs are resolved against a neutral base; only http, https, mailto, and
// tel schemes are accepted.
func IsSafeURL(raw string) bool {
	base, _ := url.Parse("https://example.com/")
	u, err := base.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	_, ok := allowedSch[strings.ToLower(u.Scheme)]
	return ok
}

// SanitizeURL returns raw unchanged when safe, otherwise the empty string.
func SanitizeURL(raw string) string {
	if IsSafeURL(raw) {
		return raw
	}
	return ""
}

// SanitizeHTML strips <script> elements (open-to-close, case-insensitive,
// non-greedy) from raw HTML before it is ever rendered. This is deliberately
// the same single-regex behaviour as the rest of the stack expects; it is
// not a structural sanitizer.
func SanitizeHTML(html string) string {
	return scriptRe.ReplaceAllString(html, "")
}
