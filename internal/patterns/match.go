package patterns

import "strings"

// ExtractField tries each pattern of set in order and returns the first accepted value.
// A candidate is accepted when it is non-blank and, with filterLegal, not legal boilerplate;
// a rejected candidate moves on to the next pattern.
func (l *Library) ExtractField(text string, set Set, filterLegal bool) (string, bool) {
	if text == "" {
		return "", false
	}
	for _, pat := range set {
		m := pat.Re.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(captured(m))
		if value == "" {
			continue
		}
		if filterLegal && l.IsLegalText(value) {
			continue
		}
		return value, true
	}
	return "", false
}

// ExtractAllMatches runs every pattern of set over the whole text and returns every captured
// value once, in first-seen order (pattern order, then document order).
func (l *Library) ExtractAllMatches(text string, set Set, filterLegal bool) []string {
	out := []string{}
	if text == "" {
		return out
	}
	seen := make(map[string]struct{})
	for _, pat := range set {
		for _, m := range pat.Re.FindAllStringSubmatch(text, -1) {
			value := strings.TrimSpace(captured(m))
			if value == "" {
				continue
			}
			if filterLegal && l.IsLegalText(value) {
				continue
			}
			if _, dup := seen[value]; dup {
				continue
			}
			seen[value] = struct{}{}
			out = append(out, value)
		}
	}
	return out
}

// Matches reports whether any pattern of set matches text.
func (l *Library) Matches(text string, set Set) bool {
	for _, pat := range set {
		if pat.Re.MatchString(text) {
			return true
		}
	}
	return false
}

// captured returns group 1 when the pattern has one, the whole match otherwise.
func captured(m []string) string {
	if len(m) > 1 {
		return m[1]
	}
	return m[0]
}
