package patterns

// IsLegalText reports whether s looks like shipping-terms boilerplate rather than a field value.
func (l *Library) IsLegalText(s string) bool {
	for _, pat := range l.Legal {
		if pat.Re.MatchString(s) {
			return true
		}
	}
	return false
}
