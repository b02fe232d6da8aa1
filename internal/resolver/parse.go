package resolver

import "strings"

// SplitIngredientStatement breaks a label-style ingredient statement
// ("Water, Organic Sugar (cane), Salt.") into candidate ingredient
// names. Comma is the only separator honored; parenthesized detail is
// dropped from the fragment it annotates. Fragments that reduce to
// nothing, or to a single character, are discarded as label noise.
func SplitIngredientStatement(statement string) []string {
	parts := strings.Split(statement, ",")
	names := make([]string, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		name = strings.TrimRight(name, ".")
		if i := strings.Index(name, "("); i >= 0 {
			name = name[:i]
		}
		name = strings.TrimSpace(name)
		if len(name) <= 1 {
			continue
		}
		names = append(names, name)
	}
	return names
}
