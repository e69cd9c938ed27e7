package usecase

import "strings"

// ingredientSeparator splits a product's raw ingredient text into entries
const ingredientSeparator = ","

// NormalizeIngredients turns raw ingredient text into lowercase, trimmed entries in
// source order. Empty text yields an empty slice. Entries that are empty after
// trimming are kept: they can never contain a registered keyword.
func NormalizeIngredients(raw string) []string {
	if raw == "" {
		return []string{}
	}

	parts := strings.Split(raw, ingredientSeparator)
	entries := make([]string, 0, len(parts))
	for _, part := range parts {
		entries = append(entries, strings.ToLower(strings.TrimSpace(part)))
	}
	return entries
}

// containsKeyword reports whether keyword occurs inside an ingredient entry.
// Both sides are already lowercase.
func containsKeyword(entry, keyword string) bool {
	return strings.Contains(entry, keyword)
}
