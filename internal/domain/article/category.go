package article

import "strings"

// Canonical category set. Input is lowercased at the boundary so legacy
// variants like "hotSpot" normalize instead of leaking a second spelling.
var Categories = []string{"politics", "trending", "hotspot", "editors", "featured", "other"}

// NormalizeCategory lowercases and trims the input and reports whether the
// result belongs to the canonical set.
func NormalizeCategory(raw string) (string, bool) {
	c := strings.ToLower(strings.TrimSpace(raw))

	for _, known := range Categories {
		if c == known {
			return c, true
		}
	}

	return c, false
}

// NormalizeCategories maps a comma-separated list onto canonical categories,
// dropping duplicates and preserving order. Unknown entries fail the whole
// list; write paths must reject them rather than store variants.
func NormalizeCategories(csv string) ([]string, bool) {
	parts := strings.Split(csv, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))

	for _, p := range parts {
		if strings.TrimSpace(p) == "" {
			continue
		}

		c, ok := NormalizeCategory(p)
		if !ok {
			return nil, false
		}

		if _, dup := seen[c]; dup {
			continue
		}

		seen[c] = struct{}{}
		out = append(out, c)
	}

	if len(out) == 0 {
		return nil, false
	}

	return out, true
}

// TrimTags trims each tag and drops empties, preserving order.
func TrimTags(tags []string) []string {
	out := make([]string, 0, len(tags))

	for _, t := range tags {
		t = strings.TrimSpace(t)

		if t != "" {
			out = append(out, t)
		}
	}

	return out
}
