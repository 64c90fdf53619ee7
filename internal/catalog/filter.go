package catalog

import (
	"strings"

	"github.com/mesh-intelligence/orchard/pkg/types"
)

// Filter returns the items whose name, taste or color contains search
// (case-insensitive) and, unless season is types.SeasonAll, whose season
// equals season exactly. Relative order is preserved. The result is a new
// slice; items is not modified.
func Filter(items []types.Item, search string, season types.Season) []types.Item {
	needle := strings.ToLower(search)
	out := make([]types.Item, 0, len(items))
	for _, it := range items {
		if !matchesSearch(it, needle) {
			continue
		}
		if season != types.SeasonAll && it.Season != season {
			continue
		}
		out = append(out, it)
	}
	return out
}

// matchesSearch expects needle to be lowercased already.
func matchesSearch(it types.Item, needle string) bool {
	if needle == "" {
		return true
	}
	return strings.Contains(strings.ToLower(it.Name), needle) ||
		strings.Contains(strings.ToLower(it.Taste), needle) ||
		strings.Contains(strings.ToLower(it.Color), needle)
}
