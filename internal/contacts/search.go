package contacts

import "github.com/JonMunkholm/outreach/internal/search"

// Search returns the contacts matching query in any of the given keys, or in
// any field when no keys are given. An empty query returns the input.
func Search(list []Contact, query string, keys ...string) []Contact {
	return SearchThreshold(list, query, search.DefaultThreshold, keys...)
}

// SearchThreshold is Search with an explicit edit-distance ceiling.
func SearchThreshold(list []Contact, query string, threshold float64, keys ...string) []Contact {
	if len(keys) > 0 {
		fields := make([]search.Field[Contact], len(keys))
		for i, k := range keys {
			fields[i] = func(c Contact) string { return c.Value(k) }
		}
		return search.Search(list, query, fields, threshold)
	}

	if search.NormalizeQuery(query) == "" {
		return list
	}
	out := make([]Contact, 0)
	for _, c := range list {
		if search.Match(c.Values(), query, threshold) {
			out = append(out, c)
		}
	}
	return out
}
