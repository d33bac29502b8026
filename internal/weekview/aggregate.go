package weekview

import "sort"

// Key identifies one unique booking on the grid.
type Key struct {
	Day     string
	Start   int
	End     int
	Summary string
}

// PatternSet is the set of distinct recurrence labels seen for one key.
type PatternSet map[string]struct{}

// Aggregate groups entries by identity, collecting the recurrence labels of
// duplicates into a set. Insertion order does not matter; ordering is
// imposed when painting.
func Aggregate(entries []Entry) map[Key]PatternSet {
	out := make(map[Key]PatternSet)
	for _, e := range entries {
		k := Key{Day: e.Day, Start: e.Start, End: e.End, Summary: e.Summary}
		set, ok := out[k]
		if !ok {
			set = make(PatternSet)
			out[k] = set
		}
		if e.HasPattern {
			set[e.Pattern] = struct{}{}
		}
	}
	return out
}

// sortedKeys orders aggregated keys by day column, start, end, then summary
// so a render is reproducible regardless of map iteration order.
func sortedKeys(entries map[Key]PatternSet, cfg *Config) []Key {
	keys := make([]Key, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if da, db := cfg.DayIndex(a.Day), cfg.DayIndex(b.Day); da != db {
			return da < db
		}
		if a.Start != b.Start {
			return a.Start < b.Start
		}
		if a.End != b.End {
			return a.End < b.End
		}
		return a.Summary < b.Summary
	})
	return keys
}
