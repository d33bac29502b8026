package xlsx

import (
	"fmt"
	"regexp"
	"strings"
)

// invalidSheetChars are the characters Excel forbids in sheet names.
var invalidSheetChars = regexp.MustCompile(`[\\/*?:\[\]]`)

// SafeSheetTitle turns an arbitrary calendar name into a legal, unique
// worksheet title: forbidden characters become underscores, names are capped
// at 31 characters, and collisions with already-used titles get a numeric
// suffix. The used set is updated with the chosen title.
func SafeSheetTitle(title string, used map[string]bool) string {
	base := invalidSheetChars.ReplaceAllString(strings.TrimSpace(title), "_")
	if base == "" {
		base = "Sheet"
	} else if len(base) > 31 {
		base = base[:31]
	}

	candidate := base
	for i := 2; used[candidate]; i++ {
		suffix := fmt.Sprintf("_%d", i)
		keep := 31 - len(suffix)
		if keep < 0 {
			keep = 0
		}
		if keep > len(base) {
			keep = len(base)
		}
		candidate = base[:keep] + suffix
	}
	used[candidate] = true
	return candidate
}
