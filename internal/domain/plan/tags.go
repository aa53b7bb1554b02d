package plan

import (
	"strings"
)

// TagKey is the identity used for tag comparisons
func TagKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// TagDiff is the outcome of reconciling a plan's tags against a requested set
type TagDiff struct {
	Keep   []*Tag
	Add    []*Tag
	Remove []*Tag
}

// ReconcileTags compares the requested tags with the existing ones by
// case-insensitive name. An existing tag always wins over a requested tag with
// the same key, and within requested the first occurrence of a key wins.
// Blank names are ignored.
func ReconcileTags(existing, requested []*Tag) TagDiff {
	var diff TagDiff

	wanted := make(map[string]*Tag, len(requested))
	order := make([]string, 0, len(requested))
	for _, t := range requested {
		if t == nil {
			continue
		}
		key := TagKey(t.TagName)
		if key == "" {
			continue
		}
		if _, ok := wanted[key]; ok {
			continue
		}
		wanted[key] = t
		order = append(order, key)
	}

	current := make(map[string]bool, len(existing))
	for _, t := range existing {
		key := TagKey(t.TagName)
		if current[key] {
			// duplicate row for the same key, drop it
			diff.Remove = append(diff.Remove, t)
			continue
		}
		current[key] = true
		if _, ok := wanted[key]; ok {
			diff.Keep = append(diff.Keep, t)
		} else {
			diff.Remove = append(diff.Remove, t)
		}
	}

	for _, key := range order {
		if current[key] {
			continue
		}
		t := wanted[key]
		diff.Add = append(diff.Add, &Tag{
			TagName:  strings.TrimSpace(t.TagName),
			TagColor: t.TagColor,
			TagHex:   t.TagHex,
		})
	}

	return diff
}

// DedupeTags keeps the first tag of every case-insensitive name
func DedupeTags(tags []*Tag) []*Tag {
	return ReconcileTags(nil, tags).Add
}
