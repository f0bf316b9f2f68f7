package classify

import (
	"sort"
	"time"
)

// RepeatWindow is how far back a prior activity still makes the current
// one a repeat.
const RepeatWindow = 7 * 24 * time.Hour

// LabelRepeat marks a repeated activity in the consolidated table.
const LabelRepeat = "Reiterada"

// RepeatItem is one activity in repeat detection: site and affected
// equipment form the group, registration time orders it.
type RepeatItem struct {
	ID         string
	Site       string
	Equipment  string
	Registered time.Time
	HasTime    bool
}

// RepeatLink points a repeated activity at its most recent predecessor.
type RepeatLink struct {
	Predecessor string
}

// DetectRepeats flags activities recurring within RepeatWindow of an
// earlier activity for the same equipment at the same site. Items
// without equipment or registration time never group. Each group is
// time-sorted and walked with a trailing pointer over the window.
func DetectRepeats(items []RepeatItem) map[string]RepeatLink {
	groups := map[[2]string][]RepeatItem{}
	for _, it := range items {
		if it.Site == "" || it.Equipment == "" || !it.HasTime {
			continue
		}
		key := [2]string{it.Site, it.Equipment}
		groups[key] = append(groups[key], it)
	}

	out := map[string]RepeatLink{}
	for _, group := range groups {
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Registered.Before(group[j].Registered)
		})
		lo := 0
		for i := 1; i < len(group); i++ {
			cutoff := group[i].Registered.Add(-RepeatWindow)
			for lo < i && group[lo].Registered.Before(cutoff) {
				lo++
			}
			if lo < i {
				out[group[i].ID] = RepeatLink{Predecessor: group[i-1].ID}
			}
		}
	}
	return out
}
