package classify

import "time"

// SupplyWindow is how far forward from the activity registration a
// supply task still counts as related.
const SupplyWindow = 48 * time.Hour

// SupplyTask is one non-cancelled supply-category task at a site.
type SupplyTask struct {
	ID      string
	SiteID  string
	Created time.Time
}

// SupplyResult reports the supply tasks correlated with one activity.
type SupplyResult struct {
	Count    int
	TaskIDs  []string
	Occurred bool
	Known    bool
}

// SupplyTickets finds the supply tasks at the activity's site created
// within the forward window from its registration. Without a site or a
// registration time the correlation is unknown, not zero.
func SupplyTickets(siteID string, registered time.Time, hasRegistered bool, supplies []SupplyTask) SupplyResult {
	if siteID == "" || !hasRegistered {
		return SupplyResult{}
	}
	res := SupplyResult{Known: true}
	deadline := registered.Add(SupplyWindow)
	for _, s := range supplies {
		if s.SiteID != siteID {
			continue
		}
		if s.Created.Before(registered) || s.Created.After(deadline) {
			continue
		}
		res.Count++
		res.TaskIDs = append(res.TaskIDs, s.ID)
	}
	res.Occurred = res.Count > 0
	return res
}
