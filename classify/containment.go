// Package classify derives the labeled business columns of the
// consolidated dataset. Every function here is a pure row-level rule:
// values in, label out, no table state.
package classify

import "time"

// Containment-window parameters, in hours. The persistence offset
// covers the monitoring delay between an incident starting and the
// dispatch being expected; the tolerance is the accepted slack on both
// sides of the window.
const (
	PersistenceOffsetHours = 0.5
	ToleranceHours         = 0.25
)

// OutlierHours is the threshold above which a computed cancellation
// time is considered implausible and excluded.
const OutlierHours = 96

// Containment outcome labels.
const (
	LabelNoSiteInfo     = "Sin información Site ID"
	LabelNoActivityInfo = "Sin información TOA"
	LabelBelowWindow    = "< del tiempo esperado"
	LabelAboveWindow    = "> del tiempo esperado"
	LabelWithinWindow   = "rango correcto"
)

// tierBudgets maps the site prioritization tier to its containment
// budget in hours.
var tierBudgets = map[string]float64{
	"Black":   2,
	"Oro":     8,
	"Plata":   10,
	"Clasico": 10,
}

// ContainmentBudget returns the containment budget for a tier.
func ContainmentBudget(tier string) (float64, bool) {
	budget, ok := tierBudgets[tier]
	return budget, ok
}

// ContainmentWindow returns the accepted dispatch window for a budget,
// in minutes since incident start.
func ContainmentWindow(budgetHours float64) (minMinutes, maxMinutes float64) {
	minMinutes = (budgetHours + PersistenceOffsetHours - ToleranceHours) * 60
	maxMinutes = (budgetHours + PersistenceOffsetHours + ToleranceHours) * 60
	return minMinutes, maxMinutes
}

// Containment classifies the dispatch delay of one incident against the
// site tier's window. Missing tier or missing timestamps yield the
// explicit no-information labels instead of a comparison.
func Containment(tier string, incidentStart, activityRegistered time.Time, hasStart, hasRegistered bool) string {
	budget, ok := ContainmentBudget(tier)
	if !ok {
		return LabelNoSiteInfo
	}
	if !hasStart || !hasRegistered {
		return LabelNoActivityInfo
	}
	lo, hi := ContainmentWindow(budget)
	minutes := activityRegistered.Sub(incidentStart).Minutes()
	switch {
	case minutes < lo:
		return LabelBelowWindow
	case minutes > hi:
		return LabelAboveWindow
	default:
		return LabelWithinWindow
	}
}

// DispatchHours returns the elapsed hours between incident start and
// activity registration.
func DispatchHours(incidentStart, activityRegistered time.Time) float64 {
	return activityRegistered.Sub(incidentStart).Hours()
}
