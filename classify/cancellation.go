package classify

// Cancellation outcome labels.
const (
	LabelNotCancelled        = "Ticket no cancelado"
	LabelCancellationOutlier = "Cancelamiento Outlier"
	LabelCancelBefore        = "Cancelado antes de rango contención"
	LabelCancelAfter         = "Cancelado fuera de rango contención"
	LabelCancelWithin        = "Cancelado en rango contención"
)

// CancelCandidate is one candidate cancellation time, in hours since
// incident start. Absent candidates carry Valid=false.
type CancelCandidate struct {
	Hours float64
	Valid bool
}

// MinCancellation takes the minimum of the candidate cancellation times
// after dropping implausible outliers (>= OutlierHours). The second
// result distinguishes "no candidate at all" (LabelNotCancelled) from
// "every candidate was an outlier" (LabelCancellationOutlier); it is
// empty when a minimum exists.
func MinCancellation(candidates []CancelCandidate) (minHours float64, outcome string) {
	var best float64
	found := false
	anyValid := false
	for _, c := range candidates {
		if !c.Valid {
			continue
		}
		anyValid = true
		if c.Hours >= OutlierHours {
			continue
		}
		if !found || c.Hours < best {
			best = c.Hours
			found = true
		}
	}
	if found {
		return best, ""
	}
	if anyValid {
		return 0, LabelCancellationOutlier
	}
	return 0, LabelNotCancelled
}

// CancellationTiming classifies the minimum cancellation time against
// the same containment window used for dispatch compliance. The outcome
// from MinCancellation passes through when no minimum exists; a missing
// tier dominates everything.
func CancellationTiming(tier string, minHours float64, minOutcome string) string {
	budget, ok := ContainmentBudget(tier)
	if !ok {
		return LabelNoSiteInfo
	}
	if minOutcome != "" {
		return minOutcome
	}
	lo, hi := ContainmentWindow(budget)
	minutes := minHours * 60
	switch {
	case minutes < lo:
		return LabelCancelBefore
	case minutes > hi:
		return LabelCancelAfter
	default:
		return LabelCancelWithin
	}
}

// cancellationBuckets are the reporting ranges for the minimum
// cancellation time, in hours.
var cancellationBuckets = []struct {
	limit float64
	label string
}{
	{6, "00-06"},
	{12, "06-12"},
	{18, "12-18"},
	{24, "18-24"},
	{36, "24-36"},
	{48, "36-48"},
	{60, "48-60"},
	{72, "60-72"},
}

// CancellationBucket buckets the minimum cancellation time for
// reporting. An outlier outcome short-circuits to its own bucket; any
// other missing minimum yields "".
func CancellationBucket(minHours float64, minOutcome string) string {
	if minOutcome == LabelCancellationOutlier {
		return LabelCancellationOutlier
	}
	if minOutcome != "" {
		return ""
	}
	if minHours < 0 {
		return "72+"
	}
	for _, b := range cancellationBuckets {
		if minHours < b.limit {
			return b.label
		}
	}
	return "72+"
}
