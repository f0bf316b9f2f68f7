package classify

import "time"

// Swap classification labels.
const (
	LabelSwapNoSite    = "Sin info de Sitio"
	LabelPostSwap      = "Incidente post SWAP"
	LabelUnrelatedSwap = "Incidente no relacionado a SWAP"
)

// SwapClassification relates an incident to the site's equipment swap:
// an incident starting after the swap completed is a post-swap case.
func SwapClassification(siteID string, incidentStart, swapEnd time.Time, hasSwapEnd bool) string {
	if siteID == "" {
		return LabelSwapNoSite
	}
	if hasSwapEnd && incidentStart.After(swapEnd) {
		return LabelPostSwap
	}
	return LabelUnrelatedSwap
}
