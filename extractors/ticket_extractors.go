package extractors

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// Free-text extraction of identifiers out of incident notes and activity
// exports. The notes are operator-written, so every pattern here is a
// best effort over messy text.

var (
	siteCodePattern     = regexp.MustCompile(`[A-Z]{2}\d{5}`)
	incidentKeyPattern  = regexp.MustCompile(`^INC\d{7}`)
	requestSuffix       = regexp.MustCompile(`-\d{2}$`)
	activityRefMarker   = regexp.MustCompile(`(?i)(?:TOA:|SIOM:)([^\n]*)`)
	eightDigitsPattern  = regexp.MustCompile(`\d{8}`)
	enterpriseCDPattern = regexp.MustCompile(`CD\d{6}`)
	enterpriseCRPattern = regexp.MustCompile(`CR\d{5}`)
	alarmNotesPattern   = regexp.MustCompile(`Alarma: ([^\n]+)`)
)

// nonSitePrefixes are code families that share the two-letters+five-digits
// shape but never name a site.
var nonSitePrefixes = []string{"NC", "CD", "CR"}

// SiteCodes extracts candidate site codes (two uppercase letters plus
// five digits) from free text, excluding known non-site code families.
// Each code is reported once, in order of first appearance.
func SiteCodes(notes string) []string {
	var codes []string
	seen := make(map[string]bool)
	for _, m := range siteCodePattern.FindAllString(notes, -1) {
		if seen[m] || hasNonSitePrefix(m) {
			continue
		}
		seen[m] = true
		codes = append(codes, m)
	}
	return codes
}

func hasNonSitePrefix(code string) bool {
	for _, p := range nonSitePrefixes {
		if strings.HasPrefix(code, p) {
			return true
		}
	}
	return false
}

// ActivityRefFromNotes extracts the 8-digit activity number written after
// a "TOA:" or "SIOM:" marker. Returns "" when no marker carries one.
func ActivityRefFromNotes(notes string) string {
	m := activityRefMarker.FindStringSubmatch(notes)
	if m == nil {
		return ""
	}
	return eightDigitsPattern.FindString(m[1])
}

// EnterpriseCase reports whether the notes reference an enterprise
// circuit instead of a field site: CD/CR circuit codes or an explicit
// "Circuito:" marker.
func EnterpriseCase(notes string) bool {
	if notes == "" {
		return false
	}
	return enterpriseCDPattern.MatchString(notes) ||
		enterpriseCRPattern.MatchString(notes) ||
		strings.Contains(notes, "Circuito:") ||
		strings.Contains(notes, "CIRCUITO:")
}

// AlarmFromSummary extracts the candidate alarm name from an incident
// summary of the form "site | alarm | detail": the segment between the
// first and second pipe. Returns "" when the summary has no such segment.
func AlarmFromSummary(summary string) string {
	parts := strings.Split(summary, "|")
	if len(parts) < 2 {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(parts[1]))
}

// AlarmFromNotes extracts an alarm name written after an "Alarma: "
// marker in free-text notes.
func AlarmFromNotes(notes string) string {
	m := alarmNotesPattern.FindStringSubmatch(notes)
	if m == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(m[1]))
}

// IncidentKey builds the reconciliation key of an activity against the
// incident system: the ticket id when it is a well-formed incident number,
// otherwise the request number with its "-NN" revision suffix stripped.
func IncidentKey(ticketID, requestNumber string) string {
	ticketID = strings.TrimSpace(ticketID)
	if incidentKeyPattern.MatchString(ticketID) {
		return ticketID
	}
	return requestSuffix.ReplaceAllString(strings.TrimSpace(requestNumber), "")
}

// NormalizeActivityID cleans an activity number that may arrive as a
// float rendering ("12345678.0") and left-pads it to 8 digits. Values
// that are not numeric at all are returned as-is.
func NormalizeActivityID(v any) string {
	if v == nil {
		return ""
	}
	s := strings.TrimSpace(fmt.Sprint(v))
	if s == "" {
		return ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return s
	}
	return fmt.Sprintf("%08d", int64(f))
}
