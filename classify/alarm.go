package classify

import (
	"strings"

	"ticketflow/extractors"
)

// Alarm tagging sentinels.
const (
	LabelAlarmUnknown     = "alarma no identificada"
	LabelAlarmTypeUnknown = "tipo no identificado"
	SeverityTotal         = "TOTAL"
)

// AlarmTag is the resolved alarm name and severity of one incident.
type AlarmTag struct {
	Alarm string
	Type  string
}

// isACFailure recognizes the AC power-failure family of alarm texts,
// which classifies as a total outage regardless of catalog membership.
func isACFailure(alarm string) bool {
	if !strings.Contains(alarm, "ac") {
		return false
	}
	return strings.Contains(alarm, "failure") || strings.Contains(alarm, "fallo") || strings.Contains(alarm, "falla")
}

// TagAlarm resolves the alarm name and severity of an incident. The
// summary's middle pipe segment is the primary candidate, accepted when
// it is in the catalog or matches the AC-failure family; otherwise the
// "Alarma:" marker in the notes is the fallback. Catalog keys are
// lowercased alarm names mapping to severity.
func TagAlarm(summary, notes string, catalog map[string]string) AlarmTag {
	alarm := extractors.AlarmFromSummary(summary)
	if alarm != "" {
		_, known := catalog[alarm]
		if !known && !isACFailure(alarm) {
			alarm = ""
		}
	}
	if alarm == "" {
		alarm = strings.ToLower(extractors.AlarmFromNotes(notes))
	}
	if alarm == "" {
		return AlarmTag{Alarm: LabelAlarmUnknown, Type: LabelAlarmUnknown}
	}

	tag := AlarmTag{Alarm: alarm}
	if isACFailure(alarm) {
		tag.Type = SeverityTotal
		return tag
	}
	if severity, ok := catalog[alarm]; ok && severity != "" {
		tag.Type = severity
		return tag
	}
	tag.Type = LabelAlarmTypeUnknown
	return tag
}
