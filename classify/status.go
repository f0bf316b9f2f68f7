package classify

// Status consistency labels for the activity/task cross-check.
const (
	LabelBadCross      = "cruce incorrecto"
	LabelReviewPending = "falta de revisión"
)

// openTaskStates are task states that contradict a cancelled activity,
// terminalTaskStates the ones that contradict an activity still open.
var (
	cancelledMismatch = map[string]bool{
		"accepted": true, "closed": true, "completed": true,
		"dispatched": true, "inprocess": true, "unscheduled": true,
	}
	completedMismatch = map[string]bool{
		"accepted": true, "canceled": true, "dispatched": true,
		"inprocess": true, "unscheduled": true,
	}
	terminalTaskStates = map[string]bool{
		"closed": true, "completed": true, "canceled": true,
	}
	openActivityStates = map[string]bool{
		"Pendiente": true, "Pre cierre": true, "Suspendido": true,
	}
)

// StatusConsistency cross-checks the activity status against its
// primary task slot: a terminal state on one side with activity still
// open on the other needs review, contradictory terminal states are a
// bad cross. Consistent pairs yield "".
func StatusConsistency(activityStatus, taskStatus string) string {
	switch {
	case activityStatus == "Cancelado" && cancelledMismatch[taskStatus]:
		return LabelBadCross
	case activityStatus == "Completado" && completedMismatch[taskStatus]:
		return LabelBadCross
	case openActivityStates[activityStatus] && terminalTaskStates[taskStatus]:
		return LabelReviewPending
	default:
		return ""
	}
}
