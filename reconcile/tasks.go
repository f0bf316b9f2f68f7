package reconcile

import (
	"sort"
	"strings"
	"time"

	"ticketflow/classify"
)

// MaxTaskSlots is how many secondary tasks are retained per activity.
const MaxTaskSlots = 3

// excludedCancelReasons removes administrative cancellations from the
// ranking; they never represent real field work.
var excludedCancelReasons = map[string]bool{
	"Duplicado":       true,
	"Other":           true,
	"Tarea de prueba": true,
	"Monitoreo":       true,
}

// statusPriority ranks task states for slot assignment. Lower wins.
// States outside the map get priority 3.
var statusPriority = map[string]int{
	"closed":    1,
	"completed": 2,
	"canceled":  4,
}

// TaskSlot is one ranked secondary task attached to an activity,
// enriched with its latest pause event and the nearest preceding
// supply task at the same site.
type TaskSlot struct {
	Task

	DurationHours    float64
	HasDuration      bool
	PauseAt          time.Time
	HasPause         bool
	PauseState       string
	PauseReason      string
	SupplyTaskID     string
	SupplyStatus     string
	SupplyCreated    time.Time
	HasSupplyCreated bool
	SupplyDays       int64
	HasSupplyDays    bool
}

// RankedTasks holds up to MaxTaskSlots slots per 8-digit activity
// reference, best first.
type RankedTasks map[string][]TaskSlot

// RankTasks selects the most relevant secondary tasks per activity
// reference. Corrective tasks (and proactive PLM tasks) survive the
// filter; administrative cancellations and tasks without a valid 8-digit
// activity reference do not. Survivors are ranked by status priority
// then creation time and the top three keep a slot.
func RankTasks(tasks []Task, pauses []PauseEvent) RankedTasks {
	lastPause := latestPauseByTask(pauses)
	supplies := supplyTasks(tasks)

	grouped := map[string][]TaskSlot{}
	for _, task := range tasks {
		if excludedCancelReasons[task.CancelReason] {
			continue
		}
		isCM := strings.Contains(strings.ToUpper(task.ID), "CM")
		isProactive := strings.Contains(strings.ToUpper(task.ID), "PLM") && task.Category == "PROACTIVO"
		if !isCM && !isProactive {
			continue
		}
		if len(task.ActivityRef) != 8 {
			continue
		}

		slot := TaskSlot{Task: task}
		if task.HasCompleted && task.HasCreated {
			slot.DurationHours = task.Completed.Sub(task.Created).Hours()
			slot.HasDuration = true
		}
		if p, ok := lastPause[task.ID]; ok {
			slot.PauseAt, slot.HasPause = p.At, p.HasAt
			slot.PauseState = p.State
			slot.PauseReason = p.Reason
		}
		attachSupply(&slot, supplies)
		grouped[task.ActivityRef] = append(grouped[task.ActivityRef], slot)
	}

	out := make(RankedTasks, len(grouped))
	for ref, slots := range grouped {
		sort.SliceStable(slots, func(i, j int) bool {
			pi, pj := slotPriority(slots[i]), slotPriority(slots[j])
			if pi != pj {
				return pi < pj
			}
			return slots[i].Created.Before(slots[j].Created)
		})
		if len(slots) > MaxTaskSlots {
			slots = slots[:MaxTaskSlots]
		}
		out[ref] = slots
	}
	return out
}

func slotPriority(s TaskSlot) int {
	if p, ok := statusPriority[s.Status]; ok {
		return p
	}
	return 3
}

// latestPauseByTask keeps the most recent pause event per task.
func latestPauseByTask(pauses []PauseEvent) map[string]PauseEvent {
	out := map[string]PauseEvent{}
	for _, p := range pauses {
		if p.TaskID == "" {
			continue
		}
		prev, ok := out[p.TaskID]
		if !ok || (p.HasAt && (!prev.HasAt || p.At.After(prev.At))) {
			out[p.TaskID] = p
		}
	}
	return out
}

// SupplyTaskList lists every non-cancelled supply-category task with a
// creation time, the dataset the supply-correlation classifier scans.
func SupplyTaskList(tasks []Task) []classify.SupplyTask {
	var out []classify.SupplyTask
	for _, t := range tasks {
		if !strings.Contains(strings.ToLower(t.Category), "abastecimiento") || t.Status == "canceled" {
			continue
		}
		if t.SiteID == "" || !t.HasCreated {
			continue
		}
		out = append(out, classify.SupplyTask{ID: t.ID, SiteID: t.SiteID, Created: t.Created})
	}
	return out
}

// supplyTasks extracts the non-cancelled supply-category tasks, sorted
// by creation time per site.
func supplyTasks(tasks []Task) map[string][]Task {
	out := map[string][]Task{}
	for _, t := range tasks {
		if !strings.Contains(strings.ToLower(t.Category), "abastecimiento") || t.Status == "canceled" {
			continue
		}
		if t.SiteID == "" {
			continue
		}
		out[t.SiteID] = append(out[t.SiteID], t)
	}
	for site := range out {
		sort.Slice(out[site], func(i, j int) bool {
			return out[site][i].Created.Before(out[site][j].Created)
		})
	}
	return out
}

// attachSupply links the latest supply task created before the slot's
// own creation at the same site.
func attachSupply(slot *TaskSlot, supplies map[string][]Task) {
	if !slot.HasCreated {
		return
	}
	var match *Task
	for i := range supplies[slot.SiteID] {
		s := &supplies[slot.SiteID][i]
		if s.HasCreated && s.Created.Before(slot.Created) {
			match = s
		}
	}
	if match == nil {
		return
	}
	slot.SupplyTaskID = match.ID
	slot.SupplyStatus = match.Status
	slot.SupplyCreated, slot.HasSupplyCreated = match.Created, true
	slot.SupplyDays = int64(slot.Created.Sub(match.Created).Hours() / 24)
	slot.HasSupplyDays = true
}

// CollapseSlots removes duplicate task identifiers across the three
// slots: a slot-3 duplicate of slot 2 is dropped; a slot-2 duplicate of
// slot 1 is dropped and slot 3 shifts up to fill the gap.
func CollapseSlots(slots []TaskSlot) []TaskSlot {
	if len(slots) >= 3 && slots[2].ID == slots[1].ID {
		slots = slots[:2]
	}
	if len(slots) >= 2 && slots[1].ID == slots[0].ID {
		if len(slots) >= 3 {
			slots[1] = slots[2]
			slots = slots[:2]
		} else {
			slots = slots[:1]
		}
	}
	return slots
}
