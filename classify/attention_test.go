package classify

import (
	"reflect"
	"testing"
	"time"
)

func TestSupplyTickets(t *testing.T) {
	registered := time.Date(2025, 4, 1, 10, 0, 0, 0, time.UTC)
	supplies := []SupplyTask{
		{ID: "AB-1", SiteID: "LIM001", Created: registered.Add(2 * time.Hour)},
		{ID: "AB-2", SiteID: "LIM001", Created: registered.Add(47 * time.Hour)},
		{ID: "AB-3", SiteID: "LIM001", Created: registered.Add(49 * time.Hour)},
		{ID: "AB-4", SiteID: "LIM001", Created: registered.Add(-time.Hour)},
		{ID: "AB-5", SiteID: "ARE002", Created: registered.Add(3 * time.Hour)},
	}

	res := SupplyTickets("LIM001", registered, true, supplies)
	if !res.Known || !res.Occurred || res.Count != 2 {
		t.Fatalf("res = %+v, want 2 known supply tasks", res)
	}
	if !reflect.DeepEqual(res.TaskIDs, []string{"AB-1", "AB-2"}) {
		t.Errorf("TaskIDs = %v", res.TaskIDs)
	}

	none := SupplyTickets("CUS003", registered, true, supplies)
	if !none.Known || none.Occurred || none.Count != 0 {
		t.Errorf("no-match = %+v", none)
	}

	unknown := SupplyTickets("", registered, true, supplies)
	if unknown.Known {
		t.Errorf("missing site should be unknown, got %+v", unknown)
	}
}

func TestTechnicianArrived(t *testing.T) {
	if got := TechnicianArrived(false, true, false); got != FlagYes {
		t.Errorf("got %q", got)
	}
	if got := TechnicianArrived(false, false, false); got != FlagNo {
		t.Errorf("got %q", got)
	}
}

func TestACFailureRelated(t *testing.T) {
	yes := []FaultCoding{
		{Speciality: "ENERGIA", SubSpeciality: "Fallo AC monofasico"},
	}
	if got := ACFailureRelated(yes...); got != FlagYes {
		t.Errorf("got %q", got)
	}
	no := []FaultCoding{
		{Speciality: "ENERGIA", SubSpeciality: "Rectificador"},
		{Speciality: "CLIMA", SubSpeciality: "AC split"},
	}
	if got := ACFailureRelated(no...); got != FlagNo {
		t.Errorf("got %q", got)
	}
}

func TestAttentionDetected(t *testing.T) {
	yes := AttentionInputs{
		SupplyOccurred:    FlagNo,
		TechnicianArrived: FlagNo,
		ACFailureRelated:  FlagNo,
		DetectorAnswers:   []string{AnswerNo, AnswerYes, AnswerNo, AnswerNo},
	}
	if got := AttentionDetected(yes); got != FlagYes {
		t.Errorf("detector should trigger attention, got %q", got)
	}
	no := AttentionInputs{
		SupplyOccurred:    FlagNo,
		TechnicianArrived: FlagNo,
		ACFailureRelated:  FlagNo,
		DetectorAnswers:   []string{AnswerNo, AnswerNo, AnswerNo, AnswerNo},
	}
	if got := AttentionDetected(no); got != FlagNo {
		t.Errorf("got %q", got)
	}
}

func TestDetectRepeats(t *testing.T) {
	day := 24 * time.Hour
	base := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	items := []RepeatItem{
		{ID: "A", Site: "LIM001", Equipment: "RECT", Registered: base, HasTime: true},
		{ID: "B", Site: "LIM001", Equipment: "RECT", Registered: base.Add(5 * day), HasTime: true},
		{ID: "C", Site: "LIM001", Equipment: "RECT", Registered: base.Add(10 * day), HasTime: true},
		{ID: "D", Site: "LIM001", Equipment: "GE", Registered: base.Add(2 * day), HasTime: true},
		{ID: "E", Site: "LIM001", Equipment: "", Registered: base.Add(time.Hour), HasTime: true},
	}

	links := DetectRepeats(items)

	if link, ok := links["B"]; !ok || link.Predecessor != "A" {
		t.Errorf("B link = %+v, want predecessor A", links["B"])
	}
	// C is 10 days after A but only 5 after B; its predecessor is B.
	if link, ok := links["C"]; !ok || link.Predecessor != "B" {
		t.Errorf("C link = %+v, want predecessor B", links["C"])
	}
	if _, ok := links["A"]; ok {
		t.Error("first activity of a group flagged as repeat")
	}
	if _, ok := links["D"]; ok {
		t.Error("different equipment grouped together")
	}
	if _, ok := links["E"]; ok {
		t.Error("empty equipment must not group")
	}
}
