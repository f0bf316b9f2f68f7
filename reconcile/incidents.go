package reconcile

import (
	"sort"
	"strings"
	"time"

	"ticketflow/classify"
	"ticketflow/dataset"
	"ticketflow/extractors"
)

// Incident-to-activity reconciliation labels.
const (
	ReasonHasActivity   = "Si tiene TOA"
	ReasonNoActivity    = "TOA no identificado"
	ReasonEnterprise    = "Caso Empresa"
	ReasonTelefonicaOwn = "Sitio corresponde a Telefonica"
	NoRefInNotes        = "sin TOA en notas"
)

// WindowRadius is the time-window fallback search radius around the
// incident submission.
const WindowRadius = 6 * time.Hour

// managedGroups are the incident assignment groups this reconciliation
// covers.
var managedGroups = []string{"FLM COMFICA", "FLM HUAWEI"}

// managedProviders are the field-maintenance providers whose sites the
// pipeline is responsible for.
var managedProviders = map[string]bool{"HUAWEI": true, "COMFICA": true}

// WindowCandidate is one ranked alternate activity found by the
// time-window fallback. Candidates are surfaced for review, never
// adopted as the primary match.
type WindowCandidate struct {
	ActivityID string
	RequestID  string
	DeltaHours float64
}

// IncidentMatch is one reconciled incident with its classification
// columns resolved.
type IncidentMatch struct {
	Incident Incident
	Alarm    classify.AlarmTag

	SiteID   string
	Reason   string
	NotesRef string

	Activity   *Activity
	Candidates []WindowCandidate

	Provider    string
	Tier        string
	StationType string

	Slots []TaskSlot

	BudgetHours    float64
	HasBudget      bool
	Containment    string
	DispatchHours  float64
	HasDispatch    bool
	CancelHours    [MaxTaskSlots]float64
	HasCancelHours [MaxTaskSlots]bool
	OwnCancelHours float64
	HasOwnCancel   bool
	MinCancelHours float64
	HasMinCancel   bool
	CancelTiming   string
	CancelBucket   string

	SwapClass string
	Supply    classify.SupplyResult

	TechnicianArrived string
	ACFailureRelated  string
	DetectorAnswers   []string
	Attention         string
}

// IncidentJoinInputs carries every dataset the incident join reads.
type IncidentJoinInputs struct {
	Incidents    []Incident
	Activities   []Activity
	Sites        map[string]Site
	Ranked       RankedTasks
	AlarmCatalog map[string]string
	Supplies     []classify.SupplyTask
	// MinStart drops incidents that started before the reporting
	// horizon. Zero keeps everything.
	MinStart time.Time
}

// JoinIncidents reconciles each managed incident against the activity
// table: exact key join first, notes-derived reference backfill second,
// and a reviewed time-window candidate search when neither resolves.
// Every classification column of the incident report is computed here.
func JoinIncidents(in IncidentJoinInputs) []IncidentMatch {
	byKey := map[string]*Activity{}
	byID := map[string]*Activity{}
	for i := range in.Activities {
		a := &in.Activities[i]
		if key := extractors.IncidentKey(a.TicketID, a.RequestID); key != "" {
			if _, dup := byKey[key]; !dup {
				byKey[key] = a
			}
		}
		if a.ID != "" {
			byID[a.ID] = a
		}
	}

	var matches []IncidentMatch
	claimed := map[string]bool{}
	for _, inc := range in.Incidents {
		if !managedIncident(inc) {
			continue
		}
		if !in.MinStart.IsZero() && (!inc.HasStarted || inc.Started.Before(in.MinStart)) {
			continue
		}

		m := IncidentMatch{
			Incident: inc,
			Alarm:    classify.TagAlarm(inc.Summary, inc.Notes, in.AlarmCatalog),
			NotesRef: NoRefInNotes,
		}
		for _, code := range extractors.SiteCodes(inc.Notes) {
			if _, ok := in.Sites[code]; ok {
				m.SiteID = code
				break
			}
		}
		if extractors.EnterpriseCase(inc.Notes) {
			m.Reason = ReasonEnterprise
		}
		if ref := extractors.ActivityRefFromNotes(inc.Notes); ref != "" {
			m.NotesRef = ref
		}

		if a, ok := byKey[strings.TrimSpace(inc.ID)]; ok {
			m.Activity = a
		} else if m.NotesRef != NoRefInNotes {
			if a, ok := byID[m.NotesRef]; ok {
				m.Activity = a
			}
		}
		if m.Activity != nil {
			claimed[m.Activity.ID] = true
		}
		if m.Reason == "" {
			if m.Activity != nil {
				m.Reason = ReasonHasActivity
			} else {
				m.Reason = ReasonNoActivity
			}
		}
		if m.SiteID == "" && m.Activity != nil {
			m.SiteID = m.Activity.SiteCode
		}
		matches = append(matches, m)
	}

	for i := range matches {
		m := &matches[i]

		if site, ok := in.Sites[m.SiteID]; ok {
			m.Provider = site.Provider
			m.Tier = site.Tier
			m.StationType = dataset.Str(site.Row, "Tipo_Estacion")
			if !managedProviders[m.Provider] && m.Reason != ReasonHasActivity && m.SiteID != "" {
				m.Reason = ReasonTelefonicaOwn
			}
		}

		if m.Activity == nil && m.SiteID != "" {
			m.Candidates = windowCandidates(in.Activities, m.SiteID, m.Incident, claimed)
		}

		classifyIncident(m, in)
	}
	return matches
}

func managedIncident(inc Incident) bool {
	for _, g := range managedGroups {
		if strings.Contains(inc.AssignedGroup, g) {
			return true
		}
	}
	return false
}


// windowCandidates searches unclaimed activities at the site within the
// submission window and ranks the two nearest by absolute time delta.
func windowCandidates(activities []Activity, siteID string, inc Incident, claimed map[string]bool) []WindowCandidate {
	if !inc.HasSubmitted {
		return nil
	}
	var found []WindowCandidate
	for i := range activities {
		a := &activities[i]
		if a.SiteCode != siteID || !a.HasRegister || claimed[a.ID] {
			continue
		}
		delta := a.Registered.Sub(inc.Submitted)
		if delta < -WindowRadius || delta > WindowRadius {
			continue
		}
		found = append(found, WindowCandidate{
			ActivityID: a.ID,
			RequestID:  a.RequestID,
			DeltaHours: delta.Hours(),
		})
	}
	sort.SliceStable(found, func(i, j int) bool {
		return absHours(found[i].DeltaHours) < absHours(found[j].DeltaHours)
	})
	if len(found) > 2 {
		found = found[:2]
	}
	return found
}

func absHours(h float64) float64 {
	if h < 0 {
		return -h
	}
	return h
}

// classifyIncident fills the time-arithmetic and free-text columns of
// one reconciled incident.
func classifyIncident(m *IncidentMatch, in IncidentJoinInputs) {
	inc := m.Incident
	m.BudgetHours, m.HasBudget = classify.ContainmentBudget(m.Tier)

	var registered time.Time
	hasRegistered := false
	activityStatus := ""
	if m.Activity != nil {
		registered, hasRegistered = m.Activity.Registered, m.Activity.HasRegister
		activityStatus = m.Activity.Status
		m.Slots = CollapseSlots(in.Ranked[m.Activity.ID])
	}

	m.Containment = classify.Containment(m.Tier, inc.Started, registered, inc.HasStarted, hasRegistered)
	if inc.HasStarted && hasRegistered {
		m.DispatchHours = classify.DispatchHours(inc.Started, registered)
		m.HasDispatch = true
	}

	candidates := make([]classify.CancelCandidate, 0, MaxTaskSlots+1)
	for i := 0; i < MaxTaskSlots; i++ {
		if i < len(m.Slots) && m.Slots[i].HasCancelled && inc.HasStarted {
			m.CancelHours[i] = m.Slots[i].Cancelled.Sub(inc.Started).Hours()
			m.HasCancelHours[i] = true
		}
		candidates = append(candidates, classify.CancelCandidate{Hours: m.CancelHours[i], Valid: m.HasCancelHours[i]})
	}
	if m.Activity != nil && m.Activity.HasCancelled && inc.HasStarted && activityStatus == "Cancelado" {
		m.OwnCancelHours = m.Activity.Cancelled.Sub(inc.Started).Hours()
		m.HasOwnCancel = true
	}
	candidates = append(candidates, classify.CancelCandidate{Hours: m.OwnCancelHours, Valid: m.HasOwnCancel})

	minHours, outcome := classify.MinCancellation(candidates)
	m.MinCancelHours, m.HasMinCancel = minHours, outcome == ""
	m.CancelTiming = classify.CancellationTiming(m.Tier, minHours, outcome)
	m.CancelBucket = classify.CancellationBucket(minHours, outcome)

	var swapEnd time.Time
	hasSwapEnd := false
	if site, ok := in.Sites[m.SiteID]; ok {
		swapEnd, hasSwapEnd = site.SwapEnd, site.HasSwapEnd
	}
	m.SwapClass = classify.SwapClassification(m.SiteID, inc.Started, swapEnd, hasSwapEnd)

	m.Supply = classify.SupplyTickets(m.SiteID, registered, hasRegistered, in.Supplies)

	arrivals := make([]bool, 0, len(m.Slots))
	codings := make([]classify.FaultCoding, 0, len(m.Slots))
	var noteFields []string
	for _, slot := range m.Slots {
		if !strings.Contains(strings.ToUpper(slot.ID), "CM") {
			continue
		}
		arrivals = append(arrivals, slot.HasArrived)
		codings = append(codings, classify.FaultCoding{
			Speciality:    slot.FaultSpeciality,
			SubSpeciality: slot.FaultSubSpeciality,
		})
		noteFields = append(noteFields, slot.LeaveObservations, slot.ActionDetail)
	}
	m.TechnicianArrived = classify.TechnicianArrived(arrivals...)
	m.ACFailureRelated = classify.ACFailureRelated(codings...)

	combined := classify.CombineNotes(noteFields...)
	m.DetectorAnswers = make([]string, 0, len(classify.ActionDetectors))
	for _, d := range classify.ActionDetectors {
		m.DetectorAnswers = append(m.DetectorAnswers, d.Detect(combined))
	}

	supplyFlag := classify.FlagNo
	if m.Supply.Occurred {
		supplyFlag = classify.FlagYes
	}
	m.Attention = classify.AttentionDetected(classify.AttentionInputs{
		SupplyOccurred:    supplyFlag,
		TechnicianArrived: m.TechnicianArrived,
		ACFailureRelated:  m.ACFailureRelated,
		DetectorAnswers:   m.DetectorAnswers,
	})
}
