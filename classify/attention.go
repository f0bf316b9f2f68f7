package classify

import "strings"

// Composite flag answers. The attention flag uses title-case yes/no to
// match the report columns it feeds.
const (
	FlagYes = "Si"
	FlagNo  = "No"
)

// TechnicianArrived reports whether any of the matched task slots
// recorded an arrival time.
func TechnicianArrived(arrivals ...bool) string {
	for _, a := range arrivals {
		if a {
			return FlagYes
		}
	}
	return FlagNo
}

// FaultCoding is the fault speciality pair of one task slot.
type FaultCoding struct {
	Speciality    string
	SubSpeciality string
}

// ACFailureRelated reports whether any slot coded the fault as an
// energy fault on the AC side.
func ACFailureRelated(codings ...FaultCoding) string {
	for _, c := range codings {
		if c.Speciality == "ENERGIA" && strings.Contains(strings.ToUpper(c.SubSpeciality), "AC") {
			return FlagYes
		}
	}
	return FlagNo
}

// AttentionInputs are the signals feeding the composite attention flag.
type AttentionInputs struct {
	SupplyOccurred    string
	TechnicianArrived string
	ACFailureRelated  string
	DetectorAnswers   []string
}

// AttentionDetected is true when any signal shows the site was actually
// attended: a supply task, a technician on site, an AC fault coding, or
// any free-text action detector firing.
func AttentionDetected(in AttentionInputs) string {
	if in.SupplyOccurred == FlagYes || in.TechnicianArrived == FlagYes || in.ACFailureRelated == FlagYes {
		return FlagYes
	}
	for _, a := range in.DetectorAnswers {
		if a == AnswerYes {
			return FlagYes
		}
	}
	return FlagNo
}
