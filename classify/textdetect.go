package classify

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/kljensen/snowball"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Detector answers in the report's own vocabulary.
const (
	AnswerYes = "SI"
	AnswerNo  = "NO"
)

// Detector is one declarative free-text action rule: the text must
// carry an action verb (matched by stem) and a mention of the domain
// noun, and must not match any negation pattern. Technician notes are
// Spanish with uneven spelling, so matching runs over diacritic-folded
// lowercase text.
type Detector struct {
	Name      string
	Negations []*regexp.Regexp
	VerbStems []string
	Nouns     []*regexp.Regexp
}

// foldTransform strips combining diacritics after NFD decomposition.
var foldTransform = transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)

// Fold lowercases Spanish text and strips its diacritics.
func Fold(s string) string {
	out, _, err := transform.String(foldTransform, strings.ToLower(s))
	if err != nil {
		return strings.ToLower(s)
	}
	return out
}

var tokenPattern = regexp.MustCompile(`[a-zñ]+`)

// Detect runs the rule over one free-text blob.
func (d Detector) Detect(text string) string {
	if strings.TrimSpace(text) == "" {
		return AnswerNo
	}
	folded := Fold(text)

	for _, neg := range d.Negations {
		if neg.MatchString(folded) {
			return AnswerNo
		}
	}
	if !d.hasActionVerb(folded) {
		return AnswerNo
	}
	for _, noun := range d.Nouns {
		if noun.MatchString(folded) {
			return AnswerYes
		}
	}
	return AnswerNo
}

// hasActionVerb reports whether any token carries one of the verb
// stems, either directly as a prefix or through its Spanish snowball
// stem. The stem pass catches conjugations whose surface form drifts
// from the root.
func (d Detector) hasActionVerb(folded string) bool {
	for _, tok := range tokenPattern.FindAllString(folded, -1) {
		if d.matchesStem(tok) {
			return true
		}
		if stemmed, err := snowball.Stem(tok, "spanish", true); err == nil && stemmed != tok && d.matchesStem(stemmed) {
			return true
		}
	}
	return false
}

func (d Detector) matchesStem(tok string) bool {
	for _, stem := range d.VerbStems {
		if strings.HasPrefix(tok, stem) {
			return true
		}
	}
	return false
}

// GeneratorDetector flags work on the backup generator set. It is the
// only detector with a negation guard: notes frequently state that the
// site has no generator at all.
var GeneratorDetector = Detector{
	Name: "grupo electrógeno",
	Negations: []*regexp.Regexp{
		regexp.MustCompile(`\b(?:no\s+(?:tiene|hay|existe)|sin|ningun(?:a)?|no\s*cuenta\s+con)\s+(?:grupo\s+electrogeno|grupo|ge|g\.e\.?)\b`),
	},
	VerbStems: []string{"instal", "encend", "cambi", "coloc", "deja", "dejo", "oper", "funcion"},
	Nouns: []*regexp.Regexp{
		regexp.MustCompile(`\bgrupo\s+electrogeno\b`),
		regexp.MustCompile(`\b(?:ge|g\.e\.?)\b`),
		regexp.MustCompile(`\bgrupo\b`),
	},
}

// BatteryDetector flags work on the battery bank.
var BatteryDetector = Detector{
	Name:      "baterías",
	VerbStems: []string{"coloc", "cambi", "instal", "mid", "recarg", "carg", "respald", "revis", "verific"},
	Nouns: []*regexp.Regexp{
		regexp.MustCompile(`\bb{1,2}ateria(?:s)?\b`),
	},
}

// ITMDetector flags adjustments of the thermal-magnetic switch.
var ITMDetector = Detector{
	Name:      "ITM",
	VerbStems: []string{"cambi", "ajust", "reajust", "reposicion"},
	Nouns: []*regexp.Regexp{
		regexp.MustCompile(`\bitm\b`),
	},
}

// BreakerDetector flags work on circuit breakers; the noun alternation
// carries the misspellings seen in real notes.
var BreakerDetector = Detector{
	Name:      "breakers",
	VerbStems: []string{"subio", "subi", "levanto", "levanta", "ajusto", "ajust", "activ", "arreglo", "arregl"},
	Nouns: []*regexp.Regexp{
		regexp.MustCompile(`\b(?:breaker|breacker|breackers|braker|bracker|brackers|breker|breckers)s?\b`),
	},
}

// ActionDetectors is the full detector set in report-column order.
var ActionDetectors = []Detector{GeneratorDetector, BatteryDetector, ITMDetector, BreakerDetector}

// CombineNotes concatenates technician note fields the way the report
// expects them scanned: one blob, period separated.
func CombineNotes(fields ...string) string {
	return strings.Join(fields, ". ")
}
