package classify

import "testing"

func TestGeneratorDetector(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"install with full mention", "Se instaló el grupo electrógeno de respaldo", AnswerYes},
		{"abbreviation", "tecnico encendio GE en sitio", AnswerYes},
		{"negation wins", "el sitio no cuenta con grupo electrógeno", AnswerNo},
		{"noun without verb", "grupo electrógeno presente en sitio", AnswerNo},
		{"verb without noun", "se instaló rectificador nuevo", AnswerNo},
		{"empty", "", AnswerNo},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GeneratorDetector.Detect(tt.text); got != tt.want {
				t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestBatteryDetector(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"se cambiaron las baterías del banco", AnswerYes},
		{"revisión de bbaterias completada, se recargo baterias", AnswerYes},
		{"baterías en buen estado", AnswerNo},
		{"se cambió el rectificador", AnswerNo},
	}
	for _, tt := range tests {
		if got := BatteryDetector.Detect(tt.text); got != tt.want {
			t.Errorf("Detect(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

func TestITMDetector(t *testing.T) {
	if got := ITMDetector.Detect("se reajustó el ITM principal"); got != AnswerYes {
		t.Errorf("reajuste de ITM = %q, want %q", got, AnswerYes)
	}
	if got := ITMDetector.Detect("itm operativo sin cambios"); got != AnswerNo {
		t.Errorf("itm sin verbo = %q, want %q", got, AnswerNo)
	}
	// "itm" must match as a whole word.
	if got := ITMDetector.Detect("se cambió el ritmo de trabajo"); got != AnswerNo {
		t.Errorf("ritmo = %q, want %q", got, AnswerNo)
	}
}

func TestBreakerDetectorSpellings(t *testing.T) {
	for _, text := range []string{
		"se subio el breaker general",
		"levanto los breackers del tablero",
		"tecnico activo el braker",
	} {
		if got := BreakerDetector.Detect(text); got != AnswerYes {
			t.Errorf("Detect(%q) = %q, want %q", text, got, AnswerYes)
		}
	}
	if got := BreakerDetector.Detect("breaker abierto encontrado"); got != AnswerNo {
		t.Errorf("breaker sin acción = %q, want %q", got, AnswerNo)
	}
}

func TestFold(t *testing.T) {
	if got := Fold("Instaló BATERÍAS"); got != "instalo baterias" {
		t.Errorf("Fold = %q", got)
	}
}

func TestCombineNotes(t *testing.T) {
	got := CombineNotes("cambio de baterías", "", "se subió breaker")
	want := "cambio de baterías. . se subió breaker"
	if got != want {
		t.Errorf("CombineNotes = %q, want %q", got, want)
	}
}
