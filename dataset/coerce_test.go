package dataset

import (
	"strings"
	"testing"
	"time"
)

// memRegistry is an in-memory Registry for tests.
type memRegistry struct {
	types map[string]ColumnType
}

func newMemRegistry() *memRegistry { return &memRegistry{types: make(map[string]ColumnType)} }

func (m *memRegistry) ColumnType(table, column string) (ColumnType, bool, error) {
	ct, ok := m.types[table+"."+column]
	return ct, ok, nil
}

func (m *memRegistry) SetColumnType(table, column string, t ColumnType) error {
	m.types[table+"."+column] = t
	return nil
}

func TestParseTimestampLayouts(t *testing.T) {
	tests := []struct {
		raw  string
		want string
		ok   bool
	}{
		{"03/02/25 10:44 AM", "2025-02-03 10:44:00", true},
		{"2025-02-03 09:45:00", "2025-02-03 09:45:00", true},
		{"03/02/25 15:02:15", "2025-02-03 15:02:15", true},
		{"03/02/25", "2025-02-03 00:00:00", true},
		{"2025-02-03 09:48", "2025-02-03 09:48:00", true},
		{"03/02/2025 07:38 AM", "2025-02-03 07:38:00", true},
		{"31/01/2025 13:04", "2025-01-31 13:04:00", true},
		{"no se registro ?", "", false},
		{"-", "", false},
		{"", "", false},
		{"yesterday", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			ts, ok := ParseTimestamp(tt.raw)
			if ok != tt.ok {
				t.Fatalf("ParseTimestamp(%q) ok = %v, want %v", tt.raw, ok, tt.ok)
			}
			if ok && ts.Format("2006-01-02 15:04:05") != tt.want {
				t.Errorf("ParseTimestamp(%q) = %s, want %s", tt.raw, ts.Format("2006-01-02 15:04:05"), tt.want)
			}
		})
	}
}

func TestCoerceDateEquivalentLiterals(t *testing.T) {
	// The same instant in two supported literal formats must coerce to
	// the same calendar date.
	reg := newMemRegistry()
	reg.SetColumnType("t", "Fecha", TypeDate)

	for _, raw := range []string{"2025-02-03 09:45:00", "03/02/25 09:45:00"} {
		tbl := table("t", Row{"Fecha": raw})
		if _, err := Coerce(tbl, reg, nil); err != nil {
			t.Fatalf("Coerce(%q) error = %v", raw, err)
		}
		ts, ok := Time(tbl.Rows[0], "Fecha")
		if !ok {
			t.Fatalf("Coerce(%q) produced no time", raw)
		}
		if ts.Year() != 2025 || ts.Month() != time.February || ts.Day() != 3 {
			t.Errorf("Coerce(%q) date = %v, want 2025-02-03", raw, ts)
		}
		if ts.Hour() != 0 || ts.Minute() != 0 {
			t.Errorf("Coerce(%q) kept time-of-day %v, DATE must truncate", raw, ts)
		}
	}
}

func TestCoerceInteger(t *testing.T) {
	reg := newMemRegistry()
	reg.SetColumnType("t", "n", TypeInteger)

	tests := []struct {
		in   any
		want int64
		nilV bool
	}{
		{"7", 7, false},
		{"7.5", 8, false},
		{7.5, 8, false},
		{int64(3), 3, false},
		{"", 0, true},
		{"x", 0, true},
	}
	for _, tt := range tests {
		tbl := table("t", Row{"n": tt.in})
		report, err := Coerce(tbl, reg, nil)
		if err != nil {
			t.Fatalf("Coerce(%v) error = %v", tt.in, err)
		}
		v := tbl.Rows[0]["n"]
		if tt.nilV {
			if v != nil {
				t.Errorf("Coerce(%v) = %v, want nil", tt.in, v)
			}
			if tt.in == "x" && len(report.Unparsed["n"]) != 1 {
				t.Errorf("Coerce(%q) did not record the unparseable value", tt.in)
			}
			continue
		}
		if got, _ := Int(tbl.Rows[0], "n"); got != tt.want {
			t.Errorf("Coerce(%v) = %v, want %d", tt.in, v, tt.want)
		}
	}
}

func TestCoerceRecordsMistypedCellAsItself(t *testing.T) {
	reg := newMemRegistry()
	reg.SetColumnType("t", "n", TypeInteger)

	ts := time.Date(2025, 2, 3, 9, 45, 0, 0, time.UTC)
	tbl := table("t", Row{"n": ts})
	report, err := Coerce(tbl, reg, nil)
	if err != nil {
		t.Fatal(err)
	}
	if v := tbl.Rows[0]["n"]; v != nil {
		t.Errorf("Coerce(time value as INTEGER) = %v, want nil", v)
	}
	samples := report.Unparsed["n"]
	if len(samples) != 1 {
		t.Fatalf("Unparsed[n] = %v, want one sample", samples)
	}
	if samples[0] == "" || !strings.Contains(samples[0], "2025-02-03") {
		t.Errorf("unparsed sample = %q, want the printed cell value", samples[0])
	}
}

func TestCoerceUnknownColumnFailsClosed(t *testing.T) {
	tbl := table("t", Row{"mystery": "1"})

	if _, err := Coerce(tbl, newMemRegistry(), nil); err == nil {
		t.Fatal("Coerce() with unknown column and no resolver should fail")
	}

	res := &DefaultsResolver{}
	if _, err := Coerce(tbl, newMemRegistry(), res); err == nil {
		t.Fatal("DefaultsResolver without fallback should fail closed")
	}
}

func TestCoerceDefaultsResolver(t *testing.T) {
	reg := newMemRegistry()
	res := &DefaultsResolver{
		Defaults: map[string]ColumnType{"Rechazos": TypeInteger},
		Fallback: TypeText,
	}
	tbl := table("t", Row{"Rechazos": "2", "mystery": "abc"})

	report, err := Coerce(tbl, reg, res)
	if err != nil {
		t.Fatalf("Coerce() error = %v", err)
	}
	if got, _ := Int(tbl.Rows[0], "Rechazos"); got != 2 {
		t.Errorf("Rechazos = %v, want 2", tbl.Rows[0]["Rechazos"])
	}
	if len(res.Review) != 1 || res.Review[0].Column != "mystery" {
		t.Errorf("Review = %+v, want one entry for mystery", res.Review)
	}
	if report.Resolved["mystery"] != TypeText {
		t.Errorf("Resolved = %v, want mystery classified TEXT", report.Resolved)
	}
	// classification must be persisted for future runs
	if ct, ok, _ := reg.ColumnType("t", "mystery"); !ok || ct != TypeText {
		t.Errorf("registry entry for mystery = %q %v, want TEXT persisted", ct, ok)
	}
}

func TestStdinResolver(t *testing.T) {
	var out strings.Builder
	res := &StdinResolver{In: strings.NewReader("9\n4\n"), Out: &out}

	ct, err := res.Resolve("t", "Fecha")
	if err != nil {
		t.Fatalf("Resolve() error = %v", err)
	}
	if ct != TypeDate {
		t.Errorf("Resolve() = %s, want DATE after retry", ct)
	}
	if !strings.Contains(out.String(), "Invalid choice") {
		t.Error("invalid first choice was not reported")
	}

	// closed input fails instead of guessing
	res = &StdinResolver{In: strings.NewReader(""), Out: &out}
	if _, err := res.Resolve("t", "Fecha"); err == nil {
		t.Error("Resolve() with closed input should fail")
	}
}
