package services

import (
	"fmt"
	"strings"
)

// Delimiter trennt Label und Wert einer extrahierten Zeile. Gesplittet wird nur
// am ersten Vorkommen: Labels dürfen kein ':' enthalten, Werte schon.
const Delimiter = ":"

// Record ist eine geordnete Abbildung Label -> Wert. Die Einfügereihenfolge
// bestimmt später die Zeilen- bzw. Spaltenreihenfolge der Tabellen.
type Record struct {
	keys   []string
	values map[string]string
}

func NewRecord() *Record {
	return &Record{values: make(map[string]string)}
}

// Set fügt ein Feld hinzu. Doppelte Labels sind ein Datenfehler.
func (r *Record) Set(key, value string) error {
	if _, exists := r.values[key]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateField, key)
	}
	r.keys = append(r.keys, key)
	r.values[key] = value
	return nil
}

func (r *Record) Get(key string) (string, bool) {
	v, ok := r.values[key]
	return v, ok
}

// Keys liefert die Labels in Einfügereihenfolge.
func (r *Record) Keys() []string {
	return append([]string(nil), r.keys...)
}

func (r *Record) Len() int { return len(r.keys) }

// Values liefert die Werte in Einfügereihenfolge.
func (r *Record) Values() []string {
	out := make([]string, len(r.keys))
	for i, k := range r.keys {
		out[i] = r.values[k]
	}
	return out
}

// Field ist ein einzelnes Label-Wert-Paar, z.B. für JSON-Antworten.
type Field struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

func (r *Record) Fields() []Field {
	out := make([]Field, len(r.keys))
	for i, k := range r.keys {
		out[i] = Field{Label: k, Value: r.values[k]}
	}
	return out
}

// Section ist eine Rangliste: ein Record pro Eintrag in Rangfolge.
type Section struct {
	// Preamble sammelt Zeilen, die vor dem ersten Ranglisteneintrag auftauchen.
	Preamble *Record
	Entries  []*Record
}

// ParseLines zerlegt "label:wert"-Zeilen in einen Record.
func ParseLines(lines []string) (*Record, error) {
	rec := NewRecord()
	for i, line := range lines {
		label, value, ok := strings.Cut(line, Delimiter)
		if !ok {
			return nil, fmt.Errorf("%w: line %d %q has no %q", ErrParse, i+1, line, Delimiter)
		}
		if err := rec.Set(label, value); err != nil {
			return nil, fmt.Errorf("line %d: %w", i+1, err)
		}
	}
	return rec, nil
}

// FormatLines ist die Umkehrung von ParseLines, z.B. für den .txt-Dump.
func FormatLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
