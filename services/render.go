package services

import (
	"bytes"
	"fmt"
	"html/template"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

// Style enthält die Darstellungsoptionen einer Tabelle. Zeilenpositionen sind
// 1-basiert und beziehen sich auf die Body-Zeilen.
type Style struct {
	VerticalHeader    bool  `json:"vertical_header"`
	HighlightedRows   []int `json:"highlighted_rows"`
	ThickBorderedRows []int `json:"thick_bordered_rows"`
	// CutoffRow begrenzt die gerenderten Body-Zeilen; 0 heißt unbegrenzt.
	CutoffRow int `json:"cutoff_row"`
}

// Validate lehnt nicht-positive Zeilenindizes ab. Indizes jenseits der
// Tabellenlänge sind erlaubt und treffen einfach keine Zeile.
func (s Style) Validate() error {
	for _, n := range s.HighlightedRows {
		if n <= 0 {
			return fmt.Errorf("%w: highlighted row %d", ErrMalformedStyleDirective, n)
		}
	}
	for _, n := range s.ThickBorderedRows {
		if n <= 0 {
			return fmt.Errorf("%w: thick bordered row %d", ErrMalformedStyleDirective, n)
		}
	}
	if s.CutoffRow < 0 {
		return fmt.Errorf("%w: cutoff row %d", ErrMalformedStyleDirective, s.CutoffRow)
	}
	return nil
}

// StyleOverride ändert einzelne Optionen eines Styles. nil heißt "nicht
// gesetzt"; eine leere, nicht-nil Zeilenliste setzt die Liste zurück.
type StyleOverride struct {
	VerticalHeader    *bool
	HighlightedRows   []int
	ThickBorderedRows []int
	CutoffRow         *int
}

// ParseStyle baut ein StyleOverride aus textuellen Optionen, etwa aus
// Query-Parametern. Nur die übergebenen Optionen werden gesetzt.
func ParseStyle(opts map[string]string) (StyleOverride, error) {
	var o StyleOverride
	for key, raw := range opts {
		var err error
		switch key {
		case "vertical_header":
			var b bool
			b, err = strconv.ParseBool(strings.TrimSpace(raw))
			o.VerticalHeader = &b
		case "highlighted_rows":
			o.HighlightedRows, err = parseRowList(raw)
		case "thick_bordered_rows":
			o.ThickBorderedRows, err = parseRowList(raw)
		case "cutoff_row":
			var n int
			n, err = strconv.Atoi(strings.TrimSpace(raw))
			if err == nil && n <= 0 {
				err = fmt.Errorf("must be positive")
			}
			o.CutoffRow = &n
		default:
			return StyleOverride{}, fmt.Errorf("%w: unknown option %q", ErrMalformedStyleDirective, key)
		}
		if err != nil {
			return StyleOverride{}, fmt.Errorf("%w: %s=%q: %v", ErrMalformedStyleDirective, key, raw, err)
		}
	}
	return o, nil
}

func parseRowList(raw string) ([]int, error) {
	rows := []int{}
	for _, part := range strings.Split(raw, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		n, err := strconv.Atoi(part)
		if err != nil {
			return nil, err
		}
		if n <= 0 {
			return nil, fmt.Errorf("row %d must be positive", n)
		}
		rows = append(rows, n)
	}
	return rows, nil
}

// Apply übernimmt die in o gesetzten Optionen.
func (s Style) Apply(o StyleOverride) Style {
	if o.VerticalHeader != nil {
		s.VerticalHeader = *o.VerticalHeader
	}
	if o.HighlightedRows != nil {
		s.HighlightedRows = append([]int(nil), o.HighlightedRows...)
	}
	if o.ThickBorderedRows != nil {
		s.ThickBorderedRows = append([]int(nil), o.ThickBorderedRows...)
	}
	if o.CutoffRow != nil {
		s.CutoffRow = *o.CutoffRow
	}
	return s
}

// NamedTable ist ein Eintrag im Report. ID dient als HTML-id und CSS-Scope.
type NamedTable struct {
	ID    string
	Table *Table
	Style Style
}

var cssIdent = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9_-]*$`)

const (
	headerTint    = "#dbf1ff"
	stripeShade   = "#e8e8e8"
	highlightTint = "#addfff"
)

func tableStyle(id string, s Style) string {
	var sb strings.Builder
	if s.VerticalHeader {
		fmt.Fprintf(&sb, "#%s tr > td:nth-child(1) { background: %s; font-weight: bold; }\n", id, headerTint)
		fmt.Fprintf(&sb, "#%s tr > td:nth-child(2n+3) { background: %s; }\n", id, stripeShade)
	} else {
		fmt.Fprintf(&sb, "#%s thead > tr { background: %s; font-weight: bold; }\n", id, headerTint)
		fmt.Fprintf(&sb, "#%s tbody > tr:nth-child(even) { background: %s; }\n", id, stripeShade)
	}
	for _, n := range uniqueSorted(s.HighlightedRows) {
		fmt.Fprintf(&sb, "#%s tbody > tr:nth-child(%d) > td { background: %s !important; }\n", id, n, highlightTint)
	}
	for _, n := range uniqueSorted(s.ThickBorderedRows) {
		fmt.Fprintf(&sb, "#%s tbody > tr:nth-child(%d) > td { border-bottom: 3px solid #000; }\n", id, n)
	}
	return sb.String()
}

func uniqueSorted(in []int) []int {
	out := append([]int(nil), in...)
	sort.Ints(out)
	j := 0
	for i, n := range out {
		if i == 0 || n != out[j-1] {
			out[j] = n
			j++
		}
	}
	return out[:j]
}

type tableView struct {
	ID     string
	Header []string
	Body   [][]string
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <style>
    body { margin: 0; font: 16px Times, "Songti SC", serif; }
    table { border-collapse: collapse; margin: 20px; }
    table, th, td { border: 1px solid #bbb; }
    th, td { padding: 1px 5px; text-align: center; white-space: nowrap; }
{{range .Styles}}{{.}}{{end}}  </style>
</head>
<body>
{{range .Tables}}  <table id="{{.ID}}">
{{- if .Header}}
    <thead>
      <tr>
{{- range .Header}}
        <th>{{.}}</th>
{{- end}}
      </tr>
    </thead>
{{- end}}
    <tbody>
{{- range .Body}}
      <tr>
{{- range .}}
        <td>{{.}}</td>
{{- end}}
      </tr>
{{- end}}
    </tbody>
  </table>
{{end}}</body>
</html>
`))

// RenderReport erzeugt ein eigenständiges HTML-Dokument mit einem Style-Block
// und allen Tabellen in der gegebenen Reihenfolge.
func RenderReport(tables []NamedTable) (string, error) {
	var data struct {
		Styles []template.CSS
		Tables []tableView
	}
	seen := make(map[string]bool)
	for _, nt := range tables {
		if !cssIdent.MatchString(nt.ID) {
			return "", fmt.Errorf("%w: table id %q", ErrMalformedStyleDirective, nt.ID)
		}
		if seen[nt.ID] {
			return "", fmt.Errorf("%w: duplicate table id %q", ErrMalformedStyleDirective, nt.ID)
		}
		seen[nt.ID] = true
		if err := nt.Style.Validate(); err != nil {
			return "", fmt.Errorf("table %s: %w", nt.ID, err)
		}
		if nt.Table == nil {
			return "", fmt.Errorf("table %s: no data", nt.ID)
		}

		body := nt.Table.Rows
		if nt.Style.CutoffRow > 0 && len(body) > nt.Style.CutoffRow {
			body = body[:nt.Style.CutoffRow]
		}
		css := tableStyle(nt.ID, nt.Style)
		data.Styles = append(data.Styles, template.CSS(indent(css, "    ")))
		data.Tables = append(data.Tables, tableView{ID: nt.ID, Header: nt.Table.Header, Body: body})
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func indent(s, prefix string) string {
	lines := strings.SplitAfter(s, "\n")
	var sb strings.Builder
	for _, l := range lines {
		if l == "" {
			continue
		}
		sb.WriteString(prefix)
		sb.WriteString(l)
	}
	return sb.String()
}
