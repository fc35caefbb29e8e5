package services

import (
	"fmt"
	"strings"

	"starchart/document"
)

// Labels der fest definierten Zeilen.
const (
	LabelMember         = "member"
	LabelStatus         = "status"
	LabelFollowers      = "followers"
	LabelFollowing      = "following"
	LabelRisingStarRank = "rising-star-rank"
	LabelRank           = "rank"
	LabelContribution   = "contribution"
)

const (
	StatusGold   = "金V"
	StatusYellow = "黄V"

	// goldVerifiedType ist der Wert von verified_type_ext für Gold-V-Accounts.
	goldVerifiedType = 1
	// detailMarker leitet "去..."-Links zur Detailseite ein, die keine Kennzahl sind.
	detailMarker = "去"
)

// DefaultIndividualLineCount ist die Zeilenzahl des Referenzschemas einer Einzelrangliste.
const DefaultIndividualLineCount = 28

// linePredicate prüft ein Objekt und gibt null oder mehr Zeilen aus.
type linePredicate func(obj *document.Node, emit func(string))

// IndividualPolicy steuert die Extraktion für einen einzelnen Account.
type IndividualPolicy struct {
	// Name wird als Teilstring in screen_name gesucht.
	Name string
	// ExpectedLines ist die erwartete Zeilenzahl inklusive der member-Zeile.
	ExpectedLines int
}

func (p IndividualPolicy) predicates() []linePredicate {
	return []linePredicate{
		p.accountStats,
		p.risingStarRank,
		itemPair(false),
		titleSub,
		descExtr,
	}
}

// accountStats: Status, Fans und Follows des Accounts selbst.
func (p IndividualPolicy) accountStats(obj *document.Node, emit func(string)) {
	screenName, ok := obj.StringAt("screen_name")
	if !ok || !strings.Contains(screenName, p.Name) {
		return
	}
	if v, ok := obj.Get("verified_type_ext"); ok {
		status := StatusYellow
		if n, isNum := v.Number(); isNum && n == goldVerifiedType {
			status = StatusGold
		}
		emit(LabelStatus + Delimiter + status)
	}
	if v, ok := obj.Get("followers_count"); ok {
		if n, isNum := v.Number(); isNum && n > 0 {
			emit(LabelFollowers + Delimiter + v.Scalar())
		}
	}
	if v, ok := obj.Get("friends_count"); ok {
		if n, isNum := v.Number(); isNum && n > 0 {
			emit(LabelFollowing + Delimiter + v.Scalar())
		}
	}
}

func (p IndividualPolicy) risingStarRank(obj *document.Node, emit func(string)) {
	if !obj.Has("rank", "user", "data") {
		return
	}
	screenName, _ := obj.StringAt("user", "screen_name")
	if !strings.Contains(screenName, p.Name) {
		return
	}
	rank, _ := obj.Get("rank")
	emit(LabelRisingStarRank + Delimiter + rank.Scalar())
}

// itemPair gibt "item_desc:item_title" aus. Mit skipDetail werden Einträge
// übersprungen, deren item_desc mit dem Detail-Link-Marker beginnt.
func itemPair(skipDetail bool) linePredicate {
	return func(obj *document.Node, emit func(string)) {
		if !obj.Has("item_desc", "item_title") {
			return
		}
		desc, _ := obj.Get("item_desc")
		title, _ := obj.Get("item_title")
		if skipDetail && strings.HasPrefix(desc.Scalar(), detailMarker) {
			return
		}
		emit(desc.Scalar() + Delimiter + title.Scalar())
	}
}

func titleSub(obj *document.Node, emit func(string)) {
	v, ok := obj.Get("title_sub")
	if !ok {
		return
	}
	if s := NormalizeOutput(v.Scalar()); s != "" {
		emit(s)
	}
}

func descExtr(obj *document.Node, emit func(string)) {
	v, ok := obj.Get("desc_extr")
	if !ok {
		return
	}
	emit(NormalizeOutput(v.Scalar()))
}

// IndividualLines läuft über das Dokument und sammelt die Zeilen eines Accounts.
// Die erste Zeile ist immer "member:<name>".
func IndividualLines(doc *document.Node, policy IndividualPolicy) []string {
	lines := []string{LabelMember + Delimiter + policy.Name}
	emit := func(line string) { lines = append(lines, line) }
	preds := policy.predicates()
	document.Walk(doc, func(obj *document.Node) {
		for _, pred := range preds {
			pred(obj, emit)
		}
	})
	return lines
}

// CheckLineCount prüft die feste Zeilenzahl des Referenzschemas.
func CheckLineCount(lines []string, expected int) error {
	if expected > 0 && len(lines) != expected {
		return fmt.Errorf("%w: extracted %d lines, expected %d", ErrSchemaMismatch, len(lines), expected)
	}
	return nil
}

// ExtractIndividual extrahiert den Record eines Accounts aus seiner Rangliste.
func ExtractIndividual(doc *document.Node, policy IndividualPolicy) (*Record, []string, error) {
	lines := IndividualLines(doc, policy)
	if err := CheckLineCount(lines, policy.ExpectedLines); err != nil {
		return nil, lines, fmt.Errorf("account %s: %w", policy.Name, err)
	}
	rec, err := ParseLines(lines)
	if err != nil {
		return nil, lines, fmt.Errorf("account %s: %w", policy.Name, err)
	}
	return rec, lines, nil
}

// GroupBlocks sammelt die Zeilen der Gruppenrangliste. Jeder Ranglisteneintrag
// (rank/user/data) beginnt einen neuen Block; blocks[0] enthält die Zeilen vor
// dem ersten Eintrag und ist meist leer.
func GroupBlocks(doc *document.Node) [][]string {
	blocks := [][]string{nil}
	emit := func(line string) {
		blocks[len(blocks)-1] = append(blocks[len(blocks)-1], line)
	}
	entry := func(obj *document.Node, emit func(string)) {
		if !obj.Has("rank", "user", "data") {
			return
		}
		rank, _ := obj.Get("rank")
		screenName, _ := obj.StringAt("user", "screen_name")
		data, _ := obj.Get("data")
		blocks = append(blocks, nil)
		emit(LabelRank + Delimiter + rank.Scalar())
		emit(LabelMember + Delimiter + NormalizeName(screenName))
		emit(LabelContribution + Delimiter + NormalizeOutput(data.Scalar()))
	}
	preds := []linePredicate{entry, itemPair(true), titleSub}
	document.Walk(doc, func(obj *document.Node) {
		for _, pred := range preds {
			pred(obj, emit)
		}
	})
	return blocks
}

// ExtractGroup extrahiert die Gruppenrangliste als Section.
func ExtractGroup(doc *document.Node) (*Section, [][]string, error) {
	blocks := GroupBlocks(doc)
	preamble, err := ParseLines(blocks[0])
	if err != nil {
		return nil, blocks, fmt.Errorf("group preamble: %w", err)
	}
	section := &Section{Preamble: preamble}
	for i, block := range blocks[1:] {
		rec, err := ParseLines(block)
		if err != nil {
			return nil, blocks, fmt.Errorf("group entry %d: %w", i+1, err)
		}
		section.Entries = append(section.Entries, rec)
	}
	return section, blocks, nil
}

// FormatBlocks gibt die Gruppenblöcke durch Leerzeilen getrennt aus.
func FormatBlocks(blocks [][]string) string {
	var sb strings.Builder
	for i, block := range blocks {
		if i > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(FormatLines(block))
	}
	return sb.String()
}
