package services

import (
	"context"
	"fmt"

	"starchart/config"
	"starchart/storage"

	"go.uber.org/zap"
)

// Namen der gespeicherten Tabellen und des Reports.
const (
	ComparisonTableID = "cmp"
	GroupTableID      = "group"
	ReportFile        = "rendered.html"
)

// ReportLayout enthält die Standard-Styles beider Tabellen.
type ReportLayout struct {
	Comparison Style
	Group      Style
	// FocusMember wird in der Gruppenrangliste hervorgehoben, falls vorhanden.
	FocusMember string
}

// NewReportLayout baut das Standard-Layout aus der Konfiguration: die
// Vergleichstabelle vertikal, die Gruppenrangliste horizontal mit Cutoff.
func NewReportLayout(cfg config.Report) (ReportLayout, error) {
	layout := ReportLayout{
		Comparison: Style{
			VerticalHeader:    true,
			HighlightedRows:   cfg.CmpHighlightedRows,
			ThickBorderedRows: cfg.CmpThickBorderedRows,
		},
		Group:       Style{CutoffRow: cfg.GroupCutoffRow},
		FocusMember: cfg.FocusMember,
	}
	if err := layout.Comparison.Validate(); err != nil {
		return ReportLayout{}, fmt.Errorf("comparison layout: %w", err)
	}
	if err := layout.Group.Validate(); err != nil {
		return ReportLayout{}, fmt.Errorf("group layout: %w", err)
	}
	return layout, nil
}

// ReportService rendert Reports ausschließlich aus den gespeicherten CSV-Tabellen.
type ReportService struct {
	Store  storage.Store
	Layout ReportLayout
	Logger *zap.Logger
}

func NewReportService(store storage.Store, layout ReportLayout, logger *zap.Logger) *ReportService {
	return &ReportService{Store: store, Layout: layout, Logger: logger}
}

// Report ist ein gerendertes Dokument samt Kennzahlen.
type Report struct {
	HTML string
	// FocusRank ist die Position des FocusMember in der Gruppentabelle oder 0.
	FocusRank int
}

func (r *ReportService) loadTable(ctx context.Context, date, id string, header bool) (*Table, error) {
	data, err := r.Store.Get(ctx, ObjectKey(date, id+".csv"))
	if err != nil {
		return nil, fmt.Errorf("load %s table: %w", id, err)
	}
	table, err := DecodeCSV(data, header)
	if err != nil {
		return nil, fmt.Errorf("decode %s table: %w", id, err)
	}
	return table, nil
}

// Render lädt cmp.csv und group.csv eines Datums und rendert den Report.
// overrides ändert die Standard-Styles pro Tabellen-ID; die Hervorhebung des
// FocusMember kommt zu den resultierenden Zeilen hinzu.
func (r *ReportService) Render(ctx context.Context, date string, overrides map[string]StyleOverride) (*Report, error) {
	cmpStyle := r.Layout.Comparison.Apply(overrides[ComparisonTableID])
	groupStyle := r.Layout.Group.Apply(overrides[GroupTableID])

	cmp, err := r.loadTable(ctx, date, ComparisonTableID, !cmpStyle.VerticalHeader)
	if err != nil {
		return nil, err
	}
	group, err := r.loadTable(ctx, date, GroupTableID, !groupStyle.VerticalHeader)
	if err != nil {
		return nil, err
	}

	focusRank := 0
	if r.Layout.FocusMember != "" {
		focusRank = group.RowIndex(LabelMember, r.Layout.FocusMember)
	}
	if focusRank > 0 {
		groupStyle.HighlightedRows = append(append([]int(nil), groupStyle.HighlightedRows...), focusRank)
	}

	html, err := RenderReport([]NamedTable{
		{ID: ComparisonTableID, Table: cmp, Style: cmpStyle},
		{ID: GroupTableID, Table: group, Style: groupStyle},
	})
	if err != nil {
		return nil, err
	}
	return &Report{HTML: html, FocusRank: focusRank}, nil
}

// Publish rendert den Report und legt ihn als rendered.html ab.
func (r *ReportService) Publish(ctx context.Context, date string) (*Report, string, error) {
	report, err := r.Render(ctx, date, nil)
	if err != nil {
		return nil, "", err
	}
	link, err := r.Store.Put(ctx, ObjectKey(date, ReportFile), []byte(report.HTML))
	if err != nil {
		return nil, "", fmt.Errorf("store report: %w", err)
	}
	r.Logger.Info("Report gespeichert", zap.String("date", date), zap.String("link", link), zap.Int("focus_rank", report.FocusRank))
	return report, link, nil
}
