package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"starchart/document"
	"starchart/models"
	"starchart/providers"
	"starchart/storage"

	"go.uber.org/zap"
)

// ChartService orchestriert einen täglichen Lauf: Abruf, Extraktion,
// Tabellen, Report und Benachrichtigung.
type ChartService struct {
	Provider providers.Provider
	Store    storage.Store
	Reports  *ReportService
	Notifier providers.Notifier // nil = keine Benachrichtigung
	Logger   *zap.Logger

	Location         *time.Location
	GroupContainerID string
	// LineCount ist die erwartete Zeilenzahl einer Einzelrangliste.
	LineCount     int
	ReportBaseURL string
}

// RunAccounts führt einen Lauf für das gegebene Roster aus. Auch im Fehlerfall
// wird ein ChartRun zurückgegeben, damit der Lauf protokolliert werden kann.
func (s *ChartService) RunAccounts(ctx context.Context, now time.Time, accounts []models.Account) (*models.ChartRun, error) {
	chartDate := ChartDate(now, s.Location)
	date := chartDate.Format(DateLayout)
	run := &models.ChartRun{ChartDate: date, Status: models.RunStatusFailed, Accounts: len(accounts)}
	log := s.Logger.With(zap.String("chart_date", date))
	log.Info("Starte Lauf.", zap.Int("accounts", len(accounts)))

	fail := func(err error) (*models.ChartRun, error) {
		run.Error = err.Error()
		log.Error("Lauf fehlgeschlagen", zap.Error(err))
		return run, err
	}

	if len(accounts) == 0 {
		return fail(fmt.Errorf("roster is empty"))
	}

	records := make([]*Record, 0, len(accounts))
	for _, account := range accounts {
		rec, err := s.individual(ctx, date, account)
		if err != nil {
			return fail(err)
		}
		records = append(records, rec)
	}
	cmp, err := AssembleComparison(records)
	if err != nil {
		return fail(fmt.Errorf("comparison table: %w", err))
	}

	section, err := s.group(ctx, date)
	if err != nil {
		return fail(err)
	}
	ranked, err := AssembleRanked(section)
	if err != nil {
		return fail(fmt.Errorf("group table: %w", err))
	}
	run.GroupEntries = len(section.Entries)

	if err := s.putTable(ctx, date, ComparisonTableID, cmp); err != nil {
		return fail(err)
	}
	if err := s.putTable(ctx, date, GroupTableID, ranked); err != nil {
		return fail(err)
	}

	report, link, err := s.Reports.Publish(ctx, date)
	if err != nil {
		return fail(err)
	}
	run.FocusRank = report.FocusRank
	run.ReportLink = link
	if s.ReportBaseURL != "" {
		run.ReportLink = strings.TrimRight(s.ReportBaseURL, "/") + "/" + ObjectKey(date, ReportFile)
	}

	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, Headline(chartDate), []string{run.ReportLink}); err != nil {
			// Der Report liegt bereits vor; nur die Nachricht fehlt.
			log.Warn("Benachrichtigung fehlgeschlagen", zap.Error(err))
		} else {
			run.Notified = true
		}
	}

	run.Status = models.RunStatusSucceeded
	log.Info("Lauf abgeschlossen",
		zap.Int("group_entries", run.GroupEntries),
		zap.Int("focus_rank", run.FocusRank),
		zap.String("report", run.ReportLink))
	return run, nil
}

func (s *ChartService) individual(ctx context.Context, date string, account models.Account) (*Record, error) {
	log := s.Logger.With(zap.String("account", account.Name))
	doc, err := s.fetch(ctx, date, account.ContainerID(), account.Name)
	if err != nil {
		return nil, err
	}
	rec, lines, err := ExtractIndividual(doc, IndividualPolicy{Name: account.Name, ExpectedLines: s.LineCount})
	if err != nil {
		log.Error("Extraktion fehlgeschlagen", zap.Int("lines", len(lines)), zap.Error(err))
		return nil, err
	}
	if _, err := s.Store.Put(ctx, ObjectKey(date, account.Name+".txt"), []byte(FormatLines(lines))); err != nil {
		return nil, fmt.Errorf("store %s.txt: %w", account.Name, err)
	}
	log.Debug("Account extrahiert", zap.Int("fields", rec.Len()))
	return rec, nil
}

func (s *ChartService) group(ctx context.Context, date string) (*Section, error) {
	doc, err := s.fetch(ctx, date, s.GroupContainerID, GroupTableID)
	if err != nil {
		return nil, err
	}
	section, blocks, err := ExtractGroup(doc)
	if err != nil {
		return nil, err
	}
	if section.Preamble.Len() > 0 {
		s.Logger.Debug("Zeilen vor dem ersten Ranglisteneintrag ignoriert", zap.Strings("labels", section.Preamble.Keys()))
	}
	if _, err := s.Store.Put(ctx, ObjectKey(date, GroupTableID+".txt"), []byte(FormatBlocks(blocks))); err != nil {
		return nil, fmt.Errorf("store group.txt: %w", err)
	}
	return section, nil
}

// fetch lädt ein Dokument, legt die Rohdaten unter <name>.json ab und parst sie.
func (s *ChartService) fetch(ctx context.Context, date, containerID, name string) (*document.Node, error) {
	raw, err := s.Provider.Fetch(ctx, containerID)
	if err != nil {
		return nil, fmt.Errorf("fetch %s (%s): %w", name, containerID, err)
	}
	if _, err := s.Store.Put(ctx, ObjectKey(date, name+".json"), raw); err != nil {
		return nil, fmt.Errorf("store %s.json: %w", name, err)
	}
	doc, err := document.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	return doc, nil
}

func (s *ChartService) putTable(ctx context.Context, date, id string, table *Table) error {
	data, err := table.EncodeCSV()
	if err != nil {
		return fmt.Errorf("encode %s table: %w", id, err)
	}
	link, err := s.Store.Put(ctx, ObjectKey(date, id+".csv"), data)
	if err != nil {
		return fmt.Errorf("store %s table: %w", id, err)
	}
	s.Logger.Info("Tabelle gespeichert", zap.String("table", id), zap.String("link", link), zap.Int("rows", len(table.Rows)))
	return nil
}
