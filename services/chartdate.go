package services

import (
	"fmt"
	"path"
	"time"
)

// chartLag: die Rangliste des Vortags steht erst gegen 10 Uhr Ortszeit fest.
const chartLag = 10 * time.Hour

const DateLayout = "20060102"

// ChartDate bestimmt das Datum der zuletzt abgeschlossenen Rangliste.
func ChartDate(now time.Time, loc *time.Location) time.Time {
	t := now.In(loc).Add(-chartLag).AddDate(0, 0, -1)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// ObjectKey ergibt den Ablage-Key eines Artefakts, z.B. "20240101/cmp.csv".
func ObjectKey(date, name string) string {
	return path.Join(date, name)
}

// ParseChartDate prüft ein Datum im Format YYYYMMDD.
func ParseChartDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid chart date %q, want YYYYMMDD", s)
	}
	return t, nil
}

// Headline ist der Nachrichtentext zum Report, z.B. "1月2日明星势力榜".
func Headline(date time.Time) string {
	return fmt.Sprintf("%d月%d日明星势力榜", int(date.Month()), date.Day())
}
