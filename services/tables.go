package services

import (
	"bytes"
	"encoding/csv"
	"fmt"
)

// Table ist ein rechteckiges Raster aus optionaler Kopfzeile und Body-Zeilen.
type Table struct {
	Header []string
	Rows   [][]string
}

// AssembleComparison baut eine vertikale Vergleichstabelle: eine Zeile pro
// Label, eine Spalte pro Record. Die Label-Reihenfolge des ersten Records gilt.
func AssembleComparison(records []*Record) (*Table, error) {
	if len(records) == 0 {
		return nil, fmt.Errorf("%w: no records to compare", ErrSchemaMismatch)
	}
	keys := records[0].Keys()
	for i, rec := range records[1:] {
		if err := sameSchema(keys, rec); err != nil {
			return nil, fmt.Errorf("record %d: %w", i+2, err)
		}
	}

	table := &Table{Rows: make([][]string, 0, len(keys))}
	for _, key := range keys {
		row := make([]string, 0, len(records)+1)
		row = append(row, key)
		for _, rec := range records {
			v, _ := rec.Get(key)
			row = append(row, v)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

// AssembleRanked baut eine horizontale Ranglistentabelle: Kopfzeile aus den
// Labels des ersten Eintrags, dann eine Zeile pro Eintrag.
func AssembleRanked(section *Section) (*Table, error) {
	if section == nil || len(section.Entries) == 0 {
		return nil, fmt.Errorf("%w: empty ranking", ErrSchemaMismatch)
	}
	keys := section.Entries[0].Keys()
	table := &Table{Header: keys}
	for i, entry := range section.Entries {
		if err := sameSchema(keys, entry); err != nil {
			return nil, fmt.Errorf("entry %d: %w", i+1, err)
		}
		row := make([]string, len(keys))
		for j, key := range keys {
			row[j], _ = entry.Get(key)
		}
		table.Rows = append(table.Rows, row)
	}
	return table, nil
}

func sameSchema(keys []string, rec *Record) error {
	for _, key := range keys {
		if _, ok := rec.Get(key); !ok {
			return fmt.Errorf("%w: missing field %q", ErrSchemaMismatch, key)
		}
	}
	if rec.Len() != len(keys) {
		return fmt.Errorf("%w: %d fields, expected %d", ErrSchemaMismatch, rec.Len(), len(keys))
	}
	return nil
}

// EncodeCSV serialisiert die Tabelle als UTF-8-CSV, Kopfzeile zuerst.
func (t *Table) EncodeCSV() ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if t.Header != nil {
		if err := w.Write(t.Header); err != nil {
			return nil, err
		}
	}
	if err := w.WriteAll(t.Rows); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DecodeCSV liest eine gespeicherte Tabelle. Mit header wird die erste Zeile
// als Kopfzeile interpretiert.
func DecodeCSV(data []byte, header bool) (*Table, error) {
	r := csv.NewReader(bytes.NewReader(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))))
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: csv: %v", ErrParse, err)
	}
	table := &Table{Rows: rows}
	if header && len(rows) > 0 {
		table.Header = rows[0]
		table.Rows = rows[1:]
	}
	return table, nil
}

// RowIndex liefert die 1-basierte Position der ersten Body-Zeile, deren Spalte
// column den Wert value hat, oder 0.
func (t *Table) RowIndex(column, value string) int {
	col := -1
	for i, h := range t.Header {
		if h == column {
			col = i
			break
		}
	}
	if col < 0 {
		return 0
	}
	for i, row := range t.Rows {
		if col < len(row) && row[col] == value {
			return i + 1
		}
	}
	return 0
}
