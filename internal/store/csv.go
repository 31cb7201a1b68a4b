package store

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// ExportCSV flattens the closed-position log into a tabular file for
// offline analysis, using the same staged atomic promotion as the JSON
// stores. Annotations are carried as a single JSON column.
func (s *Store) ExportCSV(path string) error {
	closed := s.LoadClosed()

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{
		"symbol", "entry_type", "status",
		"entry_price", "entry_date", "close_price", "close_date",
		"tp1_hit", "tp2_hit", "tp1_key", "tp2_key", "sl_key",
		"annotations",
	}
	if err := w.Write(header); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	for _, p := range closed {
		annotations := ""
		if len(p.Annotations) > 0 {
			if data, err := json.Marshal(p.Annotations); err == nil {
				annotations = string(data)
			}
		}
		row := []string{
			p.Symbol,
			string(p.Direction),
			string(p.Status),
			strconv.FormatFloat(p.EntryPrice, 'f', -1, 64),
			p.EntryTime.UTC().Format(time.RFC3339),
			strconv.FormatFloat(p.ClosePrice, 'f', -1, 64),
			p.CloseTime.UTC().Format(time.RFC3339),
			strconv.FormatBool(p.TP1Hit),
			strconv.FormatBool(p.TP2Hit),
			string(p.TP1Key),
			string(p.TP2Key),
			string(p.SLKey),
			annotations,
		}
		if err := w.Write(row); err != nil {
			return fmt.Errorf("export csv: %w", err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("export csv: %w", err)
	}

	if err := WriteAtomic(path, buf.Bytes()); err != nil {
		return err
	}
	s.logger.Infof("exported %d closed positions to %s", len(closed), path)
	return nil
}
