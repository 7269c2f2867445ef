package audit

import (
	"bytes"
	"encoding/csv"
	"strconv"
	"time"
)

// WriteCSV renders records as CSV for download.
func WriteCSV(rows []Record) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	header := []string{"occurred_at", "actor", "action", "resource_type", "resource_id", "resource_name", "outcome", "description", "old_value", "new_value", "ip", "ip_scope", "device"}
	if err := w.Write(header); err != nil {
		return nil, err
	}
	for _, rec := range rows {
		row := []string{
			rec.OccurredAt.Format(time.RFC3339),
			actorLabel(rec),
			rec.Action,
			rec.ResourceType,
			rec.ResourceID,
			rec.ResourceName,
			rec.Outcome,
			rec.Description,
			rec.OldValue,
			rec.NewValue,
			rec.IP,
			ClassifyIP(rec.IP).Scope,
			rec.Device,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func actorLabel(rec Record) string {
	if rec.ActorEmail != "" {
		return rec.ActorEmail
	}
	if rec.ActorID != 0 {
		return strconv.FormatInt(rec.ActorID, 10)
	}
	return "system"
}
