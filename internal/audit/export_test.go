package audit

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	rows := []Record{
		{
			ActorEmail:   "admin@meridian.local",
			Action:       ActionUpdate,
			Description:  "changed user role",
			ResourceType: "user",
			ResourceID:   "42",
			ResourceName: "Dana Reyes",
			Outcome:      OutcomeSuccess,
			OldValue:     "student",
			NewValue:     "teacher",
			IP:           "192.168.1.9",
			Device:       "desktop/Chrome/Windows",
			OccurredAt:   time.Date(2026, 2, 10, 9, 30, 0, 0, time.UTC),
		},
		{
			ActorID:      15,
			Action:       ActionDelete,
			ResourceType: "user",
			ResourceID:   "77",
			Outcome:      OutcomeFailed,
			IP:           "203.0.113.4",
			OccurredAt:   time.Date(2026, 2, 10, 10, 0, 0, 0, time.UTC),
		},
		{
			Action:       ActionDelete,
			ResourceType: "session",
			Outcome:      OutcomeSuccess,
			OccurredAt:   time.Date(2026, 2, 11, 3, 45, 0, 0, time.UTC),
		},
	}

	out, err := WriteCSV(rows)
	require.NoError(t, err)

	parsed, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, parsed, 4)

	assert.Equal(t, []string{"occurred_at", "actor", "action", "resource_type", "resource_id", "resource_name", "outcome", "description", "old_value", "new_value", "ip", "ip_scope", "device"}, parsed[0])

	assert.Equal(t, "2026-02-10T09:30:00Z", parsed[1][0])
	assert.Equal(t, "admin@meridian.local", parsed[1][1], "email wins when present")
	assert.Equal(t, "private", parsed[1][11])

	assert.Equal(t, "15", parsed[2][1], "actor id when email is missing")
	assert.Equal(t, "public", parsed[2][11])

	assert.Equal(t, "system", parsed[3][1], "system label for actorless rows")
	assert.Equal(t, "invalid", parsed[3][11])
}

func TestWriteCSVEmpty(t *testing.T) {
	out, err := WriteCSV(nil)
	require.NoError(t, err)

	parsed, err := csv.NewReader(bytes.NewReader(out)).ReadAll()
	require.NoError(t, err)
	assert.Len(t, parsed, 1, "header only")
}
