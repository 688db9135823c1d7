package attendance

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestWriteWorkbook(t *testing.T) {
	p := DefaultPolicy()
	in := time.Date(2024, 6, 3, 3, 40, 0, 0, time.UTC) // 09:10 IST
	out := time.Date(2024, 6, 3, 12, 30, 0, 0, time.UTC)
	rows := []ExportRow{
		{
			Record:     Record{Date: "2024-06-03", ClockIn: in, ClockOut: &out, Status: StatusPresent, IPAddress: "10.0.0.1"},
			Name:       "Asha Rao",
			Email:      "asha@example.com",
			Department: "Platform",
		},
		{
			Record: Record{Date: "2024-06-04", ClockIn: in.AddDate(0, 0, 1), Status: StatusLate, AutoClosed: true},
			Name:   "Vikram Shah",
		},
	}

	raw, err := WriteWorkbook(rows, p.Location)
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer f.Close()

	got, err := f.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, exportHeaders, got[0])
	assert.Equal(t, []string{"2024-06-03", "Asha Rao", "asha@example.com", "Platform", "present", "09:10:00", "18:00:00", "No", "10.0.0.1"}, got[1])
	assert.Equal(t, "Yes", got[2][7])
	assert.Equal(t, "", got[2][6])
}
