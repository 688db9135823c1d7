package attendance

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"
)

const exportSheet = "Attendance"

var exportHeaders = []string{"Date", "Name", "Email", "Department", "Status", "Clock In", "Clock Out", "Auto Closed", "IP Address", "Notes"}

// WriteWorkbook lays rows out one per line under a header row. Times are
// shown in loc.
func WriteWorkbook(rows []ExportRow, loc *time.Location) ([]byte, error) {
	if loc == nil {
		loc = time.UTC
	}
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if err := f.SetSheetName("Sheet1", exportSheet); err != nil {
		return nil, err
	}

	for i, header := range exportHeaders {
		cell := fmt.Sprintf("%c1", 'A'+i)
		if err := f.SetCellValue(exportSheet, cell, header); err != nil {
			return nil, err
		}
	}

	for i, row := range rows {
		clockOut := ""
		if row.ClockOut != nil {
			clockOut = row.ClockOut.In(loc).Format("15:04:05")
		}
		autoClosed := "No"
		if row.AutoClosed {
			autoClosed = "Yes"
		}
		values := []any{
			row.Date,
			row.Name,
			row.Email,
			row.Department,
			string(row.Status),
			row.ClockIn.In(loc).Format("15:04:05"),
			clockOut,
			autoClosed,
			row.IPAddress,
			row.Notes,
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(exportSheet, cell, &values); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}
