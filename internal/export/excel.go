// Package export builds the attendance workbook offered as a download:
// an analytics summary plus attended and unattended guest sheets.
package export

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/doorlist/doorlist/internal/guest"
)

// FileName is the attachment name for the workbook download.
const FileName = "doorlist_export.xlsx"

// BuildWorkbook renders guests into a three-sheet workbook. Missing
// optional fields appear as "-" so the sheets stay scannable in print.
func BuildWorkbook(guests []*guest.Guest) (*excelize.File, error) {
	var attended, unattended []*guest.Guest
	for _, g := range guests {
		if g.AttendanceStatus == guest.Attended {
			attended = append(attended, g)
		} else {
			unattended = append(unattended, g)
		}
	}

	f := excelize.NewFile()
	if err := f.SetSheetName("Sheet1", "Analytics"); err != nil {
		return nil, err
	}

	rate := 0.0
	if len(guests) > 0 {
		rate = float64(len(attended)) / float64(len(guests)) * 100
	}
	stats := [][]interface{}{
		{"Metric", "Value"},
		{"Total Guests", len(guests)},
		{"Attended", len(attended)},
		{"Unattended", len(unattended)},
		{"Attendance Rate", fmt.Sprintf("%.2f%%", rate)},
	}
	if err := writeRows(f, "Analytics", stats); err != nil {
		return nil, err
	}

	attendedRows := [][]interface{}{
		{"Guest Name", "Contact No", "Area", "Remarks", "Check-in Time", "Unique ID"},
	}
	for _, g := range attended {
		attendedRows = append(attendedRows, []interface{}{
			g.Name, orDash(g.PhoneNumber), orDash(g.Area), orDash(g.Remarks),
			formatTime(g.CheckInTime), g.UniqueID,
		})
	}
	if err := addSheet(f, "Attended", attendedRows); err != nil {
		return nil, err
	}

	unattendedRows := [][]interface{}{
		{"Guest Name", "Contact No", "Area", "Remarks", "Unique ID"},
	}
	for _, g := range unattended {
		unattendedRows = append(unattendedRows, []interface{}{
			g.Name, orDash(g.PhoneNumber), orDash(g.Area), orDash(g.Remarks), g.UniqueID,
		})
	}
	if err := addSheet(f, "Unattended", unattendedRows); err != nil {
		return nil, err
	}

	return f, nil
}

func addSheet(f *excelize.File, name string, rows [][]interface{}) error {
	if _, err := f.NewSheet(name); err != nil {
		return err
	}
	return writeRows(f, name, rows)
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}) error {
	for i := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &rows[i]); err != nil {
			return err
		}
	}
	return nil
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("02/01/2006, 03:04:05 PM")
}
