package export

import (
	"bytes"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/doorlist/doorlist/internal/guest"
)

func TestBuildWorkbook(t *testing.T) {
	checkIn := time.Date(2026, 8, 28, 18, 30, 0, 0, time.UTC)

	attended := guest.New("alice smith", "111", "head table", "VIP")
	attended.AttendanceStatus = guest.Attended
	attended.CheckInTime = &checkIn

	unattended := guest.New("bob jones", "", "", "")

	f, err := BuildWorkbook([]*guest.Guest{attended, unattended})
	if err != nil {
		t.Fatalf("BuildWorkbook() error = %v", err)
	}

	var buf bytes.Buffer
	if err := f.Write(&buf); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	back, err := excelize.OpenReader(&buf)
	if err != nil {
		t.Fatalf("OpenReader() error = %v", err)
	}
	defer back.Close()

	wantSheets := []string{"Analytics", "Attended", "Unattended"}
	gotSheets := back.GetSheetList()
	if len(gotSheets) != len(wantSheets) {
		t.Fatalf("sheets = %v, want %v", gotSheets, wantSheets)
	}
	for i, want := range wantSheets {
		if gotSheets[i] != want {
			t.Errorf("sheet %d = %q, want %q", i, gotSheets[i], want)
		}
	}

	stats, err := back.GetRows("Analytics")
	if err != nil {
		t.Fatalf("GetRows(Analytics) error = %v", err)
	}
	if stats[1][1] != "2" || stats[2][1] != "1" || stats[3][1] != "1" {
		t.Errorf("analytics counts = %v, want total 2 / attended 1 / unattended 1", stats[1:4])
	}
	if stats[4][1] != "50.00%" {
		t.Errorf("attendance rate = %q, want %q", stats[4][1], "50.00%")
	}

	rows, err := back.GetRows("Attended")
	if err != nil {
		t.Fatalf("GetRows(Attended) error = %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("Attended has %d rows, want 2", len(rows))
	}
	got := rows[1]
	if got[0] != "Alice Smith" || got[1] != "111" || got[2] != "VIP" {
		t.Errorf("attended row = %v", got)
	}
	if got[4] != "28/08/2026, 06:30:00 PM" {
		t.Errorf("check-in time = %q, want %q", got[4], "28/08/2026, 06:30:00 PM")
	}

	rows, err = back.GetRows("Unattended")
	if err != nil {
		t.Fatalf("GetRows(Unattended) error = %v", err)
	}
	got = rows[1]
	if got[0] != "Bob Jones" || got[1] != "-" || got[2] != "-" || got[3] != "-" {
		t.Errorf("unattended row = %v, want dashes for empty optionals", got)
	}
	if got[4] != unattended.UniqueID {
		t.Errorf("unique id = %q, want %q", got[4], unattended.UniqueID)
	}
}

func TestBuildWorkbook_Empty(t *testing.T) {
	f, err := BuildWorkbook(nil)
	if err != nil {
		t.Fatalf("BuildWorkbook() error = %v", err)
	}
	rows, err := f.GetRows("Analytics")
	if err != nil {
		t.Fatalf("GetRows() error = %v", err)
	}
	if rows[4][1] != "0.00%" {
		t.Errorf("attendance rate = %q, want %q (no division by zero)", rows[4][1], "0.00%")
	}
}
