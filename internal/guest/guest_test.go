package guest

import (
	"strings"
	"testing"
)

func TestTitleCase(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "lowercase tokens",
			input: "john doe",
			want:  "John Doe",
		},
		{
			name:  "all caps",
			input: "JOHN DOE",
			want:  "John Doe",
		},
		{
			name:  "mixed casing with hyphen and apostrophe",
			input: "mARY-jO o'NEIL",
			want:  "Mary-jo O'neil",
		},
		{
			name:  "single token",
			input: "madonna",
			want:  "Madonna",
		},
		{
			name:  "interior whitespace collapses",
			input: "  anna   lee  ",
			want:  "Anna Lee",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "whitespace only",
			input: "   ",
			want:  "",
		},
		{
			name:  "unicode initial",
			input: "élodie dupont",
			want:  "Élodie Dupont",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := TitleCase(tt.input); got != tt.want {
				t.Errorf("TitleCase(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNew_Defaults(t *testing.T) {
	g := New("john doe", " 123 ", "", "VIP")

	if g.Name != "John Doe" {
		t.Errorf("Name = %q, want %q", g.Name, "John Doe")
	}
	if g.PhoneNumber != "123" {
		t.Errorf("PhoneNumber = %q, want %q", g.PhoneNumber, "123")
	}
	if g.Remarks != "" {
		t.Errorf("Remarks = %q, want empty", g.Remarks)
	}
	if g.Area != "VIP" {
		t.Errorf("Area = %q, want %q", g.Area, "VIP")
	}
	if g.InvitedStatus != NotInvited {
		t.Errorf("InvitedStatus = %q, want %q", g.InvitedStatus, NotInvited)
	}
	if g.AttendanceStatus != NotAttended {
		t.Errorf("AttendanceStatus = %q, want %q", g.AttendanceStatus, NotAttended)
	}
	if g.CheckInTime != nil {
		t.Errorf("CheckInTime = %v, want nil", g.CheckInTime)
	}
	if len(g.UniqueID) != CodeLength {
		t.Errorf("UniqueID = %q, want %d chars", g.UniqueID, CodeLength)
	}
}

func TestNew_FreshCodes(t *testing.T) {
	a := New("a", "", "", "")
	b := New("b", "", "", "")
	if a.UniqueID == b.UniqueID {
		t.Errorf("two payloads share code %q", a.UniqueID)
	}
	if strings.ToUpper(a.UniqueID) != a.UniqueID {
		t.Errorf("UniqueID %q is not uppercase", a.UniqueID)
	}
}
