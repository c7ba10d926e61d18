// Package guest defines the guest domain model shared by the import,
// check-in, and export paths.
package guest

import (
	"strings"
	"time"
	"unicode"
)

// InvitedStatus records whether an invitation was sent to the guest.
type InvitedStatus string

// AttendanceStatus tracks the one-way NOT_ATTENDED -> ATTENDED transition.
type AttendanceStatus string

const (
	NotInvited InvitedStatus = "NOT_INVITED"
	Invited    InvitedStatus = "INVITED"

	NotAttended AttendanceStatus = "NOT_ATTENDED"
	Attended    AttendanceStatus = "ATTENDED"
)

// Guest is one invitee, keyed by the short code printed/encoded on their
// pass. UniqueID is immutable after creation and is the canonical payload
// for the pass barcode/QR symbol.
type Guest struct {
	Name             string           `json:"name"`
	PhoneNumber      string           `json:"phoneNumber,omitempty"`
	Remarks          string           `json:"remarks,omitempty"`
	Area             string           `json:"area,omitempty"`
	InvitedStatus    InvitedStatus    `json:"invitedStatus"`
	AttendanceStatus AttendanceStatus `json:"attendanceStatus"`
	CheckInTime      *time.Time       `json:"checkInTime,omitempty"`
	UniqueID         string           `json:"uniqueId"`
	CreatedAt        time.Time        `json:"createdAt"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// New builds a creation payload with a freshly generated code and default
// statuses. All string fields are trimmed; the name is stored title-cased
// regardless of input casing.
func New(name, phone, remarks, area string) *Guest {
	return &Guest{
		Name:             TitleCase(name),
		PhoneNumber:      strings.TrimSpace(phone),
		Remarks:          strings.TrimSpace(remarks),
		Area:             strings.TrimSpace(area),
		InvitedStatus:    NotInvited,
		AttendanceStatus: NotAttended,
		UniqueID:         NewCode(),
	}
}

// TitleCase capitalizes the first rune of each space-delimited token and
// lowercases the rest. The rule is deliberately naive: hyphenated and
// apostrophe names are not split, so "mARY-jO o'NEIL" becomes
// "Mary-jo O'neil". Interior runs of whitespace collapse to one space.
func TitleCase(name string) string {
	words := strings.Fields(name)
	for i, w := range words {
		runes := []rune(strings.ToLower(w))
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
