package checkin

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/doorlist/doorlist/internal/guest"
	"github.com/doorlist/doorlist/internal/store"
)

func newFixture(t *testing.T, guests ...*guest.Guest) (*Service, *store.Memory) {
	t.Helper()
	m := store.NewMemory()
	if len(guests) > 0 {
		if _, _, err := m.InsertGuests(context.Background(), guests); err != nil {
			t.Fatalf("seed guests: %v", err)
		}
	}
	return NewService(m), m
}

func TestCheckIn_MissingID(t *testing.T) {
	svc, _ := newFixture(t)

	for _, raw := range []string{"", "   ", "\t\n"} {
		if _, err := svc.CheckIn(context.Background(), raw); !errors.Is(err, guest.ErrMissingID) {
			t.Errorf("CheckIn(%q) error = %v, want ErrMissingID", raw, err)
		}
	}
}

func TestCheckIn_NotFound(t *testing.T) {
	svc, _ := newFixture(t)

	if _, err := svc.CheckIn(context.Background(), "notexists"); !errors.Is(err, guest.ErrNotFound) {
		t.Errorf("CheckIn() error = %v, want ErrNotFound", err)
	}
}

func TestCheckIn_Fresh(t *testing.T) {
	g := guest.New("john doe", "", "", "")
	svc, _ := newFixture(t, g)

	before := time.Now()
	res, err := svc.CheckIn(context.Background(), g.UniqueID)
	after := time.Now()
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if !res.Fresh {
		t.Error("Fresh = false, want true")
	}
	if res.Guest.AttendanceStatus != guest.Attended {
		t.Errorf("AttendanceStatus = %q, want %q", res.Guest.AttendanceStatus, guest.Attended)
	}
	if res.Guest.CheckInTime == nil {
		t.Fatal("CheckInTime not set")
	}
	if res.Guest.CheckInTime.Before(before) || res.Guest.CheckInTime.After(after) {
		t.Errorf("CheckInTime %v outside call window [%v, %v]", res.Guest.CheckInTime, before, after)
	}
}

func TestCheckIn_DuplicateIsSuccessShaped(t *testing.T) {
	g := guest.New("john doe", "", "", "")
	svc, _ := newFixture(t, g)

	first, err := svc.CheckIn(context.Background(), g.UniqueID)
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}

	dup, err := svc.CheckIn(context.Background(), g.UniqueID)
	if err != nil {
		t.Fatalf("duplicate CheckIn() error = %v, want nil (duplicate is not an error)", err)
	}
	if dup.Fresh {
		t.Error("duplicate CheckIn() Fresh = true, want false")
	}
	if !dup.Guest.CheckInTime.Equal(*first.Guest.CheckInTime) {
		t.Errorf("CheckInTime changed on duplicate: %v -> %v", first.Guest.CheckInTime, dup.Guest.CheckInTime)
	}
}

func TestCheckIn_CaseAndWhitespaceInsensitive(t *testing.T) {
	g := guest.New("john doe", "", "", "")
	g.UniqueID = "A1B2C3D4"
	svc, _ := newFixture(t, g)

	res, err := svc.CheckIn(context.Background(), " a1b2c3d4 ")
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if !res.Fresh {
		t.Error("Fresh = false, want true")
	}

	dup, err := svc.CheckIn(context.Background(), "A1B2C3D4")
	if err != nil {
		t.Fatalf("CheckIn() error = %v", err)
	}
	if dup.Fresh {
		t.Error("variant spellings resolved to different guests")
	}
}

func TestCheckIn_ConcurrentExactlyOnce(t *testing.T) {
	g := guest.New("john doe", "", "", "")
	svc, _ := newFixture(t, g)

	const n = 20
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		freshes int
	)
	start := make(chan struct{})
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			res, err := svc.CheckIn(context.Background(), g.UniqueID)
			if err != nil {
				t.Errorf("CheckIn() error = %v", err)
				return
			}
			if res.Fresh {
				mu.Lock()
				freshes++
				mu.Unlock()
			}
		}()
	}
	close(start)
	wg.Wait()

	if freshes != 1 {
		t.Errorf("fresh successes = %d, want exactly 1", freshes)
	}
}
