// Package checkin implements the attendance state machine: a guest moves
// from NOT_ATTENDED to ATTENDED exactly once, no matter how many
// terminals submit the same code, concurrently or repeatedly.
package checkin

import (
	"context"

	"github.com/doorlist/doorlist/internal/guest"
	"github.com/doorlist/doorlist/internal/logging"
)

// Store is the durable guest collection the state machine runs against.
//
// CheckIn must evaluate the transition predicate atomically at the store
// (a conditional update keyed by code), not as a read followed by a
// write, because multiple independent processes may share one store
// instance. fresh reports whether this call performed the transition.
type Store interface {
	CheckIn(ctx context.Context, code string) (g *guest.Guest, fresh bool, err error)
}

// Result is the outcome of one scan.
//
// Fresh=false with a non-nil Guest means the guest was already checked
// in. Callers surface that as a distinct "duplicate" state carrying the
// original check-in time, not as a failure.
type Result struct {
	Fresh bool
	Guest *guest.Guest
}

// Service resolves scanned codes and applies the attendance transition.
type Service struct {
	store Store
}

// NewService wraps a guest store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// CheckIn resolves rawCode to a guest and transitions them to ATTENDED.
// The code is uppercased and trimmed first, so camera, image, and
// keyboard-wedge scanners all resolve to the same guest regardless of
// casing or stray whitespace.
//
// Errors: guest.ErrMissingID for an empty code, guest.ErrNotFound for an
// unknown one. Anything else is a store fault.
func (s *Service) CheckIn(ctx context.Context, rawCode string) (Result, error) {
	code := guest.NormalizeCode(rawCode)
	if code == "" {
		return Result{}, guest.ErrMissingID
	}

	logger := logging.WithFields(ctx, "code", code)
	logger.Debug("check-in attempt")

	g, fresh, err := s.store.CheckIn(ctx, code)
	if err != nil {
		return Result{}, err
	}

	if fresh {
		logger.Info("check-in", "guest", g.Name)
	} else {
		logger.Info("duplicate check-in", "guest", g.Name, "first_seen", g.CheckInTime)
	}
	return Result{Fresh: fresh, Guest: g}, nil
}
