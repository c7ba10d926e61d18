// Package importer converts uploaded guest-list spreadsheets (xlsx or
// csv) into guest records and persists them in bounded batches.
package importer

import (
	"context"
	"errors"
	"time"

	"github.com/doorlist/doorlist/internal/guest"
	"github.com/doorlist/doorlist/internal/logging"
	"github.com/doorlist/doorlist/internal/store"
)

// ErrNoData is returned when no usable row exists across all sheets.
var ErrNoData = errors.New("no valid data found in file")

// DefaultBatchSize bounds memory and transaction size per insert batch.
const DefaultBatchSize = 1000

// Store is the slice of the guest store the importer needs.
type Store interface {
	InsertGuests(ctx context.Context, guests []*guest.Guest) (int, []store.FailedInsert, error)
}

// Options configures a Service.
type Options struct {
	Store         Store
	BatchSize     int
	MaxConcurrent int
	MaxWait       time.Duration
}

// Service runs bulk imports behind a concurrency limiter.
type Service struct {
	store   Store
	limiter *Limiter
	batch   int
}

// NewService builds an import service, applying defaults for zero options.
func NewService(opts Options) *Service {
	batch := opts.BatchSize
	if batch <= 0 {
		batch = DefaultBatchSize
	}
	return &Service{
		store:   opts.Store,
		limiter: NewLimiter(opts.MaxConcurrent, opts.MaxWait),
		batch:   batch,
	}
}

// Result reports one import run.
type Result struct {
	Imported int                  `json:"imported"`
	Skipped  int                  `json:"skipped"`
	Failed   []store.FailedInsert `json:"failed,omitempty"`
}

// Import parses fileData, normalizes every usable row into a guest
// payload, and persists the payloads in batches. Within a batch one
// row's failure never aborts its siblings.
//
// Import is intentionally not idempotent: re-importing the same file
// creates duplicate guests with new codes. There is no dedup by name or
// phone.
func (s *Service) Import(ctx context.Context, fileName string, fileData []byte) (Result, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return Result{}, err
	}
	defer s.limiter.Release()

	logger := logging.WithFields(ctx, "file", fileName)
	start := time.Now()

	sheets, err := ParseSheets(fileData)
	if err != nil {
		return Result{}, err
	}

	payloads := ExtractGuests(ctx, sheets)
	if len(payloads) == 0 {
		return Result{}, ErrNoData
	}

	var res Result
	for off := 0; off < len(payloads); off += s.batch {
		end := min(off+s.batch, len(payloads))
		inserted, failed, err := s.store.InsertGuests(ctx, payloads[off:end])
		res.Imported += inserted
		res.Failed = append(res.Failed, failed...)
		if err != nil {
			return res, err
		}
	}
	res.Skipped = len(res.Failed)

	logger.Info("import complete",
		"sheets", len(sheets),
		"imported", res.Imported,
		"skipped", res.Skipped,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return res, nil
}

// ActiveImports reports imports currently in flight.
func (s *Service) ActiveImports() int {
	return s.limiter.ActiveCount()
}

// WaitForImports blocks until running imports drain or ctx is done.
func (s *Service) WaitForImports(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
