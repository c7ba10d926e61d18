package web

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/doorlist/doorlist/internal/export"
	"github.com/doorlist/doorlist/internal/guest"
	"github.com/doorlist/doorlist/internal/importer"
)

type checkInRequest struct {
	UniqueID string `json:"uniqueId"`
}

type checkInResponse struct {
	Success bool         `json:"success"`
	Message string       `json:"message,omitempty"`
	Error   string       `json:"error,omitempty"`
	Guest   *guest.Guest `json:"guest"`
}

// handleCheckIn applies the attendance transition for a scanned code.
//
// A duplicate scan is answered with 200 and success=false so the scanner
// UI can render its distinct "already checked in" state instead of a
// generic failure.
func (s *Server) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	var req checkInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing ID"})
		return
	}

	res, err := s.checkin.CheckIn(r.Context(), req.UniqueID)
	switch {
	case errors.Is(err, guest.ErrMissingID):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing ID"})
	case errors.Is(err, guest.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Guest not found"})
	case err != nil:
		s.systemError(w, r, "Server error", err)
	case !res.Fresh:
		writeJSON(w, http.StatusOK, checkInResponse{
			Success: false,
			Error:   "Already Checked In",
			Guest:   res.Guest,
		})
	default:
		writeJSON(w, http.StatusOK, checkInResponse{
			Success: true,
			Message: "Check-in successful",
			Guest:   res.Guest,
		})
	}
}

type importResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Count   int    `json:"count"`
	Skipped int    `json:"skipped,omitempty"`
}

// handleImport accepts a multipart spreadsheet upload and registers its
// guests.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	maxSize := s.cfg.Import.MaxFileSize
	r.Body = http.MaxBytesReader(w, r.Body, maxSize)

	if err := r.ParseMultipartForm(maxSize); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "file too large or invalid form"})
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No file uploaded"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		s.systemError(w, r, "Failed to process file", err)
		return
	}

	res, err := s.importer.Import(r.Context(), header.Filename, data)
	switch {
	case errors.Is(err, importer.ErrNoData):
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "No valid data found in file"})
	case errors.Is(err, importer.ErrTooManyImports):
		w.Header().Set("Retry-After", "30")
		writeJSON(w, http.StatusTooManyRequests, errorBody{Error: err.Error()})
	case err != nil:
		s.systemError(w, r, "Failed to process file", err)
	default:
		writeJSON(w, http.StatusOK, importResponse{
			Success: true,
			Message: fmt.Sprintf("Successfully imported %d guests.", res.Imported),
			Count:   res.Imported,
			Skipped: res.Skipped,
		})
	}
}

type guestListResponse struct {
	Guests []*guest.Guest `json:"guests"`
	Total  int            `json:"total"`
}

func (s *Server) handleListGuests(w http.ResponseWriter, r *http.Request) {
	guests, err := s.guests.ListGuests(r.Context())
	if err != nil {
		s.systemError(w, r, "Server error", err)
		return
	}
	if guests == nil {
		guests = []*guest.Guest{}
	}
	writeJSON(w, http.StatusOK, guestListResponse{Guests: guests, Total: len(guests)})
}

// handleGetGuest resolves one code to its guest record. The pass
// renderer uses this to fetch the canonical uniqueId payload it encodes
// into the barcode/QR symbol.
func (s *Server) handleGetGuest(w http.ResponseWriter, r *http.Request) {
	code := guest.NormalizeCode(chi.URLParam(r, "uniqueId"))
	if code == "" {
		writeJSON(w, http.StatusBadRequest, errorBody{Error: "Missing ID"})
		return
	}

	g, err := s.guests.FindByCode(r.Context(), code)
	switch {
	case errors.Is(err, guest.ErrNotFound):
		writeJSON(w, http.StatusNotFound, errorBody{Error: "Guest not found"})
	case err != nil:
		s.systemError(w, r, "Server error", err)
	default:
		writeJSON(w, http.StatusOK, map[string]*guest.Guest{"guest": g})
	}
}

func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.guests.Stats(r.Context())
	if err != nil {
		s.systemError(w, r, "Server error", err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// handleExportExcel streams the attendance workbook.
func (s *Server) handleExportExcel(w http.ResponseWriter, r *http.Request) {
	guests, err := s.guests.ListGuests(r.Context())
	if err != nil {
		s.systemError(w, r, "Export failed", err)
		return
	}

	f, err := export.BuildWorkbook(guests)
	if err != nil {
		s.systemError(w, r, "Export failed", err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", export.FileName))
	if err := f.Write(w); err != nil {
		// Headers are sent; all we can do is log.
		logFromRequest(r).Error("write workbook", "error", err)
	}
}

type healthResponse struct {
	Status        string `json:"status"`
	ActiveImports int    `json:"active_imports"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, healthResponse{
		Status:        "ok",
		ActiveImports: s.importer.ActiveImports(),
	})
}
