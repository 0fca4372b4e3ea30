package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/radioloan-core/internal/loan"
)

// Input limits for loan requests.
const (
	maxDeviceIDLength     = 64
	maxBorrowerNameLength = 100
	maxReturnNoteLength   = 500
)

// createLoanRequest is the body of POST /loans.
type createLoanRequest struct {
	DeviceID     string `json:"device_id"`
	BorrowerName string `json:"borrower_name"`
}

// returnLoanRequest is the optional body of POST /loans/{id}/return.
type returnLoanRequest struct {
	ReturnNote *string `json:"return_note"`
}

// validate checks the request and trims the borrower name in place.
func (req *createLoanRequest) validate() error {
	if req.DeviceID == "" {
		return fmt.Errorf("device_id is required")
	}
	if utf8.RuneCountInString(req.DeviceID) > maxDeviceIDLength {
		return fmt.Errorf("device_id exceeds %d characters", maxDeviceIDLength)
	}

	req.BorrowerName = strings.TrimSpace(req.BorrowerName)
	if req.BorrowerName == "" {
		return fmt.Errorf("borrower_name is required")
	}
	if utf8.RuneCountInString(req.BorrowerName) > maxBorrowerNameLength {
		return fmt.Errorf("borrower_name exceeds %d characters", maxBorrowerNameLength)
	}
	return nil
}

func (req *returnLoanRequest) validate() error {
	if req.ReturnNote != nil && utf8.RuneCountInString(*req.ReturnNote) > maxReturnNoteLength {
		return fmt.Errorf("return_note exceeds %d characters", maxReturnNoteLength)
	}
	return nil
}

// handleCreateLoan borrows a device.
func (s *Server) handleCreateLoan(w http.ResponseWriter, r *http.Request) {
	var req createLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	l, err := s.loans.Create(r.Context(), req.DeviceID, req.BorrowerName)
	if err != nil {
		writeLoanError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, l)
}

// handleReturnLoan closes an active loan. The body is optional.
func (s *Server) handleReturnLoan(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req returnLoanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		writeBadRequest(w, "invalid JSON body")
		return
	}
	if err := req.validate(); err != nil {
		writeValidationError(w, err.Error())
		return
	}

	l, err := s.loans.ReturnLoan(r.Context(), id, req.ReturnNote)
	if err != nil {
		writeLoanError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, l)
}

// handleListActiveLoans returns open loans, newest first.
//
// Query parameters:
//   - take: page size (defaulted and capped by the engine)
//   - skip: number of loans to skip
func (s *Server) handleListActiveLoans(w http.ResponseWriter, r *http.Request) {
	take, err := queryInt(r, "take")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}
	skip, err := queryInt(r, "skip")
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	loans, err := s.loans.FindActive(r.Context(), take, skip)
	if err != nil {
		writeLoanError(w, err)
		return
	}

	if loans == nil {
		loans = []loan.Loan{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": loans, "count": len(loans)})
}

// queryInt parses an optional integer query parameter.
// An absent parameter yields nil.
func queryInt(r *http.Request, name string) (*int, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return nil, nil //nolint:nilnil // absent is not an error
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, fmt.Errorf("%s must be an integer", name)
	}
	return &n, nil
}
