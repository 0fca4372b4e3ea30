package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/nerrad567/radioloan-core/internal/device"
)

// createDeviceRequest is the body of POST /devices.
type createDeviceRequest struct {
	ID       string  `json:"id"`
	CallSign string  `json:"call_sign"`
	Status   string  `json:"status"`
	Notes    *string `json:"notes"`
}

// setStatusRequest is the body of PUT /devices/{id}/status.
type setStatusRequest struct {
	Status string `json:"status"`
}

// handleListDevices returns all devices.
//
// Query parameters:
//   - status: filter by status (AVAILABLE, ON_LOAN, DEFECT, MAINTENANCE)
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var (
		devices []device.Device
		err     error
	)
	if statusStr := r.URL.Query().Get("status"); statusStr != "" {
		status, parseErr := device.ParseStatus(statusStr)
		if parseErr != nil {
			writeValidationError(w, parseErr.Error())
			return
		}
		devices, err = s.devices.ListByStatus(ctx, status)
	} else {
		devices, err = s.devices.List(ctx)
	}
	if err != nil {
		s.logger.Error("listing devices failed", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	if devices == nil {
		devices = []device.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices, "count": len(devices)})
}

// handleGetDevice returns a single device by ID.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	dev, err := s.devices.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeNotFound(w, "device not found")
			return
		}
		s.logger.Error("getting device failed", "device_id", id, "error", err)
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, dev)
}

// handleCreateDevice adds a device to the catalogue.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev := &device.Device{
		ID:       req.ID,
		CallSign: req.CallSign,
		Notes:    req.Notes,
	}
	if req.Status != "" {
		status, err := device.ParseStatus(req.Status)
		if err != nil {
			writeValidationError(w, err.Error())
			return
		}
		dev.Status = status
	}
	if dev.Status == device.StatusOnLoan {
		writeValidationError(w, device.ErrStatusReserved.Error())
		return
	}

	if err := s.devices.Create(r.Context(), dev); err != nil {
		switch {
		case isValidationError(err):
			writeValidationError(w, err.Error())
		case errors.Is(err, device.ErrDeviceExists):
			writeConflict(w, "device already exists")
		default:
			s.logger.Error("creating device failed", "error", err)
			writeInternalError(w, "failed to create device")
		}
		return
	}

	writeJSON(w, http.StatusCreated, dev)
}

// handleSetDeviceStatus overrides the status of a device that is not on loan.
func (s *Server) handleSetDeviceStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	var req setStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	status, err := device.ParseStatus(req.Status)
	if err != nil {
		writeValidationError(w, err.Error())
		return
	}

	dev, err := s.devices.SetStatus(r.Context(), id, status)
	if err != nil {
		switch {
		case isValidationError(err):
			writeValidationError(w, err.Error())
		case errors.Is(err, device.ErrDeviceNotFound):
			writeNotFound(w, "device not found")
		case errors.Is(err, device.ErrDeviceOnLoan):
			writeConflict(w, "device is on loan")
		default:
			s.logger.Error("setting device status failed", "device_id", id, "error", err)
			writeInternalError(w, "failed to set device status")
		}
		return
	}

	writeJSON(w, http.StatusOK, dev)
}
