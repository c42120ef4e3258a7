package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/mdmlite/mdm-core/internal/device"
)

// createDeviceRequest is the payload for POST /devices.
type createDeviceRequest struct {
	Name   string        `json:"device_name"`
	Type   device.Type   `json:"device_type"`
	Status device.Status `json:"status"`
}

// updateDeviceRequest is the payload for PUT /devices/{id}.
// Absent fields keep their current values.
type updateDeviceRequest struct {
	Name   *string        `json:"device_name"`
	Type   *device.Type   `json:"device_type"`
	Status *device.Status `json:"status"`
}

// commandRequest is the payload for POST /devices/{id}/command.
type commandRequest struct {
	Command string `json:"command"`
}

// parseDeviceID extracts and parses the {id} route parameter.
func parseDeviceID(r *http.Request) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
}

// isValidationError reports whether err is a domain validation failure
// rather than a system fault.
func isValidationError(err error) bool {
	return errors.Is(err, device.ErrInvalidName) ||
		errors.Is(err, device.ErrInvalidDeviceType) ||
		errors.Is(err, device.ErrInvalidStatus)
}

// handleListDevices returns all devices, with optional query filters.
//
// Query parameters:
//   - device_type: filter by type (android, windows)
//   - status: filter by status (active, inactive, offline)
//
// Filters combine conjunctively and match case-insensitively. Unknown filter
// values simply match nothing.
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	filter := device.Filter{
		Type:   r.URL.Query().Get("device_type"),
		Status: r.URL.Query().Get("status"),
	}

	devices, err := s.manager.ListDevices(r.Context(), filter)
	if err != nil {
		s.logger.Error("failed to list devices", "error", err)
		writeInternalError(w, "failed to list devices")
		return
	}

	if devices == nil {
		devices = []device.Device{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"devices": devices})
}

// handleGetDevice returns a single device by ID.
// A missing device is not an error: the response is 200 with an empty array,
// which clients treat as "no such device".
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	id, err := parseDeviceID(r)
	if err != nil {
		writeBadRequest(w, "invalid device id")
		return
	}

	dev, err := s.manager.FindDevice(r.Context(), id)
	if err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeJSON(w, http.StatusOK, []any{})
			return
		}
		s.logger.Error("failed to get device", "id", id, "error", err)
		writeInternalError(w, "failed to get device")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"device": dev})
}

// handleCreateDevice registers a new device.
// Responds 201 with no body on success. Malformed JSON is a 400; payloads
// that parse but fail validation are a 422.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request) {
	var req createDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	dev := device.Device{
		Name:   req.Name,
		Type:   req.Type,
		Status: req.Status,
	}
	if err := s.manager.AddDevice(r.Context(), &dev); err != nil {
		if isValidationError(err) {
			writeValidationError(w, err.Error())
			return
		}
		s.logger.Error("failed to create device", "name", req.Name, "error", err)
		writeInternalError(w, "failed to create device")
		return
	}

	writeJSON(w, http.StatusCreated, nil)
}

// handleUpdateDevice partially updates a device.
// Updating a device that does not exist is a 400, matching the established
// client contract.
func (s *Server) handleUpdateDevice(w http.ResponseWriter, r *http.Request) {
	id, err := parseDeviceID(r)
	if err != nil {
		writeBadRequest(w, "invalid device id")
		return
	}

	var req updateDeviceRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	if _, err := s.manager.UpdateDevice(r.Context(), id, device.Update{
		Name:   req.Name,
		Type:   req.Type,
		Status: req.Status,
	}); err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			writeBadRequest(w, "device not found")
		case isValidationError(err):
			writeValidationError(w, err.Error())
		default:
			s.logger.Error("failed to update device", "id", id, "error", err)
			writeInternalError(w, "failed to update device")
		}
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// handleDeleteDevice removes a device. Deleting an absent device is a 400.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request) {
	id, err := parseDeviceID(r)
	if err != nil {
		writeBadRequest(w, "invalid device id")
		return
	}

	if err := s.manager.DeleteDevice(r.Context(), id); err != nil {
		if errors.Is(err, device.ErrDeviceNotFound) {
			writeBadRequest(w, "device not found")
			return
		}
		s.logger.Error("failed to delete device", "id", id, "error", err)
		writeInternalError(w, "failed to delete device")
		return
	}

	writeJSON(w, http.StatusOK, nil)
}

// handleDeviceCommand dispatches a command to a device. The response is
// held until the command completes, so a reboot blocks the caller for the
// configured reboot delay.
func (s *Server) handleDeviceCommand(w http.ResponseWriter, r *http.Request) {
	id, err := parseDeviceID(r)
	if err != nil {
		writeBadRequest(w, "invalid device id")
		return
	}

	var req commandRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBadRequest(w, "invalid JSON body")
		return
	}

	// Correlation ID ties the dispatch and completion log lines together.
	commandID := uuid.NewString()
	s.logger.Info("dispatching device command",
		"command_id", commandID,
		"device_id", id,
		"command", req.Command,
	)

	if err := s.manager.SendCommand(r.Context(), id, req.Command); err != nil {
		switch {
		case errors.Is(err, device.ErrDeviceNotFound):
			writeBadRequest(w, "device not found")
		case errors.Is(err, device.ErrInvalidCommand):
			writeBadRequest(w, "unsupported command")
		default:
			s.logger.Error("device command failed",
				"command_id", commandID,
				"device_id", id,
				"error", err,
			)
			writeInternalError(w, "command failed")
		}
		return
	}

	s.logger.Info("device command completed", "command_id", commandID, "device_id", id)
	writeJSON(w, http.StatusOK, nil)
}
