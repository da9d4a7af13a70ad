package handlers

import (
	"errors"
	"net/http"

	"github.com/Madiyar04/fantasy-league/middleware"
	"github.com/Madiyar04/fantasy-league/services"
)

type RosterHandler struct {
	rosterService services.RosterService
}

func NewRosterHandler(rosterService services.RosterService) *RosterHandler {
	return &RosterHandler{rosterService: rosterService}
}

// GetRoster отдает состав команды: оба списка фиксированной длины,
// свободные позиции представлены как null.
func (h *RosterHandler) GetRoster(w http.ResponseWriter, r *http.Request) {
	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	driverSlots, constructorSlots, err := h.rosterService.GetRoster(r.Context(), teamID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	response := jsonResponse{
		"driver_slots":      driverSlots,
		"constructor_slots": constructorSlots,
	}
	if err := writeJSON(w, http.StatusOK, response, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) AssignDriver(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		DriverID     int  `json:"driver_id"`
		SlotPosition *int `json:"slot_position"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.DriverID <= 0 || input.SlotPosition == nil {
		badRequestResponse(w, r, errors.New("driver_id and slot_position are required"))
		return
	}

	slot, err := h.rosterService.AssignDriver(r.Context(), teamID, input.DriverID, *input.SlotPosition, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"slot": slot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

// RemoveDriver идемпотентен: освобождение уже пустой позиции отвечает 204.
func (h *RosterHandler) RemoveDriver(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slotPosition, err := getIDFromURLAllowZero(r, "slotPosition")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rosterService.RemoveDriver(r.Context(), teamID, slotPosition, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *RosterHandler) AssignConstructor(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	var input struct {
		ConstructorID int  `json:"constructor_id"`
		SlotPosition  *int `json:"slot_position"`
	}
	if err := readJSON(w, r, &input); err != nil {
		badRequestResponse(w, r, err)
		return
	}
	if input.ConstructorID <= 0 || input.SlotPosition == nil {
		badRequestResponse(w, r, errors.New("constructor_id and slot_position are required"))
		return
	}

	slot, err := h.rosterService.AssignConstructor(r.Context(), teamID, input.ConstructorID, *input.SlotPosition, currentUserID)
	if err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	if err := writeJSON(w, http.StatusCreated, jsonResponse{"slot": slot}, nil); err != nil {
		serverErrorResponse(w, r, err)
	}
}

func (h *RosterHandler) RemoveConstructor(w http.ResponseWriter, r *http.Request) {
	currentUserID, err := middleware.GetUserIDFromContext(r.Context())
	if err != nil {
		unauthorizedResponse(w, r, "invalid authentication token")
		return
	}

	teamID, err := getIDFromURL(r, "teamID")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	slotPosition, err := getIDFromURLAllowZero(r, "slotPosition")
	if err != nil {
		badRequestResponse(w, r, err)
		return
	}

	if err := h.rosterService.RemoveConstructor(r.Context(), teamID, slotPosition, currentUserID); err != nil {
		mapServiceErrorToHTTP(w, r, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
