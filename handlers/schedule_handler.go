package handlers

import (
	"net/http"

	"github.com/pocketbase/pocketbase/core"

	"gym-booking/services"
)

type ScheduleHandler struct {
	bookingService *services.BookingService
}

func NewScheduleHandler(bookingService *services.BookingService) *ScheduleHandler {
	return &ScheduleHandler{bookingService: bookingService}
}

// List serves the public upcoming schedule with remaining spots per
// training. Backed by the Redis schedule cache.
func (h *ScheduleHandler) List(e *core.RequestEvent) error {
	entries, err := h.bookingService.UpcomingSchedule(e.Request.Context())
	if err != nil {
		return e.InternalServerError("Failed to load schedule", err)
	}
	return e.JSON(http.StatusOK, map[string]any{
		"trainings": entries,
	})
}
