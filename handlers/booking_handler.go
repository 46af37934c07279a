package handlers

import (
	"errors"
	"net/http"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"gym-booking/services"
)

type BookingHandler struct {
	bookingService *services.BookingService
}

func NewBookingHandler(bookingService *services.BookingService) *BookingHandler {
	return &BookingHandler{bookingService: bookingService}
}

type bookRequest struct {
	TrainingID string `json:"training_id"`
}

// Book claims a spot on a training for the authenticated member.
func (h *BookingHandler) Book(e *core.RequestEvent) error {
	var req bookRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.TrainingID == "" {
		return apis.NewBadRequestError("training_id is required", nil)
	}

	booking, err := h.bookingService.Book(e.Request.Context(), e.Auth.Id, req.TrainingID)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTrainingNotFound):
			return apis.NewNotFoundError("Training not found", err)
		case errors.Is(err, services.ErrTrainingFull),
			errors.Is(err, services.ErrAlreadyBooked):
			return apis.NewApiError(http.StatusConflict, err.Error(), nil)
		case errors.Is(err, services.ErrTrainingCancelled):
			return apis.NewBadRequestError(err.Error(), nil)
		default:
			return e.InternalServerError("Failed to create booking", err)
		}
	}

	return e.JSON(http.StatusOK, booking)
}

// Cancel releases the caller's booking. Admins may cancel any booking.
func (h *BookingHandler) Cancel(e *core.RequestEvent) error {
	bookingID := e.Request.PathValue("id")

	booking, err := h.bookingService.Booking(e.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, services.ErrBookingNotFound) {
			return apis.NewNotFoundError("Booking not found", err)
		}
		return e.InternalServerError("Failed to load booking", err)
	}
	if booking.MemberID != e.Auth.Id && !e.Auth.GetBool("is_admin") {
		return apis.NewForbiddenError("You can only cancel your own bookings", nil)
	}

	booking, err = h.bookingService.Cancel(e.Request.Context(), bookingID)
	if err != nil {
		if errors.Is(err, services.ErrInvalidTransition) {
			return apis.NewBadRequestError("Booking can no longer be cancelled", err)
		}
		return e.InternalServerError("Failed to cancel booking", err)
	}

	return e.JSON(http.StatusOK, booking)
}

// MyBookings lists the caller's confirmed bookings on upcoming trainings.
func (h *BookingHandler) MyBookings(e *core.RequestEvent) error {
	entries, bookings, err := h.bookingService.MemberSchedule(e.Request.Context(), e.Auth.Id)
	if err != nil {
		return e.InternalServerError("Failed to load bookings", err)
	}

	items := make([]map[string]any, 0, len(bookings))
	for i, booking := range bookings {
		items = append(items, map[string]any{
			"booking":  booking,
			"training": entries[i],
		})
	}
	return e.JSON(http.StatusOK, map[string]any{
		"bookings": items,
	})
}
