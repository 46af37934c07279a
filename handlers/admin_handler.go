package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/pocketbase/pocketbase/apis"
	"github.com/pocketbase/pocketbase/core"

	"gym-booking/models"
	"gym-booking/services"
)

// AdminHandler exposes the coach/admin surface: training management,
// participant lists, attendance marking and statistics. Every route
// additionally requires the is_admin flag on the auth record.
type AdminHandler struct {
	bookingService *services.BookingService
}

func NewAdminHandler(bookingService *services.BookingService) *AdminHandler {
	return &AdminHandler{bookingService: bookingService}
}

func requireAdmin(e *core.RequestEvent) error {
	if e.Auth == nil || !e.Auth.GetBool("is_admin") {
		return apis.NewForbiddenError("Admin access required", nil)
	}
	return nil
}

type createTrainingRequest struct {
	Title           string `json:"title"`
	Description     string `json:"description"`
	Type            string `json:"training_type"`
	ScheduledAt     string `json:"scheduled_at"`
	DurationMinutes int    `json:"duration_minutes"`
	MaxParticipants int    `json:"max_participants"`
	Location        string `json:"location"`
}

func (h *AdminHandler) CreateTraining(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	var req createTrainingRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}
	if req.Title == "" {
		return apis.NewBadRequestError("title is required", nil)
	}

	scheduledAt, err := time.Parse(time.RFC3339, req.ScheduledAt)
	if err != nil {
		return apis.NewBadRequestError("scheduled_at must be RFC3339", err)
	}
	if !scheduledAt.After(time.Now()) {
		return apis.NewBadRequestError("scheduled_at must be in the future", nil)
	}
	if req.DurationMinutes <= 0 {
		req.DurationMinutes = 60
	}

	training, err := h.bookingService.CreateTraining(e.Request.Context(), &models.Training{
		Title:           req.Title,
		Description:     req.Description,
		Type:            models.TrainingType(req.Type),
		ScheduledAt:     scheduledAt.UTC(),
		DurationMinutes: req.DurationMinutes,
		MaxParticipants: req.MaxParticipants,
		Location:        req.Location,
	})
	if err != nil {
		return e.InternalServerError("Failed to create training", err)
	}

	return e.JSON(http.StatusOK, training)
}

func (h *AdminHandler) CancelTraining(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	trainingID := e.Request.PathValue("id")
	if err := h.bookingService.CancelTraining(e.Request.Context(), trainingID); err != nil {
		if errors.Is(err, services.ErrTrainingNotFound) {
			return apis.NewNotFoundError("Training not found", err)
		}
		return e.InternalServerError("Failed to cancel training", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"cancelled": trainingID,
	})
}

func (h *AdminHandler) Participants(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	trainingID := e.Request.PathValue("id")
	participants, err := h.bookingService.Participants(e.Request.Context(), trainingID)
	if err != nil {
		if errors.Is(err, services.ErrTrainingNotFound) {
			return apis.NewNotFoundError("Training not found", err)
		}
		return e.InternalServerError("Failed to load participants", err)
	}

	return e.JSON(http.StatusOK, map[string]any{
		"participants": participants,
	})
}

type attendanceRequest struct {
	Attended bool `json:"attended"`
}

func (h *AdminHandler) MarkAttendance(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	bookingID := e.Request.PathValue("id")

	var req attendanceRequest
	if err := e.BindBody(&req); err != nil {
		return apis.NewBadRequestError("Invalid request body", err)
	}

	booking, err := h.bookingService.MarkAttendance(e.Request.Context(), bookingID, req.Attended)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrBookingNotFound):
			return apis.NewNotFoundError("Booking not found", err)
		case errors.Is(err, services.ErrInvalidTransition):
			return apis.NewBadRequestError("Attendance can only be marked on confirmed bookings", err)
		default:
			return e.InternalServerError("Failed to mark attendance", err)
		}
	}

	return e.JSON(http.StatusOK, booking)
}

func (h *AdminHandler) Stats(e *core.RequestEvent) error {
	if err := requireAdmin(e); err != nil {
		return err
	}

	stats, err := h.bookingService.Statistics(e.Request.Context())
	if err != nil {
		return e.InternalServerError("Failed to load statistics", err)
	}
	return e.JSON(http.StatusOK, stats)
}
