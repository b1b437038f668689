package adaptor

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"cinema-ticketing/internal/booking"
	"cinema-ticketing/internal/data/entity"
	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type TicketHandler struct {
	service usecase.TicketService
	log     *zap.Logger
}

func NewTicketHandler(service usecase.TicketService, log *zap.Logger) *TicketHandler {
	return &TicketHandler{
		service: service,
		log:     log.With(zap.String("handler", "ticket")),
	}
}

func actorFromRequest(r *http.Request) (usecase.Actor, bool) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		return usecase.Actor{}, false
	}
	role, _ := utils.GetRoleFromContext(r.Context())
	return usecase.Actor{UserID: userID, Role: entity.UserRole(role)}, true
}

// Purchase handles POST /api/tickets
func (h *TicketHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	var req request.PurchaseTicketRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	ticket, err := h.service.Purchase(r.Context(), actor, &req)
	if err != nil {
		if writeBookingError(w, h.log, err, "purchase ticket") {
			return
		}
		h.handleServiceError(w, err, "purchase ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket purchased successfully", ticket)
}

// GetMyTickets handles GET /api/tickets/my
func (h *TicketHandler) GetMyTickets(w http.ResponseWriter, r *http.Request) {
	userID, ok := utils.GetUserIDFromContext(r.Context())
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	tickets, err := h.service.GetMyTickets(r.Context(), userID)
	if err != nil {
		h.handleServiceError(w, err, "get my tickets")
		return
	}

	utils.ResponseSuccess(w, "success", tickets)
}

// GetTicket handles GET /api/tickets/{id}
func (h *TicketHandler) GetTicket(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	ticket, err := h.service.GetTicket(r.Context(), actor, chi.URLParam(r, "id"))
	if err != nil {
		h.handleServiceError(w, err, "get ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket retrieved successfully", ticket)
}

// DownloadPDF handles GET /api/tickets/{id}/pdf
func (h *TicketHandler) DownloadPDF(w http.ResponseWriter, r *http.Request) {
	actor, ok := actorFromRequest(r)
	if !ok {
		utils.ResponseUnauthorized(w, "Authentication required")
		return
	}

	ticketID := chi.URLParam(r, "id")
	pdf, err := h.service.RenderTicketPDF(r.Context(), actor, ticketID)
	if err != nil {
		h.handleServiceError(w, err, "render ticket pdf")
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"ticket-%s.pdf\"", ticketID))
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(pdf); err != nil {
		h.log.Warn("Failed to write ticket pdf", zap.Error(err))
	}
}

// DeleteTicket handles DELETE /api/admin/tickets/{id} (admin only)
func (h *TicketHandler) DeleteTicket(w http.ResponseWriter, r *http.Request) {
	ticketID := chi.URLParam(r, "id")
	if ticketID == "" {
		utils.ResponseBadRequest(w, "Ticket ID is required", nil)
		return
	}

	if err := h.service.DeleteTicket(r.Context(), ticketID); err != nil {
		h.handleServiceError(w, err, "delete ticket")
		return
	}

	utils.ResponseSuccess(w, "Ticket deleted successfully", nil)
}

// writeBookingError answers allocation rejections with their code. It
// reports false when err is not one of them.
func writeBookingError(w http.ResponseWriter, log *zap.Logger, err error, operation string) bool {
	code := booking.Code(err)
	if code == "" {
		return false
	}

	switch {
	case errors.Is(err, booking.ErrSessionNotFound):
		log.Warn(operation+" failed - session not found", zap.Error(err))
		utils.ResponseErrorCode(w, http.StatusNotFound, "Session not found", code)

	case errors.Is(err, booking.ErrHallNotFound):
		log.Error(operation+" failed - session has no hall", zap.Error(err))
		utils.ResponseErrorCode(w, http.StatusNotFound, "Hall not found", code)

	case errors.Is(err, booking.ErrSessionFull):
		log.Info(operation+" rejected - session full", zap.Error(err))
		utils.ResponseErrorCode(w, http.StatusBadRequest, "Session is sold out", code)

	case errors.Is(err, booking.ErrSeatTaken):
		log.Info(operation+" rejected - seat taken", zap.Error(err))
		utils.ResponseErrorCode(w, http.StatusBadRequest, "Seat already taken", code)

	case errors.Is(err, booking.ErrInvalidSeat):
		utils.ResponseErrorCode(w, http.StatusBadRequest, "Seat number is required", code)

	default:
		log.Error("Failed to "+operation, zap.Error(err))
		utils.ResponseErrorCode(w, http.StatusInternalServerError, "Internal server error", code)
	}
	return true
}

func (h *TicketHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case errors.Is(err, usecase.ErrTicketNotFound),
		errors.Is(err, usecase.ErrCustomerNotFound):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case errors.Is(err, usecase.ErrTicketForbidden),
		errors.Is(err, usecase.ErrSellForbidden):
		h.log.Warn(operation+" failed - forbidden", zap.Error(err))
		utils.ResponseForbidden(w, errMsg)

	case strings.Contains(errMsg, "validation failed"),
		strings.Contains(errMsg, "invalid"):
		h.log.Warn("Invalid input for "+operation, zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
