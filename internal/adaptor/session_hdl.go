package adaptor

import (
	"encoding/json"
	"net/http"
	"strings"

	"cinema-ticketing/internal/dto/request"
	"cinema-ticketing/internal/usecase"
	"cinema-ticketing/pkg/utils"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type SessionHandler struct {
	service usecase.SessionService
	log     *zap.Logger
}

func NewSessionHandler(service usecase.SessionService, log *zap.Logger) *SessionHandler {
	return &SessionHandler{
		service: service,
		log:     log.With(zap.String("handler", "session")),
	}
}

// GetSessions handles GET /api/sessions
func (h *SessionHandler) GetSessions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	req := &request.PaginatedRequest{
		Page:    utils.ParseInt(query.Get("page"), utils.DefaultPage),
		PerPage: utils.ParseInt(query.Get("per_page"), utils.DefaultPerPage),
	}

	sessions, err := h.service.GetSessions(r.Context(), req)
	if err != nil {
		h.handleServiceError(w, err, "get sessions")
		return
	}

	utils.ResponseSuccess(w, "success", sessions)
}

// GetSessionByID handles GET /api/sessions/{id}
func (h *SessionHandler) GetSessionByID(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	session, err := h.service.GetSessionByID(r.Context(), sessionID)
	if err != nil {
		h.handleServiceError(w, err, "get session by ID")
		return
	}

	utils.ResponseSuccess(w, "Session retrieved successfully", session)
}

// GetAvailability handles GET /api/sessions/{id}/availability
func (h *SessionHandler) GetAvailability(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	avail, err := h.service.GetAvailability(r.Context(), sessionID)
	if err != nil {
		if writeBookingError(w, h.log, err, "get availability") {
			return
		}
		h.handleServiceError(w, err, "get availability")
		return
	}

	utils.ResponseSuccess(w, "success", avail)
}

// CreateSession handles POST /api/sessions (admin, cashier)
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req request.SessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	session, err := h.service.CreateSession(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create session")
		return
	}

	utils.ResponseCreated(w, "Session created successfully", session)
}

// UpdateSession handles PUT /api/sessions/{id} (admin, cashier)
func (h *SessionHandler) UpdateSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	var req request.SessionUpdateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	session, err := h.service.UpdateSession(r.Context(), sessionID, &req)
	if err != nil {
		h.handleServiceError(w, err, "update session")
		return
	}

	utils.ResponseSuccess(w, "Session updated successfully", session)
}

// DeleteSession handles DELETE /api/sessions/{id} (admin, cashier)
func (h *SessionHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "id")
	if sessionID == "" {
		utils.ResponseBadRequest(w, "Session ID is required", nil)
		return
	}

	if err := h.service.DeleteSession(r.Context(), sessionID); err != nil {
		h.handleServiceError(w, err, "delete session")
		return
	}

	utils.ResponseSuccess(w, "Session deleted successfully", nil)
}

func (h *SessionHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found",
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "validation failed"),
		strings.Contains(errMsg, "invalid"):
		h.log.Warn("Invalid input for "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation,
			zap.Error(err),
			zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
