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

type HallHandler struct {
	service usecase.HallService
	log     *zap.Logger
}

func NewHallHandler(service usecase.HallService, log *zap.Logger) *HallHandler {
	return &HallHandler{
		service: service,
		log:     log.With(zap.String("handler", "hall")),
	}
}

// GetHalls handles GET /api/halls
func (h *HallHandler) GetHalls(w http.ResponseWriter, r *http.Request) {
	halls, err := h.service.GetHalls(r.Context())
	if err != nil {
		h.handleServiceError(w, err, "get halls")
		return
	}

	utils.ResponseSuccess(w, "success", halls)
}

// GetHallByID handles GET /api/halls/{id}
func (h *HallHandler) GetHallByID(w http.ResponseWriter, r *http.Request) {
	hallID := chi.URLParam(r, "id")
	if hallID == "" {
		utils.ResponseBadRequest(w, "Hall ID is required", nil)
		return
	}

	hall, err := h.service.GetHallByID(r.Context(), hallID)
	if err != nil {
		h.handleServiceError(w, err, "get hall by ID")
		return
	}

	utils.ResponseSuccess(w, "Hall retrieved successfully", hall)
}

// CreateHall handles POST /api/admin/halls (admin only)
func (h *HallHandler) CreateHall(w http.ResponseWriter, r *http.Request) {
	var req request.HallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	hall, err := h.service.CreateHall(r.Context(), &req)
	if err != nil {
		h.handleServiceError(w, err, "create hall")
		return
	}

	utils.ResponseCreated(w, "Hall created successfully", hall)
}

func (h *HallHandler) handleServiceError(w http.ResponseWriter, err error, operation string) {
	errMsg := err.Error()

	switch {
	case strings.Contains(errMsg, "not found"):
		h.log.Warn(operation+" failed - not found", zap.Error(err))
		utils.ResponseNotFound(w, errMsg)

	case strings.Contains(errMsg, "already exists"),
		strings.Contains(errMsg, "validation failed"),
		strings.Contains(errMsg, "invalid"):
		h.log.Warn(operation+" failed - bad input", zap.Error(err))
		utils.ResponseBadRequest(w, errMsg, nil)

	default:
		h.log.Error("Failed to "+operation, zap.Error(err), zap.String("operation", operation))
		utils.ResponseInternalError(w, "Internal server error")
	}
}
