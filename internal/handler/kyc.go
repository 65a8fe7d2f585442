// ==============================================================================
// KYC HTTP HANDLER - internal/handler/kyc.go
// ==============================================================================
// HTTP surface for driver compliance: document validation, per-driver
// progress, expiry, scheduling, assessments, and fleet-wide statistics.
// ==============================================================================

package handler

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"fleetkyc/internal/domain"
	"fleetkyc/internal/kyc"
	"fleetkyc/pkg/cache"
	"fleetkyc/pkg/errors"
	"fleetkyc/pkg/logger"
	"fleetkyc/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// DriverProfileStore is the persistence surface the handler needs.
type DriverProfileStore interface {
	CreateDriver(ctx context.Context, profile *domain.DriverProfile) error
	GetProfile(ctx context.Context, driverID uuid.UUID) (*domain.DriverProfile, error)
	ListProfiles(ctx context.Context, limit, offset int) ([]domain.DriverProfile, error)
	SaveDocument(ctx context.Context, doc *domain.DriverDocument) error
	UpdateDocumentStatus(ctx context.Context, documentID uuid.UUID, status domain.DocumentStatus, reason string) error
}

// KYCHandler handles compliance HTTP endpoints.
type KYCHandler struct {
	service   *kyc.Service
	store     DriverProfileStore
	cache     *cache.RedisCache
	cacheTTL  time.Duration
	validator *validator.Validator
	logger    logger.Logger
}

// NewKYCHandler creates a KYCHandler with its dependencies.
func NewKYCHandler(service *kyc.Service, store DriverProfileStore, redisCache *cache.RedisCache, cacheTTL time.Duration, val *validator.Validator, log logger.Logger) *KYCHandler {
	return &KYCHandler{
		service:   service,
		store:     store,
		cache:     redisCache,
		cacheTTL:  cacheTTL,
		validator: val,
		logger:    log,
	}
}

// respondJSON sends a JSON response with proper content type and status code.
func (h *KYCHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("Failed to encode JSON response", map[string]interface{}{
			"error":   err.Error(),
			"status":  status,
			"handler": "kyc",
		})
	}
}

// respondError sends a standardized error response.
func (h *KYCHandler) respondError(w http.ResponseWriter, status int, message string) {
	h.respondJSON(w, status, map[string]string{"error": message})
}

// parseAndValidateRequest parses and validates a JSON request body.
func (h *KYCHandler) parseAndValidateRequest(w http.ResponseWriter, r *http.Request, req interface{}) bool {
	r.Body = http.MaxBytesReader(w, r.Body, 2<<20)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(req); err != nil {
		if err == io.EOF {
			h.respondError(w, http.StatusBadRequest, "Request body is required")
			return false
		}
		h.logger.Warn("Invalid request body", map[string]interface{}{
			"error":    err.Error(),
			"handler":  "kyc",
			"endpoint": r.URL.Path,
		})
		h.respondError(w, http.StatusBadRequest, "Invalid request body format")
		return false
	}

	if err := h.validator.Validate(req); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return false
	}

	return true
}

func (h *KYCHandler) driverIDFromPath(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	driverID, err := uuid.Parse(mux.Vars(r)["driverID"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid driver ID")
		return uuid.Nil, false
	}
	return driverID, true
}

func (h *KYCHandler) loadProfile(w http.ResponseWriter, r *http.Request) (*domain.DriverProfile, bool) {
	driverID, ok := h.driverIDFromPath(w, r)
	if !ok {
		return nil, false
	}

	profile, err := h.store.GetProfile(r.Context(), driverID)
	if err != nil {
		if errors.Is(err, errors.ErrDriverNotFound) {
			h.respondError(w, http.StatusNotFound, "Driver not found")
			return nil, false
		}
		h.logger.Error("Failed to load driver profile", map[string]interface{}{
			"error":     err.Error(),
			"driver_id": driverID.String(),
		})
		h.respondError(w, http.StatusInternalServerError, "Failed to load driver profile")
		return nil, false
	}
	return profile, true
}

// validateDocumentRequest is the body of POST /kyc/validate.
type validateDocumentRequest struct {
	DocumentType domain.DocumentType `json:"document_type" validate:"required"`
	DocumentData json.RawMessage     `json:"document_data" validate:"required"`
}

// ValidateDocument runs a single document payload through its validator
// without persisting anything.
func (h *KYCHandler) ValidateDocument(w http.ResponseWriter, r *http.Request) {
	var req validateDocumentRequest
	if !h.parseAndValidateRequest(w, r, &req) {
		return
	}

	data, err := domain.DecodeDocumentData(req.DocumentType, req.DocumentData)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result := kyc.ValidateDocument(req.DocumentType, data, time.Now().UTC())
	h.respondJSON(w, http.StatusOK, result)
}

// GetRequirements returns the required document set for a vehicle type.
func (h *KYCHandler) GetRequirements(w http.ResponseWriter, r *http.Request) {
	vehicleType := domain.VehicleType(mux.Vars(r)["vehicleType"])
	switch vehicleType {
	case domain.VehicleTypeBicycle, domain.VehicleTypeMotorcycle, domain.VehicleTypeCar:
	default:
		h.respondError(w, http.StatusBadRequest, "Invalid vehicle type")
		return
	}

	required := kyc.GetRequiredDocuments(vehicleType)
	names := make(map[domain.DocumentType]string, len(required))
	for _, docType := range required {
		names[docType] = kyc.DocumentTypeName(docType)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"vehicle_type":       vehicleType,
		"required_documents": required,
		"document_names":     names,
	})
}

// GetProgress returns the driver's document checklist status.
func (h *KYCHandler) GetProgress(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	progress := kyc.CalculateProgress(profile.Documents, profile.VehicleType)
	h.respondJSON(w, http.StatusOK, progress)
}

// GetStage returns the driver's verification stage.
func (h *KYCHandler) GetStage(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	progress := kyc.CalculateProgress(profile.Documents, profile.VehicleType)
	h.respondJSON(w, http.StatusOK, kyc.DetermineVerificationStage(progress))
}

// GetExpiryAlerts returns current expiry alerts for a driver.
func (h *KYCHandler) GetExpiryAlerts(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	alerts := kyc.CheckDocumentExpiry(profile.Documents, time.Now().UTC())
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"driver_id": profile.DriverID,
		"alerts":    alerts,
	})
}

// GetSchedule returns the driver's re-verification schedule.
func (h *KYCHandler) GetSchedule(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	schedule := kyc.ScheduleReVerification(profile.Documents, time.Now().UTC())
	h.respondJSON(w, http.StatusOK, schedule)
}

// GetTasks returns the driver's actionable re-verification tasks.
func (h *KYCHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	tasks := kyc.GenerateReVerificationTasks(profile.Documents, time.Now().UTC())
	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"driver_id": profile.DriverID,
		"tasks":     tasks,
	})
}

// GetAssessment returns the driver's full KYC assessment, cached in Redis for
// the configured TTL.
func (h *KYCHandler) GetAssessment(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverIDFromPath(w, r)
	if !ok {
		return
	}

	cacheKey := fmt.Sprintf("kyc:assessment:%s", driverID.String())
	if h.cache != nil {
		var cached domain.KYCResult
		if err := h.cache.Get(r.Context(), cacheKey, &cached); err == nil {
			w.Header().Set("X-Cache", "HIT")
			h.respondJSON(w, http.StatusOK, cached)
			return
		}
	}

	profile, err := h.store.GetProfile(r.Context(), driverID)
	if err != nil {
		if errors.Is(err, errors.ErrDriverNotFound) {
			h.respondError(w, http.StatusNotFound, "Driver not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to load driver profile")
		return
	}

	result := h.service.RunAssessment(*profile, time.Now().UTC())

	if h.cache != nil {
		if err := h.cache.Set(r.Context(), cacheKey, result, h.cacheTTL); err != nil {
			h.logger.Warn("Failed to cache assessment", map[string]interface{}{
				"error":     err.Error(),
				"driver_id": driverID.String(),
			})
		}
	}

	w.Header().Set("X-Cache", "MISS")
	h.respondJSON(w, http.StatusOK, result)
}

// GetCompliance returns the driver's dedup-aware compliance score.
func (h *KYCHandler) GetCompliance(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	result := kyc.CheckDocumentCompliance(profile.Documents, profile.VehicleType, time.Now().UTC())
	h.respondJSON(w, http.StatusOK, result)
}

// AssessFleet runs a batch assessment over every driver and aggregates fleet
// statistics. Operator-authenticated.
func (h *KYCHandler) AssessFleet(w http.ResponseWriter, r *http.Request) {
	const pageSize = 500

	now := time.Now().UTC()
	all := map[uuid.UUID]domain.KYCResult{}

	for offset := 0; ; offset += pageSize {
		profiles, err := h.store.ListProfiles(r.Context(), pageSize, offset)
		if err != nil {
			h.logger.Error("Failed to list drivers for fleet assessment", map[string]interface{}{
				"error": err.Error(),
			})
			h.respondError(w, http.StatusInternalServerError, "Failed to list drivers")
			return
		}
		if len(profiles) == 0 {
			break
		}

		for driverID, result := range h.service.BatchAssessment(profiles, now) {
			all[driverID] = result
		}
		if len(profiles) < pageSize {
			break
		}
	}

	results := make([]domain.KYCResult, 0, len(all))
	for _, result := range all {
		results = append(results, result)
	}

	h.respondJSON(w, http.StatusOK, map[string]interface{}{
		"assessed_at": now,
		"stats":       kyc.GetFleetKYCStats(results),
		"results":     all,
	})
}

// createDriverRequest is the body of POST /kyc/drivers.
type createDriverRequest struct {
	Name        string    `json:"name" validate:"required,min=2,max=255"`
	DateOfBirth time.Time `json:"date_of_birth" validate:"required"`
	VehicleType string    `json:"vehicle_type" validate:"required,oneof=bicycle motorcycle car"`
	City        string    `json:"city" validate:"omitempty,max=100"`
	PhoneNumber string    `json:"phone_number" validate:"omitempty,max=30"`
}

// CreateDriver registers a new driver profile.
func (h *KYCHandler) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var req createDriverRequest
	if !h.parseAndValidateRequest(w, r, &req) {
		return
	}

	profile := &domain.DriverProfile{
		DriverID:         uuid.New(),
		Name:             validator.Sanitize(req.Name),
		DateOfBirth:      req.DateOfBirth,
		VehicleType:      domain.VehicleType(req.VehicleType),
		RegistrationDate: time.Now().UTC(),
		City:             validator.Sanitize(req.City),
		PhoneNumber:      validator.Sanitize(req.PhoneNumber),
	}

	if err := h.store.CreateDriver(r.Context(), profile); err != nil {
		h.logger.Error("Failed to create driver", map[string]interface{}{"error": err.Error()})
		h.respondError(w, http.StatusInternalServerError, "Failed to create driver")
		return
	}

	h.logger.Info("Driver registered", map[string]interface{}{
		"driver_id":    profile.DriverID.String(),
		"vehicle_type": profile.VehicleType,
	})
	h.respondJSON(w, http.StatusCreated, profile)
}

// submitDocumentRequest is the body of POST /kyc/drivers/{driverID}/documents.
type submitDocumentRequest struct {
	Type       domain.DocumentType `json:"type" validate:"required"`
	ExpiryDate *time.Time          `json:"expiry_date,omitempty"`
	Data       json.RawMessage     `json:"document_data" validate:"required"`
	ImageURL   string              `json:"document_image_url,omitempty" validate:"omitempty,url"`
}

// SubmitDocument stores a document submission in pending state. The payload
// is validated for shape here; the compliance verdict comes from assessment.
func (h *KYCHandler) SubmitDocument(w http.ResponseWriter, r *http.Request) {
	profile, ok := h.loadProfile(w, r)
	if !ok {
		return
	}

	var req submitDocumentRequest
	if !h.parseAndValidateRequest(w, r, &req) {
		return
	}

	data, err := domain.DecodeDocumentData(req.Type, req.Data)
	if err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Reject malformed identifiers at the boundary; the richer field-by-field
	// verdict comes from assessment.
	if err := h.validator.Validate(data); err != nil {
		h.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	doc := &domain.DriverDocument{
		ID:          uuid.New(),
		DriverID:    profile.DriverID,
		Type:        req.Type,
		Status:      domain.DocumentStatusPending,
		SubmittedAt: time.Now().UTC(),
		ExpiryDate:  req.ExpiryDate,
		Data:        data,
		ImageURL:    req.ImageURL,
	}

	if err := h.store.SaveDocument(r.Context(), doc); err != nil {
		h.logger.Error("Failed to save document", map[string]interface{}{
			"error":     err.Error(),
			"driver_id": profile.DriverID.String(),
			"type":      req.Type,
		})
		h.respondError(w, http.StatusInternalServerError, "Failed to save document")
		return
	}

	h.invalidateAssessment(r, profile.DriverID)
	h.respondJSON(w, http.StatusCreated, doc)
}

// reviewDocumentRequest is the body of PATCH .../documents/{documentID}.
type reviewDocumentRequest struct {
	Status          domain.DocumentStatus `json:"status" validate:"required,oneof=approved rejected expired"`
	RejectionReason string                `json:"rejection_reason,omitempty" validate:"omitempty,max=500"`
}

// ReviewDocument records an approve/reject decision on a submission.
func (h *KYCHandler) ReviewDocument(w http.ResponseWriter, r *http.Request) {
	driverID, ok := h.driverIDFromPath(w, r)
	if !ok {
		return
	}
	documentID, err := uuid.Parse(mux.Vars(r)["documentID"])
	if err != nil {
		h.respondError(w, http.StatusBadRequest, "Invalid document ID")
		return
	}

	var req reviewDocumentRequest
	if !h.parseAndValidateRequest(w, r, &req) {
		return
	}

	if err := h.store.UpdateDocumentStatus(r.Context(), documentID, req.Status, validator.Sanitize(req.RejectionReason)); err != nil {
		if errors.Is(err, errors.ErrDocumentNotFound) {
			h.respondError(w, http.StatusNotFound, "Document not found")
			return
		}
		h.respondError(w, http.StatusInternalServerError, "Failed to update document")
		return
	}

	h.invalidateAssessment(r, driverID)
	h.respondJSON(w, http.StatusOK, map[string]string{"status": string(req.Status)})
}

func (h *KYCHandler) invalidateAssessment(r *http.Request, driverID uuid.UUID) {
	if h.cache == nil {
		return
	}
	key := fmt.Sprintf("kyc:assessment:%s", driverID.String())
	if err := h.cache.Delete(r.Context(), key); err != nil {
		h.logger.Warn("Failed to invalidate cached assessment", map[string]interface{}{
			"error":     err.Error(),
			"driver_id": driverID.String(),
		})
	}
}
