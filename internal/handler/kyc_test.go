package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"fleetkyc/internal/domain"
	"fleetkyc/internal/kyc"
	"fleetkyc/pkg/errors"
	"fleetkyc/pkg/logger"
	"fleetkyc/pkg/validator"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
)

// fakeStore is an in-memory DriverProfileStore for handler tests.
type fakeStore struct {
	profiles map[uuid.UUID]*domain.DriverProfile
}

func newFakeStore() *fakeStore {
	return &fakeStore{profiles: map[uuid.UUID]*domain.DriverProfile{}}
}

func (s *fakeStore) CreateDriver(_ context.Context, profile *domain.DriverProfile) error {
	s.profiles[profile.DriverID] = profile
	return nil
}

func (s *fakeStore) GetProfile(_ context.Context, driverID uuid.UUID) (*domain.DriverProfile, error) {
	profile, ok := s.profiles[driverID]
	if !ok {
		return nil, errors.ErrDriverNotFound
	}
	return profile, nil
}

func (s *fakeStore) ListProfiles(_ context.Context, limit, offset int) ([]domain.DriverProfile, error) {
	all := make([]domain.DriverProfile, 0, len(s.profiles))
	for _, p := range s.profiles {
		all = append(all, *p)
	}
	if offset >= len(all) {
		return nil, nil
	}
	end := offset + limit
	if end > len(all) {
		end = len(all)
	}
	return all[offset:end], nil
}

func (s *fakeStore) SaveDocument(_ context.Context, doc *domain.DriverDocument) error {
	profile, ok := s.profiles[doc.DriverID]
	if !ok {
		return errors.ErrDriverNotFound
	}
	profile.Documents = append(profile.Documents, *doc)
	return nil
}

func (s *fakeStore) UpdateDocumentStatus(_ context.Context, documentID uuid.UUID, status domain.DocumentStatus, reason string) error {
	for _, profile := range s.profiles {
		for i := range profile.Documents {
			if profile.Documents[i].ID == documentID {
				profile.Documents[i].Status = status
				profile.Documents[i].RejectionReason = reason
				return nil
			}
		}
	}
	return errors.ErrDocumentNotFound
}

func newTestHandler(store *fakeStore) *KYCHandler {
	svc := kyc.NewService(logger.NewNop(), nil)
	return NewKYCHandler(svc, store, nil, time.Minute, validator.New(), logger.NewNop())
}

func testRouter(h *KYCHandler) *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/kyc/validate", h.ValidateDocument).Methods(http.MethodPost)
	r.HandleFunc("/kyc/requirements/{vehicleType}", h.GetRequirements).Methods(http.MethodGet)
	r.HandleFunc("/kyc/drivers", h.CreateDriver).Methods(http.MethodPost)
	r.HandleFunc("/kyc/drivers/{driverID}/documents", h.SubmitDocument).Methods(http.MethodPost)
	r.HandleFunc("/kyc/drivers/{driverID}/documents/{documentID}", h.ReviewDocument).Methods(http.MethodPatch)
	r.HandleFunc("/kyc/drivers/{driverID}/progress", h.GetProgress).Methods(http.MethodGet)
	r.HandleFunc("/kyc/drivers/{driverID}/assessment", h.GetAssessment).Methods(http.MethodGet)
	r.HandleFunc("/kyc/fleet/assess", h.AssessFleet).Methods(http.MethodPost)
	return r
}

func doJSON(t *testing.T, router *mux.Router, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		assert.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestValidateDocumentEndpoint(t *testing.T) {
	router := testRouter(newTestHandler(newFakeStore()))

	payload := map[string]interface{}{
		"document_type": "cnie",
		"document_data": map[string]interface{}{
			"cnie_number":   "AB123456",
			"full_name":     "Youssef El Amrani",
			"date_of_birth": "1995-06-20T00:00:00Z",
			"issue_date":    "2021-01-10T00:00:00Z",
			"expiry_date":   "2031-01-10T00:00:00Z",
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/kyc/validate", payload)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result domain.ValidationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

func TestValidateDocumentEndpointBadNumber(t *testing.T) {
	router := testRouter(newTestHandler(newFakeStore()))

	payload := map[string]interface{}{
		"document_type": "cnie",
		"document_data": map[string]interface{}{
			"cnie_number":   "123456",
			"full_name":     "Youssef El Amrani",
			"date_of_birth": "1995-06-20T00:00:00Z",
			"issue_date":    "2021-01-10T00:00:00Z",
			"expiry_date":   "2031-01-10T00:00:00Z",
		},
	}
	rec := doJSON(t, router, http.MethodPost, "/kyc/validate", payload)
	assert.Equal(t, http.StatusOK, rec.Code)

	var result domain.ValidationResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.False(t, result.Valid)
	assert.NotEmpty(t, result.Errors)
}

func TestValidateDocumentEndpointUnknownType(t *testing.T) {
	router := testRouter(newTestHandler(newFakeStore()))

	payload := map[string]interface{}{
		"document_type": "passport",
		"document_data": map[string]interface{}{},
	}
	rec := doJSON(t, router, http.MethodPost, "/kyc/validate", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetRequirementsEndpoint(t *testing.T) {
	router := testRouter(newTestHandler(newFakeStore()))

	rec := doJSON(t, router, http.MethodGet, "/kyc/requirements/bicycle", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		VehicleType       string   `json:"vehicle_type"`
		RequiredDocuments []string `json:"required_documents"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "bicycle", resp.VehicleType)
	assert.Len(t, resp.RequiredDocuments, 5)
	assert.NotContains(t, resp.RequiredDocuments, "driving_license")

	rec = doJSON(t, router, http.MethodGet, "/kyc/requirements/truck", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateDriverEndpoint(t *testing.T) {
	store := newFakeStore()
	router := testRouter(newTestHandler(store))

	payload := map[string]interface{}{
		"name":          "Imane Berrada",
		"date_of_birth": "1998-02-11T00:00:00Z",
		"vehicle_type":  "bicycle",
		"city":          "Casablanca",
	}
	rec := doJSON(t, router, http.MethodPost, "/kyc/drivers", payload)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var created domain.DriverProfile
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &created))
	assert.NotEqual(t, uuid.Nil, created.DriverID)
	assert.Equal(t, domain.VehicleTypeBicycle, created.VehicleType)
	assert.Contains(t, store.profiles, created.DriverID)
}

func TestCreateDriverEndpointRejectsBadVehicle(t *testing.T) {
	router := testRouter(newTestHandler(newFakeStore()))

	payload := map[string]interface{}{
		"name":          "Imane Berrada",
		"date_of_birth": "1998-02-11T00:00:00Z",
		"vehicle_type":  "truck",
	}
	rec := doJSON(t, router, http.MethodPost, "/kyc/drivers", payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestSubmitAndReviewDocument(t *testing.T) {
	store := newFakeStore()
	router := testRouter(newTestHandler(store))

	driver := &domain.DriverProfile{
		DriverID:    uuid.New(),
		Name:        "Omar Tazi",
		DateOfBirth: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		VehicleType: domain.VehicleTypeBicycle,
	}
	store.profiles[driver.DriverID] = driver

	payload := map[string]interface{}{
		"type": "cnie",
		"document_data": map[string]interface{}{
			"cnie_number":   "K4567890",
			"full_name":     "Omar Tazi",
			"date_of_birth": "1990-04-02T00:00:00Z",
			"issue_date":    "2020-05-01T00:00:00Z",
			"expiry_date":   "2030-05-01T00:00:00Z",
		},
	}
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/kyc/drivers/%s/documents", driver.DriverID), payload)
	assert.Equal(t, http.StatusCreated, rec.Code)

	var doc domain.DriverDocument
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &doc))
	assert.Equal(t, domain.DocumentStatusPending, doc.Status)
	assert.Len(t, driver.Documents, 1)

	review := map[string]interface{}{"status": "approved"}
	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/kyc/drivers/%s/documents/%s", driver.DriverID, doc.ID), review)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, domain.DocumentStatusApproved, driver.Documents[0].Status)

	// Unknown document ID
	rec = doJSON(t, router, http.MethodPatch, fmt.Sprintf("/kyc/drivers/%s/documents/%s", driver.DriverID, uuid.New()), review)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestSubmitDocumentRejectsMalformedNumber(t *testing.T) {
	store := newFakeStore()
	router := testRouter(newTestHandler(store))

	driver := &domain.DriverProfile{
		DriverID:    uuid.New(),
		Name:        "Omar Tazi",
		DateOfBirth: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		VehicleType: domain.VehicleTypeBicycle,
	}
	store.profiles[driver.DriverID] = driver

	payload := map[string]interface{}{
		"type": "cnie",
		"document_data": map[string]interface{}{
			"cnie_number": "not-a-cnie",
			"full_name":   "Omar Tazi",
		},
	}
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/kyc/drivers/%s/documents", driver.DriverID), payload)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, driver.Documents)
}

func TestSubmitDocumentUnknownDriver(t *testing.T) {
	router := testRouter(newTestHandler(newFakeStore()))

	payload := map[string]interface{}{
		"type":          "cnie",
		"document_data": map[string]interface{}{},
	}
	rec := doJSON(t, router, http.MethodPost, fmt.Sprintf("/kyc/drivers/%s/documents", uuid.New()), payload)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetProgressEndpoint(t *testing.T) {
	store := newFakeStore()
	router := testRouter(newTestHandler(store))

	driver := &domain.DriverProfile{
		DriverID:    uuid.New(),
		Name:        "Imane Berrada",
		DateOfBirth: time.Date(1998, 2, 11, 0, 0, 0, 0, time.UTC),
		VehicleType: domain.VehicleTypeBicycle,
	}
	store.profiles[driver.DriverID] = driver

	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/kyc/drivers/%s/progress", driver.DriverID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var progress domain.KYCProgress
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &progress))
	assert.Equal(t, 0, progress.CompletionPercentage)
	assert.Len(t, progress.MissingDocuments, 5)

	rec = doJSON(t, router, http.MethodGet, "/kyc/drivers/not-a-uuid/progress", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetAssessmentEndpointWithoutCache(t *testing.T) {
	store := newFakeStore()
	router := testRouter(newTestHandler(store))

	driver := &domain.DriverProfile{
		DriverID:    uuid.New(),
		Name:        "Omar Tazi",
		DateOfBirth: time.Date(1990, 4, 2, 0, 0, 0, 0, time.UTC),
		VehicleType: domain.VehicleTypeCar,
	}
	store.profiles[driver.DriverID] = driver

	rec := doJSON(t, router, http.MethodGet, fmt.Sprintf("/kyc/drivers/%s/assessment", driver.DriverID), nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "MISS", rec.Header().Get("X-Cache"))

	var result domain.KYCResult
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
	assert.Equal(t, driver.DriverID, result.DriverID)
	assert.Equal(t, domain.StageInitial, result.Stage.Stage)
	assert.False(t, result.Eligible)
}

func TestAssessFleetEndpoint(t *testing.T) {
	store := newFakeStore()
	router := testRouter(newTestHandler(store))

	for i := 0; i < 3; i++ {
		driver := &domain.DriverProfile{
			DriverID:    uuid.New(),
			Name:        fmt.Sprintf("Driver %d", i),
			DateOfBirth: time.Date(1992, 1, 1, 0, 0, 0, 0, time.UTC),
			VehicleType: domain.VehicleTypeMotorcycle,
		}
		store.profiles[driver.DriverID] = driver
	}

	rec := doJSON(t, router, http.MethodPost, "/kyc/fleet/assess", nil)
	assert.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Stats   domain.FleetKYCStats           `json:"stats"`
		Results map[uuid.UUID]domain.KYCResult `json:"results"`
	}
	assert.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Stats.TotalDrivers)
	assert.Len(t, resp.Results, 3)
}
