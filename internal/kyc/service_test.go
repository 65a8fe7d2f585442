package kyc

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"fleetkyc/internal/domain"
	"fleetkyc/pkg/logger"
)

func approvedDoc(driverID uuid.UUID, data domain.DocumentData, expiry time.Time) domain.DriverDocument {
	var expiryPtr *time.Time
	if !expiry.IsZero() {
		expiryPtr = &expiry
	}
	return domain.DriverDocument{
		ID:          uuid.New(),
		DriverID:    driverID,
		Type:        data.Type(),
		Status:      domain.DocumentStatusApproved,
		SubmittedAt: testNow.AddDate(0, 0, -5),
		ExpiryDate:  expiryPtr,
		Data:        data,
	}
}

// compliantMotorcycleProfile builds a driver holding every required document,
// all approved, all valid, all expiring well outside the alert window.
func compliantMotorcycleProfile() domain.DriverProfile {
	driverID := uuid.New()
	farOut := testNow.AddDate(1, 0, 0)

	return domain.DriverProfile{
		DriverID:    driverID,
		Name:        "Youssef El Amrani",
		DateOfBirth: date(1995, 6, 20),
		VehicleType: domain.VehicleTypeMotorcycle,
		City:        "Casablanca",
		Documents: []domain.DriverDocument{
			approvedDoc(driverID, validCNIE(), farOut),
			approvedDoc(driverID, domain.DrivingLicenseData{
				LicenseNumber: "1234567",
				Category:      "A",
				HolderName:    "Youssef El Amrani",
				DateOfBirth:   date(1995, 6, 20),
				ExpiryDate:    farOut,
			}, farOut),
			approvedDoc(driverID, domain.InsuranceData{
				PolicyNumber:   "POL123456",
				Insurer:        "Wafa Assurance",
				StartDate:      testNow.AddDate(0, -6, 0),
				ExpiryDate:     farOut,
				HasRC:          true,
				CoverageAmount: decimal.NewFromInt(100000),
			}, farOut),
			approvedDoc(driverID, domain.AutoEntrepreneurData{
				RegistrationNumber:  "12345678",
				ICENumber:           "001234567890123",
				IsActive:            true,
				RegistrationDate:    testNow.AddDate(-1, 0, 0),
				ActivityDescription: "Livraison de repas",
			}, time.Time{}),
			approvedDoc(driverID, domain.VehicleInspectionData{
				CenterCode:     "CT-042",
				Result:         domain.InspectionResultPass,
				InspectionDate: testNow.AddDate(0, -2, 0),
				ExpiryDate:     farOut,
				VehicleYear:    2023,
			}, farOut),
			approvedDoc(driverID, domain.MedicalCertificateData{
				DoctorName:   "Dr. Benali",
				IsFitToDrive: true,
				IssueDate:    testNow.AddDate(0, -1, 0),
				ExpiryDate:   testNow.AddDate(0, 10, 0),
			}, testNow.AddDate(0, 10, 0)),
			approvedDoc(driverID, domain.CriminalRecordData{
				IssueDate: testNow.AddDate(0, -1, 0),
			}, time.Time{}),
			approvedDoc(driverID, domain.SelfieVerificationData{
				FaceMatchScore: 0.95,
				LivenessScore:  0.92,
				CapturedAt:     testNow.Add(-2 * time.Hour),
			}, time.Time{}),
			approvedDoc(driverID, domain.VehicleRegistrationData{
				PlateNumber:           "12345-A-6",
				OwnerName:             "Youssef El Amrani",
				FirstRegistrationDate: testNow.AddDate(-4, 0, 0),
				ExpiryDate:            farOut,
			}, farOut),
		},
	}
}

func TestRunAssessmentCompliantDriver(t *testing.T) {
	svc := NewService(logger.NewNop(), nil)
	profile := compliantMotorcycleProfile()

	result := svc.RunAssessment(profile, testNow)

	assert.Equal(t, profile.DriverID, result.DriverID)
	assert.Equal(t, domain.StageApproved, result.Stage.Stage)
	assert.True(t, result.Stage.CanOperate)
	assert.True(t, result.Eligible)
	assert.Equal(t, domain.SeverityLow, result.OverallRisk)
	assert.Equal(t, 100, result.Progress.CompletionPercentage)
	assert.Empty(t, result.Alerts)
	assert.Empty(t, result.Notes)
	assert.Equal(t, testNow, result.AssessedAt)
}

func TestRunAssessmentExpiredInsurance(t *testing.T) {
	svc := NewService(logger.NewNop(), nil)
	profile := compliantMotorcycleProfile()

	expired := testNow.AddDate(0, 0, -10)
	for i, doc := range profile.Documents {
		if doc.Type == domain.DocumentTypeInsurance {
			profile.Documents[i].Status = domain.DocumentStatusExpired
			profile.Documents[i].ExpiryDate = &expired
			data := doc.Data.(domain.InsuranceData)
			data.ExpiryDate = expired
			profile.Documents[i].Data = data
		}
	}

	result := svc.RunAssessment(profile, testNow)

	assert.Equal(t, domain.StageReVerification, result.Stage.Stage)
	assert.False(t, result.Stage.CanOperate)
	assert.False(t, result.Eligible)
	assert.Equal(t, domain.SeverityCritical, result.OverallRisk)
	assert.NotEmpty(t, result.Notes)
	assert.Contains(t, result.Schedule.UrgentDocuments, domain.DocumentTypeInsurance)

	assert.Len(t, result.Alerts, 1)
	assert.Equal(t, domain.SeverityCritical, result.Alerts[0].Severity)
}

func TestRunAssessmentMissingDocuments(t *testing.T) {
	svc := NewService(logger.NewNop(), nil)
	driverID := uuid.New()
	profile := domain.DriverProfile{
		DriverID:    driverID,
		Name:        "Imane Berrada",
		DateOfBirth: date(1998, 2, 10),
		VehicleType: domain.VehicleTypeBicycle,
		Documents: []domain.DriverDocument{
			approvedDoc(driverID, validCNIE(), testNow.AddDate(2, 0, 0)),
		},
	}

	result := svc.RunAssessment(profile, testNow)

	assert.Equal(t, domain.StageDocumentsSubmitted, result.Stage.Stage)
	assert.False(t, result.Eligible)
	assert.Equal(t, domain.SeverityHigh, result.OverallRisk)
	assert.Len(t, result.Progress.MissingDocuments, 4)
}

func TestRunAssessmentSkipsRejectedDocumentValidation(t *testing.T) {
	svc := NewService(logger.NewNop(), nil)
	profile := compliantMotorcycleProfile()

	for i, doc := range profile.Documents {
		if doc.Type == domain.DocumentTypeSelfieVerification {
			profile.Documents[i].Status = domain.DocumentStatusRejected
			profile.Documents[i].Data = domain.SelfieVerificationData{
				FaceMatchScore: 0.10,
				LivenessScore:  0.10,
			}
		}
	}

	result := svc.RunAssessment(profile, testNow)

	// The rejected payload is never re-validated, so its scores produce no
	// notes; the rejection itself drives the outcome.
	assert.Equal(t, domain.StageRejected, result.Stage.Stage)
	assert.Empty(t, result.Notes)
	assert.Equal(t, domain.SeverityCritical, result.OverallRisk)
}

func TestRunAssessmentFillsProfileContext(t *testing.T) {
	svc := NewService(logger.NewNop(), nil)
	profile := compliantMotorcycleProfile()
	profile.VehicleType = domain.VehicleTypeCar

	result := svc.RunAssessment(profile, testNow)

	// Category A on a car profile must surface as a validation note, proving
	// the vehicle type reached the license validator.
	found := false
	for _, note := range result.Notes {
		if strings.Contains(note, "category") {
			found = true
		}
	}
	assert.True(t, found)
}

func TestBatchAssessmentReturnsResultPerDriver(t *testing.T) {
	svc := NewService(logger.NewNop(), nil)
	first := compliantMotorcycleProfile()
	second := compliantMotorcycleProfile()

	results := svc.BatchAssessment([]domain.DriverProfile{first, second}, testNow)

	assert.Len(t, results, 2)
	assert.True(t, results[first.DriverID].Eligible)
	assert.True(t, results[second.DriverID].Eligible)
}

func TestBatchAssessmentIsolatesFailures(t *testing.T) {
	svc := NewService(logger.NewNop(), nil)
	healthy := compliantMotorcycleProfile()
	poisoned := compliantMotorcycleProfile()

	realAssess := svc.assess
	svc.assess = func(profile domain.DriverProfile, now time.Time) domain.KYCResult {
		if profile.DriverID == poisoned.DriverID {
			panic("corrupt document payload")
		}
		return realAssess(profile, now)
	}

	results := svc.BatchAssessment([]domain.DriverProfile{healthy, poisoned}, testNow)

	assert.Len(t, results, 2)

	degraded := results[poisoned.DriverID]
	assert.Equal(t, domain.StageSuspended, degraded.Stage.Stage)
	assert.False(t, degraded.Eligible)
	assert.Equal(t, domain.SeverityCritical, degraded.OverallRisk)
	assert.Contains(t, degraded.Notes[0], "corrupt document payload")

	assert.True(t, results[healthy.DriverID].Eligible)
}

func TestBatchAssessmentEmptyFleet(t *testing.T) {
	svc := NewService(logger.NewNop(), nil)

	results := svc.BatchAssessment(nil, testNow)

	assert.NotNil(t, results)
	assert.Empty(t, results)
}

func TestWithProfileContextLeavesFilledFieldsAlone(t *testing.T) {
	profile := domain.DriverProfile{
		Name:        "Imane Berrada",
		VehicleType: domain.VehicleTypeCar,
		DateOfBirth: date(1998, 2, 10),
	}

	license := domain.DrivingLicenseData{VehicleType: domain.VehicleTypeMotorcycle, DateOfBirth: date(1990, 1, 1)}
	filled := withProfileContext(license, profile).(domain.DrivingLicenseData)
	assert.Equal(t, domain.VehicleTypeMotorcycle, filled.VehicleType)
	assert.Equal(t, date(1990, 1, 1), filled.DateOfBirth)

	empty := domain.DrivingLicenseData{}
	filled = withProfileContext(empty, profile).(domain.DrivingLicenseData)
	assert.Equal(t, domain.VehicleTypeCar, filled.VehicleType)
	assert.Equal(t, profile.DateOfBirth, filled.DateOfBirth)

	registration := domain.VehicleRegistrationData{OwnerName: "Someone Else"}
	reg := withProfileContext(registration, profile).(domain.VehicleRegistrationData)
	assert.Equal(t, "Imane Berrada", reg.DriverName)
}
