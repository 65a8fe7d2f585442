package kyc

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"fleetkyc/internal/domain"
)

func complianceDetail(result domain.ComplianceResult, docType domain.DocumentType) domain.DocumentComplianceDetail {
	for _, detail := range result.Documents {
		if detail.Type == docType {
			return detail
		}
	}
	return domain.DocumentComplianceDetail{}
}

func TestCheckDocumentComplianceFullyCompliant(t *testing.T) {
	profile := compliantMotorcycleProfile()

	result := CheckDocumentCompliance(profile.Documents, domain.VehicleTypeMotorcycle, testNow)

	assert.Equal(t, 100, result.Score)
	assert.True(t, result.IsCompliant)
	assert.Len(t, result.Documents, 9)
	for _, detail := range result.Documents {
		assert.Equal(t, domain.ComplianceDocumentCompliant, detail.Status, "type=%s", detail.Type)
	}
}

func TestCheckDocumentComplianceNothingSubmitted(t *testing.T) {
	result := CheckDocumentCompliance(nil, domain.VehicleTypeBicycle, testNow)

	assert.Equal(t, 0, result.Score)
	assert.False(t, result.IsCompliant)
	assert.Len(t, result.Documents, 5)
	for _, detail := range result.Documents {
		assert.Equal(t, domain.ComplianceDocumentMissing, detail.Status)
		assert.Contains(t, detail.Issues[0], "not submitted")
	}
}

func TestCheckDocumentComplianceMixedStatuses(t *testing.T) {
	docs := []domain.DriverDocument{
		docWithStatus(domain.DocumentTypeCNIE, domain.DocumentStatusApproved, testNow),
		docWithStatus(domain.DocumentTypeAutoEntrepreneur, domain.DocumentStatusPending, testNow),
		docWithStatus(domain.DocumentTypeMedicalCertificate, domain.DocumentStatusRejected, testNow),
		docWithStatus(domain.DocumentTypeCasierJudiciaire, domain.DocumentStatusExpired, testNow),
	}

	result := CheckDocumentCompliance(docs, domain.VehicleTypeBicycle, testNow)

	// 1 approved out of 5 required.
	assert.Equal(t, 20, result.Score)
	assert.False(t, result.IsCompliant)

	assert.Equal(t, domain.ComplianceDocumentCompliant, complianceDetail(result, domain.DocumentTypeCNIE).Status)
	assert.Equal(t, domain.ComplianceDocumentWarning, complianceDetail(result, domain.DocumentTypeAutoEntrepreneur).Status)
	assert.Equal(t, domain.ComplianceDocumentIssue, complianceDetail(result, domain.DocumentTypeMedicalCertificate).Status)
	assert.Equal(t, domain.ComplianceDocumentIssue, complianceDetail(result, domain.DocumentTypeCasierJudiciaire).Status)
	assert.Equal(t, domain.ComplianceDocumentMissing, complianceDetail(result, domain.DocumentTypeSelfieVerification).Status)
}

func TestCheckDocumentComplianceRevalidatesPayload(t *testing.T) {
	doc := docWithStatus(domain.DocumentTypeSelfieVerification, domain.DocumentStatusApproved, testNow)
	doc.Data = domain.SelfieVerificationData{
		FaceMatchScore: 0.40,
		LivenessScore:  0.92,
		CapturedAt:     testNow.Add(-time.Hour),
	}

	result := CheckDocumentCompliance([]domain.DriverDocument{doc}, domain.VehicleTypeBicycle, testNow)

	// Approved status does not save a payload that no longer passes its
	// validator.
	detail := complianceDetail(result, domain.DocumentTypeSelfieVerification)
	assert.Equal(t, domain.ComplianceDocumentIssue, detail.Status)
	assert.NotEmpty(t, detail.Issues)
	assert.False(t, result.IsCompliant)
}

func TestCheckDocumentComplianceMostRecentSubmissionWins(t *testing.T) {
	docs := []domain.DriverDocument{
		docWithStatus(domain.DocumentTypeCNIE, domain.DocumentStatusRejected, testNow.AddDate(0, 0, -20)),
		docWithStatus(domain.DocumentTypeCNIE, domain.DocumentStatusApproved, testNow),
	}

	result := CheckDocumentCompliance(docs, domain.VehicleTypeBicycle, testNow)

	detail := complianceDetail(result, domain.DocumentTypeCNIE)
	assert.Equal(t, domain.ComplianceDocumentCompliant, detail.Status)
	assert.Equal(t, 20, result.Score)
}

func TestCheckDocumentComplianceApprovedWithWarningStillScores(t *testing.T) {
	doc := docWithStatus(domain.DocumentTypeSelfieVerification, domain.DocumentStatusApproved, testNow)
	doc.Data = domain.SelfieVerificationData{
		FaceMatchScore: 0.87,
		LivenessScore:  0.92,
		CapturedAt:     testNow.Add(-time.Hour),
	}

	result := CheckDocumentCompliance([]domain.DriverDocument{doc}, domain.VehicleTypeBicycle, testNow)

	detail := complianceDetail(result, domain.DocumentTypeSelfieVerification)
	assert.Equal(t, domain.ComplianceDocumentWarning, detail.Status)
	assert.Equal(t, 20, result.Score)
	assert.False(t, result.IsCompliant)
}
