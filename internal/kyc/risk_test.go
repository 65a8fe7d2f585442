package kyc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"fleetkyc/internal/domain"
)

func TestAssessOverallRiskCriticalOnRejectionOrExpiry(t *testing.T) {
	assert.Equal(t, domain.SeverityCritical, AssessOverallRisk(
		domain.KYCProgress{RejectedCount: 1},
		nil,
		domain.VerificationStage{Stage: domain.StageRejected},
	))

	assert.Equal(t, domain.SeverityCritical, AssessOverallRisk(
		domain.KYCProgress{ExpiredCount: 2},
		nil,
		domain.VerificationStage{Stage: domain.StageReVerification},
	))
}

func TestAssessOverallRiskHighOnMissingOrCriticalAlert(t *testing.T) {
	assert.Equal(t, domain.SeverityHigh, AssessOverallRisk(
		domain.KYCProgress{MissingDocuments: []domain.DocumentType{domain.DocumentTypeCNIE}},
		nil,
		domain.VerificationStage{Stage: domain.StageDocumentsSubmitted},
	))

	assert.Equal(t, domain.SeverityHigh, AssessOverallRisk(
		domain.KYCProgress{IsComplete: true},
		[]domain.ExpiryAlert{{Severity: domain.SeverityCritical}},
		domain.VerificationStage{Stage: domain.StageApproved},
	))
}

func TestAssessOverallRiskMediumOnReviewOrNearExpiry(t *testing.T) {
	assert.Equal(t, domain.SeverityMedium, AssessOverallRisk(
		domain.KYCProgress{PendingCount: 1},
		nil,
		domain.VerificationStage{Stage: domain.StageUnderReview},
	))

	assert.Equal(t, domain.SeverityMedium, AssessOverallRisk(
		domain.KYCProgress{IsComplete: true},
		[]domain.ExpiryAlert{{Severity: domain.SeverityMedium}},
		domain.VerificationStage{Stage: domain.StageApproved},
	))
}

func TestAssessOverallRiskLowWhenClean(t *testing.T) {
	assert.Equal(t, domain.SeverityLow, AssessOverallRisk(
		domain.KYCProgress{IsComplete: true},
		[]domain.ExpiryAlert{{Severity: domain.SeverityLow}},
		domain.VerificationStage{Stage: domain.StageApproved},
	))
}
