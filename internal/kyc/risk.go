// ==============================================================================
// RISK SCORER - internal/kyc/risk.go
// ==============================================================================

package kyc

import "fleetkyc/internal/domain"

// AssessOverallRisk folds progress, alerts, and stage into one severity.
// Rules are checked in order of decreasing severity; the first match wins.
func AssessOverallRisk(progress domain.KYCProgress, alerts []domain.ExpiryAlert, stage domain.VerificationStage) domain.Severity {
	if progress.RejectedCount > 0 || progress.ExpiredCount > 0 {
		return domain.SeverityCritical
	}

	if len(progress.MissingDocuments) > 0 || hasAlertAtLeast(alerts, domain.SeverityCritical) {
		return domain.SeverityHigh
	}

	if stage.Stage == domain.StageUnderReview || hasAlertAtLeast(alerts, domain.SeverityMedium) {
		return domain.SeverityMedium
	}

	return domain.SeverityLow
}

func hasAlertAtLeast(alerts []domain.ExpiryAlert, threshold domain.Severity) bool {
	for _, alert := range alerts {
		if severityRank[alert.Severity] <= severityRank[threshold] {
			return true
		}
	}
	return false
}
