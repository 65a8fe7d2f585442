// ==============================================================================
// COMPLIANCE CHECKER - internal/kyc/compliance.go
// ==============================================================================

package kyc

import (
	"math"
	"time"

	"fleetkyc/internal/domain"
)

// CheckDocumentCompliance is an independent scoring entry point. Documents
// are deduplicated by type (most recently submitted wins), then each required
// type is classified and its payload re-validated.
func CheckDocumentCompliance(documents []domain.DriverDocument, vehicleType domain.VehicleType, now time.Time) domain.ComplianceResult {
	required := GetRequiredDocuments(vehicleType)
	latest := latestByType(documents)

	result := domain.ComplianceResult{
		Documents: []domain.DocumentComplianceDetail{},
		CheckedAt: now,
	}

	approvedRequired := 0
	issueCount := 0

	for _, docType := range required {
		detail := domain.DocumentComplianceDetail{
			Type:   docType,
			Status: domain.ComplianceDocumentCompliant,
		}

		doc, submitted := latest[docType]
		if !submitted {
			detail.Status = domain.ComplianceDocumentMissing
			detail.Issues = append(detail.Issues, "document not submitted")
			issueCount++
			result.Documents = append(result.Documents, detail)
			continue
		}

		switch doc.Status {
		case domain.DocumentStatusApproved:
			approvedRequired++
		case domain.DocumentStatusRejected:
			detail.Status = domain.ComplianceDocumentIssue
			detail.Issues = append(detail.Issues, "document was rejected")
		case domain.DocumentStatusExpired:
			detail.Status = domain.ComplianceDocumentIssue
			detail.Issues = append(detail.Issues, "document has expired")
		default:
			detail.Status = domain.ComplianceDocumentWarning
			detail.Warnings = append(detail.Warnings, "document is awaiting review")
		}

		if doc.Data != nil {
			res := ValidateDocument(doc.Type, doc.Data, now)
			detail.Issues = append(detail.Issues, res.Errors...)
			detail.Warnings = append(detail.Warnings, res.Warnings...)
		}

		if len(detail.Issues) > 0 {
			detail.Status = domain.ComplianceDocumentIssue
		} else if len(detail.Warnings) > 0 && detail.Status == domain.ComplianceDocumentCompliant {
			detail.Status = domain.ComplianceDocumentWarning
		}

		if detail.Status == domain.ComplianceDocumentIssue {
			issueCount++
		}
		result.Documents = append(result.Documents, detail)
	}

	if len(required) > 0 {
		result.Score = int(math.Round(100 * float64(approvedRequired) / float64(len(required))))
	}
	result.IsCompliant = issueCount == 0 && approvedRequired == len(required)

	return result
}
